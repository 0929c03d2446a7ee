// Copyright 2022 Upbound Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package astindex_test

import (
	"testing"

	"github.com/golang/tools/span"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovy-lsp/groovy-language-server/internal/astindex"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend/frontendtest"
)

func uri(s string) span.URI { return span.URI("file:///" + s) }

func TestNodeAtPicksInnermostByLatestStart(t *testing.T) {
	idx := astindex.New()
	u := uri("A.groovy")

	outer := frontendtest.Class("A").AtRange(0, 0, 10, 0)
	inner := frontendtest.Method("foo", "void").AtRange(2, 0, 4, 0)

	idx.Register(u, []frontend.Node{outer, inner}, []frontend.ClassNode{outer}, nil, nil)

	got, ok := idx.NodeAt(u, 3, 0)
	require.True(t, ok)
	assert.Same(t, inner, got)
}

func TestNodeAtOutsideAnyRangeReturnsNotFound(t *testing.T) {
	idx := astindex.New()
	u := uri("A.groovy")
	outer := frontendtest.Class("A").AtRange(0, 0, 10, 0)
	idx.Register(u, []frontend.Node{outer}, []frontend.ClassNode{outer}, nil, nil)

	_, ok := idx.NodeAt(u, 20, 0)
	assert.False(t, ok)
}

func TestNodeAtConstructorPreferredOverClassOnIdenticalRange(t *testing.T) {
	idx := astindex.New()
	u := uri("A.groovy")

	cls := frontendtest.Class("A").AtRange(0, 0, 5, 0)
	ctor := frontendtest.Method("A", "void")
	ctor.NodeKind = frontend.KindConstructor
	ctor.NodeHasRange = true
	ctor.NodeRange = cls.Range()

	idx.Register(u, []frontend.Node{cls, ctor}, []frontend.ClassNode{cls}, nil, nil)

	got, ok := idx.NodeAt(u, 2, 0)
	require.True(t, ok)
	assert.Same(t, ctor, got)
}

func TestNodeAtMonotonicityForNestedRanges(t *testing.T) {
	idx := astindex.New()
	u := uri("A.groovy")

	outer := frontendtest.Class("A").AtRange(0, 0, 10, 0)
	middle := frontendtest.Method("m", "void").AtRange(1, 0, 8, 0)
	inner := frontendtest.Method("x", "void").AtRange(2, 0, 4, 0)

	parents := map[frontend.Node]frontend.Node{
		frontend.Node(middle): frontend.Node(outer),
		frontend.Node(inner):  frontend.Node(middle),
	}
	idx.Register(u, []frontend.Node{outer, middle, inner}, []frontend.ClassNode{outer}, parents, nil)

	innerMost, ok := idx.NodeAt(u, 3, 0)
	require.True(t, ok)
	assert.Same(t, inner, innerMost)

	enclosing, ok := idx.NodeAt(u, 6, 0)
	require.True(t, ok)
	assert.Same(t, middle, enclosing)

	// the node_at result for a position within the inner range must be a
	// descendant of (or equal to) the result for the enclosing range.
	parent, _, hasParent := idx.Parent(innerMost)
	require.True(t, hasParent)
	assert.Same(t, enclosing, parent)
}

func TestSnapshotIsolation(t *testing.T) {
	idx := astindex.New()
	u := uri("A.groovy")
	v := uri("B.groovy")

	a := frontendtest.Class("A").AtRange(0, 0, 5, 0)
	b := frontendtest.Class("B").AtRange(0, 0, 5, 0)
	idx.Register(u, []frontend.Node{a}, []frontend.ClassNode{a}, nil, []string{"B"})
	idx.Register(v, []frontend.Node{b}, []frontend.ClassNode{b}, nil, nil)

	snap := idx.SnapshotExcluding(map[span.URI]struct{}{u: {}})

	// snapshot must not carry A's data...
	assert.Empty(t, snap.NodesForURI(u))
	_, ok := snap.ClassNodeByName("A")
	assert.False(t, ok)
	// ...but must still carry B's.
	assert.Len(t, snap.NodesForURI(v), 1)

	// mutating idx afterwards (simulating a revisit) must not change snap.
	newA := frontendtest.Class("A").AtRange(0, 0, 99, 0)
	idx.Register(u, []frontend.Node{newA}, []frontend.ClassNode{newA}, nil, nil)

	assert.Empty(t, snap.NodesForURI(u))
	assert.Len(t, snap.NodesForURI(v), 1)
	_, ok = snap.ClassNodeByName("A")
	assert.False(t, ok)
}

func TestRestoreFromPreviousReplacesDegradedData(t *testing.T) {
	idx := astindex.New()
	u := uri("A.groovy")

	good := frontendtest.Class("A").AtRange(0, 0, 5, 0)
	idx.Register(u, []frontend.Node{good}, []frontend.ClassNode{good}, nil, nil)
	previous := idx.SnapshotExcluding(map[span.URI]struct{}{})

	// simulate a degraded recompile of A (e.g. syntax error: no class node).
	idx.Register(u, nil, nil, nil, nil)
	_, ok := idx.ClassNodeByName("A")
	assert.False(t, ok)

	idx.RestoreFromPrevious(u, previous)

	restored, ok := idx.ClassNodeByName("A")
	require.True(t, ok)
	assert.Same(t, good, restored)
	assert.Len(t, idx.NodesForURI(u), 1)
}

func TestDependenciesOfFiltersReservedPrefixes(t *testing.T) {
	idx := astindex.New()
	u := uri("A.groovy")
	idx.Register(u, nil, nil, nil, []string{"java.util.List", "pkg.Helper", "groovy.lang.Closure"})

	assert.Equal(t, []string{"pkg.Helper"}, idx.DependenciesOf(u))
}

func TestResolveDependencyURIsDropsUnresolvedAndSelf(t *testing.T) {
	idx := astindex.New()
	a := uri("A.groovy")
	b := uri("B.groovy")

	clsA := frontendtest.Class("pkg.A").AtRange(0, 0, 1, 0)
	clsB := frontendtest.Class("pkg.B").AtRange(0, 0, 1, 0)
	idx.Register(a, []frontend.Node{clsA}, []frontend.ClassNode{clsA}, nil, []string{"pkg.B", "pkg.A", "pkg.External"})
	idx.Register(b, []frontend.Node{clsB}, []frontend.ClassNode{clsB}, nil, nil)

	got := idx.ResolveDependencyURIs(a)
	require.Len(t, got, 1)
	assert.Equal(t, b, got[0])
}

func TestDuplicateClassNameLastWriterWinsRecordsBothSites(t *testing.T) {
	idx := astindex.New()
	a := uri("A.groovy")
	b := uri("B.groovy")

	clsA := frontendtest.Class("pkg.Dup").AtRange(0, 0, 1, 0)
	clsB := frontendtest.Class("pkg.Dup").AtRange(0, 0, 1, 0)
	idx.Register(a, []frontend.Node{clsA}, []frontend.ClassNode{clsA}, nil, nil)
	idx.Register(b, []frontend.Node{clsB}, []frontend.ClassNode{clsB}, nil, nil)

	winner, ok := idx.ClassNodeByName("pkg.Dup")
	require.True(t, ok)
	assert.Same(t, clsB, winner)

	sites := idx.DuplicateClassSites("pkg.Dup")
	assert.Contains(t, sites, a)
}
