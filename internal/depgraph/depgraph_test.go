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

package depgraph

import (
	"sort"
	"testing"
	"time"

	"github.com/golang/tools/span"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uri(s string) span.URI {
	return span.URI("file:///" + s)
}

func set(uris ...span.URI) map[span.URI]struct{} {
	m := make(map[span.URI]struct{}, len(uris))
	for _, u := range uris {
		m[u] = struct{}{}
	}
	return m
}

func sorted(uris []span.URI) []string {
	out := make([]string, len(uris))
	for i, u := range uris {
		out[i] = string(u)
	}
	sort.Strings(out)
	return out
}

func TestUpdateDependenciesSymmetry(t *testing.T) {
	g := New()
	a, b, c := uri("A.groovy"), uri("B.groovy"), uri("C.groovy")

	g.UpdateDependencies(c, set(a, b))

	assert.Equal(t, []string{"file:///A.groovy", "file:///B.groovy"}, sorted(g.DirectDependencies(c)))
	assert.Equal(t, []string{"file:///C.groovy"}, sorted(g.DirectDependents(a)))
	assert.Equal(t, []string{"file:///C.groovy"}, sorted(g.DirectDependents(b)))
}

func TestUpdateDependenciesDiffsReverseIndex(t *testing.T) {
	g := New()
	a, b, c := uri("A.groovy"), uri("B.groovy"), uri("C.groovy")

	g.UpdateDependencies(c, set(a, b))
	g.UpdateDependencies(c, set(b))

	assert.Empty(t, g.DirectDependents(a))
	assert.Equal(t, []string{"file:///C.groovy"}, sorted(g.DirectDependents(b)))
}

func TestUpdateDependenciesEmptyRemovesForwardEntry(t *testing.T) {
	g := New()
	a, c := uri("A.groovy"), uri("C.groovy")

	g.UpdateDependencies(c, set(a))
	require.Equal(t, 1, g.Size())

	g.UpdateDependencies(c, set())
	assert.Equal(t, 0, g.Size())
	assert.True(t, g.IsEmpty())
	assert.Empty(t, g.DirectDependents(a))
}

func TestNoSelfEdges(t *testing.T) {
	g := New()
	a := uri("A.groovy")
	g.UpdateDependencies(a, set(a))

	assert.Empty(t, g.DirectDependencies(a))
	assert.Empty(t, g.DirectDependents(a))
	assert.True(t, g.IsEmpty())
}

func TestTransitiveDependentsExcludesInput(t *testing.T) {
	g := New()
	a, b, c := uri("A.groovy"), uri("B.groovy"), uri("C.groovy")

	// B depends on A, C depends on A.
	g.UpdateDependencies(b, set(a))
	g.UpdateDependencies(c, set(a))

	got := sorted(g.TransitiveDependents(set(a)))
	assert.Equal(t, []string{"file:///B.groovy", "file:///C.groovy"}, got)

	for _, f := range got {
		assert.NotEqual(t, string(a), f)
	}
}

func TestTransitiveDependentsTerminatesOnCycle(t *testing.T) {
	g := New()
	a, b, c := uri("A.groovy"), uri("B.groovy"), uri("C.groovy")

	// fully-connected cycle: everyone depends on everyone.
	g.UpdateDependencies(a, set(b, c))
	g.UpdateDependencies(b, set(a, c))
	g.UpdateDependencies(c, set(a, b))

	done := make(chan []span.URI, 1)
	go func() { done <- g.TransitiveDependents(set(a)) }()

	select {
	case got := <-done:
		assert.ElementsMatch(t, []span.URI{b, c}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("TransitiveDependents did not terminate on a cyclic graph")
	}
}

func TestRemoveFileScrubsReverseEntriesEvenWhenOnlyADependency(t *testing.T) {
	g := New()
	a, b := uri("A.groovy"), uri("B.groovy")

	// A is only ever referenced as a dependency, never as a dependent.
	g.UpdateDependencies(b, set(a))

	g.RemoveFile(a)

	assert.Empty(t, g.DirectDependents(a))
	assert.Empty(t, g.DirectDependencies(b))
}

func TestRemoveFileClearsForwardEdges(t *testing.T) {
	g := New()
	a, b := uri("A.groovy"), uri("B.groovy")

	g.UpdateDependencies(b, set(a))
	g.RemoveFile(b)

	assert.Equal(t, 0, g.Size())
	assert.Empty(t, g.DirectDependents(a))
}

func TestClear(t *testing.T) {
	g := New()
	g.UpdateDependencies(uri("B.groovy"), set(uri("A.groovy")))
	g.Clear()
	assert.True(t, g.IsEmpty())
}

