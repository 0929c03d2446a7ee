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

package scope_test

import (
	"context"
	"testing"

	"github.com/golang/tools/span"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/indexcache"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/scancache"
	"github.com/groovy-lsp/groovy-language-server/internal/filetracker"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend/frontendtest"
	"github.com/groovy-lsp/groovy-language-server/internal/orchestrator"
	"github.com/groovy-lsp/groovy-language-server/internal/scope"
)

type emptyOKCollector struct{}

func (emptyOKCollector) Errors() []frontend.CompileMessage   { return nil }
func (emptyOKCollector) Warnings() []frontend.CompileMessage { return nil }

type fakeUnit struct {
	world      func() []frontend.SourceUnit
	closeCount int
}

func (u *fakeUnit) Compile(ctx context.Context, phase string) (frontend.ErrorCollector, error) {
	return emptyOKCollector{}, nil
}
func (u *fakeUnit) AST() []frontend.SourceUnit { return u.world() }
func (u *fakeUnit) ClassLoaderDescriptor() frontend.ClassLoaderDescriptor {
	return frontend.ClassLoaderDescriptor{VersionTag: "v1"}
}
func (u *fakeUnit) TargetDirectory() string { return "" }
func (u *fakeUnit) Close() error            { u.closeCount++; return nil }

type fakeFactory struct {
	unit       *fakeUnit
	createCalls int
}

func (f *fakeFactory) Create(root span.URI, tracker frontend.ContentsProvider, forced map[span.URI]struct{}) (frontend.CompilationUnit, error) {
	f.createCalls++
	return f.unit, nil
}

func newTestScope(t *testing.T, world func() []frontend.SourceUnit) (*scope.Scope, *fakeFactory) {
	t.Helper()
	factory := &fakeFactory{unit: &fakeUnit{world: world}}
	tracker := filetracker.New()
	orch := orchestrator.New()
	scanner := func(urls []string, rejected []string) ([]classpath.Symbol, error) { return nil, nil }
	scans := scancache.New(scanner, scancache.WithFS(afero.NewMemMapFs()), scancache.WithCacheDir("/cache"))
	idxs := indexcache.New(scans)

	s := scope.New(span.URI("file:///proj"), factory, tracker, orch, scans, idxs)
	return s, factory
}

func TestRecompileFullPopulatesIndexAndGraph(t *testing.T) {
	fileA := span.URI("file:///A.groovy")
	fileB := span.URI("file:///B.groovy")

	methodA := frontendtest.Method("m", "void").AtRange(1, 0, 2, 0)
	classA := frontendtest.Class("pkg.A").WithMethods(methodA).AtRange(0, 0, 3, 0)
	classB := frontendtest.Class("pkg.B").AtRange(0, 0, 3, 0)

	world := func() []frontend.SourceUnit {
		return []frontend.SourceUnit{
			&frontendtest.FakeSourceUnit{SourceURI: fileA, SourceNodes: []frontend.Node{classA, methodA}},
			&frontendtest.FakeSourceUnit{SourceURI: fileB, SourceNodes: []frontend.Node{classB}, SourceDeps: []string{"pkg.A"}},
		}
	}

	s, _ := newTestScope(t, world)
	require.NoError(t, s.RecompileFull(context.Background()))

	_, ok := s.Index().ClassNodeByName("pkg.A")
	assert.True(t, ok)

	dependents := s.Graph().DirectDependents(fileA)
	assert.Contains(t, dependents, fileB)
}

func TestRecompileIncrementalCascadesOnSignatureChange(t *testing.T) {
	fileA := span.URI("file:///A.groovy")
	fileB := span.URI("file:///B.groovy")

	methodA := frontendtest.Method("m", "void").AtRange(1, 0, 2, 0)
	classA := frontendtest.Class("pkg.A").WithMethods(methodA).AtRange(0, 0, 3, 0)
	classB := frontendtest.Class("pkg.B").AtRange(0, 0, 3, 0)

	world := func() []frontend.SourceUnit {
		return []frontend.SourceUnit{
			&frontendtest.FakeSourceUnit{SourceURI: fileA, SourceNodes: []frontend.Node{classA, methodA}},
			&frontendtest.FakeSourceUnit{SourceURI: fileB, SourceNodes: []frontend.Node{classB}, SourceDeps: []string{"pkg.A"}},
		}
	}

	s, factory := newTestScope(t, world)
	require.NoError(t, s.RecompileFull(context.Background()))
	initialCalls := factory.createCalls

	// simulate an edit to A that changes its public signature.
	methodA.NodeReturnType = "String"

	require.NoError(t, s.RecompileIncremental(context.Background(), map[span.URI]struct{}{fileA: {}}))

	// recompiling A must have cascaded into a second incremental round for B.
	assert.Greater(t, factory.createCalls, initialCalls+1)
}

func TestRecompileIncrementalNoCascadeWhenSignatureUnchanged(t *testing.T) {
	fileA := span.URI("file:///A.groovy")
	fileB := span.URI("file:///B.groovy")

	methodA := frontendtest.Method("m", "void").AtRange(1, 0, 2, 0)
	classA := frontendtest.Class("pkg.A").WithMethods(methodA).AtRange(0, 0, 3, 0)
	classB := frontendtest.Class("pkg.B").AtRange(0, 0, 3, 0)

	world := func() []frontend.SourceUnit {
		return []frontend.SourceUnit{
			&frontendtest.FakeSourceUnit{SourceURI: fileA, SourceNodes: []frontend.Node{classA, methodA}},
			&frontendtest.FakeSourceUnit{SourceURI: fileB, SourceNodes: []frontend.Node{classB}, SourceDeps: []string{"pkg.A"}},
		}
	}

	s, factory := newTestScope(t, world)
	require.NoError(t, s.RecompileFull(context.Background()))
	afterFull := factory.createCalls

	require.NoError(t, s.RecompileIncremental(context.Background(), map[span.URI]struct{}{fileA: {}}))

	// exactly one additional create call: no cascade since A's signature didn't change.
	assert.Equal(t, afterFull+1, factory.createCalls)
}

func TestTeardownClearsState(t *testing.T) {
	fileA := span.URI("file:///A.groovy")
	classA := frontendtest.Class("pkg.A").AtRange(0, 0, 1, 0)
	world := func() []frontend.SourceUnit {
		return []frontend.SourceUnit{&frontendtest.FakeSourceUnit{SourceURI: fileA, SourceNodes: []frontend.Node{classA}}}
	}

	s, _ := newTestScope(t, world)
	require.NoError(t, s.RecompileFull(context.Background()))

	require.NoError(t, s.Teardown())

	_, ok := s.Index().ClassNodeByName("pkg.A")
	assert.False(t, ok)
	assert.True(t, s.Graph().IsEmpty())
}

func TestMarkOpenAndClosedTracksEmptiness(t *testing.T) {
	fileA := span.URI("file:///A.groovy")
	world := func() []frontend.SourceUnit { return nil }
	s, _ := newTestScope(t, world)

	s.MarkOpen(fileA)
	assert.True(t, s.MarkClosed(fileA), "closing the only open file must report the scope now empty")
}
