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

package providers_test

import (
	"context"
	"testing"

	"github.com/golang/tools/span"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/indexcache"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/scancache"
	"github.com/groovy-lsp/groovy-language-server/internal/filetracker"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/orchestrator"
	"github.com/groovy-lsp/groovy-language-server/internal/scope"
)

type emptyOKCollector struct{}

func (emptyOKCollector) Errors() []frontend.CompileMessage   { return nil }
func (emptyOKCollector) Warnings() []frontend.CompileMessage { return nil }

type fakeUnit struct {
	world func() []frontend.SourceUnit
}

func (u *fakeUnit) Compile(ctx context.Context, phase string) (frontend.ErrorCollector, error) {
	return emptyOKCollector{}, nil
}
func (u *fakeUnit) AST() []frontend.SourceUnit { return u.world() }
func (u *fakeUnit) ClassLoaderDescriptor() frontend.ClassLoaderDescriptor {
	return frontend.ClassLoaderDescriptor{VersionTag: "v1"}
}
func (u *fakeUnit) TargetDirectory() string { return "" }
func (u *fakeUnit) Close() error            { return nil }

type fakeFactory struct{ unit *fakeUnit }

func (f *fakeFactory) Create(root span.URI, tracker frontend.ContentsProvider, forced map[span.URI]struct{}) (frontend.CompilationUnit, error) {
	return f.unit, nil
}

// fakeAST is a settable frontend.ASTUtilities fixture: every provider
// test that needs navigation (as opposed to just AST-index lookup)
// wires its expected responses directly rather than resolving them.
type fakeAST struct {
	typeOf       map[frontend.Node]string
	methodOfCall map[frontend.Node]frontend.MethodNode
}

func newFakeAST() *fakeAST {
	return &fakeAST{
		typeOf:       make(map[frontend.Node]string),
		methodOfCall: make(map[frontend.Node]frontend.MethodNode),
	}
}

func (a *fakeAST) GetDefinition(n frontend.Node, strict bool) (frontend.Node, bool) { return nil, false }
func (a *fakeAST) GetReferences(n frontend.Node) []frontend.Node                    { return nil }
func (a *fakeAST) GetTypeDefinition(n frontend.Node) (frontend.Node, bool)          { return nil, false }
func (a *fakeAST) GetEnclosingNodeOfType(n frontend.Node, kind frontend.NodeKind) (frontend.Node, bool) {
	return nil, false
}
func (a *fakeAST) GetMethodFromCall(call frontend.Node) (frontend.MethodNode, bool) {
	m, ok := a.methodOfCall[call]
	return m, ok
}
func (a *fakeAST) GetTypeOf(expr frontend.Node) (string, bool) {
	t, ok := a.typeOf[expr]
	return t, ok
}

// newTestScope builds a real *scope.Scope backed by an in-memory
// classpath scan cache, the same harness internal/scope's own tests use.
func newTestScope(t *testing.T, world func() []frontend.SourceUnit) *scope.Scope {
	t.Helper()
	factory := &fakeFactory{unit: &fakeUnit{world: world}}
	tracker := filetracker.New()
	orch := orchestrator.New()
	scanner := func(urls []string, rejected []string) ([]classpath.Symbol, error) { return nil, nil }
	scans := scancache.New(scanner, scancache.WithFS(afero.NewMemMapFs()), scancache.WithCacheDir("/cache"))
	idxs := indexcache.New(scans)

	s := scope.New(span.URI("file:///proj"), factory, tracker, orch, scans, idxs)
	require.NoError(t, s.RecompileFull(context.Background()))
	return s
}
