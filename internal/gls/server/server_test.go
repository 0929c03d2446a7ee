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

package server

import (
	"context"
	"testing"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/indexcache"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/scancache"
	"github.com/groovy-lsp/groovy-language-server/internal/diagnostics"
	"github.com/groovy-lsp/groovy-language-server/internal/filetracker"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend/frontendtest"
	"github.com/groovy-lsp/groovy-language-server/internal/gls"
	"github.com/groovy-lsp/groovy-language-server/internal/orchestrator"
	"github.com/groovy-lsp/groovy-language-server/internal/pipeline"
)

type okCollector struct{}

func (okCollector) Errors() []frontend.CompileMessage   { return nil }
func (okCollector) Warnings() []frontend.CompileMessage { return nil }

type fakeUnit struct {
	world func() []frontend.SourceUnit
}

func (u *fakeUnit) Compile(ctx context.Context, phase string) (frontend.ErrorCollector, error) {
	return okCollector{}, nil
}
func (u *fakeUnit) AST() []frontend.SourceUnit { return u.world() }
func (u *fakeUnit) ClassLoaderDescriptor() frontend.ClassLoaderDescriptor {
	return frontend.ClassLoaderDescriptor{VersionTag: "v1"}
}
func (u *fakeUnit) TargetDirectory() string { return "" }
func (u *fakeUnit) Close() error            { return nil }

type fakeFactory struct {
	unit *fakeUnit
}

func (f *fakeFactory) Create(root span.URI, tracker frontend.ContentsProvider, forced map[span.URI]struct{}) (frontend.CompilationUnit, error) {
	return f.unit, nil
}

type noopAST struct{}

func (noopAST) GetDefinition(n frontend.Node, strict bool) (frontend.Node, bool) { return nil, false }
func (noopAST) GetReferences(n frontend.Node) []frontend.Node                    { return nil }
func (noopAST) GetTypeDefinition(n frontend.Node) (frontend.Node, bool)          { return nil, false }
func (noopAST) GetEnclosingNodeOfType(n frontend.Node, kind frontend.NodeKind) (frontend.Node, bool) {
	return nil, false
}
func (noopAST) GetMethodFromCall(call frontend.Node) (frontend.MethodNode, bool) { return nil, false }
func (noopAST) GetTypeOf(expr frontend.Node) (string, bool)                      { return "", false }

func newTestServer(t *testing.T, world func() []frontend.SourceUnit) (*Server, *gls.DecompiledRegistry) {
	t.Helper()
	scanner := func(urls []string, rejected []string) ([]classpath.Symbol, error) { return nil, nil }
	scans := scancache.New(scanner, scancache.WithFS(afero.NewMemMapFs()), scancache.WithCacheDir("/cache"))
	pipe := pipeline.New(
		filetracker.New(),
		orchestrator.New(),
		scans,
		indexcache.New(scans),
		diagnostics.New(nil),
		&fakeFactory{unit: &fakeUnit{world: world}},
		noopAST{},
	)
	pipe.AddRoot(span.URI("file:///proj"))
	reg := gls.NewDecompiledRegistry()
	return New(pipe, reg), reg
}

func TestCapabilitiesDeclareEverySurface(t *testing.T) {
	caps := capabilities()

	assert.True(t, caps.DefinitionProvider)
	assert.True(t, caps.ReferencesProvider)
	assert.True(t, caps.HoverProvider)
	assert.Equal(t, []string{".", "@"}, caps.CompletionProvider.TriggerCharacters)
	assert.Equal(t, []string{"(", ","}, caps.SignatureHelpProvider.TriggerCharacters)

	st, ok := caps.SemanticTokensProvider.(protocol.SemanticTokensOptions)
	require.True(t, ok)
	assert.Equal(t, "namespace", st.Legend.TokenTypes[0])
	assert.Len(t, st.Legend.TokenTypes, 14)
	assert.Len(t, st.Legend.TokenModifiers, 6)
}

func TestDocumentSymbolTranslatesTree(t *testing.T) {
	fileA := span.URI("file:///proj/A.groovy")
	method := frontendtest.Method("run", "void").AtRange(1, 4, 2, 4)
	class := frontendtest.Class("pkg.A").WithMethods(method).AtRange(0, 0, 3, 0)
	world := func() []frontend.SourceUnit {
		return []frontend.SourceUnit{
			&frontendtest.FakeSourceUnit{SourceURI: fileA, SourceNodes: []frontend.Node{class, method}},
		}
	}

	s, _ := newTestServer(t, world)
	_, err := s.pipe.DidOpen(context.Background(), fileA, "class A { void run() {} }")
	require.NoError(t, err)

	syms := s.DocumentSymbol(context.Background(), &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.URIFromSpanURI(fileA)},
	})
	require.Len(t, syms, 1)
	assert.Equal(t, "pkg.A", syms[0].Name)
	require.Len(t, syms[0].Children, 1)
	assert.Equal(t, "run", syms[0].Children[0].Name)
}

func TestWorkspaceSymbolSearchesAllScopes(t *testing.T) {
	fileA := span.URI("file:///proj/A.groovy")
	class := frontendtest.Class("pkg.Account").AtRange(0, 0, 3, 0)
	world := func() []frontend.SourceUnit {
		return []frontend.SourceUnit{
			&frontendtest.FakeSourceUnit{SourceURI: fileA, SourceNodes: []frontend.Node{class}},
		}
	}

	s, _ := newTestServer(t, world)
	_, err := s.pipe.DidOpen(context.Background(), fileA, "class Account {}")
	require.NoError(t, err)

	syms := s.WorkspaceSymbol(context.Background(), &protocol.WorkspaceSymbolParams{Query: "acc"})
	require.Len(t, syms, 1)
	assert.Equal(t, "pkg.Account", syms[0].Name)
}

func TestDecompiledSourceServesRegisteredText(t *testing.T) {
	s, reg := newTestServer(t, func() []frontend.SourceUnit { return nil })
	uri := span.URI("groovy-language-server-decompiled://java.util.List")
	reg.Put(uri, "interface List {}")

	res := s.DecompiledSource(context.Background(), &DecompiledSourceParams{URI: string(uri)})
	require.NotNil(t, res)
	assert.Equal(t, decompiledSourceResult{Text: "interface List {}"}, res)

	assert.Nil(t, s.DecompiledSource(context.Background(), &DecompiledSourceParams{URI: "groovy-language-server-decompiled://absent.Class"}))
}

func TestExitUsesInjectedExitFunc(t *testing.T) {
	var code = -1
	s, _ := newTestServer(t, func() []frontend.SourceUnit { return nil })
	WithExitFunc(func(c int) { code = c })(s)

	s.Exit(context.Background())
	assert.Equal(t, 0, code)
}
