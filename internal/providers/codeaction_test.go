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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/indexcache"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/scancache"
	"github.com/groovy-lsp/groovy-language-server/internal/filetracker"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend/frontendtest"
	"github.com/groovy-lsp/groovy-language-server/internal/orchestrator"
	"github.com/groovy-lsp/groovy-language-server/internal/providers"
	"github.com/groovy-lsp/groovy-language-server/internal/scope"
)

func TestUnresolvedClassName(t *testing.T) {
	name, ok := providers.UnresolvedClassName("unable to resolve class Widget")
	require.True(t, ok)
	assert.Equal(t, "Widget", name)

	_, ok = providers.UnresolvedClassName("unexpected token: }")
	assert.False(t, ok)
}

type fixedLocator struct {
	inProject, other []string
}

func (l fixedLocator) Locate(fqn string) (providers.Location, bool) {
	return providers.Location{}, false
}

func (l fixedLocator) Search(simpleName, projectPackage string) ([]string, []string) {
	return l.inProject, l.other
}

func TestMissingImportActionsOrdersByTier(t *testing.T) {
	fileMain := span.URI("file:///proj/Main.groovy")
	fileOther := span.URI("file:///proj/Widget.groovy")

	main := frontendtest.Class("app.Main").AtRange(0, 0, 5, 0)
	astLocal := frontendtest.Class("local.Widget").AtRange(0, 0, 5, 0)
	astLocal.NodeName = "Widget"

	world := func() []frontend.SourceUnit {
		return []frontend.SourceUnit{
			&frontendtest.FakeSourceUnit{SourceURI: fileMain, SourceNodes: []frontend.Node{main}},
			&frontendtest.FakeSourceUnit{SourceURI: fileOther, SourceNodes: []frontend.Node{astLocal}},
		}
	}

	factory := &fakeFactory{unit: &fakeUnit{world: world}}
	scanner := func(urls []string, rejected []string) ([]classpath.Symbol, error) {
		return []classpath.Symbol{
			{FullyQualifiedName: "ext.Widget", SimpleName: "Widget", PackageName: "ext", ClasspathElementPath: "/lib/ext.jar"},
		}, nil
	}
	scans := scancache.New(scanner, scancache.WithFS(afero.NewMemMapFs()), scancache.WithCacheDir("/cache"))
	idxs := indexcache.New(scans)
	s := scope.New(span.URI("file:///proj"), factory, filetracker.New(), orchestrator.New(), scans, idxs)
	require.NoError(t, s.RecompileFull(context.Background()))

	locator := fixedLocator{
		inProject: []string{"proj.util.Widget", "app.Widget"}, // app.Widget is in the current package and must be dropped
		other:     []string{"vendor.Widget"},
	}
	p := providers.New(s, newFakeAST(), nil, nil, providers.WithSourceLocator(locator))

	actions := p.MissingImportActions(fileMain, "Widget")
	require.Len(t, actions, 4)
	assert.Equal(t, "Import proj.util.Widget", actions[0].Title)
	assert.Equal(t, "Import local.Widget", actions[1].Title)
	assert.Equal(t, "Import vendor.Widget", actions[2].Title)
	assert.Equal(t, "Import ext.Widget", actions[3].Title)

	// every action is an insert at the top of the requesting file.
	edits := actions[0].Edit.Changes[fileMain]
	require.Len(t, edits, 1)
	assert.Equal(t, "import proj.util.Widget\n", edits[0].NewText)
	assert.Equal(t, uint32(0), edits[0].Range.Start.Line)
}

type fixedImporter struct {
	imports []frontend.UnusedImport
}

func (a fixedImporter) UnusedImports(su frontend.SourceUnit) ([]frontend.UnusedImport, error) {
	return a.imports, nil
}

func TestUnusedImportActionsOffersAggregateForTwoOrMore(t *testing.T) {
	fileA := span.URI("file:///proj/A.groovy")
	world := func() []frontend.SourceUnit { return nil }
	s := newTestScope(t, world)

	importer := fixedImporter{imports: []frontend.UnusedImport{
		{Name: "java.util.List", HasRange: true, Range: frontendtest.Method("x", "").AtRange(1, 0, 1, 21).Range()},
		{Name: "java.util.Map", HasRange: true, Range: frontendtest.Method("x", "").AtRange(2, 0, 2, 20).Range()},
	}}
	p := providers.New(s, newFakeAST(), nil, nil, providers.WithImportAnalyzer(importer))

	actions := p.UnusedImportActions(&frontendtest.FakeSourceUnit{SourceURI: fileA})
	require.Len(t, actions, 3)
	assert.Equal(t, "Remove unused import java.util.List", actions[0].Title)
	assert.Equal(t, "Remove all unused imports", actions[2].Title)

	// line-delete edit: the whole import line goes, newline included.
	edit := actions[0].Edit.Changes[fileA][0]
	assert.Equal(t, uint32(1), edit.Range.Start.Line)
	assert.Equal(t, uint32(2), edit.Range.End.Line)
	assert.Equal(t, "", edit.NewText)
}

func TestUnusedImportActionsSingleImportHasNoAggregate(t *testing.T) {
	fileA := span.URI("file:///proj/A.groovy")
	s := newTestScope(t, func() []frontend.SourceUnit { return nil })

	importer := fixedImporter{imports: []frontend.UnusedImport{
		{Name: "java.util.List", HasRange: true, Range: frontendtest.Method("x", "").AtRange(0, 0, 0, 21).Range()},
	}}
	p := providers.New(s, newFakeAST(), nil, nil, providers.WithImportAnalyzer(importer))

	actions := p.UnusedImportActions(&frontendtest.FakeSourceUnit{SourceURI: fileA})
	assert.Len(t, actions, 1)
}
