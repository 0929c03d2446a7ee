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

package diagnostics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/tools/span"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovy-lsp/groovy-language-server/internal/diagnostics"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend/frontendtest"
)

type fixedCollector struct {
	errs, warns []frontend.CompileMessage
}

func (c fixedCollector) Errors() []frontend.CompileMessage   { return c.errs }
func (c fixedCollector) Warnings() []frontend.CompileMessage { return c.warns }

type fixedUnit struct {
	units []frontend.SourceUnit
}

func (u fixedUnit) Compile(ctx context.Context, phase string) (frontend.ErrorCollector, error) {
	return fixedCollector{}, nil
}
func (u fixedUnit) AST() []frontend.SourceUnit { return u.units }
func (u fixedUnit) ClassLoaderDescriptor() frontend.ClassLoaderDescriptor {
	return frontend.ClassLoaderDescriptor{}
}
func (u fixedUnit) TargetDirectory() string { return "" }
func (u fixedUnit) Close() error            { return nil }

type fixedAnalyzer struct {
	imports map[span.URI][]frontend.UnusedImport
	err     error
	panics  bool
}

func (a fixedAnalyzer) UnusedImports(su frontend.SourceUnit) ([]frontend.UnusedImport, error) {
	if a.panics {
		panic("nil substructure in partially-compiled AST")
	}
	return a.imports[su.URI()], a.err
}

func msg(uri string, line int, text string) frontend.CompileMessage {
	return frontend.CompileMessage{Message: text, URI: span.URI(uri), HasLocation: true, Line: line}
}

func TestComputeConvertsErrorsAndWarnings(t *testing.T) {
	h := diagnostics.New(nil)

	perURI := h.Compute(fixedUnit{}, fixedCollector{
		errs:  []frontend.CompileMessage{msg("file:///a.groovy", 3, "unexpected token")},
		warns: []frontend.CompileMessage{msg("file:///a.groovy", 7, "deprecated")},
	})

	diags := perURI[span.URI("file:///a.groovy")]
	require.Len(t, diags, 2)
	assert.Equal(t, diagnostics.SeverityError, diags[0].Severity)
	assert.Equal(t, diagnostics.SeverityWarning, diags[1].Severity)
}

func TestComputeDropsMessagesWithoutLocator(t *testing.T) {
	h := diagnostics.New(nil)

	perURI := h.Compute(fixedUnit{}, fixedCollector{
		errs: []frontend.CompileMessage{{Message: "lost", URI: span.URI("file:///a.groovy")}},
	})
	assert.Empty(t, perURI)
}

func TestComputeDeduplicatesPerURI(t *testing.T) {
	h := diagnostics.New(nil)

	perURI := h.Compute(fixedUnit{}, fixedCollector{
		errs: []frontend.CompileMessage{
			msg("file:///a.groovy", 3, "unexpected token"),
			msg("file:///a.groovy", 3, "unexpected token"),
		},
	})
	assert.Len(t, perURI[span.URI("file:///a.groovy")], 1)
}

func TestComputeEmitsUnusedImportHints(t *testing.T) {
	uri := span.URI("file:///a.groovy")
	unit := fixedUnit{units: []frontend.SourceUnit{&frontendtest.FakeSourceUnit{SourceURI: uri}}}
	h := diagnostics.New(fixedAnalyzer{imports: map[span.URI][]frontend.UnusedImport{
		uri: {{Name: "java.util.List"}},
	}})

	perURI := h.Compute(unit, fixedCollector{})
	require.Len(t, perURI[uri], 1)
	assert.Equal(t, diagnostics.SeverityHint, perURI[uri][0].Severity)
	assert.True(t, perURI[uri][0].Unnecessary)
}

func TestComputeSurvivesAnalyzerPanicAndError(t *testing.T) {
	uri := span.URI("file:///a.groovy")
	unit := fixedUnit{units: []frontend.SourceUnit{&frontendtest.FakeSourceUnit{SourceURI: uri}}}

	perURI := diagnostics.New(fixedAnalyzer{panics: true}).Compute(unit, fixedCollector{})
	assert.Empty(t, perURI)

	perURI = diagnostics.New(fixedAnalyzer{err: errors.New("boom")}).Compute(unit, fixedCollector{})
	assert.Empty(t, perURI)
}

func TestPublishSetClearsStaleURIs(t *testing.T) {
	h := diagnostics.New(nil)
	file1 := span.URI("file:///file1.groovy")
	file2 := span.URI("file:///file2.groovy")

	round1 := h.Compute(fixedUnit{}, fixedCollector{errs: []frontend.CompileMessage{
		msg(string(file1), 3, "err1"),
		msg(string(file2), 1, "err2"),
	}})
	set := h.PublishSet(round1)
	require.Len(t, set, 2)

	round2 := h.Compute(fixedUnit{}, fixedCollector{errs: []frontend.CompileMessage{
		msg(string(file2), 1, "err2"),
	}})
	set = h.PublishSet(round2)
	require.Len(t, set, 2)
	assert.Empty(t, set[file1], "fixed file must get an empty stale-clearing packet")
	assert.Len(t, set[file2], 1)

	// a third identical round publishes only file2: file1 was already cleared.
	round3 := h.Compute(fixedUnit{}, fixedCollector{errs: []frontend.CompileMessage{
		msg(string(file2), 1, "err2"),
	}})
	set = h.PublishSet(round3)
	require.Len(t, set, 1)
	assert.Len(t, set[file2], 1)
}

func TestToLSPMapsSeverity(t *testing.T) {
	out := diagnostics.ToLSP([]diagnostics.Diagnostic{
		{Message: "e", Severity: diagnostics.SeverityError},
		{Message: "w", Severity: diagnostics.SeverityWarning},
		{Message: "h", Severity: diagnostics.SeverityHint},
	})
	require.Len(t, out, 3)
	assert.Equal(t, lsp.Error, out[0].Severity)
	assert.Equal(t, lsp.DiagnosticSeverity(lsp.Warning), out[1].Severity)
	assert.Equal(t, lsp.DiagnosticSeverity(lsp.Hint), out[2].Severity)
	assert.Equal(t, "groovy-language-server", out[0].Source)
}
