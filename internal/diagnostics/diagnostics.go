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

// Package diagnostics turns a compile round's unused-import findings and error-collector
// messages into deduplicated per-URI diagnostic sets, and tracks what
// was published last round so stale markers get cleared in the editor.
package diagnostics

import (
	"fmt"

	"sync"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"
	lsp "github.com/sourcegraph/go-lsp"

	"github.com/crossplane/crossplane-runtime/pkg/logging"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// sourceName tags every diagnostic this handler produces.
const sourceName = "groovy-language-server"

// unnecessaryHint marks a diagnostic as LSP's "unnecessary" flavour.
// go-lsp's Diagnostic predates DiagnosticTag, so the tag is carried on
// our own Diagnostic and folded into the message instead of a protocol
// field.
const unnecessaryHint = "unnecessary"

// Severity is this package's own severity enum, translated to go-lsp's
// DiagnosticSeverity only at the point of publication (ToLSP).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityHint
)

// Diagnostic is one finding attached to a range within a single URI.
type Diagnostic struct {
	Range       frontend.Range
	Message     string
	Severity    Severity
	Unnecessary bool
}

func (d Diagnostic) dedupKey() string {
	r := d.Range
	return fmt.Sprintf("%d:%d-%d:%d|%d|%s",
		r.Start.Line, r.Start.Character, r.End.Line, r.End.Character, d.Severity, d.Message)
}

// Handler computes per-URI diagnostic sets across compile rounds and
// remembers the previous round's published URIs so it can emit
// stale-clearing empty packets.
type Handler struct {
	log      logging.Logger
	analyzer frontend.ImportAnalyzer

	mu sync.Mutex
	// previous is keyed by project root: each scope's rounds only ever
	// clear that scope's own stale URIs, never a sibling project's.
	previous map[span.URI]map[span.URI][]Diagnostic
}

// Option configures a new Handler.
type Option func(*Handler)

// WithLogger overrides the default no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// New constructs a Handler. analyzer may be nil, in which case the
// unused-import analysis step is skipped entirely (frontend has not
// wired one up).
func New(analyzer frontend.ImportAnalyzer, opts ...Option) *Handler {
	h := &Handler{
		log:      logging.NewNopLogger(),
		analyzer: analyzer,
		previous: make(map[span.URI]map[span.URI][]Diagnostic),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Compute runs the full per-round analysis:
// unused-import hints, error-collector conversion, and per-URI dedup.
// It does not update the stale-clearing state; call PublishSet with the
// result to get the actual packets to send and advance that state.
func (h *Handler) Compute(unit frontend.CompilationUnit, collector frontend.ErrorCollector) map[span.URI][]Diagnostic {
	perURI := make(map[span.URI][]Diagnostic)

	if h.analyzer != nil {
		for _, su := range unit.AST() {
			for _, imp := range h.safeUnusedImports(su) {
				d := Diagnostic{
					Message:     fmt.Sprintf("unused import %q", imp.Name),
					Severity:    SeverityHint,
					Unnecessary: true,
				}
				if imp.HasRange {
					d.Range = imp.Range
				}
				perURI[su.URI()] = append(perURI[su.URI()], d)
			}
		}
	}

	if collector != nil {
		for _, m := range collector.Errors() {
			h.appendMessage(perURI, m, SeverityError)
		}
		for _, m := range collector.Warnings() {
			h.appendMessage(perURI, m, SeverityWarning)
		}
	}

	for u, diags := range perURI {
		perURI[u] = dedup(diags)
	}
	return perURI
}

// safeUnusedImports wraps the frontend's unused-import analysis in a
// recover, since a partially-compiled AST can carry null substructures
// the analyzer wasn't written to expect.
func (h *Handler) safeUnusedImports(su frontend.SourceUnit) (result []frontend.UnusedImport) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Debug("unused-import analysis panicked, skipping file", "uri", su.URI(), "recovered", r)
			result = nil
		}
	}()

	imports, err := h.analyzer.UnusedImports(su)
	if err != nil {
		h.log.Debug("unused-import analysis failed, skipping file", "uri", su.URI(), "error", err)
		return nil
	}
	return imports
}

func (h *Handler) appendMessage(perURI map[span.URI][]Diagnostic, m frontend.CompileMessage, sev Severity) {
	if !m.HasLocation {
		h.log.Debug("dropping compile message with no usable source locator", "message", m.Message)
		return
	}
	p := protocol.Position{Line: uint32(m.Line), Character: uint32(m.Col)}
	pos := frontend.Range{Start: p, End: p}
	perURI[m.URI] = append(perURI[m.URI], Diagnostic{
		Range:    pos,
		Message:  m.Message,
		Severity: sev,
	})
}

func dedup(in []Diagnostic) []Diagnostic {
	seen := make(map[string]struct{}, len(in))
	out := make([]Diagnostic, 0, len(in))
	for _, d := range in {
		k := d.dedupKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	return out
}

// PublishSetFor computes the actual publish packets for one scope's
// round: the current diagnostics for every URI that has any, plus an
// empty packet for every URI that had diagnostics in that scope's last
// round but has none now. It replaces the scope's "previous round"
// state with current as a side effect, so it must be called exactly
// once per round.
func (h *Handler) PublishSetFor(root span.URI, current map[span.URI][]Diagnostic) map[span.URI][]Diagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[span.URI][]Diagnostic, len(current))
	for u, d := range current {
		out[u] = d
	}
	for u := range h.previous[root] {
		if _, ok := current[u]; !ok {
			out[u] = nil
		}
	}
	h.previous[root] = current
	return out
}

// PublishSet is PublishSetFor for a process with a single project root.
func (h *Handler) PublishSet(current map[span.URI][]Diagnostic) map[span.URI][]Diagnostic {
	return h.PublishSetFor("", current)
}

// ForgetRoot drops the previous-round state for a torn-down scope so a
// recreated scope starts from a clean slate.
func (h *Handler) ForgetRoot(root span.URI) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.previous, root)
}

// ToLSP converts one URI's diagnostics to go-lsp's wire type.
func ToLSP(diags []Diagnostic) []lsp.Diagnostic {
	out := make([]lsp.Diagnostic, 0, len(diags))
	for _, d := range diags {
		msg := d.Message
		if d.Unnecessary {
			msg += " (" + unnecessaryHint + ")"
		}
		out = append(out, lsp.Diagnostic{
			Range: lsp.Range{
				Start: lsp.Position{Line: int(d.Range.Start.Line), Character: int(d.Range.Start.Character)},
				End:   lsp.Position{Line: int(d.Range.End.Line), Character: int(d.Range.End.Character)},
			},
			Severity: severityToLSP(d.Severity),
			Source:   sourceName,
			Message:  msg,
		})
	}
	return out
}

func severityToLSP(s Severity) lsp.DiagnosticSeverity {
	switch s {
	case SeverityError:
		return lsp.Error
	case SeverityWarning:
		return lsp.Warning
	default:
		return lsp.Hint
	}
}
