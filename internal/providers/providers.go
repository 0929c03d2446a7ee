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

// Package providers implements the request providers:
// definition, references, hover, completion, code actions, rename,
// semantic tokens, document/workspace symbols, inlay hints, and the
// formatter. Every provider shares the same access pattern: resolve a
// URI, find the offset node via the AST index, navigate with the
// frontend's AST-utility contract, translate to an LSP-shaped result.
//
// Providers return this package's own result types rather than raw
// `golang.org/x/tools`/go-lsp wire values wherever the shape is rich
// enough that a protocol library's exact field layout would matter
// (completion items, signature help, semantic tokens, workspace edits);
// the transport layer owns marshaling those onto the wire. Where a
// protocol library's shape already fits (Range, Position) providers use
// it directly; Location is this package's own pairing of a URI with such
// a Range.
package providers

import (
	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"
	lsp "github.com/sourcegraph/go-lsp"

	"github.com/crossplane/crossplane-runtime/pkg/logging"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/filetracker"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/orchestrator"
	"github.com/groovy-lsp/groovy-language-server/internal/scope"
)

// decompiledScheme is the virtual-URI scheme for decompiled external
// classes: `<product>-decompiled://<fqn>`.
const decompiledScheme = "groovy-language-server-decompiled"

// Location is a source range within a URI, the shape every
// position-returning provider below builds on.
type Location struct {
	URI   span.URI
	Range frontend.Range
}

// ToLSP converts a Location to go-lsp's wire type.
func (l Location) ToLSP() lsp.Location {
	return lsp.Location{
		URI:   lsp.DocumentURI(l.URI),
		Range: toLSPRange(l.Range),
	}
}

func toLSPRange(r frontend.Range) lsp.Range {
	return lsp.Range{
		Start: lsp.Position{Line: int(r.Start.Line), Character: int(r.Start.Character)},
		End:   lsp.Position{Line: int(r.End.Line), Character: int(r.End.Character)},
	}
}

// Decompiler produces synthetic source text for an external class when
// a definition/type-definition request has no project-source location
// to point at. Implementations register the text
// under DecompiledURI(fqn) so `$/groovy/decompiledSource` can serve it.
type Decompiler interface {
	Decompile(fqn string) (text string, declRange frontend.Range, ok bool)
}

// DecompiledURI returns the virtual URI for a decompiled class's
// synthetic source. span.URI is a plain string type, so
// constructing one for a non-file scheme is just a conversion; there is
// no on-disk path for NewWorkspace-style path helpers to resolve.
func DecompiledURI(fqn string) span.URI {
	return span.URI(decompiledScheme + "://" + fqn)
}

// SourceLocator resolves an external (non-project) fully-qualified name
// to a concrete on-disk location when one is derivable without a full
// decompile, e.g. a locally vendored or attached-sources jar entry.
// Returns ok=false when no such locator applies, in which case callers
// fall through to Decompiler.
type SourceLocator interface {
	Locate(fqn string) (Location, bool)
	// Search returns the fully-qualified names of every class the
	// locator knows about matching simpleName, distinguishing ones that
	// live under projectPackage from everything else.
	Search(simpleName, projectPackage string) (inProject, other []string)
}

// TestFrameworkDetector recognizes whether a class belongs to a
// test-framework's domain so Completion and DocumentSymbol can layer
// domain-specific behavior on top of the generic AST-driven result.
type TestFrameworkDetector interface {
	// IsSpecClass reports whether cls follows the test framework's
	// spec-class convention (e.g. extends a known base spec type).
	IsSpecClass(cls frontend.ClassNode) bool
	// IsFeatureMethod reports whether m matches the framework's
	// feature-method naming/shape convention.
	IsFeatureMethod(m frontend.MethodNode) bool
	// BlockLabels returns the framework's block-label completion
	// snippets (e.g. "given", "when", "then").
	BlockLabels() []CompletionItem
}

// Provider bundles everything the request providers need to resolve a
// single scope's AST, classpath, and live buffers into LSP-shaped
// results. One Provider is constructed per scope by the Request
// Pipeline; it holds no state of its own beyond its
// dependencies.
type Provider struct {
	scp     *scope.Scope
	ast     frontend.ASTUtilities
	orch    *orchestrator.Orchestrator
	tracker *filetracker.Tracker
	log     logging.Logger

	locator    SourceLocator
	decompiler Decompiler
	testFW     TestFrameworkDetector
	importer   frontend.ImportAnalyzer
}

// Option configures a new Provider.
type Option func(*Provider)

// WithLogger overrides the default no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Provider) { p.log = l }
}

// WithSourceLocator installs the project-source locator used by the
// definition/type-definition/missing-import fallback chains.
func WithSourceLocator(l SourceLocator) Option {
	return func(p *Provider) { p.locator = l }
}

// WithDecompiler installs the decompile-to-virtual-URI fallback used
// when no source location is available for an external symbol.
func WithDecompiler(d Decompiler) Option {
	return func(p *Provider) { p.decompiler = d }
}

// WithTestFrameworkDetector installs the optional test-framework
// recognizer that layers domain-specific completions/symbol decoration
// on top of the generic AST-driven results.
func WithTestFrameworkDetector(d TestFrameworkDetector) Option {
	return func(p *Provider) { p.testFW = d }
}

// WithImportAnalyzer installs the frontend's unused-import analysis used
// by the unused-import code action. Shared with the Diagnostic Handler
//, which runs the same analyzer to produce the hint-severity
// diagnostics these actions respond to.
func WithImportAnalyzer(a frontend.ImportAnalyzer) Option {
	return func(p *Provider) { p.importer = a }
}

// New constructs a Provider bound to scp's AST index, classpath caches,
// and live buffers.
func New(scp *scope.Scope, ast frontend.ASTUtilities, orch *orchestrator.Orchestrator, tracker *filetracker.Tracker, opts ...Option) *Provider {
	p := &Provider{
		scp:     scp,
		ast:     ast,
		orch:    orch,
		tracker: tracker,
		log:     logging.NewNopLogger(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// offsetNode resolves the innermost AST node at pos in uri, the shared
// first step of every position-based provider.
func (p *Provider) offsetNode(uri span.URI, pos protocol.Position) (frontend.Node, bool) {
	return p.scp.Index().NodeAt(uri, int(pos.Line), int(pos.Character))
}

// classpathSymbols returns the scope's classpath symbols, already
// filtered to this scope's own classpath when the cached index came
// from an overlap hit. Errors are logged and degrade to an empty list
// an empty result, never a failed request.
func (p *Provider) classpathSymbols() []classpath.Symbol {
	syms, err := p.scp.ClasspathSymbols()
	if err != nil {
		p.log.Debug("failed to acquire classpath symbols", "error", err)
		return nil
	}
	return syms
}
