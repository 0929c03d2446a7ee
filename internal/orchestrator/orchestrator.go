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

// Package orchestrator drives compilation: unit creation/recreation,
// full and incremental AST visiting into an astindex.Index,
// fault-tolerant compilation, and the
// placeholder-injection dance completion/signature-help providers use
// to ask the frontend "what would go here".
package orchestrator

import (
	"context"
	"errors"
	"regexp"
	"sync"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"
	"github.com/spf13/afero"

	"github.com/crossplane/crossplane-runtime/pkg/logging"

	"github.com/groovy-lsp/groovy-language-server/internal/astindex"
	"github.com/groovy-lsp/groovy-language-server/internal/filetracker"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

const (
	phaseFull        = "full"
	phaseIncremental = "incremental"
)

// Orchestrator drives compilation-unit lifecycle and AST visiting for
// one or more project scopes. It holds no per-scope state itself;
// the owning project scope keeps the unit, index, and fault
// suppressor it passes in.
type Orchestrator struct {
	fs           afero.Fs
	log          logging.Logger
	benignFaults []frontend.BenignFault

	newExprRe *regexp.Regexp
}

// Option configures a new Orchestrator.
type Option func(*Orchestrator)

// WithFS overrides the default OS filesystem, used for target-directory
// cleanup.
func WithFS(fs afero.Fs) Option {
	return func(o *Orchestrator) { o.fs = fs }
}

// WithLogger overrides the default no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithBenignFaults configures the known-benign compiler-bug patterns
// suppressed after their first occurrence per scope.
func WithBenignFaults(faults []frontend.BenignFault) Option {
	return func(o *Orchestrator) { o.benignFaults = faults }
}

// New constructs an Orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fs:        afero.NewOsFs(),
		log:       logging.NewNopLogger(),
		newExprRe: regexp.MustCompile(`new\s+[A-Za-z_][A-Za-z0-9_]*$`),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CreateOrUpdateUnit replaces a scope's compilation unit: if
// oldUnit has a target directory on disk, it is recursively removed
// before the replacement unit is created via factory. A failed removal
// aborts with a nil unit. Classpath scanning is deliberately not
// triggered here; it is deferred to the first provider that needs it.
func (o *Orchestrator) CreateOrUpdateUnit(
	root span.URI,
	factory frontend.CompilationUnitFactory,
	tracker frontend.ContentsProvider,
	oldUnit frontend.CompilationUnit,
	forcedInvalidations map[span.URI]struct{},
) (frontend.CompilationUnit, error) {
	if oldUnit != nil {
		if dir := oldUnit.TargetDirectory(); dir != "" {
			if err := o.fs.RemoveAll(dir); err != nil {
				return nil, err
			}
		}
	}
	return factory.Create(root, tracker, forcedInvalidations)
}

// VisitAST performs a full AST visit: every source unit the
// compilation unit currently knows about is registered into a brand
// new, empty astindex.Index.
func (o *Orchestrator) VisitAST(unit frontend.CompilationUnit) *astindex.Index {
	idx := astindex.New()
	for _, su := range unit.AST() {
		registerSourceUnit(idx, su)
	}
	return idx
}

// VisitASTIncremental performs the snapshot-exclude-and-revisit
// incremental visit: a snapshot of existing that
// excludes uris is taken, then the frontend's current data for exactly
// those uris is registered into the snapshot. existing remains live and
// unmodified for any reader still holding it.
func (o *Orchestrator) VisitASTIncremental(unit frontend.CompilationUnit, existing *astindex.Index, uris map[span.URI]struct{}) *astindex.Index {
	next := existing.SnapshotExcluding(uris)
	for _, su := range unit.AST() {
		if _, ok := uris[su.URI()]; !ok {
			continue
		}
		registerSourceUnit(next, su)
	}
	return next
}

func registerSourceUnit(idx *astindex.Index, su frontend.SourceUnit) {
	nodes := su.Nodes()

	var classNodes []frontend.ClassNode
	parents := make(map[frontend.Node]frontend.Node)
	for _, n := range nodes {
		cls, ok := n.(frontend.ClassNode)
		if !ok {
			continue
		}
		classNodes = append(classNodes, cls)
		for _, m := range cls.Methods() {
			parents[frontend.Node(m)] = frontend.Node(cls)
		}
		for _, f := range cls.Fields() {
			parents[frontend.Node(f)] = frontend.Node(cls)
		}
		for _, p := range cls.Properties() {
			parents[frontend.Node(p)] = frontend.Node(cls)
		}
	}

	idx.Register(su.URI(), nodes, classNodes, parents, su.DependsOn())
}

// emptyCollector is handed back when a recovered compile fault left no
// usable ErrorCollector from the frontend.
type emptyCollector struct {
	msgs []frontend.CompileMessage
}

func (c emptyCollector) Errors() []frontend.CompileMessage   { return c.msgs }
func (c emptyCollector) Warnings() []frontend.CompileMessage { return nil }

// FaultSuppressor tracks, per project scope, which known-benign fault
// patterns have already surfaced once. Construct one per scope and pass
// it to Compile/CompileIncremental.
type FaultSuppressor struct {
	mu   sync.Mutex
	seen map[int]struct{}
}

// NewFaultSuppressor constructs an empty FaultSuppressor.
func NewFaultSuppressor() *FaultSuppressor {
	return &FaultSuppressor{seen: make(map[int]struct{})}
}

// shouldSuppress reports whether the benign fault at index faultIdx has
// already been reported once for this scope, marking it seen as a side
// effect of the first call.
func (s *FaultSuppressor) shouldSuppress(faultIdx int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[faultIdx]; ok {
		return true
	}
	s.seen[faultIdx] = struct{}{}
	return false
}

// Compile runs a full compile, catching and converting
// CompilationFailed/CompilerBug/linkage errors into a warning so the
// server stays alive. Any other error is propagated
// unchanged, since it falls outside the frontend's documented fault
// taxonomy.
func (o *Orchestrator) Compile(ctx context.Context, unit frontend.CompilationUnit, faults *FaultSuppressor) (frontend.ErrorCollector, error) {
	return o.compilePhase(ctx, unit, phaseFull, faults)
}

// CompileIncremental runs an incremental compile with the same fault
// tolerance as Compile.
func (o *Orchestrator) CompileIncremental(ctx context.Context, unit frontend.CompilationUnit, faults *FaultSuppressor) (frontend.ErrorCollector, error) {
	return o.compilePhase(ctx, unit, phaseIncremental, faults)
}

func (o *Orchestrator) compilePhase(ctx context.Context, unit frontend.CompilationUnit, phase string, faults *FaultSuppressor) (frontend.ErrorCollector, error) {
	collector, err := unit.Compile(ctx, phase)
	if err == nil {
		return collector, nil
	}

	switch {
	case errors.Is(err, frontend.ErrCompilationFailed):
		o.log.Debug("compilation failed", "phase", phase, "error", err)
	case errors.Is(err, frontend.ErrCompilerBug):
		if o.suppressedAsBenign(err, faults) {
			return emptyCollector{}, nil
		}
		o.log.Debug("frontend internal error recovered", "phase", phase, "error", err)
	case errors.Is(err, frontend.ErrLinkage):
		o.log.Info("classpath linkage error recovered", "phase", phase, "error", err)
	default:
		return nil, err
	}

	if collector == nil {
		collector = emptyCollector{}
	}
	return collector, nil
}

// benignFaultMatcher is satisfied by frontend errors that can describe
// themselves in the stack-frame-path/method/message shape BenignFault
// matches against. A port's CompilerBug-wrapping error type implements
// this to participate in suppression; errors that don't are never
// suppressed, only logged.
type benignFaultMatcher interface {
	FaultLocation() (path, method, message string)
}

func (o *Orchestrator) suppressedAsBenign(err error, faults *FaultSuppressor) bool {
	m, ok := err.(benignFaultMatcher)
	if !ok {
		return false
	}
	path, method, message := m.FaultLocation()
	for i, f := range o.benignFaults {
		if f.Matches(path, method, message) {
			return faults.shouldSuppress(i)
		}
	}
	return false
}

// InjectCompletionPlaceholder inserts a synthetic identifier at pos so
// the frontend's completion machinery has a parseable token to resolve
// against, returning the buffer's prior contents for later restoration.
// The placeholder is `a()` when the text immediately
// preceding the cursor ends with `new <identifier>`, and `a` otherwise.
func (o *Orchestrator) InjectCompletionPlaceholder(tracker *filetracker.Tracker, uri span.URI, pos protocol.Position) (string, error) {
	prior, ok := tracker.Contents(uri)
	if !ok {
		return "", errNotOpen(uri)
	}

	placeholder := "a"
	if o.newExprRe.MatchString(linePrefix(prior, pos)) {
		placeholder = "a()"
	}

	if err := tracker.Change(uri, []protocol.TextDocumentContentChangeEvent{{
		Range: &protocol.Range{Start: pos, End: pos},
		Text:  placeholder,
	}}); err != nil {
		return "", err
	}
	return prior, nil
}

// InjectSignatureHelpPlaceholder inserts a closing parenthesis at pos so
// an open call expression becomes syntactically complete enough for the
// frontend to resolve the target method.
func (o *Orchestrator) InjectSignatureHelpPlaceholder(tracker *filetracker.Tracker, uri span.URI, pos protocol.Position) (string, error) {
	prior, ok := tracker.Contents(uri)
	if !ok {
		return "", errNotOpen(uri)
	}
	if err := tracker.Change(uri, []protocol.TextDocumentContentChangeEvent{{
		Range: &protocol.Range{Start: pos, End: pos},
		Text:  ")",
	}}); err != nil {
		return "", err
	}
	return prior, nil
}

// RestoreDocumentSource reverts uri's buffer to priorText. Every
// successful Inject* call must be paired with exactly one call to this;
// the orchestrator never silently drops a placeholder edit.
func (o *Orchestrator) RestoreDocumentSource(tracker *filetracker.Tracker, uri span.URI, priorText string) {
	tracker.Open(uri, priorText)
}

// linePrefix returns the text of pos's line up to (but excluding) its
// column, used only to test the `new <identifier>` suffix pattern.
func linePrefix(content string, pos protocol.Position) string {
	line := 0
	lineStart := 0
	for i, r := range content {
		if line == int(pos.Line) {
			break
		}
		if r == '\n' {
			line++
			lineStart = i + 1
		}
	}
	if line < int(pos.Line) {
		return ""
	}
	col := int(pos.Character)
	end := lineStart
	for end < len(content) && content[end] != '\n' && col > 0 {
		end++
		col--
	}
	return content[lineStart:end]
}

type notOpenError struct{ uri span.URI }

func (e notOpenError) Error() string { return "document not open: " + string(e.uri) }

func errNotOpen(uri span.URI) error { return notOpenError{uri: uri} }
