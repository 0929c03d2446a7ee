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

// Package pipeline routes LSP requests to the project scope that owns
// them and enforces the concurrency policy at the request boundary: a
// bounded number of requests run at once, document lifecycle events
// drive the recompile pipeline under each scope's own lock, and
// read-only requests hold that lock only long enough to fetch the
// current AST index snapshot.
package pipeline

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/crossplane/crossplane-runtime/pkg/logging"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath/indexcache"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/scancache"
	"github.com/groovy-lsp/groovy-language-server/internal/config"
	"github.com/groovy-lsp/groovy-language-server/internal/diagnostics"
	"github.com/groovy-lsp/groovy-language-server/internal/filetracker"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/orchestrator"
	"github.com/groovy-lsp/groovy-language-server/internal/providers"
	"github.com/groovy-lsp/groovy-language-server/internal/scope"
)

const (
	errNoScope         = "no project scope owns this document"
	errDecodeSettings  = "failed to decode configuration settings"
	errRecompileFailed = "recompile failed"
)

// defaultMaxInFlight bounds how many requests the pipeline services
// concurrently. Requests beyond the bound queue on the semaphore in
// arrival order.
const defaultMaxInFlight = 8

// Publish is one per-URI diagnostics packet produced by a compile
// round. An empty Diagnostics slice is meaningful: it clears stale
// markers for URIs that had findings last round and have none now.
type Publish struct {
	URI         span.URI
	Diagnostics []diagnostics.Diagnostic
}

// Pipeline owns the root→scope map and the per-request concurrency
// gate. One Pipeline serves the whole process.
type Pipeline struct {
	log     logging.Logger
	tracker *filetracker.Tracker
	orch    *orchestrator.Orchestrator
	scans   *scancache.Cache
	idxs    *indexcache.Cache
	diags   *diagnostics.Handler

	factory  frontend.CompilationUnitFactory
	astUtils frontend.ASTUtilities

	providerOpts []providers.Option

	sem *semaphore.Weighted

	mu       sync.Mutex
	roots    []span.URI
	scopes   map[span.URI]*scope.Scope
	provs    map[span.URI]*providers.Provider
	settings config.Settings
}

// Option configures a new Pipeline.
type Option func(*Pipeline)

// WithLogger overrides the default no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMaxInFlight overrides the default request-concurrency bound.
func WithMaxInFlight(n int64) Option {
	return func(p *Pipeline) { p.sem = semaphore.NewWeighted(n) }
}

// WithProviderOptions forwards opts to every per-scope Provider the
// pipeline constructs (source locator, decompiler, test-framework
// detector, import analyzer).
func WithProviderOptions(opts ...providers.Option) Option {
	return func(p *Pipeline) { p.providerOpts = opts }
}

// New constructs a Pipeline over the process-wide shared state: the
// open-document tracker, the orchestrator, the two classpath caches,
// the diagnostic handler, and the compiler-frontend bindings.
func New(
	tracker *filetracker.Tracker,
	orch *orchestrator.Orchestrator,
	scans *scancache.Cache,
	idxs *indexcache.Cache,
	diags *diagnostics.Handler,
	factory frontend.CompilationUnitFactory,
	astUtils frontend.ASTUtilities,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		log:      logging.NewNopLogger(),
		tracker:  tracker,
		orch:     orch,
		scans:    scans,
		idxs:     idxs,
		diags:    diags,
		factory:  factory,
		astUtils: astUtils,
		sem:      semaphore.NewWeighted(defaultMaxInFlight),
		scopes:   make(map[span.URI]*scope.Scope),
		provs:    make(map[span.URI]*providers.Provider),
		settings: config.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// AddRoot registers a workspace root. Roots are matched
// longest-prefix-first when resolving a document's owning scope, so a
// nested root wins over the workspace root that contains it.
func (p *Pipeline) AddRoot(root span.URI) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.roots {
		if r == root {
			return
		}
	}
	p.roots = append(p.roots, root)
	sort.Slice(p.roots, func(i, j int) bool { return len(p.roots[i]) > len(p.roots[j]) })
}

// RemoveRoot unregisters a workspace root and tears down its scope if
// one exists.
func (p *Pipeline) RemoveRoot(root span.URI) error {
	p.mu.Lock()
	for i, r := range p.roots {
		if r == root {
			p.roots = append(p.roots[:i], p.roots[i+1:]...)
			break
		}
	}
	scp := p.scopes[root]
	delete(p.scopes, root)
	delete(p.provs, root)
	p.mu.Unlock()

	if scp == nil {
		return nil
	}
	p.diags.ForgetRoot(root)
	return scp.Teardown()
}

// rootOf resolves uri's owning workspace root, longest prefix first.
func (p *Pipeline) rootOf(uri span.URI) (span.URI, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.roots {
		if strings.HasPrefix(string(uri), string(r)) {
			return r, true
		}
	}
	return "", false
}

// ScopeFor returns the scope that owns uri, if its root has one.
func (p *Pipeline) ScopeFor(uri span.URI) (*scope.Scope, bool) {
	root, ok := p.rootOf(uri)
	if !ok {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.scopes[root]
	return s, ok
}

// ProviderFor returns the request provider bound to uri's owning scope.
func (p *Pipeline) ProviderFor(uri span.URI) (*providers.Provider, bool) {
	root, ok := p.rootOf(uri)
	if !ok {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	prov, ok := p.provs[root]
	return prov, ok
}

// Providers returns every open scope's provider, ordered by root, for
// requests that span the whole workspace (workspace/symbol).
func (p *Pipeline) Providers() []*providers.Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	roots := make([]span.URI, 0, len(p.provs))
	for r := range p.provs {
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	out := make([]*providers.Provider, 0, len(roots))
	for _, r := range roots {
		out = append(out, p.provs[r])
	}
	return out
}

// ensureScope returns root's scope, creating it (and its provider) on
// first use. The caller must not hold p.mu.
func (p *Pipeline) ensureScope(root span.URI) (*scope.Scope, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.scopes[root]; ok {
		return s, false
	}
	s := scope.New(root, p.factory, p.tracker, p.orch, p.scans, p.idxs, scope.WithLogger(p.log))
	p.scopes[root] = s
	p.provs[root] = providers.New(s, p.astUtils, p.orch, p.tracker, p.providerOpts...)
	return s, true
}

// Do runs fn under the pipeline's request-concurrency bound. A request
// cancelled while queued never runs; cancellation after fn starts is
// fn's own responsibility to observe at its next coarse boundary.
func (p *Pipeline) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn(ctx)
}

// DidOpen tracks a newly opened document, creates its scope if this is
// the first open file under that root, recompiles, and returns the
// diagnostics packets to publish.
func (p *Pipeline) DidOpen(ctx context.Context, uri span.URI, text string) ([]Publish, error) {
	root, ok := p.rootOf(uri)
	if !ok {
		p.log.Debug(errNoScope, "uri", uri)
		return nil, nil
	}

	p.tracker.Open(uri, text)
	scp, created := p.ensureScope(root)
	scp.MarkOpen(uri)

	if created {
		if err := scp.RecompileFull(ctx); err != nil {
			return nil, errors.Wrap(err, errRecompileFailed)
		}
	} else {
		if err := scp.RecompileIncremental(ctx, map[span.URI]struct{}{uri: {}}); err != nil {
			return nil, errors.Wrap(err, errRecompileFailed)
		}
	}
	return p.publishRound(scp), nil
}

// DidChange applies buffer edits and runs the incremental recompile
// pipeline for the changed document.
func (p *Pipeline) DidChange(ctx context.Context, uri span.URI, changes []protocol.TextDocumentContentChangeEvent) ([]Publish, error) {
	scp, ok := p.ScopeFor(uri)
	if !ok {
		p.log.Debug(errNoScope, "uri", uri)
		return nil, nil
	}
	if err := p.tracker.Change(uri, changes); err != nil {
		return nil, err
	}
	if err := scp.RecompileIncremental(ctx, map[span.URI]struct{}{uri: {}}); err != nil {
		return nil, errors.Wrap(err, errRecompileFailed)
	}
	return p.publishRound(scp), nil
}

// DidSave re-runs the incremental pipeline for the saved document.
// Saved contents come from the tracker's buffer, which the editor has
// already synchronised via didChange.
func (p *Pipeline) DidSave(ctx context.Context, uri span.URI) ([]Publish, error) {
	scp, ok := p.ScopeFor(uri)
	if !ok {
		p.log.Debug(errNoScope, "uri", uri)
		return nil, nil
	}
	if err := scp.RecompileIncremental(ctx, map[span.URI]struct{}{uri: {}}); err != nil {
		return nil, errors.Wrap(err, errRecompileFailed)
	}
	return p.publishRound(scp), nil
}

// DidClose stops tracking the document. When the last open file under a
// root closes, its scope is torn down and removed; the next open under
// that root recreates it from scratch.
func (p *Pipeline) DidClose(_ context.Context, uri span.URI) error {
	root, ok := p.rootOf(uri)
	if !ok {
		return nil
	}
	p.tracker.Close(uri)

	p.mu.Lock()
	scp, exists := p.scopes[root]
	p.mu.Unlock()
	if !exists {
		return nil
	}

	if last := scp.MarkClosed(uri); !last {
		return nil
	}

	p.mu.Lock()
	delete(p.scopes, root)
	delete(p.provs, root)
	p.mu.Unlock()
	p.tracker.Remove(uri)
	return scp.Teardown()
}

// publishRound turns the scope's most recent compile round into the
// packets to send, including stale-clearing empties.
func (p *Pipeline) publishRound(scp *scope.Scope) []Publish {
	current := p.diags.Compute(scp.Unit(), scp.LastErrors())
	set := p.diags.PublishSetFor(scp.Root(), current)

	out := make([]Publish, 0, len(set))
	for u, d := range set {
		out = append(out, Publish{URI: u, Diagnostics: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// UpdateSettings decodes and merges a workspace/configuration payload.
// Scan-cache keys mix the rejected-package filter into their hash, so a
// change here invalidates stale entries naturally on the next acquire;
// existing scopes keep their current handles until their next unit
// rebuild picks up the new descriptor.
func (p *Pipeline) UpdateSettings(raw interface{}) error {
	next, err := config.Decode(raw)
	if err != nil {
		return errors.Wrap(err, errDecodeSettings)
	}
	p.mu.Lock()
	p.settings = p.settings.Merge(next)
	p.mu.Unlock()
	return nil
}

// Settings returns the current workspace configuration.
func (p *Pipeline) Settings() config.Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}
