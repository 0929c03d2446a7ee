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

// Package scope holds the per-root state container: a project's
// compilation unit, AST index, dependency graph, classpath cache
// handles, and the recompile lock that serialises the whole
// create-compile-visit-diff pipeline for that root. Diagnostics are
// published by the caller after that lock is released.
package scope

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/astindex"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/indexcache"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/scancache"
	"github.com/groovy-lsp/groovy-language-server/internal/depgraph"
	"github.com/groovy-lsp/groovy-language-server/internal/filetracker"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/orchestrator"
	"github.com/groovy-lsp/groovy-language-server/internal/signature"
)

// maxInvalidationRounds bounds the signature-driven incremental
// invalidation loop before the scope gives up and falls
// back to a full recompile.
const maxInvalidationRounds = 2

const errNoUnit = "scope has no compilation unit yet"

// Scope is the Project Scope.
type Scope struct {
	// ID uniquely identifies this scope instance, stamped once at
	// construction.
	ID uuid.UUID

	root    span.URI
	factory frontend.CompilationUnitFactory
	tracker *filetracker.Tracker
	orch    *orchestrator.Orchestrator
	scans   *scancache.Cache
	idxs    *indexcache.Cache
	faults  *orchestrator.FaultSuppressor
	log     logging.Logger

	// recompileMu is held for the full
	// createUnit→compile→visitAST→signature-diff→re-invalidation
	// pipeline; the round's diagnostics are published after it is released.
	recompileMu sync.Mutex

	unit  frontend.CompilationUnit
	index *astindex.Index
	graph *depgraph.Graph

	signatures map[string]signature.Signature

	handleMu    sync.Mutex
	scanHandle  *scancache.AcquireResult
	indexHandle *indexcache.AcquireResult

	openFilesMu sync.Mutex
	openFiles   map[span.URI]struct{}

	// lastErrors is the ErrorCollector produced by the most recent
	// compile, consumed by the Diagnostic Handler via LastErrors.
	lastErrors frontend.ErrorCollector
}

// Option configures a new Scope.
type Option func(*Scope)

// WithLogger overrides the default no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Scope) { s.log = l }
}

// New constructs a Scope rooted at root. The scope holds no compilation
// unit until the first call to RecompileFull; scopes are created on
// the first file open under their root.
func New(
	root span.URI,
	factory frontend.CompilationUnitFactory,
	tracker *filetracker.Tracker,
	orch *orchestrator.Orchestrator,
	scans *scancache.Cache,
	idxs *indexcache.Cache,
	opts ...Option,
) *Scope {
	s := &Scope{
		ID:         uuid.New(),
		root:       root,
		factory:    factory,
		tracker:    tracker,
		orch:       orch,
		scans:      scans,
		idxs:       idxs,
		faults:     orchestrator.NewFaultSuppressor(),
		log:        logging.NewNopLogger(),
		index:      astindex.New(),
		graph:      depgraph.New(),
		signatures: make(map[string]signature.Signature),
		openFiles:  make(map[span.URI]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Root returns the scope's project root.
func (s *Scope) Root() span.URI { return s.root }

// LastErrors returns the ErrorCollector produced by the most recent
// compile round. Reading it takes the recompile lock briefly so a
// publish racing a recompile never observes a torn collector.
func (s *Scope) LastErrors() frontend.ErrorCollector {
	s.recompileMu.Lock()
	defer s.recompileMu.Unlock()
	return s.lastErrors
}

// Index returns the scope's current AST index. It holds the recompile
// lock only long enough to read the pointer, so it waits for an
// in-progress recompile; the index is replaced by pointer swap, never
// mutated in place, so the returned reference stays valid after the
// lock is released.
func (s *Scope) Index() *astindex.Index {
	s.recompileMu.Lock()
	defer s.recompileMu.Unlock()
	return s.index
}

// Graph returns the scope's dependency graph.
func (s *Scope) Graph() *depgraph.Graph { return s.graph }

// Unit returns the scope's current compilation unit, or nil before the
// first recompile.
func (s *Scope) Unit() frontend.CompilationUnit {
	s.recompileMu.Lock()
	defer s.recompileMu.Unlock()
	return s.unit
}

// MarkOpen records uri as open in this scope.
func (s *Scope) MarkOpen(uri span.URI) {
	s.openFilesMu.Lock()
	defer s.openFilesMu.Unlock()
	s.openFiles[uri] = struct{}{}
}

// MarkClosed stops tracking uri as open, reporting whether this scope
// now has no open files left (a signal to its owner that Teardown
// should run).
func (s *Scope) MarkClosed(uri span.URI) bool {
	s.openFilesMu.Lock()
	defer s.openFilesMu.Unlock()
	delete(s.openFiles, uri)
	return len(s.openFiles) == 0
}

// RecompileFull runs a full recompile: new-or-updated compilation unit,
// full compile, full AST visit, and a from-scratch signature table.
func (s *Scope) RecompileFull(ctx context.Context) error {
	s.recompileMu.Lock()
	defer s.recompileMu.Unlock()
	return s.recompileFullLocked(ctx)
}

func (s *Scope) recompileFullLocked(ctx context.Context) error {
	newUnit, err := s.orch.CreateOrUpdateUnit(s.root, s.factory, s.tracker, s.unit, nil)
	if err != nil {
		return err
	}
	if s.unit != nil {
		_ = s.unit.Close()
	}
	s.unit = newUnit

	collector, err := s.orch.Compile(ctx, s.unit, s.faults)
	if err != nil {
		return err
	}
	s.lastErrors = collector

	s.index = s.orch.VisitAST(s.unit)
	s.signatures = make(map[string]signature.Signature)
	s.rebuildGraphAndSignatures(s.index.URIs())
	return nil
}

// RecompileIncremental runs the signature-driven incremental
// invalidation pipeline starting from the given changed
// URIs, falling back to a full recompile if the fixed point isn't
// reached within maxInvalidationRounds.
func (s *Scope) RecompileIncremental(ctx context.Context, changed map[span.URI]struct{}) error {
	s.recompileMu.Lock()
	defer s.recompileMu.Unlock()
	return s.recompileIncrementalLocked(ctx, changed, 0)
}

func (s *Scope) recompileIncrementalLocked(ctx context.Context, uris map[span.URI]struct{}, round int) error {
	if round >= maxInvalidationRounds {
		s.log.Debug("incremental invalidation exceeded round budget, falling back to full recompile", "root", s.root)
		return s.recompileFullLocked(ctx)
	}

	newUnit, err := s.orch.CreateOrUpdateUnit(s.root, s.factory, s.tracker, s.unit, uris)
	if err != nil {
		return err
	}
	if s.unit != nil && s.unit != newUnit {
		_ = s.unit.Close()
	}
	s.unit = newUnit

	collector, err := s.orch.CompileIncremental(ctx, s.unit, s.faults)
	if err != nil {
		return err
	}
	s.lastErrors = collector

	previous := s.index
	next := s.orch.VisitASTIncremental(s.unit, previous, uris)

	// A degraded recompile (e.g. a syntax error) can leave a revisited
	// URI with no class nodes where it previously had some; restore the
	// last-known-good data for that URI rather than losing it entirely.
	for u := range uris {
		if len(previous.ClassNodesForURI(u)) > 0 && len(next.ClassNodesForURI(u)) == 0 {
			next.RestoreFromPrevious(u, previous)
		}
	}
	s.index = next

	changedURIList := make([]span.URI, 0, len(uris))
	for u := range uris {
		changedURIList = append(changedURIList, u)
	}
	dirty := s.rebuildGraphAndSignatures(changedURIList)

	dependents := map[span.URI]struct{}{}
	for u := range dirty {
		for _, dep := range s.graph.TransitiveDependents(map[span.URI]struct{}{u: {}}) {
			dependents[dep] = struct{}{}
		}
	}
	if len(dependents) == 0 {
		return nil
	}
	return s.recompileIncrementalLocked(ctx, dependents, round+1)
}

// rebuildGraphAndSignatures recomputes dependency-graph edges and
// signatures for exactly the given URIs against the current index,
// returning the subset of uris where at least one declared class's
// Signature differs from what was cached before this call.
func (s *Scope) rebuildGraphAndSignatures(uris []span.URI) map[span.URI]struct{} {
	dirty := make(map[span.URI]struct{})
	for _, u := range uris {
		deps := make(map[span.URI]struct{})
		for _, d := range s.index.ResolveDependencyURIs(u) {
			deps[d] = struct{}{}
		}
		s.graph.UpdateDependencies(u, deps)

		for _, cls := range s.index.ClassNodesForURI(u) {
			fresh := signature.Of(cls)
			prior, existed := s.signatures[cls.FullyQualifiedName()]
			s.signatures[cls.FullyQualifiedName()] = fresh
			if !existed || !prior.Equal(fresh) {
				dirty[u] = struct{}{}
			}
		}
	}
	return dirty
}

// EnsureClasspathScan lazily acquires (and caches on this scope) a
// classpath scan handle from the shared scan cache; scanning is
// deferred to the first provider that needs it.
func (s *Scope) EnsureClasspathScan() (*scancache.AcquireResult, error) {
	unit := s.Unit()
	s.handleMu.Lock()
	defer s.handleMu.Unlock()
	if s.scanHandle != nil {
		return s.scanHandle, nil
	}
	if unit == nil {
		return nil, errors.New(errNoUnit)
	}
	r, err := s.scans.Acquire(unit.ClassLoaderDescriptor())
	if err != nil {
		return nil, err
	}
	s.scanHandle = r
	return r, nil
}

// EnsureClasspathIndex lazily acquires (and caches on this scope) a
// compact classpath index handle from the shared index cache.
func (s *Scope) EnsureClasspathIndex() (*indexcache.AcquireResult, error) {
	unit := s.Unit()
	s.handleMu.Lock()
	defer s.handleMu.Unlock()
	if s.indexHandle != nil {
		return s.indexHandle, nil
	}
	if unit == nil {
		return nil, errors.New(errNoUnit)
	}
	r, err := s.idxs.Acquire(unit.ClassLoaderDescriptor())
	if err != nil {
		return nil, err
	}
	s.indexHandle = r
	return r, nil
}

// ClasspathSymbols returns the classpath symbols visible to this scope,
// already filtered down to its own classpath when the cached index was
// an overlap hit.
func (s *Scope) ClasspathSymbols() ([]classpath.Symbol, error) {
	r, err := s.EnsureClasspathIndex()
	if err != nil {
		return nil, err
	}
	if r.Shared {
		return r.Index.Symbols(r.OwnPaths), nil
	}
	return r.Index.AllSymbols(), nil
}

// Teardown releases the scope's cache handles, closes the compilation
// unit's classloader, and clears the AST index.
func (s *Scope) Teardown() error {
	s.recompileMu.Lock()
	defer s.recompileMu.Unlock()

	s.handleMu.Lock()
	if s.scanHandle != nil {
		s.scans.Release(s.scanHandle.Key)
		s.scanHandle = nil
	}
	s.indexHandle = nil
	s.handleMu.Unlock()

	var err error
	if s.unit != nil {
		err = s.unit.Close()
		s.unit = nil
	}
	s.index = astindex.New()
	s.graph.Clear()
	s.signatures = make(map[string]signature.Signature)
	return err
}
