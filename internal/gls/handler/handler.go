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

// Package handler glues the JSON-RPC connection to the dispatcher and
// server, and assembles the shared state they run over: the document
// tracker, the orchestrator, the process-wide classpath caches, and the
// request pipeline bound to the compiler frontend.
package handler

import (
	"context"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/crossplane/crossplane-runtime/pkg/logging"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath/indexcache"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/scancache"
	"github.com/groovy-lsp/groovy-language-server/internal/diagnostics"
	"github.com/groovy-lsp/groovy-language-server/internal/filetracker"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/gls"
	"github.com/groovy-lsp/groovy-language-server/internal/gls/dispatcher"
	"github.com/groovy-lsp/groovy-language-server/internal/gls/server"
	"github.com/groovy-lsp/groovy-language-server/internal/orchestrator"
	"github.com/groovy-lsp/groovy-language-server/internal/pipeline"
	"github.com/groovy-lsp/groovy-language-server/internal/providers"
)

const errNoFrontend = "no compiler frontend configured"

// Frontend bundles the compiler-frontend bindings the language server
// core consumes: the compilation-unit factory, the AST navigation
// utilities, and the classpath scanner. Optional members extend
// individual providers and may be nil.
type Frontend struct {
	Factory  frontend.CompilationUnitFactory
	AST      frontend.ASTUtilities
	Scanner  scancache.Scanner
	Analyzer frontend.ImportAnalyzer

	Locator    providers.SourceLocator
	Decompiler providers.Decompiler
	TestFW     providers.TestFrameworkDetector
}

// A Handler handles LSP requests.
type Handler struct {
	log        logging.Logger
	fe         *Frontend
	dispatcher *dispatcher.Dispatcher
	server     *server.Server
}

// New constructs a new LSP handler over the given frontend bindings.
func New(fe *Frontend, opts ...Option) (*Handler, error) {
	h := &Handler{
		log: logging.NewNopLogger(),
		fe:  fe,
	}
	for _, o := range opts {
		o(h)
	}
	if h.fe == nil || h.fe.Factory == nil || h.fe.AST == nil || h.fe.Scanner == nil {
		return nil, errors.New(errNoFrontend)
	}

	tracker := filetracker.New()
	orch := orchestrator.New(orchestrator.WithLogger(h.log))
	scans := scancache.New(h.fe.Scanner, scancache.WithLogger(h.log))
	idxs := indexcache.New(scans)
	diags := diagnostics.New(h.fe.Analyzer, diagnostics.WithLogger(h.log))

	reg := gls.NewDecompiledRegistry()
	popts := []providers.Option{providers.WithLogger(h.log)}
	if h.fe.Locator != nil {
		popts = append(popts, providers.WithSourceLocator(h.fe.Locator))
	}
	if h.fe.Decompiler != nil {
		popts = append(popts, providers.WithDecompiler(&gls.RecordingDecompiler{Inner: h.fe.Decompiler, Registry: reg}))
	}
	if h.fe.TestFW != nil {
		popts = append(popts, providers.WithTestFrameworkDetector(h.fe.TestFW))
	}
	if h.fe.Analyzer != nil {
		popts = append(popts, providers.WithImportAnalyzer(h.fe.Analyzer))
	}

	pipe := pipeline.New(tracker, orch, scans, idxs, diags, h.fe.Factory, h.fe.AST,
		pipeline.WithLogger(h.log),
		pipeline.WithProviderOptions(popts...),
	)

	h.server = server.New(pipe, reg, server.WithLogger(h.log))
	h.dispatcher = dispatcher.New(dispatcher.WithLogger(h.log))

	return h, nil
}

// Option modifies a handler.
type Option func(h *Handler)

// WithLogger sets the logger for the handler.
func WithLogger(l logging.Logger) Option {
	return func(h *Handler) {
		h.log = l
	}
}

// Handle handles LSP requests.
func (h *Handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, r *jsonrpc2.Request) {
	h.dispatcher.Dispatch(ctx, h.server, conn, r)
}
