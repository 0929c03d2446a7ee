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

// Package dispatcher routes JSON-RPC request events to the appropriate
// server method, unmarshaling each method's parameter shape and
// replying with the method's result. An unexpected failure inside a
// handler is recovered here: the client gets an empty result, never a
// crashed server.
package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"github.com/golang/tools/lsp/protocol"
	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/groovy-lsp/groovy-language-server/internal/gls/server"
)

const (
	errParseParameters = "failed to parse request parameters"
	errReply           = "failed to reply"
)

// Dispatcher is responsible for routing JSON-RPC request events to the
// appropriate place.
type Dispatcher struct {
	log logging.Logger
}

// New returns a new Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		log: logging.NewNopLogger(),
	}

	for _, o := range opts {
		o(d)
	}

	return d
}

// Option provides a way to override default behavior of the Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the default logging.Logger for the Dispatcher with the
// supplied logging.Logger.
func WithLogger(l logging.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// Dispatch dispatches the given JSON-RPC request to the appropriate
// server function.
func (d *Dispatcher) Dispatch(ctx context.Context, s *server.Server, conn *jsonrpc2.Conn, r *jsonrpc2.Request) { // nolint:gocyclo
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Debug("request handler panicked", "method", r.Method, "recovered", rec)
			if !r.Notif {
				d.reply(ctx, conn, r.ID, nil)
			}
		}
	}()

	switch r.Method {
	case "initialize":
		var params protocol.InitializeParams
		if !d.parse(r, &params) {
			// If we can't understand the initialization parameters panic
			// because future operations will not work.
			panic(errParseParameters)
		}
		s.Initialize(ctx, conn, r.ID, &params)
	case "initialized":
		s.Initialized(ctx)
	case "shutdown":
		s.Shutdown(ctx, conn, r.ID)
	case "exit":
		s.Exit(ctx)
	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if !d.parse(r, &params) {
			return
		}
		s.DidOpen(ctx, &params)
	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if !d.parse(r, &params) {
			return
		}
		s.DidChange(ctx, &params)
	case "textDocument/didSave":
		var params protocol.DidSaveTextDocumentParams
		if !d.parse(r, &params) {
			return
		}
		s.DidSave(ctx, &params)
	case "textDocument/didClose":
		var params protocol.DidCloseTextDocumentParams
		if !d.parse(r, &params) {
			return
		}
		s.DidClose(ctx, &params)
	case "workspace/didChangeConfiguration":
		var params protocol.DidChangeConfigurationParams
		if !d.parse(r, &params) {
			return
		}
		s.DidChangeConfiguration(ctx, &params)
	case "workspace/didChangeWatchedFiles":
		var params protocol.DidChangeWatchedFilesParams
		if !d.parse(r, &params) {
			return
		}
		s.DidChangeWatchedFiles(ctx, &params)
	case "textDocument/definition":
		var params protocol.DefinitionParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, []lsp.Location{})
			return
		}
		d.reply(ctx, conn, r.ID, s.Definition(ctx, &params))
	case "textDocument/typeDefinition":
		var params protocol.TypeDefinitionParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, []lsp.Location{})
			return
		}
		d.reply(ctx, conn, r.ID, s.TypeDefinition(ctx, &params))
	case "textDocument/implementation":
		var params protocol.ImplementationParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, []lsp.Location{})
			return
		}
		d.reply(ctx, conn, r.ID, s.Implementation(ctx, &params))
	case "textDocument/references":
		var params protocol.ReferenceParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, []lsp.Location{})
			return
		}
		d.reply(ctx, conn, r.ID, s.References(ctx, &params))
	case "textDocument/documentHighlight":
		var params protocol.DocumentHighlightParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, []protocol.DocumentHighlight{})
			return
		}
		d.reply(ctx, conn, r.ID, s.DocumentHighlight(ctx, &params))
	case "textDocument/hover":
		var params protocol.HoverParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, nil)
			return
		}
		d.reply(ctx, conn, r.ID, s.Hover(ctx, &params))
	case "textDocument/completion":
		var params protocol.CompletionParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, []protocol.CompletionItem{})
			return
		}
		d.reply(ctx, conn, r.ID, s.Completion(ctx, &params))
	case "textDocument/signatureHelp":
		var params protocol.SignatureHelpParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, nil)
			return
		}
		d.reply(ctx, conn, r.ID, s.SignatureHelp(ctx, &params))
	case "textDocument/codeAction":
		var params protocol.CodeActionParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, []protocol.CodeAction{})
			return
		}
		d.reply(ctx, conn, r.ID, s.CodeAction(ctx, &params))
	case "textDocument/prepareRename":
		var params protocol.PrepareRenameParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, nil)
			return
		}
		d.reply(ctx, conn, r.ID, s.PrepareRename(ctx, &params))
	case "textDocument/rename":
		var params protocol.RenameParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, nil)
			return
		}
		d.reply(ctx, conn, r.ID, s.Rename(ctx, &params))
	case "textDocument/documentSymbol":
		var params protocol.DocumentSymbolParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, []protocol.DocumentSymbol{})
			return
		}
		d.reply(ctx, conn, r.ID, s.DocumentSymbol(ctx, &params))
	case "workspace/symbol":
		var params protocol.WorkspaceSymbolParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, []protocol.SymbolInformation{})
			return
		}
		d.reply(ctx, conn, r.ID, s.WorkspaceSymbol(ctx, &params))
	case "textDocument/semanticTokens/full":
		var params protocol.SemanticTokensParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, nil)
			return
		}
		d.reply(ctx, conn, r.ID, s.SemanticTokensFull(ctx, &params))
	case "textDocument/semanticTokens/range":
		var params protocol.SemanticTokensRangeParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, nil)
			return
		}
		d.reply(ctx, conn, r.ID, s.SemanticTokensRange(ctx, &params))
	case "textDocument/inlayHint":
		var params server.InlayHintParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, []server.InlayHintItem{})
			return
		}
		d.reply(ctx, conn, r.ID, s.InlayHint(ctx, &params))
	case "textDocument/formatting":
		var params protocol.DocumentFormattingParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, []protocol.TextEdit{})
			return
		}
		d.reply(ctx, conn, r.ID, s.Formatting(ctx, &params))
	case "$/groovy/decompiledSource":
		var params server.DecompiledSourceParams
		if !d.parse(r, &params) {
			d.reply(ctx, conn, r.ID, nil)
			return
		}
		d.reply(ctx, conn, r.ID, s.DecompiledSource(ctx, &params))
	default:
		// Unknown requests get an empty reply rather than an error so
		// clients probing optional methods degrade quietly.
		if !r.Notif {
			d.reply(ctx, conn, r.ID, nil)
		}
	}
}

func (d *Dispatcher) parse(r *jsonrpc2.Request, into interface{}) bool {
	if r.Params == nil {
		return false
	}
	if err := json.Unmarshal(*r.Params, into); err != nil {
		d.log.Debug(errParseParameters, "method", r.Method, "error", err)
		return false
	}
	return true
}

func (d *Dispatcher) reply(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, result interface{}) {
	if err := conn.Reply(ctx, id, result); err != nil {
		d.log.Debug(errReply, "error", err)
	}
}
