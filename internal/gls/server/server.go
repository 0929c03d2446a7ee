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

// Package server services incoming LSP requests: it owns the client
// connection, declares the server's capabilities at initialize time,
// routes document lifecycle events through the request pipeline, and
// translates provider results onto the wire.
package server

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/crossplane/crossplane-runtime/pkg/logging"

	"github.com/groovy-lsp/groovy-language-server/internal/diagnostics"
	"github.com/groovy-lsp/groovy-language-server/internal/gls"
	"github.com/groovy-lsp/groovy-language-server/internal/pipeline"
	"github.com/groovy-lsp/groovy-language-server/internal/providers"
	"github.com/groovy-lsp/groovy-language-server/internal/version"
)

const (
	serverName = "groovy-language-server"

	newVersionMsgFmt = `Version %s of %s is now available. Current version is %s.
	Update for the latest features!`
	helperChangedMsg = ` This release also requires an updated compiler helper jar.`

	errPublishDiagnostics = "failed to publish diagnostics"
	errShowMessage        = "failed to show message"
	errRecompile          = "recompile pipeline failed"
	errDecodeConfig       = "failed to decode configuration"
)

// Server services incoming LSP requests.
type Server struct {
	conn *jsonrpc2.Conn

	i    *version.Informer
	log  logging.Logger
	pipe *pipeline.Pipeline
	reg  *gls.DecompiledRegistry

	exitFn func(code int)
}

// New returns a new Server over the given request pipeline and
// decompiled-source registry.
func New(pipe *pipeline.Pipeline, reg *gls.DecompiledRegistry, opts ...Option) *Server {
	s := &Server{
		log:    logging.NewNopLogger(),
		pipe:   pipe,
		reg:    reg,
		exitFn: os.Exit,
	}
	s.i = version.NewInformer(version.WithLogger(s.log))

	for _, o := range opts {
		o(s)
	}
	return s
}

// Option provides a way to override default behavior of the Server.
type Option func(*Server)

// WithLogger overrides the default logging.Logger for the Server with the
// supplied logging.Logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithExitFunc overrides what Exit does, so tests don't terminate the
// test process.
func WithExitFunc(fn func(code int)) Option {
	return func(s *Server) {
		s.exitFn = fn
	}
}

// Initialize handles calls to Initialize.
func (s *Server) Initialize(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.InitializeParams) {
	s.conn = conn

	if params.RootURI != "" {
		s.pipe.AddRoot(params.RootURI.SpanURI())
	}
	for _, f := range params.WorkspaceFolders {
		s.pipe.AddRoot(span.URI(f.URI))
	}

	reply := &protocol.InitializeResult{
		Capabilities: capabilities(),
	}

	if err := s.conn.Reply(ctx, id, reply); err != nil {
		// If we fail to initialize the workspace we won't receive future
		// messages so we panic and try again on restart.
		panic(err)
	}

	s.checkForUpdates(context.Background()) //nolint:contextcheck // outlives the initialize request
}

// capabilities declares every request surface this server answers.
func capabilities() protocol.ServerCapabilities {
	return protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: true,
			Change:    protocol.Incremental,
			Save:      protocol.SaveOptions{},
		},
		CompletionProvider: protocol.CompletionOptions{
			ResolveProvider:   true,
			TriggerCharacters: []string{".", "@"},
		},
		SignatureHelpProvider: protocol.SignatureHelpOptions{
			TriggerCharacters: []string{"(", ","},
		},
		HoverProvider:              true,
		DefinitionProvider:         true,
		TypeDefinitionProvider:     true,
		ImplementationProvider:     true,
		ReferencesProvider:         true,
		DocumentHighlightProvider:  true,
		DocumentSymbolProvider:     true,
		WorkspaceSymbolProvider:    true,
		CodeActionProvider:         true,
		DocumentFormattingProvider: true,
		RenameProvider: protocol.RenameOptions{
			PrepareProvider: true,
		},
		SemanticTokensProvider: protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{
				TokenTypes:     providers.SemanticTokenLegend,
				TokenModifiers: providers.SemanticTokenModifierLegend,
			},
			Full:  true,
			Range: true,
		},
		// Inlay hints and decompiled-source serving predate first-class
		// capability fields in the protocol version pinned here, so
		// clients discover them under experimental.
		Experimental: map[string]interface{}{
			"inlayHintProvider":        true,
			"decompiledSourceProvider": true,
		},
	}
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(_ context.Context) {}

// Shutdown handles shutdown requests.
func (s *Server) Shutdown(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID) {
	if err := conn.Reply(ctx, id, nil); err != nil {
		s.log.Debug("failed to acknowledge shutdown", "error", err)
	}
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) {
	s.exitFn(0)
}

// DidOpen handles calls to DidOpen.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) {
	uri := params.TextDocument.URI.SpanURI()
	packets, err := s.pipe.DidOpen(ctx, uri, params.TextDocument.Text)
	if err != nil {
		s.log.Debug(errRecompile, "uri", uri, "error", err)
		return
	}
	s.publishAll(ctx, packets)
}

// DidChange handles calls to DidChange.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) {
	uri := params.TextDocument.URI.SpanURI()
	packets, err := s.pipe.DidChange(ctx, uri, params.ContentChanges)
	if err != nil {
		s.log.Debug(errRecompile, "uri", uri, "error", err)
		return
	}
	s.publishAll(ctx, packets)
}

// DidSave handles calls to DidSave.
func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) {
	uri := params.TextDocument.URI.SpanURI()
	packets, err := s.pipe.DidSave(ctx, uri)
	if err != nil {
		s.log.Debug(errRecompile, "uri", uri, "error", err)
		return
	}
	s.publishAll(ctx, packets)
}

// DidClose handles calls to DidClose.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) {
	uri := params.TextDocument.URI.SpanURI()
	if err := s.pipe.DidClose(ctx, uri); err != nil {
		s.log.Debug("scope teardown failed", "uri", uri, "error", err)
	}
}

// DidChangeConfiguration handles workspace/didChangeConfiguration.
func (s *Server) DidChangeConfiguration(_ context.Context, params *protocol.DidChangeConfigurationParams) {
	if err := s.pipe.UpdateSettings(params.Settings); err != nil {
		s.log.Debug(errDecodeConfig, "error", err)
	}
}

// DidChangeWatchedFiles handles workspace/didChangeWatchedFiles: every
// changed on-disk file that belongs to an open scope is pushed through
// the save pipeline so its dependents revalidate.
func (s *Server) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) {
	for _, c := range params.Changes {
		uri := c.URI.SpanURI()
		if _, ok := s.pipe.ScopeFor(uri); !ok {
			continue
		}
		packets, err := s.pipe.DidSave(ctx, uri)
		if err != nil {
			s.log.Debug(errRecompile, "uri", uri, "error", err)
			continue
		}
		s.publishAll(ctx, packets)
	}
}

// Definition handles textDocument/definition.
func (s *Server) Definition(ctx context.Context, params *protocol.DefinitionParams) []lsp.Location {
	var out []lsp.Location
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		locs, _ := p.Definition(params.TextDocument.URI.SpanURI(), params.Position)
		out = toLSPLocations(locs)
		return nil
	})
	return out
}

// TypeDefinition handles textDocument/typeDefinition.
func (s *Server) TypeDefinition(ctx context.Context, params *protocol.TypeDefinitionParams) []lsp.Location {
	var out []lsp.Location
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		locs, _ := p.TypeDefinition(params.TextDocument.URI.SpanURI(), params.Position)
		out = toLSPLocations(locs)
		return nil
	})
	return out
}

// Implementation handles textDocument/implementation.
func (s *Server) Implementation(ctx context.Context, params *protocol.ImplementationParams) []lsp.Location {
	var out []lsp.Location
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		out = toLSPLocations(p.Implementation(params.TextDocument.URI.SpanURI(), params.Position))
		return nil
	})
	return out
}

// References handles textDocument/references.
func (s *Server) References(ctx context.Context, params *protocol.ReferenceParams) []lsp.Location {
	var out []lsp.Location
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		out = toLSPLocations(p.References(params.TextDocument.URI.SpanURI(), params.Position))
		return nil
	})
	return out
}

// DocumentHighlight handles textDocument/documentHighlight.
func (s *Server) DocumentHighlight(ctx context.Context, params *protocol.DocumentHighlightParams) []protocol.DocumentHighlight {
	var out []protocol.DocumentHighlight
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		for _, loc := range p.DocumentHighlight(params.TextDocument.URI.SpanURI(), params.Position) {
			out = append(out, protocol.DocumentHighlight{Range: loc.Range})
		}
		return nil
	})
	return out
}

// Hover handles textDocument/hover.
func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) *protocol.Hover {
	var out *protocol.Hover
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		h, ok := p.Hover(params.TextDocument.URI.SpanURI(), params.Position)
		if !ok {
			return nil
		}
		out = &protocol.Hover{
			Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: h.Contents},
			Range:    h.Range,
		}
		return nil
	})
	return out
}

// Completion handles textDocument/completion.
func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) []protocol.CompletionItem {
	var out []protocol.CompletionItem
	_ = s.pipe.Do(ctx, func(ctx context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		for _, item := range p.Completion(ctx, params.TextDocument.URI.SpanURI(), params.Position) {
			ci := protocol.CompletionItem{
				Label:      item.Label,
				Kind:       protocol.CompletionItemKind(item.Kind),
				Detail:     item.Detail,
				InsertText: item.InsertText,
			}
			if ci.InsertText == "" {
				ci.InsertText = item.Label
			}
			out = append(out, ci)
		}
		return nil
	})
	return out
}

// SignatureHelp handles textDocument/signatureHelp.
func (s *Server) SignatureHelp(ctx context.Context, params *protocol.SignatureHelpParams) *protocol.SignatureHelp {
	var out *protocol.SignatureHelp
	_ = s.pipe.Do(ctx, func(ctx context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		infos, ok := p.SignatureHelp(ctx, params.TextDocument.URI.SpanURI(), params.Position)
		if !ok {
			return nil
		}
		sh := &protocol.SignatureHelp{}
		for _, info := range infos {
			si := protocol.SignatureInformation{Label: info.Label}
			for _, param := range info.Parameters {
				si.Parameters = append(si.Parameters, protocol.ParameterInformation{Label: param.Label})
			}
			sh.Signatures = append(sh.Signatures, si)
		}
		out = sh
		return nil
	})
	return out
}

// CodeAction handles textDocument/codeAction: missing-import quick
// fixes keyed off unresolved-class diagnostics, plus unused-import
// removal actions for the document's source unit.
func (s *Server) CodeAction(ctx context.Context, params *protocol.CodeActionParams) []protocol.CodeAction {
	var out []protocol.CodeAction
	_ = s.pipe.Do(ctx, func(context.Context) error {
		uri := params.TextDocument.URI.SpanURI()
		p, ok := s.pipe.ProviderFor(uri)
		if !ok {
			return nil
		}

		var actions []providers.CodeAction
		for _, d := range params.Context.Diagnostics {
			name, ok := providers.UnresolvedClassName(d.Message)
			if !ok {
				continue
			}
			actions = append(actions, p.MissingImportActions(uri, name)...)
		}

		if scp, ok := s.pipe.ScopeFor(uri); ok {
			if unit := scp.Unit(); unit != nil {
				for _, su := range unit.AST() {
					if su.URI() != uri {
						continue
					}
					actions = append(actions, p.UnusedImportActions(su)...)
				}
			}
		}

		for _, a := range actions {
			out = append(out, protocol.CodeAction{
				Title: a.Title,
				Kind:  protocol.QuickFix,
				Edit:  toProtocolWorkspaceEdit(a.Edit),
			})
		}
		return nil
	})
	return out
}

// PrepareRename handles textDocument/prepareRename.
func (s *Server) PrepareRename(ctx context.Context, params *protocol.PrepareRenameParams) *protocol.Range {
	var out *protocol.Range
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		r, ok := p.PrepareRename(params.TextDocument.URI.SpanURI(), params.Position)
		if !ok {
			return nil
		}
		out = &r
		return nil
	})
	return out
}

// renameEdit is the rename response's wire shape. The pinned protocol
// version's WorkspaceEdit cannot carry file-rename operations in
// documentChanges, so the union is marshaled by hand.
type renameEdit struct {
	Changes         map[string][]protocol.TextEdit `json:"changes,omitempty"`
	DocumentChanges []interface{}                  `json:"documentChanges,omitempty"`
}

type renameFileOp struct {
	Kind   string `json:"kind"`
	OldURI string `json:"oldUri"`
	NewURI string `json:"newUri"`
}

// Rename handles textDocument/rename.
func (s *Server) Rename(ctx context.Context, params *protocol.RenameParams) interface{} {
	var out interface{}
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		edit, ok := p.Rename(params.TextDocument.URI.SpanURI(), params.Position, params.NewName)
		if !ok {
			return nil
		}
		we := renameEdit{Changes: make(map[string][]protocol.TextEdit)}
		for uri, edits := range edit.Changes {
			for _, e := range edits {
				we.Changes[string(uri)] = append(we.Changes[string(uri)], protocol.TextEdit{Range: e.Range, NewText: e.NewText})
			}
		}
		for _, fr := range edit.FileRenames {
			we.DocumentChanges = append(we.DocumentChanges, renameFileOp{
				Kind:   "rename",
				OldURI: string(fr.OldURI),
				NewURI: string(fr.NewURI),
			})
		}
		out = we
		return nil
	})
	return out
}

// DocumentSymbol handles textDocument/documentSymbol.
func (s *Server) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		for _, sym := range p.DocumentSymbols(params.TextDocument.URI.SpanURI()) {
			out = append(out, toProtocolDocumentSymbol(sym))
		}
		return nil
	})
	return out
}

// WorkspaceSymbol handles workspace/symbol. Every open scope is
// searched; results are concatenated in scope order.
func (s *Server) WorkspaceSymbol(ctx context.Context, params *protocol.WorkspaceSymbolParams) []protocol.SymbolInformation {
	var out []protocol.SymbolInformation
	_ = s.pipe.Do(ctx, func(context.Context) error {
		for _, p := range s.pipe.Providers() {
			for _, sym := range p.WorkspaceSymbols(params.Query) {
				out = append(out, protocol.SymbolInformation{
					Name:          sym.Name,
					Kind:          protocol.SymbolKind(sym.Kind),
					ContainerName: sym.ContainerName,
					Location: protocol.Location{
						URI:   protocol.URIFromSpanURI(sym.Location.URI),
						Range: sym.Location.Range,
					},
				})
			}
		}
		return nil
	})
	return out
}

// semanticTokens is the semantic-tokens response wire shape.
type semanticTokens struct {
	Data []uint32 `json:"data"`
}

// SemanticTokensFull handles textDocument/semanticTokens/full.
func (s *Server) SemanticTokensFull(ctx context.Context, params *protocol.SemanticTokensParams) interface{} {
	var out interface{}
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		out = semanticTokens{Data: p.SemanticTokensFull(params.TextDocument.URI.SpanURI())}
		return nil
	})
	return out
}

// SemanticTokensRange handles textDocument/semanticTokens/range.
func (s *Server) SemanticTokensRange(ctx context.Context, params *protocol.SemanticTokensRangeParams) interface{} {
	var out interface{}
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		data := p.SemanticTokensRange(
			params.TextDocument.URI.SpanURI(),
			int(params.Range.Start.Line),
			int(params.Range.End.Line),
		)
		out = semanticTokens{Data: data}
		return nil
	})
	return out
}

// InlayHintParams is the textDocument/inlayHint request's wire shape.
type InlayHintParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Range        protocol.Range                  `json:"range"`
}

// InlayHintItem is the textDocument/inlayHint response's wire shape.
type InlayHintItem struct {
	Position protocol.Position `json:"position"`
	Label    string            `json:"label"`
	Kind     int               `json:"kind,omitempty"`
}

// inlay hint kinds on the wire.
const (
	inlayHintKindType      = 1
	inlayHintKindParameter = 2
)

// InlayHint handles textDocument/inlayHint.
func (s *Server) InlayHint(ctx context.Context, params *InlayHintParams) []InlayHintItem {
	var out []InlayHintItem
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		hints := p.InlayHints(
			params.TextDocument.URI.SpanURI(),
			int(params.Range.Start.Line),
			int(params.Range.End.Line),
		)
		for _, h := range hints {
			kind := inlayHintKindType
			if h.Kind == providers.InlayHintParameter {
				kind = inlayHintKindParameter
			}
			out = append(out, InlayHintItem{Position: h.Pos, Label: h.Label, Kind: kind})
		}
		return nil
	})
	return out
}

// Formatting handles textDocument/formatting.
func (s *Server) Formatting(ctx context.Context, params *protocol.DocumentFormattingParams) []protocol.TextEdit {
	var out []protocol.TextEdit
	_ = s.pipe.Do(ctx, func(context.Context) error {
		p, ok := s.pipe.ProviderFor(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		edits, ok := p.Format(params.TextDocument.URI.SpanURI())
		if !ok {
			return nil
		}
		for _, e := range edits {
			out = append(out, protocol.TextEdit{Range: e.Range, NewText: e.NewText})
		}
		return nil
	})
	return out
}

// DecompiledSourceParams is the decompiledSource request's wire shape.
type DecompiledSourceParams struct {
	URI string `json:"uri"`
}

// decompiledSourceResult is the decompiledSource response's wire shape.
type decompiledSourceResult struct {
	Text string `json:"text"`
}

// DecompiledSource handles the bespoke request serving synthetic source
// text for virtual decompiled-class URIs.
func (s *Server) DecompiledSource(_ context.Context, params *DecompiledSourceParams) interface{} {
	text, ok := s.reg.Get(span.URI(params.URI))
	if !ok {
		return nil
	}
	return decompiledSourceResult{Text: text}
}

// publishAll sends one publishDiagnostics notification per packet,
// fanned out concurrently. It runs after the scope's recompile lock has
// been released, so that lock does not order publication across rounds;
// rounds go out in the order their lifecycle handlers reach this call.
func (s *Server) publishAll(ctx context.Context, packets []pipeline.Publish) {
	if s.conn == nil {
		return
	}
	var g errgroup.Group
	for _, pkt := range packets {
		pkt := pkt
		g.Go(func() error {
			s.publishDiagnostics(ctx, &lsp.PublishDiagnosticsParams{
				URI:         lsp.DocumentURI(pkt.URI),
				Diagnostics: diagnostics.ToLSP(pkt.Diagnostics),
			})
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Server) publishDiagnostics(ctx context.Context, params *lsp.PublishDiagnosticsParams) {
	if err := s.conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		s.log.Debug(errPublishDiagnostics, "error", err)
	}
}

func (s *Server) showMessage(ctx context.Context, params *protocol.ShowMessageParams) {
	if err := s.conn.Notify(ctx, "window/showMessage", params); err != nil {
		s.log.Debug(errShowMessage, "error", err)
	}
}

func (s *Server) checkForUpdates(ctx context.Context) {
	go func() {
		up := s.i.Check(ctx)
		if !up.Available {
			// no newer release, nothing to do
			return
		}

		msg := fmt.Sprintf(newVersionMsgFmt, up.Remote, serverName, up.Local)
		if up.HelperChanged {
			msg += helperChangedMsg
		}
		s.showMessage(ctx, &protocol.ShowMessageParams{
			Type:    protocol.Info,
			Message: msg,
		})
	}()
}

func toLSPLocations(locs []providers.Location) []lsp.Location {
	out := make([]lsp.Location, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.ToLSP())
	}
	return out
}

func toProtocolWorkspaceEdit(edit providers.WorkspaceEdit) protocol.WorkspaceEdit {
	out := protocol.WorkspaceEdit{Changes: make(map[string][]protocol.TextEdit)}
	for uri, edits := range edit.Changes {
		for _, e := range edits {
			out.Changes[string(uri)] = append(out.Changes[string(uri)], protocol.TextEdit{Range: e.Range, NewText: e.NewText})
		}
	}
	return out
}

func toProtocolDocumentSymbol(sym providers.DocumentSymbol) protocol.DocumentSymbol {
	detail := sym.Detail
	if sym.IsFeatureMethod {
		detail = "feature method " + detail
	}
	out := protocol.DocumentSymbol{
		Name:           sym.Name,
		Detail:         detail,
		Kind:           protocol.SymbolKind(sym.Kind),
		Range:          sym.Range,
		SelectionRange: sym.SelectionRange,
	}
	for _, c := range sym.Children {
		out.Children = append(out.Children, toProtocolDocumentSymbol(c))
	}
	return out
}
