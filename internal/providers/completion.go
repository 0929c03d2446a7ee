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

package providers

import (
	"context"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// CompletionItemKind mirrors the numeric values of LSP's CompletionItemKind
// enum so converting to the wire type is a cast, matching the SymbolKind
// convention in symbols.go.
type CompletionItemKind int

// Completion item kinds used by Completion, numbered per the LSP
// specification.
const (
	CompletionVariable CompletionItemKind = 6
	CompletionClass    CompletionItemKind = 7
	CompletionInterface CompletionItemKind = 8
	CompletionField    CompletionItemKind = 5
	CompletionMethod   CompletionItemKind = 2
	CompletionProperty CompletionItemKind = 10
	CompletionSnippet  CompletionItemKind = 15
)

// CompletionItem is one candidate offered by Completion. InsertText differs from Label for snippet-style domain
// completions (test-framework block labels).
type CompletionItem struct {
	Label      string
	Kind       CompletionItemKind
	Detail     string
	InsertText string
}

// Completion runs the full completion sequence: inject
// the placeholder, incrementally recompile just this URI, locate the
// offset node, gather candidates from local scope, the enclosing type,
// imported types, and the classpath symbol index, then restore the
// source. The restore always runs, even when candidate gathering fails,
// per the orchestrator's inject/restore pairing contract.
func (p *Provider) Completion(ctx context.Context, uri span.URI, pos protocol.Position) []CompletionItem {
	priorText, err := p.orch.InjectCompletionPlaceholder(p.tracker, uri, pos)
	if err != nil {
		p.log.Debug("failed to inject completion placeholder", "error", err)
		return nil
	}
	// The revisit after restore keeps later requests from observing the
	// placeholder identifier in the index.
	defer func() {
		p.orch.RestoreDocumentSource(p.tracker, uri, priorText)
		if err := p.scp.RecompileIncremental(ctx, map[span.URI]struct{}{uri: {}}); err != nil {
			p.log.Debug("post-completion revisit failed", "error", err)
		}
	}()

	if err := p.scp.RecompileIncremental(ctx, map[span.URI]struct{}{uri: {}}); err != nil {
		p.log.Debug("incremental recompile for completion failed", "error", err)
		return nil
	}

	n, ok := p.offsetNode(uri, pos)
	if !ok {
		return nil
	}

	var out []CompletionItem
	out = append(out, p.localScopeCandidates(n)...)
	out = append(out, p.enclosingTypeCandidates(n)...)
	out = append(out, p.importedTypeCandidates(uri)...)
	out = append(out, p.classpathCandidates()...)
	out = append(out, p.domainCandidates(n)...)
	return out
}

func (p *Provider) localScopeCandidates(n frontend.Node) []CompletionItem {
	method, ok := p.ast.GetEnclosingNodeOfType(n, frontend.KindMethod)
	if !ok {
		return nil
	}
	m, ok := method.(frontend.MethodNode)
	if !ok {
		return nil
	}
	var out []CompletionItem
	for _, t := range m.ParameterTypes() {
		out = append(out, CompletionItem{Label: t, Kind: CompletionVariable})
	}
	return out
}

func (p *Provider) enclosingTypeCandidates(n frontend.Node) []CompletionItem {
	enclosing, ok := p.ast.GetEnclosingNodeOfType(n, frontend.KindClass)
	if !ok {
		return nil
	}
	cls, ok := enclosing.(frontend.ClassNode)
	if !ok {
		return nil
	}
	var out []CompletionItem
	for _, m := range cls.Methods() {
		if m.Synthetic() {
			continue
		}
		out = append(out, CompletionItem{Label: m.Name(), Kind: CompletionMethod, Detail: m.ReturnType()})
	}
	for _, f := range cls.Fields() {
		if f.Synthetic() {
			continue
		}
		out = append(out, CompletionItem{Label: f.Name(), Kind: CompletionField, Detail: f.Type()})
	}
	for _, pr := range cls.Properties() {
		if pr.Synthetic() {
			continue
		}
		out = append(out, CompletionItem{Label: pr.Name(), Kind: CompletionProperty, Detail: pr.Type()})
	}
	return out
}

func (p *Provider) importedTypeCandidates(uri span.URI) []CompletionItem {
	var out []CompletionItem
	for _, fqn := range p.scp.Index().DependenciesOf(uri) {
		cls, ok := p.scp.Index().ClassNodeByName(fqn)
		if !ok {
			continue
		}
		out = append(out, CompletionItem{Label: cls.Name(), Kind: classCompletionKind(cls), Detail: fqn})
	}
	return out
}

func (p *Provider) classpathCandidates() []CompletionItem {
	syms := p.classpathSymbols()
	out := make([]CompletionItem, 0, len(syms))
	for _, s := range syms {
		out = append(out, CompletionItem{
			Label:  s.SimpleName,
			Kind:   classpathCompletionKind(s.Kind),
			Detail: s.FullyQualifiedName,
		})
	}
	return out
}

// domainCandidates layers a test framework's block-label/snippet
// completions on top when the offset node's enclosing class is
// recognised as belonging to that framework.
func (p *Provider) domainCandidates(n frontend.Node) []CompletionItem {
	if p.testFW == nil {
		return nil
	}
	enclosing, ok := p.ast.GetEnclosingNodeOfType(n, frontend.KindClass)
	if !ok {
		return nil
	}
	cls, ok := enclosing.(frontend.ClassNode)
	if !ok || !p.testFW.IsSpecClass(cls) {
		return nil
	}
	return p.testFW.BlockLabels()
}

func classCompletionKind(cls frontend.ClassNode) CompletionItemKind {
	if cls.IsInterface() {
		return CompletionInterface
	}
	return CompletionClass
}

func classpathCompletionKind(k classpath.Kind) CompletionItemKind {
	if k == classpath.KindInterface {
		return CompletionInterface
	}
	return CompletionClass
}
