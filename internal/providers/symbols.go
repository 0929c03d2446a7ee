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
	"strings"

	"github.com/golang/tools/span"
	lsp "github.com/sourcegraph/go-lsp"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// SymbolKind mirrors the numeric values of LSP's SymbolKind enum so a
// direct conversion to lsp.SymbolKind is a cast.
type SymbolKind int

// Symbol kinds used by DocumentSymbol/WorkspaceSymbol, numbered per the
// LSP specification.
const (
	SymbolClass       SymbolKind = 5
	SymbolMethod      SymbolKind = 6
	SymbolProperty    SymbolKind = 7
	SymbolField       SymbolKind = 8
	SymbolConstructor SymbolKind = 9
	SymbolEnum        SymbolKind = 10
	SymbolInterface   SymbolKind = 11
	SymbolVariable    SymbolKind = 13
)

// ToLSP converts k to go-lsp's SymbolKind.
func (k SymbolKind) ToLSP() lsp.SymbolKind { return lsp.SymbolKind(k) }

// DocumentSymbol is one class/method/field/property node projected for
// the textDocument/documentSymbol response.
type DocumentSymbol struct {
	Name           string
	Detail         string
	Kind           SymbolKind
	Range          frontend.Range
	SelectionRange frontend.Range
	// IsFeatureMethod marks a method matching the test framework's
	// feature-method naming/shape convention, when a TestFrameworkDetector
	// is configured.
	IsFeatureMethod bool
	Children        []DocumentSymbol
}

// DocumentSymbols answers textDocument/documentSymbol: emit
// class/method/field/property nodes as DocumentSymbol with kind mapped
// from the AST kind, decorating feature methods when a test-framework
// detector is configured.
func (p *Provider) DocumentSymbols(uri span.URI) []DocumentSymbol {
	var out []DocumentSymbol
	for _, cls := range p.scp.Index().ClassNodesForURI(uri) {
		out = append(out, p.classSymbol(cls))
	}
	return out
}

func (p *Provider) classSymbol(cls frontend.ClassNode) DocumentSymbol {
	sym := DocumentSymbol{
		Name:           cls.Name(),
		Kind:           classKind(cls),
		Range:          cls.Range(),
		SelectionRange: cls.Range(),
	}
	for _, m := range cls.Methods() {
		if m.Synthetic() {
			continue
		}
		ms := DocumentSymbol{
			Name:           m.Name(),
			Detail:         m.ReturnType(),
			Kind:           methodKind(m),
			Range:          m.Range(),
			SelectionRange: m.Range(),
		}
		if p.testFW != nil {
			ms.IsFeatureMethod = p.testFW.IsFeatureMethod(m)
		}
		sym.Children = append(sym.Children, ms)
	}
	for _, f := range cls.Fields() {
		if f.Synthetic() {
			continue
		}
		sym.Children = append(sym.Children, DocumentSymbol{
			Name: f.Name(), Detail: f.Type(), Kind: SymbolField,
			Range: f.Range(), SelectionRange: f.Range(),
		})
	}
	for _, pr := range cls.Properties() {
		if pr.Synthetic() {
			continue
		}
		sym.Children = append(sym.Children, DocumentSymbol{
			Name: pr.Name(), Detail: pr.Type(), Kind: SymbolProperty,
			Range: pr.Range(), SelectionRange: pr.Range(),
		})
	}
	return sym
}

func classKind(cls frontend.ClassNode) SymbolKind {
	switch cls.Kind() {
	case frontend.KindInterface:
		return SymbolInterface
	case frontend.KindEnum:
		return SymbolEnum
	default:
		return SymbolClass
	}
}

func methodKind(m frontend.MethodNode) SymbolKind {
	if m.Kind() == frontend.KindConstructor {
		return SymbolConstructor
	}
	return SymbolMethod
}

// WorkspaceSymbol is a scope-wide symbol match.
type WorkspaceSymbol struct {
	Name          string
	Kind          SymbolKind
	Location      Location
	ContainerName string
}

// WorkspaceSymbols answers workspace/symbol:
// case-insensitive substring match over every class/method/field/
// property name known to the AST index.
func (p *Provider) WorkspaceSymbols(query string) []WorkspaceSymbol {
	q := strings.ToLower(query)
	var out []WorkspaceSymbol
	for _, cls := range p.scp.Index().AllClassNodes() {
		if strings.Contains(strings.ToLower(cls.Name()), q) {
			out = append(out, p.workspaceSymbol(cls, classKind(cls), ""))
		}
		for _, m := range cls.Methods() {
			if !m.Synthetic() && strings.Contains(strings.ToLower(m.Name()), q) {
				out = append(out, p.workspaceSymbol(m, methodKind(m), cls.Name()))
			}
		}
		for _, f := range cls.Fields() {
			if !f.Synthetic() && strings.Contains(strings.ToLower(f.Name()), q) {
				out = append(out, p.workspaceSymbol(f, SymbolField, cls.Name()))
			}
		}
		for _, pr := range cls.Properties() {
			if !pr.Synthetic() && strings.Contains(strings.ToLower(pr.Name()), q) {
				out = append(out, p.workspaceSymbol(pr, SymbolProperty, cls.Name()))
			}
		}
	}
	return out
}

func (p *Provider) workspaceSymbol(n frontend.Node, kind SymbolKind, container string) WorkspaceSymbol {
	return WorkspaceSymbol{
		Name:          n.Name(),
		Kind:          kind,
		Location:      p.locationOf(n),
		ContainerName: container,
	}
}
