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
	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// Definition runs the definition fallback chain: ask
// strict first; if the definition node lacks a source range (it names
// an external type), ask non-strict, then try a project-source locator,
// then fall back to decompiling the class to a synthetic virtual URI.
func (p *Provider) Definition(uri span.URI, pos protocol.Position) ([]Location, bool) {
	n, ok := p.offsetNode(uri, pos)
	if !ok {
		return nil, false
	}

	def, ok := p.ast.GetDefinition(n, true)
	if ok && def.HasRange() {
		return []Location{p.locationOf(def)}, true
	}

	def, ok = p.ast.GetDefinition(n, false)
	if !ok {
		return nil, false
	}
	if def.HasRange() {
		return []Location{p.locationOf(def)}, true
	}
	return p.externalLocation(def.Name())
}

// TypeDefinition answers textDocument/typeDefinition: resolve the
// type of the node's origin (method return, variable type, or the class
// itself), then the same source-or-decompile fallback as Definition.
func (p *Provider) TypeDefinition(uri span.URI, pos protocol.Position) ([]Location, bool) {
	n, ok := p.offsetNode(uri, pos)
	if !ok {
		return nil, false
	}

	typeNode, ok := p.ast.GetTypeDefinition(n)
	if !ok {
		return nil, false
	}
	if typeNode.HasRange() {
		return []Location{p.locationOf(typeNode)}, true
	}
	return p.externalLocation(typeNode.Name())
}

// Implementation answers textDocument/implementation: for an
// interface/abstract class or one of its methods, scan every class node
// the scope's AST index knows about for subtypes/overrides.
func (p *Provider) Implementation(uri span.URI, pos protocol.Position) []Location {
	n, ok := p.offsetNode(uri, pos)
	if !ok {
		return nil
	}

	target, targetMethod, ok := p.implementationTarget(n)
	if !ok {
		return nil
	}

	var out []Location
	for _, cls := range p.scp.Index().AllClassNodes() {
		if cls == target {
			continue
		}
		if !isSubtype(cls, target) {
			continue
		}
		if targetMethod == "" {
			if cls.HasRange() {
				out = append(out, p.locationOf(cls))
			}
			continue
		}
		for _, m := range cls.Methods() {
			if m.Name() == targetMethod && m.HasRange() {
				out = append(out, p.locationOf(m))
			}
		}
	}
	return out
}

// implementationTarget resolves n to the class (and, if n is itself a
// method, the method name) whose implementors should be searched.
func (p *Provider) implementationTarget(n frontend.Node) (frontend.ClassNode, string, bool) {
	if n.Kind() == frontend.KindMethod {
		if enclosing, ok := p.ast.GetEnclosingNodeOfType(n, frontend.KindClass); ok {
			if cls, ok := enclosing.(frontend.ClassNode); ok {
				return cls, n.Name(), true
			}
		}
		return nil, "", false
	}
	if cls, ok := n.(frontend.ClassNode); ok {
		return cls, "", true
	}
	if enclosing, ok := p.ast.GetEnclosingNodeOfType(n, frontend.KindClass); ok {
		if cls, ok := enclosing.(frontend.ClassNode); ok {
			return cls, "", true
		}
	}
	return nil, "", false
}

// isSubtype reports whether candidate declares target as its superclass
// or one of its interfaces. This is a direct (one-hop) check by design:
// the scan looks for subtypes and overrides, not a
// transitive hierarchy walk.
func isSubtype(candidate, target frontend.ClassNode) bool {
	if candidate.SuperclassName() == target.FullyQualifiedName() || candidate.SuperclassName() == target.Name() {
		return true
	}
	for _, iface := range candidate.InterfaceNames() {
		if iface == target.FullyQualifiedName() || iface == target.Name() {
			return true
		}
	}
	return false
}

// externalLocation resolves an unresolved-in-project fully-qualified
// name via the source locator, falling back to decompiling it to a
// synthetic virtual URI.
func (p *Provider) externalLocation(fqn string) ([]Location, bool) {
	if p.locator != nil {
		if loc, ok := p.locator.Locate(fqn); ok {
			return []Location{loc}, true
		}
	}
	if p.decompiler != nil {
		if _, declRange, ok := p.decompiler.Decompile(fqn); ok {
			return []Location{{URI: DecompiledURI(fqn), Range: declRange}}, true
		}
	}
	return nil, false
}

func (p *Provider) locationOf(n frontend.Node) Location {
	uri, _ := p.scp.Index().URIOf(n)
	return Location{URI: uri, Range: n.Range()}
}
