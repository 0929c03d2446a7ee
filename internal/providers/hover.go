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
	"fmt"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// Hover is the result of a textDocument/hover request: Markdown contents
// plus the range of the symbol the contents describe.
type Hover struct {
	Contents string
	Range    frontend.Range
}

// Hover answers textDocument/hover: a read-only request answered
// directly off the current AST Index snapshot, with no recompile and no
// placeholder injection. It reports the node's resolved type and, for
// callables, its signature.
func (p *Provider) Hover(uri span.URI, pos protocol.Position) (Hover, bool) {
	n, ok := p.offsetNode(uri, pos)
	if !ok {
		return Hover{}, false
	}

	switch n.Kind() {
	case frontend.KindMethod, frontend.KindConstructor:
		if m, ok := n.(frontend.MethodNode); ok {
			return Hover{Contents: methodSignature(m), Range: n.Range()}, true
		}
	case frontend.KindClass, frontend.KindInterface, frontend.KindEnum, frontend.KindAnnotationType:
		if cls, ok := n.(frontend.ClassNode); ok {
			return Hover{Contents: classSignature(cls), Range: n.Range()}, true
		}
	case frontend.KindField:
		if f, ok := n.(frontend.FieldNode); ok {
			return Hover{Contents: fmt.Sprintf("%s %s", f.Type(), f.Name()), Range: n.Range()}, true
		}
	case frontend.KindProperty:
		if pr, ok := n.(frontend.PropertyNode); ok {
			return Hover{Contents: fmt.Sprintf("%s %s", pr.Type(), pr.Name()), Range: n.Range()}, true
		}
	}

	if t, ok := p.ast.GetTypeOf(n); ok {
		return Hover{Contents: fmt.Sprintf("%s %s", t, n.Name()), Range: n.Range()}, true
	}
	return Hover{}, false
}

func methodSignature(m frontend.MethodNode) string {
	params := m.ParameterTypes()
	sig := m.Name() + "("
	for i, t := range params {
		if i > 0 {
			sig += ", "
		}
		sig += t
	}
	sig += ")"
	if m.ReturnType() != "" {
		sig = m.ReturnType() + " " + sig
	}
	return sig
}

func classSignature(cls frontend.ClassNode) string {
	kind := "class"
	if cls.IsInterface() {
		kind = "interface"
	} else if cls.IsAbstract() {
		kind = "abstract class"
	}
	sig := kind + " " + cls.FullyQualifiedName()
	if cls.SuperclassName() != "" {
		sig += " extends " + cls.SuperclassName()
	}
	if len(cls.InterfaceNames()) > 0 {
		sig += " implements "
		for i, iface := range cls.InterfaceNames() {
			if i > 0 {
				sig += ", "
			}
			sig += iface
		}
	}
	return sig
}
