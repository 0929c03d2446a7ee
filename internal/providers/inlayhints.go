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
	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// InlayHintKind distinguishes the two hint flavours this provider
// emits.
type InlayHintKind int

// Inlay hint kinds.
const (
	InlayHintType InlayHintKind = iota
	InlayHintParameter
)

// InlayHint is a single label positioned at Pos.
type InlayHint struct {
	Pos   frontend.Position
	Label string
	Kind  InlayHintKind
}

// genericParamNames are single-parameter names too uninformative to
// label.
var genericParamNames = map[string]struct{}{
	"value": {}, "arg": {}, "it": {},
}

// InlayHints computes the hints for a line range: inferred-type labels
// after dynamically-typed variable declarations whose initializer has a
// non-Object, non-void inferred type, and parameter-name labels before
// method-call arguments, skipping closure arguments, arguments whose
// own identifier already matches the parameter name, and single-
// parameter calls with a generic parameter name. Nodes outside
// [startLine, endLine] are skipped.
func (p *Provider) InlayHints(uri span.URI, startLine, endLine int) []InlayHint {
	var out []InlayHint
	for _, n := range p.scp.Index().NodesForURI(uri) {
		if !n.HasRange() {
			continue
		}
		line := int(n.Range().End.Line)
		if line < startLine || line > endLine {
			continue
		}
		if v, ok := n.(frontend.VariableNode); ok {
			if hint, ok := p.typeHintFor(v); ok {
				out = append(out, hint)
			}
			continue
		}
		if call, ok := n.(frontend.CallNode); ok {
			out = append(out, p.parameterHintsFor(call)...)
		}
	}
	return out
}

func (p *Provider) typeHintFor(v frontend.VariableNode) (InlayHint, bool) {
	if !v.IsDynamicallyTyped() {
		return InlayHint{}, false
	}
	init, ok := v.InitializerExpr()
	if !ok {
		return InlayHint{}, false
	}
	t, ok := p.ast.GetTypeOf(init)
	if !ok || t == "" || t == "Object" || t == "void" {
		return InlayHint{}, false
	}
	return InlayHint{
		Pos:   frontend.Position{Line: v.Range().End.Line, Character: v.Range().End.Character},
		Label: ": " + t,
		Kind:  InlayHintType,
	}, true
}

func (p *Provider) parameterHintsFor(call frontend.CallNode) []InlayHint {
	m, ok := p.ast.GetMethodFromCall(call)
	if !ok {
		return nil
	}
	names := m.ParameterNames()
	args := call.Arguments()
	if len(names) == 0 || len(args) == 0 {
		return nil
	}
	if len(args) == 1 && len(names) == 1 {
		if _, generic := genericParamNames[names[0]]; generic {
			return nil
		}
	}

	var out []InlayHint
	for i, arg := range args {
		if i >= len(names) {
			break
		}
		if arg.IsClosure() {
			continue
		}
		if arg.Name() == names[i] {
			continue
		}
		out = append(out, InlayHint{
			Pos:   frontend.Position{Line: arg.Range().Start.Line, Character: arg.Range().Start.Character},
			Label: names[i] + ":",
			Kind:  InlayHintParameter,
		})
	}
	return out
}
