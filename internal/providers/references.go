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
)

// References answers textDocument/references: delegate to the
// frontend's reference-search utility, translating each hit to a
// Location via the AST index.
func (p *Provider) References(uri span.URI, pos protocol.Position) []Location {
	n, ok := p.offsetNode(uri, pos)
	if !ok {
		return nil
	}
	refs := p.ast.GetReferences(n)
	out := make([]Location, 0, len(refs))
	for _, r := range refs {
		if !r.HasRange() {
			continue
		}
		out = append(out, p.locationOf(r))
	}
	return out
}

// DocumentHighlight implements the documentHighlight flavour of
// References: identical resolution, filtered down to the requesting
// document.
func (p *Provider) DocumentHighlight(uri span.URI, pos protocol.Position) []Location {
	out := make([]Location, 0)
	for _, loc := range p.References(uri, pos) {
		if loc.URI == uri {
			out = append(out, loc)
		}
	}
	return out
}
