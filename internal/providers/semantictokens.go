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
	"sort"
	"strings"

	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// TokenType indexes into SemanticTokenLegend, the fixed type list
// published at initialize time.
type TokenType int

// Semantic token types, in the exact order the legend is published in.
const (
	TokenNamespace TokenType = iota
	TokenType_
	TokenClass
	TokenInterface
	TokenEnum
	TokenParameter
	TokenVariable
	TokenProperty
	TokenFunction
	TokenMethod
	TokenDecorator
	TokenEnumMember
	TokenKeyword
	TokenTypeParameter
)

// SemanticTokenLegend is the fixed, ordered type list published at
// initialize time; its index order is what TokenType encodes.
var SemanticTokenLegend = []string{
	"namespace", "type", "class", "interface", "enum", "parameter",
	"variable", "property", "function", "method", "decorator",
	"enumMember", "keyword", "typeParameter",
}

// TokenModifier bits, in the exact order the legend is published in.
type TokenModifier uint32

// Semantic token modifier bits.
const (
	ModDeclaration TokenModifier = 1 << iota
	ModStatic
	ModReadonly
	ModDeprecated
	ModAbstract
	ModDefaultLibrary
)

// SemanticTokenModifierLegend is the fixed, ordered modifier list.
var SemanticTokenModifierLegend = []string{
	"declaration", "static", "readonly", "deprecated", "abstract", "defaultLibrary",
}

// semanticToken is one pre-dedup, pre-delta-encode token.
type semanticToken struct {
	line, col, length int
	typ               TokenType
	mods              TokenModifier
}

// SemanticTokensFull answers the full semantic-tokens
// request: walk every node in uri's AST, fall back to a source-line scan
// when the AST column doesn't land on the identifier, deduplicate
// overlaps, and delta-encode the result.
func (p *Provider) SemanticTokensFull(uri span.URI) []uint32 {
	return encodeTokens(dedupTokens(p.walkTokens(uri, nil)))
}

// SemanticTokensRange implements the range variant: identical walk, with
// nodes whose start line falls outside [start,end] skipped early.
func (p *Provider) SemanticTokensRange(uri span.URI, startLine, endLine int) []uint32 {
	bounds := &[2]int{startLine, endLine}
	return encodeTokens(dedupTokens(p.walkTokens(uri, bounds)))
}

func (p *Provider) walkTokens(uri span.URI, bounds *[2]int) []semanticToken {
	content, _ := p.tracker.Contents(uri)
	var out []semanticToken
	for _, n := range p.scp.Index().NodesForURI(uri) {
		if !n.HasRange() {
			continue
		}
		line := int(n.Range().Start.Line)
		if bounds != nil && (line < bounds[0] || line > bounds[1]) {
			continue
		}
		typ, mods, ok := classifyToken(n)
		if !ok {
			continue
		}
		col := int(n.Range().Start.Character)
		name := n.Name()
		col = resolveIdentifierColumn(content, line, col, name)
		out = append(out, semanticToken{line: line, col: col, length: len(name), typ: typ, mods: mods | ModDeclaration})
	}
	return out
}

// resolveIdentifierColumn falls back to a source-line scan for name when
// the AST-reported column doesn't point at it.
func resolveIdentifierColumn(content string, line, col int, name string) int {
	if name == "" {
		return col
	}
	text := sourceLine(content, line)
	if col >= 0 && col+len(name) <= len(text) && text[col:col+len(name)] == name {
		return col
	}
	if idx := strings.Index(text, name); idx >= 0 {
		return idx
	}
	return col
}

func classifyToken(n frontend.Node) (TokenType, TokenModifier, bool) {
	switch n.Kind() {
	case frontend.KindClass:
		return TokenClass, classModifiers(n), true
	case frontend.KindInterface:
		return TokenInterface, classModifiers(n), true
	case frontend.KindEnum:
		return TokenEnum, classModifiers(n), true
	case frontend.KindAnnotationType:
		return TokenType_, classModifiers(n), true
	case frontend.KindMethod:
		return TokenMethod, methodModifiers(n), true
	case frontend.KindConstructor:
		return TokenFunction, methodModifiers(n), true
	case frontend.KindField, frontend.KindProperty:
		return TokenProperty, 0, true
	case frontend.KindVariable:
		return TokenVariable, 0, true
	case frontend.KindParameter:
		return TokenParameter, 0, true
	default:
		return 0, 0, false
	}
}

func classModifiers(n frontend.Node) TokenModifier {
	cls, ok := n.(frontend.ClassNode)
	if !ok {
		return 0
	}
	var m TokenModifier
	if cls.IsAbstract() {
		m |= ModAbstract
	}
	return m
}

func methodModifiers(n frontend.Node) TokenModifier {
	m, ok := n.(frontend.MethodNode)
	if !ok {
		return 0
	}
	var mods TokenModifier
	if m.IsStatic() {
		mods |= ModStatic
	}
	return mods
}

// dedupTokens removes overlapping tokens, preferring the shorter one and
// breaking ties by lower TokenType index.
func dedupTokens(tokens []semanticToken) []semanticToken {
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].line != tokens[j].line {
			return tokens[i].line < tokens[j].line
		}
		return tokens[i].col < tokens[j].col
	})

	var out []semanticToken
	for _, t := range tokens {
		if len(out) > 0 && overlaps(out[len(out)-1], t) {
			if better(t, out[len(out)-1]) {
				out[len(out)-1] = t
			}
			continue
		}
		out = append(out, t)
	}
	return out
}

func overlaps(a, b semanticToken) bool {
	if a.line != b.line {
		return false
	}
	return b.col < a.col+a.length
}

func better(candidate, current semanticToken) bool {
	if candidate.length != current.length {
		return candidate.length < current.length
	}
	return candidate.typ < current.typ
}

// encodeTokens produces LSP's delta-encoded flat u32 sequence:
// (deltaLine, deltaStartChar, length, tokenType, tokenModifiers) per
// token, with deltaStartChar relative to the previous token's start
// column only when on the same line.
func encodeTokens(tokens []semanticToken) []uint32 {
	out := make([]uint32, 0, len(tokens)*5)
	prevLine, prevCol := 0, 0
	for _, t := range tokens {
		deltaLine := t.line - prevLine
		deltaCol := t.col
		if deltaLine == 0 {
			deltaCol = t.col - prevCol
		}
		out = append(out, uint32(deltaLine), uint32(deltaCol), uint32(t.length), uint32(t.typ), uint32(t.mods))
		prevLine, prevCol = t.line, t.col
	}
	return out
}
