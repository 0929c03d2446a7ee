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

package providers_test

import (
	"testing"

	"github.com/golang/tools/span"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovy-lsp/groovy-language-server/internal/filetracker"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend/frontendtest"
	"github.com/groovy-lsp/groovy-language-server/internal/providers"
)

func TestSemanticTokensFullEncodesDeltasAndFallsBackToLineScan(t *testing.T) {
	fileA := span.URI("file:///proj/A.groovy")

	// the AST column points at the leading keyword, not the identifier;
	// the provider must recover the identifier column from the source line.
	cls := frontendtest.Class("pkg.A").AtRange(0, 0, 2, 0)
	cls.NodeName = "A"
	method := frontendtest.Method("run", "void").AtRange(1, 4, 1, 17)

	world := func() []frontend.SourceUnit {
		return []frontend.SourceUnit{
			&frontendtest.FakeSourceUnit{SourceURI: fileA, SourceNodes: []frontend.Node{cls, method}},
		}
	}
	s := newTestScope(t, world)

	tr := filetracker.New()
	tr.Open(fileA, "class A {\n    void run() {}\n}")

	p := providers.New(s, newFakeAST(), nil, tr)
	data := p.SemanticTokensFull(fileA)

	require.Len(t, data, 10, "two tokens, five u32s each")
	// class A: line 0, identifier at column 6, length 1, type class, declared.
	assert.Equal(t, []uint32{0, 6, 1, uint32(providers.TokenClass), 1}, data[:5])
	// void run: next line (delta 1), identifier at column 9, length 3, type method.
	assert.Equal(t, []uint32{1, 9, 3, uint32(providers.TokenMethod), 1}, data[5:])
}

func TestSemanticTokensStaticMethodCarriesStaticModifier(t *testing.T) {
	fileA := span.URI("file:///proj/A.groovy")
	method := frontendtest.StaticMethod("of", "A").AtRange(0, 0, 0, 20)

	world := func() []frontend.SourceUnit {
		return []frontend.SourceUnit{
			&frontendtest.FakeSourceUnit{SourceURI: fileA, SourceNodes: []frontend.Node{method}},
		}
	}
	s := newTestScope(t, world)
	tr := filetracker.New()
	tr.Open(fileA, "static A of(int n) {}")

	p := providers.New(s, newFakeAST(), nil, tr)
	data := p.SemanticTokensFull(fileA)

	require.Len(t, data, 5)
	// modifiers: declaration | static.
	assert.Equal(t, uint32(3), data[4])
}

func TestSemanticTokensRangeSkipsNodesOutsideBounds(t *testing.T) {
	fileA := span.URI("file:///proj/A.groovy")
	near := frontendtest.Method("near", "void").AtRange(1, 0, 1, 10)
	far := frontendtest.Method("far", "void").AtRange(50, 0, 50, 10)

	world := func() []frontend.SourceUnit {
		return []frontend.SourceUnit{
			&frontendtest.FakeSourceUnit{SourceURI: fileA, SourceNodes: []frontend.Node{near, far}},
		}
	}
	s := newTestScope(t, world)
	tr := filetracker.New()
	tr.Open(fileA, "\nvoid near() {}\n")

	p := providers.New(s, newFakeAST(), nil, tr)

	assert.Len(t, p.SemanticTokensRange(fileA, 0, 10), 5)
	assert.Len(t, p.SemanticTokensFull(fileA), 10)
}

func TestSemanticTokensDedupPrefersShorterToken(t *testing.T) {
	fileA := span.URI("file:///proj/A.groovy")

	// two nodes landing on the same spot: the longer one loses.
	long := frontendtest.Method("number", "void").AtRange(0, 0, 0, 20)
	short := frontendtest.Field("num", "int").AtRange(0, 0, 0, 3)

	world := func() []frontend.SourceUnit {
		return []frontend.SourceUnit{
			&frontendtest.FakeSourceUnit{SourceURI: fileA, SourceNodes: []frontend.Node{long, short}},
		}
	}
	s := newTestScope(t, world)
	tr := filetracker.New()
	tr.Open(fileA, "number num")

	p := providers.New(s, newFakeAST(), nil, tr)
	data := p.SemanticTokensFull(fileA)

	require.Len(t, data, 5, "overlapping tokens must collapse to one")
	assert.Equal(t, uint32(3), data[2], "the shorter token survives")
}
