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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/groovy-lsp/groovy-language-server/internal/providers"
)

func TestFormatReindentsNestedClosures(t *testing.T) {
	src := "class Foo {\n" +
		"def bar() {\n" +
		"[1, 2].each {\n" +
		"println it\n" +
		"}\n" +
		"}\n" +
		"}\n"

	want := "class Foo {\n" +
		"    def bar() {\n" +
		"        [1, 2].each {\n" +
		"            println it\n" +
		"        }\n" +
		"    }\n" +
		"}\n"

	assert.Equal(t, want, providers.Format(src))
}

func TestFormatSplitsUnbalancedBraceLines(t *testing.T) {
	src := "class A{void m(){list.each{x->\n" +
		"println(x)\n" +
		"}}}\n"

	want := "class A {\n" +
		"    void m() {\n" +
		"        list.each { x->\n" +
		"            println(x)\n" +
		"        }\n" +
		"    }\n" +
		"}\n"

	got := providers.Format(src)
	assert.Equal(t, want, got)
	assert.Equal(t, got, providers.Format(got))
}

func TestFormatIdempotent(t *testing.T) {
	src := "class Foo {\n" +
		"  def bar(  ) {\n" +
		"      if(true){\n" +
		"    println 'x,y'\n" +
		"}\n" +
		"  }\n" +
		"}\n"

	once := providers.Format(src)
	twice := providers.Format(once)
	assert.Equal(t, once, twice)
}

func TestFormatEndsWithExactlyOneNewline(t *testing.T) {
	src := "class Foo {}\n\n\n\n"
	got := providers.Format(src)
	assert.True(t, strings.HasSuffix(got, "\n"))
	assert.False(t, strings.HasSuffix(got, "\n\n"))
}

func TestFormatCollapsesBlankLineRuns(t *testing.T) {
	src := "class Foo {\n" +
		"def a() {}\n" +
		"\n\n\n\n" +
		"def b() {}\n" +
		"}\n"

	got := providers.Format(src)
	assert.NotContains(t, got, "\n\n\n\n")
}

func TestFormatKeywordAndBraceSpacing(t *testing.T) {
	src := "def f() {\n" +
		"if(x){\n" +
		"y(1,2)\n" +
		"}\n" +
		"}\n"

	got := providers.Format(src)
	assert.Contains(t, got, "if (x) {")
	assert.Contains(t, got, "y(1, 2)")
}

func TestFormatPreservesBlockComment(t *testing.T) {
	src := "class Foo {\n" +
		"/*\n" +
		"  keep    me     untouched\n" +
		"*/\n" +
		"def a() {}\n" +
		"}\n"

	got := providers.Format(src)
	assert.Contains(t, got, "  keep    me     untouched")
}

func TestFormatPreservesTripleQuotedString(t *testing.T) {
	src := "def x = '''\n" +
		"  literal    spacing\n" +
		"'''\n"

	got := providers.Format(src)
	assert.Contains(t, got, "  literal    spacing")
}

func TestFormatNoOpOnAlreadyFormatted(t *testing.T) {
	src := "class Foo {\n" +
		"    def bar() {\n" +
		"        println 'hi'\n" +
		"    }\n" +
		"}\n"
	assert.Equal(t, src, providers.Format(src))
}

func TestFormatDedentsClosingBrace(t *testing.T) {
	src := "class Foo {\n" +
		"def bar() {\n" +
		"if (x) {\n" +
		"y()\n" +
		"}\n" +
		"}\n" +
		"}\n"

	got := providers.Format(src)
	lines := strings.Split(got, "\n")
	// the innermost closing brace dedents back to the "if" line's depth.
	var ifLine, closeLine string
	for _, l := range lines {
		if strings.Contains(l, "if (x)") {
			ifLine = l
		}
		if strings.TrimSpace(l) == "}" && ifLine != "" && closeLine == "" {
			closeLine = l
		}
	}
	assert.Equal(t, leadingSpaces(ifLine), leadingSpaces(closeLine))
}

func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}
