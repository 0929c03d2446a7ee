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

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// charState is the lexer state of a single rune, one of the
// "character-level state-machine lexer" classification.
type charState int

const (
	stCode charState = iota
	stLineComment
	stBlockComment
	stSingleQuoted
	stDoubleQuoted
	stTripleSingle
	stTripleDouble
	stGStringExpr
	stSlashRegex
	stDollarSlashRegex
)

const indentUnit = "    "

// Format formats the document: classify every character
// into a lexer state, reindent each code line by bracket-nesting depth,
// collapse blank-line runs, fix spacing around commas/keyword-parens/
// braces (guarded by lexer state so nothing inside a string or comment
// is touched), and ensure the file ends in exactly one newline. Returns
// a minimal line-level TextEdit, trimming the matching prefix/suffix
// between original and formatted text.
func (p *Provider) Format(uri span.URI) ([]TextEdit, bool) {
	content, ok := p.tracker.Contents(uri)
	if !ok {
		return nil, false
	}
	formatted := Format(content)
	if formatted == content {
		return nil, true
	}
	return []TextEdit{minimalEdit(content, formatted)}, true
}

// Format applies the formatting transform to text directly.
func Format(text string) string {
	text = splitUnbalancedBraceLines(strings.ReplaceAll(text, "\r\n", "\n"))
	runes := []rune(text)
	states, lineEntry := classify(runes)
	lines := splitLines(runes)
	lineStates := splitLineStates(states, lines)

	out := make([]string, 0, len(lines))
	depth := 0
	for i, line := range lines {
		entry := lineEntry[i]
		if entry != stCode {
			// Entirely (or partially) inside a multi-line construct that
			// began on a previous line: preserve verbatim. Code-state
			// braces after the construct closes still count for depth.
			out = append(out, string(line))
			updateDepth(&depth, line, lineStates[i])
			continue
		}

		trimmed, trimmedStates := trimWithStates(line, lineStates[i])
		if len(trimmed) == 0 {
			out = append(out, "")
			updateDepth(&depth, line, lineStates[i])
			continue
		}

		leadingClosers := countLeadingClosers(trimmed, trimmedStates)
		indentLevel := depth - leadingClosers
		if indentLevel < 0 {
			indentLevel = 0
		}
		if startsWithMemberAccess(trimmed) {
			indentLevel++
		}

		spaced := applySpacing(trimmed, trimmedStates)
		out = append(out, strings.Repeat(indentUnit, indentLevel)+spaced)

		updateDepth(&depth, line, lineStates[i])
	}

	result := strings.Join(out, "\n")
	result = collapseBlankRuns(result)
	result = strings.TrimRight(result, "\n") + "\n"
	return result
}

// splitUnbalancedBraceLines breaks lines whose code-state curly braces
// do not balance within the line: a newline is inserted after every
// opening brace (keeping a trailing closure parameter list, up to its
// `->`, with the brace) and before every closing brace that follows
// other content. Lines whose braces balance locally, such as
// `def a() {}` or a one-line closure, are left alone; the reindent pass
// afterwards fixes up indentation for the lines this introduces.
func splitUnbalancedBraceLines(text string) string {
	runes := []rune(text)
	states, _ := classify(runes)
	lines := splitLines(runes)
	lineStates := splitLineStates(states, lines)

	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if braceNet(line, lineStates[i]) == 0 {
			out = append(out, string(line))
			continue
		}
		out = append(out, splitBraceLine(line, lineStates[i])...)
	}
	return strings.Join(out, "\n")
}

func braceNet(line []rune, states []charState) int {
	net := 0
	for i, r := range line {
		if states[i] != stCode {
			continue
		}
		switch r {
		case '{':
			net++
		case '}':
			net--
		}
	}
	return net
}

// splitBraceLine rebuilds one brace-unbalanced line into several.
func splitBraceLine(line []rune, states []charState) []string {
	var out []string
	var cur []rune

	flush := func() {
		out = append(out, string(cur))
		cur = nil
	}
	hasContent := func() bool {
		return len(strings.TrimSpace(string(cur))) > 0
	}

	i := 0
	for i < len(line) {
		r := line[i]
		if states[i] != stCode {
			cur = append(cur, r)
			i++
			continue
		}
		switch r {
		case '{':
			if len(cur) > 0 && cur[len(cur)-1] != ' ' && cur[len(cur)-1] != '\t' {
				cur = append(cur, ' ')
			}
			cur = append(cur, '{')
			i++
			j := i
			for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
				j++
			}
			if j >= len(line) {
				i = j
				continue
			}
			if arrow, ok := closureParamEnd(line, states, j); ok {
				cur = append(cur, ' ')
				cur = append(cur, line[j:arrow]...)
				i = arrow
				if rest := strings.TrimSpace(string(line[arrow:])); rest != "" {
					flush()
				}
				continue
			}
			i = j
			flush()
		case '}':
			if hasContent() {
				flush()
			}
			cur = append(cur, '}')
			i++
		default:
			cur = append(cur, r)
			i++
		}
	}
	flush()
	return out
}

// closureParamEnd reports whether the content starting at j is a
// closure parameter list: a `->` in code state appears before any
// further code-state brace. It returns the index just past the arrow.
func closureParamEnd(line []rune, states []charState, j int) (int, bool) {
	for k := j; k < len(line); k++ {
		if states[k] != stCode {
			continue
		}
		switch line[k] {
		case '{', '}':
			return 0, false
		case '-':
			if k+1 < len(line) && line[k+1] == '>' && states[k+1] == stCode {
				return k + 2, true
			}
		}
	}
	return 0, false
}

// classify runs the character-level lexer over src, returning the state
// of every rune plus, for each line, the state in effect when that line
// began (used to decide whether a line is wholly inside a multi-line
// string/comment and must be preserved verbatim).
func classify(src []rune) (states []charState, lineEntry []charState) {
	n := len(src)
	states = make([]charState, n)
	state := stCode
	var stringStack []charState
	gstringDepth := 0
	lineEntry = []charState{stCode}

	i := 0
	for i < n {
		c := src[i]
		switch state {
		case stCode:
			switch {
			case c == '/' && peek(src, i+1) == '/':
				states[i], states[i+1] = stLineComment, stLineComment
				state = stLineComment
				i += 2
			case c == '/' && peek(src, i+1) == '*':
				states[i], states[i+1] = stBlockComment, stBlockComment
				state = stBlockComment
				i += 2
			case c == '\'' && peek(src, i+1) == '\'' && peek(src, i+2) == '\'':
				states[i], states[i+1], states[i+2] = stTripleSingle, stTripleSingle, stTripleSingle
				state = stTripleSingle
				i += 3
			case c == '"' && peek(src, i+1) == '"' && peek(src, i+2) == '"':
				states[i], states[i+1], states[i+2] = stTripleDouble, stTripleDouble, stTripleDouble
				state = stTripleDouble
				i += 3
			case c == '\'':
				states[i] = stSingleQuoted
				state = stSingleQuoted
				i++
			case c == '"':
				states[i] = stDoubleQuoted
				state = stDoubleQuoted
				i++
			case c == '$' && peek(src, i+1) == '/':
				states[i], states[i+1] = stDollarSlashRegex, stDollarSlashRegex
				state = stDollarSlashRegex
				i += 2
			case c == '/' && isRegexContext(src, i):
				states[i] = stSlashRegex
				state = stSlashRegex
				i++
			default:
				states[i] = stCode
				i++
			}
		case stLineComment:
			states[i] = stLineComment
			if c == '\n' {
				state = stCode
			}
			i++
		case stBlockComment:
			states[i] = stBlockComment
			if c == '*' && peek(src, i+1) == '/' {
				states[i+1] = stBlockComment
				i += 2
				state = stCode
				continue
			}
			i++
		case stSingleQuoted:
			states[i] = stSingleQuoted
			if c == '\\' && i+1 < n && src[i+1] != '\n' {
				states[i+1] = stSingleQuoted
				i += 2
				continue
			}
			if c == '\'' {
				i++
				state = stCode
				continue
			}
			i++
		case stDoubleQuoted:
			states[i] = stDoubleQuoted
			if c == '\\' && i+1 < n && src[i+1] != '\n' {
				states[i+1] = stDoubleQuoted
				i += 2
				continue
			}
			if c == '"' {
				i++
				state = stCode
				continue
			}
			if c == '$' && peek(src, i+1) == '{' {
				states[i+1] = stGStringExpr
				stringStack = append(stringStack, stDoubleQuoted)
				state = stGStringExpr
				i += 2
				continue
			}
			i++
		case stTripleSingle:
			states[i] = stTripleSingle
			if c == '\\' && i+1 < n && src[i+1] != '\n' {
				states[i+1] = stTripleSingle
				i += 2
				continue
			}
			if c == '\'' && peek(src, i+1) == '\'' && peek(src, i+2) == '\'' {
				states[i+1], states[i+2] = stTripleSingle, stTripleSingle
				i += 3
				state = stCode
				continue
			}
			i++
		case stTripleDouble:
			states[i] = stTripleDouble
			if c == '\\' && i+1 < n && src[i+1] != '\n' {
				states[i+1] = stTripleDouble
				i += 2
				continue
			}
			if c == '"' && peek(src, i+1) == '"' && peek(src, i+2) == '"' {
				states[i+1], states[i+2] = stTripleDouble, stTripleDouble
				i += 3
				state = stCode
				continue
			}
			if c == '$' && peek(src, i+1) == '{' {
				states[i+1] = stGStringExpr
				stringStack = append(stringStack, stTripleDouble)
				state = stGStringExpr
				i += 2
				continue
			}
			i++
		case stGStringExpr:
			states[i] = stGStringExpr
			switch c {
			case '{':
				gstringDepth++
			case '}':
				if gstringDepth == 0 {
					if len(stringStack) > 0 {
						state = stringStack[len(stringStack)-1]
						stringStack = stringStack[:len(stringStack)-1]
					} else {
						state = stCode
					}
				} else {
					gstringDepth--
				}
			}
			i++
		case stSlashRegex:
			states[i] = stSlashRegex
			if c == '\\' && i+1 < n && src[i+1] != '\n' {
				states[i+1] = stSlashRegex
				i += 2
				continue
			}
			if c == '/' {
				i++
				state = stCode
				continue
			}
			if c == '\n' {
				state = stCode
				continue
			}
			i++
		case stDollarSlashRegex:
			states[i] = stDollarSlashRegex
			if c == '/' && peek(src, i+1) == '$' {
				states[i+1] = stDollarSlashRegex
				i += 2
				state = stCode
				continue
			}
			i++
		}
		if i > 0 && i <= n && src[i-1] == '\n' {
			lineEntry = append(lineEntry, state)
		}
	}
	return states, lineEntry
}

func peek(src []rune, i int) rune {
	if i < 0 || i >= len(src) {
		return 0
	}
	return src[i]
}

// isRegexContext applies the common heuristic for distinguishing a
// slash-regex literal from division: a bare '/' starts a regex when the
// previous non-space code token is an operator/opener, a comma, or the
// keyword "return", or when it is the first token on the line.
func isRegexContext(src []rune, i int) bool {
	j := i - 1
	for j >= 0 && (src[j] == ' ' || src[j] == '\t') {
		j--
	}
	if j < 0 || src[j] == '\n' {
		return true
	}
	switch src[j] {
	case '(', ',', '=', '{', ';', '[':
		return true
	}
	word := j
	for word >= 0 && isIdentRune(src[word]) {
		word--
	}
	return string(src[word+1:j+1]) == "return"
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func splitLines(src []rune) [][]rune {
	var lines [][]rune
	start := 0
	for i, r := range src {
		if r == '\n' {
			lines = append(lines, src[start:i])
			start = i + 1
		}
	}
	lines = append(lines, src[start:])
	return lines
}

func splitLineStates(states []charState, lines [][]rune) [][]charState {
	out := make([][]charState, len(lines))
	pos := 0
	for i, l := range lines {
		out[i] = states[pos : pos+len(l)]
		pos += len(l) + 1 // skip the newline itself
	}
	return out
}

// trimWithStates trims surrounding whitespace, but only whitespace in
// code state: trailing blanks inside a string that continues onto the
// next line are content, not layout.
func trimWithStates(line []rune, states []charState) (string, []charState) {
	start, end := 0, len(line)
	for start < end && (line[start] == ' ' || line[start] == '\t') && states[start] == stCode {
		start++
	}
	for end > start && (line[end-1] == ' ' || line[end-1] == '\t') && (states[end-1] == stCode || states[end-1] == stLineComment) {
		end--
	}
	return string(line[start:end]), states[start:end]
}

// countLeadingClosers counts the run of '}'/']' characters (in code
// state) at the start of trimmed, the amount a closing line dedents by
// before its own depth contribution is applied.
func countLeadingClosers(trimmed string, states []charState) int {
	runes := []rune(trimmed)
	count := 0
	for i, r := range runes {
		if states[i] != stCode {
			break
		}
		if r == '}' || r == ']' {
			count++
			continue
		}
		break
	}
	return count
}

func startsWithMemberAccess(trimmed string) bool {
	return strings.HasPrefix(trimmed, ".") || strings.HasPrefix(trimmed, "?.")
}

// updateDepth folds the net {/[ vs }/] change across line's code-state
// characters into depth, clamped at zero.
func updateDepth(depth *int, line []rune, states []charState) {
	for i, r := range line {
		if states[i] != stCode {
			continue
		}
		switch r {
		case '{', '[':
			*depth++
		case '}', ']':
			*depth--
		}
	}
	if *depth < 0 {
		*depth = 0
	}
}

// applySpacing fixes comma spacing, keyword-paren spacing, and brace
// spacing, touching only code-state characters.
func applySpacing(text string, states []charState) string {
	runes := []rune(text)
	var out []rune

	keywords := []string{"if", "for", "while", "switch", "catch"}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if states[i] != stCode {
			out = append(out, r)
			continue
		}

		if r == ' ' && i+1 < len(runes) && runes[i+1] == ',' && states[i+1] == stCode {
			// drop space before comma
			continue
		}

		out = append(out, r)

		if r == ',' && i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\n' && states[i+1] == stCode {
			out = append(out, ' ')
			continue
		}

		if r == ')' && i+1 < len(runes) && runes[i+1] == '{' && states[i+1] == stCode {
			out = append(out, ' ')
			continue
		}

		for _, kw := range keywords {
			if matchesKeywordBeforeParen(runes, states, i, kw) {
				out = append(out, ' ')
				break
			}
		}
	}
	return string(out)
}

// matchesKeywordBeforeParen reports whether runes[start:start+len(kw)]
// is exactly kw immediately followed by '(' with no intervening space,
// and i is positioned at the last character of kw.
func matchesKeywordBeforeParen(runes []rune, states []charState, i int, kw string) bool {
	kwRunes := []rune(kw)
	start := i - len(kwRunes) + 1
	if start < 0 || i+1 >= len(runes) {
		return false
	}
	if runes[i+1] != '(' || states[i+1] != stCode {
		return false
	}
	if string(runes[start:i+1]) != kw {
		return false
	}
	if start > 0 && isIdentRune(runes[start-1]) {
		return false
	}
	return true
}

func collapseBlankRuns(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	blankRun := 0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			blankRun++
			if blankRun <= 2 {
				out = append(out, "")
			}
			continue
		}
		blankRun = 0
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

// minimalEdit computes a line-level TextEdit that replaces only the
// span between the first and last differing lines of original vs
// formatted.
func minimalEdit(original, formatted string) TextEdit {
	origLines := strings.Split(original, "\n")
	newLines := strings.Split(formatted, "\n")

	prefix := 0
	for prefix < len(origLines) && prefix < len(newLines) && origLines[prefix] == newLines[prefix] {
		prefix++
	}

	origSuffix, newSuffix := len(origLines), len(newLines)
	for origSuffix > prefix && newSuffix > prefix && origLines[origSuffix-1] == newLines[newSuffix-1] {
		origSuffix--
		newSuffix--
	}

	startLine := prefix
	endLine := origSuffix
	replacement := strings.Join(newLines[prefix:newSuffix], "\n")
	if endLine < len(origLines) {
		replacement += "\n"
	}

	return TextEdit{
		Range: frontend.Range{
			Start: frontend.Position{Line: uint32(startLine), Character: 0},
			End:   frontend.Position{Line: uint32(endLine), Character: 0},
		},
		NewText: replacement,
	}
}
