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
	"regexp"
	"strings"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// TextEdit is a single replacement within one URI's buffer.
type TextEdit struct {
	Range   frontend.Range
	NewText string
}

// FileRename is a rename-the-file-on-disk operation, emitted alongside
// a WorkspaceEdit's text edits when renaming a top-level class.
type FileRename struct {
	OldURI span.URI
	NewURI span.URI
}

// WorkspaceEdit is the result of a rename's execute phase: per-URI text
// edits plus optional file-rename operations.
type WorkspaceEdit struct {
	Changes       map[span.URI][]TextEdit
	FileRenames   []FileRename
}

// PrepareRename answers the prepare-phase: a regex-based
// search within the first source line of the offset node's definition,
// because the AST node's range may span the whole declaration rather
// than just the identifier token.
func (p *Provider) PrepareRename(uri span.URI, pos protocol.Position) (frontend.Range, bool) {
	n, ok := p.offsetNode(uri, pos)
	if !ok {
		return frontend.Range{}, false
	}
	def, ok := p.ast.GetDefinition(n, true)
	if !ok || !def.HasRange() {
		return frontend.Range{}, false
	}

	defURI, _ := p.scp.Index().URIOf(def)
	content, ok := p.tracker.Contents(defURI)
	if !ok {
		return frontend.Range{}, false
	}

	line := sourceLine(content, int(def.Range().Start.Line))
	idx := identifierRegexp(def.Name()).FindStringIndex(line)
	if idx == nil {
		return def.Range(), true
	}

	start := protocol.Position{Line: def.Range().Start.Line, Character: uint32(idx[0])}
	end := protocol.Position{Line: def.Range().Start.Line, Character: uint32(idx[1])}
	return frontend.Range{Start: start, End: end}, true
}

// Rename answers the execute-phase: find every reference
// to the symbol at pos, emit a WorkspaceEdit renaming each occurrence,
// and additionally emit a FileRename when the renamed symbol is a
// top-level class (so the file follows the class name convention).
func (p *Provider) Rename(uri span.URI, pos protocol.Position, newName string) (WorkspaceEdit, bool) {
	n, ok := p.offsetNode(uri, pos)
	if !ok {
		return WorkspaceEdit{}, false
	}

	refs := p.ast.GetReferences(n)
	def, hasDef := p.ast.GetDefinition(n, true)
	if hasDef && def.HasRange() {
		refs = append(refs, def)
	}
	if len(refs) == 0 {
		return WorkspaceEdit{}, false
	}

	edit := WorkspaceEdit{Changes: make(map[span.URI][]TextEdit)}
	for _, r := range refs {
		if !r.HasRange() {
			continue
		}
		refURI, ok := p.scp.Index().URIOf(r)
		if !ok {
			continue
		}
		edit.Changes[refURI] = append(edit.Changes[refURI], TextEdit{Range: r.Range(), NewText: newName})
	}

	if hasDef {
		if cls, ok := def.(frontend.ClassNode); ok {
			defURI, ok := p.scp.Index().URIOf(cls)
			if ok {
				newURI := span.URIFromPath(renamedFilePath(defURI.Filename(), newName))
				edit.FileRenames = append(edit.FileRenames, FileRename{OldURI: defURI, NewURI: newURI})
			}
		}
	}
	return edit, true
}

func renamedFilePath(oldPath, newName string) string {
	ext := ".groovy"
	if i := strings.LastIndex(oldPath, "."); i >= 0 {
		ext = oldPath[i:]
	}
	dir := oldPath
	if i := strings.LastIndexAny(oldPath, `/\`); i >= 0 {
		dir = oldPath[:i+1]
	} else {
		dir = ""
	}
	return dir + newName + ext
}

func sourceLine(content string, line int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return lines[line]
}

func identifierRegexp(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
}
