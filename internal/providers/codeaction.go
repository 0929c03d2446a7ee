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
	"sort"
	"strings"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// CodeAction is a single quick-fix offered for a diagnostic.
type CodeAction struct {
	Title string
	Edit  WorkspaceEdit
}

var unresolvedClassPattern = regexp.MustCompile(`unable to resolve class (\S+)`)

// UnresolvedClassName extracts the simple or qualified class name named
// by an "unable to resolve class X" compile message, the diagnostic
// text the missing-import action keys off of.
func UnresolvedClassName(message string) (string, bool) {
	m := unresolvedClassPattern.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// missingImportCandidate is one proposed FQN, tagged with the ordering
// tier it was discovered under.
type missingImportCandidate struct {
	fqn  string
	tier int
}

// Ordering tiers for missing-import candidates:
// project-source-locator-project first, then AST-local,
// project-source-locator-other, classpath, with FQN as tie-breaker.
const (
	tierLocatorProject = iota
	tierASTLocal
	tierLocatorOther
	tierClasspath
)

// MissingImportActions builds the missing-import code actions: given the unresolved simple name from a diagnostic message and
// the requesting file's URI (used to determine the current package,
// whose candidates are filtered out), propose one code action per
// distinct FQN candidate, ordered by tier then FQN.
func (p *Provider) MissingImportActions(uri span.URI, simpleName string) []CodeAction {
	currentPackage := p.packageOf(uri)

	var candidates []missingImportCandidate
	seen := make(map[string]struct{})
	add := func(fqn string, tier int) {
		if fqn == "" {
			return
		}
		if pkg, _ := splitFQN(fqn); pkg == currentPackage {
			return
		}
		if _, ok := seen[fqn]; ok {
			return
		}
		seen[fqn] = struct{}{}
		candidates = append(candidates, missingImportCandidate{fqn: fqn, tier: tier})
	}

	if p.locator != nil {
		inProject, other := p.locator.Search(simpleName, currentPackage)
		for _, fqn := range inProject {
			add(fqn, tierLocatorProject)
		}
		for _, fqn := range other {
			add(fqn, tierLocatorOther)
		}
	}

	for _, cls := range p.scp.Index().AllClassNodes() {
		if cls.Name() == simpleName {
			add(cls.FullyQualifiedName(), tierASTLocal)
		}
	}

	for _, sym := range p.classpathSymbols() {
		if sym.SimpleName == simpleName {
			add(sym.FullyQualifiedName, tierClasspath)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].tier != candidates[j].tier {
			return candidates[i].tier < candidates[j].tier
		}
		return candidates[i].fqn < candidates[j].fqn
	})

	out := make([]CodeAction, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, CodeAction{
			Title: "Import " + c.fqn,
			Edit: WorkspaceEdit{Changes: map[span.URI][]TextEdit{
				uri: {importInsertEdit(c.fqn)},
			}},
		})
	}
	return out
}

// packageOf derives uri's package from its first class node's
// fully-qualified name, since SourceUnit carries no explicit package
// declaration node of its own.
func (p *Provider) packageOf(uri span.URI) string {
	classes := p.scp.Index().ClassNodesForURI(uri)
	if len(classes) == 0 {
		return ""
	}
	pkg, _ := splitFQN(classes[0].FullyQualifiedName())
	return pkg
}

func splitFQN(fqn string) (pkg, simpleName string) {
	i := strings.LastIndex(fqn, ".")
	if i < 0 {
		return "", fqn
	}
	return fqn[:i], fqn[i+1:]
}

func importInsertEdit(fqn string) TextEdit {
	zero := protocol.Position{Line: 0, Character: 0}
	return TextEdit{
		Range:   frontend.Range{Start: zero, End: zero},
		NewText: "import " + fqn + "\n",
	}
}

// UnusedImportActions builds the unused-import code
// action: a line-delete edit per unused import, plus an aggregate
// "remove all unused imports" action when two or more exist.
func (p *Provider) UnusedImportActions(su frontend.SourceUnit) []CodeAction {
	if p.importer == nil {
		return nil
	}
	imports, err := p.importer.UnusedImports(su)
	if err != nil {
		p.log.Debug("unused-import analysis failed", "error", err)
		return nil
	}

	var out []CodeAction
	var all []TextEdit
	for _, imp := range imports {
		if !imp.HasRange {
			continue
		}
		edit := lineDeleteEdit(imp.Range)
		all = append(all, edit)
		out = append(out, CodeAction{
			Title: "Remove unused import " + imp.Name,
			Edit:  WorkspaceEdit{Changes: map[span.URI][]TextEdit{su.URI(): {edit}}},
		})
	}
	if len(all) >= 2 {
		out = append(out, CodeAction{
			Title: "Remove all unused imports",
			Edit:  WorkspaceEdit{Changes: map[span.URI][]TextEdit{su.URI(): all}},
		})
	}
	return out
}

func lineDeleteEdit(r frontend.Range) TextEdit {
	return TextEdit{
		Range: frontend.Range{
			Start: protocol.Position{Line: r.Start.Line, Character: 0},
			End:   protocol.Position{Line: r.Start.Line + 1, Character: 0},
		},
		NewText: "",
	}
}
