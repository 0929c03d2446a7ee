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

// Package astindex maintains the query-optimised, copy-on-write
// projection of the compiler's AST: a
// position→node lookup, a parent table, and per-file scoping, safely
// mutable while concurrent readers observe a stable prior version.
//
// The parent table is keyed on node identity (Go interface equality over
// pointer-backed frontend.Node values gives pointer-identity semantics),
// never on value equality, because two structurally identical
// expressions in different contexts must be distinguishable.
package astindex

import (
	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// defaultReservedPrefixes are the language's own and hosting-runtime
// standard-library package roots. Names under these prefixes are
// considered external and are not recorded as project dependencies.
var defaultReservedPrefixes = []string{"groovy.", "java.", "javax."}

type parentEntry struct {
	parent frontend.Node
	uri    span.URI
}

// Index is the AST index. A zero Index is not
// usable; construct one with New.
type Index struct {
	reservedPrefixes []string

	nodesByURI       map[span.URI][]frontend.Node
	classNodesByURI  map[span.URI][]frontend.ClassNode
	classNodesByName map[string]frontend.ClassNode
	// duplicateClassSites records, for a fully-qualified class name that
	// was declared in more than one file, every URI that declared it
	// (including the one that ultimately won last-writer-wins). This
	// resolves the duplicate-declaration ambiguity: the core documents the
	// tie-break and lets the Diagnostic Handler surface a warning at
	// every duplicate site instead of silently dropping them.
	duplicateClassSites map[string][]span.URI
	dependsOnByURI      map[span.URI][]string
	parentLookup        map[frontend.Node]parentEntry
}

// Option configures a new Index.
type Option func(*Index)

// WithReservedPrefixes overrides the default reserved-library package
// prefixes used by the dependency collection policy.
func WithReservedPrefixes(prefixes []string) Option {
	return func(idx *Index) {
		idx.reservedPrefixes = prefixes
	}
}

// New returns an empty Index.
func New(opts ...Option) *Index {
	idx := &Index{
		reservedPrefixes:    defaultReservedPrefixes,
		nodesByURI:          make(map[span.URI][]frontend.Node),
		classNodesByURI:     make(map[span.URI][]frontend.ClassNode),
		classNodesByName:    make(map[string]frontend.ClassNode),
		duplicateClassSites: make(map[string][]span.URI),
		dependsOnByURI:      make(map[span.URI][]string),
		parentLookup:        make(map[frontend.Node]parentEntry),
	}
	for _, o := range opts {
		o(idx)
	}
	return idx
}

// Register installs the frontend's freshly-visited data for uri into the
// index: its ordered node list, its class-definition subset, the
// identity-keyed parent links for every node in this file, and the raw
// (unfiltered) class-name dependency list from imports/type references/
// star-imports. Register applies the reserved-prefix dependency policy
// itself.
//
// Register is how both a full visit and an incremental
// snapshot-exclude-and-revisit populate a (possibly new) Index: the
// orchestrator calls SnapshotExcluding first, then Register on the
// result for each revisited URI.
func (idx *Index) Register(uri span.URI, nodes []frontend.Node, classNodes []frontend.ClassNode, parents map[frontend.Node]frontend.Node, rawDependsOn []string) {
	idx.unregisterClassNames(uri)

	idx.nodesByURI[uri] = nodes
	idx.classNodesByURI[uri] = classNodes

	idx.clearParentLookupForURI(uri)
	for child, parent := range parents {
		idx.parentLookup[child] = parentEntry{parent: parent, uri: uri}
	}

	filtered := make([]string, 0, len(rawDependsOn))
	for _, name := range rawDependsOn {
		if !idx.isReserved(name) {
			filtered = append(filtered, name)
		}
	}
	idx.dependsOnByURI[uri] = filtered

	for _, cls := range classNodes {
		idx.registerClassName(cls, uri)
	}
}

func (idx *Index) isReserved(fqn string) bool {
	for _, p := range idx.reservedPrefixes {
		if len(fqn) >= len(p) && fqn[:len(p)] == p {
			return true
		}
	}
	return false
}

// registerClassName installs cls under its fully-qualified name,
// last-writer-wins when two files declare the same name, recording every declaring URI for diagnostic surfacing.
func (idx *Index) registerClassName(cls frontend.ClassNode, uri span.URI) {
	fqn := cls.FullyQualifiedName()
	if prev, exists := idx.classNodesByName[fqn]; exists {
		if prevURI := idx.uriOfClass(prev); prevURI != "" {
			idx.recordDuplicateSite(fqn, prevURI)
		}
		idx.recordDuplicateSite(fqn, uri)
	}
	idx.classNodesByName[fqn] = cls
}

func (idx *Index) recordDuplicateSite(fqn string, uri span.URI) {
	for _, s := range idx.duplicateClassSites[fqn] {
		if s == uri {
			return
		}
	}
	idx.duplicateClassSites[fqn] = append(idx.duplicateClassSites[fqn], uri)
}

func (idx *Index) unregisterClassNames(uri span.URI) {
	for _, cls := range idx.classNodesByURI[uri] {
		fqn := cls.FullyQualifiedName()
		if cur, ok := idx.classNodesByName[fqn]; ok && cur == cls {
			delete(idx.classNodesByName, fqn)
		}
	}
}

func (idx *Index) clearParentLookupForURI(uri span.URI) {
	for k, v := range idx.parentLookup {
		if v.uri == uri {
			delete(idx.parentLookup, k)
		}
	}
}

// DuplicateClassSites reports the URIs known to declare the same
// fully-qualified name, if more than one did.
func (idx *Index) DuplicateClassSites(fqn string) []span.URI {
	return idx.duplicateClassSites[fqn]
}

// NodesForURI returns the ordered node list for uri in document order.
func (idx *Index) NodesForURI(uri span.URI) []frontend.Node {
	return idx.nodesByURI[uri]
}

// ClassNodesForURI returns the class-definition nodes declared in uri.
func (idx *Index) ClassNodesForURI(uri span.URI) []frontend.ClassNode {
	return idx.classNodesByURI[uri]
}

// ClassNodeByName resolves a fully-qualified class name to its
// declaring node, if the scope knows of it.
func (idx *Index) ClassNodeByName(fqn string) (frontend.ClassNode, bool) {
	c, ok := idx.classNodesByName[fqn]
	return c, ok
}

// AllClassNodes returns every class node known to the index, across
// every file.
func (idx *Index) AllClassNodes() []frontend.ClassNode {
	out := make([]frontend.ClassNode, 0, len(idx.classNodesByName))
	for _, c := range idx.classNodesByName {
		out = append(out, c)
	}
	return out
}

// URIs returns every URI the index currently has data for.
func (idx *Index) URIs() []span.URI {
	out := make([]span.URI, 0, len(idx.nodesByURI))
	for u := range idx.nodesByURI {
		out = append(out, u)
	}
	return out
}

// URIOf resolves the URI that owns n by consulting the parent table
// first (O(1) for any non-top-level node) and falling back to a linear
// scan of the per-URI node lists for top-level nodes such as classes,
// which never acquire a parent-table entry of their own.
func (idx *Index) URIOf(n frontend.Node) (span.URI, bool) {
	if e, ok := idx.parentLookup[n]; ok {
		return e.uri, true
	}
	for uri, nodes := range idx.nodesByURI {
		for _, candidate := range nodes {
			if candidate == n {
				return uri, true
			}
		}
	}
	return "", false
}

// Parent returns n's parent node and owning URI, if one is recorded.
func (idx *Index) Parent(n frontend.Node) (frontend.Node, span.URI, bool) {
	e, ok := idx.parentLookup[n]
	if !ok {
		return nil, "", false
	}
	return e.parent, e.uri, true
}

// DependenciesOf returns the fully-qualified class names uri depends on,
// per the reserved-prefix policy already applied at Register time.
func (idx *Index) DependenciesOf(uri span.URI) []string {
	return idx.dependsOnByURI[uri]
}

// ResolveDependencyURIs translates DependenciesOf(uri) into source URIs
// via class_nodes_by_name, dropping unresolved (external) names and
// self-references.
func (idx *Index) ResolveDependencyURIs(uri span.URI) []span.URI {
	seen := make(map[span.URI]struct{})
	for _, fqn := range idx.dependsOnByURI[uri] {
		cls, ok := idx.classNodesByName[fqn]
		if !ok {
			continue
		}
		depURI := idx.uriOfClass(cls)
		if depURI == "" || depURI == uri {
			continue
		}
		seen[depURI] = struct{}{}
	}
	out := make([]span.URI, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	return out
}

func (idx *Index) uriOfClass(cls frontend.ClassNode) span.URI {
	for uri, classes := range idx.classNodesByURI {
		for _, c := range classes {
			if c == cls {
				return uri
			}
		}
	}
	return ""
}

// NodeAt returns the innermost node whose range contains the zero-based
// LSP position (line, col) in uri.
func (idx *Index) NodeAt(uri span.URI, line, col int) (frontend.Node, bool) {
	pos := protocol.Position{Line: uint32(line), Character: uint32(col)}

	var candidates []frontend.Node
	for _, n := range idx.nodesByURI[uri] {
		if !n.HasRange() {
			continue
		}
		if containsPos(n.Range(), pos) {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		best = idx.pickInner(best, c)
	}
	return best, true
}

func (idx *Index) pickInner(a, b frontend.Node) frontend.Node {
	ar, br := a.Range(), b.Range()

	if sameRange(ar, br) {
		if a.Kind() == frontend.KindConstructor && isClassKind(b.Kind()) {
			return a
		}
		if b.Kind() == frontend.KindConstructor && isClassKind(a.Kind()) {
			return b
		}
	}

	switch comparePos(ar.Start, br.Start) {
	case 1:
		return a
	case -1:
		return b
	}

	switch comparePos(ar.End, br.End) {
	case -1:
		return a
	case 1:
		return b
	}

	if idx.isDescendant(a, b) {
		return a
	}
	if idx.isDescendant(b, a) {
		return b
	}
	return a
}

// isDescendant reports whether candidate is a (possibly indirect)
// descendant of maybeAncestor, walking the parent table. Cycle-safe.
func (idx *Index) isDescendant(candidate, maybeAncestor frontend.Node) bool {
	cur := candidate
	visited := make(map[frontend.Node]struct{})
	for {
		entry, ok := idx.parentLookup[cur]
		if !ok {
			return false
		}
		if entry.parent == maybeAncestor {
			return true
		}
		if _, looped := visited[entry.parent]; looped {
			return false
		}
		visited[entry.parent] = struct{}{}
		cur = entry.parent
	}
}

func isClassKind(k frontend.NodeKind) bool {
	switch k {
	case frontend.KindClass, frontend.KindInterface, frontend.KindEnum, frontend.KindAnnotationType:
		return true
	default:
		return false
	}
}

func sameRange(a, b protocol.Range) bool {
	return comparePos(a.Start, b.Start) == 0 && comparePos(a.End, b.End) == 0
}

// comparePos returns -1, 0, 1 as a is before, equal to, or after b.
func comparePos(a, b protocol.Position) int {
	if a.Line != b.Line {
		if a.Line < b.Line {
			return -1
		}
		return 1
	}
	if a.Character != b.Character {
		if a.Character < b.Character {
			return -1
		}
		return 1
	}
	return 0
}

// containsPos reports whether r contains pos, treating r as half-open:
// Start is inclusive, End is exclusive.
func containsPos(r protocol.Range, pos protocol.Position) bool {
	return comparePos(r.Start, pos) <= 0 && comparePos(pos, r.End) < 0
}

// RestoreFromPrevious replaces this index's data for uri with the data
// from previous, re-registering class-name entries after first
// unregistering whatever the (presumably degraded) new compile had
// inserted for uri. Used when a recompile produces a degraded AST for a
// URI, e.g. because of a syntax error.
func (idx *Index) RestoreFromPrevious(uri span.URI, previous *Index) {
	idx.unregisterClassNames(uri)
	idx.clearParentLookupForURI(uri)

	idx.nodesByURI[uri] = previous.nodesByURI[uri]
	idx.classNodesByURI[uri] = previous.classNodesByURI[uri]
	idx.dependsOnByURI[uri] = previous.dependsOnByURI[uri]

	for child, entry := range previous.parentLookup {
		if entry.uri == uri {
			idx.parentLookup[child] = entry
		}
	}

	for _, cls := range previous.classNodesByURI[uri] {
		idx.registerClassName(cls, uri)
	}
}

// SnapshotExcluding produces a fresh, independent Index containing
// everything from idx except data pertaining to excluded. Per-URI list
// values are shared immutably with idx (never mutated in place; a
// revisit always installs a brand new slice by pointer swap, per the
// concurrency model). idx itself is never mutated;
// readers holding a reference to it see no change.
func (idx *Index) SnapshotExcluding(excluded map[span.URI]struct{}) *Index {
	out := New(WithReservedPrefixes(idx.reservedPrefixes))

	for uri, nodes := range idx.nodesByURI {
		if _, skip := excluded[uri]; skip {
			continue
		}
		out.nodesByURI[uri] = nodes
	}
	for uri, classes := range idx.classNodesByURI {
		if _, skip := excluded[uri]; skip {
			continue
		}
		out.classNodesByURI[uri] = classes
	}
	for uri, deps := range idx.dependsOnByURI {
		if _, skip := excluded[uri]; skip {
			continue
		}
		out.dependsOnByURI[uri] = deps
	}
	for fqn, cls := range idx.classNodesByName {
		if belongsToExcluded(idx, fqn, excluded) {
			continue
		}
		out.classNodesByName[fqn] = cls
	}
	for fqn, sites := range idx.duplicateClassSites {
		kept := make([]span.URI, 0, len(sites))
		for _, s := range sites {
			if _, skip := excluded[s]; !skip {
				kept = append(kept, s)
			}
		}
		if len(kept) > 0 {
			out.duplicateClassSites[fqn] = kept
		}
	}
	// parent_lookup: copy entries whose stored URI is not excluded. This
	// is deliberately conservative: some frontend utilities build
	// transient nodes whose recorded URI is the compiled file even when
	// the node is conceptually scope-wide, so exclusion is keyed purely
	// on the stored URI, never inferred from node shape. A node whose
	// parent link does not survive the snapshot is treated as having no
	// parent by callers (e.g. isDescendant), never as an error.
	for child, entry := range idx.parentLookup {
		if _, skip := excluded[entry.uri]; skip {
			continue
		}
		out.parentLookup[child] = entry
	}

	return out
}

func belongsToExcluded(idx *Index, fqn string, excluded map[span.URI]struct{}) bool {
	cls, ok := idx.classNodesByName[fqn]
	if !ok {
		return false
	}
	for uri, classes := range idx.classNodesByURI {
		if _, skip := excluded[uri]; !skip {
			continue
		}
		for _, c := range classes {
			if c == cls {
				return true
			}
		}
	}
	return false
}
