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

package jvmc

import (
	"sync"

	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// node is the materialized form of one wire node. A single concrete
// type implements every frontend node interface; which interfaces are
// meaningful follows from the kind, exactly as on the wire.
type node struct {
	wire  nodeWire
	utils *Utilities
}

var (
	_ frontend.Node         = (*node)(nil)
	_ frontend.ClassNode    = (*node)(nil)
	_ frontend.MethodNode   = (*node)(nil)
	_ frontend.FieldNode    = (*node)(nil)
	_ frontend.PropertyNode = (*node)(nil)
	_ frontend.VariableNode = (*node)(nil)
	_ frontend.CallNode     = (*node)(nil)
	_ frontend.ArgumentNode = (*node)(nil)
)

func (n *node) Kind() frontend.NodeKind {
	switch n.wire.Kind {
	case "class":
		return frontend.KindClass
	case "interface":
		return frontend.KindInterface
	case "enum":
		return frontend.KindEnum
	case "annotation":
		return frontend.KindAnnotationType
	case "method":
		return frontend.KindMethod
	case "constructor":
		return frontend.KindConstructor
	case "field":
		return frontend.KindField
	case "property":
		return frontend.KindProperty
	case "variable":
		return frontend.KindVariable
	case "parameter":
		return frontend.KindParameter
	default:
		return frontend.KindExpression
	}
}

func (n *node) Name() string    { return n.wire.Name }
func (n *node) HasRange() bool  { return n.wire.Range != nil }
func (n *node) Synthetic() bool { return n.wire.Synthetic }

func (n *node) Range() frontend.Range {
	if n.wire.Range == nil {
		return frontend.Range{}
	}
	return n.wire.Range.toRange()
}

func (n *node) FullyQualifiedName() string { return n.wire.FQN }
func (n *node) SuperclassName() string     { return n.wire.Super }
func (n *node) InterfaceNames() []string   { return n.wire.Interfaces }
func (n *node) IsInterface() bool          { return n.wire.Kind == "interface" }
func (n *node) IsAbstract() bool           { return n.wire.Abstract }

func (n *node) Methods() []frontend.MethodNode {
	out := make([]frontend.MethodNode, 0, len(n.wire.MethodIDs))
	for _, id := range n.wire.MethodIDs {
		if m, ok := n.utils.byID(id); ok {
			out = append(out, m)
		}
	}
	return out
}

func (n *node) Fields() []frontend.FieldNode {
	out := make([]frontend.FieldNode, 0, len(n.wire.FieldIDs))
	for _, id := range n.wire.FieldIDs {
		if f, ok := n.utils.byID(id); ok {
			out = append(out, f)
		}
	}
	return out
}

func (n *node) Properties() []frontend.PropertyNode {
	out := make([]frontend.PropertyNode, 0, len(n.wire.PropIDs))
	for _, id := range n.wire.PropIDs {
		if p, ok := n.utils.byID(id); ok {
			out = append(out, p)
		}
	}
	return out
}

func (n *node) ReturnType() string       { return n.wire.ReturnType }
func (n *node) ParameterTypes() []string { return n.wire.ParamTypes }
func (n *node) ParameterNames() []string { return n.wire.ParamNames }
func (n *node) IsStatic() bool           { return n.wire.Static }

func (n *node) Type() string             { return n.wire.Type }
func (n *node) IsDynamicallyTyped() bool { return n.wire.Dynamic }

func (n *node) InitializerExpr() (frontend.Node, bool) {
	if n.wire.InitID == nil {
		return nil, false
	}
	if init, ok := n.utils.byID(*n.wire.InitID); ok {
		return init, true
	}
	return nil, false
}

func (n *node) Arguments() []frontend.ArgumentNode {
	out := make([]frontend.ArgumentNode, 0, len(n.wire.ArgIDs))
	for _, id := range n.wire.ArgIDs {
		if a, ok := n.utils.byID(id); ok {
			out = append(out, a)
		}
	}
	return out
}

func (n *node) IsClosure() bool { return n.wire.Closure }

// sourceUnit is the materialized form of one compiled file.
type sourceUnit struct {
	uri       span.URI
	dependsOn []string
	nodes     []frontend.Node
	unused    []frontend.UnusedImport
}

var _ frontend.SourceUnit = (*sourceUnit)(nil)

func (u *sourceUnit) URI() span.URI            { return u.uri }
func (u *sourceUnit) Nodes() []frontend.Node   { return u.nodes }
func (u *sourceUnit) DependsOn() []string      { return u.dependsOn }

// materialize converts the wire units into source units, registering
// every node with the shared Utilities so id links resolve.
func materialize(units []sourceUnitWire, utils *Utilities) []frontend.SourceUnit {
	out := make([]frontend.SourceUnit, 0, len(units))
	for _, uw := range units {
		su := &sourceUnit{
			uri:       span.URI(uw.URI),
			dependsOn: uw.DependsOn,
		}
		for _, nw := range uw.Nodes {
			n := &node{wire: nw, utils: utils}
			utils.register(n)
			su.nodes = append(su.nodes, n)
		}
		for _, imp := range uw.UnusedImports {
			ui := frontend.UnusedImport{Name: imp.Name}
			if imp.Range != nil {
				ui.HasRange = true
				ui.Range = imp.Range.toRange()
			}
			su.unused = append(su.unused, ui)
		}
		out = append(out, su)
	}
	return out
}

// Utilities answers the AST navigation surface from the resolution
// annotations materialized at compile time. It doubles as the
// unused-import analyzer, since that analysis also arrives with the
// compile result.
type Utilities struct {
	mu    sync.Mutex
	nodes map[int]*node
}

var _ frontend.ASTUtilities = (*Utilities)(nil)
var _ frontend.ImportAnalyzer = (*Utilities)(nil)

func (u *Utilities) register(n *node) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.nodes[n.wire.ID] = n
}

func (u *Utilities) byID(id int) (*node, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	n, ok := u.nodes[id]
	return n, ok
}

// GetDefinition implements frontend.ASTUtilities.
func (u *Utilities) GetDefinition(n frontend.Node, strict bool) (frontend.Node, bool) {
	jn, ok := n.(*node)
	if !ok {
		return nil, false
	}
	if jn.wire.DefID != nil {
		if def, ok := u.byID(*jn.wire.DefID); ok {
			return def, true
		}
	}
	if !strict && jn.wire.NonStrictDefID != nil {
		if def, ok := u.byID(*jn.wire.NonStrictDefID); ok {
			return def, true
		}
	}
	return nil, false
}

// GetReferences implements frontend.ASTUtilities.
func (u *Utilities) GetReferences(n frontend.Node) []frontend.Node {
	jn, ok := n.(*node)
	if !ok {
		return nil
	}
	// References are annotated on the definition node; navigate there
	// first when the query starts from a use site.
	target := jn
	if jn.wire.DefID != nil {
		if def, ok := u.byID(*jn.wire.DefID); ok {
			target = def
		}
	}
	out := make([]frontend.Node, 0, len(target.wire.RefIDs))
	for _, id := range target.wire.RefIDs {
		if r, ok := u.byID(id); ok {
			out = append(out, r)
		}
	}
	return out
}

// GetTypeDefinition implements frontend.ASTUtilities.
func (u *Utilities) GetTypeDefinition(n frontend.Node) (frontend.Node, bool) {
	jn, ok := n.(*node)
	if !ok || jn.wire.TypeDefID == nil {
		return nil, false
	}
	if def, ok := u.byID(*jn.wire.TypeDefID); ok {
		return def, true
	}
	return nil, false
}

// GetEnclosingNodeOfType implements frontend.ASTUtilities by walking
// the parent chain.
func (u *Utilities) GetEnclosingNodeOfType(n frontend.Node, kind frontend.NodeKind) (frontend.Node, bool) {
	jn, ok := n.(*node)
	if !ok {
		return nil, false
	}
	for jn.wire.ParentID != nil {
		parent, ok := u.byID(*jn.wire.ParentID)
		if !ok {
			return nil, false
		}
		if parent.Kind() == kind {
			return parent, true
		}
		jn = parent
	}
	return nil, false
}

// GetMethodFromCall implements frontend.ASTUtilities.
func (u *Utilities) GetMethodFromCall(call frontend.Node) (frontend.MethodNode, bool) {
	jn, ok := call.(*node)
	if !ok || jn.wire.CallTargetID == nil {
		return nil, false
	}
	if m, ok := u.byID(*jn.wire.CallTargetID); ok {
		return m, true
	}
	return nil, false
}

// GetTypeOf implements frontend.ASTUtilities.
func (u *Utilities) GetTypeOf(expr frontend.Node) (string, bool) {
	jn, ok := expr.(*node)
	if !ok || jn.wire.InferredType == "" {
		return "", false
	}
	return jn.wire.InferredType, true
}

// UnusedImports implements frontend.ImportAnalyzer from the analysis
// shipped with the compile result.
func (u *Utilities) UnusedImports(su frontend.SourceUnit) ([]frontend.UnusedImport, error) {
	jsu, ok := su.(*sourceUnit)
	if !ok {
		return nil, nil
	}
	return jsu.unused, nil
}

func symbolKind(kind string) classpath.Kind {
	switch kind {
	case "interface":
		return classpath.KindInterface
	case "enum":
		return classpath.KindEnum
	case "annotation":
		return classpath.KindAnnotation
	default:
		return classpath.KindClass
	}
}
