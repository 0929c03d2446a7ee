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

// Package frontendtest provides a minimal in-memory implementation of
// the frontend.Node family for use in tests of the packages that consume
// the frontend contract (signature, astindex, orchestrator, providers).
// It is intentionally simplistic: it is not a compiler, just a fixture.
package frontendtest

import (
	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// FakeNode is a settable, general-purpose frontend.Node/MethodNode/
// FieldNode/PropertyNode implementation for tests.
type FakeNode struct {
	NodeKind      frontend.NodeKind
	NodeName      string
	NodeRange     protocol.Range
	NodeHasRange  bool
	NodeSynthetic bool

	NodeReturnType string
	NodeParamTypes []string
	NodeParamNames []string
	NodeStatic     bool

	NodeType string
}

var _ frontend.Node = (*FakeNode)(nil)
var _ frontend.MethodNode = (*FakeNode)(nil)
var _ frontend.FieldNode = (*FakeNode)(nil)
var _ frontend.PropertyNode = (*FakeNode)(nil)

func (n *FakeNode) Kind() frontend.NodeKind { return n.NodeKind }
func (n *FakeNode) Name() string            { return n.NodeName }
func (n *FakeNode) HasRange() bool          { return n.NodeHasRange }
func (n *FakeNode) Range() protocol.Range   { return n.NodeRange }
func (n *FakeNode) Synthetic() bool         { return n.NodeSynthetic }
func (n *FakeNode) ReturnType() string      { return n.NodeReturnType }
func (n *FakeNode) ParameterTypes() []string {
	return n.NodeParamTypes
}
func (n *FakeNode) ParameterNames() []string {
	return n.NodeParamNames
}
func (n *FakeNode) IsStatic() bool { return n.NodeStatic }

// WithParamNames sets the parameter-name list parallel to the node's
// parameter types and returns the receiver.
func (n *FakeNode) WithParamNames(names ...string) *FakeNode {
	n.NodeParamNames = names
	return n
}
func (n *FakeNode) Type() string   { return n.NodeType }

// Method constructs a non-synthetic instance method node.
func Method(name, returnType string, paramTypes ...string) *FakeNode {
	return &FakeNode{NodeKind: frontend.KindMethod, NodeName: name, NodeReturnType: returnType, NodeParamTypes: paramTypes}
}

// StaticMethod constructs a non-synthetic static method node.
func StaticMethod(name, returnType string, paramTypes ...string) *FakeNode {
	m := Method(name, returnType, paramTypes...)
	m.NodeStatic = true
	return m
}

// SyntheticMethod constructs a compiler-generated method node.
func SyntheticMethod(name, returnType string, paramTypes ...string) *FakeNode {
	m := Method(name, returnType, paramTypes...)
	m.NodeSynthetic = true
	return m
}

// AtRange sets a concrete source range on the node and returns the
// receiver.
func (n *FakeNode) AtRange(startLine, startCol, endLine, endCol int) *FakeNode {
	n.NodeHasRange = true
	n.NodeRange = protocol.Range{
		Start: protocol.Position{Line: uint32(startLine), Character: uint32(startCol)},
		End:   protocol.Position{Line: uint32(endLine), Character: uint32(endCol)},
	}
	return n
}

// Field constructs a non-synthetic field node.
func Field(name, typ string) *FakeNode {
	return &FakeNode{NodeKind: frontend.KindField, NodeName: name, NodeType: typ}
}

// Property constructs a non-synthetic property node.
func Property(name, typ string) *FakeNode {
	return &FakeNode{NodeKind: frontend.KindProperty, NodeName: name, NodeType: typ}
}

// FakeClass is a settable frontend.ClassNode implementation for tests.
type FakeClass struct {
	FakeNode
	FQN         string
	Super       string
	Interfaces  []string
	MethodNodes []frontend.MethodNode
	FieldNodes  []frontend.FieldNode
	PropNodes   []frontend.PropertyNode
	Interface   bool
	Abstract    bool
}

var _ frontend.ClassNode = (*FakeClass)(nil)

// Class constructs a basic non-interface class node with the given FQN.
func Class(fqn string) *FakeClass {
	return &FakeClass{
		FakeNode: FakeNode{NodeKind: frontend.KindClass, NodeName: fqn},
		FQN:      fqn,
	}
}

func (c *FakeClass) FullyQualifiedName() string        { return c.FQN }
func (c *FakeClass) SuperclassName() string             { return c.Super }
func (c *FakeClass) InterfaceNames() []string           { return c.Interfaces }
func (c *FakeClass) Methods() []frontend.MethodNode     { return c.MethodNodes }
func (c *FakeClass) Fields() []frontend.FieldNode       { return c.FieldNodes }
func (c *FakeClass) Properties() []frontend.PropertyNode { return c.PropNodes }
func (c *FakeClass) IsInterface() bool                  { return c.Interface }
func (c *FakeClass) IsAbstract() bool                   { return c.Abstract }

// WithMethods appends methods and returns the receiver for chaining.
func (c *FakeClass) WithMethods(methods ...*FakeNode) *FakeClass {
	for _, m := range methods {
		c.MethodNodes = append(c.MethodNodes, m)
	}
	return c
}

// WithFields appends fields and returns the receiver for chaining.
func (c *FakeClass) WithFields(fields ...*FakeNode) *FakeClass {
	for _, f := range fields {
		c.FieldNodes = append(c.FieldNodes, f)
	}
	return c
}

// WithProperties appends properties and returns the receiver for chaining.
func (c *FakeClass) WithProperties(props ...*FakeNode) *FakeClass {
	for _, p := range props {
		c.PropNodes = append(c.PropNodes, p)
	}
	return c
}

// WithInterfaces sets the interface name list and returns the receiver.
func (c *FakeClass) WithInterfaces(names ...string) *FakeClass {
	c.Interfaces = names
	return c
}

// WithSuper sets the superclass name and returns the receiver.
func (c *FakeClass) WithSuper(name string) *FakeClass {
	c.Super = name
	return c
}

// AtRange sets a concrete source range on the node and returns the
// receiver.
func (c *FakeClass) AtRange(startLine, startCol, endLine, endCol int) *FakeClass {
	c.NodeHasRange = true
	c.NodeRange = protocol.Range{
		Start: protocol.Position{Line: uint32(startLine), Character: uint32(startCol)},
		End:   protocol.Position{Line: uint32(endLine), Character: uint32(endCol)},
	}
	return c
}

// FakeSourceUnit is a settable frontend.SourceUnit implementation.
type FakeSourceUnit struct {
	SourceURI  span.URI
	SourceDeps []string
	SourceNodes []frontend.Node
}

var _ frontend.SourceUnit = (*FakeSourceUnit)(nil)

func (u *FakeSourceUnit) URI() span.URI        { return u.SourceURI }
func (u *FakeSourceUnit) Nodes() []frontend.Node { return u.SourceNodes }
func (u *FakeSourceUnit) DependsOn() []string   { return u.SourceDeps }

// FakeVariable is a settable frontend.VariableNode implementation.
type FakeVariable struct {
	FakeNode
	Dynamic bool
	Init    frontend.Node
}

var _ frontend.VariableNode = (*FakeVariable)(nil)

// Variable constructs a dynamically-typed local variable declaration
// named name with the given initializer expression.
func Variable(name string, init frontend.Node) *FakeVariable {
	return &FakeVariable{
		FakeNode: FakeNode{NodeKind: frontend.KindVariable, NodeName: name},
		Dynamic:  true,
		Init:     init,
	}
}

func (v *FakeVariable) IsDynamicallyTyped() bool { return v.Dynamic }
func (v *FakeVariable) InitializerExpr() (frontend.Node, bool) {
	if v.Init == nil {
		return nil, false
	}
	return v.Init, true
}

// FakeArgument is a settable frontend.ArgumentNode implementation.
type FakeArgument struct {
	FakeNode
	Closure bool
}

var _ frontend.ArgumentNode = (*FakeArgument)(nil)

// Argument constructs a plain (non-closure) argument expression node.
func Argument(name string) *FakeArgument {
	return &FakeArgument{FakeNode: FakeNode{NodeKind: frontend.KindExpression, NodeName: name}}
}

// ClosureArgument constructs a closure-literal argument expression node.
func ClosureArgument() *FakeArgument {
	return &FakeArgument{FakeNode: FakeNode{NodeKind: frontend.KindExpression}, Closure: true}
}

func (a *FakeArgument) IsClosure() bool { return a.Closure }

// FakeCall is a settable frontend.CallNode implementation.
type FakeCall struct {
	FakeNode
	Args []frontend.ArgumentNode
}

var _ frontend.CallNode = (*FakeCall)(nil)

// Call constructs a method-call expression node with the given
// arguments.
func Call(args ...frontend.ArgumentNode) *FakeCall {
	return &FakeCall{FakeNode: FakeNode{NodeKind: frontend.KindExpression}, Args: args}
}

func (c *FakeCall) Arguments() []frontend.ArgumentNode { return c.Args }
