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

// Package frontend defines the contract this module requires from the
// external compiler frontend (parser + name resolution). The frontend
// itself, parsing source text into an AST and resolving names, lives
// behind this contract; this package only pins down the shapes the rest
// of the module consumes and produces against.
package frontend

import (
	"context"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"
)

// NodeKind discriminates the subkinds of AST node this module cares
// about. Expression subkinds are intentionally left open-ended via
// IsExpression rather than enumerated, since the frontend owns the full
// expression grammar.
type NodeKind int

// Node kinds recognized by the core. Synthetic members (constructors,
// accessors the compiler generates for properties, etc.) are tagged via
// Node.Synthetic rather than a distinct kind, matching how the source
// frontend marks generated AST nodes.
const (
	KindUnknown NodeKind = iota
	KindClass
	KindInterface
	KindEnum
	KindAnnotationType
	KindMethod
	KindConstructor
	KindField
	KindProperty
	KindVariable
	KindParameter
	KindExpression
)

// Range is a half-open, zero-based LSP-convention source range. End is
// exclusive on the column axis when Start.Line == End.Line.
type Range = protocol.Range

// Position is a zero-based LSP-convention source position.
type Position = protocol.Position

// Node is the opaque AST node contract. The frontend owns the concrete
// representation; the core only needs these accessors.
type Node interface {
	Kind() NodeKind
	Name() string
	// HasRange reports whether Range() is meaningful. External/decompiled
	// declarations may lack one.
	HasRange() bool
	Range() Range
	// Synthetic reports whether this member was generated by the compiler
	// (default constructors, property accessors) rather than written by
	// the user. Synthetic members are excluded from Signature.
	Synthetic() bool
}

// ClassNode is a Node of kind KindClass/KindInterface/KindEnum/KindAnnotationType.
type ClassNode interface {
	Node
	// FullyQualifiedName is the name used as the key in class_nodes_by_name.
	FullyQualifiedName() string
	SuperclassName() string
	InterfaceNames() []string
	Methods() []MethodNode
	Fields() []FieldNode
	Properties() []PropertyNode
	IsInterface() bool
	IsAbstract() bool
}

// MethodNode is a Node of kind KindMethod or KindConstructor.
type MethodNode interface {
	Node
	ReturnType() string
	ParameterTypes() []string
	// ParameterNames returns the declared parameter names, parallel to
	// ParameterTypes, used by Inlay Hints' parameter-name labels.
	ParameterNames() []string
	IsStatic() bool
}

// FieldNode is a Node of kind KindField.
type FieldNode interface {
	Node
	Type() string
}

// PropertyNode is a Node of kind KindProperty.
type PropertyNode interface {
	Node
	Type() string
}

// VariableNode is a Node of kind KindVariable: a local variable or
// dynamically-typed declaration site. Inlay Hints uses
// IsDynamicallyTyped to decide whether an inferred-type label applies,
// and InitializerExpr to resolve that inferred type via GetTypeOf.
type VariableNode interface {
	Node
	// IsDynamicallyTyped reports whether this declaration used the
	// language's dynamic-typing marker (e.g. `def`) rather than an
	// explicit type.
	IsDynamicallyTyped() bool
	// InitializerExpr returns the right-hand-side expression node, if
	// any, so its inferred type can be resolved via ASTUtilities.GetTypeOf.
	InitializerExpr() (Node, bool)
}

// CallNode is a Node of kind KindExpression representing a method call,
// exposing its argument expressions for Inlay Hints' parameter-name
// labels.
type CallNode interface {
	Node
	Arguments() []ArgumentNode
}

// ArgumentNode is one argument expression of a CallNode.
type ArgumentNode interface {
	Node
	// IsClosure reports whether this argument is a closure literal,
	// which Inlay Hints skips labelling.
	IsClosure() bool
}

// SourceUnit is a single parsed file: a URI plus its top-level nodes in
// depth-first document order.
type SourceUnit interface {
	URI() span.URI
	Nodes() []Node
	// DependsOn returns the fully-qualified class names this file
	// references via imports, explicit type references, and expanded
	// star-imports.
	DependsOn() []string
}

// ErrorCollector accumulates compile errors/warnings produced during a
// single compile invocation. Diagnostic Handler consumes it.
type ErrorCollector interface {
	// Errors returns fatal syntax errors.
	Errors() []CompileMessage
	// Warnings returns non-fatal syntax warnings.
	Warnings() []CompileMessage
}

// CompileMessage is a single error or warning produced by the frontend.
type CompileMessage struct {
	Message string
	URI     span.URI
	// HasLocation reports whether Line/Col are meaningful. A message
	// without a usable source locator is dropped by the Diagnostic
	// Handler with a debug log.
	HasLocation bool
	Line        int
	Col         int
}

// CompilationUnit is the frontend's compile driver for a single scope.
type CompilationUnit interface {
	// Compile runs the named phase. It may return CompilationFailed,
	// CompilerBug, or a linkage error (see errors.go); all are recoverable.
	Compile(ctx context.Context, phase string) (ErrorCollector, error)
	// AST yields every source unit currently known to the unit.
	AST() []SourceUnit
	// ClassLoaderDescriptor yields the descriptor used to key the shared
	// classpath scan cache.
	ClassLoaderDescriptor() ClassLoaderDescriptor
	// TargetDirectory is the optional on-disk artefact sink cleaned on
	// each recompile. Empty string means there is none.
	TargetDirectory() string
	// Close releases the classloader and any other unit-owned resources.
	Close() error
}

// ClassLoaderDescriptor identifies a classpath configuration for cache
// keying purposes.
type ClassLoaderDescriptor struct {
	// VersionTag distinguishes frontend/runtime versions so upgrades
	// naturally invalidate stale cache entries.
	VersionTag string
	// ClasspathURLs are the ordered classpath entries (directories or
	// archive paths) for this unit, as URL strings.
	ClasspathURLs []string
	// RejectedPackages are additional package-prefix filters merged with
	// the hardcoded base set (workspace/configuration's
	// memory.rejectedPackages).
	RejectedPackages []string
}

// CompilationUnitFactory produces a CompilationUnit bound to a scope's
// configuration and classloader.
type CompilationUnitFactory interface {
	Create(root span.URI, tracker ContentsProvider, forcedInvalidations map[span.URI]struct{}) (CompilationUnit, error)
}

// ContentsProvider is the subset of the File Contents Tracker the
// frontend needs to read open-buffer contents during a compile.
type ContentsProvider interface {
	Contents(uri span.URI) (string, bool)
}

// UnusedImport describes one import statement a source file never
// references.
type UnusedImport struct {
	Name string
	// HasRange reports whether Range is meaningful.
	HasRange bool
	Range    Range
}

// ImportAnalyzer is the frontend's unused-import analysis surface.
// Implementations may return a non-nil error for a partially-compiled
// AST rather than panicking; the Diagnostic Handler wraps every
// call in its own recover as a second line of defense regardless.
type ImportAnalyzer interface {
	UnusedImports(su SourceUnit) ([]UnusedImport, error)
}

// ASTUtilities is the frontend's navigation surface used by Request
// Providers: definition/reference resolution, enclosing-node
// lookup, call-target resolution, and expression typing.
type ASTUtilities interface {
	GetDefinition(n Node, strict bool) (Node, bool)
	GetReferences(n Node) []Node
	GetTypeDefinition(n Node) (Node, bool)
	GetEnclosingNodeOfType(n Node, kind NodeKind) (Node, bool)
	GetMethodFromCall(call Node) (MethodNode, bool)
	GetTypeOf(expr Node) (string, bool)
}
