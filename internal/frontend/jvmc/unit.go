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
	"context"
	"fmt"
	"sync"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// uriLister is the optional tracker surface that enumerates open
// buffers, so a compile can ship every dirty document to the helper.
type uriLister interface {
	OpenURIs() []span.URI
}

// Unit is one compilation unit bound to a root and its helper process.
type Unit struct {
	factory   *Factory
	helper    *helper
	root      span.URI
	tracker   frontend.ContentsProvider
	forced    []string
	targetDir string

	mu    sync.Mutex
	units []frontend.SourceUnit
}

var _ frontend.CompilationUnit = (*Unit)(nil)

// Compile runs the named phase on the helper, shipping every open
// buffer's contents, and materializes the annotated AST it returns.
func (u *Unit) Compile(ctx context.Context, phase string) (frontend.ErrorCollector, error) {
	buffers := make(map[string]string)
	if lister, ok := u.tracker.(uriLister); ok {
		for _, uri := range lister.OpenURIs() {
			if text, ok := u.tracker.Contents(uri); ok {
				buffers[string(uri)] = text
			}
		}
	}

	var res compileResult
	err := u.helper.call(ctx, "compile", compileParams{
		Root:    u.root.Filename(),
		Phase:   phase,
		Buffers: buffers,
		Forced:  u.forced,
	}, &res)
	if err != nil {
		return nil, &compilerBugError{message: err.Error()}
	}

	units := materialize(res.Units, u.factory.utils)
	u.mu.Lock()
	u.units = units
	u.mu.Unlock()

	collector := newCollector(res.Messages)
	switch res.Outcome {
	case outcomeOK, "":
		return collector, nil
	case outcomeFailed:
		return collector, frontend.ErrCompilationFailed
	case outcomeLinkage:
		return collector, frontend.ErrLinkage
	case outcomeBug:
		bug := &compilerBugError{}
		if res.Fault != nil {
			bug.path, bug.method, bug.message = res.Fault.Path, res.Fault.Method, res.Fault.Message
		}
		return collector, bug
	default:
		return collector, nil
	}
}

// AST yields the source units from the most recent compile.
func (u *Unit) AST() []frontend.SourceUnit {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.units
}

// ClassLoaderDescriptor implements frontend.CompilationUnit.
func (u *Unit) ClassLoaderDescriptor() frontend.ClassLoaderDescriptor {
	return frontend.ClassLoaderDescriptor{
		VersionTag:       u.factory.versionTag,
		ClasspathURLs:    u.factory.classpath,
		RejectedPackages: u.factory.rejected,
	}
}

// TargetDirectory implements frontend.CompilationUnit.
func (u *Unit) TargetDirectory() string { return u.targetDir }

// Close implements frontend.CompilationUnit. The helper process stays
// alive for the root, and units are recreated on every recompile, so
// closing a unit only drops its materialized AST.
func (u *Unit) Close() error {
	u.mu.Lock()
	u.units = nil
	u.mu.Unlock()
	return nil
}

// compilerBugError carries the stack-frame fields the orchestrator's
// benign-fault suppression matches against.
type compilerBugError struct {
	path, method, message string
}

func (e *compilerBugError) Error() string {
	return fmt.Sprintf("frontend internal error at %s.%s: %s", e.path, e.method, e.message)
}

func (e *compilerBugError) Unwrap() error { return frontend.ErrCompilerBug }

// FaultLocation exposes the fault's stack-frame path, method, and
// message for benign-pattern matching.
func (e *compilerBugError) FaultLocation() (string, string, string) {
	return e.path, e.method, e.message
}

// collector is the materialized error collector for one compile round.
type collector struct {
	errs, warns []frontend.CompileMessage
}

func newCollector(messages []messageWire) *collector {
	c := &collector{}
	for _, m := range messages {
		msg := frontend.CompileMessage{
			Message:     m.Message,
			URI:         span.URI(m.URI),
			HasLocation: m.Line != nil,
		}
		if m.Line != nil {
			msg.Line = *m.Line
			msg.Col = m.Col
		}
		if m.Fatal {
			c.errs = append(c.errs, msg)
		} else {
			c.warns = append(c.warns, msg)
		}
	}
	return c
}

func (c *collector) Errors() []frontend.CompileMessage   { return c.errs }
func (c *collector) Warnings() []frontend.CompileMessage { return c.warns }

// rangeWire is a zero-based, half-open source range on the wire.
type rangeWire struct {
	StartLine int `json:"startLine"`
	StartCol  int `json:"startCol"`
	EndLine   int `json:"endLine"`
	EndCol    int `json:"endCol"`
}

func (r rangeWire) toRange() frontend.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.StartLine), Character: uint32(r.StartCol)},
		End:   protocol.Position{Line: uint32(r.EndLine), Character: uint32(r.EndCol)},
	}
}

type configureParams struct {
	Root             string   `json:"root"`
	Protocol         string   `json:"protocol"`
	Classpath        []string `json:"classpath,omitempty"`
	RejectedPackages []string `json:"rejectedPackages,omitempty"`
}

type configureResult struct {
	TargetDirectory string `json:"targetDirectory,omitempty"`
}

type compileParams struct {
	Root    string            `json:"root"`
	Phase   string            `json:"phase"`
	Buffers map[string]string `json:"buffers,omitempty"`
	Forced  []string          `json:"forced,omitempty"`
}

// compile outcomes on the wire.
const (
	outcomeOK      = "ok"
	outcomeFailed  = "failed"
	outcomeBug     = "bug"
	outcomeLinkage = "linkage"
)

type compileResult struct {
	Units    []sourceUnitWire `json:"units"`
	Messages []messageWire    `json:"messages,omitempty"`
	Outcome  string           `json:"outcome"`
	Fault    *faultWire       `json:"fault,omitempty"`
}

type faultWire struct {
	Path    string `json:"path"`
	Method  string `json:"method"`
	Message string `json:"message"`
}

type messageWire struct {
	Message string `json:"message"`
	URI     string `json:"uri,omitempty"`
	Line    *int   `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Fatal   bool   `json:"fatal"`
}

type sourceUnitWire struct {
	URI           string           `json:"uri"`
	DependsOn     []string         `json:"dependsOn,omitempty"`
	Nodes         []nodeWire       `json:"nodes"`
	UnusedImports []unusedImpWire  `json:"unusedImports,omitempty"`
}

type unusedImpWire struct {
	Name  string     `json:"name"`
	Range *rangeWire `json:"range,omitempty"`
}

// nodeWire is one AST node with its resolution annotations. Member and
// navigation links refer to other nodes by id; ids are unique within a
// compile round.
type nodeWire struct {
	ID        int        `json:"id"`
	Kind      string     `json:"kind"`
	Name      string     `json:"name,omitempty"`
	Range     *rangeWire `json:"range,omitempty"`
	Synthetic bool       `json:"synthetic,omitempty"`
	ParentID  *int       `json:"parentId,omitempty"`

	// class-family fields
	FQN        string   `json:"fqn,omitempty"`
	Super      string   `json:"super,omitempty"`
	Interfaces []string `json:"interfaces,omitempty"`
	Abstract   bool     `json:"abstract,omitempty"`
	MethodIDs  []int    `json:"methodIds,omitempty"`
	FieldIDs   []int    `json:"fieldIds,omitempty"`
	PropIDs    []int    `json:"propertyIds,omitempty"`

	// callable fields
	ReturnType string   `json:"returnType,omitempty"`
	ParamTypes []string `json:"paramTypes,omitempty"`
	ParamNames []string `json:"paramNames,omitempty"`
	Static     bool     `json:"static,omitempty"`

	// field/property/variable fields
	Type    string `json:"type,omitempty"`
	Dynamic bool   `json:"dynamic,omitempty"`
	InitID  *int   `json:"initId,omitempty"`

	// expression fields
	ArgIDs  []int `json:"argIds,omitempty"`
	Closure bool  `json:"closure,omitempty"`

	// resolution annotations
	DefID          *int   `json:"defId,omitempty"`
	NonStrictDefID *int   `json:"nonStrictDefId,omitempty"`
	TypeDefID      *int   `json:"typeDefId,omitempty"`
	CallTargetID   *int   `json:"callTargetId,omitempty"`
	RefIDs         []int  `json:"refIds,omitempty"`
	InferredType   string `json:"inferredType,omitempty"`
}

type scanParams struct {
	URLs             []string `json:"urls"`
	RejectedPackages []string `json:"rejectedPackages,omitempty"`
}

type scanResult struct {
	Symbols []symbolWire `json:"symbols"`
}

type symbolWire struct {
	FQN         string `json:"fqn"`
	SimpleName  string `json:"simpleName"`
	Package     string `json:"package"`
	Kind        string `json:"kind"`
	ElementPath string `json:"elementPath,omitempty"`
}

type decompileParams struct {
	FQN string `json:"fqn"`
}

type decompileResult struct {
	Text      string    `json:"text"`
	DeclRange rangeWire `json:"declRange"`
}
