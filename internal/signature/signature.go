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

// Package signature computes the structural fingerprint of a class's
// public API, used to decide whether a recompiled file's dependents
// need to be recompiled too.
package signature

import (
	"fmt"
	"sort"
	"strings"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// Signature is the deterministic, order-independent representation of a
// class's public API. Two Signatures compare equal (via Equal) iff every
// component matches; set-valued fields are stored pre-sorted so that
// traversal order never affects comparison.
type Signature struct {
	Name       string
	Superclass string
	Interfaces []string
	Methods    []string
	Fields     []string
	Properties []string
}

// Of canonicalises cls into a Signature. Synthetic members (compiler
// generated constructors/accessors) are excluded because they are a
// deterministic function of the declaration and would otherwise force a
// recompile of dependents for purely internal changes.
func Of(cls frontend.ClassNode) Signature {
	sig := Signature{
		Name:       cls.FullyQualifiedName(),
		Superclass: cls.SuperclassName(),
		Interfaces: sortedCopy(cls.InterfaceNames()),
	}

	methods := make([]string, 0, len(cls.Methods()))
	for _, m := range cls.Methods() {
		if m.Synthetic() {
			continue
		}
		methods = append(methods, methodSignature(m))
	}
	sort.Strings(methods)
	sig.Methods = methods

	fields := make([]string, 0, len(cls.Fields()))
	for _, f := range cls.Fields() {
		if f.Synthetic() {
			continue
		}
		fields = append(fields, fmt.Sprintf("%s %s", f.Type(), f.Name()))
	}
	sort.Strings(fields)
	sig.Fields = fields

	props := make([]string, 0, len(cls.Properties()))
	for _, p := range cls.Properties() {
		if p.Synthetic() {
			continue
		}
		props = append(props, fmt.Sprintf("%s %s", p.Type(), p.Name()))
	}
	sort.Strings(props)
	sig.Properties = props

	return sig
}

// methodSignature renders `[static ]<return> <name>(<param-type>,...)`.
func methodSignature(m frontend.MethodNode) string {
	var b strings.Builder
	if m.IsStatic() {
		b.WriteString("static ")
	}
	b.WriteString(m.ReturnType())
	b.WriteString(" ")
	b.WriteString(m.Name())
	b.WriteString("(")
	b.WriteString(strings.Join(m.ParameterTypes(), ","))
	b.WriteString(")")
	return b.String()
}

// Equal reports whether two Signatures describe the same public API.
func (s Signature) Equal(other Signature) bool {
	if s.Name != other.Name || s.Superclass != other.Superclass {
		return false
	}
	return stringSliceEqual(s.Interfaces, other.Interfaces) &&
		stringSliceEqual(s.Methods, other.Methods) &&
		stringSliceEqual(s.Fields, other.Fields) &&
		stringSliceEqual(s.Properties, other.Properties)
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
