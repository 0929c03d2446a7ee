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

// Package spock recognizes Spock specification classes so completion
// and document-symbol requests can layer the framework's block labels
// and feature-method decoration on top of the generic AST results.
package spock

import (
	"strings"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/providers"
)

// specificationBase is the base class every Spock specification
// extends, directly or through a project-local abstract spec.
const specificationBase = "spock.lang.Specification"

// blockLabels are Spock's feature-method block labels, offered as
// snippet completions inside a specification.
var blockLabels = []string{"given", "when", "then", "expect", "where", "and", "setup", "cleanup"}

// Detector recognizes Spock specification classes and feature methods.
type Detector struct{}

var _ providers.TestFrameworkDetector = (*Detector)(nil)

// NewDetector constructs a Detector.
func NewDetector() *Detector { return &Detector{} }

// IsSpecClass reports whether cls follows the Spock specification
// convention: it extends the Specification base, or its unresolved
// superclass name ends in "Spec" or "Specification" (a project-local
// abstract base the resolver couldn't see).
func (d *Detector) IsSpecClass(cls frontend.ClassNode) bool {
	super := cls.SuperclassName()
	if super == specificationBase {
		return true
	}
	return strings.HasSuffix(super, "Spec") || strings.HasSuffix(super, "Specification")
}

// IsFeatureMethod reports whether m is a Spock feature method. Feature
// methods are declared with free-text string names; anything containing
// whitespace cannot be a regular method identifier.
func (d *Detector) IsFeatureMethod(m frontend.MethodNode) bool {
	return strings.ContainsAny(m.Name(), " \t")
}

// BlockLabels returns snippet completions for Spock's block labels.
func (d *Detector) BlockLabels() []providers.CompletionItem {
	out := make([]providers.CompletionItem, 0, len(blockLabels))
	for _, label := range blockLabels {
		out = append(out, providers.CompletionItem{
			Label:      label + ":",
			Kind:       providers.CompletionSnippet,
			Detail:     "Spock block label",
			InsertText: label + ": ",
		})
	}
	return out
}
