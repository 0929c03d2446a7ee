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

package spock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend/frontendtest"
	"github.com/groovy-lsp/groovy-language-server/internal/spock"
)

func TestIsSpecClass(t *testing.T) {
	d := spock.NewDetector()

	cases := map[string]struct {
		super string
		want  bool
	}{
		"DirectSpecification":   {super: "spock.lang.Specification", want: true},
		"LocalAbstractSpec":     {super: "BaseIntegrationSpec", want: true},
		"PlainSuperclass":       {super: "java.lang.Object", want: false},
		"NoSuperclass":          {super: "", want: false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cls := frontendtest.Class("pkg.SomeSpec").WithSuper(tc.super)
			assert.Equal(t, tc.want, d.IsSpecClass(cls))
		})
	}
}

func TestIsFeatureMethod(t *testing.T) {
	d := spock.NewDetector()

	assert.True(t, d.IsFeatureMethod(frontendtest.Method("rejects an invalid order", "void")))
	assert.False(t, d.IsFeatureMethod(frontendtest.Method("setup", "void")))
}

func TestBlockLabelsAreSnippets(t *testing.T) {
	d := spock.NewDetector()

	labels := d.BlockLabels()
	assert.Len(t, labels, 8)
	assert.Equal(t, "given:", labels[0].Label)
	assert.Equal(t, "given: ", labels[0].InsertText)
}
