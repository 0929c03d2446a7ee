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

package signature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend/frontendtest"
	"github.com/groovy-lsp/groovy-language-server/internal/signature"
)

func TestIdenticalClassesProduceEqualSignatures(t *testing.T) {
	a := frontendtest.Class("pkg.A").
		WithSuper("pkg.Base").
		WithInterfaces("pkg.Iface").
		WithMethods(frontendtest.Method("foo", "int", "java.lang.String"))
	b := frontendtest.Class("pkg.A").
		WithSuper("pkg.Base").
		WithInterfaces("pkg.Iface").
		WithMethods(frontendtest.Method("foo", "int", "java.lang.String"))

	assert.True(t, signature.Of(a).Equal(signature.Of(b)))
}

func TestMemberChangeChangesSignature(t *testing.T) {
	before := signature.Of(frontendtest.Class("pkg.A").
		WithMethods(frontendtest.Method("foo", "int", "java.lang.String")))
	after := signature.Of(frontendtest.Class("pkg.A").
		WithMethods(frontendtest.Method("foo", "int", "int")))

	assert.False(t, before.Equal(after))
}

func TestSyntheticMembersExcluded(t *testing.T) {
	withSynthetic := frontendtest.Class("pkg.A").
		WithMethods(
			frontendtest.Method("foo", "int"),
			frontendtest.SyntheticMethod("$getStaticMetaClass", "java.lang.Object"),
		)
	withoutSynthetic := frontendtest.Class("pkg.A").
		WithMethods(frontendtest.Method("foo", "int"))

	assert.True(t, signature.Of(withSynthetic).Equal(signature.Of(withoutSynthetic)))
}

func TestOrderingIndependence(t *testing.T) {
	a := frontendtest.Class("pkg.A").
		WithInterfaces("pkg.Z", "pkg.A").
		WithMethods(frontendtest.Method("b", "void"), frontendtest.Method("a", "void"))
	b := frontendtest.Class("pkg.A").
		WithInterfaces("pkg.A", "pkg.Z").
		WithMethods(frontendtest.Method("a", "void"), frontendtest.Method("b", "void"))

	assert.True(t, signature.Of(a).Equal(signature.Of(b)))
}

func TestFieldAndPropertyChangesAreDetected(t *testing.T) {
	base := frontendtest.Class("pkg.A").WithFields(frontendtest.Field("x", "int"))
	changed := frontendtest.Class("pkg.A").WithFields(frontendtest.Field("x", "java.lang.String"))
	assert.False(t, signature.Of(base).Equal(signature.Of(changed)))

	baseProp := frontendtest.Class("pkg.A").WithProperties(frontendtest.Property("name", "java.lang.String"))
	sameProp := frontendtest.Class("pkg.A").WithProperties(frontendtest.Property("name", "java.lang.String"))
	assert.True(t, signature.Of(baseProp).Equal(signature.Of(sameProp)))
}

func TestStaticModifierIsPartOfSignature(t *testing.T) {
	instance := frontendtest.Class("pkg.A").WithMethods(frontendtest.Method("foo", "void"))
	static := frontendtest.Class("pkg.A").WithMethods(frontendtest.StaticMethod("foo", "void"))
	assert.False(t, signature.Of(instance).Equal(signature.Of(static)))
}
