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

package filetracker_test

import (
	"testing"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovy-lsp/groovy-language-server/internal/filetracker"
)

func TestOpenThenContents(t *testing.T) {
	tr := filetracker.New()
	u := span.URI("file:///A.groovy")
	tr.Open(u, "class A {}")

	got, ok := tr.Contents(u)
	require.True(t, ok)
	assert.Equal(t, "class A {}", got)
	v, ok := tr.Version(u)
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestChangeWithRangeInjectsText(t *testing.T) {
	tr := filetracker.New()
	u := span.URI("file:///A.groovy")
	tr.Open(u, "class A {}")

	err := tr.Change(u, []protocol.TextDocumentContentChangeEvent{{
		Range: &protocol.Range{
			Start: protocol.Position{Line: 0, Character: 6},
			End:   protocol.Position{Line: 0, Character: 7},
		},
		Text: "Renamed",
	}})
	require.NoError(t, err)

	got, _ := tr.Contents(u)
	assert.Equal(t, "class Renamed {}", got)
	v, _ := tr.Version(u)
	assert.Equal(t, 2, v)
}

func TestChangeWithNilRangeReplacesWholesale(t *testing.T) {
	tr := filetracker.New()
	u := span.URI("file:///A.groovy")
	tr.Open(u, "class A {}")

	err := tr.Change(u, []protocol.TextDocumentContentChangeEvent{{Text: "class B {}"}})
	require.NoError(t, err)

	got, _ := tr.Contents(u)
	assert.Equal(t, "class B {}", got)
}

func TestChangeOnUntrackedURIErrors(t *testing.T) {
	tr := filetracker.New()
	u := span.URI("file:///Missing.groovy")
	err := tr.Change(u, []protocol.TextDocumentContentChangeEvent{{Text: "x"}})
	assert.Error(t, err)
}

func TestChangeWithNoEventsErrors(t *testing.T) {
	tr := filetracker.New()
	u := span.URI("file:///A.groovy")
	tr.Open(u, "class A {}")
	err := tr.Change(u, nil)
	assert.Error(t, err)
}

func TestCloseRetainsContentsUntilRemove(t *testing.T) {
	tr := filetracker.New()
	u := span.URI("file:///A.groovy")
	tr.Open(u, "class A {}")

	tr.Close(u)
	got, ok := tr.Contents(u)
	assert.True(t, ok)
	assert.Equal(t, "class A {}", got)
	assert.True(t, tr.IsOpen(u)) // Close does not remove tracking; still findable

	tr.Remove(u)
	_, ok = tr.Contents(u)
	assert.False(t, ok)
}

func TestForceChangedBumpsVersionOnly(t *testing.T) {
	tr := filetracker.New()
	u := span.URI("file:///A.groovy")
	tr.Open(u, "class A {}")
	v1, _ := tr.Version(u)

	tr.ForceChanged(u)

	v2, _ := tr.Version(u)
	assert.Equal(t, v1+1, v2)
	got, _ := tr.Contents(u)
	assert.Equal(t, "class A {}", got)
}

func TestOpenURIsListsAllTracked(t *testing.T) {
	tr := filetracker.New()
	tr.Open(span.URI("file:///A.groovy"), "a")
	tr.Open(span.URI("file:///B.groovy"), "b")
	assert.Len(t, tr.OpenURIs(), 2)
}
