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

package gls

import (
	"sync"

	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/providers"
)

// DecompiledRegistry holds the synthetic source text produced for
// external classes that have no on-disk location. Definition and
// type-definition fallbacks populate it; the decompiledSource request
// reads from it. Entries live for the process lifetime; decompiled
// text is small and stable for a given classpath.
type DecompiledRegistry struct {
	mu   sync.Mutex
	docs map[span.URI]string
}

// NewDecompiledRegistry constructs an empty registry.
func NewDecompiledRegistry() *DecompiledRegistry {
	return &DecompiledRegistry{docs: make(map[span.URI]string)}
}

// Put stores text under uri, replacing any previous entry.
func (r *DecompiledRegistry) Put(uri span.URI, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[uri] = text
}

// Get returns the stored text for uri.
func (r *DecompiledRegistry) Get(uri span.URI) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.docs[uri]
	return t, ok
}

// RecordingDecompiler wraps a providers.Decompiler so that every
// successful decompile is also registered under its virtual URI, making
// the text servable to the client afterwards.
type RecordingDecompiler struct {
	Inner    providers.Decompiler
	Registry *DecompiledRegistry
}

var _ providers.Decompiler = (*RecordingDecompiler)(nil)

// Decompile delegates to Inner and records the result.
func (d *RecordingDecompiler) Decompile(fqn string) (string, frontend.Range, bool) {
	text, declRange, ok := d.Inner.Decompile(fqn)
	if !ok {
		return "", frontend.Range{}, false
	}
	d.Registry.Put(providers.DecompiledURI(fqn), text)
	return text, declRange, true
}
