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

package indexcache_test

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/indexcache"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/scancache"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

func newCaches(t *testing.T, calls *int) (*scancache.Cache, *indexcache.Cache) {
	t.Helper()
	scanner := func(urls []string, rejected []string) ([]classpath.Symbol, error) {
		*calls++
		syms := make([]classpath.Symbol, 0, len(urls))
		for i, u := range urls {
			syms = append(syms, classpath.Symbol{FullyQualifiedName: fmt.Sprintf("pkg.C%d", i), PackageName: "pkg", ClasspathElementPath: u})
		}
		return syms, nil
	}
	scans := scancache.New(scanner, scancache.WithFS(afero.NewMemMapFs()), scancache.WithCacheDir("/cache"))
	return scans, indexcache.New(scans)
}

func TestAcquireMissProjectsAndReleasesScan(t *testing.T) {
	var calls int
	scans, idxs := newCaches(t, &calls)
	desc := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar", "/b.jar"}}

	r, err := idxs.Acquire(desc)
	require.NoError(t, err)
	assert.Len(t, r.Index.AllSymbols(), 2)
	assert.Equal(t, 0, scans.RefCount(r.Key), "scan must be released immediately after projection")
	assert.Equal(t, 1, calls)
}

func TestAcquireExactHitDoesNotRescan(t *testing.T) {
	var calls int
	_, idxs := newCaches(t, &calls)
	desc := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar"}}

	_, err := idxs.Acquire(desc)
	require.NoError(t, err)
	_, err = idxs.Acquire(desc)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, idxs.Len())
}

func TestAcquireOverlapHitReturnsSharedIndex(t *testing.T) {
	var calls int
	_, idxs := newCaches(t, &calls)
	big := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar", "/b.jar", "/c.jar", "/d.jar"}}
	_, err := idxs.Acquire(big)
	require.NoError(t, err)

	small := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar", "/b.jar", "/c.jar"}}
	r, err := idxs.Acquire(small)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.True(t, r.Shared)
}

func TestPurgeEmptiesCache(t *testing.T) {
	var calls int
	_, idxs := newCaches(t, &calls)
	desc := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar"}}
	_, err := idxs.Acquire(desc)
	require.NoError(t, err)

	idxs.Purge()
	assert.Equal(t, 0, idxs.Len())
}
