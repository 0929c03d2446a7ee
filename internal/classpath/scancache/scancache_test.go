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

package scancache_test

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/scancache"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

func countingScanner(calls *int) scancache.Scanner {
	return func(urls []string, rejected []string) ([]classpath.Symbol, error) {
		*calls++
		syms := make([]classpath.Symbol, 0, len(urls))
		for i, u := range urls {
			syms = append(syms, classpath.Symbol{
				FullyQualifiedName:   fmt.Sprintf("pkg.Class%d", i),
				PackageName:          "pkg",
				ClasspathElementPath: u,
			})
		}
		return syms, nil
	}
}

func newTestCache(calls *int) *scancache.Cache {
	fs := afero.NewMemMapFs()
	return scancache.New(countingScanner(calls),
		scancache.WithFS(fs),
		scancache.WithCacheDir("/cache"),
	)
}

func TestAcquireExactHitReusesScanAndIncrementsRefCount(t *testing.T) {
	var calls int
	c := newTestCache(&calls)
	desc := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar", "/b.jar"}}

	r1, err := c.Acquire(desc)
	require.NoError(t, err)
	r2, err := c.Acquire(desc)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second acquire must be an exact hit, not a new scan")
	assert.Same(t, r1.Result, r2.Result)
	assert.Equal(t, 2, c.RefCount(r1.Key))
}

func TestReleaseDropsEntryAtZeroRefCount(t *testing.T) {
	var calls int
	c := newTestCache(&calls)
	desc := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar"}}

	r1, err := c.Acquire(desc)
	require.NoError(t, err)
	c.Release(r1.Key)

	assert.Equal(t, 0, c.RefCount(r1.Key))
	assert.Equal(t, 0, c.Size())
}

func TestOverlapHitSharesSupersetScan(t *testing.T) {
	var calls int
	c := newTestCache(&calls)
	big := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar", "/b.jar", "/c.jar", "/d.jar"}}
	_, err := c.Acquire(big)
	require.NoError(t, err)

	// all 3 requested already present in big => ratio 1.0, clears threshold.
	small := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar", "/b.jar", "/c.jar"}}
	r2, err := c.Acquire(small)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "overlap hit must not trigger a second scan")
	assert.True(t, r2.Shared)
	assert.NotNil(t, r2.OwnPaths)
}

func TestBelowOverlapThresholdTriggersFreshScan(t *testing.T) {
	var calls int
	c := newTestCache(&calls)
	a := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar"}}
	_, err := c.Acquire(a)
	require.NoError(t, err)

	b := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/x.jar", "/y.jar"}}
	_, err = c.Acquire(b)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestStaleSoftReferenceReloadsFromDisk(t *testing.T) {
	var calls int
	c := newTestCache(&calls)
	desc := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar"}}

	r1, err := c.Acquire(desc)
	require.NoError(t, err)
	c.SimulateReclaim(r1.Key)

	r2, err := c.Acquire(desc)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "reload from disk must not re-scan")
	assert.Equal(t, r1.Result.Symbols, r2.Result.Symbols)
}

func TestDifferentRejectedPackagesProduceDifferentKeys(t *testing.T) {
	var calls int
	c := newTestCache(&calls)
	base := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar"}}
	withReject := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{"/a.jar"}, RejectedPackages: []string{"com.acme.internal."}}

	k1 := c.ComputeKey(base)
	k2 := c.ComputeKey(withReject)
	assert.NotEqual(t, k1, k2)
}

func TestHeldEntriesCapEvictsZeroRefEntriesOnly(t *testing.T) {
	var calls int
	c := newTestCache(&calls)

	var held *scancache.AcquireResult
	for i := 0; i < 7; i++ {
		desc := frontend.ClassLoaderDescriptor{VersionTag: "v1", ClasspathURLs: []string{fmt.Sprintf("/lib%d.jar", i)}}
		r, err := c.Acquire(desc)
		require.NoError(t, err)
		if i == 0 {
			held = r
			continue
		}
		c.Release(r.Key)
	}

	assert.Equal(t, 7, calls)
	// the first entry, still held (never released), must have survived eviction.
	assert.Equal(t, 1, c.RefCount(held.Key))
}

func TestMemoryEstimateScalesWithClassCount(t *testing.T) {
	small := scancache.MemoryEstimate(0)
	big := scancache.MemoryEstimate(1000)
	assert.Less(t, small, big)
}
