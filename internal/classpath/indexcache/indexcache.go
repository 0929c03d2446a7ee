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

// Package indexcache is an LRU of compact classpath.Index projections,
// sitting above the heavier scancache.Cache so a project scope can hold
// a small, indefinitely-retained handle without pinning a full scan.
package indexcache

import (
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/classpath/scancache"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// capacity is the LRU's fixed size.
const capacity = 8

// overlapThreshold mirrors scancache's own threshold: the same 0.75
// figure is specified for this cache's overlap-hit path.
const overlapThreshold = 0.75

// AcquireResult is returned by Acquire.
type AcquireResult struct {
	Index *classpath.Index
	Key   scancache.Key
	// Shared reports an overlap hit: consumers must filter Index's
	// symbols down to OwnPaths before trusting a completion/resolution
	// result as exhaustive for their own classpath.
	Shared   bool
	OwnPaths map[string]struct{}
}

type record struct {
	index *classpath.Index
	urls  map[string]struct{}
}

// Cache is the Shared Classpath Index Cache.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[scancache.Key, *record]

	scans *scancache.Cache
}

// New constructs a Cache backed by scans, the process-wide scan cache
// that a miss here falls through to.
func New(scans *scancache.Cache) *Cache {
	l, _ := lru.New[scancache.Key, *record](capacity) // error only on capacity<=0
	return &Cache{lru: l, scans: scans}
}

// Acquire resolves an index for desc: exact hit, overlap hit, or a
// miss that projects a fresh scan and releases it immediately.
func (c *Cache) Acquire(desc frontend.ClassLoaderDescriptor) (*AcquireResult, error) {
	c.mu.Lock()

	key := c.scans.ComputeKey(desc)

	// 1. Exact hit.
	if rec, ok := c.lru.Get(key); ok {
		c.mu.Unlock()
		return &AcquireResult{Index: rec.index, Key: key}, nil
	}

	// 2. Overlap hit.
	requested := toSet(desc.ClasspathURLs)
	if bestKey, bestRec, ok := c.bestOverlap(requested); ok {
		ownPaths := make(map[string]struct{}, len(desc.ClasspathURLs))
		for _, u := range desc.ClasspathURLs {
			ownPaths[filepath.Clean(u)] = struct{}{}
		}
		c.mu.Unlock()
		return &AcquireResult{Index: bestRec.index, Key: bestKey, Shared: true, OwnPaths: ownPaths}, nil
	}
	c.mu.Unlock()

	// 3. Miss: acquire a heavy scan, project it, release the scan
	// immediately; indices outlive their backing scans.
	acquired, err := c.scans.Acquire(desc)
	if err != nil {
		return nil, err
	}
	idx := classpath.NewIndex(acquired.Result.Symbols)
	c.scans.Release(acquired.Key)

	c.mu.Lock()
	c.lru.Add(key, &record{index: idx, urls: requested})
	c.mu.Unlock()

	if acquired.Shared {
		return &AcquireResult{Index: idx, Key: key, Shared: true, OwnPaths: acquired.OwnPaths}, nil
	}
	return &AcquireResult{Index: idx, Key: key}, nil
}

func (c *Cache) bestOverlap(requested map[string]struct{}) (scancache.Key, *record, bool) {
	if len(requested) == 0 {
		return "", nil, false
	}
	var bestKey scancache.Key
	var best *record
	bestRatio := 0.0
	for _, key := range c.lru.Keys() {
		rec, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		overlap := 0
		for u := range requested {
			if _, ok := rec.urls[u]; ok {
				overlap++
			}
		}
		ratio := float64(overlap) / float64(len(requested))
		if ratio >= overlapThreshold && ratio > bestRatio {
			bestKey, best, bestRatio = key, rec, ratio
		}
	}
	if best == nil {
		return "", nil, false
	}
	return bestKey, best, true
}

// Len reports the number of indices currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge evicts every cached index.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

func toSet(urls []string) map[string]struct{} {
	out := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		out[u] = struct{}{}
	}
	return out
}
