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

// Package scancache implements the process-wide, reference-counted,
// memory-bounded, disk-persistent cache of full classpath scans. It is
// a process-wide singleton by
// construction intent, but this package never reaches for a
// package-level global: callers construct and inject a *Cache
// explicitly (e.g. from cmd/ or a test), never through a
// getInstance()-style accessor.
package scancache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/crossplane/crossplane-runtime/pkg/logging"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

const (
	// maxHeldEntries is the cap on simultaneously-held (any refcount)
	// scan entries before a fresh scan starts evicting zero-ref entries.
	maxHeldEntries = 6
	// overlapThreshold is the minimum fraction of a requester's URLs that
	// must already be present in a cached entry's URL set for that entry
	// to be handed out as a shared, overlap-filtered scan.
	overlapThreshold = 0.75
	// minHeapBudgetBytes and heapBudgetFraction together define the
	// over-budget threshold used only for a log warning, never to refuse
	// a scan: max(256MiB, 35% of max heap).
	minHeapBudgetBytes  = 256 * 1024 * 1024
	heapBudgetFraction  = 0.35
	perScanBaseBytes    = 2 * 1024 * 1024
	perClassBytes       = 6 * 1024

	errScan      = "failed to perform classpath scan"
	errPersist   = "failed to persist classpath scan to disk"
	errDiskLoad  = "failed to deserialize cached classpath scan from disk"
)

// Key is the classpath cache key: SHA-256(version-tag ‖ sorted
// classpath URLs ‖ sorted rejected-package filter), hex-encoded.
type Key string

// Scanner performs the actual (out-of-scope, external) classpath scan
// for the given merged set of classpath URLs and reject-package
// prefixes, producing the discovered symbols.
type Scanner func(urls []string, rejectedPackages []string) ([]classpath.Symbol, error)

// Result is one cached classpath scan.
type Result struct {
	Symbols []classpath.Symbol `json:"symbols"`
	URLs    []string           `json:"urls"`
}

// entry is one cached scan: a
// soft-reclaimable scan result, the classpath key, the frozen URL set,
// and a reference count. result is nilled out by SimulateReclaim to
// model the host runtime's soft-reference reclamation in a systems
// language that has no such mechanism to observe directly.
type entry struct {
	key      Key
	result   *Result
	urls     map[string]struct{}
	refCount int
	lastUsed time.Time
}

// AcquireResult is returned by Acquire.
type AcquireResult struct {
	Result *Result
	Key    Key
	// Shared reports whether this result came from an overlap hit
	// (a superset scan) rather than an exact match for the requester.
	Shared bool
	// OwnPaths is non-nil only when Shared is true: the canonical
	// filesystem paths the requester should post-filter symbols to.
	OwnPaths map[string]struct{}
}

// Cache is the Shared Classpath Scan Cache.
type Cache struct {
	mu sync.Mutex

	fs      afero.Fs
	cacheDir string
	scan    Scanner
	log     logging.Logger

	baseRejectedPackages []string
	maxHeapBytes         int64

	entries map[Key]*entry
}

// Option configures a new Cache.
type Option func(*Cache)

// WithFS overrides the default OS filesystem (afero.NewOsFs()).
func WithFS(fs afero.Fs) Option {
	return func(c *Cache) { c.fs = fs }
}

// WithCacheDir overrides the default `<home>/.<product>/cache/classgraph`
// persistence directory.
func WithCacheDir(dir string) Option {
	return func(c *Cache) { c.cacheDir = dir }
}

// WithLogger overrides the default no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithBaseRejectedPackages overrides the hardcoded base set of
// internal-JDK/internal-runtime package prefixes merged into every key
// and every scan.
func WithBaseRejectedPackages(prefixes []string) Option {
	return func(c *Cache) { c.baseRejectedPackages = prefixes }
}

// WithMaxHeapBytes overrides the assumed JVM max heap used for the
// heap-budget log-only check.
func WithMaxHeapBytes(n int64) Option {
	return func(c *Cache) { c.maxHeapBytes = n }
}

// defaultBaseRejectedPackages are the hardcoded internal-JDK and
// internal-runtime prefixes merged with workspace/configuration's
// memory.rejectedPackages.
var defaultBaseRejectedPackages = []string{"jdk.internal.", "sun.", "com.sun.proxy."}

// New constructs a Cache. scan performs the actual classpath scan and is
// supplied by the caller (compiler-frontend integration), since the scan
// itself belongs to the compiler-frontend side of the boundary.
func New(scan Scanner, opts ...Option) *Cache {
	home, _ := os.UserHomeDir()
	c := &Cache{
		fs:                   afero.NewOsFs(),
		cacheDir:             filepath.Join(home, ".groovy-language-server", "cache", "classgraph"),
		scan:                 scan,
		log:                  logging.NewNopLogger(),
		baseRejectedPackages: defaultBaseRejectedPackages,
		maxHeapBytes:         4 * 1024 * 1024 * 1024, // 4GiB default assumption
		entries:              make(map[Key]*entry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ComputeKey computes the classpath cache key for desc, merging desc's
// RejectedPackages with the cache's hardcoded base set.
func (c *Cache) ComputeKey(desc frontend.ClassLoaderDescriptor) Key {
	return computeKey(desc.VersionTag, desc.ClasspathURLs, c.mergedRejects(desc.RejectedPackages))
}

func (c *Cache) mergedRejects(extra []string) []string {
	out := make([]string, 0, len(c.baseRejectedPackages)+len(extra))
	out = append(out, c.baseRejectedPackages...)
	out = append(out, extra...)
	return out
}

func computeKey(versionTag string, urls, rejects []string) Key {
	sortedURLs := sortedCopy(urls)
	sortedRejects := sortedCopy(rejects)

	h := sha256.New()
	h.Write([]byte(versionTag))
	h.Write([]byte{0})
	for _, u := range sortedURLs {
		h.Write([]byte(u))
		h.Write([]byte{0})
	}
	h.Write([]byte{0})
	for _, r := range sortedRejects {
		h.Write([]byte(r))
		h.Write([]byte{0})
	}
	return Key(hex.EncodeToString(h.Sum(nil)))
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

// Acquire resolves a scan for desc (exact hit, stale-entry reload,
// overlap hit, disk hit, then fresh scan), serialised on the cache's
// process-wide lock.
func (c *Cache) Acquire(desc frontend.ClassLoaderDescriptor) (*AcquireResult, error) { //nolint:gocyclo
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.ComputeKey(desc)
	rejects := c.mergedRejects(desc.RejectedPackages)
	requested := toSet(desc.ClasspathURLs)

	// 1. Exact hit.
	if e, ok := c.entries[key]; ok && e.result != nil {
		e.refCount++
		e.lastUsed = time.Now()
		return &AcquireResult{Result: e.result, Key: key}, nil
	}

	// 2. Stale soft reference: entry exists but its result was reclaimed.
	if e, ok := c.entries[key]; ok && e.result == nil {
		if loaded, err := c.loadFromDisk(key); err == nil {
			e.result = loaded
			e.refCount++
			e.lastUsed = time.Now()
			return &AcquireResult{Result: loaded, Key: key}, nil
		}
		delete(c.entries, key)
		// fall through to overlap/disk/fresh-scan below.
	}

	// 3. Overlap hit.
	if best, ok := c.bestOverlap(requested); ok {
		best.refCount++
		best.lastUsed = time.Now()
		ownPaths := make(map[string]struct{}, len(desc.ClasspathURLs))
		for _, u := range desc.ClasspathURLs {
			ownPaths[canonicalPath(u)] = struct{}{}
		}
		return &AcquireResult{Result: best.result, Key: best.key, Shared: true, OwnPaths: ownPaths}, nil
	}

	// 4. Disk hit.
	if loaded, err := c.loadFromDisk(key); err == nil {
		c.entries[key] = &entry{key: key, result: loaded, urls: requested, refCount: 1, lastUsed: time.Now()}
		return &AcquireResult{Result: loaded, Key: key}, nil
	}

	// 5. Fresh scan.
	c.evictZeroRefIfAtCap()
	c.logHeapBudgetIfOver()

	symbols, err := c.scan(desc.ClasspathURLs, rejects)
	if err != nil {
		return nil, errors.Wrap(err, errScan)
	}
	result := &Result{Symbols: symbols, URLs: append([]string(nil), desc.ClasspathURLs...)}

	if err := c.persist(key, result); err != nil {
		c.log.Debug(errPersist, "error", err, "key", string(key))
	}

	c.entries[key] = &entry{key: key, result: result, urls: requested, refCount: 1, lastUsed: time.Now()}
	return &AcquireResult{Result: result, Key: key}, nil
}

// bestOverlap returns the cached entry with the highest overlap ratio
// against requested, if any entry clears overlapThreshold.
func (c *Cache) bestOverlap(requested map[string]struct{}) (*entry, bool) {
	if len(requested) == 0 {
		return nil, false
	}
	var best *entry
	bestRatio := 0.0
	for _, e := range c.entries {
		if e.result == nil {
			continue
		}
		overlap := 0
		for u := range requested {
			if _, ok := e.urls[u]; ok {
				overlap++
			}
		}
		ratio := float64(overlap) / float64(len(requested))
		if ratio >= overlapThreshold && ratio > bestRatio {
			best = e
			bestRatio = ratio
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// Release decrements the refcount for the scan acquired under key. On
// reaching zero, the entry is evicted; no separate scan handle exists to
// close. Releasing an
// untracked key is a no-op (there is nothing to close defensively against
// in this in-memory model; the on-disk deletion path is
// likewise a no-op on a missing entry).
func (c *Cache) Release(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	e.refCount--
	if e.refCount <= 0 {
		delete(c.entries, key)
	}
}

// evictZeroRefIfAtCap enforces the held-entries cap of 6 by evicting
// zero-ref entries. If all slots are pinned, the new scan still
// proceeds; a warning is logged rather than refusing the scan.
func (c *Cache) evictZeroRefIfAtCap() {
	if len(c.entries) < maxHeldEntries {
		return
	}
	for k, e := range c.entries {
		if e.refCount <= 0 {
			delete(c.entries, k)
			if len(c.entries) < maxHeldEntries {
				return
			}
		}
	}
	if len(c.entries) >= maxHeldEntries {
		c.log.Info("classpath scan cache at capacity with no evictable entries; proceeding anyway", "cap", maxHeldEntries)
	}
}

// logHeapBudgetIfOver logs (never refuses) when the estimated memory of
// every currently-held scan would exceed max(256MiB, 35%*maxHeap).
func (c *Cache) logHeapBudgetIfOver() {
	budget := int64(minHeapBudgetBytes)
	if fromHeap := int64(float64(c.maxHeapBytes) * heapBudgetFraction); fromHeap > budget {
		budget = fromHeap
	}
	var total int64
	for _, e := range c.entries {
		if e.result != nil {
			total += MemoryEstimate(len(e.result.Symbols))
		}
	}
	if total >= budget {
		c.log.Info("classpath scan cache over heap budget", "estimatedBytes", total, "budgetBytes", budget)
	}
}

// MemoryEstimate approximates the in-memory size of a cached scan with
// classCount classes: 2MiB + 6KiB per class. Used for admission logging
// only, never for user-visible reports.
func MemoryEstimate(classCount int) int64 {
	return perScanBaseBytes + int64(classCount)*perClassBytes
}

// SimulateReclaim models the host runtime's soft-reference reclamation
// of a held scan handle: the entry's metadata (key, urls, refcount)
// survives, but its result is cleared, forcing the next Acquire for this
// key down the disk-reload-or-drop path. Exposed for tests; a real
// garbage-collected host would do this implicitly.
func (c *Cache) SimulateReclaim(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.result = nil
	}
}

// Size returns the number of entries currently tracked (any refcount).
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RefCount returns the current reference count for key, or 0 if untracked.
func (c *Cache) RefCount(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.refCount
	}
	return 0
}

// Stats is a point-in-time monitoring snapshot for one entry.
type Stats struct {
	RefCount        int
	EstimatedBytes  int64
	Held            bool
}

// StatsSnapshot returns a monitoring snapshot of every tracked entry.
func (c *Cache) StatsSnapshot() map[Key]Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Key]Stats, len(c.entries))
	for k, e := range c.entries {
		var bytes int64
		if e.result != nil {
			bytes = MemoryEstimate(len(e.result.Symbols))
		}
		out[k] = Stats{RefCount: e.refCount, EstimatedBytes: bytes, Held: e.result != nil}
	}
	return out
}

// Clear evicts every entry, closing nothing further (in-memory model).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*entry)
}

func (c *Cache) diskPath(key Key) string {
	return filepath.Join(c.cacheDir, string(key)+".json")
}

// persist writes result to disk atomically: write-tmp-then-rename.
func (c *Cache) persist(key Key, result *Result) error {
	if err := c.fs.MkdirAll(c.cacheDir, 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	tmp := c.diskPath(key) + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, b, 0o644); err != nil {
		return err
	}
	return c.fs.Rename(tmp, c.diskPath(key))
}

// loadFromDisk deserialises a cached scan. The cache is self-healing: a
// deserialisation failure deletes the file and the caller falls through
// to a fresh scan.
func (c *Cache) loadFromDisk(key Key) (*Result, error) {
	path := c.diskPath(key)
	b, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, err
	}
	var result Result
	if err := json.Unmarshal(b, &result); err != nil {
		_ = c.fs.Remove(path)
		return nil, errors.Wrap(err, errDiskLoad)
	}
	return &result, nil
}

func toSet(urls []string) map[string]struct{} {
	out := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		out[u] = struct{}{}
	}
	return out
}

func canonicalPath(url string) string {
	return filepath.Clean(url)
}
