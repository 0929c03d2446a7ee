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

// Package depgraph maintains the bidirectional file-to-file dependency
// graph used to decide which files must be recompiled when a source
// file's public API changes.
package depgraph

import (
	"sync"

	"github.com/golang/tools/span"
)

// Graph is a thread-safe bidirectional dependency graph between source
// URIs. No self-edges are ever recorded: a file is never its own
// dependency.
type Graph struct {
	mu sync.RWMutex

	// forward maps a file to the set of files it depends on.
	forward map[span.URI]map[span.URI]struct{}
	// reverse maps a file to the set of files that depend on it.
	reverse map[span.URI]map[span.URI]struct{}
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		forward: make(map[span.URI]map[span.URI]struct{}),
		reverse: make(map[span.URI]map[span.URI]struct{}),
	}
}

// UpdateDependencies atomically replaces the forward edge set for file
// with newDeps, synchronizing the reverse index by diffing the old set
// against the new one. Supplying an empty newDeps fully removes file's
// forward entry. Self-edges are dropped.
func (g *Graph) UpdateDependencies(file span.URI, newDeps map[span.URI]struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()

	old := g.forward[file]

	clean := make(map[span.URI]struct{}, len(newDeps))
	for d := range newDeps {
		if d == file {
			continue
		}
		clean[d] = struct{}{}
	}

	// drop reverse edges for dependencies that no longer apply.
	for d := range old {
		if _, still := clean[d]; !still {
			g.removeReverseEdge(d, file)
		}
	}
	// add reverse edges for newly introduced dependencies.
	for d := range clean {
		if _, already := old[d]; !already {
			g.addReverseEdge(d, file)
		}
	}

	if len(clean) == 0 {
		delete(g.forward, file)
		return
	}
	g.forward[file] = clean
}

func (g *Graph) addReverseEdge(dep, dependent span.URI) {
	set, ok := g.reverse[dep]
	if !ok {
		set = make(map[span.URI]struct{})
		g.reverse[dep] = set
	}
	set[dependent] = struct{}{}
}

func (g *Graph) removeReverseEdge(dep, dependent span.URI) {
	set, ok := g.reverse[dep]
	if !ok {
		return
	}
	delete(set, dependent)
	if len(set) == 0 {
		delete(g.reverse, dep)
	}
}

// DirectDependencies returns the set of files file directly depends on.
func (g *Graph) DirectDependencies(file span.URI) []span.URI {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return keys(g.forward[file])
}

// DirectDependents returns the set of files that directly depend on file.
func (g *Graph) DirectDependents(file span.URI) []span.URI {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return keys(g.reverse[file])
}

// TransitiveDependents performs a BFS over the reverse edges starting
// from every file in changed, returning every file reachable from that
// set, excluding the files in changed itself. It always terminates, even
// on a fully-connected graph, because visited files are never revisited.
func (g *Graph) TransitiveDependents(changed map[span.URI]struct{}) []span.URI {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[span.URI]struct{}, len(changed))
	for f := range changed {
		visited[f] = struct{}{}
	}

	queue := keys(changed)
	result := make([]span.URI, 0)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for dependent := range g.reverse[cur] {
			if _, seen := visited[dependent]; seen {
				continue
			}
			visited[dependent] = struct{}{}
			result = append(result, dependent)
			queue = append(queue, dependent)
		}
	}
	return result
}

// RemoveFile deletes file from the forward map and scrubs every reverse
// entry that pointed to it, including files that only ever appeared as a
// dependency (never as a dependent).
func (g *Graph) RemoveFile(file span.URI) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for d := range g.forward[file] {
		g.removeReverseEdge(d, file)
	}
	delete(g.forward, file)

	for dependent := range g.reverse[file] {
		if deps, ok := g.forward[dependent]; ok {
			delete(deps, file)
			if len(deps) == 0 {
				delete(g.forward, dependent)
			}
		}
	}
	delete(g.reverse, file)
}

// Clear removes every edge from the graph.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.forward = make(map[span.URI]map[span.URI]struct{})
	g.reverse = make(map[span.URI]map[span.URI]struct{})
}

// Size returns the number of files with at least one forward edge.
func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.forward)
}

// IsEmpty reports whether the graph has no forward edges.
func (g *Graph) IsEmpty() bool {
	return g.Size() == 0
}

func keys(m map[span.URI]struct{}) []span.URI {
	out := make([]span.URI, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
