// SPDX-License-Identifier: MPL-2.0

// Package dag provides a directed graph with arena node storage and a
// deterministic topological sort. The resolver uses it to order packs after
// their dependencies.
package dag

import (
	"container/heap"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCycle is the sentinel wrapped by CycleError.
var ErrCycle = errors.New("dependency cycle detected")

type (
	// NodeID is a handle into a Graph's node arena.
	NodeID int

	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Nodes names every node left with a positive in-degree, sorted ascending.
		Nodes []string
	}

	// Graph is a directed graph whose nodes live in a slice and are addressed
	// by NodeID. An edge from A to B means A must come before B.
	Graph[N any] struct {
		nodes []node[N]
		less  func(a, b N) bool
		name  func(N) string
	}

	node[N any] struct {
		value N
		out   []NodeID
	}

	// readySet is a min-heap of node handles ordered by the graph's less.
	readySet[N any] struct {
		ids []NodeID
		g   *Graph[N]
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(e.Nodes, ","))
}

// Unwrap returns ErrCycle for errors.Is.
func (e *CycleError) Unwrap() error { return ErrCycle }

// New creates an empty Graph. less picks among nodes that are ready at the
// same time; name labels nodes in CycleError.
func New[N any](less func(a, b N) bool, name func(N) string) *Graph[N] {
	return &Graph[N]{less: less, name: name}
}

// AddNode stores v and returns its handle.
func (g *Graph[N]) AddNode(v N) NodeID {
	g.nodes = append(g.nodes, node[N]{value: v})
	return NodeID(len(g.nodes) - 1)
}

// AddEdge adds a directed edge from -> to, meaning "from" must come before "to".
// Parallel edges are allowed and each counts toward the in-degree of to.
func (g *Graph[N]) AddEdge(from, to NodeID) error {
	if !g.valid(from) || !g.valid(to) {
		return fmt.Errorf("edge %d -> %d references an unknown node", from, to)
	}
	g.nodes[from].out = append(g.nodes[from].out, to)
	return nil
}

// Node returns the value stored at id.
func (g *Graph[N]) Node(id NodeID) N {
	return g.nodes[id].value
}

// Len returns the number of nodes.
func (g *Graph[N]) Len() int {
	return len(g.nodes)
}

// TopologicalSort returns all node values using Kahn's algorithm. Whenever
// several nodes are ready, the smallest by less is emitted first, so the
// result depends only on the graph and less, never on insertion order.
// Returns CycleError if the graph contains a cycle; no partial order is returned.
func (g *Graph[N]) TopologicalSort() ([]N, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make([]int, len(g.nodes))
	for _, n := range g.nodes {
		for _, to := range n.out {
			inDegree[to]++
		}
	}

	ready := &readySet[N]{g: g}
	for id := range g.nodes {
		if inDegree[id] == 0 {
			ready.ids = append(ready.ids, NodeID(id))
		}
	}
	heap.Init(ready)

	result := make([]N, 0, len(g.nodes))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(NodeID)
		result = append(result, g.nodes[id].value)
		for _, to := range g.nodes[id].out {
			inDegree[to]--
			if inDegree[to] == 0 {
				heap.Push(ready, to)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var stuck []string
		for id, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, g.name(g.nodes[id].value))
			}
		}
		slices.Sort(stuck)
		return nil, &CycleError{Nodes: stuck}
	}
	return result, nil
}

func (g *Graph[N]) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

func (r *readySet[N]) Len() int { return len(r.ids) }

func (r *readySet[N]) Less(i, j int) bool {
	return r.g.less(r.g.nodes[r.ids[i]].value, r.g.nodes[r.ids[j]].value)
}

func (r *readySet[N]) Swap(i, j int) { r.ids[i], r.ids[j] = r.ids[j], r.ids[i] }

func (r *readySet[N]) Push(x any) { r.ids = append(r.ids, x.(NodeID)) }

func (r *readySet[N]) Pop() any {
	last := r.ids[len(r.ids)-1]
	r.ids = r.ids[:len(r.ids)-1]
	return last
}
