// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

type item struct {
	name string
	rank int
}

func newItemGraph() *Graph[item] {
	return New(
		func(a, b item) bool {
			if a.rank != b.rank {
				return a.rank < b.rank
			}
			return a.name < b.name
		},
		func(i item) string { return i.name },
	)
}

func names(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.name
	}
	return out
}

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	t.Parallel()
	g := newItemGraph()
	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestTopologicalSort_SingleNode(t *testing.T) {
	t.Parallel()
	g := newItemGraph()
	g.AddNode(item{name: "A"})
	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(names(order), []string{"A"}) {
		t.Errorf("expected [A], got %v", names(order))
	}
}

func TestTopologicalSort_LinearChain(t *testing.T) {
	t.Parallel()
	g := newItemGraph()
	// C -> B -> A, against the comparator's preference.
	a := g.AddNode(item{name: "A"})
	b := g.AddNode(item{name: "B"})
	c := g.AddNode(item{name: "C"})
	mustEdge(t, g, c, b)
	mustEdge(t, g, b, a)

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"C", "B", "A"}
	if !slices.Equal(names(order), expected) {
		t.Errorf("expected %v, got %v", expected, names(order))
	}
}

func TestTopologicalSort_TieBreakIgnoresInsertionOrder(t *testing.T) {
	t.Parallel()

	build := func(order []item) []string {
		g := newItemGraph()
		for _, it := range order {
			g.AddNode(it)
		}
		out, err := g.TopologicalSort()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return names(out)
	}

	items := []item{{"A", 1}, {"B", 0}, {"C", 1}}
	want := []string{"B", "A", "C"}
	if got := build(items); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	slices.Reverse(items)
	if got := build(items); !slices.Equal(got, want) {
		t.Errorf("reversed insertion: expected %v, got %v", want, got)
	}
}

func TestTopologicalSort_Diamond(t *testing.T) {
	t.Parallel()
	g := newItemGraph()
	a := g.AddNode(item{name: "A"})
	b := g.AddNode(item{name: "B", rank: 2})
	c := g.AddNode(item{name: "C", rank: 1})
	d := g.AddNode(item{name: "D"})
	mustEdge(t, g, a, b)
	mustEdge(t, g, a, c)
	mustEdge(t, g, b, d)
	mustEdge(t, g, c, d)

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"A", "C", "B", "D"}
	if !slices.Equal(names(order), expected) {
		t.Errorf("expected %v, got %v", expected, names(order))
	}
}

func TestTopologicalSort_ParallelEdges(t *testing.T) {
	t.Parallel()
	g := newItemGraph()
	a := g.AddNode(item{name: "A"})
	b := g.AddNode(item{name: "B"})
	mustEdge(t, g, b, a)
	mustEdge(t, g, b, a)

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(names(order), []string{"B", "A"}) {
		t.Errorf("expected [B A], got %v", names(order))
	}
}

func TestTopologicalSort_SimpleCycle(t *testing.T) {
	t.Parallel()

	for _, insertion := range [][]string{{"A", "B"}, {"B", "A"}} {
		g := newItemGraph()
		x := g.AddNode(item{name: insertion[0]})
		y := g.AddNode(item{name: insertion[1]})
		mustEdge(t, g, x, y)
		mustEdge(t, g, y, x)

		_, err := g.TopologicalSort()
		var cycleErr *CycleError
		if !errors.As(err, &cycleErr) {
			t.Fatalf("expected CycleError, got %v", err)
		}
		if !slices.Equal(cycleErr.Nodes, []string{"A", "B"}) {
			t.Errorf("expected [A B], got %v", cycleErr.Nodes)
		}
		if !errors.Is(err, ErrCycle) {
			t.Error("CycleError should unwrap to ErrCycle")
		}
		if err.Error() != "dependency cycle detected: A,B" {
			t.Errorf("unexpected message %q", err.Error())
		}
	}
}

func TestTopologicalSort_CycleDownstreamNodesReported(t *testing.T) {
	t.Parallel()
	g := newItemGraph()
	root := g.AddNode(item{name: "root"})
	a := g.AddNode(item{name: "a"})
	b := g.AddNode(item{name: "b"})
	tail := g.AddNode(item{name: "tail"})
	mustEdge(t, g, root, a)
	mustEdge(t, g, a, b)
	mustEdge(t, g, b, a)
	mustEdge(t, g, b, tail)

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if !slices.Equal(cycleErr.Nodes, []string{"a", "b", "tail"}) {
		t.Errorf("expected [a b tail], got %v", cycleErr.Nodes)
	}
}

func TestAddEdge_UnknownNode(t *testing.T) {
	t.Parallel()
	g := newItemGraph()
	a := g.AddNode(item{name: "A"})
	if err := g.AddEdge(a, NodeID(5)); err == nil {
		t.Error("expected error for unknown node")
	}
	if err := g.AddEdge(NodeID(-1), a); err == nil {
		t.Error("expected error for negative handle")
	}
}

func mustEdge(t *testing.T, g *Graph[item], from, to NodeID) {
	t.Helper()
	if err := g.AddEdge(from, to); err != nil {
		t.Fatalf("AddEdge(%d, %d): %v", from, to, err)
	}
}
