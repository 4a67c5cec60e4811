package graph

import "testing"

func TestAddEdgeAndNeighbors(t *testing.T) {
	g := New()
	g.AddNode(1, 10)
	g.AddNode(2, 20)
	g.AddEdge(1, 2, 99)

	if got := g.NeighborsDirected(1, Outgoing); len(got) != 1 || got[0] != 2 {
		t.Fatalf("outgoing neighbors of 1 = %v, want [2]", got)
	}
	if got := g.NeighborsDirected(2, Incoming); len(got) != 1 || got[0] != 1 {
		t.Fatalf("incoming neighbors of 2 = %v, want [1]", got)
	}
}

func TestRemoveNodeClearsEdges(t *testing.T) {
	g := New()
	g.AddNode(1, 0)
	g.AddNode(2, 0)
	g.AddEdge(1, 2, 5)
	g.RemoveNode(2)

	if g.HasNode(2) {
		t.Fatalf("node 2 still present after RemoveNode")
	}
	if got := g.NeighborsDirected(1, Outgoing); len(got) != 0 {
		t.Fatalf("node 1 still has outgoing edges: %v", got)
	}
}

func TestSCCsFindsSimpleCycle(t *testing.T) {
	g := New()
	for _, id := range []NodeID{1, 2, 3} {
		g.AddNode(id, 1)
	}
	g.AddEdge(1, 2, 1)
	g.AddEdge(2, 1, 1) // back-edge, forms a 2-node cycle
	g.AddEdge(2, 3, 1) // 3 sits outside the cycle

	groups := g.SCCs()
	var sawCycle, sawSingleton bool
	for _, grp := range groups {
		if len(grp) == 2 && grp[0] == 1 && grp[1] == 2 {
			sawCycle = true
		}
		if len(grp) == 1 && grp[0] == 3 {
			sawSingleton = true
		}
	}
	if !sawCycle || !sawSingleton {
		t.Fatalf("SCCs() = %v, want a {1,2} cycle and a {3} singleton", groups)
	}
}

func TestLongestPathLinearChain(t *testing.T) {
	g := New()
	g.AddNode(1, 2)
	g.AddNode(2, 3)
	g.AddNode(3, 5)
	g.AddEdge(1, 2, 0)
	g.AddEdge(2, 3, 0)

	best, err := g.LongestPath()
	if err != nil {
		t.Fatalf("LongestPath() error: %v", err)
	}
	if best[1] != 10 {
		t.Fatalf("best[1] = %d, want 10 (2+3+5)", best[1])
	}
}

func TestLongestPathDetectsCycle(t *testing.T) {
	g := New()
	g.AddNode(1, 1)
	g.AddNode(2, 1)
	g.AddEdge(1, 2, 0)
	g.AddEdge(2, 1, 0)

	if _, err := g.LongestPath(); err != ErrCycleIrreducible {
		t.Fatalf("LongestPath() error = %v, want ErrCycleIrreducible", err)
	}
}

func TestResolveCyclesMultiExitIsIrreducible(t *testing.T) {
	// header(2) <-> body(4), but the loop has two distinct exits out to
	// the rest of the function: header -> exitA and body -> exitB.
	g := New()
	g.AddNode(0x100, 2) // header
	g.AddNode(0x108, 4) // body
	g.AddNode(0x200, 1) // exitA, reached only from header
	g.AddNode(0x210, 1) // exitB, reached only from body
	g.AddEdge(0x100, 0x108, 4)
	g.AddEdge(0x108, 0x100, 2)
	g.AddEdge(0x100, 0x200, 1)
	g.AddEdge(0x108, 0x210, 1)

	weight := func(id NodeID) uint32 { return g.Weight(id) }
	condensed := Condense(g, weight)

	entryLatency := map[NodeID]uint32{}
	if err := ResolveCycles(g, condensed, entryLatency, weight); err != ErrCycleIrreducible {
		t.Fatalf("ResolveCycles() error = %v, want ErrCycleIrreducible", err)
	}
}

func TestCondenseSimpleLoop(t *testing.T) {
	// header(2) <-> body(4), header -> exit(1)
	g := New()
	g.AddNode(0x100, 2) // header
	g.AddNode(0x108, 4) // body
	g.AddNode(0x200, 1) // exit successor
	g.AddEdge(0x100, 0x108, 4)
	g.AddEdge(0x108, 0x100, 2)
	g.AddEdge(0x100, 0x200, 1)

	weight := func(id NodeID) uint32 { return g.Weight(id) }
	condensed := Condense(g, weight)

	var cyclic Group
	for _, grp := range condensed.Groups() {
		if len(grp) == 2 {
			cyclic = grp
		}
	}
	if cyclic == nil {
		t.Fatalf("expected a 2-node cyclic group among %v", condensed.Groups())
	}

	entryLatency := map[NodeID]uint32{}
	if err := ResolveCycles(g, condensed, entryLatency, weight); err != nil {
		t.Fatalf("ResolveCycles() error: %v", err)
	}

	if got := entryLatency[cyclic.First()]; got != 6 {
		t.Fatalf("folded cycle latency = %d, want 6 (header=2 + body=4)", got)
	}
}
