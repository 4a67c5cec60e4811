package graph

import (
	"errors"
	"sort"
)

// ErrCycleIrreducible is returned by LongestPath when g still contains a
// cycle after the Cycle Resolver's back-edge removal — SPEC_FULL.md §8.1's
// resolution of the "what happens to a loop with more than one exit block"
// open question: such a loop cannot be reduced to a DAG by this resolver
// and is reported as an analysis error rather than silently mis-costed.
var ErrCycleIrreducible = errors.New("graph: cycle could not be reduced to a DAG")

// TopoSort returns g's nodes in topological order (every edge points
// forward), breaking ties among simultaneously-ready nodes by ascending
// leader address (spec.md §4.7: "block iteration follows leader-address
// ordering"). It returns ErrCycleIrreducible if g is not acyclic.
func (g *MappedGraph) TopoSort() ([]NodeID, error) {
	indeg := map[NodeID]int{}
	for _, id := range g.Nodes() {
		indeg[id] = 0
	}
	for id := range g.out {
		for succ := range g.out[id] {
			indeg[succ]++
		}
	}

	var ready []NodeID
	for id, d := range indeg {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	var order []NodeID
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		var freed []NodeID
		for _, succ := range g.NeighborsDirected(n, Outgoing) {
			indeg[succ]--
			if indeg[succ] == 0 {
				freed = append(freed, succ)
			}
		}
		sort.Slice(freed, func(i, j int) bool { return freed[i] < freed[j] })
		ready = append(ready, freed...)
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
	}

	if len(order) != len(g.out) {
		return nil, ErrCycleIrreducible
	}
	return order, nil
}

// LongestPathEdgeWeighted computes, for every node, the best cumulative sum
// of *edge* weights along any forward path starting at that node (the node's
// own weight is not included). This is the traversal spec.md §4.8's WCET
// Driver uses over the final condensed graph: a cyclic group's folded cost
// lives on its incoming edges (step 8 of the Cycle Resolver), not on the
// node itself, so walking forward from an entry group must accumulate edge
// weights rather than node weights. The same traversal is reused by the
// Cycle Resolver's own nested-cycle step (§4.7 step 6) when reconstructing
// the longest path over a nested condensation.
func (g *MappedGraph) LongestPathEdgeWeighted() (map[NodeID]uint32, error) {
	order, err := g.TopoSort()
	if err != nil {
		return nil, err
	}

	best := make(map[NodeID]uint32, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		v := order[i]
		var max uint32
		for _, e := range g.EdgesDirected(v, Outgoing) {
			if c := e.Weight + best[e.To]; c > max {
				max = c
			}
		}
		best[v] = max
	}
	return best, nil
}

// LongestPath implements spec.md §4.7's "longest-path primitive": for each
// node in reverse topological order, best(v) = weight(v) + max over
// successors s of best(s), with best(sink) = weight(sink). Returns
// ErrCycleIrreducible if g is not acyclic.
func (g *MappedGraph) LongestPath() (map[NodeID]uint32, error) {
	order, err := g.TopoSort()
	if err != nil {
		return nil, err
	}

	best := make(map[NodeID]uint32, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		v := order[i]
		var max uint32
		for _, succ := range g.NeighborsDirected(v, Outgoing) {
			if best[succ] > max {
				max = best[succ]
			}
		}
		best[v] = g.Weight(v) + max
	}
	return best, nil
}
