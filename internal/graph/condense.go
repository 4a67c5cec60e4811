package graph

import "sort"

// Group is an SCC: a non-empty, leader-ascending ordered list of blocks. A
// group of size 1 is a single non-cyclic block; size >1 is a true cycle.
// Spec.md §3.
type Group []NodeID

// First returns the group's lowest-leader member, used throughout the
// Cycle Resolver as "the" representative block for a group (spec.md §4.7
// step 8, and original_source/src/cycle.rs's `condensed_node[0]`).
func (gr Group) First() NodeID { return gr[0] }

func (gr Group) contains(id NodeID) bool {
	for _, m := range gr {
		if m == id {
			return true
		}
	}
	return false
}

// CondensedGraph is spec.md §3's DAG of groups, keyed by each group's
// representative (First()) leader.
type CondensedGraph struct {
	groups  map[NodeID]Group
	groupOf map[NodeID]NodeID // any member leader -> its group's representative
	g       *MappedGraph      // adjacency over representatives
}

// Condense builds a CondensedGraph from g: runs Tarjan's algorithm
// (MappedGraph.SCCs), then collapses each SCC to a single node keyed by its
// lowest-leader member, folding parallel inter-group edges into one (taking
// the representative-block latency per spec.md §4.6).
func Condense(g *MappedGraph, blockWeight func(NodeID) uint32) *CondensedGraph {
	cg := &CondensedGraph{
		groups:  map[NodeID]Group{},
		groupOf: map[NodeID]NodeID{},
		g:       New(),
	}

	for _, group := range g.SCCs() {
		rep := group[0]
		cg.groups[rep] = group
		for _, m := range group {
			cg.groupOf[m] = rep
		}
	}

	for rep := range cg.groups {
		cg.g.AddNode(rep, blockWeight(rep))
	}

	for _, id := range g.Nodes() {
		fromRep := cg.groupOf[id]
		for _, e := range g.EdgesDirected(id, Outgoing) {
			toRep := cg.groupOf[e.To]
			if fromRep == toRep {
				continue // intra-group edge, not part of the condensation
			}
			cg.g.AddEdge(fromRep, toRep, blockWeight(toRep))
		}
	}

	return cg
}

// Groups returns every group, ordered by representative leader.
func (cg *CondensedGraph) Groups() []Group {
	reps := make([]NodeID, 0, len(cg.groups))
	for rep := range cg.groups {
		reps = append(reps, rep)
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i] < reps[j] })
	out := make([]Group, len(reps))
	for i, r := range reps {
		out[i] = cg.groups[r]
	}
	return out
}

// GroupByRep returns the group keyed by representative rep.
func (cg *CondensedGraph) GroupByRep(rep NodeID) (Group, bool) {
	g, ok := cg.groups[rep]
	return g, ok
}

// GroupOf returns the group containing member (a block leader, fictitious
// or real).
func (cg *CondensedGraph) GroupOf(member NodeID) (Group, bool) {
	rep, ok := cg.groupOf[member]
	if !ok {
		return nil, false
	}
	return cg.groups[rep], true
}

// EdgesDirected delegates to the underlying representative-keyed graph.
func (cg *CondensedGraph) EdgesDirected(rep NodeID, dir Direction) []Edge {
	return cg.g.EdgesDirected(rep, dir)
}

// NeighborsDirected returns the neighboring *groups* of rep's group.
func (cg *CondensedGraph) NeighborsDirected(rep NodeID, dir Direction) []Group {
	ids := cg.g.NeighborsDirected(rep, dir)
	out := make([]Group, len(ids))
	for i, id := range ids {
		out[i] = cg.groups[id]
	}
	return out
}

// UpdateEdge rewrites an inter-group edge's weight (spec.md §4.7 step 8).
func (cg *CondensedGraph) UpdateEdge(fromRep, toRep NodeID, weight uint32) {
	cg.g.UpdateEdge(fromRep, toRep, weight)
}

// RemoveNode removes a group entirely from the condensed graph.
func (cg *CondensedGraph) RemoveNode(rep NodeID) {
	cg.g.RemoveNode(rep)
	delete(cg.groups, rep)
}

// TopoSort returns the groups' representatives in topological order
// (spec.md §4.7: "condensed groups are processed in topological order").
func (cg *CondensedGraph) TopoSort() ([]NodeID, error) {
	return cg.g.TopoSort()
}

// ToDot renders the condensed graph for diagnostic dumps
// (condensed_graph.dot).
func (cg *CondensedGraph) ToDot(name string) string {
	return cg.g.ToDot(name)
}

// Weight returns a group representative's own node weight (its raw block
// latency, set at Condense time and never rewritten by ResolveCycles —
// only incoming edge weights and entryLatencyMap change).
func (cg *CondensedGraph) Weight(rep NodeID) uint32 {
	return cg.g.Weight(rep)
}

// LongestPathEdgeWeighted delegates to the underlying representative-keyed
// graph — spec.md §4.8's WCET Driver walks the condensed graph this way.
func (cg *CondensedGraph) LongestPathEdgeWeighted() (map[NodeID]uint32, error) {
	return cg.g.LongestPathEdgeWeighted()
}
