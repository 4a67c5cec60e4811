// Package graph implements spec.md §3's MappedGraph/CondensedGraph data
// model and §4.6-§4.7's Condenser and Cycle Resolver.
//
// original_source/src/cycle.rs builds these on top of petgraph's
// MappedGraph/MappedCondensedGraph wrapper; that wrapper itself was not
// retrieved into the pack, so the graph here is a from-scratch, leader-keyed
// adjacency structure in the spirit of spec.md §9's "node = leader, edges =
// weighted adjacency" design note — deliberately avoiding in-place pointer
// cycles the way the CFG's own Block/ExitJump model does.
package graph

import "sort"

// NodeID is a block leader address — real or fictitious.
type NodeID = uint64

// Direction selects which side of an edge EdgesDirected/NeighborsDirected
// reports, mirroring petgraph's Incoming/Outgoing used throughout
// original_source/src/cycle.rs.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

// Edge is one weighted, directed arc.
type Edge struct {
	From, To NodeID
	Weight   uint32
}

// MappedGraph is spec.md §3's flat, mutable directed graph: nodes carry a
// weight (a block's latency), edges carry a weight (the target's latency,
// per §4.6 — "the weight is the target group's representative-block
// latency").
type MappedGraph struct {
	weight map[NodeID]uint32
	out    map[NodeID]map[NodeID]uint32
	in     map[NodeID]map[NodeID]uint32
}

// New returns an empty MappedGraph.
func New() *MappedGraph {
	return &MappedGraph{
		weight: map[NodeID]uint32{},
		out:    map[NodeID]map[NodeID]uint32{},
		in:     map[NodeID]map[NodeID]uint32{},
	}
}

// AddNode inserts id with the given weight, or updates its weight if it
// already exists.
func (g *MappedGraph) AddNode(id NodeID, weight uint32) {
	if _, ok := g.out[id]; !ok {
		g.out[id] = map[NodeID]uint32{}
		g.in[id] = map[NodeID]uint32{}
	}
	g.weight[id] = weight
}

// RemoveNode deletes id and every edge touching it.
func (g *MappedGraph) RemoveNode(id NodeID) {
	for succ := range g.out[id] {
		delete(g.in[succ], id)
	}
	for pred := range g.in[id] {
		delete(g.out[pred], id)
	}
	delete(g.out, id)
	delete(g.in, id)
	delete(g.weight, id)
}

// HasNode reports whether id has been added.
func (g *MappedGraph) HasNode(id NodeID) bool {
	_, ok := g.out[id]
	return ok
}

// Weight returns id's node weight (0 if absent).
func (g *MappedGraph) Weight(id NodeID) uint32 {
	return g.weight[id]
}

// AddEdge adds a directed edge from -> to, or overwrites its weight if the
// edge already exists. Both endpoints must already have been added via
// AddNode.
func (g *MappedGraph) AddEdge(from, to NodeID, weight uint32) {
	g.out[from][to] = weight
	g.in[to][from] = weight
}

// UpdateEdge is AddEdge's name when the edge is known to already exist
// (spec.md §4.7 step 8: "update every incoming edge's weight").
func (g *MappedGraph) UpdateEdge(from, to NodeID, weight uint32) {
	g.AddEdge(from, to, weight)
}

// RemoveEdge deletes the edge from -> to, if any.
func (g *MappedGraph) RemoveEdge(from, to NodeID) {
	delete(g.out[from], to)
	delete(g.in[to], from)
}

// Nodes returns every node id, sorted ascending (spec.md §4.7's "ordering
// and tie-breaks": leader-address ordering).
func (g *MappedGraph) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(g.out))
	for id := range g.out {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// EdgesDirected returns the edges touching id on the given side, sorted by
// the far endpoint for determinism.
func (g *MappedGraph) EdgesDirected(id NodeID, dir Direction) []Edge {
	var adj map[NodeID]uint32
	if dir == Outgoing {
		adj = g.out[id]
	} else {
		adj = g.in[id]
	}
	edges := make([]Edge, 0, len(adj))
	for other, w := range adj {
		if dir == Outgoing {
			edges = append(edges, Edge{From: id, To: other, Weight: w})
		} else {
			edges = append(edges, Edge{From: other, To: id, Weight: w})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if dir == Outgoing {
			return edges[i].To < edges[j].To
		}
		return edges[i].From < edges[j].From
	})
	return edges
}

// NeighborsDirected returns the node ids on the far end of id's edges in
// the given direction, sorted ascending.
func (g *MappedGraph) NeighborsDirected(id NodeID, dir Direction) []NodeID {
	edges := g.EdgesDirected(id, dir)
	out := make([]NodeID, len(edges))
	for i, e := range edges {
		if dir == Outgoing {
			out[i] = e.To
		} else {
			out[i] = e.From
		}
	}
	return out
}

// Clone returns a deep copy.
func (g *MappedGraph) Clone() *MappedGraph {
	c := New()
	for id, w := range g.weight {
		c.AddNode(id, w)
	}
	for from, succs := range g.out {
		for to, w := range succs {
			c.AddEdge(from, to, w)
		}
	}
	return c
}
