// Package callsummary builds a deduplicated call-graph summary alongside
// the block-level analysis: which calling blocks call which callee
// leaders, with fictitious duplicates internal/dup produced mapped back to
// their real callee, down to one edge per (calling block, callee) pair.
// Callers are not grouped into their enclosing functions.
//
// This is supplementary to the WCET computation itself (which works over
// the fully duplicated block graph, not this summary) but is the natural
// home for github.com/zboralski/lattice in this module: the pack's only
// evidence of lattice's API is internal/callgraph/callgraph.go's flat
// Graph{Nodes, Edges}/Edge{Caller, Callee}/Dedup() container, so that is
// the only surface this package exercises — it is not pressed into service
// as the CFG's own graph engine (see DESIGN.md).
package callsummary

import (
	"fmt"

	"github.com/zboralski/lattice"

	"wcetcalc/internal/block"
	"wcetcalc/internal/dup"
	"wcetcalc/internal/jump"
)

// Build walks blocks (post-duplication) and produces a lattice.Graph whose
// nodes are the leaders of every block plus every callee, named by their
// hex address, and whose edges are deduplicated caller->callee pairs, the
// caller being the leader of the block that ends in the Call. Fictitious
// call targets are resolved back to their real leader via fict, so every
// edge names a real callee; edges from different calling blocks stay
// separate.
func Build(blocks []*block.Block, fict *dup.FictitiousMap) *lattice.Graph {
	g := &lattice.Graph{}
	seenNode := map[uint64]bool{}

	nodeName := func(leader uint64) string {
		return fmt.Sprintf("0x%x", leader)
	}

	addNode := func(leader uint64) {
		if !seenNode[leader] {
			seenNode[leader] = true
			g.Nodes = append(g.Nodes, nodeName(leader))
		}
	}

	for _, b := range blocks {
		addNode(b.Leader)
		if b.Exit == nil || b.Exit.Kind != jump.Call {
			continue
		}
		callee := b.Exit.CallTarget
		if real, ok := fict.RealOf[callee]; ok {
			callee = real
		}
		addNode(callee)
		g.Edges = append(g.Edges, lattice.Edge{
			Caller: nodeName(b.Leader),
			Callee: nodeName(callee),
		})
	}

	g.Dedup()
	return g
}
