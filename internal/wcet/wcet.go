// Package wcet is the analysis driver: it wires the Object Loader,
// Decoder/Classifier, Block Builder, Call Duplicator, CFG Assembler,
// Condenser and Cycle Resolver together and implements spec.md §4.8's
// WCET Driver on the result.
package wcet

import (
	"fmt"
	"sort"

	"wcetcalc/internal/arch"
	"wcetcalc/internal/block"
	"wcetcalc/internal/decode"
	"wcetcalc/internal/dup"
	"wcetcalc/internal/graph"
	"wcetcalc/internal/objectfile"
)

// Result is everything the driver produces, retained for output/dot
// rendering (internal/render, internal/output) as well as the final value.
type Result struct {
	WCET             uint32
	Model            arch.Model
	Blocks           []*block.Block
	Graph            *graph.MappedGraph
	Condensed        *graph.CondensedGraph
	EntryNodeLatency map[uint64]uint32
	Recursive        map[uint64]uint64
	Fictitious       *dup.FictitiousMap
}

// Analyze runs the full pipeline over an already-loaded object file.
func Analyze(obj *objectfile.Object) (*Result, error) {
	insts, err := decode.Decode(obj.Text, obj.BaseVA, obj.Model)
	if err != nil {
		return nil, fmt.Errorf("wcet: decode: %w", err)
	}

	blocks := block.Build(insts)
	block.ApplyLatency(blocks, obj.Model.Latency)

	dres := dup.Duplicate(blocks)

	g := buildGraph(dres.Blocks)
	blockWeight := func(id uint64) uint32 { return g.Weight(id) }

	condensed := graph.Condense(g, blockWeight)
	entryLatency := map[uint64]uint32{}
	if err := graph.ResolveCycles(g, condensed, entryLatency, blockWeight); err != nil {
		return nil, fmt.Errorf("wcet: cycle resolution: %w", err)
	}

	callLatency := buildCallLatencyMap(dres, blockWeight, entryLatency)

	total, err := computeWCET(condensed, entryLatency, dres.Recursive, callLatency)
	if err != nil {
		return nil, fmt.Errorf("wcet: driver: %w", err)
	}

	return &Result{
		WCET:             total,
		Model:            obj.Model,
		Blocks:           dres.Blocks,
		Graph:            g,
		Condensed:        condensed,
		EntryNodeLatency: entryLatency,
		Recursive:        dres.Recursive,
		Fictitious:       dres.Fictitious,
	}, nil
}

// buildGraph turns the (post-duplication) block list into the flat
// MappedGraph the Condenser/Cycle Resolver operate on. Targets that don't
// resolve to a known block (an unresolved Ret, an Indirect jump — spec.md
// §9's "Indirect drops both successor and target silently") are simply
// omitted as edges.
func buildGraph(blocks []*block.Block) *graph.MappedGraph {
	g := graph.New()
	byLeader := make(map[uint64]*block.Block, len(blocks))
	for _, b := range blocks {
		byLeader[b.Leader] = b
		g.AddNode(b.Leader, b.Latency)
	}
	for _, b := range blocks {
		for _, t := range b.Targets() {
			target, ok := byLeader[t]
			if !ok {
				continue
			}
			g.AddEdge(b.Leader, t, target.Latency)
		}
	}
	return g
}

// buildCallLatencyMap approximates spec.md §4.8's call_latency_map: for
// every recursive back-edge found by the Call Duplicator, the contribution
// a single extra invocation of that function would add is its own folded
// entry latency when known, falling back to its raw block latency
// otherwise.
func buildCallLatencyMap(dres dup.Result, blockWeight func(uint64) uint32, entryLatency map[uint64]uint32) map[uint64]uint32 {
	m := map[uint64]uint32{}
	for callee, retAddr := range dres.Recursive {
		if w, ok := entryLatency[callee]; ok {
			m[retAddr] = w
		} else {
			m[retAddr] = blockWeight(callee)
		}
	}
	return m
}

// computeWCET implements spec.md §4.8 steps 1-5.
func computeWCET(condensed *graph.CondensedGraph, entryLatency map[uint64]uint32, recursive map[uint64]uint64, callLatency map[uint64]uint32) (uint32, error) {
	groups := condensed.Groups()
	sort.Slice(groups, func(i, j int) bool { return groups[i].First() < groups[j].First() })

	path, err := condensed.LongestPathEdgeWeighted()
	if err != nil {
		return 0, err
	}

	var wcetMax uint32
	var recursiveDelay uint32

	for _, grp := range groups {
		rep := grp.First()
		if len(condensed.EdgesDirected(rep, graph.Incoming)) != 0 {
			continue // not an entry group
		}

		if retAddr, isRecursive := recursive[rep]; isRecursive {
			recursiveDelay += callLatency[retAddr]
			continue
		}

		entry, ok := entryLatency[rep]
		if !ok {
			entry = condensed.Weight(rep)
		}
		total := entry + path[rep]
		if total > wcetMax {
			wcetMax = total
		}
	}

	return wcetMax + recursiveDelay, nil
}
