package graph

// ResolveCycles implements spec.md §4.7, the Cycle Resolver: for every
// condensed group of size >1 (or a size-1 group with a self-edge), build an
// acyclic sub-CFG, compute its worst-case traversal cost, and fold that cost
// back into condensed — either into entryLatencyMap (if the group has no
// incoming edges) or into the weight of every edge incoming to the group.
//
// Groups are processed in topological order (spec.md §4.7's "ordering and
// tie-breaks"), so a nested cycle's fold-in is already visible via
// entryLatencyMap/edge weights by the time an enclosing cycle processes it.
func ResolveCycles(original *MappedGraph, condensed *CondensedGraph, entryLatencyMap map[NodeID]uint32, blockWeight func(NodeID) uint32) error {
	order, err := condensed.TopoSort()
	if err != nil {
		return err
	}

	nodeWeight := func(id NodeID) uint32 {
		if w, ok := entryLatencyMap[id]; ok {
			return w
		}
		return blockWeight(id)
	}

	for _, rep := range order {
		group, ok := condensed.GroupByRep(rep)
		if !ok {
			continue
		}
		if len(group) < 2 && !original.hasEdge(group[0], group[0]) {
			continue // ordinary, non-cyclic block: nothing to fold
		}
		if err := resolveGroup(original, condensed, group, entryLatencyMap, blockWeight, nodeWeight); err != nil {
			return err
		}
	}
	return nil
}

func resolveGroup(
	original *MappedGraph,
	condensed *CondensedGraph,
	group Group,
	entryLatencyMap map[NodeID]uint32,
	blockWeight func(NodeID) uint32,
	nodeWeight func(NodeID) uint32,
) error {
	rep := group.First()

	// Step 1: build the candidate sub-DAG over the group's own members.
	cycleGraph := New()
	for _, b := range group {
		cycleGraph.AddNode(b, nodeWeight(b))
	}
	for _, b := range group {
		for _, e := range original.EdgesDirected(b, Outgoing) {
			if group.contains(e.To) {
				cycleGraph.AddEdge(b, e.To, nodeWeight(e.To))
			}
		}
	}

	exit, err := findExit(original, condensed, rep, group)
	if err != nil {
		return err
	}
	entry, err := findEntry(original, condensed, rep, group)
	if err != nil {
		return err
	}

	// Step 4: break the cycle, computing an overhead detour first if the
	// natural loop header has more than one internal predecessor.
	var overhead uint32
	usedOverhead := false
	if entry != exit {
		if len(cycleGraph.EdgesDirected(entry, Incoming)) > 1 {
			overhead = longestSimplePath(cycleGraph, entry, exit)
			entry = exit
			usedOverhead = true
		}
	}
	for _, e := range cycleGraph.EdgesDirected(entry, Incoming) {
		cycleGraph.RemoveEdge(e.From, entry)
	}

	// Step 5: longest-path reconstruction, falling back to step 6 (nested
	// recursion) if cycleGraph still contains a cycle.
	var cycleNodeLatency uint32
	best, err := cycleGraph.LongestPath()
	if err != nil {
		nestedLatency, nestErr := resolveNested(cycleGraph, entry, entryLatencyMap, blockWeight)
		if nestErr != nil {
			return nestErr
		}
		cycleNodeLatency = nestedLatency
	} else {
		cycleNodeLatency = best[entry]
	}

	if usedOverhead {
		cycleNodeLatency += overhead
	}

	// Step 8: fold into the condensed graph.
	incoming := condensed.EdgesDirected(rep, Incoming)
	if len(incoming) == 0 {
		entryLatencyMap[group.First()] = cycleNodeLatency
	} else {
		for _, e := range incoming {
			condensed.UpdateEdge(e.From, rep, cycleNodeLatency)
		}
		entryLatencyMap[group.First()] = blockWeight(group.First())
	}

	return nil
}

// findExit is spec.md §4.7 step 2. A group with more than one successor
// group has more than one natural loop exit; SPEC_FULL.md §8.1 resolves
// that open question by refusing to guess which exit dominates and
// reporting ErrCycleIrreducible instead of silently picking the first
// successor group found.
func findExit(original *MappedGraph, condensed *CondensedGraph, rep NodeID, group Group) (NodeID, error) {
	succGroups := condensed.NeighborsDirected(rep, Outgoing)
	if len(succGroups) == 0 {
		return group[len(group)-1], nil
	}
	if len(succGroups) > 1 {
		return 0, ErrCycleIrreducible
	}

	outerGroup := succGroups[0]
	outer := outerGroup.First()
	if len(outerGroup) > 1 {
		for _, b := range group {
			for _, t := range original.NeighborsDirected(b, Outgoing) {
				if outerGroup.contains(t) {
					outer = t
				}
			}
		}
	}

	for _, b := range group {
		for _, t := range original.NeighborsDirected(b, Outgoing) {
			if t == outer {
				return b, nil
			}
		}
	}
	return group[len(group)-1], nil
}

// findEntry is spec.md §4.7 step 3. Symmetric with findExit: more than one
// predecessor group means more than one natural loop entry, which is the
// same irreducible shape and gets the same ErrCycleIrreducible treatment.
func findEntry(original *MappedGraph, condensed *CondensedGraph, rep NodeID, group Group) (NodeID, error) {
	predGroups := condensed.NeighborsDirected(rep, Incoming)
	if len(predGroups) == 0 {
		return group[0], nil
	}
	if len(predGroups) > 1 {
		return 0, ErrCycleIrreducible
	}

	predGroup := predGroups[0]
	outerPred := predGroup.First()
	if len(predGroup) > 1 {
		for _, b := range predGroup {
			for _, t := range original.NeighborsDirected(b, Outgoing) {
				if group.contains(t) {
					outerPred = b
				}
			}
		}
	}

	for _, t := range original.NeighborsDirected(outerPred, Outgoing) {
		if group.contains(t) {
			return t, nil
		}
	}
	return group[0], nil
}

// resolveNested is spec.md §4.7 step 6: cycleGraph still has interleaved
// loops after the single back-edge removal above, so condense it again and
// recurse.
func resolveNested(cycleGraph *MappedGraph, entry NodeID, entryLatencyMap map[NodeID]uint32, blockWeight func(NodeID) uint32) (uint32, error) {
	nested := Condense(cycleGraph, func(id NodeID) uint32 {
		if w, ok := entryLatencyMap[id]; ok {
			return w
		}
		return blockWeight(id)
	})

	if err := ResolveCycles(cycleGraph, nested, entryLatencyMap, blockWeight); err != nil {
		return 0, err
	}

	entryGroup, ok := nested.GroupOf(entry)
	if !ok {
		return 0, ErrCycleIrreducible
	}
	entryRep := entryGroup.First()

	entryLatency := entryLatencyMap[entryRep]
	if entryLatency == 0 {
		entryLatency = blockWeight(entryRep)
	}

	path, err := nested.g.LongestPathEdgeWeighted()
	if err != nil {
		return 0, err
	}
	return entryLatency + path[entryRep], nil
}

// longestSimplePath computes the heaviest simple (node-non-repeating) path
// from -> to by DFS with backtracking, used for the overhead detour in step
// 4 — at that point cycleGraph may still contain its natural cycle, so the
// DAG-only LongestPath primitive does not apply. Groups are small (a single
// SCC's worth of blocks), so exhaustive DFS is cheap.
func longestSimplePath(g *MappedGraph, from, to NodeID) uint32 {
	visited := map[NodeID]bool{}
	var best uint32
	var dfs func(cur NodeID, acc uint32)
	dfs = func(cur NodeID, acc uint32) {
		if cur == to {
			if acc > best {
				best = acc
			}
			return
		}
		visited[cur] = true
		for _, e := range g.EdgesDirected(cur, Outgoing) {
			if visited[e.To] {
				continue
			}
			dfs(e.To, acc+e.Weight)
		}
		visited[cur] = false
	}
	dfs(from, 0)
	return best
}

func (g *MappedGraph) hasEdge(from, to NodeID) bool {
	_, ok := g.out[from][to]
	return ok
}
