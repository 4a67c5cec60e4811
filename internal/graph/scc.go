package graph

import "sort"

// SCCs computes g's strongly connected components via Tarjan's algorithm,
// iteratively (an explicit stack) so arbitrarily deep chains in a large
// flattened object file don't blow the Go call stack. Each returned group
// is sorted ascending by leader (spec.md §4.7's "ordering and tie-breaks");
// the groups themselves are returned in order of discovery, which Tarjan
// guarantees is reverse topological — callers that need topological order
// should use TopoSort instead.
func (g *MappedGraph) SCCs() [][]NodeID {
	ids := g.Nodes()

	index := map[NodeID]int{}
	lowlink := map[NodeID]int{}
	onStack := map[NodeID]bool{}
	var stack []NodeID
	next := 0
	var groups [][]NodeID

	type frame struct {
		node     NodeID
		children []NodeID
		ci       int
	}

	for _, root := range ids {
		if _, seen := index[root]; seen {
			continue
		}

		var work []*frame
		work = append(work, &frame{node: root, children: g.NeighborsDirected(root, Outgoing)})
		index[root] = next
		lowlink[root] = next
		next++
		stack = append(stack, root)
		onStack[root] = true

		for len(work) > 0 {
			f := work[len(work)-1]
			if f.ci < len(f.children) {
				w := f.children[f.ci]
				f.ci++
				if _, seen := index[w]; !seen {
					index[w] = next
					lowlink[w] = next
					next++
					stack = append(stack, w)
					onStack[w] = true
					work = append(work, &frame{node: w, children: g.NeighborsDirected(w, Outgoing)})
				} else if onStack[w] {
					if index[w] < lowlink[f.node] {
						lowlink[f.node] = index[w]
					}
				}
				continue
			}

			// All children processed; propagate lowlink to parent and, if
			// f.node is a root (lowlink == index), pop its SCC.
			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1]
				if lowlink[f.node] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[f.node]
				}
			}
			if lowlink[f.node] == index[f.node] {
				var group []NodeID
				for {
					n := len(stack) - 1
					w := stack[n]
					stack = stack[:n]
					onStack[w] = false
					group = append(group, w)
					if w == f.node {
						break
					}
				}
				sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })
				groups = append(groups, group)
			}
		}
	}

	return groups
}
