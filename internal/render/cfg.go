package render

import (
	"fmt"
	"sort"
	"strings"

	"wcetcalc/internal/block"
	"wcetcalc/internal/jump"
)

// CFGDOT renders the full (post-duplication) block graph as a single DOT
// digraph. cmd/wcetcalc does not call it: its graph.dot comes from
// graph.MappedGraph.ToDot. Each block is a node labelled with its
// leader address and latency; edges are colored by the exit-jump kind that
// produced them, the way the teacher's CFGDOT distinguishes taken/not-taken
// branch edges.
func CFGDOT(blocks []*block.Block, recursive map[uint64]uint64, t Theme) string {
	if len(blocks) == 0 {
		return ""
	}

	isRecursiveLeader := make(map[uint64]bool, len(recursive))
	for callee := range recursive {
		isRecursiveLeader[callee] = true
	}

	sorted := append([]*block.Block(nil), blocks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Leader < sorted[j].Leader })

	var b strings.Builder
	b.WriteString("digraph cfg {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  nodesep=0.3;\n")
	b.WriteString("  ranksep=0.4;\n")
	fmt.Fprintf(&b, "  bgcolor=%q;\n", t.Background)
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Courier,monospace\", fontsize=8, fontcolor=%q, margin=\"0.08,0.04\"];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	fmt.Fprintf(&b, "  edge [penwidth=0.7, arrowsize=0.5, arrowhead=vee];\n\n")

	for _, blk := range sorted {
		id := dotID(fmt.Sprintf("0x%x", blk.Leader))
		var lines []string
		for _, in := range blk.Insts {
			lines = append(lines, dotEscape(fmt.Sprintf("0x%x: %s", in.Addr, in.Text())))
		}
		if len(lines) == 0 {
			lines = []string{dotEscape(fmt.Sprintf("0x%x", blk.Leader))}
		}
		lines = append(lines, fmt.Sprintf("latency=%d", blk.Latency))
		label := strings.Join(lines, "<br align=\"left\"/>") + "<br align=\"left\"/>"

		attrs := ""
		if isRecursiveLeader[blk.Leader] {
			attrs = fmt.Sprintf(", penwidth=1.5, color=%q", t.EntryFill)
		}
		fmt.Fprintf(&b, "  %s [label=<%s>%s];\n", id, label, attrs)
	}
	b.WriteByte('\n')

	for _, blk := range sorted {
		from := dotID(fmt.Sprintf("0x%x", blk.Leader))
		if blk.Exit == nil {
			continue
		}
		switch blk.Exit.Kind {
		case jump.ConditionalAbsolute, jump.ConditionalRelative:
			writeEdge(&b, from, blk.Exit.Taken, "T", t.EdgeTaken)
			writeEdge(&b, from, blk.Exit.NotTaken, "F", t.EdgeNotTaken)
		case jump.Call:
			writeEdge(&b, from, blk.Exit.CallTarget, "call", t.EdgeCall)
		case jump.Ret:
			if blk.Exit.Resolved {
				writeEdge(&b, from, blk.Exit.RetAddr, "ret", t.EdgeRet)
			}
		case jump.Next:
			writeEdge(&b, from, blk.Exit.FallThrough, "", t.EdgeDirect)
		case jump.UnconditionalAbsolute, jump.UnconditionalRelative:
			writeEdge(&b, from, blk.Exit.Target, "", t.EdgeDirect)
		case jump.Indirect:
			// spec.md §4.2/§9: indirect jumps drop their edge silently;
			// nothing to render.
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func writeEdge(b *strings.Builder, from string, to uint64, label, color string) {
	toID := dotID(fmt.Sprintf("0x%x", to))
	if label == "" {
		fmt.Fprintf(b, "  %s -> %s [color=%q];\n", from, toID, color)
		return
	}
	fmt.Fprintf(b, "  %s -> %s [color=%q, label=<<font point-size=\"7\" color=\"%s\">%s</font>>];\n",
		from, toID, color, color, label)
}
