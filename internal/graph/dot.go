package graph

import (
	"fmt"
	"strings"
)

// ToDot renders g as a Graphviz digraph, grounded on
// original_source/src/cycle.rs's to_dot_graph calls (graph_cycle_<n>.dot,
// condensed_cycle_graph_<n>.dot) and on the teacher's own dotID/dotEscape
// escaping convention in internal/render/helpers.go.
func (g *MappedGraph) ToDot(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", dotID(name))
	b.WriteString("  node [shape=box, fontname=\"monospace\"];\n")

	for _, id := range g.Nodes() {
		fmt.Fprintf(&b, "  n_%x [label=\"%s\"];\n", id, dotEscape(fmt.Sprintf("%#x\\nw=%d", id, g.Weight(id))))
	}
	for _, from := range g.Nodes() {
		for _, e := range g.EdgesDirected(from, Outgoing) {
			fmt.Fprintf(&b, "  n_%x -> n_%x [label=\"%d\"];\n", e.From, e.To, e.Weight)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func dotEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

func dotID(name string) string {
	var b strings.Builder
	b.WriteString("g_")
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
