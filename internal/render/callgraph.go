package render

import (
	"fmt"
	"strings"

	"github.com/zboralski/lattice"
)

// CallgraphDOT renders the function-level call summary (internal/callsummary)
// as DOT — SPEC_FULL.md §4.1's supplemented callgraph.dot, generalized from the
// teacher's owner-clustered CallgraphDOT to a flat graph, since the WCET
// domain has no class/owner grouping concept.
func CallgraphDOT(g *lattice.Graph, title string, t Theme) string {
	var b strings.Builder
	b.WriteString("digraph callgraph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  nodesep=0.4;\n")
	b.WriteString("  ranksep=0.6;\n")
	fmt.Fprintf(&b, "  bgcolor=%q;\n", t.Background)
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Helvetica Neue,Helvetica,Arial\", fontsize=9, fontcolor=%q, height=0.3, margin=\"0.12,0.06\"];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	fmt.Fprintf(&b, "  edge [penwidth=0.5, arrowsize=0.5, arrowhead=vee];\n")
	if title != "" {
		b.WriteString("  labelloc=t;\n  labeljust=l;\n")
		fmt.Fprintf(&b, "  label=<<font face=\"Helvetica Neue,Helvetica\" point-size=\"8\" color=\"%s\">%s</font>>;\n",
			t.TextColor, dotEscape(title))
	}
	b.WriteByte('\n')

	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "  %s [label=%q];\n", dotID(n), truncLabel(n, 60))
	}
	b.WriteByte('\n')

	for _, e := range g.Edges {
		fmt.Fprintf(&b, "  %s -> %s [color=%q];\n", dotID(e.Caller), dotID(e.Callee), t.EdgeDirect)
	}

	b.WriteString("}\n")
	return b.String()
}
