// Command wcetcalc computes a worst-case-execution-time bound for a
// statically linked object file (spec.md §6).
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"wcetcalc/internal/callsummary"
	"wcetcalc/internal/graph"
	"wcetcalc/internal/objectfile"
	"wcetcalc/internal/output"
	"wcetcalc/internal/render"
	"wcetcalc/internal/wcet"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "wcetcalc: warning: .env: %v\n", err)
		}
	}

	objPath := flag.String("obj", "", "path to the statically linked object file")
	outDir := flag.String("out", ".", "output directory for instructions.txt and .dot dumps")
	dumpGraphs := flag.Bool("dump-graphs", false, "write graph.dot, condensed_graph.dot, and per-cycle .dot dumps")
	flag.Parse()

	path := *objPath
	if path == "" {
		path = os.Getenv("WCET_OBJECT_FILE")
	}
	if path == "" && flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "wcetcalc: no object file: pass --obj, set $WCET_OBJECT_FILE, or give a positional argument")
		os.Exit(1)
	}

	if err := run(path, *outDir, *dumpGraphs); err != nil {
		fmt.Fprintf(os.Stderr, "wcetcalc: %v\n", err)
		os.Exit(1)
	}
}

func run(path, outDir string, dumpGraphs bool) error {
	obj, err := objectfile.Load(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	res, err := wcet.Analyze(obj)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", path, err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}

	printReport(res)

	if err := output.WriteInstructions(outDir, res.Blocks); err != nil {
		return err
	}

	callGraph := callsummary.Build(res.Blocks, res.Fictitious)
	if err := output.WriteDot(outDir, "callgraph.dot", render.CallgraphDOT(callGraph, path, render.NASA)); err != nil {
		return err
	}

	if dumpGraphs {
		if err := writeGraphDumps(outDir, res); err != nil {
			return err
		}
	}

	return nil
}

// printReport prints the architecture tag, one line per entry-group latency,
// and the final WCET line (spec.md §6).
func printReport(res *wcet.Result) {
	fmt.Printf("architecture: %s\n", res.Model.Kind)

	for _, grp := range res.Condensed.Groups() {
		rep := grp.First()
		if len(res.Condensed.EdgesDirected(rep, graph.Incoming)) != 0 {
			continue // not an entry group
		}
		latency, ok := res.EntryNodeLatency[rep]
		if !ok {
			latency = res.Condensed.Weight(rep)
		}
		fmt.Printf("entry 0x%x: latency=%d\n", rep, latency)
	}

	fmt.Printf("WCET: %d clock cycles\n", res.WCET)
}

// writeGraphDumps writes graph.dot, condensed_graph.dot, and a
// graph_cycle_<n>.dot/condensed_cycle_graph_<n>.dot pair for every group
// that the Cycle Resolver folded (identified post-hoc: any final condensed
// group of size >1, or a singleton with a self-edge in the raw graph).
func writeGraphDumps(outDir string, res *wcet.Result) error {
	if err := output.WriteDot(outDir, "graph.dot", res.Graph.ToDot("cfg")); err != nil {
		return err
	}
	if err := output.WriteDot(outDir, "condensed_graph.dot", res.Condensed.ToDot("condensed")); err != nil {
		return err
	}

	groups := res.Condensed.Groups()
	sort.Slice(groups, func(i, j int) bool { return groups[i].First() < groups[j].First() })

	n := 0
	for _, grp := range groups {
		selfLoop := len(grp) == 1 && hasSelfEdge(res.Graph, grp[0])
		if len(grp) < 2 && !selfLoop {
			continue
		}
		n++

		cycleGraph := graph.New()
		for _, m := range grp {
			cycleGraph.AddNode(m, res.Graph.Weight(m))
		}
		members := make(map[uint64]bool, len(grp))
		for _, m := range grp {
			members[m] = true
		}
		for _, m := range grp {
			for _, e := range res.Graph.EdgesDirected(m, graph.Outgoing) {
				if members[e.To] {
					cycleGraph.AddEdge(m, e.To, e.Weight)
				}
			}
		}

		if err := output.WriteDot(outDir, fmt.Sprintf("graph_cycle_%d.dot", n), cycleGraph.ToDot(fmt.Sprintf("cycle_%d", n))); err != nil {
			return err
		}

		condensedCycle := graph.Condense(cycleGraph, cycleGraph.Weight)
		if err := output.WriteDot(outDir, fmt.Sprintf("condensed_cycle_graph_%d.dot", n), condensedCycle.ToDot(fmt.Sprintf("condensed_cycle_%d", n))); err != nil {
			return err
		}
	}
	return nil
}

func hasSelfEdge(g *graph.MappedGraph, id uint64) bool {
	for _, e := range g.EdgesDirected(id, graph.Outgoing) {
		if e.To == id {
			return true
		}
	}
	return false
}
