package wcet

import (
	"testing"

	"wcetcalc/internal/block"
	"wcetcalc/internal/dup"
	"wcetcalc/internal/graph"
	"wcetcalc/internal/inst"
	"wcetcalc/internal/jump"
)

func uniform(string) uint32 { return 1 }

// run executes everything Analyze does except the object-file/decode steps,
// starting from an already-decoded instruction stream — spec.md §8's end-to-end
// scenarios are specified at the instruction-stream level, and a synthetic
// inst.Instruction stream here exercises the real block.Build pipeline
// exactly the way a decoded one would.
func run(t *testing.T, insts []inst.Instruction) uint32 {
	t.Helper()
	blocks := block.Build(insts)
	block.ApplyLatency(blocks, uniform)
	dres := dup.Duplicate(blocks)

	g := buildGraph(dres.Blocks)
	blockWeight := func(id uint64) uint32 { return g.Weight(id) }
	condensed := graph.Condense(g, blockWeight)

	entryLatency := map[uint64]uint32{}
	if err := graph.ResolveCycles(g, condensed, entryLatency, blockWeight); err != nil {
		t.Fatalf("ResolveCycles() error: %v", err)
	}

	callLatency := buildCallLatencyMap(dres, blockWeight, entryLatency)
	wcet, err := computeWCET(condensed, entryLatency, dres.Recursive, callLatency)
	if err != nil {
		t.Fatalf("computeWCET() error: %v", err)
	}
	return wcet
}

// spec.md §8 scenario 1: Linear, 5 instructions, no branches. WCET = 5.
func TestAnalyzeLinear(t *testing.T) {
	var insts []inst.Instruction
	for i := 0; i < 5; i++ {
		insts = append(insts, inst.Instruction{Addr: uint64(0x100 + 4*i), Category: inst.Other})
	}
	if got := run(t, insts); got != 5 {
		t.Fatalf("WCET = %d, want 5", got)
	}
}

// spec.md §8 scenario 2: If-then-else. Entry (2 insns) conditionally
// branches to two 3-insn arms that both join at a 2-insn block. Longest
// path through the taken arm = 2+3+2 = 7.
func TestAnalyzeIfThenElse(t *testing.T) {
	insts := []inst.Instruction{
		{Addr: 0x100, Category: inst.Other},
		{Addr: 0x104, Category: inst.BranchCond, Target: 0x200},
		{Addr: 0x108, Category: inst.Other}, // not-taken arm
		{Addr: 0x10c, Category: inst.Other},
		{Addr: 0x110, Category: inst.BranchUncond, Target: 0x300},
		{Addr: 0x200, Category: inst.Other}, // taken arm
		{Addr: 0x204, Category: inst.Other},
		{Addr: 0x208, Category: inst.BranchUncond, Target: 0x300},
		{Addr: 0x300, Category: inst.Other}, // join
		{Addr: 0x304, Category: inst.Other},
	}
	if got := run(t, insts); got != 7 {
		t.Fatalf("WCET = %d, want 7", got)
	}
}

// spec.md §8 scenario 5: main calls f twice in sequence. The second call
// site gets a fictitious clone of f; WCET sums both invocations plus the
// three single-instruction blocks around them (2*3 + 3 = 9).
func TestAnalyzeFunctionCalledTwice(t *testing.T) {
	blocks := []*block.Block{
		{Leader: 0x100, Latency: 1, Exit: &jump.ExitJump{Kind: jump.Call, CallTarget: 0x500, ReturnAddr: 0x108}},
		{Leader: 0x108, Latency: 1, Exit: &jump.ExitJump{Kind: jump.Call, CallTarget: 0x500, ReturnAddr: 0x110}},
		{Leader: 0x110, Latency: 1},
		{Leader: 0x500, Latency: 3, Exit: &jump.ExitJump{Kind: jump.Ret, RetAddr: 0x108, Resolved: true}},
	}

	dres := dup.Duplicate(blocks)
	g := buildGraph(dres.Blocks)
	blockWeight := func(id uint64) uint32 { return g.Weight(id) }
	condensed := graph.Condense(g, blockWeight)

	entryLatency := map[uint64]uint32{}
	if err := graph.ResolveCycles(g, condensed, entryLatency, blockWeight); err != nil {
		t.Fatalf("ResolveCycles() error: %v", err)
	}
	callLatency := buildCallLatencyMap(dres, blockWeight, entryLatency)
	got, err := computeWCET(condensed, entryLatency, dres.Recursive, callLatency)
	if err != nil {
		t.Fatalf("computeWCET() error: %v", err)
	}
	if got != 9 {
		t.Fatalf("WCET = %d, want 9 (1+3+1+3+1)", got)
	}
}

// spec.md §4.8 step 3: an entry group flagged recursive contributes only a
// flat call_latency_map delay and is excluded from the max fold.
func TestComputeWCETRecursiveDelayIsAdditiveNotMaxed(t *testing.T) {
	g := graph.New()
	g.AddNode(0x10, 5) // ordinary entry group
	g.AddNode(0x20, 7) // recursive entry group
	weight := func(id uint64) uint32 { return g.Weight(id) }
	condensed := graph.Condense(g, weight)

	recursive := map[uint64]uint64{0x20: 0x999}
	callLatency := map[uint64]uint32{0x999: 7}

	got, err := computeWCET(condensed, map[uint64]uint32{}, recursive, callLatency)
	if err != nil {
		t.Fatalf("computeWCET() error: %v", err)
	}
	if got != 12 {
		t.Fatalf("WCET = %d, want 12 (max(5,excluded) + recursive delay 7)", got)
	}
}
