package block

import (
	"testing"

	"wcetcalc/internal/inst"
	"wcetcalc/internal/jump"
)

func TestBuildLinear(t *testing.T) {
	insts := []inst.Instruction{
		{Addr: 0x100, Mnemonic: "mov", Category: inst.Other},
		{Addr: 0x104, Mnemonic: "add", Category: inst.Other},
		{Addr: 0x108, Mnemonic: "sub", Category: inst.Other},
	}

	blocks := Build(insts)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Leader != 0x100 {
		t.Fatalf("leader = %#x, want 0x100", blocks[0].Leader)
	}
	if len(blocks[0].Insts) != 3 {
		t.Fatalf("got %d insts in block, want 3", len(blocks[0].Insts))
	}
	if blocks[0].Exit != nil {
		t.Fatalf("Exit = %+v, want nil (falls off the end of the stream)", blocks[0].Exit)
	}
}

func TestBuildConditionalSplitsThreeBlocks(t *testing.T) {
	insts := []inst.Instruction{
		{Addr: 0x100, Mnemonic: "b.eq", Category: inst.BranchCond, Target: 0x300},
		{Addr: 0x104, Mnemonic: "mov", Category: inst.Other},
		{Addr: 0x300, Mnemonic: "ret", Category: inst.Other},
	}

	blocks := Build(insts)
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}

	want := []uint64{0x100, 0x104, 0x300}
	for i, b := range blocks {
		if b.Leader != want[i] {
			t.Fatalf("block %d leader = %#x, want %#x", i, b.Leader, want[i])
		}
	}

	if blocks[0].Exit == nil || blocks[0].Exit.Kind != jump.ConditionalRelative {
		t.Fatalf("block 0 exit = %+v, want ConditionalRelative", blocks[0].Exit)
	}
	if blocks[0].Exit.Taken != 0x300 || blocks[0].Exit.NotTaken != 0x104 {
		t.Fatalf("block 0 exit targets = %+v", blocks[0].Exit)
	}

	if blocks[1].Exit == nil || blocks[1].Exit.Kind != jump.Next || blocks[1].Exit.FallThrough != 0x300 {
		t.Fatalf("block 1 exit = %+v, want Next->0x300", blocks[1].Exit)
	}

	if blocks[2].Exit != nil {
		t.Fatalf("block 2 exit = %+v, want nil", blocks[2].Exit)
	}
}

func TestBuildCallResolvesRetAddr(t *testing.T) {
	insts := []inst.Instruction{
		{Addr: 0x100, Mnemonic: "call", Category: inst.Call, Target: 0x200},
		{Addr: 0x104, Mnemonic: "mov", Category: inst.Other},
		{Addr: 0x200, Mnemonic: "mov", Category: inst.Other},
		{Addr: 0x204, Mnemonic: "ret", Category: inst.Return},
	}

	blocks := Build(insts)
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}

	callBlock := blocks[0]
	if callBlock.Exit == nil || callBlock.Exit.Kind != jump.Call {
		t.Fatalf("call block exit = %+v, want Call", callBlock.Exit)
	}
	if callBlock.Exit.CallTarget != 0x200 || callBlock.Exit.ReturnAddr != 0x104 {
		t.Fatalf("call exit = %+v", callBlock.Exit)
	}

	retBlock := blocks[2]
	if retBlock.Leader != 0x200 {
		t.Fatalf("ret block leader = %#x, want 0x200", retBlock.Leader)
	}
	if len(retBlock.Insts) != 2 {
		t.Fatalf("ret block has %d insts, want 2 (0x200 and 0x204)", len(retBlock.Insts))
	}
	if retBlock.Exit == nil || retBlock.Exit.Kind != jump.Ret {
		t.Fatalf("ret block exit = %+v, want Ret", retBlock.Exit)
	}
	if !retBlock.Exit.Resolved || retBlock.Exit.RetAddr != 0x104 {
		t.Fatalf("ret exit = %+v, want Resolved RetAddr=0x104", retBlock.Exit)
	}
}

// TestBuildCallResolvesRetAddrFirstCallerWins exercises the real
// Build/resolveExits pipeline (not a hand-built block list) for a callee
// invoked from two non-adjacent call sites. internal/dup.Duplicate always
// leaves the *first* (lowest-address) call site pointing at the real,
// undeplicated callee and clones every later call site instead, so the real
// callee's own Ret must resolve to the first caller's return address even
// though the second call site's return address is seen later in the
// instruction stream.
func TestBuildCallResolvesRetAddrFirstCallerWins(t *testing.T) {
	insts := []inst.Instruction{
		{Addr: 0x100, Mnemonic: "call", Category: inst.Call, Target: 0x300}, // first caller
		{Addr: 0x104, Mnemonic: "mov", Category: inst.Other},
		{Addr: 0x108, Mnemonic: "mov", Category: inst.Other},
		{Addr: 0x10c, Mnemonic: "call", Category: inst.Call, Target: 0x300}, // second caller
		{Addr: 0x110, Mnemonic: "mov", Category: inst.Other},
		{Addr: 0x300, Mnemonic: "mov", Category: inst.Other},
		{Addr: 0x304, Mnemonic: "ret", Category: inst.Return},
	}

	blocks := Build(insts)

	var callee *Block
	for _, b := range blocks {
		if b.Leader == 0x300 {
			callee = b
		}
	}
	if callee == nil {
		t.Fatalf("no block found with leader 0x300")
	}
	if callee.Exit == nil || callee.Exit.Kind != jump.Ret {
		t.Fatalf("callee exit = %+v, want Ret", callee.Exit)
	}
	if !callee.Exit.Resolved || callee.Exit.RetAddr != 0x104 {
		t.Fatalf("callee ret exit = %+v, want Resolved RetAddr=0x104 (first caller, not 0x110)", callee.Exit)
	}
}

func TestBuildEmpty(t *testing.T) {
	if got := Build(nil); got != nil {
		t.Fatalf("Build(nil) = %v, want nil", got)
	}
}

func TestApplyLatency(t *testing.T) {
	insts := []inst.Instruction{
		{Addr: 0x100, Mnemonic: "mov", Category: inst.Other},
		{Addr: 0x104, Mnemonic: "add", Category: inst.Other},
	}
	blocks := Build(insts)
	ApplyLatency(blocks, func(mnemonic string) uint32 {
		if mnemonic == "add" {
			return 3
		}
		return 1
	})
	if blocks[0].Latency != 4 {
		t.Fatalf("latency = %d, want 4", blocks[0].Latency)
	}
}
