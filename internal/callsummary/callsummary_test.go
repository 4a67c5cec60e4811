package callsummary

import (
	"testing"

	"wcetcalc/internal/block"
	"wcetcalc/internal/dup"
	"wcetcalc/internal/jump"
)

func TestBuildDedupesFictitiousCallees(t *testing.T) {
	blocks := []*block.Block{
		{Leader: 0x100, Exit: &jump.ExitJump{Kind: jump.Call, CallTarget: 0x200}},
		{Leader: 0x104, Exit: &jump.ExitJump{Kind: jump.Call, CallTarget: 0x900}}, // fictitious clone of 0x200
		{Leader: 0x200, Exit: &jump.ExitJump{Kind: jump.Ret}},
	}
	fict := &dup.FictitiousMap{RealOf: map[uint64]uint64{0x900: 0x200}, FictOf: map[uint64][]uint64{0x200: {0x900}}}

	g := Build(blocks, fict)

	if len(g.Edges) != 2 {
		t.Fatalf("got %d edges, want 2 (both calls fold to the same callee 0x200)", len(g.Edges))
	}
	for _, e := range g.Edges {
		if e.Callee != "0x200" {
			t.Fatalf("edge callee = %q, want 0x200 (fictitious target resolved to real)", e.Callee)
		}
	}
}
