package jump

import (
	"reflect"
	"testing"

	"wcetcalc/internal/inst"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		cur  inst.Instruction
		next inst.Instruction
		want ExitJump
		ok   bool
	}{
		{
			name: "conditional branch",
			cur:  inst.Instruction{Addr: 0x100, Category: inst.BranchCond, Target: 0x200},
			next: inst.Instruction{Addr: 0x104},
			want: ExitJump{Kind: ConditionalRelative, Taken: 0x200, NotTaken: 0x104},
			ok:   true,
		},
		{
			name: "unconditional branch",
			cur:  inst.Instruction{Addr: 0x100, Category: inst.BranchUncond, Target: 0x300},
			next: inst.Instruction{Addr: 0x104},
			want: ExitJump{Kind: UnconditionalRelative, Target: 0x300},
			ok:   true,
		},
		{
			name: "indirect branch",
			cur:  inst.Instruction{Addr: 0x100, Category: inst.BranchIndirect},
			next: inst.Instruction{Addr: 0x104},
			want: ExitJump{Kind: Indirect},
			ok:   true,
		},
		{
			name: "call",
			cur:  inst.Instruction{Addr: 0x100, Category: inst.Call, Target: 0x400},
			next: inst.Instruction{Addr: 0x108},
			want: ExitJump{Kind: Call, CallTarget: 0x400, ReturnAddr: 0x108},
			ok:   true,
		},
		{
			name: "return",
			cur:  inst.Instruction{Addr: 0x100, Category: inst.Return},
			next: inst.Instruction{Addr: 0x104},
			want: ExitJump{Kind: Ret},
			ok:   true,
		},
		{
			name: "ordinary instruction",
			cur:  inst.Instruction{Addr: 0x100, Category: inst.Other},
			next: inst.Instruction{Addr: 0x104},
			want: ExitJump{},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.cur, tt.next)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTargets(t *testing.T) {
	tests := []struct {
		name string
		e    ExitJump
		want []uint64
	}{
		{"unconditional", ExitJump{Kind: UnconditionalAbsolute, Target: 0x10}, []uint64{0x10}},
		{"conditional", ExitJump{Kind: ConditionalRelative, Taken: 0x10, NotTaken: 0x14}, []uint64{0x10, 0x14}},
		{"call", ExitJump{Kind: Call, CallTarget: 0x20, ReturnAddr: 0x8}, []uint64{0x20}},
		{"ret unresolved", ExitJump{Kind: Ret}, nil},
		{"ret resolved", ExitJump{Kind: Ret, RetAddr: 0x30, Resolved: true}, []uint64{0x30}},
		{"next", ExitJump{Kind: Next, FallThrough: 0x18}, []uint64{0x18}},
		{"indirect", ExitJump{Kind: Indirect}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.e.Targets()
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Targets() = %v, want %v", got, tt.want)
			}
		})
	}
}
