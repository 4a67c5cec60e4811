package decode

import (
	"golang.org/x/arch/arm/armasm"
	"golang.org/x/arch/x86/x86asm"

	"wcetcalc/internal/inst"
)

// classifyX86 fills d.Category/d.Target from a decoded x86 instruction.
// The conditional-jump opcode list is the one mewmew-x/disasm/x86/x86.go
// uses to detect basic-block terminators (isTerm), extended here with
// CALL/RET/indirect detection.
func classifyX86(d *inst.Instruction, in x86asm.Inst, addr uint64) {
	switch in.Op {
	case x86asm.JA, x86asm.JAE, x86asm.JB, x86asm.JBE, x86asm.JCXZ, x86asm.JE,
		x86asm.JECXZ, x86asm.JG, x86asm.JGE, x86asm.JL, x86asm.JLE, x86asm.JNE,
		x86asm.JNO, x86asm.JNP, x86asm.JNS, x86asm.JO, x86asm.JP, x86asm.JRCXZ, x86asm.JS,
		x86asm.LOOP, x86asm.LOOPE, x86asm.LOOPNE:
		if target, ok := x86Rel(in, addr); ok {
			d.Category = inst.BranchCond
			d.Target = target
		}
	case x86asm.JMP:
		if target, ok := x86Rel(in, addr); ok {
			d.Category = inst.BranchUncond
			d.Target = target
		} else {
			d.Category = inst.BranchIndirect
		}
	case x86asm.CALL:
		if target, ok := x86Rel(in, addr); ok {
			d.Category = inst.Call
			d.Target = target
		} else {
			d.Category = inst.BranchIndirect
		}
	case x86asm.RET:
		d.Category = inst.Return
	}
}

// x86Rel resolves a direct branch/call target from the instruction's first
// relative-displacement argument, if any.
func x86Rel(in x86asm.Inst, addr uint64) (uint64, bool) {
	for _, a := range in.Args {
		if a == nil {
			break
		}
		if rel, ok := a.(x86asm.Rel); ok {
			return uint64(int64(addr) + int64(in.Len) + int64(rel)), true
		}
	}
	return 0, false
}

// classifyARM32 fills d.Category/d.Target from a decoded ARM32 instruction.
// ARM predicates every instruction; a branch with Cond != AL is treated as
// conditional for CFG purposes, matching the spec's conditional/
// unconditional split.
func classifyARM32(d *inst.Instruction, in armasm.Inst, addr uint64) {
	switch in.Op {
	case armasm.B:
		target, ok := armTarget(in)
		if !ok {
			return
		}
		if in.Cond == armasm.AL {
			d.Category = inst.BranchUncond
		} else {
			d.Category = inst.BranchCond
		}
		d.Target = target
	case armasm.BL:
		if target, ok := armTarget(in); ok {
			d.Category = inst.Call
			d.Target = target
		} else {
			d.Category = inst.BranchIndirect
		}
	case armasm.BLX:
		if target, ok := armTarget(in); ok {
			d.Category = inst.Call
			d.Target = target
		} else {
			d.Category = inst.BranchIndirect
		}
	case armasm.BX:
		if reg, ok := in.Args[0].(armasm.Reg); ok && reg == armasm.R14 {
			d.Category = inst.Return
			return
		}
		d.Category = inst.BranchIndirect
	}
}

func armTarget(in armasm.Inst) (uint64, bool) {
	for _, a := range in.Args {
		if a == nil {
			break
		}
		if pc, ok := a.(armasm.PCRel); ok {
			return uint64(int64(pc)), true
		}
	}
	return 0, false
}

// classifyAArch64 fills d.Category/d.Target by bit-matching the raw 32-bit
// encoding, the technique zboralski-unflutter/internal/disasm/branch.go and
// calledge.go use (DecodeBranch, isBL). LoongArch64 reuses this path — see
// DESIGN.md.
func classifyAArch64(d *inst.Instruction, raw uint32, pc uint64) {
	// RET: 1101011 0 0 10 11111 0000 0 0 Rn 00000
	if raw&0xFFFFFC1F == 0xD65F0000 {
		d.Category = inst.Return
		return
	}
	// BLR (indirect call): mask 0xFFFFFC1F, value 0xD63F0000
	if raw&0xFFFFFC1F == 0xD63F0000 {
		d.Category = inst.BranchIndirect
		return
	}
	// BL: 1 00101 imm26
	if raw&0xFC000000 == 0x94000000 {
		imm26 := int32(raw & 0x03FFFFFF)
		if imm26&(1<<25) != 0 {
			imm26 |= ^int32(0x03FFFFFF)
		}
		d.Category = inst.Call
		d.Target = uint64(int64(pc) + int64(imm26)*4)
		return
	}
	// B (unconditional): 000101 imm26
	if raw&0xFC000000 == 0x14000000 {
		imm26 := raw & 0x03FFFFFF
		d.Category = inst.BranchUncond
		d.Target = uint64(int64(pc) + int64(signExtend(imm26, 26))*4)
		return
	}
	// B.cond: 01010100 imm19 0 cond
	if raw&0xFF000010 == 0x54000000 {
		imm19 := (raw >> 5) & 0x7FFFF
		d.Category = inst.BranchCond
		d.Target = uint64(int64(pc) + int64(signExtend(imm19, 19))*4)
		return
	}
	// CBZ/CBNZ: 0 sf 11010(0|1) imm19 Rt
	if raw&0x7E000000 == 0x34000000 {
		imm19 := (raw >> 5) & 0x7FFFF
		d.Category = inst.BranchCond
		d.Target = uint64(int64(pc) + int64(signExtend(imm19, 19))*4)
		return
	}
	// TBZ/TBNZ: 0 b5 1101(1|1)0 b40 imm14 Rt
	if raw&0x7E000000 == 0x36000000 {
		imm14 := (raw >> 5) & 0x3FFF
		d.Category = inst.BranchCond
		d.Target = uint64(int64(pc) + int64(signExtend(imm14, 14))*4)
		return
	}
	// Indirect unconditional branch (BR): 1101011 0 0 00 11111 0000 0 0 Rn 00000
	if raw&0xFFFFFC1F == 0xD61F0000 {
		d.Category = inst.BranchIndirect
		return
	}
}

func signExtend(val uint32, bits int) int32 {
	sign := uint32(1) << (bits - 1)
	mask := sign - 1
	if val&sign != 0 {
		return int32(val | ^mask)
	}
	return int32(val & mask)
}
