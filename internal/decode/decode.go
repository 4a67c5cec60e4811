// Package decode performs the linear-sweep disassembly of spec.md §4's
// Decoder stage, turning a raw text-section byte stream into a sequence of
// inst.Instruction values. One decoder per architecture family backs onto
// golang.org/x/arch, following the per-architecture dispatch the teacher's
// own disasm.Disassemble (AArch64) and mewmew-x's disasm/x86 package
// (x86_64) already establish.
package decode

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/arch/arm/armasm"
	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"

	"wcetcalc/internal/arch"
	"wcetcalc/internal/inst"
)

// Decode disassembles data (the concatenated text-section bytes) starting
// at virtual address base, using the decoder selected by m.
func Decode(data []byte, base uint64, m arch.Model) ([]inst.Instruction, error) {
	switch m.Decoder {
	case arch.DecoderX86:
		return decodeX86(data, base, m.Bits)
	case arch.DecoderARM32:
		return decodeARM32(data, base)
	case arch.DecoderAArch64:
		return decodeAArch64(data, base)
	default:
		return nil, fmt.Errorf("decode: unknown decoder kind %d", m.Decoder)
	}
}

func decodeX86(data []byte, base uint64, bits int) ([]inst.Instruction, error) {
	if bits == 0 {
		bits = 64
	}
	var out []inst.Instruction
	off := 0
	for off < len(data) {
		in, err := x86asm.Decode(data[off:], bits)
		if err != nil || in.Len == 0 {
			return nil, fmt.Errorf("decode: x86 at offset 0x%x: %w", off, err)
		}
		addr := base + uint64(off)
		d := inst.Instruction{
			Addr:     addr,
			Mnemonic: in.Op.String(),
			Operands: x86Operands(in),
			Size:     in.Len,
		}
		classifyX86(&d, in, addr)
		out = append(out, d)
		off += in.Len
	}
	return out, nil
}

// x86Operands renders the operand portion of an x86asm.Inst the same way
// mewmew-x splits "mnemonic operands" from the GNU-syntax string: everything
// after the first space of in.String().
func x86Operands(in x86asm.Inst) string {
	full := in.String()
	mnLen := len(in.Op.String())
	if len(full) <= mnLen {
		return ""
	}
	rest := full[mnLen:]
	for len(rest) > 0 && rest[0] == ' ' {
		rest = rest[1:]
	}
	return rest
}

func decodeARM32(data []byte, base uint64) ([]inst.Instruction, error) {
	var out []inst.Instruction
	off := 0
	for off+4 <= len(data) {
		in, err := armasm.Decode(data[off:], armasm.ModeARM)
		if err != nil {
			return nil, fmt.Errorf("decode: arm32 at offset 0x%x: %w", off, err)
		}
		addr := base + uint64(off)
		d := inst.Instruction{
			Addr:     addr,
			Mnemonic: in.Op.String(),
			Operands: armOperands(in),
			Size:     in.Len,
		}
		classifyARM32(&d, in, addr)
		out = append(out, d)
		off += in.Len
	}
	return out, nil
}

func armOperands(in armasm.Inst) string {
	full := in.String()
	mnLen := len(in.Op.String())
	if len(full) <= mnLen {
		return ""
	}
	rest := full[mnLen:]
	for len(rest) > 0 && rest[0] == ' ' {
		rest = rest[1:]
	}
	return rest
}

func decodeAArch64(data []byte, base uint64) ([]inst.Instruction, error) {
	var out []inst.Instruction
	off := 0
	for off+4 <= len(data) {
		raw := binary.LittleEndian.Uint32(data[off : off+4])
		addr := base + uint64(off)
		in, err := arm64asm.Decode(data[off : off+4])
		if err != nil {
			return nil, fmt.Errorf("decode: aarch64 at offset 0x%x: %w", off, err)
		}
		d := inst.Instruction{
			Addr:     addr,
			Mnemonic: in.Op.String(),
			Operands: aarch64Operands(in),
			Size:     4,
		}
		classifyAArch64(&d, raw, addr)
		out = append(out, d)
		off += 4
	}
	return out, nil
}

func aarch64Operands(in arm64asm.Inst) string {
	full := in.String()
	mnLen := len(in.Op.String())
	if len(full) <= mnLen {
		return ""
	}
	rest := full[mnLen:]
	for len(rest) > 0 && rest[0] == ' ' {
		rest = rest[1:]
	}
	return rest
}
