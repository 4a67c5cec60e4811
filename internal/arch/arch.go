// Package arch maps an object file's architecture to a decoder kind and an
// instruction latency table. The architecture tag is threaded explicitly as
// a Model value through every downstream component rather than kept as
// process-global state, per the reimplementation note recorded in
// SPEC_FULL.md §5.
package arch

import (
	"debug/elf"
	"fmt"

	"wcetcalc/internal/latency"
)

// Kind identifies one of the five supported target architectures.
type Kind int

const (
	X86_64 Kind = iota
	X86_64_X32
	AArch64
	ARM32
	LoongArch64
)

// String renders the architecture tag the way it is printed to stdout.
func (k Kind) String() string {
	switch k {
	case X86_64:
		return "x86_64"
	case X86_64_X32:
		return "x86_64_x32"
	case AArch64:
		return "aarch64"
	case ARM32:
		return "arm32"
	case LoongArch64:
		return "loongarch64"
	default:
		return "unknown"
	}
}

// DecoderKind selects which golang.org/x/arch decoder a Kind uses.
// LoongArch64 maps to DecoderAArch64 — see SPEC_FULL.md open-question §8.2.
type DecoderKind int

const (
	DecoderX86 DecoderKind = iota
	DecoderARM32
	DecoderAArch64
)

// Model is the per-architecture configuration threaded through the
// pipeline: which decoder to use, and how to cost a decoded instruction.
type Model struct {
	Kind    Kind
	Decoder DecoderKind
	// Bits is the x86 operating mode (16/32/64); unused for ARM families.
	Bits int
	// Latency costs an instruction given its mnemonic. Never nil.
	Latency func(mnemonic string) uint32
}

// ErrUnsupportedArch is returned by FromELF for machine/class combinations
// this analyzer does not recognize.
type ErrUnsupportedArch struct {
	Machine elf.Machine
	Class   elf.Class
}

func (e *ErrUnsupportedArch) Error() string {
	return fmt.Sprintf("arch: unsupported machine=%s class=%s", e.Machine, e.Class)
}

// FromELF derives a Model from an ELF header's machine type and class,
// using internal/latency's default uniform oracle (every instruction costs
// one clock cycle). Ground truth for the machine→arch mapping:
// original_source/src/main.rs's ArchMode::from(object::Architecture).
func FromELF(machine elf.Machine, class elf.Class) (Model, error) {
	defaultLatency := latency.Func(latency.Uniform)
	switch machine {
	case elf.EM_X86_64:
		if class == elf.ELFCLASS32 {
			return Model{Kind: X86_64_X32, Decoder: DecoderX86, Bits: 32, Latency: defaultLatency}, nil
		}
		return Model{Kind: X86_64, Decoder: DecoderX86, Bits: 64, Latency: defaultLatency}, nil
	case elf.EM_AARCH64:
		return Model{Kind: AArch64, Decoder: DecoderAArch64, Latency: defaultLatency}, nil
	case elf.EM_ARM:
		return Model{Kind: ARM32, Decoder: DecoderARM32, Latency: defaultLatency}, nil
	case elf.EM_LOONGARCH:
		// The original Rust prototype mapped LoongArch64 onto the ARM
		// (32-bit) Capstone arch with a 64-bit mode — an invalid
		// combination flagged in spec.md as "appears incorrect". This
		// reimplementation instead maps it onto the AArch64 decoder, the
		// nearest fixed-width 64-bit RISC encoding golang.org/x/arch
		// offers. Still a hack; still named as one.
		return Model{Kind: LoongArch64, Decoder: DecoderAArch64, Latency: defaultLatency}, nil
	default:
		return Model{}, &ErrUnsupportedArch{Machine: machine, Class: class}
	}
}
