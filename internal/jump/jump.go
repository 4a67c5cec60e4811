// Package jump implements spec.md §4.1's exit-jump classifier: given one
// decoded instruction and the instruction immediately following it, decide
// whether the instruction exits its basic block and, if so, how.
//
// Design Notes §9 calls for "a trait/interface with one method" behind
// which per-architecture differences live; Classify is that method. The
// per-architecture differences already happened one stage earlier, in
// internal/decode, which stamped each inst.Instruction with a coarse
// Category (spec.md's "per-instruction control-flow summary"). Classify is
// therefore architecture-independent: it only needs Category plus the two
// addresses to build the full tagged ExitJump union of spec.md §3.
package jump

import "wcetcalc/internal/inst"

// Kind tags the ExitJump variant, mirroring spec.md §3's tagged union.
type Kind int

const (
	UnconditionalAbsolute Kind = iota
	UnconditionalRelative
	ConditionalAbsolute
	ConditionalRelative
	Indirect
	Call
	Ret
	Next
)

// ExitJump is the block terminator, represented as flat data (Design Notes
// §9: "pure data; pattern-match rather than subclass it") rather than as an
// interface hierarchy of variant types.
type ExitJump struct {
	Kind Kind

	// Target is valid for UnconditionalAbsolute/UnconditionalRelative.
	Target uint64
	// Taken/NotTaken are valid for ConditionalAbsolute/ConditionalRelative.
	Taken    uint64
	NotTaken uint64
	// CallTarget/ReturnAddr are valid for Call. ReturnAddr is the address
	// of the instruction immediately after the call.
	CallTarget uint64
	ReturnAddr uint64
	// RetAddr is valid for Ret once the Block Builder has resolved it
	// (spec.md §4.3); it is unset (0, Resolved=false) as produced here,
	// since the classifier "must not invent fall-through" and cannot
	// resolve a return address on its own.
	RetAddr  uint64
	Resolved bool
	// FallThrough is valid for Next.
	FallThrough uint64
}

// Targets returns every block-leader address this jump can transfer
// control to, in a stable order. Used by the CFG assembler (spec.md §4.5).
func (e ExitJump) Targets() []uint64 {
	switch e.Kind {
	case UnconditionalAbsolute, UnconditionalRelative:
		return []uint64{e.Target}
	case ConditionalAbsolute, ConditionalRelative:
		return []uint64{e.Taken, e.NotTaken}
	case Call:
		return []uint64{e.CallTarget}
	case Ret:
		if e.Resolved {
			return []uint64{e.RetAddr}
		}
		return nil
	case Next:
		return []uint64{e.FallThrough}
	case Indirect:
		return nil
	default:
		return nil
	}
}

// Classify builds the ExitJump for one instruction given the instruction
// that follows it sequentially in the text stream. It returns (ExitJump{},
// false) for non-control-flow instructions — spec.md §4.1's "returns None".
//
// The classifier never invents a fall-through edge (that is introduced
// later by the Block Builder via Next), and never resolves a Ret's return
// address (that is patched later from the call map, spec.md §4.3).
func Classify(cur, next inst.Instruction) (ExitJump, bool) {
	switch cur.Category {
	case inst.BranchCond:
		return ExitJump{
			Kind:     ConditionalRelative,
			Taken:    cur.Target,
			NotTaken: next.Addr,
		}, true
	case inst.BranchUncond:
		return ExitJump{
			Kind:   UnconditionalRelative,
			Target: cur.Target,
		}, true
	case inst.BranchIndirect:
		return ExitJump{Kind: Indirect}, true
	case inst.Call:
		return ExitJump{
			Kind:       Call,
			CallTarget: cur.Target,
			ReturnAddr: next.Addr,
		}, true
	case inst.Return:
		return ExitJump{Kind: Ret}, true
	default:
		return ExitJump{}, false
	}
}
