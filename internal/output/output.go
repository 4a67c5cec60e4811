// Package output writes wcetcalc's file artifacts: instructions.txt and the
// optional Graphviz dumps (spec.md §6).
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"wcetcalc/internal/block"
	"wcetcalc/internal/jump"
)

// WriteInstructions writes instructions.txt: one line per instruction,
// `addr mnemonic operands exit_jump`, where exit_jump is only present on a
// block's terminating instruction (spec.md §6).
func WriteInstructions(dir string, blocks []*block.Block) error {
	sorted := append([]*block.Block(nil), blocks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Leader < sorted[j].Leader })

	var b strings.Builder
	for _, blk := range sorted {
		for i, in := range blk.Insts {
			fmt.Fprintf(&b, "0x%x %s %s", in.Addr, in.Mnemonic, in.Operands)
			if i == len(blk.Insts)-1 && blk.Exit != nil {
				fmt.Fprintf(&b, " %s", exitJumpText(*blk.Exit))
			}
			b.WriteByte('\n')
		}
	}

	path := filepath.Join(dir, "instructions.txt")
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// exitJumpText renders an ExitJump the way instructions.txt annotates a
// block's terminating instruction.
func exitJumpText(e jump.ExitJump) string {
	switch e.Kind {
	case jump.ConditionalAbsolute, jump.ConditionalRelative:
		return fmt.Sprintf("cond(taken=0x%x, not_taken=0x%x)", e.Taken, e.NotTaken)
	case jump.UnconditionalAbsolute, jump.UnconditionalRelative:
		return fmt.Sprintf("jmp(0x%x)", e.Target)
	case jump.Indirect:
		return "indirect(unresolved)"
	case jump.Call:
		return fmt.Sprintf("call(0x%x, ret=0x%x)", e.CallTarget, e.ReturnAddr)
	case jump.Ret:
		if e.Resolved {
			return fmt.Sprintf("ret(0x%x)", e.RetAddr)
		}
		return "ret(unresolved)"
	case jump.Next:
		return fmt.Sprintf("next(0x%x)", e.FallThrough)
	default:
		return ""
	}
}

// WriteDot writes an already-rendered DOT document to name under dir.
func WriteDot(dir, name, dot string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(dot), 0644)
}
