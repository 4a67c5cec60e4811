// Package dup implements spec.md §4.4's Call Duplicator: when a callee is
// reached from more than one call site, every occurrence after the first
// gets its own clone of the callee's sub-CFG under a fresh fictitious
// leader namespace, so each call site's Ret edge lands on that call site's
// own return address instead of a shared one.
//
// _examples/original_source/ only retained main.rs and cycle.rs from the
// Rust prototype this spec was distilled from — the duplication module
// itself was not part of the retrieved pack, so this is built directly
// from spec.md §4.4 and §9's "duplication as substitution" design note,
// in the teacher's habit of deterministic, sorted-order, map-based
// iteration (zboralski-unflutter/internal/disasm/cfg.go's sort.Ints).
package dup

import (
	"sort"

	"wcetcalc/internal/block"
	"wcetcalc/internal/jump"
)

// FictitiousMap is spec.md §3's bidirectional fictitious-address namespace.
// It is bidirectional only from fictitious to real (injective); the reverse
// direction is one-to-many, since one real leader may be cloned many times.
type FictitiousMap struct {
	RealOf map[uint64]uint64
	FictOf map[uint64][]uint64
}

func newFictitiousMap() *FictitiousMap {
	return &FictitiousMap{RealOf: map[uint64]uint64{}, FictOf: map[uint64][]uint64{}}
}

func (m *FictitiousMap) record(fict, real uint64) {
	m.RealOf[fict] = real
	m.FictOf[real] = append(m.FictOf[real], fict)
}

// Result is everything the Call Duplicator hands the CFG Assembler.
type Result struct {
	Blocks      []*block.Block
	Fictitious  *FictitiousMap
	Recursive   map[uint64]uint64 // recursive_functions: callee leader -> return address
}

type duplicator struct {
	blocks    map[uint64]*block.Block
	counter   uint32
	fict      *FictitiousMap
	recursive map[uint64]uint64
}

// nextFictitious derives a fictitious leader deterministically from the
// real leader and a monotonically incremented counter, per SPEC_FULL.md
// §8.3: `(real << 1) | 1` keeps the low bit set so a fictitious leader is
// never accidentally address-aligned the way a real instruction address
// is, then the counter is folded in via XOR in the high bits so repeated
// clones of the same real leader never collide.
func (d *duplicator) nextFictitious(real uint64) uint64 {
	d.counter++
	base := (real << 1) | 1
	return base ^ (uint64(d.counter) << 40)
}

// Duplicate runs the Call Duplicator over the CFG's blocks (as produced by
// internal/block), rewriting every second-and-later call site's target to
// point at a fresh cloned sub-CFG and detecting recursive back-edges along
// the way.
//
// Call sites are processed in leader order for determinism (spec.md §4.4:
// "iteration order over call sites ... must be fixed"). The list of call
// sites is taken once from blocks; clones are not added to it. A Call met
// inside a cloned sub-CFG is handled by clone itself, which clones the
// nested callee as part of the same walk, so a nested callee reached
// through a clone also gets its own copy.
func Duplicate(blocks []*block.Block) Result {
	d := &duplicator{
		blocks:    indexByLeader(blocks),
		fict:      newFictitiousMap(),
		recursive: map[uint64]uint64{},
	}

	seen := map[uint64]bool{}
	for _, b := range sortedCallSites(blocks) {
		target := b.Exit.CallTarget
		if !seen[target] {
			seen[target] = true
			continue
		}
		visited := map[uint64]uint64{}
		fictEntry := d.clone(target, b.Exit.ReturnAddr, visited, target)
		b.Exit.CallTarget = fictEntry
	}

	return Result{
		Blocks:     flattenSorted(d.blocks),
		Fictitious: d.fict,
		Recursive:  d.recursive,
	}
}

// clone copies the block at real (and, transitively, everything its exit
// reaches) under fresh fictitious leaders, stopping at — but still
// cloning — any Ret block, whose RetAddr becomes retAddr. visited guards
// against infinite recursion: a revisit within the same walk is a
// recursion back-edge (spec.md §4.4 step 2), recorded against rootTarget
// (the callee whose duplication triggered this walk) rather than the
// specific recursive call site found mid-walk.
func (d *duplicator) clone(real uint64, retAddr uint64, visited map[uint64]uint64, rootTarget uint64) uint64 {
	if f, ok := visited[real]; ok {
		d.recursive[rootTarget] = retAddr
		return f
	}

	f := d.nextFictitious(real)
	visited[real] = f
	d.fict.record(f, real)

	orig, ok := d.blocks[real]
	if !ok {
		return f
	}

	nb := &block.Block{Leader: f, Insts: orig.Insts, Latency: orig.Latency}
	if orig.Exit != nil {
		ej := *orig.Exit
		switch ej.Kind {
		case jump.Ret:
			ej.RetAddr = retAddr
			ej.Resolved = true
			// Do not walk past a Ret — spec.md §4.4 step 2: clone "up to
			// (and not past) any Ret block".
		case jump.UnconditionalAbsolute, jump.UnconditionalRelative:
			ej.Target = d.clone(ej.Target, retAddr, visited, rootTarget)
		case jump.ConditionalAbsolute, jump.ConditionalRelative:
			ej.Taken = d.clone(ej.Taken, retAddr, visited, rootTarget)
			ej.NotTaken = d.clone(ej.NotTaken, retAddr, visited, rootTarget)
		case jump.Next:
			ej.FallThrough = d.clone(ej.FallThrough, retAddr, visited, rootTarget)
		case jump.Call:
			// The block after this nested call is still part of the
			// callee (`real`'s function) being cloned, so it continues
			// the *same* walk (same visited set, same retAddr/rootTarget)
			// even though no direct graph edge names it — it is only
			// reachable once the nested callee's own Ret resolves there.
			// Clone it first so the nested callee's fresh clone can target
			// its fictitious leader directly.
			//
			// The nested callee is cloned into this *same* visited set
			// rather than a fresh one: a nested call back to a node
			// already being cloned in this walk (direct or mutual
			// recursion) must hit the visited-map check above instead of
			// spinning forever re-cloning it.
			contFict := d.clone(ej.ReturnAddr, retAddr, visited, rootTarget)
			ej.CallTarget = d.clone(ej.CallTarget, contFict, visited, rootTarget)
			ej.ReturnAddr = contFict
		}
		nb.Exit = &ej
	}

	d.blocks[f] = nb
	return f
}

func indexByLeader(blocks []*block.Block) map[uint64]*block.Block {
	m := make(map[uint64]*block.Block, len(blocks))
	for _, b := range blocks {
		m[b.Leader] = b
	}
	return m
}

func sortedCallSites(blocks []*block.Block) []*block.Block {
	var sites []*block.Block
	for _, b := range blocks {
		if b.Exit != nil && b.Exit.Kind == jump.Call {
			sites = append(sites, b)
		}
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Leader < sites[j].Leader })
	return sites
}

func flattenSorted(m map[uint64]*block.Block) []*block.Block {
	out := make([]*block.Block, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Leader < out[j].Leader })
	return out
}
