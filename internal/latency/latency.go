// Package latency implements spec.md §3's latency oracle: a map from
// instruction mnemonic to a non-negative clock-cycle cost.
//
// No repository in the retrieved pack ships an instruction-latency table —
// timing models are inherently domain-specific data, not something any
// library could plausibly supply — so this is a small hand-rolled map type
// rather than something grounded on a third-party dependency.
package latency

// Oracle maps a mnemonic to its clock-cycle cost.
type Oracle interface {
	Cost(mnemonic string) uint32
}

// Table is a map-backed Oracle with a fallback cost for any mnemonic it has
// no entry for.
type Table struct {
	costs    map[string]uint32
	fallback uint32
}

// NewTable returns an empty Table using fallback for unrecognized mnemonics.
func NewTable(fallback uint32) *Table {
	return &Table{costs: map[string]uint32{}, fallback: fallback}
}

// Set records mnemonic's cost, overriding the fallback for it.
func (t *Table) Set(mnemonic string, cost uint32) {
	t.costs[mnemonic] = cost
}

// Cost implements Oracle.
func (t *Table) Cost(mnemonic string) uint32 {
	if c, ok := t.costs[mnemonic]; ok {
		return c
	}
	return t.fallback
}

// Func adapts an Oracle to the func(string) uint32 shape arch.Model.Latency
// expects.
func Func(o Oracle) func(string) uint32 {
	return o.Cost
}

// Uniform costs every instruction at 1 cycle — spec.md §8's end-to-end
// scenarios assume this ("every instruction contributes 1") and it is the
// sensible default when no architecture-specific timing data is supplied.
var Uniform = NewTable(1)
