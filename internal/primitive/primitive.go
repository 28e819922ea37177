// Package primitive defines the external contract through which a host
// registers the actual runtime operations a compiled program can call via
// `prim "name"`. The core compiler only ever consults a Table; it never
// implements or ships one for production use, matching Wake's convention
// of leaving builtin behavior in the surrounding job-execution system.
package primitive

import "loomc/internal/types"

// Purity records whether calling a primitive can be reordered or elided
// freely (Pure) or must be sequenced by every observer (Effectful) —
// consulted by a future evaluator, not by inference itself.
type Purity int

const (
	Pure Purity = iota
	Effectful
)

// Descriptor is one primitive's registration: how many curried arguments
// it takes, a predicate validating an inferred call site's resolved
// argument and result types, and its purity classification.
type Descriptor struct {
	Arity     int
	TypeCheck func(args []*types.Node, result *types.Node) bool
	Purity    Purity
}

// Table resolves a primitive name to its Descriptor.
type Table interface {
	Lookup(name string) (Descriptor, bool)
}

// StaticTable is a fixed map literal implementation of Table, used by
// tests and as the default table wired by cmd/loomc when no plugin
// directory is configured.
type StaticTable map[string]Descriptor

func (t StaticTable) Lookup(name string) (Descriptor, bool) {
	d, ok := t[name]
	return d, ok
}

// AsInferenceTable adapts a Table to the minimal shape internal/types'
// Inferencer consumes, so that package never needs to import this one.
func AsInferenceTable(t Table) types.PrimTable {
	return inferenceAdapter{t}
}

type inferenceAdapter struct{ t Table }

func (a inferenceAdapter) Lookup(name string) (types.PrimCheck, bool) {
	d, ok := a.t.Lookup(name)
	if !ok {
		return types.PrimCheck{}, false
	}
	return types.PrimCheck{Arity: d.Arity, Check: d.TypeCheck}, true
}
