package primitive

import "loomc/internal/types"

// sameCon reports whether n is the nullary constructor application named
// name (an unbound variable passes, since it will be pinned down by
// ordinary unification before this check runs at Finish time).
func sameCon(n *types.Node, name string) bool {
	return n.Kind == types.KindVar || (n.Kind == types.KindCon && n.Name == name && len(n.Args) == 0)
}

func numeric(n *types.Node) bool {
	return n.Kind == types.KindVar || (n.Kind == types.KindCon && (n.Name == "Int" || n.Name == "Float"))
}

// Base returns the small set of primitives the compiler's own generated
// code depends on (`internal/resolve.Builtins`, the pattern compiler's
// non-exhaustive-match placeholder) plus the arithmetic and comparison
// operations any nontrivial program needs. A real host is expected to
// register far more; this table exists so tests and `cmd/loomc`'s
// no-plugin-directory default have something to compile against.
func Base() StaticTable {
	binaryNumeric := func(args []*types.Node, result *types.Node) bool {
		return len(args) == 2 && numeric(args[0]) && numeric(args[1]) && numeric(result)
	}
	comparison := func(args []*types.Node, result *types.Node) bool {
		return len(args) == 2 && numeric(args[0]) && numeric(args[1]) && sameCon(result, "Bool")
	}
	return StaticTable{
		"addInt":     {Arity: 2, TypeCheck: binaryNumeric, Purity: Pure},
		"subInt":     {Arity: 2, TypeCheck: binaryNumeric, Purity: Pure},
		"mulInt":     {Arity: 2, TypeCheck: binaryNumeric, Purity: Pure},
		"divInt":     {Arity: 2, TypeCheck: binaryNumeric, Purity: Effectful},
		"addFloat":   {Arity: 2, TypeCheck: binaryNumeric, Purity: Pure},
		"subFloat":   {Arity: 2, TypeCheck: binaryNumeric, Purity: Pure},
		"mulFloat":   {Arity: 2, TypeCheck: binaryNumeric, Purity: Pure},
		"divFloat":   {Arity: 2, TypeCheck: binaryNumeric, Purity: Pure},
		"lessThan":   {Arity: 2, TypeCheck: comparison, Purity: Pure},
		"greaterThan": {Arity: 2, TypeCheck: comparison, Purity: Pure},
		"eq": {
			Arity: 2,
			TypeCheck: func(args []*types.Node, result *types.Node) bool {
				return len(args) == 2 && sameCon(result, "Bool")
			},
			Purity: Pure,
		},
		"listAppend": {
			Arity: 2,
			TypeCheck: func(args []*types.Node, result *types.Node) bool {
				return len(args) == 2 && sameCon(args[0], "List") && sameCon(args[1], "List") && sameCon(result, "List")
			},
			Purity: Pure,
		},
		"matchFailure": {
			Arity: 0,
			TypeCheck: func(args []*types.Node, result *types.Node) bool {
				return len(args) == 0
			},
			Purity: Effectful,
		},
		"printString": {
			Arity: 1,
			TypeCheck: func(args []*types.Node, result *types.Node) bool {
				return len(args) == 1 && sameCon(args[0], "String") && sameCon(result, "Unit")
			},
			Purity: Effectful,
		},
	}
}
