package ast

import "loomc/internal/source"

// The following variants complete the closed Expression sum. They are
// produced, not consumed, by the parser: Sum/Constructor descriptors are
// registered ambient nominal types, DefBinding replaces DefMap after
// fracture, and Construct/Destruct replace constructor/match forms after
// the pattern compiler runs. Keeping them in the same closed sum as the
// surface forms (rather than a separate "resolved AST" package) means the
// whole pipeline operates over one Expression representation throughout.
//
// Per-node type information is tracked out of band in a map keyed by node
// identity (internal/types.Info), the same approach go/types uses for its
// Info.Types table — this avoids mutating otherwise-immutable tree nodes
// in place and lets the same tree be walked by multiple later passes
// without aliasing concerns.

// Constructor is one option of a Sum type: a name, an index within the
// sum, and the number of argument slots it takes.
type Constructor struct {
	Name  Identifier
	Index int
	Arity int
}

// Sum is a nominal algebraic data type: a name, ordered type parameters,
// and its constructors, addressed by index for pattern-compiler dispatch.
type Sum struct {
	Name         Identifier
	TypeParams   []Identifier
	Constructors []Constructor
}

func (s *Sum) Constructor(name Identifier) (Constructor, bool) {
	for _, c := range s.Constructors {
		if c.Name == name {
			return c, true
		}
	}
	return Constructor{}, false
}

// Construct builds a value of Sum's Index'th constructor from Args.
type Construct struct {
	Location source.Location
	Sum      *Sum
	Index    int
	Args     []Expr
}

func (n *Construct) Loc() source.Location { return n.Location }
func (*Construct) isExpr()                {}

// Destruct is the canonical eliminator for Sum: applying it to len(Sum.
// Constructors) continuation functions (one per constructor, in index
// order) followed by a scrutinee yields the matched continuation's result:
// (τ → K_0 → R) → … → (τ → K_{n-1} → R) → τ → R.
type Destruct struct {
	Location source.Location
	Sum      *Sum
}

func (n *Destruct) Loc() source.Location { return n.Location }
func (*Destruct) isExpr()                {}

// ValueBinding is one non-lambda definition at a DefBinding level.
type ValueBinding struct {
	Location source.Location
	Name     Identifier
	Index    int
	Body     Expr
}

// FuncBinding is one lambda definition at a DefBinding level, tagged with
// the id of the earliest member of its Tarjan SCC: every function's SCCID
// points at the earliest-declared member of its strongly connected
// component.
type FuncBinding struct {
	Location source.Location
	Name     Identifier
	Index    int
	SCCID    int
	Body     Expr // always a *Lambda
}

// DefBinding is fracture's per-level output. Vals and Funs are each
// densely indexed from 0 (every ValueBinding.Index < len(Vals), every
// FuncBinding.Index < len(Funs)); Order maps every member's name to one
// combined index, values first, so lookups don't need to know which list a
// name landed in.
type DefBinding struct {
	Location source.Location
	Order    map[Identifier]int
	Vals     []ValueBinding
	Funs     []FuncBinding
	Body     Expr
}

func (n *DefBinding) Loc() source.Location { return n.Location }
func (*DefBinding) isExpr()                {}
