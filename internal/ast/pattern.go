package ast

import (
	"math/big"

	"loomc/internal/source"
)

// Pattern is a surface match pattern, consumed by the pattern compiler.
// Shape inference of constructors ("does X reduce to a Construct(sum,
// cons) literal") happens during fracture/pattern compilation, not here —
// the parser only records what was written.
type Pattern interface {
	PatLoc() source.Location
	isPattern()
}

// PWildcard is `_`.
type PWildcard struct{ Location source.Location }

func (n *PWildcard) PatLoc() source.Location { return n.Location }
func (*PWildcard) isPattern()                {}

// PVar binds a lowercase name.
type PVar struct {
	Location source.Location
	Name     Identifier
}

func (n *PVar) PatLoc() source.Location { return n.Location }
func (*PVar) isPattern()                {}

// PConstructor names a capitalized constructor applied to sub-patterns.
type PConstructor struct {
	Location source.Location
	Name     Identifier
	Args     []Pattern
}

func (n *PConstructor) PatLoc() source.Location { return n.Location }
func (*PConstructor) isPattern()                {}

// PLiteral matches a literal constant.
type PLiteral struct {
	Location source.Location
	Kind     LiteralKind
	Int      *big.Int
	Float    float64
	String   string
	Char     rune
}

func (n *PLiteral) PatLoc() source.Location { return n.Location }
func (*PLiteral) isPattern()                {}
