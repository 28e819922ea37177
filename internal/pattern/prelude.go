package pattern

import "loomc/internal/ast"

// Prelude returns the ambient nominal sums every program can pattern-match
// against without declaring them: Bool (used by if/then/else and match
// guards) and List (used by publish folding's `++` chains). A real
// deployment would let primitives register additional sums into the same
// table before compilation; these two are baked in because the parser and
// resolver already assume they exist (If desugars to a Bool match, publish
// folding conses onto a List).
func Prelude() map[ast.Identifier]*ast.Sum {
	boolSum := &ast.Sum{
		Name: "Bool",
		Constructors: []ast.Constructor{
			{Name: "True", Index: 0, Arity: 0},
			{Name: "False", Index: 1, Arity: 0},
		},
	}
	listSum := &ast.Sum{
		Name:       "List",
		TypeParams: []ast.Identifier{"a"},
		Constructors: []ast.Constructor{
			{Name: "Nil", Index: 0, Arity: 0},
			{Name: "Cons", Index: 1, Arity: 2},
		},
	}
	table := map[ast.Identifier]*ast.Sum{}
	for _, s := range []*ast.Sum{boolSum, listSum} {
		for _, c := range s.Constructors {
			table[c.Name] = s
		}
	}
	return table
}
