package resolve

import (
	"loomc/internal/ast"
	"loomc/internal/source"
)

// Builtins returns a synthetic file-level DefMap providing the two
// operators the compiler itself generates references to: `++` (list
// append, used by publish folding's cons chains) and `==` (structural
// equality, used by literal-pattern column compilation). Both are ordinary
// global definitions bound to primitive-backed lambdas, resolved the same
// way any other global would be — nothing about them is special-cased in
// the resolver itself.
func Builtins(loc source.Location) *ast.DefMap {
	var defs ast.Defs
	defs.Add(ast.DefEntry{Location: loc, Name: "++", Global: true, Body: binaryPrim(loc, "listAppend")})
	defs.Add(ast.DefEntry{Location: loc, Name: "==", Global: true, Body: binaryPrim(loc, "eq")})
	return &ast.DefMap{
		Location: loc,
		Defs:     defs,
		Body:     &ast.Literal{Location: loc, Kind: ast.LitUnit},
	}
}

func binaryPrim(loc source.Location, primName string) ast.Expr {
	return &ast.Lambda{
		Location: loc,
		Param:    "a",
		Body: &ast.Lambda{
			Location: loc,
			Param:    "b",
			Body: &ast.App{
				Location: loc,
				Fn: &ast.App{
					Location: loc,
					Fn:       &ast.Prim{Location: loc, Name: primName},
					Arg:      &ast.VarRef{Location: loc, Name: "a"},
				},
				Arg: &ast.VarRef{Location: loc, Name: "b"},
			},
		},
	}
}
