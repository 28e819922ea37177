package resolve

import "loomc/internal/ast"

// collectFreeVars walks a fully-fractured expression, recording every
// VarRef whose canonical name is a member of keys into out. It recurses
// through nested DefBinding/Match/Lambda structure since a definition may
// reference a same-scope sibling arbitrarily deep inside its own body.
func collectFreeVars(e ast.Expr, keys map[ast.Identifier]bool, out map[ast.Identifier]bool) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.VarRef:
		if keys[n.Name] {
			out[n.Name] = true
		}
	case *ast.Literal, *ast.Prim, *ast.Here:
		// no children
	case *ast.App:
		collectFreeVars(n.Fn, keys, out)
		collectFreeVars(n.Arg, keys, out)
	case *ast.Lambda:
		collectFreeVars(n.Body, keys, out)
	case *ast.Match:
		for _, a := range n.Args {
			collectFreeVars(a, keys, out)
		}
		for _, arm := range n.Arms {
			collectFreeVars(arm.Guard, keys, out)
			collectFreeVars(arm.Body, keys, out)
		}
	case *ast.DefBinding:
		for _, v := range n.Vals {
			collectFreeVars(v.Body, keys, out)
		}
		for _, f := range n.Funs {
			collectFreeVars(f.Body, keys, out)
		}
		collectFreeVars(n.Body, keys, out)
	case *ast.Construct:
		for _, a := range n.Args {
			collectFreeVars(a, keys, out)
		}
	case *ast.Destruct:
		// no children beyond its Sum descriptor
	default:
		// Surface-only nodes (DefMap, Subscribe) never appear post-fracture.
	}
}
