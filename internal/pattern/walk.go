package pattern

import "loomc/internal/ast"

// CompileTree walks a fractured expression tree, compiling every Match
// node into Destruct dispatch bottom-up so nested matches (inside an arm's
// guard or body) are already resolved before their enclosing match is
// compiled.
func CompileTree(c *Compiler, e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.VarRef, *ast.Literal, *ast.Prim, *ast.Here, *ast.Destruct:
		return n
	case *ast.App:
		return &ast.App{Location: n.Location, Fn: CompileTree(c, n.Fn), Arg: CompileTree(c, n.Arg)}
	case *ast.Lambda:
		return &ast.Lambda{Location: n.Location, Param: n.Param, Body: CompileTree(c, n.Body)}
	case *ast.Construct:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = CompileTree(c, a)
		}
		return &ast.Construct{Location: n.Location, Sum: n.Sum, Index: n.Index, Args: args}
	case *ast.DefBinding:
		vals := make([]ast.ValueBinding, len(n.Vals))
		for i, v := range n.Vals {
			vals[i] = ast.ValueBinding{Location: v.Location, Name: v.Name, Index: v.Index, Body: CompileTree(c, v.Body)}
		}
		funs := make([]ast.FuncBinding, len(n.Funs))
		for i, f := range n.Funs {
			funs[i] = ast.FuncBinding{Location: f.Location, Name: f.Name, Index: f.Index, SCCID: f.SCCID, Body: CompileTree(c, f.Body)}
		}
		return &ast.DefBinding{Location: n.Location, Order: n.Order, Vals: vals, Funs: funs, Body: CompileTree(c, n.Body)}
	case *ast.Match:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = CompileTree(c, a)
		}
		arms := make([]ast.MatchArm, len(n.Arms))
		for i, arm := range n.Arms {
			var guard ast.Expr
			if arm.Guard != nil {
				guard = CompileTree(c, arm.Guard)
			}
			arms[i] = ast.MatchArm{Location: arm.Location, Patterns: arm.Patterns, Guard: guard, Body: CompileTree(c, arm.Body)}
		}
		return c.Compile(&ast.Match{Location: n.Location, Args: args, Arms: arms})
	default:
		return n
	}
}
