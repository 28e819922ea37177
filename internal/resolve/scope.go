// Package resolve implements the "fracture" name-resolution pass: scope-
// chain qualification, publish/subscribe folding, Bellman-Ford level
// assignment, and per-level Tarjan SCC extraction, emitting layered
// ast.DefBinding nodes. The scope chain is kept as an explicit stack of
// frames rather than recursive closures.
package resolve

import (
	"fmt"

	"loomc/internal/ast"
	"loomc/internal/diag"
	"loomc/internal/source"
)

// scope is one frame of the explicit scope-chain stack. File-level frames
// carry a non-empty Prefix; nested (lambda/local-DefMap) frames do not.
type scope struct {
	id           int
	prefix       string // "" for non-file frames
	local        map[ast.Identifier]ast.Identifier // surface name -> canonical key
	publishHeads map[ast.Identifier]ast.Identifier // published name -> canonical head key
}

func newScope(id int, prefix string) *scope {
	return &scope{id: id, prefix: prefix, local: map[ast.Identifier]ast.Identifier{}, publishHeads: map[ast.Identifier]ast.Identifier{}}
}

// Resolver drives fracture over a Top.
type Resolver struct {
	sink      *diag.Sink
	scopes    []*scope
	nextScope int
	globals   map[ast.Identifier]ast.Identifier // surface global name -> canonical owner key
	nilSum    *ast.Sum                          // the List sum, for publish/subscribe folding's empty fallback
}

func NewResolver(sink *diag.Sink) *Resolver {
	return &Resolver{sink: sink, globals: map[ast.Identifier]ast.Identifier{}}
}

func (r *Resolver) pushScope(prefix string) *scope {
	s := newScope(r.nextScope, prefix)
	r.nextScope++
	r.scopes = append(r.scopes, s)
	return s
}

func (r *Resolver) popScope() { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) top() *scope { return r.scopes[len(r.scopes)-1] }

// canonicalKey builds the deterministic canonical name for a local
// definition, so two compilations of the same source produce identical
// keys.
func canonicalKey(s *scope, name ast.Identifier) ast.Identifier {
	if s.prefix != "" {
		return ast.Identifier(fmt.Sprintf("%s.%s", s.prefix, name))
	}
	return ast.Identifier(fmt.Sprintf("%s#%d", name, s.id))
}

// declare registers name as bound in the current (innermost) scope,
// returning its canonical key. If isGlobalOwner is set the bare name also
// becomes resolvable from anywhere via the global table. A name already
// bound in this same scope is a duplicate definition, reported at loc
// rather than silently overwriting the earlier binding.
func (r *Resolver) declare(loc source.Location, name ast.Identifier, isGlobalOwner bool) ast.Identifier {
	s := r.top()
	if _, dup := s.local[name]; dup {
		r.sink.Errorf(diag.ResolutionError, loc, "duplicate definition of %q in this scope", name)
	}
	key := canonicalKey(s, name)
	s.local[name] = key
	if isGlobalOwner {
		r.globals[name] = key
	}
	return key
}

// declareSynthetic registers a compiler-generated name directly under a
// precomputed canonical key (used for publish-chain synthetic definitions,
// whose keys are built by their own naming scheme).
func (r *Resolver) declareSynthetic(surfaceName, key ast.Identifier) {
	r.top().local[surfaceName] = key
}

// resolveName walks the scope chain innermost-to-outermost, then falls back
// to the global table. See DESIGN.md for the documented simplification of
// per-ancestor try-prefixed-then-bare lookup into a single final global
// fallback.
func (r *Resolver) resolveName(name ast.Identifier) (ast.Identifier, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if key, ok := r.scopes[i].local[name]; ok {
			return key, true
		}
	}
	if key, ok := r.globals[name]; ok {
		return key, true
	}
	return "", false
}

// resolveOuterSubscribe finds the nearest enclosing scope (excluding the
// current innermost one) that publishes name, recursing outward until it
// finds one or falls back to the empty list.
func (r *Resolver) resolveOuterSubscribe(loc source.Location, name ast.Identifier) ast.Expr {
	for i := len(r.scopes) - 2; i >= 0; i-- {
		if key, ok := r.scopes[i].publishHeads[name]; ok {
			return &ast.VarRef{Location: loc, Name: key}
		}
	}
	return r.nilValue(loc)
}
