// Package types implements a Hindley-Milner type representation and
// unification engine: a persistent union-find arena of TypeVar nodes, each
// an index into the arena, with a generation ("DOB" — date of birth) tag
// bounding generalization. Node-shape vocabulary is grounded on go/types-
// style constructor applications (see DESIGN.md); unlike a one-shot batch
// solve per definition, the arena is a single long-lived structure walked
// incrementally across the whole program so that generalization watermarks
// stay meaningful across definitions.
package types

import (
	"fmt"

	"loomc/internal/source"
)

// Constraint tags a free variable, used for numeric-literal polymorphism
// (an Int literal's type is an unbound variable tagged ConstraintNumber).
// Unification carries the tag over to a variable it binds to but does not
// check it: a constrained variable binds to any type, numeric or not.
type Constraint int

const (
	NoConstraint Constraint = iota
	ConstraintNumber
	ConstraintComparable
)

// Node is one arena slot. A node is either:
//   - unbound: Kind == KindVar, Link == -1 — a free variable with a DOB.
//   - bound: Link >= 0 — points at its union-find representative.
//   - a constructor application: Kind == KindCon, Args populated.
type Node struct {
	Kind       Kind
	Link       int // -1 if this node is its own representative
	DOB        int // generalization generation, meaningful only when unbound
	Constraint Constraint
	Name       string // constructor name, meaningful only when Kind == KindCon
	Args       []int  // argument node indices, meaningful only when Kind == KindCon
	Labels     []string
	Location   source.Location
}

type Kind int

const (
	KindVar Kind = iota
	KindCon
)

// Arena owns every TypeVar node created during inference. It is mutated
// only by the type inferencer; other passes only read it through Info.
type Arena struct {
	nodes []Node
	gen   int // current generalization generation counter
}

func NewArena() *Arena { return &Arena{} }

// Fresh allocates a new unbound variable at the arena's current
// generation.
func (a *Arena) Fresh(loc source.Location, c Constraint) int {
	a.nodes = append(a.nodes, Node{Kind: KindVar, Link: -1, DOB: a.gen, Constraint: c, Location: loc})
	return len(a.nodes) - 1
}

// Con allocates a bound constructor-application node (a concrete type, not
// a variable).
func (a *Arena) Con(loc source.Location, name string, args ...int) int {
	a.nodes = append(a.nodes, Node{Kind: KindCon, Link: -1, Name: name, Args: args, Location: loc})
	return len(a.nodes) - 1
}

// Func builds `params -> ... -> result` as nested "->" constructor
// applications, generalized to any number of curried parameters.
func (a *Arena) Func(loc source.Location, params []int, result int) int {
	if len(params) == 0 {
		return result
	}
	return a.Con(loc, "->", params[0], a.Func(loc, params[1:], result))
}

// Generation returns the arena's current generalization generation.
func (a *Arena) Generation() int { return a.gen }

// EnterGeneration raises the generation counter, used at each DefBinding
// boundary before inferring a fresh level's values.
func (a *Arena) EnterGeneration() { a.gen++ }

// Find returns the representative index of v, compressing the path.
func (a *Arena) Find(v int) int {
	if a.nodes[v].Link == -1 {
		return v
	}
	root := a.Find(a.nodes[v].Link)
	a.nodes[v].Link = root
	return root
}

func (a *Arena) Node(v int) *Node { return &a.nodes[a.Find(v)] }

// RawNode returns the node at index v without following Link, used only
// internally by unification's occurs-check/DOB-lowering, which must reason
// about the pre-compression chain.
func (a *Arena) RawNode(v int) *Node { return &a.nodes[v] }

func (a *Arena) Len() int { return len(a.nodes) }

func (a *Arena) String(v int) string {
	n := a.Node(v)
	if n.Kind == KindVar {
		return fmt.Sprintf("t%d", a.Find(v))
	}
	if len(n.Args) == 0 {
		return n.Name
	}
	if n.Name == "->" && len(n.Args) == 2 {
		return fmt.Sprintf("(%s -> %s)", a.String(n.Args[0]), a.String(n.Args[1]))
	}
	s := n.Name
	for _, arg := range n.Args {
		s += " " + a.String(arg)
	}
	return "(" + s + ")"
}
