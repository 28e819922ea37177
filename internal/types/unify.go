package types

import (
	"loomc/internal/diag"
	"loomc/internal/source"
)

// Message is a small tagged variant identifying why a unification call was
// made, paired with each call site. Kind selects the message shape; the
// formatter dispatches on it rather than on runtime polymorphism.
type Message struct {
	Kind MessageKind
	Loc  source.Location
	Note string
}

type MessageKind int

const (
	MsgApply MessageKind = iota
	MsgLet
	MsgMatch
	MsgAnnotation
	MsgPrim
)

func (m Message) describe() string {
	switch m.Kind {
	case MsgApply:
		return "function application"
	case MsgLet:
		return "definition"
	case MsgMatch:
		return "pattern match"
	case MsgAnnotation:
		return "type annotation"
	case MsgPrim:
		return "primitive signature"
	default:
		return "expression"
	}
}

// Unify unifies a and b under msg's context, mutating the arena's
// union-find structure. On failure it reports a TypeError diagnostic and
// returns false; callers continue rather than aborting, per the pipeline's
// continue-on-error rule.
func Unify(a *Arena, x, y int, msg Message, sink *diag.Sink) bool {
	x, y = a.Find(x), a.Find(y)
	if x == y {
		return true
	}
	nx, ny := a.RawNode(x), a.RawNode(y)

	if nx.Kind == KindVar {
		return bindVar(a, x, y, msg, sink)
	}
	if ny.Kind == KindVar {
		return bindVar(a, y, x, msg, sink)
	}

	if nx.Name != ny.Name || len(nx.Args) != len(ny.Args) {
		sink.Errorf(diag.TypeError, msg.Loc, "type mismatch in %s: %s vs %s%s",
			msg.describe(), a.String(x), a.String(y), noteSuffix(msg))
		return false
	}
	ok := true
	for i := range nx.Args {
		if !Unify(a, nx.Args[i], ny.Args[i], msg, sink) {
			ok = false
		}
	}
	return ok
}

func noteSuffix(msg Message) string {
	if msg.Note == "" {
		return ""
	}
	return " (" + msg.Note + ")"
}

// bindVar binds free variable v (already a root) to term t, after an
// occurs-check and DOB-lowering pass: any free variable reachable inside t
// whose DOB is older than v's must have its DOB lowered to v's, so that a
// later generalization boundary does not incorrectly generalize a variable
// that in fact escapes into an older binding.
func bindVar(a *Arena, v, t int, msg Message, sink *diag.Sink) bool {
	t = a.Find(t)
	if v == t {
		return true
	}
	vNode := a.RawNode(v)
	if occurs(a, v, t) {
		sink.Errorf(diag.TypeError, msg.Loc, "occurs check failed unifying %s with %s in %s",
			a.String(v), a.String(t), msg.describe())
		return false
	}
	lowerDOB(a, t, vNode.DOB, map[int]bool{})
	if tNode := a.RawNode(t); tNode.Kind == KindVar {
		if vNode.Constraint != NoConstraint && tNode.Constraint == NoConstraint {
			tNode.Constraint = vNode.Constraint
		}
	}
	a.RawNode(v).Link = t
	return true
}

func occurs(a *Arena, v, t int) bool {
	t = a.Find(t)
	if v == t {
		return true
	}
	n := a.RawNode(t)
	if n.Kind == KindVar {
		return false
	}
	for _, arg := range n.Args {
		if occurs(a, v, arg) {
			return true
		}
	}
	return false
}

func lowerDOB(a *Arena, t, dob int, seen map[int]bool) {
	t = a.Find(t)
	if seen[t] {
		return
	}
	seen[t] = true
	n := a.RawNode(t)
	if n.Kind == KindVar {
		if n.DOB > dob {
			n.DOB = dob
		}
		return
	}
	for _, arg := range n.Args {
		lowerDOB(a, arg, dob, seen)
	}
}

// Clone produces a fresh copy of t with every free variable whose DOB is at
// or above waterMark replaced by a brand-new variable at the arena's
// current generation — this is let-generalization's instantiation step. A
// reference below the watermark is monomorphic and unified directly instead
// of being cloned.
func Clone(a *Arena, t int, waterMark int) int {
	mapping := map[int]int{}
	return cloneRec(a, t, waterMark, mapping)
}

func cloneRec(a *Arena, t, waterMark int, mapping map[int]int) int {
	t = a.Find(t)
	n := a.RawNode(t)
	if n.Kind == KindVar {
		if n.DOB < waterMark {
			return t // free at an outer scope: monomorphic, don't clone
		}
		if fresh, ok := mapping[t]; ok {
			return fresh
		}
		fresh := a.Fresh(n.Location, n.Constraint)
		mapping[t] = fresh
		return fresh
	}
	args := make([]int, len(n.Args))
	for i, arg := range n.Args {
		args[i] = cloneRec(a, arg, waterMark, mapping)
	}
	return a.Con(n.Location, n.Name, args...)
}
