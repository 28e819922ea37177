// Package ast defines the abstract syntax tree the parser builds: a closed
// sum of expression variants, each owning its source Location. Per-node
// type information populated later by inference is tracked out of band
// (see resolved.go) rather than as a field on every variant.
package ast

import (
	"fmt"
	"math/big"

	"loomc/internal/diag"
	"loomc/internal/source"
)

// Identifier is a bare, unqualified name as written in source.
type Identifier string

// Expr is the closed sum of surface expression forms.
type Expr interface {
	Loc() source.Location
	isExpr()
}

// VarRef is a reference to a name resolved later by fracture.
type VarRef struct {
	Location source.Location
	Name     Identifier
}

func (n *VarRef) Loc() source.Location { return n.Location }
func (*VarRef) isExpr()                {}

// Subscribe is a `subscribe name` tail reference, folded by fracture into a
// walk to the enclosing scope's publication.
type Subscribe struct {
	Location source.Location
	Name     Identifier
}

func (n *Subscribe) Loc() source.Location { return n.Location }
func (*Subscribe) isExpr()                {}

// LiteralKind distinguishes constant payload shapes.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitChar
	LitUnit
)

type Literal struct {
	Location source.Location
	Kind     LiteralKind
	Int      *big.Int
	Float    float64
	String   string
	Char     rune
}

func (n *Literal) Loc() source.Location { return n.Location }
func (*Literal) isExpr()                {}

// Prim is a `prim "name"` reference to an externally registered primitive.
type Prim struct {
	Location source.Location
	Name     string
}

func (n *Prim) Loc() source.Location { return n.Location }
func (*Prim) isExpr()                {}

// App is function application by juxtaposition, left-associative.
type App struct {
	Location source.Location
	Fn       Expr
	Arg      Expr
}

func (n *App) Loc() source.Location { return n.Location }
func (*App) isExpr()                {}

// Lambda is `\name.expr`.
type Lambda struct {
	Location source.Location
	Param    Identifier
	Body     Expr
}

func (n *Lambda) Loc() source.Location { return n.Location }
func (*Lambda) isExpr()                {}

// Here is the `here` current-source-location literal.
type Here struct {
	Location source.Location
}

func (n *Here) Loc() source.Location { return n.Location }
func (*Here) isExpr()                {}

// MatchArm is one `pattern [if guard] = body` arm of a Match.
type MatchArm struct {
	Location source.Location
	Patterns []Pattern
	Guard    Expr // nil if unguarded
	Body     Expr
}

// Match elaborates to nested destructor dispatch by the pattern compiler.
type Match struct {
	Location source.Location
	Args     []Expr
	Arms     []MatchArm
}

func (n *Match) Loc() source.Location { return n.Location }
func (*Match) isExpr()                {}

// DefEntry is one binding inside a DefMap: name -> (location, body).
type DefEntry struct {
	Location source.Location
	Name     Identifier
	Global   bool
	Memoize  bool
	Body     Expr
}

// PubEntry is one `publish name = expr` contribution.
type PubEntry struct {
	Location   source.Location
	Name       Identifier
	Contribute Expr
}

// DefMap is a scope: an insertion-ordered set of definitions plus a
// publish map of name -> ordered contributions.
type DefMap struct {
	Location source.Location
	Defs     Defs
	Pubs     Pubs
	Body     Expr
}

func (n *DefMap) Loc() source.Location { return n.Location }
func (*DefMap) isExpr()                {}

// Defs preserves insertion order alongside name lookup.
type Defs struct {
	order []Identifier
	byKey map[Identifier]int
	items []DefEntry
}

func (d *Defs) Add(e DefEntry) {
	if d.byKey == nil {
		d.byKey = map[Identifier]int{}
	}
	d.order = append(d.order, e.Name)
	d.byKey[e.Name] = len(d.items)
	d.items = append(d.items, e)
}

func (d *Defs) Get(name Identifier) (DefEntry, bool) {
	i, ok := d.byKey[name]
	if !ok {
		return DefEntry{}, false
	}
	return d.items[i], true
}

func (d *Defs) Items() []DefEntry { return d.items }
func (d *Defs) Len() int          { return len(d.items) }

// Pubs preserves declaration order of contributions per name.
type Pubs struct {
	order []Identifier
	byKey map[Identifier][]PubEntry
}

func (p *Pubs) Add(e PubEntry) {
	if p.byKey == nil {
		p.byKey = map[Identifier][]PubEntry{}
	}
	if _, seen := p.byKey[e.Name]; !seen {
		p.order = append(p.order, e.Name)
	}
	p.byKey[e.Name] = append(p.byKey[e.Name], e)
}

func (p *Pubs) Names() []Identifier { return p.order }
func (p *Pubs) Contributions(name Identifier) []PubEntry {
	return p.byKey[name]
}

// Top holds an ordered sequence of per-file DefMaps plus, for every name
// declared `global`, the index of its owning file (the first file scanned
// that declares it, when more than one does).
type Top struct {
	Location     source.Location
	Files        []*DefMap
	FilePrefixes []string
	Globals      map[Identifier]int // name -> owning file index
}

func (n *Top) Loc() source.Location { return n.Location }
func (*Top) isExpr()                {}

// NewTop assembles a Top from parsed per-file DefMaps, computing the
// Globals index by scanning each file's Global-flagged definitions. A name
// declared global in more than one file has no single owner, reported to
// sink rather than silently keeping whichever file was scanned last.
func NewTop(loc source.Location, files []*DefMap, prefixes []string, sink *diag.Sink) *Top {
	t := &Top{Location: loc, Files: files, FilePrefixes: prefixes, Globals: map[Identifier]int{}}
	owners := map[Identifier][]DefEntry{}
	for fi, f := range files {
		for _, d := range f.Defs.Items() {
			if d.Global {
				owners[d.Name] = append(owners[d.Name], d)
				if _, claimed := t.Globals[d.Name]; !claimed {
					t.Globals[d.Name] = fi
				}
			}
		}
	}
	for name, entries := range owners {
		if len(entries) < 2 {
			continue
		}
		extra := make([]source.Location, len(entries)-1)
		for i, e := range entries[1:] {
			extra[i] = e.Location
		}
		sink.Report(diag.Diagnostic{
			Kind:     diag.ResolutionError,
			Location: entries[0].Location,
			Extra:    extra,
			Message:  fmt.Sprintf("%q is declared global in more than one file", name),
		})
	}
	return t
}
