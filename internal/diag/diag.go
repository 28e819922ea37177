// Package diag implements the compiler's diagnostic sink: a single
// append-only stream of human-readable diagnostics plus a global ok flag.
// Every pass writes to it and continues past failures so one run surfaces
// as many errors as possible.
package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"loomc/internal/source"
)

// Kind classifies a diagnostic. Kept as a typed enum (not a string) so
// callers can switch on it without string comparison.
type Kind int

const (
	LexError Kind = iota
	ParseError
	ResolutionError
	PatternError
	TypeError
	ReferenceError
	InternalError
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case ParseError:
		return "parse error"
	case ResolutionError:
		return "resolution error"
	case PatternError:
		return "pattern error"
	case TypeError:
		return "type error"
	case ReferenceError:
		return "reference error"
	case InternalError:
		return "internal error"
	default:
		return "error"
	}
}

// Diagnostic is a single reported problem. Extra carries secondary
// locations relevant to the message (e.g. the other members of a cycle).
type Diagnostic struct {
	Kind     Kind
	Location source.Location
	Extra    []source.Location
	Message  string
}

func (d Diagnostic) String() string {
	sb := strings.Builder{}
	cursor := d.Location.CursorString()
	if cursor != "" {
		sb.WriteString(fmt.Sprintf("%s %s: %s\n", cursor, d.Kind, d.Message))
	} else {
		sb.WriteString(fmt.Sprintf("%s: %s\n", d.Kind, d.Message))
	}

	var unique []source.Location
	for _, e := range d.Extra {
		dup := false
		for _, u := range unique {
			if u.EqualsTo(e) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, e)
		}
	}
	for _, e := range unique {
		sb.WriteString(fmt.Sprintf("+ %s\n", e.CursorString()))
	}
	return sb.String()
}

// Internal is panicked when a pass reaches a case that should be
// unreachable given the invariants of the preceding pass. It is recovered
// at the pipeline boundary and reported as a compiler bug, distinct from a
// user-facing Diagnostic.
type Internal struct {
	Message string
}

func (i Internal) Error() string { return "internal error: " + i.Message }

// Fail panics with an Internal error. Used at the default arm of exhaustive
// type switches over closed sums, where reaching the arm means an earlier
// pass produced a node shape this one doesn't know how to handle.
func Fail(format string, args ...any) {
	panic(Internal{Message: fmt.Sprintf(format, args...)})
}

// Sink collects diagnostics across a compile run.
type Sink struct {
	diagnostics []Diagnostic
}

func NewSink() *Sink { return &Sink{} }

func (s *Sink) Report(d Diagnostic) { s.diagnostics = append(s.diagnostics, d) }

func (s *Sink) Errorf(kind Kind, loc source.Location, format string, args ...any) {
	s.Report(Diagnostic{Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)})
}

func (s *Sink) HasErrors() bool { return len(s.diagnostics) > 0 }

func (s *Sink) Diagnostics() []Diagnostic { return s.diagnostics }

// Flush writes every diagnostic to w in stable (file, position) order.
func (s *Sink) Flush(w io.Writer) {
	sorted := make([]Diagnostic, len(s.diagnostics))
	copy(sorted, s.diagnostics)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Location.FilePath() != sorted[j].Location.FilePath() {
			return sorted[i].Location.FilePath() < sorted[j].Location.FilePath()
		}
		return sorted[i].Location.Start() < sorted[j].Location.Start()
	})
	for _, d := range sorted {
		fmt.Fprint(w, d.String())
	}
}
