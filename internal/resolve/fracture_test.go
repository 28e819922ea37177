package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loomc/internal/ast"
	"loomc/internal/diag"
	"loomc/internal/parser"
	"loomc/internal/pattern"
	"loomc/internal/resolve"
	"loomc/internal/source"
)

func fractureSrc(t *testing.T, content string) ([]ast.Expr, *diag.Sink) {
	t.Helper()
	f := source.NewFile("t.loom", "main", content)
	sink := diag.NewSink()
	dm := parser.ParseFile(f, sink)
	top := ast.NewTop(source.EmptyLocation, []*ast.DefMap{dm}, []string{"main"}, sink)
	sums := pattern.Prelude()
	top = resolve.LowerConstructors(top, sums, sink)
	out := resolve.Fracture(top, sums, sink)
	return out, sink
}

func TestFractureResolvesLocalReference(t *testing.T) {
	_, sink := fractureSrc(t, "def a = 1\ndef b = a")
	require.False(t, sink.HasErrors())
}

func TestFractureReportsUndefinedName(t *testing.T) {
	_, sink := fractureSrc(t, "def a = missing")
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.ReferenceError, sink.Diagnostics()[0].Kind)
}

func TestFractureSubscribeWithoutPublisherFallsBackToNil(t *testing.T) {
	out, sink := fractureSrc(t, "def a =\n  def b = subscribe events\n  b")
	require.False(t, sink.HasErrors(), "subscribe with no enclosing publisher must not report an unbound reference: %v", sink.Diagnostics())

	// walk to the ValueBinding for b and confirm its body is a real Construct,
	// not a bare unresolved VarRef.
	binding, ok := out[0].(*ast.DefBinding)
	require.True(t, ok)
	require.Len(t, binding.Vals, 1)
	construct, ok := binding.Vals[0].Body.(*ast.Construct)
	require.True(t, ok, "expected the Nil construct, got %T", binding.Vals[0].Body)
	assert.Equal(t, "Nil", construct.Sum.Constructors[construct.Index].Name)
}

func TestFracturePublishFoldsIntoConsChain(t *testing.T) {
	out, sink := fractureSrc(t, "def a =\n  publish events = 1\n  publish events = 2\n  subscribe events")
	require.False(t, sink.HasErrors())
	require.NotEmpty(t, out)
}

func TestFractureMutualRecursionSharesLevel(t *testing.T) {
	src := "def isEven n = if n then False else isOdd n\ndef isOdd n = if n then True else isEven n"
	out, sink := fractureSrc(t, src)
	assert.False(t, sink.HasErrors())
	binding, ok := out[0].(*ast.DefBinding)
	require.True(t, ok)
	require.Len(t, binding.Funs, 2, "isEven and isOdd land in one level")
	assert.Equal(t, binding.Funs[0].SCCID, binding.Funs[1].SCCID, "and share one SCC")
}

func TestFractureCyclicValueDependencyReported(t *testing.T) {
	_, sink := fractureSrc(t, "def a = b\ndef b = a")
	assert.True(t, sink.HasErrors())
}

func TestFractureDuplicateDefinitionAtSameScopeReported(t *testing.T) {
	_, sink := fractureSrc(t, "def x = 1\ndef x = 2\ndef y = x")
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Kind == diag.ResolutionError {
			found = true
		}
	}
	assert.True(t, found, "expected a resolution error for the duplicate definition of x")
}
