package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loomc/internal/ast"
	"loomc/internal/diag"
	"loomc/internal/parser"
	"loomc/internal/source"
)

func parseSrc(t *testing.T, content string) (*ast.DefMap, *diag.Sink) {
	t.Helper()
	f := source.NewFile("t.loom", "main", content)
	sink := diag.NewSink()
	dm := parser.ParseFile(f, sink)
	return dm, sink
}

func TestParseSimpleDef(t *testing.T) {
	dm, sink := parseSrc(t, "def a = 1")
	require.False(t, sink.HasErrors())
	require.Equal(t, 1, dm.Defs.Len())

	entry, ok := dm.Defs.Get("a")
	require.True(t, ok)
	lit, ok := entry.Body.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, ast.LitInt, lit.Kind)
	assert.Equal(t, int64(1), lit.Int.Int64())
}

func TestParseDefWithParamsCurries(t *testing.T) {
	dm, sink := parseSrc(t, "def add a b = a")
	require.False(t, sink.HasErrors())
	entry, ok := dm.Defs.Get("add")
	require.True(t, ok)

	outer, ok := entry.Body.(*ast.Lambda)
	require.True(t, ok)
	assert.Equal(t, ast.Identifier("a"), outer.Param)
	inner, ok := outer.Body.(*ast.Lambda)
	require.True(t, ok)
	assert.Equal(t, ast.Identifier("b"), inner.Param)
}

func TestParseGlobalAndMemoizeFlags(t *testing.T) {
	dm, sink := parseSrc(t, "global def g = 1\nmemoize def m = 2")
	require.False(t, sink.HasErrors())

	g, _ := dm.Defs.Get("g")
	assert.True(t, g.Global)

	m, _ := dm.Defs.Get("m")
	assert.True(t, m.Memoize)
}

func TestParsePublish(t *testing.T) {
	dm, sink := parseSrc(t, "publish events = 1")
	require.False(t, sink.HasErrors())
	require.Contains(t, dm.Pubs.Names(), ast.Identifier("events"))
	require.Len(t, dm.Pubs.Contributions("events"), 1)
}

func TestParseIfDesugarsToTrueFalseMatch(t *testing.T) {
	dm, sink := parseSrc(t, "def a = if True then 1 else 2")
	require.False(t, sink.HasErrors())
	entry, _ := dm.Defs.Get("a")
	m, ok := entry.Body.(*ast.Match)
	require.True(t, ok)
	require.Len(t, m.Arms, 2)
	assert.Equal(t, ast.Identifier("True"), m.Arms[0].Patterns[0].(*ast.PConstructor).Name)
	assert.Equal(t, ast.Identifier("False"), m.Arms[1].Patterns[0].(*ast.PConstructor).Name)
}

func TestParseOperatorPrecedence(t *testing.T) {
	dm, sink := parseSrc(t, "def a = 1 + 2 * 3")
	require.False(t, sink.HasErrors())
	entry, _ := dm.Defs.Get("a")

	// 1 + (2 * 3): outer App is the '+' application.
	outerApp, ok := entry.Body.(*ast.App)
	require.True(t, ok)
	plusApp, ok := outerApp.Fn.(*ast.App)
	require.True(t, ok)
	plusRef, ok := plusApp.Fn.(*ast.VarRef)
	require.True(t, ok)
	assert.Equal(t, ast.Identifier("+"), plusRef.Name)

	rhs, ok := outerApp.Arg.(*ast.App)
	require.True(t, ok)
	mulApp, ok := rhs.Fn.(*ast.App)
	require.True(t, ok)
	mulRef, ok := mulApp.Fn.(*ast.VarRef)
	require.True(t, ok)
	assert.Equal(t, ast.Identifier("*"), mulRef.Name)
}

func TestParseLambda(t *testing.T) {
	dm, sink := parseSrc(t, `def a = \x.x`)
	require.False(t, sink.HasErrors())
	entry, _ := dm.Defs.Get("a")
	lam, ok := entry.Body.(*ast.Lambda)
	require.True(t, ok)
	assert.Equal(t, ast.Identifier("x"), lam.Param)
}

func TestParsePrimAndHere(t *testing.T) {
	dm, sink := parseSrc(t, "def a = prim \"addInt\"\ndef b = here")
	require.False(t, sink.HasErrors())

	a, _ := dm.Defs.Get("a")
	prim, ok := a.Body.(*ast.Prim)
	require.True(t, ok)
	assert.Equal(t, "addInt", prim.Name)

	b, _ := dm.Defs.Get("b")
	_, ok = b.Body.(*ast.Here)
	assert.True(t, ok)
}

func TestParseMatchExpression(t *testing.T) {
	dm, sink := parseSrc(t, "def a = match x\n  Nil = 1\n  Cons h t = 2")
	require.False(t, sink.HasErrors())
	entry, _ := dm.Defs.Get("a")
	m, ok := entry.Body.(*ast.Match)
	require.True(t, ok)
	require.Len(t, m.Args, 1)
	require.Len(t, m.Arms, 2)
	cons := m.Arms[1].Patterns[0].(*ast.PConstructor)
	assert.Equal(t, ast.Identifier("Cons"), cons.Name)
	assert.Len(t, cons.Args, 2)
}

func TestParseNestedDefMapBody(t *testing.T) {
	dm, sink := parseSrc(t, "def a =\n  def b = 1\n  b")
	require.False(t, sink.HasErrors())
	entry, _ := dm.Defs.Get("a")
	nested, ok := entry.Body.(*ast.DefMap)
	require.True(t, ok)
	require.Equal(t, 1, nested.Defs.Len())
	ref, ok := nested.Body.(*ast.VarRef)
	require.True(t, ok)
	assert.Equal(t, ast.Identifier("b"), ref.Name)
}

func TestParseErrorRecoveryContinuesToNextDef(t *testing.T) {
	dm, sink := parseSrc(t, "def a = )\ndef b = 2")
	require.True(t, sink.HasErrors())
	_, ok := dm.Defs.Get("b")
	assert.True(t, ok, "parser resyncs after an error and keeps parsing later definitions")
}
