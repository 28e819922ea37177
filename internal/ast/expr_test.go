package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loomc/internal/ast"
	"loomc/internal/diag"
	"loomc/internal/source"
)

func TestDefsPreservesInsertionOrderAndLookup(t *testing.T) {
	var defs ast.Defs
	defs.Add(ast.DefEntry{Name: "b"})
	defs.Add(ast.DefEntry{Name: "a"})
	defs.Add(ast.DefEntry{Name: "b", Global: true}) // re-declaration overwrites in place

	require.Equal(t, 2, defs.Len())
	names := make([]ast.Identifier, defs.Len())
	for i, e := range defs.Items() {
		names[i] = e.Name
	}
	assert.Equal(t, []ast.Identifier{"b", "a"}, names)

	entry, ok := defs.Get("b")
	require.True(t, ok)
	assert.True(t, entry.Global)

	_, ok = defs.Get("missing")
	assert.False(t, ok)
}

func TestPubsAccumulatesContributionsInOrder(t *testing.T) {
	var pubs ast.Pubs
	pubs.Add(ast.PubEntry{Name: "events", Contribute: &ast.Literal{Kind: ast.LitInt}})
	pubs.Add(ast.PubEntry{Name: "events", Contribute: &ast.Literal{Kind: ast.LitUnit}})
	pubs.Add(ast.PubEntry{Name: "other"})

	assert.Equal(t, []ast.Identifier{"events", "other"}, pubs.Names())
	require.Len(t, pubs.Contributions("events"), 2)
	assert.Len(t, pubs.Contributions("missing"), 0)
}

func TestNewTopComputesGlobalsAcrossFiles(t *testing.T) {
	fileA := &ast.DefMap{Body: &ast.Literal{Kind: ast.LitUnit}}
	fileA.Defs.Add(ast.DefEntry{Name: "shared", Global: true})
	fileA.Defs.Add(ast.DefEntry{Name: "local"})

	fileB := &ast.DefMap{Body: &ast.Literal{Kind: ast.LitUnit}}
	fileB.Defs.Add(ast.DefEntry{Name: "other", Global: true})

	sink := diag.NewSink()
	top := ast.NewTop(source.EmptyLocation, []*ast.DefMap{fileA, fileB}, []string{"a", "b"}, sink)

	assert.Equal(t, 0, top.Globals["shared"])
	assert.Equal(t, 1, top.Globals["other"])
	_, ok := top.Globals["local"]
	assert.False(t, ok, "non-global defs are not indexed")
	assert.False(t, sink.HasErrors())
}

func TestNewTopReportsConflictingGlobalOwners(t *testing.T) {
	fileA := &ast.DefMap{Body: &ast.Literal{Kind: ast.LitUnit}}
	fileA.Defs.Add(ast.DefEntry{Name: "shared", Global: true})

	fileB := &ast.DefMap{Body: &ast.Literal{Kind: ast.LitUnit}}
	fileB.Defs.Add(ast.DefEntry{Name: "shared", Global: true})

	sink := diag.NewSink()
	top := ast.NewTop(source.EmptyLocation, []*ast.DefMap{fileA, fileB}, []string{"a", "b"}, sink)

	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Kind == diag.ResolutionError {
			found = true
		}
	}
	assert.True(t, found, "expected a resolution error for the conflicting global owners of shared")
	assert.Equal(t, 0, top.Globals["shared"], "first file scanned keeps provisional ownership despite the conflict")
}
