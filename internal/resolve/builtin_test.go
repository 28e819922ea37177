package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loomc/internal/ast"
	"loomc/internal/diag"
	"loomc/internal/resolve"
	"loomc/internal/source"
)

func TestBuiltinsDeclaresGlobalOperators(t *testing.T) {
	dm := resolve.Builtins(source.EmptyLocation)

	appendEntry, ok := dm.Defs.Get("++")
	require.True(t, ok)
	assert.True(t, appendEntry.Global)

	eqEntry, ok := dm.Defs.Get("==")
	require.True(t, ok)
	assert.True(t, eqEntry.Global)
}

func TestBuiltinsBodyIsCurriedPrimApplication(t *testing.T) {
	dm := resolve.Builtins(source.EmptyLocation)
	entry, _ := dm.Defs.Get("++")

	outer, ok := entry.Body.(*ast.Lambda)
	require.True(t, ok)
	assert.Equal(t, ast.Identifier("a"), outer.Param)

	inner, ok := outer.Body.(*ast.Lambda)
	require.True(t, ok)
	assert.Equal(t, ast.Identifier("b"), inner.Param)

	app, ok := inner.Body.(*ast.App)
	require.True(t, ok)
	innerApp, ok := app.Fn.(*ast.App)
	require.True(t, ok)
	prim, ok := innerApp.Fn.(*ast.Prim)
	require.True(t, ok)
	assert.Equal(t, "listAppend", prim.Name)
}

func TestBuiltinsWireIntoTopAsSyntheticFile(t *testing.T) {
	dm := resolve.Builtins(source.EmptyLocation)
	top := ast.NewTop(source.EmptyLocation, []*ast.DefMap{dm}, []string{"builtin"}, diag.NewSink())
	assert.Equal(t, 0, top.Globals["++"])
	assert.Equal(t, 0, top.Globals["=="])
}
