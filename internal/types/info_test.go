package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"loomc/internal/source"
	"loomc/internal/types"
)

func TestInfoSetAndGet(t *testing.T) {
	a := types.NewArena()
	info := types.NewInfo(a)
	v := a.Fresh(source.EmptyLocation, types.NoConstraint)

	node := &struct{ tag string }{tag: "expr"}
	info.Set(node, v)

	got, ok := info.Get(node)
	assert.True(t, ok)
	assert.Equal(t, v, got)
}

func TestInfoTypeOfFollowsUnionFind(t *testing.T) {
	a := types.NewArena()
	info := types.NewInfo(a)
	v := a.Fresh(source.EmptyLocation, types.NoConstraint)
	intT := a.Con(source.EmptyLocation, "Int")

	node := &struct{ tag string }{tag: "expr"}
	info.Set(node, v)

	a.RawNode(v).Link = intT

	assert.Equal(t, a.Find(intT), info.TypeOf(node))
}

func TestInfoTypeOfUnknownNodeIsNegativeOne(t *testing.T) {
	a := types.NewArena()
	info := types.NewInfo(a)
	assert.Equal(t, -1, info.TypeOf(&struct{}{}))
}

func TestInfoStringFallsBackToQuestionMark(t *testing.T) {
	a := types.NewArena()
	info := types.NewInfo(a)
	assert.Equal(t, "?", info.String(&struct{}{}))
}
