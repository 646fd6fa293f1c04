package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type parent struct {
	ID       int
	Children []child
}

type child struct {
	ParentID int
	Name     string
}

func TestKeys_DedupPreservesOrder(t *testing.T) {
	rows := []child{{3, "a"}, {1, "b"}, {3, "c"}, {2, "d"}}
	assert.Equal(t, []int{3, 1, 2}, Keys(rows, func(c child) int { return c.ParentID }))
	assert.Empty(t, Keys([]child{}, func(c child) int { return c.ParentID }))
}

func TestGroupBy_KeepsInsertionOrder(t *testing.T) {
	rows := []child{{1, "a"}, {2, "b"}, {1, "c"}}
	got := GroupBy(rows, func(c child) int { return c.ParentID })

	assert.Len(t, got, 2)
	assert.Equal(t, []child{{1, "a"}, {1, "c"}}, got[1])
	assert.Equal(t, []child{{2, "b"}}, got[2])
}

func TestFold_MissingChildrenBecomeEmpty(t *testing.T) {
	parents := []parent{{ID: 1}, {ID: 2}}
	children := map[int][]child{1: {{1, "a"}, {1, "b"}}}

	Fold(parents, children, func(p parent) int { return p.ID }, func(p *parent, cs []child) { p.Children = cs })

	assert.Equal(t, []child{{1, "a"}, {1, "b"}}, parents[0].Children)
	assert.NotNil(t, parents[1].Children)
	assert.Empty(t, parents[1].Children)
}

func TestFold_NilChildrenBecomeEmpty(t *testing.T) {
	parents := []parent{{ID: 1}}

	Fold(parents, map[int][]child{1: nil}, func(p parent) int { return p.ID }, func(p *parent, cs []child) { p.Children = cs })

	assert.NotNil(t, parents[0].Children)
	assert.Empty(t, parents[0].Children)
}

func TestKeys_NilInputIsEmptySlice(t *testing.T) {
	got := Keys[child, int](nil, func(c child) int { return c.ParentID })
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
