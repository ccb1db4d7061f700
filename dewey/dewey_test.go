package dewey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootAndChild(t *testing.T) {
	root := Root()
	require.EqualValues(t, 1, root.Level())

	child := root.NewChild()
	require.EqualValues(t, 2, child.Level())
	require.Equal(t, -1, root.Compare(child))
}

func TestNewAttributeAndNamespaceOrderBeforeChildren(t *testing.T) {
	elem := Root().NewChild()
	attr := elem.NewAttribute()
	ns := elem.NewNamespace()
	firstChild := elem.NewChild()

	require.True(t, attr.Compare(ns) < 0)
	require.True(t, ns.Compare(firstChild) < 0)
}

func TestNewBetweenSimpleMidpoint(t *testing.T) {
	elem := Root().NewChild()
	left := elem.NewChild()
	right, err := NewBetween(left, nil)
	require.NoError(t, err)

	mid, err := NewBetween(left, right)
	require.NoError(t, err)
	require.True(t, left.Compare(mid) < 0)
	require.True(t, mid.Compare(right) < 0)
}

func TestNewBetweenDescendsWhenAdjacent(t *testing.T) {
	left := ID{10}
	right := ID{11}
	mid, err := NewBetween(left, right)
	require.NoError(t, err)
	require.True(t, left.Compare(mid) < 0)
	require.True(t, mid.Compare(right) < 0)
	require.True(t, mid.Level() > left.Level())
}

func TestNewBetweenRequiresANeighbour(t *testing.T) {
	_, err := NewBetween(nil, nil)
	require.Error(t, err)
}

func TestNewBetweenRejectsEqualIDs(t *testing.T) {
	id := ID{5, 5}
	_, err := NewBetween(id, id.Clone())
	require.Error(t, err)
}

func TestCompareMatchesDocumentOrder(t *testing.T) {
	a := ID{5}
	b := ID{5, 3}
	c := ID{6}
	require.True(t, a.Compare(b) < 0)
	require.True(t, b.Compare(c) < 0)
	require.True(t, a.Compare(c) < 0)
}

func TestManyInsertsBetweenSameNeighboursStayOrdered(t *testing.T) {
	left := ID{10}
	right := ID{20}
	ids := []ID{left, right}
	for i := 0; i < 20; i++ {
		prev := ids[len(ids)-2]
		next := ids[len(ids)-1]
		mid, err := NewBetween(prev, next)
		require.NoError(t, err)
		ids = append(ids[:len(ids)-1], mid, next)
	}
	for i := 1; i < len(ids); i++ {
		require.True(t, ids[i-1].Compare(ids[i]) < 0, "ids[%d]=%v should precede ids[%d]=%v", i-1, ids[i-1], i, ids[i])
	}
}
