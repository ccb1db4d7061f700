package wtx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdmtree/xdmtree/xdm"
)

func TestRemoveRejectsDocumentRoot(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	require.Error(t, trx.Remove())
}

func TestRemoveStructuralUnlinksAndMovesCursorToParent(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	childKey := mustInsertElement(t, trx, AsFirstChild, "child")

	require.NoError(t, trx.MoveTo(childKey))
	require.NoError(t, trx.Remove())
	require.Equal(t, trx.docRoot, trx.CurrentKey())

	root, _ := trx.tx.GetRecord(trx.docRoot)
	require.Equal(t, xdm.NilKey, root.FirstChild)
	_, ok := trx.tx.GetRecord(childKey)
	require.False(t, ok)
}

func TestRemoveMergesAdjacentTextSiblings(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	elemKey := mustInsertElement(t, trx, AsFirstChild, "p")
	require.NoError(t, trx.MoveTo(elemKey))

	t1, err := trx.InsertTextAs(AsFirstChild, []byte("left"))
	require.NoError(t, err)
	require.NoError(t, trx.MoveTo(t1))
	mid := mustInsertElement(t, trx, AsRightSibling, "i")
	require.NoError(t, trx.MoveTo(mid))
	_, err = trx.InsertTextAs(AsRightSibling, []byte("right"))
	require.NoError(t, err)

	require.NoError(t, trx.MoveTo(mid))
	require.NoError(t, trx.Remove())

	rec, ok := trx.tx.GetRecord(t1)
	require.True(t, ok)
	require.Equal(t, "leftright", string(rec.Value))
	require.Equal(t, t1, trx.CurrentKey())
}

func TestRemoveAttribute(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	elemKey := mustInsertElement(t, trx, AsFirstChild, "book")
	require.NoError(t, trx.MoveTo(elemKey))
	attrKey, err := trx.InsertAttribute(xdm.Name{Local: "isbn"}, []byte("123"))
	require.NoError(t, err)

	require.NoError(t, trx.MoveTo(attrKey))
	require.NoError(t, trx.Remove())

	elem, _ := trx.tx.GetRecord(elemKey)
	require.Empty(t, elem.AttributeKeys)
	require.Equal(t, elemKey, trx.CurrentKey())
}

func TestRemoveSubtreeDeletesAllDescendants(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	parent := mustInsertElement(t, trx, AsFirstChild, "parent")
	require.NoError(t, trx.MoveTo(parent))
	child := mustInsertElement(t, trx, AsFirstChild, "child")
	require.NoError(t, trx.MoveTo(child))
	_, err := trx.InsertTextAs(AsFirstChild, []byte("leaf"))
	require.NoError(t, err)

	require.NoError(t, trx.MoveTo(parent))
	require.NoError(t, trx.Remove())

	_, ok := trx.tx.GetRecord(parent)
	require.False(t, ok)
	_, ok = trx.tx.GetRecord(child)
	require.False(t, ok)
}
