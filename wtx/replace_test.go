package wtx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdmtree/xdmtree/events"
	"github.com/xdmtree/xdmtree/xdm"
)

func TestReplaceNodeRejectsDocumentRoot(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))

	stream := events.NewSliceReader([]events.Event{
		{Kind: events.StartElement, Name: xdm.Name{Local: "a"}},
		{Kind: events.EndElement},
	})
	_, err := trx.ReplaceNode(stream)
	require.Error(t, err)
}

func TestReplaceNodeSwapsSubtreeKeepingStructuralPosition(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	first := mustInsertElement(t, trx, AsFirstChild, "old")
	require.NoError(t, trx.MoveTo(first))
	second := mustInsertElement(t, trx, AsRightSibling, "keep")

	require.NoError(t, trx.MoveTo(first))
	stream := events.NewSliceReader([]events.Event{
		{Kind: events.StartElement, Name: xdm.Name{Local: "new"}},
		{Kind: events.Attribute, Name: xdm.Name{Local: "id"}, Content: []byte("1")},
		{Kind: events.EndElement},
	})
	newKey, err := trx.ReplaceNode(stream)
	require.NoError(t, err)
	require.NotEqual(t, first, newKey)

	_, ok := trx.tx.GetRecord(first)
	require.False(t, ok, "the replaced node must be gone")

	root, _ := trx.tx.GetRecord(trx.docRoot)
	require.Equal(t, newKey, root.FirstChild, "the new subtree takes the old one's structural slot")

	newRec, ok := trx.tx.GetRecord(newKey)
	require.True(t, ok)
	require.Equal(t, second, newRec.RightSibling)
	require.Len(t, newRec.AttributeKeys, 1)

	secondRec, _ := trx.tx.GetRecord(second)
	require.Equal(t, newKey, secondRec.LeftSibling)
	require.Equal(t, newKey, trx.CurrentKey())
}

func TestReplaceNodeRejectsNonStructuralCursor(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	elemKey := mustInsertElement(t, trx, AsFirstChild, "p")
	require.NoError(t, trx.MoveTo(elemKey))
	attrKey, err := trx.InsertAttribute(xdm.Name{Local: "a"}, []byte("1"))
	require.NoError(t, err)

	require.NoError(t, trx.MoveTo(attrKey))
	stream := events.NewSliceReader([]events.Event{
		{Kind: events.StartElement, Name: xdm.Name{Local: "x"}},
		{Kind: events.EndElement},
	})
	_, err = trx.ReplaceNode(stream)
	require.Error(t, err)
}
