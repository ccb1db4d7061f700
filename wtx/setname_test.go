package wtx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdmtree/xdmtree/xdm"
)

func TestSetNameRenamesElement(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	key := mustInsertElement(t, trx, AsFirstChild, "book")
	require.NoError(t, trx.MoveTo(key))

	require.NoError(t, trx.SetName(xdm.Name{Local: "paperback"}))

	rec, _ := trx.tx.GetRecord(key)
	require.Equal(t, "paperback", trx.tx.LookupName(rec.LocalNameKey))
}

func TestSetNameRejectsNonNamedKind(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	elemKey := mustInsertElement(t, trx, AsFirstChild, "p")
	require.NoError(t, trx.MoveTo(elemKey))
	textKey, err := trx.InsertTextAs(AsFirstChild, []byte("hi"))
	require.NoError(t, err)

	require.NoError(t, trx.MoveTo(textKey))
	require.Error(t, trx.SetName(xdm.Name{Local: "whatever"}))
}

func TestSetNameOnAttributeRejectsCollisionWithSibling(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	elemKey := mustInsertElement(t, trx, AsFirstChild, "book")
	require.NoError(t, trx.MoveTo(elemKey))

	_, err := trx.InsertAttribute(xdm.Name{Local: "isbn"}, []byte("1"))
	require.NoError(t, err)
	otherKey, err := trx.InsertAttribute(xdm.Name{Local: "title"}, []byte("2"))
	require.NoError(t, err)

	require.NoError(t, trx.MoveTo(otherKey))
	require.Error(t, trx.SetName(xdm.Name{Local: "isbn"}))
}

func TestSetValueStoresRawValueBelowCompressionThreshold(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	elemKey := mustInsertElement(t, trx, AsFirstChild, "p")
	require.NoError(t, trx.MoveTo(elemKey))
	textKey, err := trx.InsertTextAs(AsFirstChild, []byte("short"))
	require.NoError(t, err)

	require.NoError(t, trx.MoveTo(textKey))
	require.NoError(t, trx.SetValue([]byte("still short")))

	rec, _ := trx.tx.GetRecord(textKey)
	require.False(t, rec.Compressed)
	require.Equal(t, "still short", string(rec.Value))
}

func TestSetValueCompressesLargeValues(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	elemKey := mustInsertElement(t, trx, AsFirstChild, "p")
	require.NoError(t, trx.MoveTo(elemKey))
	textKey, err := trx.InsertTextAs(AsFirstChild, []byte("short"))
	require.NoError(t, err)

	large := strings.Repeat("a", 200)
	require.NoError(t, trx.MoveTo(textKey))
	require.NoError(t, trx.SetValue([]byte(large)))

	rec, _ := trx.tx.GetRecord(textKey)
	require.True(t, rec.Compressed)
	require.Equal(t, large, string(rec.DecodedValue()))
}

func TestSetValueOfEmptyRemovesTextNode(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	elemKey := mustInsertElement(t, trx, AsFirstChild, "p")
	require.NoError(t, trx.MoveTo(elemKey))
	textKey, err := trx.InsertTextAs(AsFirstChild, []byte("hi"))
	require.NoError(t, err)

	require.NoError(t, trx.MoveTo(textKey))
	require.NoError(t, trx.SetValue(nil))

	_, ok := trx.tx.GetRecord(textKey)
	require.False(t, ok)
	require.Equal(t, elemKey, trx.CurrentKey())
}

func TestSetValueOfEmptyRemovesAttribute(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	elemKey := mustInsertElement(t, trx, AsFirstChild, "book")
	require.NoError(t, trx.MoveTo(elemKey))
	attrKey, err := trx.InsertAttribute(xdm.Name{Local: "isbn"}, []byte("1"))
	require.NoError(t, err)

	require.NoError(t, trx.MoveTo(attrKey))
	require.NoError(t, trx.SetValue([]byte{}))

	_, ok := trx.tx.GetRecord(attrKey)
	require.False(t, ok)
	require.Equal(t, elemKey, trx.CurrentKey())
}

func TestSetValueRejectsBadCommentContent(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	key, err := trx.InsertCommentAs(AsFirstChild, "fine")
	require.NoError(t, err)

	require.NoError(t, trx.MoveTo(key))
	require.Error(t, trx.SetValue([]byte("bad--comment")))
}
