package hashing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdmtree/xdmtree/nodefactory"
	"github.com/xdmtree/xdmtree/pagetx"
	"github.com/xdmtree/xdmtree/xdm"
)

// buildParentChild creates a document root with one element child, linked
// structurally, and returns their keys plus the backing transaction.
func buildParentChild(t *testing.T) (pagetx.PageTx, xdm.NodeKey, xdm.NodeKey) {
	t.Helper()
	tx := pagetx.NewBootstrap()
	f := nodefactory.New(tx)

	root := f.NewDocument()
	require.NoError(t, tx.InsertEntry(root))

	child := f.NewElement(0, 1, 0, 1)
	child.Parent = root.Key
	require.NoError(t, tx.InsertEntry(child))

	r, _ := tx.PrepareEntryForModification(root.Key)
	r.FirstChild = child.Key
	r.ChildCount = 1

	return tx, root.Key, child.Key
}

func TestImageIsDeterministicAndKindSensitive(t *testing.T) {
	a := &xdm.Record{Kind: xdm.KindElement, LocalNameKey: 7}
	b := &xdm.Record{Kind: xdm.KindElement, LocalNameKey: 7}
	require.Equal(t, Image(a), Image(b))

	c := &xdm.Record{Kind: xdm.KindAttribute, LocalNameKey: 7}
	require.NotEqual(t, Image(a), Image(c))
}

func TestAddOnInsertFoldsHashOnlyUnderRollingButAlwaysBumpsDescendantCount(t *testing.T) {
	tx, rootKey, childKey := buildParentChild(t)
	e := New(tx, None)
	require.NoError(t, e.AddOnInsert(childKey, 1))
	root, _ := tx.GetRecord(rootKey)
	require.Zero(t, root.Hash)
	require.EqualValues(t, 1, root.DescendantCount)

	e.Mode = Rolling
	require.NoError(t, e.AddOnInsert(childKey, 1))
	root, _ = tx.GetRecord(rootKey)
	require.NotZero(t, root.Hash)
	require.EqualValues(t, 2, root.DescendantCount)
}

func TestAdjustDescendantCountWalksToRootUnderEveryMode(t *testing.T) {
	for _, mode := range []Mode{None, Rolling, Postorder} {
		tx, rootKey, childKey := buildParentChild(t)
		e := New(tx, mode)
		require.NoError(t, e.AdjustDescendantCount(rootKey, 3))
		root, _ := tx.GetRecord(rootKey)
		require.EqualValues(t, 3, root.DescendantCount)

		require.NoError(t, e.AdjustDescendantCount(rootKey, -2))
		root, _ = tx.GetRecord(rootKey)
		require.EqualValues(t, 1, root.DescendantCount)
		_ = childKey
	}
}

func TestPostorderMatchesRecomputeNodeHash(t *testing.T) {
	tx, rootKey, childKey := buildParentChild(t)
	e := New(tx, Postorder)

	childHash, err := e.Postorder(childKey)
	require.NoError(t, err)
	rootHash, err := e.RecomputeNodeHash(rootKey)
	require.NoError(t, err)

	child, _ := tx.GetRecord(childKey)
	require.Equal(t, childHash, child.Hash)
	require.Equal(t, rootHash, childHash*Prime+Image(mustGet(t, tx, rootKey)))
}

func TestRiseToRootPropagatesAfterLocalRecompute(t *testing.T) {
	tx, rootKey, childKey := buildParentChild(t)
	e := New(tx, Postorder)
	_, err := e.RecomputeNodeHash(childKey)
	require.NoError(t, err)
	require.NoError(t, e.RiseToRoot(childKey))

	root, _ := tx.GetRecord(rootKey)
	child, _ := tx.GetRecord(childKey)
	require.Equal(t, child.Hash*Prime+Image(mustGet(t, tx, rootKey)), root.Hash)
}

func TestRemoveOnRemoveUndoesAddOnInsert(t *testing.T) {
	tx, rootKey, childKey := buildParentChild(t)
	e := New(tx, Rolling)
	require.NoError(t, e.AddOnInsert(childKey, 1))

	child, _ := tx.GetRecord(childKey)
	require.NoError(t, e.RemoveOnRemove(rootKey, child.Hash, 0))

	root, _ := tx.GetRecord(rootKey)
	require.Zero(t, root.Hash)
}

func mustGet(t *testing.T, tx pagetx.PageTx, key xdm.NodeKey) *xdm.Record {
	t.Helper()
	rec, ok := tx.GetRecord(key)
	require.True(t, ok)
	return rec
}
