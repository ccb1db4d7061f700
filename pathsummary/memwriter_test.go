package pathsummary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdmtree/xdmtree/xdm"
)

func TestGetPathNodeKeyInternsConsistentlyPerName(t *testing.T) {
	w := NewMemWriter()
	k1 := w.GetPathNodeKey(xdm.Name{Local: "book"}, xdm.KindElement)
	k2 := w.GetPathNodeKey(xdm.Name{Local: "book"}, xdm.KindElement)
	k3 := w.GetPathNodeKey(xdm.Name{Local: "title"}, xdm.KindElement)

	require.Equal(t, k1, k2)
	require.NotEqual(t, k1, k3)
}

func TestExistsReflectsInternedNames(t *testing.T) {
	w := NewMemWriter()
	require.False(t, w.GetPathSummary().Exists("book"))

	w.GetPathNodeKey(xdm.Name{Local: "book"}, xdm.KindElement)
	require.True(t, w.GetPathSummary().Exists("book"))
	require.True(t, w.GetPathSummary().Exists("/book"))
	require.False(t, w.GetPathSummary().Exists("title"))
}

func TestAdaptPathForChangedNodeUpdatesPathNodeKeyOnRenameAndMove(t *testing.T) {
	w := NewMemWriter()
	node := &xdm.Record{PathNodeKey: w.GetPathNodeKey(xdm.Name{Local: "book"}, xdm.KindElement)}

	w.AdaptPathForChangedNode(node, xdm.Name{Local: "paperback"}, 0, 0, 0, SetName)
	require.True(t, w.GetPathSummary().Exists("paperback"))
	require.Equal(t, w.GetPathNodeKey(xdm.Name{Local: "paperback"}, xdm.KindElement), node.PathNodeKey)
}

func TestAdaptPathForChangedNodeIsNoOpOnSameLevelMove(t *testing.T) {
	w := NewMemWriter()
	original := w.GetPathNodeKey(xdm.Name{Local: "book"}, xdm.KindElement)
	node := &xdm.Record{PathNodeKey: original}

	w.AdaptPathForChangedNode(node, xdm.Name{Local: "book"}, 0, 0, 0, MovedOnSameLevel)
	require.Equal(t, original, node.PathNodeKey)
}
