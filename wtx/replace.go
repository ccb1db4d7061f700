package wtx

import (
	"github.com/xdmtree/xdmtree/events"
	"github.com/xdmtree/xdmtree/xdm"
	"github.com/xdmtree/xdmtree/xdmerr"
	"github.com/xdmtree/xdmtree/xdmindex"
)

// ReplaceNode replaces the cursor's subtree with a freshly-built one read
// from r, preserving the removed node's structural position. The cursor
// ends on the new subtree's root.
func (t *Trx) ReplaceNode(r events.Reader) (xdm.NodeKey, error) {
	if err := t.checkAccessAndCommit(); err != nil {
		return xdm.NilKey, err
	}
	rec, err := t.currentRecord()
	if err != nil {
		return xdm.NilKey, err
	}
	if rec.Kind == xdm.KindDocument {
		return xdm.NilKey, xdmerr.New(xdmerr.Usage, "wtx: cannot replace the document root")
	}
	if !rec.Kind.IsStructural() {
		return xdm.NilKey, xdmerr.New(xdmerr.Usage, "wtx: replace_node requires a structural current node")
	}

	left, parent := rec.LeftSibling, rec.Parent
	desc := rec.DescendantCount
	hash := rec.Hash
	pathKey := rec.PathNodeKey
	kind := rec.Kind

	if _, err := t.unlinkStructural(rec.Key); err != nil {
		return xdm.NilKey, err
	}
	if err := t.removeSubtreeEntries(rec.Key); err != nil {
		return xdm.NilKey, err
	}
	if err := t.foldHashOnRemove(parent, hash, desc); err != nil {
		return xdm.NilKey, err
	}
	t.paths.Remove(rec, kind, pathKey)
	t.index.NotifyChange(xdmindex.Delete, rec, pathKey)

	var anchor xdm.NodeKey
	var pos InsertPos
	if left != xdm.NilKey {
		anchor, pos = left, AsRightSibling
	} else {
		anchor, pos = parent, AsFirstChild
	}

	rootKey, descendants, err := t.buildSubtree(anchor, pos, r)
	if err != nil {
		return xdm.NilKey, err
	}
	if err := t.foldHashOnSubtreeInsert(rootKey, descendants); err != nil {
		return xdm.NilKey, err
	}
	t.bumpModCount()
	t.cursor = rootKey
	return rootKey, nil
}
