package wtx

import (
	"github.com/xdmtree/xdmtree/xdm"
	"github.com/xdmtree/xdmtree/xdmerr"
	"github.com/xdmtree/xdmtree/xdmindex"
)

// CopySubtreeAs deep-copies srcKey's subtree (fresh node keys throughout)
// and inserts the copy at pos relative to the cursor. The cursor ends on
// the copy's root.
func (t *Trx) CopySubtreeAs(pos InsertPos, srcKey xdm.NodeKey) (xdm.NodeKey, error) {
	if err := t.checkAccessAndCommit(); err != nil {
		return xdm.NilKey, err
	}
	src, ok := t.tx.GetRecord(srcKey)
	if !ok {
		return xdm.NilKey, xdmerr.New(xdmerr.State, "wtx: no node for key %d", srcKey)
	}
	if !src.Kind.IsStructural() {
		return xdm.NilKey, xdmerr.New(xdmerr.Usage, "wtx: copy_subtree_as requires a structural source node")
	}

	rootKey, descendants, err := t.copyStructural(srcKey, t.cursor, pos)
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

// copyStructural recursively duplicates the structural node at srcKey
// (plus its attributes/namespaces) under anchorKey at pos, returning the
// new root key and its descendant count.
func (t *Trx) copyStructural(srcKey, anchorKey xdm.NodeKey, pos InsertPos) (xdm.NodeKey, uint64, error) {
	src, ok := t.tx.GetRecord(srcKey)
	if !ok {
		return xdm.NilKey, 0, xdmerr.New(xdmerr.State, "wtx: no node for key %d", srcKey)
	}

	rec := src.Clone()
	rec.Key = t.tx.AllocateKey()
	rec.Parent, rec.FirstChild, rec.LeftSibling, rec.RightSibling = xdm.NilKey, xdm.NilKey, xdm.NilKey, xdm.NilKey
	rec.ChildCount, rec.DescendantCount, rec.Hash = 0, 0, 0
	rec.AttributeKeys, rec.NamespaceKeys = nil, nil
	rec.Dewey = nil

	if _, err := t.spliceStructural(anchorKey, pos, rec); err != nil {
		return xdm.NilKey, 0, err
	}
	t.index.NotifyChange(xdmindex.Insert, rec, rec.PathNodeKey)

	for _, a := range src.AttributeKeys {
		ar, ok := t.tx.GetRecord(a)
		if !ok {
			continue
		}
		cp := ar.Clone()
		cp.Key = t.tx.AllocateKey()
		cp.Dewey = nil
		if err := t.attachAttribute(rec.Key, cp); err != nil {
			return xdm.NilKey, 0, err
		}
		t.index.NotifyChange(xdmindex.Insert, cp, cp.PathNodeKey)
	}
	for _, n := range src.NamespaceKeys {
		nr, ok := t.tx.GetRecord(n)
		if !ok {
			continue
		}
		cp := nr.Clone()
		cp.Key = t.tx.AllocateKey()
		cp.Dewey = nil
		if err := t.attachNamespace(rec.Key, cp); err != nil {
			return xdm.NilKey, 0, err
		}
		t.index.NotifyChange(xdmindex.Insert, cp, 0)
	}

	var descendants uint64
	anchor, childPos := rec.Key, AsFirstChild
	for c := src.FirstChild; c != xdm.NilKey; {
		cr, ok := t.tx.GetRecord(c)
		if !ok {
			break
		}
		newChild, childDesc, err := t.copyStructural(c, anchor, childPos)
		if err != nil {
			return xdm.NilKey, 0, err
		}
		anchor = newChild
		descendants += childDesc + 1
		childPos = AsRightSibling
		c = cr.RightSibling
	}
	return rec.Key, descendants, nil
}
