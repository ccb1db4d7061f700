package wtx

import (
	"github.com/xdmtree/xdmtree/hashing"
	"github.com/xdmtree/xdmtree/xdm"
	"github.com/xdmtree/xdmtree/xdmerr"
	"github.com/xdmtree/xdmtree/xdmindex"
)

// Remove deletes the cursor node and its entire subtree, merging the
// resulting gap's neighbours back together if they are both text nodes.
// The cursor moves to the merged text node when a merge happens, otherwise
// to the former parent.
func (t *Trx) Remove() error {
	if err := t.checkAccessAndCommit(); err != nil {
		return err
	}
	rec, err := t.currentRecord()
	if err != nil {
		return err
	}
	if rec.Kind == xdm.KindDocument {
		return xdmerr.New(xdmerr.Usage, "wtx: cannot remove the document root")
	}

	switch rec.Kind {
	case xdm.KindAttribute:
		return t.removeAttribute(rec)
	case xdm.KindNamespace:
		return t.removeNamespace(rec)
	default:
		return t.removeStructural(rec)
	}
}

func (t *Trx) removeAttribute(rec *xdm.Record) error {
	parent := rec.Parent
	if err := t.detachAttribute(parent, rec.Key); err != nil {
		return err
	}
	desc := rec.DescendantCount
	hash := rec.Hash
	pathKey := rec.PathNodeKey
	kind := rec.Kind
	if err := t.tx.RemoveEntry(rec.Key); err != nil {
		return err
	}
	if err := t.foldHashOnRemove(parent, hash, desc); err != nil {
		return err
	}
	t.paths.Remove(rec, kind, pathKey)
	t.index.NotifyChange(xdmindex.Delete, rec, pathKey)
	t.bumpModCount()
	t.cursor = parent
	return nil
}

func (t *Trx) removeNamespace(rec *xdm.Record) error {
	parent := rec.Parent
	if err := t.detachNamespace(parent, rec.Key); err != nil {
		return err
	}
	desc := rec.DescendantCount
	hash := rec.Hash
	if err := t.tx.RemoveEntry(rec.Key); err != nil {
		return err
	}
	if err := t.foldHashOnRemove(parent, hash, desc); err != nil {
		return err
	}
	t.index.NotifyChange(xdmindex.Delete, rec, 0)
	t.bumpModCount()
	t.cursor = parent
	return nil
}

func (t *Trx) removeStructural(rec *xdm.Record) error {
	left, right := rec.LeftSibling, rec.RightSibling
	parent, err := t.unlinkStructural(rec.Key)
	if err != nil {
		return err
	}
	desc := rec.DescendantCount
	hash := rec.Hash
	pathKey := rec.PathNodeKey
	kind := rec.Kind

	if err := t.removeSubtreeEntries(rec.Key); err != nil {
		return err
	}
	if err := t.foldHashOnRemove(parent, hash, desc); err != nil {
		return err
	}
	t.paths.Remove(rec, kind, pathKey)
	t.index.NotifyChange(xdmindex.Delete, rec, pathKey)
	t.bumpModCount()

	if merged, err := t.mergeIfAdjacentText(left, right); err != nil {
		return err
	} else if merged != xdm.NilKey {
		t.cursor = merged
		return nil
	}
	t.cursor = parent
	return nil
}

// removeSubtreeEntries deletes key and every descendant (structural,
// attribute and namespace) from the page, depth first.
func (t *Trx) removeSubtreeEntries(key xdm.NodeKey) error {
	rec, ok := t.tx.GetRecord(key)
	if !ok {
		return nil
	}
	for _, a := range append([]xdm.NodeKey(nil), rec.AttributeKeys...) {
		if err := t.tx.RemoveEntry(a); err != nil {
			return err
		}
	}
	for _, n := range append([]xdm.NodeKey(nil), rec.NamespaceKeys...) {
		if err := t.tx.RemoveEntry(n); err != nil {
			return err
		}
	}
	for c := rec.FirstChild; c != xdm.NilKey; {
		cr, ok := t.tx.GetRecord(c)
		if !ok {
			break
		}
		next := cr.RightSibling
		if err := t.removeSubtreeEntries(c); err != nil {
			return err
		}
		c = next
	}
	return t.tx.RemoveEntry(key)
}

// foldHashOnRemove adjusts descendant counts up the ancestor chain
// unconditionally (via RemoveOnRemove), then dispatches the hash fold
// itself by mode: ROLLING folds in place (done by RemoveOnRemove above),
// POSTORDER recomputes from the parent up, NONE does nothing further.
func (t *Trx) foldHashOnRemove(parent xdm.NodeKey, removedHash int64, removedDescendants uint64) error {
	if err := t.hash.RemoveOnRemove(parent, removedHash, removedDescendants); err != nil {
		return err
	}
	if t.hash.Mode != hashing.Postorder {
		return nil
	}
	if _, err := t.hash.RecomputeNodeHash(parent); err != nil {
		return err
	}
	return t.hash.RiseToRoot(parent)
}
