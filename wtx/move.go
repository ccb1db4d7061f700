package wtx

import (
	"github.com/xdmtree/xdmtree/dewey"
	"github.com/xdmtree/xdmtree/hashing"
	"github.com/xdmtree/xdmtree/pathsummary"
	"github.com/xdmtree/xdmtree/xdm"
	"github.com/xdmtree/xdmtree/xdmerr"
	"github.com/xdmtree/xdmtree/xdmindex"
)

// MoveSubtreeTo relocates the cursor's subtree to pos relative to
// destKey, rejecting a move into the mover's own subtree or onto itself.
// A move whose destination shares the source's parent is a same-level
// reorder (MovedOnSameLevel); any other destination is a
// cross-parent move (Moved), both reported to the path summary.
func (t *Trx) MoveSubtreeTo(destKey xdm.NodeKey, pos InsertPos) error {
	if err := t.checkAccessAndCommit(); err != nil {
		return err
	}
	srcKey := t.cursor
	rec, err := t.currentRecord()
	if err != nil {
		return err
	}
	if rec.Kind == xdm.KindDocument {
		return xdmerr.New(xdmerr.Usage, "wtx: cannot move the document root")
	}
	if !rec.Kind.IsStructural() {
		return xdmerr.New(xdmerr.Usage, "wtx: move_subtree_to requires a structural current node")
	}
	if srcKey == destKey {
		return xdmerr.New(xdmerr.Argument, "wtx: cannot move a node to itself")
	}
	isAncestor, err := t.isAncestorOf(srcKey, destKey)
	if err != nil {
		return err
	}
	if isAncestor {
		return xdmerr.New(xdmerr.Usage, "wtx: cannot move a subtree into itself")
	}

	oldParent := rec.Parent
	sameLevel := false
	if dest, ok := t.tx.GetRecord(destKey); ok {
		if !dest.Kind.IsStructural() {
			return xdmerr.New(xdmerr.Usage, "wtx: move_subtree_to requires a structural destination")
		}
		destParent := dest.Key
		if pos != AsFirstChild {
			destParent = dest.Parent
		}
		sameLevel = destParent == oldParent
	}

	t.notifySubtreeChange(xdmindex.Delete, srcKey)

	left, right := rec.LeftSibling, rec.RightSibling
	if _, err := t.unlinkStructural(srcKey); err != nil {
		return err
	}
	if _, err := t.mergeIfAdjacentText(left, right); err != nil {
		return err
	}

	// the node is being relinked, not freshly created: go through
	// copy-on-write so the previous revision's page is never mutated in
	// place.
	editable, err := t.tx.PrepareEntryForModification(srcKey)
	if err != nil {
		return err
	}
	editable.LeftSibling, editable.RightSibling = xdm.NilKey, xdm.NilKey
	if err := t.tx.RemoveEntry(srcKey); err != nil {
		return err
	}
	newParent, err := t.spliceStructural(destKey, pos, editable)
	if err != nil {
		return err
	}
	rec = editable
	if err := t.reassignDescendantDewey(rec.Key); err != nil {
		return err
	}
	t.notifySubtreeChange(xdmindex.Insert, rec.Key)

	op := pathsummary.Moved
	if sameLevel {
		op = pathsummary.MovedOnSameLevel
	}
	t.paths.AdaptPathForChangedNode(rec, xdm.Name{}, rec.URIKey, rec.PrefixKey, rec.LocalNameKey, op)

	if err := t.foldHashOnMove(oldParent, newParent, rec.Key, rec.DescendantCount); err != nil {
		return err
	}
	t.bumpModCount()
	t.cursor = rec.Key
	return nil
}

// isAncestorOf reports whether candidate is srcKey itself or a descendant
// of it, walking up from candidate to the root.
func (t *Trx) isAncestorOf(srcKey, candidate xdm.NodeKey) (bool, error) {
	for node := candidate; node != xdm.NilKey; {
		if node == srcKey {
			return true, nil
		}
		rec, ok := t.tx.GetRecord(node)
		if !ok {
			return false, xdmerr.New(xdmerr.State, "wtx: node %d missing during ancestor check", node)
		}
		node = rec.Parent
	}
	return false, nil
}

// reassignDescendantDewey recomputes the DeweyID of every attribute,
// namespace and structural descendant of key relative to key's own
// (already-correct, freshly assigned) DeweyID — a cross-parent move always
// gets fresh descendant ids derived from the new root, rather than
// reusing ids computed against the old ancestor chain.
func (t *Trx) reassignDescendantDewey(key xdm.NodeKey) error {
	if !t.deweyEnabled {
		return nil
	}
	rec, ok := t.tx.GetRecord(key)
	if !ok {
		return xdmerr.New(xdmerr.State, "wtx: node %d missing", key)
	}

	for _, a := range rec.AttributeKeys {
		ar, err := t.tx.PrepareEntryForModification(a)
		if err != nil {
			return err
		}
		ar.Dewey = rec.Dewey.NewAttribute()
	}
	for _, n := range rec.NamespaceKeys {
		nr, err := t.tx.PrepareEntryForModification(n)
		if err != nil {
			return err
		}
		nr.Dewey = rec.Dewey.NewNamespace()
	}

	var prevID dewey.ID
	for child := rec.FirstChild; child != xdm.NilKey; {
		cr, err := t.tx.PrepareEntryForModification(child)
		if err != nil {
			return err
		}
		if prevID == nil {
			cr.Dewey = rec.Dewey.NewChild()
		} else {
			id, err := dewey.NewBetween(prevID, nil)
			if err != nil {
				return xdmerr.Wrap(xdmerr.IO, err, "wtx: dewey assignment failed")
			}
			cr.Dewey = id
		}
		prevID = cr.Dewey
		next := cr.RightSibling
		if err := t.reassignDescendantDewey(child); err != nil {
			return err
		}
		child = next
	}
	return nil
}

// notifySubtreeChange walks the subtree rooted at key in document order —
// the node itself, then its attributes, then its namespaces, then each
// structural child in turn — notifying the index of change for every node
// along the way. Used by MoveSubtreeTo to report the full set of
// attribute/namespace/text/comment/PI/element nodes a move displaces and
// relocates, the same way InsertSubtreeAs and CopySubtreeAs already do for
// bulk insert and copy.
func (t *Trx) notifySubtreeChange(change xdmindex.ChangeType, key xdm.NodeKey) {
	rec, ok := t.tx.GetRecord(key)
	if !ok {
		return
	}
	t.index.NotifyChange(change, rec, rec.PathNodeKey)
	for _, a := range rec.AttributeKeys {
		if ar, ok := t.tx.GetRecord(a); ok {
			t.index.NotifyChange(change, ar, ar.PathNodeKey)
		}
	}
	for _, n := range rec.NamespaceKeys {
		if nr, ok := t.tx.GetRecord(n); ok {
			t.index.NotifyChange(change, nr, 0)
		}
	}
	for c := rec.FirstChild; c != xdm.NilKey; {
		cr, ok := t.tx.GetRecord(c)
		if !ok {
			break
		}
		t.notifySubtreeChange(change, c)
		c = cr.RightSibling
	}
}

// foldHashOnMove adjusts descendant counts on both the old and new ancestor
// chains unconditionally (via RemoveOnRemove/FoldSubtreeInsert), then
// dispatches the hash fold itself by mode: ROLLING folds in place (done by
// those two calls above), POSTORDER rises from both chains instead, NONE
// does nothing further.
func (t *Trx) foldHashOnMove(oldParent, newParent, movedKey xdm.NodeKey, movedDescendants uint64) error {
	rec, ok := t.tx.GetRecord(movedKey)
	if !ok {
		return xdmerr.New(xdmerr.State, "wtx: moved node %d missing", movedKey)
	}
	if err := t.hash.RemoveOnRemove(oldParent, rec.Hash, movedDescendants); err != nil {
		return err
	}
	if err := t.hash.FoldSubtreeInsert(movedKey, movedDescendants); err != nil {
		return err
	}
	if t.hash.Mode != hashing.Postorder {
		return nil
	}
	if _, err := t.hash.RecomputeNodeHash(oldParent); err != nil {
		return err
	}
	if err := t.hash.RiseToRoot(oldParent); err != nil {
		return err
	}
	if _, err := t.hash.RecomputeNodeHash(newParent); err != nil {
		return err
	}
	return t.hash.RiseToRoot(newParent)
}
