package wtx

import (
	"github.com/xdmtree/xdmtree/dewey"
	"github.com/xdmtree/xdmtree/xdm"
	"github.com/xdmtree/xdmtree/xdmerr"
)

// neighbourDewey returns the existing left/right DeweyIDs a freshly spliced
// node at pos relative to anchor should be sandwiched between, so
// dewey.NewBetween can place it.
func (t *Trx) neighbourDewey(anchorKey xdm.NodeKey, pos InsertPos) (left, right dewey.ID, err error) {
	if !t.deweyEnabled {
		return nil, nil, nil
	}
	anchor, ok := t.tx.GetRecord(anchorKey)
	if !ok {
		return nil, nil, xdmerr.New(xdmerr.State, "wtx: anchor %d missing", anchorKey)
	}
	switch pos {
	case AsFirstChild:
		if anchor.FirstChild == xdm.NilKey {
			return nil, nil, nil // caller uses anchor.Dewey.NewChild()
		}
		fc, ok := t.tx.GetRecord(anchor.FirstChild)
		if !ok {
			return nil, nil, xdmerr.New(xdmerr.State, "wtx: first child missing")
		}
		return nil, fc.Dewey, nil
	case AsLeftSibling:
		var l dewey.ID
		if anchor.LeftSibling != xdm.NilKey {
			lr, ok := t.tx.GetRecord(anchor.LeftSibling)
			if ok {
				l = lr.Dewey
			}
		}
		return l, anchor.Dewey, nil
	case AsRightSibling:
		var r dewey.ID
		if anchor.RightSibling != xdm.NilKey {
			rr, ok := t.tx.GetRecord(anchor.RightSibling)
			if ok {
				r = rr.Dewey
			}
		}
		return anchor.Dewey, r, nil
	}
	return nil, nil, xdmerr.New(xdmerr.Argument, "wtx: unknown position %d", pos)
}

// assignDewey computes and stores the DeweyID for a node about to be spliced
// at pos relative to anchor, before the pointer surgery runs (it needs the
// anchor's pre-splice neighbours).
func (t *Trx) assignDewey(rec *xdm.Record, anchorKey xdm.NodeKey, pos InsertPos) error {
	if !t.deweyEnabled {
		return nil
	}
	left, right, err := t.neighbourDewey(anchorKey, pos)
	if err != nil {
		return err
	}
	if pos == AsFirstChild && left == nil && right == nil {
		anchor, ok := t.tx.GetRecord(anchorKey)
		if !ok {
			return xdmerr.New(xdmerr.State, "wtx: anchor %d missing", anchorKey)
		}
		if anchor.Dewey == nil {
			// defensive: the document root is assigned dewey.Root() at
			// resource bootstrap, so every anchor should already carry an
			// id by the time anything is spliced under it.
			return xdmerr.New(xdmerr.State, "wtx: anchor %d has no dewey id", anchorKey)
		}
		rec.Dewey = anchor.Dewey.NewChild()
		return nil
	}
	id, err := dewey.NewBetween(left, right)
	if err != nil {
		return xdmerr.Wrap(xdmerr.IO, err, "wtx: dewey assignment failed")
	}
	rec.Dewey = id
	return nil
}

// spliceStructural links a freshly-created structural node into the
// first-child/sibling chain at pos relative to anchorKey, and returns the
// effective parent (for hash folding).
func (t *Trx) spliceStructural(anchorKey xdm.NodeKey, pos InsertPos, rec *xdm.Record) (parent xdm.NodeKey, err error) {
	if err := t.assignDewey(rec, anchorKey, pos); err != nil {
		return xdm.NilKey, err
	}
	anchor, err := t.tx.PrepareEntryForModification(anchorKey)
	if err != nil {
		return xdm.NilKey, err
	}

	switch pos {
	case AsFirstChild:
		rec.Parent = anchorKey
		rec.RightSibling = anchor.FirstChild
		if anchor.FirstChild != xdm.NilKey {
			old, err := t.tx.PrepareEntryForModification(anchor.FirstChild)
			if err != nil {
				return xdm.NilKey, err
			}
			old.LeftSibling = rec.Key
		}
		anchor.FirstChild = rec.Key
		anchor.ChildCount++
		parent = anchorKey

	case AsLeftSibling:
		rec.Parent = anchor.Parent
		rec.LeftSibling = anchor.LeftSibling
		rec.RightSibling = anchorKey
		anchor.LeftSibling = rec.Key
		if rec.LeftSibling != xdm.NilKey {
			old, err := t.tx.PrepareEntryForModification(rec.LeftSibling)
			if err != nil {
				return xdm.NilKey, err
			}
			old.RightSibling = rec.Key
		}
		if anchor.Parent != xdm.NilKey {
			p, err := t.tx.PrepareEntryForModification(anchor.Parent)
			if err != nil {
				return xdm.NilKey, err
			}
			if rec.LeftSibling == xdm.NilKey {
				p.FirstChild = rec.Key
			}
			p.ChildCount++
		}
		parent = anchor.Parent

	case AsRightSibling:
		rec.Parent = anchor.Parent
		rec.LeftSibling = anchorKey
		rec.RightSibling = anchor.RightSibling
		anchor.RightSibling = rec.Key
		if rec.RightSibling != xdm.NilKey {
			old, err := t.tx.PrepareEntryForModification(rec.RightSibling)
			if err != nil {
				return xdm.NilKey, err
			}
			old.LeftSibling = rec.Key
		}
		if anchor.Parent != xdm.NilKey {
			p, err := t.tx.PrepareEntryForModification(anchor.Parent)
			if err != nil {
				return xdm.NilKey, err
			}
			p.ChildCount++
		}
		parent = anchor.Parent

	default:
		return xdm.NilKey, xdmerr.New(xdmerr.Argument, "wtx: unknown position %d", pos)
	}

	if err := t.tx.InsertEntry(rec); err != nil {
		return xdm.NilKey, err
	}
	return parent, nil
}

// unlinkStructural removes key from the first-child/sibling chain (the
// record itself is left in the page for the caller to RemoveEntry) and
// returns its former parent.
func (t *Trx) unlinkStructural(key xdm.NodeKey) (parent xdm.NodeKey, err error) {
	rec, ok := t.tx.GetRecord(key)
	if !ok {
		return xdm.NilKey, xdmerr.New(xdmerr.State, "wtx: no node for key %d", key)
	}
	if rec.LeftSibling != xdm.NilKey {
		l, err := t.tx.PrepareEntryForModification(rec.LeftSibling)
		if err != nil {
			return xdm.NilKey, err
		}
		l.RightSibling = rec.RightSibling
	} else if rec.Parent != xdm.NilKey {
		p, err := t.tx.PrepareEntryForModification(rec.Parent)
		if err != nil {
			return xdm.NilKey, err
		}
		p.FirstChild = rec.RightSibling
	}
	if rec.RightSibling != xdm.NilKey {
		r, err := t.tx.PrepareEntryForModification(rec.RightSibling)
		if err != nil {
			return xdm.NilKey, err
		}
		r.LeftSibling = rec.LeftSibling
	}
	if rec.Parent != xdm.NilKey {
		p, err := t.tx.PrepareEntryForModification(rec.Parent)
		if err != nil {
			return xdm.NilKey, err
		}
		if p.ChildCount > 0 {
			p.ChildCount--
		}
	}
	return rec.Parent, nil
}

// attachAttribute appends rec (already allocated) to elemKey's attribute
// list, assigning it a DeweyID child of the element and installing its
// Parent pointer. Duplicate-name checking is the caller's responsibility,
// before allocating rec.
func (t *Trx) attachAttribute(elemKey xdm.NodeKey, rec *xdm.Record) error {
	elem, err := t.tx.PrepareEntryForModification(elemKey)
	if err != nil {
		return err
	}
	rec.Parent = elemKey
	if t.deweyEnabled {
		if len(elem.AttributeKeys) == 0 {
			rec.Dewey = elem.Dewey.NewAttribute()
		} else {
			last, ok := t.tx.GetRecord(elem.AttributeKeys[len(elem.AttributeKeys)-1])
			if !ok {
				return xdmerr.New(xdmerr.State, "wtx: attribute bookkeeping corrupt")
			}
			id, err := dewey.NewBetween(last.Dewey, nil)
			if err != nil {
				return xdmerr.Wrap(xdmerr.IO, err, "wtx: dewey assignment failed")
			}
			rec.Dewey = id
		}
	}
	elem.AttributeKeys = append(elem.AttributeKeys, rec.Key)
	return t.tx.InsertEntry(rec)
}

// attachNamespace is attachAttribute's namespace-list counterpart.
func (t *Trx) attachNamespace(elemKey xdm.NodeKey, rec *xdm.Record) error {
	elem, err := t.tx.PrepareEntryForModification(elemKey)
	if err != nil {
		return err
	}
	rec.Parent = elemKey
	if t.deweyEnabled {
		if len(elem.NamespaceKeys) == 0 {
			rec.Dewey = elem.Dewey.NewNamespace()
		} else {
			last, ok := t.tx.GetRecord(elem.NamespaceKeys[len(elem.NamespaceKeys)-1])
			if !ok {
				return xdmerr.New(xdmerr.State, "wtx: namespace bookkeeping corrupt")
			}
			id, err := dewey.NewBetween(last.Dewey, nil)
			if err != nil {
				return xdmerr.Wrap(xdmerr.IO, err, "wtx: dewey assignment failed")
			}
			rec.Dewey = id
		}
	}
	elem.NamespaceKeys = append(elem.NamespaceKeys, rec.Key)
	return t.tx.InsertEntry(rec)
}

// detachAttribute removes key from elemKey's attribute list (the record
// itself is removed from the page by the caller).
func (t *Trx) detachAttribute(elemKey xdm.NodeKey, key xdm.NodeKey) error {
	elem, err := t.tx.PrepareEntryForModification(elemKey)
	if err != nil {
		return err
	}
	for i, k := range elem.AttributeKeys {
		if k == key {
			elem.AttributeKeys = append(elem.AttributeKeys[:i], elem.AttributeKeys[i+1:]...)
			return nil
		}
	}
	return xdmerr.New(xdmerr.State, "wtx: attribute %d not found on element %d", key, elemKey)
}

// detachNamespace is detachAttribute's namespace-list counterpart.
func (t *Trx) detachNamespace(elemKey xdm.NodeKey, key xdm.NodeKey) error {
	elem, err := t.tx.PrepareEntryForModification(elemKey)
	if err != nil {
		return err
	}
	for i, k := range elem.NamespaceKeys {
		if k == key {
			elem.NamespaceKeys = append(elem.NamespaceKeys[:i], elem.NamespaceKeys[i+1:]...)
			return nil
		}
	}
	return xdmerr.New(xdmerr.State, "wtx: namespace %d not found on element %d", key, elemKey)
}

// mergeIfAdjacentText collapses two adjacent text-node siblings into one
// (I6: text nodes never sit directly next to another text node). left and
// right are candidate neighbours around a just-removed or just-spliced
// position; at most one merge happens. Returns the surviving key, or
// NilKey if no merge occurred.
func (t *Trx) mergeIfAdjacentText(left, right xdm.NodeKey) (xdm.NodeKey, error) {
	if left == xdm.NilKey || right == xdm.NilKey {
		return xdm.NilKey, nil
	}
	lr, ok := t.tx.GetRecord(left)
	if !ok || lr.Kind != xdm.KindText {
		return xdm.NilKey, nil
	}
	rr, ok := t.tx.GetRecord(right)
	if !ok || rr.Kind != xdm.KindText {
		return xdm.NilKey, nil
	}
	oldHash := lr.Hash
	merged, err := t.tx.PrepareEntryForModification(left)
	if err != nil {
		return xdm.NilKey, err
	}
	rrFull, ok := t.tx.GetRecord(right)
	if !ok {
		return xdm.NilKey, nil
	}
	merged.SetValue(append(append([]byte(nil), merged.DecodedValue()...), rrFull.DecodedValue()...))

	if _, err := t.unlinkStructural(right); err != nil {
		return xdm.NilKey, err
	}
	removedDesc := rrFull.DescendantCount
	if err := t.tx.RemoveEntry(right); err != nil {
		return xdm.NilKey, err
	}
	if err := t.foldHashOnRemove(merged.Parent, rrFull.Hash, removedDesc); err != nil {
		return xdm.NilKey, err
	}
	if err := t.foldHashOnRename(left, oldHash); err != nil {
		return xdm.NilKey, err
	}
	return left, nil
}
