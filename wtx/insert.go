package wtx

import (
	"github.com/xdmtree/xdmtree/events"
	"github.com/xdmtree/xdmtree/pathsummary"
	"github.com/xdmtree/xdmtree/xdm"
	"github.com/xdmtree/xdmtree/xdmerr"
	"github.com/xdmtree/xdmtree/xdmindex"
)

// InsertElementAs creates an element at pos relative to the cursor and
// moves the cursor onto it.
func (t *Trx) InsertElementAs(pos InsertPos, name xdm.Name) (xdm.NodeKey, error) {
	if err := t.checkAccessAndCommit(); err != nil {
		return xdm.NilKey, err
	}
	if err := name.Validate(); err != nil {
		return xdm.NilKey, err
	}
	uriKey := t.tx.CreateNameKey(xdm.Name{Local: name.URI}, xdm.KindNamespace)
	prefixKey := t.tx.CreateNameKey(xdm.Name{Local: name.Prefix}, xdm.KindElement)
	localKey := t.tx.CreateNameKey(xdm.Name{Local: name.Local}, xdm.KindElement)
	pathKey := t.paths.GetPathNodeKey(name, xdm.KindElement)

	rec := t.factory.NewElement(prefixKey, localKey, uriKey, pathKey)
	parent, err := t.spliceStructural(t.cursor, pos, rec)
	if err != nil {
		return xdm.NilKey, err
	}
	if err := t.foldHashOnInsert(rec.Key); err != nil {
		return xdm.NilKey, err
	}
	t.paths.AdaptPathForChangedNode(rec, name, uriKey, prefixKey, localKey, pathsummary.Inserted)
	t.index.NotifyChange(xdmindex.Insert, rec, pathKey)
	_ = parent
	t.bumpModCount()
	t.cursor = rec.Key
	return rec.Key, nil
}

// InsertTextAs creates a text node at pos relative to the cursor, merging
// into an adjacent text-node sibling instead when one exists, and moves
// the cursor onto the surviving node.
func (t *Trx) InsertTextAs(pos InsertPos, value []byte) (xdm.NodeKey, error) {
	if err := t.checkAccessAndCommit(); err != nil {
		return xdm.NilKey, err
	}
	if len(value) == 0 {
		return xdm.NilKey, xdmerr.New(xdmerr.Usage, "wtx: empty text value")
	}
	if merged, ok, err := t.tryMergeTextInsert(pos, value); err != nil {
		return xdm.NilKey, err
	} else if ok {
		t.cursor = merged
		return merged, nil
	}

	rec := t.factory.NewText(value)
	_, err := t.spliceStructural(t.cursor, pos, rec)
	if err != nil {
		return xdm.NilKey, err
	}
	if err := t.foldHashOnInsert(rec.Key); err != nil {
		return xdm.NilKey, err
	}
	t.index.NotifyChange(xdmindex.Insert, rec, 0)
	t.bumpModCount()
	t.cursor = rec.Key
	return rec.Key, nil
}

// tryMergeTextInsert checks whether the node that would end up adjacent to
// the new text node is itself a text node, and if so appends value to it
// directly instead of creating a new sibling.
func (t *Trx) tryMergeTextInsert(pos InsertPos, value []byte) (xdm.NodeKey, bool, error) {
	anchor, ok := t.tx.GetRecord(t.cursor)
	if !ok {
		return xdm.NilKey, false, xdmerr.New(xdmerr.State, "wtx: cursor %d missing", t.cursor)
	}
	var neighbour xdm.NodeKey
	prepend := false
	switch pos {
	case AsFirstChild:
		neighbour, prepend = anchor.FirstChild, true
	case AsLeftSibling:
		if anchor.Kind == xdm.KindText {
			neighbour, prepend = t.cursor, true
		} else {
			neighbour = anchor.LeftSibling
		}
	case AsRightSibling:
		if anchor.Kind == xdm.KindText {
			neighbour = t.cursor
		} else {
			neighbour, prepend = anchor.RightSibling, true
		}
	}
	if neighbour == xdm.NilKey {
		return xdm.NilKey, false, nil
	}
	nr, ok := t.tx.GetRecord(neighbour)
	if !ok || nr.Kind != xdm.KindText {
		return xdm.NilKey, false, nil
	}
	oldHash := nr.Hash
	rec, err := t.tx.PrepareEntryForModification(neighbour)
	if err != nil {
		return xdm.NilKey, false, err
	}
	if prepend {
		rec.SetValue(append(append([]byte(nil), value...), rec.DecodedValue()...))
	} else {
		rec.SetValue(append(append([]byte(nil), rec.DecodedValue()...), value...))
	}
	if err := t.foldHashOnRename(neighbour, oldHash); err != nil {
		return xdm.NilKey, false, err
	}
	t.bumpModCount()
	return neighbour, true, nil
}

// InsertCommentAs creates a comment node, enforcing I6's "--"/"-" content
// restriction.
func (t *Trx) InsertCommentAs(pos InsertPos, value string) (xdm.NodeKey, error) {
	if err := t.checkAccessAndCommit(); err != nil {
		return xdm.NilKey, err
	}
	if err := xdm.ValidateCommentContent(value); err != nil {
		return xdm.NilKey, err
	}
	rec := t.factory.NewComment([]byte(value))
	if _, err := t.spliceStructural(t.cursor, pos, rec); err != nil {
		return xdm.NilKey, err
	}
	if err := t.foldHashOnInsert(rec.Key); err != nil {
		return xdm.NilKey, err
	}
	t.index.NotifyChange(xdmindex.Insert, rec, 0)
	t.bumpModCount()
	t.cursor = rec.Key
	return rec.Key, nil
}

// InsertPIAs creates a processing-instruction node, enforcing I6's "?>-"
// content restriction.
func (t *Trx) InsertPIAs(pos InsertPos, target xdm.Name, content string) (xdm.NodeKey, error) {
	if err := t.checkAccessAndCommit(); err != nil {
		return xdm.NilKey, err
	}
	if err := xdm.ValidatePIContent(content); err != nil {
		return xdm.NilKey, err
	}
	localKey := t.tx.CreateNameKey(target, xdm.KindPI)
	pathKey := t.paths.GetPathNodeKey(target, xdm.KindPI)
	rec := t.factory.NewPI(0, localKey, 0, pathKey, []byte(content))
	if _, err := t.spliceStructural(t.cursor, pos, rec); err != nil {
		return xdm.NilKey, err
	}
	if err := t.foldHashOnInsert(rec.Key); err != nil {
		return xdm.NilKey, err
	}
	t.index.NotifyChange(xdmindex.Insert, rec, pathKey)
	t.bumpModCount()
	t.cursor = rec.Key
	return rec.Key, nil
}

// InsertAttribute adds an attribute to the cursor element, rejecting a
// duplicate (prefix, local) name per I7. The cursor does not move.
func (t *Trx) InsertAttribute(name xdm.Name, value []byte) (xdm.NodeKey, error) {
	if err := t.checkAccessAndCommit(); err != nil {
		return xdm.NilKey, err
	}
	elem, err := t.requireElement()
	if err != nil {
		return xdm.NilKey, err
	}
	if err := name.Validate(); err != nil {
		return xdm.NilKey, err
	}
	if err := t.checkNoDuplicateAttribute(elem, name); err != nil {
		return xdm.NilKey, err
	}
	uriKey := t.tx.CreateNameKey(xdm.Name{Local: name.URI}, xdm.KindNamespace)
	prefixKey := t.tx.CreateNameKey(xdm.Name{Local: name.Prefix}, xdm.KindAttribute)
	localKey := t.tx.CreateNameKey(xdm.Name{Local: name.Local}, xdm.KindAttribute)
	pathKey := t.paths.GetPathNodeKey(name, xdm.KindAttribute)

	rec := t.factory.NewAttribute(prefixKey, localKey, uriKey, pathKey, value)
	if err := t.attachAttribute(elem.Key, rec); err != nil {
		return xdm.NilKey, err
	}
	if err := t.foldHashOnInsert(rec.Key); err != nil {
		return xdm.NilKey, err
	}
	t.index.NotifyChange(xdmindex.Insert, rec, pathKey)
	t.bumpModCount()
	return rec.Key, nil
}

// InsertNamespace adds a namespace declaration to the cursor element,
// rejecting a duplicate prefix per I7. The cursor does not move.
func (t *Trx) InsertNamespace(prefix, uri string) (xdm.NodeKey, error) {
	if err := t.checkAccessAndCommit(); err != nil {
		return xdm.NilKey, err
	}
	elem, err := t.requireElement()
	if err != nil {
		return xdm.NilKey, err
	}
	for _, nsKey := range elem.NamespaceKeys {
		ns, ok := t.tx.GetRecord(nsKey)
		if ok && t.tx.LookupName(ns.PrefixKey) == prefix {
			return xdm.NilKey, xdmerr.New(xdmerr.Usage, "wtx: duplicate namespace prefix %q", prefix)
		}
	}
	uriKey := t.tx.CreateNameKey(xdm.Name{Local: uri}, xdm.KindNamespace)
	prefixKey := t.tx.CreateNameKey(xdm.Name{Local: prefix}, xdm.KindNamespace)
	rec := t.factory.NewNamespace(prefixKey, uriKey, 0)
	if err := t.attachNamespace(elem.Key, rec); err != nil {
		return xdm.NilKey, err
	}
	if err := t.foldHashOnInsert(rec.Key); err != nil {
		return xdm.NilKey, err
	}
	t.index.NotifyChange(xdmindex.Insert, rec, 0)
	t.bumpModCount()
	return rec.Key, nil
}

func (t *Trx) requireElement() (*xdm.Record, error) {
	rec, err := t.currentRecord()
	if err != nil {
		return nil, err
	}
	if rec.Kind != xdm.KindElement {
		return nil, xdmerr.New(xdmerr.Usage, "wtx: cursor is not an element")
	}
	return rec, nil
}

func (t *Trx) checkNoDuplicateAttribute(elem *xdm.Record, name xdm.Name) error {
	for _, aKey := range elem.AttributeKeys {
		a, ok := t.tx.GetRecord(aKey)
		if !ok {
			continue
		}
		existing := xdm.Name{
			Prefix: t.tx.LookupName(a.PrefixKey),
			Local:  t.tx.LookupName(a.LocalNameKey),
		}
		if xdm.SameQName(existing, name) {
			return xdmerr.New(xdmerr.Usage, "wtx: duplicate attribute %s", name)
		}
	}
	return nil
}

// InsertSubtreeAs bulk-inserts a whole subtree described by an event stream
// at pos relative to the cursor: nodes are created and linked without
// per-node rolling hash updates, the
// subtree is postorder-hashed once, and the result is folded into
// ancestors with a single FoldSubtreeInsert call.
func (t *Trx) InsertSubtreeAs(pos InsertPos, r events.Reader) (xdm.NodeKey, error) {
	if err := t.checkAccessAndCommit(); err != nil {
		return xdm.NilKey, err
	}
	rootKey, descendants, err := t.buildSubtree(t.cursor, pos, r)
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

// buildSubtree is a small recursive-descent parser over the event stream:
// it materializes one subtree and returns its root key and descendant
// count (not including the root itself).
func (t *Trx) buildSubtree(anchorKey xdm.NodeKey, pos InsertPos, r events.Reader) (xdm.NodeKey, uint64, error) {
	ev, ok := r.Next()
	if !ok {
		return xdm.NilKey, 0, xdmerr.New(xdmerr.Usage, "wtx: empty event stream")
	}
	switch ev.Kind {
	case events.StartElement:
		uriKey := t.tx.CreateNameKey(xdm.Name{Local: ev.Name.URI}, xdm.KindNamespace)
		prefixKey := t.tx.CreateNameKey(xdm.Name{Local: ev.Name.Prefix}, xdm.KindElement)
		localKey := t.tx.CreateNameKey(xdm.Name{Local: ev.Name.Local}, xdm.KindElement)
		pathKey := t.paths.GetPathNodeKey(ev.Name, xdm.KindElement)
		rec := t.factory.NewElement(prefixKey, localKey, uriKey, pathKey)
		if _, err := t.spliceStructural(anchorKey, pos, rec); err != nil {
			return xdm.NilKey, 0, err
		}
		t.index.NotifyChange(xdmindex.Insert, rec, pathKey)
		var descendants uint64
		childPos := AsFirstChild
		for {
			child, childCount, err := t.buildChildOrAttr(rec, childPos, r)
			if err != nil {
				return xdm.NilKey, 0, err
			}
			if child == endMarker {
				break
			}
			if child != xdm.NilKey {
				descendants += childCount + 1
				childPos = AsRightSibling
			}
		}
		return rec.Key, descendants, nil
	default:
		return t.buildLeaf(anchorKey, pos, ev)
	}
}

const endMarker = xdm.NodeKey(^uint64(0))

// buildChildOrAttr consumes one event: EndElement yields endMarker to stop
// the caller's loop, Attribute/Namespace attach directly to parent, any
// other leaf/subtree event recurses as a structural child.
func (t *Trx) buildChildOrAttr(parent *xdm.Record, pos InsertPos, r events.Reader) (xdm.NodeKey, uint64, error) {
	ev, ok := r.Next()
	if !ok {
		return xdm.NilKey, 0, xdmerr.New(xdmerr.Usage, "wtx: unterminated element in event stream")
	}
	switch ev.Kind {
	case events.EndElement:
		return endMarker, 0, nil
	case events.Attribute:
		uriKey := t.tx.CreateNameKey(xdm.Name{Local: ev.Name.URI}, xdm.KindNamespace)
		prefixKey := t.tx.CreateNameKey(xdm.Name{Local: ev.Name.Prefix}, xdm.KindAttribute)
		localKey := t.tx.CreateNameKey(xdm.Name{Local: ev.Name.Local}, xdm.KindAttribute)
		pathKey := t.paths.GetPathNodeKey(ev.Name, xdm.KindAttribute)
		rec := t.factory.NewAttribute(prefixKey, localKey, uriKey, pathKey, ev.Content)
		if err := t.attachAttribute(parent.Key, rec); err != nil {
			return xdm.NilKey, 0, err
		}
		t.index.NotifyChange(xdmindex.Insert, rec, pathKey)
		return xdm.NilKey, 0, nil
	case events.Namespace:
		prefixKey := t.tx.CreateNameKey(xdm.Name{Local: ev.Name.Prefix}, xdm.KindNamespace)
		uriKey := t.tx.CreateNameKey(xdm.Name{Local: ev.Name.URI}, xdm.KindNamespace)
		rec := t.factory.NewNamespace(prefixKey, uriKey, 0)
		if err := t.attachNamespace(parent.Key, rec); err != nil {
			return xdm.NilKey, 0, err
		}
		t.index.NotifyChange(xdmindex.Insert, rec, 0)
		return xdm.NilKey, 0, nil
	default:
		// later children go after the last child built so far
		anchor := parent.Key
		if pos == AsRightSibling {
			if pr, ok := t.tx.GetRecord(parent.Key); ok {
				for c := pr.FirstChild; c != xdm.NilKey; {
					cr, ok := t.tx.GetRecord(c)
					if !ok {
						break
					}
					anchor, c = c, cr.RightSibling
				}
			}
		}
		key, count, err := t.buildLeafOrNested(anchor, pos, ev, r)
		return key, count, err
	}
}

// buildLeafOrNested re-dispatches a non-attribute/namespace event the
// lookahead in buildChildOrAttr already consumed.
func (t *Trx) buildLeafOrNested(anchorKey xdm.NodeKey, pos InsertPos, ev events.Event, r events.Reader) (xdm.NodeKey, uint64, error) {
	if ev.Kind == events.StartElement {
		uriKey := t.tx.CreateNameKey(xdm.Name{Local: ev.Name.URI}, xdm.KindNamespace)
		prefixKey := t.tx.CreateNameKey(xdm.Name{Local: ev.Name.Prefix}, xdm.KindElement)
		localKey := t.tx.CreateNameKey(xdm.Name{Local: ev.Name.Local}, xdm.KindElement)
		pathKey := t.paths.GetPathNodeKey(ev.Name, xdm.KindElement)
		rec := t.factory.NewElement(prefixKey, localKey, uriKey, pathKey)
		if _, err := t.spliceStructural(anchorKey, pos, rec); err != nil {
			return xdm.NilKey, 0, err
		}
		t.index.NotifyChange(xdmindex.Insert, rec, pathKey)
		var descendants uint64
		childPos := AsFirstChild
		for {
			child, childCount, err := t.buildChildOrAttr(rec, childPos, r)
			if err != nil {
				return xdm.NilKey, 0, err
			}
			if child == endMarker {
				break
			}
			if child != xdm.NilKey {
				descendants += childCount + 1
				childPos = AsRightSibling
			}
		}
		return rec.Key, descendants, nil
	}
	return t.buildLeaf(anchorKey, pos, ev)
}

func (t *Trx) buildLeaf(anchorKey xdm.NodeKey, pos InsertPos, ev events.Event) (xdm.NodeKey, uint64, error) {
	var rec *xdm.Record
	var pathKey uint64
	switch ev.Kind {
	case events.Text:
		rec = t.factory.NewText(ev.Content)
	case events.Comment:
		rec = t.factory.NewComment(ev.Content)
	case events.PI:
		localKey := t.tx.CreateNameKey(ev.Name, xdm.KindPI)
		pathKey = t.paths.GetPathNodeKey(ev.Name, xdm.KindPI)
		rec = t.factory.NewPI(0, localKey, 0, pathKey, ev.Content)
	default:
		return xdm.NilKey, 0, xdmerr.New(xdmerr.Usage, "wtx: unexpected event kind %d", ev.Kind)
	}
	if _, err := t.spliceStructural(anchorKey, pos, rec); err != nil {
		return xdm.NilKey, 0, err
	}
	t.index.NotifyChange(xdmindex.Insert, rec, pathKey)
	return rec.Key, 0, nil
}
