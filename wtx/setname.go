package wtx

import (
	"github.com/xdmtree/xdmtree/hashing"
	"github.com/xdmtree/xdmtree/pathsummary"
	"github.com/xdmtree/xdmtree/xdm"
	"github.com/xdmtree/xdmtree/xdmerr"
)

// SetName renames the cursor node (element, attribute, namespace or PI
// target), re-interning its QName and adapting the path summary.
func (t *Trx) SetName(name xdm.Name) error {
	if err := t.checkAccessAndCommit(); err != nil {
		return err
	}
	rec, err := t.currentRecord()
	if err != nil {
		return err
	}
	if !rec.Kind.IsNamed() {
		return xdmerr.New(xdmerr.Usage, "wtx: cursor kind %s has no name", rec.Kind)
	}
	if err := name.Validate(); err != nil {
		return err
	}
	if rec.Kind == xdm.KindAttribute {
		parent, ok := t.tx.GetRecord(rec.Parent)
		if ok {
			if err := t.checkNoDuplicateAttribute(parent, name); err != nil {
				return err
			}
		}
	}

	uriKey := t.tx.CreateNameKey(xdm.Name{Local: name.URI}, xdm.KindNamespace)
	prefixKey := t.tx.CreateNameKey(xdm.Name{Local: name.Prefix}, rec.Kind)
	localKey := t.tx.CreateNameKey(xdm.Name{Local: name.Local}, rec.Kind)

	editable, err := t.tx.PrepareEntryForModification(rec.Key)
	if err != nil {
		return err
	}
	oldImageHash := hashing.Image(editable)
	editable.PrefixKey, editable.LocalNameKey, editable.URIKey = prefixKey, localKey, uriKey
	t.paths.AdaptPathForChangedNode(editable, name, uriKey, prefixKey, localKey, pathsummary.SetName)
	if err := t.foldHashOnRename(rec.Key, oldImageHash); err != nil {
		return err
	}
	t.bumpModCount()
	return nil
}

// SetValue replaces the cursor node's value (text, comment, PI content or
// attribute value). An empty value removes the node instead of overwriting
// it with an empty one.
func (t *Trx) SetValue(value []byte) error {
	if err := t.checkAccessAndCommit(); err != nil {
		return err
	}
	rec, err := t.currentRecord()
	if err != nil {
		return err
	}
	if !rec.Kind.IsValued() {
		return xdmerr.New(xdmerr.Usage, "wtx: cursor kind %s carries no value", rec.Kind)
	}
	if len(value) == 0 {
		return t.Remove()
	}
	if rec.Kind == xdm.KindComment {
		if err := xdm.ValidateCommentContent(string(value)); err != nil {
			return err
		}
	}
	if rec.Kind == xdm.KindPI {
		if err := xdm.ValidatePIContent(string(value)); err != nil {
			return err
		}
	}
	editable, err := t.tx.PrepareEntryForModification(rec.Key)
	if err != nil {
		return err
	}
	oldImageHash := hashing.Image(editable)
	editable.SetValue(value)
	if err := t.foldHashOnRename(rec.Key, oldImageHash); err != nil {
		return err
	}
	t.bumpModCount()
	return nil
}
