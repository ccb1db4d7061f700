// Package hashing implements three hash-maintenance modes: NONE, ROLLING
// (incremental path-to-root update) and POSTORDER (bulk recompute). The
// recursive formula and the SHA-256/PRIME constants need to be bit-exact
// for interoperability, so they're implemented directly against the
// standard library's crypto/sha256, independent of whatever commitment
// cryptography a page-layer collaborator might otherwise use (see
// DESIGN.md).
package hashing

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/xdmtree/xdmtree/pagetx"
	"github.com/xdmtree/xdmtree/xdm"
)

// Prime is the fixed multiplier used for folding a child's hash into its
// parent's.
const Prime int64 = 77081

// Mode selects how (or whether) node hashes are kept in sync with edits.
type Mode int

const (
	None Mode = iota
	Rolling
	Postorder
)

// Image computes H(node_image): SHA-256 of the node's own identity bytes
// (kind, name ids, path-node key, raw value), truncated to the low 64 bits
// and reinterpreted as signed — it never includes child contributions,
// those are folded in separately via Prime.
func Image(r *xdm.Record) int64 {
	h := sha256.New()
	var hdr [1 + 4 + 4 + 4 + 8]byte
	hdr[0] = byte(r.Kind)
	binary.BigEndian.PutUint32(hdr[1:5], r.PrefixKey)
	binary.BigEndian.PutUint32(hdr[5:9], r.LocalNameKey)
	binary.BigEndian.PutUint32(hdr[9:13], r.URIKey)
	binary.BigEndian.PutUint64(hdr[13:21], r.PathNodeKey)
	h.Write(hdr[:])
	h.Write(r.Value)
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[len(sum)-8:]))
}

// Engine owns the page transaction accessor hashing operates against.
type Engine struct {
	Tx   pagetx.PageTx
	Mode Mode
}

func New(tx pagetx.PageTx, mode Mode) *Engine { return &Engine{Tx: tx, Mode: mode} }

// orderedChildren returns a node's hash children in the order §4.3's
// POSTORDER rule visits them: namespaces, then attributes, then structural
// children. The sum in I9 is commutative, so this order only matters for
// the recursion, not the resulting value.
func (e *Engine) orderedChildren(r *xdm.Record) []xdm.NodeKey {
	out := make([]xdm.NodeKey, 0, len(r.NamespaceKeys)+len(r.AttributeKeys)+int(r.ChildCount))
	out = append(out, r.NamespaceKeys...)
	out = append(out, r.AttributeKeys...)
	for c := r.FirstChild; c != xdm.NilKey; {
		cr, ok := e.Tx.GetRecord(c)
		if !ok {
			break
		}
		out = append(out, c)
		c = cr.RightSibling
	}
	return out
}

// RecomputeNodeHash recomputes a single node's hash from its CURRENT
// children's already-correct hashes (one level, no recursion) and writes it
// back. Used to "rise to root" after a local change in POSTORDER mode.
func (e *Engine) RecomputeNodeHash(key xdm.NodeKey) (int64, error) {
	rec, err := e.Tx.PrepareEntryForModification(key)
	if err != nil {
		return 0, err
	}
	sum := Image(rec)
	for _, c := range e.orderedChildren(rec) {
		cr, ok := e.Tx.GetRecord(c)
		if !ok {
			continue
		}
		sum += Prime * cr.Hash
	}
	rec.Hash = sum
	return sum, nil
}

// Postorder recomputes the hash of every node in the subtree rooted at key,
// children before parents, and returns the root's new hash.
func (e *Engine) Postorder(key xdm.NodeKey) (int64, error) {
	rec, ok := e.Tx.GetRecord(key)
	if !ok {
		return 0, nil
	}
	for _, c := range e.orderedChildren(rec) {
		if _, err := e.Postorder(c); err != nil {
			return 0, err
		}
	}
	return e.RecomputeNodeHash(key)
}

// RiseToRoot recomputes every ancestor of key, one level at a time, after
// key's own hash has already been brought up to date. Used by POSTORDER
// mode after any local edit.
func (e *Engine) RiseToRoot(key xdm.NodeKey) error {
	rec, ok := e.Tx.GetRecord(key)
	if !ok {
		return nil
	}
	for p := rec.Parent; p != xdm.NilKey; {
		if _, err := e.RecomputeNodeHash(p); err != nil {
			return err
		}
		pr, ok := e.Tx.GetRecord(p)
		if !ok {
			return nil
		}
		p = pr.Parent
	}
	return nil
}

// propagate is the single rolling-update primitive behind AddOnInsert,
// RemoveOnRemove and UpdateOnRename: starting at startAncestor, apply
// new = old − prev·Prime + cur·Prime at each level, updating prev/cur to
// that level's own old/new hash before continuing upward.
func (e *Engine) propagate(startAncestor xdm.NodeKey, prev, cur int64) error {
	for node := startAncestor; node != xdm.NilKey; {
		rec, err := e.Tx.PrepareEntryForModification(node)
		if err != nil {
			return err
		}
		oldHash := rec.Hash
		rec.Hash = oldHash - prev*Prime + cur*Prime
		prev, cur = oldHash, rec.Hash
		node = rec.Parent
	}
	return nil
}

// AdjustDescendantCount adds delta to the descendant count of every node
// from startAncestor up to the root. Descendant count is a structural
// property of the tree, not a hash-maintenance artifact, so this runs
// unconditionally: it stays correct under every Mode, including None, where
// no hash is ever folded.
func (e *Engine) AdjustDescendantCount(startAncestor xdm.NodeKey, delta int64) error {
	for node := startAncestor; node != xdm.NilKey; {
		rec, err := e.Tx.PrepareEntryForModification(node)
		if err != nil {
			return err
		}
		rec.DescendantCount = addDelta(rec.DescendantCount, delta)
		node = rec.Parent
	}
	return nil
}

func addDelta(v uint64, delta int64) uint64 {
	if delta >= 0 {
		return v + uint64(delta)
	}
	d := uint64(-delta)
	if d > v {
		return 0
	}
	return v - d
}

// AddOnInsert is run after splicing a freshly-created node N into the tree:
// descendant counts are bumped up the ancestor chain regardless of hash
// mode, then under ROLLING, N's own hash is set from its image (it has no
// children yet) and folded into every ancestor. newDescendants is the total
// number of structural nodes added (N itself, so 1 for a plain leaf insert,
// or subtreeDescendantCount+1 for a subtree insert already post-order
// hashed — see FoldSubtreeInsert for that case).
func (e *Engine) AddOnInsert(newKey xdm.NodeKey, newDescendants uint64) error {
	rec, err := e.Tx.PrepareEntryForModification(newKey)
	if err != nil {
		return err
	}
	if err := e.AdjustDescendantCount(rec.Parent, int64(newDescendants)); err != nil {
		return err
	}
	if e.Mode != Rolling {
		return nil
	}
	rec.Hash = Image(rec)
	return e.propagate(rec.Parent, 0, rec.Hash)
}

// FoldSubtreeInsert is AddOnInsert's bulk-mode counterpart: the subtree
// rooted at newKey has already been postorder-hashed (skipping per-node
// rolling updates during construction). Descendant counts are bumped up the
// ancestor chain regardless of hash mode; under ROLLING the fold into
// ancestors also runs, using the same add formula.
func (e *Engine) FoldSubtreeInsert(newKey xdm.NodeKey, subtreeDescendants uint64) error {
	rec, ok := e.Tx.GetRecord(newKey)
	if !ok {
		return nil
	}
	if err := e.AdjustDescendantCount(rec.Parent, int64(subtreeDescendants)+1); err != nil {
		return err
	}
	if e.Mode != Rolling {
		return nil
	}
	return e.propagate(rec.Parent, 0, rec.Hash)
}

// RemoveOnRemove folds the removal of a node (already unlinked from the
// tree, its last known hash and descendant count passed in explicitly)
// into every remaining ancestor. Descendant counts are adjusted regardless
// of hash mode; the hash fold itself only runs under ROLLING.
func (e *Engine) RemoveOnRemove(parent xdm.NodeKey, removedHash int64, removedDescendants uint64) error {
	if err := e.AdjustDescendantCount(parent, -int64(removedDescendants+1)); err != nil {
		return err
	}
	if e.Mode != Rolling {
		return nil
	}
	return e.propagate(parent, removedHash, 0)
}

// UpdateOnRename folds a rename/revalue (the node's own image changed, its
// children did not) into the node itself and every ancestor. A rename
// doesn't add or remove nodes, so descendant counts are untouched here.
func (e *Engine) UpdateOnRename(key xdm.NodeKey, oldImageHash int64) error {
	if e.Mode != Rolling {
		return nil
	}
	rec, err := e.Tx.PrepareEntryForModification(key)
	if err != nil {
		return err
	}
	oldFullHash := rec.Hash
	newImageHash := Image(rec)
	rec.Hash = oldFullHash - oldImageHash + newImageHash
	return e.propagate(rec.Parent, oldFullHash, rec.Hash)
}
