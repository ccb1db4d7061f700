// Package dewey implements hierarchical order keys ("DeweyIDs"): a
// variable-length sequence of integer components whose lexicographic order
// matches document order.
//
// Encoding: each component is a single byte in [1,254] (0 and 255 are
// reserved as -inf/+inf sentinels for NewBetween). A component value of 3
// is the canonical "first child" offset; odd/even split of the component
// space around the midpoint is what lets NewBetween always find room
// without renumbering the whole subtree, the same trick PathArity-indexed
// byte keys use elsewhere to keep sibling order dense.
package dewey

import (
	"bytes"
	"golang.org/x/xerrors"
)

const (
	minComponent byte = 1
	maxComponent byte = 254
	// attributeRoot and namespaceRoot are reserved leading components so
	// attribute/namespace ids never collide with structural child ids
	// hanging off the same parent.
	attributeRoot byte = 1
	namespaceRoot byte = 2
	firstChild    byte = 3
)

// ID is an immutable hierarchical order key.
type ID []byte

// Level returns the number of components, i.e. tree depth.
func (id ID) Level() int { return len(id) }

// Compare implements lexicographic (= document) order.
func (id ID) Compare(other ID) int { return bytes.Compare(id, other) }

func (id ID) Equal(other ID) bool { return bytes.Equal(id, other) }

func (id ID) Clone() ID {
	if id == nil {
		return nil
	}
	out := make(ID, len(id))
	copy(out, id)
	return out
}

// Root returns the single-component id for the document root.
func Root() ID { return ID{firstChild} }

// NewChild returns the first child id under parent, used whenever a subtree
// move lands a node with no existing left/right neighbour at its new
// position.
func (id ID) NewChild() ID {
	out := make(ID, len(id)+1)
	copy(out, id)
	out[len(id)] = firstChild
	return out
}

// NewAttribute returns the id of the i==0'th attribute of an element id.
func (id ID) NewAttribute() ID {
	out := make(ID, len(id)+1)
	copy(out, id)
	out[len(id)] = attributeRoot
	return out
}

// NewNamespace returns the id of the i==0'th namespace of an element id.
func (id ID) NewNamespace() ID {
	out := make(ID, len(id)+1)
	copy(out, id)
	out[len(id)] = namespaceRoot
	return out
}

// NewBetween computes a fresh id strictly between left and right (either may
// be nil, meaning -inf/+inf respectively). At least one of left, right must
// be non-nil so the common parent prefix can be determined.
func NewBetween(left, right ID) (ID, error) {
	switch {
	case left == nil && right == nil:
		return nil, xerrors.Errorf("dewey: NewBetween needs at least one neighbour")
	case left == nil:
		return newBeforeFirst(right)
	case right == nil:
		return newAfterLast(left)
	default:
		return newBetween(left, right)
	}
}

func newAfterLast(left ID) (ID, error) {
	last := left[len(left)-1]
	if last+1 < maxComponent {
		out := left.Clone()
		out[len(out)-1] = midpoint(last, maxComponent)
		if out[len(out)-1] == last {
			return nil, xerrors.Errorf("dewey: no room after %v", left)
		}
		return out, nil
	}
	// no room at this level: descend one level as a new last child
	return left.NewChild(), nil
}

func newBeforeFirst(right ID) (ID, error) {
	prefix := right[:len(right)-1]
	last := right[len(right)-1]
	if last > minComponent+1 {
		out := right.Clone()
		out[len(out)-1] = midpoint(minComponent, last)
		return out, nil
	}
	// no room before: descend as a new child one level deeper than prefix
	out := make(ID, len(prefix)+1)
	copy(out, prefix)
	out[len(out)-1] = minComponent
	return out, nil
}

func newBetween(left, right ID) (ID, error) {
	minLen := len(left)
	if len(right) < minLen {
		minLen = len(right)
	}
	commonLen := 0
	for commonLen < minLen && left[commonLen] == right[commonLen] {
		commonLen++
	}
	if commonLen == len(left) && commonLen == len(right) {
		return nil, xerrors.Errorf("dewey: NewBetween called with equal ids")
	}
	if commonLen == len(left) {
		// left is a strict prefix of right: insert as left's own child,
		// before right's first diverging component.
		return newBeforeFirst(right[:commonLen+1])
	}
	if commonLen == len(right) {
		return newAfterLast(left[:commonLen+1])
	}
	lc, rc := left[commonLen], right[commonLen]
	if rc-lc > 1 {
		out := make(ID, commonLen+1)
		copy(out, left[:commonLen])
		out[commonLen] = midpoint(lc, rc)
		return out, nil
	}
	// adjacent components at this level: if left already goes deeper, place
	// the new id after left within its own branch; otherwise descend under
	// left's branch as its last child.
	if len(left) > commonLen+1 {
		return newAfterLast(left)
	}
	out := make(ID, commonLen+1, commonLen+2)
	copy(out, left[:commonLen+1])
	return out.NewChild(), nil
}

func midpoint(a, b byte) byte {
	return a + (b-a)/2
}
