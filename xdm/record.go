package xdm

import "github.com/xdmtree/xdmtree/dewey"

// Record is the single tagged-union representation of every node variant.
// Fields irrelevant to a given Kind are left at their zero value; Kind plus
// the capability interfaces below (Structural, Named, Valued, Element) are
// how call sites dispatch instead of relying on a Go type hierarchy.
type Record struct {
	Key  NodeKey
	Kind Kind

	// Structural pointers (document root, element, text, comment, PI).
	Parent          NodeKey
	FirstChild      NodeKey
	LeftSibling     NodeKey
	RightSibling    NodeKey
	ChildCount      uint64
	DescendantCount uint64
	Hash            int64

	// Name fields (element, attribute, namespace, PI).
	PrefixKey    uint32
	LocalNameKey uint32
	URIKey       uint32
	PathNodeKey  uint64

	// Value fields (text, comment, attribute, PI).
	Value       []byte
	Compressed  bool

	// Element-only non-structural children.
	AttributeKeys []NodeKey
	NamespaceKeys []NodeKey

	// DeweyID, present only once the resource enables hierarchical order
	// keys (nil otherwise).
	Dewey dewey.ID
}

// Clone performs the copy used by PageTx.PrepareEntryForModification: an
// exclusive, independent editable copy of the record so in-flight mutation
// never aliases the previous revision's page.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.Value != nil {
		out.Value = append([]byte(nil), r.Value...)
	}
	if r.AttributeKeys != nil {
		out.AttributeKeys = append([]NodeKey(nil), r.AttributeKeys...)
	}
	if r.NamespaceKeys != nil {
		out.NamespaceKeys = append([]NodeKey(nil), r.NamespaceKeys...)
	}
	out.Dewey = r.Dewey.Clone()
	return &out
}

// HasLeftSibling/HasRightSibling/HasParent/HasFirstChild are the NULL
// checks structural consistency is phrased against.
func (r *Record) HasLeftSibling() bool  { return r.LeftSibling != NilKey }
func (r *Record) HasRightSibling() bool { return r.RightSibling != NilKey }
func (r *Record) HasParent() bool       { return r.Parent != NilKey }
func (r *Record) HasFirstChild() bool   { return r.FirstChild != NilKey }
