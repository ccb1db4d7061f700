package xdm

// Structural, Named, Valued and Element are read-only capability views over
// a *Record, dispatched by Kind at the call site: a tagged union plus
// capability traits. They let wtx and hashing code stay type-safe without
// a deep inheritance hierarchy.
type Structural interface {
	Key() NodeKey
	Parent() NodeKey
	FirstChild() NodeKey
	LeftSibling() NodeKey
	RightSibling() NodeKey
	ChildCount() uint64
	DescendantCount() uint64
}

type Named interface {
	PrefixKey() uint32
	LocalNameKey() uint32
	URIKey() uint32
	PathNodeKey() uint64
}

type Valued interface {
	RawValue() []byte
	IsCompressed() bool
}

type Element interface {
	Structural
	Named
	Attributes() []NodeKey
	Namespaces() []NodeKey
}

// View wraps a *Record to provide the capability accessors. It is cheap
// (one pointer) and safe to discard; it never outlives the Record it wraps.
type View struct{ r *Record }

func NewView(r *Record) View { return View{r: r} }

func (v View) Key() NodeKey             { return v.r.Key }
func (v View) Parent() NodeKey          { return v.r.Parent }
func (v View) FirstChild() NodeKey      { return v.r.FirstChild }
func (v View) LeftSibling() NodeKey     { return v.r.LeftSibling }
func (v View) RightSibling() NodeKey    { return v.r.RightSibling }
func (v View) ChildCount() uint64       { return v.r.ChildCount }
func (v View) DescendantCount() uint64  { return v.r.DescendantCount }
func (v View) PrefixKey() uint32        { return v.r.PrefixKey }
func (v View) LocalNameKey() uint32     { return v.r.LocalNameKey }
func (v View) URIKey() uint32           { return v.r.URIKey }
func (v View) PathNodeKey() uint64      { return v.r.PathNodeKey }
func (v View) RawValue() []byte         { return v.r.Value }
func (v View) IsCompressed() bool       { return v.r.Compressed }
func (v View) Attributes() []NodeKey    { return v.r.AttributeKeys }
func (v View) Namespaces() []NodeKey    { return v.r.NamespaceKeys }
func (v View) Kind() Kind               { return v.r.Kind }
func (v View) Record() *Record          { return v.r }

var (
	_ Structural = View{}
	_ Named      = View{}
	_ Valued     = View{}
	_ Element    = View{}
)
