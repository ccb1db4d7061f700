// Package nodefactory constructs fresh node records: allocates a node key
// from the page transaction, zeroes hash and descendant count, and leaves
// structural pointers NilKey for the caller (wtx) to splice in.
package nodefactory

import (
	"github.com/xdmtree/xdmtree/pagetx"
	"github.com/xdmtree/xdmtree/xdm"
)

// Factory is the external interface the write transaction consumes, one
// method per node kind.
type Factory interface {
	NewDocument() *xdm.Record
	NewElement(prefixKey, localNameKey, uriKey uint32, pathNodeKey uint64) *xdm.Record
	NewAttribute(prefixKey, localNameKey, uriKey uint32, pathNodeKey uint64, value []byte) *xdm.Record
	NewNamespace(prefixKey, uriKey uint32, pathNodeKey uint64) *xdm.Record
	NewText(value []byte) *xdm.Record
	NewComment(value []byte) *xdm.Record
	NewPI(targetPrefixKey, targetLocalKey, targetURIKey uint32, pathNodeKey uint64, content []byte) *xdm.Record
}

// Default is the default Factory, allocating keys from a PageTx.
type Default struct {
	Tx pagetx.PageTx
}

func New(tx pagetx.PageTx) *Default { return &Default{Tx: tx} }

var _ Factory = (*Default)(nil)

func (f *Default) base(kind xdm.Kind) *xdm.Record {
	return &xdm.Record{
		Key:  f.Tx.AllocateKey(),
		Kind: kind,
	}
}

func (f *Default) NewDocument() *xdm.Record {
	return f.base(xdm.KindDocument)
}

func (f *Default) NewElement(prefixKey, localNameKey, uriKey uint32, pathNodeKey uint64) *xdm.Record {
	r := f.base(xdm.KindElement)
	r.PrefixKey, r.LocalNameKey, r.URIKey = prefixKey, localNameKey, uriKey
	r.PathNodeKey = pathNodeKey
	return r
}

func (f *Default) NewAttribute(prefixKey, localNameKey, uriKey uint32, pathNodeKey uint64, value []byte) *xdm.Record {
	r := f.base(xdm.KindAttribute)
	r.PrefixKey, r.LocalNameKey, r.URIKey = prefixKey, localNameKey, uriKey
	r.PathNodeKey = pathNodeKey
	r.SetValue(value)
	return r
}

func (f *Default) NewNamespace(prefixKey, uriKey uint32, pathNodeKey uint64) *xdm.Record {
	r := f.base(xdm.KindNamespace)
	r.PrefixKey, r.URIKey = prefixKey, uriKey
	r.PathNodeKey = pathNodeKey
	return r
}

func (f *Default) NewText(value []byte) *xdm.Record {
	r := f.base(xdm.KindText)
	r.SetValue(value)
	return r
}

func (f *Default) NewComment(value []byte) *xdm.Record {
	r := f.base(xdm.KindComment)
	r.SetValue(value)
	return r
}

func (f *Default) NewPI(targetPrefixKey, targetLocalKey, targetURIKey uint32, pathNodeKey uint64, content []byte) *xdm.Record {
	r := f.base(xdm.KindPI)
	r.PrefixKey, r.LocalNameKey, r.URIKey = targetPrefixKey, targetLocalKey, targetURIKey
	r.PathNodeKey = pathNodeKey
	r.SetValue(content)
	return r
}
