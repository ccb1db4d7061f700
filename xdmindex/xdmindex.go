// Package xdmindex is the index notification shim: it forwards INSERT/DELETE
// of nodes, with their path-node key, to a pluggable index controller.
package xdmindex

import "github.com/xdmtree/xdmtree/xdm"

type ChangeType int

const (
	Insert ChangeType = iota
	Delete
)

func (c ChangeType) String() string {
	if c == Insert {
		return "INSERT"
	}
	return "DELETE"
}

// IndexDef describes one secondary index definition, opaque to the writer
// beyond being handed to CreateIndexListeners.
type IndexDef struct {
	Name string
}

// Controller is the external interface the write transaction consumes.
type Controller interface {
	NotifyChange(change ChangeType, nodeImage *xdm.Record, pathNodeKey uint64)
	CreateIndexListeners(defs []IndexDef, writer interface{})
}

// Default is a minimal in-memory Controller: it just records the change log
// (handy for tests asserting notification order) and drops it on the floor
// otherwise — real secondary indexes are external collaborators.
type Default struct {
	Log []Notification
}

type Notification struct {
	Change      ChangeType
	Key         xdm.NodeKey
	Kind        xdm.Kind
	PathNodeKey uint64
}

var _ Controller = (*Default)(nil)

func NewDefault() *Default { return &Default{} }

func (d *Default) NotifyChange(change ChangeType, nodeImage *xdm.Record, pathNodeKey uint64) {
	d.Log = append(d.Log, Notification{
		Change:      change,
		Key:         nodeImage.Key,
		Kind:        nodeImage.Kind,
		PathNodeKey: pathNodeKey,
	})
}

func (d *Default) CreateIndexListeners(defs []IndexDef, writer interface{}) {}
