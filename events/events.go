// Package events defines the event-stream reader consumed by bulk subtree
// insert, modeled on the StreamIterator shape used for bulk key/value
// loading elsewhere in this stack.
package events

import "github.com/xdmtree/xdmtree/xdm"

type EventKind int

const (
	StartElement EventKind = iota
	EndElement
	Text
	Comment
	PI
	Attribute
	Namespace
)

// Event is one step of a depth-first tree traversal, the shape a shredder
// (stream-to-tree bulk loader, out of this module's scope) produces.
type Event struct {
	Kind    EventKind
	Name    xdm.Name // StartElement, PI (target), Attribute, Namespace
	Content []byte   // Text, Comment, PI, Attribute value
}

// Reader yields a sequence of events; Next returns (Event{}, false) at end
// of stream.
type Reader interface {
	Next() (Event, bool)
}

// SliceReader is the simplest Reader: a pre-built, in-memory event slice.
// Used by tests and by callers that already hold the whole event sequence.
type SliceReader struct {
	events []Event
	pos    int
}

var _ Reader = (*SliceReader)(nil)

func NewSliceReader(events []Event) *SliceReader {
	return &SliceReader{events: events}
}

func (r *SliceReader) Next() (Event, bool) {
	if r.pos >= len(r.events) {
		return Event{}, false
	}
	e := r.events[r.pos]
	r.pos++
	return e, true
}
