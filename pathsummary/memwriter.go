package pathsummary

import (
	"strings"
	"sync"

	"github.com/xdmtree/xdmtree/xdm"
)

// MemWriter is the default, in-memory path summary: one entry per distinct
// name string (the node's own prefix:local name, not its full root-to-node
// path), each numbered by a simple interned counter.
type MemWriter struct {
	mu     sync.Mutex
	byPath map[string]uint64
	next   uint64
}

var _ Writer = (*MemWriter)(nil)
var _ Reader = (*MemWriter)(nil)

func NewMemWriter() *MemWriter {
	return &MemWriter{
		byPath: make(map[string]uint64),
		next:   1,
	}
}

func (w *MemWriter) internLocked(name xdm.Name) uint64 {
	p := name.String()
	if k, ok := w.byPath[p]; ok {
		return k
	}
	k := w.next
	w.next++
	w.byPath[p] = k
	return k
}

func (w *MemWriter) GetPathNodeKey(name xdm.Name, kind xdm.Kind) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.internLocked(name)
}

func (w *MemWriter) AdaptPathForChangedNode(node *xdm.Record, newName xdm.Name, uriKey, prefixKey, localNameKey uint32, op ChangeKind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch op {
	case MovedOnSameLevel:
		// reordering among existing siblings doesn't change the path
	case SetName, Moved:
		node.PathNodeKey = w.internLocked(newName)
	}
}

func (w *MemWriter) Remove(node *xdm.Record, kind xdm.Kind, pathNodeKey uint64) {
	// the in-memory summary keeps distinct paths forever (a path that had
	// one occurrence removed may still be reachable from elsewhere); no
	// bookkeeping needed beyond what GetPathNodeKey already tracks.
	_ = node
	_ = kind
	_ = pathNodeKey
}

func (w *MemWriter) GetPathSummary() Reader { return w }

func (w *MemWriter) Exists(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.byPath[strings.TrimPrefix(path, "/")]
	return ok
}
