package pagetx

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"sync"

	"github.com/xdmtree/xdmtree/kvstore"
	"github.com/xdmtree/xdmtree/namepage"
	"github.com/xdmtree/xdmtree/xdm"
	"github.com/xdmtree/xdmtree/xdmerr"
)

// BadgerTx is the durable PageTx implementation. Record serialization uses
// encoding/gob: the wire format of the persistent page store isn't a
// domain concern in its own right here, so the encoding is an
// implementation detail of making the store runnable, not a domain concern
// worth a dedicated library — see DESIGN.md.
type BadgerTx struct {
	mu sync.Mutex

	store kvstore.Store // revision-prefixed: rev(8) || key(8) -> gob(Record)
	names *namepage.Page

	revision      uint64
	lastCommitted uint64
	nextKey       xdm.NodeKey

	overlay map[xdm.NodeKey]*xdm.Record // sparse: records touched this tx
	deleted map[xdm.NodeKey]struct{}
}

var _ PageTx = (*BadgerTx)(nil)

// NewBadgerBootstrap opens a fresh, empty resource backed by store.
func NewBadgerBootstrap(store kvstore.Store) *BadgerTx {
	return &BadgerTx{
		store:         store,
		names:         namepage.New(),
		revision:      1,
		lastCommitted: 0,
		nextKey:       1,
		overlay:       make(map[xdm.NodeKey]*xdm.Record),
		deleted:       make(map[xdm.NodeKey]struct{}),
	}
}

func revKey(rev uint64, key xdm.NodeKey) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], rev)
	binary.BigEndian.PutUint64(buf[8:], uint64(key))
	return buf
}

func encodeRecord(r *xdm.Record) []byte {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		panic("pagetx: gob encode record: " + err.Error())
	}
	return buf.Bytes()
}

func decodeRecord(b []byte) *xdm.Record {
	var r xdm.Record
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&r); err != nil {
		panic("pagetx: gob decode record: " + err.Error())
	}
	return &r
}

func (b *BadgerTx) GetRecord(key xdm.NodeKey) (*xdm.Record, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, gone := b.deleted[key]; gone {
		return nil, false
	}
	if r, ok := b.overlay[key]; ok {
		return r, true
	}
	raw := b.store.Get(revKey(b.lastCommitted, key))
	if raw == nil {
		return nil, false
	}
	return decodeRecord(raw), true
}

func (b *BadgerTx) PrepareEntryForModification(key xdm.NodeKey) (*xdm.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.overlay[key]; ok {
		return r, nil
	}
	raw := b.store.Get(revKey(b.lastCommitted, key))
	if raw == nil {
		return nil, xdmerr.New(xdmerr.State, "pagetx: no record for key %d", key)
	}
	cp := decodeRecord(raw)
	b.overlay[key] = cp
	delete(b.deleted, key)
	return cp, nil
}

func (b *BadgerTx) InsertEntry(rec *xdm.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overlay[rec.Key] = rec
	delete(b.deleted, rec.Key)
	return nil
}

func (b *BadgerTx) RemoveEntry(key xdm.NodeKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.overlay, key)
	b.deleted[key] = struct{}{}
	return nil
}

func (b *BadgerTx) CreateNameKey(name xdm.Name, kind xdm.Kind) uint32 {
	return b.names.Intern(name.String())
}

func (b *BadgerTx) LookupName(id uint32) string { return b.names.Lookup(id) }

func (b *BadgerTx) AllocateKey() xdm.NodeKey {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := b.nextKey
	b.nextKey++
	return k
}

func (b *BadgerTx) GetActualRevisionRootPage() UberPage { return UberPage{Revision: b.revision} }

// Commit copies the previous revision's records forward (those untouched
// this transaction), overlays the dirty set and tombstones deletions, then
// writes the resulting revision page.
func (b *BadgerTx) Commit(message string) (UberPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// copy forward everything from lastCommitted not explicitly touched
	b.store.Iterate(func(k, v []byte) bool {
		if len(k) != 16 {
			return true
		}
		rev := binary.BigEndian.Uint64(k[:8])
		if rev != b.lastCommitted {
			return true
		}
		nodeKey := xdm.NodeKey(binary.BigEndian.Uint64(k[8:]))
		if _, touched := b.overlay[nodeKey]; touched {
			return true
		}
		if _, gone := b.deleted[nodeKey]; gone {
			return true
		}
		b.store.Set(revKey(b.revision, nodeKey), v)
		return true
	})
	for k, r := range b.overlay {
		b.store.Set(revKey(b.revision, k), encodeRecord(r))
	}
	committedRev := b.revision
	b.lastCommitted = committedRev
	b.overlay = make(map[xdm.NodeKey]*xdm.Record)
	b.deleted = make(map[xdm.NodeKey]struct{})
	return UberPage{Revision: committedRev}, nil
}

func (b *BadgerTx) Rollback() (UberPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overlay = make(map[xdm.NodeKey]*xdm.Record)
	b.deleted = make(map[xdm.NodeKey]struct{})
	return UberPage{Revision: b.lastCommitted}, nil
}

func (b *BadgerTx) ClearCaches() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overlay = make(map[xdm.NodeKey]*xdm.Record)
	b.deleted = make(map[xdm.NodeKey]struct{})
}

func (b *BadgerTx) CloseCaches() {}

func (b *BadgerTx) GetUberPage() UberPage { return UberPage{Revision: b.lastCommitted} }

func (b *BadgerTx) GetRevisionNumber() uint64 { return b.revision }

func (b *BadgerTx) IsBootstrap() bool { return b.lastCommitted == 0 && b.revision == 1 }

func (b *BadgerTx) Reopen() (PageTx, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &BadgerTx{
		store:         b.store,
		names:         b.names,
		revision:      b.lastCommitted + 1,
		lastCommitted: b.lastCommitted,
		nextKey:       b.nextKey,
		overlay:       make(map[xdm.NodeKey]*xdm.Record),
		deleted:       make(map[xdm.NodeKey]struct{}),
	}, nil
}

func (b *BadgerTx) ReopenAt(revision uint64) (PageTx, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if revision > b.lastCommitted {
		return nil, xdmerr.New(xdmerr.Argument, "pagetx: no such revision %d", revision)
	}
	return &BadgerTx{
		store:         b.store,
		names:         b.names,
		revision:      b.lastCommitted + 1,
		lastCommitted: revision,
		nextKey:       b.nextKey,
		overlay:       make(map[xdm.NodeKey]*xdm.Record),
		deleted:       make(map[xdm.NodeKey]struct{}),
	}, nil
}
