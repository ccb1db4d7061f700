package pagetx

import (
	"sync"

	"github.com/xdmtree/xdmtree/namepage"
	"github.com/xdmtree/xdmtree/xdm"
	"github.com/xdmtree/xdmtree/xdmerr"
)

// generation is one committed revision's set of records, shared by
// reference across revisions until a key is mutated (copy-on-write), the
// same shape as mutable/nodestore.go's persisted+buffered split.
type generation struct {
	records map[xdm.NodeKey]*xdm.Record
}

func (g *generation) clone() *generation {
	out := &generation{records: make(map[xdm.NodeKey]*xdm.Record, len(g.records))}
	for k, v := range g.records {
		out.records[k] = v // shared until PrepareEntryForModification copies
	}
	return out
}

// MemTx is the default in-memory, copy-on-write PageTx.
type MemTx struct {
	mu sync.Mutex

	names *namepage.Page

	committed []*generation // index i holds revision i's records, i from 0
	current   *generation
	revision  uint64
	nextKey   xdm.NodeKey

	// cache of records already prepared-for-modification this
	// transaction, so repeated prepares on the same key return the same
	// editable copy instead of clobbering each other.
	dirty map[xdm.NodeKey]*xdm.Record
}

var _ PageTx = (*MemTx)(nil)

// NewBootstrap creates a fresh, empty resource: revision 0 has no records,
// and the returned transaction targets revision 1.
func NewBootstrap() *MemTx {
	gen0 := &generation{records: make(map[xdm.NodeKey]*xdm.Record)}
	return &MemTx{
		names:     namepage.New(),
		committed: []*generation{gen0},
		current:   gen0.clone(),
		revision:  1,
		nextKey:   1,
		dirty:     make(map[xdm.NodeKey]*xdm.Record),
	}
}

// openAt opens a new write transaction based on the records of the given
// committed revision, targeting baseRevision+1 (used by both normal
// reinstantiation after Commit and by revert_to, which then retargets it).
func (m *MemTx) openAt(baseRevision uint64, nextKey xdm.NodeKey) *MemTx {
	base := m.committed[baseRevision]
	return &MemTx{
		names:     m.names,
		committed: m.committed,
		current:   base.clone(),
		revision:  baseRevision + 1,
		nextKey:   nextKey,
		dirty:     make(map[xdm.NodeKey]*xdm.Record),
	}
}

func (m *MemTx) GetRecord(key xdm.NodeKey) (*xdm.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.dirty[key]; ok {
		return r, true
	}
	r, ok := m.current.records[key]
	return r, ok
}

func (m *MemTx) PrepareEntryForModification(key xdm.NodeKey) (*xdm.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.dirty[key]; ok {
		return r, nil
	}
	r, ok := m.current.records[key]
	if !ok {
		return nil, xdmerr.New(xdmerr.State, "pagetx: no record for key %d", key)
	}
	cp := r.Clone()
	m.current.records[key] = cp
	m.dirty[key] = cp
	return cp, nil
}

func (m *MemTx) InsertEntry(rec *xdm.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.current.records[rec.Key]; exists {
		return xdmerr.New(xdmerr.State, "pagetx: key %d already present", rec.Key)
	}
	m.current.records[rec.Key] = rec
	m.dirty[rec.Key] = rec
	return nil
}

func (m *MemTx) RemoveEntry(key xdm.NodeKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.current.records[key]; !ok {
		return xdmerr.New(xdmerr.State, "pagetx: no record for key %d", key)
	}
	delete(m.current.records, key)
	delete(m.dirty, key)
	return nil
}

func (m *MemTx) CreateNameKey(name xdm.Name, kind xdm.Kind) uint32 {
	return m.names.Intern(name.String())
}

func (m *MemTx) LookupName(id uint32) string { return m.names.Lookup(id) }

func (m *MemTx) AllocateKey() xdm.NodeKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.nextKey
	m.nextKey++
	return k
}

func (m *MemTx) GetActualRevisionRootPage() UberPage { return UberPage{Revision: m.revision} }

func (m *MemTx) Commit(message string) (UberPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, m.current.clone())
	m.dirty = make(map[xdm.NodeKey]*xdm.Record)
	return UberPage{Revision: m.revision}, nil
}

func (m *MemTx) Rollback() (UberPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := uint64(len(m.committed) - 1)
	m.current = m.committed[last].clone()
	m.dirty = make(map[xdm.NodeKey]*xdm.Record)
	return UberPage{Revision: last}, nil
}

func (m *MemTx) ClearCaches() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = make(map[xdm.NodeKey]*xdm.Record)
}

func (m *MemTx) CloseCaches() {}

func (m *MemTx) GetUberPage() UberPage { return UberPage{Revision: uint64(len(m.committed) - 1)} }

func (m *MemTx) GetRevisionNumber() uint64 { return m.revision }

func (m *MemTx) IsBootstrap() bool { return len(m.committed) == 1 && m.revision == 1 }

// Reopen returns a fresh MemTx targeting the next revision after the last
// committed one, reusing the name page and commit history — the
// reinstantiation step commit()/rollback() runs.
func (m *MemTx) Reopen() (PageTx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openAt(uint64(len(m.committed)-1), m.nextKey), nil
}

// ReopenAt starts from the records committed at revision r and targets the
// revision after the most recently committed one, the semantics RevertTo
// needs.
func (m *MemTx) ReopenAt(r uint64) (PageTx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r >= uint64(len(m.committed)) {
		return nil, xdmerr.New(xdmerr.Argument, "pagetx: no such revision %d", r)
	}
	tx := m.openAt(r, m.nextKey)
	tx.revision = uint64(len(m.committed))
	return tx, nil
}
