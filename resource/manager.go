// Package resource is the single-writer-per-resource gate: it opens the
// page transaction, path summary, index controller and node factory a
// write transaction needs, enforces that at most one Trx is open at a
// time, and records the uber page each commit/rollback produces.
package resource

import (
	"time"

	"go.uber.org/atomic"

	"github.com/xdmtree/xdmtree/config"
	"github.com/xdmtree/xdmtree/dewey"
	"github.com/xdmtree/xdmtree/hashing"
	"github.com/xdmtree/xdmtree/kvstore"
	"github.com/xdmtree/xdmtree/nodefactory"
	"github.com/xdmtree/xdmtree/pagetx"
	"github.com/xdmtree/xdmtree/pathsummary"
	"github.com/xdmtree/xdmtree/wtx"
	"github.com/xdmtree/xdmtree/xdm"
	"github.com/xdmtree/xdmtree/xdmerr"
	"github.com/xdmtree/xdmtree/xdmindex"
)

// Manager owns one resource's page storage and enforces that only one
// write transaction is open against it at a time. writerOpen is a bool
// packed into an atomic so the single-writer check on every Open call
// stays lock-free.
type Manager struct {
	tx      pagetx.PageTx
	paths   *pathsummary.MemWriter
	index   *xdmindex.Default
	factory nodefactory.Factory
	docRoot xdm.NodeKey
	opts    config.Options

	writerOpen  atomic.Bool
	revision    atomic.Uint64
	commitCount atomic.Uint64
}

// Open creates a brand-new, empty resource backed by an in-memory PageTx,
// or a durable one rooted at opts.BadgerDir when set.
func Open(opts config.Options) (*Manager, error) {
	var tx pagetx.PageTx
	if opts.BadgerDir != "" {
		store, err := kvstore.OpenBadgerStore(opts.BadgerDir, []byte("xdmtree"))
		if err != nil {
			return nil, xdmerr.Wrap(xdmerr.IO, err, "resource: opening badger store")
		}
		tx = pagetx.NewBadgerBootstrap(store)
	} else {
		tx = pagetx.NewBootstrap()
	}

	m := &Manager{
		tx:      tx,
		paths:   pathsummary.NewMemWriter(),
		index:   xdmindex.NewDefault(),
		factory: nodefactory.New(tx),
		opts:    opts,
	}
	docRoot := m.factory.NewDocument()
	if opts.DeweyIDsEnabled {
		docRoot.Dewey = dewey.Root()
	}
	if err := tx.InsertEntry(docRoot); err != nil {
		return nil, xdmerr.Wrap(xdmerr.IO, err, "resource: bootstrapping document root")
	}
	m.docRoot = docRoot.Key
	m.revision.Store(tx.GetUberPage().Revision)
	return m, nil
}

// RecordUberPage implements wtx.CommitSink: it advances the manager's
// notion of the latest committed revision.
func (m *Manager) RecordUberPage(u pagetx.UberPage) {
	m.revision.Store(u.Revision)
	m.commitCount.Inc()
}

// CommitCount is the number of commits/rollbacks recorded so far, exposed
// for tests and diagnostics.
func (m *Manager) CommitCount() uint64 { return m.commitCount.Load() }

// Revision is the most recently committed (or rolled back to) revision
// number.
func (m *Manager) Revision() uint64 { return m.revision.Load() }

// hashMode maps the YAML-facing config.HashMode onto hashing.Mode.
func hashMode(h config.HashMode) hashing.Mode {
	switch h {
	case config.HashPostorder:
		return hashing.Postorder
	case config.HashNone:
		return hashing.None
	default:
		return hashing.Rolling
	}
}

// OpenWriteTransaction enforces single-writer-per-resource: it fails with
// a Usage error if a write transaction opened through this manager has not
// yet been closed.
func (m *Manager) OpenWriteTransaction() (*wtx.Trx, error) {
	if !m.writerOpen.CAS(false, true) {
		return nil, xdmerr.New(xdmerr.Usage, "resource: a write transaction is already open")
	}
	trx := wtx.New(m.tx, m.paths, m.index, m.factory, m.docRoot, wtx.Options{
		MaxNodeCount:    m.opts.MaxNodeCount,
		MaxTime:         time.Duration(m.opts.MaxTimeSeconds) * time.Second,
		HashMode:        hashMode(m.opts.HashMode),
		DeweyIDsEnabled: m.opts.DeweyIDsEnabled,
	})
	trx.SetCommitSink(m)
	return trx, nil
}

// CloseWriteTransaction releases the single-writer slot. Callers must call
// trx.Close() themselves first; this only clears the manager's guard.
func (m *Manager) CloseWriteTransaction() {
	m.writerOpen.Store(false)
}

// DocumentRoot returns the resource's document-root node key.
func (m *Manager) DocumentRoot() xdm.NodeKey { return m.docRoot }

// PathSummary exposes the resource's path summary reader.
func (m *Manager) PathSummary() pathsummary.Reader { return m.paths.GetPathSummary() }

// IndexLog exposes the in-memory index controller's notification log, for
// tests and diagnostics asserting notification order.
func (m *Manager) IndexLog() []xdmindex.Notification { return m.index.Log }
