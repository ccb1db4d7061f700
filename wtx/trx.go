// Package wtx is the node write transaction: the core of this module. It
// materializes page-level copy-on-write through a PageTx, applies
// structural edits to the XDM tree, keeps each node's rolling Merkle hash
// and descendant count in sync, assigns DeweyIDs, and coordinates commit,
// rollback and revert across the page layer.
package wtx

import (
	"time"

	"github.com/xdmtree/xdmtree/events"
	"github.com/xdmtree/xdmtree/hashing"
	"github.com/xdmtree/xdmtree/nodefactory"
	"github.com/xdmtree/xdmtree/pagetx"
	"github.com/xdmtree/xdmtree/pathsummary"
	"github.com/xdmtree/xdmtree/xdm"
	"github.com/xdmtree/xdmtree/xdmerr"
	"github.com/xdmtree/xdmtree/xdmindex"
	"github.com/xdmtree/xdmtree/xdmlock"
)

// InsertPos is the anchor-relative position argument every insert/move/copy
// operation takes.
type InsertPos int

const (
	AsFirstChild InsertPos = iota
	AsLeftSibling
	AsRightSibling
)

// Hook is a pre- or post-commit callback. A non-nil error from a
// pre-commit hook aborts the commit.
type Hook func(*Trx) error

// Options carries the construction parameters not already implied by the
// collaborators passed to New.
type Options struct {
	MaxNodeCount    uint64        // 0 disables size-based auto-commit
	MaxTime         time.Duration // 0 disables time-based auto-commit
	HashMode        hashing.Mode
	DeweyIDsEnabled bool
}

// CommitSink is notified whenever this transaction durably commits or rolls
// back, so an owning resource manager can record the new uber page as
// last-committed without wtx depending on it.
type CommitSink interface {
	RecordUberPage(pagetx.UberPage)
}

// Trx is the write transaction. Exactly one should be open per resource at
// a time (enforced by the owning resource manager); Trx itself does not
// police that — it assumes single-writer discipline from its caller.
type Trx struct {
	tx      pagetx.PageTx
	factory nodefactory.Factory
	paths   pathsummary.Writer
	index   xdmindex.Controller
	hash    *hashing.Engine
	sink    CommitSink

	deweyEnabled bool
	docRoot      xdm.NodeKey
	cursor       xdm.NodeKey

	modCount     uint64
	maxNodeCount uint64

	lock      xdmlock.Locker
	ticker    *time.Ticker
	tickerStop chan struct{}

	preCommit  []Hook
	postCommit []Hook

	closed bool
}

// New opens a write transaction pinned to tx's revision, rooted at docRoot
// (an existing document-root node, or one freshly created by the caller for
// a brand-new resource).
func New(tx pagetx.PageTx, paths pathsummary.Writer, index xdmindex.Controller, factory nodefactory.Factory, docRoot xdm.NodeKey, opts Options) *Trx {
	t := &Trx{
		tx:           tx,
		factory:      factory,
		paths:        paths,
		index:        index,
		hash:         hashing.New(tx, opts.HashMode),
		deweyEnabled: opts.DeweyIDsEnabled,
		docRoot:      docRoot,
		cursor:       docRoot,
		maxNodeCount: opts.MaxNodeCount,
	}
	if opts.MaxTime > 0 {
		t.lock = xdmlock.NewReentrant()
		t.startScheduler(opts.MaxTime)
	} else {
		t.lock = xdmlock.Noop{}
	}
	return t
}

// SetCommitSink wires the resource manager that should be told about newly
// committed/rolled-back uber pages.
func (t *Trx) SetCommitSink(sink CommitSink) { t.sink = sink }

func (t *Trx) startScheduler(period time.Duration) {
	t.ticker = time.NewTicker(period)
	t.tickerStop = make(chan struct{})
	go func() {
		for {
			select {
			case <-t.ticker.C:
				t.lock.Lock()
				_ = t.commitLocked("")
				t.lock.Unlock()
			case <-t.tickerStop:
				return
			}
		}
	}()
}

// AddPreCommitHook / AddPostCommitHook register lifecycle callbacks.
func (t *Trx) AddPreCommitHook(h Hook)  { t.preCommit = append(t.preCommit, h) }
func (t *Trx) AddPostCommitHook(h Hook) { t.postCommit = append(t.postCommit, h) }

// GetPathSummary, GetCommitCredentials and GetPageWtx are the remaining
// exposed accessors.
func (t *Trx) GetPathSummary() pathsummary.Reader { return t.paths.GetPathSummary() }

type CommitCredentials struct {
	Revision uint64
	Message  string
}

func (t *Trx) GetCommitCredentials() CommitCredentials {
	return CommitCredentials{Revision: t.tx.GetRevisionNumber()}
}

func (t *Trx) GetPageWtx() pagetx.PageTx { return t.tx }

// CurrentKey returns the cursor's node key.
func (t *Trx) CurrentKey() xdm.NodeKey { return t.cursor }

// MoveTo repositions the cursor to key, failing with a State error if it
// does not exist.
func (t *Trx) MoveTo(key xdm.NodeKey) error {
	if _, ok := t.tx.GetRecord(key); !ok {
		return xdmerr.New(xdmerr.State, "wtx: no node for key %d", key)
	}
	t.cursor = key
	return nil
}

func (t *Trx) currentRecord() (*xdm.Record, error) {
	rec, ok := t.tx.GetRecord(t.cursor)
	if !ok {
		return nil, xdmerr.New(xdmerr.State, "wtx: current node %d missing", t.cursor)
	}
	return rec, nil
}

// checkAccessAndCommit checks that the transaction is still open and fires a size-triggered intermediate commit before the edit
// that is about to run.
func (t *Trx) checkAccessAndCommit() error {
	if t.closed {
		return xdmerr.New(xdmerr.State, "wtx: transaction is closed")
	}
	if t.maxNodeCount > 0 && t.modCount > t.maxNodeCount {
		return t.commitLocked("")
	}
	return nil
}

func (t *Trx) bumpModCount() {
	t.modCount++
}

// withLock runs fn holding the transaction's lock (a no-op lock when
// max_time == 0).
func (t *Trx) withLock(fn func() error) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return fn()
}

// foldHashOnInsert keeps descendant counts in sync up the ancestor chain
// unconditionally, then dispatches the hash fold itself by mode: ROLLING
// folds the new hash up the ancestor chain in place (done by AddOnInsert
// above), POSTORDER recomputes every ancestor from its (already correct)
// children, NONE does nothing further.
func (t *Trx) foldHashOnInsert(key xdm.NodeKey) error {
	if err := t.hash.AddOnInsert(key, 1); err != nil {
		return err
	}
	if t.hash.Mode != hashing.Postorder {
		return nil
	}
	if _, err := t.hash.RecomputeNodeHash(key); err != nil {
		return err
	}
	return t.hash.RiseToRoot(key)
}

// foldHashOnRename dispatches hash maintenance after a node's own image
// changed (rename, revalue, text merge) but its children did not.
func (t *Trx) foldHashOnRename(key xdm.NodeKey, oldImageHash int64) error {
	switch t.hash.Mode {
	case hashing.None:
		return nil
	case hashing.Postorder:
		if _, err := t.hash.RecomputeNodeHash(key); err != nil {
			return err
		}
		return t.hash.RiseToRoot(key)
	default: // Rolling
		return t.hash.UpdateOnRename(key, oldImageHash)
	}
}

// foldHashOnSubtreeInsert dispatches hash maintenance after a bulk subtree
// build: under ROLLING or POSTORDER the subtree is postorder-hashed
// internally first (cheap, bounded by the new subtree's own size), then
// folded into ancestors by mode. Descendant counts are bumped up the
// ancestor chain via FoldSubtreeInsert regardless of mode, including NONE.
func (t *Trx) foldHashOnSubtreeInsert(rootKey xdm.NodeKey, descendants uint64) error {
	if t.hash.Mode != hashing.None {
		if _, err := t.hash.Postorder(rootKey); err != nil {
			return err
		}
	}
	if err := t.hash.FoldSubtreeInsert(rootKey, descendants); err != nil {
		return err
	}
	if t.hash.Mode != hashing.Postorder {
		return nil
	}
	return t.hash.RiseToRoot(rootKey)
}

var _ = events.EventKind(0) // events package is wired by insert_subtree (insert.go)
