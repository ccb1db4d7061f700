package wtx

import (
	"github.com/xdmtree/xdmtree/xdmerr"
)

// Commit durably persists every edit made so far and reinstantiates the
// transaction against the new revision: pre-commit hooks run first and
// can abort the commit; on success the page transaction is
// committed, caches are cleared, a fresh PageTx is opened for the next
// revision, the commit sink (if any) is told about the new uber page, and
// post-commit hooks run last.
func (t *Trx) Commit(message string) error {
	return t.withLock(func() error { return t.commitLocked(message) })
}

func (t *Trx) commitLocked(message string) error {
	if t.closed {
		return xdmerr.New(xdmerr.State, "wtx: transaction is closed")
	}
	for _, h := range t.preCommit {
		if err := h(t); err != nil {
			return xdmerr.Wrap(xdmerr.Usage, err, "wtx: pre-commit hook rejected commit")
		}
	}

	uber, err := t.tx.Commit(message)
	if err != nil {
		return xdmerr.Wrap(xdmerr.IO, err, "wtx: commit failed")
	}
	t.tx.ClearCaches()

	next, err := t.tx.Reopen()
	if err != nil {
		return xdmerr.Wrap(xdmerr.IO, err, "wtx: reopen after commit failed")
	}
	t.tx = next
	t.hash.Tx = next
	t.modCount = 0

	if t.sink != nil {
		t.sink.RecordUberPage(uber)
	}
	for _, h := range t.postCommit {
		if err := h(t); err != nil {
			return xdmerr.Wrap(xdmerr.Usage, err, "wtx: post-commit hook failed")
		}
	}
	return nil
}

// Rollback discards every uncommitted edit and reinstantiates the
// transaction against the last durably committed revision.
func (t *Trx) Rollback() error {
	return t.withLock(func() error {
		if t.closed {
			return xdmerr.New(xdmerr.State, "wtx: transaction is closed")
		}
		uber, err := t.tx.Rollback()
		if err != nil {
			return xdmerr.Wrap(xdmerr.IO, err, "wtx: rollback failed")
		}
		t.tx.ClearCaches()
		next, err := t.tx.Reopen()
		if err != nil {
			return xdmerr.Wrap(xdmerr.IO, err, "wtx: reopen after rollback failed")
		}
		t.tx = next
		t.hash.Tx = next
		t.modCount = 0
		if t.sink != nil {
			t.sink.RecordUberPage(uber)
		}
		return nil
	})
}

// RevertTo reinstantiates the transaction from revision's committed
// records, dropping any uncommitted modifications. The revisions committed
// after revision stay in the history; the next commit gets the number after
// the most recently committed revision and holds revision's records plus
// whatever is edited from here on. Only
// meaningful on the in-memory and badger PageTx implementations bundled
// with this module, which retain full history; a page layer that prunes
// old revisions would need to reject this once history is gone.
func (t *Trx) RevertTo(revision uint64) error {
	return t.withLock(func() error {
		if t.closed {
			return xdmerr.New(xdmerr.State, "wtx: transaction is closed")
		}
		next, err := t.tx.ReopenAt(revision)
		if err != nil {
			return xdmerr.Wrap(xdmerr.IO, err, "wtx: revert_to failed")
		}
		t.tx = next
		t.hash.Tx = next
		t.modCount = 0
		return nil
	})
}

// TruncateTo is out of scope for this module's simplified page layer: a
// full truncate needs physical page-file compaction the bundled in-memory
// and badger PageTx implementations don't model.
func (t *Trx) TruncateTo(revision uint64) error {
	return xdmerr.New(xdmerr.Usage, "wtx: truncate_to is not implemented")
}

// Close stops the auto-commit scheduler (if any) and releases page-layer
// caches. It refuses to close over uncommitted modifications, returning a
// Usage error that reports how many modifications are pending.
func (t *Trx) Close() error {
	if t.closed {
		return nil
	}
	if t.modCount != 0 {
		return xdmerr.New(xdmerr.Usage, "wtx: close called with %d uncommitted modifications", t.modCount)
	}
	if t.ticker != nil {
		t.ticker.Stop()
		close(t.tickerStop)
	}
	t.tx.CloseCaches()
	t.closed = true
	return nil
}
