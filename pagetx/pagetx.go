// Package pagetx defines the PageTx contract the write transaction
// consumes — fetch-by-key, copy-on-write preparation for modification,
// removal, commit/rollback — and provides two concrete implementations: an
// in-memory one (memtx) used by default and by tests, and a badger-backed
// durable one (badgertx). A persistent page store's own caching,
// serialization and revision-root format are intentionally out of scope;
// these implementations exist only to make the write-transaction core
// runnable end to end.
package pagetx

import "github.com/xdmtree/xdmtree/xdm"

// UberPage identifies one committed revision's root page.
type UberPage struct {
	Revision uint64
}

// PageTx is the external interface the write-transaction core consumes.
// Index disambiguation of physical record pages (node page vs. name page
// vs. CAS page in a fuller page layer) collapses here into dispatch on
// xdm.Kind, since this module does not model multiple physical page
// files — see DESIGN.md.
type PageTx interface {
	// GetRecord fetches a node by key as it exists in the current
	// revision. ok is false if the key is absent.
	GetRecord(key xdm.NodeKey) (rec *xdm.Record, ok bool)

	// PrepareEntryForModification performs page-level copy-on-write:
	// it returns an exclusive, editable copy of the record at key,
	// installed into the current revision's page. Every mutation in wtx
	// goes through this, never direct field writes on a GetRecord result.
	PrepareEntryForModification(key xdm.NodeKey) (*xdm.Record, error)

	// InsertEntry installs a newly-created record (from nodefactory) into
	// the current revision's page.
	InsertEntry(rec *xdm.Record) error

	// RemoveEntry deletes the entry for key from the current revision's
	// page.
	RemoveEntry(key xdm.NodeKey) error

	// CreateNameKey interns name for kind, returning its name-page id.
	CreateNameKey(name xdm.Name, kind xdm.Kind) uint32

	// LookupName resolves a name-page id back to its string form.
	LookupName(id uint32) string

	// AllocateKey returns the next never-reused node key for this
	// resource.
	AllocateKey() xdm.NodeKey

	// GetActualRevisionRootPage returns the uber page this transaction is
	// currently building.
	GetActualRevisionRootPage() UberPage

	// Commit durably persists the current page and returns the uber page
	// of the revision it just committed.
	Commit(message string) (UberPage, error)

	// Rollback discards the current page's mutations and returns the
	// uber page of the last durable revision.
	Rollback() (UberPage, error)

	// ClearCaches drops any in-memory record cache (used after
	// rollback/revert).
	ClearCaches()

	// CloseCaches releases resources held by the cache layer; called from
	// Close().
	CloseCaches()

	// GetUberPage returns the uber page most recently produced by Commit
	// or Rollback.
	GetUberPage() UberPage

	// GetRevisionNumber returns the revision number this transaction
	// targets.
	GetRevisionNumber() uint64

	// IsBootstrap reports whether this is the very first revision of a
	// newly created, empty resource.
	IsBootstrap() bool

	// Reopen returns a fresh PageTx targeting the revision after the most
	// recently committed one — the reinstantiation step commit() runs.
	Reopen() (PageTx, error)

	// ReopenAt returns a fresh PageTx based on the records committed at
	// revision, targeting the revision after the most recently committed
	// one — what RevertTo needs.
	ReopenAt(revision uint64) (PageTx, error)
}
