// Package xdmlock provides the re-entrant mutual-exclusion lock the write
// transaction installs whenever periodic auto-commit is enabled: Commit,
// Rollback and RevertTo take it, as does the scheduled auto-commit
// goroutine, so a scheduled commit never interleaves with a manual one. A
// goroutine that already holds the lock can take it again without
// deadlocking itself.
package xdmlock

import (
	"github.com/petermattis/goid"
	"github.com/sasha-s/go-deadlock"
)

// Locker is satisfied by both Reentrant and Noop.
type Locker interface {
	Lock()
	Unlock()
}

// Reentrant is built on go-deadlock's mutex (which detects lock-order
// cycles across goroutines under test) guarded by a per-goroutine holder
// tracked with petermattis/goid — the same goroutine-id lookup go-deadlock
// itself uses internally for its own bookkeeping.
type Reentrant struct {
	mu     deadlock.Mutex
	holder int64
	depth  int
}

var _ Locker = (*Reentrant)(nil)

func NewReentrant() *Reentrant {
	return &Reentrant{holder: -1}
}

func (l *Reentrant) Lock() {
	id := goid.Get()
	if l.holder == id {
		l.depth++
		return
	}
	l.mu.Lock()
	l.holder = id
	l.depth = 1
}

func (l *Reentrant) Unlock() {
	id := goid.Get()
	if l.holder != id {
		panic("xdmlock: Unlock called by non-holder goroutine")
	}
	l.depth--
	if l.depth == 0 {
		l.holder = -1
		l.mu.Unlock()
	}
}

// Noop is installed when max_time == 0: the caller is responsible for
// single-threaded use, so locking costs nothing.
type Noop struct{}

var _ Locker = Noop{}

func (Noop) Lock()   {}
func (Noop) Unlock() {}
