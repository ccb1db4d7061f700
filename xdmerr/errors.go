// Package xdmerr defines the error taxonomy shared by every component of the
// write-transaction core: usage, argument, state, I/O and threading errors.
package xdmerr

import (
	"golang.org/x/xerrors"
)

// Kind classifies an error the way the write transaction surfaces it to
// callers. It is not a Go type hierarchy on purpose: callers switch on Kind,
// not on concrete error types.
type Kind int

const (
	// Usage marks a precondition violation: wrong current-node kind, an
	// empty or invalid name, a duplicate attribute/namespace, illegal
	// content, a move into the mover's own subtree, or close() with
	// uncommitted modifications.
	Usage Kind = iota
	// Argument marks an out-of-range node key or a self-reference on move.
	Argument
	// State marks a missing node for a supplied key or an invalid cursor
	// state.
	State
	// IO marks a page-layer read/write failure.
	IO
	// Threading marks the auto-commit scheduler being interrupted during
	// shutdown.
	Threading
)

func (k Kind) String() string {
	switch k {
	case Usage:
		return "usage"
	case Argument:
		return "argument"
	case State:
		return "state"
	case IO:
		return "io"
	case Threading:
		return "threading"
	default:
		return "unknown"
	}
}

// Error is the concrete error value produced by this module. Kind lets
// callers branch on the taxonomy without type assertions.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string { return e.err.Error() }
func (e *Error) Unwrap() error { return e.err }

// New builds a Kind-tagged error from a format string, using xerrors.Errorf
// for %w-friendly wrapping.
func New(k Kind, format string, args ...interface{}) error {
	return &Error{Kind: k, err: xerrors.Errorf(format, args...)}
}

// Wrap tags an existing error (e.g. one returned by a PageTx) with a Kind,
// preserving it as the %w-wrapped cause.
func Wrap(k Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	args = append(append([]interface{}{}, args...), err)
	return &Error{Kind: k, err: xerrors.Errorf(format+": %w", args...)}
}

// Is reports whether err (or any error in its chain) carries the given Kind.
func Is(err error, k Kind) bool {
	var e *Error
	if xerrors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
