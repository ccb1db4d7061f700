package wtx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdmtree/xdmtree/xdm"
)

var errRejected = errors.New("rejected")

func TestCommitReopensAtNextRevision(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	mustInsertElement(t, trx, AsFirstChild, "a")

	before := trx.GetCommitCredentials().Revision
	require.NoError(t, trx.Commit("add a"))
	after := trx.GetCommitCredentials().Revision
	require.Greater(t, after, before)
}

func TestCommitRunsPreAndPostHooksInOrder(t *testing.T) {
	trx := newTestTrx(t)
	var order []string
	trx.AddPreCommitHook(func(*Trx) error { order = append(order, "pre"); return nil })
	trx.AddPostCommitHook(func(*Trx) error { order = append(order, "post"); return nil })

	require.NoError(t, trx.MoveTo(trx.docRoot))
	mustInsertElement(t, trx, AsFirstChild, "a")
	require.NoError(t, trx.Commit("x"))
	require.Equal(t, []string{"pre", "post"}, order)
}

func TestCommitAbortedByPreCommitHook(t *testing.T) {
	trx := newTestTrx(t)
	trx.AddPreCommitHook(func(*Trx) error { return errRejected })

	require.NoError(t, trx.MoveTo(trx.docRoot))
	mustInsertElement(t, trx, AsFirstChild, "a")
	require.Error(t, trx.Commit("x"))
}

func TestRollbackDiscardsUncommittedEdits(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	key := mustInsertElement(t, trx, AsFirstChild, "a")
	require.NoError(t, trx.Commit("baseline"))

	require.NoError(t, trx.MoveTo(key))
	mustInsertElement(t, trx, AsFirstChild, "uncommitted")
	require.NoError(t, trx.Rollback())

	rec, _ := trx.tx.GetRecord(key)
	require.Equal(t, xdm.NilKey, rec.FirstChild)
}

func TestCloseRefusesWithUncommittedModifications(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	mustInsertElement(t, trx, AsFirstChild, "a")
	require.Error(t, trx.Close())
}

func TestCloseSucceedsAfterCommit(t *testing.T) {
	trx := newTestTrx(t)
	require.NoError(t, trx.MoveTo(trx.docRoot))
	mustInsertElement(t, trx, AsFirstChild, "a")
	require.NoError(t, trx.Commit("x"))
	require.NoError(t, trx.Close())
}

func TestTruncateToIsNotImplemented(t *testing.T) {
	trx := newTestTrx(t)
	require.Error(t, trx.TruncateTo(0))
}
