package resource

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdmtree/xdmtree/config"
	"github.com/xdmtree/xdmtree/wtx"
	"github.com/xdmtree/xdmtree/xdm"
)

func TestOpenBootstrapsDocumentRootWithDeweyID(t *testing.T) {
	mgr, err := Open(config.Default())
	require.NoError(t, err)

	root, ok := mgr.tx.GetRecord(mgr.DocumentRoot())
	require.True(t, ok)
	require.Equal(t, xdm.KindDocument, root.Kind)
	require.NotNil(t, root.Dewey)
}

func TestOpenWriteTransactionEnforcesSingleWriter(t *testing.T) {
	mgr, err := Open(config.Default())
	require.NoError(t, err)

	_, err = mgr.OpenWriteTransaction()
	require.NoError(t, err)

	_, err = mgr.OpenWriteTransaction()
	require.Error(t, err, "a second write transaction must be rejected while the first is open")
}

func TestCloseWriteTransactionReleasesTheSlot(t *testing.T) {
	mgr, err := Open(config.Default())
	require.NoError(t, err)

	_, err = mgr.OpenWriteTransaction()
	require.NoError(t, err)
	mgr.CloseWriteTransaction()

	_, err = mgr.OpenWriteTransaction()
	require.NoError(t, err)
}

func TestCommitAdvancesManagerRevisionAndCommitCount(t *testing.T) {
	mgr, err := Open(config.Default())
	require.NoError(t, err)
	trx, err := mgr.OpenWriteTransaction()
	require.NoError(t, err)

	require.NoError(t, trx.MoveTo(mgr.DocumentRoot()))
	_, err = trx.InsertElementAs(wtx.AsFirstChild, xdm.Name{Local: "a"})
	require.NoError(t, err)

	before := mgr.Revision()
	require.NoError(t, trx.Commit("first"))
	require.Greater(t, mgr.Revision(), before)
	require.EqualValues(t, 1, mgr.CommitCount())
}

func TestIndexLogRecordsInsertNotifications(t *testing.T) {
	mgr, err := Open(config.Default())
	require.NoError(t, err)
	trx, err := mgr.OpenWriteTransaction()
	require.NoError(t, err)

	require.NoError(t, trx.MoveTo(mgr.DocumentRoot()))
	_, err = trx.InsertElementAs(wtx.AsFirstChild, xdm.Name{Local: "a"})
	require.NoError(t, err)

	require.NotEmpty(t, mgr.IndexLog())
}

func TestOpenWithBadgerDirUsesDurableBackend(t *testing.T) {
	opts := config.Default()
	opts.BadgerDir = t.TempDir()

	mgr, err := Open(opts)
	require.NoError(t, err)
	require.NotNil(t, mgr)
}
