package wtx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdmtree/xdmtree/dewey"
	"github.com/xdmtree/xdmtree/hashing"
	"github.com/xdmtree/xdmtree/nodefactory"
	"github.com/xdmtree/xdmtree/pagetx"
	"github.com/xdmtree/xdmtree/pathsummary"
	"github.com/xdmtree/xdmtree/xdm"
	"github.com/xdmtree/xdmtree/xdmindex"
)

// newTestTrx bootstraps a fresh in-memory resource and write transaction
// with rolling hashes and DeweyIDs enabled, mirroring what resource.Manager
// wires together in production.
func newTestTrx(t *testing.T) *Trx {
	t.Helper()
	tx := pagetx.NewBootstrap()
	factory := nodefactory.New(tx)
	paths := pathsummary.NewMemWriter()
	index := xdmindex.NewDefault()

	root := factory.NewDocument()
	root.Dewey = dewey.Root()
	require.NoError(t, tx.InsertEntry(root))

	trx := New(tx, paths, index, factory, root.Key, Options{
		HashMode:        hashing.Rolling,
		DeweyIDsEnabled: true,
	})
	return trx
}

func mustInsertElement(t *testing.T, trx *Trx, pos InsertPos, local string) xdm.NodeKey {
	t.Helper()
	key, err := trx.InsertElementAs(pos, xdm.Name{Local: local})
	require.NoError(t, err)
	return key
}
