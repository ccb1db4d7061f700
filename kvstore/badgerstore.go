package kvstore

import (
	hivekv "github.com/iotaledger/hive.go/core/kvstore"
	hivebadger "github.com/iotaledger/hive.go/core/kvstore/badger"
)

// BadgerStore adapts a hive.go badger-backed kvstore.KVStore to Store, the
// same shape a HiveKVStoreAdaptor wraps a badger.KVStore in.
type BadgerStore struct {
	kvs    hivekv.KVStore
	prefix []byte
}

var _ Store = (*BadgerStore)(nil)

// OpenBadgerStore opens (creating if absent) a badger database rooted at
// dir, partitioned under prefix. Used as the durable backing for pagetx's
// badger-backed PageTx implementation.
func OpenBadgerStore(dir string, prefix []byte) (*BadgerStore, error) {
	db, err := hivebadger.CreateDB(dir)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{kvs: hivebadger.New(db), prefix: prefix}, nil
}

func mustNoErr(err error) {
	if err != nil {
		panic(err)
	}
}

func (b *BadgerStore) makeKey(k []byte) []byte {
	if len(b.prefix) == 0 {
		return k
	}
	return Concat(b.prefix, k)
}

func (b *BadgerStore) Get(key []byte) []byte {
	v, err := b.kvs.Get(b.makeKey(key))
	if err != nil {
		return nil
	}
	return v
}

func (b *BadgerStore) Has(key []byte) bool {
	v, err := b.kvs.Has(b.makeKey(key))
	mustNoErr(err)
	return v
}

func (b *BadgerStore) Set(key, value []byte) {
	var err error
	if value == nil {
		err = b.kvs.Delete(b.makeKey(key))
	} else {
		err = b.kvs.Set(b.makeKey(key), value)
	}
	mustNoErr(err)
}

func (b *BadgerStore) Iterate(fun func(k, v []byte) bool) {
	err := b.kvs.Iterate(b.prefix, func(key hivekv.Key, value hivekv.Value) bool {
		return fun(key[len(b.prefix):], value)
	})
	mustNoErr(err)
}

// WithPrefix returns a partitioned view of the same underlying database,
// one per page-record kind, analogous to a MakeReaderPartition/MakeWriterPartition
// pair keying a shared store by prefix.
func (b *BadgerStore) WithPrefix(prefix byte) *BadgerStore {
	return &BadgerStore{kvs: b.kvs, prefix: append(append([]byte{}, b.prefix...), prefix)}
}
