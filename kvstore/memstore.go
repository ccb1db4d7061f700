package kvstore

import "sort"

// MemStore is the default, in-memory Store implementation. It backs both
// tests and the in-process page transaction.
type MemStore struct {
	data map[string][]byte
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (m *MemStore) Get(key []byte) []byte {
	v, ok := m.data[string(key)]
	if !ok {
		return nil
	}
	ret := make([]byte, len(v))
	copy(ret, v)
	return ret
}

func (m *MemStore) Has(key []byte) bool {
	_, ok := m.data[string(key)]
	return ok
}

func (m *MemStore) Set(key, value []byte) {
	if value == nil {
		delete(m.data, string(key))
		return
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[string(key)] = v
}

func (m *MemStore) Iterate(fun func(k, v []byte) bool) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !fun([]byte(k), m.data[k]) {
			return
		}
	}
}

// Clone returns a deep copy, used by the in-memory page transaction to
// implement copy-on-write at the whole-store granularity.
func (m *MemStore) Clone() *MemStore {
	ret := NewMemStore()
	for k, v := range m.data {
		cp := make([]byte, len(v))
		copy(cp, v)
		ret.data[k] = cp
	}
	return ret
}
