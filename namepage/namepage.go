// Package namepage interns QName components (prefix, local name, namespace
// URI) into small integer ids stored on every Named record. Interning is
// keyed by xxhash digests of the string bytes, the same bucketing idiom
// used to key a node cache by raw byte strings elsewhere in this codebase,
// here swapped to a fast non-cryptographic hash since names are short,
// numerous and never adversarial.
package namepage

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Page is the in-memory, copy-on-write-free name interning table backing
// PageTx.CreateNameKey. Unlike node records it is never rolled back: names
// that become unreferenced after a rollback are simply orphaned entries,
// exactly as dictionary pages typically behave (interning tables only
// grow).
type Page struct {
	mu       sync.RWMutex
	byDigest map[uint64]uint32
	byID     map[uint32]string
	next     uint32
}

func New() *Page {
	return &Page{
		byDigest: make(map[uint64]uint32),
		byID:     make(map[uint32]string),
		next:     1, // 0 means "no name" (default/no prefix, no URI)
	}
}

// Intern returns the id for name, allocating a fresh one on first sight.
func (p *Page) Intern(name string) uint32 {
	if name == "" {
		return 0
	}
	digest := xxhash.Sum64String(name)
	p.mu.RLock()
	if id, ok := p.byDigest[digest]; ok {
		p.mu.RUnlock()
		return id
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if id, ok := p.byDigest[digest]; ok {
		return id
	}
	id := p.next
	p.next++
	p.byDigest[digest] = id
	p.byID[id] = name
	return id
}

// Lookup resolves an id back to its string, the empty string if id is 0 or
// unknown.
func (p *Page) Lookup(id uint32) string {
	if id == 0 {
		return ""
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.byID[id]
}
