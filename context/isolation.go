package context

import (
	"sync"

	"github.com/auranet/aura/journal"
)

// Isolation owns a single relational context's journal namespace and
// derived-key cache behind its own lock, so two contexts never share
// mutable state.
type Isolation struct {
	mu      sync.RWMutex
	ns      journal.Namespace
	journal *journal.Journal
	keys    map[string][]byte
}

// New opens isolation state for ns, with an empty journal and key cache.
func New(ns journal.Namespace) *Isolation {
	return &Isolation{
		ns:      ns,
		journal: journal.New(ns),
		keys:    make(map[string][]byte),
	}
}

// Namespace returns the isolated namespace.
func (i *Isolation) Namespace() journal.Namespace {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.ns
}

// Journal returns the context's own journal. A fact with a different
// namespace can never be merged into it (journal.Join rejects the
// mismatch), which is what makes the isolation structural rather than
// merely conventional.
func (i *Isolation) Journal() *journal.Journal {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.journal
}

// Key returns a cached derived key for appID/label, computing and
// caching it on first use.
func (i *Isolation) Key(root []byte, appID, label string, length int) ([]byte, error) {
	cacheKey := appID + "\x00" + label
	i.mu.RLock()
	if k, ok := i.keys[cacheKey]; ok {
		i.mu.RUnlock()
		return k, nil
	}
	i.mu.RUnlock()

	k, err := DerivedKey(root, appID, label, length)
	if err != nil {
		return nil, err
	}
	i.mu.Lock()
	i.keys[cacheKey] = k
	i.mu.Unlock()
	return k, nil
}
