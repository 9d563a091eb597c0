package authz

import (
	"crypto/ed25519"
	"sync"
	"time"

	"github.com/auranet/aura/cap"
)

// Denial carries the reason a request was denied, without ever
// including the specific missing capability.
type Denial struct {
	Reason string
	Err    error
}

// Verdict is the result of Evaluate.
type Verdict struct {
	Authorized bool
	Denial     *Denial
}

// Evaluate runs the four-step check: verify the token's signature
// chain, fold its caveats by meet, meet with the cached local
// capability and the sovereign policy, then check the predicate is
// subsumed by the result.
func Evaluate(token Token, predicate cap.Cap, localCap cap.Cap, sovereignPolicy cap.Cap, authorityRootKey ed25519.PublicKey, expiry time.Time, now time.Time) Verdict {
	if !now.Before(expiry) {
		return Verdict{Denial: &Denial{Reason: "authorization failed", Err: ErrExpiredToken}}
	}
	rooted := token
	rooted.Root = authorityRootKey
	if err := VerifySignatureChain(rooted); err != nil {
		return Verdict{Denial: &Denial{Reason: "authorization failed", Err: err}}
	}

	effective := cap.Meet(cap.Meet(capFromToken(token), localCap), sovereignPolicy)
	if !cap.Subsumes(effective, predicate) {
		return Verdict{Denial: &Denial{Reason: "authorization failed", Err: ErrInsufficientScope}}
	}
	return Verdict{Authorized: true}
}

// Epoch is a monotone counter; a cache entry invalidates when the epoch
// it was computed under no longer matches the current one, or when the
// sovereign policy changes.
type Epoch uint64

// cacheKey identifies a cached local-capability computation.
type cacheKey struct {
	context   string
	predicate string
}

type cacheEntry struct {
	epoch Epoch
	value cap.Cap
}

// Cache memoizes the local capability lattice per (ContextId, Predicate)
// tagged with an epoch.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
	epoch   Epoch
}

// NewCache returns an empty cache at epoch 0.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]cacheEntry)}
}

// Bump advances the epoch, invalidating every existing entry (sovereign
// policy update or epoch rotation).
func (c *Cache) Bump() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
}

// Get returns the cached value for (context, predicate), iff it is still
// valid for the current epoch.
func (c *Cache) Get(context, predicate string) (cap.Cap, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[cacheKey{context, predicate}]
	if !ok || e.epoch != c.epoch {
		return cap.Cap{}, false
	}
	return e.value, true
}

// Put stores value for (context, predicate) under the current epoch.
func (c *Cache) Put(context, predicate string, value cap.Cap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{context, predicate}] = cacheEntry{epoch: c.epoch, value: value}
}
