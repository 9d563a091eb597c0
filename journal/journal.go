// Package journal implements the namespaced fact-set CRDT: a
// join-semilattice of Facts merged by set union within a single
// namespace, plus deterministic reduction via a type-id keyed reducer
// registry.
//
// Facts are append-only and content-addressed, the way a shared DAG
// node or witness structure is, but generalized here to per-namespace
// fact sets with explicit merge preconditions instead of one shared
// DAG.
package journal

import (
	"errors"
	"sort"

	"github.com/auranet/aura/fact"
)

// ErrNamespaceMismatch is returned by Join when the two journals are not
// in the same namespace.
var ErrNamespaceMismatch = errors.New("journal: namespace mismatch")

// Journal is a namespace-scoped set of facts. The zero value is not
// usable; use New.
type Journal struct {
	ns    Namespace
	facts map[fact.OrderTime]fact.Fact
}

// New returns an empty journal scoped to ns.
func New(ns Namespace) *Journal {
	return &Journal{ns: ns, facts: make(map[fact.OrderTime]fact.Fact)}
}

// Namespace returns the journal's scope.
func (j *Journal) Namespace() Namespace { return j.ns }

// Len returns the number of facts currently held.
func (j *Journal) Len() int { return len(j.facts) }

// AddFact inserts f, absorbing duplicates. It rejects facts that fail
// structural validation.
func (j *Journal) AddFact(f fact.Fact) error {
	if err := f.Validate(); err != nil {
		return err
	}
	j.facts[f.Order] = f
	return nil
}

// Facts returns the journal's facts sorted by the deterministic
// reduction order (order, content_hash).
func (j *Journal) Facts() []fact.Fact {
	out := make([]fact.Fact, 0, len(j.facts))
	for _, f := range j.facts {
		out = append(out, f)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Less(out[k]) })
	return out
}

// Join merges two journals of matching namespace by set union. Join is
// commutative, associative, and idempotent because set union is; it
// never mutates its arguments.
func Join(a, b *Journal) (*Journal, error) {
	if !a.ns.Equal(b.ns) {
		return nil, ErrNamespaceMismatch
	}
	out := New(a.ns)
	for k, v := range a.facts {
		out.facts[k] = v
	}
	for k, v := range b.facts {
		out.facts[k] = v
	}
	return out, nil
}

// MergeInto merges src's facts into j in place, after checking the
// namespace precondition. Used by sync/gossip paths that want to avoid
// allocating a fresh Journal per merge.
func (j *Journal) MergeInto(src *Journal) error {
	if !j.ns.Equal(src.ns) {
		return ErrNamespaceMismatch
	}
	for k, v := range src.facts {
		j.facts[k] = v
	}
	return nil
}

// Clone returns a deep-enough copy (facts are immutable, so only the map
// is copied) suitable for snapshotting a read view.
func (j *Journal) Clone() *Journal {
	out := New(j.ns)
	for k, v := range j.facts {
		out.facts[k] = v
	}
	return out
}
