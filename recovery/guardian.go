// Package recovery implements guardian social recovery: threshold
// setup, consensus-gated share release, reconstruction, and membership
// change.
//
// Membership change callbacks generalize validator-set change listener
// bookkeeping to guardian membership. Share reconstruction works on the
// raw released share bytes; it does not use the frost package.
package recovery

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/auranet/aura/clock"
	"github.com/auranet/aura/fact"
	"github.com/auranet/aura/ids"
	"github.com/auranet/aura/journal"
)

var (
	ErrCeremonyTimedOut = errors.New("recovery: guardian setup ceremony timed out")
	ErrUnknownGuardian  = errors.New("recovery: guardian not in set")
	ErrAlreadyBound     = errors.New("recovery: guardian already committed a binding")
)

// GuardianSet is the set of guardians custodying an authority's
// root-key shares, and the threshold required to reconstruct it.
type GuardianSet struct {
	Guardians []ids.GuardianId
	Threshold int
}

// Contains reports whether g is a member.
func (s GuardianSet) Contains(g ids.GuardianId) bool {
	for _, m := range s.Guardians {
		if m.Equal(g) {
			return true
		}
	}
	return false
}

// GuardianBindingFact is committed to the authority's own journal by
// each guardian on ceremony acceptance, and later checked by that
// guardian against an incoming RecoveryRequest.
type GuardianBindingFact struct {
	Guardian  ids.GuardianId
	Account   ids.AccountId
	ShareHash [32]byte
	Signature []byte
	PublicKey ed25519.PublicKey
}

// EncodeBinding returns b's payload layout for a journal.RelGuardianBinding
// fact: guardian(16) || account(16) || share_hash(32) || public_key.
func (b GuardianBindingFact) EncodeBinding() []byte {
	buf := make([]byte, 0, 16+16+32+len(b.PublicKey))
	buf = append(buf, b.Guardian.Bytes()...)
	buf = append(buf, b.Account.Bytes()...)
	buf = append(buf, b.ShareHash[:]...)
	buf = append(buf, b.PublicKey...)
	return buf
}

// Ceremony tracks guardian acknowledgements for a single setup (or
// membership-change) round. Setup succeeds iff every guardian
// acknowledges before the ceremony deadline.
type Ceremony struct {
	set       GuardianSet
	deadline  time.Time
	bindings  map[ids.GuardianId]GuardianBindingFact
}

// NewCeremony starts a ceremony for set, bounded by timeout starting at
// now.
func NewCeremony(set GuardianSet, timeout time.Duration, now time.Time) *Ceremony {
	return &Ceremony{
		set:      set,
		deadline: now.Add(timeout),
		bindings: make(map[ids.GuardianId]GuardianBindingFact),
	}
}

// Commit records a guardian's binding acknowledgement.
func (c *Ceremony) Commit(b GuardianBindingFact) error {
	if !c.set.Contains(b.Guardian) {
		return ErrUnknownGuardian
	}
	if _, ok := c.bindings[b.Guardian]; ok {
		return ErrAlreadyBound
	}
	c.bindings[b.Guardian] = b
	return nil
}

// CommitToJournal records b's binding acknowledgement, like Commit, and
// additionally appends it as a journal.RelGuardianBinding fact to j,
// which must be the authority's own journal: "each guardian commits a
// GuardianBindingFact to A's authority journal (through A)". The fact
// carries no cross-authority Context (guardian bindings are not a
// relational assertion between authorities); journal.ReduceContext
// reduces it regardless of the journal's namespace tag. On a journal
// append failure the in-memory binding is rolled back so the two stay
// consistent.
func (c *Ceremony) CommitToJournal(j *journal.Journal, b GuardianBindingFact, order fact.OrderTime, ts clock.TimeStamp) error {
	if err := c.Commit(b); err != nil {
		return err
	}
	f := fact.Fact{
		Order:     order,
		Timestamp: ts,
		Content: fact.Relational{
			RelType:   journal.RelGuardianBinding,
			Payload:   b.EncodeBinding(),
			Signature: b.Signature,
		},
	}
	if err := j.AddFact(f); err != nil {
		delete(c.bindings, b.Guardian)
		return err
	}
	return nil
}

// Complete reports whether every guardian in the set has committed a
// binding, i.e. setup succeeded.
func (c *Ceremony) Complete() bool {
	return len(c.bindings) == len(c.set.Guardians)
}

// Expired reports whether now is past the ceremony deadline.
func (c *Ceremony) Expired(now time.Time) bool { return now.After(c.deadline) }

// Finish returns every committed binding if the ceremony completed
// before its deadline, or ErrCeremonyTimedOut otherwise.
func (c *Ceremony) Finish(now time.Time) ([]GuardianBindingFact, error) {
	if !c.Complete() || c.Expired(now) {
		return nil, ErrCeremonyTimedOut
	}
	out := make([]GuardianBindingFact, 0, len(c.bindings))
	for _, b := range c.bindings {
		out = append(out, b)
	}
	return out, nil
}
