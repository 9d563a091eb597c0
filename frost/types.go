// Package frost implements threshold consensus: k-of-n FROST-style
// commit choreography with pipelined nonce commitments and equivocation
// exclusion.
//
// A validator-keyed aggregator collects signature shares per round;
// equivocation is handled exclude-then-proceed rather than
// abort-and-reopen, so one byzantine witness never stalls the rest.
package frost

import (
	"crypto/sha256"
	"time"

	"github.com/auranet/aura/ids"
)

// Share is a single witness's contribution to one (session, round).
type Share struct {
	Session     ids.ConsensusId
	Round       uint64
	Participant ids.NodeID
	Data        []byte
}

// CommitFact is the k-of-n signed agreement on a prestate transition.
type CommitFact struct {
	PrestateHash [32]byte
	ResultID     [32]byte
	Signature    []byte
	Participants []ids.NodeID
	Proof        []byte
}

// EncodeCommit returns cf's payload layout for a journal.RelConsensusCommit
// fact scoped to session: session(16) || prestate_hash(32) ||
// result_id(32) || signature.
func (cf CommitFact) EncodeCommit(session ids.ConsensusId) []byte {
	buf := make([]byte, 0, 16+32+32+len(cf.Signature))
	buf = append(buf, session.Bytes()...)
	buf = append(buf, cf.PrestateHash[:]...)
	buf = append(buf, cf.ResultID[:]...)
	buf = append(buf, cf.Signature...)
	return buf
}

// AbortFact records that a consensus instance failed to reach agreement
// before its deadline.
type AbortFact struct {
	Session ids.ConsensusId
	Reason  string
}

// EquivocationProof is constructed from two shares by the same witness
// on the same (session, round) carrying distinct payloads.
type EquivocationProof struct {
	Witness ids.NodeID
	Round   uint64
	ShareA  Share
	ShareB  Share
}

// NonceCommitment is a witness's pre-generated commitment for a future
// round, tagged with the epoch it was generated under. Epoch rotation
// invalidates every cached commitment.
type NonceCommitment struct {
	Witness ids.NodeID
	Round   uint64
	Epoch   uint64
	Value   [32]byte
}

// WitnessSet is the ordered set of participants eligible to contribute
// to a consensus instance.
type WitnessSet struct {
	Members []ids.NodeID
}

// Contains reports whether id is a member.
func (w WitnessSet) Contains(id ids.NodeID) bool {
	for _, m := range w.Members {
		if m.Equal(id) {
			return true
		}
	}
	return false
}

// Without returns a copy of w with excluded removed.
func (w WitnessSet) Without(excluded ids.NodeID) WitnessSet {
	out := make([]ids.NodeID, 0, len(w.Members))
	for _, m := range w.Members {
		if !m.Equal(excluded) {
			out = append(out, m)
		}
	}
	return WitnessSet{Members: out}
}

func hashPrestate(prestate []byte) [32]byte { return sha256.Sum256(prestate) }

// deadline computes the absolute timeout for a phase starting at start.
func deadline(start time.Time, timeout time.Duration) time.Time {
	return start.Add(timeout)
}
