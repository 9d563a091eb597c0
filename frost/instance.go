package frost

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/auranet/aura/clock"
	"github.com/auranet/aura/fact"
	"github.com/auranet/aura/ids"
	"github.com/auranet/aura/journal"
)

var (
	ErrInsufficient       = errors.New("frost: insufficient valid shares")
	ErrAlreadyClosed      = errors.New("frost: instance already closed")
	ErrUnknownWitness     = errors.New("frost: witness not in set")
	ErrRoundMismatch      = errors.New("frost: shares disagree on round")
	ErrEquivocator        = errors.New("frost: witness excluded for equivocation")
)

// Instance is a single consensus attempt: opened on request, closed on
// commit or abort. Consensus owns the instance; witness shares live
// inside it rather than in a separate aggregator, so ownership of a
// share never outlives the instance it was contributed to.
type Instance struct {
	mu sync.Mutex

	id           ids.ConsensusId
	prestateHash [32]byte
	threshold    int
	witnesses    WitnessSet
	epoch        uint64
	deadline     time.Time

	pendingByRound map[uint64][]Share
	seenPayload    map[ids.NodeID]map[uint64][]byte // witness -> round -> first-seen payload
	equivocators   map[ids.NodeID]EquivocationProof
	nonces         map[uint64]map[ids.NodeID]NonceCommitment // round -> witness -> commitment

	closed bool
	commit *CommitFact
	abort  *AbortFact
}

// Open starts a new consensus instance.
func Open(instance ids.ConsensusId, prestate []byte, threshold int, witnesses WitnessSet, epoch uint64, roundTimeout time.Duration, now time.Time) *Instance {
	return &Instance{
		id:             instance,
		prestateHash:   hashPrestate(prestate),
		threshold:      threshold,
		witnesses:      witnesses,
		epoch:          epoch,
		deadline:       deadline(now, roundTimeout),
		pendingByRound: make(map[uint64][]Share),
		seenPayload:    make(map[ids.NodeID]map[uint64][]byte),
		equivocators:   make(map[ids.NodeID]EquivocationProof),
		nonces:         make(map[uint64]map[ids.NodeID]NonceCommitment),
	}
}

// ID returns the instance's ConsensusId.
func (inst *Instance) ID() ids.ConsensusId { return inst.id }

// ContributeShare records a witness's share for its (session, round). If
// the witness has already contributed a different payload for that
// round, an EquivocationProof is recorded and the witness is excluded
// from the witness set for this instance: exclude-then-proceed, not
// abort-and-reopen.
func (inst *Instance) ContributeShare(s Share) error {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	if inst.closed {
		return ErrAlreadyClosed
	}
	if !s.Session.Equal(inst.id) {
		return fmt.Errorf("frost: share for wrong session")
	}
	if _, excluded := inst.equivocators[s.Participant]; excluded {
		return ErrEquivocator
	}
	if !inst.witnesses.Contains(s.Participant) {
		return ErrUnknownWitness
	}

	byRound, ok := inst.seenPayload[s.Participant]
	if !ok {
		byRound = make(map[uint64][]byte)
		inst.seenPayload[s.Participant] = byRound
	}
	if prior, seen := byRound[s.Round]; seen {
		if !bytesEqual(prior, s.Data) {
			proof := EquivocationProof{
				Witness: s.Participant,
				Round:   s.Round,
				ShareA:  Share{Session: s.Session, Round: s.Round, Participant: s.Participant, Data: prior},
				ShareB:  s,
			}
			inst.equivocators[s.Participant] = proof
			inst.witnesses = inst.witnesses.Without(s.Participant)
			inst.pruneWitness(s.Participant)
			return ErrEquivocator
		}
		return nil // duplicate identical share, absorbed
	}
	byRound[s.Round] = s.Data
	inst.pendingByRound[s.Round] = append(inst.pendingByRound[s.Round], s)
	return nil
}

func (inst *Instance) pruneWitness(w ids.NodeID) {
	for round, shares := range inst.pendingByRound {
		kept := shares[:0]
		for _, s := range shares {
			if !s.Participant.Equal(w) {
				kept = append(kept, s)
			}
		}
		inst.pendingByRound[round] = kept
	}
}

// EquivocationProofs returns every equivocation proof recorded so far.
func (inst *Instance) EquivocationProofs() []EquivocationProof {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	out := make([]EquivocationProof, 0, len(inst.equivocators))
	for _, p := range inst.equivocators {
		out = append(out, p)
	}
	return out
}

// PrecomputeNonce stores a pipelined nonce commitment for a future
// round, tagged with the epoch it was generated under.
func (inst *Instance) PrecomputeNonce(c NonceCommitment) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if c.Epoch != inst.epoch {
		return // stale epoch, never cached
	}
	byWitness, ok := inst.nonces[c.Round]
	if !ok {
		byWitness = make(map[ids.NodeID]NonceCommitment)
		inst.nonces[c.Round] = byWitness
	}
	byWitness[c.Witness] = c
}

// RotateEpoch advances the epoch and invalidates every cached nonce
// commitment.
func (inst *Instance) RotateEpoch(newEpoch uint64) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.epoch = newEpoch
	inst.nonces = make(map[uint64]map[ids.NodeID]NonceCommitment)
}

// Aggregate may aggregate iff all pending shares for the target round
// agree on (session, round) and there are at least threshold distinct,
// non-equivocating witnesses; otherwise it refuses.
func (inst *Instance) Aggregate(round uint64, signer ed25519.PrivateKey, resultID [32]byte) (ThresholdSignature, error) {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	if inst.closed {
		return ThresholdSignature{}, ErrAlreadyClosed
	}
	shares := inst.pendingByRound[round]
	distinct := map[ids.NodeID]struct{}{}
	for _, s := range shares {
		if s.Round != round {
			return ThresholdSignature{}, ErrRoundMismatch
		}
		distinct[s.Participant] = struct{}{}
	}
	if len(distinct) < inst.threshold {
		return ThresholdSignature{}, ErrInsufficient
	}

	signers := make([]ids.NodeID, 0, len(distinct))
	for w := range distinct {
		signers = append(signers, w)
	}
	payload := append(append([]byte{}, inst.prestateHash[:]...), resultID[:]...)
	sig := ed25519.Sign(signer, payload)
	return ThresholdSignature{
		Signature:    sig,
		Participants: signers,
		ResultID:     resultID,
	}, nil
}

// ThresholdSignature is the output of a successful Aggregate call.
type ThresholdSignature struct {
	Signature    []byte
	Participants []ids.NodeID
	ResultID     [32]byte
}

// Close finalizes the instance with a CommitFact built from sig,
// enforcing the Agreement invariant: at most one CommitFact per
// ConsensusId.
func (inst *Instance) Close(sig ThresholdSignature) (CommitFact, error) {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	if inst.closed {
		return CommitFact{}, ErrAlreadyClosed
	}
	if len(sig.Participants) < inst.threshold {
		return CommitFact{}, ErrInsufficient
	}
	cf := CommitFact{
		PrestateHash: inst.prestateHash,
		ResultID:     sig.ResultID,
		Signature:    sig.Signature,
		Participants: sig.Participants,
	}
	inst.closed = true
	inst.commit = &cf
	return cf, nil
}

// CloseToJournal finalizes the instance like Close, and additionally
// journals the resulting CommitFact to j as a journal.RelConsensusCommit
// fact scoped to ctx, so the agreement survives a reload the same way
// an authority journal's AttestedOp facts do.
func (inst *Instance) CloseToJournal(sig ThresholdSignature, j *journal.Journal, ctx ids.ContextId, order fact.OrderTime, ts clock.TimeStamp) (CommitFact, error) {
	cf, err := inst.Close(sig)
	if err != nil {
		return CommitFact{}, err
	}
	f := fact.Fact{
		Order:     order,
		Timestamp: ts,
		Content: fact.Relational{
			Context:   ctx,
			RelType:   journal.RelConsensusCommit,
			Payload:   cf.EncodeCommit(inst.ID()),
			Signature: cf.Signature,
		},
	}
	if err := j.AddFact(f); err != nil {
		return CommitFact{}, err
	}
	return cf, nil
}

// Abort finalizes the instance without agreement, recording reason.
func (inst *Instance) Abort(reason string) AbortFact {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	af := AbortFact{Session: inst.id, Reason: reason}
	if !inst.closed {
		inst.closed = true
		inst.abort = &af
	}
	return af
}

// Expired reports whether now is past the instance's round deadline.
func (inst *Instance) Expired(now time.Time) bool {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return now.After(inst.deadline)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
