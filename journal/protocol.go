package journal

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/auranet/aura/fact"
	"github.com/auranet/aura/ids"
)

// Protocol-tier Relational type-ids: the well-known facts every node is
// expected to be able to reduce, as opposed to a domain fact whose
// type-id is simply unknown and stored through. NewProtocolRegistry
// marks and registers a reducer for each of these.
var (
	RelGuardianBinding = fact.TypeID{0x10}
	RelConsensusCommit = fact.TypeID{0x11}
	RelChannelEpoch    = fact.TypeID{0x12}
	RelDKGTranscript   = fact.TypeID{0x13}
	RelLeakageEvent    = fact.TypeID{0x14}
)

// NewProtocolRegistry returns a Registry with every protocol-tier
// reducer registered and marked protocol: reducing a fact carrying one
// of the five type-ids above without its reducer present is a
// programmer error the generic Registry already makes fatal, not
// something that can happen via this constructor.
func NewProtocolRegistry() *Registry {
	r := NewRegistry()
	for _, reducer := range []Reducer{
		GuardianBindingReducer{},
		ConsensusCommitReducer{},
		ChannelEpochReducer{},
		DKGTranscriptReducer{},
		LeakageEventReducer{},
	} {
		r.MarkProtocol(reducer.TypeID())
		r.Register(reducer)
	}
	return r
}

// GuardianBinding is the reduced form of a RelGuardianBinding fact:
// guardian(16) || account(16) || share_hash(32) || public_key.
type GuardianBinding struct {
	Guardian  ids.GuardianId
	Account   ids.AccountId
	ShareHash [32]byte
	PublicKey []byte
}

// GuardianBindingReducer reduces the guardian-binding facts each
// guardian commits to an authority's journal during a setup ceremony.
type GuardianBindingReducer struct{}

func (GuardianBindingReducer) TypeID() fact.TypeID { return RelGuardianBinding }

func (GuardianBindingReducer) Reduce(r fact.Relational) (string, RelationalBinding, error) {
	if len(r.Payload) < 16+16+32 {
		return "", nil, fact.ErrMalformed
	}
	guardian, err := ids.GuardianIdFromBytes(r.Payload[0:16])
	if err != nil {
		return "", nil, err
	}
	account, err := ids.AccountIdFromBytes(r.Payload[16:32])
	if err != nil {
		return "", nil, err
	}
	var shareHash [32]byte
	copy(shareHash[:], r.Payload[32:64])
	binding := GuardianBinding{
		Guardian:  guardian,
		Account:   account,
		ShareHash: shareHash,
		PublicKey: append([]byte{}, r.Payload[64:]...),
	}
	key := fmt.Sprintf("guardian-binding:%s:%s", account.String(), guardian.String())
	return key, binding, nil
}

// ConsensusCommit is the reduced form of a RelConsensusCommit fact:
// session(16) || prestate_hash(32) || result_id(32) || signature.
type ConsensusCommit struct {
	Session      ids.ConsensusId
	PrestateHash [32]byte
	ResultID     [32]byte
}

// ConsensusCommitReducer reduces the commit facts a FROST instance
// journals to its context on close, keyed per consensus session so
// successive instances in the same context never collide.
type ConsensusCommitReducer struct{}

func (ConsensusCommitReducer) TypeID() fact.TypeID { return RelConsensusCommit }

func (ConsensusCommitReducer) Reduce(r fact.Relational) (string, RelationalBinding, error) {
	if len(r.Payload) < 16+32+32 {
		return "", nil, fact.ErrMalformed
	}
	session, err := ids.ConsensusIdFromBytes(r.Payload[0:16])
	if err != nil {
		return "", nil, err
	}
	var prestateHash, resultID [32]byte
	copy(prestateHash[:], r.Payload[16:48])
	copy(resultID[:], r.Payload[48:80])
	commit := ConsensusCommit{Session: session, PrestateHash: prestateHash, ResultID: resultID}
	return "consensus-commit:" + session.String(), commit, nil
}

// ChannelEpochReducer reduces channel epoch-rotation facts. Each
// rotation is keyed by (channel, epoch) rather than just channel, since
// a channel's epoch-state history is multiple facts of the same
// RelChannelEpoch type; a caller wanting the current epoch takes the
// max uint64 binding across every "channel-epoch:<id>:*" key.
type ChannelEpochReducer struct{}

func (ChannelEpochReducer) TypeID() fact.TypeID { return RelChannelEpoch }

func (ChannelEpochReducer) Reduce(r fact.Relational) (string, RelationalBinding, error) {
	if len(r.Payload) != 16+8 {
		return "", nil, fact.ErrMalformed
	}
	channel, err := ids.ChannelIdFromBytes(r.Payload[0:16])
	if err != nil {
		return "", nil, err
	}
	epoch := binary.BigEndian.Uint64(r.Payload[16:24])
	key := fmt.Sprintf("channel-epoch:%s:%d", channel.String(), epoch)
	return key, epoch, nil
}

// DKGTranscriptReducer reduces distributed-key-generation transcript
// facts. The transcript contents are domain-specific and opaque to this
// reducer; it only makes the fact addressable by (context, content hash)
// so repeated rounds in one context never collide on key.
type DKGTranscriptReducer struct{}

func (DKGTranscriptReducer) TypeID() fact.TypeID { return RelDKGTranscript }

func (DKGTranscriptReducer) Reduce(r fact.Relational) (string, RelationalBinding, error) {
	h := sha256.Sum256(r.Payload)
	key := fmt.Sprintf("dkg-transcript:%s:%x", r.Context.String(), h[:8])
	return key, append([]byte{}, r.Payload...), nil
}

// LeakageEventReducer reduces key-leakage incident facts, one binding
// per distinct event so a context can accumulate several without
// colliding on key.
type LeakageEventReducer struct{}

func (LeakageEventReducer) TypeID() fact.TypeID { return RelLeakageEvent }

func (LeakageEventReducer) Reduce(r fact.Relational) (string, RelationalBinding, error) {
	h := sha256.Sum256(r.Payload)
	key := fmt.Sprintf("leakage-event:%s:%x", r.Context.String(), h[:8])
	return key, append([]byte{}, r.Payload...), nil
}
