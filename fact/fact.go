// Package fact defines Aura's immutable journal entry: the Fact
// envelope, its OrderTime total order key, and the FactContent variants
// (AttestedOp, Relational, Snapshot, RendezvousReceipt).
//
// Facts are content addressed and append-only, the same shape as a DAG
// vertex or witness record.
package fact

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"github.com/auranet/aura/clock"
	"github.com/auranet/aura/ids"
)

// ErrMalformed is returned when a Fact's content fails structural
// validation.
var ErrMalformed = errors.New("fact: malformed content")

// TypeID is a stable 128-bit identifier for a FactContent variant,
// carried in the wire envelope so unknown types can be stored without
// being understood.
type TypeID [16]byte

var (
	TypeAttestedOp         = TypeID{0x01}
	TypeRelational         = TypeID{0x02}
	TypeSnapshot           = TypeID{0x03}
	TypeRendezvousReceipt  = TypeID{0x04}
)

// OrderTime is the total, deterministic order key used for reduction.
// It is constructed so that no two committed facts from the system ever
// compare equal: (Epoch, Origin, Seq) is unique per fact because Seq is
// a strictly monotone per-authority counter.
type OrderTime struct {
	Epoch  uint64
	Origin ids.AuthorityId
	Seq    uint64
}

// Compare returns -1, 0, or 1. Ties are impossible by construction (see
// above), so this total order never needs a secondary tie-break beyond
// content hash at the call site.
func (o OrderTime) Compare(other OrderTime) int {
	if o.Epoch != other.Epoch {
		return cmpU64(o.Epoch, other.Epoch)
	}
	if c := o.Origin.Compare(other.Origin); c != 0 {
		return c
	}
	return cmpU64(o.Seq, other.Seq)
}

func cmpU64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// FactContent is implemented by each of the four content kinds. Domain
// facts (opaque envelope + type-id) also implement it via Opaque.
type FactContent interface {
	TypeID() TypeID
	// Encode returns a canonical byte representation used both for the
	// content hash and for the wire payload.
	Encode() []byte
}

// Fact is an immutable, committed journal entry.
type Fact struct {
	Order     OrderTime
	Timestamp clock.TimeStamp
	Content   FactContent
}

// ContentHash is the SHA-256 of the content's canonical encoding,
// combined with the sort key in Less.
func (f Fact) ContentHash() [32]byte {
	return sha256.Sum256(f.Content.Encode())
}

// Less implements the total reduction order: (order, content_hash).
func (f Fact) Less(g Fact) bool {
	if c := f.Order.Compare(g.Order); c != 0 {
		return c < 0
	}
	fh, gh := f.ContentHash(), g.ContentHash()
	for i := range fh {
		if fh[i] != gh[i] {
			return fh[i] < gh[i]
		}
	}
	return false
}

// Validate performs structural validation of the fact's content.
func (f Fact) Validate() error {
	if f.Content == nil {
		return ErrMalformed
	}
	if len(f.Content.Encode()) == 0 {
		return ErrMalformed
	}
	return nil
}

// --- Content kinds ---

// AttestedOp describes a tree-structural operation on an authority's
// commitment tree (device membership, key rotation, guardian binding).
type AttestedOp struct {
	OpKind    string
	AuthorID  ids.AuthorityId
	ParentRef [32]byte
	Payload   []byte
	Signature []byte
}

func (AttestedOp) TypeID() TypeID { return TypeAttestedOp }

// Encode is length-prefixed and self-describing so DecodeAttestedOp can
// invert it exactly: op_kind || author_id(16) || parent_ref(32) ||
// payload || signature, with the two variable-length fields carrying a
// 4-byte big-endian length prefix.
func (o AttestedOp) Encode() []byte {
	buf := appendLengthPrefixed(nil, []byte(o.OpKind))
	buf = append(buf, o.AuthorID.Bytes()...)
	buf = append(buf, o.ParentRef[:]...)
	buf = appendLengthPrefixed(buf, o.Payload)
	buf = appendLengthPrefixed(buf, o.Signature)
	return buf
}

// DecodeAttestedOp reconstructs an AttestedOp from the bytes Encode
// produced.
func DecodeAttestedOp(data []byte) (AttestedOp, error) {
	opKind, rest, err := readLengthPrefixed(data)
	if err != nil {
		return AttestedOp{}, err
	}
	if len(rest) < 16+32 {
		return AttestedOp{}, ErrMalformed
	}
	authorID, err := ids.AuthorityIdFromBytes(rest[:16])
	if err != nil {
		return AttestedOp{}, err
	}
	var parentRef [32]byte
	copy(parentRef[:], rest[16:48])
	rest = rest[48:]

	payload, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return AttestedOp{}, err
	}
	signature, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return AttestedOp{}, err
	}
	if len(rest) != 0 {
		return AttestedOp{}, ErrMalformed
	}
	return AttestedOp{
		OpKind:    string(opKind),
		AuthorID:  authorID,
		ParentRef: parentRef,
		Payload:   payload,
		Signature: signature,
	}, nil
}

// Relational is a cross-authority assertion scoped to a context.
type Relational struct {
	Context   ids.ContextId
	RelType   TypeID
	Payload   []byte
	Signature []byte
}

func (Relational) TypeID() TypeID { return TypeRelational }

// Encode is length-prefixed and self-describing so DecodeRelational can
// invert it exactly: context(16) || rel_type(16) || payload || signature.
func (r Relational) Encode() []byte {
	buf := append([]byte{}, r.Context.Bytes()...)
	buf = append(buf, r.RelType[:]...)
	buf = appendLengthPrefixed(buf, r.Payload)
	buf = appendLengthPrefixed(buf, r.Signature)
	return buf
}

// DecodeRelational reconstructs a Relational from the bytes Encode
// produced.
func DecodeRelational(data []byte) (Relational, error) {
	if len(data) < 16+16 {
		return Relational{}, ErrMalformed
	}
	ctx, err := ids.ContextIdFromBytes(data[:16])
	if err != nil {
		return Relational{}, err
	}
	var relType TypeID
	copy(relType[:], data[16:32])
	rest := data[32:]

	payload, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return Relational{}, err
	}
	signature, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return Relational{}, err
	}
	if len(rest) != 0 {
		return Relational{}, ErrMalformed
	}
	return Relational{Context: ctx, RelType: relType, Payload: payload, Signature: signature}, nil
}

// Snapshot is a GC checkpoint: the reduced state as of some OrderTime,
// marking older facts compactable.
type Snapshot struct {
	AsOf          OrderTime
	ReducedState  []byte
	CompactedThru uint64
}

func (Snapshot) TypeID() TypeID { return TypeSnapshot }

// Encode is self-contained so DecodeSnapshot can reconstruct AsOf
// without the caller separately tracking it: as_of.epoch(8) ||
// as_of.origin(16) || as_of.seq(8) || compacted_thru(8) || reduced_state.
func (s Snapshot) Encode() []byte {
	buf := make([]byte, 8+16+8+8)
	binary.BigEndian.PutUint64(buf[0:8], s.AsOf.Epoch)
	copy(buf[8:24], s.AsOf.Origin.Bytes())
	binary.BigEndian.PutUint64(buf[24:32], s.AsOf.Seq)
	binary.BigEndian.PutUint64(buf[32:40], s.CompactedThru)
	buf = append(buf, s.ReducedState...)
	return buf
}

// DecodeSnapshot reconstructs a Snapshot from the bytes Encode produced.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	if len(data) < 8+16+8+8 {
		return Snapshot{}, ErrMalformed
	}
	origin, err := ids.AuthorityIdFromBytes(data[8:24])
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		AsOf: OrderTime{
			Epoch:  binary.BigEndian.Uint64(data[0:8]),
			Origin: origin,
			Seq:    binary.BigEndian.Uint64(data[24:32]),
		},
		CompactedThru: binary.BigEndian.Uint64(data[32:40]),
		ReducedState:  append([]byte{}, data[40:]...),
	}, nil
}

// RendezvousReceipt records a message-flow acknowledgement used by the
// journal coupler to bind a send to a fact.
type RendezvousReceipt struct {
	Channel   ids.ChannelId
	Epoch     uint64
	Digest    [32]byte
}

func (RendezvousReceipt) TypeID() TypeID { return TypeRendezvousReceipt }

// Encode is fixed-width so DecodeRendezvousReceipt can invert it
// exactly: channel(16) || epoch(8) || digest(32).
func (r RendezvousReceipt) Encode() []byte {
	buf := make([]byte, 16+8+32)
	copy(buf[0:16], r.Channel.Bytes())
	binary.BigEndian.PutUint64(buf[16:24], r.Epoch)
	copy(buf[24:56], r.Digest[:])
	return buf
}

// DecodeRendezvousReceipt reconstructs a RendezvousReceipt from the
// bytes Encode produced.
func DecodeRendezvousReceipt(data []byte) (RendezvousReceipt, error) {
	if len(data) != 16+8+32 {
		return RendezvousReceipt{}, ErrMalformed
	}
	channel, err := ids.ChannelIdFromBytes(data[:16])
	if err != nil {
		return RendezvousReceipt{}, err
	}
	var digest [32]byte
	copy(digest[:], data[24:56])
	return RendezvousReceipt{
		Channel: channel,
		Epoch:   binary.BigEndian.Uint64(data[16:24]),
		Digest:  digest,
	}, nil
}

// Opaque wraps a domain fact: a type-id the registry does not recognize,
// stored through without contributing to derived state.
type Opaque struct {
	Type    TypeID
	Payload []byte
}

func (o Opaque) TypeID() TypeID { return o.Type }
func (o Opaque) Encode() []byte { return append(append([]byte{}, o.Type[:]...), o.Payload...) }

// DecodeContent reconstructs the concrete FactContent for t from payload,
// mirroring the wire type-ids above. A type-id this build doesn't
// recognize falls back to Opaque, the same store-through treatment
// ReduceContext gives an unregistered domain type.
func DecodeContent(t TypeID, payload []byte) (FactContent, error) {
	switch t {
	case TypeAttestedOp:
		return DecodeAttestedOp(payload)
	case TypeRelational:
		return DecodeRelational(payload)
	case TypeSnapshot:
		return DecodeSnapshot(payload)
	case TypeRendezvousReceipt:
		return DecodeRendezvousReceipt(payload)
	default:
		// Opaque.Encode prefixes the type-id; strip it so the payload
		// round-trips unchanged.
		var prefix TypeID
		if len(payload) >= len(prefix) {
			copy(prefix[:], payload)
			if prefix == t {
				payload = payload[len(prefix):]
			}
		}
		return Opaque{Type: t, Payload: payload}, nil
	}
}
