// Package transport implements the Envelope wire format: a
// routing-essential header plus a capability-blinded, bucket-padded
// payload. Capability requirements are never carried in the clear;
// only a sender hint and the routing fields are visible to relays.
//
// The frame generalizes a fixed set of consensus request/response kinds
// down to a single generic, nodeID-addressed frame carrying an opaque,
// privacy-scoped payload.
package transport

import (
	"encoding/binary"
	"errors"

	"github.com/auranet/aura/ids"
)

// PrivacyLevel controls padding bucket size and whether capability
// metadata may ride alongside the payload in the clear.
type PrivacyLevel uint8

const (
	// Clear frames pad to the smallest bucket; used only for public,
	// non-sensitive routing traffic (e.g. rendezvous beacons).
	Clear PrivacyLevel = iota
	// Blinded frames never carry capability metadata in the clear and
	// pad to the largest bucket, making size-based traffic analysis
	// across privacy levels ineffective.
	Blinded
	// RelScoped frames carry a relational-context hint but still blind
	// capability requirements; mid-sized bucket.
	RelScoped
)

// FrameType distinguishes the envelope's payload without revealing its
// content.
type FrameType uint8

const (
	FrameFact FrameType = iota
	FrameChoreography
	FrameRendezvous
)

var (
	ErrUnknownPrivacyLevel = errors.New("transport: unknown privacy level")
	ErrPayloadTooLarge     = errors.New("transport: payload exceeds largest padding bucket")
)

// bucket sizes, in bytes, indexed by PrivacyLevel. Fixed buckets defeat
// length-based correlation between distinct messages at the same
// privacy level.
var bucketSize = map[PrivacyLevel]int{
	Clear:     256,
	RelScoped: 1024,
	Blinded:   4096,
}

// Envelope is the wire frame exchanged between nodes.
type Envelope struct {
	ContextID    ids.ContextId
	FrameType    FrameType
	PrivacyLevel PrivacyLevel
	Epoch        uint64
	SenderHint   ids.NodeID
	Payload      []byte
}

// Pad returns payload padded to the fixed bucket for level, with a
// 4-byte big-endian length prefix so Unpad can recover the exact
// original length. It never exposes the unpadded length through the
// wire size; only the bucket boundary is observable.
func Pad(level PrivacyLevel, payload []byte) ([]byte, error) {
	size, ok := bucketSize[level]
	if !ok {
		return nil, ErrUnknownPrivacyLevel
	}
	if len(payload)+4 > size {
		return nil, ErrPayloadTooLarge
	}
	out := make([]byte, size)
	binary.BigEndian.PutUint32(out[:4], uint32(len(payload)))
	copy(out[4:], payload)
	return out, nil
}

// Unpad recovers the original payload from a padded bucket.
func Unpad(level PrivacyLevel, padded []byte) ([]byte, error) {
	size, ok := bucketSize[level]
	if !ok {
		return nil, ErrUnknownPrivacyLevel
	}
	if len(padded) != size {
		return nil, ErrPayloadTooLarge
	}
	n := binary.BigEndian.Uint32(padded[:4])
	if int(n) > size-4 {
		return nil, ErrPayloadTooLarge
	}
	return append([]byte{}, padded[4:4+n]...), nil
}

// Encode serializes the envelope's routing header plus its
// bucket-padded payload. Capability requirements must never be placed
// in e.Payload's cleartext prefix for Blinded frames; that invariant is
// enforced by callers (guard/effect), not by this wire format.
func (e Envelope) Encode() ([]byte, error) {
	padded, err := Pad(e.PrivacyLevel, e.Payload)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 16+1+1+8+16+len(padded))
	buf = append(buf, e.ContextID.Bytes()...)
	buf = append(buf, byte(e.FrameType))
	buf = append(buf, byte(e.PrivacyLevel))
	var epoch [8]byte
	binary.BigEndian.PutUint64(epoch[:], e.Epoch)
	buf = append(buf, epoch[:]...)
	buf = append(buf, e.SenderHint.Bytes()...)
	buf = append(buf, padded...)
	return buf, nil
}

// headerSize is context_id(16) + frame_type(1) + privacy_level(1) +
// epoch(8) + sender_hint(16).
const headerSize = 16 + 1 + 1 + 8 + 16

var ErrShortFrame = errors.New("transport: frame shorter than header")

// Decode parses a wire frame produced by Encode.
func Decode(raw []byte) (Envelope, error) {
	if len(raw) < headerSize {
		return Envelope{}, ErrShortFrame
	}
	contextID, err := ids.ContextIdFromBytes(raw[0:16])
	if err != nil {
		return Envelope{}, err
	}
	frameType := FrameType(raw[16])
	privacy := PrivacyLevel(raw[17])
	epoch := binary.BigEndian.Uint64(raw[18:26])
	senderHint, err := ids.NodeIDFromBytes(raw[26:42])
	if err != nil {
		return Envelope{}, err
	}
	payload, err := Unpad(privacy, raw[headerSize:])
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ContextID:    contextID,
		FrameType:    frameType,
		PrivacyLevel: privacy,
		Epoch:        epoch,
		SenderHint:   senderHint,
		Payload:      payload,
	}, nil
}
