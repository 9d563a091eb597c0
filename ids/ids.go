// Package ids defines the opaque 128-bit identifiers shared across Aura.
//
// Every identifier kind (AuthorityId, DeviceId, ContextId, ...) wraps the
// same underlying uuid.UUID value. None of them support arithmetic; only
// equality and a total order (lexicographic over the raw bytes) are
// exposed, matching the "opaque, globally unique" contract in the data
// model.
package ids

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// id is the common 128-bit representation underlying every identifier
// kind. It is not exported as a usable type on its own; each kind below
// is a distinct Go type so the compiler catches id-kind confusion.
type id = uuid.UUID

func newID() id {
	return uuid.New()
}

func idFromString(s string) (id, error) {
	return uuid.Parse(s)
}

func compare(a, b id) int {
	return bytes.Compare(a[:], b[:])
}

// AuthorityId identifies an authority's cryptographic namespace.
type AuthorityId struct{ v id }

// DeviceId identifies a device key held as a threshold share.
type DeviceId struct{ v id }

// ContextId identifies a relational context between two or more
// authorities.
type ContextId struct{ v id }

// SessionId identifies a choreography session (consensus, recovery, ...).
type SessionId struct{ v id }

// GuardianId identifies a guardian custodying a root-key share.
type GuardianId struct{ v id }

// AccountId identifies an account subject to guardian recovery.
type AccountId struct{ v id }

// ChannelId identifies a secure transport channel.
type ChannelId struct{ v id }

// ConsensusId identifies a single threshold consensus instance.
type ConsensusId struct{ v id }

// NodeID identifies a participant (witness, guardian, or peer) at the
// networking layer, independent of which higher-level role it plays.
type NodeID struct{ v id }

// generate one constructor/accessor pair per kind; deliberately
// repetitive rather than generic so each kind stays a distinct type.

func NewAuthorityId() AuthorityId { return AuthorityId{newID()} }
func NewDeviceId() DeviceId       { return DeviceId{newID()} }
func NewContextId() ContextId     { return ContextId{newID()} }
func NewSessionId() SessionId     { return SessionId{newID()} }
func NewGuardianId() GuardianId   { return GuardianId{newID()} }
func NewAccountId() AccountId     { return AccountId{newID()} }
func NewChannelId() ChannelId     { return ChannelId{newID()} }
func NewConsensusId() ConsensusId { return ConsensusId{newID()} }
func NewNodeID() NodeID           { return NodeID{newID()} }

func (x AuthorityId) Equal(o AuthorityId) bool { return x.v == o.v }
func (x DeviceId) Equal(o DeviceId) bool       { return x.v == o.v }
func (x ContextId) Equal(o ContextId) bool     { return x.v == o.v }
func (x SessionId) Equal(o SessionId) bool     { return x.v == o.v }
func (x GuardianId) Equal(o GuardianId) bool   { return x.v == o.v }
func (x AccountId) Equal(o AccountId) bool     { return x.v == o.v }
func (x ChannelId) Equal(o ChannelId) bool     { return x.v == o.v }
func (x ConsensusId) Equal(o ConsensusId) bool { return x.v == o.v }
func (x NodeID) Equal(o NodeID) bool           { return x.v == o.v }

func (x AuthorityId) Compare(o AuthorityId) int { return compare(x.v, o.v) }
func (x DeviceId) Compare(o DeviceId) int       { return compare(x.v, o.v) }
func (x ContextId) Compare(o ContextId) int     { return compare(x.v, o.v) }
func (x SessionId) Compare(o SessionId) int     { return compare(x.v, o.v) }
func (x GuardianId) Compare(o GuardianId) int   { return compare(x.v, o.v) }
func (x AccountId) Compare(o AccountId) int     { return compare(x.v, o.v) }
func (x ChannelId) Compare(o ChannelId) int     { return compare(x.v, o.v) }
func (x ConsensusId) Compare(o ConsensusId) int { return compare(x.v, o.v) }
func (x NodeID) Compare(o NodeID) int           { return compare(x.v, o.v) }

func (x AuthorityId) String() string { return x.v.String() }
func (x DeviceId) String() string    { return x.v.String() }
func (x ContextId) String() string   { return x.v.String() }
func (x SessionId) String() string   { return x.v.String() }
func (x GuardianId) String() string  { return x.v.String() }
func (x AccountId) String() string   { return x.v.String() }
func (x ChannelId) String() string   { return x.v.String() }
func (x ConsensusId) String() string { return x.v.String() }
func (x NodeID) String() string      { return x.v.String() }

func (x AuthorityId) Bytes() []byte { return x.v[:] }
func (x DeviceId) Bytes() []byte    { return x.v[:] }
func (x ContextId) Bytes() []byte   { return x.v[:] }
func (x SessionId) Bytes() []byte   { return x.v[:] }
func (x GuardianId) Bytes() []byte  { return x.v[:] }
func (x AccountId) Bytes() []byte   { return x.v[:] }
func (x ChannelId) Bytes() []byte   { return x.v[:] }
func (x ConsensusId) Bytes() []byte { return x.v[:] }
func (x NodeID) Bytes() []byte      { return x.v[:] }

func (x AuthorityId) MarshalJSON() ([]byte, error) { return json.Marshal(x.v.String()) }
func (x *AuthorityId) UnmarshalJSON(b []byte) error { return unmarshalID(b, &x.v) }
func (x ContextId) MarshalJSON() ([]byte, error)    { return json.Marshal(x.v.String()) }
func (x *ContextId) UnmarshalJSON(b []byte) error   { return unmarshalID(b, &x.v) }
func (x SessionId) MarshalJSON() ([]byte, error)    { return json.Marshal(x.v.String()) }
func (x *SessionId) UnmarshalJSON(b []byte) error   { return unmarshalID(b, &x.v) }
func (x ConsensusId) MarshalJSON() ([]byte, error)  { return json.Marshal(x.v.String()) }
func (x *ConsensusId) UnmarshalJSON(b []byte) error { return unmarshalID(b, &x.v) }

func unmarshalID(b []byte, dst *id) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := idFromString(s)
	if err != nil {
		return fmt.Errorf("ids: malformed identifier %q: %w", s, err)
	}
	*dst = parsed
	return nil
}

// AuthorityIdFromString parses a previously-rendered AuthorityId.
func AuthorityIdFromString(s string) (AuthorityId, error) {
	v, err := idFromString(s)
	return AuthorityId{v}, err
}

// ContextIdFromString parses a previously-rendered ContextId.
func ContextIdFromString(s string) (ContextId, error) {
	v, err := idFromString(s)
	return ContextId{v}, err
}

// ContextIdFromBytes parses a ContextId from its raw 16-byte form, as
// found in a wire envelope header.
func ContextIdFromBytes(b []byte) (ContextId, error) {
	v, err := uuid.FromBytes(b)
	return ContextId{v}, err
}

// AuthorityIdFromBytes parses an AuthorityId from its raw 16-byte form,
// as found in a persisted journal record header.
func AuthorityIdFromBytes(b []byte) (AuthorityId, error) {
	v, err := uuid.FromBytes(b)
	return AuthorityId{v}, err
}

// NodeIDFromBytes parses a NodeID from its raw 16-byte form.
func NodeIDFromBytes(b []byte) (NodeID, error) {
	v, err := uuid.FromBytes(b)
	return NodeID{v}, err
}

// ChannelIdFromBytes parses a ChannelId from its raw 16-byte form, as
// found in a RendezvousReceipt payload.
func ChannelIdFromBytes(b []byte) (ChannelId, error) {
	v, err := uuid.FromBytes(b)
	return ChannelId{v}, err
}

// GuardianIdFromBytes parses a GuardianId from its raw 16-byte form, as
// found in a guardian-binding fact payload.
func GuardianIdFromBytes(b []byte) (GuardianId, error) {
	v, err := uuid.FromBytes(b)
	return GuardianId{v}, err
}

// AccountIdFromBytes parses an AccountId from its raw 16-byte form, as
// found in a guardian-binding fact payload.
func AccountIdFromBytes(b []byte) (AccountId, error) {
	v, err := uuid.FromBytes(b)
	return AccountId{v}, err
}

// ConsensusIdFromBytes parses a ConsensusId from its raw 16-byte form,
// as found in a consensus-commit fact payload.
func ConsensusIdFromBytes(b []byte) (ConsensusId, error) {
	v, err := uuid.FromBytes(b)
	return ConsensusId{v}, err
}
