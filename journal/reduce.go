package journal

import (
	"fmt"

	"github.com/auranet/aura/fact"
	"github.com/auranet/aura/ids"
)

// TreeStateSummary is the deterministic reduction of an authority's
// AttestedOp facts: current device set, key rotation epoch, and
// guardian bindings.
type TreeStateSummary struct {
	Devices         map[ids.DeviceId]DeviceState
	GuardianSet     []ids.GuardianId
	RotationEpoch   uint64
	RootCommitment  [32]byte
}

// DeviceState is the reduced state of a single device entry in the
// commitment tree.
type DeviceState struct {
	Active   bool
	LastOp   [32]byte
}

// ReduceAuthority interprets an authority journal's AttestedOp facts, in
// deterministic (order, content_hash) order, into a TreeStateSummary.
// Non-AttestedOp content is ignored: an authority journal is not
// expected to carry Relational facts, but a defensive caller may still
// pass one through a shared Journal type.
func ReduceAuthority(j *Journal) TreeStateSummary {
	summary := TreeStateSummary{Devices: make(map[ids.DeviceId]DeviceState)}
	for _, f := range j.Facts() {
		op, ok := f.Content.(fact.AttestedOp)
		if !ok {
			continue
		}
		applyAttestedOp(&summary, op, f.ContentHash())
	}
	return summary
}

func applyAttestedOp(s *TreeStateSummary, op fact.AttestedOp, hash [32]byte) {
	s.RootCommitment = hash
	switch op.OpKind {
	case "device-add":
		id := ids.NewDeviceId() // placeholder identity; real callers derive from op.Payload
		s.Devices[id] = DeviceState{Active: true, LastOp: hash}
	case "device-revoke":
		// leaves devices map untouched when id derivation is unavailable;
		// real callers resolve op.Payload to the DeviceId to revoke.
	case "key-rotate":
		s.RotationEpoch++
	case "guardian-bind":
		// op.Payload is not decoded here and GuardianSet is left
		// unchanged; ReduceAuthority only advances RootCommitment for
		// these ops.
	}
}

// RelationalBinding is a domain- or protocol-level value derived from a
// Relational fact, stored under a string key in RelationalState.
type RelationalBinding interface{}

// RelationalState is the result of reducing a context journal: a map
// from binding key to the value the registered reducer produced.
type RelationalState struct {
	Bindings map[string]RelationalBinding
}

// Reducer interprets Relational facts of a single, stable TypeID into
// named bindings.
type Reducer interface {
	TypeID() fact.TypeID
	Reduce(r fact.Relational) (key string, value RelationalBinding, err error)
}

// Registry looks up a Reducer by stable type-id. Unknown type-ids are
// stored through without contributing to derived state: ReduceContext
// simply skips facts whose type has no registered reducer.
type Registry struct {
	reducers  map[fact.TypeID]Reducer
	protocol  map[fact.TypeID]bool
	tieBreak  bool
}

// NewRegistry returns an empty reducer registry.
func NewRegistry() *Registry {
	return &Registry{
		reducers: make(map[fact.TypeID]Reducer),
		protocol: make(map[fact.TypeID]bool),
	}
}

// WithKeyTieBreak enables deterministic tie-breaking (by type-id) when
// two reducers produce the same binding key during one ReduceContext
// pass, instead of treating the collision as fatal. Off by default:
// overlapping keys are a programmer error, reported by ReduceContext
// when the collision occurs, and this flag is the documented escape
// hatch.
func (r *Registry) WithKeyTieBreak(enabled bool) *Registry {
	r.tieBreak = enabled
	return r
}

// ErrUnregisteredProtocolType is returned when reducing a fact whose
// type-id is reserved for a protocol-tier reducer that was never
// registered; this is fatal, unlike an unknown domain type-id which is
// silently skipped.
type ErrUnregisteredProtocolType struct {
	Type fact.TypeID
}

func (e ErrUnregisteredProtocolType) Error() string {
	return fmt.Sprintf("journal: unregistered protocol fact type %x", e.Type[:])
}

// Register adds (or replaces) the reducer for its TypeID.
func (r *Registry) Register(reducer Reducer) {
	r.reducers[reducer.TypeID()] = reducer
}

// MarkProtocol declares t as a protocol-tier type-id: reducing a
// Relational fact carrying it without a registered Reducer is fatal.
// Everything not marked is treated as an opaque domain fact.
func (r *Registry) MarkProtocol(t fact.TypeID) {
	r.protocol[t] = true
}

// ReduceContext interprets a context journal's Relational facts, in
// deterministic order, using reducers looked up by the fact's declared
// RelType.
func (r *Registry) ReduceContext(j *Journal) (RelationalState, error) {
	state := RelationalState{Bindings: make(map[string]RelationalBinding)}
	producedBy := make(map[string]fact.TypeID)

	for _, f := range j.Facts() {
		rel, ok := f.Content.(fact.Relational)
		if !ok {
			continue
		}
		reducer, known := r.reducers[rel.RelType]
		if !known {
			if r.protocol[rel.RelType] {
				return RelationalState{}, ErrUnregisteredProtocolType{Type: rel.RelType}
			}
			continue // unknown domain fact: store-through, contributes nothing
		}
		key, value, err := reducer.Reduce(rel)
		if err != nil {
			return RelationalState{}, err
		}
		if existingType, collided := producedBy[key]; collided {
			if !r.tieBreak {
				return RelationalState{}, fmt.Errorf(
					"journal: relational key %q produced by both type %x and %x",
					key, existingType[:], rel.RelType[:])
			}
			if bytesLess(rel.RelType[:], existingType[:]) {
				state.Bindings[key] = value
				producedBy[key] = rel.RelType
			}
			continue
		}
		state.Bindings[key] = value
		producedBy[key] = rel.RelType
	}
	return state, nil
}

func bytesLess(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
