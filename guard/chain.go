package guard

import (
	"errors"

	"github.com/auranet/aura/cap"
	"github.com/auranet/aura/ids"
)

var (
	// ErrAuthorizationDenied is returned when CapGuard fails.
	ErrAuthorizationDenied = errors.New("guard: authorization denied")
	// ErrInsufficientBudget is returned when FlowGuard fails.
	ErrInsufficientBudget = errors.New("guard: insufficient budget")
)

// Request describes a single network-visible send the guard chain must
// authorize.
type Request struct {
	Need    cap.Cap
	Context ids.ContextId
	Peer    ids.AuthorityId
	Cost    int64
	// FactNamespace is the namespace the JournalCoupler will append the
	// send receipt to.
	FactNamespace NamespaceRef
	// EncodedFact is the canonical bytes of the receipt fact the
	// JournalCoupler appends; produced by the caller (package fact),
	// opaque here.
	EncodedFact []byte
	// Payload is the envelope payload Transport will send last.
	Payload []byte
	// LeakageBits is the number of bits of information this send
	// reveals, precomputed by the caller's leakage model.
	LeakageBits int
}

// Decision is the pure outcome of evaluating a Request against a
// GuardSnapshot.
type Decision struct {
	Authorized bool
	Err        error
	// Commands is the batch the EffectInterpreter must execute, in
	// order, iff Authorized. Empty when denied: no observable side
	// effect unless the entire chain succeeds.
	Commands []EffectCommand
}

// Evaluate runs the fixed guard ordering for req against snap:
// CapGuard, FlowGuard, LeakageGuard, JournalCoupler, then Transport's
// SendEnvelope last. It is a pure function: no I/O, no randomness beyond
// what RNGSeed in snap already fixed, no wall-clock reads beyond
// snap.Now.
func Evaluate(snap GuardSnapshot, req Request) Decision {
	// 1. CapGuard
	if !cap.Subsumes(snap.Caps, req.Need) {
		return Decision{Authorized: false, Err: ErrAuthorizationDenied}
	}

	// 2. FlowGuard
	headroom := snap.Budgets.Headroom(req.Context, req.Peer)
	if headroom < req.Cost {
		return Decision{Authorized: false, Err: ErrInsufficientBudget}
	}

	var commands []EffectCommand
	commands = append(commands, ChargeBudget{Context: req.Context, Peer: req.Peer, Amount: req.Cost})

	// 3. LeakageGuard
	commands = append(commands, RecordLeakage{Bits: req.LeakageBits})

	// 4. JournalCoupler
	commands = append(commands, AppendJournal{Namespace: req.FactNamespace, FactBytes: req.EncodedFact})

	// 5. Transport, last.
	commands = append(commands, SendEnvelope{Context: req.Context, Payload: req.Payload})

	return Decision{Authorized: true, Commands: commands}
}
