// Package effect implements the EffectInterpreter: the sole suspension
// boundary in Aura. Guards (package guard) never perform I/O; they
// return EffectCommand batches that an EffectInterpreter executes
// asynchronously.
//
// Two interpreters are provided: Production (real storage/network/RNG)
// and Simulation (single-threaded, seeded ChaCha20 keystream RNG, records every
// command as a replayable event).
package effect

import (
	"context"
	"errors"

	"github.com/auranet/aura/guard"
)

// ErrBatchFailed is returned by ExecuteBatch when any command in the
// batch fails. Commands before the failing one have already run; see
// Interpreter.ExecuteBatch for which of their effects are undone.
var ErrBatchFailed = errors.New("effect: batch execution failed")

// EffectResult is the outcome of executing a single EffectCommand.
type EffectResult struct {
	Command guard.EffectCommand
	// Receipt carries command-specific output: a budget receipt, a
	// generated nonce, the bytes actually sent, etc. Opaque to callers
	// that don't need it.
	Receipt any
	Err     error
}

// Interpreter executes EffectCommands. Implementations may reorder
// commands within a single ExecuteBatch call when no ordering is
// observable between them, but must preserve the order of commands
// whose effects are mutually visible (e.g. ChargeBudget before
// SendEnvelope).
type Interpreter interface {
	Execute(ctx context.Context, cmd guard.EffectCommand) (EffectResult, error)
	// ExecuteBatch executes cmds in order and stops at the first command
	// that fails, returning ErrBatchFailed. It is not fully atomic:
	// ProductionInterpreter refunds the budget charges already made in
	// this call, but journal appends, leakage records, metadata writes
	// and sends that already ran are not undone; SimulationInterpreter
	// undoes nothing.
	ExecuteBatch(ctx context.Context, cmds []guard.EffectCommand) ([]EffectResult, error)
}
