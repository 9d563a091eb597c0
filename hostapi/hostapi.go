// Package hostapi defines the contract an external front-end (CLI, GUI,
// mobile shell) drives the runtime host through: command names, process
// exit codes, and the effect-interpreter surface. It deliberately
// contains no command-line parsing or front-end implementation; those
// live in a separate binary that imports this package.
package hostapi

import (
	"context"
	"errors"

	"github.com/auranet/aura/effect"
	"github.com/auranet/aura/frost"
	"github.com/auranet/aura/guard"
	"github.com/auranet/aura/recovery"
)

// Command is one of the fixed CLI surface's command names.
type Command string

const (
	CommandInit              Command = "init"
	CommandBootstrap         Command = "bootstrap"
	CommandInviteAccept      Command = "invite accept"
	CommandChatSend          Command = "chat send"
	CommandChatHistory       Command = "chat history"
	CommandGuardianAdd       Command = "guardian add"
	CommandGuardianList      Command = "guardian list-requests"
	CommandGuardianAccept    Command = "guardian accept"
	CommandGuardianRecover   Command = "guardian recover"
	CommandRecoveryStart     Command = "recovery start"
	CommandRendezvousConnect Command = "rendezvous connect"
)

// ExitCode is the process exit status a front-end must surface to its
// caller.
type ExitCode int

const (
	ExitSuccess               ExitCode = 0
	ExitAuthorizationDenied   ExitCode = 2
	ExitInsufficientBudget    ExitCode = 3
	ExitConsensusAborted      ExitCode = 4
	ExitRecoveryFailed        ExitCode = 5
	ExitInternalErrorBaseline ExitCode = 64
)

// Host is the runtime surface a front-end drives: the effect
// interpreter, kept separate from guard evaluation so a front-end never
// bypasses the guard chain to request an effect directly.
type Host interface {
	// Execute runs a single effect command already authorized by a
	// guard.Decision.
	Execute(ctx context.Context, cmd guard.EffectCommand) (effect.EffectResult, error)
	// ExecuteBatch runs every command in an authorized Decision, atomic
	// with respect to ChargeBudget rollback on partial failure.
	ExecuteBatch(ctx context.Context, cmds []guard.EffectCommand) ([]effect.EffectResult, error)
}

// ExitCodeFor maps an error surfaced from the guard chain, the effect
// interpreter, consensus, or recovery to the exit code a front-end must
// report.
func ExitCodeFor(err error) ExitCode {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, guard.ErrAuthorizationDenied):
		return ExitAuthorizationDenied
	case errors.Is(err, guard.ErrInsufficientBudget):
		return ExitInsufficientBudget
	case errors.Is(err, frost.ErrInsufficient):
		return ExitConsensusAborted
	case errors.Is(err, recovery.ErrInsufficient), errors.Is(err, recovery.ErrAlreadyRecovered):
		return ExitRecoveryFailed
	default:
		return ExitInternalErrorBaseline
	}
}
