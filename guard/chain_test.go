package guard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auranet/aura/cap"
	"github.com/auranet/aura/guard"
	"github.com/auranet/aura/ids"
)

func TestDeniedCapGuardLeavesNoTrace(t *testing.T) {
	readCap := cap.New(cap.Permission{Verb: "read", Path: "x"})
	need := cap.New(cap.Permission{Verb: "write", Path: "x"})

	budgets := guard.NewFlowBudgetView()
	ctx := ids.NewContextId()
	peer := ids.NewAuthorityId()
	budgets.Set(ctx, peer, 100)

	snap := guard.GuardSnapshot{Caps: readCap, Budgets: budgets, Metadata: guard.NewMetadataView()}
	req := guard.Request{Need: need, Context: ctx, Peer: peer, Cost: 10}

	decision := guard.Evaluate(snap, req)
	require.False(t, decision.Authorized)
	require.ErrorIs(t, decision.Err, guard.ErrAuthorizationDenied)
	require.Empty(t, decision.Commands)
	require.Equal(t, int64(100), snap.Budgets.Headroom(ctx, peer)) // unchanged
}

func TestInsufficientBudgetDeniesAfterCapPasses(t *testing.T) {
	full := cap.Top
	budgets := guard.NewFlowBudgetView()
	ctx := ids.NewContextId()
	peer := ids.NewAuthorityId()
	budgets.Set(ctx, peer, 5)

	snap := guard.GuardSnapshot{Caps: full, Budgets: budgets, Metadata: guard.NewMetadataView()}
	req := guard.Request{Need: cap.New(cap.Permission{Verb: "write", Path: "x"}), Context: ctx, Peer: peer, Cost: 10}

	decision := guard.Evaluate(snap, req)
	require.False(t, decision.Authorized)
	require.ErrorIs(t, decision.Err, guard.ErrInsufficientBudget)
	require.Empty(t, decision.Commands)
}

func TestAuthorizedChainOrdersCommandsWithSendLast(t *testing.T) {
	full := cap.Top
	budgets := guard.NewFlowBudgetView()
	ctx := ids.NewContextId()
	peer := ids.NewAuthorityId()
	budgets.Set(ctx, peer, 100)

	snap := guard.GuardSnapshot{Caps: full, Budgets: budgets, Metadata: guard.NewMetadataView()}
	req := guard.Request{
		Need: cap.New(cap.Permission{Verb: "write", Path: "x"}), Context: ctx, Peer: peer,
		Cost: 10, Payload: []byte("hi"), EncodedFact: []byte("fact"),
	}

	decision := guard.Evaluate(snap, req)
	require.True(t, decision.Authorized)
	require.Len(t, decision.Commands, 4)
	require.IsType(t, guard.ChargeBudget{}, decision.Commands[0])
	require.IsType(t, guard.RecordLeakage{}, decision.Commands[1])
	require.IsType(t, guard.AppendJournal{}, decision.Commands[2])
	require.IsType(t, guard.SendEnvelope{}, decision.Commands[3])
}

func TestEvaluateIsDeterministic(t *testing.T) {
	full := cap.Top
	budgets := guard.NewFlowBudgetView()
	ctx := ids.NewContextId()
	peer := ids.NewAuthorityId()
	budgets.Set(ctx, peer, 100)
	snap := guard.GuardSnapshot{Caps: full, Budgets: budgets, Metadata: guard.NewMetadataView()}
	req := guard.Request{Need: cap.New(cap.Permission{Verb: "write", Path: "x"}), Context: ctx, Peer: peer, Cost: 1}

	d1 := guard.Evaluate(snap, req)
	d2 := guard.Evaluate(snap, req)
	require.Equal(t, d1, d2)
}
