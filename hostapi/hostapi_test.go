package hostapi_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auranet/aura/frost"
	"github.com/auranet/aura/guard"
	"github.com/auranet/aura/hostapi"
	"github.com/auranet/aura/recovery"
)

func TestExitCodeForMapsKnownErrors(t *testing.T) {
	require.Equal(t, hostapi.ExitSuccess, hostapi.ExitCodeFor(nil))
	require.Equal(t, hostapi.ExitAuthorizationDenied, hostapi.ExitCodeFor(guard.ErrAuthorizationDenied))
	require.Equal(t, hostapi.ExitInsufficientBudget, hostapi.ExitCodeFor(guard.ErrInsufficientBudget))
	require.Equal(t, hostapi.ExitConsensusAborted, hostapi.ExitCodeFor(frost.ErrInsufficient))
	require.Equal(t, hostapi.ExitRecoveryFailed, hostapi.ExitCodeFor(recovery.ErrInsufficient))
	require.Equal(t, hostapi.ExitRecoveryFailed, hostapi.ExitCodeFor(recovery.ErrAlreadyRecovered))
}

func TestExitCodeForUnknownErrorIsInternal(t *testing.T) {
	require.Equal(t, hostapi.ExitInternalErrorBaseline, hostapi.ExitCodeFor(errUnrelated))
}

var errUnrelated = &customErr{}

type customErr struct{}

func (*customErr) Error() string { return "unrelated" }
