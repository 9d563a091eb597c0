package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/auranet/aura/config"
)

func TestDefaultParametersValid(t *testing.T) {
	require.NoError(t, config.DefaultParameters().Validate())
}

func TestFromEnvOverlaysOnlySetVars(t *testing.T) {
	os.Setenv("AURA_SYNC_TIMEOUT", "3s")
	defer os.Unsetenv("AURA_SYNC_TIMEOUT")

	p := config.FromEnv(config.DefaultParameters())
	require.Equal(t, 3*time.Second, p.Sync.Timeout)
	require.Equal(t, config.DefaultParameters().Sync.Jitter, p.Sync.Jitter)
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	p := config.DefaultParameters()
	p.DefaultThreshold = 0
	require.ErrorIs(t, p.Validate(), config.ErrInvalidThreshold)
}
