// Package config holds Aura's runtime-tunable parameters, built as a
// Parameters struct with a DefaultParameters constructor. The only
// environment variables the core reads are the AURA_SYNC_* family; every
// other value is constructed in code or supplied by the host.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	ErrInvalidThreshold   = errors.New("config: threshold must be >= 1")
	ErrInvalidRoundTO     = errors.New("config: round timeout must be >= 1ms")
	ErrInvalidSnapshotGap = errors.New("config: snapshot gap must be >= 1")
)

// Parameters holds the tunables for FROST consensus, choreography
// timeouts, and journal snapshotting.
type Parameters struct {
	// Consensus
	DefaultThreshold   int
	RoundTimeout       time.Duration
	EquivocationWindow time.Duration

	// Choreography
	PhaseTimeout time.Duration

	// Guardian recovery
	CeremonyTimeout  time.Duration
	RecoveryTimeout  time.Duration

	// Journal persistence
	SnapshotFactGap int

	// Sync (host transport layer)
	Sync SyncParameters
}

// SyncParameters controls the sync timeouts and jitter read from
// AURA_SYNC_* environment variables.
type SyncParameters struct {
	Timeout    time.Duration
	Jitter     time.Duration
	MaxRetries int
}

// DefaultParameters returns Aura's default configuration.
func DefaultParameters() Parameters {
	return Parameters{
		DefaultThreshold:   2,
		RoundTimeout:       2 * time.Second,
		EquivocationWindow: 10 * time.Second,
		PhaseTimeout:       5 * time.Second,
		CeremonyTimeout:    30 * time.Second,
		RecoveryTimeout:    5 * time.Minute,
		SnapshotFactGap:    1024,
		Sync: SyncParameters{
			Timeout:    10 * time.Second,
			Jitter:     500 * time.Millisecond,
			MaxRetries: 5,
		},
	}
}

// FromEnv overlays AURA_SYNC_* environment variables onto the given
// parameters, returning the result. Unset variables leave the existing
// value untouched.
func FromEnv(p Parameters) Parameters {
	if v, ok := lookupDuration("AURA_SYNC_TIMEOUT"); ok {
		p.Sync.Timeout = v
	}
	if v, ok := lookupDuration("AURA_SYNC_JITTER"); ok {
		p.Sync.Jitter = v
	}
	if v, ok := lookupInt("AURA_SYNC_MAX_RETRIES"); ok {
		p.Sync.MaxRetries = v
	}
	return p
}

func lookupDuration(key string) (time.Duration, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return d, true
}

func lookupInt(key string) (int, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate checks the parameters for internal consistency.
func (p Parameters) Validate() error {
	if p.DefaultThreshold < 1 {
		return ErrInvalidThreshold
	}
	if p.RoundTimeout < time.Millisecond {
		return ErrInvalidRoundTO
	}
	if p.SnapshotFactGap < 1 {
		return ErrInvalidSnapshotGap
	}
	return nil
}
