package choreography_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/auranet/aura/choreography"
	"github.com/auranet/aura/ids"
)

type meshTransport struct {
	self  ids.NodeID
	phase map[ids.NodeID]*choreography.Phase
}

func (m *meshTransport) Send(ctx context.Context, to ids.NodeID, payload []byte) error {
	ph, ok := m.phase[to]
	if !ok {
		return nil
	}
	return ph.Accept(choreography.Message{From: m.self, Epoch: 1, Payload: payload})
}

func TestThresholdCollectAggregatesOnceThresholdReached(t *testing.T) {
	self := ids.NewNodeID()
	peerA := ids.NewNodeID()

	phases := map[ids.NodeID]*choreography.Phase{
		self:  choreography.NewPhase(1, []ids.NodeID{peerA}, time.Now().Add(time.Second)),
		peerA: choreography.NewPhase(1, []ids.NodeID{self}, time.Now().Add(time.Second)),
	}

	// peerA's contribution arrives before Run is called, simulating a
	// faster participant.
	require.NoError(t, phases[self].Accept(choreography.Message{From: peerA, Epoch: 1, Payload: []byte("A-material")}))

	provider := choreography.ThresholdCollectProvider[string, string]{
		GenerateMaterial: func(ctx context.Context) (string, error) { return "self-material", nil },
		ValidateMaterial: func(from ids.NodeID, m string) bool { return m == "A-material" },
		AggregateMaterials: func(materials map[ids.NodeID]string) (string, error) {
			return "aggregated", nil
		},
		Encode: func(s string) []byte { return []byte(s) },
		Decode: func(b []byte) (string, error) { return string(b), nil },
	}

	tr := &meshTransport{self: self, phase: phases}
	result, err := provider.Run(context.Background(), phases[self], tr, self, []ids.NodeID{peerA}, 2)
	require.NoError(t, err)
	require.Equal(t, "aggregated", result)
}

func TestThresholdCollectRejectsBelowThreshold(t *testing.T) {
	self := ids.NewNodeID()
	peerA := ids.NewNodeID()
	peerB := ids.NewNodeID()

	phase := choreography.NewPhase(1, []ids.NodeID{peerA, peerB}, time.Now().Add(20*time.Millisecond))

	provider := choreography.ThresholdCollectProvider[string, string]{
		GenerateMaterial:   func(ctx context.Context) (string, error) { return "self-material", nil },
		AggregateMaterials: func(materials map[ids.NodeID]string) (string, error) { return "x", nil },
		Encode:             func(s string) []byte { return []byte(s) },
		Decode:             func(b []byte) (string, error) { return string(b), nil },
	}

	tr := &meshTransport{self: self, phase: map[ids.NodeID]*choreography.Phase{}}
	_, err := provider.Run(context.Background(), phase, tr, self, []ids.NodeID{peerA, peerB}, 3)
	require.ErrorIs(t, err, choreography.ErrInsufficientMaterial)
}

func TestThresholdCollectMarksInvalidMaterialByzantine(t *testing.T) {
	self := ids.NewNodeID()
	peerA := ids.NewNodeID()

	phase := choreography.NewPhase(1, []ids.NodeID{peerA}, time.Now().Add(20*time.Millisecond))
	require.NoError(t, phase.Accept(choreography.Message{From: peerA, Epoch: 1, Payload: []byte("bad")}))

	provider := choreography.ThresholdCollectProvider[string, string]{
		GenerateMaterial:   func(ctx context.Context) (string, error) { return "self-material", nil },
		ValidateMaterial:   func(from ids.NodeID, m string) bool { return m != "bad" },
		AggregateMaterials: func(materials map[ids.NodeID]string) (string, error) { return "x", nil },
		Encode:             func(s string) []byte { return []byte(s) },
		Decode:             func(b []byte) (string, error) { return string(b), nil },
	}

	tr := &meshTransport{self: self, phase: map[ids.NodeID]*choreography.Phase{}}
	_, err := provider.Run(context.Background(), phase, tr, self, []ids.NodeID{peerA}, 2)
	require.ErrorIs(t, err, choreography.ErrInsufficientMaterial)
	require.ErrorIs(t, phase.Accept(choreography.Message{From: peerA, Epoch: 1, Payload: []byte("bad")}), choreography.ErrByzantine)
}
