package choreography

import (
	"context"
	"fmt"

	"github.com/auranet/aura/ids"
)

// ThresholdCollectProvider parameterizes the threshold-collect
// composition: a domain supplies the five hooks and gets back a
// uniform byzantine-aware collection protocol built from
// BroadcastAndGather plus the optional VerifyResult check. Consensus commit
// gathering, guardian share release, and DKD all instantiate this with
// different Material types.
type ThresholdCollectProvider[Material any, Result any] struct {
	// ValidateContext rejects the request outright (wrong epoch, unknown
	// session, caller lacks standing) before any network round starts.
	ValidateContext func(ctx context.Context) error
	// GenerateMaterial produces this node's own contribution.
	GenerateMaterial func(ctx context.Context) (Material, error)
	// ValidateMaterial checks a peer's contribution is well-formed;
	// returning false marks the sender byzantine for this round.
	ValidateMaterial func(from ids.NodeID, m Material) bool
	// AggregateMaterials combines every validated contribution once
	// threshold-many have arrived.
	AggregateMaterials func(materials map[ids.NodeID]Material) (Result, error)
	// VerifyResult is an optional final consistency check (e.g. the
	// commit-reveal pattern) run after aggregation; nil skips it.
	VerifyResult func(ctx context.Context, result Result) error

	// Encode/Decode move Material to and from wire payloads so the
	// provider can drive BroadcastAndGather's []byte transport.
	Encode func(Material) []byte
	Decode func([]byte) (Material, error)
}

// Run executes one threshold-collect round: broadcast own material,
// gather peers' materials into phase, validate each as it is decoded,
// and aggregate once threshold-many validated contributions exist.
func (p ThresholdCollectProvider[Material, Result]) Run(ctx context.Context, phase *Phase, tr Transport, self ids.NodeID, peers []ids.NodeID, threshold int) (Result, error) {
	var zero Result

	if p.ValidateContext != nil {
		if err := p.ValidateContext(ctx); err != nil {
			return zero, fmt.Errorf("choreography: context validation failed: %w", err)
		}
	}

	own, err := p.GenerateMaterial(ctx)
	if err != nil {
		return zero, fmt.Errorf("choreography: material generation failed: %w", err)
	}
	payload := p.Encode(own)

	if err := BroadcastAndGather(ctx, phase, tr, peers, payload); err != nil && err != ErrTimeout {
		return zero, err
	}

	materials := map[ids.NodeID]Material{self: own}
	for _, m := range phase.Messages() {
		mat, decodeErr := p.Decode(m.Payload)
		if decodeErr != nil {
			phase.MarkByzantine(m.From)
			continue
		}
		if p.ValidateMaterial != nil && !p.ValidateMaterial(m.From, mat) {
			phase.MarkByzantine(m.From)
			continue
		}
		materials[m.From] = mat
	}

	if len(materials) < threshold {
		return zero, ErrInsufficientMaterial
	}

	result, err := p.AggregateMaterials(materials)
	if err != nil {
		return zero, fmt.Errorf("choreography: aggregation failed: %w", err)
	}

	if p.VerifyResult != nil {
		if err := p.VerifyResult(ctx, result); err != nil {
			return zero, fmt.Errorf("choreography: result verification failed: %w", err)
		}
	}
	return result, nil
}
