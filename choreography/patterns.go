package choreography

import (
	"context"
	"crypto/sha256"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/auranet/aura/ids"
)

// Transport is the minimal send surface the three patterns need; the
// transport package provides the real implementation.
type Transport interface {
	Send(ctx context.Context, to ids.NodeID, payload []byte) error
}

// BroadcastAndGather sends payload to every peer and completes when all
// len(peers) responses have been accepted into phase, or the phase
// times out.
func BroadcastAndGather(ctx context.Context, phase *Phase, tr Transport, peers []ids.NodeID, payload []byte) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, peer := range peers {
		peer := peer
		g.Go(func() error { return tr.Send(gctx, peer, payload) })
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("choreography: broadcast failed: %w", err)
	}
	return phase.Await(ctx, len(peers))
}

// ProposeAndAcknowledge has the initiator distribute a proposal to every
// participant and completes when quorum acknowledgements have been
// accepted (quorum may equal len(peers) for unanimity).
func ProposeAndAcknowledge(ctx context.Context, phase *Phase, tr Transport, peers []ids.NodeID, proposal []byte, quorum int) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, peer := range peers {
		peer := peer
		g.Go(func() error { return tr.Send(gctx, peer, proposal) })
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("choreography: proposal distribution failed: %w", err)
	}
	return phase.Await(ctx, quorum)
}

// VerifyConsistentResult runs a commit-reveal: every participant first
// commits to sha256(result||nonce), then reveals (result, nonce); the
// caller supplies the reveal phase separately so both rounds get their
// own epoch and deadline. ConfirmCommit checks a reveal matches its
// earlier commitment.
func ConfirmCommit(commitment [32]byte, result, nonce []byte) bool {
	h := sha256.New()
	h.Write(result)
	h.Write(nonce)
	var got [32]byte
	copy(got[:], h.Sum(nil))
	return got == commitment
}

// VerifyConsistentResult waits for reveals from every participant and
// reports whether all revealed results are byte-identical, given each
// reveal has already passed ConfirmCommit against its own commitment.
func VerifyConsistentResult(ctx context.Context, reveals *Phase, peers []ids.NodeID) (bool, error) {
	if err := reveals.Await(ctx, len(peers)); err != nil {
		return false, err
	}
	msgs := reveals.Messages()
	if len(msgs) == 0 {
		return false, nil
	}
	first := msgs[0].Payload
	for _, m := range msgs[1:] {
		if string(m.Payload) != string(first) {
			return false, nil
		}
	}
	return true, nil
}
