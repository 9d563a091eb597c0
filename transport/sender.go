package transport

import (
	"context"
	"fmt"

	"github.com/auranet/aura/ids"
)

// Dialer delivers a fully encoded frame to a peer. The production
// implementation wraps a QUIC or TCP connection pool; tests and the
// deterministic simulation interpreter can substitute an in-memory one.
type Dialer interface {
	Send(ctx context.Context, to ids.NodeID, frame []byte) error
}

// Sender adapts a Dialer to choreography.Transport by wrapping each
// outgoing payload in an Envelope at a fixed context, frame type, and
// privacy level.
type Sender struct {
	Dialer       Dialer
	ContextID    ids.ContextId
	FrameType    FrameType
	PrivacyLevel PrivacyLevel
	Epoch        uint64
	Self         ids.NodeID
}

// Send implements choreography.Transport.
func (s Sender) Send(ctx context.Context, to ids.NodeID, payload []byte) error {
	env := Envelope{
		ContextID:    s.ContextID,
		FrameType:    s.FrameType,
		PrivacyLevel: s.PrivacyLevel,
		Epoch:        s.Epoch,
		SenderHint:   s.Self,
		Payload:      payload,
	}
	frame, err := env.Encode()
	if err != nil {
		return fmt.Errorf("transport: encode failed: %w", err)
	}
	return s.Dialer.Send(ctx, to, frame)
}
