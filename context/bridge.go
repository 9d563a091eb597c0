package context

import (
	"errors"

	"github.com/auranet/aura/clock"
	"github.com/auranet/aura/fact"
	"github.com/auranet/aura/ids"
)

// ErrBridgeUnauthorized is returned when a Bridge is not marked
// Authorized; cross-context flow must be explicit.
var ErrBridgeUnauthorized = errors.New("context: bridge not authorized")

// TypeBridge identifies a Bridge fact's RelType within a Relational
// fact.
var TypeBridge = fact.TypeID{0x20}

// Bridge authorizes cross-context flow from Src to Tgt. It is journaled
// as a Relational fact on both contexts.
type Bridge struct {
	Src        ids.ContextId
	Tgt        ids.ContextId
	Authorized bool
}

// Journal records the bridge on both src's and tgt's journals as
// Relational facts carrying the caller-supplied signature. It fails closed: an unauthorized
// bridge is never journaled.
func (b Bridge) Journal(src, tgt *Isolation, order fact.OrderTime, now clock.TimeStamp, signature []byte) error {
	if !b.Authorized {
		return ErrBridgeUnauthorized
	}

	payload := append(append([]byte{}, b.Src.Bytes()...), b.Tgt.Bytes()...)

	srcFact := fact.Fact{
		Order:     order,
		Timestamp: now,
		Content: fact.Relational{
			Context:   b.Src,
			RelType:   TypeBridge,
			Payload:   payload,
			Signature: signature,
		},
	}
	if err := src.Journal().AddFact(srcFact); err != nil {
		return err
	}

	tgtFact := fact.Fact{
		Order:     order,
		Timestamp: now,
		Content: fact.Relational{
			Context:   b.Tgt,
			RelType:   TypeBridge,
			Payload:   payload,
			Signature: signature,
		},
	}
	return tgt.Journal().AddFact(tgtFact)
}
