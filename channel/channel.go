// Package channel tracks a rendezvous channel's current epoch and
// rejects a delivery carrying a stale one, producing a RendezvousReceipt
// on acceptance and an EpochMismatch on rejection.
//
// This is a channel-scoped contract, distinct from
// choreography.Phase's per-round anti-replay epoch check: a Phase
// guards one choreography round's message set, while a Channel guards
// the rendezvous transport path a sequence of choreography rounds (or
// any other traffic) flows over.
package channel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/auranet/aura/clock"
	"github.com/auranet/aura/fact"
	"github.com/auranet/aura/ids"
	"github.com/auranet/aura/journal"
)

// ErrEpochNotAdvancing is returned by Rotate when newEpoch does not
// strictly exceed the channel's current epoch.
var ErrEpochNotAdvancing = errors.New("channel: rotation epoch must strictly advance")

// EpochMismatch is returned by Deliver when a message's epoch does not
// match the channel's current one. No channel state changes when this
// is returned.
type EpochMismatch struct {
	Expected uint64
	Got      uint64
}

func (e EpochMismatch) Error() string {
	return fmt.Sprintf("channel: epoch mismatch: expected %d, got %d", e.Expected, e.Got)
}

// Channel is a single rendezvous channel's epoch state.
type Channel struct {
	mu    sync.Mutex
	id    ids.ChannelId
	epoch uint64
}

// Open starts tracking a channel at the given initial epoch.
func Open(id ids.ChannelId, epoch uint64) *Channel {
	return &Channel{id: id, epoch: epoch}
}

// ID returns the channel's identifier.
func (c *Channel) ID() ids.ChannelId { return c.id }

// Epoch returns the channel's current epoch.
func (c *Channel) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Deliver accepts a message at the given epoch and digest, producing a
// RendezvousReceipt, or rejects it with EpochMismatch{expected, got} if
// epoch does not match the channel's current one. A rejected delivery
// leaves the channel's state unchanged.
func (c *Channel) Deliver(epoch uint64, digest [32]byte) (fact.RendezvousReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return fact.RendezvousReceipt{}, EpochMismatch{Expected: c.epoch, Got: epoch}
	}
	return fact.RendezvousReceipt{Channel: c.id, Epoch: epoch, Digest: digest}, nil
}

// Rotate advances the channel to newEpoch and returns a
// journal.RelChannelEpoch fact recording the transition, scoped to ctx.
// The caller is responsible for appending the returned fact to the
// relevant context journal.
func (c *Channel) Rotate(newEpoch uint64, ctx ids.ContextId, order fact.OrderTime, ts clock.TimeStamp) (fact.Fact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if newEpoch <= c.epoch {
		return fact.Fact{}, ErrEpochNotAdvancing
	}
	c.epoch = newEpoch

	payload := make([]byte, 16+8)
	copy(payload[0:16], c.id.Bytes())
	binary.BigEndian.PutUint64(payload[16:24], newEpoch)

	return fact.Fact{
		Order:     order,
		Timestamp: ts,
		Content: fact.Relational{
			Context: ctx,
			RelType: journal.RelChannelEpoch,
			Payload: payload,
		},
	}, nil
}
