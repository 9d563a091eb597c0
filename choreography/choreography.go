// Package choreography runs role-typed session protocols: every
// participant executes a locally sequential projection of a shared
// protocol, with epoch-based anti-replay, duplicate detection, and a
// byzantine-participant surface common to all patterns.
//
// Phases are phase-bounded round state machines: a round either
// completes with enough distinct participant messages or expires.
// Fan-out/fan-in uses golang.org/x/sync/errgroup.
package choreography

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/auranet/aura/ids"
)

var (
	ErrTimeout     = errors.New("choreography: phase timed out")
	ErrReplayed    = errors.New("choreography: message replays a stale epoch")
	ErrDuplicate   = errors.New("choreography: duplicate message from participant")
	ErrByzantine   = errors.New("choreography: participant excluded as byzantine")
	ErrUnknownFrom = errors.New("choreography: message from unrecognized participant")

	ErrInsufficientMaterial = errors.New("choreography: fewer than threshold validated contributions")
)

// Message is a single tagged protocol message exchanged between roles.
type Message struct {
	From    ids.NodeID
	Epoch   uint64
	Payload []byte
}

// Phase tracks epoch/duplicate/byzantine bookkeeping shared by every
// pattern in this package. Safe for concurrent use: Accept is typically
// called from per-connection reader goroutines while Await blocks on
// the session goroutine.
type Phase struct {
	mu sync.Mutex

	epoch        uint64
	participants map[ids.NodeID]struct{}
	received     map[ids.NodeID]Message
	byzantine    map[ids.NodeID]struct{}
	deadline     time.Time
	notify       chan struct{}
}

// NewPhase starts a phase scoped to the given epoch and participant
// set, with an absolute deadline.
func NewPhase(epoch uint64, participants []ids.NodeID, deadline time.Time) *Phase {
	set := make(map[ids.NodeID]struct{}, len(participants))
	for _, p := range participants {
		set[p] = struct{}{}
	}
	return &Phase{
		epoch:        epoch,
		participants: set,
		received:     make(map[ids.NodeID]Message),
		byzantine:    make(map[ids.NodeID]struct{}),
		deadline:     deadline,
		notify:       make(chan struct{}, 1),
	}
}

// Accept validates and records an incoming message, enforcing epoch
// freshness, participant membership, and duplicate rejection.
func (p *Phase) Accept(m Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.participants[m.From]; !ok {
		return ErrUnknownFrom
	}
	if _, excluded := p.byzantine[m.From]; excluded {
		return ErrByzantine
	}
	if m.Epoch != p.epoch {
		return ErrReplayed
	}
	if prior, seen := p.received[m.From]; seen {
		if string(prior.Payload) != string(m.Payload) {
			p.byzantine[m.From] = struct{}{}
			delete(p.received, m.From)
			return ErrByzantine
		}
		return ErrDuplicate
	}
	p.received[m.From] = m
	p.wake()
	return nil
}

func (p *Phase) wake() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// MarkByzantine excludes a participant outright, e.g. on an invalid
// signature surfaced by a layer above this package.
func (p *Phase) MarkByzantine(id ids.NodeID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byzantine[id] = struct{}{}
	delete(p.received, id)
}

// Count returns the number of distinct, non-byzantine messages
// received so far.
func (p *Phase) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.received)
}

// Expired reports whether now is past the phase deadline.
func (p *Phase) Expired(now time.Time) bool { return now.After(p.deadline) }

// Messages returns every accepted message, in no particular order.
func (p *Phase) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Message, 0, len(p.received))
	for _, m := range p.received {
		out = append(out, m)
	}
	return out
}

// Await blocks until target distinct messages have been accepted, the
// phase deadline passes, or ctx is cancelled.
func (p *Phase) Await(ctx context.Context, target int) error {
	for {
		if p.Count() >= target {
			return nil
		}
		now := time.Now()
		if p.Expired(now) {
			return ErrTimeout
		}
		timer := time.NewTimer(p.deadline.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			return ErrTimeout
		case <-p.notify:
			timer.Stop()
		}
	}
}
