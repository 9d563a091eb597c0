package effect

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20"

	"github.com/auranet/aura/guard"
)

// Event is a single recorded command execution, for replay.
type Event struct {
	Command guard.EffectCommand
	Result  EffectResult
}

// SimulationInterpreter is single-threaded, uses a ChaCha20 keystream
// seeded from the snapshot's RNGSeed for determinism, and records every
// command as an Event. Replaying the same seed against the same command
// sequence produces a byte-identical event stream.
type SimulationInterpreter struct {
	mu       sync.Mutex
	budgets  map[string]int64 // ctx.String()+"|"+peer.String() -> running total, decremented by each ChargeBudget; nothing is refunded
	events   []Event
	rng      *chacha20.Cipher
	metadata map[string][]byte
	sent     [][]byte
	leaked   int
}

// NewSimulationInterpreter seeds the deterministic RNG from seed. The
// same seed always produces the same nonce/randomness sequence.
func NewSimulationInterpreter(seed [32]byte) (*SimulationInterpreter, error) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, fmt.Errorf("effect: simulation RNG init: %w", err)
	}
	return &SimulationInterpreter{
		budgets:  make(map[string]int64),
		metadata: make(map[string][]byte),
		rng:      c,
	}, nil
}

func (s *SimulationInterpreter) randomBytes(n int) []byte {
	buf := make([]byte, n)
	s.rng.XORKeyStream(buf, buf)
	return buf
}

// Events returns the recorded event stream, for replay assertions.
func (s *SimulationInterpreter) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *SimulationInterpreter) Execute(ctx context.Context, cmd guard.EffectCommand) (EffectResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res EffectResult
	switch c := cmd.(type) {
	case guard.ChargeBudget:
		key := c.Context.String() + "|" + c.Peer.String()
		s.budgets[key] -= c.Amount
		res = EffectResult{Command: cmd, Receipt: key}

	case guard.AppendJournal:
		res = EffectResult{Command: cmd}

	case guard.RecordLeakage:
		s.leaked += c.Bits
		res = EffectResult{Command: cmd}

	case guard.StoreMetadata:
		s.metadata[c.Key] = c.Value
		res = EffectResult{Command: cmd}

	case guard.SendEnvelope:
		s.sent = append(s.sent, c.Payload)
		res = EffectResult{Command: cmd}

	case guard.GenerateNonce:
		res = EffectResult{Command: cmd, Receipt: s.randomBytes(c.Bytes)}

	default:
		err := fmt.Errorf("effect: unknown command type %T", cmd)
		res = EffectResult{Command: cmd, Err: err}
		s.events = append(s.events, Event{Command: cmd, Result: res})
		return res, err
	}
	s.events = append(s.events, Event{Command: cmd, Result: res})
	return res, nil
}

func (s *SimulationInterpreter) ExecuteBatch(ctx context.Context, cmds []guard.EffectCommand) ([]EffectResult, error) {
	results := make([]EffectResult, 0, len(cmds))
	for _, cmd := range cmds {
		res, err := s.Execute(ctx, cmd)
		results = append(results, res)
		if err != nil {
			return results, ErrBatchFailed
		}
	}
	return results, nil
}

// LeakedBits returns the total bits recorded via RecordLeakage so far.
func (s *SimulationInterpreter) LeakedBits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaked
}

// Sent returns every payload sent via SendEnvelope so far, in order.
func (s *SimulationInterpreter) Sent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.sent))
	copy(out, s.sent)
	return out
}
