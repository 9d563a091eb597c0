// Package guard implements the pure, synchronous guard chain: CapGuard,
// FlowGuard, LeakageGuard, and JournalCoupler evaluate a read-only
// GuardSnapshot and emit a list of EffectCommands for the EffectInterpreter
// (package effect) to execute. No guard in this package performs I/O.
//
// Pure decision state is kept separate from callback-driven side
// effects, with the interpreter boundary acting as the sole suspension
// point.
package guard

import (
	"github.com/auranet/aura/cap"
	"github.com/auranet/aura/clock"
	"github.com/auranet/aura/ids"
)

// GuardSnapshot is the immutable, read-only view guards evaluate
// against. It is prepared asynchronously before entering the chain; the
// chain itself never suspends.
type GuardSnapshot struct {
	Now      clock.TimeStamp
	Caps     cap.Cap
	Budgets  FlowBudgetView
	Metadata MetadataView
	RNGSeed  [32]byte
}

// FlowBudgetView is the prefetched, read-only headroom per
// (ContextId, peer).
type FlowBudgetView struct {
	headroom map[budgetKey]int64
}

type budgetKey struct {
	ctx  ids.ContextId
	peer ids.AuthorityId
}

// NewFlowBudgetView returns an empty view; Set fills in headroom per
// (ctx, peer).
func NewFlowBudgetView() FlowBudgetView {
	return FlowBudgetView{headroom: make(map[budgetKey]int64)}
}

// Set records the current headroom for (ctx, peer). Intended for use
// when constructing the snapshot, not by guards themselves.
func (v FlowBudgetView) Set(ctx ids.ContextId, peer ids.AuthorityId, amount int64) {
	v.headroom[budgetKey{ctx, peer}] = amount
}

// Headroom returns the current headroom for (ctx, peer).
func (v FlowBudgetView) Headroom(ctx ids.ContextId, peer ids.AuthorityId) int64 {
	return v.headroom[budgetKey{ctx, peer}]
}

// MetadataView is a prefetched, read-only key/value view.
type MetadataView struct {
	values map[string][]byte
}

// NewMetadataView builds an empty metadata view.
func NewMetadataView() MetadataView {
	return MetadataView{values: make(map[string][]byte)}
}

// Set records a value under key.
func (v MetadataView) Set(key string, value []byte) { v.values[key] = value }

// Get returns the value under key, and whether it was present.
func (v MetadataView) Get(key string) ([]byte, bool) {
	val, ok := v.values[key]
	return val, ok
}
