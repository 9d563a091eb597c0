// Package clock implements Aura's TimeStamp: a two-component logical
// clock plus a deterministic tie-break, compared under a configurable
// ComparisonPolicy.
package clock

import "time"

// TimeStamp is semantic time: a monotone-per-replica logical counter
// plus a deterministic order-clock tie-break. A wall-clock component is
// carried for diagnostics only and is never used for ordering.
type TimeStamp struct {
	Logical    uint64
	OrderClock uint64
	Wall       time.Time
}

// ComparisonPolicy selects whether wall-clock / physical components are
// considered when comparing two TimeStamps.
type ComparisonPolicy int

const (
	// IgnorePhysical compares only Logical and OrderClock: two
	// timestamps sharing those components are observationally equal
	// regardless of Wall.
	IgnorePhysical ComparisonPolicy = iota
	// IncludePhysical breaks remaining ties using Wall.
	IncludePhysical
)

// Compare returns -1, 0, or 1 for a relative to b, under policy. The
// result is reflexive and transitive for any fixed policy.
func Compare(a, b TimeStamp, policy ComparisonPolicy) int {
	if a.Logical != b.Logical {
		return cmpUint64(a.Logical, b.Logical)
	}
	if a.OrderClock != b.OrderClock {
		return cmpUint64(a.OrderClock, b.OrderClock)
	}
	if policy == IncludePhysical {
		if a.Wall.Before(b.Wall) {
			return -1
		}
		if a.Wall.After(b.Wall) {
			return 1
		}
	}
	return 0
}

// Equal reports whether a and b compare equal under policy.
func Equal(a, b TimeStamp, policy ComparisonPolicy) bool {
	return Compare(a, b, policy) == 0
}

// Tick advances a replica's own TimeStamp to the next logical value,
// keeping OrderClock monotone alongside it.
func (t TimeStamp) Tick(now time.Time) TimeStamp {
	return TimeStamp{
		Logical:    t.Logical + 1,
		OrderClock: t.OrderClock + 1,
		Wall:       now,
	}
}

// Observe merges an incoming TimeStamp into the local clock the way a
// Lamport clock does: the local logical counter advances past whichever
// of the two was larger.
func (t TimeStamp) Observe(remote TimeStamp, now time.Time) TimeStamp {
	logical := t.Logical
	if remote.Logical > logical {
		logical = remote.Logical
	}
	orderClock := t.OrderClock
	if remote.OrderClock > orderClock {
		orderClock = remote.OrderClock
	}
	return TimeStamp{Logical: logical + 1, OrderClock: orderClock + 1, Wall: now}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
