package recovery

import (
	"errors"

	"github.com/auranet/aura/ids"
)

var ErrQuorumBelowThreshold = errors.New("recovery: remaining guardians below current threshold")

// ChangeListener observes guardian membership changes, mirroring the
// teacher's validator SetCallbackListener shape.
type ChangeListener interface {
	OnGuardianAdded(g ids.GuardianId)
	OnGuardianRemoved(g ids.GuardianId)
}

// MembershipChange describes an add/remove request against the current
// GuardianSet.
type MembershipChange struct {
	Add          []ids.GuardianId
	Remove       []ids.GuardianId
	NewThreshold int
}

// Validate checks the change is approvable without first collecting
// consensus: the guardians remaining after Remove (before Add) must
// still meet or exceed the *current* threshold.
func (c MembershipChange) Validate(current GuardianSet) error {
	remaining := 0
	removed := make(map[ids.GuardianId]struct{}, len(c.Remove))
	for _, g := range c.Remove {
		removed[g] = struct{}{}
	}
	for _, g := range current.Guardians {
		if _, gone := removed[g]; !gone {
			remaining++
		}
	}
	if remaining < current.Threshold {
		return ErrQuorumBelowThreshold
	}
	return nil
}

// Apply computes the resulting GuardianSet, replacing the old
// membership with the new one in a single step (the caller commits the
// accompanying share redistribution atomically alongside this set, as
// one fact).
func (c MembershipChange) Apply(current GuardianSet, listener ChangeListener) (GuardianSet, error) {
	if err := c.Validate(current); err != nil {
		return GuardianSet{}, err
	}

	removed := make(map[ids.GuardianId]struct{}, len(c.Remove))
	for _, g := range c.Remove {
		removed[g] = struct{}{}
	}

	next := make([]ids.GuardianId, 0, len(current.Guardians)+len(c.Add))
	for _, g := range current.Guardians {
		if _, gone := removed[g]; gone {
			if listener != nil {
				listener.OnGuardianRemoved(g)
			}
			continue
		}
		next = append(next, g)
	}
	for _, g := range c.Add {
		next = append(next, g)
		if listener != nil {
			listener.OnGuardianAdded(g)
		}
	}

	threshold := current.Threshold
	if c.NewThreshold > 0 {
		threshold = c.NewThreshold
	}
	return GuardianSet{Guardians: next, Threshold: threshold}, nil
}
