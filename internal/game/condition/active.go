package condition

import "fmt"

// ActiveCondition tracks one applied condition on a creature.
type ActiveCondition struct {
	Def             *Def   `json:"-"`
	ID              string `json:"id"`
	RoundsRemaining int    `json:"rounds_remaining"` // -1 = until removed
}

// ActiveSet tracks the conditions currently applied to one creature along
// with their remaining durations. It is owned by the host between calls; the
// core reads Snapshot() values during validation and resolution.
type ActiveSet struct {
	conditions map[string]*ActiveCondition
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{conditions: make(map[string]*ActiveCondition)}
}

// Apply adds or refreshes a condition. Re-applying an existing condition
// extends its duration to the longer of the two; conditions never stack.
// rounds is the duration in rounds; use -1 for until explicitly removed.
//
// Precondition: def must not be nil.
func (s *ActiveSet) Apply(def *Def, rounds int) error {
	if def == nil {
		return fmt.Errorf("condition: Apply with nil def")
	}
	if existing, ok := s.conditions[def.ID]; ok {
		if rounds == -1 || (existing.RoundsRemaining != -1 && rounds > existing.RoundsRemaining) {
			existing.RoundsRemaining = rounds
		}
		return nil
	}
	s.conditions[def.ID] = &ActiveCondition{Def: def, ID: def.ID, RoundsRemaining: rounds}
	return nil
}

// Remove deletes the condition with the given ID; a no-op if absent.
func (s *ActiveSet) Remove(id string) {
	delete(s.conditions, id)
}

// Has reports whether the condition with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.conditions[id]
	return ok
}

// Tick decrements every timed condition by one round and removes those that
// expire, returning the expired IDs. Indefinite conditions are untouched.
func (s *ActiveSet) Tick() []string {
	var expired []string
	for id, ac := range s.conditions {
		if ac.RoundsRemaining < 0 {
			continue
		}
		ac.RoundsRemaining--
		if ac.RoundsRemaining <= 0 {
			expired = append(expired, id)
			delete(s.conditions, id)
		}
	}
	return expired
}

// Snapshot returns the current condition IDs as an immutable Set for use by
// validators and resolvers.
func (s *ActiveSet) Snapshot() Set {
	ids := make(Set, len(s.conditions))
	for id := range s.conditions {
		ids[id] = struct{}{}
	}
	return ids
}
