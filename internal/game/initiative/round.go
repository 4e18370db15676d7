package initiative

import (
	"errors"
	"fmt"
	"sort"
)

// Invalid-state errors. These indicate a caller contract breach — the core
// never attempts to heal or guess correct state.
var (
	ErrEmptyOrder     = errors.New("initiative: empty initiative order")
	ErrInvalidPointer = errors.New("initiative: turn pointer out of sync with order")
	ErrUnknownActor   = errors.New("initiative: actor not in order or delayed table")
	ErrDuplicateActor = errors.New("initiative: actor already present")
	ErrNotActiveTurn  = errors.New("initiative: actor is not the active turn")
)

// TurnPointer identifies the active actor and its index into the order.
type TurnPointer struct {
	ActorID string `json:"actor_id"`
	Index   int    `json:"index"`
}

// RoundState is the full turn-sequencing state of one encounter. It is a
// value: operations return transformed copies and never mutate their input.
type RoundState struct {
	// Round is the current round number. Round 0 is the surprise round.
	Round int `json:"round"`
	// SurpriseRound is true while surprised actors are being skipped.
	SurpriseRound bool `json:"surprise_round"`
	// Order is the initiative-sorted roster.
	Order []Entry `json:"order"`
	// Surprised holds the actors who cannot act during round 0.
	Surprised map[string]struct{} `json:"surprised"`
	// Delayed maps actors who readied out of the order to their stashed
	// entries.
	Delayed map[string]Entry `json:"delayed"`
	// Turn is the active pointer.
	Turn TurnPointer `json:"turn"`
}

// clone returns a deep copy so operations can transform freely.
func (s RoundState) clone() RoundState {
	out := s
	out.Order = append([]Entry(nil), s.Order...)
	out.Surprised = make(map[string]struct{}, len(s.Surprised))
	for id := range s.Surprised {
		out.Surprised[id] = struct{}{}
	}
	out.Delayed = make(map[string]Entry, len(s.Delayed))
	for id, e := range s.Delayed {
		out.Delayed[id] = e
	}
	return out
}

// validate checks the structural invariants every operation relies on.
func (s RoundState) validate() error {
	if len(s.Order) == 0 {
		return ErrEmptyOrder
	}
	if s.Turn.Index < 0 || s.Turn.Index >= len(s.Order) {
		return fmt.Errorf("%w: index %d with %d entries", ErrInvalidPointer, s.Turn.Index, len(s.Order))
	}
	if s.Order[s.Turn.Index].ActorID != s.Turn.ActorID {
		return fmt.Errorf("%w: pointer names %q but index %d holds %q",
			ErrInvalidPointer, s.Turn.ActorID, s.Turn.Index, s.Order[s.Turn.Index].ActorID)
	}
	return nil
}

// Active returns the entry whose turn it currently is.
func (s RoundState) Active() (Entry, error) {
	if err := s.validate(); err != nil {
		return Entry{}, err
	}
	return s.Order[s.Turn.Index], nil
}

// Initialize creates the RoundState for a new encounter from rolled
// entries. If any actor is surprised, the encounter opens with a surprise
// round (round 0) and the pointer skips surprised actors; otherwise play
// begins at round 1 with the top of the order.
func Initialize(entries []Entry, surprised []string) (RoundState, error) {
	if len(entries) == 0 {
		return RoundState{}, ErrEmptyOrder
	}

	order := append([]Entry(nil), entries...)
	sortEntries(order)

	s := RoundState{
		Round:     1,
		Order:     order,
		Surprised: make(map[string]struct{}, len(surprised)),
		Delayed:   make(map[string]Entry),
	}
	if len(surprised) > 0 {
		s.Round = 0
		s.SurpriseRound = true
		for _, id := range surprised {
			s.Surprised[id] = struct{}{}
		}
	}

	s.settlePointer(0)
	return s, nil
}

// AdvanceTurn moves the pointer to the next actor, wrapping to the next
// round at the end of the order. Leaving round 0 clears the surprised set
// unconditionally and resets the round to 1.
func AdvanceTurn(s RoundState) (RoundState, error) {
	if err := s.validate(); err != nil {
		return RoundState{}, err
	}
	out := s.clone()
	out.settlePointer(out.Turn.Index + 1)
	return out, nil
}

// settlePointer places the pointer at candidate, wrapping rounds and
// skipping surprised actors during round 0. Any skip recurses to the next
// candidate rather than stalling; the round-0 exit clears the surprised set
// so the walk always terminates.
func (s *RoundState) settlePointer(candidate int) {
	for {
		if candidate >= len(s.Order) {
			candidate = 0
			if s.SurpriseRound {
				s.Surprised = make(map[string]struct{})
				s.SurpriseRound = false
				s.Round = 1
			} else {
				s.Round++
			}
			continue
		}
		actor := s.Order[candidate].ActorID
		if s.SurpriseRound {
			if _, skip := s.Surprised[actor]; skip {
				candidate++
				continue
			}
		}
		s.Turn = TurnPointer{ActorID: actor, Index: candidate}
		return
	}
}

// AddCreature inserts a newly rolled entry into its sorted position. When
// the insertion lands at or before the current pointer, the pointer index
// shifts forward by one so the active actor's identity does not change
// underfoot.
func AddCreature(s RoundState, e Entry) (RoundState, error) {
	if err := s.validate(); err != nil {
		return RoundState{}, err
	}
	if s.indexOf(e.ActorID) >= 0 {
		return RoundState{}, fmt.Errorf("%w: %q in order", ErrDuplicateActor, e.ActorID)
	}
	if _, ok := s.Delayed[e.ActorID]; ok {
		return RoundState{}, fmt.Errorf("%w: %q in delayed table", ErrDuplicateActor, e.ActorID)
	}

	out := s.clone()
	out.insertSorted(e)
	return out, nil
}

// insertSorted places e into the order and keeps the pointer on the same
// actor.
func (s *RoundState) insertSorted(e Entry) {
	idx := sort.Search(len(s.Order), func(i int) bool { return Before(e, s.Order[i]) })
	s.Order = append(s.Order, Entry{})
	copy(s.Order[idx+1:], s.Order[idx:])
	s.Order[idx] = e
	if idx <= s.Turn.Index {
		s.Turn.Index++
	}
}

// RemoveCreature deletes an actor from the encounter. Removing the active
// actor advances the pointer to the next still-present actor in the same
// operation; removing an earlier actor shifts the pointer back by one.
// Actors may also be removed from the delayed table. Removing the last
// remaining actor is an error: an encounter cannot continue with an empty
// order.
func RemoveCreature(s RoundState, actorID string) (RoundState, error) {
	if err := s.validate(); err != nil {
		return RoundState{}, err
	}

	idx := s.indexOf(actorID)
	if idx < 0 {
		if _, ok := s.Delayed[actorID]; !ok {
			return RoundState{}, fmt.Errorf("%w: %q", ErrUnknownActor, actorID)
		}
		out := s.clone()
		delete(out.Delayed, actorID)
		return out, nil
	}

	if len(s.Order) == 1 {
		return RoundState{}, fmt.Errorf("%w: removing last actor %q", ErrEmptyOrder, actorID)
	}

	out := s.clone()
	out.Order = append(out.Order[:idx], out.Order[idx+1:]...)
	delete(out.Surprised, actorID)

	switch {
	case idx < out.Turn.Index:
		out.Turn.Index--
	case idx == out.Turn.Index:
		// The next actor now occupies the removed slot; settle there,
		// wrapping if the active actor was last.
		out.settlePointer(out.Turn.Index)
		return out, nil
	}
	out.Turn.ActorID = out.Order[out.Turn.Index].ActorID
	return out, nil
}

// DelayTurn extracts the active actor's entry into the delayed table and
// advances the pointer as if that actor had finished its turn.
//
// Only the active actor may delay; delaying anyone else is an invalid-state
// error.
func DelayTurn(s RoundState, actorID string) (RoundState, error) {
	if err := s.validate(); err != nil {
		return RoundState{}, err
	}
	if s.Turn.ActorID != actorID {
		return RoundState{}, fmt.Errorf("%w: %q (active is %q)", ErrNotActiveTurn, actorID, s.Turn.ActorID)
	}
	if len(s.Order) == 1 {
		return RoundState{}, fmt.Errorf("%w: delaying last actor %q", ErrEmptyOrder, actorID)
	}

	out := s.clone()
	idx := out.Turn.Index
	out.Delayed[actorID] = out.Order[idx]
	out.Order = append(out.Order[:idx], out.Order[idx+1:]...)
	out.settlePointer(idx)
	return out, nil
}

// ResumeDelayedTurn re-inserts a delayed actor at a newly rolled initiative
// entry, re-sorting the order and shifting the pointer as needed. The new
// position persists for the rest of the encounter. The moment of the
// re-roll is the caller's decision; this operation only consumes its
// result.
//
// Precondition: rolled.ActorID names the delayed actor being resumed.
func ResumeDelayedTurn(s RoundState, rolled Entry) (RoundState, error) {
	if err := s.validate(); err != nil {
		return RoundState{}, err
	}
	if _, ok := s.Delayed[rolled.ActorID]; !ok {
		return RoundState{}, fmt.Errorf("%w: %q not delayed", ErrUnknownActor, rolled.ActorID)
	}

	out := s.clone()
	delete(out.Delayed, rolled.ActorID)
	out.insertSorted(rolled)
	return out, nil
}

func (s RoundState) indexOf(actorID string) int {
	for i, e := range s.Order {
		if e.ActorID == actorID {
			return i
		}
	}
	return -1
}
