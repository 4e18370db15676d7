// Package encounter is the host-facing surface of the combat core. It owns
// one State per running encounter and routes every call through the
// underlying dice, condition, action, and initiative packages.
package encounter

import (
	"github.com/google/uuid"

	"github.com/calder-hayes/skirmish/internal/game/action"
	"github.com/calder-hayes/skirmish/internal/game/condition"
	"github.com/calder-hayes/skirmish/internal/game/grid"
	"github.com/calder-hayes/skirmish/internal/game/initiative"
)

// Combatant describes one creature entering an encounter.
type Combatant struct {
	ID string
	// InitiativeModifier is added to the creature's initiative roll.
	InitiativeModifier int
	Position           grid.Position
	// MovementTotal is the per-turn movement allowance in distance units;
	// 0 uses the engine's base movement.
	MovementTotal int
	// Resources is the creature's persistent expendable pool (spell slots,
	// feature charges, items). It survives across turns; only ApplyCost
	// draws it down.
	Resources action.ResourcePool
}

// State is the full mutable record of one running encounter. The engine is
// its only mutation path; hosts read it freely between calls.
type State struct {
	ID    uuid.UUID
	Round initiative.RoundState

	Positions map[string]grid.Position
	Obstacles map[grid.Position]bool

	// Conditions tracks each actor's active timed conditions.
	Conditions map[string]*condition.ActiveSet
	// Pools holds each actor's persistent expendable resources.
	Pools map[string]action.ResourcePool
	// Turns holds the current turn-economy snapshot per actor. Every
	// combatant has one from encounter start (reactions are legal before
	// an actor's first turn); a snapshot is replaced only when its owner's
	// own turn starts, so a spent reaction stays spent until then.
	Turns map[string]*action.TurnState
	// Concentration is the shared one-record-per-actor table referenced by
	// every TurnState in the encounter.
	Concentration action.ConcentrationState

	movementTotals map[string]int
}

// Snapshot returns the read-only spatial view the validation pipeline
// consumes.
func (s *State) Snapshot() action.Encounter {
	return action.Encounter{Positions: s.Positions, Obstacles: s.Obstacles}
}

// ConditionsOf returns the actor's current condition snapshot. Unknown
// actors read as unconditioned; the initiative layer rejects them on the
// operations that care.
func (s *State) ConditionsOf(actorID string) condition.Set {
	if set, ok := s.Conditions[actorID]; ok {
		return set.Snapshot()
	}
	return condition.NewSet()
}

// ActiveActor returns the entry whose turn it is.
func (s *State) ActiveActor() (initiative.Entry, error) {
	return s.Round.Active()
}
