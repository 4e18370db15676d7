package action

import (
	"fmt"
	"sort"

	"github.com/calder-hayes/skirmish/internal/game/condition"
	"github.com/calder-hayes/skirmish/internal/game/grid"
)

// maxSlotLevel is the highest spell-slot level a pool can hold.
const maxSlotLevel = 9

// Encounter is the read-only spatial snapshot the host supplies for one
// validation call: where everyone stands and which cells block effects.
type Encounter struct {
	Positions map[string]grid.Position
	Obstacles map[grid.Position]bool
}

// Validator is one independent legality check. Validators are pure: they
// never mutate the turn state, the conditions, or the encounter snapshot.
type Validator interface {
	Name() string
	Validate(a Action, conds condition.Set, ts *TurnState, enc Encounter) ValidationResult
}

// conditionsValidator rejects actions the actor's conditions prevent
// outright.
type conditionsValidator struct {
	reg *condition.Registry
}

func (conditionsValidator) Name() string { return "conditions" }

func (v conditionsValidator) Validate(a Action, conds condition.Set, _ *TurnState, _ Encounter) ValidationResult {
	var blocker string
	switch a.Type {
	case TypeAction, TypeBonusAction:
		blocker = v.reg.BlocksActions(conds)
	case TypeReaction:
		blocker = v.reg.BlocksReactions(conds)
	case TypeMovement:
		blocker = v.reg.BlocksMovement(conds)
	}
	if blocker != "" {
		return Failure(BlockedByCondition{Condition: blocker})
	}
	return Success(ResourceCost{})
}

// economyValidator enforces the per-turn action budget: one action, one
// bonus action, one reaction per round, movement capped by the remaining
// allowance.
type economyValidator struct {
	unitsPerSquare int
}

func (economyValidator) Name() string { return "economy" }

func (v economyValidator) Validate(a Action, _ condition.Set, ts *TurnState, _ Encounter) ValidationResult {
	switch a.Type {
	case TypeAction:
		if ts.ActionUsed {
			return Failure(EconomyExhausted{Slot: TypeAction, AlreadyUsed: true})
		}
		return Success(ResourceCost{UsesAction: true})
	case TypeBonusAction:
		if ts.BonusActionUsed {
			return Failure(EconomyExhausted{Slot: TypeBonusAction, AlreadyUsed: true})
		}
		return Success(ResourceCost{UsesBonusAction: true})
	case TypeReaction:
		if ts.ReactionUsed {
			return Failure(EconomyExhausted{Slot: TypeReaction, AlreadyUsed: true})
		}
		return Success(ResourceCost{UsesReaction: true})
	case TypeMovement:
		requested := a.MoveSteps * v.unitsPerSquare
		remaining := ts.MovementRemaining()
		if requested > remaining {
			return Failure(MovementExceeded{
				RequestedUnits: requested,
				RemainingUnits: remaining,
				Shortfall:      requested - remaining,
			})
		}
		return Success(ResourceCost{Movement: requested})
	default:
		panic(fmt.Sprintf("action: economy check for invalid type %d", a.Type))
	}
}

// resourcesValidator checks named resource charges and resolves the spell
// slot a cast will burn.
type resourcesValidator struct{}

func (resourcesValidator) Name() string { return "resources" }

func (resourcesValidator) Validate(a Action, _ condition.Set, ts *TurnState, _ Encounter) ValidationResult {
	cost := ResourceCost{}

	for _, key := range sortedKeys(a.Resources) {
		needed := a.Resources[key]
		if needed == 0 {
			continue
		}
		available := ts.Resources.Available(key)
		if available < needed {
			return Failure(InsufficientResource{Key: key, Needed: needed, Available: available})
		}
		if cost.Resources == nil {
			cost.Resources = make(map[ResourceKey]int)
		}
		cost.Resources[key] += needed
	}

	if a.Spell != nil && a.Spell.Level >= 1 {
		if a.Spell.SlotLevel != 0 {
			// Explicit upcast: the requested slot and no other.
			key := SlotKey(a.Spell.SlotLevel)
			if ts.Resources.Available(key) < 1 {
				return Failure(InsufficientResource{Key: key, Needed: 1, Available: ts.Resources.Available(key)})
			}
			cost = cost.merge(ResourceCost{Resources: map[ResourceKey]int{key: 1}})
			return Success(cost)
		}

		var sufficient []int
		for level := a.Spell.Level; level <= maxSlotLevel; level++ {
			if ts.Resources.Available(SlotKey(level)) > 0 {
				sufficient = append(sufficient, level)
			}
		}
		switch len(sufficient) {
		case 0:
			return Failure(NoSpellSlot{SpellLevel: a.Spell.Level})
		case 1:
			cost = cost.merge(ResourceCost{Resources: map[ResourceKey]int{SlotKey(sufficient[0]): 1}})
		default:
			// More than one slot could serve: never pick silently.
			options := make([]SlotChoice, len(sufficient))
			for i, level := range sufficient {
				options[i] = SlotChoice{SlotLevel: level}
			}
			return RequiresChoice(options)
		}
	}

	return Success(cost)
}

func sortedKeys(m map[ResourceKey]int) []ResourceKey {
	keys := make([]ResourceKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// rangeValidator checks target distance and line of effect on the grid.
type rangeValidator struct {
	unitsPerSquare int
}

func (rangeValidator) Name() string { return "range" }

func (v rangeValidator) Validate(a Action, _ condition.Set, _ *TurnState, enc Encounter) ValidationResult {
	if a.TargetID == "" || a.Range <= 0 {
		return Success(ResourceCost{})
	}

	src, ok := enc.Positions[a.ActorID]
	if !ok {
		panic("action: encounter snapshot missing position for actor " + a.ActorID)
	}
	dst, ok := enc.Positions[a.TargetID]
	if !ok {
		panic("action: encounter snapshot missing position for target " + a.TargetID)
	}

	distance := grid.Distance(src, dst, v.unitsPerSquare)
	if distance > a.Range {
		return Failure(OutOfRange{ActualDistance: distance, MaxRange: a.Range})
	}

	if clear, blockedAt := grid.LineOfEffect(src, dst, enc.Obstacles); !clear {
		return Failure(LineOfEffectBlocked{BlockedAt: blockedAt})
	}

	return Success(ResourceCost{})
}

// concentrationValidator flags casts that would replace a sustained spell.
// Overlapping concentration is legal: validation succeeds with
// BreaksConcentration set, and the state transition happens when the caller
// applies the cost.
type concentrationValidator struct{}

func (concentrationValidator) Name() string { return "concentration" }

func (concentrationValidator) Validate(a Action, _ condition.Set, ts *TurnState, _ Encounter) ValidationResult {
	if a.Spell == nil || !a.Spell.Concentration {
		return Success(ResourceCost{})
	}
	active, ok := ts.Concentration.Active(a.ActorID)
	if !ok {
		return Success(ResourceCost{})
	}
	if a.ForbidConcentrationBreak {
		return Failure(ConcentrationConflict{ActiveSpellID: active.SpellID})
	}
	return Success(ResourceCost{BreaksConcentration: true})
}
