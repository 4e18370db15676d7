// Package action implements the validation pipeline that decides whether a
// proposed action is legal for an actor, and what it costs. Validation is
// side-effect-free: turn state is mutated only by applying the returned cost
// after the host accepts the verdict.
package action

import "fmt"

// Type identifies which action-economy slot a proposed action spends.
// The zero value (TypeUnknown) is intentionally invalid.
type Type int

const (
	TypeUnknown Type = iota // zero value; intentionally invalid
	TypeAction
	TypeBonusAction
	TypeReaction
	TypeMovement
)

// String returns the human-readable name of the Type.
func (t Type) String() string {
	switch t {
	case TypeAction:
		return "action"
	case TypeBonusAction:
		return "bonus action"
	case TypeReaction:
		return "reaction"
	case TypeMovement:
		return "movement"
	default:
		return "unknown"
	}
}

// Spell describes the spell an action casts, when it casts one.
type Spell struct {
	ID string
	// Level is the spell's minimum slot level; 0 marks a cantrip, which
	// consumes no slot.
	Level int
	// Concentration marks a spell that must be sustained.
	Concentration bool
	// SlotLevel is an explicit upcast request. 0 means "use the lowest
	// available slot"; a higher slot is consumed only when asked for here.
	SlotLevel int
}

// Action is one proposed action, as produced by upstream intent resolution.
type Action struct {
	Type    Type
	ActorID string
	// TargetID names the target creature, when the action has one.
	TargetID string
	// Spell is non-nil when the action casts a spell.
	Spell *Spell
	// Range is the maximum reach or range in distance units; 0 means the
	// action has no range requirement and skips the spatial checks.
	Range int
	// MoveSteps is the number of grid steps requested for TypeMovement.
	MoveSteps int
	// Resources lists named feature/item charges the action burns, beyond
	// any spell slot.
	Resources map[ResourceKey]int
	// ForbidConcentrationBreak makes validation fail rather than flag when
	// the action would end an existing concentration effect. Hosts use it
	// for a confirm-before-dropping-concentration flow.
	ForbidConcentrationBreak bool
}

// validate rejects malformed actions before the pipeline runs. A malformed
// action is a caller contract breach, not an illegal action.
func (a Action) validate() {
	if a.Type == TypeUnknown {
		panic("action: validate called with TypeUnknown")
	}
	if a.ActorID == "" {
		panic("action: validate called with empty actor id")
	}
	if a.Type == TypeMovement && a.MoveSteps < 0 {
		panic(fmt.Sprintf("action: negative movement steps %d", a.MoveSteps))
	}
	if a.Spell != nil && a.Spell.SlotLevel != 0 && a.Spell.SlotLevel < a.Spell.Level {
		panic(fmt.Sprintf("action: explicit slot level %d below spell level %d", a.Spell.SlotLevel, a.Spell.Level))
	}
	for key, n := range a.Resources {
		if n < 0 {
			panic(fmt.Sprintf("action: negative resource request %d for %s", n, key))
		}
	}
}
