package action

import (
	"fmt"

	"github.com/calder-hayes/skirmish/internal/game/grid"
)

// Verdict is the kind of a ValidationResult.
type Verdict int

const (
	VerdictSuccess Verdict = iota
	VerdictFailure
	VerdictRequiresChoice
)

// String returns a human-readable verdict label.
func (v Verdict) String() string {
	switch v {
	case VerdictSuccess:
		return "success"
	case VerdictFailure:
		return "failure"
	default:
		return "requires choice"
	}
}

// ResourceCost is the aggregate price of a validated action: which economy
// flags it consumes, how much movement it spends, which named resources it
// burns, and whether applying it ends an existing concentration effect.
type ResourceCost struct {
	UsesAction          bool
	UsesBonusAction     bool
	UsesReaction        bool
	Movement            int // distance units
	Resources           map[ResourceKey]int
	BreaksConcentration bool
}

// merge folds another cost into this one: union of flags, union of
// resources, summed movement, OR of the concentration flag.
func (c ResourceCost) merge(other ResourceCost) ResourceCost {
	out := c
	out.UsesAction = c.UsesAction || other.UsesAction
	out.UsesBonusAction = c.UsesBonusAction || other.UsesBonusAction
	out.UsesReaction = c.UsesReaction || other.UsesReaction
	out.Movement = c.Movement + other.Movement
	out.BreaksConcentration = c.BreaksConcentration || other.BreaksConcentration
	if len(other.Resources) > 0 {
		merged := make(map[ResourceKey]int, len(c.Resources)+len(other.Resources))
		for k, v := range c.Resources {
			merged[k] = v
		}
		for k, v := range other.Resources {
			merged[k] += v
		}
		out.Resources = merged
	}
	return out
}

// FailureReason is the machine-readable explanation of a Failure verdict.
// Each variant carries enough structured context for a UI to render a
// precise message.
type FailureReason interface {
	// Code is a stable machine-readable identifier for the variant.
	Code() string
	fmt.Stringer
}

// EconomyExhausted reports an already-spent action-economy slot.
type EconomyExhausted struct {
	Slot        Type
	AlreadyUsed bool
}

func (EconomyExhausted) Code() string { return "economy_exhausted" }
func (r EconomyExhausted) String() string {
	return fmt.Sprintf("%s already used this turn", r.Slot)
}

// MovementExceeded reports a movement request past the remaining allowance.
type MovementExceeded struct {
	RequestedUnits int
	RemainingUnits int
	Shortfall      int
}

func (MovementExceeded) Code() string { return "movement_exceeded" }
func (r MovementExceeded) String() string {
	return fmt.Sprintf("movement of %d exceeds remaining %d by %d", r.RequestedUnits, r.RemainingUnits, r.Shortfall)
}

// InsufficientResource reports a named resource shortfall.
type InsufficientResource struct {
	Key       ResourceKey
	Needed    int
	Available int
}

func (InsufficientResource) Code() string { return "insufficient_resource" }
func (r InsufficientResource) String() string {
	return fmt.Sprintf("need %d of %s, have %d", r.Needed, r.Key, r.Available)
}

// NoSpellSlot reports that no slot of the spell's level or higher remains.
type NoSpellSlot struct {
	SpellLevel int
}

func (NoSpellSlot) Code() string { return "no_spell_slot" }
func (r NoSpellSlot) String() string {
	return fmt.Sprintf("no spell slot of level %d or higher available", r.SpellLevel)
}

// OutOfRange reports a target beyond the action's reach.
type OutOfRange struct {
	ActualDistance int
	MaxRange       int
}

func (OutOfRange) Code() string { return "out_of_range" }
func (r OutOfRange) String() string {
	return fmt.Sprintf("target at distance %d beyond maximum range %d", r.ActualDistance, r.MaxRange)
}

// LineOfEffectBlocked reports an obstacle on the interior path to the
// target; BlockedAt is the blocking cell nearest the actor.
type LineOfEffectBlocked struct {
	BlockedAt grid.Position
}

func (LineOfEffectBlocked) Code() string { return "line_of_effect_blocked" }
func (r LineOfEffectBlocked) String() string {
	return fmt.Sprintf("line of effect blocked at (%d,%d)", r.BlockedAt.X, r.BlockedAt.Y)
}

// BlockedByCondition reports a condition that prevents the action outright.
type BlockedByCondition struct {
	Condition string
}

func (BlockedByCondition) Code() string { return "blocked_by_condition" }
func (r BlockedByCondition) String() string {
	return fmt.Sprintf("blocked by condition %s", r.Condition)
}

// ConcentrationConflict reports a cast that would silently end a sustained
// spell while the action forbids that tradeoff.
type ConcentrationConflict struct {
	ActiveSpellID string
}

func (ConcentrationConflict) Code() string { return "concentration_conflict" }
func (r ConcentrationConflict) String() string {
	return fmt.Sprintf("already concentrating on %s", r.ActiveSpellID)
}

// SlotChoice is one disambiguation option for a spell cast that could burn
// more than one slot level.
type SlotChoice struct {
	SlotLevel int
}

// ValidationResult is the pipeline's verdict: a legal action with its
// aggregate cost, an illegal action with a structured reason, or a legal but
// ambiguous action needing a caller decision. Never a bare boolean.
type ValidationResult struct {
	Verdict Verdict
	Cost    ResourceCost  // populated for VerdictSuccess
	Reason  FailureReason // populated for VerdictFailure
	Options []SlotChoice  // populated for VerdictRequiresChoice, ascending
}

// Success builds a legal verdict with its cost.
func Success(cost ResourceCost) ValidationResult {
	return ValidationResult{Verdict: VerdictSuccess, Cost: cost}
}

// Failure builds an illegal verdict with its reason.
//
// Precondition: reason must be non-nil.
func Failure(reason FailureReason) ValidationResult {
	if reason == nil {
		panic("action: Failure with nil reason")
	}
	return ValidationResult{Verdict: VerdictFailure, Reason: reason}
}

// RequiresChoice builds an ambiguous-but-legal verdict.
//
// Precondition: at least two options.
func RequiresChoice(options []SlotChoice) ValidationResult {
	if len(options) < 2 {
		panic("action: RequiresChoice needs at least two options")
	}
	return ValidationResult{Verdict: VerdictRequiresChoice, Options: options}
}
