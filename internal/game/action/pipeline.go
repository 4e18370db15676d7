package action

import (
	"go.uber.org/zap"

	"github.com/calder-hayes/skirmish/internal/game/condition"
)

// Pipeline runs the five legality checks in a fixed order — conditions,
// action economy, resources, range/line-of-effect, concentration — stopping
// at the first failure, so an actor blocked by a condition never also hears
// about being out of range.
type Pipeline struct {
	validators []Validator
	logger     *zap.Logger
}

// NewPipeline builds the standard validation pipeline.
//
// Precondition: reg and logger must be non-nil; unitsPerSquare > 0.
func NewPipeline(reg *condition.Registry, unitsPerSquare int, logger *zap.Logger) *Pipeline {
	if unitsPerSquare <= 0 {
		panic("action: NewPipeline with unitsPerSquare <= 0")
	}
	return &Pipeline{
		validators: []Validator{
			conditionsValidator{reg: reg},
			economyValidator{unitsPerSquare: unitsPerSquare},
			resourcesValidator{},
			rangeValidator{unitsPerSquare: unitsPerSquare},
			concentrationValidator{},
		},
		logger: logger,
	}
}

// Validate runs every check against the proposed action. On full success
// the per-check costs are aggregated into one ResourceCost; a failure or a
// required choice from any check is returned as-is.
//
// Validate never mutates its inputs: the same tuple validated twice yields
// the same result.
func (p *Pipeline) Validate(a Action, conds condition.Set, ts *TurnState, enc Encounter) ValidationResult {
	a.validate()

	cost := ResourceCost{}
	for _, v := range p.validators {
		result := v.Validate(a, conds, ts, enc)
		switch result.Verdict {
		case VerdictFailure:
			p.logger.Debug("action rejected",
				zap.String("actor", a.ActorID),
				zap.String("type", a.Type.String()),
				zap.String("check", v.Name()),
				zap.String("reason", result.Reason.Code()),
			)
			return result
		case VerdictRequiresChoice:
			p.logger.Debug("action needs disambiguation",
				zap.String("actor", a.ActorID),
				zap.String("type", a.Type.String()),
				zap.String("check", v.Name()),
				zap.Int("options", len(result.Options)),
			)
			return result
		}
		cost = cost.merge(result.Cost)
	}

	p.logger.Debug("action validated",
		zap.String("actor", a.ActorID),
		zap.String("type", a.Type.String()),
		zap.Int("movement", cost.Movement),
		zap.Bool("breaks_concentration", cost.BreaksConcentration),
	)
	return Success(cost)
}
