package resolve

import (
	"github.com/calder-hayes/skirmish/internal/game/condition"
	"github.com/calder-hayes/skirmish/internal/game/dice"
)

// SaveOutcome records one saving throw. When a condition auto-fails the
// save, the d20 value is still drawn from the source so that downstream
// rolls stay aligned on replay; the drawn roll is recorded but the outcome
// is failure regardless of its value.
type SaveOutcome struct {
	Ability      condition.Ability `json:"ability"`
	DC           int               `json:"dc"`
	Roll         dice.RollResult   `json:"roll"`
	Proficient   bool              `json:"proficient"`
	AutoFailedBy string            `json:"auto_failed_by,omitempty"` // condition id
	Total        int               `json:"total"`
	Success      bool              `json:"success"`
}

// SavingThrow resolves a saving throw of the given ability against dc.
// The proficiency bonus is added only when proficient. Conditions may impose
// disadvantage or force automatic failure on individual abilities.
//
// Precondition: reg and src must be non-nil.
func SavingThrow(ability condition.Ability, dc, abilityMod, proficiencyBonus int, proficient bool, conds condition.Set, reg *condition.Registry, src dice.Source) SaveOutcome {
	modifier := abilityMod
	if proficient {
		modifier += proficiencyBonus
	}

	effect := reg.SaveEffect(conds, ability)
	if effect == condition.SaveAutoFail {
		// The draw is consumed deterministically even though its value
		// cannot change the outcome.
		roll := dice.RollD20(modifier, dice.ModeNormal, src)
		return SaveOutcome{
			Ability:      ability,
			DC:           dc,
			Roll:         roll,
			Proficient:   proficient,
			AutoFailedBy: autoFailSource(conds, ability, reg),
			Total:        roll.Total(),
			Success:      false,
		}
	}

	mode := dice.ModeNormal
	if effect == condition.SaveDisadvantage {
		mode = dice.ModeDisadvantage
	}
	roll := dice.RollD20(modifier, mode, src)
	total := roll.Total()

	return SaveOutcome{
		Ability:    ability,
		DC:         dc,
		Roll:       roll,
		Proficient: proficient,
		Total:      total,
		Success:    total >= dc,
	}
}

// autoFailSource returns the sorted-first condition forcing the auto-fail.
func autoFailSource(conds condition.Set, ability condition.Ability, reg *condition.Registry) string {
	for _, id := range conds.IDs() {
		if def, ok := reg.Get(id); ok && def.SavingThrows[ability] == condition.SaveAutoFail {
			return id
		}
	}
	return ""
}

// CheckOutcome records one ability check.
type CheckOutcome struct {
	Ability    condition.Ability `json:"ability"`
	DC         int               `json:"dc"`
	Roll       dice.RollResult   `json:"roll"`
	Proficient bool              `json:"proficient"`
	Total      int               `json:"total"`
	Success    bool              `json:"success"`
}

// AbilityCheck resolves an ability check against dc. Conditions can impose
// disadvantage on checks but never advantage or automatic failure.
//
// Precondition: reg and src must be non-nil.
func AbilityCheck(ability condition.Ability, dc, abilityMod, proficiencyBonus int, proficient bool, conds condition.Set, reg *condition.Registry, src dice.Source) CheckOutcome {
	modifier := abilityMod
	if proficient {
		modifier += proficiencyBonus
	}

	roll := dice.RollD20(modifier, reg.CheckMode(conds), src)
	total := roll.Total()

	return CheckOutcome{
		Ability:    ability,
		DC:         dc,
		Roll:       roll,
		Proficient: proficient,
		Total:      total,
		Success:    total >= dc,
	}
}
