// Package resolve implements the deterministic combat resolvers: attack
// rolls, damage, saving throws, and ability checks. Resolvers are pure
// functions over their inputs and the dice source; they are invoked only
// after the action validation pipeline has approved the action.
package resolve

import (
	"github.com/calder-hayes/skirmish/internal/game/condition"
	"github.com/calder-hayes/skirmish/internal/game/dice"
)

// AttackOutcome records the full mechanical result of one attack roll. It is
// serialized into the host's event log and is authoritative on replay.
type AttackOutcome struct {
	Roll     dice.RollResult `json:"roll"`
	Natural  int             `json:"natural"` // selected raw d20 before modifiers
	Total    int             `json:"total"`
	TargetAC int             `json:"target_ac"`
	Hit      bool            `json:"hit"`
	Critical bool            `json:"critical"`
}

// Attack resolves one attack roll. The caller-supplied mode is merged with
// the modes the attacker's and target's conditions demand; advantage and
// disadvantage from any combination of sources cancel to normal.
//
// Classification: a raw 20 always hits and is critical regardless of AC; a
// raw 1 always misses regardless of bonus; otherwise hit iff total >= AC.
//
// Precondition: reg and src must be non-nil; every condition id must be
// registered.
func Attack(attackBonus, targetAC int, mode dice.RollMode, attackerConds, targetConds condition.Set, reg *condition.Registry, src dice.Source) AttackOutcome {
	net := condition.CombineModes(mode, reg.AttackMode(attackerConds, targetConds))
	roll := dice.RollD20(attackBonus, net, src)

	natural := roll.Selected()
	total := roll.Total()

	var hit, critical bool
	switch {
	case natural == 20:
		hit, critical = true, true
	case natural == 1:
		hit = false
	default:
		hit = total >= targetAC
	}

	return AttackOutcome{
		Roll:     roll,
		Natural:  natural,
		Total:    total,
		TargetAC: targetAC,
		Hit:      hit,
		Critical: critical,
	}
}

// ProficiencyBonus returns the proficiency bonus for a creature of the given
// level: 2 + (level-1)/4.
//
// Precondition: level >= 1.
func ProficiencyBonus(level int) int {
	return 2 + (level-1)/4
}

// AbilityMod computes the ability modifier using floor division:
// floor((score - 10) / 2).
func AbilityMod(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}
