package condition

import (
	"sort"

	"github.com/calder-hayes/skirmish/internal/game/dice"
)

// Set is an immutable-by-convention snapshot of the condition IDs active on
// one creature at the moment of a rules decision.
type Set map[string]struct{}

// NewSet builds a Set from condition IDs.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the set's condition IDs in sorted order.
func (s Set) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// mergeModes reduces advantage/disadvantage demands to a net RollMode.
// Any advantage plus any disadvantage cancels to normal; multiple sources
// of the same direction never stack beyond one.
func mergeModes(advantage, disadvantage bool) dice.RollMode {
	switch {
	case advantage == disadvantage:
		return dice.ModeNormal
	case advantage:
		return dice.ModeAdvantage
	default:
		return dice.ModeDisadvantage
	}
}

// CombineModes merges two already-computed roll modes under the same
// cancellation rule.
func CombineModes(a, b dice.RollMode) dice.RollMode {
	adv := a == dice.ModeAdvantage || b == dice.ModeAdvantage
	dis := a == dice.ModeDisadvantage || b == dice.ModeDisadvantage
	return mergeModes(adv, dis)
}

// AttackMode returns the net roll mode for an attack made by a creature with
// attacker conditions against a creature with target conditions.
//
// Precondition: every id in both sets is registered; an unknown id panics.
func (r *Registry) AttackMode(attacker, target Set) dice.RollMode {
	adv, dis := false, false
	for id := range attacker {
		switch r.mustGet(id).OwnAttacks {
		case EffectAdvantage:
			adv = true
		case EffectDisadvantage:
			dis = true
		}
	}
	for id := range target {
		switch r.mustGet(id).AttacksAgainst {
		case EffectAdvantage:
			adv = true
		case EffectDisadvantage:
			dis = true
		}
	}
	return mergeModes(adv, dis)
}

// SaveEffect returns the net effect of conds on a saving throw of the given
// ability. Auto-fail dominates disadvantage.
func (r *Registry) SaveEffect(conds Set, ability Ability) SaveEffect {
	result := SaveNone
	for id := range conds {
		switch r.mustGet(id).SavingThrows[ability] {
		case SaveAutoFail:
			return SaveAutoFail
		case SaveDisadvantage:
			result = SaveDisadvantage
		}
	}
	return result
}

// CheckMode returns the net roll mode for an ability check made by a
// creature with conds. Conditions never grant advantage on checks, so the
// result is normal or disadvantage.
func (r *Registry) CheckMode(conds Set) dice.RollMode {
	for id := range conds {
		if r.mustGet(id).AbilityChecks == EffectDisadvantage {
			return dice.ModeDisadvantage
		}
	}
	return dice.ModeNormal
}

// BlocksActions returns the first condition in conds (by sorted ID) that
// prevents taking actions, or "" if none does.
func (r *Registry) BlocksActions(conds Set) string {
	return r.firstBlocking(conds, func(d *Def) bool { return d.BlocksActions })
}

// BlocksReactions returns the first condition preventing reactions, or "".
func (r *Registry) BlocksReactions(conds Set) string {
	return r.firstBlocking(conds, func(d *Def) bool { return d.BlocksReactions })
}

// BlocksMovement returns the first condition preventing movement, or "".
func (r *Registry) BlocksMovement(conds Set) string {
	return r.firstBlocking(conds, func(d *Def) bool { return d.BlocksMovement })
}

// firstBlocking scans in sorted ID order so the reported condition is
// deterministic regardless of map iteration order.
func (r *Registry) firstBlocking(conds Set, pred func(*Def) bool) string {
	for _, id := range conds.IDs() {
		if pred(r.mustGet(id)) {
			return id
		}
	}
	return ""
}
