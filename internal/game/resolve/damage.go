package resolve

import "github.com/calder-hayes/skirmish/internal/game/dice"

// DamageType names a kind of damage for resistance lookups.
type DamageType string

const (
	Bludgeoning DamageType = "bludgeoning"
	Piercing    DamageType = "piercing"
	Slashing    DamageType = "slashing"
	Acid        DamageType = "acid"
	Cold        DamageType = "cold"
	Fire        DamageType = "fire"
	Force       DamageType = "force"
	Lightning   DamageType = "lightning"
	Necrotic    DamageType = "necrotic"
	Poison      DamageType = "poison"
	Psychic     DamageType = "psychic"
	Radiant     DamageType = "radiant"
	Thunder     DamageType = "thunder"
)

// Resistance is a target's relationship to one damage type.
type Resistance string

const (
	Resistant  Resistance = "resistant"  // half damage, floored
	Vulnerable Resistance = "vulnerable" // double damage
	Immune     Resistance = "immune"     // no damage
)

// DamageOutcome records one damage calculation. Rolls holds one entry
// normally and two on a critical hit (the doubled dice are rolled
// independently, never mirrored).
type DamageOutcome struct {
	Rolls      []dice.RollResult `json:"rolls"`
	Modifier   int               `json:"modifier"` // flat portion, applied once
	Type       DamageType        `json:"type"`
	Critical   bool              `json:"critical"`
	Adjustment Resistance        `json:"adjustment,omitempty"` // resistance applied, if any
	BaseTotal  int               `json:"base_total"`           // dice + modifier before adjustment
	FinalTotal int               `json:"final_total"`
}

// Damage calculates the damage dealt by one hit. On a critical hit the dice
// portion (never the flat modifier) is doubled by rolling it a second
// independent time. The target's resistance, vulnerability, or immunity is
// then applied to the summed total, never to individual dice.
//
// The flat modifier is expr.Modifier plus the explicit modifier argument so
// callers can pass either "1d8+3" or ("1d8", 3).
//
// Precondition: expr must come from Parse; src must be non-nil.
func Damage(expr dice.Expression, modifier int, dtype DamageType, critical bool, resistances map[DamageType]Resistance, src dice.Source) DamageOutcome {
	rolls := []dice.RollResult{dice.RollN(expr.Count, expr.Sides, 0, src)}
	if critical {
		rolls = append(rolls, dice.RollN(expr.Count, expr.Sides, 0, src))
	}

	flat := expr.Modifier + modifier
	base := flat
	for _, r := range rolls {
		base += r.NaturalTotal()
	}
	if base < 0 {
		base = 0
	}

	final := base
	adjustment := Resistance("")
	switch resistances[dtype] {
	case Resistant:
		adjustment = Resistant
		final = base / 2
	case Vulnerable:
		adjustment = Vulnerable
		final = base * 2
	case Immune:
		adjustment = Immune
		final = 0
	}

	return DamageOutcome{
		Rolls:      rolls,
		Modifier:   flat,
		Type:       dtype,
		Critical:   critical,
		Adjustment: adjustment,
		BaseTotal:  base,
		FinalTotal: final,
	}
}
