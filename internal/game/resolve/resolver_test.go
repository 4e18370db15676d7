package resolve_test

import (
	"testing"

	"github.com/calder-hayes/skirmish/internal/game/condition"
	"github.com/calder-hayes/skirmish/internal/game/dice"
	"github.com/calder-hayes/skirmish/internal/game/resolve"
)

// fixedSrc is a deterministic Source returning val for every Intn call.
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

// seqSrc replays a scripted sequence of Intn values and counts draws.
type seqSrc struct {
	vals  []int
	drawn int
}

func (s *seqSrc) Intn(_ int) int {
	if s.drawn >= len(s.vals) {
		panic("seqSrc exhausted")
	}
	v := s.vals[s.drawn]
	s.drawn++
	return v
}

func registry(t *testing.T) *condition.Registry {
	t.Helper()
	reg, err := condition.NewDefaultRegistry()
	if err != nil {
		t.Fatalf("NewDefaultRegistry: %v", err)
	}
	return reg
}

func none() condition.Set { return condition.NewSet() }

// TestAttack_Natural20AlwaysCrits: a raw 20 hits and is critical regardless
// of AC, even when the total falls short.
func TestAttack_Natural20AlwaysCrits(t *testing.T) {
	reg := registry(t)
	out := resolve.Attack(-5, 99, dice.ModeNormal, none(), none(), reg, fixedSrc{val: 19})

	if out.Natural != 20 {
		t.Fatalf("expected natural 20, got %d", out.Natural)
	}
	if !out.Hit || !out.Critical {
		t.Errorf("natural 20 must be a critical hit: hit=%v critical=%v", out.Hit, out.Critical)
	}
}

// TestAttack_Natural1AlwaysMisses: a raw 1 misses regardless of bonus.
func TestAttack_Natural1AlwaysMisses(t *testing.T) {
	reg := registry(t)
	out := resolve.Attack(30, 5, dice.ModeNormal, none(), none(), reg, fixedSrc{val: 0})

	if out.Natural != 1 {
		t.Fatalf("expected natural 1, got %d", out.Natural)
	}
	if out.Hit || out.Critical {
		t.Errorf("natural 1 must miss: hit=%v critical=%v", out.Hit, out.Critical)
	}
}

// TestAttack_TotalVsAC: otherwise hit iff total >= AC.
func TestAttack_TotalVsAC(t *testing.T) {
	reg := registry(t)

	// d20=11, +4 = 15 vs AC 15: hit, not critical.
	out := resolve.Attack(4, 15, dice.ModeNormal, none(), none(), reg, fixedSrc{val: 10})
	if !out.Hit || out.Critical {
		t.Errorf("15 vs AC 15 must hit without crit: %+v", out)
	}

	// d20=11, +3 = 14 vs AC 15: miss.
	out = resolve.Attack(3, 15, dice.ModeNormal, none(), none(), reg, fixedSrc{val: 10})
	if out.Hit {
		t.Errorf("14 vs AC 15 must miss: %+v", out)
	}
}

// TestAttack_ConditionDisadvantage: a poisoned attacker draws two d20 values
// and keeps the lower.
func TestAttack_ConditionDisadvantage(t *testing.T) {
	reg := registry(t)
	src := &seqSrc{vals: []int{13, 4}} // raws 14 and 5

	out := resolve.Attack(0, 10, dice.ModeNormal, condition.NewSet("poisoned"), none(), reg, src)

	if len(out.Roll.Rolls) != 2 {
		t.Fatalf("disadvantage must preserve both raw rolls, got %v", out.Roll.Rolls)
	}
	if out.Natural != 5 {
		t.Errorf("disadvantage selects the lower raw: expected 5, got %d", out.Natural)
	}
}

// TestAttack_AdvantageDisadvantageCancel: caller advantage plus a condition
// disadvantage nets to a single normal draw.
func TestAttack_AdvantageDisadvantageCancel(t *testing.T) {
	reg := registry(t)
	src := &seqSrc{vals: []int{9}}

	out := resolve.Attack(0, 10, dice.ModeAdvantage, condition.NewSet("poisoned"), none(), reg, src)

	if len(out.Roll.Rolls) != 1 {
		t.Fatalf("cancelled modes must draw exactly once, got %v", out.Roll.Rolls)
	}
	if src.drawn != 1 {
		t.Errorf("expected 1 draw, got %d", src.drawn)
	}
}

// TestAttack_TargetProneGrantsAdvantage: target conditions feed the merge.
func TestAttack_TargetProneGrantsAdvantage(t *testing.T) {
	reg := registry(t)
	src := &seqSrc{vals: []int{3, 17}} // raws 4 and 18

	out := resolve.Attack(0, 10, dice.ModeNormal, none(), condition.NewSet("prone"), reg, src)

	if out.Natural != 18 {
		t.Errorf("advantage selects the higher raw: expected 18, got %d", out.Natural)
	}
}

// TestDamage_CriticalDoublesDiceNotModifier: the dice portion is rolled a
// second independent time; the flat modifier is applied once.
func TestDamage_CriticalDoublesDiceNotModifier(t *testing.T) {
	src := &seqSrc{vals: []int{2, 5, 3, 0}} // first roll [3 6], second [4 1]
	expr := dice.MustParse("2d6+3")

	out := resolve.Damage(expr, 0, resolve.Slashing, true, nil, src)

	if len(out.Rolls) != 2 {
		t.Fatalf("critical must produce two independent dice rolls, got %d", len(out.Rolls))
	}
	// dice 3+6+4+1 = 14, modifier +3 applied once.
	if out.BaseTotal != 17 {
		t.Errorf("expected base 17, got %d", out.BaseTotal)
	}
	if out.FinalTotal != 17 {
		t.Errorf("no resistance: final must equal base, got %d", out.FinalTotal)
	}
}

// TestDamage_ResistanceAppliesToSum: halving floors the summed total, not
// individual dice.
func TestDamage_ResistanceAppliesToSum(t *testing.T) {
	src := &seqSrc{vals: []int{4, 4}} // dice [5 5]
	expr := dice.MustParse("2d6")

	out := resolve.Damage(expr, 1, resolve.Fire, false,
		map[resolve.DamageType]resolve.Resistance{resolve.Fire: resolve.Resistant}, src)

	// base 5+5+1 = 11; halved and floored = 5. Per-die halving would give 6.
	if out.BaseTotal != 11 || out.FinalTotal != 5 {
		t.Errorf("expected base 11 final 5, got base %d final %d", out.BaseTotal, out.FinalTotal)
	}
	if out.Adjustment != resolve.Resistant {
		t.Errorf("expected resistant adjustment, got %q", out.Adjustment)
	}
}

func TestDamage_VulnerabilityAndImmunity(t *testing.T) {
	expr := dice.MustParse("1d4")

	out := resolve.Damage(expr, 0, resolve.Cold, false,
		map[resolve.DamageType]resolve.Resistance{resolve.Cold: resolve.Vulnerable}, fixedSrc{val: 2})
	if out.FinalTotal != out.BaseTotal*2 {
		t.Errorf("vulnerability must double the total: base %d final %d", out.BaseTotal, out.FinalTotal)
	}

	out = resolve.Damage(expr, 0, resolve.Poison, false,
		map[resolve.DamageType]resolve.Resistance{resolve.Poison: resolve.Immune}, fixedSrc{val: 2})
	if out.FinalTotal != 0 {
		t.Errorf("immunity must zero the total, got %d", out.FinalTotal)
	}
}

// TestSavingThrow_AutoFailConsumesRoll: a stunned creature auto-fails its
// dexterity save, but the d20 draw is still consumed so later rolls stay
// aligned with the recorded sequence.
func TestSavingThrow_AutoFailConsumesRoll(t *testing.T) {
	reg := registry(t)
	src := &seqSrc{vals: []int{19, 7}}

	out := resolve.SavingThrow(condition.Dexterity, 10, 5, 2, true,
		condition.NewSet("stunned"), reg, src)

	if out.Success {
		t.Error("stunned dexterity save must fail even on a natural 20")
	}
	if out.AutoFailedBy != "stunned" {
		t.Errorf("expected auto_failed_by=stunned, got %q", out.AutoFailedBy)
	}
	if src.drawn != 1 {
		t.Fatalf("auto-fail must consume exactly one draw, got %d", src.drawn)
	}
	// The next consumer sees the second scripted value, proving alignment.
	if got := src.Intn(20); got != 7 {
		t.Errorf("sequence misaligned after auto-fail: got %d", got)
	}
}

// TestSavingThrow_DisadvantageAndProficiency.
func TestSavingThrow_DisadvantageAndProficiency(t *testing.T) {
	reg := registry(t)
	src := &seqSrc{vals: []int{11, 2}} // raws 12 and 3

	out := resolve.SavingThrow(condition.Dexterity, 10, 1, 3, true,
		condition.NewSet("restrained"), reg, src)

	// Disadvantage keeps the 3; +1 ability +3 proficiency = 7 vs DC 10.
	if out.Total != 7 {
		t.Errorf("expected total 7, got %d", out.Total)
	}
	if out.Success {
		t.Error("7 vs DC 10 must fail")
	}
}

func TestSavingThrow_SuccessAtDC(t *testing.T) {
	reg := registry(t)
	out := resolve.SavingThrow(condition.Wisdom, 15, 4, 2, false, none(), reg, fixedSrc{val: 10})
	// 11 + 4 = 15 vs DC 15: success on a tie.
	if !out.Success {
		t.Errorf("total %d vs DC %d must succeed", out.Total, out.DC)
	}
	if out.Proficient {
		t.Error("proficiency flag must reflect the input")
	}
}

// TestAbilityCheck_PoisonedDisadvantage.
func TestAbilityCheck_PoisonedDisadvantage(t *testing.T) {
	reg := registry(t)
	src := &seqSrc{vals: []int{15, 3}} // raws 16 and 4

	out := resolve.AbilityCheck(condition.Strength, 12, 2, 2, true,
		condition.NewSet("poisoned"), reg, src)

	// Disadvantage keeps the 4; +2 +2 = 8 vs DC 12.
	if out.Total != 8 || out.Success {
		t.Errorf("expected failing total 8, got total=%d success=%v", out.Total, out.Success)
	}
}

func TestProficiencyBonus(t *testing.T) {
	cases := map[int]int{1: 2, 4: 2, 5: 3, 8: 3, 9: 4, 13: 5, 17: 6, 20: 6}
	for level, want := range cases {
		if got := resolve.ProficiencyBonus(level); got != want {
			t.Errorf("level %d: expected %d, got %d", level, want, got)
		}
	}
}

func TestAbilityMod(t *testing.T) {
	cases := map[int]int{1: -5, 8: -1, 9: -1, 10: 0, 11: 0, 14: 2, 20: 5}
	for score, want := range cases {
		if got := resolve.AbilityMod(score); got != want {
			t.Errorf("score %d: expected %d, got %d", score, want, got)
		}
	}
}
