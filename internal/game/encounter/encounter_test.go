package encounter_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/calder-hayes/skirmish/internal/game/action"
	"github.com/calder-hayes/skirmish/internal/game/condition"
	"github.com/calder-hayes/skirmish/internal/game/dice"
	"github.com/calder-hayes/skirmish/internal/game/encounter"
	"github.com/calder-hayes/skirmish/internal/game/grid"
	"github.com/calder-hayes/skirmish/internal/game/initiative"
	"github.com/calder-hayes/skirmish/internal/game/resolve"
	"github.com/calder-hayes/skirmish/internal/scripting"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

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

func newEngine(t *testing.T, src dice.Source) *encounter.Engine {
	t.Helper()
	reg, err := condition.NewDefaultRegistry()
	if err != nil {
		t.Fatalf("NewDefaultRegistry: %v", err)
	}
	logger := zap.NewNop()
	return encounter.NewEngine(reg, scripting.NewRules(logger), dice.NewRoller(src, logger), 5, 30, logger)
}

// threeCombatants places A, B, C on a clear row. With fixedSrc{9} every
// initiative roll is 10, so the modifiers decide the order: A (12), C (11),
// B (10).
func threeCombatants() []encounter.Combatant {
	return []encounter.Combatant{
		{ID: "A", InitiativeModifier: 2, Position: grid.Position{X: 0, Y: 0}},
		{ID: "B", InitiativeModifier: 0, Position: grid.Position{X: 1, Y: 0}},
		{ID: "C", InitiativeModifier: 1, Position: grid.Position{X: 2, Y: 0}},
	}
}

func mustEncounter(t *testing.T, e *encounter.Engine) *encounter.State {
	t.Helper()
	st, err := e.NewEncounter(threeCombatants(), nil, nil)
	if err != nil {
		t.Fatalf("NewEncounter: %v", err)
	}
	return st
}

func TestNewEncounter_BuildsInitialState(t *testing.T) {
	e := newEngine(t, fixedSrc{9})
	st := mustEncounter(t, e)

	if st.Round.Round != 1 {
		t.Errorf("expected round 1, got %d", st.Round.Round)
	}
	if st.Round.Turn.ActorID != "A" {
		t.Errorf("expected A to act first, got %q", st.Round.Turn.ActorID)
	}
	if got := len(st.Positions); got != 3 {
		t.Errorf("expected 3 positions, got %d", got)
	}
	ts, ok := st.Turns["A"]
	if !ok {
		t.Fatal("active actor must have a turn snapshot")
	}
	if ts.MovementTotal != 30 {
		t.Errorf("expected base movement 30, got %d", ts.MovementTotal)
	}
}

func TestValidateAndCommit_ActionEconomy(t *testing.T) {
	e := newEngine(t, fixedSrc{9})
	st := mustEncounter(t, e)

	attack := action.Action{Type: action.TypeAction, ActorID: "A", TargetID: "B", Range: 5}

	res := e.ValidateAction(st, attack)
	if res.Verdict != action.VerdictSuccess {
		t.Fatalf("expected success, got %v (%v)", res.Verdict, res.Reason)
	}
	e.CommitAction(st, attack, res.Cost)

	res = e.ValidateAction(st, attack)
	if res.Verdict != action.VerdictFailure {
		t.Fatalf("second action must fail, got %v", res.Verdict)
	}
	var exhausted action.EconomyExhausted
	if !reasonAs(res.Reason, &exhausted) {
		t.Fatalf("expected EconomyExhausted, got %T", res.Reason)
	}
}

func reasonAs[T action.FailureReason](reason action.FailureReason, out *T) bool {
	r, ok := reason.(T)
	if ok {
		*out = r
	}
	return ok
}

func TestValidateAction_OutOfRange(t *testing.T) {
	e := newEngine(t, fixedSrc{9})
	st := mustEncounter(t, e)

	// C stands 2 squares from A: 10 units against a 5 unit reach.
	attack := action.Action{Type: action.TypeAction, ActorID: "A", TargetID: "C", Range: 5}
	res := e.ValidateAction(st, attack)
	if res.Verdict != action.VerdictFailure {
		t.Fatalf("expected failure, got %v", res.Verdict)
	}
	var oor action.OutOfRange
	if !reasonAs(res.Reason, &oor) {
		t.Fatalf("expected OutOfRange, got %T", res.Reason)
	}
	if oor.ActualDistance != 10 || oor.MaxRange != 5 {
		t.Errorf("unexpected distances: %+v", oor)
	}
}

func TestCommitAction_ConcentrationSpellRecorded(t *testing.T) {
	e := newEngine(t, fixedSrc{9})
	st := mustEncounter(t, e)
	st.Pools["A"][action.SlotKey(1)] = 2

	cast := action.Action{
		Type:    action.TypeAction,
		ActorID: "A",
		Spell:   &action.Spell{ID: "bless", Level: 1, Concentration: true},
	}
	res := e.ValidateAction(st, cast)
	if res.Verdict != action.VerdictSuccess {
		t.Fatalf("expected success, got %v (%v)", res.Verdict, res.Reason)
	}
	e.CommitAction(st, cast, res.Cost)

	rec, ok := st.Concentration.Active("A")
	if !ok || rec.SpellID != "bless" {
		t.Fatalf("expected bless concentration record, got %+v ok=%v", rec, ok)
	}
	if rec.SaveDC != 10 {
		t.Errorf("a fresh record carries the no-damage floor DC, got %d", rec.SaveDC)
	}
	if got := st.Pools["A"].Available(action.SlotKey(1)); got != 1 {
		t.Errorf("expected one slot left, got %d", got)
	}
}

func TestConcentrationCheck_NotConcentrating(t *testing.T) {
	e := newEngine(t, fixedSrc{9})
	st := mustEncounter(t, e)

	if _, held := e.ConcentrationCheck(st, "A", 12, 2, 2, true); held {
		t.Error("actor without a record has nothing to hold")
	}
}

func TestConcentrationCheck_SuccessKeepsSpell(t *testing.T) {
	// 30 damage makes DC 15. The save draw of 14 rolls a 15; +2 CON
	// clears the DC.
	src := &seqSrc{vals: []int{9, 9, 9, 14}}
	e := newEngine(t, src)
	st := mustEncounter(t, e)
	st.Concentration.Begin("A", action.ConcentrationRecord{SpellID: "haste", RoundStarted: 1})

	out, held := e.ConcentrationCheck(st, "A", 30, 2, 0, false)
	if !held {
		t.Fatal("expected a concentration record")
	}
	if !out.Success {
		t.Fatalf("15+2 vs DC 15 must succeed: %+v", out)
	}
	rec, ok := st.Concentration.Active("A")
	if !ok {
		t.Fatal("successful save must keep the record")
	}
	if rec.SaveDC != 15 {
		t.Errorf("record must carry the DC actually faced, got %d", rec.SaveDC)
	}
}

func TestConcentrationCheck_FailureEndsSpell(t *testing.T) {
	// 8 damage floors the DC at 10; a roll of 3 with +2 CON fails.
	src := &seqSrc{vals: []int{9, 9, 9, 2}}
	e := newEngine(t, src)
	st := mustEncounter(t, e)
	st.Concentration.Begin("A", action.ConcentrationRecord{SpellID: "haste", RoundStarted: 1})

	out, held := e.ConcentrationCheck(st, "A", 8, 2, 0, false)
	if !held {
		t.Fatal("expected a concentration record")
	}
	if out.DC != 10 {
		t.Errorf("expected floor DC 10, got %d", out.DC)
	}
	if out.Success {
		t.Fatalf("3+2 vs DC 10 must fail: %+v", out)
	}
	if _, ok := st.Concentration.Active("A"); ok {
		t.Error("failed save must end the record")
	}
}

func TestResolveAttack_ConditionsFlow(t *testing.T) {
	// B is prone; a melee-range attack against a prone target has
	// advantage, so two d20 draws happen and the higher (17) is selected.
	src := &seqSrc{vals: []int{9, 9, 9, 16, 4}}
	e := newEngine(t, src)
	st := mustEncounter(t, e)
	if err := e.ApplyCondition(st, "B", "prone", -1); err != nil {
		t.Fatalf("ApplyCondition: %v", err)
	}

	out := e.ResolveAttack(st, "A", "B", 4, 15, dice.ModeNormal)
	if out.Roll.Mode != dice.ModeAdvantage {
		t.Fatalf("expected advantage against a prone target, got %v", out.Roll.Mode)
	}
	if out.Natural != 17 || !out.Hit {
		t.Errorf("expected a hit on natural 17, got %+v", out)
	}
}

func TestResolveDamage_AppliesResistance(t *testing.T) {
	src := &seqSrc{vals: []int{9, 9, 9, 5, 2}}
	e := newEngine(t, src)
	st := mustEncounter(t, e)

	expr := dice.MustParse("2d6+3")
	out := e.ResolveDamage(st, "B", expr, 0, resolve.Slashing, false,
		map[resolve.DamageType]resolve.Resistance{resolve.Slashing: resolve.Resistant})
	if out.BaseTotal != 12 {
		t.Fatalf("expected base 6+3+3=12, got %d", out.BaseTotal)
	}
	if out.FinalTotal != 6 {
		t.Errorf("resistance halves the sum: expected 6, got %d", out.FinalTotal)
	}
}

func TestAdvanceTurn_TicksLeavingActorConditions(t *testing.T) {
	e := newEngine(t, fixedSrc{9})
	st := mustEncounter(t, e)
	if err := e.ApplyCondition(st, "A", "poisoned", 1); err != nil {
		t.Fatalf("ApplyCondition: %v", err)
	}

	if err := e.AdvanceTurn(st); err != nil {
		t.Fatalf("AdvanceTurn: %v", err)
	}
	if st.Round.Turn.ActorID != "C" {
		t.Fatalf("expected C after A, got %q", st.Round.Turn.ActorID)
	}
	if st.Conditions["A"].Has("poisoned") {
		t.Error("one-round condition must expire when A's turn ends")
	}
	if _, ok := st.Turns["C"]; !ok {
		t.Error("new active actor needs a fresh turn snapshot")
	}
}

// TestValidateAction_ReactionBeforeFirstTurn: a combatant who has not yet
// acted can still spend their reaction during someone else's turn.
func TestValidateAction_ReactionBeforeFirstTurn(t *testing.T) {
	e := newEngine(t, fixedSrc{9})
	st := mustEncounter(t, e) // active actor is A; C has not acted

	react := action.Action{Type: action.TypeReaction, ActorID: "C"}
	res := e.ValidateAction(st, react)
	if res.Verdict != action.VerdictSuccess {
		t.Fatalf("reaction before first turn must be legal, got %v (%v)", res.Verdict, res.Reason)
	}
	e.CommitAction(st, react, res.Cost)

	res = e.ValidateAction(st, react)
	if res.Verdict != action.VerdictFailure {
		t.Fatalf("second reaction in the round must fail, got %v", res.Verdict)
	}
}

func TestAdvanceTurn_ReactionPersistsUntilOwnTurn(t *testing.T) {
	e := newEngine(t, fixedSrc{9})
	st := mustEncounter(t, e)

	// C spends a reaction during A's turn.
	react := action.Action{Type: action.TypeReaction, ActorID: "C"}
	res := e.ValidateAction(st, react)
	if res.Verdict != action.VerdictSuccess {
		t.Fatalf("expected success, got %v (%v)", res.Verdict, res.Reason)
	}
	e.CommitAction(st, react, res.Cost)

	if err := e.AdvanceTurn(st); err != nil { // A -> C
		t.Fatalf("AdvanceTurn: %v", err)
	}
	if st.Turns["C"].ReactionUsed {
		t.Error("C's own turn start must clear the spent reaction")
	}
}

// TestRemoveCombatant_BystanderKeepsSpentEconomy: removing a dead bystander
// mid-turn must not refresh the active actor's turn snapshot.
func TestRemoveCombatant_BystanderKeepsSpentEconomy(t *testing.T) {
	e := newEngine(t, fixedSrc{9})
	st := mustEncounter(t, e) // active actor is A

	attack := action.Action{Type: action.TypeAction, ActorID: "A", TargetID: "B", Range: 5}
	res := e.ValidateAction(st, attack)
	if res.Verdict != action.VerdictSuccess {
		t.Fatalf("expected success, got %v (%v)", res.Verdict, res.Reason)
	}
	e.CommitAction(st, attack, res.Cost)

	if err := e.RemoveCombatant(st, "B"); err != nil {
		t.Fatalf("RemoveCombatant: %v", err)
	}
	if st.Round.Turn.ActorID != "A" {
		t.Fatalf("active actor must stay A, got %q", st.Round.Turn.ActorID)
	}
	if !st.Turns["A"].ActionUsed {
		t.Fatal("bystander removal must not hand the active actor a fresh snapshot")
	}

	again := action.Action{Type: action.TypeAction, ActorID: "A", TargetID: "C", Range: 15}
	res = e.ValidateAction(st, again)
	if res.Verdict != action.VerdictFailure {
		t.Fatalf("spent action must stay spent, got %v", res.Verdict)
	}
	var exhausted action.EconomyExhausted
	if !reasonAs(res.Reason, &exhausted) {
		t.Fatalf("expected EconomyExhausted, got %T", res.Reason)
	}
}

func TestAddAndRemoveCombatant(t *testing.T) {
	e := newEngine(t, fixedSrc{9})
	st := mustEncounter(t, e)

	entry, err := e.AddCombatant(st, encounter.Combatant{
		ID:                 "D",
		InitiativeModifier: 5,
		Position:           grid.Position{X: 3, Y: 0},
	})
	if err != nil {
		t.Fatalf("AddCombatant: %v", err)
	}
	if entry.Total != 15 {
		t.Errorf("expected total 15 (roll 10 + 5), got %d", entry.Total)
	}
	if st.Round.Order[0].ActorID != "D" {
		t.Errorf("D outrolled everyone, got order %+v", st.Round.Order)
	}
	if st.Round.Turn.ActorID != "A" {
		t.Errorf("active actor must stay A, got %q", st.Round.Turn.ActorID)
	}
	if _, ok := st.Turns["D"]; !ok {
		t.Error("a newcomer needs a turn snapshot before their first turn")
	}

	if err := e.RemoveCombatant(st, "A"); err != nil {
		t.Fatalf("RemoveCombatant: %v", err)
	}
	if st.Round.Turn.ActorID != "C" {
		t.Errorf("removing the active actor must advance to C, got %q", st.Round.Turn.ActorID)
	}
	if _, ok := st.Positions["A"]; ok {
		t.Error("removed actor must not keep a position")
	}
	if _, ok := st.Turns["C"]; !ok {
		t.Error("newly active actor needs a turn snapshot")
	}
}

func TestDelayAndResume(t *testing.T) {
	e := newEngine(t, fixedSrc{9})
	st := mustEncounter(t, e)

	if err := e.DelayTurn(st, "A"); err != nil {
		t.Fatalf("DelayTurn: %v", err)
	}
	if st.Round.Turn.ActorID != "C" {
		t.Fatalf("expected C after A delays, got %q", st.Round.Turn.ActorID)
	}

	entry, err := e.ResumeDelayedTurn(st, "A", 2)
	if err != nil {
		t.Fatalf("ResumeDelayedTurn: %v", err)
	}
	if entry.ActorID != "A" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if _, ok := st.Round.Delayed["A"]; ok {
		t.Error("A must leave the delayed table on resume")
	}
}

func TestRemoveCombatant_Unknown(t *testing.T) {
	e := newEngine(t, fixedSrc{9})
	st := mustEncounter(t, e)

	if err := e.RemoveCombatant(st, "nobody"); !errors.Is(err, initiative.ErrUnknownActor) {
		t.Fatalf("expected ErrUnknownActor, got %v", err)
	}
}
