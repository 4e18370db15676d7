package action_test

import (
	"testing"

	"github.com/calder-hayes/skirmish/internal/game/action"
)

func TestApplyCost_SetsFlagsAndConsumesResources(t *testing.T) {
	pool := action.ResourcePool{action.SlotKey(1): 2}
	conc := action.NewConcentrationState()
	ts := action.NewTurnState("hero", 30, pool, conc)

	ts.ApplyCost(action.ResourceCost{
		UsesAction: true,
		Movement:   10,
		Resources:  map[action.ResourceKey]int{action.SlotKey(1): 1},
	})

	if !ts.ActionUsed || ts.BonusActionUsed || ts.ReactionUsed {
		t.Errorf("unexpected flags: %+v", ts)
	}
	if ts.MovementRemaining() != 20 {
		t.Errorf("expected 20 movement remaining, got %d", ts.MovementRemaining())
	}
	if pool[action.SlotKey(1)] != 1 {
		t.Errorf("expected 1 slot remaining, got %d", pool[action.SlotKey(1)])
	}
}

func TestApplyCost_MovementAccumulates(t *testing.T) {
	ts := action.NewTurnState("hero", 30, action.ResourcePool{}, action.NewConcentrationState())

	ts.ApplyCost(action.ResourceCost{Movement: 10})
	ts.ApplyCost(action.ResourceCost{Movement: 15})

	if ts.MovementRemaining() != 5 {
		t.Errorf("expected 5 remaining, got %d", ts.MovementRemaining())
	}
}

// TestApplyCost_BreaksConcentration: the deferred state transition fires
// when the cost is applied, not during validation.
func TestApplyCost_BreaksConcentration(t *testing.T) {
	conc := action.NewConcentrationState()
	conc.Begin("hero", action.ConcentrationRecord{SpellID: "bless", RoundStarted: 2, SaveDC: 10})
	ts := action.NewTurnState("hero", 30, action.ResourcePool{}, conc)

	ts.ApplyCost(action.ResourceCost{UsesAction: true, BreaksConcentration: true})

	if _, active := conc.Active("hero"); active {
		t.Error("applying a concentration-breaking cost must end the old effect")
	}
}

// TestConcentrationState_AtMostOneRecord: Begin replaces, never stacks.
func TestConcentrationState_AtMostOneRecord(t *testing.T) {
	conc := action.NewConcentrationState()
	conc.Begin("hero", action.ConcentrationRecord{SpellID: "bless", RoundStarted: 1, SaveDC: 10})
	conc.Begin("hero", action.ConcentrationRecord{SpellID: "hold-person", RoundStarted: 2, SaveDC: 12})

	rec, ok := conc.Active("hero")
	if !ok || rec.SpellID != "hold-person" {
		t.Errorf("expected only the replacing record, got %+v ok=%v", rec, ok)
	}
}

func TestResourcePool_ConsumeContract(t *testing.T) {
	pool := action.ResourcePool{action.SlotKey(1): 1}

	assertPanics := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}

	assertPanics("unknown key", func() { pool.Consume(action.FeatureKey("rage"), 1) })
	assertPanics("over-consume", func() { pool.Consume(action.SlotKey(1), 2) })
	assertPanics("non-positive", func() { pool.Consume(action.SlotKey(1), 0) })

	pool.Consume(action.SlotKey(1), 1)
	if pool.Available(action.SlotKey(1)) != 0 {
		t.Errorf("expected 0 remaining, got %d", pool.Available(action.SlotKey(1)))
	}
}

func TestResourceKeys(t *testing.T) {
	if action.SlotKey(3) != action.ResourceKey("slot:3") {
		t.Errorf("unexpected slot key %s", action.SlotKey(3))
	}
	if action.HitDieKey(8) != action.ResourceKey("hit_die:d8") {
		t.Errorf("unexpected hit die key %s", action.HitDieKey(8))
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic for slot level 0")
		}
	}()
	action.SlotKey(0)
}
