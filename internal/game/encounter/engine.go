package encounter

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calder-hayes/skirmish/internal/game/action"
	"github.com/calder-hayes/skirmish/internal/game/condition"
	"github.com/calder-hayes/skirmish/internal/game/dice"
	"github.com/calder-hayes/skirmish/internal/game/grid"
	"github.com/calder-hayes/skirmish/internal/game/initiative"
	"github.com/calder-hayes/skirmish/internal/game/resolve"
	"github.com/calder-hayes/skirmish/internal/scripting"
)

// Engine resolves rules for any number of encounters. It holds no per-
// encounter state; every call takes the State it operates on. The engine is
// single-threaded per encounter; the host serializes calls.
type Engine struct {
	registry *condition.Registry
	rules    *scripting.Rules
	roller   *dice.Roller
	pipeline *action.Pipeline

	unitsPerSquare int
	baseMovement   int // distance units per turn

	logger *zap.Logger
}

// NewEngine wires an Engine from its collaborators.
//
// Precondition: registry, rules, roller, and logger must be non-nil;
// unitsPerSquare and baseMovement must be positive.
func NewEngine(registry *condition.Registry, rules *scripting.Rules, roller *dice.Roller, unitsPerSquare, baseMovement int, logger *zap.Logger) *Engine {
	if unitsPerSquare <= 0 {
		panic(fmt.Sprintf("encounter: non-positive units per square %d", unitsPerSquare))
	}
	if baseMovement <= 0 {
		panic(fmt.Sprintf("encounter: non-positive base movement %d", baseMovement))
	}
	return &Engine{
		registry:       registry,
		rules:          rules,
		roller:         roller,
		pipeline:       action.NewPipeline(registry, unitsPerSquare, logger),
		unitsPerSquare: unitsPerSquare,
		baseMovement:   baseMovement,
		logger:         logger,
	}
}

// RollInitiative rolls one actor's initiative entry.
func (e *Engine) RollInitiative(actorID string, modifier int) initiative.Entry {
	return initiative.Roll(actorID, modifier, e.roller.Source())
}

// RollInitiativeForAll rolls entries for every actor in mods, in sorted
// actor-id order for seed reproducibility.
func (e *Engine) RollInitiativeForAll(mods map[string]int) []initiative.Entry {
	return initiative.RollAll(mods, e.roller.Source())
}

// NewEncounter rolls initiative for the combatants, builds the turn order,
// and returns the initial State with the active actor's turn started.
//
// Precondition: combatant ids are unique and non-empty.
func (e *Engine) NewEncounter(combatants []Combatant, surprised []string, obstacles map[grid.Position]bool) (*State, error) {
	entries := make([]initiative.Entry, 0, len(combatants))
	for _, c := range combatants {
		if c.ID == "" {
			panic("encounter: combatant with empty id")
		}
		entries = append(entries, initiative.Roll(c.ID, c.InitiativeModifier, e.roller.Source()))
	}

	round, err := initiative.Initialize(entries, surprised)
	if err != nil {
		return nil, err
	}

	st := &State{
		ID:             uuid.New(),
		Round:          round,
		Positions:      make(map[string]grid.Position, len(combatants)),
		Obstacles:      obstacles,
		Conditions:     make(map[string]*condition.ActiveSet, len(combatants)),
		Pools:          make(map[string]action.ResourcePool, len(combatants)),
		Turns:          make(map[string]*action.TurnState, len(combatants)),
		Concentration:  action.NewConcentrationState(),
		movementTotals: make(map[string]int, len(combatants)),
	}
	if st.Obstacles == nil {
		st.Obstacles = make(map[grid.Position]bool)
	}
	for _, c := range combatants {
		st.Positions[c.ID] = c.Position
		st.Conditions[c.ID] = condition.NewActiveSet()
		pool := c.Resources
		if pool == nil {
			pool = make(action.ResourcePool)
		}
		st.Pools[c.ID] = pool
		total := c.MovementTotal
		if total <= 0 {
			total = e.baseMovement
		}
		st.movementTotals[c.ID] = total
		// Every combatant gets a snapshot up front: reactions are legal
		// before an actor's own first turn.
		e.startTurn(st, c.ID)
	}

	e.logger.Info("encounter started",
		zap.String("encounter", st.ID.String()),
		zap.Int("combatants", len(combatants)),
		zap.Int("round", st.Round.Round),
		zap.String("active", st.Round.Turn.ActorID),
	)
	return st, nil
}

// startTurn replaces the actor's turn snapshot with a fresh one: flags
// clear, full movement, same persistent pool and shared concentration table.
func (e *Engine) startTurn(st *State, actorID string) {
	st.Turns[actorID] = action.NewTurnState(actorID, st.movementTotals[actorID], st.Pools[actorID], st.Concentration)
}

// ValidateAction runs the proposed action through the validation pipeline
// against the actor's current conditions, turn economy, and the spatial
// snapshot. It never mutates the state.
func (e *Engine) ValidateAction(st *State, a action.Action) action.ValidationResult {
	ts, ok := st.Turns[a.ActorID]
	if !ok {
		panic(fmt.Sprintf("encounter: no turn state for actor %q", a.ActorID))
	}
	return e.pipeline.Validate(a, st.ConditionsOf(a.ActorID), ts, st.Snapshot())
}

// CommitAction applies the cost of a validated action to the actor's turn
// state. When the action casts a concentration spell, the actor's
// concentration record is replaced after any prior effect ends.
//
// Precondition: cost came from a Success verdict for this same action and
// state, with no intervening mutation.
func (e *Engine) CommitAction(st *State, a action.Action, cost action.ResourceCost) {
	ts, ok := st.Turns[a.ActorID]
	if !ok {
		panic(fmt.Sprintf("encounter: no turn state for actor %q", a.ActorID))
	}
	ts.ApplyCost(cost)
	if a.Spell != nil && a.Spell.Concentration {
		st.Concentration.Begin(a.ActorID, action.ConcentrationRecord{
			SpellID:      a.Spell.ID,
			RoundStarted: st.Round.Round,
			// The record starts at the no-damage floor; each damage
			// check rewrites it with the DC actually faced.
			SaveDC: e.rules.ConcentrationDC(0),
		})
	}
	e.logger.Debug("action committed",
		zap.String("encounter", st.ID.String()),
		zap.String("actor", a.ActorID),
		zap.String("type", a.Type.String()),
	)
}

// ResolveAttack rolls an attack from attacker against target. The imposed
// mode carries situational advantage or disadvantage (cover, hiding, help);
// condition-derived modes combine with it inside the resolver.
func (e *Engine) ResolveAttack(st *State, attackerID, targetID string, attackBonus, targetAC int, imposed dice.RollMode) resolve.AttackOutcome {
	out := resolve.Attack(attackBonus, targetAC,
		imposed,
		st.ConditionsOf(attackerID), st.ConditionsOf(targetID),
		e.registry, e.roller.Source())
	e.logger.Debug("attack resolved",
		zap.String("encounter", st.ID.String()),
		zap.String("attacker", attackerID),
		zap.String("target", targetID),
		zap.Bool("hit", out.Hit),
		zap.Bool("critical", out.Critical),
	)
	return out
}

// ResolveDamage rolls a damage expression against a target's resistances.
func (e *Engine) ResolveDamage(st *State, targetID string, expr dice.Expression, modifier int, dtype resolve.DamageType, critical bool, resistances map[resolve.DamageType]resolve.Resistance) resolve.DamageOutcome {
	out := resolve.Damage(expr, modifier, dtype, critical, resistances, e.roller.Source())
	e.logger.Debug("damage resolved",
		zap.String("encounter", st.ID.String()),
		zap.String("target", targetID),
		zap.String("type", string(dtype)),
		zap.Int("final", out.FinalTotal),
	)
	return out
}

// ResolveSavingThrow rolls the actor's saving throw under their current
// conditions.
func (e *Engine) ResolveSavingThrow(st *State, actorID string, ability condition.Ability, dc, abilityMod, proficiencyBonus int, proficient bool) resolve.SaveOutcome {
	out := resolve.SavingThrow(ability, dc, abilityMod, proficiencyBonus, proficient,
		st.ConditionsOf(actorID), e.registry, e.roller.Source())
	e.logger.Debug("saving throw resolved",
		zap.String("encounter", st.ID.String()),
		zap.String("actor", actorID),
		zap.String("ability", string(ability)),
		zap.Int("dc", dc),
		zap.Bool("success", out.Success),
	)
	return out
}

// ResolveAbilityCheck rolls the actor's ability check under their current
// conditions.
func (e *Engine) ResolveAbilityCheck(st *State, actorID string, ability condition.Ability, dc, abilityMod, proficiencyBonus int, proficient bool) resolve.CheckOutcome {
	out := resolve.AbilityCheck(ability, dc, abilityMod, proficiencyBonus, proficient,
		st.ConditionsOf(actorID), e.registry, e.roller.Source())
	e.logger.Debug("ability check resolved",
		zap.String("encounter", st.ID.String()),
		zap.String("actor", actorID),
		zap.String("ability", string(ability)),
		zap.Bool("success", out.Success),
	)
	return out
}

// ConcentrationCheck resolves whether a damaged concentrating actor keeps
// their sustained spell. The save DC comes from the house-rule hook (stock
// rule: max of 10 and half the damage). A failed save ends the
// concentration. Reports held=false and a zero outcome when the actor was
// not concentrating.
func (e *Engine) ConcentrationCheck(st *State, actorID string, damage, conMod, proficiencyBonus int, proficient bool) (resolve.SaveOutcome, bool) {
	rec, ok := st.Concentration.Active(actorID)
	if !ok {
		return resolve.SaveOutcome{}, false
	}

	dc := e.rules.ConcentrationDC(damage)
	out := resolve.SavingThrow(condition.Constitution, dc, conMod, proficiencyBonus, proficient,
		st.ConditionsOf(actorID), e.registry, e.roller.Source())
	if out.Success {
		rec.SaveDC = dc
		st.Concentration.Begin(actorID, rec)
	} else {
		st.Concentration.End(actorID)
	}
	e.logger.Debug("concentration check resolved",
		zap.String("encounter", st.ID.String()),
		zap.String("actor", actorID),
		zap.String("spell", rec.SpellID),
		zap.Int("damage", damage),
		zap.Int("dc", dc),
		zap.Bool("held", out.Success),
	)
	return out, true
}

// ApplyCondition puts a registered condition on the actor for the given
// number of rounds (-1 = until removed).
func (e *Engine) ApplyCondition(st *State, actorID, conditionID string, rounds int) error {
	set, ok := st.Conditions[actorID]
	if !ok {
		return fmt.Errorf("%w: %q", initiative.ErrUnknownActor, actorID)
	}
	def, ok := e.registry.Get(conditionID)
	if !ok {
		return fmt.Errorf("encounter: unknown condition %q", conditionID)
	}
	return set.Apply(def, rounds)
}

// RemoveCondition clears a condition from the actor; a no-op when absent.
func (e *Engine) RemoveCondition(st *State, actorID, conditionID string) {
	if set, ok := st.Conditions[actorID]; ok {
		set.Remove(conditionID)
	}
}

// AdvanceTurn ends the active actor's turn: their timed conditions tick
// down, the pointer moves, and the new active actor gets a fresh turn
// snapshot.
func (e *Engine) AdvanceTurn(st *State) error {
	leaving := st.Round.Turn.ActorID

	round, err := initiative.AdvanceTurn(st.Round)
	if err != nil {
		return err
	}

	var expired []string
	if set, ok := st.Conditions[leaving]; ok {
		expired = set.Tick()
	}

	st.Round = round
	e.startTurn(st, round.Turn.ActorID)

	e.logger.Debug("turn advanced",
		zap.String("encounter", st.ID.String()),
		zap.String("ended", leaving),
		zap.Strings("conditions_expired", expired),
		zap.Int("round", round.Round),
		zap.String("active", round.Turn.ActorID),
	)
	return nil
}

// AddCombatant rolls initiative for a newcomer and inserts them into the
// running order.
func (e *Engine) AddCombatant(st *State, c Combatant) (initiative.Entry, error) {
	entry := initiative.Roll(c.ID, c.InitiativeModifier, e.roller.Source())
	round, err := initiative.AddCreature(st.Round, entry)
	if err != nil {
		return initiative.Entry{}, err
	}
	st.Round = round
	st.Positions[c.ID] = c.Position
	st.Conditions[c.ID] = condition.NewActiveSet()
	pool := c.Resources
	if pool == nil {
		pool = make(action.ResourcePool)
	}
	st.Pools[c.ID] = pool
	total := c.MovementTotal
	if total <= 0 {
		total = e.baseMovement
	}
	st.movementTotals[c.ID] = total
	e.startTurn(st, c.ID)
	return entry, nil
}

// RemoveCombatant drops an actor from the encounter entirely: order,
// position, conditions, resources, and any sustained spell.
func (e *Engine) RemoveCombatant(st *State, actorID string) error {
	wasActive := st.Round.Turn.ActorID == actorID

	round, err := initiative.RemoveCreature(st.Round, actorID)
	if err != nil {
		return err
	}
	st.Round = round
	delete(st.Positions, actorID)
	delete(st.Conditions, actorID)
	delete(st.Pools, actorID)
	delete(st.Turns, actorID)
	delete(st.movementTotals, actorID)
	st.Concentration.End(actorID)

	// Removing the active actor advances the pointer, so the newly active
	// actor's turn starts here. A bystander removal must not touch the
	// active actor's spent economy.
	if wasActive {
		e.startTurn(st, st.Round.Turn.ActorID)
	}
	return nil
}

// DelayTurn stashes the active actor out of the order.
func (e *Engine) DelayTurn(st *State, actorID string) error {
	round, err := initiative.DelayTurn(st.Round, actorID)
	if err != nil {
		return err
	}
	st.Round = round
	e.startTurn(st, round.Turn.ActorID)
	return nil
}

// ResumeDelayedTurn rolls fresh initiative for a delayed actor and
// re-inserts them; the new position persists for the rest of the encounter.
func (e *Engine) ResumeDelayedTurn(st *State, actorID string, modifier int) (initiative.Entry, error) {
	entry := initiative.Roll(actorID, modifier, e.roller.Source())
	round, err := initiative.ResumeDelayedTurn(st.Round, entry)
	if err != nil {
		return initiative.Entry{}, err
	}
	st.Round = round
	return entry, nil
}
