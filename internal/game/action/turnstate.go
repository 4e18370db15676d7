package action

import "fmt"

// ResourceKey names one consumable resource in a pool: a spell-slot level, a
// class feature, an item charge, or a hit-die type.
type ResourceKey string

// SlotKey returns the ResourceKey for a spell slot of the given level.
//
// Precondition: level in [1, 9].
func SlotKey(level int) ResourceKey {
	if level < 1 || level > 9 {
		panic(fmt.Sprintf("action: slot level %d out of range", level))
	}
	return ResourceKey(fmt.Sprintf("slot:%d", level))
}

// FeatureKey returns the ResourceKey for a named class feature.
func FeatureKey(id string) ResourceKey { return ResourceKey("feature:" + id) }

// ItemKey returns the ResourceKey for a named item charge.
func ItemKey(id string) ResourceKey { return ResourceKey("item:" + id) }

// HitDieKey returns the ResourceKey for hit dice of the given face count.
func HitDieKey(sides int) ResourceKey { return ResourceKey(fmt.Sprintf("hit_die:d%d", sides)) }

// ResourcePool maps resource keys to remaining counts. Validators must check
// availability before requesting consumption; Consume treats shortfalls as
// programming errors.
type ResourcePool map[ResourceKey]int

// Available returns the remaining count for key, 0 when absent.
func (p ResourcePool) Available(key ResourceKey) int { return p[key] }

// Consume removes n units of key from the pool.
//
// Precondition: n >= 1 and Available(key) >= n. Consuming a resource that
// does not exist, or more than available, panics: validation must have
// established availability first.
func (p ResourcePool) Consume(key ResourceKey, n int) {
	if n < 1 {
		panic(fmt.Sprintf("action: Consume called with n=%d for %s", n, key))
	}
	have, ok := p[key]
	if !ok {
		panic(fmt.Sprintf("action: Consume of unknown resource %s", key))
	}
	if have < n {
		panic(fmt.Sprintf("action: Consume of %d %s with only %d available", n, key, have))
	}
	p[key] = have - n
}

// Clone returns an independent copy of the pool.
func (p ResourcePool) Clone() ResourcePool {
	out := make(ResourcePool, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ConcentrationRecord is one actor's sustained spell effect.
type ConcentrationRecord struct {
	SpellID      string `json:"spell_id"`
	RoundStarted int    `json:"round_started"`
	// SaveDC is the most recent save difficulty the caster faced for this
	// effect: the no-damage floor at cast time, then the DC of each held
	// check.
	SaveDC int `json:"save_dc"`
}

// ConcentrationState maps actor id to at most one active concentration
// record. The map itself is shared by reference across all turn states in an
// encounter.
//
// Invariant: an actor maps to zero or one entries, never more; Begin
// replaces any existing record.
type ConcentrationState map[string]ConcentrationRecord

// NewConcentrationState creates an empty shared concentration table.
func NewConcentrationState() ConcentrationState {
	return make(ConcentrationState)
}

// Active returns the actor's current record, if any.
func (c ConcentrationState) Active(actorID string) (ConcentrationRecord, bool) {
	rec, ok := c[actorID]
	return rec, ok
}

// Begin records a new sustained spell for the actor, replacing any existing
// record.
func (c ConcentrationState) Begin(actorID string, rec ConcentrationRecord) {
	c[actorID] = rec
}

// End drops the actor's concentration; a no-op when not concentrating.
func (c ConcentrationState) End(actorID string) {
	delete(c, actorID)
}

// TurnState is one actor's per-turn action-economy snapshot. It is created
// at turn start with all flags clear and full movement, and mutated only by
// ApplyCost after a successful validation.
type TurnState struct {
	ActorID string

	ActionUsed      bool
	BonusActionUsed bool
	// ReactionUsed persists across turn boundaries within a round; it is
	// cleared only at the start of this creature's own next turn.
	ReactionUsed bool

	MovementUsed  int // distance units
	MovementTotal int // distance units

	Resources     ResourcePool
	Concentration ConcentrationState // shared across the encounter
}

// NewTurnState creates the snapshot for the start of an actor's turn: all
// flags clear and full movement. A reaction spent during another creature's
// turn stays spent on the existing state until this constructor runs again
// at the actor's own next turn.
func NewTurnState(actorID string, movementTotal int, pool ResourcePool, conc ConcentrationState) *TurnState {
	return &TurnState{
		ActorID:       actorID,
		MovementTotal: movementTotal,
		Resources:     pool,
		Concentration: conc,
	}
}

// MovementRemaining returns the unspent movement allowance in distance
// units.
func (t *TurnState) MovementRemaining() int {
	return t.MovementTotal - t.MovementUsed
}

// ApplyCost commits a validated ResourceCost to the turn state. This is the
// only mutation path; validators never touch the state.
//
// Precondition: cost came from a Success verdict against this same state.
func (t *TurnState) ApplyCost(cost ResourceCost) {
	if cost.UsesAction {
		t.ActionUsed = true
	}
	if cost.UsesBonusAction {
		t.BonusActionUsed = true
	}
	if cost.UsesReaction {
		t.ReactionUsed = true
	}
	t.MovementUsed += cost.Movement
	for key, n := range cost.Resources {
		t.Resources.Consume(key, n)
	}
	if cost.BreaksConcentration {
		t.Concentration.End(t.ActorID)
	}
}
