// Package main provides the encounter simulator binary: it wires the combat
// core from configuration, runs a small scripted encounter, and logs every
// mechanical outcome. It is the reference harness for seed-reproducible
// sessions.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calder-hayes/skirmish/internal/config"
	"github.com/calder-hayes/skirmish/internal/game/action"
	"github.com/calder-hayes/skirmish/internal/game/condition"
	"github.com/calder-hayes/skirmish/internal/game/dice"
	"github.com/calder-hayes/skirmish/internal/game/encounter"
	"github.com/calder-hayes/skirmish/internal/game/grid"
	"github.com/calder-hayes/skirmish/internal/game/resolve"
	"github.com/calder-hayes/skirmish/internal/observability"
	"github.com/calder-hayes/skirmish/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	conditionsDir := flag.String("conditions-dir", "", "directory of house-rule condition YAML files; overrides rules.conditions_dir")
	rulesDir := flag.String("rules-dir", "", "directory of Lua rule overrides; overrides scripting.rules_dir")
	rounds := flag.Int("rounds", 3, "number of rounds to simulate")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	registry, err := condition.NewDefaultRegistry()
	if err != nil {
		logger.Fatal("loading embedded conditions", zap.Error(err))
	}
	if dir := firstNonEmpty(*conditionsDir, cfg.Rules.ConditionsDir); dir != "" {
		if err := condition.LoadDirectory(registry, dir); err != nil {
			logger.Fatal("loading house-rule conditions", zap.Error(err), zap.String("dir", dir))
		}
	}
	logger.Info("conditions loaded", zap.Strings("ids", registry.IDs()))

	var src dice.Source
	switch cfg.Dice.Source {
	case "seeded":
		src = dice.NewSeededSource(cfg.Dice.Seed)
		logger.Info("dice seeded", zap.Int64("seed", cfg.Dice.Seed))
	case "crypto":
		src = dice.NewCryptoSource()
	}
	roller := dice.NewRoller(src, logger)

	rules := scripting.NewRules(logger)
	defer rules.Close()
	if dir := firstNonEmpty(*rulesDir, cfg.Scripting.RulesDir); dir != "" {
		if err := rules.LoadDirectory(dir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading rule scripts", zap.Error(err), zap.String("dir", dir))
		}
		logger.Info("rule scripts loaded", zap.String("dir", dir))
	}

	engine := encounter.NewEngine(registry, rules, roller, cfg.Rules.UnitsPerSquare, cfg.Rules.BaseMovement, logger)

	if err := run(engine, *rounds, logger); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}

	logger.Info("simulation complete", zap.Duration("elapsed", time.Since(start)))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// run plays a three-combatant skirmish: a fighter and a cleric against an
// ambushed raider. Every turn the active actor attacks the nearest foe; the
// cleric opens with a concentration spell.
func run(engine *encounter.Engine, rounds int, logger *zap.Logger) error {
	fighter := uuid.NewString()
	cleric := uuid.NewString()
	raider := uuid.NewString()
	names := map[string]string{fighter: "fighter", cleric: "cleric", raider: "raider"}
	foes := map[string]string{fighter: raider, cleric: raider, raider: cleric}

	st, err := engine.NewEncounter([]encounter.Combatant{
		{ID: fighter, InitiativeModifier: 2, Position: grid.Position{X: 0, Y: 0}},
		{ID: cleric, InitiativeModifier: 1, Position: grid.Position{X: 0, Y: 1},
			Resources: action.ResourcePool{action.SlotKey(1): 3}},
		{ID: raider, InitiativeModifier: 3, Position: grid.Position{X: 1, Y: 0}},
	}, []string{raider}, nil)
	if err != nil {
		return err
	}

	for _, e := range st.Round.Order {
		logger.Info("initiative",
			zap.String("actor", names[e.ActorID]),
			zap.Int("roll", e.Roll),
			zap.Int("total", e.Total),
		)
	}

	clericHasCast := false
	turns := rounds * len(st.Round.Order)
	for i := 0; i < turns; i++ {
		active, err := st.ActiveActor()
		if err != nil {
			return err
		}
		actorID := active.ActorID

		var act action.Action
		if actorID == cleric && !clericHasCast {
			act = action.Action{
				Type:    action.TypeAction,
				ActorID: cleric,
				Spell:   &action.Spell{ID: "bless", Level: 1, Concentration: true},
			}
		} else {
			act = action.Action{
				Type:     action.TypeAction,
				ActorID:  actorID,
				TargetID: foes[actorID],
				Range:    5,
			}
		}

		res := engine.ValidateAction(st, act)
		switch res.Verdict {
		case action.VerdictSuccess:
			engine.CommitAction(st, act, res.Cost)
			if act.Spell != nil {
				clericHasCast = true
				logger.Info("spell cast",
					zap.String("actor", names[actorID]),
					zap.String("spell", act.Spell.ID),
				)
			} else {
				attack := engine.ResolveAttack(st, actorID, act.TargetID, 4, 14, dice.ModeNormal)
				logger.Info("attack",
					zap.String("actor", names[actorID]),
					zap.String("target", names[act.TargetID]),
					zap.Int("natural", attack.Natural),
					zap.Int("total", attack.Total),
					zap.Bool("hit", attack.Hit),
					zap.Bool("critical", attack.Critical),
				)
				if attack.Hit {
					dmg := engine.ResolveDamage(st, act.TargetID, dice.MustParse("1d8+2"), 0, resolve.Slashing, attack.Critical, nil)
					logger.Info("damage",
						zap.String("target", names[act.TargetID]),
						zap.Int("final", dmg.FinalTotal),
					)
					if save, held := engine.ConcentrationCheck(st, act.TargetID, dmg.FinalTotal, 1, 2, true); held {
						logger.Info("concentration",
							zap.String("actor", names[act.TargetID]),
							zap.Int("dc", save.DC),
							zap.Bool("kept", save.Success),
						)
					}
				}
			}
		case action.VerdictFailure:
			logger.Info("action rejected",
				zap.String("actor", names[actorID]),
				zap.String("code", res.Reason.Code()),
				zap.String("reason", res.Reason.String()),
			)
		case action.VerdictRequiresChoice:
			// The demo casts at the lowest offered slot.
			chosen := res.Options[0]
			act.Spell.SlotLevel = chosen.SlotLevel
			if retry := engine.ValidateAction(st, act); retry.Verdict == action.VerdictSuccess {
				engine.CommitAction(st, act, retry.Cost)
				clericHasCast = true
			}
		}

		if err := engine.AdvanceTurn(st); err != nil {
			return err
		}
	}

	return nil
}
