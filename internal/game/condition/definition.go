// Package condition defines the status-effect registry consumed by both
// action validation and combat resolution. A Registry is constructed once,
// shared by reference, and never mutated after load.
package condition

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ability names one of the six saving-throw abilities.
type Ability string

const (
	Strength     Ability = "str"
	Dexterity    Ability = "dex"
	Constitution Ability = "con"
	Intelligence Ability = "int"
	Wisdom       Ability = "wis"
	Charisma     Ability = "cha"
)

// Abilities lists all six abilities in canonical order.
var Abilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// RollEffect is a condition's effect on a d20 roll.
type RollEffect string

const (
	EffectNone         RollEffect = "none"
	EffectAdvantage    RollEffect = "advantage"
	EffectDisadvantage RollEffect = "disadvantage"
)

// SaveEffect is a condition's effect on one saving-throw ability.
type SaveEffect string

const (
	SaveNone         SaveEffect = "none"
	SaveDisadvantage SaveEffect = "disadvantage"
	SaveAutoFail     SaveEffect = "auto_fail"
)

// Def is the static definition of one condition, loaded from YAML. Every
// field a rules decision can ask about is defined here; a zero field means
// "no effect".
type Def struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// OwnAttacks is the effect on attack rolls made by the affected creature.
	OwnAttacks RollEffect `yaml:"own_attacks"`
	// AttacksAgainst is the effect on attack rolls made against it.
	AttacksAgainst RollEffect `yaml:"attacks_against"`
	// SavingThrows maps each affected ability to its save effect; abilities
	// absent from the map are unaffected.
	SavingThrows map[Ability]SaveEffect `yaml:"saving_throws"`
	// AbilityChecks is the effect on ability checks (never advantage).
	AbilityChecks RollEffect `yaml:"ability_checks"`

	BlocksActions   bool `yaml:"blocks_actions"`
	BlocksReactions bool `yaml:"blocks_reactions"`
	BlocksMovement  bool `yaml:"blocks_movement"`
}

// validate rejects malformed effect values so a bad YAML file fails at load
// time rather than at resolution time.
func (d *Def) validate() error {
	if d.ID == "" {
		return fmt.Errorf("condition: definition missing id")
	}
	if !validRollEffect(d.OwnAttacks) {
		return fmt.Errorf("condition %q: invalid own_attacks %q", d.ID, d.OwnAttacks)
	}
	if !validRollEffect(d.AttacksAgainst) {
		return fmt.Errorf("condition %q: invalid attacks_against %q", d.ID, d.AttacksAgainst)
	}
	if d.AbilityChecks == EffectAdvantage || !validRollEffect(d.AbilityChecks) {
		return fmt.Errorf("condition %q: invalid ability_checks %q", d.ID, d.AbilityChecks)
	}
	for ability, eff := range d.SavingThrows {
		if !validAbility(ability) {
			return fmt.Errorf("condition %q: unknown ability %q", d.ID, ability)
		}
		switch eff {
		case SaveNone, SaveDisadvantage, SaveAutoFail:
		default:
			return fmt.Errorf("condition %q: invalid saving throw effect %q for %q", d.ID, eff, ability)
		}
	}
	return nil
}

func validRollEffect(e RollEffect) bool {
	switch e {
	case "", EffectNone, EffectAdvantage, EffectDisadvantage:
		return true
	}
	return false
}

func validAbility(a Ability) bool {
	for _, known := range Abilities {
		if a == known {
			return true
		}
	}
	return false
}

// Registry holds all known condition Defs keyed by ID. It is read-only
// after construction and safe to share by reference.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def, overwriting any existing entry with the same ID.
func (r *Registry) Register(def *Def) error {
	if err := def.validate(); err != nil {
		return err
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// mustGet fetches a Def, panicking on an unknown id. Aggregate queries use
// it: referencing an unregistered condition is a caller contract breach,
// never healed by guessing "no effect".
func (r *Registry) mustGet(id string) *Def {
	d, ok := r.defs[id]
	if !ok {
		panic("condition: unknown condition " + id)
	}
	return d
}

// IDs returns a sorted snapshot of all registered condition IDs.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.defs))
	for id := range r.defs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def, and
// registers it into reg. Files are strict-decoded so typos fail loudly.
func LoadDirectory(reg *Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		if err := registerYAML(reg, path, data); err != nil {
			return err
		}
	}
	return nil
}

// loadFS registers every *.yaml definition found in fsys under root.
func loadFS(reg *Registry, fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading embedded %q: %w", path, err)
		}
		return registerYAML(reg, path, data)
	})
}

func registerYAML(reg *Registry, path string, data []byte) error {
	var def Def
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return fmt.Errorf("parsing %q: %w", path, err)
	}
	if err := reg.Register(&def); err != nil {
		return fmt.Errorf("registering %q: %w", path, err)
	}
	return nil
}
