// Package config provides Viper-based configuration loading for the
// skirmish engine and its simulator binary.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// DiceConfig selects the randomness source the engine draws from.
type DiceConfig struct {
	// Source is the randomness kind: "seeded" for reproducible sessions,
	// "crypto" for live play.
	Source string `mapstructure:"source"`
	// Seed is the PRNG seed used when Source is "seeded". Identical seeds
	// replay identical sessions.
	Seed int64 `mapstructure:"seed"`
}

// RulesConfig holds the table-level rule knobs.
type RulesConfig struct {
	// UnitsPerSquare is the distance value of one grid square, typically 5.
	UnitsPerSquare int `mapstructure:"units_per_square"`
	// BaseMovement is the default per-turn movement allowance in distance
	// units for combatants that do not specify their own.
	BaseMovement int `mapstructure:"base_movement"`
	// ConditionsDir optionally points at a directory of house-rule
	// condition YAML files loaded on top of the embedded defaults.
	ConditionsDir string `mapstructure:"conditions_dir"`
}

// ScriptingConfig holds the Lua house-rule hook settings.
type ScriptingConfig struct {
	// RulesDir optionally points at a directory of *.lua rule overrides.
	RulesDir string `mapstructure:"rules_dir"`
	// InstructionLimit caps Lua opcodes per hook call; 0 uses the
	// package default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Dice      DiceConfig      `mapstructure:"dice"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDice(c.Dice); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRules(c.Rules); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScripting(c.Scripting); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateDice(d DiceConfig) error {
	validSources := map[string]bool{"seeded": true, "crypto": true}
	if !validSources[d.Source] {
		return fmt.Errorf("dice.source must be one of [seeded, crypto], got %q", d.Source)
	}
	return nil
}

func validateRules(r RulesConfig) error {
	var errs []string
	if r.UnitsPerSquare < 1 {
		errs = append(errs, fmt.Sprintf("rules.units_per_square must be >= 1, got %d", r.UnitsPerSquare))
	}
	if r.BaseMovement < 1 {
		errs = append(errs, fmt.Sprintf("rules.base_movement must be >= 1, got %d", r.BaseMovement))
	}
	if r.UnitsPerSquare >= 1 && r.BaseMovement >= 1 && r.BaseMovement%r.UnitsPerSquare != 0 {
		errs = append(errs, fmt.Sprintf("rules.base_movement (%d) must be a multiple of rules.units_per_square (%d)", r.BaseMovement, r.UnitsPerSquare))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("dice.source", "seeded")
	v.SetDefault("dice.seed", 0)

	v.SetDefault("rules.units_per_square", 5)
	v.SetDefault("rules.base_movement", 30)
	v.SetDefault("rules.conditions_dir", "")

	v.SetDefault("scripting.rules_dir", "")
	v.SetDefault("scripting.instruction_limit", 0)
}
