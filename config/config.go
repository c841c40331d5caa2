/*
Package config loads the YAML configuration: server settings, logging,
scoring rules, the level ladder and the badge catalog.

The defaults reproduce the production rules (100 points per recognition,
badge threshold 3, seven-level ladder), so the server runs with no config
file at all. A partial file overrides only what it mentions. The level
ladder is validated at startup through engine.NewLevelTable - an empty or
non-monotonic ladder is a fatal configuration error, never tolerated per
call.
*/
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cresa/recognition-engine/engine"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Rules  RulesConfig  `yaml:"rules"`
	Levels []LevelEntry `yaml:"levels"`
	Badges []BadgeEntry `yaml:"badges"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type RulesConfig struct {
	PointsPerRecognition int `yaml:"points_per_recognition"`
	BadgeThreshold       int `yaml:"badge_threshold"`
}

type LevelEntry struct {
	Level          int    `yaml:"level"`
	Name           string `yaml:"name"`
	RequiredPoints int    `yaml:"required_points"`
}

type BadgeEntry struct {
	Name        string `yaml:"name"`
	Principle   string `yaml:"principle"`
	Description string `yaml:"description"`
}

// Default returns the production configuration.
func Default() Config {
	cfg := Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Rules: RulesConfig{
			PointsPerRecognition: 100,
			BadgeThreshold:       3,
		},
	}
	for _, l := range engine.DefaultLevels() {
		cfg.Levels = append(cfg.Levels, LevelEntry{Level: l.Level, Name: l.Name, RequiredPoints: l.RequiredPoints})
	}
	for _, b := range engine.DefaultBadges() {
		cfg.Badges = append(cfg.Badges, BadgeEntry{Name: b.Name, Principle: b.Principle, Description: b.Description})
	}
	return cfg
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	// Decode into a bare struct first so a file that defines its own
	// ladder or badge catalog replaces the default instead of appending.
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if file.Server.Port != 0 {
		cfg.Server.Port = file.Server.Port
	}
	if len(file.Server.AllowedOrigins) > 0 {
		cfg.Server.AllowedOrigins = file.Server.AllowedOrigins
	}
	if file.Log.Level != "" {
		cfg.Log.Level = file.Log.Level
	}
	if file.Log.Path != "" {
		cfg.Log.Path = file.Log.Path
	}
	if file.Log.MaxSizeMB != 0 {
		cfg.Log.MaxSizeMB = file.Log.MaxSizeMB
	}
	if file.Log.MaxBackups != 0 {
		cfg.Log.MaxBackups = file.Log.MaxBackups
	}
	if file.Log.MaxAgeDays != 0 {
		cfg.Log.MaxAgeDays = file.Log.MaxAgeDays
	}
	if file.Log.Compress {
		cfg.Log.Compress = true
	}
	if file.Rules.PointsPerRecognition != 0 {
		cfg.Rules.PointsPerRecognition = file.Rules.PointsPerRecognition
	}
	if file.Rules.BadgeThreshold != 0 {
		cfg.Rules.BadgeThreshold = file.Rules.BadgeThreshold
	}
	if len(file.Levels) > 0 {
		cfg.Levels = file.Levels
	}
	if len(file.Badges) > 0 {
		cfg.Badges = file.Badges
	}
	return cfg, nil
}

// LevelTable validates the configured ladder. Fails fast on an empty or
// non-monotonic ladder.
func (c Config) LevelTable() (*engine.LevelTable, error) {
	entries := make([]engine.LevelEntry, 0, len(c.Levels))
	for _, l := range c.Levels {
		entries = append(entries, engine.LevelEntry{Level: l.Level, Name: l.Name, RequiredPoints: l.RequiredPoints})
	}
	return engine.NewLevelTable(entries)
}

// EngineRules maps the config to engine rules.
func (c Config) EngineRules() engine.Rules {
	return engine.Rules{
		PointsPerRecognition: c.Rules.PointsPerRecognition,
		BadgeThreshold:       c.Rules.BadgeThreshold,
	}
}

// BadgeDefinitions maps the config to the engine badge catalog.
func (c Config) BadgeDefinitions() []engine.BadgeDefinition {
	out := make([]engine.BadgeDefinition, 0, len(c.Badges))
	for _, b := range c.Badges {
		out = append(out, engine.BadgeDefinition{Name: b.Name, Principle: b.Principle, Description: b.Description})
	}
	return out
}
