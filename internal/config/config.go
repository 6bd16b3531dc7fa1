package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runger/dopamenu/internal/intervention/model"
)

// Config represents the dopamenu configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Gate    GateConfig    `yaml:"gate"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
	Profile ProfileConfig `yaml:"profile"`
}

// EngineConfig holds ranking and decision settings.
type EngineConfig struct {
	WeightModality  float64 `yaml:"weight_modality"`  // Similarity to the scrolling modality
	WeightIdentity  float64 `yaml:"weight_identity"`  // Match with identity anchors
	WeightEffort    float64 `yaml:"weight_effort"`    // Preference for low effort
	VarietyMax      float64 `yaml:"variety_max"`      // Upper bound of the random bonus
	MaxAlternatives int     `yaml:"max_alternatives"` // Runners-up per decision
	CatalogPath     string  `yaml:"catalog_path"`     // YAML catalog (empty = built-in)
}

// GateConfig holds the pre-intervention checks.
type GateConfig struct {
	CooldownMinutes   int     `yaml:"cooldown_minutes"`    // Minimum gap between interventions
	MinConfidence     float64 `yaml:"min_confidence"`      // Situations below this are ignored
	RespectQuietHours bool    `yaml:"respect_quiet_hours"` // Suppress during profile quiet hours
}

// HistoryConfig holds decision store settings.
type HistoryConfig struct {
	DBPath       string `yaml:"db_path"`       // SQLite path (empty = default)
	MaxDecisions int    `yaml:"max_decisions"` // Decisions retained
	MaxOutcomes  int    `yaml:"max_outcomes"`  // Outcomes retained
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (empty = default, "-" = stderr)
}

// ProfileConfig describes the local user.
type ProfileConfig struct {
	Anchors    []string `yaml:"anchors"`     // Identity anchor labels, highest priority first
	QuietHours []string `yaml:"quiet_hours"` // "HH:MM-HH:MM" ranges
	Timezone   string   `yaml:"timezone"`    // IANA zone for quiet hours (empty = local)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			WeightModality:  0.40,
			WeightIdentity:  0.30,
			WeightEffort:    0.15,
			VarietyMax:      0.15,
			MaxAlternatives: 3,
			CatalogPath:     "", // built-in catalog
		},
		Gate: GateConfig{
			CooldownMinutes:   15,
			MinConfidence:     0.5,
			RespectQuietHours: true,
		},
		History: HistoryConfig{
			DBPath:       "", // Use default from paths
			MaxDecisions: 100,
			MaxOutcomes:  50,
		},
		Log: LogConfig{
			Level: "info",
			File:  "",
		},
		Profile: ProfileConfig{
			Anchors:    []string{},
			QuietHours: []string{"22:00-07:00"},
		},
	}
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFromFile(DefaultPaths().ConfigFile())
}

// LoadFromFile loads configuration from a specific file.
// A missing file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveToFile(DefaultPaths().ConfigFile())
}

// SaveToFile saves the configuration to a specific file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by key (e.g., "gate.cooldown_minutes").
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "engine":
		return c.getEngineField(field)
	case "gate":
		return c.getGateField(field)
	case "history":
		return c.getHistoryField(field)
	case "log":
		return c.getLogField(field)
	case "profile":
		return c.getProfileField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by key.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "engine":
		return c.setEngineField(field, value)
	case "gate":
		return c.setGateField(field, value)
	case "history":
		return c.setHistoryField(field, value)
	case "log":
		return c.setLogField(field, value)
	case "profile":
		return c.setProfileField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseUnitFloat(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", field, err)
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, fmt.Errorf("invalid %s: must be between 0 and 1", field)
	}
	return v, nil
}

func parseNonNegativeInt(field, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", field, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s: must be non-negative", field)
	}
	return v, nil
}

func (c *Config) getEngineField(field string) (string, error) {
	switch field {
	case "weight_modality":
		return formatFloat(c.Engine.WeightModality), nil
	case "weight_identity":
		return formatFloat(c.Engine.WeightIdentity), nil
	case "weight_effort":
		return formatFloat(c.Engine.WeightEffort), nil
	case "variety_max":
		return formatFloat(c.Engine.VarietyMax), nil
	case "max_alternatives":
		return strconv.Itoa(c.Engine.MaxAlternatives), nil
	case "catalog_path":
		return c.Engine.CatalogPath, nil
	default:
		return "", fmt.Errorf("unknown field: engine.%s", field)
	}
}

func (c *Config) setEngineField(field, value string) error {
	switch field {
	case "weight_modality", "weight_identity", "weight_effort", "variety_max":
		v, err := parseUnitFloat(field, value)
		if err != nil {
			return err
		}
		switch field {
		case "weight_modality":
			c.Engine.WeightModality = v
		case "weight_identity":
			c.Engine.WeightIdentity = v
		case "weight_effort":
			c.Engine.WeightEffort = v
		default:
			c.Engine.VarietyMax = v
		}
	case "max_alternatives":
		v, err := parseNonNegativeInt(field, value)
		if err != nil {
			return err
		}
		if v > MaxAlternativesLimit {
			return fmt.Errorf("invalid max_alternatives: must be at most %d", MaxAlternativesLimit)
		}
		c.Engine.MaxAlternatives = v
	case "catalog_path":
		c.Engine.CatalogPath = value
	default:
		return fmt.Errorf("unknown field: engine.%s", field)
	}
	return nil
}

func (c *Config) getGateField(field string) (string, error) {
	switch field {
	case "cooldown_minutes":
		return strconv.Itoa(c.Gate.CooldownMinutes), nil
	case "min_confidence":
		return formatFloat(c.Gate.MinConfidence), nil
	case "respect_quiet_hours":
		return strconv.FormatBool(c.Gate.RespectQuietHours), nil
	default:
		return "", fmt.Errorf("unknown field: gate.%s", field)
	}
}

func (c *Config) setGateField(field, value string) error {
	switch field {
	case "cooldown_minutes":
		v, err := parseNonNegativeInt(field, value)
		if err != nil {
			return err
		}
		c.Gate.CooldownMinutes = v
	case "min_confidence":
		v, err := parseUnitFloat(field, value)
		if err != nil {
			return err
		}
		c.Gate.MinConfidence = v
	case "respect_quiet_hours":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for respect_quiet_hours: %w", err)
		}
		c.Gate.RespectQuietHours = v
	default:
		return fmt.Errorf("unknown field: gate.%s", field)
	}
	return nil
}

func (c *Config) getHistoryField(field string) (string, error) {
	switch field {
	case "db_path":
		return c.History.DBPath, nil
	case "max_decisions":
		return strconv.Itoa(c.History.MaxDecisions), nil
	case "max_outcomes":
		return strconv.Itoa(c.History.MaxOutcomes), nil
	default:
		return "", fmt.Errorf("unknown field: history.%s", field)
	}
}

func (c *Config) setHistoryField(field, value string) error {
	switch field {
	case "db_path":
		c.History.DBPath = value
	case "max_decisions", "max_outcomes":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", field, err)
		}
		if v < 1 {
			return fmt.Errorf("invalid %s: must be at least 1", field)
		}
		if field == "max_decisions" {
			c.History.MaxDecisions = v
		} else {
			c.History.MaxOutcomes = v
		}
	default:
		return fmt.Errorf("unknown field: history.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

func (c *Config) getProfileField(field string) (string, error) {
	switch field {
	case "anchors":
		return strings.Join(c.Profile.Anchors, ","), nil
	case "quiet_hours":
		return strings.Join(c.Profile.QuietHours, ","), nil
	case "timezone":
		return c.Profile.Timezone, nil
	default:
		return "", fmt.Errorf("unknown field: profile.%s", field)
	}
}

func (c *Config) setProfileField(field, value string) error {
	switch field {
	case "anchors":
		c.Profile.Anchors = splitList(value)
	case "quiet_hours":
		ranges := splitList(value)
		for _, r := range ranges {
			if _, err := ParseTimeRange(r); err != nil {
				return err
			}
		}
		c.Profile.QuietHours = ranges
	case "timezone":
		c.Profile.Timezone = value
	default:
		return fmt.Errorf("unknown field: profile.%s", field)
	}
	return nil
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(value string) []string {
	out := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// MaxAlternativesLimit caps engine.max_alternatives.
const MaxAlternativesLimit = model.MaxAlternatives

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"engine.weight_modality", c.Engine.WeightModality},
		{"engine.weight_identity", c.Engine.WeightIdentity},
		{"engine.weight_effort", c.Engine.WeightEffort},
		{"engine.variety_max", c.Engine.VarietyMax},
	}
	for _, w := range weights {
		if math.IsNaN(w.value) || w.value < 0 || w.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1 (got: %v)", w.name, w.value)
		}
	}

	if c.Engine.WeightModality+c.Engine.WeightIdentity+c.Engine.WeightEffort == 0 {
		return errors.New("engine weights must not all be zero")
	}

	if c.Engine.MaxAlternatives < 0 || c.Engine.MaxAlternatives > MaxAlternativesLimit {
		return fmt.Errorf("engine.max_alternatives must be between 0 and %d", MaxAlternativesLimit)
	}

	if c.Gate.CooldownMinutes < 0 {
		return errors.New("gate.cooldown_minutes must be >= 0")
	}

	if math.IsNaN(c.Gate.MinConfidence) || c.Gate.MinConfidence < 0 || c.Gate.MinConfidence > 1 {
		return fmt.Errorf("gate.min_confidence must be between 0 and 1 (got: %v)", c.Gate.MinConfidence)
	}

	if c.History.MaxDecisions < 1 {
		return errors.New("history.max_decisions must be >= 1")
	}

	if c.History.MaxOutcomes < 1 {
		return errors.New("history.max_outcomes must be >= 1")
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	for _, r := range c.Profile.QuietHours {
		if _, err := ParseTimeRange(r); err != nil {
			return fmt.Errorf("profile.quiet_hours: %w", err)
		}
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DOPAMENU_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("DOPAMENU_DB_PATH"); v != "" {
		c.History.DBPath = v
	}
	if v := os.Getenv("DOPAMENU_CATALOG"); v != "" {
		c.Engine.CatalogPath = v
	}
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"engine.weight_modality",
		"engine.weight_identity",
		"engine.weight_effort",
		"engine.variety_max",
		"engine.max_alternatives",
		"engine.catalog_path",
		"gate.cooldown_minutes",
		"gate.min_confidence",
		"gate.respect_quiet_hours",
		"history.db_path",
		"history.max_decisions",
		"history.max_outcomes",
		"log.level",
		"log.file",
		"profile.anchors",
		"profile.quiet_hours",
		"profile.timezone",
	}
}

// ParseTimeRange parses "HH:MM-HH:MM".
func ParseTimeRange(s string) (model.TimeRange, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return model.TimeRange{}, fmt.Errorf("invalid time range %q: want HH:MM-HH:MM", s)
	}
	r := model.TimeRange{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
	if !isClock(r.Start) || !isClock(r.End) {
		return model.TimeRange{}, fmt.Errorf("invalid time range %q: want HH:MM-HH:MM", s)
	}
	return r, nil
}

func isClock(s string) bool {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(mm) != 2 {
		return false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return false
	}
	m, err := strconv.Atoi(mm)
	return err == nil && m >= 0 && m <= 59
}

// User builds the engine's user profile from the profile section.
// Malformed quiet-hour ranges are skipped.
func (c *Config) User() model.User {
	prefs := model.DefaultPreferences()
	prefs.QuietHours = make([]model.TimeRange, 0, len(c.Profile.QuietHours))
	for _, s := range c.Profile.QuietHours {
		if r, err := ParseTimeRange(s); err == nil {
			prefs.QuietHours = append(prefs.QuietHours, r)
		}
	}

	return model.User{
		ID:                  "local",
		Timezone:            c.Profile.Timezone,
		IdentityAnchors:     model.AnchorsFromLabels(c.Profile.Anchors...),
		Preferences:         prefs,
		OnboardingCompleted: len(c.Profile.Anchors) > 0,
	}
}
