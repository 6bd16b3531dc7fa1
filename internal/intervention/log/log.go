// Package log provides JSON-lines structured logging for dopamenu.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/runger/dopamenu/internal/intervention/model"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelInfo,
		Debug:  false,
	}
}

// New creates a new JSON-lines structured logger. Lines look like:
//
//	{"ts":"2026-03-14T10:30:00Z","level":"DEBUG","msg":"decision generated","decision_id":"...","primary":"breathe"}
//
// Log levels:
//   - debug: per-decision pipeline details (enabled via DOPAMENU_DEBUG=1)
//   - info: catalog loads, recorded outcomes
//   - warn: gate blocks, unreadable config
//   - error: storage failures
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(output, opts))
}

// NewFromEnv creates a logger configured from environment variables.
// DOPAMENU_DEBUG=1 enables debug logging.
func NewFromEnv() *slog.Logger {
	cfg := DefaultConfig()
	if os.Getenv("DOPAMENU_DEBUG") == "1" {
		cfg.Debug = true
	}
	return New(cfg)
}

// ParseLevel converts a config level name to a slog level.
// The empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// OpenFile opens path for appending log lines, creating parent directories.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Or returns logger, or slog.Default() when logger is nil.
func Or(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogDecision logs a generated decision at debug level.
func LogDecision(logger *slog.Logger, d model.Decision, s model.Situation) {
	alts := make([]string, 0, len(d.Alternatives))
	for _, a := range d.Alternatives {
		alts = append(alts, a.ID)
	}
	logger.Debug("decision generated",
		"decision_id", d.ID,
		"situation_id", s.ID,
		"situation_type", s.Type,
		"budget", d.Budget.Level,
		"primary", d.Primary.ID,
		"alternatives", alts,
		"fallback", d.Fallback,
	)
}

// LogFilter logs the size of a filter pass at debug level.
func LogFilter(logger *slog.Logger, situationID string, kept, rejected, skipped int) {
	logger.Debug("candidates filtered",
		"situation_id", situationID,
		"kept", kept,
		"rejected", rejected,
		"constraints_not_evaluated", skipped,
	)
}

// LogGateBlocked logs an intervention suppressed by the gate.
func LogGateBlocked(logger *slog.Logger, situationID string, kinds []string) {
	logger.Warn("intervention blocked",
		"situation_id", situationID,
		"blocks", kinds,
	)
}

// LogOutcome logs a recorded outcome.
func LogOutcome(logger *slog.Logger, o model.Outcome) {
	logger.Info("outcome recorded",
		"decision_id", o.InterventionID,
		"action", o.Action,
		"candidate_id", o.CandidateID,
	)
}

// LogCatalogLoaded logs where the active catalog came from.
func LogCatalogLoaded(logger *slog.Logger, source string, activities int) {
	logger.Info("catalog loaded", "source", source, "activities", activities)
}

// LogSQLiteError logs SQLite errors.
func LogSQLiteError(logger *slog.Logger, operation string, err error) {
	logger.Error("sqlite error", "operation", operation, "error", err)
}
