package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/dopamenu/internal/config"
	"github.com/runger/dopamenu/internal/intervention/catalog"
	"github.com/runger/dopamenu/internal/intervention/engine"
	"github.com/runger/dopamenu/internal/intervention/gate"
	"github.com/runger/dopamenu/internal/intervention/history"
	dlog "github.com/runger/dopamenu/internal/intervention/log"
	"github.com/runger/dopamenu/internal/intervention/rank"
)

// nowFunc is the clock used by every command.
var nowFunc = time.Now

// app bundles what a command needs: configuration, a logger and, once
// opened, the history database.
type app struct {
	cfg     *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	now     func() time.Time
	closers []func() error
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if debugFlag {
		cfg.Log.Level = "debug"
	}

	a := &app{cfg: cfg, paths: config.DefaultPaths(), now: nowFunc}
	if err := a.initLogger(); err != nil {
		return nil, err
	}
	return a, nil
}

// initLogger sends JSON lines to log.file, to stderr when it is "-", or to
// the default log file when it is empty.
func (a *app) initLogger() error {
	level, err := dlog.ParseLevel(a.cfg.Log.Level)
	if err != nil {
		return err
	}

	lc := &dlog.Config{Output: os.Stderr, Level: level}
	if a.cfg.Log.File != "-" {
		path := a.cfg.Log.File
		if path == "" {
			path = a.paths.LogFile()
		}
		f, err := dlog.OpenFile(path)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, f.Close)
		lc.Output = f
	}

	a.logger = dlog.New(lc)
	return nil
}

// Close releases everything the app opened, newest first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// catalogSource resolves the catalog path: the configured one, else the
// conventional user catalog if present, else the built-in catalog ("").
func (a *app) catalogSource() string {
	if a.cfg.Engine.CatalogPath != "" {
		return a.cfg.Engine.CatalogPath
	}
	if _, err := os.Stat(a.paths.CatalogFile()); err == nil {
		return a.paths.CatalogFile()
	}
	return ""
}

func (a *app) catalog() (*catalog.Catalog, error) {
	src := a.catalogSource()
	cat, err := catalog.Load(src)
	if err != nil {
		return nil, err
	}
	if src == "" {
		src = "builtin"
	}
	dlog.LogCatalogLoaded(a.logger, src, cat.Len())
	return cat, nil
}

func (a *app) engine() (*engine.Engine, error) {
	cat, err := a.catalog()
	if err != nil {
		return nil, err
	}
	return engine.New(
		engine.WithCatalog(cat),
		engine.WithRanker(rank.NewRanker(rank.WithWeights(rankWeights(a.cfg)))),
		engine.WithMaxAlternatives(a.cfg.Engine.MaxAlternatives),
		engine.WithClock(a.now),
		engine.WithLogger(a.logger),
	), nil
}

// today is now in profile.timezone. An unknown zone falls back to local
// time, as the gate does.
func (a *app) today() time.Time {
	now := a.now()
	tz := a.cfg.Profile.Timezone
	if tz == "" {
		return now.Local()
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		a.logger.Warn("unknown timezone, using local time", "timezone", tz, "error", err)
		return now.Local()
	}
	return now.In(loc)
}

func (a *app) gate() *gate.Gate {
	return gate.New(gateConfig(a.cfg))
}

func (a *app) openStore() (*history.Store, error) {
	path := a.cfg.History.DBPath
	if path == "" {
		path = a.paths.DatabaseFile()
	}

	db, err := history.Open(path)
	if err != nil {
		dlog.LogSQLiteError(a.logger, "open", err)
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	return history.NewStore(db, historyConfig(a.cfg), a.logger), nil
}

func rankWeights(cfg *config.Config) rank.Weights {
	return rank.Weights{
		Modality: cfg.Engine.WeightModality,
		Identity: cfg.Engine.WeightIdentity,
		Effort:   cfg.Engine.WeightEffort,
		Variety:  cfg.Engine.VarietyMax,
	}
}

func gateConfig(cfg *config.Config) gate.Config {
	return gate.Config{
		Cooldown:          time.Duration(cfg.Gate.CooldownMinutes) * time.Minute,
		MinConfidence:     cfg.Gate.MinConfidence,
		RespectQuietHours: cfg.Gate.RespectQuietHours,
	}
}

func historyConfig(cfg *config.Config) history.Config {
	return history.Config{
		MaxDecisions: cfg.History.MaxDecisions,
		MaxOutcomes:  cfg.History.MaxOutcomes,
	}
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
