package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"earnings-move/internal/datasource"
	"earnings-move/internal/datasource/datasourceobs"
	"earnings-move/internal/logger"
	"earnings-move/internal/report"
	"earnings-move/internal/research/earnings"
	"earnings-move/internal/research/impliedmove"
	"earnings-move/internal/research/impliedmove/impliedmoveobs"
	"earnings-move/internal/runlog"
	"earnings-move/internal/store"
	"earnings-move/internal/trace"
	"earnings-move/internal/types"
)

const defaultConfigPath = "config.yaml"

// initializeSystem loads .env and sets up logging and tracing
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig reads $EARNINGS_CONFIG, or config.yaml when unset
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("EARNINGS_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	logger.Debug(ctx, "Config loaded",
		"path", path,
		"data_source", cfg.DataSource,
		"lookahead_days", cfg.LookaheadDays,
		"pause_ms", cfg.PauseMillis,
	)
	return cfg, nil
}

// pruneNameCache drops expired company names before a LIVE run
func pruneNameCache(ctx context.Context, cfg *store.Config) {
	if cfg.DataSource != "LIVE" || !cfg.NameCacheEnabled() {
		return
	}
	removed, err := datasource.NewNameCache(cfg.NameCache.Dir, cfg.NameCacheTTL()).CleanupExpired()
	if err != nil {
		logger.Warn(ctx, "Failed to prune name cache", "dir", cfg.NameCache.Dir, "error", err)
		return
	}
	if removed > 0 {
		logger.Debug(ctx, "Pruned name cache", "dir", cfg.NameCache.Dir, "removed", removed)
	}
}

// initializeRunner wires the providers, calculator and orchestrator with observability
func initializeRunner(ctx context.Context, cfg *store.Config) (*earnings.Runner, error) {
	token := os.Getenv(cfg.Finnhub.TokenEnv)
	if token == "" && cfg.DataSource == "LIVE" {
		logger.Warn(ctx, "Calendar token is empty; the provider will reject the request", "env", cfg.Finnhub.TokenEnv)
	}

	calendar, market, err := datasource.CreateDataSources(cfg, token, time.Now())
	if err != nil {
		return nil, err
	}
	calendar = datasourceobs.WrapCalendar(calendar)
	market = datasourceobs.WrapMarketData(market)

	calc := impliedmoveobs.Wrap(impliedmove.NewCalculator(cfg.ImpliedMove, market))

	return earnings.NewRunner(calendar, market, calc, earnings.Config{
		LookaheadDays: cfg.LookaheadDays,
		Pause:         cfg.Pause(),
	}), nil
}

// saveReport writes the JSON artifact and, when configured, the CSV export and console summary
func saveReport(ctx context.Context, cfg *store.Config, r *types.Report) error {
	if err := report.WriteJSON(cfg.Output.JSONPath, r); err != nil {
		logger.ErrorWithErr(ctx, "Failed to write report", err, "path", cfg.Output.JSONPath)
		return err
	}

	if cfg.Output.CSVPath != "" {
		if err := report.WriteCSV(cfg.Output.CSVPath, r); err != nil {
			logger.Warn(ctx, "Failed to write CSV export", "path", cfg.Output.CSVPath, "error", err)
		}
	}

	if cfg.SummaryEnabled() {
		report.PrintSummary(os.Stdout, r)
	}
	return nil
}

// recordRun appends the outcome to the run history and compresses old day files
func recordRun(ctx context.Context, cfg *store.Config, r *types.Report, runErr error) {
	history := runlog.New(cfg.History.Dir)

	entry := runlog.Entry{DataSource: cfg.DataSource}
	if runErr != nil {
		entry.Error = runErr.Error()
	}
	if r != nil {
		s := report.Summarize(r)
		entry.Events = s.Events
		entry.WithMove = s.WithMove
		entry.MeanPct = s.MeanPct
		entry.MedianPct = s.MedianPct
		entry.Output = cfg.Output.JSONPath
	}
	if err := history.Append(entry); err != nil {
		logger.Warn(ctx, "Failed to append run history", "dir", cfg.History.Dir, "error", err)
	}

	if n, err := history.CompressOlder(cfg.History.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old run history", "error", err)
	} else if n > 0 {
		logger.Debug(ctx, "Compressed old run history", "files", n)
	}
}
