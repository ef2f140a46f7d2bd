package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"earnings-move/internal/logger"
	"earnings-move/internal/trace"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Sync()
	defer trace.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return 1
	}

	pruneNameCache(ctx, cfg)

	runner, err := initializeRunner(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize data sources", err)
		return 1
	}

	op := logger.StartOperation(ctx, "earnings.run", "data_source", cfg.DataSource)
	r, err := runner.Run(op.GetContext())
	if err != nil {
		op.EndWithError(err)
		recordRun(ctx, cfg, nil, err)
		return 1
	}

	if err := saveReport(op.GetContext(), cfg, r); err != nil {
		op.EndWithError(err)
		recordRun(ctx, cfg, r, err)
		return 1
	}
	op.End("events", len(r.Data))
	recordRun(ctx, cfg, r, nil)

	logger.Info(ctx, fmt.Sprintf("Saved %d earnings events", len(r.Data)), "path", cfg.Output.JSONPath)
	return 0
}
