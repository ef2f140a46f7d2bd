package earnings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"earnings-move/internal/interfaces"
	"earnings-move/internal/logger"
	"earnings-move/internal/types"
)

// DefaultLookaheadDays is the calendar window when none is configured
const DefaultLookaheadDays = 14

// DefaultPause is the delay inserted after each event
const DefaultPause = 300 * time.Millisecond

// Sleeper inserts the inter-event pause
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// FixedPause blocks for d or until ctx is done
type FixedPause struct{}

func (FixedPause) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Config controls the run window and pacing
type Config struct {
	LookaheadDays int
	Pause         time.Duration
}

// Runner fetches the earnings calendar and builds one output record per event
type Runner struct {
	calendar interfaces.EarningsCalendar
	market   interfaces.MarketData
	calc     interfaces.ImpliedMoveCalculator
	config   Config
	sleeper  Sleeper
	now      func() time.Time
}

// Option customizes a Runner
type Option func(*Runner)

// WithSleeper replaces the pause implementation
func WithSleeper(s Sleeper) Option {
	return func(r *Runner) { r.sleeper = s }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(calendar interfaces.EarningsCalendar, market interfaces.MarketData, calc interfaces.ImpliedMoveCalculator, config Config, opts ...Option) *Runner {
	if config.LookaheadDays <= 0 {
		config.LookaheadDays = DefaultLookaheadDays
	}
	if config.Pause < 0 {
		config.Pause = DefaultPause
	}
	r := &Runner{
		calendar: calendar,
		market:   market,
		calc:     calc,
		config:   config,
		sleeper:  FixedPause{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run produces the report for every confirmed event in [today, today+lookahead].
// Only a calendar failure (or cancellation) returns an error; per-event
// failures surface as records without a move.
func (r *Runner) Run(ctx context.Context) (*types.Report, error) {
	runID := uuid.NewString()
	started := r.now()
	from := started
	to := started.AddDate(0, 0, r.config.LookaheadDays)

	logger.Info(ctx, "Fetching earnings...",
		"run_id", runID,
		"from", from.Format(types.DateLayout),
		"to", to.Format(types.DateLayout),
	)

	events, err := r.calendar.Upcoming(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch earnings calendar: %w", err)
	}

	records := make([]types.OutputRecord, 0, len(events))
	withMove := 0
	for i, ev := range events {
		logger.Info(ctx, "Processing "+ev.Symbol+"...",
			"run_id", runID,
			"index", i+1,
			"total", len(events),
		)

		res := r.calc.Calculate(ctx, ev.Symbol, ev.Date)
		company := r.companyName(ctx, ev.Symbol)

		rec := types.NewOutputRecord(ev, company, res.Move)
		if rec.HasMove() {
			withMove++
		}
		records = append(records, rec)

		if err := r.sleeper.Sleep(ctx, r.config.Pause); err != nil {
			return nil, fmt.Errorf("run interrupted after %d of %d events: %w", i+1, len(events), err)
		}
	}

	finished := r.now()
	logger.Info(ctx, "Earnings run complete",
		"run_id", runID,
		"events", len(records),
		"with_move", withMove,
		"duration_ms", finished.Sub(started).Milliseconds(),
	)

	return &types.Report{LastUpdated: finished, Data: records}, nil
}

// companyName falls back to the symbol when the provider fails or returns nothing.
func (r *Runner) companyName(ctx context.Context, symbol string) string {
	name, err := r.market.CompanyName(ctx, symbol)
	if err != nil {
		logger.Debug(ctx, "Using symbol as company name", "symbol", symbol, "error", err)
		return symbol
	}
	if name = strings.TrimSpace(name); name == "" {
		return symbol
	}
	return name
}
