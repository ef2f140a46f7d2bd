package datasourceobs

import (
	"context"
	"time"

	"earnings-move/internal/interfaces"
	"earnings-move/internal/logger"
	"earnings-move/internal/trace"
	"earnings-move/internal/types"
)

type observableCalendar struct {
	inner interfaces.EarningsCalendar
}

var _ interfaces.EarningsCalendar = (*observableCalendar)(nil)

// WrapCalendar wraps an EarningsCalendar with logging and tracing
func WrapCalendar(c interfaces.EarningsCalendar) interfaces.EarningsCalendar {
	return &observableCalendar{inner: c}
}

func (o *observableCalendar) Upcoming(ctx context.Context, from, to time.Time) ([]types.EarningsEvent, error) {
	ctx, span := trace.StartSpan(ctx, "calendar.Upcoming")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Fetching earnings calendar",
		"from", from.Format(types.DateLayout),
		"to", to.Format(types.DateLayout),
	)

	start := time.Now()
	events, err := o.inner.Upcoming(ctx, from, to)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Earnings calendar fetch failed", err,
			"from", from.Format(types.DateLayout),
			"to", to.Format(types.DateLayout),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Earnings calendar fetched",
		"events", len(events),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return events, nil
}

type observableMarketData struct {
	inner interfaces.MarketData
}

var _ interfaces.MarketData = (*observableMarketData)(nil)

// WrapMarketData wraps a MarketData provider with logging and tracing
func WrapMarketData(m interfaces.MarketData) interfaces.MarketData {
	return &observableMarketData{inner: m}
}

func (o *observableMarketData) Quote(ctx context.Context, symbol string) (*types.Quote, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.Quote")
	defer span.End()

	q, err := o.inner.Quote(ctx, symbol)
	if err != nil {
		logger.DebugSkip(ctx, 1, "Quote lookup failed", "symbol", symbol, "error", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Quote fetched", "symbol", symbol, "price", q.Price)
	return q, nil
}

func (o *observableMarketData) Expirations(ctx context.Context, symbol string) ([]time.Time, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.Expirations")
	defer span.End()

	exps, err := o.inner.Expirations(ctx, symbol)
	if err != nil {
		logger.DebugSkip(ctx, 1, "Expirations lookup failed", "symbol", symbol, "error", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Expirations fetched", "symbol", symbol, "count", len(exps))
	return exps, nil
}

func (o *observableMarketData) OptionChain(ctx context.Context, symbol string, expiration time.Time) (*types.OptionChain, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.OptionChain")
	defer span.End()

	chain, err := o.inner.OptionChain(ctx, symbol, expiration)
	if err != nil {
		logger.DebugSkip(ctx, 1, "Option chain lookup failed",
			"symbol", symbol,
			"expiration", expiration.Format(types.DateLayout),
			"error", err,
		)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Option chain fetched",
		"symbol", symbol,
		"expiration", expiration.Format(types.DateLayout),
		"calls", len(chain.Calls),
		"puts", len(chain.Puts),
	)
	return chain, nil
}

func (o *observableMarketData) CompanyName(ctx context.Context, symbol string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.CompanyName")
	defer span.End()

	name, err := o.inner.CompanyName(ctx, symbol)
	if err != nil {
		logger.WarnSkip(ctx, 1, "Company name unavailable", "symbol", symbol, "error", err)
		return "", err
	}
	return name, nil
}
