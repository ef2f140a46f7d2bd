package impliedmoveobs

import (
	"context"
	"time"

	"earnings-move/internal/interfaces"
	"earnings-move/internal/logger"
	"earnings-move/internal/research/impliedmove"
	"earnings-move/internal/trace"
)

// observableCalculator wraps ImpliedMoveCalculator with logging and tracing
type observableCalculator struct {
	inner interfaces.ImpliedMoveCalculator
}

var _ interfaces.ImpliedMoveCalculator = (*observableCalculator)(nil)

// Wrap wraps an ImpliedMoveCalculator with observability middleware
func Wrap(calc interfaces.ImpliedMoveCalculator) interfaces.ImpliedMoveCalculator {
	return &observableCalculator{inner: calc}
}

func (o *observableCalculator) Calculate(ctx context.Context, symbol string, reportDate time.Time) impliedmove.Result {
	ctx, span := trace.StartSpan(ctx, "impliedmove.Calculate")
	defer span.End()

	start := time.Now()
	res := o.inner.Calculate(ctx, symbol, reportDate)
	duration := time.Since(start)

	fields := []any{
		"symbol", symbol,
		"report_date", reportDate.Format("2006-01-02"),
		"reason", string(res.Reason),
		"duration_ms", duration.Milliseconds(),
	}

	switch {
	case res.OK():
		if !logger.IsDebugEnabled() {
			break
		}
		logger.DebugSkip(ctx, 1, "Implied move calculated", append(fields,
			"implied_pct", res.Move.ImpliedPercent,
			"price", res.Move.Price,
			"expiration", res.Move.Expiration.Format("2006-01-02"),
			"atm_strike", res.Move.ATMStrike,
			"straddle", res.Move.Straddle,
		)...)
	case res.Err != nil:
		span.RecordError(res.Err)
		logger.WarnSkip(ctx, 1, "Implied move unavailable", append(fields, "error", res.Err)...)
	default:
		logger.InfoSkip(ctx, 1, "Implied move unavailable", fields...)
	}

	return res
}
