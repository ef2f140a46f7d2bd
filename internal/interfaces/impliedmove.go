package interfaces

import (
	"context"
	"time"

	"earnings-move/internal/research/impliedmove"
)

// ImpliedMoveCalculator defines the interface for the straddle-implied move calculation
type ImpliedMoveCalculator interface {
	// Calculate never fails; "no result" is reported through Result.Reason
	Calculate(ctx context.Context, symbol string, reportDate time.Time) impliedmove.Result
}
