package interfaces

import (
	"context"
	"time"

	"earnings-move/internal/types"
)

// EarningsCalendar defines the interface for the upcoming-earnings provider
type EarningsCalendar interface {
	// Upcoming returns confirmed (BMO/AMC) earnings events between from and to, inclusive,
	// in provider order. Events with any other time-of-day slot are dropped.
	Upcoming(ctx context.Context, from, to time.Time) ([]types.EarningsEvent, error)
}
