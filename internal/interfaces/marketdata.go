package interfaces

import (
	"context"

	"earnings-move/internal/research/impliedmove"
)

// MarketData defines the interface for quotes, option chains and company names
type MarketData interface {
	impliedmove.MarketData

	// CompanyName resolves a display name for the symbol
	CompanyName(ctx context.Context, symbol string) (string, error)
}
