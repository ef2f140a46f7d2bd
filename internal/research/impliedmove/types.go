package impliedmove

import (
	"context"
	"time"

	"earnings-move/internal/types"
)

// MarketData is what the calculator needs from a market data provider.
type MarketData interface {
	// Quote returns the current quote for a symbol.
	Quote(ctx context.Context, symbol string) (*types.Quote, error)

	// Expirations returns the listed option expiration dates, ascending.
	Expirations(ctx context.Context, symbol string) ([]time.Time, error)

	// OptionChain returns calls and puts for one expiration.
	OptionChain(ctx context.Context, symbol string, expiration time.Time) (*types.OptionChain, error)
}

// Reason says why a calculation did or did not produce a move.
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonInvalidInput  Reason = "invalid_input"
	ReasonNoPrice       Reason = "no_price"
	ReasonNoExpiration  Reason = "no_expiration"
	ReasonNoCallInBand  Reason = "no_call_in_band"
	ReasonNoPutInBand   Reason = "no_put_in_band"
	ReasonProviderError Reason = "provider_error"
)

// Result is the outcome of one calculation. Move is set only when Reason is ReasonOK.
// Err carries the provider error for ReasonProviderError.
type Result struct {
	Symbol string
	Reason Reason
	Move   *types.ImpliedMove
	Err    error
}

// OK reports whether the calculation produced a move.
func (r Result) OK() bool {
	return r.Reason == ReasonOK && r.Move != nil
}

// Config holds the strike grid used to locate the at-the-money straddle.
type Config struct {
	// StrikeStep is the grid the current price is rounded to (default 5).
	StrikeStep float64 `yaml:"strike_step"`

	// StrikeBand is the half-width of the accepted strike window around the ATM strike (default 2.5).
	StrikeBand float64 `yaml:"strike_band"`
}

// DefaultConfig returns the standard $5 grid with a ±2.5 band.
func DefaultConfig() Config {
	return Config{StrikeStep: 5, StrikeBand: 2.5}
}
