package impliedmove

import (
	"context"
	"math"
	"strings"
	"time"

	"earnings-move/internal/types"
)

// Calculator prices the at-the-money straddle for the first expiration
// covering an earnings date.
type Calculator struct {
	config Config
	market MarketData
}

// NewCalculator creates a calculator. Non-positive grid values fall back to the defaults.
func NewCalculator(config Config, market MarketData) *Calculator {
	def := DefaultConfig()
	if config.StrikeStep <= 0 {
		config.StrikeStep = def.StrikeStep
	}
	if config.StrikeBand <= 0 {
		config.StrikeBand = def.StrikeBand
	}
	return &Calculator{config: config, market: market}
}

// Calculate never fails: every problem is reported through Result.Reason.
func (c *Calculator) Calculate(ctx context.Context, symbol string, reportDate time.Time) Result {
	symbol = strings.TrimSpace(symbol)
	res := Result{Symbol: symbol}
	if symbol == "" || reportDate.IsZero() {
		res.Reason = ReasonInvalidInput
		return res
	}

	quote, err := c.market.Quote(ctx, symbol)
	if err != nil {
		return providerError(res, err)
	}
	if quote == nil || quote.Price <= 0 || math.IsNaN(quote.Price) {
		res.Reason = ReasonNoPrice
		return res
	}
	price := quote.Price

	expirations, err := c.market.Expirations(ctx, symbol)
	if err != nil {
		return providerError(res, err)
	}
	expiration, ok := SelectExpiration(expirations, reportDate)
	if !ok {
		res.Reason = ReasonNoExpiration
		return res
	}

	chain, err := c.market.OptionChain(ctx, symbol, expiration)
	if err != nil {
		return providerError(res, err)
	}

	strike := ATMStrike(price, c.config.StrikeStep)

	var calls, puts []types.OptionContract
	if chain != nil {
		calls, puts = chain.Calls, chain.Puts
	}
	call, ok := FirstInBand(calls, strike, c.config.StrikeBand)
	if !ok {
		res.Reason = ReasonNoCallInBand
		return res
	}
	put, ok := FirstInBand(puts, strike, c.config.StrikeBand)
	if !ok {
		res.Reason = ReasonNoPutInBand
		return res
	}

	straddle := call.LastPrice + put.LastPrice

	res.Reason = ReasonOK
	res.Move = &types.ImpliedMove{
		ImpliedPercent: types.Round(straddle/price*100, 1),
		Price:          types.Round(price, 2),
		Expiration:     expiration,
		ATMStrike:      strike,
		CallPrice:      call.LastPrice,
		PutPrice:       put.LastPrice,
		Straddle:       straddle,
	}
	return res
}

func providerError(res Result, err error) Result {
	res.Reason = ReasonProviderError
	res.Err = err
	return res
}

// ATMStrike rounds price to the nearest multiple of step. Exact halves go to
// the even multiple (122.5 -> 120, 127.5 -> 130).
func ATMStrike(price, step float64) float64 {
	if step <= 0 {
		return price
	}
	return math.RoundToEven(price/step) * step
}

// SelectExpiration returns the earliest expiration on or after the report date.
// Dates are compared as calendar days; input order does not matter.
func SelectExpiration(expirations []time.Time, reportDate time.Time) (time.Time, bool) {
	target := types.DateOnly(reportDate)

	var best time.Time
	found := false
	for _, exp := range expirations {
		day := types.DateOnly(exp)
		if day.Before(target) {
			continue
		}
		if !found || day.Before(best) {
			best = day
			found = true
		}
	}
	return best, found
}

// FirstInBand returns the first contract whose strike lies in [strike-band, strike+band].
func FirstInBand(contracts []types.OptionContract, strike, band float64) (types.OptionContract, bool) {
	lo, hi := strike-band, strike+band
	for _, c := range contracts {
		if c.Strike >= lo && c.Strike <= hi {
			return c, true
		}
	}
	return types.OptionContract{}, false
}
