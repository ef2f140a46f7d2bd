package impliedmove

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnings-move/internal/types"
)

type fakeMarket struct {
	quote       *types.Quote
	quoteErr    error
	expirations []time.Time
	expErr      error
	chain       *types.OptionChain
	chainErr    error

	requestedExpiration time.Time
	calls               int
}

func (f *fakeMarket) Quote(ctx context.Context, symbol string) (*types.Quote, error) {
	f.calls++
	return f.quote, f.quoteErr
}

func (f *fakeMarket) Expirations(ctx context.Context, symbol string) ([]time.Time, error) {
	f.calls++
	return f.expirations, f.expErr
}

func (f *fakeMarket) OptionChain(ctx context.Context, symbol string, expiration time.Time) (*types.OptionChain, error) {
	f.calls++
	f.requestedExpiration = expiration
	return f.chain, f.chainErr
}

func day(s string) time.Time {
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newHealthyMarket() *fakeMarket {
	return &fakeMarket{
		quote:       &types.Quote{Symbol: "X", Price: 100},
		expirations: []time.Time{day("2024-01-05"), day("2024-01-12"), day("2024-01-19")},
		chain: &types.OptionChain{
			Symbol: "X",
			Calls: []types.OptionContract{
				{Strike: 90, LastPrice: 10.5},
				{Strike: 100, LastPrice: 2.75},
				{Strike: 105, LastPrice: 1.1},
			},
			Puts: []types.OptionContract{
				{Strike: 95, LastPrice: 0.9},
				{Strike: 100, LastPrice: 2.25},
			},
		},
	}
}

func TestATMStrike(t *testing.T) {
	assert.Equal(t, 125.0, ATMStrike(123.4, 5))
	assert.Equal(t, 120.0, ATMStrike(121.2, 5))
	assert.Equal(t, 100.0, ATMStrike(100, 5))
	assert.Equal(t, 120.0, ATMStrike(122.5, 5))
	assert.Equal(t, 130.0, ATMStrike(127.5, 5))
	assert.Equal(t, 0.0, ATMStrike(2.2, 5))
	assert.Equal(t, 42.0, ATMStrike(42, 0))
}

func TestSelectExpiration(t *testing.T) {
	exps := []time.Time{day("2024-01-05"), day("2024-01-12"), day("2024-01-19")}

	got, ok := SelectExpiration(exps, day("2024-01-10"))
	require.True(t, ok)
	assert.Equal(t, day("2024-01-12"), got)

	got, ok = SelectExpiration(exps, day("2024-01-12"))
	require.True(t, ok)
	assert.Equal(t, day("2024-01-12"), got, "same-day expiration qualifies")

	_, ok = SelectExpiration(exps, day("2024-01-20"))
	assert.False(t, ok)

	_, ok = SelectExpiration(nil, day("2024-01-10"))
	assert.False(t, ok)

	unordered := []time.Time{day("2024-01-19"), day("2024-01-12"), day("2024-01-05")}
	got, ok = SelectExpiration(unordered, day("2024-01-06"))
	require.True(t, ok)
	assert.Equal(t, day("2024-01-12"), got)
}

func TestSelectExpirationIgnoresTimeOfDay(t *testing.T) {
	exps := []time.Time{time.Date(2024, 1, 12, 20, 0, 0, 0, time.UTC)}
	report := time.Date(2024, 1, 12, 21, 30, 0, 0, time.UTC)

	got, ok := SelectExpiration(exps, report)
	require.True(t, ok)
	assert.Equal(t, day("2024-01-12"), got)
}

func TestFirstInBand(t *testing.T) {
	contracts := []types.OptionContract{
		{Strike: 95, LastPrice: 1},
		{Strike: 97.5, LastPrice: 2},
		{Strike: 100, LastPrice: 3},
		{Strike: 102.5, LastPrice: 4},
	}

	c, ok := FirstInBand(contracts, 100, 2.5)
	require.True(t, ok)
	assert.Equal(t, 97.5, c.Strike, "band edges are inclusive and the first match wins")

	_, ok = FirstInBand(contracts, 110, 2.5)
	assert.False(t, ok)
}

func TestCalculateSuccess(t *testing.T) {
	market := newHealthyMarket()
	calc := NewCalculator(DefaultConfig(), market)

	res := calc.Calculate(context.Background(), "X", day("2024-01-10"))

	require.True(t, res.OK())
	assert.Equal(t, ReasonOK, res.Reason)
	assert.NoError(t, res.Err)
	assert.Equal(t, 5.0, res.Move.ImpliedPercent)
	assert.Equal(t, 100.0, res.Move.Price)
	assert.Equal(t, 100.0, res.Move.ATMStrike)
	assert.Equal(t, 2.75, res.Move.CallPrice)
	assert.Equal(t, 2.25, res.Move.PutPrice)
	assert.Equal(t, 5.0, res.Move.Straddle)
	assert.Equal(t, day("2024-01-12"), res.Move.Expiration)
	assert.Equal(t, day("2024-01-12"), market.requestedExpiration)
}

func TestCalculateRounding(t *testing.T) {
	market := newHealthyMarket()
	market.quote.Price = 123.456
	market.chain = &types.OptionChain{
		Calls: []types.OptionContract{{Strike: 125, LastPrice: 4.1}},
		Puts:  []types.OptionContract{{Strike: 125, LastPrice: 5.33}},
	}

	res := NewCalculator(DefaultConfig(), market).Calculate(context.Background(), "X", day("2024-01-10"))

	require.True(t, res.OK())
	assert.Equal(t, 123.46, res.Move.Price)
	// 9.43 / 123.456 * 100 = 7.638...
	assert.Equal(t, 7.6, res.Move.ImpliedPercent)
}

func TestCalculateTieRoundsHalfToEven(t *testing.T) {
	market := newHealthyMarket()
	market.quote.Price = 200
	market.chain = &types.OptionChain{
		Calls: []types.OptionContract{{Strike: 200, LastPrice: 1.25}},
		Puts:  []types.OptionContract{{Strike: 200, LastPrice: 1.25}},
	}

	res := NewCalculator(DefaultConfig(), market).Calculate(context.Background(), "X", day("2024-01-10"))

	require.True(t, res.OK())
	assert.Equal(t, 2.5, res.Move.Straddle)
	// 2.5 / 200 * 100 = 1.25 exactly
	assert.Equal(t, 1.2, res.Move.ImpliedPercent)
	assert.Equal(t, 200.0, res.Move.Price)
	assert.Equal(t, 2.4, res.Move.DollarMove())
}

func TestCalculateFailures(t *testing.T) {
	providerErr := errors.New("boom")

	cases := []struct {
		name   string
		mutate func(*fakeMarket)
		symbol string
		report time.Time
		want   Reason
	}{
		{"empty symbol", func(*fakeMarket) {}, "  ", day("2024-01-10"), ReasonInvalidInput},
		{"zero date", func(*fakeMarket) {}, "X", time.Time{}, ReasonInvalidInput},
		{"quote error", func(m *fakeMarket) { m.quoteErr = providerErr }, "X", day("2024-01-10"), ReasonProviderError},
		{"nil quote", func(m *fakeMarket) { m.quote = nil }, "X", day("2024-01-10"), ReasonNoPrice},
		{"zero price", func(m *fakeMarket) { m.quote.Price = 0 }, "X", day("2024-01-10"), ReasonNoPrice},
		{"expirations error", func(m *fakeMarket) { m.expErr = providerErr }, "X", day("2024-01-10"), ReasonProviderError},
		{"all expirations before report", func(*fakeMarket) {}, "X", day("2024-02-01"), ReasonNoExpiration},
		{"no expirations", func(m *fakeMarket) { m.expirations = nil }, "X", day("2024-01-10"), ReasonNoExpiration},
		{"chain error", func(m *fakeMarket) { m.chainErr = providerErr }, "X", day("2024-01-10"), ReasonProviderError},
		{"nil chain", func(m *fakeMarket) { m.chain = nil }, "X", day("2024-01-10"), ReasonNoCallInBand},
		{"no call in band", func(m *fakeMarket) { m.chain.Calls = m.chain.Calls[:1] }, "X", day("2024-01-10"), ReasonNoCallInBand},
		{"no put in band", func(m *fakeMarket) { m.chain.Puts = nil }, "X", day("2024-01-10"), ReasonNoPutInBand},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			market := newHealthyMarket()
			tc.mutate(market)

			res := NewCalculator(DefaultConfig(), market).Calculate(context.Background(), tc.symbol, tc.report)

			assert.False(t, res.OK())
			assert.Nil(t, res.Move)
			assert.Equal(t, tc.want, res.Reason)
			if tc.want == ReasonProviderError {
				assert.ErrorIs(t, res.Err, providerErr)
			} else {
				assert.NoError(t, res.Err)
			}
		})
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	market := newHealthyMarket()
	calc := NewCalculator(DefaultConfig(), market)

	first := calc.Calculate(context.Background(), "X", day("2024-01-10"))
	second := calc.Calculate(context.Background(), "X", day("2024-01-10"))

	assert.Equal(t, first, second)
	assert.Equal(t, 6, market.calls)
}

func TestNewCalculatorDefaults(t *testing.T) {
	calc := NewCalculator(Config{}, newHealthyMarket())
	assert.Equal(t, DefaultConfig(), calc.config)

	custom := NewCalculator(Config{StrikeStep: 1, StrikeBand: 0.5}, newHealthyMarket())
	assert.Equal(t, 1.0, custom.config.StrikeStep)
	assert.Equal(t, 0.5, custom.config.StrikeBand)
}
