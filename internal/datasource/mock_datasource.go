package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"earnings-move/internal/types"
)

// MockDataSource serves both the calendar and market data from memory.
// It backs data_source: MOCK and the orchestration tests.
type MockDataSource struct {
	Calendar        []CalendarEntry
	Quotes          map[string]types.Quote
	ExpirationDates map[string][]time.Time
	Chains          map[string]map[string]types.OptionChain // symbol -> YYYY-MM-DD -> chain

	// CalendarErr fails Upcoming; SymbolErrs fail every market call for a symbol.
	CalendarErr error
	SymbolErrs  map[string]error
}

// NewMockDataSource creates an empty mock
func NewMockDataSource() *MockDataSource {
	return &MockDataSource{
		Quotes:          make(map[string]types.Quote),
		ExpirationDates: make(map[string][]time.Time),
		Chains:          make(map[string]map[string]types.OptionChain),
		SymbolErrs:      make(map[string]error),
	}
}

// NewSampleDataSource returns a mock seeded with a small calendar around today:
// one priced BMO name, one AMC name without a usable chain, and one unconfirmed slot.
func NewSampleDataSource(today time.Time) *MockDataSource {
	m := NewMockDataSource()
	d0 := types.DateOnly(today)
	eps := 1.5249
	rev := 2.1e9

	m.Calendar = []CalendarEntry{
		{Symbol: "ACME", Date: d0.AddDate(0, 0, 2).Format(types.DateLayout), Hour: "bmo", EPSEstimate: &eps, RevenueEstimate: &rev},
		{Symbol: "GLOBX", Date: d0.AddDate(0, 0, 5).Format(types.DateLayout), Hour: "amc"},
		{Symbol: "INITECH", Date: d0.AddDate(0, 0, 3).Format(types.DateLayout), Hour: "dmh"},
	}

	exp := d0.AddDate(0, 0, 4)
	m.AddSymbol(types.Quote{Symbol: "ACME", Name: "Acme Corporation", Price: 123.4}, []time.Time{d0.AddDate(0, 0, 1), exp},
		types.OptionChain{
			Expiration: exp,
			Calls:      []types.OptionContract{{Strike: 120, LastPrice: 5.9}, {Strike: 125, LastPrice: 3.2}, {Strike: 130, LastPrice: 1.4}},
			Puts:       []types.OptionContract{{Strike: 120, LastPrice: 1.1}, {Strike: 125, LastPrice: 3.0}, {Strike: 130, LastPrice: 6.8}},
		})
	m.AddSymbol(types.Quote{Symbol: "GLOBX", Name: "", Price: 41.07}, []time.Time{d0.AddDate(0, 0, 1)})
	return m
}

// AddSymbol registers a quote, its expirations and any chains (keyed by chain.Expiration)
func (m *MockDataSource) AddSymbol(q types.Quote, expirations []time.Time, chains ...types.OptionChain) {
	m.Quotes[q.Symbol] = q
	m.ExpirationDates[q.Symbol] = expirations
	if len(chains) > 0 && m.Chains[q.Symbol] == nil {
		m.Chains[q.Symbol] = make(map[string]types.OptionChain)
	}
	for _, c := range chains {
		c.Symbol = q.Symbol
		m.Chains[q.Symbol][types.DateOnly(c.Expiration).Format(types.DateLayout)] = c
	}
}

// Upcoming returns confirmed calendar entries dated within [from, to]
func (m *MockDataSource) Upcoming(ctx context.Context, from, to time.Time) ([]types.EarningsEvent, error) {
	if m.CalendarErr != nil {
		return nil, m.CalendarErr
	}
	lo, hi := types.DateOnly(from), types.DateOnly(to)

	events := make([]types.EarningsEvent, 0, len(m.Calendar))
	for _, entry := range m.Calendar {
		ev, ok := entry.Event()
		if !ok {
			continue
		}
		if ev.Date.Before(lo) || ev.Date.After(hi) {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (m *MockDataSource) Quote(ctx context.Context, symbol string) (*types.Quote, error) {
	if err := m.SymbolErrs[symbol]; err != nil {
		return nil, err
	}
	q, ok := m.Quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return &q, nil
}

func (m *MockDataSource) Expirations(ctx context.Context, symbol string) ([]time.Time, error) {
	if err := m.SymbolErrs[symbol]; err != nil {
		return nil, err
	}
	exps, ok := m.ExpirationDates[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return append([]time.Time(nil), exps...), nil
}

func (m *MockDataSource) OptionChain(ctx context.Context, symbol string, expiration time.Time) (*types.OptionChain, error) {
	if err := m.SymbolErrs[symbol]; err != nil {
		return nil, err
	}
	chain, ok := m.Chains[symbol][types.DateOnly(expiration).Format(types.DateLayout)]
	if !ok {
		// Listed expiration with an empty chain.
		return &types.OptionChain{Symbol: symbol, Expiration: types.DateOnly(expiration)}, nil
	}
	return &chain, nil
}

func (m *MockDataSource) CompanyName(ctx context.Context, symbol string) (string, error) {
	q, err := m.Quote(ctx, symbol)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(q.Name) == "" {
		return "", fmt.Errorf("%w: %s", ErrNameNotFound, symbol)
	}
	return q.Name, nil
}
