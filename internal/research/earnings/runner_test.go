package earnings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnings-move/internal/datasource"
	"earnings-move/internal/research/impliedmove"
	"earnings-move/internal/types"
)

var runDay = time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

type recordingSleeper struct {
	calls []time.Duration
	err   error
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return s.err
}

type windowCalendar struct {
	from, to time.Time
	events   []types.EarningsEvent
}

func (c *windowCalendar) Upcoming(ctx context.Context, from, to time.Time) ([]types.EarningsEvent, error) {
	c.from, c.to = from, to
	return c.events, nil
}

func newSampleRunner(mock *datasource.MockDataSource, sleeper Sleeper) *Runner {
	calc := impliedmove.NewCalculator(impliedmove.DefaultConfig(), mock)
	return NewRunner(mock, mock, calc, Config{LookaheadDays: 14, Pause: 300 * time.Millisecond},
		WithSleeper(sleeper),
		WithClock(func() time.Time { return runDay }),
	)
}

func TestRunBuildsRecordsInCalendarOrder(t *testing.T) {
	sleeper := &recordingSleeper{}
	report, err := newSampleRunner(datasource.NewSampleDataSource(runDay), sleeper).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, runDay, report.LastUpdated)
	require.Len(t, report.Data, 2)

	acme := report.Data[0]
	assert.Equal(t, "ACME", acme.Symbol)
	assert.Equal(t, "Acme Corporation", acme.Company)
	assert.Equal(t, "2024-06-05", acme.Date)
	assert.Equal(t, "BMO", acme.Time)
	require.NotNil(t, acme.EPSEst)
	assert.Equal(t, 1.52, *acme.EPSEst)
	require.NotNil(t, acme.RevEst)
	assert.Equal(t, 2.1e9, *acme.RevEst)
	require.True(t, acme.HasMove())
	assert.Equal(t, 5.0, *acme.ImpliedPct)
	assert.Equal(t, 123.4, *acme.Price)
	assert.Equal(t, 6.17, *acme.ImpliedDollar)

	globx := report.Data[1]
	assert.Equal(t, "GLOBX", globx.Symbol)
	assert.Equal(t, "GLOBX", globx.Company, "empty provider name falls back to the symbol")
	assert.Equal(t, "AMC", globx.Time)
	assert.Nil(t, globx.EPSEst)
	assert.Nil(t, globx.ImpliedPct)
	assert.Nil(t, globx.Price)
	assert.Nil(t, globx.ImpliedDollar)

	assert.Equal(t, []time.Duration{300 * time.Millisecond, 300 * time.Millisecond}, sleeper.calls)
}

func TestRunProviderFailureDoesNotAbort(t *testing.T) {
	mock := datasource.NewSampleDataSource(runDay)
	mock.SymbolErrs["ACME"] = errors.New("connection reset")

	report, err := newSampleRunner(mock, &recordingSleeper{}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Data, 2)

	assert.Equal(t, "ACME", report.Data[0].Company)
	assert.False(t, report.Data[0].HasMove())
	assert.Nil(t, report.Data[0].ImpliedDollar)
}

func TestRunCalendarFailureAborts(t *testing.T) {
	mock := datasource.NewSampleDataSource(runDay)
	mock.CalendarErr = errors.New("401 unauthorized")
	sleeper := &recordingSleeper{}

	report, err := newSampleRunner(mock, sleeper).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, mock.CalendarErr)
	assert.Empty(t, sleeper.calls)
}

func TestRunEmptyCalendar(t *testing.T) {
	mock := datasource.NewMockDataSource()

	report, err := newSampleRunner(mock, &recordingSleeper{}).Run(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, report.Data)
	assert.Empty(t, report.Data)
}

func TestRunWindow(t *testing.T) {
	cal := &windowCalendar{}
	mock := datasource.NewMockDataSource()
	calc := impliedmove.NewCalculator(impliedmove.DefaultConfig(), mock)

	r := NewRunner(cal, mock, calc, Config{}, WithSleeper(&recordingSleeper{}), WithClock(func() time.Time { return runDay }))
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, runDay, cal.from)
	assert.Equal(t, runDay.AddDate(0, 0, DefaultLookaheadDays), cal.to)
}

func TestRunSleeperInterrupt(t *testing.T) {
	sleeper := &recordingSleeper{err: context.Canceled}

	_, err := newSampleRunner(datasource.NewSampleDataSource(runDay), sleeper).Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, sleeper.calls, 1)
}

func TestFixedPause(t *testing.T) {
	assert.NoError(t, FixedPause{}.Sleep(context.Background(), 0))
	assert.NoError(t, FixedPause{}.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, FixedPause{}.Sleep(ctx, time.Hour), context.Canceled)

	called := false
	s := SleeperFunc(func(ctx context.Context, d time.Duration) error { called = true; return nil })
	assert.NoError(t, s.Sleep(context.Background(), time.Second))
	assert.True(t, called)
}

func TestRunEndToEndStraddle(t *testing.T) {
	report := runDay.AddDate(0, 0, 3)
	mock := datasource.NewMockDataSource()
	mock.Calendar = []datasource.CalendarEntry{
		{Symbol: "EVEN", Date: report.Format(types.DateLayout), Hour: "bmo"},
		{Symbol: "SKIP", Date: report.Format(types.DateLayout), Hour: "dmh"},
	}
	exp := types.DateOnly(report.AddDate(0, 0, 1))
	mock.AddSymbol(types.Quote{Symbol: "EVEN", Name: "Even Inc.", Price: 100}, []time.Time{exp},
		types.OptionChain{
			Expiration: exp,
			Calls:      []types.OptionContract{{Strike: 100, LastPrice: 2.75}},
			Puts:       []types.OptionContract{{Strike: 100, LastPrice: 2.25}},
		})

	out, err := newSampleRunner(mock, &recordingSleeper{}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Data, 1)

	rec := out.Data[0]
	assert.Equal(t, "EVEN", rec.Symbol)
	assert.Equal(t, "BMO", rec.Time)
	require.True(t, rec.HasMove())
	assert.Equal(t, 5.0, *rec.ImpliedPct)
	assert.Equal(t, 100.0, *rec.Price)
	assert.Equal(t, 5.0, *rec.ImpliedDollar)
}
