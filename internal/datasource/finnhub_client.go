package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"earnings-move/internal/api"
	"earnings-move/internal/logger"
	"earnings-move/internal/types"
)

// FinnhubClient reads the earnings calendar from the Finnhub REST API
type FinnhubClient struct {
	client *api.Client
	token  string
}

// NewFinnhubClient creates a calendar client. An empty token is sent as-is;
// the provider rejects it.
func NewFinnhubClient(baseURL, token string, timeout time.Duration) *FinnhubClient {
	return &FinnhubClient{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(baseURL, "/")),
			api.WithTimeout(timeout),
			api.WithHeaders(api.FinnhubHeaders()),
			api.WithLogging(true),
		),
		token: token,
	}
}

type finnhubCalendarResponse struct {
	EarningsCalendar []finnhubEarning `json:"earningsCalendar"`
}

type finnhubEarning struct {
	Symbol          string   `json:"symbol"`
	Date            string   `json:"date"`
	Hour            string   `json:"hour"`
	EPSEstimate     *float64 `json:"epsEstimate"`
	EPSActual       *float64 `json:"epsActual"`
	RevenueEstimate *float64 `json:"revenueEstimate"`
	RevenueActual   *float64 `json:"revenueActual"`
	Quarter         int      `json:"quarter"`
	Year            int      `json:"year"`
}

// Upcoming fetches the earnings calendar for [from, to] and keeps confirmed BMO/AMC events
func (f *FinnhubClient) Upcoming(ctx context.Context, from, to time.Time) ([]types.EarningsEvent, error) {
	q := url.Values{}
	q.Set("from", from.Format(types.DateLayout))
	q.Set("to", to.Format(types.DateLayout))
	q.Set("token", f.token)

	resp, err := f.client.GET(ctx, "/calendar/earnings", q)
	if err != nil {
		return nil, fmt.Errorf("finnhub earnings calendar request failed: %w", err)
	}

	var data finnhubCalendarResponse
	if err := resp.ParseJSON(&data); err != nil {
		return nil, fmt.Errorf("failed to parse finnhub earnings calendar: %w", err)
	}

	events := make([]types.EarningsEvent, 0, len(data.EarningsCalendar))
	dropped := 0
	for _, item := range data.EarningsCalendar {
		ev, ok := item.toEvent()
		if !ok {
			dropped++
			continue
		}
		events = append(events, ev)
	}

	logger.Debug(ctx, "Finnhub calendar parsed",
		"received", len(data.EarningsCalendar),
		"kept", len(events),
		"dropped", dropped)

	return events, nil
}

func (e finnhubEarning) toEvent() (types.EarningsEvent, bool) {
	return CalendarEntry{
		Symbol:          e.Symbol,
		Date:            e.Date,
		Hour:            e.Hour,
		EPSEstimate:     e.EPSEstimate,
		RevenueEstimate: e.RevenueEstimate,
	}.Event()
}

// CalendarEntry is a raw calendar row as providers report it
type CalendarEntry struct {
	Symbol          string
	Date            string // YYYY-MM-DD
	Hour            string // bmo, amc, dmh, ""
	EPSEstimate     *float64
	RevenueEstimate *float64
}

// Event converts the row, rejecting blank symbols, bad dates and unconfirmed slots
func (e CalendarEntry) Event() (types.EarningsEvent, bool) {
	symbol := strings.TrimSpace(e.Symbol)
	if symbol == "" {
		return types.EarningsEvent{}, false
	}
	session, ok := types.ParseSession(e.Hour)
	if !ok {
		return types.EarningsEvent{}, false
	}
	date, err := time.Parse(types.DateLayout, strings.TrimSpace(e.Date))
	if err != nil {
		return types.EarningsEvent{}, false
	}
	return types.EarningsEvent{
		Symbol:          symbol,
		Date:            date,
		Session:         session,
		EPSEstimate:     e.EPSEstimate,
		RevenueEstimate: e.RevenueEstimate,
	}, true
}
