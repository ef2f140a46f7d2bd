package datasource

import (
	"fmt"
	"time"

	"earnings-move/internal/interfaces"
	"earnings-move/internal/store"
)

// CreateDataSources builds the calendar and market data providers based on configuration.
// now seeds the MOCK calendar. An empty token is passed through; the calendar
// provider rejects it on the first request.
func CreateDataSources(cfg *store.Config, token string, now time.Time) (interfaces.EarningsCalendar, interfaces.MarketData, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config is nil")
	}

	dataSourceType := cfg.DataSource
	if dataSourceType == "" {
		dataSourceType = "LIVE"
	}

	switch dataSourceType {
	case "MOCK":
		mock := NewSampleDataSource(now)
		return mock, mock, nil

	case "LIVE":
		calendar := NewFinnhubClient(cfg.Finnhub.BaseURL, token,
			time.Duration(cfg.Finnhub.TimeoutSeconds)*time.Second)

		var market interfaces.MarketData = NewYahooClient(YahooConfig{
			QuoteURL:          cfg.Yahoo.QuoteURL,
			OptionsURL:        cfg.Yahoo.OptionsURL,
			PageURL:           cfg.Yahoo.PageURL,
			Timeout:           time.Duration(cfg.Yahoo.TimeoutSeconds) * time.Second,
			RequestsPerSecond: cfg.Yahoo.RequestsPerSecond,
		})
		if cfg.NameCacheEnabled() {
			market = WithNameCache(market, NewNameCache(cfg.NameCache.Dir, cfg.NameCacheTTL()))
		}

		return calendar, market, nil

	default:
		return nil, nil, fmt.Errorf("unknown data source type: %s (valid options: MOCK, LIVE)", dataSourceType)
	}
}
