package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"earnings-move/internal/api"
	"earnings-move/internal/types"
)

// ErrSymbolNotFound is returned when Yahoo has no data for a symbol
var ErrSymbolNotFound = errors.New("symbol not found")

// YahooClient handles Yahoo Finance quote and option-chain lookups
type YahooClient struct {
	quotes  *api.Client
	options *api.Client
	names   *NameScraper
	limiter *RateLimiter
}

// YahooConfig holds the Yahoo endpoints
type YahooConfig struct {
	QuoteURL   string
	OptionsURL string
	PageURL    string
	Timeout    time.Duration

	// RequestsPerSecond caps quote, options and page requests combined; 0 disables.
	RequestsPerSecond int
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(cfg YahooConfig) *YahooClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	limiter := NewRateLimiterPerSecond(cfg.RequestsPerSecond)
	names := NewNameScraper(cfg.PageURL, cfg.Timeout)
	names.limiter = limiter

	return &YahooClient{
		quotes: api.NewClient(
			api.WithBaseURL(strings.TrimRight(cfg.QuoteURL, "/")),
			api.WithTimeout(cfg.Timeout),
			api.WithHeaders(api.YahooFinanceHeaders()),
			api.WithLogging(true),
		),
		options: api.NewClient(
			api.WithBaseURL(strings.TrimRight(cfg.OptionsURL, "/")),
			api.WithTimeout(cfg.Timeout),
			api.WithHeaders(api.YahooFinanceHeaders()),
			api.WithLogging(true),
		),
		names:   names,
		limiter: limiter,
	}
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooQuote struct {
	Symbol             string  `json:"symbol"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	PostMarketPrice    float64 `json:"postMarketPrice"`
	PreMarketPrice     float64 `json:"preMarketPrice"`
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuote `json:"result"`
		Error  *yahooError  `json:"error"`
	} `json:"quoteResponse"`
}

type yahooContract struct {
	ContractSymbol string  `json:"contractSymbol"`
	Strike         float64 `json:"strike"`
	LastPrice      float64 `json:"lastPrice"`
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	Expiration     int64   `json:"expiration"`
}

type yahooOptionsResponse struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string     `json:"underlyingSymbol"`
			ExpirationDates  []int64    `json:"expirationDates"`
			Strikes          []float64  `json:"strikes"`
			Quote            yahooQuote `json:"quote"`
			Options          []struct {
				ExpirationDate int64           `json:"expirationDate"`
				Calls          []yahooContract `json:"calls"`
				Puts           []yahooContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"optionChain"`
}

func (e *yahooError) asError() error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("yahoo error %s: %s", e.Code, e.Description)
}

// price prefers the regular session price, then the extended-hours prices.
func (q yahooQuote) price() float64 {
	for _, p := range []float64{q.RegularMarketPrice, q.PostMarketPrice, q.PreMarketPrice} {
		if p > 0 {
			return p
		}
	}
	return 0
}

func (q yahooQuote) name() string {
	if n := strings.TrimSpace(q.LongName); n != "" {
		return n
	}
	return strings.TrimSpace(q.ShortName)
}

// Quote retrieves the current quote for a symbol
func (y *YahooClient) Quote(ctx context.Context, symbol string) (*types.Quote, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := y.quotes.GET(ctx, "/v7/finance/quote", url.Values{"symbols": {symbol}})
	if err != nil {
		return nil, fmt.Errorf("yahoo quote request failed: %w", err)
	}

	var data yahooQuoteResponse
	if err := resp.ParseJSON(&data); err != nil {
		return nil, err
	}
	if err := data.QuoteResponse.Error.asError(); err != nil {
		return nil, err
	}
	for _, q := range data.QuoteResponse.Result {
		if strings.EqualFold(q.Symbol, symbol) {
			return &types.Quote{Symbol: q.Symbol, Name: q.name(), Price: q.price()}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
}

// Expirations retrieves listed option expiration dates, ascending
func (y *YahooClient) Expirations(ctx context.Context, symbol string) ([]time.Time, error) {
	data, err := y.fetchOptions(ctx, symbol, nil)
	if err != nil {
		return nil, err
	}

	raw := data.OptionChain.Result[0].ExpirationDates
	out := make([]time.Time, 0, len(raw))
	for _, ts := range raw {
		out = append(out, types.DateOnly(time.Unix(ts, 0)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// OptionChain retrieves calls and puts for a single expiration
func (y *YahooClient) OptionChain(ctx context.Context, symbol string, expiration time.Time) (*types.OptionChain, error) {
	exp := types.DateOnly(expiration)
	q := url.Values{"date": {strconv.FormatInt(exp.Unix(), 10)}}

	data, err := y.fetchOptions(ctx, symbol, q)
	if err != nil {
		return nil, err
	}

	chain := &types.OptionChain{Symbol: symbol, Expiration: exp}
	for _, opt := range data.OptionChain.Result[0].Options {
		chain.Calls = append(chain.Calls, toContracts(opt.Calls)...)
		chain.Puts = append(chain.Puts, toContracts(opt.Puts)...)
	}
	return chain, nil
}

// CompanyName resolves a display name: quote long/short name first, quote page second
func (y *YahooClient) CompanyName(ctx context.Context, symbol string) (string, error) {
	quote, qerr := y.Quote(ctx, symbol)
	if qerr == nil && quote.Name != "" {
		return quote.Name, nil
	}

	name, err := y.names.Lookup(ctx, symbol)
	if err != nil {
		if qerr != nil {
			return "", fmt.Errorf("company name lookup failed: %w", errors.Join(qerr, err))
		}
		return "", err
	}
	return name, nil
}

func (y *YahooClient) fetchOptions(ctx context.Context, symbol string, q url.Values) (*yahooOptionsResponse, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := y.options.GET(ctx, "/v7/finance/options/"+url.PathEscape(symbol), q)
	if err != nil {
		return nil, fmt.Errorf("yahoo options request failed: %w", err)
	}

	var data yahooOptionsResponse
	if err := resp.ParseJSON(&data); err != nil {
		return nil, err
	}
	if err := data.OptionChain.Error.asError(); err != nil {
		return nil, err
	}
	if len(data.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return &data, nil
}

func toContracts(in []yahooContract) []types.OptionContract {
	out := make([]types.OptionContract, 0, len(in))
	for _, c := range in {
		out = append(out, types.OptionContract{
			ContractSymbol: c.ContractSymbol,
			Strike:         c.Strike,
			LastPrice:      c.LastPrice,
		})
	}
	return out
}
