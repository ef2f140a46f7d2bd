package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"earnings-move/internal/api"
	"earnings-move/internal/logger"
)

// ErrNameNotFound is returned when the quote page carries no usable company name
var ErrNameNotFound = errors.New("company name not found on quote page")

// NameScraper reads a company's display name from its Yahoo quote page
type NameScraper struct {
	pageURL string
	timeout time.Duration
	limiter *RateLimiter
}

// NewNameScraper creates a scraper for {pageURL}/quote/{symbol}/
func NewNameScraper(pageURL string, timeout time.Duration) *NameScraper {
	return &NameScraper{
		pageURL: strings.TrimRight(pageURL, "/"),
		timeout: timeout,
	}
}

// Lookup visits the quote page and extracts the company name
func (s *NameScraper) Lookup(ctx context.Context, symbol string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	pageURL := fmt.Sprintf("%s/quote/%s/", s.pageURL, url.PathEscape(symbol))

	// A fresh collector per lookup: colly refuses to revisit URLs.
	c := colly.NewCollector(colly.MaxDepth(1))
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		for k, v := range api.BrowserHeaders() {
			r.Headers.Set(k, v)
		}
	})

	var name string
	c.OnHTML("html", func(e *colly.HTMLElement) {
		name = companyNameFromDocument(e.DOM, symbol)
	})

	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("quote page request failed (status %d): %w", r.StatusCode, err)
	})

	if err := c.Visit(pageURL); err != nil && scrapeErr == nil {
		scrapeErr = err
	}
	if scrapeErr != nil {
		logger.Debug(ctx, "Quote page scrape failed", "symbol", symbol, "error", scrapeErr)
		return "", scrapeErr
	}
	if name == "" {
		return "", fmt.Errorf("%w: %s", ErrNameNotFound, symbol)
	}
	return name, nil
}

// companyNameFromDocument tries the page heading, then og:title, then <title>.
func companyNameFromDocument(doc *goquery.Selection, symbol string) string {
	candidates := []string{
		doc.Find("h1").First().Text(),
		doc.Find(`meta[property="og:title"]`).AttrOr("content", ""),
		doc.Find("title").First().Text(),
	}
	for _, raw := range candidates {
		if n := cleanCompanyName(raw, symbol); n != "" {
			return n
		}
	}
	return ""
}

// cleanCompanyName turns "Apple Inc. (AAPL) Stock Price, News ..." into "Apple Inc.".
func cleanCompanyName(raw, symbol string) string {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return ""
	}

	marker := " (" + strings.ToUpper(symbol) + ")"
	if i := strings.Index(strings.ToUpper(s), marker); i > 0 {
		s = s[:i]
	} else if i := strings.Index(s, " | "); i > 0 {
		s = s[:i]
	} else if i := strings.Index(s, " - "); i > 0 {
		s = s[:i]
	}

	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "Yahoo Finance") || strings.EqualFold(s, symbol) {
		return ""
	}
	return s
}
