package types

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used by the providers and the output file.
const DateLayout = "2006-01-02"

// Session is the confirmed time-of-day slot of an earnings release.
type Session string

const (
	SessionBMO Session = "bmo" // before market open
	SessionAMC Session = "amc" // after market close
)

// ParseSession maps a raw provider slot code to a Session.
// Anything other than the two confirmed slots (e.g. "dmh", "") is rejected.
func ParseSession(raw string) (Session, bool) {
	switch Session(strings.ToLower(strings.TrimSpace(raw))) {
	case SessionBMO:
		return SessionBMO, true
	case SessionAMC:
		return SessionAMC, true
	default:
		return "", false
	}
}

// Label returns the upper-case label written to the output file.
func (s Session) Label() string {
	if s == SessionBMO {
		return "BMO"
	}
	return "AMC"
}

// EarningsEvent is one upcoming earnings release from the calendar provider.
type EarningsEvent struct {
	Symbol          string
	Date            time.Time // calendar date, UTC midnight
	Session         Session
	EPSEstimate     *float64
	RevenueEstimate *float64
}

// Quote is the subset of a market quote the job needs.
type Quote struct {
	Symbol string
	Name   string
	Price  float64
}

// OptionContract is one row of an option chain.
type OptionContract struct {
	ContractSymbol string
	Strike         float64
	LastPrice      float64
}

// OptionChain holds calls and puts for a single expiration, in provider order.
type OptionChain struct {
	Symbol     string
	Expiration time.Time
	Calls      []OptionContract
	Puts       []OptionContract
}

// ImpliedMove is a successful straddle calculation.
type ImpliedMove struct {
	ImpliedPercent float64   `json:"implied_pct"`
	Price          float64   `json:"price"`
	Expiration     time.Time `json:"expiration"`
	ATMStrike      float64   `json:"atm_strike"`
	CallPrice      float64   `json:"call_price"`
	PutPrice       float64   `json:"put_price"`
	Straddle       float64   `json:"straddle"`
}

// DollarMove is the implied move in price units, rounded to cents.
func (m ImpliedMove) DollarMove() float64 {
	return Round(m.Price*(m.ImpliedPercent/100), 2)
}

// OutputRecord is one row of the output file.
type OutputRecord struct {
	Symbol        string   `json:"symbol"`
	Company       string   `json:"company"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
	EPSEst        *float64 `json:"eps_est"`
	RevEst        *float64 `json:"rev_est"`
	ImpliedPct    *float64 `json:"implied_pct"`
	Price         *float64 `json:"price"`
	ImpliedDollar *float64 `json:"implied_dollar"`
}

// NewOutputRecord assembles a record for an event. The three derived fields
// are either all set (move != nil) or all nil.
func NewOutputRecord(ev EarningsEvent, company string, move *ImpliedMove) OutputRecord {
	rec := OutputRecord{
		Symbol:  ev.Symbol,
		Company: company,
		Date:    ev.Date.Format(DateLayout),
		Time:    ev.Session.Label(),
		RevEst:  ev.RevenueEstimate,
	}
	if ev.EPSEstimate != nil {
		rec.EPSEst = Float(Round(*ev.EPSEstimate, 2))
	}
	if move != nil {
		rec.ImpliedPct = Float(move.ImpliedPercent)
		rec.Price = Float(move.Price)
		rec.ImpliedDollar = Float(move.DollarMove())
	}
	return rec
}

// HasMove reports whether the derived fields are populated.
func (r OutputRecord) HasMove() bool {
	return r.ImpliedPct != nil && r.Price != nil && r.ImpliedDollar != nil
}

// Report is the full artifact of one run.
type Report struct {
	LastUpdated time.Time      `json:"last_updated"`
	Data        []OutputRecord `json:"data"`
}

// Round rounds the exact binary value of v half to even. Only exactly
// representable halves tie: Round(1.25, 1) == 1.2, while 2.675 is stored
// below the half and Round(2.675, 2) == 2.67.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exact, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', 1074, 64))
	if err != nil {
		exact = decimal.NewFromFloat(v)
	}
	return exact.RoundBank(places).InexactFloat64()
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// DateOnly truncates t to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
