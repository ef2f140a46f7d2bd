package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"

	"earnings-move/internal/types"
)

// Summary aggregates the implied moves of a report
type Summary struct {
	Events       int
	WithMove     int
	MeanPct      float64
	MedianPct    float64
	MaxPct       float64
	MaxPctSymbol string
}

// Summarize computes the summary; percentage fields stay zero when no event has a move.
func Summarize(r *types.Report) Summary {
	s := Summary{Events: len(r.Data)}

	var pcts stats.Float64Data
	for _, rec := range r.Data {
		if !rec.HasMove() {
			continue
		}
		pcts = append(pcts, *rec.ImpliedPct)
		if s.MaxPctSymbol == "" || *rec.ImpliedPct > s.MaxPct {
			s.MaxPct = *rec.ImpliedPct
			s.MaxPctSymbol = rec.Symbol
		}
	}
	s.WithMove = len(pcts)
	if s.WithMove == 0 {
		return s
	}

	if mean, err := stats.Mean(pcts); err == nil {
		s.MeanPct = types.Round(mean, 2)
	}
	if median, err := stats.Median(pcts); err == nil {
		s.MedianPct = types.Round(median, 2)
	}
	return s
}

// PrintSummary renders the records and aggregate line as a console table
func PrintSummary(w io.Writer, r *types.Report) Summary {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Symbol", "Company", "Date", "Time", "EPS Est", "Price", "Implied %", "Implied $"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, rec := range r.Data {
		table.Append([]string{
			rec.Symbol,
			rec.Company,
			rec.Date,
			rec.Time,
			cell(rec.EPSEst, 2),
			cell(rec.Price, 2),
			cell(rec.ImpliedPct, 1),
			cell(rec.ImpliedDollar, 2),
		})
	}
	table.Render()

	s := Summarize(r)
	if s.WithMove == 0 {
		fmt.Fprintf(w, "%d events, none with an implied move\n", s.Events)
		return s
	}
	fmt.Fprintf(w, "%d events, %d with implied move: mean %.2f%%, median %.2f%%, max %.1f%% (%s)\n",
		s.Events, s.WithMove, s.MeanPct, s.MedianPct, s.MaxPct, s.MaxPctSymbol)
	return s
}

func cell(v *float64, places int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', places, 64)
}
