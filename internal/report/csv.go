package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/gocarina/gocsv"

	"earnings-move/internal/types"
)

// recordDTO is the flat CSV shape of an OutputRecord; missing values are empty cells.
type recordDTO struct {
	Symbol        string `csv:"symbol"`
	Company       string `csv:"company"`
	Date          string `csv:"date"`
	Time          string `csv:"time"`
	EPSEst        string `csv:"eps_est"`
	RevEst        string `csv:"rev_est"`
	ImpliedPct    string `csv:"implied_pct"`
	Price         string `csv:"price"`
	ImpliedDollar string `csv:"implied_dollar"`
}

func toDTO(rec types.OutputRecord) recordDTO {
	return recordDTO{
		Symbol:        rec.Symbol,
		Company:       rec.Company,
		Date:          rec.Date,
		Time:          rec.Time,
		EPSEst:        formatOptional(rec.EPSEst),
		RevEst:        formatOptional(rec.RevEst),
		ImpliedPct:    formatOptional(rec.ImpliedPct),
		Price:         formatOptional(rec.Price),
		ImpliedDollar: formatOptional(rec.ImpliedDollar),
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// WriteCSV exports the report rows to path, one line per record
func WriteCSV(path string, r *types.Report) error {
	if r == nil {
		return fmt.Errorf("report is nil")
	}

	rows := make([]recordDTO, 0, len(r.Data))
	for _, rec := range r.Data {
		rows = append(rows, toDTO(rec))
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		return fmt.Errorf("error marshalling csv: %w", err)
	}
	return writeAtomic(path, buf.Bytes())
}
