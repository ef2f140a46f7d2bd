package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnings-move/internal/types"
)

func sampleReport() *types.Report {
	eps := 1.5249
	rev := 2.1e9
	withMove := types.NewOutputRecord(types.EarningsEvent{
		Symbol:          "ACME",
		Date:            time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		Session:         types.SessionBMO,
		EPSEstimate:     &eps,
		RevenueEstimate: &rev,
	}, "Acme Corporation", &types.ImpliedMove{ImpliedPercent: 5.0, Price: 123.4})

	without := types.NewOutputRecord(types.EarningsEvent{
		Symbol:  "GLOBX",
		Date:    time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
		Session: types.SessionAMC,
	}, "GLOBX", nil)

	return &types.Report{
		LastUpdated: time.Date(2024, 6, 3, 8, 0, 5, 0, time.UTC),
		Data:        []types.OutputRecord{withMove, without},
	}
}

func readReport(t *testing.T, path string) *types.Report {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var r types.Report
	require.NoError(t, json.Unmarshal(b, &r))
	return &r
}

func TestWriteJSONShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "earnings.json")
	require.NoError(t, WriteJSON(path, sampleReport()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "2024-06-03T08:00:05Z", doc["last_updated"])

	data := doc["data"].([]any)
	require.Len(t, data, 2)

	first := data[0].(map[string]any)
	assert.Equal(t, "ACME", first["symbol"])
	assert.Equal(t, "Acme Corporation", first["company"])
	assert.Equal(t, "2024-06-05", first["date"])
	assert.Equal(t, "BMO", first["time"])
	assert.Equal(t, 1.52, first["eps_est"])
	assert.Equal(t, 2.1e9, first["rev_est"])
	assert.Equal(t, 5.0, first["implied_pct"])
	assert.Equal(t, 123.4, first["price"])
	assert.Equal(t, 6.17, first["implied_dollar"])

	second := data[1].(map[string]any)
	for _, k := range []string{"eps_est", "rev_est", "implied_pct", "price", "implied_dollar"} {
		v, ok := second[k]
		assert.True(t, ok, "key %s must be present", k)
		assert.Nil(t, v, k)
	}

	// indented output, no leftover temp files
	assert.Contains(t, string(b), "\n  \"data\"")
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteJSONOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "earnings.json")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 10000)), 0o644))

	require.NoError(t, WriteJSON(path, &types.Report{LastUpdated: time.Now()}))

	r := readReport(t, path)
	assert.NotNil(t, r.Data)
	assert.Empty(t, r.Data)
}

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "earnings.json")
	want := sampleReport()
	require.NoError(t, WriteJSON(path, want))

	got := readReport(t, path)
	assert.True(t, want.LastUpdated.Equal(got.LastUpdated))
	assert.Equal(t, want.Data, got.Data)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "earnings.csv")
	require.NoError(t, WriteCSV(path, sampleReport()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "symbol,company,date,time,eps_est,rev_est,implied_pct,price,implied_dollar", lines[0])
	assert.Equal(t, "ACME,Acme Corporation,2024-06-05,BMO,1.52,2100000000,5,123.4,6.17", lines[1])
	assert.Equal(t, "GLOBX,GLOBX,2024-06-08,AMC,,,,,", lines[2])
}

func TestSummarize(t *testing.T) {
	r := sampleReport()
	extra := types.NewOutputRecord(types.EarningsEvent{Symbol: "ZED", Session: types.SessionAMC}, "Zed", &types.ImpliedMove{ImpliedPercent: 9.0, Price: 10})
	r.Data = append(r.Data, extra)

	s := Summarize(r)
	assert.Equal(t, 3, s.Events)
	assert.Equal(t, 2, s.WithMove)
	assert.Equal(t, 7.0, s.MeanPct)
	assert.Equal(t, 7.0, s.MedianPct)
	assert.Equal(t, 9.0, s.MaxPct)
	assert.Equal(t, "ZED", s.MaxPctSymbol)

	empty := Summarize(&types.Report{})
	assert.Zero(t, empty.WithMove)
	assert.Zero(t, empty.MeanPct)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	s := PrintSummary(&buf, sampleReport())

	out := buf.String()
	assert.Contains(t, out, "ACME")
	assert.Contains(t, out, "GLOBX")
	assert.Contains(t, out, "123.40")
	assert.Contains(t, out, "2 events, 1 with implied move")
	assert.Equal(t, 1, s.WithMove)

	buf.Reset()
	PrintSummary(&buf, &types.Report{})
	assert.Contains(t, buf.String(), "0 events, none with an implied move")
}
