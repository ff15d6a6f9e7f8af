package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"fjacquet/card-recon/internal/currencyutils"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/models"
	"fjacquet/card-recon/internal/parser"
	"fjacquet/card-recon/internal/reconciler"
	"fjacquet/card-recon/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNormalizer struct {
	records map[string][]models.TransactionRecord
	failing map[string]error
	calls   atomic.Int32
}

func (f *fakeNormalizer) Normalize(path string) ([]models.TransactionRecord, models.NormalizeStats, error) {
	f.calls.Add(1)
	name := filepath.Base(path)
	if err, ok := f.failing[name]; ok {
		return nil, models.NormalizeStats{}, err
	}
	recs := f.records[name]
	return recs, models.NormalizeStats{RowsRead: len(recs), RowsKept: len(recs)}, nil
}

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func testOptions(workers int, format string) Options {
	return Options{
		Workers:      workers,
		ReportFormat: format,
		Classifier: reconciler.ClassifierConfig{
			PaymentDescriptions:    []string{"Pago Pesos TAR"},
			SingleInstallmentToken: "01/01",
		},
	}
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0600))
	}
}

func newRunner(n parser.Normalizer, opts Options, logger logging.Logger) *Runner {
	gen := report.NewReportGenerator(logger, currencyutils.NewFormatter("$", "."))
	return NewRunner(n, gen, opts, logger)
}

func TestRunner_Run(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "reports")
	touch(t, in, "jan.xlsx", "feb.csv", "mar.ofx", "notes.txt")

	norm := &fakeNormalizer{
		records: map[string][]models.TransactionRecord{
			"jan.xlsx": {
				{Date: day(3), Description: "SHOP", InstallmentPlan: "01/01", Amount: 1000},
				{Date: day(9), Description: "Pago Pesos TAR", Amount: -1000},
			},
			"mar.ofx": {
				{Date: day(20), Description: "SHOP", InstallmentPlan: "01/01", Amount: 500},
			},
		},
		failing: map[string]error{"feb.csv": errors.New("file only has 3 columns, 11 are needed")},
	}
	logger := logging.NewMockLogger()

	summary, err := newRunner(norm, testOptions(2, report.FormatJSON), logger).Run(context.Background(), in, out)
	require.NoError(t, err)

	assert.Equal(t, int32(3), norm.calls.Load(), "unsupported files are not read")
	require.Len(t, summary.Files, 3)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, DateRange{Start: day(3), End: day(20)}, summary.Period)

	// files are listed in name order
	assert.Equal(t, "feb.csv", filepath.Base(summary.Files[0].InputFile))
	assert.Error(t, summary.Files[0].Err)
	assert.Empty(t, summary.Files[0].ReportFile)

	jan := summary.Files[1]
	require.NoError(t, jan.Err)
	assert.True(t, jan.Result.AllPaid())
	assert.Equal(t, filepath.Join(out, "jan_report.json"), jan.ReportFile)
	assert.FileExists(t, jan.ReportFile)

	mar := summary.Files[2]
	require.NoError(t, mar.Err)
	require.Len(t, mar.Result.UnpaidPurchases, 1)
	assert.Equal(t, int64(500), mar.Result.TotalUnpaid)
	content, err := os.ReadFile(mar.ReportFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"total_unpaid": 500`)

	assert.True(t, logger.HasEntry("ERROR", "Failed to ingest statement"))
	assert.True(t, logger.HasEntry("INFO", "Batch reconciliation completed"))
}

func TestRunner_EmptyDirectory(t *testing.T) {
	summary, err := newRunner(&fakeNormalizer{}, testOptions(4, ""), logging.NewMockLogger()).
		Run(context.Background(), t.TempDir(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, summary.Files)
	assert.Equal(t, "0 succeeded, 0 failed\n", summary.Text())
}

func TestRunner_MissingInputDirectory(t *testing.T) {
	_, err := newRunner(&fakeNormalizer{}, testOptions(1, ""), logging.NewMockLogger()).
		Run(context.Background(), filepath.Join(t.TempDir(), "absent"), t.TempDir())
	assert.Error(t, err)
}

func TestRunner_CancelledContext(t *testing.T) {
	in := t.TempDir()
	touch(t, in, "a.csv", "b.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	norm := &fakeNormalizer{}
	summary, err := newRunner(norm, testOptions(1, ""), logging.NewMockLogger()).Run(ctx, in, t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, norm.calls.Load())
	assert.Equal(t, 2, summary.Failed)
}

func TestRunner_WorkersFloor(t *testing.T) {
	r := NewRunner(&fakeNormalizer{}, nil, Options{Workers: 0}, logging.NewMockLogger())
	assert.Equal(t, 1, r.opts.Workers)
}

func TestReportPath(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{report.FormatText, "out/march_report.txt"},
		{"", "out/march_report.txt"},
		{report.FormatJSON, "out/march_report.json"},
		{report.FormatYAML, "out/march_report.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), ReportPath("out", "in/march.xlsx", tt.format))
		})
	}
}

func TestSummaryText(t *testing.T) {
	s := summarize([]FileResult{
		{InputFile: "in/a.xlsx", ReportFile: "out/a_report.txt", Result: models.MatchResult{Difference: -300}},
		{InputFile: "in/b.csv", Err: errors.New("boom")},
	})
	assert.Equal(t,
		"OK      a.xlsx: 0 unpaid, difference -300 -> out/a_report.txt\n"+
			"FAILED  b.csv: boom\n"+
			"1 succeeded, 1 failed\n",
		s.Text())
}

func TestPeriodOf(t *testing.T) {
	assert.Equal(t, DateRange{}, PeriodOf(nil))
	assert.Equal(t, "", DateRange{}.String())

	dr := PeriodOf([]models.TransactionRecord{{Date: day(15)}, {Date: day(2)}, {Date: day(28)}})
	assert.Equal(t, "2025-01-02_2025-01-28", dr.String())
}

func TestDateRangeMerge(t *testing.T) {
	a := DateRange{Start: day(5), End: day(10)}
	assert.Equal(t, a, DateRange{}.Merge(a))
	assert.Equal(t, a, a.Merge(DateRange{}))
	assert.Equal(t, DateRange{Start: day(1), End: day(10)}, a.Merge(DateRange{Start: day(1), End: day(7)}))
}
