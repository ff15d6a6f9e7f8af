package common_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/card-recon/cmd/common"
	"fjacquet/card-recon/internal/config"
	"fjacquet/card-recon/internal/currencyutils"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/models"
	"fjacquet/card-recon/internal/parser"
	"fjacquet/card-recon/internal/parsererror"
	"fjacquet/card-recon/internal/reconciler"
	"fjacquet/card-recon/internal/report"
	"fjacquet/card-recon/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNormalizer implements parser.Normalizer for testing
type MockNormalizer struct {
	mock.Mock
}

func (m *MockNormalizer) Normalize(filePath string) ([]models.TransactionRecord, models.NormalizeStats, error) {
	args := m.Called(filePath)
	return args.Get(0).([]models.TransactionRecord), args.Get(1).(models.NormalizeStats), args.Error(2)
}

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func statement() []models.TransactionRecord {
	return []models.TransactionRecord{
		{Date: day(1), Description: "A", InstallmentPlan: "01/01", Amount: 1000},
		{Date: day(2), Description: "B", InstallmentPlan: "01/01", Amount: 1000},
		{Date: day(3), Description: "C", InstallmentPlan: "01/01", Amount: 2000},
		{Date: day(4), Description: "Pago Pesos TAR", Amount: -1000},
		{Date: day(5), Description: "D", InstallmentPlan: "02/06", Amount: 5000},
	}
}

func newPipeline(n parser.Normalizer, s store.CleanStore, logger logging.Logger) *common.Pipeline {
	return &common.Pipeline{
		Normalizer: n,
		Store:      s,
		Generator:  report.NewReportGenerator(logger, currencyutils.NewFormatter("$", ".")),
		Classifier: reconciler.ClassifierConfig{
			PaymentDescriptions:    []string{"Pago Pesos TAR", "Pago Pesos TEF PAGO NORMAL"},
			SingleInstallmentToken: "01/01",
		},
		Logger: logger,
		Now:    func() time.Time { return time.Date(2025, 2, 3, 14, 5, 9, 0, time.UTC) },
	}
}

func TestPipeline_Reconcile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "Estado.XLS")
	require.NoError(t, os.WriteFile(input, []byte("raw"), 0600))

	norm := &MockNormalizer{}
	norm.On("Normalize", input).Return(statement(), models.NormalizeStats{RowsRead: 6, RowsKept: 5, DroppedNoDate: 1}, nil)
	clean := store.NewMockCleanStore()
	logger := logging.NewMockLogger()

	opts := common.ReconcileOptions{
		InputFile:     input,
		OutputDir:     filepath.Join(dir, "data"),
		ArchiveDir:    filepath.Join(dir, "archive"),
		DefaultPrefix: "cleaned-movements",
		CleanFormat:   "xlsx",
		ReportFormat:  report.FormatText,
	}
	var out bytes.Buffer
	outcome, err := newPipeline(norm, clean, logger).Reconcile(opts, &out)
	require.NoError(t, err)
	norm.AssertExpectations(t)

	assert.Equal(t, filepath.Join(dir, "data", "cleaned-movements_2025-02-03_140509.xlsx"), outcome.CleanFile)
	assert.Equal(t, filepath.Join(dir, "archive", "movements_2025-02-03_140509.xls"), outcome.ArchiveFile)
	assert.Contains(t, clean.Files, outcome.CleanFile)
	assert.NoFileExists(t, input)
	assert.FileExists(t, outcome.ArchiveFile)
	assert.DirExists(t, opts.OutputDir)

	result := outcome.Report.Result
	assert.Equal(t, int64(3000), result.TotalUnpaid)
	assert.Equal(t, int64(-3000), result.Difference)
	assert.Equal(t, 1, result.ExcludedCount)
	require.NotNil(t, outcome.Report.Ingestion)
	assert.Equal(t, 1, outcome.Report.Ingestion.DroppedNoDate)
	assert.Equal(t, input, outcome.Report.Source)

	assert.Contains(t, out.String(), "--- FINAL ANALYSIS REPORT ---")
	assert.Contains(t, out.String(), "$3.000")
}

func TestPipeline_ReconcileArchiveFailureContinues(t *testing.T) {
	dir := t.TempDir()
	// the input does not exist on disk, so archiving fails
	input := filepath.Join(dir, "gone.xlsx")

	norm := &MockNormalizer{}
	norm.On("Normalize", input).Return(statement(), models.NormalizeStats{}, nil)
	logger := logging.NewMockLogger()

	var out bytes.Buffer
	outcome, err := newPipeline(norm, store.NewMockCleanStore(), logger).Reconcile(common.ReconcileOptions{
		InputFile:    input,
		OutputDir:    dir,
		ArchiveDir:   filepath.Join(dir, "archive"),
		Prefix:       "march.xlsx",
		CleanFormat:  "csv",
		ReportFormat: report.FormatJSON,
	}, &out)
	require.NoError(t, err)

	assert.Empty(t, outcome.ArchiveFile)
	assert.Equal(t, filepath.Join(dir, "march_2025-02-03_140509.csv"), outcome.CleanFile)
	assert.True(t, logger.HasEntry("WARN", "Could not archive the input file, continuing"))
	assert.Contains(t, out.String(), `"total_unpaid": 3000`)
}

func TestPipeline_ReconcileNoArchive(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(input, []byte("raw"), 0600))

	norm := &MockNormalizer{}
	norm.On("Normalize", input).Return([]models.TransactionRecord{}, models.NormalizeStats{}, nil)

	var out bytes.Buffer
	outcome, err := newPipeline(norm, store.NewMockCleanStore(), logging.NewMockLogger()).Reconcile(common.ReconcileOptions{
		InputFile:   input,
		OutputDir:   dir,
		CleanFormat: "xlsx",
		NoArchive:   true,
	}, &out)
	require.NoError(t, err)
	assert.FileExists(t, input)
	assert.Empty(t, outcome.ArchiveFile)
	assert.True(t, outcome.Report.Result.AllPaid())
	assert.Contains(t, out.String(), "Congratulations")
}

func TestPipeline_ReconcileIngestionFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "broken.xlsx")
	require.NoError(t, os.WriteFile(input, []byte("raw"), 0600))

	cause := &parsererror.IngestionError{FilePath: input, Stage: parsererror.StageExtract, Err: errors.New("file only has 3 columns, 11 are needed")}
	norm := &MockNormalizer{}
	norm.On("Normalize", input).Return([]models.TransactionRecord(nil), models.NormalizeStats{}, cause)
	clean := store.NewMockCleanStore()

	var out bytes.Buffer
	_, err := newPipeline(norm, clean, logging.NewMockLogger()).Reconcile(common.ReconcileOptions{
		InputFile: input, OutputDir: dir, ArchiveDir: dir, CleanFormat: "xlsx",
	}, &out)

	assert.ErrorIs(t, err, common.ErrIngestion)
	var ingestion *parsererror.IngestionError
	assert.ErrorAs(t, err, &ingestion)
	assert.Empty(t, clean.Files, "nothing is saved after an ingestion failure")
	assert.FileExists(t, input, "the input is not archived after an ingestion failure")
	assert.Zero(t, out.Len())
}

func TestPipeline_ReconcileSaveFailure(t *testing.T) {
	dir := t.TempDir()
	norm := &MockNormalizer{}
	norm.On("Normalize", mock.Anything).Return(statement(), models.NormalizeStats{}, nil)
	clean := store.NewMockCleanStore()
	clean.SaveError = errors.New("disk full")

	_, err := newPipeline(norm, clean, logging.NewMockLogger()).Reconcile(common.ReconcileOptions{
		InputFile: filepath.Join(dir, "in.xlsx"), OutputDir: dir, CleanFormat: "xlsx", NoArchive: true,
	}, &bytes.Buffer{})
	assert.EqualError(t, err, "disk full")
	assert.NotErrorIs(t, err, common.ErrIngestion)
}

func TestPipeline_Normalize(t *testing.T) {
	norm := &MockNormalizer{}
	norm.On("Normalize", "in.xls").Return(statement(), models.NormalizeStats{RowsKept: 5}, nil)
	norm.On("Normalize", "bad.xls").Return([]models.TransactionRecord(nil), models.NormalizeStats{}, errors.New("boom"))
	clean := store.NewMockCleanStore()
	p := newPipeline(norm, clean, logging.NewMockLogger())

	stats, err := p.Normalize("in.xls", "out.csv")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.RowsKept)
	assert.Len(t, clean.Files["out.csv"], 5)

	_, err = p.Normalize("bad.xls", "out2.csv")
	assert.ErrorIs(t, err, common.ErrIngestion)
	assert.NotContains(t, clean.Files, "out2.csv")
}

func TestPipeline_Analyze(t *testing.T) {
	clean := store.NewMockCleanStore()
	require.NoError(t, clean.Save("clean.xlsx", statement()))
	p := newPipeline(&MockNormalizer{}, clean, logging.NewMockLogger())

	var out bytes.Buffer
	rep, err := p.Analyze("clean.xlsx", report.FormatYAML, &out)
	require.NoError(t, err)
	assert.Nil(t, rep.Ingestion)
	assert.Equal(t, 1, rep.Result.MatchedCount)
	assert.Contains(t, out.String(), "total_unpaid: 3000")

	clean.LoadError = errors.New("cannot read")
	_, err = p.Analyze("clean.xlsx", report.FormatText, &out)
	assert.EqualError(t, err, "cannot read")

	clean.LoadError = nil
	_, err = p.Analyze("clean.xlsx", "html", &out)
	assert.Error(t, err)
}

func TestReconcileOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Output.Directory = "data"
	cfg.Output.ArchiveDirectory = "processed-archive"
	cfg.Output.Prefix = "cleaned-movements"
	cfg.Output.Format = "xlsx"
	cfg.Report.Format = "yaml"

	assert.Equal(t, common.ReconcileOptions{
		InputFile:     "in.xls",
		OutputDir:     "data",
		ArchiveDir:    "processed-archive",
		Prefix:        "march",
		DefaultPrefix: "cleaned-movements",
		CleanFormat:   "xlsx",
		ReportFormat:  "yaml",
		NoArchive:     true,
	}, common.ReconcileOptionsFromConfig(cfg, "in.xls", "march", true))
}

func TestOpenReportWriter(t *testing.T) {
	var stdout bytes.Buffer
	w, err := common.OpenReportWriter("", &stdout)
	require.NoError(t, err)
	_, err = w.Write([]byte("to stdout"))
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.Equal(t, "to stdout", stdout.String())

	path := filepath.Join(t.TempDir(), "reports", "run.txt")
	w, err = common.OpenReportWriter(path, &stdout)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}
