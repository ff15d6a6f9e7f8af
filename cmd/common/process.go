// Package common contains the pipelines shared by the command handlers.
package common

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"fjacquet/card-recon/internal/config"
	"fjacquet/card-recon/internal/container"
	"fjacquet/card-recon/internal/fileutils"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/models"
	"fjacquet/card-recon/internal/parser"
	"fjacquet/card-recon/internal/reconciler"
	"fjacquet/card-recon/internal/report"
	"fjacquet/card-recon/internal/store"
)

// ErrIngestion marks failures reading the raw statement. Nothing is
// reconciled after it.
var ErrIngestion = errors.New("ingestion failed")

// Pipeline runs the single-file workflows.
type Pipeline struct {
	Normalizer parser.Normalizer
	Store      store.CleanStore
	Generator  *report.ReportGenerator
	Classifier reconciler.ClassifierConfig
	Logger     logging.Logger
	// Now stamps output names; time.Now when nil.
	Now func() time.Time
}

// NewPipeline builds a Pipeline from the application container.
func NewPipeline(c *container.Container) *Pipeline {
	return &Pipeline{
		Normalizer: c.GetNormalizer(),
		Store:      c.GetStore(),
		Generator:  c.GetReportGenerator(),
		Classifier: c.GetClassifierConfig(),
		Logger:     c.GetLogger(),
	}
}

// ReconcileOptions describes one full reconciliation run.
type ReconcileOptions struct {
	InputFile     string
	OutputDir     string
	ArchiveDir    string
	Prefix        string
	DefaultPrefix string
	// CleanFormat is the cleaned file format without the dot, xlsx or csv.
	CleanFormat  string
	ReportFormat string
	NoArchive    bool
}

// ReconcileOptionsFromConfig fills the output locations from cfg. prefix is
// the user supplied clean file prefix and may be empty.
func ReconcileOptionsFromConfig(cfg *config.Config, input, prefix string, noArchive bool) ReconcileOptions {
	return ReconcileOptions{
		InputFile:     input,
		OutputDir:     cfg.Output.Directory,
		ArchiveDir:    cfg.Output.ArchiveDirectory,
		Prefix:        prefix,
		DefaultPrefix: cfg.Output.Prefix,
		CleanFormat:   cfg.Output.Format,
		ReportFormat:  cfg.Report.Format,
		NoArchive:     noArchive,
	}
}

// Outcome lists what a reconciliation run produced.
type Outcome struct {
	CleanFile   string
	ArchiveFile string
	Report      *report.Report
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Reconcile normalizes the raw statement into a timestamped clean file,
// archives the input, reconciles the clean file and writes the report to w.
// A failed archive is logged and the run continues.
func (p *Pipeline) Reconcile(opts ReconcileOptions, w io.Writer) (*Outcome, error) {
	ts := fileutils.Timestamp(p.now())
	out := &Outcome{
		CleanFile: fileutils.CleanOutputPath(opts.OutputDir, opts.Prefix, opts.DefaultPrefix, opts.CleanFormat, ts),
	}
	log := p.Logger.WithField(logging.FieldInputFile, opts.InputFile)

	if err := fileutils.EnsureDirectoryExists(opts.OutputDir); err != nil {
		return nil, err
	}

	records, stats, err := p.Normalizer.Normalize(opts.InputFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIngestion, err)
	}
	if err := p.Store.Save(out.CleanFile, records); err != nil {
		return nil, err
	}

	if !opts.NoArchive {
		archive := fileutils.ArchivePath(opts.ArchiveDir, opts.InputFile, ts)
		if err := fileutils.ArchiveFile(opts.InputFile, archive); err != nil {
			log.WithError(err).Warn("Could not archive the input file, continuing",
				logging.F(logging.FieldArchiveFile, archive))
		} else {
			out.ArchiveFile = archive
			log.Info("Input archived", logging.F(logging.FieldArchiveFile, archive))
		}
	}

	rep, err := p.analyze(out.CleanFile, opts.InputFile, &stats, opts.ReportFormat, w)
	if err != nil {
		return nil, err
	}
	out.Report = rep
	return out, nil
}

// Normalize converts the raw statement at input into the clean file at
// output, whose extension picks the format.
func (p *Pipeline) Normalize(input, output string) (models.NormalizeStats, error) {
	records, stats, err := p.Normalizer.Normalize(input)
	if err != nil {
		return models.NormalizeStats{}, fmt.Errorf("%w: %w", ErrIngestion, err)
	}
	if err := p.Store.Save(output, records); err != nil {
		return models.NormalizeStats{}, err
	}
	return stats, nil
}

// Analyze reconciles an existing clean file and writes the report to w.
func (p *Pipeline) Analyze(cleanFile, reportFormat string, w io.Writer) (*report.Report, error) {
	return p.analyze(cleanFile, cleanFile, nil, reportFormat, w)
}

func (p *Pipeline) analyze(cleanFile, source string, stats *models.NormalizeStats, reportFormat string, w io.Writer) (*report.Report, error) {
	records, _, err := p.Store.Load(cleanFile)
	if err != nil {
		return nil, err
	}

	result := reconciler.Reconcile(records, p.Classifier)
	p.Logger.Info("Reconciliation finished",
		logging.F(logging.FieldFile, cleanFile),
		logging.F(logging.FieldPaymentCount, result.PaymentCount),
		logging.F(logging.FieldPurchaseCnt, result.PurchaseCount),
		logging.F(logging.FieldUnpaidCount, len(result.UnpaidPurchases)))

	rep := report.NewReport(source, result, stats)
	if err := p.Generator.WriteReport(w, rep, reportFormat); err != nil {
		return nil, err
	}
	return rep, nil
}

// OpenReportWriter returns stdout for an empty path, otherwise the created
// file. Closing stdout is a no-op.
func OpenReportWriter(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}
	if err := fileutils.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, models.PermissionReportFile) // #nosec G304 -- CLI tool requires user-provided output paths
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
