// Package batch reconciles every statement found in a directory, each file
// independently, with a bounded number of files in flight.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/card-recon/internal/fileutils"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/models"
	"fjacquet/card-recon/internal/parser"
	"fjacquet/card-recon/internal/reconciler"
	"fjacquet/card-recon/internal/report"
	"fjacquet/card-recon/internal/validation"

	"golang.org/x/sync/errgroup"
)

// Options configures a Runner.
type Options struct {
	Workers      int
	ReportFormat string
	Classifier   reconciler.ClassifierConfig
}

// FileResult is the outcome for one statement. Err is set when the file
// could not be ingested or its report could not be written.
type FileResult struct {
	InputFile  string
	ReportFile string
	Period     DateRange
	Stats      models.NormalizeStats
	Result     models.MatchResult
	Err        error
}

// Summary collects the per-file results in input order.
type Summary struct {
	Files     []FileResult
	Succeeded int
	Failed    int
	// Period spans every successfully ingested statement.
	Period DateRange
}

// Runner processes statement directories.
type Runner struct {
	normalizer parser.Normalizer
	generator  *report.ReportGenerator
	opts       Options
	logger     logging.Logger
}

// NewRunner creates a Runner. Workers below 1 are treated as 1.
func NewRunner(normalizer parser.Normalizer, generator *report.ReportGenerator, opts Options, logger logging.Logger) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{
		normalizer: normalizer,
		generator:  generator,
		opts:       opts,
		logger:     logger,
	}
}

// ReportPath returns <outputDir>/<input base name>_report.<ext> where ext
// follows the report format (txt for text).
func ReportPath(outputDir, inputFile, format string) string {
	base := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	ext := format
	if format == report.FormatText || format == "" {
		ext = "txt"
	}
	return filepath.Join(outputDir, base+"_report."+ext)
}

// Run reconciles every supported statement directly inside inputDir and
// writes one report per file into outputDir. A failing file is recorded in
// the summary and does not stop the others. The returned error is reserved
// for problems with the directories themselves or a cancelled context.
func (r *Runner) Run(ctx context.Context, inputDir, outputDir string) (Summary, error) {
	files, err := fileutils.ListFilesWithExtensions(inputDir, validation.StatementExtensions...)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list statements: %w", err)
	}
	if err := fileutils.EnsureDirectoryExists(outputDir); err != nil {
		return Summary{}, err
	}

	r.logger.Info("Starting batch reconciliation",
		logging.F(logging.FieldInputFile, inputDir),
		logging.F(logging.FieldOutputFile, outputDir),
		logging.F(logging.FieldCount, len(files)),
		logging.F(logging.FieldWorkers, r.opts.Workers))
	started := time.Now()

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{InputFile: file, Err: err}
				return err
			}
			results[i] = r.processFile(file, outputDir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summarize(results), fmt.Errorf("batch interrupted: %w", err)
	}

	summary := summarize(results)
	r.logger.Info("Batch reconciliation completed",
		logging.F(logging.FieldCount, len(files)),
		logging.F("succeeded", summary.Succeeded),
		logging.F("failed", summary.Failed),
		logging.F("period", summary.Period.String()),
		logging.F(logging.FieldDuration, time.Since(started).Milliseconds()))
	return summary, nil
}

func (r *Runner) processFile(file, outputDir string) FileResult {
	res := FileResult{InputFile: file}
	log := r.logger.WithField(logging.FieldInputFile, file)

	records, stats, err := r.normalizer.Normalize(file)
	if err != nil {
		log.WithError(err).Error("Failed to ingest statement")
		res.Err = err
		return res
	}
	res.Stats = stats
	res.Period = PeriodOf(records)
	res.Result = reconciler.Reconcile(records, r.opts.Classifier)

	rendered, err := r.generator.GenerateReport(report.NewReport(file, res.Result, &stats), r.opts.ReportFormat)
	if err != nil {
		res.Err = err
		return res
	}
	res.ReportFile = ReportPath(outputDir, file, r.opts.ReportFormat)
	if err := os.WriteFile(res.ReportFile, rendered, models.PermissionReportFile); err != nil {
		log.WithError(err).Error("Failed to write report")
		res.Err = fmt.Errorf("failed to write report %s: %w", res.ReportFile, err)
		return res
	}

	log.Info("Statement reconciled",
		logging.F(logging.FieldOutputFile, res.ReportFile),
		logging.F(logging.FieldUnpaidCount, len(res.Result.UnpaidPurchases)),
		logging.F(logging.FieldPaymentCount, res.Result.PaymentCount),
		logging.F(logging.FieldPurchaseCnt, res.Result.PurchaseCount))
	return res
}

func summarize(results []FileResult) Summary {
	s := Summary{Files: results}
	for _, res := range results {
		if res.Err != nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.Period = s.Period.Merge(res.Period)
	}
	return s
}

// Text renders a short per-file overview of the batch.
func (s Summary) Text() string {
	var buf bytes.Buffer
	for _, res := range s.Files {
		if res.Err != nil {
			fmt.Fprintf(&buf, "FAILED  %s: %v\n", filepath.Base(res.InputFile), res.Err)
			continue
		}
		fmt.Fprintf(&buf, "OK      %s: %d unpaid, difference %d -> %s\n",
			filepath.Base(res.InputFile), len(res.Result.UnpaidPurchases), res.Result.Difference, res.ReportFile)
	}
	fmt.Fprintf(&buf, "%d succeeded, %d failed\n", s.Succeeded, s.Failed)
	return buf.String()
}
