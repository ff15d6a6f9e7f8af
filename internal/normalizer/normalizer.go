// Package normalizer turns raw card statements (.xls, .xlsx, .csv exports
// and .ofx/.qfx downloads) into canonical transaction records.
package normalizer

import (
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/card-recon/internal/config"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/models"
	"fjacquet/card-recon/internal/parser"
	"fjacquet/card-recon/internal/parsererror"
)

// Options describes the raw statement layout.
type Options struct {
	// RowsToSkip leading rows are banner/metadata and never data.
	RowsToSkip int
	Columns    config.Columns
	Delimiter  rune
	// SingleInstallmentToken is stamped on OFX records, which carry no
	// installment plan.
	SingleInstallmentToken string
}

// OptionsFromConfig extracts the normalizer options from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RowsToSkip:             cfg.Ingest.RowsToSkip,
		Columns:                cfg.Ingest.Columns,
		Delimiter:              cfg.DelimiterRune(),
		SingleInstallmentToken: cfg.Analysis.SingleInstallmentToken,
	}
}

var _ parser.Normalizer = (*Normalizer)(nil)

// Normalizer picks a parser by file extension and runs it.
type Normalizer struct {
	opts   Options
	logger logging.Logger
}

// New creates a Normalizer.
func New(opts Options, logger logging.Logger) *Normalizer {
	return &Normalizer{opts: opts, logger: logger}
}

// ParserFor returns the parser handling filePath's extension.
func (n *Normalizer) ParserFor(filePath string) (parser.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case models.FormatXLS:
		return NewTabularParser("xls", readXLS, n.opts, n.logger), nil
	case models.FormatXLSX:
		return NewTabularParser("xlsx", readXLSX, n.opts, n.logger), nil
	case models.FormatCSV:
		return NewTabularParser("csv", csvReader(n.opts.Delimiter), n.opts, n.logger), nil
	case models.FormatOFX, models.FormatQFX:
		return NewOFXParser(n.opts.SingleInstallmentToken, n.logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", parsererror.ErrUnsupportedFormat, ext)
	}
}

// Normalize reads filePath into canonical records. Any error is an
// *parsererror.IngestionError, and no records are returned with it.
func (n *Normalizer) Normalize(filePath string) ([]models.TransactionRecord, models.NormalizeStats, error) {
	p, err := n.ParserFor(filePath)
	if err != nil {
		return nil, models.NormalizeStats{}, parsererror.Wrap(filePath, parsererror.StageOpen, err)
	}

	records, stats, err := p.Parse(filePath)
	if err != nil {
		return nil, models.NormalizeStats{}, parsererror.Wrap(filePath, parsererror.StageRead, err)
	}

	n.logger.Info("Normalized statement",
		logging.F(logging.FieldInputFile, filePath),
		logging.F(logging.FieldCount, stats.RowsKept),
		logging.F("dropped_no_date", stats.DroppedNoDate),
		logging.F("coerced_amounts", stats.CoercedAmounts))
	return records, stats, nil
}
