package normalizer

import (
	"fmt"
	"strings"

	"fjacquet/card-recon/internal/common"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/models"
	"fjacquet/card-recon/internal/parser"
	"fjacquet/card-recon/internal/parsererror"
)

// gridReader loads every row of the first sheet of a file as strings.
type gridReader func(filePath string) ([][]string, error)

// TabularParser extracts records from spreadsheet-like statements by column
// position.
type TabularParser struct {
	parser.BaseParser
	read gridReader
	opts Options
}

// NewTabularParser creates a parser reading cells with read.
func NewTabularParser(name string, read gridReader, opts Options, logger logging.Logger) *TabularParser {
	return &TabularParser{
		BaseParser: parser.NewBaseParser(name, logger),
		read:       read,
		opts:       opts,
	}
}

// Parse implements parser.Parser.
func (p *TabularParser) Parse(filePath string) ([]models.TransactionRecord, models.NormalizeStats, error) {
	grid, err := p.read(filePath)
	if err != nil {
		return nil, models.NormalizeStats{}, parsererror.Wrap(filePath, parsererror.StageRead, err)
	}
	return p.extract(filePath, grid)
}

func (p *TabularParser) extract(filePath string, grid [][]string) ([]models.TransactionRecord, models.NormalizeStats, error) {
	skipped := min(p.opts.RowsToSkip, len(grid))
	body := grid[skipped:]

	width := 0
	for _, row := range body {
		width = max(width, len(row))
	}
	needed := p.opts.Columns.Max() + 1
	if width < needed {
		return nil, models.NormalizeStats{}, parsererror.Wrap(filePath, parsererror.StageExtract, &parsererror.InvalidFormatError{
			FilePath:       filePath,
			ExpectedFormat: fmt.Sprintf("card statement with at least %d columns after %d banner rows", needed, p.opts.RowsToSkip),
			Msg:            fmt.Sprintf("file only has %d columns, %d are needed", width, needed),
		})
	}

	builder := common.NewRecordBuilder(filePath, p.GetLogger())
	builder.Stats.SkippedMetadata = skipped

	cols := p.opts.Columns
	records := make([]models.TransactionRecord, 0, len(body))
	for i, row := range body {
		raw := models.CleanRow{
			Date:               cell(row, cols.Date),
			CardType:           cell(row, cols.CardType),
			Description:        cell(row, cols.Description),
			City:               cell(row, cols.City),
			InstallmentPlan:    cell(row, cols.Installments),
			InstallmentPlanAlt: cell(row, cols.Installments2),
			Amount:             cell(row, cols.Amount),
		}
		if rec, ok := builder.Build(raw, skipped+i+1); ok {
			records = append(records, rec)
		}
	}

	p.GetLogger().Debug("Extracted rows",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(records)))
	return records, builder.Stats, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
