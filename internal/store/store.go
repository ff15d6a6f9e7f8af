// Package store persists canonical records as the cleaned movements file and
// reads them back for analysis.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fjacquet/card-recon/internal/common"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/models"
	"fjacquet/card-recon/internal/parsererror"

	"github.com/xuri/excelize/v2"
)

// CleanStore reads and writes cleaned movements files. The format follows
// the file extension: .xlsx or .csv.
type CleanStore interface {
	Save(path string, records []models.TransactionRecord) error
	Load(path string) ([]models.TransactionRecord, models.NormalizeStats, error)
}

// FileStore is the CleanStore backed by the local file system.
type FileStore struct {
	logger    logging.Logger
	delimiter rune
}

// NewFileStore returns a FileStore writing CSV with delimiter.
func NewFileStore(logger logging.Logger, delimiter rune) *FileStore {
	return &FileStore{logger: logger, delimiter: delimiter}
}

// Save writes records in the cleaned layout to path.
func (s *FileStore) Save(path string, records []models.TransactionRecord) error {
	rows := make([]models.CleanRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, common.ToCleanRow(r))
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case models.FormatXLSX:
		err = s.saveXLSX(path, rows)
	case models.FormatCSV:
		err = common.WriteCSVFile(path, rows, s.delimiter, s.logger)
	default:
		err = fmt.Errorf("%w: %s", parsererror.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return parsererror.Wrap(path, parsererror.StageSave, err)
	}

	s.logger.Info("Saved cleaned movements",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(rows)))
	return nil
}

// Load reads a cleaned movements file. Rows are validated again with the
// same leniency as ingestion, so a hand-edited file cannot inject bad dates.
func (s *FileStore) Load(path string) ([]models.TransactionRecord, models.NormalizeStats, error) {
	var (
		rows []models.CleanRow
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case models.FormatXLSX:
		rows, err = s.loadXLSX(path)
	case models.FormatCSV:
		rows, err = common.ReadCSVFile[models.CleanRow](path, s.delimiter, s.logger)
	default:
		err = fmt.Errorf("%w: %s", parsererror.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, models.NormalizeStats{}, parsererror.Wrap(path, parsererror.StageLoad, err)
	}

	builder := common.NewRecordBuilder(path, s.logger)
	records := make([]models.TransactionRecord, 0, len(rows))
	for i, row := range rows {
		// line 1 is the header
		if rec, ok := builder.Build(row, i+2); ok {
			records = append(records, rec)
		}
	}

	s.logger.Info("Loaded cleaned movements",
		logging.F(logging.FieldInputFile, path),
		logging.F(logging.FieldCount, len(records)))
	return records, builder.Stats, nil
}

func (s *FileStore) saveXLSX(path string, rows []models.CleanRow) error {
	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), models.CleanSheetName); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}

	header := make([]interface{}, len(models.CleanHeader))
	for i, h := range models.CleanHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(models.CleanSheetName, "A1", &header); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, 0, len(models.CleanHeader))
		for _, v := range row.Values()[:len(models.CleanHeader)-1] {
			values = append(values, v)
		}
		// amounts stay numeric so the sheet can be summed in a spreadsheet
		if amount, err := strconv.ParseInt(row.Amount, 10, 64); err == nil {
			values = append(values, amount)
		} else {
			values = append(values, row.Amount)
		}
		if err := f.SetSheetRow(models.CleanSheetName, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error saving workbook: %w", err)
	}
	return nil
}

func (s *FileStore) loadXLSX(path string) ([]models.CleanRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parsererror.ErrEmptyWorkbook
	}
	sheet := sheets[0]
	if idx, err := f.GetSheetIndex(models.CleanSheetName); err == nil && idx >= 0 {
		sheet = models.CleanSheetName
	}

	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return []models.CleanRow{}, nil
	}

	index, err := headerIndex(path, grid[0])
	if err != nil {
		return nil, err
	}

	rows := make([]models.CleanRow, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		get := func(name string) string {
			i := index[name]
			if i < len(cells) {
				return cells[i]
			}
			return ""
		}
		rows = append(rows, models.CleanRow{
			Date:               get("Date"),
			CardType:           get("Card Type"),
			Description:        get("Description"),
			City:               get("City"),
			InstallmentPlan:    get("Installments"),
			InstallmentPlanAlt: get("Installments 2"),
			Amount:             get("Amount ($)"),
		})
	}
	return rows, nil
}

// headerIndex maps clean column names to positions. Installments 2 is
// optional; every other column must be present.
func headerIndex(path string, header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	for _, name := range models.CleanHeader {
		if _, ok := index[name]; ok {
			continue
		}
		if name == "Installments 2" {
			index[name] = len(header)
			continue
		}
		return nil, &parsererror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: strings.Join(models.CleanHeader, ", "),
			Msg:            fmt.Sprintf("missing column %q", name),
		}
	}
	return index, nil
}
