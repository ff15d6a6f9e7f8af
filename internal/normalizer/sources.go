package normalizer

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"fjacquet/card-recon/internal/parsererror"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// xlsFormulaCell is the xls reader's placeholder for formula cells, whose
// cached results it does not expose. Such cells are read as blank.
const xlsFormulaCell = "FormulaCol"

// readXLS loads the first sheet of a legacy BIFF workbook. Number formats
// are reset to General first, so numeric cells come back as raw values and
// dates as serial numbers, like the xlsx reader.
func readXLS(filePath string) ([][]string, error) {
	wb, err := xls.Open(filePath, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("error opening xls workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, parsererror.ErrEmptyWorkbook
	}
	rawNumberFormats(wb)

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, parsererror.ErrEmptyWorkbook
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			if v := row.Col(c); v != xlsFormulaCell {
				cells[c] = v
			}
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// rawNumberFormats points every cell style at the General format. The xls
// reader renders date and user-defined formats as partial dates ("2006.01"
// or RFC 3339), which loses the day and turns amounts into timestamps.
func rawNumberFormats(wb *xls.WorkBook) {
	for _, xf := range wb.Xfs {
		switch x := xf.(type) {
		case *xls.Xf8:
			x.Format = 0
		case *xls.Xf5:
			x.Format = 0
		}
	}
}

// readXLSX loads the first sheet of an Office Open XML workbook. Cells are
// read raw, so dates arrive as serial numbers.
func readXLSX(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening xlsx workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parsererror.ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// csvReader returns a gridReader for delimited exports. Rows may have
// varying widths since banner lines rarely match the table.
func csvReader(delimiter rune) gridReader {
	return func(filePath string) ([][]string, error) {
		file, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("error opening CSV file: %w", err)
		}
		defer func() { _ = file.Close() }()

		reader := csv.NewReader(file)
		reader.Comma = delimiter
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("error parsing CSV file: %w", err)
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
		}
		return rows, nil
	}
}
