package common

import (
	"strconv"
	"strings"

	"fjacquet/card-recon/internal/currencyutils"
	"fjacquet/card-recon/internal/dateutils"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/models"
	"fjacquet/card-recon/internal/parsererror"
)

// RecordBuilder turns string rows into canonical records, applying the
// leniency rules for bad cells: a row whose date cannot be read is dropped,
// an amount that cannot be read becomes 0. Every such case is counted in
// Stats and logged at WARN.
type RecordBuilder struct {
	Source string
	Logger logging.Logger
	Stats  models.NormalizeStats
}

// NewRecordBuilder returns a builder for rows read from source.
func NewRecordBuilder(source string, logger logging.Logger) *RecordBuilder {
	return &RecordBuilder{Source: source, Logger: logger}
}

// Build converts row, reported as line in diagnostics. The second result is
// false when the row was dropped. Fully blank rows are ignored without being
// counted.
func (b *RecordBuilder) Build(row models.CleanRow, line int) (models.TransactionRecord, bool) {
	if isBlank(row) {
		return models.TransactionRecord{}, false
	}
	b.Stats.RowsRead++

	date, err := dateutils.ParseDayFirst(row.Date)
	if err != nil {
		b.Stats.DroppedNoDate++
		b.Logger.WithError(&parsererror.DataExtractionError{
			FilePath:  b.Source,
			FieldName: "Date",
			Row:       line,
			Reason:    err.Error(),
		}).Warn("Dropping row without a valid date",
			logging.F(logging.FieldFile, b.Source),
			logging.F(logging.FieldRow, line),
			logging.F(logging.FieldValue, row.Date))
		return models.TransactionRecord{}, false
	}

	amount, err := currencyutils.ParseWholeAmount(row.Amount)
	if err != nil {
		b.Stats.CoercedAmounts++
		b.Logger.WithError(&parsererror.ParseError{
			Source: b.Source,
			Field:  "Amount",
			Value:  row.Amount,
			Err:    err,
		}).Warn("Amount could not be parsed, using 0",
			logging.F(logging.FieldFile, b.Source),
			logging.F(logging.FieldRow, line),
			logging.F(logging.FieldValue, row.Amount))
		amount = 0
	}

	b.Stats.RowsKept++
	return models.TransactionRecord{
		Date:               date,
		CardType:           strings.TrimSpace(row.CardType),
		Description:        strings.TrimSpace(row.Description),
		City:               strings.TrimSpace(row.City),
		InstallmentPlan:    strings.TrimSpace(row.InstallmentPlan),
		InstallmentPlanAlt: strings.TrimSpace(row.InstallmentPlanAlt),
		Amount:             amount,
	}, true
}

// ToCleanRow renders a record in the cleaned file layout.
func ToCleanRow(r models.TransactionRecord) models.CleanRow {
	return models.CleanRow{
		Date:               dateutils.FormatDayFirst(r.Date),
		CardType:           r.CardType,
		Description:        r.Description,
		City:               r.City,
		InstallmentPlan:    r.InstallmentPlan,
		InstallmentPlanAlt: r.InstallmentPlanAlt,
		Amount:             strconv.FormatInt(r.Amount, 10),
	}
}

func isBlank(row models.CleanRow) bool {
	for _, v := range row.Values() {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
