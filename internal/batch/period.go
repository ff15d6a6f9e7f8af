package batch

import (
	"time"

	"fjacquet/card-recon/internal/dateutils"
	"fjacquet/card-recon/internal/models"
)

// DateRange is the statement period covered by a file's records.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the range as "YYYY-MM-DD_YYYY-MM-DD", or "" when unknown.
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return dateutils.ToISODate(dr.Start) + "_" + dateutils.ToISODate(dr.End)
}

// Merge combines this date range with another, returning the overall range
func (dr DateRange) Merge(other DateRange) DateRange {
	start := dr.Start
	end := dr.End

	if dr.Start.IsZero() {
		start = other.Start
	} else if !other.Start.IsZero() && other.Start.Before(start) {
		start = other.Start
	}

	if dr.End.IsZero() {
		end = other.End
	} else if !other.End.IsZero() && other.End.After(end) {
		end = other.End
	}

	return DateRange{Start: start, End: end}
}

// PeriodOf returns the earliest and latest record dates.
func PeriodOf(records []models.TransactionRecord) DateRange {
	var dr DateRange
	for _, r := range records {
		dr = dr.Merge(DateRange{Start: r.Date, End: r.Date})
	}
	return dr
}
