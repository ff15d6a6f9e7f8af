// Package dateutils parses statement dates, which are day-first, and renders
// them back in the DD/MM/YYYY form used by the cleaned files.
package dateutils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	DateLayoutDayFirst = "02/01/2006"
	DateLayoutISO      = "2006-01-02"
	DateLayoutFull     = "2006-01-02 15:04:05"
)

// ErrEmptyDate is returned for blank input.
var ErrEmptyDate = errors.New("empty date")

// Serial numbers outside this range are not treated as Excel dates.
const (
	minExcelSerial = 1000    // 1902-09-26
	maxExcelSerial = 2958465 // 9999-12-31
)

// excelSerial only admits plain serials with at least four integer digits,
// so display strings such as "2025.01" are never read as day counts.
var excelSerial = regexp.MustCompile(`^\d{4,}(\.\d+)?$`)

// dayFirstFormats is tried in order. Ambiguous inputs like 03/04/2025 are
// always read as 3 April.
var dayFirstFormats = []string{
	DateLayoutDayFirst,
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"02/01/06",
	"02-01-06",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02-01-2006 15:04:05",
	DateLayoutISO,
	DateLayoutFull,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2-Jan-06",
}

var spaces = regexp.MustCompile(`\s+`)

// ParseDayFirst parses a statement date. Excel serial numbers are accepted
// as well, since spreadsheet cells read raw carry dates that way. The
// result is truncated to midnight UTC.
func ParseDayFirst(dateStr string) (time.Time, error) {
	clean := CleanDateString(dateStr)
	if clean == "" {
		return time.Time{}, ErrEmptyDate
	}

	for _, layout := range dayFirstFormats {
		if t, err := time.Parse(layout, clean); err == nil {
			return StartOfDay(t), nil
		}
	}

	if excelSerial.MatchString(clean) {
		serial, err := strconv.ParseFloat(clean, 64)
		if err == nil && serial >= minExcelSerial && serial <= maxExcelSerial {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err == nil {
				return StartOfDay(t), nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// FormatDayFirst renders DD/MM/YYYY, or "" for the zero time.
func FormatDayFirst(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(DateLayoutDayFirst)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// StartOfDay keeps the calendar day of t at midnight UTC.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
