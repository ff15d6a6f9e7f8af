// Package parsererror holds the typed errors raised while ingesting a card
// statement and persisting its cleaned form.
package parsererror

import (
	"errors"
	"fmt"
)

// Ingestion stages reported by IngestionError.
const (
	StageOpen    = "open"
	StageRead    = "read"
	StageExtract = "extract"
	StageSave    = "save"
	StageLoad    = "load"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported statement format")
	// ErrEmptyWorkbook is returned when a workbook has no sheets.
	ErrEmptyWorkbook = errors.New("workbook has no sheets")
)

// IngestionError wraps any failure that prevents a statement from being
// turned into records. It is fatal for the run that raised it.
type IngestionError struct {
	FilePath string
	Stage    string
	Err      error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed for %s at %s stage: %v", e.FilePath, e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// ParseError represents a single value that could not be parsed.
type ParseError struct {
	Source string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Source, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents a file rejected before reading.
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

// InvalidFormatError means the file is readable but its layout is not the
// one expected, e.g. the sheet has fewer columns than the configured
// positions require.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// DataExtractionError reports a required field that could not be read from
// a specific row.
type DataExtractionError struct {
	FilePath  string
	FieldName string
	Row       int
	Reason    string
}

func (e *DataExtractionError) Error() string {
	return fmt.Sprintf("data extraction failed in file '%s' for field '%s' at row %d: %s",
		e.FilePath, e.FieldName, e.Row, e.Reason)
}

// Wrap builds an IngestionError unless err is nil or already one.
func Wrap(filePath, stage string, err error) error {
	if err == nil {
		return nil
	}
	var ingestion *IngestionError
	if errors.As(err, &ingestion) {
		return err
	}
	return &IngestionError{FilePath: filePath, Stage: stage, Err: err}
}
