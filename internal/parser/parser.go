// Package parser defines the contract shared by statement parsers.
package parser

import (
	"fjacquet/card-recon/internal/models"
)

// Parser turns one statement file into canonical records.
//
// Implementations apply the ingestion leniency rules (rows without a date
// are dropped, unreadable amounts become 0) and report what they coerced in
// the returned stats. Errors that prevent reading the file at all are
// returned as *parsererror.IngestionError.
type Parser interface {
	Parse(filePath string) ([]models.TransactionRecord, models.NormalizeStats, error)
}

// Normalizer picks the parser for a statement and runs it. It is the
// ingestion entry point used by the single-file pipeline and batch runs.
type Normalizer interface {
	Normalize(filePath string) ([]models.TransactionRecord, models.NormalizeStats, error)
}

// Func adapts a function to the Parser interface.
type Func func(filePath string) ([]models.TransactionRecord, models.NormalizeStats, error)

// Parse calls f.
func (f Func) Parse(filePath string) ([]models.TransactionRecord, models.NormalizeStats, error) {
	return f(filePath)
}
