package parser

import (
	"fjacquet/card-recon/internal/logging"
)

// BaseParser carries the logger shared by parser implementations, which
// embed it:
//
//	type XLSXParser struct {
//		parser.BaseParser
//	}
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser creates a BaseParser tagged with the parser name. A nil
// logger falls back to an info-level text logger.
func NewBaseParser(name string, logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return BaseParser{
		logger: logger.WithField("parser", name),
	}
}

// GetLogger returns the current logger instance.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}
