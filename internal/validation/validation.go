// Package validation checks command inputs before any work starts.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/card-recon/internal/models"
	"fjacquet/card-recon/internal/parsererror"
)

// StatementExtensions lists the raw statement formats accepted for ingestion.
var StatementExtensions = []string{
	models.FormatXLS,
	models.FormatXLSX,
	models.FormatCSV,
	models.FormatOFX,
	models.FormatQFX,
}

// CleanExtensions lists the formats a cleaned movements file may have.
var CleanExtensions = []string{
	models.FormatXLSX,
	models.FormatCSV,
}

// ValidateInputFile checks that path names an existing regular file whose
// extension is one of allowed.
func ValidateInputFile(path string, allowed []string) error {
	if path == "" {
		return &parsererror.ValidationError{FilePath: path, Reason: "no input file given"}
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &parsererror.ValidationError{FilePath: path, Reason: "file does not exist"}
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return &parsererror.ValidationError{FilePath: path, Reason: "not a regular file"}
	}

	if !HasExtension(path, allowed) {
		return &parsererror.ValidationError{
			FilePath: path,
			Reason:   fmt.Sprintf("unsupported extension %q, expected one of %s", filepath.Ext(path), strings.Join(allowed, ", ")),
		}
	}
	return nil
}

// ValidateInputDir checks that path names an existing directory.
func ValidateInputDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &parsererror.ValidationError{FilePath: path, Reason: "directory does not exist"}
	}
	if !info.IsDir() {
		return &parsererror.ValidationError{FilePath: path, Reason: "not a directory"}
	}
	return nil
}

// HasExtension reports whether path ends in one of extensions, ignoring case.
func HasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsValidReportFormat checks if the given report format is supported.
func IsValidReportFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported report format: %s. Supported formats are 'text', 'json', 'yaml'", format)
	}
}
