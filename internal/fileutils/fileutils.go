// Package fileutils provides the file operations around a reconciliation
// run: timestamped output names, directory setup and archiving the input.
package fileutils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"fjacquet/card-recon/internal/models"
)

// TimestampLayout formats run timestamps as YYYY-MM-DD_HHMMSS.
const TimestampLayout = "2006-01-02_150405"

// ArchivePrefix names archived inputs: movements_<timestamp><ext>.
const ArchivePrefix = "movements"

// Timestamp renders t for use in file names.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// CleanOutputPath builds <dir>/<prefix>_<timestamp>.<format>. A prefix that
// carries an extension (e.g. "march.xlsx") has it stripped; an empty prefix
// falls back to defaultPrefix.
func CleanOutputPath(dir, prefix, defaultPrefix, format, timestamp string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	prefix = strings.TrimSuffix(filepath.Base(prefix), filepath.Ext(prefix))
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", prefix, timestamp, strings.TrimPrefix(format, ".")))
}

// ArchivePath builds <dir>/movements_<timestamp><ext of input>.
func ArchivePath(dir, inputPath, timestamp string) string {
	return filepath.Join(dir, ArchivePrefix+"_"+timestamp+strings.ToLower(filepath.Ext(inputPath)))
}

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates dirPath and its parents when missing.
func EnsureDirectoryExists(dirPath string) error {
	if dirPath == "" || DirectoryExists(dirPath) {
		return nil
	}
	if err := os.MkdirAll(dirPath, models.PermissionDirectory); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// ArchiveFile moves src to dst, creating dst's directory. When a rename is
// not possible across devices the file is copied and the source removed.
func ArchiveFile(src, dst string) error {
	if !FileExists(src) {
		return fmt.Errorf("file does not exist: %s", src)
	}
	if err := EnsureDirectoryExists(filepath.Dir(dst)); err != nil {
		return err
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("failed to archive %s: %w", src, err)
	}

	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("failed to archive %s: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("archived %s but could not remove it: %w", src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, models.PermissionReportFile)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// ListFilesWithExtensions returns the regular files directly inside dirPath
// whose extension (case-insensitive) is one of extensions, sorted by name.
func ListFilesWithExtensions(dirPath string, extensions ...string) ([]string, error) {
	if !DirectoryExists(dirPath) {
		return nil, fmt.Errorf("directory does not exist: %s", dirPath)
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if wanted[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dirPath, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
