// =============================================================================
// Finance Reconciler - File Utilities
// =============================================================================
//
// Shared file-level helpers used by the candidate selector, the clean-report
// step, and the CLI:
//   - Filename date extraction (dated document convention)
//   - Timestamped renaming for collision-free output files
//   - Backup copies before in-place mutation
//
// FILENAME DATE CONVENTION:
//   Document files carry an 8-digit date substring in their name, e.g.
//   "admin_orders_20251115_output.xlsx" or "Income.20251101.xlsx". The first
//   8-digit run that parses as a valid YYYYMMDD date is the document date.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// datePattern matches an 8-digit run in a file name.
var datePattern = regexp.MustCompile(`\d{8}`)

// =============================================================================
// FILENAME DATES
// =============================================================================

// FileDate extracts the document date from a file name. It scans for
// 8-digit runs and returns the first one that parses as a valid YYYYMMDD
// date. The second return value is false when the name carries no
// recognizable date.
func FileDate(path string) (time.Time, bool) {
	name := filepath.Base(path)
	for _, m := range datePattern.FindAllString(name, -1) {
		if t, err := time.Parse("20060102", m); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// =============================================================================
// OUTPUT NAMING
// =============================================================================

// TimestampedName derives a collision-free variant of a file path by
// inserting the current timestamp before the extension:
// "report.xlsx" -> "report_20251115_093000.xlsx".
func TimestampedName(path string) string {
	return timestampedName(path, time.Now())
}

// timestampedName is the clock-injectable implementation of TimestampedName.
func timestampedName(path string, now time.Time) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%s%s", stem, now.Format("20060102_150405"), ext)
}

// =============================================================================
// FILE OPERATIONS
// =============================================================================

// FileExists checks if a file exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// CopyFile copies a file from src to dst, preserving permissions.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return nil
}

// BackupFile copies a file to a timestamped sibling before it is mutated
// in place. It returns the backup path.
func BackupFile(path string) (string, error) {
	backup := TimestampedName(path)
	if err := CopyFile(path, backup); err != nil {
		return "", err
	}
	return backup, nil
}
