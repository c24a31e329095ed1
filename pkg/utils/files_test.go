package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDate(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
		ok   bool
	}{
		{"underscore convention", "admin_orders_20251115_output.xlsx", "2025-11-15", true},
		{"dot convention", "/data/Income.20251101.xlsx", "2025-11-01", true},
		{"no digits", "orders.xlsx", "", false},
		{"too few digits", "orders_2025.xlsx", "", false},
		{"invalid month skipped, later run used", "batch_20259999_20251231.xlsx", "2025-12-31", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FileDate(tc.path)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got.Format("2006-01-02"))
			}
		})
	}
}

func TestTimestampedName(t *testing.T) {
	now := time.Date(2025, 11, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "report_20251115_093000.xlsx", timestampedName("report.xlsx", now))
	assert.Equal(t, filepath.Join("out", "report_20251115_093000.xlsx"),
		timestampedName(filepath.Join("out", "report.xlsx"), now))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	assert.True(t, FileExists(path))
	assert.False(t, FileExists(filepath.Join(dir, "absent.txt")))
	assert.False(t, FileExists(dir), "directories do not count as files")
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0644))

	require.NoError(t, CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestBackupFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "anchor.xlsx")
	require.NoError(t, os.WriteFile(src, []byte("workbook"), 0644))

	backup, err := BackupFile(src)
	require.NoError(t, err)
	assert.NotEqual(t, src, backup)
	assert.True(t, FileExists(backup))

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "workbook", string(data))
}
