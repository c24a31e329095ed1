package cleanreport

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tjadmin/finance-reconciler/internal/config"
)

// writeRawExport builds a marketplace-style export: preamble rows, then the
// transaction header, then data.
func writeRawExport(t *testing.T, path, sheet string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func rawConfig() config.CleanReport {
	return config.CleanReport{
		RawSheet:      "Transaction Report",
		HeaderRow:     3,
		DefaultOutput: "cleaned_finance_report.xlsx",
	}
}

func TestCleanHoistsHeaderAndAppendsAnnotationColumn(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "raw_export.xlsx")
	writeRawExport(t, input, "Transaction Report", [][]interface{}{
		{"Seller: someshop"},
		{"Period: 2025-11"},
		{"order_id", "amount"},
		{"A100", "10.50"},
		{"", ""},
		{"A101", "20.00"},
	})

	output := filepath.Join(dir, "clean.xlsx")
	written, err := Clean(input, output, rawConfig(), "admin_record_file")
	require.NoError(t, err)
	assert.Equal(t, output, written)

	f, err := excelize.OpenFile(written)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two data rows, empty row dropped")
	assert.Equal(t, []string{"order_id", "amount", "admin_record_file"}, rows[0])
	assert.Equal(t, []string{"A100", "10.50"}, rows[1])
	assert.Equal(t, []string{"A101", "20.00"}, rows[2])
}

func TestCleanKeepsExistingAnnotationColumn(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "raw_export.xlsx")
	writeRawExport(t, input, "Transaction Report", [][]interface{}{
		{""},
		{""},
		{"order_id", "amount", "admin_record_file"},
		{"A100", "10.50", "admin_20251001.xlsx"},
	})

	output := filepath.Join(dir, "clean.xlsx")
	written, err := Clean(input, output, rawConfig(), "admin_record_file")
	require.NoError(t, err)

	f, err := excelize.OpenFile(written)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// The column is not appended a second time.
	assert.Equal(t, []string{"order_id", "amount", "admin_record_file"}, rows[0])
	assert.Equal(t, []string{"A100", "10.50", "admin_20251001.xlsx"}, rows[1])
}

func TestCleanNeverOverwritesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "raw_export.xlsx")
	writeRawExport(t, input, "Transaction Report", [][]interface{}{
		{""},
		{""},
		{"order_id"},
		{"A100"},
	})

	output := filepath.Join(dir, "clean.xlsx")
	first, err := Clean(input, output, rawConfig(), "admin_record_file")
	require.NoError(t, err)
	assert.Equal(t, output, first)

	second, err := Clean(input, output, rawConfig(), "admin_record_file")
	require.NoError(t, err)
	assert.NotEqual(t, output, second, "existing output must be preserved")
	assert.FileExists(t, second)
	assert.FileExists(t, output)
}

func TestCleanMissingRawSheet(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "raw_export.xlsx")
	writeRawExport(t, input, "Sheet1", [][]interface{}{{"order_id"}})

	_, err := Clean(input, filepath.Join(dir, "clean.xlsx"), rawConfig(), "admin_record_file")
	require.Error(t, err)
}

func TestCleanHeaderRowBeyondSheet(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "raw_export.xlsx")
	writeRawExport(t, input, "Transaction Report", [][]interface{}{
		{"only one row"},
	})

	_, err := Clean(input, filepath.Join(dir, "clean.xlsx"), rawConfig(), "admin_record_file")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header expected at row 3")
}
