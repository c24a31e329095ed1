package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./reports", cfg.ReportsDir)
	assert.Equal(t, "./admin", cfg.AdminDir)
	assert.Equal(t, "orders", cfg.Sheets.AdminOrders)
	assert.Equal(t, "Finance Summary", cfg.Sheets.AdminSummary)
	assert.Equal(t, "order_id", cfg.Columns.ReportKey)
	assert.Equal(t, "order_sn", cfg.Columns.AdminKey)
	assert.Equal(t, "admin_record_file", cfg.Columns.AdminRecordFile)
	assert.Equal(t, "finance_record_file", cfg.Columns.FinanceRecordFile)
	assert.Equal(t, "Transaction Report", cfg.CleanReport.RawSheet)
	assert.Equal(t, 18, cfg.CleanReport.HeaderRow)
	assert.False(t, cfg.AllowReplace)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
admin_dir: /data/admin
columns:
  report_key: "รหัสคำสั่งซื้อ"
  admin_key: "หมายเลขคำสั่งซื้อ"
clean_report:
  header_row: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/admin", cfg.AdminDir)
	assert.Equal(t, "รหัสคำสั่งซื้อ", cfg.Columns.ReportKey)
	assert.Equal(t, "หมายเลขคำสั่งซื้อ", cfg.Columns.AdminKey)
	assert.Equal(t, 3, cfg.CleanReport.HeaderRow)

	// Unset values fall back to defaults.
	assert.Equal(t, "./reports", cfg.ReportsDir)
	assert.Equal(t, "net_price", cfg.Columns.AdminPrice)
	assert.Equal(t, "Transaction Report", cfg.CleanReport.RawSheet)
}

func TestLoadMissingDefaultPathFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns: [not a mapping"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsColumnCollision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
columns:
  report_key: admin_record_file
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
