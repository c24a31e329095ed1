package annotate

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tjadmin/finance-reconciler/internal/config"
	"github.com/tjadmin/finance-reconciler/internal/document"
	"github.com/tjadmin/finance-reconciler/internal/orderkey"
	"github.com/tjadmin/finance-reconciler/internal/recon"
)

// writeWorkbook creates an xlsx file with one sheet filled from rows.
func writeWorkbook(t *testing.T, path, sheet string, rows [][]interface{}) {
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

func loadReport(t *testing.T, path string) *document.Document {
	t.Helper()
	doc, err := document.Load(path, document.KindReport, document.Options{
		SummarySheet:     "Reconciliation Summary",
		SummaryKeyColumn: "order_id",
		Extractor:        orderkey.Extractor{KeyColumn: "order_id"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = doc.Close() })
	return doc
}

func loadAdmin(t *testing.T, path string) *document.Document {
	t.Helper()
	doc, err := document.Load(path, document.KindAdmin, document.Options{
		Sheet:            "orders",
		SummarySheet:     "Finance Summary",
		SummaryKeyColumn: "order_sn",
		Extractor:        orderkey.Extractor{KeyColumn: "order_sn"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = doc.Close() })
	return doc
}

// fixture builds one report anchor and one admin counterpart sharing A100.
func fixture(t *testing.T) (*document.Document, *document.Document, recon.MatchRecord) {
	t.Helper()
	dir := t.TempDir()

	reportPath := filepath.Join(dir, "report_20251120.xlsx")
	writeWorkbook(t, reportPath, "Sheet1", [][]interface{}{
		{"order_id", "amount"},
		{"A100", "10.50"},
	})
	adminPath := filepath.Join(dir, "admin_20251108.xlsx")
	writeWorkbook(t, adminPath, "orders", [][]interface{}{
		{"order_sn", "net_price"},
		{"A100", "10.50"},
	})

	match := recon.MatchRecord{
		Key:              "A100",
		AnchorPath:       reportPath,
		CounterpartPath:  adminPath,
		CounterpartValue: "10.50",
	}
	return loadReport(t, reportPath), loadAdmin(t, adminPath), match
}

func financeWriter(allowReplace bool) *Writer {
	return &Writer{
		Direction:    recon.ReportToAdmin,
		AllowReplace: allowReplace,
		Cols:         config.Default().Columns,
	}
}

func TestApplyWritesBothSides(t *testing.T) {
	anchor, counterpart, match := fixture(t)
	w := financeWriter(false)

	applied, err := w.Apply(anchor, counterpart, match)
	require.NoError(t, err)
	require.NotNil(t, applied)

	v, _ := anchor.CellValue("A100", "admin_record_file")
	assert.Equal(t, "admin_20251108.xlsx", v)
	v, _ = anchor.CellValue("A100", "admin_record_price")
	assert.Equal(t, "10.50", v)

	v, ok := counterpart.SummaryValue("A100", "finance_record_file")
	require.True(t, ok)
	assert.Equal(t, "report_20251120.xlsx", v)
}

func TestApplyIsIdempotent(t *testing.T) {
	anchor, counterpart, match := fixture(t)
	w := financeWriter(false)

	_, err := w.Apply(anchor, counterpart, match)
	require.NoError(t, err)
	_, err = w.Apply(anchor, counterpart, match)
	require.NoError(t, err)

	v, _ := anchor.CellValue("A100", "admin_record_file")
	assert.Equal(t, "admin_20251108.xlsx", v)
	v, _ = anchor.CellValue("A100", "admin_record_price")
	assert.Equal(t, "10.50", v)
}

func TestApplyKeepsEquivalentPriceForm(t *testing.T) {
	anchor, counterpart, match := fixture(t)
	w := financeWriter(false)

	require.NoError(t, anchor.SetCell("A100", "admin_record_file", "admin_20251108.xlsx"))
	require.NoError(t, anchor.SetCell("A100", "admin_record_price", "10.5"))

	_, err := w.Apply(anchor, counterpart, match)
	require.NoError(t, err)

	// "10.5" and "10.50" are the same amount; the recorded form is stable.
	v, _ := anchor.CellValue("A100", "admin_record_price")
	assert.Equal(t, "10.5", v)
}

func TestApplyConflictPreservesOriginal(t *testing.T) {
	anchor, counterpart, match := fixture(t)
	w := financeWriter(false)

	require.NoError(t, anchor.SetCell("A100", "admin_record_file", "admin_20251001.xlsx"))

	_, err := w.Apply(anchor, counterpart, match)
	require.Error(t, err)

	var conflict *recon.AnnotationConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, recon.OrderKey("A100"), conflict.Key)
	assert.Equal(t, "admin_20251001.xlsx", conflict.Existing)
	assert.Equal(t, "admin_20251108.xlsx", conflict.Proposed)

	// The original annotation stands and the counterpart gained nothing.
	v, _ := anchor.CellValue("A100", "admin_record_file")
	assert.Equal(t, "admin_20251001.xlsx", v)
	_, ok := counterpart.SummaryValue("A100", "finance_record_file")
	assert.False(t, ok)
}

func TestApplyAllowReplaceOverwrites(t *testing.T) {
	anchor, counterpart, match := fixture(t)
	w := financeWriter(true)

	require.NoError(t, anchor.SetCell("A100", "admin_record_file", "admin_20251001.xlsx"))

	_, err := w.Apply(anchor, counterpart, match)
	require.NoError(t, err)

	v, _ := anchor.CellValue("A100", "admin_record_file")
	assert.Equal(t, "admin_20251108.xlsx", v)
}

func TestApplySummaryConflict(t *testing.T) {
	anchor, counterpart, match := fixture(t)
	w := financeWriter(false)

	counterpart.UpsertSummary("A100", map[string]string{"finance_record_file": "report_20251113.xlsx"})

	_, err := w.Apply(anchor, counterpart, match)
	require.Error(t, err)

	var conflict *recon.AnnotationConflictError
	require.True(t, errors.As(err, &conflict))

	// Neither side changed: the prior summary row stands, the anchor row
	// was never written.
	_, ok := anchor.CellValue("A100", "admin_record_file")
	assert.False(t, ok)
	v, _ := counterpart.SummaryValue("A100", "finance_record_file")
	assert.Equal(t, "report_20251113.xlsx", v)
}

func TestRevertRestoresAnchor(t *testing.T) {
	anchor, counterpart, match := fixture(t)
	w := financeWriter(false)

	applied, err := w.Apply(anchor, counterpart, match)
	require.NoError(t, err)

	w.Revert(anchor, applied)

	v, _ := anchor.CellValue("A100", "admin_record_file")
	assert.Equal(t, "", v)
	v, _ = anchor.CellValue("A100", "admin_record_price")
	assert.Equal(t, "", v)
}

func TestAdminCheckDirectionIsAsymmetric(t *testing.T) {
	dir := t.TempDir()

	adminPath := filepath.Join(dir, "admin_20251108.xlsx")
	writeWorkbook(t, adminPath, "orders", [][]interface{}{
		{"order_sn", "net_price"},
		{"A100", "10.50"},
	})
	reportPath := filepath.Join(dir, "report_20251120.xlsx")
	writeWorkbook(t, reportPath, "Sheet1", [][]interface{}{
		{"order_id", "amount"},
		{"A100", "10.50"},
	})

	anchor := loadAdmin(t, adminPath)
	counterpart := loadReport(t, reportPath)

	w := &Writer{Direction: recon.AdminToReport, Cols: config.Default().Columns}
	match := recon.MatchRecord{
		Key:             "A100",
		AnchorPath:      adminPath,
		CounterpartPath: reportPath,
	}

	_, err := w.Apply(anchor, counterpart, match)
	require.NoError(t, err)

	// The admin anchor records which report settled the order; admin-side
	// values are authoritative, so no price column is written.
	v, _ := anchor.CellValue("A100", "finance_record_file")
	assert.Equal(t, "report_20251120.xlsx", v)
	_, ok := anchor.CellValue("A100", "admin_record_price")
	assert.False(t, ok)

	v, ok = counterpart.SummaryValue("A100", "admin_record_file")
	require.True(t, ok)
	assert.Equal(t, "admin_20251108.xlsx", v)
}
