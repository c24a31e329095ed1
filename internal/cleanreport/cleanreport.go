// =============================================================================
// Finance Reconciler - Clean Finance Report
// =============================================================================
//
// This module turns a raw platform settlement export into a Clean Finance
// Report. Marketplace exports carry a preamble of summary rows above the
// actual transaction table, so the real header row sits well below row 1.
// The clean report keeps the transaction columns, hoists the header to the
// top, and adds an empty annotation column that later finance-check runs
// fill in.
//
// =============================================================================

package cleanreport

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tjadmin/finance-reconciler/internal/config"
	"github.com/tjadmin/finance-reconciler/pkg/utils"
)

// outputSheet is the primary sheet of the generated clean report.
const outputSheet = "Sheet1"

// =============================================================================
// CLEAN
// =============================================================================

// Clean reads a raw platform export and writes a Clean Finance Report.
//
// PARAMETERS:
//   - inputPath: The raw export file.
//   - outputPath: The destination; empty uses the configured default.
//   - cfg: Raw sheet name and header row of the export.
//   - annotationColumn: The empty column appended for later annotation
//     (normally "admin_record_file").
//
// RETURNS:
//   - The path actually written. When the destination already exists it is
//     never overwritten; a timestamped variant is written instead.
//   - An error if the export cannot be read or the report cannot be written.
func Clean(inputPath, outputPath string, cfg config.CleanReport, annotationColumn string) (string, error) {
	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to open raw export: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cfg.RawSheet)
	if err != nil {
		return "", fmt.Errorf("sheet %q: %w", cfg.RawSheet, err)
	}
	if len(rows) < cfg.HeaderRow {
		return "", fmt.Errorf("sheet %q has %d row(s), header expected at row %d",
			cfg.RawSheet, len(rows), cfg.HeaderRow)
	}

	headers := rows[cfg.HeaderRow-1]
	data := rows[cfg.HeaderRow:]

	out := excelize.NewFile()
	defer out.Close()

	headerCells := make([]interface{}, 0, len(headers)+1)
	hasAnnotation := false
	for _, h := range headers {
		name := strings.TrimSpace(h)
		headerCells = append(headerCells, name)
		if name == annotationColumn {
			hasAnnotation = true
		}
	}
	if !hasAnnotation {
		headerCells = append(headerCells, annotationColumn)
	}
	if err := out.SetSheetRow(outputSheet, "A1", &headerCells); err != nil {
		return "", fmt.Errorf("failed to write header row: %w", err)
	}

	outRow := 2
	for _, raw := range data {
		if isRowEmpty(raw) {
			continue
		}
		cells := make([]interface{}, len(raw))
		for i, v := range raw {
			cells[i] = v
		}
		anchor, err := excelize.CoordinatesToCellName(1, outRow)
		if err != nil {
			return "", err
		}
		if err := out.SetSheetRow(outputSheet, anchor, &cells); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", outRow, err)
		}
		outRow++
	}

	if outputPath == "" {
		outputPath = cfg.DefaultOutput
	}
	if utils.FileExists(outputPath) {
		outputPath = utils.TimestampedName(outputPath)
	}

	if err := out.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save clean report: %w", err)
	}

	return outputPath, nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
