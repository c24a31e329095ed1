// =============================================================================
// Finance Reconciler - Document Index
// =============================================================================
//
// This module loads one spreadsheet document into an ordered collection of
// order rows keyed by order key, and writes mutations back to the file.
//
// DOCUMENT SHAPE:
//   - A Report document has a single primary sheet of settled orders.
//   - An Admin document has a primary order sheet plus a finance summary
//     sheet that receives inbound reconciliation annotations.
//
// MUTATION MODEL:
//   Annotations add or overwrite columns on existing rows; columns are
//   never removed. Save writes back only the columns that were touched,
//   leaving every pre-existing cell of the workbook exactly as it was.
//   Resolution state (the per-run unresolved working set) lives in memory
//   only and is never persisted.
//
// =============================================================================

package document

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tjadmin/finance-reconciler/internal/orderkey"
	"github.com/tjadmin/finance-reconciler/internal/recon"
)

// =============================================================================
// KIND
// =============================================================================

// Kind distinguishes the two document families.
type Kind int

const (
	// KindReport is a platform-issued settlement report.
	KindReport Kind = iota

	// KindAdmin is a seller-maintained admin record file.
	KindAdmin
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if k == KindAdmin {
		return "admin"
	}
	return "report"
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures how a document is loaded.
type Options struct {
	// Sheet is the primary sheet name. Empty means the first sheet in the
	// workbook.
	Sheet string

	// SummarySheet is the name of the summary sheet used for inbound
	// annotations. The sheet is created on demand when the first summary
	// row is written; an existing one is loaded so updates stay idempotent.
	SummarySheet string

	// SummaryKeyColumn is the order identity column of the summary sheet.
	SummaryKeyColumn string

	// Extractor derives order keys from primary-sheet rows.
	Extractor orderkey.Extractor
}

// =============================================================================
// ROW
// =============================================================================

// Row is one order line in a document's primary sheet.
type Row struct {
	// Key is the canonical order identity.
	Key recon.OrderKey

	// Cells holds the row values keyed by column name.
	Cells map[string]string

	// SheetRow is the 1-based row number in the sheet, used for write-back.
	SheetRow int
}

// summaryRow is one line of the summary sheet.
type summaryRow struct {
	key   recon.OrderKey
	cells map[string]string
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is one loaded spreadsheet file. Documents are constructed fresh
// per run and exclusively owned by the run that opened them for writing.
type Document struct {
	// Path is the file the document was loaded from.
	Path string

	// Kind identifies the document family.
	Kind Kind

	// Sheet is the resolved primary sheet name.
	Sheet string

	// Headers are the primary-sheet column names in sheet order, including
	// columns appended by annotations.
	Headers []string

	// Rows are the order rows in native sheet order. Rows whose identity
	// cell is missing are skipped at load and reported as warnings.
	Rows []*Row

	// Warnings collected while loading (malformed rows, duplicate keys).
	Warnings []recon.Warning

	opts       Options
	file       *excelize.File
	byKey      map[recon.OrderKey]*Row
	colIndex   map[string]int
	touched    map[string]bool
	unresolved []recon.OrderKey
	pending    map[recon.OrderKey]bool

	summaryHeaders []string
	summaryRows    []*summaryRow
	summaryByKey   map[recon.OrderKey]*summaryRow
	summaryDirty   bool
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads a document from disk and indexes its primary sheet by order
// key. It returns a *recon.UnreadableDocumentError on I/O failure, a
// missing primary sheet, or a header row without the configured key column.
func Load(path string, kind Kind, opts Options) (*Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &recon.UnreadableDocumentError{Path: path, Err: err}
	}

	doc := &Document{
		Path:         path,
		Kind:         kind,
		opts:         opts,
		file:         f,
		byKey:        make(map[recon.OrderKey]*Row),
		colIndex:     make(map[string]int),
		touched:      make(map[string]bool),
		pending:      make(map[recon.OrderKey]bool),
		summaryByKey: make(map[recon.OrderKey]*summaryRow),
	}

	if err := doc.loadPrimary(); err != nil {
		f.Close()
		return nil, err
	}
	if opts.SummarySheet != "" {
		doc.loadSummary()
	}

	return doc, nil
}

// loadPrimary reads the primary sheet into the row index.
func (d *Document) loadPrimary() error {
	sheet := d.opts.Sheet
	if sheet == "" {
		sheet = d.file.GetSheetName(0)
	}
	if sheet == "" {
		return &recon.UnreadableDocumentError{Path: d.Path, Reason: "workbook has no sheets"}
	}

	rows, err := d.file.GetRows(sheet)
	if err != nil {
		return &recon.UnreadableDocumentError{Path: d.Path, Err: fmt.Errorf("sheet %q: %w", sheet, err)}
	}
	if len(rows) == 0 {
		return &recon.UnreadableDocumentError{Path: d.Path, Reason: fmt.Sprintf("sheet %q is empty", sheet)}
	}
	d.Sheet = sheet

	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		d.Headers = append(d.Headers, name)
		d.colIndex[name] = i
	}
	if _, ok := d.colIndex[d.opts.Extractor.KeyColumn]; !ok {
		return &recon.UnreadableDocumentError{
			Path:   d.Path,
			Reason: fmt.Sprintf("sheet %q has no column %q", sheet, d.opts.Extractor.KeyColumn),
		}
	}

	for i, raw := range rows[1:] {
		sheetRow := i + 2
		if isRowEmpty(raw) {
			continue
		}

		cells := make(map[string]string, len(d.Headers))
		for _, name := range d.Headers {
			idx := d.colIndex[name]
			if idx < len(raw) {
				cells[name] = strings.TrimSpace(raw[idx])
			}
		}

		key, err := d.opts.Extractor.Extract(cells, d.Path, sheetRow)
		if err != nil {
			d.Warnings = append(d.Warnings, recon.NewWarning(recon.WarnMalformedRow, err.Error()))
			continue
		}

		// First row in native order wins when a key repeats within one
		// document; the condition is a data-quality signal, not an error.
		if _, dup := d.byKey[key]; dup {
			d.Warnings = append(d.Warnings, recon.NewWarning(recon.WarnDuplicateKey,
				fmt.Sprintf("duplicate order %s at row %d of %s; keeping first occurrence", key, sheetRow, d.Path)))
			continue
		}

		row := &Row{Key: key, Cells: cells, SheetRow: sheetRow}
		d.Rows = append(d.Rows, row)
		d.byKey[key] = row
		d.unresolved = append(d.unresolved, key)
		d.pending[key] = true
	}

	return nil
}

// loadSummary reads an existing summary sheet, if any, so that repeated
// runs update rows in place instead of appending duplicates.
func (d *Document) loadSummary() {
	rows, err := d.file.GetRows(d.opts.SummarySheet)
	if err != nil || len(rows) == 0 {
		return
	}

	var keyIdx = -1
	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		d.summaryHeaders = append(d.summaryHeaders, name)
		if name == d.opts.SummaryKeyColumn {
			keyIdx = i
		}
	}
	if keyIdx < 0 {
		return
	}

	for _, raw := range rows[1:] {
		if keyIdx >= len(raw) || strings.TrimSpace(raw[keyIdx]) == "" {
			continue
		}
		cells := make(map[string]string, len(d.summaryHeaders))
		for i, name := range d.summaryHeaders {
			if i < len(raw) {
				cells[name] = strings.TrimSpace(raw[i])
			}
		}
		row := &summaryRow{key: recon.OrderKey(cells[d.opts.SummaryKeyColumn]), cells: cells}
		d.summaryRows = append(d.summaryRows, row)
		d.summaryByKey[row.key] = row
	}
}

// =============================================================================
// LOOKUP AND RESOLUTION STATE
// =============================================================================

// Lookup returns the row for the given order key.
func (d *Document) Lookup(key recon.OrderKey) (*Row, bool) {
	row, ok := d.byKey[key]
	return row, ok
}

// KeyCount returns the number of distinct order keys in the document.
func (d *Document) KeyCount() int {
	return len(d.byKey)
}

// UnresolvedKeys returns the still-unresolved keys in native row order.
func (d *Document) UnresolvedKeys() []recon.OrderKey {
	keys := make([]recon.OrderKey, 0, len(d.unresolved))
	for _, k := range d.unresolved {
		if d.pending[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// UnresolvedCount returns the number of still-unresolved keys.
func (d *Document) UnresolvedCount() int {
	n := 0
	for _, k := range d.unresolved {
		if d.pending[k] {
			n++
		}
	}
	return n
}

// MarkResolved removes a key from the unresolved working set. The
// underlying row is untouched; resolution state is per-run and in-memory.
func (d *Document) MarkResolved(key recon.OrderKey) {
	delete(d.pending, key)
}

// RestoreUnresolved returns a key to the unresolved working set, used when
// a partially applied annotation is rolled back.
func (d *Document) RestoreUnresolved(key recon.OrderKey) {
	if _, ok := d.byKey[key]; ok {
		d.pending[key] = true
	}
}

// =============================================================================
// MUTATION
// =============================================================================

// CellValue returns the current value of a column on the row with the
// given key.
func (d *Document) CellValue(key recon.OrderKey, column string) (string, bool) {
	row, ok := d.byKey[key]
	if !ok {
		return "", false
	}
	v, ok := row.Cells[column]
	return v, ok
}

// SetCell sets a column value on the row with the given key, registering
// the column as a new header if the document has never seen it.
func (d *Document) SetCell(key recon.OrderKey, column, value string) error {
	row, ok := d.byKey[key]
	if !ok {
		return fmt.Errorf("order %s not found in %s", key, d.Path)
	}
	if _, ok := d.colIndex[column]; !ok {
		d.colIndex[column] = d.nextColumnIndex()
		d.Headers = append(d.Headers, column)
	}
	row.Cells[column] = value
	d.touched[column] = true
	return nil
}

// nextColumnIndex returns the first free 0-based column index.
func (d *Document) nextColumnIndex() int {
	max := -1
	for _, idx := range d.colIndex {
		if idx > max {
			max = idx
		}
	}
	return max + 1
}

// UpsertSummary appends or updates the summary row for the given key.
// Re-applying identical cells leaves exactly one row with unchanged values.
func (d *Document) UpsertSummary(key recon.OrderKey, cells map[string]string) {
	if d.opts.SummaryKeyColumn != "" {
		if len(d.summaryHeaders) == 0 {
			d.summaryHeaders = append(d.summaryHeaders, d.opts.SummaryKeyColumn)
		}
	}

	row, ok := d.summaryByKey[key]
	if !ok {
		row = &summaryRow{key: key, cells: map[string]string{d.opts.SummaryKeyColumn: string(key)}}
		d.summaryRows = append(d.summaryRows, row)
		d.summaryByKey[key] = row
	}
	for name, value := range cells {
		if !containsString(d.summaryHeaders, name) {
			d.summaryHeaders = append(d.summaryHeaders, name)
		}
		row.cells[name] = value
	}
	d.summaryDirty = true
}

// SummaryValue returns the value of a column on the summary row for the
// given key.
func (d *Document) SummaryValue(key recon.OrderKey, column string) (string, bool) {
	row, ok := d.summaryByKey[key]
	if !ok {
		return "", false
	}
	v, ok := row.cells[column]
	return v, ok
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes all touched columns and the summary sheet back to the file.
// Untouched cells are never rewritten, so pre-existing formatting and
// columns survive.
func (d *Document) Save() error {
	for column := range d.touched {
		idx := d.colIndex[column]

		cell, err := excelize.CoordinatesToCellName(idx+1, 1)
		if err != nil {
			return fmt.Errorf("column %q: %w", column, err)
		}
		if err := d.file.SetCellValue(d.Sheet, cell, column); err != nil {
			return fmt.Errorf("write header %q: %w", column, err)
		}

		for _, row := range d.Rows {
			value, ok := row.Cells[column]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(idx+1, row.SheetRow)
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", row.SheetRow, column, err)
			}
			if err := d.file.SetCellValue(d.Sheet, cell, value); err != nil {
				return fmt.Errorf("write row %d column %q: %w", row.SheetRow, column, err)
			}
		}
	}

	if d.summaryDirty {
		if err := d.saveSummary(); err != nil {
			return err
		}
	}

	if err := d.file.Save(); err != nil {
		return fmt.Errorf("save %s: %w", d.Path, err)
	}
	d.touched = make(map[string]bool)
	d.summaryDirty = false
	return nil
}

// saveSummary rewrites the summary sheet from the in-memory rows.
func (d *Document) saveSummary() error {
	sheet := d.opts.SummarySheet
	idx, err := d.file.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("summary sheet %q: %w", sheet, err)
	}
	if idx < 0 {
		if _, err := d.file.NewSheet(sheet); err != nil {
			return fmt.Errorf("create summary sheet %q: %w", sheet, err)
		}
	}

	for i, name := range d.summaryHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := d.file.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write summary header %q: %w", name, err)
		}
	}
	for r, row := range d.summaryRows {
		for i, name := range d.summaryHeaders {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := d.file.SetCellValue(sheet, cell, row.cells[name]); err != nil {
				return fmt.Errorf("write summary row %d: %w", r+2, err)
			}
		}
	}
	return nil
}

// Close releases the underlying file handle without saving.
func (d *Document) Close() error {
	return d.file.Close()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// containsString reports whether the slice contains the value.
func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
