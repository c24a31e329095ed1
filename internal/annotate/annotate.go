// =============================================================================
// Finance Reconciler - Annotation Writer
// =============================================================================
//
// This module applies the two-sided write-back for one match record:
//   - Anchor-side: the anchor's primary-sheet row gains a column naming
//     the counterpart file (plus the observed counterpart price in the
//     finance-check direction).
//   - Counterpart-side: the counterpart's summary sheet gains (or updates)
//     a row keyed by the order, naming the anchor file.
//
// Both writes count as one annotation. If the counterpart-side write fails
// after the anchor-side succeeded, the anchor-side is reverted so no match
// is ever left half-applied.
//
// IDEMPOTENCY:
//   Re-applying the same match overwrites prior values with identical
//   values and never appends duplicate rows. An existing annotation naming
//   a *different* counterpart is a conflict unless replacement was
//   explicitly allowed; the original is preserved.
//
// =============================================================================

package annotate

import (
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/tjadmin/finance-reconciler/internal/config"
	"github.com/tjadmin/finance-reconciler/internal/document"
	"github.com/tjadmin/finance-reconciler/internal/recon"
)

// =============================================================================
// WRITER
// =============================================================================

// Writer applies match records to document pairs.
type Writer struct {
	// Direction selects which annotation columns are written.
	Direction recon.Direction

	// AllowReplace permits overwriting an existing annotation that names a
	// different counterpart. Off by default so a prior manual correction
	// is never silently clobbered.
	AllowReplace bool

	// Cols names the annotation and identity columns.
	Cols config.Columns
}

// Applied records one completed annotation together with the anchor-side
// values it replaced, so the write can be reverted if the candidate's save
// later fails.
type Applied struct {
	// Record is the match this annotation realizes.
	Record recon.MatchRecord

	priors map[string]string
}

// =============================================================================
// APPLY
// =============================================================================

// Apply writes both sides of a match record. It returns the applied
// annotation on success, or a *recon.AnnotationConflictError when an
// existing annotation disagrees and replacement is not allowed; on
// conflict neither document is modified.
func (w *Writer) Apply(anchor, counterpart *document.Document, m recon.MatchRecord) (*Applied, error) {
	fileCol := w.anchorFileColumn()
	backCol := w.counterpartBackColumn()
	counterName := filepath.Base(m.CounterpartPath)
	anchorName := filepath.Base(m.AnchorPath)

	// Conflict checks happen before any write so a rejected match leaves
	// both documents untouched.
	if existing, ok := anchor.CellValue(m.Key, fileCol); ok && existing != "" && existing != counterName && !w.AllowReplace {
		return nil, &recon.AnnotationConflictError{
			Key:      m.Key,
			Column:   fileCol,
			Existing: existing,
			Proposed: counterName,
		}
	}
	if existing, ok := counterpart.SummaryValue(m.Key, backCol); ok && existing != "" && existing != anchorName && !w.AllowReplace {
		return nil, &recon.AnnotationConflictError{
			Key:      m.Key,
			Column:   backCol,
			Existing: existing,
			Proposed: anchorName,
		}
	}

	applied := &Applied{Record: m, priors: make(map[string]string)}

	prior, _ := anchor.CellValue(m.Key, fileCol)
	applied.priors[fileCol] = prior
	if err := anchor.SetCell(m.Key, fileCol, counterName); err != nil {
		return nil, err
	}

	if w.Direction == recon.ReportToAdmin {
		priceCol := w.Cols.AdminRecordPrice
		priorPrice, _ := anchor.CellValue(m.Key, priceCol)
		applied.priors[priceCol] = priorPrice

		// Keep the recorded string stable when only the textual form of
		// the price differs ("10.5" vs "10.50").
		value := m.CounterpartValue
		if priorPrice != "" && pricesEqual(priorPrice, value) {
			value = priorPrice
		}
		if err := anchor.SetCell(m.Key, priceCol, value); err != nil {
			w.Revert(anchor, applied)
			return nil, err
		}
	}

	counterpart.UpsertSummary(m.Key, map[string]string{backCol: anchorName})

	return applied, nil
}

// Revert restores the anchor-side values an annotation replaced. Used when
// the counterpart side could not be persisted, returning the match to an
// unapplied state.
func (w *Writer) Revert(anchor *document.Document, applied *Applied) {
	for column, prior := range applied.priors {
		// A prior empty string also covers the column-was-absent case;
		// columns are never removed, only blanked.
		_ = anchor.SetCell(applied.Record.Key, column, prior)
	}
}

// =============================================================================
// COLUMN SELECTION
// =============================================================================

// anchorFileColumn is the annotation column written on the anchor's row.
func (w *Writer) anchorFileColumn() string {
	if w.Direction == recon.ReportToAdmin {
		return w.Cols.AdminRecordFile
	}
	return w.Cols.FinanceRecordFile
}

// counterpartBackColumn is the annotation column written on the
// counterpart's summary sheet, naming the anchor file.
func (w *Writer) counterpartBackColumn() string {
	if w.Direction == recon.ReportToAdmin {
		return w.Cols.FinanceRecordFile
	}
	return w.Cols.AdminRecordFile
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// pricesEqual compares two price strings numerically, so differing textual
// forms of the same amount do not count as a change.
func pricesEqual(a, b string) bool {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return da.Equal(db)
}
