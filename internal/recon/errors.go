// =============================================================================
// Finance Reconciler - Error Taxonomy
// =============================================================================
//
// Typed errors shared across the reconciliation modules. The propagation
// policy is:
//   - Anchor-document problems abort the run (UnreadableDocumentError on
//     the anchor is fatal).
//   - Candidate-document and per-row problems degrade gracefully and are
//     aggregated into the run result's warnings.
//   - Annotation conflicts preserve the original annotation and flag the
//     order for manual review.
//
// All errors support errors.As matching and wrap underlying causes where
// one exists.
//
// =============================================================================

package recon

import "fmt"

// =============================================================================
// MALFORMED ROW
// =============================================================================

// MalformedRowError indicates that a row lacks a usable order key: the
// identity column is absent or its cell is empty. The row is skipped and
// logged; the run continues.
type MalformedRowError struct {
	// Path is the document the row came from.
	Path string

	// SheetRow is the 1-based row number in the sheet.
	SheetRow int

	// Column is the identity column that was missing or empty.
	Column string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row %d in %s: column %q is missing or empty",
		e.SheetRow, e.Path, e.Column)
}

// =============================================================================
// UNREADABLE DOCUMENT
// =============================================================================

// UnreadableDocumentError indicates that a document could not be loaded:
// an I/O failure, a missing expected sheet, or a header row without the
// configured key column.
type UnreadableDocumentError struct {
	// Path is the document that could not be read.
	Path string

	// Reason describes the structural problem when there is no wrapped
	// cause (e.g. "sheet \"orders\" not found").
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (e *UnreadableDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unreadable document %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("unreadable document %s: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *UnreadableDocumentError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ANNOTATION CONFLICT
// =============================================================================

// AnnotationConflictError indicates that an existing annotation disagrees
// with a new match and replacement was not allowed. The original annotation
// is preserved and the order remains flagged for manual review.
type AnnotationConflictError struct {
	// Key is the order whose annotation conflicted.
	Key OrderKey

	// Column is the annotation column that already held a value.
	Column string

	// Existing is the value currently recorded.
	Existing string

	// Proposed is the value the new match would have written.
	Proposed string
}

func (e *AnnotationConflictError) Error() string {
	return fmt.Sprintf("annotation conflict for order %s: %s already records %q, new match proposes %q",
		e.Key, e.Column, e.Existing, e.Proposed)
}
