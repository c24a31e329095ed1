// =============================================================================
// Finance Reconciler - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - document
//   - selector
//   - engine
//   - annotate
//
// =============================================================================

package recon

// =============================================================================
// DIRECTION
// =============================================================================

// Direction identifies which side of the reconciliation drives the run.
type Direction int

const (
	// ReportToAdmin anchors on a settlement report and searches admin
	// record files for its orders (the "finance check" direction).
	// Candidates are scanned most-recent-first, because the matching admin
	// record is expected to predate settlement.
	ReportToAdmin Direction = iota

	// AdminToReport anchors on an admin record file and searches settlement
	// reports for its orders (the "admin check" direction).
	// Candidates are scanned oldest-first, because settlement always occurs
	// after order creation.
	AdminToReport
)

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case ReportToAdmin:
		return "finance-check"
	case AdminToReport:
		return "admin-check"
	default:
		return "unknown"
	}
}

// =============================================================================
// ORDER KEY
// =============================================================================

// OrderKey uniquely identifies one commercial order within a platform.
// It is stable across documents describing the same order at different
// times (creation vs settlement). Equality is exact-match only.
type OrderKey string

// =============================================================================
// MATCH RECORD
// =============================================================================

// MatchRecord is the result of locating an anchor order in a candidate
// document. It is transient: the Annotation Writer consumes it immediately
// and its only persisted effect is the annotations written into the two
// documents.
type MatchRecord struct {
	// Key is the order that was matched.
	Key OrderKey

	// AnchorPath is the path of the document whose orders drive the run.
	AnchorPath string

	// CounterpartPath is the path of the candidate document that contains
	// the matched order.
	CounterpartPath string

	// CounterpartValue is the observed value from the counterpart row,
	// e.g. the net price recorded on the admin side. Empty when the
	// direction does not carry a value across.
	CounterpartValue string
}

// =============================================================================
// WARNINGS
// =============================================================================

// Warning codes aggregated into a run result. These are data-quality and
// degraded-mode signals, never fatal to the run.
const (
	WarnMalformedRow        = "malformed_row"
	WarnDuplicateKey        = "duplicate_key"
	WarnUnreadableCandidate = "unreadable_candidate"
	WarnAnnotationConflict  = "annotation_conflict"
	WarnAnnotationFailed    = "annotation_failed"
	WarnUndatedFile         = "undated_file"
	WarnSaveFailed          = "save_failed"
)

// Warning is a non-fatal condition reported for user review.
type Warning struct {
	// Code is one of the Warn* constants.
	Code string

	// Message is a human-readable description of the condition.
	Message string
}

// NewWarning builds a warning with the given code and message.
func NewWarning(code, message string) Warning {
	return Warning{Code: code, Message: message}
}
