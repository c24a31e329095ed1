// =============================================================================
// Finance Reconciler - Reconciliation Engine
// =============================================================================
//
// This module contains the core matching logic. One engine instance is
// configured with a direction and runs the scan loop for one anchor
// document against an ordered candidate sequence.
//
// RECONCILIATION PIPELINE:
//   1. Load the anchor document; all of its order keys start unresolved
//   2. For each candidate, in selector order:
//      a. Load the candidate (unreadable candidates are skipped, not fatal)
//      b. Look up each still-unresolved anchor key in the candidate
//      c. On a hit, annotate both documents (first match wins; the key is
//         never re-scanned against later candidates)
//      d. Persist the candidate, then the anchor, before moving on, so an
//         interruption between candidates leaves a valid resumable state
//      e. Stop scanning as soon as no unresolved keys remain
//   3. Candidates exhausted with keys left over is reported, not fatal:
//      those orders are simply awaiting a future settlement
//
// STATE MACHINE:
//   Initialized -> Scanning -> (Resolved | Exhausted)
//
// The early exit in step 2e is the governing cost driver: candidate
// documents are read from storage and each read dominates runtime, so the
// engine never opens another candidate once the unresolved set is empty.
//
// =============================================================================

package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tjadmin/finance-reconciler/internal/annotate"
	"github.com/tjadmin/finance-reconciler/internal/document"
	"github.com/tjadmin/finance-reconciler/internal/recon"
	"github.com/tjadmin/finance-reconciler/internal/selector"
)

// =============================================================================
// STATE
// =============================================================================

// State is the lifecycle state of one reconciliation run.
type State int

const (
	// StateInitialized means the run has not started scanning.
	StateInitialized State = iota

	// StateScanning means candidates are being searched.
	StateScanning

	// StateResolved means every anchor order was accounted for before the
	// candidate sequence was exhausted.
	StateResolved

	// StateExhausted means candidates ran out with anchor orders still
	// unresolved. Those orders remain unannotated.
	StateExhausted
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateScanning:
		return "scanning"
	case StateResolved:
		return "resolved"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// =============================================================================
// RUN RESULT
// =============================================================================

// RunResult is the outcome of one reconciliation run.
type RunResult struct {
	// RunID uniquely identifies this run in logs and output.
	RunID string

	// Direction is the direction the run was executed in.
	Direction recon.Direction

	// AnchorPath is the document whose orders drove the run.
	AnchorPath string

	// State is the final state of the run.
	State State

	// TotalOrders is the number of distinct order keys in the anchor.
	TotalOrders int

	// Resolved is the number of orders matched and annotated on both sides.
	Resolved int

	// Conflicts are orders whose existing annotation disagreed with a new
	// match; the original annotation was preserved and the order is
	// flagged for manual review.
	Conflicts []recon.OrderKey

	// UnresolvedKeys are anchor orders no candidate contained.
	UnresolvedKeys []recon.OrderKey

	// Warnings aggregates every non-fatal condition observed in the run.
	Warnings []recon.Warning

	// CandidatesScanned is the number of candidate documents opened.
	CandidatesScanned int

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// =============================================================================
// LOADER INTERFACE
// =============================================================================

// Loader opens documents for the engine. The engine never touches the
// filesystem directly, so tests can drive the scan loop with in-memory
// fakes and count exactly which candidates were opened.
type Loader interface {
	// LoadAnchor opens the document whose orders drive the run.
	LoadAnchor(path string) (*document.Document, error)

	// LoadCandidate opens one counterpart document.
	LoadCandidate(path string) (*document.Document, error)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs the reconciliation scan loop for one direction. A single
// engine value is configured once and exposes one entry point, Run, so the
// scan, early-exit, and annotation logic is shared between finance-check
// and admin-check instead of duplicated.
type Engine struct {
	direction recon.Direction
	loader    Loader
	writer    *annotate.Writer
	logger    Logger
}

// New creates an engine for the given direction. A nil logger falls back
// to the standard output logger.
func New(direction recon.Direction, loader Loader, writer *annotate.Writer, logger Logger) *Engine {
	if logger == nil {
		logger = NewLogger("info")
	}
	return &Engine{
		direction: direction,
		loader:    loader,
		writer:    writer,
		logger:    logger,
	}
}

// =============================================================================
// RUN
// =============================================================================

// Run executes one reconciliation run. An unreadable anchor aborts the run;
// every other problem degrades into warnings on the result.
func (e *Engine) Run(anchorPath string, candidates []selector.Candidate) (*RunResult, error) {
	start := time.Now()

	result := &RunResult{
		RunID:      uuid.New().String(),
		Direction:  e.direction,
		AnchorPath: anchorPath,
		State:      StateInitialized,
	}

	e.logger.Info("run %s: %s anchored on %s, %d candidate(s)",
		result.RunID, e.direction, anchorPath, len(candidates))

	anchor, err := e.loader.LoadAnchor(anchorPath)
	if err != nil {
		return nil, fmt.Errorf("anchor document: %w", err)
	}
	defer anchor.Close()

	result.Warnings = append(result.Warnings, anchor.Warnings...)
	result.TotalOrders = anchor.KeyCount()
	result.State = StateScanning

	for _, cand := range candidates {
		if anchor.UnresolvedCount() == 0 {
			// Early exit: never open another candidate once every anchor
			// order has been accounted for.
			break
		}

		if halted := e.scanCandidate(anchor, cand, result); halted {
			break
		}
	}

	result.UnresolvedKeys = anchor.UnresolvedKeys()
	if len(result.UnresolvedKeys) == 0 {
		result.State = StateResolved
	} else {
		result.State = StateExhausted
	}
	result.Elapsed = time.Since(start)

	e.logger.Info("run %s: %s, %d/%d resolved, %d conflict(s), %d warning(s)",
		result.RunID, result.State, result.Resolved, result.TotalOrders,
		len(result.Conflicts), len(result.Warnings))

	return result, nil
}

// scanCandidate opens one candidate, matches every still-unresolved anchor
// key against it, and persists both sides. Failures here are soft, but a
// true return halts the scan: the anchor can no longer be persisted.
func (e *Engine) scanCandidate(anchor *document.Document, cand selector.Candidate, result *RunResult) bool {
	counterpart, err := e.loader.LoadCandidate(cand.Path)
	if err != nil {
		e.logger.Warn("skipping candidate %s: %v", cand.Path, err)
		result.Warnings = append(result.Warnings,
			recon.NewWarning(recon.WarnUnreadableCandidate, err.Error()))
		return false
	}
	defer counterpart.Close()

	result.CandidatesScanned++
	result.Warnings = append(result.Warnings, counterpart.Warnings...)
	e.logger.Debug("scanning candidate %s (%d order(s))", cand.Path, counterpart.KeyCount())

	applied := e.matchKeys(anchor, counterpart, result)
	if len(applied) == 0 {
		return false
	}

	// The counterpart is committed first; if that fails, the anchor-side
	// writes are reverted so no match spans only one document.
	if err := counterpart.Save(); err != nil {
		e.logger.Warn("could not save candidate %s, rolling back %d match(es): %v",
			cand.Path, len(applied), err)
		for _, a := range applied {
			e.writer.Revert(anchor, a)
			anchor.RestoreUnresolved(a.Record.Key)
		}
		result.Warnings = append(result.Warnings, recon.NewWarning(recon.WarnSaveFailed,
			fmt.Sprintf("candidate %s: %v", cand.Path, err)))
		return false
	}

	if err := anchor.Save(); err != nil {
		// The counterpart already carries the back-references, which is
		// safe: re-running is idempotent. But an unwritable anchor means
		// no further progress can be persisted, so the matched keys return
		// to the unresolved set and the scan stops.
		e.logger.Error("could not save anchor %s: %v", anchor.Path, err)
		for _, a := range applied {
			anchor.RestoreUnresolved(a.Record.Key)
		}
		result.Warnings = append(result.Warnings, recon.NewWarning(recon.WarnSaveFailed,
			fmt.Sprintf("anchor %s: %v", anchor.Path, err)))
		return true
	}

	result.Resolved += len(applied)
	e.logger.Info("matched %d order(s) with %s", len(applied), cand.Path)
	return false
}

// matchKeys looks up each unresolved anchor key in the counterpart and
// applies the annotation for every hit. First match wins: a matched key is
// removed from the working set and never re-scanned, even if a later
// candidate would also contain it.
func (e *Engine) matchKeys(anchor, counterpart *document.Document, result *RunResult) []*annotate.Applied {
	var applied []*annotate.Applied

	for _, key := range anchor.UnresolvedKeys() {
		row, ok := counterpart.Lookup(key)
		if !ok {
			continue
		}

		match := recon.MatchRecord{
			Key:              key,
			AnchorPath:       anchor.Path,
			CounterpartPath:  counterpart.Path,
			CounterpartValue: e.counterpartValue(row),
		}

		a, err := e.writer.Apply(anchor, counterpart, match)
		if err != nil {
			var conflict *recon.AnnotationConflictError
			if errors.As(err, &conflict) {
				// The original annotation stands and the key leaves the
				// working set: ties are not re-searched.
				e.logger.Warn("%v", conflict)
				result.Warnings = append(result.Warnings,
					recon.NewWarning(recon.WarnAnnotationConflict, conflict.Error()))
				result.Conflicts = append(result.Conflicts, key)
				anchor.MarkResolved(key)
				continue
			}
			result.Warnings = append(result.Warnings,
				recon.NewWarning(recon.WarnAnnotationFailed, err.Error()))
			continue
		}

		anchor.MarkResolved(key)
		applied = append(applied, a)
		e.logger.Debug("order %s found in %s", key, counterpart.Path)
	}

	return applied
}

// counterpartValue extracts the value carried from the counterpart row
// into the anchor annotation. Only finance-check records a price: the
// admin-side value is authoritative and the report-side value is the one
// being confirmed, so admin-check writes no comparison column.
func (e *Engine) counterpartValue(row *document.Row) string {
	if e.direction == recon.ReportToAdmin {
		return row.Cells[e.writer.Cols.AdminPrice]
	}
	return ""
}
