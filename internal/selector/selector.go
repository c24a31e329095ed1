// =============================================================================
// Finance Reconciler - Candidate Selector
// =============================================================================
//
// This module produces the ordered sequence of counterpart documents a run
// will search. Selection is lazy with respect to content: only paths and
// their filename dates are enumerated, never file contents.
//
// ORDERING POLICY:
//   - finance-check (report -> admin): most-recent-first. The matching
//     admin record predates settlement, so scanning backward from the
//     settlement date minimizes average search depth.
//   - admin-check (admin -> report): oldest-first. Settlement always
//     occurs after order creation.
//
// Files outside an explicit date range are excluded entirely, not merely
// deprioritized. Files without a recognizable 8-digit date in their name
// are excluded with a warning. The sequence is produced once per run; a
// new run re-enumerates.
//
// =============================================================================

package selector

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tjadmin/finance-reconciler/internal/recon"
	"github.com/tjadmin/finance-reconciler/pkg/utils"
)

// =============================================================================
// CANDIDATE
// =============================================================================

// Candidate references one counterpart document by path and date. The
// document contents are not loaded until the engine scans it.
type Candidate struct {
	// Path is the document file path.
	Path string

	// Date is the document date derived from the file name.
	Date time.Time
}

// =============================================================================
// SELECTION
// =============================================================================

// Select enumerates and orders the candidate documents for a run.
//
// PARAMETERS:
//   - source: A directory (all .xlsx files inside) or a glob pattern.
//   - anchorPath: The anchor document, excluded from the candidate set.
//   - from, to: Optional inclusive date bounds; nil means unbounded.
//   - direction: Determines the scan order (see ordering policy above).
//
// RETURNS:
//   - The ordered candidate sequence.
//   - Warnings for files excluded because their name carries no date.
//   - An error if the source cannot be enumerated.
func Select(source, anchorPath string, from, to *time.Time, direction recon.Direction) ([]Candidate, []recon.Warning, error) {
	paths, err := enumerate(source)
	if err != nil {
		return nil, nil, err
	}

	anchorAbs, _ := filepath.Abs(anchorPath)

	var candidates []Candidate
	var warnings []recon.Warning
	for _, path := range paths {
		if abs, _ := filepath.Abs(path); abs == anchorAbs {
			continue
		}

		date, ok := utils.FileDate(path)
		if !ok {
			warnings = append(warnings, recon.NewWarning(recon.WarnUndatedFile,
				fmt.Sprintf("skipping %s: no recognizable date in file name", path)))
			continue
		}
		if from != nil && date.Before(*from) {
			continue
		}
		if to != nil && date.After(*to) {
			continue
		}

		candidates = append(candidates, Candidate{Path: path, Date: date})
	}

	orderCandidates(candidates, direction)
	return candidates, warnings, nil
}

// enumerate lists the files matching a directory or glob source.
func enumerate(source string) ([]string, error) {
	info, err := os.Stat(source)
	if err == nil && info.IsDir() {
		source = filepath.Join(source, "*.xlsx")
	}

	paths, err := filepath.Glob(source)
	if err != nil {
		return nil, fmt.Errorf("invalid candidate pattern %q: %w", source, err)
	}
	return paths, nil
}

// orderCandidates sorts candidates per the direction's scan policy, with
// path as a deterministic tie-break for same-day files.
func orderCandidates(candidates []Candidate, direction recon.Direction) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.Date.Equal(b.Date) {
			if direction == recon.ReportToAdmin {
				return a.Date.After(b.Date)
			}
			return a.Date.Before(b.Date)
		}
		return a.Path < b.Path
	})
}
