// =============================================================================
// Finance Reconciler - Order Key Extractor
// =============================================================================
//
// This module derives a canonical, comparable identity for an order row
// from a document's native columns. The key must be stable across documents
// describing the same order at different times (creation vs settlement), so
// extraction is pure: the same cells always yield the same key, independent
// of row position or document.
//
// =============================================================================

package orderkey

import (
	"strings"

	"github.com/tjadmin/finance-reconciler/internal/recon"
)

// Separator joins the order id and the optional sub-order id into one key.
const Separator = "/"

// =============================================================================
// EXTRACTOR
// =============================================================================

// Extractor derives order keys from row cells.
type Extractor struct {
	// KeyColumn is the column holding the order id. Required.
	KeyColumn string

	// SubKeyColumn is an optional column holding a sub-order id. When set
	// and non-empty on a row, the key becomes "<id>/<subid>".
	SubKeyColumn string
}

// Extract derives the order key from one row's cells.
//
// PARAMETERS:
//   - cells: The row values keyed by column name.
//   - path: The owning document, used only for error context.
//   - sheetRow: The 1-based sheet row, used only for error context.
//
// RETURNS:
//   - The order key.
//   - A *recon.MalformedRowError when the identity cell is absent or empty.
func (e Extractor) Extract(cells map[string]string, path string, sheetRow int) (recon.OrderKey, error) {
	id := strings.TrimSpace(cells[e.KeyColumn])
	if id == "" {
		return "", &recon.MalformedRowError{
			Path:     path,
			SheetRow: sheetRow,
			Column:   e.KeyColumn,
		}
	}

	if e.SubKeyColumn != "" {
		if sub := strings.TrimSpace(cells[e.SubKeyColumn]); sub != "" {
			return recon.OrderKey(id + Separator + sub), nil
		}
	}

	return recon.OrderKey(id), nil
}
