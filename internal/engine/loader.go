// =============================================================================
// Finance Reconciler - File Loader
// =============================================================================
//
// The production Loader implementation. It maps the run direction onto the
// configured sheet and column layout of each document side:
//
//   finance-check:  anchor = report document, candidates = admin documents
//   admin-check:    anchor = admin document,  candidates = report documents
//
// =============================================================================

package engine

import (
	"github.com/tjadmin/finance-reconciler/internal/config"
	"github.com/tjadmin/finance-reconciler/internal/document"
	"github.com/tjadmin/finance-reconciler/internal/orderkey"
	"github.com/tjadmin/finance-reconciler/internal/recon"
)

// FileLoader opens documents from the filesystem using the configured
// document layout.
type FileLoader struct {
	cfg       *config.Config
	direction recon.Direction
}

// NewFileLoader creates a loader for the given direction.
func NewFileLoader(cfg *config.Config, direction recon.Direction) *FileLoader {
	return &FileLoader{cfg: cfg, direction: direction}
}

// LoadAnchor opens the anchor document for the loader's direction.
func (l *FileLoader) LoadAnchor(path string) (*document.Document, error) {
	if l.direction == recon.ReportToAdmin {
		return document.Load(path, document.KindReport, l.reportOptions())
	}
	return document.Load(path, document.KindAdmin, l.adminOptions())
}

// LoadCandidate opens one counterpart document for the loader's direction.
func (l *FileLoader) LoadCandidate(path string) (*document.Document, error) {
	if l.direction == recon.ReportToAdmin {
		return document.Load(path, document.KindAdmin, l.adminOptions())
	}
	return document.Load(path, document.KindReport, l.reportOptions())
}

// reportOptions is the sheet and column layout of a settlement report.
func (l *FileLoader) reportOptions() document.Options {
	return document.Options{
		Sheet:            l.cfg.Sheets.Report,
		SummarySheet:     l.cfg.Sheets.ReportSummary,
		SummaryKeyColumn: l.cfg.Columns.ReportKey,
		Extractor: orderkey.Extractor{
			KeyColumn:    l.cfg.Columns.ReportKey,
			SubKeyColumn: l.cfg.Columns.ReportSubKey,
		},
	}
}

// adminOptions is the sheet and column layout of an admin record file.
func (l *FileLoader) adminOptions() document.Options {
	return document.Options{
		Sheet:            l.cfg.Sheets.AdminOrders,
		SummarySheet:     l.cfg.Sheets.AdminSummary,
		SummaryKeyColumn: l.cfg.Columns.AdminKey,
		Extractor: orderkey.Extractor{
			KeyColumn:    l.cfg.Columns.AdminKey,
			SubKeyColumn: l.cfg.Columns.AdminSubKey,
		},
	}
}
