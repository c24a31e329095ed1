// =============================================================================
// Finance Reconciler - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Finance Reconciler CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   reconciler finance-check <report.xlsx>  - Match a settlement report against admin records
//   reconciler admin-check <admin.xlsx>     - Match an admin record against settlement reports
//   reconciler clean-report <export.xlsx>   - Produce a clean finance report from a raw export
//   reconciler version                      - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/tjadmin/finance-reconciler/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
