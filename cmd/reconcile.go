// =============================================================================
// Finance Reconciler - Reconcile Commands
// =============================================================================
//
// This file defines the 'finance-check' and 'admin-check' commands. Both
// run the same reconciliation pipeline; only the direction differs.
//
// COMMAND USAGE:
//   reconciler finance-check <report.xlsx> [flags]
//   reconciler admin-check <admin.xlsx> [flags]
//
// FLAGS:
//   --candidates    : Directory or glob of counterpart documents
//                     (default: configured admin/reports directory)
//   --from, --to    : Inclusive date range for candidate file dates
//   --allow-replace : Permit overwriting a non-matching prior annotation
//   --backup        : Copy the anchor to a timestamped backup before writing
//   --strict        : Exit non-zero when any order remains unresolved
//
// EXIT STATUS:
//   Unresolved orders are an expected steady state (orders awaiting future
//   settlement), so by default they produce success-with-warnings. --strict
//   turns them into a failure.
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tjadmin/finance-reconciler/internal/annotate"
	"github.com/tjadmin/finance-reconciler/internal/config"
	"github.com/tjadmin/finance-reconciler/internal/engine"
	"github.com/tjadmin/finance-reconciler/internal/recon"
	"github.com/tjadmin/finance-reconciler/internal/selector"
	"github.com/tjadmin/finance-reconciler/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// candidateSource is the directory or glob of counterpart documents.
var candidateSource string

// fromDate and toDate bound the candidate date range (YYYY-MM-DD).
var fromDate, toDate string

// allowReplace permits overwriting a non-matching prior annotation.
var allowReplace bool

// backup copies the anchor to a timestamped backup before the run.
var backup bool

// strict makes unresolved orders a failure instead of a warning.
var strict bool

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

// financeCheckCmd anchors on a settlement report and searches admin files.
var financeCheckCmd = &cobra.Command{
	Use:   "finance-check <report.xlsx>",
	Short: "Match a settlement report's orders against admin record files",
	Long: `The finance-check command anchors on a cleaned settlement report and
searches admin record files for each of its orders. Candidates are scanned
most-recent-first relative to the report, since the matching admin record
predates settlement.

Each matched report row gains admin_record_file and admin_record_price
columns; each matched admin file gains a back-reference in its finance
summary sheet. Scanning stops as soon as every order is accounted for.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(recon.ReportToAdmin, args[0])
	},
}

// adminCheckCmd anchors on an admin record file and searches reports.
var adminCheckCmd = &cobra.Command{
	Use:   "admin-check <admin.xlsx>",
	Short: "Match an admin record file's orders against settlement reports",
	Long: `The admin-check command anchors on an admin record file and searches
settlement reports for each of its orders. Candidates are scanned
oldest-first from the admin file's date, since settlement always occurs
after order creation.

Each matched admin row gains a finance_record_file column; each matched
report gains a back-reference in its summary sheet. Admin-side values are
authoritative, so no price-comparison column is written in this direction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(recon.AdminToReport, args[0])
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers both commands and their shared flags.
func init() {
	for _, c := range []*cobra.Command{financeCheckCmd, adminCheckCmd} {
		c.Flags().StringVar(&candidateSource, "candidates", "",
			"Directory or glob of counterpart documents (default: configured directory)")
		c.Flags().StringVar(&fromDate, "from", "",
			"Earliest candidate date to search, YYYY-MM-DD (inclusive)")
		c.Flags().StringVar(&toDate, "to", "",
			"Latest candidate date to search, YYYY-MM-DD (inclusive)")
		c.Flags().BoolVar(&allowReplace, "allow-replace", false,
			"Permit overwriting an existing, non-matching annotation")
		c.Flags().BoolVar(&backup, "backup", false,
			"Copy the anchor document to a timestamped backup before writing")
		c.Flags().BoolVar(&strict, "strict", false,
			"Exit non-zero when any order remains unresolved")
		rootCmd.AddCommand(c)
	}
}

// =============================================================================
// MAIN RECONCILIATION FUNCTION
// =============================================================================

// runReconcile executes one reconciliation run in the given direction.
func runReconcile(direction recon.Direction, anchorPath string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if allowReplace {
		cfg.AllowReplace = true
	}
	if backup {
		cfg.BackupBeforeWrite = true
	}

	from, err := parseDateFlag(fromDate, "--from")
	if err != nil {
		return err
	}
	to, err := parseDateFlag(toDate, "--to")
	if err != nil {
		return err
	}

	source := candidateSource
	if source == "" {
		if direction == recon.ReportToAdmin {
			source = cfg.AdminDir
		} else {
			source = cfg.ReportsDir
		}
	}

	fmt.Println("=== Finance Reconciler ===")
	fmt.Printf("Direction:  %s\n", direction)
	fmt.Printf("Anchor:     %s\n", anchorPath)
	fmt.Printf("Candidates: %s\n", source)

	candidates, selectWarnings, err := selector.Select(source, anchorPath, from, to, direction)
	if err != nil {
		return fmt.Errorf("failed to enumerate candidates: %w", err)
	}
	fmt.Printf("Found %d candidate document(s)\n", len(candidates))

	if cfg.BackupBeforeWrite {
		backupPath, err := utils.BackupFile(anchorPath)
		if err != nil {
			return fmt.Errorf("failed to back up anchor: %w", err)
		}
		fmt.Printf("Anchor backed up to %s\n", backupPath)
	}

	logLevel := cfg.LogLevel
	if verbose {
		logLevel = "debug"
	}

	writer := &annotate.Writer{
		Direction:    direction,
		AllowReplace: cfg.AllowReplace,
		Cols:         cfg.Columns,
	}
	eng := engine.New(direction, engine.NewFileLoader(cfg, direction), writer, engine.NewLogger(logLevel))

	result, err := eng.Run(anchorPath, candidates)
	if err != nil {
		return err
	}
	result.Warnings = append(result.Warnings, selectWarnings...)

	printSummary(result)

	if strict && len(result.UnresolvedKeys) > 0 {
		return fmt.Errorf("%d order(s) unresolved", len(result.UnresolvedKeys))
	}
	return nil
}

// printSummary prints the run outcome in a human-readable form.
func printSummary(result *engine.RunResult) {
	fmt.Println("\n=== Reconciliation Complete ===")
	fmt.Printf("Run ID:             %s\n", result.RunID)
	fmt.Printf("State:              %s\n", result.State)
	fmt.Printf("Total orders:       %d\n", result.TotalOrders)
	fmt.Printf("Resolved:           %d\n", result.Resolved)
	fmt.Printf("Conflicts:          %d\n", len(result.Conflicts))
	fmt.Printf("Unresolved:         %d\n", len(result.UnresolvedKeys))
	fmt.Printf("Candidates scanned: %d\n", result.CandidatesScanned)
	fmt.Printf("Time elapsed:       %s\n", result.Elapsed)

	if len(result.UnresolvedKeys) > 0 {
		fmt.Println("\nUnresolved orders (awaiting future settlement):")
		for _, key := range result.UnresolvedKeys {
			fmt.Printf("  - %s\n", key)
		}
	}
	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("  [%s] %s\n", w.Code, w.Message)
		}
	}
}

// parseDateFlag parses an optional YYYY-MM-DD flag value.
func parseDateFlag(value, flag string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date %q: use YYYY-MM-DD", flag, value)
	}
	return &t, nil
}
