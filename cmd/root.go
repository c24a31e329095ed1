// =============================================================================
// Finance Reconciler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (reconciler)
//   ├── financeCheckCmd (reconciler finance-check)
//   ├── adminCheckCmd   (reconciler admin-check)
//   ├── cleanReportCmd  (reconciler clean-report)
//   └── versionCmd      (reconciler version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "reconciler",

	Short: "Finance Reconciler - Match settlement reports against admin order records",

	Long: `Finance Reconciler cross-references e-commerce order records between
platform-issued settlement reports and seller-side admin record files.

Marketplaces settle payment only after delivery confirmation, often weeks
after order creation, so a settled order in a report usually corresponds to
an admin record created long before. The reconciler searches a backlog of
dated counterpart files for every order in an anchor document, annotates
both sides with cross-references, and stops reading files as soon as every
order is accounted for.

Example Usage:
  reconciler clean-report Income.20251120.xlsx        # Prepare a report for matching
  reconciler finance-check cleaned_finance_report_20251120.xlsx --candidates ./admin
  reconciler admin-check admin_orders_20251101.xlsx --candidates './reports/*.xlsx'`,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// Persistent flags are available to this command and all subcommands.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (default is config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
