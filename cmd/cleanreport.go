// =============================================================================
// Finance Reconciler - Clean Report Command
// =============================================================================
//
// This file defines the 'clean-report' command, which turns a raw platform
// settlement export into a Clean Finance Report ready for finance-check.
//
// COMMAND USAGE:
//   reconciler clean-report <raw_export.xlsx> [-o output.xlsx]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjadmin/finance-reconciler/internal/cleanreport"
	"github.com/tjadmin/finance-reconciler/internal/config"
)

// outputFile is the destination of the clean report.
var outputFile string

// cleanReportCmd represents the 'clean-report' command.
var cleanReportCmd = &cobra.Command{
	Use:   "clean-report <raw_export.xlsx>",
	Short: "Produce a Clean Finance Report from a raw platform export",
	Long: `The clean-report command reads a raw settlement export, whose transaction
table starts below a preamble of summary rows, and writes a clean report
with the header hoisted to the first row and an empty admin_record_file
column appended for later finance-check annotation.

If the destination file already exists it is never overwritten; the report
is saved under a timestamped name instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCleanReport(args[0])
	},
}

// init registers the clean-report command and its flags.
func init() {
	cleanReportCmd.Flags().StringVarP(&outputFile, "output", "o", "",
		"Path of the clean report (default: configured default output)")
	rootCmd.AddCommand(cleanReportCmd)
}

// runCleanReport executes the clean-report pipeline.
func runCleanReport(inputPath string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	written, err := cleanreport.Clean(inputPath, outputFile, cfg.CleanReport, cfg.Columns.AdminRecordFile)
	if err != nil {
		return err
	}

	fmt.Printf("Clean finance report saved to %s\n", written)
	return nil
}
