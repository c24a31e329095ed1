// =============================================================================
// Finance Reconciler - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. A single YAML file describes where documents live and how
// their sheets and columns are named.
//
// CONFIGURATION FILE:
//   config.yaml (overridable with --config): directories, sheet names,
//   column names, clean-report settings, and behavioral defaults.
//
// ARCHITECTURE:
//   The configuration system is designed to be:
//   - Optional: a missing default config file falls back to built-in defaults
//   - Validated: defaults are applied and required values checked on load
//   - Platform-agnostic: column and sheet names are data, not code, so a
//     different marketplace export only needs a different config file
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// ReportsDir is the directory holding cleaned settlement report files.
	// Used as the candidate source for admin-check when --candidates is
	// not given.
	// Default: "./reports"
	ReportsDir string `yaml:"reports_dir"`

	// AdminDir is the directory holding admin record files.
	// Used as the candidate source for finance-check when --candidates is
	// not given.
	// Default: "./admin"
	AdminDir string `yaml:"admin_dir"`

	// =========================================================================
	// DOCUMENT LAYOUT
	// =========================================================================

	// Sheets names the sheets read and written on each document side.
	Sheets Sheets `yaml:"sheets"`

	// Columns names the identity, value, and annotation columns.
	Columns Columns `yaml:"columns"`

	// CleanReport configures the clean-report command.
	CleanReport CleanReport `yaml:"clean_report"`

	// =========================================================================
	// BEHAVIOR SETTINGS
	// =========================================================================

	// AllowReplace permits overwriting an existing, non-matching annotation.
	// Default: false, which protects prior manual corrections from being
	// silently clobbered.
	AllowReplace bool `yaml:"allow_replace"`

	// BackupBeforeWrite copies the anchor document to a timestamped backup
	// before the run mutates it in place.
	// Default: false
	BackupBeforeWrite bool `yaml:"backup_before_write"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// =============================================================================
// SHEET NAMES
// =============================================================================

// Sheets names the sheets on each document side.
type Sheets struct {
	// Report is the primary sheet of a settlement report document.
	// Empty means the first sheet in the workbook.
	Report string `yaml:"report"`

	// ReportSummary is the summary sheet of a report document, written
	// when the report is the counterpart of an admin-check run. Created
	// on demand if absent.
	// Default: "Reconciliation Summary"
	ReportSummary string `yaml:"report_summary"`

	// AdminOrders is the primary order sheet of an admin record document.
	// Default: "orders"
	AdminOrders string `yaml:"admin_orders"`

	// AdminSummary is the finance summary sheet of an admin record
	// document, used only for inbound reconciliation annotations.
	// Default: "Finance Summary"
	AdminSummary string `yaml:"admin_summary"`
}

// =============================================================================
// COLUMN NAMES
// =============================================================================

// Columns names the identity, value, and annotation columns. Per-platform
// schema normalization is out of scope; a platform with different headers
// gets a different config file, not different code.
type Columns struct {
	// ReportKey is the order identity column on the report side.
	// Default: "order_id"
	ReportKey string `yaml:"report_key"`

	// ReportSubKey is an optional sub-order identity column on the report
	// side. When set, the order key is "<key>/<subkey>".
	ReportSubKey string `yaml:"report_sub_key"`

	// AdminKey is the order identity column on the admin side.
	// Default: "order_sn"
	AdminKey string `yaml:"admin_key"`

	// AdminSubKey is an optional sub-order identity column on the admin side.
	AdminSubKey string `yaml:"admin_sub_key"`

	// AdminPrice is the admin-side net price column carried into the
	// report annotation during finance-check.
	// Default: "net_price"
	AdminPrice string `yaml:"admin_price"`

	// AdminRecordFile is the annotation column written on a report row to
	// record which admin file contains the order.
	// Default: "admin_record_file"
	AdminRecordFile string `yaml:"admin_record_file"`

	// AdminRecordPrice is the annotation column written on a report row to
	// record the admin-side price observed at match time.
	// Default: "admin_record_price"
	AdminRecordPrice string `yaml:"admin_record_price"`

	// FinanceRecordFile is the annotation column written on an admin row
	// (and on summary sheets) to record which report file settled the order.
	// Default: "finance_record_file"
	FinanceRecordFile string `yaml:"finance_record_file"`
}

// =============================================================================
// CLEAN REPORT SETTINGS
// =============================================================================

// CleanReport configures the step that turns a raw platform export into a
// Clean Finance Report suitable for reconciliation.
type CleanReport struct {
	// RawSheet is the sheet of the raw export holding the transactions.
	// Default: "Transaction Report"
	RawSheet string `yaml:"raw_sheet"`

	// HeaderRow is the 1-based row of the raw export holding the column
	// headers. Marketplace exports often carry a preamble above the table.
	// Default: 18
	HeaderRow int `yaml:"header_row"`

	// DefaultOutput is the file written when -o is not given.
	// Default: "cleaned_finance_report.xlsx"
	DefaultOutput string `yaml:"default_output"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration from a YAML file, applies defaults, and
// validates it. When the file at the default path does not exist, the
// built-in defaults are returned so the tool works without any setup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "./reports"
	}
	if cfg.AdminDir == "" {
		cfg.AdminDir = "./admin"
	}
	if cfg.Sheets.ReportSummary == "" {
		cfg.Sheets.ReportSummary = "Reconciliation Summary"
	}
	if cfg.Sheets.AdminOrders == "" {
		cfg.Sheets.AdminOrders = "orders"
	}
	if cfg.Sheets.AdminSummary == "" {
		cfg.Sheets.AdminSummary = "Finance Summary"
	}
	if cfg.Columns.ReportKey == "" {
		cfg.Columns.ReportKey = "order_id"
	}
	if cfg.Columns.AdminKey == "" {
		cfg.Columns.AdminKey = "order_sn"
	}
	if cfg.Columns.AdminPrice == "" {
		cfg.Columns.AdminPrice = "net_price"
	}
	if cfg.Columns.AdminRecordFile == "" {
		cfg.Columns.AdminRecordFile = "admin_record_file"
	}
	if cfg.Columns.AdminRecordPrice == "" {
		cfg.Columns.AdminRecordPrice = "admin_record_price"
	}
	if cfg.Columns.FinanceRecordFile == "" {
		cfg.Columns.FinanceRecordFile = "finance_record_file"
	}
	if cfg.CleanReport.RawSheet == "" {
		cfg.CleanReport.RawSheet = "Transaction Report"
	}
	if cfg.CleanReport.HeaderRow == 0 {
		cfg.CleanReport.HeaderRow = 18
	}
	if cfg.CleanReport.DefaultOutput == "" {
		cfg.CleanReport.DefaultOutput = "cleaned_finance_report.xlsx"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// validate checks the configuration for values that would break a run.
func validate(cfg *Config) error {
	if cfg.Columns.ReportKey == cfg.Columns.AdminRecordFile ||
		cfg.Columns.ReportKey == cfg.Columns.AdminRecordPrice {
		return fmt.Errorf("report key column %q collides with an annotation column", cfg.Columns.ReportKey)
	}
	if cfg.Columns.AdminKey == cfg.Columns.FinanceRecordFile {
		return fmt.Errorf("admin key column %q collides with an annotation column", cfg.Columns.AdminKey)
	}
	if cfg.CleanReport.HeaderRow < 1 {
		return fmt.Errorf("clean_report.header_row must be at least 1, got %d", cfg.CleanReport.HeaderRow)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", cfg.LogLevel)
	}
	return nil
}
