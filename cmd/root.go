package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/a11yscan/a11yscan/internal/detect"
	"github.com/a11yscan/a11yscan/internal/linter"
	"github.com/a11yscan/a11yscan/internal/models"
	"github.com/a11yscan/a11yscan/internal/output"
	"github.com/a11yscan/a11yscan/internal/render"
	"github.com/a11yscan/a11yscan/internal/scanner"
	"github.com/a11yscan/a11yscan/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "a11yscan",
	Short: "Accessibility auditor - scan pages and score WCAG compliance",
	Long: `a11yscan audits web pages for accessibility defects.
It drives a browser over the DevTools protocol, applies heuristic
detectors for problems automated linters miss (missing accessible
names, keyboard-unreachable controls, absent skip links), merges in
external linter findings, and scores the result against a WCAG
conformance target.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/a11yscan/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "a11yscan")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("A11YSCAN")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "a11yscan")

	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "a11yscan.db"))
	viper.SetDefault("render.debugger_url", "http://127.0.0.1:9222")
	viper.SetDefault("render.nav_timeout", "30s")
	viper.SetDefault("scan.workers", 1)
	viper.SetDefault("scan.standard", "WCAG2AA")
	viper.SetDefault("scan.strict_focus", true)
	viper.SetDefault("audit.level", "AA")
	viper.SetDefault("audit.not_run_policy", "strict")
	viper.SetDefault("linter.enabled", true)
	viper.SetDefault("linter.command", "pa11y")
	viper.SetDefault("linter.timeout", "30s")
	viper.SetDefault("linter.wait", "0s")
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	// The store is initialized lazily, only when commands actually need
	// it, so config/version/criteria run without a db.
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// newScanner assembles the configured scan pipeline. noLinter force-disables
// the external linter regardless of configuration.
func newScanner(standard string, noLinter bool) *scanner.Scanner {
	cdpOpts := render.CDPOptions{
		DebuggerURL: viper.GetString("render.debugger_url"),
		NavTimeout:  viper.GetDuration("render.nav_timeout"),
	}

	s := &scanner.Scanner{
		NewRenderer: func(ctx context.Context) (render.Renderer, error) {
			return render.NewCDP(ctx, cdpOpts)
		},
		Detect: detect.Options{
			StrictFocus: viper.GetBool("scan.strict_focus"),
		},
		Workers: viper.GetInt("scan.workers"),
	}

	if viper.GetBool("linter.enabled") && !noLinter {
		s.Linter = linter.New(linter.Config{
			Command:  viper.GetString("linter.command"),
			Standard: standard,
			Timeout:  viper.GetDuration("linter.timeout"),
			Wait:     viper.GetDuration("linter.wait"),
		})
	}

	if verbose {
		s.Progress = func(page models.PageResult) {
			errs := page.CountByType(models.IssueTypeError)
			ui.VerboseLog("%s: %s (%d errors)", page.URL, page.Status, errs)
		}
	}

	return s
}

// scanURLs runs the batch pipeline against urls. Used by scan, audit, and
// the MCP server.
func scanURLs(ctx context.Context, standard string, noLinter bool, urls []string) []models.PageResult {
	return newScanner(standard, noLinter).Batch(ctx, urls)
}
