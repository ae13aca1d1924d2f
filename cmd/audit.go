package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/a11yscan/a11yscan/internal/models"
	"github.com/a11yscan/a11yscan/internal/output"
	"github.com/a11yscan/a11yscan/internal/report"
	"github.com/a11yscan/a11yscan/internal/score"
	"github.com/a11yscan/a11yscan/internal/wcag"
)

var (
	auditURLsFile string
	auditLevel    string
	auditPolicy   string
	auditOut      string
	auditNoLinter bool
	auditNoSave   bool
)

// urlsFile is the YAML shape accepted by --urls.
type urlsFile struct {
	URLs     []string `yaml:"urls"`
	Standard string   `yaml:"standard"`
	Level    string   `yaml:"level"`
}

var auditCmd = &cobra.Command{
	Use:   "audit [URL...]",
	Short: "Scan pages and score WCAG compliance",
	Long: `Scan a set of pages and score them against a WCAG conformance target.

Pages come from positional arguments or from a YAML file via --urls:

  urls:
    - https://example.com/
    - https://example.com/about
  standard: WCAG2AA
  level: AA

The audit verdict is PASS only when every criterion at the target level
and below has evidence and none failed. Criteria without evidence are
NOT RUN; the --policy flag decides how page scan errors degrade them.

The run is persisted and can be inspected later with 'a11yscan runs'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return auditRun(cmd.Context(), args)
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditURLsFile, "urls", "", "YAML file listing the URLs to audit")
	auditCmd.Flags().StringVar(&auditLevel, "level", "", "Target conformance level: A, AA, AAA (default from config)")
	auditCmd.Flags().StringVar(&auditPolicy, "policy", "", "NOT RUN policy when pages error: strict, lenient")
	auditCmd.Flags().StringVarP(&auditOut, "out", "o", "", "Directory to write audit.json and audit.html to")
	auditCmd.Flags().BoolVar(&auditNoLinter, "no-linter", false, "Skip the external linter")
	auditCmd.Flags().BoolVar(&auditNoSave, "no-save", false, "Do not persist the run")
	rootCmd.AddCommand(auditCmd)
}

func auditRun(ctx context.Context, args []string) error {
	urls := args
	source := "cli"
	standard := viper.GetString("scan.standard")
	level := viper.GetString("audit.level")

	if auditURLsFile != "" {
		if len(args) > 0 {
			return fmt.Errorf("pass URLs either as arguments or via --urls, not both")
		}
		var f urlsFile
		data, err := os.ReadFile(auditURLsFile)
		if err != nil {
			return fmt.Errorf("read urls file: %w", err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("parse urls file: %w", err)
		}
		urls = f.URLs
		source = auditURLsFile
		if f.Standard != "" {
			standard = f.Standard
		}
		if f.Level != "" {
			level = f.Level
		}
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to audit")
	}

	// Flag beats file beats config.
	if auditLevel != "" {
		level = auditLevel
	}
	target, err := parseLevel(level)
	if err != nil {
		return err
	}

	policy := score.ParsePolicy(auditPolicy)
	if auditPolicy == "" {
		policy = score.ParsePolicy(viper.GetString("audit.not_run_policy"))
	}

	if dryRun {
		ui.DryRunMsg("Would audit %d page(s) against %s level %s", len(urls), standard, target)
		return nil
	}

	pages := scanURLs(ctx, standard, auditNoLinter, urls)

	summary := score.Score(pages, score.Options{
		Standard:    standard,
		TargetLevel: target,
		Policy:      policy,
		Source:      source,
		GeneratedAt: time.Now().UTC(),
	})

	printAuditSummary(summary)

	if !auditNoSave {
		s, err := getStore()
		if err != nil {
			return err
		}
		run := &models.AuditRun{
			Source:   source,
			Standard: standard,
			Level:    string(target),
			Overall:  summary.Overall,
			Pages:    summary.Pages,
			Summary:  summary,
		}
		if err := s.CreateAuditRun(ctx, run); err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
		if err := s.SavePageResults(ctx, run.ID, pages); err != nil {
			return fmt.Errorf("persist page results: %w", err)
		}
		ui.Info("Run saved: %s", run.ID)
	}

	if auditOut != "" {
		if _, err := report.WritePages(auditOut, source, pages); err != nil {
			return fmt.Errorf("write page reports: %w", err)
		}
		if err := report.WriteSummary(auditOut, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		ui.Success("Wrote audit report to %s", auditOut)
	}

	if summary.Overall == models.StatusFail {
		return fmt.Errorf("audit failed: %d criteria failing", len(summary.FailedCriteria()))
	}
	return nil
}

func parseLevel(s string) (wcag.Level, error) {
	level := wcag.Level(strings.ToUpper(strings.TrimSpace(s)))
	switch level {
	case wcag.LevelA, wcag.LevelAA, wcag.LevelAAA:
		return level, nil
	}
	return "", fmt.Errorf("invalid conformance level: %q (want A, AA, or AAA)", s)
}

func printAuditSummary(summary *models.AuditSummary) {
	fmt.Fprintf(ui.Out, "Overall: %s  (%s level %s, %d/%d pages scanned)\n\n",
		output.VerdictColor(string(summary.Overall)),
		summary.Target.Standard, summary.Target.Level,
		summary.Pages.Scanned, summary.Pages.Requested)

	table := ui.Table([]string{"Level", "Criteria", "Passed", "Failed", "Status"})
	for _, card := range summary.Levels {
		table.Append([]string{
			card.Level,
			fmt.Sprintf("%d", card.Total),
			fmt.Sprintf("%d", card.Passed),
			fmt.Sprintf("%d", card.Failed),
			output.VerdictColor(string(card.Status)),
		})
	}
	table.Render()

	failed := summary.FailedCriteria()
	if len(failed) > 0 {
		fmt.Fprintln(ui.Out)
		ft := ui.Table([]string{"Criterion", "Level", "Issues", "Pages", "Sample"})
		for _, row := range failed {
			ft.Append([]string{
				row.Criterion,
				row.Level,
				fmt.Sprintf("%d", row.IssueCount),
				fmt.Sprintf("%d", row.PageCount),
				row.SampleMessage,
			})
		}
		ft.Render()
	}

	if len(summary.Unknown) > 0 {
		fmt.Fprintln(ui.Out)
		ui.Warning("%d issue code(s) did not map to a catalog criterion:", len(summary.Unknown))
		for _, u := range summary.Unknown {
			fmt.Fprintf(ui.Out, "  %s (%d issues on %d pages)\n", u.Code, u.IssueCount, u.PageCount)
		}
	}
}
