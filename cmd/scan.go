package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/a11yscan/a11yscan/internal/models"
	"github.com/a11yscan/a11yscan/internal/output"
	"github.com/a11yscan/a11yscan/internal/report"
)

var (
	scanOut      string
	scanNoLinter bool
)

var scanCmd = &cobra.Command{
	Use:   "scan URL [URL...]",
	Short: "Scan pages for accessibility defects",
	Long: `Scan one or more pages and list the accessibility defects found.

Each page is rendered in a browser attached via the DevTools protocol,
checked by the built-in heuristic detector, and (unless disabled) by
the configured external linter. Findings from both are merged and
deduplicated.

With --out, per-page issue reports and a manifest are written as JSON.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return scanRun(cmd.Context(), args)
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "Directory to write JSON reports to")
	scanCmd.Flags().BoolVar(&scanNoLinter, "no-linter", false, "Skip the external linter")
	rootCmd.AddCommand(scanCmd)
}

func scanRun(ctx context.Context, urls []string) error {
	if dryRun {
		ui.DryRunMsg("Would scan %d page(s)", len(urls))
		return nil
	}

	standard := viper.GetString("scan.standard")
	started := time.Now()
	pages := scanURLs(ctx, standard, scanNoLinter, urls)

	printScanResults(pages)
	ui.Info("Scanned %d page(s) in %s", len(urls), time.Since(started).Round(time.Millisecond))

	if scanOut != "" {
		manifest, err := report.WritePages(scanOut, "scan", pages)
		if err != nil {
			return fmt.Errorf("write reports: %w", err)
		}
		ui.Success("Wrote %d report(s) to %s", len(manifest.Pages), scanOut)
	}

	if n := countErrored(pages); n > 0 {
		return fmt.Errorf("%d page(s) failed to scan", n)
	}
	return nil
}

func countErrored(pages []models.PageResult) int {
	n := 0
	for _, p := range pages {
		if p.Status == models.PageStatusError {
			n++
		}
	}
	return n
}

func printScanResults(pages []models.PageResult) {
	table := ui.Table([]string{"Page", "Status", "Errors", "Warnings", "Notices"})
	for _, p := range pages {
		table.Append([]string{
			p.URL,
			output.VerdictColor(statusLabel(p.Status)),
			fmt.Sprintf("%d", p.CountByType(models.IssueTypeError)),
			fmt.Sprintf("%d", p.CountByType(models.IssueTypeWarning)),
			fmt.Sprintf("%d", p.CountByType(models.IssueTypeNotice)),
		})
	}
	table.Render()

	if !verbose {
		return
	}
	for _, p := range pages {
		if len(p.Issues) == 0 {
			continue
		}
		fmt.Fprintf(ui.Out, "\n%s\n", output.Cyan(p.URL))
		for _, issue := range p.Issues {
			fmt.Fprintf(ui.Out, "  %s %s\n", output.SeverityColor(string(issue.Type)), issue.Message)
			if issue.Selector != "" {
				fmt.Fprintf(ui.Out, "    %s\n", issue.Selector)
			}
		}
	}
}

func statusLabel(s models.PageStatus) string {
	if s == models.PageStatusError {
		return "ERROR"
	}
	return "OK"
}
