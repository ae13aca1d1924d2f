package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/a11yscan/a11yscan/internal/output"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past audit runs",
	Long: `List past audit runs, newest first.

Running bare 'a11yscan runs' is the same as 'a11yscan runs list'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runsListRun(cmd.Context())
	},
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past audit runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runsListRun(cmd.Context())
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show a past audit run in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runsShowRun(cmd.Context(), args[0])
	},
}

func init() {
	runsCmd.PersistentFlags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runsListRun(ctx context.Context) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	runs, err := s.ListAuditRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		ui.Info("No audit runs recorded yet. Run 'a11yscan audit' first.")
		return nil
	}

	table := ui.Table([]string{"ID", "When", "Source", "Target", "Pages", "Overall"})
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			fmt.Sprintf("%s/%s", r.Standard, r.Level),
			fmt.Sprintf("%d/%d", r.Pages.Scanned, r.Pages.Requested),
			output.VerdictColor(string(r.Overall)),
		})
	}
	table.Render()
	return nil
}

func runsShowRun(ctx context.Context, runID string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	run, err := s.GetAuditRun(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "Run %s  %s\n", run.ID, run.CreatedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(ui.Out, "Source: %s\n\n", run.Source)

	if run.Summary != nil {
		printAuditSummary(run.Summary)
	} else {
		fmt.Fprintf(ui.Out, "Overall: %s (%s level %s)\n",
			output.VerdictColor(string(run.Overall)), run.Standard, run.Level)
	}

	pages, err := s.ListPageResults(ctx, runID)
	if err != nil {
		return err
	}
	if len(pages) > 0 {
		fmt.Fprintln(ui.Out)
		printScanResults(pages)
	}
	return nil
}
