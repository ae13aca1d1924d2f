package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a11yscan/a11yscan/internal/models"
	"github.com/a11yscan/a11yscan/internal/store"
)

var (
	exportFormat string
	exportType   string
	exportRunID  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit data as json, csv, or markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun(cmd.Context())
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv, markdown")
	exportCmd.Flags().StringVar(&exportType, "type", "runs", "Data type: runs, criteria, issues")
	exportCmd.Flags().StringVar(&exportRunID, "run", "", "Run ID (required for criteria and issues)")
	rootCmd.AddCommand(exportCmd)
}

func exportRun(ctx context.Context) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	switch exportType {
	case "runs":
		return exportRuns(ctx, s)
	case "criteria":
		return exportCriteria(ctx, s)
	case "issues":
		return exportIssues(ctx, s)
	default:
		return fmt.Errorf("unknown export type: %s (use: runs, criteria, issues)", exportType)
	}
}

func exportRuns(ctx context.Context, s store.Store) error {
	runs, err := s.ListAuditRuns(ctx, 0)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{"ID", "Created", "Source", "Standard", "Level", "Overall", "Requested", "Scanned", "Errors"})
		for _, r := range runs {
			w.Write([]string{r.ID, r.CreatedAt.Format("2006-01-02T15:04:05Z"), r.Source, r.Standard, r.Level,
				string(r.Overall), fmt.Sprintf("%d", r.Pages.Requested), fmt.Sprintf("%d", r.Pages.Scanned),
				fmt.Sprintf("%d", r.Pages.ScanErrors)})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Audit Runs")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| When | Source | Target | Pages | Overall |")
		fmt.Fprintln(ui.Out, "|------|--------|--------|-------|---------|")
		for _, r := range runs {
			fmt.Fprintf(ui.Out, "| %s | %s | %s/%s | %d/%d | %s |\n",
				r.CreatedAt.Format("2006-01-02"), r.Source, r.Standard, r.Level,
				r.Pages.Scanned, r.Pages.Requested, r.Overall)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

func exportCriteria(ctx context.Context, s store.Store) error {
	if exportRunID == "" {
		return fmt.Errorf("--run is required for criteria export")
	}
	run, err := s.GetAuditRun(ctx, exportRunID)
	if err != nil {
		return err
	}
	if run.Summary == nil {
		return fmt.Errorf("run %s has no stored summary", exportRunID)
	}
	rows := run.Summary.Criteria

	switch exportFormat {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{"Criterion", "Level", "Status", "Issues", "Pages", "Sample"})
		for _, row := range rows {
			w.Write([]string{row.Criterion, row.Level, string(row.Status),
				fmt.Sprintf("%d", row.IssueCount), fmt.Sprintf("%d", row.PageCount), row.SampleMessage})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintf(ui.Out, "# Criteria for run %s\n", run.ID)
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| Criterion | Level | Status | Issues | Pages |")
		fmt.Fprintln(ui.Out, "|-----------|-------|--------|--------|-------|")
		for _, row := range rows {
			fmt.Fprintf(ui.Out, "| %s | %s | %s | %d | %d |\n",
				row.Criterion, row.Level, row.Status, row.IssueCount, row.PageCount)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

func exportIssues(ctx context.Context, s store.Store) error {
	if exportRunID == "" {
		return fmt.Errorf("--run is required for issues export")
	}
	pages, err := s.ListPageResults(ctx, exportRunID)
	if err != nil {
		return err
	}

	type flatIssue struct {
		URL string `json:"url"`
		models.Issue
	}
	var issues []flatIssue
	for _, p := range pages {
		for _, issue := range p.Issues {
			issues = append(issues, flatIssue{URL: p.URL, Issue: issue})
		}
	}

	switch exportFormat {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(issues)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{"URL", "Code", "Type", "Message", "Selector", "Runner"})
		for _, i := range issues {
			w.Write([]string{i.URL, i.Code, string(i.Type), i.Message, i.Selector, i.Runner})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintf(ui.Out, "# Issues for run %s\n", exportRunID)
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| URL | Type | Message |")
		fmt.Fprintln(ui.Out, "|-----|------|---------|")
		for _, i := range issues {
			fmt.Fprintf(ui.Out, "| %s | %s | %s |\n", i.URL, i.Type, i.Message)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}
