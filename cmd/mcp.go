package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/a11yscan/a11yscan/internal/mcp"
	"github.com/a11yscan/a11yscan/internal/models"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for assistant integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets MCP clients scan pages and run audits natively. Configure
with:

  {
    "mcpServers": {
      "a11yscan": { "command": "a11yscan", "args": ["mcp"] }
    }
  }

Available tools: a11y_scan_page, a11y_run_audit, a11y_list_criteria,
a11y_list_runs, a11y_get_run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(ctx context.Context) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	standard := viper.GetString("scan.standard")
	level, err := parseLevel(viper.GetString("audit.level"))
	if err != nil {
		return err
	}

	scan := func(ctx context.Context, urls []string) ([]models.PageResult, error) {
		return scanURLs(ctx, standard, false, urls), nil
	}

	srv := mcp.NewServer(s, scan, standard, level)
	return srv.ServeStdio(ctx)
}
