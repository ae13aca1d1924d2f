package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a11yscan/a11yscan/internal/models"
	"github.com/a11yscan/a11yscan/internal/score"
	"github.com/a11yscan/a11yscan/internal/store"
	"github.com/a11yscan/a11yscan/internal/wcag"
)

// ScanFunc runs the scan pipeline against a set of URLs and returns one
// PageResult per URL, in order. Injected so tools are testable without a
// browser.
type ScanFunc func(ctx context.Context, urls []string) ([]models.PageResult, error)

// Server wraps the a11yscan data layer and exposes it as MCP tools.
type Server struct {
	store    store.Store
	scan     ScanFunc
	standard string
	level    wcag.Level
}

// NewServer creates the MCP server wrapper. standard and level are the
// configured defaults used when a tool call does not override them.
func NewServer(s store.Store, scan ScanFunc, standard string, level wcag.Level) *Server {
	return &Server{
		store:    s,
		scan:     scan,
		standard: standard,
		level:    level,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("a11yscan", "1.0.0", server.WithToolCapabilities(true))

	// Register all tools
	srv.AddTool(s.scanPageTool())
	srv.AddTool(s.runAuditTool())
	srv.AddTool(s.listCriteriaTool())
	srv.AddTool(s.listRunsTool())
	srv.AddTool(s.getRunTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// splitURLs parses a whitespace- or comma-separated URL list.
func splitURLs(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	var urls []string
	for _, f := range fields {
		if f != "" {
			urls = append(urls, f)
		}
	}
	return urls
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// a11y_scan_page
func (s *Server) scanPageTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("a11y_scan_page",
		mcp.WithDescription("Scan a single web page for accessibility defects. Returns a JSON object with the page URL, scan status (ok/error), and the deduplicated issue list. Each issue has: code (machine rule code), type (error/warning/notice), message, selector (CSS path to the element), context (HTML excerpt), and runner."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Page URL to scan")),
	)
	return tool, s.handleScanPage
}

func (s *Server) handleScanPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: url"), nil
	}

	pages, err := s.scan(ctx, []string{url})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}
	if len(pages) != 1 {
		return mcp.NewToolResultError(fmt.Sprintf("expected 1 page result, got %d", len(pages))), nil
	}

	data, err := json.Marshal(pages[0])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal page result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// a11y_run_audit
func (s *Server) runAuditTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("a11y_run_audit",
		mcp.WithDescription("Scan a set of pages and score them against a WCAG conformance target. Persists the run and returns the compliance summary as JSON: overall verdict (PASS/FAIL/NOT RUN), per-level cards, per-criterion rows, and unmapped issue codes."),
		mcp.WithString("urls", mcp.Required(), mcp.Description("Page URLs, separated by commas, spaces, or newlines")),
		mcp.WithString("level", mcp.Description("Target conformance level: A, AA, AAA (default: configured level)")),
		mcp.WithString("policy", mcp.Description("NOT RUN policy when pages error: strict, lenient (default: strict)")),
	)
	return tool, s.handleRunAudit
}

func (s *Server) handleRunAudit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURLs, err := request.RequireString("urls")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: urls"), nil
	}
	urls := splitURLs(rawURLs)
	if len(urls) == 0 {
		return mcp.NewToolResultError("no URLs provided"), nil
	}

	level := s.level
	if raw := request.GetString("level", ""); raw != "" {
		level = wcag.Level(strings.ToUpper(raw))
		if level != wcag.LevelA && level != wcag.LevelAA && level != wcag.LevelAAA {
			return mcp.NewToolResultError(fmt.Sprintf("invalid level: %s (want A, AA, or AAA)", raw)), nil
		}
	}
	policy := score.ParsePolicy(request.GetString("policy", ""))

	pages, err := s.scan(ctx, urls)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	summary := score.Score(pages, score.Options{
		Standard:    s.standard,
		TargetLevel: level,
		Policy:      policy,
		Source:      "mcp",
		GeneratedAt: time.Now().UTC(),
	})

	run := &models.AuditRun{
		Source:   "mcp",
		Standard: s.standard,
		Level:    string(level),
		Overall:  summary.Overall,
		Pages:    summary.Pages,
		Summary:  summary,
	}
	if err := s.store.CreateAuditRun(ctx, run); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to persist audit run: %v", err)), nil
	}
	if err := s.store.SavePageResults(ctx, run.ID, pages); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to persist page results: %v", err)), nil
	}

	result := map[string]any{
		"run_id":  run.ID,
		"summary": summary,
	}
	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// a11y_list_criteria
func (s *Server) listCriteriaTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("a11y_list_criteria",
		mcp.WithDescription("List the WCAG success criteria catalog. Returns a JSON array of criteria with id (e.g. 2.4.1) and conformance level (A/AA/AAA)."),
		mcp.WithString("level", mcp.Description("Filter by conformance level: A, AA, AAA")),
	)
	return tool, s.handleListCriteria
}

func (s *Server) handleListCriteria(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var criteria []wcag.Criterion
	if raw := request.GetString("level", ""); raw != "" {
		level := wcag.Level(strings.ToUpper(raw))
		if level != wcag.LevelA && level != wcag.LevelAA && level != wcag.LevelAAA {
			return mcp.NewToolResultError(fmt.Sprintf("invalid level: %s (want A, AA, or AAA)", raw)), nil
		}
		criteria = wcag.LevelCriteria(level)
	} else {
		criteria = wcag.Criteria()
	}

	data, err := json.Marshal(criteria)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal criteria: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// a11y_list_runs
func (s *Server) listRunsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("a11y_list_runs",
		mcp.WithDescription("List past audit runs, newest first. Returns a JSON array with id, source, standard, target level, overall verdict, page totals, and timestamp."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to return (default: 20)")),
	)
	return tool, s.handleListRuns
}

func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)

	runs, err := s.store.ListAuditRuns(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	type runOut struct {
		ID        string            `json:"id"`
		Source    string            `json:"source"`
		Standard  string            `json:"standard"`
		Level     string            `json:"level"`
		Overall   string            `json:"overall"`
		Pages     models.PageTotals `json:"pages"`
		CreatedAt string            `json:"created_at"`
	}

	out := make([]runOut, len(runs))
	for i, r := range runs {
		out[i] = runOut{
			ID:        r.ID,
			Source:    r.Source,
			Standard:  r.Standard,
			Level:     r.Level,
			Overall:   string(r.Overall),
			Pages:     r.Pages,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// a11y_get_run
func (s *Server) getRunTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("a11y_get_run",
		mcp.WithDescription("Get a past audit run by ID, including its full compliance summary and per-page issue lists."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Audit run ID (ULID)")),
	)
	return tool, s.handleGetRun
}

func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := request.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: run_id"), nil
	}

	run, err := s.store.GetAuditRun(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run not found: %s", runID)), nil
	}
	pages, err := s.store.ListPageResults(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load page results: %v", err)), nil
	}

	result := map[string]any{
		"id":         run.ID,
		"source":     run.Source,
		"standard":   run.Standard,
		"level":      run.Level,
		"overall":    string(run.Overall),
		"pages":      run.Pages,
		"created_at": run.CreatedAt.Format(time.RFC3339),
		"summary":    run.Summary,
		"results":    pages,
	}

	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal run: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
