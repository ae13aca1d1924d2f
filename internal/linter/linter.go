// Package linter invokes the external accessibility linter once per page
// and parses its JSON issue output. The linter is a collaborator specified
// only at its interface: a command that accepts a target URL plus standard,
// timeout, wait, and verbosity flags, and prints a JSON array of
// issue-shaped records on stdout.
package linter

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/a11yscan/a11yscan/internal/models"
)

// Config describes how to invoke the external linter.
type Config struct {
	// Command is the linter executable, e.g. "pa11y".
	Command string
	// Standard is passed through as the ruleset identifier, e.g. "WCAG2AA".
	Standard string
	// Timeout is the linter's own page budget; the exec is additionally
	// bounded by the caller's context.
	Timeout time.Duration
	// Wait is extra settle time after load before the linter inspects.
	Wait time.Duration
}

// Runner executes the external linter.
type Runner struct {
	cfg Config
}

// New returns a Runner for the given configuration.
func New(cfg Config) *Runner {
	if cfg.Command == "" {
		cfg.Command = "pa11y"
	}
	if cfg.Standard == "" {
		cfg.Standard = "WCAG2AA"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Runner{cfg: cfg}
}

// Run invokes the linter against the URL. Any stdout that does not parse as
// a JSON array is a hard failure for the page: the returned issues then
// hold the single scan-failure sentinel and err is non-nil.
//
// A non-zero exit with parseable output is not a failure; linters
// conventionally exit non-zero when they find issues.
func (r *Runner) Run(ctx context.Context, url string) ([]models.Issue, error) {
	args := []string{
		"--reporter", "json",
		"--standard", r.cfg.Standard,
		"--timeout", strconv.FormatInt(r.cfg.Timeout.Milliseconds(), 10),
	}
	if r.cfg.Wait > 0 {
		args = append(args, "--wait", strconv.FormatInt(r.cfg.Wait.Milliseconds(), 10))
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, r.cfg.Command, args...)
	out, runErr := cmd.Output()

	var issues []models.Issue
	if jsonErr := json.Unmarshal(out, &issues); jsonErr != nil {
		err := fmt.Errorf("linter output is not a JSON array: %w", jsonErr)
		if runErr != nil {
			err = fmt.Errorf("linter failed: %w", runErr)
		}
		return []models.Issue{SentinelIssue(url, err)}, err
	}

	for i := range issues {
		if issues[i].Runner == "" {
			issues[i].Runner = models.RunnerLinter
		}
		if issues[i].TypeCode == 0 {
			issues[i].TypeCode = issues[i].Type.TypeCode()
		}
	}
	return issues, nil
}

// SentinelIssue builds the fixed "page could not be scanned" issue.
func SentinelIssue(url string, cause error) models.Issue {
	return models.Issue{
		Code:     models.SentinelCode,
		Type:     models.IssueTypeError,
		TypeCode: models.IssueTypeError.TypeCode(),
		Message:  fmt.Sprintf("Page could not be scanned: %v", cause),
		Selector: "",
		Context:  url,
		Runner:   models.RunnerLinter,
	}
}
