package linter

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a11yscan/a11yscan/internal/models"
)

// fakeLinter writes an executable script that prints the given stdout and
// exits with the given code.
func fakeLinter(t *testing.T, stdout string, exitCode int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakelinter")
	script := "#!/bin/sh\ncat <<'EOF'\n" + stdout + "\nEOF\nexit " + strconv.Itoa(exitCode) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRun_ParsesIssues(t *testing.T) {
	out := `[{"code":"WCAG2AA.Principle1.Guideline1_1.1_1_1.H37","type":"error","typeCode":1,"message":"Img element missing an alt attribute.","selector":"html > body > img","context":"<img src=\"x.png\">"}]`
	r := New(Config{Command: fakeLinter(t, out, 0)})

	issues, err := r.Run(context.Background(), "https://example.com/")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "WCAG2AA.Principle1.Guideline1_1.1_1_1.H37", issues[0].Code)
	assert.Equal(t, models.RunnerLinter, issues[0].Runner, "runner tag filled in when absent")
}

func TestRun_NonZeroExitWithValidJSON(t *testing.T) {
	// Linters exit non-zero when they find issues; that is not a failure.
	out := `[{"code":"WCAG2AA.Principle2.Guideline2_4.2_4_1.G1","type":"error","message":"x","selector":"html"}]`
	r := New(Config{Command: fakeLinter(t, out, 2)})

	issues, err := r.Run(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestRun_EmptyArray(t *testing.T) {
	r := New(Config{Command: fakeLinter(t, "[]", 0)})

	issues, err := r.Run(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestRun_NonJSONOutputSynthesizesSentinel(t *testing.T) {
	r := New(Config{Command: fakeLinter(t, "Error: browser not found", 0)})

	issues, err := r.Run(context.Background(), "https://example.com/")
	require.Error(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, models.SentinelCode, issues[0].Code)
	assert.Equal(t, models.IssueTypeError, issues[0].Type)
}

func TestRun_MissingCommand(t *testing.T) {
	r := New(Config{Command: filepath.Join(t.TempDir(), "does-not-exist")})

	issues, err := r.Run(context.Background(), "https://example.com/")
	require.Error(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, models.SentinelCode, issues[0].Code)
}

func TestRun_TypeCodeFilledIn(t *testing.T) {
	out := `[{"code":"WCAG2AA.Principle1.Guideline1_4.1_4_3.G18","type":"warning","message":"contrast","selector":"html > body > p"}]`
	r := New(Config{Command: fakeLinter(t, out, 0)})

	issues, err := r.Run(context.Background(), "https://example.com/")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].TypeCode)
}

func TestNew_Defaults(t *testing.T) {
	r := New(Config{})
	assert.Equal(t, "pa11y", r.cfg.Command)
	assert.Equal(t, "WCAG2AA", r.cfg.Standard)
	assert.Equal(t, 30*time.Second, r.cfg.Timeout)
}
