package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/a11yscan/a11yscan/internal/models"
	"github.com/a11yscan/a11yscan/internal/wcag"
)

func TestParseLevel(t *testing.T) {
	for raw, want := range map[string]wcag.Level{
		"A":    wcag.LevelA,
		"aa":   wcag.LevelAA,
		" AAA": wcag.LevelAAA,
	} {
		got, err := parseLevel(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	for _, raw := range []string{"", "B", "AAAA", "unknown"} {
		_, err := parseLevel(raw)
		assert.Error(t, err, raw)
	}
}

func TestURLsFileParsing(t *testing.T) {
	data := []byte(`
urls:
  - https://example.com/
  - https://example.com/about
standard: WCAG2AAA
level: AAA
`)
	var f urlsFile
	require.NoError(t, yaml.Unmarshal(data, &f))
	assert.Equal(t, []string{"https://example.com/", "https://example.com/about"}, f.URLs)
	assert.Equal(t, "WCAG2AAA", f.Standard)
	assert.Equal(t, "AAA", f.Level)
}

func TestURLsFileParsing_URLsOnly(t *testing.T) {
	var f urlsFile
	require.NoError(t, yaml.Unmarshal([]byte("urls: [https://a.example]"), &f))
	assert.Equal(t, []string{"https://a.example"}, f.URLs)
	assert.Empty(t, f.Standard)
	assert.Empty(t, f.Level)
}

func TestPickIssue(t *testing.T) {
	pages := []models.PageResult{
		{
			URL:    "https://a.example",
			Status: models.PageStatusError,
			Issues: []models.Issue{
				{Code: models.SentinelCode, Type: models.IssueTypeError, Message: "navigate: timeout"},
			},
		},
		{
			URL:    "https://b.example",
			Status: models.PageStatusOK,
			Issues: []models.Issue{
				{Code: "A11yScan.Principle2.Guideline2_4.2_4_5.MultipleWaysMissing", Type: models.IssueTypeWarning, Message: "single way"},
				{Code: "WCAG2AA.Principle1.Guideline1_1.1_1_1.H37", Type: models.IssueTypeError, Message: "missing alt"},
			},
		},
	}

	t.Run("skips sentinel and warnings by default", func(t *testing.T) {
		issue, url, err := pickIssue(pages, "")
		require.NoError(t, err)
		assert.Equal(t, "missing alt", issue.Message)
		assert.Equal(t, "https://b.example", url)
	})

	t.Run("criterion filter includes warnings", func(t *testing.T) {
		issue, _, err := pickIssue(pages, "2.4.5")
		require.NoError(t, err)
		assert.Equal(t, "single way", issue.Message)
	})

	t.Run("no match", func(t *testing.T) {
		_, _, err := pickIssue(pages, "9.9.9")
		assert.Error(t, err)
	})

	t.Run("only sentinel issues", func(t *testing.T) {
		_, _, err := pickIssue(pages[:1], "")
		assert.Error(t, err)
	})
}
