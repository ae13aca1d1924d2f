package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a11yscan/a11yscan/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSummary() *models.AuditSummary {
	return &models.AuditSummary{
		GeneratedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Source:      "urls.yaml",
		Target:      models.AuditTarget{Standard: "WCAG2AA", Level: "AA"},
		Pages:       models.PageTotals{Requested: 2, Scanned: 2},
		Overall:     models.StatusFail,
		Levels: []models.LevelCard{
			{Level: "A", Total: 31, Failed: 1, Passed: 30, Status: models.StatusFail},
		},
		Criteria: []models.CriterionRow{
			{Criterion: "1.1.1", Level: "A", Status: models.StatusFail, IssueCount: 3, PageCount: 2, SampleMessage: "Img element missing an alt attribute."},
			{Criterion: "1.2.1", Level: "A", Status: models.StatusPass},
		},
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Running migrate again should be a no-op
	err := s.Migrate(ctx)
	assert.NoError(t, err)
}

func TestAuditRunRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := &models.AuditRun{
		Source:   "urls.yaml",
		Standard: "WCAG2AA",
		Level:    "AA",
		Overall:  models.StatusFail,
		Pages:    models.PageTotals{Requested: 2, Scanned: 2},
		Summary:  sampleSummary(),
	}
	err := s.CreateAuditRun(ctx, run)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := s.GetAuditRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "urls.yaml", got.Source)
	assert.Equal(t, "WCAG2AA", got.Standard)
	assert.Equal(t, "AA", got.Level)
	assert.Equal(t, models.StatusFail, got.Overall)
	assert.Equal(t, run.Pages, got.Pages)

	require.NotNil(t, got.Summary)
	assert.Equal(t, run.Summary.Target, got.Summary.Target)
	assert.Equal(t, run.Summary.Criteria, got.Summary.Criteria)
	assert.Equal(t, run.Summary.Levels, got.Summary.Levels)
}

func TestAuditRunWithoutSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := &models.AuditRun{Source: "https://example.com", Overall: models.StatusPass}
	require.NoError(t, s.CreateAuditRun(ctx, run))

	got, err := s.GetAuditRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Summary)
}

func TestGetAuditRun_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAuditRun(context.Background(), "nope")
	assert.ErrorContains(t, err, "not found")
}

func TestListAuditRuns_NewestFirstWithLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &models.AuditRun{
			Source:    "urls.yaml",
			Overall:   models.StatusPass,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.CreateAuditRun(ctx, run))
	}

	runs, err := s.ListAuditRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
	assert.True(t, runs[1].CreatedAt.After(runs[2].CreatedAt))
	// Summary is not hydrated on list
	assert.Nil(t, runs[0].Summary)

	limited, err := s.ListAuditRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, runs[0].ID, limited[0].ID)
}

func TestPageResultsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := &models.AuditRun{Source: "urls.yaml", Overall: models.StatusFail}
	require.NoError(t, s.CreateAuditRun(ctx, run))

	pages := []models.PageResult{
		{
			URL:    "https://example.com/",
			Status: models.PageStatusOK,
			Issues: []models.Issue{
				{
					Code:     "WCAG2AA.Principle1.Guideline1_1.1_1_1.H37",
					Type:     models.IssueTypeError,
					TypeCode: 1,
					Message:  "Img element missing an alt attribute.",
					Selector: "html > body > img",
					Runner:   models.RunnerLinter,
				},
			},
		},
		{
			URL:    "https://example.com/about",
			Status: models.PageStatusError,
			Issues: []models.Issue{
				{Code: models.SentinelCode, Type: models.IssueTypeError, TypeCode: 1, Message: "navigate: timeout", Runner: models.RunnerHeuristic},
			},
		},
	}
	require.NoError(t, s.SavePageResults(ctx, run.ID, pages))

	got, err := s.ListPageResults(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, pages, got)
}

func TestSavePageResults_Empty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := &models.AuditRun{Source: "urls.yaml"}
	require.NoError(t, s.CreateAuditRun(ctx, run))

	require.NoError(t, s.SavePageResults(ctx, run.ID, nil))

	got, err := s.ListPageResults(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPageResults_OrderPreserved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := &models.AuditRun{Source: "urls.yaml"}
	require.NoError(t, s.CreateAuditRun(ctx, run))

	var pages []models.PageResult
	urls := []string{"https://z.example", "https://a.example", "https://m.example"}
	for _, u := range urls {
		pages = append(pages, models.PageResult{URL: u, Status: models.PageStatusOK, Issues: []models.Issue{}})
	}
	require.NoError(t, s.SavePageResults(ctx, run.ID, pages))

	got, err := s.ListPageResults(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, u := range urls {
		assert.Equal(t, u, got[i].URL)
	}
}
