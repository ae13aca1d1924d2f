package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/a11yscan/a11yscan/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool,
	// preventing "database is locked" errors when a batch scan persists
	// while a reader lists runs.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Audit Runs ---

func (s *SQLiteStore) CreateAuditRun(ctx context.Context, run *models.AuditRun) error {
	if run.ID == "" {
		run.ID = newULID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	summaryJSON := []byte("null")
	if run.Summary != nil {
		var err error
		summaryJSON, err = json.Marshal(run.Summary)
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_runs (id, source, standard, target_level, overall, pages_requested, pages_scanned, scan_errors, summary_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Standard, run.Level, string(run.Overall),
		run.Pages.Requested, run.Pages.Scanned, run.Pages.ScanErrors,
		string(summaryJSON), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create audit run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetAuditRun(ctx context.Context, id string) (*models.AuditRun, error) {
	run := &models.AuditRun{}
	var overall, summaryJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, standard, target_level, overall, pages_requested, pages_scanned, scan_errors, summary_json, created_at
		FROM audit_runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Source, &run.Standard, &run.Level, &overall,
		&run.Pages.Requested, &run.Pages.Scanned, &run.Pages.ScanErrors,
		&summaryJSON, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("audit run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get audit run: %w", err)
	}

	run.Overall = models.RowStatus(overall)
	if summaryJSON != "" && summaryJSON != "null" {
		run.Summary = &models.AuditSummary{}
		if err := json.Unmarshal([]byte(summaryJSON), run.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary for run %s: %w", id, err)
		}
	}
	return run, nil
}

func (s *SQLiteStore) ListAuditRuns(ctx context.Context, limit int) ([]*models.AuditRun, error) {
	query := `SELECT id, source, standard, target_level, overall, pages_requested, pages_scanned, scan_errors, created_at
		FROM audit_runs ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*models.AuditRun
	for rows.Next() {
		run := &models.AuditRun{}
		var overall string
		if err := rows.Scan(&run.ID, &run.Source, &run.Standard, &run.Level, &overall,
			&run.Pages.Requested, &run.Pages.Scanned, &run.Pages.ScanErrors, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit run: %w", err)
		}
		run.Overall = models.RowStatus(overall)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// --- Page Results ---

// SavePageResults persists the per-page outcomes of a run in request order.
// Position preserves the order URLs were submitted in.
func (s *SQLiteStore) SavePageResults(ctx context.Context, runID string, pages []models.PageResult) error {
	if len(pages) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, page := range pages {
		issuesJSON, err := json.Marshal(page.Issues)
		if err != nil {
			return fmt.Errorf("marshal issues for %s: %w", page.URL, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO page_results (run_id, position, url, status, issues_json)
			VALUES (?, ?, ?, ?, ?)`,
			runID, i, page.URL, string(page.Status), string(issuesJSON),
		); err != nil {
			return fmt.Errorf("save page result %s: %w", page.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListPageResults(ctx context.Context, runID string) ([]models.PageResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, status, issues_json FROM page_results
		WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list page results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pages []models.PageResult
	for rows.Next() {
		var page models.PageResult
		var status, issuesJSON string
		if err := rows.Scan(&page.URL, &status, &issuesJSON); err != nil {
			return nil, fmt.Errorf("scan page result: %w", err)
		}
		page.Status = models.PageStatus(status)
		if err := json.Unmarshal([]byte(issuesJSON), &page.Issues); err != nil {
			return nil, fmt.Errorf("unmarshal issues for %s: %w", page.URL, err)
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}
