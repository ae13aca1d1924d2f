// Package report writes scan and audit artifacts to disk. The content
// contract (Issue, PageResult, AuditSummary shapes) is owned by the models
// package; this package owns only the file layout and rendering.
package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/a11yscan/a11yscan/internal/models"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var htmlTemplate = template.Must(template.ParseFS(templatesFS, "templates/audit.html.tmpl"))

// Manifest describes one batch of page scans.
type Manifest struct {
	Source string          `json:"source"`
	Pages  []ManifestEntry `json:"pages"`
}

// ManifestEntry is one page's line in the manifest, in scan order.
type ManifestEntry struct {
	URL        string            `json:"url"`
	Status     models.PageStatus `json:"status"`
	IssueCount int               `json:"issueCount"`
	File       string            `json:"file"`
}

// WritePages writes one issue-list file per page plus the batch manifest,
// and returns the manifest.
func WritePages(dir, source string, pages []models.PageResult) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	manifest := &Manifest{Source: source}
	for i, page := range pages {
		name := fmt.Sprintf("issues-%03d.json", i+1)
		if err := writeJSON(filepath.Join(dir, name), page); err != nil {
			return nil, err
		}
		manifest.Pages = append(manifest.Pages, ManifestEntry{
			URL:        page.URL,
			Status:     page.Status,
			IssueCount: len(page.Issues),
			File:       name,
		})
	}

	if err := writeJSON(filepath.Join(dir, "manifest.json"), manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// WriteSummary writes the audit summary JSON and rendered HTML report.
func WriteSummary(dir string, summary *models.AuditSummary) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, "audit.json"), summary); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, "audit.html"))
	if err != nil {
		return fmt.Errorf("create audit.html: %w", err)
	}
	defer f.Close()
	return RenderHTML(f, summary)
}

// RenderHTML renders the audit report page.
func RenderHTML(w io.Writer, summary *models.AuditSummary) error {
	if err := htmlTemplate.Execute(w, summary); err != nil {
		return fmt.Errorf("render audit report: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
