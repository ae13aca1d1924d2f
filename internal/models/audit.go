package models

import "time"

// RowStatus is the derived pass/fail state of a criterion, level, or audit.
type RowStatus string

const (
	StatusPass   RowStatus = "PASS"
	StatusFail   RowStatus = "FAIL"
	StatusNotRun RowStatus = "NOT RUN"
)

// CriterionRow is the per-criterion line of a compliance report.
type CriterionRow struct {
	Criterion     string    `json:"criterion"`
	Level         string    `json:"level"`
	Status        RowStatus `json:"status"`
	IssueCount    int       `json:"issueCount"`
	PageCount     int       `json:"pageCount"`
	SampleMessage string    `json:"sampleMessage,omitempty"`
}

// LevelCard summarizes one conformance level across all its criteria.
type LevelCard struct {
	Level  string    `json:"level"`
	Total  int       `json:"total"`
	Failed int       `json:"failed"`
	Passed int       `json:"passed"`
	Status RowStatus `json:"status"`
}

// UnknownCode is an issue code that maps to no catalog criterion. These are
// surfaced as auxiliary diagnostics, never silently dropped.
type UnknownCode struct {
	Code          string `json:"code"`
	IssueCount    int    `json:"issueCount"`
	PageCount     int    `json:"pageCount"`
	SampleMessage string `json:"sampleMessage,omitempty"`
}

// AuditTarget names the standard and conformance level an audit is scored
// against.
type AuditTarget struct {
	Standard string `json:"standard"`
	Level    string `json:"level"`
}

// PageTotals counts pages by scan outcome.
type PageTotals struct {
	Requested  int `json:"requested"`
	Scanned    int `json:"scanned"`
	ScanErrors int `json:"scanErrors"`
}

// AuditSummary is the root compliance report object. It is derived purely
// from accumulated PageResults and is recomputable deterministically from
// the same inputs (GeneratedAt is caller-supplied).
type AuditSummary struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	Source      string         `json:"source"`
	Target      AuditTarget    `json:"target"`
	Pages       PageTotals     `json:"pages"`
	Overall     RowStatus      `json:"overall"`
	Levels      []LevelCard    `json:"levels"`
	Criteria    []CriterionRow `json:"criteria"`
	Unknown     []UnknownCode  `json:"unknown"`
}

// FailedCriteria returns the rows with status FAIL, in report order.
func (s *AuditSummary) FailedCriteria() []CriterionRow {
	var failed []CriterionRow
	for _, row := range s.Criteria {
		if row.Status == StatusFail {
			failed = append(failed, row)
		}
	}
	return failed
}
