package models

import "time"

// AuditRun is a persisted audit execution: the target it was scored
// against, its page totals and verdict, and the full summary for later
// inspection.
type AuditRun struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	Standard  string        `json:"standard"`
	Level     string        `json:"level"`
	Overall   RowStatus     `json:"overall"`
	Pages     PageTotals    `json:"pages"`
	Summary   *AuditSummary `json:"summary,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}
