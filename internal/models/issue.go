package models

// IssueType represents the severity class of a detected issue.
type IssueType string

const (
	IssueTypeError   IssueType = "error"
	IssueTypeWarning IssueType = "warning"
	IssueTypeNotice  IssueType = "notice"
)

// TypeCode returns the numeric severity carried alongside the type string.
func (t IssueType) TypeCode() int {
	switch t {
	case IssueTypeError:
		return 1
	case IssueTypeWarning:
		return 2
	case IssueTypeNotice:
		return 3
	default:
		return 0
	}
}

// SentinelCode marks a page that could not be scanned at all. It never
// resolves to a WCAG criterion; the scorer routes it to the unknown bucket.
const SentinelCode = "A11yScan.ScanFailure"

// Runner origin tags attached to issues for provenance.
const (
	RunnerHeuristic = "a11yscan"
	RunnerLinter    = "linter"
)

// Issue is one detected accessibility defect. Issues are immutable once
// produced; identity for deduplication is (Code, Selector, Message).
type Issue struct {
	Code         string         `json:"code"`
	Type         IssueType      `json:"type"`
	TypeCode     int            `json:"typeCode"`
	Message      string         `json:"message"`
	Selector     string         `json:"selector"`
	Context      string         `json:"context"`
	Runner       string         `json:"runner"`
	RunnerExtras map[string]any `json:"runnerExtras,omitempty"`
}

// Key returns the deduplication identity of the issue.
func (i Issue) Key() string {
	return i.Code + "\x00" + i.Selector + "\x00" + i.Message
}

// Dedupe removes issues with duplicate (code, selector, message) identity,
// keeping the first occurrence and preserving order.
func Dedupe(issues []Issue) []Issue {
	seen := make(map[string]struct{}, len(issues))
	out := issues[:0:0]
	for _, is := range issues {
		k := is.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, is)
	}
	return out
}
