package models

// PageStatus indicates whether a page scan completed.
type PageStatus string

const (
	PageStatusOK    PageStatus = "ok"
	PageStatusError PageStatus = "error"
)

// PageResult is the outcome of scanning a single page. Status error means
// the render/scan pipeline itself failed, not that defects were found; such
// pages contribute no criterion evidence to an audit.
type PageResult struct {
	URL    string     `json:"url"`
	Status PageStatus `json:"status"`
	Issues []Issue    `json:"issues"`
}

// CountByType returns the number of issues of the given severity.
func (p PageResult) CountByType(t IssueType) int {
	n := 0
	for _, is := range p.Issues {
		if is.Type == t {
			n++
		}
	}
	return n
}
