// Package score folds per-page issue lists into a WCAG compliance report:
// per-criterion rows, per-level cards, and an overall verdict against a
// target conformance level.
package score

import (
	"sort"
	"time"

	"github.com/a11yscan/a11yscan/internal/models"
	"github.com/a11yscan/a11yscan/internal/wcag"
)

// Policy decides what "no observed failures but some pages errored" means.
type Policy string

const (
	// PolicyStrict marks criteria NOT RUN whenever any page errored. This
	// is the default: a verdict should not claim PASS for criteria part of
	// the sample never evaluated.
	PolicyStrict Policy = "strict"
	// PolicyLenient marks criteria NOT RUN only when zero pages scanned
	// successfully.
	PolicyLenient Policy = "lenient"
)

// ParsePolicy maps a config string to a Policy, defaulting to strict.
func ParsePolicy(s string) Policy {
	if Policy(s) == PolicyLenient {
		return PolicyLenient
	}
	return PolicyStrict
}

// Options parameterizes a scoring run.
type Options struct {
	Standard    string
	TargetLevel wcag.Level
	Policy      Policy
	Source      string
	GeneratedAt time.Time
}

type criterionAcc struct {
	issueCount int
	pages      map[string]struct{}
	sample     string
}

// Score derives an AuditSummary from accumulated page results. It is
// deterministic and referentially transparent: identical pages always yield
// an identical summary apart from the caller-supplied GeneratedAt.
func Score(pages []models.PageResult, opts Options) *models.AuditSummary {
	perCriterion := make(map[string]*criterionAcc)
	unknown := make(map[string]*criterionAcc)

	scanned, scanErrors := 0, 0
	for _, page := range pages {
		if page.Status != models.PageStatusOK {
			scanErrors++
			continue
		}
		scanned++
		for _, issue := range page.Issues {
			accumulate(bucketFor(issue, perCriterion, unknown), issue, page.URL)
		}
	}

	notRun := false
	switch opts.Policy {
	case PolicyLenient:
		notRun = scanned == 0 && len(pages) > 0
	default:
		notRun = scanErrors > 0
	}

	summary := &models.AuditSummary{
		GeneratedAt: opts.GeneratedAt,
		Source:      opts.Source,
		Target: models.AuditTarget{
			Standard: opts.Standard,
			Level:    string(opts.TargetLevel),
		},
		Pages: models.PageTotals{
			Requested:  len(pages),
			Scanned:    scanned,
			ScanErrors: scanErrors,
		},
		Unknown: unknownRows(unknown),
	}

	required := make(map[wcag.Level]bool)
	for _, level := range wcag.RequiredLevels(opts.TargetLevel) {
		required[level] = true
	}

	requiredFailed := false
	for _, level := range wcag.Levels {
		card := models.LevelCard{Level: string(level)}
		for _, criterion := range wcag.LevelCriteria(level) {
			row := models.CriterionRow{
				Criterion: criterion.ID,
				Level:     string(level),
				Status:    models.StatusPass,
			}
			if acc := perCriterion[criterion.ID]; acc != nil {
				row.Status = models.StatusFail
				row.IssueCount = acc.issueCount
				row.PageCount = len(acc.pages)
				row.SampleMessage = acc.sample
			} else if notRun {
				row.Status = models.StatusNotRun
			}

			card.Total++
			switch row.Status {
			case models.StatusFail:
				card.Failed++
				if required[level] {
					requiredFailed = true
				}
			case models.StatusPass:
				card.Passed++
			}
			summary.Criteria = append(summary.Criteria, row)
		}

		switch {
		case card.Failed > 0:
			card.Status = models.StatusFail
		case notRun:
			card.Status = models.StatusNotRun
		default:
			card.Status = models.StatusPass
		}
		summary.Levels = append(summary.Levels, card)
	}

	switch {
	case requiredFailed:
		summary.Overall = models.StatusFail
	case notRun:
		summary.Overall = models.StatusNotRun
	default:
		summary.Overall = models.StatusPass
	}
	return summary
}

// bucketFor resolves the accumulator an issue belongs to. The scan-failure
// sentinel is never resolved against the catalog.
func bucketFor(issue models.Issue, perCriterion, unknown map[string]*criterionAcc) *criterionAcc {
	if issue.Code != models.SentinelCode {
		if id, ok := wcag.CriterionFromCode(issue.Code); ok {
			if wcag.LevelOfCriterion(id) != wcag.LevelUnknown {
				return ensure(perCriterion, id)
			}
		}
	}
	return ensure(unknown, issue.Code)
}

func ensure(m map[string]*criterionAcc, key string) *criterionAcc {
	acc := m[key]
	if acc == nil {
		acc = &criterionAcc{pages: make(map[string]struct{})}
		m[key] = acc
	}
	return acc
}

func accumulate(acc *criterionAcc, issue models.Issue, url string) {
	acc.issueCount++
	acc.pages[url] = struct{}{}
	if acc.sample == "" {
		acc.sample = issue.Message
	}
}

// unknownRows converts the unknown bucket to rows sorted by code for
// deterministic output.
func unknownRows(unknown map[string]*criterionAcc) []models.UnknownCode {
	codes := make([]string, 0, len(unknown))
	for code := range unknown {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rows := make([]models.UnknownCode, 0, len(codes))
	for _, code := range codes {
		acc := unknown[code]
		rows = append(rows, models.UnknownCode{
			Code:          code,
			IssueCount:    acc.issueCount,
			PageCount:     len(acc.pages),
			SampleMessage: acc.sample,
		})
	}
	return rows
}
