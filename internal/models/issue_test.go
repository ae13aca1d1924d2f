package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe(t *testing.T) {
	a := Issue{Code: "c1", Selector: "html > body > a", Message: "m1"}
	b := Issue{Code: "c1", Selector: "html > body > a", Message: "m1", Context: "<a>"}
	c := Issue{Code: "c1", Selector: "html > body > a", Message: "m2"}

	out := Dedupe([]Issue{a, b, c})
	require.Len(t, out, 2)
	assert.Equal(t, "m1", out[0].Message)
	assert.Equal(t, "m2", out[1].Message)
}

func TestDedupe_Empty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}

func TestTypeCode(t *testing.T) {
	assert.Equal(t, 1, IssueTypeError.TypeCode())
	assert.Equal(t, 2, IssueTypeWarning.TypeCode())
	assert.Equal(t, 3, IssueTypeNotice.TypeCode())
	assert.Equal(t, 0, IssueType("bogus").TypeCode())
}

func TestIssue_JSONRoundTrip(t *testing.T) {
	in := Issue{
		Code:     "A11yScan.Principle2.Guideline2_4.2_4_4.GenericLinkText",
		Type:     IssueTypeWarning,
		TypeCode: 2,
		Message:  "Link text is generic",
		Selector: "html > body > a#more",
		Context:  `<a id="more" href="/x">read more</a>`,
		Runner:   RunnerHeuristic,
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Issue
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestPageResult_CountByType(t *testing.T) {
	p := PageResult{
		URL:    "https://example.com",
		Status: PageStatusOK,
		Issues: []Issue{
			{Code: "a", Type: IssueTypeError},
			{Code: "b", Type: IssueTypeError},
			{Code: "c", Type: IssueTypeWarning},
		},
	}
	assert.Equal(t, 2, p.CountByType(IssueTypeError))
	assert.Equal(t, 1, p.CountByType(IssueTypeWarning))
	assert.Equal(t, 0, p.CountByType(IssueTypeNotice))
}
