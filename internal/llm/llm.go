package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// IssueContext carries the details of a reported accessibility issue that
// the model needs to produce remediation guidance.
type IssueContext struct {
	Code      string // machine code, e.g. WCAG2AA.Principle1.Guideline1_1.1_1_1.H37
	Criterion string // success criterion id, e.g. 1.1.1 (may be empty for unmapped codes)
	Level     string // conformance level of the criterion, if known
	Message   string // human-readable description from the runner
	Selector  string // CSS selector of the offending element
	Context   string // HTML excerpt around the element
}

// Client wraps the Anthropic API for issue explanation.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildExplainPrompt constructs the system and user prompts for issue
// remediation guidance.
func buildExplainPrompt(issue IssueContext) (system string, user string) {
	system = `You are a web accessibility expert. Given a single reported accessibility issue, explain it and show how to fix it. Structure your answer as:

1. What the problem is, in plain language (1-2 sentences a non-specialist frontend developer will understand)
2. Who it affects and how (which assistive technologies or user groups break on this defect)
3. How to fix it: a concrete corrected HTML snippet based on the provided element context
4. How to verify the fix (what to check with a keyboard or screen reader)

Rules:
- Be specific to the provided element, not generic boilerplate
- Keep the whole answer under 300 words
- If the element context is missing, give the most likely fix for the issue code and say what extra information would pin it down
- Do not restate the issue code or selector back; the reader already sees them`

	var sb strings.Builder
	sb.WriteString("Issue code: ")
	sb.WriteString(issue.Code)
	sb.WriteString("\n")
	if issue.Criterion != "" {
		sb.WriteString("Success criterion: ")
		sb.WriteString(issue.Criterion)
		if issue.Level != "" {
			sb.WriteString(" (Level ")
			sb.WriteString(issue.Level)
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Message: ")
	sb.WriteString(issue.Message)
	sb.WriteString("\n")
	if issue.Selector != "" {
		sb.WriteString("Selector: ")
		sb.WriteString(issue.Selector)
		sb.WriteString("\n")
	}
	if issue.Context != "" {
		sb.WriteString("\nElement context:\n")
		sb.WriteString(issue.Context)
		sb.WriteString("\n")
	}
	user = sb.String()
	return
}

// Explain sends a reported issue to the LLM and returns remediation guidance
// as plain text.
func (c *Client) Explain(ctx context.Context, issue IssueContext) (string, error) {
	systemPrompt, userPrompt := buildExplainPrompt(issue)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	// Extract text from response
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	if text == "" {
		return "", fmt.Errorf("no text content in API response")
	}

	return strings.TrimSpace(text), nil
}
