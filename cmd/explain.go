package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/a11yscan/a11yscan/internal/llm"
	"github.com/a11yscan/a11yscan/internal/models"
	"github.com/a11yscan/a11yscan/internal/wcag"
)

var explainCriterion string

var explainCmd = &cobra.Command{
	Use:   "explain RUN_ID",
	Short: "Explain a failing issue and how to fix it",
	Long: `Use the configured Anthropic model to explain an issue from a past
audit run: what the defect is, who it affects, and a concrete fix for
the offending element.

By default the first failing issue of the run is explained. Use
--criterion to pick the failing criterion to explain.

Requires anthropic.api_key (or ANTHROPIC_API_KEY).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return explainRun(cmd.Context(), args[0])
	},
}

func init() {
	explainCmd.Flags().StringVar(&explainCriterion, "criterion", "", "Success criterion to explain, e.g. 2.4.1")
	rootCmd.AddCommand(explainCmd)
}

func explainRun(ctx context.Context, runID string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	pages, err := s.ListPageResults(ctx, runID)
	if err != nil {
		return err
	}

	issue, url, err := pickIssue(pages, explainCriterion)
	if err != nil {
		return err
	}

	criterion, _ := wcag.CriterionFromCode(issue.Code)
	level := ""
	if criterion != "" {
		if l := wcag.LevelOfCriterion(criterion); l != wcag.LevelUnknown {
			level = string(l)
		}
	}

	ui.Info("Explaining %s on %s", issue.Code, url)
	fmt.Fprintln(ui.Out)

	client := llm.NewClient(viper.GetString("anthropic.api_key"), viper.GetString("anthropic.model"))
	answer, err := client.Explain(ctx, llm.IssueContext{
		Code:      issue.Code,
		Criterion: criterion,
		Level:     level,
		Message:   issue.Message,
		Selector:  issue.Selector,
		Context:   issue.Context,
	})
	if err != nil {
		return fmt.Errorf("explain: %w", err)
	}

	fmt.Fprintln(ui.Out, answer)
	return nil
}

// pickIssue selects the issue to explain: the first error-severity issue,
// restricted to the given criterion when one is named. Sentinel issues are
// never worth explaining.
func pickIssue(pages []models.PageResult, criterionFilter string) (models.Issue, string, error) {
	for _, p := range pages {
		for _, issue := range p.Issues {
			if issue.Code == models.SentinelCode {
				continue
			}
			if criterionFilter != "" {
				c, ok := wcag.CriterionFromCode(issue.Code)
				if !ok || c != criterionFilter {
					continue
				}
			} else if issue.Type != models.IssueTypeError {
				continue
			}
			return issue, p.URL, nil
		}
	}
	if criterionFilter != "" {
		return models.Issue{}, "", fmt.Errorf("no issues for criterion %s in this run", criterionFilter)
	}
	return models.Issue{}, "", fmt.Errorf("no error-severity issues in this run")
}
