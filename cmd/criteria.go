package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a11yscan/a11yscan/internal/wcag"
)

var criteriaLevel string

var criteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "List the WCAG success criteria catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return criteriaRun()
	},
}

func init() {
	criteriaCmd.Flags().StringVar(&criteriaLevel, "level", "", "Filter by conformance level: A, AA, AAA")
	rootCmd.AddCommand(criteriaCmd)
}

func criteriaRun() error {
	var criteria []wcag.Criterion
	if criteriaLevel != "" {
		level, err := parseLevel(criteriaLevel)
		if err != nil {
			return err
		}
		criteria = wcag.LevelCriteria(level)
	} else {
		criteria = wcag.Criteria()
	}

	table := ui.Table([]string{"Criterion", "Level"})
	for _, c := range criteria {
		table.Append([]string{c.ID, string(c.Level)})
	}
	table.Render()

	fmt.Fprintf(ui.Out, "\n%d criteria\n", len(criteria))
	return nil
}
