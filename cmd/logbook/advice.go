package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanqian/familylog/internal/domain/logbook"
)

var (
	adviceCategory string
	adviceSymptoms []string
)

var adviceCmd = &cobra.Command{
	Use:   "advice <text>",
	Short: "Show the advice template a note would receive",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEngine(nil)
		text := joinArgs(args)
		category := e.classifier.Classify(text).Category
		if adviceCategory != "" {
			category = logbook.ParseCategory(adviceCategory)
		}
		tpl, ok := e.advice.FindAdvice(text, category, adviceSymptoms)
		if !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "no advice for category %s\n", category)
			return nil
		}
		return printJSON(cmd, tpl)
	},
}

func init() {
	adviceCmd.Flags().StringVarP(&adviceCategory, "category", "c", "", "Category to use instead of the classified one")
	adviceCmd.Flags().StringSliceVarP(&adviceSymptoms, "symptom", "s", nil, "Symptom (repeatable)")
	rootCmd.AddCommand(adviceCmd)
}
