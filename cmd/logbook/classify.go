package main

import (
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Classify a note without storing it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd, newEngine(nil).classifier.Classify(joinArgs(args)))
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
