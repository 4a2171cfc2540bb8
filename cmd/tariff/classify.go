package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinictariff/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Show the category of a code or \"<code> - <description>\" entry",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		cat := classify.Classify(text)
		fmt.Printf("%s\t%s\t%s\n", classify.ExtractCode(text), cat, cat.Label())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
