// Package main implements the verdict CLI for running reviews from the
// command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version information
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "verdict",
	Short: "Multi-agent review workflow runner",
	Long: `verdict drives a review workflow over a set of input files: it plans
investigation todos, delegates them to specialist inspectors running
concurrently, consolidates their findings, and prints a terminal
assessment with a merge recommendation.`,
	Version: version,
}

func init() {
	rootCmd.AddCommand(runCmd)
}
