package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor = os.Getenv("NO_COLOR") != ""

// errReported marks errors whose message has already been shown to the user.
var errReported = errors.New("already reported")

var rootCmd = &cobra.Command{
	Use:   "jobfill",
	Short: "Fill job application forms from your stored profile",
	Long: `jobfill runs a small local server that stores your applicant profile and
fills the application forms in HTML pages with it.

Examples:
  jobfill start
  jobfill fill ./apply.html --out ./apply.filled.html --open
  jobfill batch ./jobs/*.html --out-dir ./filled
  jobfill profile set phone "+61 400 000 000"`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", noColor, "disable colored output")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			printError("%v", err)
		}
		os.Exit(1)
	}
}
