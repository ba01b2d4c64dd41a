package cli

import (
	"github.com/spf13/cobra"

	"nightshift/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "nightshift",
	Short: "Supervised task loop for coding agents",
	Long: `Nightshift reads a Markdown progress document, picks the first task that
still needs work, and hands it to a coding agent under a wall-clock timeout.
It repeats until the document reports nothing left to do or the time budget
runs out. The document is the only state: nightshift itself never edits it.`,
	Version:      version.String(),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
