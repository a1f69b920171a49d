// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "contrib-board",
	Short: "A dashboard of issues and PRs created by a fixed set of users.",
	Long: `contrib-board tracks the issues and pull requests a fixed set of
users created in a small set of GitHub repositories, annotates each item
with approval and merge status, and serves them as a sortable web dashboard
or a one-shot JSON dump.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
