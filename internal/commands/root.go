// Package commands defines the eldplan command line: the web server, the
// terminal planner and their supporting tools.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "eldplan",
	Short: "Plan a truck trip and review its ELD log sheets",
	Long: `eldplan collects a driver's current, pickup and drop-off locations plus the
hours already used in the 70-hour cycle, then shows three generated ELD log
sheets for the trip. Run it as a web server or straight in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "eldplan %s (commit %s, built %s)\n", version, commit, date)
	},
}

// SetVersion sets the version information reported by "eldplan version".
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(versionCmd)
}
