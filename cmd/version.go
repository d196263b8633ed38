package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd prints build details, handy when filing a bug about a scheduled run.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information for cadence.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("cadence %s\n", version)
		cmd.Printf("  commit:   %s\n", commit)
		cmd.Printf("  built:    %s\n", date)
		cmd.Printf("  go:       %s\n", runtime.Version())
		cmd.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}
