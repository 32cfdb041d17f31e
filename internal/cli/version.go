package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information, set at build time with -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func versionInfo() string {
	return fmt.Sprintf("agency version %s\n  Git commit: %s\n  Built:      %s\n  Go version: %s\n  OS/Arch:    %s/%s\n",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display agency version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionInfo())
	},
}
