package commands

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
)

// Build metadata, overridden at link time via -ldflags.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Display the flowlens version along with build metadata: build time,
Git commit hash, Go runtime version, and target platform.`,
	Example: `  # Full version report
  flowlens version

  # Just the version number, for scripts
  flowlens version --short`,
	Run: func(_ *cobra.Command, _ []string) {
		if versionShort {
			fmt.Println(Version)
			return
		}
		fmt.Printf("flowlens %s\n", Version)
		fmt.Printf("  commit:     %s\n", GitCommit)
		fmt.Printf("  built:      %s\n", BuildTime)
		fmt.Printf("  go version: %s\n", runtime.Version())
		fmt.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

var initVersionOnce sync.Once

// InitVersionCommand registers the version command
func InitVersionCommand() {
	initVersionOnce.Do(func() {
		versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print just the version number")
		rootCmd.AddCommand(versionCmd)
	})
}
