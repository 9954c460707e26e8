package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/prescan/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for prescan including:

- Semantic version number
- Git commit hash
- Build timestamp
- Go version used for compilation
- Target platform (OS/architecture)

Examples:
  prescan version                 # Full version information
  prescan version --short         # Just the version number
  prescan version --format json   # Machine-readable output`,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVar(&versionFormat, "format", "text", "Output format (text, json)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if versionShort {
		fmt.Fprintln(out, version.GetShortVersion())
		return nil
	}

	info := version.GetBuildInfo()

	switch versionFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	case "text":
		dirty := ""
		if version.IsDirty() {
			dirty = " (dirty)"
		}
		fmt.Fprintf(out, "prescan %s (%s)%s\n", info.Version, info.GitCommit, dirty)
		fmt.Fprintf(out, "  Built:    %s\n", info.BuildTime)
		fmt.Fprintf(out, "  Go:       %s\n", info.GoVersion)
		fmt.Fprintf(out, "  Platform: %s\n", info.Platform)
		return nil
	default:
		return fmt.Errorf("unknown format %q, expected text or json", versionFormat)
	}
}
