package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// StandardFlags provides consistent flag definitions across commands.
type StandardFlags struct {
	// Output flags
	OutputFormat string `flag:"format,f" desc:"Output format (table|json|yaml)" default:"table"`
	Verbose      bool   `flag:"verbose,v" desc:"Enable verbose output" default:"false"`
	Quiet        bool   `flag:"quiet,q" desc:"Suppress output" default:"false"`
}

// AddOutputFlags adds the shared output flags to a command.
func AddOutputFlags(cmd *cobra.Command) *StandardFlags {
	flags := &StandardFlags{}

	cmd.Flags().StringVarP(&flags.OutputFormat, "format", "f", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output")

	return flags
}

// ValidateFlags validates flag combinations and values.
func (f *StandardFlags) ValidateFlags() error {
	if f.Verbose && f.Quiet {
		return fmt.Errorf("cannot specify both --verbose and --quiet")
	}

	validFormats := []string{"table", "json", "yaml"}
	format := strings.ToLower(f.OutputFormat)
	for _, valid := range validFormats {
		if format == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q (supported: %s)", f.OutputFormat, strings.Join(validFormats, ", "))
}

// lookupFlag fetches a defined flag, panicking on a programmer error such as
// asking for a flag the command never registered.
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		panic(fmt.Sprintf("flag %q is not registered on command %q", name, cmd.Name()))
	}
	return flag
}

// flagChanged reports whether the user explicitly set the named flag.
func flagChanged(cmd *cobra.Command, name string) bool {
	return lookupFlag(cmd, name).Changed
}
