package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/prescan/internal/config"
	"github.com/conneroisu/prescan/internal/scanner"
	"github.com/conneroisu/prescan/registry"
	"github.com/conneroisu/prescan/types"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l", "ls"},
	Short:   "List all discovered components and markers",
	Long: `Scan the configured source paths and list every discovered entry with
its metadata: qualified name, kind, declaring file, and optionally marker
membership and runtime requirements.

Examples:
  prescan list                    # List all entries in table format
  prescan list -f json            # Output as JSON
  prescan list -f yaml            # Output as YAML
  prescan list --with-markers     # Include marker membership
  prescan list --with-requires    # Include runtime requirements`,
	RunE: runList,
}

var (
	listFlags        *StandardFlags
	listWithMarkers  bool
	listWithRequires bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddOutputFlags(listCmd)

	listCmd.Flags().BoolVar(&listWithMarkers, "with-markers", false, "Include marker membership")
	listCmd.Flags().BoolVar(&listWithRequires, "with-requires", false, "Include runtime requirements")
}

// listEntry is the output row for one registry entry.
type listEntry struct {
	Name     string   `json:"name" yaml:"name"`
	Kind     string   `json:"kind" yaml:"kind"`
	Package  string   `json:"package" yaml:"package"`
	FilePath string   `json:"file_path" yaml:"file_path"`
	Markers  []string `json:"markers,omitempty" yaml:"markers,omitempty"`
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	if err := listFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	componentRegistry := registry.New()
	componentScanner := scanner.NewComponentScanner(componentRegistry)
	defer componentScanner.Close()
	componentScanner.SetExcludePatterns(cfg.Scan.ExcludePatterns)

	scanConfiguredPaths(componentScanner, cfg)

	entries := collectEntries(componentRegistry)
	out := cmd.OutOrStdout()

	if len(entries) == 0 {
		fmt.Fprintln(out, "No components found.")
		return nil
	}

	switch strings.ToLower(listFlags.OutputFormat) {
	case "json":
		return outputListJSON(out, entries)
	case "yaml":
		return outputListYAML(out, entries)
	default:
		return outputListTable(out, entries)
	}
}

// collectEntries converts the registry contents into sorted output rows.
func collectEntries(reg *registry.Registry) []listEntry {
	all := reg.GetAll()

	entries := make([]listEntry, 0, len(all))
	for _, info := range all {
		entry := listEntry{
			Name:     info.Name,
			Kind:     info.Kind.String(),
			Package:  info.Package,
			FilePath: info.FilePath,
		}
		if listWithMarkers {
			entry.Markers = info.Markers
		}
		if listWithRequires {
			entry.Requires = info.Requires
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

func outputListJSON(w io.Writer, entries []listEntry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

func outputListYAML(w io.Writer, entries []listEntry) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(entries)
}

func outputListTable(w io.Writer, entries []listEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	header := "NAME\tKIND\tPACKAGE\tFILE"
	if listWithMarkers {
		header += "\tMARKERS"
	}
	if listWithRequires {
		header += "\tREQUIRES"
	}
	fmt.Fprintln(tw, header)

	var components, markers int
	for _, entry := range entries {
		if entry.Kind == types.KindMarker.String() {
			markers++
		} else {
			components++
		}

		row := fmt.Sprintf("%s\t%s\t%s\t%s", entry.Name, entry.Kind, entry.Package, entry.FilePath)
		if listWithMarkers {
			row += "\t" + strings.Join(entry.Markers, ", ")
		}
		if listWithRequires {
			row += "\t" + strings.Join(entry.Requires, ", ")
		}
		fmt.Fprintln(tw, row)
	}

	fmt.Fprintf(tw, "\nTotal: %d components, %d markers\n", components, markers)
	return nil
}
