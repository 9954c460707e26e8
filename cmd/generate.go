package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/conneroisu/prescan/internal/config"
	"github.com/conneroisu/prescan/internal/scanner"
	"github.com/conneroisu/prescan/manifest"
	"github.com/conneroisu/prescan/registry"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"g", "gen"},
	Short:   "Scan sources and write the prepared scan result",
	Long: `Scan the configured source paths for components and markers and write
the prepared scan result manifests. At runtime the manifests are loaded
instead of walking the source tree again.

Examples:
  prescan generate                # Write manifests to the configured directory
  prescan generate --out dist     # Write manifests to dist/
  prescan generate --scan ./ui    # Scan ./ui instead of the configured paths
  prescan generate --dry-run      # Show what would be written
  prescan generate -v             # Also print every discovered name`,
	RunE: runGenerate,
}

var (
	generateOut     string
	generateScan    []string
	generateDryRun  bool
	generateVerbose bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Manifest output directory (overrides configuration)")
	generateCmd.Flags().StringArrayVar(&generateScan, "scan", nil, "Source path to scan (repeatable, overrides configuration)")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Scan and report without writing manifests")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print every discovered component and marker")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if generateOut != "" {
		cfg.Manifest.Dir = generateOut
	}
	if len(generateScan) > 0 {
		cfg.Scan.Paths = generateScan
	}

	componentRegistry := registry.New()
	componentScanner := scanner.NewComponentScanner(componentRegistry)
	defer componentScanner.Close()
	componentScanner.SetExcludePatterns(cfg.Scan.ExcludePatterns)

	scanConfiguredPaths(componentScanner, cfg)

	components, groups := componentScanner.Manifest()

	out := cmd.OutOrStdout()

	if generateVerbose {
		for _, name := range components {
			fmt.Fprintf(out, "   component %s\n", name)
		}
		markers := make([]string, 0, len(groups))
		for marker := range groups {
			markers = append(markers, marker)
		}
		sort.Strings(markers)
		for _, marker := range markers {
			fmt.Fprintf(out, "   marker    %s (%d members)\n", marker, len(groups[marker]))
		}
	}

	if generateDryRun {
		fmt.Fprintf(out, "Would write %d components to %s\n", len(components), cfg.ComponentsPath())
		fmt.Fprintf(out, "Would write %d markers to %s\n", len(groups), cfg.MarkersPath())
		return nil
	}

	if err := writeManifests(cfg, components, groups); err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ Wrote %d components and %d markers to %s\n", len(components), len(groups), cfg.Manifest.Dir)
	return nil
}

// scanConfiguredPaths scans every configured source path. Paths that do not
// exist are skipped; paths that fail to scan are reported without aborting
// the rest.
func scanConfiguredPaths(s *scanner.ComponentScanner, cfg *config.Config) {
	for _, path := range cfg.Scan.Paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := s.ScanDirectory(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to scan directory %s: %v\n", path, err)
		}
	}
}

// writeManifests writes both manifest files under the configured directory.
func writeManifests(cfg *config.Config, components []string, groups map[string][]string) error {
	if err := os.MkdirAll(cfg.Manifest.Dir, 0755); err != nil {
		return fmt.Errorf("creating manifest directory %s: %w", cfg.Manifest.Dir, err)
	}

	if err := writeManifestFile(cfg.ComponentsPath(), func(w io.Writer) error {
		return manifest.WriteComponentSet(w, components)
	}); err != nil {
		return err
	}

	return writeManifestFile(cfg.MarkersPath(), func(w io.Writer) error {
		return manifest.WriteMarkerMap(w, groups)
	})
}

// writeManifestFile writes through a temporary file and renames it into
// place, so a concurrent reader never sees a partial manifest.
func writeManifestFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing manifest %s: %w", path, err)
	}
	return nil
}
