package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	yamlv2 "gopkg.in/yaml.v2"

	"github.com/conneroisu/prescan/internal/config"
	"github.com/conneroisu/prescan/internal/scanner"
	"github.com/conneroisu/prescan/manifest"
	"github.com/conneroisu/prescan/registry"
	"github.com/conneroisu/prescan/resolve"
	"github.com/conneroisu/prescan/types"
)

var verifyCmd = &cobra.Command{
	Use:     "verify",
	Aliases: []string{"check"},
	Short:   "Verify manifests against the current sources",
	Long: `Load the generated manifests and resolve every recorded name against a
fresh scan of the configured source paths. Entries that no longer resolve are
reported with the failure reason, so stale manifests surface before they break
a production start.

Examples:
  prescan verify                  # Report resolution results in table format
  prescan verify -f json          # Output the report as JSON
  prescan verify --strict         # Exit non-zero when any entry fails`,
	RunE: runVerify,
}

var (
	verifyFlags  *StandardFlags
	verifyStrict bool
)

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyFlags = AddOutputFlags(verifyCmd)

	verifyCmd.Flags().BoolVar(&verifyStrict, "strict", false, "Fail when any manifest entry does not resolve")
}

type verifyFailure struct {
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason" yaml:"reason"`
}

type verifyMarker struct {
	Name    string   `json:"name" yaml:"name"`
	Members []string `json:"members" yaml:"members"`
}

type verifyReport struct {
	ComponentsListed int             `json:"components_listed" yaml:"components_listed"`
	ComponentsLoaded int             `json:"components_loaded" yaml:"components_loaded"`
	Failed           []verifyFailure `json:"failed,omitempty" yaml:"failed,omitempty"`
	Markers          []verifyMarker  `json:"markers" yaml:"markers"`
}

// recordingContext decorates a resolve.Context so the per-name failures the
// loader only logs are also captured for the report.
type recordingContext struct {
	inner    resolve.Context
	failures map[string]error
}

func newRecordingContext(inner resolve.Context) *recordingContext {
	return &recordingContext{inner: inner, failures: make(map[string]error)}
}

func (rc *recordingContext) Resolve(name string) (*types.ComponentInfo, error) {
	info, err := rc.inner.Resolve(name)
	if err != nil {
		rc.failures[name] = err
	}
	return info, err
}

func runVerify(cmd *cobra.Command, args []string) error {
	if err := verifyFlags.ValidateFlags(); err != nil {
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

	loader := manifest.NewLoader(newLogger(cfg))
	resolver := resolve.New(componentRegistry)

	report, err := buildVerifyReport(loader, resolver, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(verifyFlags.OutputFormat) {
	case "json":
		err = outputVerifyJSON(out, report)
	case "yaml":
		err = outputVerifyYAML(out, report)
	default:
		err = outputVerifyTable(out, report)
	}
	if err != nil {
		return err
	}

	if verifyStrict && len(report.Failed) > 0 {
		return fmt.Errorf("%d manifest entries failed to resolve", len(report.Failed))
	}
	return nil
}

func buildVerifyReport(loader *manifest.Loader, resolver resolve.Context, cfg *config.Config) (*verifyReport, error) {
	report := &verifyReport{}
	failures := make(map[string]error)

	componentFile, err := os.Open(cfg.ComponentsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no manifest at %s, run 'prescan generate' first", cfg.ComponentsPath())
		}
		return nil, fmt.Errorf("opening component manifest: %w", err)
	}

	recorder := newRecordingContext(resolver)
	set, err := loader.ReadComponentSet(componentFile, recorder)
	if err != nil {
		return nil, fmt.Errorf("reading component manifest: %w", err)
	}
	report.ComponentsLoaded = len(set)
	report.ComponentsListed = len(set) + len(recorder.failures)
	mergeFailures(failures, recorder.failures)

	markerFile, err := os.Open(cfg.MarkersPath())
	if err != nil {
		if os.IsNotExist(err) {
			// A flat manifest without marker groups is still valid.
			finishVerifyReport(report, failures)
			return report, nil
		}
		return nil, fmt.Errorf("opening marker manifest: %w", err)
	}

	recorder = newRecordingContext(resolver)
	markerMap, err := loader.ReadMarkerMap(markerFile, recorder)
	if err != nil {
		return nil, fmt.Errorf("reading marker manifest: %w", err)
	}
	mergeFailures(failures, recorder.failures)

	for marker, members := range markerMap {
		report.Markers = append(report.Markers, verifyMarker{
			Name:    marker.Name,
			Members: members.Names(),
		})
	}

	finishVerifyReport(report, failures)
	return report, nil
}

func mergeFailures(dst, src map[string]error) {
	for name, err := range src {
		dst[name] = err
	}
}

func finishVerifyReport(report *verifyReport, failures map[string]error) {
	for name, err := range failures {
		report.Failed = append(report.Failed, verifyFailure{
			Name:   name,
			Reason: failureReason(err),
		})
	}
	sortVerifyReport(report)
}

// failureReason renders a short, stable reason string for the report.
func failureReason(err error) string {
	rerr, ok := resolve.AsError(err)
	if !ok {
		return err.Error()
	}
	if rerr.Failure == resolve.FailureMissingDependency {
		return fmt.Sprintf("missing dependency: %s", rerr.Dependency)
	}
	return rerr.Failure.String()
}

func sortVerifyReport(report *verifyReport) {
	sort.Slice(report.Failed, func(i, j int) bool {
		return report.Failed[i].Name < report.Failed[j].Name
	})
	sort.Slice(report.Markers, func(i, j int) bool {
		return report.Markers[i].Name < report.Markers[j].Name
	})
	for i := range report.Markers {
		sort.Strings(report.Markers[i].Members)
	}
}

func outputVerifyJSON(w io.Writer, report *verifyReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func outputVerifyYAML(w io.Writer, report *verifyReport) error {
	data, err := yamlv2.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func outputVerifyTable(w io.Writer, report *verifyReport) error {
	fmt.Fprintf(w, "Components: %d listed, %d resolved, %d failed\n",
		report.ComponentsListed, report.ComponentsLoaded, len(report.Failed))

	if len(report.Failed) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tREASON")
		for _, failure := range report.Failed {
			fmt.Fprintf(tw, "%s\t%s\n", failure.Name, failure.Reason)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(report.Markers) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MARKER\tMEMBERS")
		for _, marker := range report.Markers {
			fmt.Fprintf(tw, "%s\t%s\n", marker.Name, strings.Join(marker.Members, ", "))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(report.Failed) == 0 {
		fmt.Fprintln(w, "\n✅ All manifest entries resolve")
	}
	return nil
}
