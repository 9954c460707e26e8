package manifest

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/conneroisu/prescan/errors"
)

// WriteComponentSet writes a flat-form scan result: the given names sorted,
// deduplicated, one per line. Output is deterministic so generated manifests
// diff cleanly under version control.
func WriteComponentSet(w io.Writer, names []string) error {
	sorted, err := normalizeNames(names)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, name := range sorted {
		bw.WriteString(name)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return errors.NewIOError(errors.ErrCodeManifestWrite, "failed to write prepared scan result", err)
	}
	return nil
}

// WriteMarkerMap writes a grouped-form scan result: one line per marker,
// keys sorted, values sorted and deduplicated. A marker with no components
// is written as a bare "marker=" line.
func WriteMarkerMap(w io.Writer, groups map[string][]string) error {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		if err := validateRecordName(key); err != nil {
			return err
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	bw := bufio.NewWriter(w)
	for _, key := range keys {
		values, err := normalizeNames(groups[key])
		if err != nil {
			return err
		}
		bw.WriteString(key)
		bw.WriteByte('=')
		bw.WriteString(strings.Join(values, ","))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return errors.NewIOError(errors.ErrCodeManifestWrite, "failed to write prepared scan result", err)
	}
	return nil
}

// normalizeNames validates, deduplicates, and sorts a name list.
func normalizeNames(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if err := validateRecordName(name); err != nil {
			return nil, err
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// validateRecordName rejects names the line-oriented format cannot carry.
// The reader takes names verbatim, so the writer is the strict side.
func validateRecordName(name string) error {
	if name == "" {
		return errors.NewValidationError(errors.ErrCodeValidationFailed,
			"scan result names must not be empty")
	}
	if strings.ContainsAny(name, "=,\r\n") {
		return errors.NewValidationError(errors.ErrCodeValidationFailed,
			fmt.Sprintf("scan result name %q contains a reserved character", name))
	}
	return nil
}
