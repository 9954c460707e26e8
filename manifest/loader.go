package manifest

import (
	"bufio"
	"context"
	"io"
	"iter"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/conneroisu/prescan/errors"
	"github.com/conneroisu/prescan/logging"
	"github.com/conneroisu/prescan/resolve"
	"github.com/conneroisu/prescan/types"
)

// maxRecordSize caps a single scan result line. Grouped records can carry
// long component lists.
const maxRecordSize = 1 << 20

// Loader reads prepared scan results and resolves their records against a
// resolution context. A Loader holds only a diagnostics logger; each load is
// stateless, so one Loader may serve concurrent callers as long as the
// contexts passed in support concurrent reads.
type Loader struct {
	log logging.Logger
}

// NewLoader creates a Loader that emits resolution diagnostics through log.
// A nil log disables diagnostics.
func NewLoader(log logging.Logger) *Loader {
	if log == nil {
		log = logging.Nop()
	}
	return &Loader{log: log.WithComponent("manifest")}
}

// ReadComponentSet reads a flat-form scan result, one component name per
// line, and resolves every line through ResolveAll. It takes ownership of
// src and closes it on every exit path, exactly once; a close failure after
// a clean read fails the call.
//
// Unresolvable names are excluded from the result and summarized in logs.
// Only stream failures fail the call itself.
func (l *Loader) ReadComponentSet(src io.ReadCloser, resolver resolve.Context) (set Set, err error) {
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			set = nil
			err = errors.NewIOError(errors.ErrCodeManifestRead, "failed to close prepared scan result", cerr)
		}
	}()

	sc := newRecordScanner(src)
	set = l.ResolveAll(func(yield func(string) bool) {
		for sc.Scan() {
			if !yield(sc.Text()) {
				return
			}
		}
	}, resolver)

	if serr := sc.Err(); serr != nil {
		return nil, errors.NewIOError(errors.ErrCodeManifestRead, "failed to read prepared scan result", serr)
	}
	return set, nil
}

// ReadMarkerMap reads a grouped-form scan result, one marker per line in the
// form "marker=comp1,comp2", and resolves keys and values. The key must
// resolve to a marker definition; a key that is absent, unusable, or of the
// wrong kind drops the whole line with a warning. A later line with the same
// key overwrites the earlier entry. Stream ownership and error behavior
// match ReadComponentSet.
func (l *Loader) ReadMarkerMap(src io.ReadCloser, resolver resolve.Context) (markers MarkerMap, err error) {
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			markers = nil
			err = errors.NewIOError(errors.ErrCodeManifestRead, "failed to close prepared scan result", cerr)
		}
	}()

	ctx := context.Background()
	markers = make(MarkerMap)

	sc := newRecordScanner(src)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			l.log.Warn(ctx, nil, "malformed scan result record, expected marker=component list",
				"record", line)
			continue
		}

		marker, rerr := resolver.Resolve(key)
		if rerr != nil {
			l.log.Warn(ctx, rerr, "failed to load marker definition listed in the prepared scan result",
				"marker", key)
			continue
		}
		if marker == nil || marker.Kind != types.KindMarker {
			l.log.Warn(ctx, nil, "scan result key does not name a marker definition",
				"marker", key)
			continue
		}

		set := Set{}
		if names := splitNames(value); len(names) > 0 {
			set = l.ResolveAll(slices.Values(names), resolver)
		}
		markers[marker] = set
	}

	if serr := sc.Err(); serr != nil {
		return nil, errors.NewIOError(errors.ErrCodeManifestRead, "failed to read prepared scan result", serr)
	}
	return markers, nil
}

// ResolveAll resolves a finite, single-pass sequence of component names and
// returns the handles that resolved. Failures fall into three buckets:
//
//   - not found: the name is no longer registered. Counted, logged at debug.
//   - missing dependency: the entry exists but a transitive requirement is
//     gone. Counted separately, logged at debug with the dependency name.
//   - incompatible: the entry exists but cannot be used. Logged at warning
//     with full detail.
//
// After the pass one aggregate warning reports the missing-name count and
// one aggregate info reports the missing-dependency count, each only when
// nonzero. ResolveAll never fails; drift between a prepared scan result and
// the running binary is expected.
func (l *Loader) ResolveAll(names iter.Seq[string], resolver resolve.Context) Set {
	ctx := context.Background()

	result := make(Set)
	missing := 0
	missingDeps := 0

	for name := range names {
		entry, err := resolver.Resolve(name)
		if err != nil {
			switch resolve.Classify(err) {
			case resolve.FailureNotFound:
				missing++
				l.log.Debug(ctx, "component listed in the prepared scan result could not be found",
					"component", name)
			case resolve.FailureMissingDependency:
				missingDeps++
				var dependency string
				if rerr, ok := resolve.AsError(err); ok {
					dependency = rerr.Dependency
				}
				l.log.Debug(ctx, "component failed to load because a dependency is missing",
					"component", name, "dependency", dependency)
			default:
				l.log.Warn(ctx, err, "failed to load component from prepared scan result",
					"component", name)
			}
			continue
		}
		if entry == nil {
			missing++
			l.log.Debug(ctx, "component listed in the prepared scan result could not be found",
				"component", name)
			continue
		}
		result[entry.Name] = entry
	}

	if missing > 0 {
		l.log.Warn(ctx, nil, "components listed in the prepared scan result could not be found; set the log level to debug for more information",
			"count", missing)
	}
	if missingDeps > 0 {
		l.log.Info(ctx, "components failed to load because some of their dependencies are missing; set the log level to debug for more information",
			"count", missingDeps)
	}

	return result
}

// newRecordScanner wraps src in a UTF-8 decoder that drops a leading byte
// order mark and splits the stream into lines. CRLF input is tolerated.
func newRecordScanner(src io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(transform.NewReader(src, unicode.UTF8BOM.NewDecoder()))
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	return sc
}

// splitNames splits a grouped-form value list on commas. A whitespace-only
// list means no names. Trailing empty segments are dropped; interior empty
// segments are kept and fail resolution as missing.
func splitNames(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	list = strings.TrimRight(list, ",")
	if list == "" {
		return nil
	}
	return strings.Split(list, ",")
}
