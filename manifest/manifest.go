// Package manifest reads and writes prepared scan results. A prepared scan
// result is a small line-oriented text file produced at build time that lists
// component names, optionally grouped by marker. At runtime the loader reads
// it back and resolves every recorded name against a caller-supplied
// resolution context, tolerating drift between the build-time scan and the
// running binary: names that no longer resolve are excluded and summarized in
// logs, never surfaced as errors.
//
// Only stream I/O failures fail a load. Everything else degrades gracefully,
// because a scan result computed ahead of time is expected to reference
// components that may be legitimately absent at runtime.
package manifest

import (
	"sort"

	"github.com/conneroisu/prescan/types"
)

// Default manifest file layout produced by the generate command.
const (
	// DefaultDir is the directory manifests are written to.
	DefaultDir = ".prescan"
	// ComponentsFile is the flat-form manifest, one component name per line.
	ComponentsFile = "components.scan"
	// MarkersFile is the grouped-form manifest, one marker group per line.
	MarkersFile = "markers.scan"
)

// Set is a set of resolved component handles keyed by qualified name. It
// never contains a nil entry; names that failed to resolve are simply
// absent.
type Set map[string]*types.ComponentInfo

// Names returns the set's qualified names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether the set holds an entry under the given name.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// MarkerMap maps resolved marker handles to the set of components recorded
// under them. Key identity is handle identity, so resolution contexts must
// return a stable handle per name for duplicate-key overwrites to behave as
// expected; the registry-backed context does.
type MarkerMap map[*types.ComponentInfo]Set

// Markers returns the map's marker handles sorted by qualified name.
func (m MarkerMap) Markers() []*types.ComponentInfo {
	markers := make([]*types.ComponentInfo, 0, len(m))
	for marker := range m {
		markers = append(markers, marker)
	}
	sort.Slice(markers, func(i, j int) bool {
		return markers[i].Name < markers[j].Name
	})
	return markers
}
