// Package types provides common type definitions shared by the prescan
// registry, resolver, manifest loader, and scanner. This package contains
// shared types to avoid circular dependencies between packages.
package types

import (
	"time"

	"github.com/a-h/templ"
)

// APIVersion is the registry API generation this build of prescan
// understands. Entries registered with a higher version are reported as
// incompatible by the resolver.
const APIVersion = 1

// Kind classifies a registry entry.
type Kind int

const (
	// KindComponent is a renderable component entry.
	KindComponent Kind = iota
	// KindMarker is a marker definition. Markers group components in
	// prepared scan results and are never renderable themselves.
	KindMarker
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindMarker:
		return "marker"
	default:
		return "unknown"
	}
}

// ComponentFactory constructs a fresh component instance for rendering.
// Factories must be safe for concurrent use.
type ComponentFactory func() templ.Component

// ComponentInfo contains metadata about a registry entry, either a component
// or a marker definition. It is the resolved handle returned by the resolver
// and collected by the manifest loader, and carries the discovery metadata
// produced by the scanner.
type ComponentInfo struct {
	// Name is the fully-qualified entry name (e.g. "ui.Button")
	Name string
	// Kind distinguishes components from marker definitions
	Kind Kind
	// Package is the Go package name where the component is defined
	Package string
	// FilePath is the path to the .templ or .go file declaring the component
	FilePath string
	// Parameters describes the component's input parameters and their types
	Parameters []ParameterInfo
	// Markers lists marker names attached to the component via directives
	Markers []string
	// Requires lists qualified names that must also be registered for this
	// entry to be usable at runtime
	Requires []string
	// APIVersion is the registry API generation the entry was built against;
	// zero means the current generation
	APIVersion int
	// Factory constructs the runtime component; nil for metadata-only entries
	Factory ComponentFactory
	// LastMod tracks the last modification time for change detection
	LastMod time.Time
	// Hash provides a CRC32 checksum for efficient change detection
	Hash string
}

// ParameterInfo describes a component parameter extracted from the source
// signature.
type ParameterInfo struct {
	// Name is the parameter name as declared in the component signature
	Name string
	// Type is the Go type of the parameter (e.g., "string", "[]Item")
	Type string
}

// EventType represents the type of registry change event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// ComponentEvent represents a change in the component registry, used for
// notifications to watchers such as development tooling.
type ComponentEvent struct {
	// Type indicates the kind of change (added, updated, removed)
	Type EventType
	// Component contains the entry information (never nil)
	Component *ComponentInfo
	// Timestamp records when the event occurred for ordering and filtering
	Timestamp time.Time
}
