// Package resolve maps qualified names from prepared scan results onto live
// registry entries. It defines the Context interface the manifest loader
// resolves against, the registry-backed implementation used by the CLI and
// generated bootstrap code, and the failure taxonomy that drives the
// loader's graceful degradation.
package resolve

import (
	"fmt"

	"github.com/conneroisu/prescan/registry"
	"github.com/conneroisu/prescan/types"
)

// Context resolves a qualified name to a registered entry. Implementations
// should return *Error for classified failures; any other error is treated
// as an incompatible entry by callers.
type Context interface {
	Resolve(name string) (*types.ComponentInfo, error)
}

// ContextFunc adapts an ordinary function to the Context interface.
type ContextFunc func(name string) (*types.ComponentInfo, error)

// Resolve calls f(name).
func (f ContextFunc) Resolve(name string) (*types.ComponentInfo, error) {
	return f(name)
}

// Option configures a registry-backed Context.
type Option func(*registryContext)

// WithAPIVersion overrides the highest entry API version the Context will
// accept. The default is types.APIVersion.
func WithAPIVersion(version int) Option {
	return func(rc *registryContext) {
		rc.apiVersion = version
	}
}

// New returns a Context backed by the given registry. A name resolves when
// it is registered, its API version is supported, and every transitive
// requirement is itself registered and usable.
func New(reg *registry.Registry, opts ...Option) Context {
	rc := &registryContext{
		registry:   reg,
		apiVersion: types.APIVersion,
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

type registryContext struct {
	registry   *registry.Registry
	apiVersion int
}

func (rc *registryContext) Resolve(name string) (*types.ComponentInfo, error) {
	entry, ok := rc.registry.Get(name)
	if !ok {
		return nil, &Error{Name: name, Failure: FailureNotFound}
	}

	if entry.APIVersion > rc.apiVersion {
		return nil, &Error{
			Name:    name,
			Failure: FailureIncompatible,
			Cause: fmt.Errorf("registered against api version %d, supported up to %d",
				entry.APIVersion, rc.apiVersion),
		}
	}

	if dep := rc.missingRequirement(entry); dep != "" {
		return nil, &Error{Name: name, Failure: FailureMissingDependency, Dependency: dep}
	}

	return entry, nil
}

// missingRequirement walks the requirement graph breadth-first and returns
// the first transitive requirement that is absent or unusable. The walk is
// cycle-safe; requirement cycles between registered entries resolve fine.
func (rc *registryContext) missingRequirement(entry *types.ComponentInfo) string {
	if len(entry.Requires) == 0 {
		return ""
	}

	seen := map[string]bool{entry.Name: true}
	queue := append([]string(nil), entry.Requires...)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if seen[name] {
			continue
		}
		seen[name] = true

		req, ok := rc.registry.Get(name)
		if !ok {
			return name
		}
		if req.APIVersion > rc.apiVersion {
			return name
		}
		queue = append(queue, req.Requires...)
	}

	return ""
}
