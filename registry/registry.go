// Package registry maintains the runtime component registry that prepared
// scan results are resolved against. Entries are registered by generated
// code or by the embedding application at startup; the resolver and the
// manifest loader only read from it.
package registry

import (
	"sync"
	"time"

	"github.com/conneroisu/prescan/errors"
	"github.com/conneroisu/prescan/types"
)

// Registry manages all registered components and marker definitions
type Registry struct {
	entries  map[string]*types.ComponentInfo
	mutex    sync.RWMutex
	watchers []chan types.ComponentEvent
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		entries:  make(map[string]*types.ComponentInfo),
		watchers: make([]chan types.ComponentEvent, 0),
	}
}

// Register adds or updates an entry in the registry. Re-registering an
// existing name replaces the entry and notifies watchers with an updated
// event.
func (r *Registry) Register(entry *types.ComponentInfo) error {
	if entry == nil {
		return errors.NewValidationError(errors.ErrCodeValidationFailed, "cannot register nil entry")
	}
	if entry.Name == "" {
		return errors.NewValidationError(errors.ErrCodeValidationFailed, "cannot register entry with empty name")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := types.EventTypeAdded
	if _, exists := r.entries[entry.Name]; exists {
		eventType = types.EventTypeUpdated
	}

	r.entries[entry.Name] = entry

	r.notify(types.ComponentEvent{
		Type:      eventType,
		Component: entry,
		Timestamp: time.Now(),
	})

	return nil
}

// Get retrieves an entry by qualified name
func (r *Registry) Get(name string) (*types.ComponentInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entry, exists := r.entries[name]
	return entry, exists
}

// GetAll returns a copy of all registered entries keyed by name
func (r *Registry) GetAll() map[string]*types.ComponentInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*types.ComponentInfo, len(r.entries))
	for name, entry := range r.entries {
		result[name] = entry
	}
	return result
}

// Remove removes an entry from the registry
func (r *Registry) Remove(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, exists := r.entries[name]
	if !exists {
		return
	}

	delete(r.entries, name)

	r.notify(types.ComponentEvent{
		Type:      types.EventTypeRemoved,
		Component: entry,
		Timestamp: time.Now(),
	})
}

// Watch returns a channel that receives registry change events
func (r *Registry) Watch() <-chan types.ComponentEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.ComponentEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *Registry) UnWatch(ch <-chan types.ComponentEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered entries
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.entries)
}

// notify broadcasts an event to all watchers. Callers must hold the write
// lock.
func (r *Registry) notify(event types.ComponentEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
