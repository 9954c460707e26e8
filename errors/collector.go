package errors

import (
	"fmt"
	"sync"
)

// Collector accumulates errors from batch operations such as directory
// scans, where individual failures should not abort the whole run.
type Collector struct {
	errors []error
	mutex  sync.RWMutex
}

// NewCollector creates a new error collector.
func NewCollector() *Collector {
	return &Collector{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collector. Nil errors are ignored.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, err)
}

// Errors returns a copy of all collected errors.
func (c *Collector) Errors() []error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make([]error, len(c.errors))
	copy(result, c.errors)
	return result
}

// HasErrors returns true if any errors were collected.
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.errors) > 0
}

// Clear removes all collected errors.
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = c.errors[:0]
}

// Err returns a single error summarizing the collection, or nil if the
// collection is empty. The first error is included for context.
func (c *Collector) Err() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return fmt.Errorf("%d errors occurred, first: %w", len(c.errors), c.errors[0])
	}
}
