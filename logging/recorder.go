package logging

import (
	"context"
	"sync"
)

// Entry is a single log call captured by a Recorder.
type Entry struct {
	Level   LogLevel
	Message string
	Err     error
	Fields  map[string]interface{}
}

// Recorder is a Logger that captures entries in memory. It is intended for
// tests that assert on what was logged rather than on formatted output.
type Recorder struct {
	fields map[string]interface{}

	// shared across With/WithComponent children so a child's entries are
	// visible on the parent
	sink *entrySink
}

type entrySink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		fields: make(map[string]interface{}),
		sink:   &entrySink{},
	}
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()

	out := make([]Entry, len(r.sink.entries))
	copy(out, r.sink.entries)
	return out
}

// ByLevel returns the recorded entries at the given level.
func (r *Recorder) ByLevel(level LogLevel) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards all recorded entries.
func (r *Recorder) Reset() {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	r.sink.entries = nil
}

func (r *Recorder) record(level LogLevel, err error, msg string, fields ...interface{}) {
	entry := Entry{
		Level:   level,
		Message: msg,
		Err:     err,
		Fields:  make(map[string]interface{}, len(r.fields)+len(fields)/2),
	}
	for k, v := range r.fields {
		entry.Fields[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			entry.Fields[key] = fields[i+1]
		}
	}

	r.sink.mu.Lock()
	r.sink.entries = append(r.sink.entries, entry)
	r.sink.mu.Unlock()
}

// Debug records a debug entry.
func (r *Recorder) Debug(_ context.Context, msg string, fields ...interface{}) {
	r.record(LevelDebug, nil, msg, fields...)
}

// Info records an info entry.
func (r *Recorder) Info(_ context.Context, msg string, fields ...interface{}) {
	r.record(LevelInfo, nil, msg, fields...)
}

// Warn records a warning entry.
func (r *Recorder) Warn(_ context.Context, err error, msg string, fields ...interface{}) {
	r.record(LevelWarn, err, msg, fields...)
}

// Error records an error entry.
func (r *Recorder) Error(_ context.Context, err error, msg string, fields ...interface{}) {
	r.record(LevelError, err, msg, fields...)
}

// With returns a child Recorder carrying extra fields. Entries logged on the
// child are visible through the parent's Entries.
func (r *Recorder) With(fields ...interface{}) Logger {
	child := &Recorder{
		fields: make(map[string]interface{}, len(r.fields)+len(fields)/2),
		sink:   r.sink,
	}
	for k, v := range r.fields {
		child.fields[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			child.fields[key] = fields[i+1]
		}
	}
	return child
}

// WithComponent returns a child Recorder tagged with a component field.
func (r *Recorder) WithComponent(component string) Logger {
	return r.With("component", component)
}
