package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prescan/logging"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.NotNil(t, watcher.logger)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestFileWatcherAddFilter(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.AddFilter(SourceFilter)
	assert.Len(t, watcher.filters, 1)

	watcher.AddFilter(NoTestFilter)
	assert.Len(t, watcher.filters, 2)
}

func TestFileWatcherAddPath(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	// Watching is confined to the working directory, so the fixture lives here
	tempDir := "test_temp_dir"
	err = os.MkdirAll(tempDir, 0755)
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	err = watcher.AddPath(tempDir)
	assert.NoError(t, err)

	err = watcher.AddPath("/non/existent/path")
	assert.Error(t, err)
}

func TestFileWatcherStartStop(t *testing.T) {
	watcher, err := NewFileWatcher(50*time.Millisecond, logging.NewRecorder())
	require.NoError(t, err)
	defer watcher.Stop()

	tempDir := "test_temp_start_stop"
	err = os.MkdirAll(tempDir, 0755)
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	err = watcher.AddPath(tempDir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var eventReceived bool
	var eventMutex sync.Mutex

	watcher.AddHandler(func(events []ChangeEvent) error {
		eventMutex.Lock()
		eventReceived = true
		eventMutex.Unlock()
		return nil
	})

	err = watcher.Start(ctx)
	require.NoError(t, err)

	// Give watcher time to start
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(tempDir, "test.templ")
	err = os.WriteFile(testFile, []byte("package x"), 0644)
	require.NoError(t, err)

	// Wait for debouncing and event processing
	time.Sleep(200 * time.Millisecond)

	eventMutex.Lock()
	received := eventReceived
	eventMutex.Unlock()

	assert.True(t, received)

	cancel()
	err = watcher.Stop()
	assert.NoError(t, err)
}

func TestHandlerFailureDoesNotStopProcessing(t *testing.T) {
	recorder := logging.NewRecorder()
	watcher, err := NewFileWatcher(20*time.Millisecond, recorder)
	require.NoError(t, err)
	defer watcher.Stop()

	var secondCalled bool
	var mu sync.Mutex

	watcher.AddHandler(func(events []ChangeEvent) error {
		return errors.New("boom")
	})
	watcher.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		secondCalled = true
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = watcher.Start(ctx)
	require.NoError(t, err)

	// Inject a batch directly; the first handler fails, the second still runs
	watcher.debouncer.output <- []ChangeEvent{{Type: EventTypeModified, Path: "a.templ"}}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	called := secondCalled
	mu.Unlock()
	assert.True(t, called)

	var logged bool
	for _, entry := range recorder.ByLevel(logging.LevelError) {
		if entry.Message == "change handler failed" {
			logged = true
		}
	}
	assert.True(t, logged)
}

func TestSourceFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"main.go", true},
		{"component.templ", true},
		{"script.js", false},
		{"style.css", false},
		{"README.md", false},
		{"test", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, SourceFilter(tc.path))
		})
	}
}

func TestExcludeFilter(t *testing.T) {
	filter := ExcludeFilter([]string{"*_templ.go", "*.bak"})

	testCases := []struct {
		path     string
		expected bool
	}{
		{"components/button.templ", true},
		{"components/button_templ.go", false},
		{"views/page.go.bak", false},
		{"views/page.go", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, filter(tc.path))
		})
	}
}

func TestNoTestFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"main.go", true},
		{"main_test.go", false},
		{"component.templ", true},
		{"component_test.templ", false},
		{"other.js", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, NoTestFilter(tc.path))
		})
	}
}

func TestNoVendorFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"src/main.go", true},
		{"vendor/package/index.js", false},
		{"src/vendor/test.go", false},
		{"main.go", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, NoVendorFilter(tc.path))
		})
	}
}

func TestNoGitFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"src/main.go", true},
		{".git/config", false},
		{"src/.git/test.go", false},
		{"main.go", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, NoGitFilter(tc.path))
		})
	}
}

func TestDebouncer(t *testing.T) {
	debouncer := &Debouncer{
		delay:   50 * time.Millisecond,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go debouncer.start(ctx)

	var receivedEvents [][]ChangeEvent
	var eventMutex sync.Mutex

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case events := <-debouncer.output:
				eventMutex.Lock()
				receivedEvents = append(receivedEvents, events)
				eventMutex.Unlock()
			}
		}
	}()

	// Rapid burst: duplicates collapse, batch arrives sorted by path
	debouncer.events <- ChangeEvent{Path: "test2.go", Type: EventTypeModified}
	debouncer.events <- ChangeEvent{Path: "test1.go", Type: EventTypeCreated}
	debouncer.events <- ChangeEvent{Path: "test1.go", Type: EventTypeModified}

	time.Sleep(150 * time.Millisecond)

	eventMutex.Lock()
	finalEvents := receivedEvents
	eventMutex.Unlock()

	require.NotEmpty(t, finalEvents)

	// Batches arrive sorted by path with duplicates collapsed
	seen := make(map[string]ChangeEvent)
	total := 0
	for _, batch := range finalEvents {
		for i, event := range batch {
			if i > 0 {
				assert.Less(t, batch[i-1].Path, event.Path)
			}
			seen[event.Path] = event
			total++
		}
	}
	assert.LessOrEqual(t, total, 2)
	assert.Contains(t, seen, "test1.go")
	assert.Contains(t, seen, "test2.go")
	assert.Equal(t, EventTypeModified, seen["test1.go"].Type)
}

func TestFileWatcherValidation(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	err = watcher.AddPath("../../../etc")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "path")

	err = watcher.AddPath("./../../..")
	assert.Error(t, err)
}

func TestFileWatcherConcurrency(t *testing.T) {
	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	tempDir := "test_temp_concurrency"
	err = os.MkdirAll(tempDir, 0755)
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	err = watcher.AddPath(tempDir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var eventCount int
	var eventMutex sync.Mutex

	watcher.AddHandler(func(events []ChangeEvent) error {
		eventMutex.Lock()
		eventCount += len(events)
		eventMutex.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = watcher.Start(ctx)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			testFile := filepath.Join(tempDir, fmt.Sprintf("test%d.templ", i))
			err := os.WriteFile(testFile, []byte("package x"), 0644)
			assert.NoError(t, err)
		}(i)
	}

	wg.Wait()

	// Wait for all events to be processed
	time.Sleep(200 * time.Millisecond)

	eventMutex.Lock()
	finalCount := eventCount
	eventMutex.Unlock()

	// Exact count varies with debounce timing
	assert.Greater(t, finalCount, 0)
	assert.LessOrEqual(t, finalCount, 10)
}

func TestFileWatcherErrorHandling(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)

	err = watcher.Stop()
	assert.NoError(t, err)
	err = watcher.Stop()
	assert.NoError(t, err) // Double stop should not error
}

func TestAddRecursive(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	tempDir := "test_temp_recursive"
	subDir := filepath.Join(tempDir, "subdir")
	err = os.MkdirAll(subDir, 0755)
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	err = watcher.AddRecursive(tempDir)
	assert.NoError(t, err)

	err = watcher.AddRecursive("../../../etc")
	assert.Error(t, err)
}
