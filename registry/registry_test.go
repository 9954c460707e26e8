package registry

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prescan/types"
)

func TestNew(t *testing.T) {
	registry := New()

	assert.NotNil(t, registry)
	assert.NotNil(t, registry.entries)
	assert.NotNil(t, registry.watchers)
	assert.Equal(t, 0, registry.Count())
}

func TestRegistry_Register(t *testing.T) {
	registry := New()

	entry := &types.ComponentInfo{
		Name:     "ui.Button",
		Kind:     types.KindComponent,
		FilePath: "components/button.templ",
		Package:  "ui",
		Parameters: []types.ParameterInfo{
			{Name: "label", Type: "string"},
		},
	}

	require.NoError(t, registry.Register(entry))

	retrieved, exists := registry.Get("ui.Button")
	assert.True(t, exists)
	assert.Equal(t, entry, retrieved)

	assert.Equal(t, 1, registry.Count())

	all := registry.GetAll()
	assert.Len(t, all, 1)
	assert.Equal(t, entry, all["ui.Button"])
}

func TestRegistry_RegisterValidation(t *testing.T) {
	registry := New()

	t.Run("nil entry", func(t *testing.T) {
		err := registry.Register(nil)
		assert.Error(t, err)
		assert.Equal(t, 0, registry.Count())
	})

	t.Run("empty name", func(t *testing.T) {
		err := registry.Register(&types.ComponentInfo{Package: "ui"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "empty name")
		assert.Equal(t, 0, registry.Count())
	})
}

func TestRegistry_Update(t *testing.T) {
	registry := New()

	entry := &types.ComponentInfo{
		Name:     "ui.Card",
		Kind:     types.KindComponent,
		FilePath: "components/card.templ",
		Package:  "ui",
		Parameters: []types.ParameterInfo{
			{Name: "title", Type: "string"},
		},
	}
	require.NoError(t, registry.Register(entry))

	updated := &types.ComponentInfo{
		Name:     "ui.Card",
		Kind:     types.KindComponent,
		FilePath: "components/card.templ",
		Package:  "ui",
		Parameters: []types.ParameterInfo{
			{Name: "title", Type: "string"},
			{Name: "subtitle", Type: "string"},
		},
	}
	require.NoError(t, registry.Register(updated))

	retrieved, exists := registry.Get("ui.Card")
	assert.True(t, exists)
	assert.Equal(t, updated, retrieved)
	assert.Len(t, retrieved.Parameters, 2)

	// Count should still be 1
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_MarkerEntries(t *testing.T) {
	registry := New()

	marker := &types.ComponentInfo{
		Name: "markers.Page",
		Kind: types.KindMarker,
	}
	component := &types.ComponentInfo{
		Name:    "ui.Home",
		Kind:    types.KindComponent,
		Markers: []string{"markers.Page"},
	}

	require.NoError(t, registry.Register(marker))
	require.NoError(t, registry.Register(component))

	retrieved, exists := registry.Get("markers.Page")
	assert.True(t, exists)
	assert.Equal(t, types.KindMarker, retrieved.Kind)

	retrieved, exists = registry.Get("ui.Home")
	assert.True(t, exists)
	assert.Equal(t, []string{"markers.Page"}, retrieved.Markers)
}

func TestRegistry_Remove(t *testing.T) {
	registry := New()

	entry := &types.ComponentInfo{
		Name:     "ui.Button",
		FilePath: "components/button.templ",
		Package:  "ui",
	}
	require.NoError(t, registry.Register(entry))

	_, exists := registry.Get("ui.Button")
	assert.True(t, exists)
	assert.Equal(t, 1, registry.Count())

	registry.Remove("ui.Button")

	_, exists = registry.Get("ui.Button")
	assert.False(t, exists)
	assert.Equal(t, 0, registry.Count())

	// Removing an unknown name is a no-op
	registry.Remove("ui.Button")
	assert.Equal(t, 0, registry.Count())
}

func TestRegistry_Watch(t *testing.T) {
	registry := New()

	watcher := registry.Watch()
	assert.NotNil(t, watcher)

	entry := &types.ComponentInfo{
		Name:     "ui.Button",
		FilePath: "components/button.templ",
		Package:  "ui",
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = registry.Register(entry)
	}()

	select {
	case event := <-watcher:
		assert.Equal(t, types.EventTypeAdded, event.Type)
		assert.Equal(t, entry, event.Component)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Expected to receive added event")
	}
}

func TestRegistry_UnWatch(t *testing.T) {
	registry := New()

	watcher1 := registry.Watch()
	watcher2 := registry.Watch()

	assert.Len(t, registry.watchers, 2)

	registry.UnWatch(watcher1)

	assert.Len(t, registry.watchers, 1)

	// Verify the channel is closed
	select {
	case _, ok := <-watcher1:
		assert.False(t, ok, "Channel should be closed")
	case <-time.After(10 * time.Millisecond):
		t.Fatal("Channel should be closed immediately")
	}

	// Verify the other watcher is still active
	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = registry.Register(&types.ComponentInfo{
			Name:     "ui.Button",
			FilePath: "components/button.templ",
			Package:  "ui",
		})
	}()

	select {
	case event := <-watcher2:
		assert.Equal(t, types.EventTypeAdded, event.Type)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Second watcher should still receive events")
	}
}

func TestRegistry_EventTypes(t *testing.T) {
	registry := New()
	watcher := registry.Watch()

	entry := &types.ComponentInfo{
		Name:     "ui.Button",
		FilePath: "components/button.templ",
		Package:  "ui",
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = registry.Register(entry)
	}()

	select {
	case event := <-watcher:
		assert.Equal(t, types.EventTypeAdded, event.Type)
		assert.Equal(t, entry, event.Component)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Expected added event")
	}

	updated := &types.ComponentInfo{
		Name:     "ui.Button",
		FilePath: "components/button.templ",
		Package:  "ui",
		Parameters: []types.ParameterInfo{
			{Name: "label", Type: "string"},
		},
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = registry.Register(updated)
	}()

	select {
	case event := <-watcher:
		assert.Equal(t, types.EventTypeUpdated, event.Type)
		assert.Equal(t, updated, event.Component)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Expected updated event")
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		registry.Remove("ui.Button")
	}()

	select {
	case event := <-watcher:
		assert.Equal(t, types.EventTypeRemoved, event.Type)
		assert.Equal(t, "ui.Button", event.Component.Name)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Expected removed event")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := New()

	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func(index int) {
			entry := &types.ComponentInfo{
				Name:     fmt.Sprintf("ui.Component%d", index),
				FilePath: fmt.Sprintf("components/component%d.templ", index),
				Package:  "ui",
			}
			_ = registry.Register(entry)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	assert.Equal(t, 10, registry.Count())

	for i := 0; i < 10; i++ {
		go func(index int) {
			name := fmt.Sprintf("ui.Component%d", index)
			_, exists := registry.Get(name)
			assert.True(t, exists)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
