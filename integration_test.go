package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prescan/internal/scanner"
	"github.com/conneroisu/prescan/logging"
	"github.com/conneroisu/prescan/manifest"
	"github.com/conneroisu/prescan/registry"
	"github.com/conneroisu/prescan/resolve"
)

const integrationTemplFixture = `package components

//prescan:marker ui.Interactive
//prescan:requires components.Icon
templ Button(label string) {
	<button>{ label }</button>
}

templ Icon(name string) {
	<i>{ name }</i>
}
`

const integrationGoFixture = `package views

import "github.com/a-h/templ"

//prescan:marker pages.Page
func Home() templ.Component {
	return templ.NopComponent
}
`

// writeIntegrationTree lays out a small source tree under a directory inside
// the working directory, where the scanner is allowed to operate.
func writeIntegrationTree(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp(".", "integration_")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "components"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "views"), 0755))

	err = os.WriteFile(filepath.Join(dir, "components", "button.templ"), []byte(integrationTemplFixture), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "views", "page.go"), []byte(integrationGoFixture), 0644)
	require.NoError(t, err)

	return dir
}

// TestIntegration_GenerateLoadRoundTrip drives the full pipeline: scan a
// source tree, write both manifests, and read them back through the loader
// against the same registry.
func TestIntegration_GenerateLoadRoundTrip(t *testing.T) {
	dir := writeIntegrationTree(t)

	componentRegistry := registry.New()
	componentScanner := scanner.NewComponentScanner(componentRegistry)
	defer componentScanner.Close()

	require.NoError(t, componentScanner.ScanDirectory(dir))

	components, groups := componentScanner.Manifest()
	assert.Equal(t, []string{"components.Button", "components.Icon", "views.Home"}, components)
	assert.Len(t, groups, 2)

	manifestDir := filepath.Join(dir, ".prescan")
	require.NoError(t, os.MkdirAll(manifestDir, 0755))

	componentsPath := filepath.Join(manifestDir, "components.scan")
	flat, err := os.Create(componentsPath)
	require.NoError(t, err)
	require.NoError(t, manifest.WriteComponentSet(flat, components))
	require.NoError(t, flat.Close())

	markersPath := filepath.Join(manifestDir, "markers.scan")
	grouped, err := os.Create(markersPath)
	require.NoError(t, err)
	require.NoError(t, manifest.WriteMarkerMap(grouped, groups))
	require.NoError(t, grouped.Close())

	recorder := logging.NewRecorder()
	loader := manifest.NewLoader(recorder)
	resolver := resolve.New(componentRegistry)

	flatSrc, err := os.Open(componentsPath)
	require.NoError(t, err)
	set, err := loader.ReadComponentSet(flatSrc, resolver)
	require.NoError(t, err)
	assert.ElementsMatch(t, components, set.Names())

	groupedSrc, err := os.Open(markersPath)
	require.NoError(t, err)
	markerMap, err := loader.ReadMarkerMap(groupedSrc, resolver)
	require.NoError(t, err)
	require.Len(t, markerMap, 2)

	byName := make(map[string][]string, len(markerMap))
	for marker, members := range markerMap {
		byName[marker.Name] = members.Names()
	}
	assert.ElementsMatch(t, []string{"components.Button"}, byName["ui.Interactive"])
	assert.ElementsMatch(t, []string{"views.Home"}, byName["pages.Page"])

	// A clean round trip loads everything it listed
	assert.Empty(t, recorder.ByLevel(logging.LevelWarn))
	assert.Empty(t, recorder.ByLevel(logging.LevelError))
}

// TestIntegration_StaleManifestDegrades checks that a manifest referencing
// entries that have since disappeared still loads, minus the stale entries.
func TestIntegration_StaleManifestDegrades(t *testing.T) {
	dir := writeIntegrationTree(t)

	componentRegistry := registry.New()
	componentScanner := scanner.NewComponentScanner(componentRegistry)
	defer componentScanner.Close()

	require.NoError(t, componentScanner.ScanDirectory(dir))

	components, _ := componentScanner.Manifest()

	manifestDir := filepath.Join(dir, ".prescan")
	require.NoError(t, os.MkdirAll(manifestDir, 0755))

	componentsPath := filepath.Join(manifestDir, "components.scan")
	flat, err := os.Create(componentsPath)
	require.NoError(t, err)
	require.NoError(t, manifest.WriteComponentSet(flat, components))
	require.NoError(t, flat.Close())

	// The icon disappears after the manifest was generated. The button
	// stays registered but now has an unmet requirement.
	componentRegistry.Remove("components.Icon")

	recorder := logging.NewRecorder()
	loader := manifest.NewLoader(recorder)
	resolver := resolve.New(componentRegistry)

	flatSrc, err := os.Open(componentsPath)
	require.NoError(t, err)
	set, err := loader.ReadComponentSet(flatSrc, resolver)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"views.Home"}, set.Names())
	assert.False(t, set.Contains("components.Icon"))
	assert.False(t, set.Contains("components.Button"))

	// One aggregate warning for the missing name, one aggregate info for
	// the broken requirement chain
	warns := recorder.ByLevel(logging.LevelWarn)
	require.Len(t, warns, 1)
	assert.Equal(t, 1, warns[0].Fields["count"])

	infos := recorder.ByLevel(logging.LevelInfo)
	require.Len(t, infos, 1)
	assert.Equal(t, 1, infos[0].Fields["count"])
}
