package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conneroisu/prescan/registry"
	"github.com/conneroisu/prescan/types"
)

// createBenchComponents creates a working-directory-local tree of source
// files. The scanner rejects paths outside the working directory, so the
// fixtures cannot live in the system temp dir.
func createBenchComponents(count int) string {
	dir := fmt.Sprintf("scanner_bench_%d_%d", count, time.Now().UnixNano())
	if err := os.MkdirAll(dir, 0755); err != nil {
		panic(err)
	}

	for i := 0; i < count; i++ {
		var name, content string
		switch i % 4 {
		case 0:
			name = fmt.Sprintf("button_%d.templ", i)
			content = generateBenchButton(i)
		case 1:
			name = fmt.Sprintf("card_%d.templ", i)
			content = generateBenchCard(i)
		case 2:
			name = fmt.Sprintf("layout_%d.templ", i)
			content = generateBenchLayout(i)
		case 3:
			name = fmt.Sprintf("view_%d.go", i)
			content = generateBenchView(i)
		}

		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			panic(err)
		}
	}

	return dir
}

func generateBenchButton(index int) string {
	return fmt.Sprintf(`package components

templ BenchButton%d(label string) {
	<button class="btn">{label}</button>
}
`, index)
}

func generateBenchCard(index int) string {
	return fmt.Sprintf(`package components

//prescan:marker ui.Interactive
//prescan:requires components.BenchButton%d
templ BenchCard%d(title string, body string) {
	<div class="card">
		<h3>{title}</h3>
		<p>{body}</p>
		@BenchButton%d("More")
	</div>
}
`, index, index, index)
}

func generateBenchLayout(index int) string {
	return fmt.Sprintf(`package components

//prescan:marker ui.Layout
templ BenchLayout%d(title string, sidebar bool) {
	<html>
		<head><title>{title}</title></head>
		<body>
			if sidebar {
				<aside class="sidebar">{ children... }</aside>
			} else {
				<main>{ children... }</main>
			}
		</body>
	</html>
}

//prescan:ignore
templ benchLayoutHelper%d() {
	<span>internal</span>
}
`, index, index)
}

func generateBenchView(index int) string {
	return fmt.Sprintf(`package views

import "github.com/a-h/templ"

//prescan:marker pages.Page
func BenchView%d(title string) templ.Component {
	return templ.NopComponent
}
`, index)
}

// BenchmarkComponentScanner_ScanDirectory benchmarks directory scanning performance.
func BenchmarkComponentScanner_ScanDirectory(b *testing.B) {
	componentCounts := []int{10, 50, 100, 500}

	for _, count := range componentCounts {
		b.Run(fmt.Sprintf("components-%d", count), func(b *testing.B) {
			testDir := createBenchComponents(count)
			defer os.RemoveAll(testDir)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				reg := registry.New()
				scanner := NewComponentScanner(reg)
				if err := scanner.ScanDirectory(testDir); err != nil {
					b.Fatal(err)
				}
				if err := scanner.Close(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkComponentScanner_ScanFile benchmarks single file scanning performance.
func BenchmarkComponentScanner_ScanFile(b *testing.B) {
	complexities := []struct {
		name      string
		generator func(int) string
		ext       string
	}{
		{"simple", generateBenchButton, ".templ"},
		{"directives", generateBenchCard, ".templ"},
		{"multi", generateBenchLayout, ".templ"},
		{"go-view", generateBenchView, ".go"},
	}

	for _, complexity := range complexities {
		b.Run(complexity.name, func(b *testing.B) {
			tempFile, err := os.CreateTemp(".", "component_*"+complexity.ext)
			if err != nil {
				b.Fatal(err)
			}
			defer os.Remove(tempFile.Name())

			if _, err := tempFile.WriteString(complexity.generator(0)); err != nil {
				b.Fatal(err)
			}
			tempFile.Close()

			reg := registry.New()
			scanner := NewComponentScanner(reg)
			defer scanner.Close()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if err := scanner.ScanFile(tempFile.Name()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkExtractParameters benchmarks parameter extraction performance.
func BenchmarkExtractParameters(b *testing.B) {
	testLines := []string{
		"templ Button(label string) {",
		"templ Card(title string, body string, active bool) {",
		"templ DataTable(rows []Row, sortBy string, ascending bool, pageSize int) {",
		"templ Everything(id int, name string, tags []string, meta map[string]interface{}, opts ...Option) {",
	}

	for i, line := range testLines {
		b.Run(fmt.Sprintf("params-%d", i+1), func(b *testing.B) {
			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				_ = extractParameters(line)
			}
		})
	}
}

// BenchmarkComponentScanner_Manifest benchmarks manifest generation over a
// populated registry.
func BenchmarkComponentScanner_Manifest(b *testing.B) {
	testDir := createBenchComponents(300)
	defer os.RemoveAll(testDir)

	reg := registry.New()
	scanner := NewComponentScanner(reg)
	defer scanner.Close()

	if err := scanner.ScanDirectory(testDir); err != nil {
		b.Fatal(err)
	}
	if reg.Count() == 0 {
		b.Fatal("No components found")
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		names, groups := scanner.Manifest()
		if len(names) == 0 || len(groups) == 0 {
			b.Fatal("Empty manifest")
		}
	}
}

// BenchmarkRegistry_Operations benchmarks registry operations.
func BenchmarkRegistry_Operations(b *testing.B) {
	b.Run("Register", func(b *testing.B) {
		reg := registry.New()

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			entry := &types.ComponentInfo{
				Name:     fmt.Sprintf("components.Bench%d", i),
				Package:  "components",
				FilePath: fmt.Sprintf("bench_%d.templ", i),
				Kind:     types.KindComponent,
				Parameters: []types.ParameterInfo{
					{Name: "title", Type: "string"},
					{Name: "active", Type: "bool"},
				},
			}
			if err := reg.Register(entry); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Get", func(b *testing.B) {
		reg := registry.New()
		for i := 0; i < 1000; i++ {
			entry := &types.ComponentInfo{
				Name:     fmt.Sprintf("components.Bench%d", i),
				Package:  "components",
				FilePath: fmt.Sprintf("bench_%d.templ", i),
				Kind:     types.KindComponent,
			}
			if err := reg.Register(entry); err != nil {
				b.Fatal(err)
			}
		}

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			_, _ = reg.Get(fmt.Sprintf("components.Bench%d", i%1000))
		}
	})

	b.Run("GetAll", func(b *testing.B) {
		reg := registry.New()
		for i := 0; i < 1000; i++ {
			entry := &types.ComponentInfo{
				Name:     fmt.Sprintf("components.Bench%d", i),
				Package:  "components",
				FilePath: fmt.Sprintf("bench_%d.templ", i),
				Kind:     types.KindComponent,
			}
			if err := reg.Register(entry); err != nil {
				b.Fatal(err)
			}
		}

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			_ = reg.GetAll()
		}
	})
}

// BenchmarkPathValidation benchmarks path validation performance.
func BenchmarkPathValidation(b *testing.B) {
	reg := registry.New()
	scanner := NewComponentScanner(reg)
	defer scanner.Close()

	testPaths := []string{
		"component.templ",
		"./components/button.templ",
		"../components/card.templ",
		"./nested/deep/component.templ",
		"../../../etc/passwd",
		"/absolute/path/component.templ",
		"components/../other/component.templ",
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = scanner.validatePath(testPaths[i%len(testPaths)])
	}
}
