package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/prescan/internal/config"
	"github.com/conneroisu/prescan/internal/notify"
	"github.com/conneroisu/prescan/internal/scanner"
	"github.com/conneroisu/prescan/internal/watcher"
	"github.com/conneroisu/prescan/registry"
	"github.com/conneroisu/prescan/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch sources and regenerate manifests on change",
	Long: `Watch the configured source paths and regenerate the manifests whenever a
source file changes. Connected clients are notified over WebSocket after every
regeneration, so downstream tooling can reload without polling the manifest
files.

Examples:
  prescan watch                   # Watch all configured paths
  prescan watch --port 7332       # Serve reload notifications on port 7332
  prescan watch --verbose         # Print each regeneration`,
	RunE: runWatch,
}

var (
	watchVerbose bool
	watchPort    int
	watchHost    string
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Print each regeneration")
	watchCmd.Flags().IntVar(&watchPort, "port", 0, "Port for the reload notification server")
	watchCmd.Flags().StringVar(&watchHost, "host", "", "Host for the reload notification server")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// Port 0 asks for a system-assigned port, so presence matters, not value
	if flagChanged(cmd, "port") {
		cfg.Watch.Port = watchPort
	}
	if watchHost != "" {
		cfg.Watch.Host = watchHost
	}

	logger := newLogger(cfg)

	componentRegistry := registry.New()
	componentScanner := scanner.NewComponentScanner(componentRegistry)
	defer componentScanner.Close()
	componentScanner.SetExcludePatterns(cfg.Scan.ExcludePatterns)

	fmt.Println("🔍 Running initial scan...")
	scanConfiguredPaths(componentScanner, cfg)
	if err := regenerateManifests(componentScanner, cfg); err != nil {
		return fmt.Errorf("initial manifest generation: %w", err)
	}
	fmt.Printf("✅ Found %d entries\n", componentRegistry.Count())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := notify.NewHub(cfg.Watch.AllowedOrigins, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	addr := fmt.Sprintf("%s:%d", cfg.Watch.Host, cfg.Watch.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	fmt.Printf("📡 Reload notifications at ws://%s/ws\n", addr)

	debounce := time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond
	fileWatcher, err := watcher.NewFileWatcher(debounce, logger)
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.SourceFilter)
	fileWatcher.AddFilter(watcher.ExcludeFilter(cfg.Scan.ExcludePatterns))
	fileWatcher.AddFilter(watcher.NoVendorFilter)
	fileWatcher.AddFilter(watcher.NoGitFilter)

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		return handleSourceChanges(componentScanner, hub, cfg, events)
	})

	for _, path := range cfg.Scan.Paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := fileWatcher.AddRecursive(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}

	fmt.Println("👀 Watching for changes... (Ctrl+C to stop)")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("notification server: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\n🛑 Received %v, shutting down...\n", sig)
	case <-ctx.Done():
	}

	cancel()
	fileWatcher.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := hub.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: hub shutdown: %v\n", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: server shutdown: %v\n", err)
	}

	return nil
}

// handleSourceChanges rescans the changed files, rewrites the manifests, and
// notifies connected clients.
func handleSourceChanges(componentScanner *scanner.ComponentScanner, hub *notify.Hub, cfg *config.Config, events []watcher.ChangeEvent) error {
	for _, event := range events {
		if watchVerbose {
			fmt.Printf("📝 %s: %s\n", event.Type, event.Path)
		}
		if event.Type == watcher.EventTypeDeleted {
			removeEntriesForFile(componentScanner.GetRegistry(), event.Path)
			continue
		}
		if err := componentScanner.ScanFile(event.Path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to scan %s: %v\n", event.Path, err)
		}
	}

	if err := regenerateManifests(componentScanner, cfg); err != nil {
		return fmt.Errorf("regenerating manifests: %w", err)
	}

	hub.Broadcast(notify.ReloadMessage{
		Event: "manifest",
		Time:  time.Now(),
	})

	if watchVerbose {
		fmt.Printf("✅ Manifests updated (%d entries)\n", componentScanner.GetRegistry().Count())
	}
	return nil
}

// removeEntriesForFile drops registry entries that were declared in path.
// Marker entries created by reference are kept, a remaining member may still
// name them.
func removeEntriesForFile(reg *registry.Registry, path string) {
	for _, info := range reg.GetAll() {
		if info.FilePath == path && info.Kind != types.KindMarker {
			reg.Remove(info.Name)
		}
	}
}

// regenerateManifests writes both manifest files from the current registry
// contents.
func regenerateManifests(componentScanner *scanner.ComponentScanner, cfg *config.Config) error {
	components, groups := componentScanner.Manifest()
	return writeManifests(cfg, components, groups)
}
