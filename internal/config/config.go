// Package config provides configuration management for the prescan CLI using
// Viper for flexible configuration loading from files, environment variables,
// and command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with PRESCAN_ prefix, validation, and security checks. It manages
// scan paths, manifest output locations, watch-mode settings, and logging
// options.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/conneroisu/prescan/logging"
	"github.com/conneroisu/prescan/manifest"
)

type Config struct {
	Scan     ScanConfig     `yaml:"scan"`
	Manifest ManifestConfig `yaml:"manifest"`
	Watch    WatchConfig    `yaml:"watch"`
	Log      LogConfig      `yaml:"log"`
}

type ScanConfig struct {
	Paths           []string `yaml:"paths"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

type ManifestConfig struct {
	Dir            string `yaml:"dir"`
	ComponentsFile string `yaml:"components_file"`
	MarkersFile    string `yaml:"markers_file"`
}

type WatchConfig struct {
	DebounceMillis int      `yaml:"debounce_ms"`
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ComponentsPath returns the flat-form manifest location.
func (c *Config) ComponentsPath() string {
	return filepath.Join(c.Manifest.Dir, c.Manifest.ComponentsFile)
}

// MarkersPath returns the grouped-form manifest location.
func (c *Config) MarkersPath() string {
	return filepath.Join(c.Manifest.Dir, c.Manifest.MarkersFile)
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Apply defaults for scan paths only if not explicitly set
	if !viper.IsSet("scan.paths") && len(config.Scan.Paths) == 0 {
		config.Scan.Paths = []string{"./components", "./views", "./pages"}
	}

	// Handle scan paths set via viper (workaround for viper slice handling)
	if viper.IsSet("scan.paths") && len(config.Scan.Paths) == 0 {
		paths := viper.GetStringSlice("scan.paths")
		if len(paths) > 0 {
			config.Scan.Paths = paths
		}
	}

	// Handle exclude patterns set via viper (workaround for viper slice handling)
	if viper.IsSet("scan.exclude_patterns") && len(config.Scan.ExcludePatterns) == 0 {
		patterns := viper.GetStringSlice("scan.exclude_patterns")
		if len(patterns) > 0 {
			config.Scan.ExcludePatterns = patterns
		}
	}
	if len(config.Scan.ExcludePatterns) == 0 {
		config.Scan.ExcludePatterns = []string{"*_test.templ", "*_templ.go", "*.bak"}
	}

	// Handle manifest file names set via viper (workaround for viper key handling)
	if viper.IsSet("manifest.components_file") && config.Manifest.ComponentsFile == "" {
		config.Manifest.ComponentsFile = viper.GetString("manifest.components_file")
	}
	if viper.IsSet("manifest.markers_file") && config.Manifest.MarkersFile == "" {
		config.Manifest.MarkersFile = viper.GetString("manifest.markers_file")
	}

	// Apply default values for ManifestConfig if not set
	if config.Manifest.Dir == "" {
		config.Manifest.Dir = manifest.DefaultDir
	}
	if config.Manifest.ComponentsFile == "" {
		config.Manifest.ComponentsFile = manifest.ComponentsFile
	}
	if config.Manifest.MarkersFile == "" {
		config.Manifest.MarkersFile = manifest.MarkersFile
	}

	// Handle debounce set via viper (workaround for viper key handling)
	if viper.IsSet("watch.debounce_ms") && config.Watch.DebounceMillis == 0 {
		config.Watch.DebounceMillis = viper.GetInt("watch.debounce_ms")
	}

	// Apply default values for WatchConfig if not set
	if config.Watch.DebounceMillis == 0 {
		config.Watch.DebounceMillis = 300
	}
	if config.Watch.Host == "" {
		config.Watch.Host = "localhost"
	}
	if config.Watch.Port == 0 {
		config.Watch.Port = 7331
	}

	// Handle allowed origins set via viper (workaround for viper slice handling)
	if viper.IsSet("watch.allowed_origins") && len(config.Watch.AllowedOrigins) == 0 {
		origins := viper.GetStringSlice("watch.allowed_origins")
		if len(origins) > 0 {
			config.Watch.AllowedOrigins = origins
		}
	}

	// Apply default values for LogConfig if not set
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	// Validate configuration values
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateScanConfig(&config.Scan); err != nil {
		return fmt.Errorf("scan config: %w", err)
	}

	if err := validateManifestConfig(&config.Manifest); err != nil {
		return fmt.Errorf("manifest config: %w", err)
	}

	if err := validateWatchConfig(&config.Watch); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	return nil
}

// validateScanConfig validates scan configuration values
func validateScanConfig(config *ScanConfig) error {
	for _, path := range config.Paths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid scan path '%s': %w", path, err)
		}
	}

	return nil
}

// validateManifestConfig validates manifest output locations
func validateManifestConfig(config *ManifestConfig) error {
	if err := validatePath(config.Dir); err != nil {
		return fmt.Errorf("invalid manifest dir '%s': %w", config.Dir, err)
	}

	for _, name := range []string{config.ComponentsFile, config.MarkersFile} {
		if name == "" {
			return fmt.Errorf("manifest file name must not be empty")
		}
		if name != filepath.Base(name) {
			return fmt.Errorf("manifest file name '%s' must not contain path separators", name)
		}
	}

	return nil
}

// validateWatchConfig validates watch-mode configuration values
func validateWatchConfig(config *WatchConfig) error {
	// Validate port range (allow 0 for system-assigned ports in testing)
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.DebounceMillis < 0 {
		return fmt.Errorf("debounce_ms must not be negative")
	}

	// Validate host
	if config.Host != "" {
		// Basic validation - no dangerous characters
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

// validateLogConfig validates logging configuration values
func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return err
	}

	if config.Format != "text" && config.Format != "json" {
		return fmt.Errorf("log format must be 'text' or 'json', got '%s'", config.Format)
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	// Clean the path
	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
