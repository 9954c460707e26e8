// Package cmd provides the command-line interface for prescan with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --log-level, etc.) - highest priority
//	2. PRESCAN_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (PRESCAN_WATCH_PORT, etc.)
//	4. Configuration files (.prescan.yml) - lowest priority
//
// Environment Variables:
//
//	PRESCAN_CONFIG_FILE: Path to custom configuration file
//	PRESCAN_WATCH_PORT: Override the watch-mode notification port
//	PRESCAN_MANIFEST_DIR: Override the manifest output directory
//	And more following the PRESCAN_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/prescan/internal/config"
	"github.com/conneroisu/prescan/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prescan",
	Short: "Prepared scan results for templ component registries",
	Long: `Prescan discovers templ components at build time and writes the scan
result to disk, so application startup can skip directory walking and load
the component registry straight from the prepared manifests.

Key Features:
  • Component and marker discovery from .templ and .go sources
  • Prepared scan result generation (flat and grouped manifests)
  • Manifest verification against the current source tree
  • Watch mode with WebSocket reload notifications

Quick Start:
  prescan generate                Scan sources and write the manifests
  prescan list                    List discovered components
  prescan verify                  Check the manifests against the sources
  prescan watch                   Regenerate manifests on file changes

Documentation: https://github.com/conneroisu/prescan`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .prescan.yml, can also use PRESCAN_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system.
//
// Configuration loading priority (highest to lowest):
//  1. --config flag: explicitly specified config file path
//  2. PRESCAN_CONFIG_FILE environment variable: custom config file path
//  3. Default: .prescan.yml in the current directory
//
// Environment variable binding uses the PRESCAN_ prefix for all
// configuration values (e.g. PRESCAN_WATCH_PORT=7331).
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("PRESCAN_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".prescan")
	}

	viper.SetEnvPrefix("PRESCAN")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or malformed config file falls back to defaults
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the loaded configuration.
func newLogger(cfg *config.Config) logging.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}
