package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/prescan/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage prescan configuration",
	Long: `Inspect and validate prescan configuration.

Examples:
  prescan config show                      # Show the resolved configuration
  prescan config show > .prescan.yml      # Use it as a config file starting point
  prescan config validate                  # Validate the active config file
  prescan config validate --file ci.yml   # Validate a specific file`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long: `Display the configuration prescan would run with, after merging the
config file, PRESCAN_* environment variables, and built-in defaults.

The output is valid YAML and can be saved as a .prescan.yml starting point.`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a prescan configuration file.

This runs the same checks as every other command: port ranges, path
traversal in scan paths, manifest file names, and log settings.

Examples:
  prescan config validate                  # Validate the active config file
  prescan config validate --file ci.yml   # Validate a specific file`,
	RunE: runConfigValidate,
}

var configValidateFile string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	configValidateCmd.Flags().
		StringVarP(&configValidateFile, "file", "f", "", "Configuration file to validate (default: the active config file)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# prescan configuration")
	fmt.Fprintln(out, "# Resolved from config file, environment, and defaults")

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(cfg)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	target := configValidateFile
	if target != "" {
		viper.SetConfigFile(target)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", target, err)
		}
	} else {
		target = viper.ConfigFileUsed()
		if target == "" {
			return fmt.Errorf("no configuration file found, pass --file or create .prescan.yml")
		}
	}

	if _, err := config.Load(); err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is valid\n", target)
	return nil
}
