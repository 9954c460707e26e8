// Package cmd provides the command-line interface for prescan.
//
// This package implements all CLI commands using the Cobra framework,
// covering the full lifecycle of a prepared scan result: producing it at
// build time, inspecting it, and checking it against the current sources.
//
// # Available Commands
//
//   - generate: Scan the configured paths and write both manifest files
//   - list: List all discovered components and markers with metadata
//   - verify: Resolve every manifest entry against a fresh scan
//   - watch: Regenerate manifests on file changes and notify clients
//   - config: Show the resolved configuration or validate a config file
//   - version: Show build and version information
//
// # Command Examples
//
//	// Write manifests to the default .prescan directory
//	prescan generate
//
//	// Scan a specific tree into a custom output directory
//	prescan generate --scan ./ui --out build/scan
//
//	// List components with JSON output
//	prescan list --format json --with-markers
//
//	// Fail the build when a manifest entry no longer resolves
//	prescan verify --strict
//
//	// Watch and regenerate on changes
//	prescan watch --port 7332
//
// # Security Considerations
//
// All commands implement security hardening:
//
//   - Input validation for all parameters
//   - Path traversal protection for file operations
//   - Scans confined to the current working directory
//   - Sanitization of discovered component names
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (PRESCAN_*)
//  3. Configuration file (.prescan.yml)
//  4. Default values (lowest priority)
//
// # Error Handling
//
// All commands provide structured error reporting with:
//
//   - Clear error messages for common issues
//   - Detailed logging in debug mode
//   - Exit codes following Unix conventions
//   - Graceful handling of interrupts (Ctrl+C)
//
// For detailed usage of individual commands, see their respective documentation.
package cmd
