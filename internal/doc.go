// Package internal contains the core implementation packages for prescan.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the build-tooling functionality for the prescan CLI. The runtime
// loading surface lives in the public manifest, resolve, registry, and
// types packages at the module root.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - config: Configuration management with validation and security
//   - notify: WebSocket hub broadcasting manifest regeneration events
//   - scanner: Source scanning, directive parsing, and manifest derivation
//   - version: Build metadata from ldflags and debug.ReadBuildInfo
//   - watcher: File system monitoring with debouncing
//
// # Design Principles
//
// All internal packages follow these design principles:
//
//   - Security by default with input validation and sanitization
//   - Concurrent safety with proper mutex usage and race protection
//   - Testability with comprehensive unit and property test coverage
//   - Observability with structured logging on degraded operations
//
// # Inter-Package Communication
//
// Packages communicate through well-defined interfaces:
//
//   - Scanner processes source files and populates the public registry
//   - Watcher monitors the file system and triggers rescans
//   - Notify broadcasts a reload event after every manifest rewrite
//   - Config supplies scan paths, manifest locations, and watch settings
//
// # Security Considerations
//
// Security is implemented at multiple layers:
//
//   - Config package validates all configuration inputs
//   - Notify package validates WebSocket origins against an allowlist
//   - Scanner and watcher packages confine operations to the working
//     directory and reject traversal attempts
//
// For detailed documentation, see the individual package documentation.
package internal
