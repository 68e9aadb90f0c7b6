// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CommandRunner: Runs child processes (python, pip, conda, the script)
//   - EnvironmentManager: Creates and activates one environment strategy
//   - Downloader: Streams a driver archive over HTTP
//   - Extractor: Unpacks a driver archive into its target directory
//   - ConfigStore: Project configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Run history. Without it, runs are not recorded.
//   - FileWatcher: Dependency file change notifications. Without it, watch is unavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
