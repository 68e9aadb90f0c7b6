// Package domain defines the core entities of the bom-scrapper bootstrapper.
//
// This package is the innermost layer of the hexagon. It describes what a
// bootstrap run is made of without knowing how any step is carried out:
//
//   - Settings: Resolved configuration for a project directory
//   - Strategy: How the Python environment is managed (venv or conda)
//   - Run: One recorded pass through the bootstrap sequence
//   - DriverArtifact: A fixed-version Chrome for Testing archive
//   - Command: A process invocation handed to the command runner
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
