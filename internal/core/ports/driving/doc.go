// Package driving declares what the CLI can ask of the core: running the
// bootstrap sequence, inspecting history and editing settings.
//
// internal/core/services implements every interface here.
package driving
