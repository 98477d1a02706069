// Package plugin defines the contracts shared by every layer of the plugin
// runtime: the Provider interface native plugins implement, the uniform
// execution Result, discovery snapshots, and the typed error taxonomy.
//
// # Results
//
// Every capability execution terminates in a *Result regardless of backend.
// A non-nil error from an execution path signals an infrastructure failure
// (plugin missing, provider unresolvable); domain failures such as a non-zero
// exit code or a rejected parameter travel inside the Result as a status and
// a machine-readable error code.
//
// # Built-in providers
//
// Programmatic plugins register themselves with RegisterBuiltin, typically
// from an init function:
//
//	func init() {
//		plugin.RegisterBuiltin("clock", func(config map[string]any) (plugin.Provider, error) {
//			return &clockPlugin{}, nil
//		})
//	}
//
// The loader discovers registered built-ins first, so a user or project
// plugin with the same name shadows them.
//
// # Errors
//
// The typed errors carry the structured fields callers branch on; all of
// them satisfy errors.As and expose a stable Code() string for wire
// surfaces.
//
// # Related Packages
//
//   - pkg/manifest: the static plugin descriptor these contracts reference
//   - pkg/executor: the backends that produce Results
//   - pkg/runtime: the orchestrator that normalizes errors into Results
package plugin
