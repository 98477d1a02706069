// Package executor runs plugin capabilities through their configured
// backend.
//
// # Backends
//
// Three backends are implemented:
//
//   - native: resolves an in-process provider from the registration table
//     (RegisterProvider) and calls it directly. A timeout surfaces as a
//     typed *plugin.TimeoutError because the in-process work cannot be
//     killed; the orchestrator normalizes it.
//   - process: spawns the plugin's binary per execution, mapping declared
//     parameters onto a command line and parsing stdout back into a Result.
//     Exit failures and timeouts are reported inside the Result.
//   - bound: wraps a pre-constructed plugin.Provider, the path taken by
//     built-in programmatic plugins.
//
// The container and http execution types are part of the manifest grammar
// but not yet implemented; New rejects them at construction so a
// misconfigured plugin fails at load time rather than first use.
//
// # Timeouts
//
// The limit for one execution resolves in order: the capability's declared
// timeout, the plugin-level "timeout" config value, then DefaultTimeout.
//
// # Related Packages
//
//   - pkg/manifest: the execution specs interpreted here
//   - pkg/loader: constructs and caches executors
package executor
