// Package loader discovers plugins across their sources and turns them into
// executors.
//
// # Discovery Order
//
// DiscoverAll scans sources in a fixed order, later sources shadowing
// earlier ones by plugin name:
//
//  1. built-in programmatic providers (plugin.RegisterBuiltin)
//  2. the built-in manifest directory
//  3. directories registered by installed packages (RegisterPackage)
//  4. the user plugin directory (~/.hearth/plugins)
//  5. the project plugin directory (.hearth/plugins)
//
// A directory plugin is either the directory itself (root manifest) or its
// immediate subdirectories, each carrying its own manifest; names starting
// with "." or "_" are skipped. A manifest that fails to parse yields a
// discovery entry carrying the error instead of aborting the scan.
//
// # Loading
//
// LoadPlugin validates the plugin's declared dependencies against the
// configured PackageIndex, aggregating every missing and incompatible entry
// into a single error, then builds and caches the executor. Loading is
// idempotent per name until UnloadPlugin.
package loader
