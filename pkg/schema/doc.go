// Package schema validates capability invocations and plugin versions.
//
// # Overview
//
// Three concerns live here:
//
//   - Validator checks invocation parameters against a capability's declared
//     parameter specs, collecting every violation into a single error and
//     filling defaults for absent optional parameters.
//   - Semantic versions: ParseVersion, CompareVersions and IsCompatible,
//     supporting exact, comparison, caret, tilde and comma-conjunction
//     constraints.
//   - Tracker records per-version snapshots of a plugin's capability surface
//     and reports changes that would break existing callers.
//
// # Validation Semantics
//
// Validation never fails fast: a call with three bad parameters reports all
// three. Integers arriving as float64 from JSON decoding are accepted when
// integral; booleans are never accepted where a number is expected.
//
// # Related Packages
//
//   - pkg/manifest: the capability specs validated here
//   - pkg/loader: uses IsCompatible for dependency constraints
package schema
