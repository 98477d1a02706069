// Package runtime orchestrates the plugin subsystem.
//
// # Execution Pipeline
//
// Execute resolves the flat capability name and runs the request through a
// fixed sequence of gates before any backend sees it:
//
//  1. scope: may this identity address the capability at all
//  2. sandbox: are the plugin's declared high-risk permissions still granted
//  3. policy: does the host's policy engine allow these concrete parameters
//  4. confirmation: capabilities marked confirmation_required short-circuit
//     into a pending_confirmation result until the caller replays the
//     request confirmed
//  5. validation: parameters checked and defaulted against the schema
//
// Scope and policy collaborators are optional. With FailClosed unset a
// missing collaborator allows (development mode); set it and a missing
// collaborator denies.
//
// Every path out of Execute is a *plugin.Result: backend errors, including
// the native backend's typed timeout error, are normalized here. Each call
// records metrics and carries an execution id in the result metadata.
//
// # Lifecycle
//
// A Manager moves uninitialized -> initialized -> shutdown. Initialize
// discovers and optionally auto-loads plugins and starts the directory
// watcher; Shutdown unloads everything, logging per-plugin failures rather
// than aborting.
package runtime
