// Package sandbox keeps per-plugin permission records.
//
// Permissions are bookkeeping, not OS-level isolation: the runtime consults
// a plugin's Set before dispatching work, and a host can revoke declared
// permissions at load time. A permission string is "type", "type:subtype"
// or "type:subtype:scope"; grants cover narrower requirements by subtype,
// path containment or glob.
package sandbox
