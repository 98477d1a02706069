// Package registry indexes the capabilities of loaded plugins.
//
// # Addressing
//
// A capability's primary identity is the Key{Plugin, Capability} pair. The
// flat "{plugin}_{capability}" form exists for wire surfaces that want a
// single string (tool names in particular); because both parts may contain
// underscores the flat form is ambiguous, and ParseFullName resolves it by
// trying progressively longer plugin prefixes against the registered
// entries. Round-tripping a registered key through FullName and
// ParseFullName always recovers the key.
//
// # Search
//
// Search ranks capabilities by where the query matches: the capability name
// weighs most, then the full name, the description, and the plugin name.
//
// Rendered tool schemas are kept in a small LRU cache invalidated whenever
// the registered set changes.
package registry
