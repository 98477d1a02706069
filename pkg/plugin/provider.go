package plugin

import (
	"context"
	"sort"
	"sync"

	"github.com/hearth-ai/hearth/pkg/manifest"
)

// Provider is the contract a native plugin implementation satisfies. The
// runtime drives the lifecycle: Initialize before the first Execute,
// Shutdown exactly once when the plugin is unloaded.
type Provider interface {
	// Manifest returns the plugin's static descriptor
	Manifest() *manifest.Manifest

	// Initialize prepares the plugin for execution
	Initialize(ctx context.Context) error

	// Execute runs one named capability with validated parameters
	Execute(ctx context.Context, capability string, params map[string]any) (*Result, error)

	// Shutdown releases any resources held by the plugin
	Shutdown(ctx context.Context) error
}

// ProviderFactory constructs a built-in provider from its configuration
type ProviderFactory func(config map[string]any) (Provider, error)

var (
	builtinMu sync.RWMutex
	builtins  = map[string]ProviderFactory{}
)

// RegisterBuiltin records a programmatic plugin under its name. Built-in
// providers are discovered before any manifest directory and can be shadowed
// by user or project plugins of the same name.
func RegisterBuiltin(name string, factory ProviderFactory) {
	builtinMu.Lock()
	defer builtinMu.Unlock()
	builtins[name] = factory
}

// Builtin returns the registered factory for a name, if any
func Builtin(name string) (ProviderFactory, bool) {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	f, ok := builtins[name]
	return f, ok
}

// Builtins returns the registered built-in plugin names, sorted
func Builtins() []string {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnregisterBuiltin removes a programmatic plugin registration. Intended for
// tests.
func UnregisterBuiltin(name string) {
	builtinMu.Lock()
	defer builtinMu.Unlock()
	delete(builtins, name)
}
