package registry

import (
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/hearth-ai/hearth/pkg/executor"
	"github.com/hearth-ai/hearth/pkg/manifest"
	"github.com/hearth-ai/hearth/pkg/plugin"
)

const schemaCacheSize = 512

// Key identifies one capability by its owning plugin and capability name
type Key struct {
	Plugin     string
	Capability string
}

// FullName renders the flat wire name "{plugin}_{capability}"
func (k Key) FullName() string {
	return manifest.FullName(k.Plugin, k.Capability)
}

// Entry is one registered capability
type Entry struct {
	Key                  Key
	FullName             string
	Spec                 *manifest.CapabilitySpec
	Executor             executor.Executor
	ConfirmationRequired bool
}

// ToolSchema renders the entry's tool descriptor
func (e *Entry) ToolSchema() manifest.ToolSchema {
	return e.Spec.ToolSchema(e.Key.Plugin)
}

// Registry indexes the capabilities of loaded plugins. Capabilities are
// addressed by Key or by their flat full name; the flat form is ambiguous
// when names contain underscores, so lookup falls back to re-splitting.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
	plugins map[string][]string // plugin -> capability names in registration order
	log     *logrus.Logger

	schemaCache *lru.Cache[string, manifest.ToolSchema]
}

// New returns an empty registry
func New(log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.New()
	}
	cache, _ := lru.New[string, manifest.ToolSchema](schemaCacheSize)
	return &Registry{
		entries:     make(map[Key]*Entry),
		plugins:     make(map[string][]string),
		log:         log,
		schemaCache: cache,
	}
}

// Register indexes every capability of the manifest against the executor.
// Re-registering a plugin silently replaces its previous entries.
func (r *Registry) Register(m *manifest.Manifest, exec executor.Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pluginName := m.Name()
	r.removeLocked(pluginName)

	names := make([]string, 0, len(m.Capabilities))
	for i := range m.Capabilities {
		spec := &m.Capabilities[i]
		key := Key{Plugin: pluginName, Capability: spec.Name}
		r.entries[key] = &Entry{
			Key:                  key,
			FullName:             key.FullName(),
			Spec:                 spec,
			Executor:             exec,
			ConfirmationRequired: spec.ConfirmationRequired,
		}
		names = append(names, spec.Name)
	}
	r.plugins[pluginName] = names
	r.schemaCache.Purge()
	r.log.Debugf("registered %d capabilities for plugin %s", len(names), pluginName)
}

// Unregister removes every capability of a plugin
func (r *Registry) Unregister(pluginName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(pluginName)
	r.schemaCache.Purge()
}

func (r *Registry) removeLocked(pluginName string) {
	for _, cap := range r.plugins[pluginName] {
		delete(r.entries, Key{Plugin: pluginName, Capability: cap})
	}
	delete(r.plugins, pluginName)
}

// CapabilityByKey returns the entry for an exact key
func (r *Registry) CapabilityByKey(key Key) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	return e, ok
}

// Capability resolves a flat full name to its entry
func (r *Registry) Capability(fullName string) (*Entry, error) {
	key, err := r.ParseFullName(fullName)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[key], nil
}

// ParseFullName resolves "{plugin}_{capability}" back into a Key. Both parts
// may themselves contain underscores: the first-underscore split is tried
// first, then the remaining split points from the shortest capability
// suffix outward (last underscore backward) until one matches a registered
// capability.
func (r *Registry) ParseFullName(fullName string) (Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	first := strings.Index(fullName, "_")
	if first == -1 {
		return Key{}, &plugin.NotFoundError{Kind: "capability", Name: fullName}
	}
	if key, ok := r.lookupSplit(fullName, first); ok {
		return key, nil
	}
	for idx := strings.LastIndex(fullName, "_"); idx > first; idx = strings.LastIndex(fullName[:idx], "_") {
		if key, ok := r.lookupSplit(fullName, idx); ok {
			return key, nil
		}
	}
	return Key{}, &plugin.NotFoundError{Kind: "capability", Name: fullName}
}

func (r *Registry) lookupSplit(fullName string, idx int) (Key, bool) {
	key := Key{Plugin: fullName[:idx], Capability: fullName[idx+1:]}
	_, ok := r.entries[key]
	return key, ok
}

// ListPlugins returns the registered plugin names, sorted
func (r *Registry) ListPlugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ListCapabilities returns entries, optionally restricted to one plugin,
// ordered by full name
func (r *Registry) ListCapabilities(pluginName string) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Entry
	for _, e := range r.entries {
		if pluginName != "" && e.Key.Plugin != pluginName {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}

// RequiresConfirmation reports whether the capability demands confirmation
// before executing
func (r *Registry) RequiresConfirmation(fullName string) bool {
	e, err := r.Capability(fullName)
	return err == nil && e != nil && e.ConfirmationRequired
}

// ToolSchemas renders tool descriptors for every registered capability,
// ordered by name. Rendered schemas are cached until the next registration
// change.
func (r *Registry) ToolSchemas() []manifest.ToolSchema {
	entries := r.ListCapabilities("")
	out := make([]manifest.ToolSchema, 0, len(entries))
	for _, e := range entries {
		out = append(out, r.cachedSchema(e))
	}
	return out
}

// PluginSchemas renders tool descriptors for one plugin's capabilities
func (r *Registry) PluginSchemas(pluginName string) []manifest.ToolSchema {
	entries := r.ListCapabilities(pluginName)
	out := make([]manifest.ToolSchema, 0, len(entries))
	for _, e := range entries {
		out = append(out, r.cachedSchema(e))
	}
	return out
}

func (r *Registry) cachedSchema(e *Entry) manifest.ToolSchema {
	if ts, ok := r.schemaCache.Get(e.FullName); ok {
		return ts
	}
	ts := e.ToolSchema()
	r.schemaCache.Add(e.FullName, ts)
	return ts
}
