package schema

import (
	"fmt"
	"sync"

	"github.com/hearth-ai/hearth/pkg/manifest"
)

// ParameterSnapshot captures the compatibility-relevant shape of a parameter
type ParameterSnapshot struct {
	Type     manifest.ParameterType
	Required bool
	Choices  []string
}

// CapabilitySnapshot captures the compatibility-relevant shape of a capability
type CapabilitySnapshot struct {
	Parameters map[string]ParameterSnapshot
}

// Snapshot is a versioned picture of a plugin's capability surface
type Snapshot struct {
	Version      string
	Capabilities map[string]CapabilitySnapshot
}

// SnapshotCapabilities builds a Snapshot from capability specs
func SnapshotCapabilities(version string, caps []manifest.CapabilitySpec) Snapshot {
	out := Snapshot{Version: version, Capabilities: make(map[string]CapabilitySnapshot, len(caps))}
	for i := range caps {
		c := &caps[i]
		cs := CapabilitySnapshot{Parameters: make(map[string]ParameterSnapshot, len(c.Parameters))}
		for j := range c.Parameters {
			p := &c.Parameters[j]
			cs.Parameters[p.Name] = ParameterSnapshot{
				Type:     p.Type,
				Required: p.Required,
				Choices:  append([]string(nil), p.Choices...),
			}
		}
		out.Capabilities[c.Name] = cs
	}
	return out
}

// Tracker keeps per-plugin snapshot history and reports breaking changes
// between registered versions. Findings are informational; registration is
// never blocked.
type Tracker struct {
	mu      sync.RWMutex
	history map[string]map[string]Snapshot // plugin -> version -> snapshot
}

// NewTracker returns an empty tracker
func NewTracker() *Tracker {
	return &Tracker{history: make(map[string]map[string]Snapshot)}
}

// Register records a snapshot of the plugin's capability surface
func (t *Tracker) Register(pluginName string, snap Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	versions, ok := t.history[pluginName]
	if !ok {
		versions = make(map[string]Snapshot)
		t.history[pluginName] = versions
	}
	versions[snap.Version] = snap
}

// Snapshot returns a recorded snapshot, if present
func (t *Tracker) Snapshot(pluginName, version string) (Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, ok := t.history[pluginName][version]
	return snap, ok
}

// DetectBreakingChanges compares two registered versions of a plugin and
// lists every change that would break an existing caller: removed
// capabilities, removed required parameters, parameter type changes,
// optional parameters turned required, and narrowed choice sets.
func (t *Tracker) DetectBreakingChanges(pluginName, oldVersion, newVersion string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	oldSnap, ok := t.history[pluginName][oldVersion]
	if !ok {
		return nil, fmt.Errorf("no snapshot for %s@%s", pluginName, oldVersion)
	}
	newSnap, ok := t.history[pluginName][newVersion]
	if !ok {
		return nil, fmt.Errorf("no snapshot for %s@%s", pluginName, newVersion)
	}

	var changes []string
	for capName, oldCap := range oldSnap.Capabilities {
		newCap, ok := newSnap.Capabilities[capName]
		if !ok {
			changes = append(changes, fmt.Sprintf("capability %q removed", capName))
			continue
		}
		for paramName, oldParam := range oldCap.Parameters {
			newParam, ok := newCap.Parameters[paramName]
			if !ok {
				if oldParam.Required {
					changes = append(changes, fmt.Sprintf("capability %q: required parameter %q removed", capName, paramName))
				}
				continue
			}
			if newParam.Type != oldParam.Type {
				changes = append(changes, fmt.Sprintf("capability %q: parameter %q changed type from %s to %s",
					capName, paramName, oldParam.Type, newParam.Type))
			}
			if !oldParam.Required && newParam.Required {
				changes = append(changes, fmt.Sprintf("capability %q: parameter %q became required", capName, paramName))
			}
			if removed := removedChoices(oldParam.Choices, newParam.Choices); len(removed) > 0 {
				changes = append(changes, fmt.Sprintf("capability %q: parameter %q no longer accepts %v",
					capName, paramName, removed))
			}
		}
	}
	return changes, nil
}

func removedChoices(old, new []string) []string {
	if len(old) == 0 || len(new) == 0 {
		return nil
	}
	kept := make(map[string]bool, len(new))
	for _, c := range new {
		kept[c] = true
	}
	var removed []string
	for _, c := range old {
		if !kept[c] {
			removed = append(removed, c)
		}
	}
	return removed
}
