package sandbox

import (
	"sync"

	"github.com/hearth-ai/hearth/pkg/plugin"
)

// Set is the permission record of one loaded plugin
type Set struct {
	Plugin string

	mu      sync.RWMutex
	granted []Permission
}

// NewSet builds a plugin's permission record from its manifest permission
// strings
func NewSet(pluginName string, perms []string) *Set {
	s := &Set{Plugin: pluginName}
	for _, p := range perms {
		s.granted = append(s.granted, ParsePermission(p))
	}
	return s
}

// Check reports whether the action on the target is covered by a granted
// permission
func (s *Set) Check(action, target string) bool {
	required := Permission{Type: action, Scope: target}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.granted {
		if g.Matches(required) {
			return true
		}
	}
	return false
}

// Require returns a typed error when the action is not permitted
func (s *Set) Require(action, target string) error {
	if s.Check(action, target) {
		return nil
	}
	return &plugin.PermissionError{
		Plugin:   s.Plugin,
		Action:   action,
		Required: action,
		Target:   target,
	}
}

// Grant adds a permission to the record
func (s *Set) Grant(perm string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.granted = append(s.granted, ParsePermission(perm))
}

// Revoke removes every granted permission with the given type
func (s *Set) Revoke(permType string) {
	parsed := ParsePermission(permType)
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.granted[:0]
	for _, g := range s.granted {
		if g.Type != parsed.Type || (parsed.Scope != "" && g.Scope != parsed.Scope) {
			kept = append(kept, g)
		}
	}
	s.granted = kept
}

// List returns the granted permission strings
func (s *Set) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.granted))
	for i, g := range s.granted {
		out[i] = g.String()
	}
	return out
}

// Manager keeps one permission record per loaded plugin
type Manager struct {
	mu   sync.RWMutex
	sets map[string]*Set
}

// NewManager returns an empty manager
func NewManager() *Manager {
	return &Manager{sets: make(map[string]*Set)}
}

// Create installs a fresh permission record for the plugin, replacing any
// previous one
func (m *Manager) Create(pluginName string, perms []string) *Set {
	s := NewSet(pluginName, perms)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[pluginName] = s
	return s
}

// Get returns the plugin's permission record, if present
func (m *Manager) Get(pluginName string) (*Set, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sets[pluginName]
	return s, ok
}

// Remove drops the plugin's permission record
func (m *Manager) Remove(pluginName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets, pluginName)
}
