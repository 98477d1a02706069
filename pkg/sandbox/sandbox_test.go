package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-ai/hearth/pkg/plugin"
)

func TestParsePermission(t *testing.T) {
	tests := []struct {
		in   string
		want Permission
	}{
		{"shell", Permission{Type: "shell"}},
		{"filesystem:write", Permission{Type: "filesystem:write"}},
		{"filesystem:write:/tmp/work", Permission{Type: "filesystem:write", Scope: "/tmp/work"}},
		{"network:external:*.example.com", Permission{Type: "network:external", Scope: "*.example.com"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePermission(tt.in), tt.in)
	}
}

func TestPermission_Matches(t *testing.T) {
	tests := []struct {
		name     string
		granted  string
		action   string
		target   string
		expected bool
	}{
		{"exact type", "filesystem:write", "filesystem:write", "", true},
		{"different type", "filesystem:read", "filesystem:write", "", false},
		{"bare type covers subtype", "filesystem", "filesystem:write", "", true},
		{"subtype does not cover bare", "filesystem:write", "filesystem", "", false},
		{"unscoped grant covers any target", "filesystem:write", "filesystem:write", "/anywhere", true},
		{"scoped grant covers contained path", "filesystem:write:/tmp/work", "filesystem:write", "/tmp/work/out.txt", true},
		{"scoped grant rejects outside path", "filesystem:write:/tmp/work", "filesystem:write", "/etc/passwd", false},
		{"scoped grant rejects unscoped requirement", "filesystem:write:/tmp/work", "filesystem:write", "", false},
		{"glob scope", "network:external:*.example.com", "network:external", "api.example.com", true},
		{"glob scope mismatch", "network:external:*.example.com", "network:external", "evil.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := ParsePermission(tt.granted)
			assert.Equal(t, tt.expected, g.Matches(Permission{Type: tt.action, Scope: tt.target}))
		})
	}
}

func TestSet_CheckAndRequire(t *testing.T) {
	s := NewSet("files", []string{"filesystem:read", "filesystem:write:/tmp/work"})

	assert.True(t, s.Check("filesystem:read", "/any/path"))
	assert.True(t, s.Check("filesystem:write", "/tmp/work/a"))
	assert.False(t, s.Check("filesystem:write", "/etc"))
	assert.False(t, s.Check("shell", ""))

	require.NoError(t, s.Require("filesystem:read", "/any"))

	err := s.Require("shell", "")
	var perr *plugin.PermissionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "files", perr.Plugin)
	assert.Equal(t, "shell", perr.Action)
}

func TestSet_GrantRevoke(t *testing.T) {
	s := NewSet("tool", []string{"network:external"})
	assert.True(t, s.Check("network:external", ""))

	s.Revoke("network:external")
	assert.False(t, s.Check("network:external", ""))

	s.Grant("shell")
	assert.True(t, s.Check("shell", ""))
	assert.Equal(t, []string{"shell"}, s.List())
}

func TestManager(t *testing.T) {
	m := NewManager()
	m.Create("alpha", []string{"shell"})

	s, ok := m.Get("alpha")
	require.True(t, ok)
	assert.True(t, s.Check("shell", ""))

	// Create replaces
	m.Create("alpha", nil)
	s, _ = m.Get("alpha")
	assert.False(t, s.Check("shell", ""))

	m.Remove("alpha")
	_, ok = m.Get("alpha")
	assert.False(t, ok)
}
