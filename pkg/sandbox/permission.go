package sandbox

import (
	"os"
	"path/filepath"
	"strings"
)

// Permission is one granted or required capability of the form
// "type", "type:subtype" or "type:subtype:scope". The scope narrows the
// permission to a path or pattern; an empty scope covers everything under
// the type.
type Permission struct {
	Type  string
	Scope string
}

// ParsePermission splits a permission string into type and scope. The type
// keeps its subtype ("filesystem:write"); anything after the second colon is
// the scope.
func ParsePermission(s string) Permission {
	parts := strings.SplitN(s, ":", 3)
	switch len(parts) {
	case 1:
		return Permission{Type: parts[0]}
	case 2:
		return Permission{Type: parts[0] + ":" + parts[1]}
	default:
		return Permission{Type: parts[0] + ":" + parts[1], Scope: parts[2]}
	}
}

func (p Permission) String() string {
	if p.Scope != "" {
		return p.Type + ":" + p.Scope
	}
	return p.Type
}

// Matches reports whether this granted permission covers the required one.
// A bare type grant ("filesystem") covers any subtype; a scoped grant covers
// required scopes contained within it, by path prefix after home expansion
// or by glob pattern.
func (p Permission) Matches(required Permission) bool {
	if p.Type != required.Type {
		// "filesystem" grants cover "filesystem:write"
		base, _, found := strings.Cut(required.Type, ":")
		if !found || p.Type != base {
			return false
		}
	}
	if p.Scope == "" {
		return true
	}
	if required.Scope == "" {
		// Required everything, granted something narrower
		return false
	}
	return scopeContains(p.Scope, required.Scope)
}

func scopeContains(granted, required string) bool {
	g := expandHome(granted)
	r := expandHome(required)
	if g == r {
		return true
	}
	if strings.HasSuffix(g, "/") && strings.HasPrefix(r, g) {
		return true
	}
	if strings.HasPrefix(r, g+"/") {
		return true
	}
	if ok, err := filepath.Match(g, r); err == nil && ok {
		return true
	}
	return false
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
