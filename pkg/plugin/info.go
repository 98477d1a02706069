package plugin

import (
	"github.com/hearth-ai/hearth/pkg/manifest"
)

// Info is an immutable discovery snapshot of a plugin. A failed manifest
// parse still yields an Info so callers can surface the failure.
type Info struct {
	Name         string   `json:"name"`
	Version      string   `json:"version,omitempty"`
	Description  string   `json:"description,omitempty"`
	Author       string   `json:"author,omitempty"`
	License      string   `json:"license,omitempty"`
	Source       string   `json:"source"`
	Capabilities []string `json:"capabilities,omitempty"`
	Loaded       bool     `json:"loaded"`
	Error        string   `json:"error,omitempty"`
}

// InfoFromManifest builds a discovery snapshot from a parsed manifest.
// Source names the discovery pass that found it ("builtin", "package",
// "user", "project").
func InfoFromManifest(m *manifest.Manifest, source string) Info {
	caps := make([]string, 0, len(m.Capabilities))
	for i := range m.Capabilities {
		caps = append(caps, m.Capabilities[i].Name)
	}
	return Info{
		Name:         m.Plugin.Name,
		Version:      m.Plugin.Version,
		Description:  m.Plugin.Description,
		Author:       m.Plugin.Author,
		License:      m.Plugin.License,
		Source:       source,
		Capabilities: caps,
	}
}

// FailedInfo builds a snapshot for a plugin whose manifest could not be
// parsed or validated
func FailedInfo(name, source string, err error) Info {
	return Info{
		Name:   name,
		Source: source,
		Error:  err.Error(),
	}
}

// WithLoaded returns a copy of the snapshot with the loaded flag set
func (i Info) WithLoaded(loaded bool) Info {
	i.Loaded = loaded
	return i
}
