package runtime

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls the plugin runtime
type Config struct {
	// Enabled gates the whole subsystem; a disabled runtime discovers and
	// executes nothing.
	Enabled bool

	// Plugin directories. Empty values fall back to the loader defaults.
	BuiltinPluginsDir string
	UserPluginsDir    string
	ProjectPluginsDir string

	// DisabledPlugins are never loaded even when auto-loading.
	// EnabledPlugins, when non-nil, is an allow-list that also overrides
	// manifests marked disabled-by-default.
	DisabledPlugins []string
	EnabledPlugins  []string

	// PluginSettings carries per-plugin configuration passed to executors
	PluginSettings map[string]map[string]any

	// RevokedPermissions removes manifest-declared permissions per plugin
	// at load time
	RevokedPermissions map[string][]string

	// RequirePermissions blocks execution when a declared high-risk
	// permission has been revoked
	RequirePermissions bool

	// FailClosed denies execution when a gate collaborator is absent.
	// The default (false) is explicit dev-mode fail-open.
	FailClosed bool

	DefaultTimeout time.Duration

	AutoDiscover bool
	AutoLoad     bool
	WatchDirs    bool
}

// DefaultConfig returns the runtime defaults
func DefaultConfig() Config {
	return Config{
		Enabled:            true,
		RequirePermissions: true,
		DefaultTimeout:     300 * time.Second,
		AutoDiscover:       true,
		AutoLoad:           true,
	}
}

// LoadConfigFromEnv builds a Config from HEARTH_* environment variables,
// starting from the defaults
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("HEARTH_PLUGINS_ENABLED"); v != "" {
		cfg.Enabled = v == "true"
	}
	if v := os.Getenv("HEARTH_BUILTIN_PLUGINS_DIR"); v != "" {
		cfg.BuiltinPluginsDir = v
	}
	if v := os.Getenv("HEARTH_USER_PLUGINS_DIR"); v != "" {
		cfg.UserPluginsDir = v
	}
	if v := os.Getenv("HEARTH_PROJECT_PLUGINS_DIR"); v != "" {
		cfg.ProjectPluginsDir = v
	}
	if v := os.Getenv("HEARTH_DISABLED_PLUGINS"); v != "" {
		cfg.DisabledPlugins = splitList(v)
	}
	if v := os.Getenv("HEARTH_ENABLED_PLUGINS"); v != "" {
		cfg.EnabledPlugins = splitList(v)
	}
	if v := os.Getenv("HEARTH_REQUIRE_PERMISSIONS"); v != "" {
		cfg.RequirePermissions = v == "true"
	}
	if v := os.Getenv("HEARTH_FAIL_CLOSED"); v != "" {
		cfg.FailClosed = v == "true"
	}
	if v := os.Getenv("HEARTH_DEFAULT_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.DefaultTimeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("HEARTH_WATCH_PLUGINS"); v != "" {
		cfg.WatchDirs = v == "true"
	}
	return cfg
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// pluginDisabled reports whether the config blocks the plugin outright
func (c *Config) pluginDisabled(name string) bool {
	for _, d := range c.DisabledPlugins {
		if d == name {
			return true
		}
	}
	return false
}

// pluginEnabled reports whether the plugin is on the allow-list. A nil list
// allows everything that isn't disabled.
func (c *Config) pluginEnabled(name string) bool {
	if c.pluginDisabled(name) {
		return false
	}
	if c.EnabledPlugins == nil {
		return true
	}
	for _, e := range c.EnabledPlugins {
		if e == name {
			return true
		}
	}
	return false
}

// explicitlyEnabled reports whether the plugin was named on the allow-list,
// overriding a disabled-by-default manifest
func (c *Config) explicitlyEnabled(name string) bool {
	for _, e := range c.EnabledPlugins {
		if e == name {
			return true
		}
	}
	return false
}
