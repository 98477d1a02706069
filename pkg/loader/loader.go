package loader

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hearth-ai/hearth/pkg/executor"
	"github.com/hearth-ai/hearth/pkg/manifest"
	"github.com/hearth-ai/hearth/pkg/plugin"
	"github.com/hearth-ai/hearth/pkg/schema"
)

var dependencyRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(.*)$`)

// Loader discovers plugins across the configured sources and builds
// executors for them. Safe for concurrent use.
type Loader struct {
	builtinDir string
	userDir    string
	projectDir string
	packages   PackageIndex
	log        *logrus.Logger

	mu         sync.RWMutex
	discovered map[string]plugin.Info
	manifests  map[string]*manifest.Manifest
	dirs       map[string]string // plugin name -> source directory
	loaded     map[string]executor.Executor
}

// Option configures a Loader
type Option func(*Loader)

// WithBuiltinDir sets the directory scanned for built-in manifest plugins
func WithBuiltinDir(dir string) Option {
	return func(l *Loader) { l.builtinDir = dir }
}

// WithUserDir overrides the user plugin directory
func WithUserDir(dir string) Option {
	return func(l *Loader) { l.userDir = dir }
}

// WithProjectDir overrides the project plugin directory
func WithProjectDir(dir string) Option {
	return func(l *Loader) { l.projectDir = dir }
}

// WithPackageIndex sets the index dependency constraints are checked against
func WithPackageIndex(idx PackageIndex) Option {
	return func(l *Loader) { l.packages = idx }
}

// WithLogger sets the loader's logger
func WithLogger(log *logrus.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// New returns a Loader. Without options the user directory defaults to
// ~/.hearth/plugins and the project directory to .hearth/plugins under the
// working directory.
func New(opts ...Option) *Loader {
	l := &Loader{
		packages:   MapIndex{},
		discovered: make(map[string]plugin.Info),
		manifests:  make(map[string]*manifest.Manifest),
		dirs:       make(map[string]string),
		loaded:     make(map[string]executor.Executor),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logrus.New()
	}
	if l.userDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			l.userDir = filepath.Join(home, ".hearth", "plugins")
		}
	}
	if l.projectDir == "" {
		l.projectDir = filepath.Join(".hearth", "plugins")
	}
	return l
}

// DiscoverAll scans every source in fixed order, later sources shadowing
// earlier ones: built-in programmatic providers, the built-in manifest
// directory, registered package directories, the user directory, the project
// directory. A plugin whose manifest fails to parse still appears in the
// result, carrying the error.
func (l *Loader) DiscoverAll() map[string]plugin.Info {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.discovered = make(map[string]plugin.Info)
	l.manifests = make(map[string]*manifest.Manifest)
	l.dirs = make(map[string]string)

	l.discoverBuiltins()
	l.discoverDir(l.builtinDir, "builtin")
	for name, dir := range packageEntries() {
		l.discoverPlugin(dir, "package", name)
	}
	l.discoverDir(l.userDir, "user")
	l.discoverDir(l.projectDir, "project")

	out := make(map[string]plugin.Info, len(l.discovered))
	for name, info := range l.discovered {
		info.Loaded = l.loaded[name] != nil
		out[name] = info
	}
	return out
}

// discoverBuiltins instantiates each registered programmatic provider to
// read its manifest
func (l *Loader) discoverBuiltins() {
	for _, name := range plugin.Builtins() {
		factory, _ := plugin.Builtin(name)
		p, err := factory(nil)
		if err != nil {
			l.log.Warnf("built-in plugin %s failed to construct: %v", name, err)
			l.discovered[name] = plugin.FailedInfo(name, "builtin", err)
			continue
		}
		m := p.Manifest()
		if m == nil {
			l.log.Warnf("built-in plugin %s has no manifest", name)
			continue
		}
		l.discovered[name] = plugin.InfoFromManifest(m, "builtin")
		l.manifests[name] = m
	}
}

// discoverDir treats a directory with a root manifest as a single plugin;
// otherwise each immediate subdirectory not starting with "." or "_" must
// carry its own manifest
func (l *Loader) discoverDir(dir, source string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); err != nil {
		l.log.Debugf("plugin directory %s not present, skipping", dir)
		return
	}

	if manifest.Find(dir) != "" {
		l.discoverPlugin(dir, source, filepath.Base(dir))
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		l.log.Warnf("failed to read plugin directory %s: %v", dir, err)
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		sub := filepath.Join(dir, name)
		if manifest.Find(sub) == "" {
			l.log.Debugf("no manifest in %s, skipping", sub)
			continue
		}
		l.discoverPlugin(sub, source, name)
	}
}

func (l *Loader) discoverPlugin(dir, source, fallbackName string) {
	m, err := manifest.LoadDir(dir)
	if err != nil {
		l.log.Warnf("failed to load manifest from %s: %v", dir, err)
		l.discovered[fallbackName] = plugin.FailedInfo(fallbackName, source, err)
		return
	}
	name := m.Name()
	if prev, ok := l.discovered[name]; ok {
		l.log.Debugf("plugin %s from %s shadows %s copy", name, source, prev.Source)
	}
	l.discovered[name] = plugin.InfoFromManifest(m, source)
	l.manifests[name] = m
	l.dirs[name] = dir
}

// validateDependencies checks every declared dependency against the package
// index, aggregating all missing and incompatible entries into one error
func (l *Loader) validateDependencies(m *manifest.Manifest) error {
	var missing []string
	var incompatible []plugin.IncompatibleDep

	for _, dep := range m.Dependencies {
		match := dependencyRegex.FindStringSubmatch(strings.TrimSpace(dep))
		if match == nil {
			missing = append(missing, dep)
			continue
		}
		name, constraint := match[1], strings.TrimSpace(match[2])

		installed, ok := l.packages.Version(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		if constraint == "" {
			continue
		}
		ok, err := schema.IsCompatible(constraint, installed)
		if err != nil || !ok {
			incompatible = append(incompatible, plugin.IncompatibleDep{
				Name:       name,
				Constraint: constraint,
				Installed:  installed,
			})
		}
	}

	if len(missing) > 0 || len(incompatible) > 0 {
		return &plugin.DependencyError{Plugin: m.Name(), Missing: missing, Incompatible: incompatible}
	}
	return nil
}

// LoadPlugin builds (or returns the cached) executor for a discovered
// plugin. Dependency validation happens before construction; built-in
// programmatic plugins are bound directly to their provider instance.
func (l *Loader) LoadPlugin(name string, config map[string]any) (executor.Executor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if exec, ok := l.loaded[name]; ok {
		return exec, nil
	}

	m, ok := l.manifests[name]
	if !ok {
		return nil, &plugin.NotFoundError{
			Kind:     "plugin",
			Name:     name,
			Searched: l.searchedLocations(),
		}
	}

	if err := l.validateDependencies(m); err != nil {
		return nil, err
	}

	var exec executor.Executor
	if info, ok := l.discovered[name]; ok && info.Source == "builtin" {
		if factory, isBuiltin := plugin.Builtin(name); isBuiltin {
			p, err := factory(config)
			if err != nil {
				return nil, &plugin.LoadError{Plugin: name, Reason: "built-in construction failed", Err: err}
			}
			exec = executor.Bind(p, config, l.log)
		}
	}
	if exec == nil {
		var err error
		exec, err = executor.New(m, config, executor.WithLogger(l.log))
		if err != nil {
			return nil, err
		}
	}

	l.loaded[name] = exec
	l.log.Infof("plugin %s@%s loaded", name, m.Version())
	return exec, nil
}

// InitializePlugin loads the plugin and initializes its executor. A failed
// initialization leaves the plugin unloaded.
func (l *Loader) InitializePlugin(ctx context.Context, name string, config map[string]any) (executor.Executor, error) {
	exec, err := l.LoadPlugin(name, config)
	if err != nil {
		return nil, err
	}
	if err := exec.Initialize(ctx); err != nil {
		l.mu.Lock()
		delete(l.loaded, name)
		l.mu.Unlock()
		return nil, err
	}
	return exec, nil
}

// UnloadPlugin drops the cached executor. Shutting the executor down is the
// caller's responsibility.
func (l *Loader) UnloadPlugin(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.loaded, name)
}

// Manifest returns the discovered manifest for a plugin, if any
func (l *Loader) Manifest(name string) (*manifest.Manifest, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.manifests[name]
	return m, ok
}

// IsLoaded reports whether the plugin has a cached executor
func (l *Loader) IsLoaded(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded[name] != nil
}

// Executor returns the cached executor for a plugin, if loaded
func (l *Loader) Executor(name string) (executor.Executor, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	exec, ok := l.loaded[name]
	return exec, ok
}

// ListDiscovered returns the current discovery snapshots, sorted by name
func (l *Loader) ListDiscovered() []plugin.Info {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]plugin.Info, 0, len(l.discovered))
	for name, info := range l.discovered {
		info.Loaded = l.loaded[name] != nil
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (l *Loader) searchedLocations() []string {
	var out []string
	for _, dir := range []string{l.builtinDir, l.userDir, l.projectDir} {
		if dir != "" {
			out = append(out, dir)
		}
	}
	return out
}
