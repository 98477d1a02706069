package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hearth-ai/hearth/pkg/async"
	"github.com/hearth-ai/hearth/pkg/contextkeys"
	"github.com/hearth-ai/hearth/pkg/loader"
	"github.com/hearth-ai/hearth/pkg/manifest"
	"github.com/hearth-ai/hearth/pkg/observability"
	"github.com/hearth-ai/hearth/pkg/plugin"
	"github.com/hearth-ai/hearth/pkg/registry"
	"github.com/hearth-ai/hearth/pkg/sandbox"
	"github.com/hearth-ai/hearth/pkg/schema"
)

type managerState int

const (
	stateUninitialized managerState = iota
	stateInitialized
	stateShutdown
)

// Manager is the runtime orchestrator: it owns discovery, loading, the
// capability registry and the execution pipeline with its gates.
type Manager struct {
	cfg       Config
	log       *logrus.Logger
	metrics   *observability.Metrics
	loader    *loader.Loader
	registry  *registry.Registry
	sandboxes *sandbox.Manager
	validator *schema.Validator
	tracker   *schema.Tracker
	scopes    ScopeChecker
	policy    PolicyEngine
	watcher   *Watcher

	packageIndex loader.PackageIndex

	mu    sync.RWMutex
	state managerState
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the manager's logger
func WithLogger(log *logrus.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithMetrics sets the metrics sink
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithScopeChecker installs the host's identity gate
func WithScopeChecker(s ScopeChecker) Option {
	return func(m *Manager) { m.scopes = s }
}

// WithPolicyEngine installs the host's policy gate
func WithPolicyEngine(p PolicyEngine) Option {
	return func(m *Manager) { m.policy = p }
}

// WithPackageIndex sets the index plugin dependencies are checked against
func WithPackageIndex(idx loader.PackageIndex) Option {
	return func(m *Manager) { m.packageIndex = idx }
}

// New builds a Manager from the config
func New(cfg Config, opts ...Option) *Manager {
	m := &Manager{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logrus.New()
	}
	if m.metrics == nil {
		m.metrics = observability.NewMetrics()
	}

	loaderOpts := []loader.Option{
		loader.WithLogger(m.log),
		loader.WithBuiltinDir(cfg.BuiltinPluginsDir),
	}
	if cfg.UserPluginsDir != "" {
		loaderOpts = append(loaderOpts, loader.WithUserDir(cfg.UserPluginsDir))
	}
	if cfg.ProjectPluginsDir != "" {
		loaderOpts = append(loaderOpts, loader.WithProjectDir(cfg.ProjectPluginsDir))
	}
	if m.packageIndex != nil {
		loaderOpts = append(loaderOpts, loader.WithPackageIndex(m.packageIndex))
	}
	m.loader = loader.New(loaderOpts...)
	m.registry = registry.New(m.log)
	m.sandboxes = sandbox.NewManager()
	m.validator = schema.New(false)
	m.tracker = schema.NewTracker()
	return m
}

// Initialize discovers plugins and, when configured, loads them and starts
// the directory watcher
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.state != stateUninitialized {
		m.mu.Unlock()
		return errors.New("runtime already initialized")
	}
	m.state = stateInitialized
	m.mu.Unlock()

	if !m.cfg.Enabled {
		m.log.Info("plugin runtime disabled by configuration")
		return nil
	}

	if m.cfg.AutoDiscover {
		m.Discover()
	}
	if m.cfg.AutoLoad {
		m.LoadAll(ctx)
	}
	if m.cfg.WatchDirs {
		w, err := newWatcher(m)
		if err != nil {
			m.log.Warnf("plugin directory watcher unavailable: %v", err)
		} else {
			m.watcher = w
			m.watcher.Start()
		}
	}
	return nil
}

// Discover rescans every plugin source
func (m *Manager) Discover() map[string]plugin.Info {
	if !m.cfg.Enabled {
		return nil
	}
	start := time.Now()
	discovered := m.loader.DiscoverAll()
	m.metrics.DiscoveryDuration.Observe(time.Since(start).Seconds())
	m.metrics.DiscoveredPlugins.Set(float64(len(discovered)))
	m.log.Infof("discovered %d plugins", len(discovered))
	return discovered
}

// loadWorkers bounds concurrent plugin initialization during LoadAll
const loadWorkers = 4

// LoadAll loads every discovered plugin the config allows. Plugins
// initialize concurrently; failures are logged per plugin, never fatal.
func (m *Manager) LoadAll(ctx context.Context) {
	var names []string
	for _, info := range m.loader.ListDiscovered() {
		if info.Error == "" {
			names = append(names, info.Name)
		}
	}
	async.Batch(ctx, names, loadWorkers, m.cfg.DefaultTimeout, func(ctx context.Context, name string) error {
		if err := m.Load(ctx, name); err != nil {
			m.log.Warnf("plugin %s not loaded: %v", name, err)
		}
		return nil
	})
}

// Load loads one discovered plugin: config gates, executor construction and
// initialization, permission record, registry entries.
func (m *Manager) Load(ctx context.Context, name string) error {
	if !m.cfg.Enabled {
		return errors.New("plugin runtime disabled")
	}
	if !m.cfg.pluginEnabled(name) {
		return fmt.Errorf("plugin %q is disabled by configuration", name)
	}

	mf, ok := m.loader.Manifest(name)
	if !ok {
		return &plugin.NotFoundError{Kind: "plugin", Name: name}
	}
	if mf.IsDisabledByDefault() && !m.cfg.explicitlyEnabled(name) {
		return fmt.Errorf("plugin %q is disabled by default (risk level %s); enable it explicitly",
			name, mf.Plugin.RiskLevel)
	}

	settings := m.cfg.PluginSettings[name]
	exec, err := m.loader.InitializePlugin(ctx, name, settings)
	if err != nil {
		return err
	}

	perms := grantedPermissions(mf, m.cfg.RevokedPermissions[name])
	m.sandboxes.Create(name, perms)
	m.registry.Register(mf, exec)
	m.tracker.Register(name, schema.SnapshotCapabilities(mf.Version(), mf.Capabilities))
	m.metrics.PluginsLoaded.Set(float64(len(m.registry.ListPlugins())))
	return nil
}

// grantedPermissions filters the manifest permissions through the revocation
// list
func grantedPermissions(mf *manifest.Manifest, revoked []string) []string {
	if len(revoked) == 0 {
		return mf.Permissions
	}
	blocked := make(map[string]bool, len(revoked))
	for _, r := range revoked {
		blocked[r] = true
	}
	var out []string
	for _, p := range mf.Permissions {
		if !blocked[p] {
			out = append(out, p)
		}
	}
	return out
}

// Unload shuts the plugin's executor down and removes every trace of it
func (m *Manager) Unload(ctx context.Context, name string) error {
	exec, ok := m.loader.Executor(name)
	if !ok {
		return &plugin.NotFoundError{Kind: "plugin", Name: name}
	}
	err := exec.Shutdown(ctx)
	m.loader.UnloadPlugin(name)
	m.registry.Unregister(name)
	m.sandboxes.Remove(name)
	m.metrics.PluginsLoaded.Set(float64(len(m.registry.ListPlugins())))
	if err != nil {
		return fmt.Errorf("plugin %s shutdown: %w", name, err)
	}
	return nil
}

// Reload rediscovers and reloads one plugin, picking up manifest changes
func (m *Manager) Reload(ctx context.Context, name string) error {
	if m.loader.IsLoaded(name) {
		if err := m.Unload(ctx, name); err != nil {
			m.log.Warnf("reload of %s: %v", name, err)
		}
	}
	m.Discover()
	return m.Load(ctx, name)
}

// Shutdown unloads every plugin and stops the watcher. Per-plugin failures
// are logged, not returned; shutdown always completes.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	if m.state == stateShutdown {
		m.mu.Unlock()
		return
	}
	m.state = stateShutdown
	m.mu.Unlock()

	if m.watcher != nil {
		m.watcher.Stop()
	}
	for _, name := range m.registry.ListPlugins() {
		if err := m.Unload(ctx, name); err != nil {
			m.log.Warnf("shutdown: %v", err)
		}
	}
	m.log.Info("plugin runtime stopped")
}

// Execute runs one capability through the full pipeline. It always returns
// a Result; every gate denial and backend failure is normalized into one.
func (m *Manager) Execute(ctx context.Context, fullName string, params map[string]any, execCtx ExecContext) *plugin.Result {
	m.mu.RLock()
	state := m.state
	m.mu.RUnlock()
	if state != stateInitialized || !m.cfg.Enabled {
		return plugin.ErrorResult("plugin runtime is not available", "RUNTIME_UNAVAILABLE")
	}

	start := time.Now()
	key, err := m.registry.ParseFullName(fullName)
	if err != nil {
		return m.finish(ctx, start, fullName, "", plugin.ErrorResult(err.Error(), "NOT_FOUND"))
	}
	entry, ok := m.registry.CapabilityByKey(key)
	if !ok {
		return m.finish(ctx, start, key.Plugin, key.Capability,
			plugin.ErrorResult(fmt.Sprintf("capability %q not registered", fullName), "NOT_FOUND"))
	}

	// Scope gate
	if m.scopes != nil {
		if ok, reason := m.scopes.CheckScope(execCtx.Identity, entry.FullName); !ok {
			m.metrics.GateDenialsTotal.WithLabelValues("scope").Inc()
			return m.finish(ctx, start, key.Plugin, key.Capability,
				plugin.ErrorResult(fmt.Sprintf("capability not in scope: %s", reason), "SCOPE_DENIED"))
		}
	} else if m.cfg.FailClosed {
		m.metrics.GateDenialsTotal.WithLabelValues("scope").Inc()
		return m.finish(ctx, start, key.Plugin, key.Capability,
			plugin.ErrorResult("no scope checker configured", "SCOPE_DENIED"))
	}

	// Sandbox gate: a high-risk permission the manifest declares must still
	// be granted
	if m.cfg.RequirePermissions {
		if res := m.checkPermissions(key); res != nil {
			m.metrics.GateDenialsTotal.WithLabelValues("sandbox").Inc()
			return m.finish(ctx, start, key.Plugin, key.Capability, res)
		}
	}

	// Policy gate
	if m.policy != nil {
		decision := m.policy.Evaluate(entry.FullName, params, execCtx.Policy)
		if !decision.Allowed {
			m.metrics.GateDenialsTotal.WithLabelValues("policy").Inc()
			res := plugin.ErrorResult(fmt.Sprintf("blocked by policy: %s", decision.Reason), "POLICY_VIOLATION")
			res.Metadata = map[string]any{
				"matched_rules": decision.MatchedRules,
				"risk_tier":     decision.RiskTier,
			}
			return m.finish(ctx, start, key.Plugin, key.Capability, res)
		}
		if decision.RequiresAudit {
			m.log.WithFields(logrus.Fields{
				"capability": entry.FullName,
				"identity":   execCtx.Identity,
				"risk_tier":  decision.RiskTier,
			}).Info("audited capability execution")
		}
	} else if m.cfg.FailClosed {
		m.metrics.GateDenialsTotal.WithLabelValues("policy").Inc()
		return m.finish(ctx, start, key.Plugin, key.Capability,
			plugin.ErrorResult("no policy engine configured", "POLICY_VIOLATION"))
	}

	// Confirmation short-circuit: never reaches the backend
	if entry.ConfirmationRequired && !execCtx.Confirmed {
		m.metrics.GateDenialsTotal.WithLabelValues("confirmation").Inc()
		return m.finish(ctx, start, key.Plugin, key.Capability,
			plugin.PendingConfirmation(entry.FullName, params))
	}

	// Schema validation
	validated, err := m.validator.Validate(key.Plugin, entry.Spec, params)
	if err != nil {
		m.metrics.GateDenialsTotal.WithLabelValues("validation").Inc()
		return m.finish(ctx, start, key.Plugin, key.Capability,
			plugin.ErrorResult(err.Error(), "VALIDATION_FAILED"))
	}

	res, err := entry.Executor.Execute(ctx, key.Capability, validated)
	if err != nil {
		res = normalizeError(err)
	}
	if res == nil {
		res = plugin.ErrorResult("backend returned no result", "EXECUTION_FAILED")
	}
	return m.finish(ctx, start, key.Plugin, key.Capability, res)
}

// checkPermissions blocks execution when a declared high-risk permission was
// revoked at load time
func (m *Manager) checkPermissions(key registry.Key) *plugin.Result {
	mf, ok := m.loader.Manifest(key.Plugin)
	if !ok {
		return nil
	}
	set, ok := m.sandboxes.Get(key.Plugin)
	if !ok {
		return nil
	}
	for _, perm := range mf.HighRiskPermissions() {
		if !set.Check(perm, "") {
			return plugin.ErrorResult(
				fmt.Sprintf("permission %q was revoked for plugin %s", perm, key.Plugin),
				"PERMISSION_DENIED")
		}
	}
	return nil
}

// normalizeError converts a backend error return into a Result
func normalizeError(err error) *plugin.Result {
	var terr *plugin.TimeoutError
	if errors.As(err, &terr) {
		return plugin.TimeoutResult(terr.Seconds)
	}
	if errors.Is(err, context.Canceled) {
		return plugin.CancelledResult()
	}
	code := "EXECUTION_FAILED"
	if coded, ok := err.(interface{ Code() string }); ok {
		code = coded.Code()
	}
	return plugin.ErrorResult(err.Error(), code)
}

// finish stamps shared result fields and records metrics
func (m *Manager) finish(ctx context.Context, start time.Time, pluginName, capability string, res *plugin.Result) *plugin.Result {
	if res.ExecutionTime == 0 {
		res.ExecutionTime = time.Since(start).Seconds()
	}
	if res.Metadata == nil {
		res.Metadata = make(map[string]any)
	}
	res.Metadata["execution_id"] = uuid.NewString()
	if rid := contextkeys.RequestID(ctx); rid != "" {
		res.Metadata["request_id"] = rid
	}
	if pluginName != "" {
		res.Metadata["plugin"] = pluginName
	}
	if capability != "" {
		res.Metadata["capability"] = capability
	}

	label := capability
	if label == "" {
		label = "unknown"
	}
	m.metrics.ExecutionsTotal.WithLabelValues(pluginName, label, string(res.Status)).Inc()
	m.metrics.ExecutionDuration.WithLabelValues(pluginName, label).Observe(res.ExecutionTime)
	return res
}

// ToolSchemas renders tool descriptors for every registered capability
func (m *Manager) ToolSchemas() []manifest.ToolSchema { return m.registry.ToolSchemas() }

// Search ranks registered capabilities against a query
func (m *Manager) Search(query string, limit int) []*registry.Entry {
	return m.registry.Search(query, limit)
}

// ListPlugins returns loaded plugin names
func (m *Manager) ListPlugins() []string { return m.registry.ListPlugins() }

// ListDiscovered returns the current discovery snapshots
func (m *Manager) ListDiscovered() []plugin.Info { return m.loader.ListDiscovered() }

// ListCapabilities returns registered entries, optionally for one plugin
func (m *Manager) ListCapabilities(pluginName string) []*registry.Entry {
	return m.registry.ListCapabilities(pluginName)
}

// RequiresConfirmation reports whether a capability demands confirmation
func (m *Manager) RequiresConfirmation(fullName string) bool {
	return m.registry.RequiresConfirmation(fullName)
}

// PluginInfo returns the discovery snapshot for one plugin
func (m *Manager) PluginInfo(name string) (plugin.Info, bool) {
	for _, info := range m.loader.ListDiscovered() {
		if info.Name == name {
			return info, true
		}
	}
	return plugin.Info{}, false
}

// IsLoaded reports whether the plugin is loaded
func (m *Manager) IsLoaded(name string) bool { return m.loader.IsLoaded(name) }
