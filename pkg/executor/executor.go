package executor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hearth-ai/hearth/pkg/manifest"
	"github.com/hearth-ai/hearth/pkg/plugin"
)

// DefaultTimeout bounds executions that declare no timeout of their own
const DefaultTimeout = 300 * time.Second

// Executor runs capabilities of one loaded plugin through its configured
// backend. Implementations are safe for concurrent Execute calls after a
// successful Initialize.
type Executor interface {
	// Initialize prepares the backend (resolves providers, binaries)
	Initialize(ctx context.Context) error

	// Execute runs one capability. Domain failures are reported inside the
	// Result; an error return means the execution could not be attempted.
	Execute(ctx context.Context, capability string, params map[string]any) (*plugin.Result, error)

	// Shutdown releases backend resources
	Shutdown(ctx context.Context) error

	// Timeout resolves the execution limit for a capability
	Timeout(capability string) time.Duration

	// Manifest returns the plugin descriptor this executor serves
	Manifest() *manifest.Manifest
}

// Option configures an executor
type Option func(*base)

// WithLogger sets the executor's logger
func WithLogger(log *logrus.Logger) Option {
	return func(b *base) { b.log = log }
}

// base carries the state every backend shares
type base struct {
	manifest *manifest.Manifest
	config   map[string]any
	log      *logrus.Logger
}

func newBase(m *manifest.Manifest, config map[string]any, opts ...Option) base {
	b := base{manifest: m, config: config}
	for _, opt := range opts {
		opt(&b)
	}
	if b.log == nil {
		b.log = logrus.New()
	}
	return b
}

// Manifest returns the plugin descriptor
func (b *base) Manifest() *manifest.Manifest { return b.manifest }

// Timeout resolves the execution limit: capability override, then the
// plugin-level "timeout" config value (seconds), then the default.
func (b *base) Timeout(capability string) time.Duration {
	if cap := b.manifest.Capability(capability); cap != nil && cap.Timeout > 0 {
		return time.Duration(cap.Timeout) * time.Second
	}
	if raw, ok := b.config["timeout"]; ok {
		switch v := raw.(type) {
		case int:
			if v > 0 {
				return time.Duration(v) * time.Second
			}
		case float64:
			if v > 0 {
				return time.Duration(v * float64(time.Second))
			}
		}
	}
	return DefaultTimeout
}

// New builds the executor matching the manifest's declared backend. The
// container and http backends are declared in the manifest grammar but not
// yet implemented; selecting one fails fast at construction.
func New(m *manifest.Manifest, config map[string]any, opts ...Option) (Executor, error) {
	switch m.Execution.Type {
	case manifest.ExecutionNative:
		return newNative(m, config, opts...), nil
	case manifest.ExecutionProcess:
		return newProcess(m, config, opts...), nil
	case manifest.ExecutionContainer:
		return nil, &plugin.LoadError{
			Plugin: m.Name(),
			Reason: "container execution is not implemented",
		}
	case manifest.ExecutionHTTP:
		return nil, &plugin.LoadError{
			Plugin: m.Name(),
			Reason: "http execution is not implemented",
		}
	default:
		return nil, &plugin.LoadError{
			Plugin: m.Name(),
			Reason: "unknown execution type " + string(m.Execution.Type),
		}
	}
}
