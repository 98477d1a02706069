package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/hearth-ai/hearth/pkg/manifest"
	"github.com/hearth-ai/hearth/pkg/plugin"
)

// looseExecutor is the minimal shape a native execution target may expose
// instead of the full plugin.Provider interface
type looseExecutor interface {
	Execute(ctx context.Context, capability string, params map[string]any) (any, error)
}

// nativeExecutor runs capabilities in-process through a registered provider
type nativeExecutor struct {
	base
	provider plugin.Provider
}

func newNative(m *manifest.Manifest, config map[string]any, opts ...Option) *nativeExecutor {
	return &nativeExecutor{base: newBase(m, config, opts...)}
}

// Initialize resolves the provider from the registration table
func (e *nativeExecutor) Initialize(ctx context.Context) error {
	spec := e.manifest.Execution.Native
	if spec == nil {
		return &plugin.LoadError{Plugin: e.manifest.Name(), Reason: "manifest has no native execution block"}
	}

	factory, ok := Provider(spec.Module, spec.Type)
	if !ok {
		if !HasModule(spec.Module) {
			return &plugin.LoadError{
				Plugin: e.manifest.Name(),
				Reason: fmt.Sprintf("no provider module %q registered", spec.Module),
			}
		}
		return &plugin.LoadError{
			Plugin: e.manifest.Name(),
			Reason: fmt.Sprintf("provider module %q has no type %q", spec.Module, spec.Type),
		}
	}

	target, err := factory(e.config)
	if err != nil {
		return &plugin.LoadError{Plugin: e.manifest.Name(), Reason: "provider construction failed", Err: err}
	}

	switch p := target.(type) {
	case plugin.Provider:
		e.provider = p
	case looseExecutor:
		e.provider = &looseProvider{manifest: e.manifest, target: p}
	default:
		return &plugin.LoadError{
			Plugin: e.manifest.Name(),
			Reason: fmt.Sprintf("provider %q/%q does not expose an Execute method", spec.Module, spec.Type),
		}
	}

	if err := e.provider.Initialize(ctx); err != nil {
		return &plugin.LoadError{Plugin: e.manifest.Name(), Reason: "provider initialization failed", Err: err}
	}

	e.log.Debugf("native provider %s/%s resolved for plugin %s", spec.Module, spec.Type, e.manifest.Name())
	return nil
}

// Execute runs the capability in a goroutine raced against the timeout. On
// expiry the error return is a typed *plugin.TimeoutError; the goroutine is
// abandoned (in-process work cannot be killed), so providers should honor
// ctx cancellation.
func (e *nativeExecutor) Execute(ctx context.Context, capability string, params map[string]any) (*plugin.Result, error) {
	if e.provider == nil {
		return nil, &plugin.LoadError{Plugin: e.manifest.Name(), Reason: "executor not initialized"}
	}

	timeout := e.Timeout(capability)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result *plugin.Result
		err    error
	}
	done := make(chan outcome, 1)
	start := time.Now()

	go func() {
		res, err := e.provider.Execute(ctx, capability, params)
		done <- outcome{res, err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		if out.result != nil && out.result.ExecutionTime == 0 {
			out.result.ExecutionTime = time.Since(start).Seconds()
		}
		return out.result, nil
	case <-ctx.Done():
		return nil, &plugin.TimeoutError{
			Plugin:     e.manifest.Name(),
			Capability: capability,
			Seconds:    timeout.Seconds(),
		}
	}
}

// Shutdown passes through to the provider
func (e *nativeExecutor) Shutdown(ctx context.Context) error {
	if e.provider == nil {
		return nil
	}
	return e.provider.Shutdown(ctx)
}

// looseProvider adapts a duck-typed execution target to plugin.Provider,
// normalizing whatever its Execute returns into a Result
type looseProvider struct {
	manifest *manifest.Manifest
	target   looseExecutor
}

func (p *looseProvider) Manifest() *manifest.Manifest { return p.manifest }

func (p *looseProvider) Initialize(ctx context.Context) error {
	if init, ok := p.target.(interface{ Initialize(context.Context) error }); ok {
		return init.Initialize(ctx)
	}
	return nil
}

func (p *looseProvider) Shutdown(ctx context.Context) error {
	if sd, ok := p.target.(interface{ Shutdown(context.Context) error }); ok {
		return sd.Shutdown(ctx)
	}
	return nil
}

func (p *looseProvider) Execute(ctx context.Context, capability string, params map[string]any) (*plugin.Result, error) {
	v, err := p.target.Execute(ctx, capability, params)
	if err != nil {
		return nil, err
	}
	switch data := v.(type) {
	case *plugin.Result:
		return data, nil
	case map[string]any:
		return plugin.SuccessResult(data), nil
	default:
		return plugin.SuccessResult(map[string]any{"result": data}), nil
	}
}
