package executor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hearth-ai/hearth/pkg/manifest"
	"github.com/hearth-ai/hearth/pkg/plugin"
)

// boundExecutor wraps a pre-constructed provider instance, the path built-in
// programmatic plugins take. Unlike the native backend it converts a timeout
// into a timeout Result so callers holding only the executor never see a raw
// timeout error from a built-in.
type boundExecutor struct {
	base
	provider plugin.Provider
}

// Bind wraps an existing provider in an Executor
func Bind(p plugin.Provider, config map[string]any, log *logrus.Logger) Executor {
	b := boundExecutor{
		base:     newBase(p.Manifest(), config),
		provider: p,
	}
	if log != nil {
		b.log = log
	}
	return &b
}

// Manifest returns the bound provider's descriptor
func (e *boundExecutor) Manifest() *manifest.Manifest { return e.provider.Manifest() }

// Initialize passes through to the provider
func (e *boundExecutor) Initialize(ctx context.Context) error {
	return e.provider.Initialize(ctx)
}

// Execute runs the provider under the resolved timeout. Expiry yields a
// timeout Result, not an error.
func (e *boundExecutor) Execute(ctx context.Context, capability string, params map[string]any) (*plugin.Result, error) {
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
		e.log.Warnf("built-in plugin %s capability %s timed out after %s", e.manifest.Name(), capability, timeout)
		return plugin.TimeoutResult(timeout.Seconds()), nil
	}
}

// Shutdown passes through to the provider
func (e *boundExecutor) Shutdown(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
