package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hearth-ai/hearth/pkg/manifest"
	"github.com/hearth-ai/hearth/pkg/plugin"
)

var interpolationRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// processExecutor runs capabilities by spawning the plugin's binary
type processExecutor struct {
	base
	binary string
}

func newProcess(m *manifest.Manifest, config map[string]any, opts ...Option) *processExecutor {
	return &processExecutor{base: newBase(m, config, opts...)}
}

// Initialize resolves the plugin binary to an absolute path
func (e *processExecutor) Initialize(ctx context.Context) error {
	spec := e.manifest.Execution.Process
	if spec == nil {
		return &plugin.LoadError{Plugin: e.manifest.Name(), Reason: "manifest has no process execution block"}
	}
	if spec.Binary == "" {
		return &plugin.LoadError{Plugin: e.manifest.Name(), Reason: "process execution requires a binary"}
	}

	path, err := resolveBinary(spec.Binary)
	if err != nil {
		return &plugin.LoadError{Plugin: e.manifest.Name(), Reason: "binary not found", Err: err}
	}
	e.binary = path
	e.log.Debugf("plugin %s binary resolved to %s", e.manifest.Name(), path)
	return nil
}

// resolveBinary locates the executable. Absolute paths must point at an
// existing executable file; bare names go through PATH, then a small set of
// conventional locations.
func resolveBinary(binary string) (string, error) {
	if filepath.IsAbs(binary) {
		if isExecutable(binary) {
			return binary, nil
		}
		return "", fmt.Errorf("%s is not an executable file", binary)
	}

	if path, err := exec.LookPath(binary); err == nil {
		return path, nil
	}

	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".local", "bin", binary),
			filepath.Join(home, "projects", binary, "bin", binary),
		)
	}
	candidates = append(candidates, filepath.Join("/usr/local/bin", binary))

	for _, c := range candidates {
		if isExecutable(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("binary %q not found in PATH or %s", binary, strings.Join(candidates, ", "))
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Mode()&0111 != 0
}

// Execute spawns the binary with arguments built from the declared
// parameters. Exit failures and timeouts come back as Results, never as
// error returns.
func (e *processExecutor) Execute(ctx context.Context, capability string, params map[string]any) (*plugin.Result, error) {
	if e.binary == "" {
		return nil, &plugin.LoadError{Plugin: e.manifest.Name(), Reason: "executor not initialized"}
	}
	cap := e.manifest.Capability(capability)
	if cap == nil {
		return nil, &plugin.NotFoundError{Kind: "capability", Name: capability}
	}

	spec := e.manifest.Execution.Process
	timeout := e.Timeout(capability)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := buildArgs(cap, params)
	var cmd *exec.Cmd
	if spec.Shell {
		line := e.binary + " " + strings.Join(args, " ")
		cmd = exec.CommandContext(ctx, "/bin/sh", "-c", line)
	} else {
		cmd = exec.CommandContext(ctx, e.binary, args...)
	}
	cmd.Env = e.buildEnv(spec)
	if spec.WorkDir != "" {
		cmd.Dir = expandHome(spec.WorkDir)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start).Seconds()

	if ctx.Err() == context.DeadlineExceeded {
		e.log.Warnf("plugin %s capability %s timed out after %s", e.manifest.Name(), capability, timeout)
		res := plugin.TimeoutResult(timeout.Seconds())
		res.RawOutput = stdout.String()
		return res, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = fmt.Sprintf("%s exited with code %d", filepath.Base(e.binary), exitErr.ExitCode())
			}
			res := plugin.ErrorResult(msg, fmt.Sprintf("EXIT_%d", exitErr.ExitCode()))
			res.RawOutput = stdout.String()
			res.ExecutionTime = elapsed
			return res, nil
		}
		return nil, &plugin.ExecutionError{
			Plugin:     e.manifest.Name(),
			Capability: capability,
			Reason:     err.Error(),
		}
	}

	res := plugin.SuccessResult(parseOutput(stdout.String()))
	res.RawOutput = stdout.String()
	res.ExecutionTime = elapsed
	return res, nil
}

// Shutdown is a no-op: processes are spawned per execution
func (e *processExecutor) Shutdown(ctx context.Context) error { return nil }

// buildArgs renders the command line: the capability as a kebab-case
// subcommand, then each declared parameter in manifest order. Positional
// parameters contribute bare values (arrays expand), flagged parameters
// contribute flag/value pairs; booleans become presence flags, arrays repeat
// the flag per element. Parameters absent from params are omitted.
func buildArgs(cap *manifest.CapabilitySpec, params map[string]any) []string {
	args := []string{kebab(cap.Name)}

	for i := range cap.Parameters {
		p := &cap.Parameters[i]
		val, ok := params[p.Name]
		if !ok || val == nil {
			continue
		}

		if p.Positional {
			if items, ok := val.([]any); ok {
				for _, item := range items {
					args = append(args, formatValue(item))
				}
			} else {
				args = append(args, formatValue(val))
			}
			continue
		}

		flag := p.Flag
		if flag == "" {
			flag = "--" + kebab(p.Name)
		}

		switch v := val.(type) {
		case bool:
			if v {
				args = append(args, flag)
			}
		case []any:
			for _, item := range v {
				args = append(args, flag, formatValue(item))
			}
		default:
			args = append(args, flag, formatValue(val))
		}
	}
	return args
}

func formatValue(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func kebab(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// buildEnv assembles the child environment: the parent environment, the
// manifest's env map with placeholders interpolated, and one
// PLUGIN_<UPPER_KEY> variable per plugin config entry.
func (e *processExecutor) buildEnv(spec *manifest.ProcessExecutionSpec) []string {
	env := os.Environ()

	for key, raw := range spec.Env {
		env = append(env, key+"="+e.interpolate(raw))
	}

	for key, val := range e.config {
		env = append(env, "PLUGIN_"+strings.ToUpper(key)+"="+formatValue(val))
	}
	return env
}

// interpolate expands ${secrets.KEY} from plugin config, ${env.NAME} and
// bare ${NAME} from the parent environment. Secret references are
// uppercased before the config lookup, so ${secrets.api_key} resolves the
// API_KEY config entry.
func (e *processExecutor) interpolate(s string) string {
	return interpolationRegex.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		switch {
		case strings.HasPrefix(name, "secrets."):
			key := strings.ToUpper(strings.TrimPrefix(name, "secrets."))
			if val, ok := e.config[key]; ok {
				return formatValue(val)
			}
			return ""
		case strings.HasPrefix(name, "env."):
			return os.Getenv(strings.TrimPrefix(name, "env."))
		default:
			return os.Getenv(name)
		}
	})
}

// parseOutput interprets trimmed stdout: JSON documents decode to structured
// data, anything else is wrapped as {"output": text}, empty output is nil
func parseOutput(stdout string) any {
	text := strings.TrimSpace(stdout)
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		var data any
		if err := json.Unmarshal([]byte(text), &data); err == nil {
			return data
		}
	}
	return map[string]any{"output": text}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
