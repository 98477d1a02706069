package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-ai/hearth/pkg/manifest"
	"github.com/hearth-ai/hearth/pkg/plugin"
)

func TestBuildArgs(t *testing.T) {
	cap := &manifest.CapabilitySpec{
		Name: "list_files",
		Parameters: []manifest.ParameterSpec{
			{Name: "paths", Type: manifest.TypeArray, Positional: true},
			{Name: "format", Type: manifest.TypeString, Flag: "-f"},
			{Name: "values", Type: manifest.TypeArray},
			{Name: "verbose", Type: manifest.TypeBoolean},
			{Name: "dry_run", Type: manifest.TypeBoolean},
			{Name: "max_depth", Type: manifest.TypeInteger},
		},
	}

	args := buildArgs(cap, map[string]any{
		"paths":     []any{"/a", "/b"},
		"format":    "json",
		"values":    []any{"x", "y"},
		"verbose":   true,
		"dry_run":   false,
		"max_depth": float64(3),
	})

	assert.Equal(t, []string{
		"list-files",
		"/a", "/b",
		"-f", "json",
		"--values", "x", "--values", "y",
		"--verbose",
		"--max-depth", "3",
	}, args)
}

func TestBuildArgs_OmitsAbsent(t *testing.T) {
	cap := &manifest.CapabilitySpec{
		Name: "run",
		Parameters: []manifest.ParameterSpec{
			{Name: "target", Type: manifest.TypeString, Positional: true},
			{Name: "mode", Type: manifest.TypeString},
		},
	}
	assert.Equal(t, []string{"run"}, buildArgs(cap, map[string]any{}))
	assert.Equal(t, []string{"run", "x"}, buildArgs(cap, map[string]any{"target": "x"}))
}

func TestParseOutput(t *testing.T) {
	assert.Nil(t, parseOutput(""))
	assert.Nil(t, parseOutput("  \n"))
	assert.Equal(t, map[string]any{"ok": true}, parseOutput(`{"ok": true}`))
	assert.Equal(t, []any{"a", "b"}, parseOutput(`["a", "b"]`))
	assert.Equal(t, map[string]any{"output": "plain text"}, parseOutput("plain text\n"))
	assert.Equal(t, map[string]any{"output": "{not json"}, parseOutput("{not json"))
}

func TestInterpolate(t *testing.T) {
	t.Setenv("HEARTH_TEST_TOKEN", "tok-123")

	e := newProcess(processManifest(), map[string]any{"API_KEY": "sk-42"})

	// Secret references uppercase before the config lookup
	assert.Equal(t, "sk-42", e.interpolate("${secrets.api_key}"))
	assert.Equal(t, "sk-42", e.interpolate("${secrets.API_KEY}"))
	assert.Equal(t, "tok-123", e.interpolate("${env.HEARTH_TEST_TOKEN}"))
	assert.Equal(t, "tok-123", e.interpolate("${HEARTH_TEST_TOKEN}"))
	assert.Equal(t, "prefix-sk-42", e.interpolate("prefix-${secrets.api_key}"))
	assert.Equal(t, "", e.interpolate("${secrets.missing}"))
}

func TestBuildEnv_InjectsConfig(t *testing.T) {
	e := newProcess(processManifest(), map[string]any{"api_key": "sk-42", "region": "eu"})
	env := e.buildEnv(&manifest.ProcessExecutionSpec{Env: map[string]string{"MODE": "prod"}})

	assert.Contains(t, env, "MODE=prod")
	assert.Contains(t, env, "PLUGIN_API_KEY=sk-42")
	assert.Contains(t, env, "PLUGIN_REGION=eu")
}

func TestResolveBinary(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "mytool")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755))

	path, err := resolveBinary(bin)
	require.NoError(t, err)
	assert.Equal(t, bin, path)

	_, err = resolveBinary(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	// Non-executable file
	plain := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(plain, []byte("data"), 0644))
	_, err = resolveBinary(plain)
	assert.Error(t, err)

	path, err = resolveBinary("sh")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
}

// writeScript installs an executable shell script and returns its path
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plugin-script")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func scriptManifest(t *testing.T, body string, caps ...manifest.CapabilitySpec) *manifest.Manifest {
	t.Helper()
	m := processManifest(caps...)
	m.Execution.Process.Binary = writeScript(t, body)
	return m
}

func TestProcessExecute_JSONOutput(t *testing.T) {
	m := scriptManifest(t, `echo '{"count": 2}'`,
		manifest.CapabilitySpec{Name: "count_items", Description: "d"})

	e := newProcess(m, nil)
	require.NoError(t, e.Initialize(context.Background()))

	res, err := e.Execute(context.Background(), "count_items", nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, map[string]any{"count": float64(2)}, res.Data)
	assert.Contains(t, res.RawOutput, `{"count": 2}`)
}

func TestProcessExecute_TextOutput(t *testing.T) {
	m := scriptManifest(t, `echo hello`,
		manifest.CapabilitySpec{Name: "greet", Description: "d"})

	e := newProcess(m, nil)
	require.NoError(t, e.Initialize(context.Background()))

	res, err := e.Execute(context.Background(), "greet", nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, map[string]any{"output": "hello"}, res.Data)
}

func TestProcessExecute_ExitCode(t *testing.T) {
	m := scriptManifest(t, `echo "bad input" >&2; exit 3`,
		manifest.CapabilitySpec{Name: "fail", Description: "d"})

	e := newProcess(m, nil)
	require.NoError(t, e.Initialize(context.Background()))

	res, err := e.Execute(context.Background(), "fail", nil)
	require.NoError(t, err, "exit failures are Results, not errors")
	assert.False(t, res.Success)
	assert.Equal(t, plugin.StatusError, res.Status)
	assert.Equal(t, "EXIT_3", res.ErrorCode)
	assert.Equal(t, "bad input", res.ErrorMessage)
}

func TestProcessExecute_TimeoutKillsChild(t *testing.T) {
	m := scriptManifest(t, `sleep 10`,
		manifest.CapabilitySpec{Name: "slow", Description: "d", Timeout: 1})

	e := newProcess(m, nil)
	require.NoError(t, e.Initialize(context.Background()))

	start := time.Now()
	res, err := e.Execute(context.Background(), "slow", nil)
	require.NoError(t, err, "process timeouts are Results, not errors")
	assert.Less(t, time.Since(start), 5*time.Second, "child was killed at the deadline")
	assert.Equal(t, plugin.StatusTimeout, res.Status)
	assert.Equal(t, "TIMEOUT", res.ErrorCode)
}

func TestProcessExecute_UnknownCapability(t *testing.T) {
	m := scriptManifest(t, `echo ok`,
		manifest.CapabilitySpec{Name: "known", Description: "d"})

	e := newProcess(m, nil)
	require.NoError(t, e.Initialize(context.Background()))

	_, err := e.Execute(context.Background(), "unknown", nil)
	var nferr *plugin.NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "capability", nferr.Kind)
}

func TestProcessInitialize_MissingBinary(t *testing.T) {
	m := processManifest(manifest.CapabilitySpec{Name: "x", Description: "d"})
	m.Execution.Process.Binary = "definitely-not-a-real-binary-name"

	e := newProcess(m, nil)
	var lerr *plugin.LoadError
	require.ErrorAs(t, e.Initialize(context.Background()), &lerr)
	assert.Equal(t, "binary not found", lerr.Reason)
}
