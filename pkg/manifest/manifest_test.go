package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `
schema_version: "1.0"
plugin:
  name: mailer
  version: 1.2.0
  description: Sends email
  author: Ops
capabilities:
  - name: send_email
    description: Send an email message
    confirmation_required: true
    parameters:
      - name: to
        type: string
        required: true
      - name: subject
        type: string
        required: true
      - name: priority
        type: string
        choices: [low, normal, high]
        default: normal
execution:
  type: process
  process:
    binary: mailer
permissions:
  - network:external
`

func TestParse_Valid(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	assert.Equal(t, "mailer", m.Name())
	assert.Equal(t, "1.2.0", m.Version())
	assert.Equal(t, ExecutionProcess, m.Execution.Type)
	require.Len(t, m.Capabilities, 1)
	assert.True(t, m.Capabilities[0].ConfirmationRequired)

	// Defaults applied
	assert.Equal(t, "MIT", m.Plugin.License)
	assert.Equal(t, RiskMedium, m.Plugin.RiskLevel)
}

func TestParse_CollectsAllErrors(t *testing.T) {
	doc := `
plugin:
  name: Bad_Name
  version: not-a-version
capabilities: []
execution:
  type: process
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)

	merr, ok := err.(*Error)
	require.True(t, ok)

	// Name grammar, version grammar, missing description, missing author,
	// no capabilities, missing process block: all reported at once.
	assert.GreaterOrEqual(t, len(merr.Errors), 5)
}

func TestParse_MissingBackendBlock(t *testing.T) {
	doc := `
plugin:
  name: broken
  version: 1.0.0
  description: d
  author: a
capabilities:
  - name: run
    description: runs
execution:
  type: native
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing "native" configuration`)
}

func TestParse_UnknownExecutionType(t *testing.T) {
	doc := `
plugin:
  name: broken
  version: 1.0.0
  description: d
  author: a
capabilities:
  - name: run
    description: runs
execution:
  type: wasm
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `execution.type "wasm"`)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("plugin: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML")
}

func TestExecutionSpec_Backend(t *testing.T) {
	spec := ExecutionSpec{Type: ExecutionProcess, Process: &ProcessExecutionSpec{Binary: "x"}}
	assert.Equal(t, spec.Process, spec.Backend())

	// Declared type without its block
	spec = ExecutionSpec{Type: ExecutionHTTP, Process: &ProcessExecutionSpec{Binary: "x"}}
	assert.Nil(t, spec.Backend())
}

func TestIsDisabledByDefault(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Manifest)
		disabled bool
	}{
		{"low risk no permissions", func(m *Manifest) {
			m.Plugin.RiskLevel = RiskLow
			m.Permissions = nil
		}, false},
		{"explicit flag", func(m *Manifest) {
			m.Plugin.RiskLevel = RiskLow
			m.Permissions = nil
			m.Plugin.DisabledByDefault = true
		}, true},
		{"high risk level", func(m *Manifest) {
			m.Plugin.RiskLevel = RiskHigh
			m.Permissions = nil
		}, true},
		{"critical risk level", func(m *Manifest) {
			m.Plugin.RiskLevel = RiskCritical
			m.Permissions = nil
		}, true},
		{"high-risk permission", func(m *Manifest) {
			m.Plugin.RiskLevel = RiskLow
			m.Permissions = []string{"shell"}
		}, true},
		{"benign permission", func(m *Manifest) {
			m.Plugin.RiskLevel = RiskLow
			m.Permissions = []string{"network:internal"}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(validManifest))
			require.NoError(t, err)
			tt.mutate(m)
			assert.Equal(t, tt.disabled, m.IsDisabledByDefault())
		})
	}
}

func TestHighRiskPermissions(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)
	m.Permissions = []string{"network:external", "filesystem:read", "secrets:read"}

	assert.ElementsMatch(t, []string{"network:external", "secrets:read"}, m.HighRiskPermissions())
}

func TestFind_PriorityOrder(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugin.yaml"), []byte(validManifest), 0644))
	assert.Equal(t, filepath.Join(dir, "plugin.yaml"), Find(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(validManifest), 0644))
	assert.Equal(t, filepath.Join(dir, "manifest.yaml"), Find(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "hearth-plugin.yaml"), []byte(validManifest), 0644))
	assert.Equal(t, filepath.Join(dir, "hearth-plugin.yaml"), Find(dir))
}

func TestFind_Missing(t *testing.T) {
	assert.Empty(t, Find(t.TempDir()))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hearth-plugin.yaml"), []byte(validManifest), 0644))

	m, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "mailer", m.Name())

	_, err = LoadDir(t.TempDir())
	assert.Error(t, err)
}

func TestCapability_Lookup(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	require.NotNil(t, m.Capability("send_email"))
	assert.Nil(t, m.Capability("no_such"))

	cap := m.Capability("send_email")
	require.NotNil(t, cap.Parameter("to"))
	assert.Nil(t, cap.Parameter("missing"))
}

func TestRequiredConfig(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)
	m.Config = map[string]ConfigField{
		"api_key": {Type: "string", Required: true},
		"region":  {Type: "string"},
	}

	assert.Equal(t, []string{"api_key"}, m.RequiredConfig())
}
