package manifest

// ParameterType enumerates the supported capability parameter types
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeInteger ParameterType = "integer"
	TypeNumber  ParameterType = "number"
	TypeBoolean ParameterType = "boolean"
	TypeArray   ParameterType = "array"
	TypeObject  ParameterType = "object"
)

// IsValid reports whether the parameter type is one of the supported values
func (t ParameterType) IsValid() bool {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// ExecutionType enumerates the supported execution backends
type ExecutionType string

const (
	ExecutionNative    ExecutionType = "native"
	ExecutionProcess   ExecutionType = "process"
	ExecutionContainer ExecutionType = "container"
	ExecutionHTTP      ExecutionType = "http"
)

// RiskLevel classifies how dangerous a plugin is
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// HighRiskPermissions are permission strings that force a plugin to be
// disabled by default
var HighRiskPermissions = map[string]bool{
	"shell":             true,
	"subprocess":        true,
	"filesystem:write":  true,
	"filesystem:delete": true,
	"secrets:read":      true,
	"secrets:write":     true,
	"network:external":  true,
}

// ParameterSpec describes one input parameter of a capability
type ParameterSpec struct {
	Name        string        `yaml:"name" json:"name"`
	Type        ParameterType `yaml:"type" json:"type"`
	Description string        `yaml:"description" json:"description,omitempty"`
	Required    bool          `yaml:"required" json:"required"`
	Default     any           `yaml:"default" json:"default,omitempty"`
	Choices     []string      `yaml:"choices" json:"choices,omitempty"`

	// For array parameters
	ItemsType ParameterType `yaml:"items_type" json:"items_type,omitempty"`

	// For object parameters
	Properties map[string]map[string]any `yaml:"properties" json:"properties,omitempty"`

	// Command-line addressing hints for process-backed plugins
	Flag       string `yaml:"flag" json:"flag,omitempty"`
	Positional bool   `yaml:"positional" json:"positional,omitempty"`
}

// ReturnSpec describes a capability's return value
type ReturnSpec struct {
	Type        ParameterType             `yaml:"type" json:"type"`
	Description string                    `yaml:"description" json:"description,omitempty"`
	Properties  map[string]map[string]any `yaml:"properties" json:"properties,omitempty"`
}

// ExampleSpec is an example invocation of a capability
type ExampleSpec struct {
	Description string         `yaml:"description" json:"description,omitempty"`
	Input       map[string]any `yaml:"input" json:"input"`
	Output      map[string]any `yaml:"output" json:"output,omitempty"`
}

// CapabilitySpec describes one named operation a plugin exposes
type CapabilitySpec struct {
	Name                 string          `yaml:"name" json:"name"`
	Description          string          `yaml:"description" json:"description"`
	Parameters           []ParameterSpec `yaml:"parameters" json:"parameters,omitempty"`
	Returns              *ReturnSpec     `yaml:"returns" json:"returns,omitempty"`
	Examples             []ExampleSpec   `yaml:"examples" json:"examples,omitempty"`
	ConfirmationRequired bool            `yaml:"confirmation_required" json:"confirmation_required,omitempty"`

	// Timeout in seconds; 0 means use the plugin or global default
	Timeout int `yaml:"timeout" json:"timeout,omitempty"`
}

// Parameter returns the parameter spec with the given name, or nil
func (c *CapabilitySpec) Parameter(name string) *ParameterSpec {
	for i := range c.Parameters {
		if c.Parameters[i].Name == name {
			return &c.Parameters[i]
		}
	}
	return nil
}

// NativeExecutionSpec configures the in-process backend. Module and Type
// reference an entry in the provider registration table.
type NativeExecutionSpec struct {
	Module string `yaml:"module" json:"module"`
	Type   string `yaml:"type" json:"type"`
}

// ProcessExecutionSpec configures the external-process backend
type ProcessExecutionSpec struct {
	Binary  string            `yaml:"binary" json:"binary"`
	Env     map[string]string `yaml:"env" json:"env,omitempty"`
	WorkDir string            `yaml:"workdir" json:"workdir,omitempty"`
	Shell   bool              `yaml:"shell" json:"shell,omitempty"`
}

// ContainerExecutionSpec configures the containerized backend (declared but
// not yet implemented by the executor)
type ContainerExecutionSpec struct {
	Image   string            `yaml:"image" json:"image"`
	Env     map[string]string `yaml:"env" json:"env,omitempty"`
	Volumes map[string]string `yaml:"volumes" json:"volumes,omitempty"`
	Network string            `yaml:"network" json:"network,omitempty"`
}

// HTTPExecutionSpec configures the HTTP backend (declared but not yet
// implemented by the executor)
type HTTPExecutionSpec struct {
	BaseURL    string            `yaml:"base_url" json:"base_url"`
	Headers    map[string]string `yaml:"headers" json:"headers,omitempty"`
	AuthType   string            `yaml:"auth_type" json:"auth_type,omitempty"`
	AuthEnvVar string            `yaml:"auth_env_var" json:"auth_env_var,omitempty"`
}

// ExecutionSpec selects and configures the execution backend. Exactly the
// block matching Type must be populated.
type ExecutionSpec struct {
	Type      ExecutionType           `yaml:"type" json:"type"`
	Native    *NativeExecutionSpec    `yaml:"native" json:"native,omitempty"`
	Process   *ProcessExecutionSpec   `yaml:"process" json:"process,omitempty"`
	Container *ContainerExecutionSpec `yaml:"container" json:"container,omitempty"`
	HTTP      *HTTPExecutionSpec      `yaml:"http" json:"http,omitempty"`
}

// Backend returns the configuration block matching the declared type, or nil
// when the manifest is inconsistent
func (e *ExecutionSpec) Backend() any {
	switch e.Type {
	case ExecutionNative:
		if e.Native != nil {
			return e.Native
		}
	case ExecutionProcess:
		if e.Process != nil {
			return e.Process
		}
	case ExecutionContainer:
		if e.Container != nil {
			return e.Container
		}
	case ExecutionHTTP:
		if e.HTTP != nil {
			return e.HTTP
		}
	}
	return nil
}

// ConfigField declares one plugin configuration setting
type ConfigField struct {
	Type        string   `yaml:"type" json:"type"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Required    bool     `yaml:"required" json:"required,omitempty"`
	Default     any      `yaml:"default" json:"default,omitempty"`
	Sensitive   bool     `yaml:"sensitive" json:"sensitive,omitempty"`
	Choices     []string `yaml:"choices" json:"choices,omitempty"`
	EnvVar      string   `yaml:"env_var" json:"env_var,omitempty"`
}

// Metadata is the identity section of a manifest
type Metadata struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
	Author      string `yaml:"author" json:"author"`
	License     string `yaml:"license" json:"license,omitempty"`
	Homepage    string `yaml:"homepage" json:"homepage,omitempty"`
	Repository  string `yaml:"repository" json:"repository,omitempty"`

	// Minimum runtime version the plugin requires
	RequiresRuntime string `yaml:"requires_runtime" json:"requires_runtime,omitempty"`

	RiskLevel         RiskLevel `yaml:"risk_level" json:"risk_level"`
	DisabledByDefault bool      `yaml:"disabled_by_default" json:"disabled_by_default,omitempty"`
}

// Manifest is the complete static descriptor of a plugin
type Manifest struct {
	SchemaVersion string                 `yaml:"schema_version" json:"schema_version"`
	Plugin        Metadata               `yaml:"plugin" json:"plugin"`
	Dependencies  []string               `yaml:"dependencies" json:"dependencies,omitempty"`
	Capabilities  []CapabilitySpec       `yaml:"capabilities" json:"capabilities"`
	Execution     ExecutionSpec          `yaml:"execution" json:"execution"`
	Permissions   []string               `yaml:"permissions" json:"permissions,omitempty"`
	Config        map[string]ConfigField `yaml:"config" json:"config,omitempty"`
}

// Name returns the plugin identifier
func (m *Manifest) Name() string { return m.Plugin.Name }

// Version returns the plugin version
func (m *Manifest) Version() string { return m.Plugin.Version }

// Capability returns the capability spec with the given name, or nil
func (m *Manifest) Capability(name string) *CapabilitySpec {
	for i := range m.Capabilities {
		if m.Capabilities[i].Name == name {
			return &m.Capabilities[i]
		}
	}
	return nil
}

// HighRiskPermissions returns the subset of declared permissions considered
// high-risk
func (m *Manifest) HighRiskPermissions() []string {
	var out []string
	for _, p := range m.Permissions {
		if HighRiskPermissions[p] {
			out = append(out, p)
		}
	}
	return out
}

// IsDisabledByDefault reports whether the plugin must be explicitly enabled.
// True when the manifest says so, when the risk level is high or critical,
// or when any high-risk permission is requested.
func (m *Manifest) IsDisabledByDefault() bool {
	if m.Plugin.DisabledByDefault {
		return true
	}
	if m.Plugin.RiskLevel == RiskHigh || m.Plugin.RiskLevel == RiskCritical {
		return true
	}
	return len(m.HighRiskPermissions()) > 0
}

// RequiredConfig returns the names of configuration fields marked required
func (m *Manifest) RequiredConfig() []string {
	var out []string
	for name, field := range m.Config {
		if field.Required {
			out = append(out, name)
		}
	}
	return out
}
