package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	nameRegex   = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)
	semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?(\+[a-zA-Z0-9.]+)?$`)
)

// ManifestFilenames are the accepted manifest file names for directory-based
// discovery, in priority order
var ManifestFilenames = []string{"hearth-plugin.yaml", "manifest.yaml", "plugin.yaml"}

// Error aggregates the validation failures of a single manifest
type Error struct {
	Plugin string
	Errors []string
}

func (e *Error) Error() string {
	name := e.Plugin
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("[%s] invalid manifest: %s", name, strings.Join(e.Errors, "; "))
}

// Parse decodes and validates a manifest document
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &Error{Errors: []string{fmt.Sprintf("invalid YAML: %v", err)}}
	}
	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and validates a manifest file
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		if merr, ok := err.(*Error); ok && merr.Plugin == "" {
			merr.Plugin = filepath.Base(filepath.Dir(path))
		}
		return nil, err
	}
	return m, nil
}

// Find locates a manifest file within a plugin directory. Returns the empty
// string when no accepted filename is present.
func Find(dir string) string {
	for _, name := range ManifestFilenames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadDir finds and loads the manifest inside a plugin directory
func LoadDir(dir string) (*Manifest, error) {
	path := Find(dir)
	if path == "" {
		return nil, fmt.Errorf("no manifest found in %s (looked for %s)",
			dir, strings.Join(ManifestFilenames, ", "))
	}
	return Load(path)
}

func (m *Manifest) applyDefaults() {
	if m.SchemaVersion == "" {
		m.SchemaVersion = "1.0"
	}
	if m.Plugin.License == "" {
		m.Plugin.License = "MIT"
	}
	if m.Plugin.RiskLevel == "" {
		m.Plugin.RiskLevel = RiskMedium
	}
}

// Validate checks the manifest against its grammar. All violations are
// collected into a single *Error.
func (m *Manifest) Validate() error {
	var errs []string

	if m.Plugin.Name == "" {
		errs = append(errs, "plugin.name is required")
	} else if !nameRegex.MatchString(m.Plugin.Name) {
		errs = append(errs, fmt.Sprintf("plugin.name %q must be lowercase alphanumeric with hyphens, starting with a letter", m.Plugin.Name))
	}

	if m.Plugin.Version == "" {
		errs = append(errs, "plugin.version is required")
	} else if !semverRegex.MatchString(m.Plugin.Version) {
		errs = append(errs, fmt.Sprintf("plugin.version %q must follow semantic versioning", m.Plugin.Version))
	}

	if m.Plugin.Description == "" {
		errs = append(errs, "plugin.description is required")
	}
	if m.Plugin.Author == "" {
		errs = append(errs, "plugin.author is required")
	}

	switch m.Plugin.RiskLevel {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
	default:
		errs = append(errs, fmt.Sprintf("plugin.risk_level %q is not one of low, medium, high, critical", m.Plugin.RiskLevel))
	}

	if len(m.Capabilities) == 0 {
		errs = append(errs, "at least one capability is required")
	}
	for i := range m.Capabilities {
		errs = append(errs, m.Capabilities[i].validate()...)
	}

	errs = append(errs, m.Execution.validate()...)

	if len(errs) > 0 {
		return &Error{Plugin: m.Plugin.Name, Errors: errs}
	}
	return nil
}

func (c *CapabilitySpec) validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "capability name is required")
		return errs
	}
	if c.Description == "" {
		errs = append(errs, fmt.Sprintf("capability %q: description is required", c.Name))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("capability %q: timeout must not be negative", c.Name))
	}
	for i := range c.Parameters {
		p := &c.Parameters[i]
		if p.Name == "" {
			errs = append(errs, fmt.Sprintf("capability %q: parameter name is required", c.Name))
			continue
		}
		if !p.Type.IsValid() {
			errs = append(errs, fmt.Sprintf("capability %q: parameter %q has invalid type %q", c.Name, p.Name, p.Type))
		}
		if p.ItemsType != "" && !p.ItemsType.IsValid() {
			errs = append(errs, fmt.Sprintf("capability %q: parameter %q has invalid items_type %q", c.Name, p.Name, p.ItemsType))
		}
	}
	return errs
}

func (e *ExecutionSpec) validate() []string {
	switch e.Type {
	case ExecutionNative, ExecutionProcess, ExecutionContainer, ExecutionHTTP:
	case "":
		return []string{"execution.type is required"}
	default:
		return []string{fmt.Sprintf("execution.type %q is not one of native, process, container, http", e.Type)}
	}
	if e.Backend() == nil {
		return []string{fmt.Sprintf("missing %q configuration for execution type %q", e.Type, e.Type)}
	}
	return nil
}
