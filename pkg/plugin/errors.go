package plugin

import (
	"fmt"
	"strings"

	"github.com/hearth-ai/hearth/pkg/manifest"
)

// ManifestError aggregates manifest grammar violations. It lives in the
// manifest package so that package stays dependency-free; the alias keeps the
// whole error taxonomy addressable from here.
type ManifestError = manifest.Error

// NotFoundError reports a missing plugin, capability or manifest
type NotFoundError struct {
	Kind     string // "plugin", "capability" or "manifest"
	Name     string
	Searched []string
}

func (e *NotFoundError) Error() string {
	if len(e.Searched) > 0 {
		return fmt.Sprintf("%s %q not found (searched: %s)", e.Kind, e.Name, strings.Join(e.Searched, ", "))
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// Code returns the machine-readable error code
func (e *NotFoundError) Code() string { return "NOT_FOUND" }

// LoadError reports a failure to construct or initialize a plugin
type LoadError struct {
	Plugin string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to load plugin %q: %s: %v", e.Plugin, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to load plugin %q: %s", e.Plugin, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Code returns the machine-readable error code
func (e *LoadError) Code() string { return "LOAD_FAILED" }

// IncompatibleDep describes one dependency whose installed version does not
// satisfy the declared constraint
type IncompatibleDep struct {
	Name       string
	Constraint string
	Installed  string
}

func (d IncompatibleDep) String() string {
	return fmt.Sprintf("%s (requires %s, installed %s)", d.Name, d.Constraint, d.Installed)
}

// DependencyError aggregates every unsatisfied dependency of a plugin
type DependencyError struct {
	Plugin       string
	Missing      []string
	Incompatible []IncompatibleDep
}

func (e *DependencyError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Incompatible) > 0 {
		descs := make([]string, len(e.Incompatible))
		for i, d := range e.Incompatible {
			descs[i] = d.String()
		}
		parts = append(parts, fmt.Sprintf("incompatible: %s", strings.Join(descs, ", ")))
	}
	return fmt.Sprintf("plugin %q has unsatisfied dependencies: %s", e.Plugin, strings.Join(parts, "; "))
}

// Code returns the machine-readable error code
func (e *DependencyError) Code() string { return "DEPENDENCY_FAILED" }

// ValidationError aggregates every parameter violation of one invocation
type ValidationError struct {
	Plugin     string
	Capability string
	Errors     []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameters for %s_%s: %s", e.Plugin, e.Capability, strings.Join(e.Errors, "; "))
}

// Code returns the machine-readable error code
func (e *ValidationError) Code() string { return "VALIDATION_FAILED" }

// ExecutionError reports a backend failure during execution
type ExecutionError struct {
	Plugin     string
	Capability string
	Reason     string
	ExitCode   int
	Stdout     string
	Stderr     string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution of %s_%s failed: %s", e.Plugin, e.Capability, e.Reason)
}

// Code returns the machine-readable error code
func (e *ExecutionError) Code() string { return "EXECUTION_FAILED" }

// TimeoutError reports that an in-process execution exceeded its limit
type TimeoutError struct {
	Plugin     string
	Capability string
	Seconds    float64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution of %s_%s timed out after %gs", e.Plugin, e.Capability, e.Seconds)
}

// Code returns the machine-readable error code
func (e *TimeoutError) Code() string { return "TIMEOUT" }

// PolicyViolationError reports a policy-engine denial
type PolicyViolationError struct {
	Plugin       string
	Capability   string
	Reason       string
	MatchedRules []string
	RiskTier     string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("policy denied %s_%s: %s", e.Plugin, e.Capability, e.Reason)
}

// Code returns the machine-readable error code
func (e *PolicyViolationError) Code() string { return "POLICY_VIOLATION" }

// ConfigError reports a missing or malformed plugin configuration value
type ConfigError struct {
	Plugin string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("plugin %q configuration field %q: %s", e.Plugin, e.Field, e.Reason)
}

// Code returns the machine-readable error code
func (e *ConfigError) Code() string { return "CONFIG_INVALID" }

// PermissionError reports an action blocked by the permission sandbox
type PermissionError struct {
	Plugin   string
	Action   string
	Required string
	Target   string
}

func (e *PermissionError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("plugin %q denied %s on %s (requires permission %q)", e.Plugin, e.Action, e.Target, e.Required)
	}
	return fmt.Sprintf("plugin %q denied %s (requires permission %q)", e.Plugin, e.Action, e.Required)
}

// Code returns the machine-readable error code
func (e *PermissionError) Code() string { return "PERMISSION_DENIED" }
