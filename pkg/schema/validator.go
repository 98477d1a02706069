package schema

import (
	"fmt"

	"github.com/hearth-ai/hearth/pkg/manifest"
	"github.com/hearth-ai/hearth/pkg/plugin"
)

// Validator checks invocation parameters against a capability's declared
// schema. In strict mode parameters not declared by the capability are
// rejected; otherwise they pass through untouched.
type Validator struct {
	Strict bool
}

// New returns a validator
func New(strict bool) *Validator {
	return &Validator{Strict: strict}
}

// Validate checks params against the capability spec and returns a copy with
// defaults filled in for absent optional parameters. All violations are
// collected; a single call reports every problem at once.
func (v *Validator) Validate(pluginName string, cap *manifest.CapabilitySpec, params map[string]any) (map[string]any, error) {
	var errs []string
	out := make(map[string]any, len(params))
	for k, val := range params {
		out[k] = val
	}

	for i := range cap.Parameters {
		p := &cap.Parameters[i]
		val, present := out[p.Name]
		if !present {
			if p.Required {
				errs = append(errs, fmt.Sprintf("missing required parameter %q", p.Name))
			} else if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}
		errs = append(errs, checkValue(p, val)...)
	}

	if v.Strict {
		for name := range params {
			if cap.Parameter(name) == nil {
				errs = append(errs, fmt.Sprintf("unknown parameter %q", name))
			}
		}
	}

	if len(errs) > 0 {
		return nil, &plugin.ValidationError{
			Plugin:     pluginName,
			Capability: cap.Name,
			Errors:     errs,
		}
	}
	return out, nil
}

func checkValue(p *manifest.ParameterSpec, val any) []string {
	var errs []string

	switch p.Type {
	case manifest.TypeString:
		s, ok := val.(string)
		if !ok {
			return []string{typeError(p.Name, "string", val)}
		}
		if len(p.Choices) > 0 && !contains(p.Choices, s) {
			errs = append(errs, fmt.Sprintf("parameter %q must be one of %v, got %q", p.Name, p.Choices, s))
		}

	case manifest.TypeInteger:
		if !isInteger(val) {
			return []string{typeError(p.Name, "integer", val)}
		}

	case manifest.TypeNumber:
		if !isNumber(val) {
			return []string{typeError(p.Name, "number", val)}
		}

	case manifest.TypeBoolean:
		if _, ok := val.(bool); !ok {
			return []string{typeError(p.Name, "boolean", val)}
		}

	case manifest.TypeArray:
		items, ok := val.([]any)
		if !ok {
			return []string{typeError(p.Name, "array", val)}
		}
		if p.ItemsType != "" {
			for i, item := range items {
				if !matchesType(p.ItemsType, item) {
					errs = append(errs, fmt.Sprintf("parameter %q item %d must be %s", p.Name, i, p.ItemsType))
				}
			}
		}

	case manifest.TypeObject:
		if _, ok := val.(map[string]any); !ok {
			return []string{typeError(p.Name, "object", val)}
		}
	}

	return errs
}

func matchesType(t manifest.ParameterType, val any) bool {
	switch t {
	case manifest.TypeString:
		_, ok := val.(string)
		return ok
	case manifest.TypeInteger:
		return isInteger(val)
	case manifest.TypeNumber:
		return isNumber(val)
	case manifest.TypeBoolean:
		_, ok := val.(bool)
		return ok
	case manifest.TypeArray:
		_, ok := val.([]any)
		return ok
	case manifest.TypeObject:
		_, ok := val.(map[string]any)
		return ok
	}
	return false
}

// isInteger accepts Go integer kinds and the float64 that JSON decoding
// produces, as long as the float is integral. Booleans never count.
func isInteger(val any) bool {
	switch n := val.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == float64(int64(n))
	case float32:
		return n == float32(int64(n))
	}
	return false
}

// isNumber accepts any numeric kind but explicitly rejects bool
func isNumber(val any) bool {
	switch val.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func typeError(name, want string, got any) string {
	return fmt.Sprintf("parameter %q must be %s, got %T", name, want, got)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
