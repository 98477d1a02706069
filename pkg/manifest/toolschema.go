package manifest

import "fmt"

// ToolSchema is the tool descriptor shape consumed by LLM tool-use hosts
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// FullName derives the globally addressable capability name
func FullName(pluginName, capabilityName string) string {
	return fmt.Sprintf("%s_%s", pluginName, capabilityName)
}

// JSONSchema renders the parameter as a JSON-Schema property
func (p *ParameterSpec) JSONSchema() map[string]any {
	desc := p.Description
	if desc == "" {
		desc = p.Name
	}
	schema := map[string]any{"description": desc}

	switch p.Type {
	case TypeString:
		schema["type"] = "string"
		if len(p.Choices) > 0 {
			schema["enum"] = p.Choices
		}
	case TypeInteger:
		schema["type"] = "integer"
	case TypeNumber:
		schema["type"] = "number"
	case TypeBoolean:
		schema["type"] = "boolean"
	case TypeArray:
		schema["type"] = "array"
		if p.ItemsType != "" {
			schema["items"] = map[string]any{"type": string(p.ItemsType)}
		}
	case TypeObject:
		schema["type"] = "object"
		if len(p.Properties) > 0 {
			schema["properties"] = p.Properties
		}
	}

	if p.Default != nil {
		schema["default"] = p.Default
	}
	return schema
}

// ToolSchema renders the capability as a tool descriptor named
// "{plugin}_{capability}". The required array lists required parameters only.
func (c *CapabilitySpec) ToolSchema(pluginName string) ToolSchema {
	properties := make(map[string]any, len(c.Parameters))
	var required []string
	for i := range c.Parameters {
		p := &c.Parameters[i]
		properties[p.Name] = p.JSONSchema()
		if p.Required {
			required = append(required, p.Name)
		}
	}

	input := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		input["required"] = required
	}

	return ToolSchema{
		Name:        FullName(pluginName, c.Name),
		Description: c.Description,
		InputSchema: input,
	}
}

// ToolSchemas renders one tool descriptor per capability
func (m *Manifest) ToolSchemas() []ToolSchema {
	out := make([]ToolSchema, 0, len(m.Capabilities))
	for i := range m.Capabilities {
		out = append(out, m.Capabilities[i].ToolSchema(m.Plugin.Name))
	}
	return out
}
