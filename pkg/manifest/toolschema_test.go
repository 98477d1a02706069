package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullName(t *testing.T) {
	assert.Equal(t, "mailer_send_email", FullName("mailer", "send_email"))
}

func TestParameterSpec_JSONSchema(t *testing.T) {
	tests := []struct {
		name  string
		param ParameterSpec
		want  map[string]any
	}{
		{
			"string with choices",
			ParameterSpec{Name: "priority", Type: TypeString, Choices: []string{"low", "high"}},
			map[string]any{"type": "string", "description": "priority", "enum": []string{"low", "high"}},
		},
		{
			"integer with default",
			ParameterSpec{Name: "count", Type: TypeInteger, Description: "How many", Default: 3},
			map[string]any{"type": "integer", "description": "How many", "default": 3},
		},
		{
			"array with items",
			ParameterSpec{Name: "tags", Type: TypeArray, ItemsType: TypeString},
			map[string]any{"type": "array", "description": "tags", "items": map[string]any{"type": "string"}},
		},
		{
			"object with properties",
			ParameterSpec{Name: "opts", Type: TypeObject, Properties: map[string]map[string]any{"a": {"type": "string"}}},
			map[string]any{"type": "object", "description": "opts", "properties": map[string]map[string]any{"a": {"type": "string"}}},
		},
		{
			"boolean",
			ParameterSpec{Name: "dry_run", Type: TypeBoolean},
			map[string]any{"type": "boolean", "description": "dry_run"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.param.JSONSchema())
		})
	}
}

func TestCapability_ToolSchema(t *testing.T) {
	cap := CapabilitySpec{
		Name:        "send_email",
		Description: "Send an email message",
		Parameters: []ParameterSpec{
			{Name: "to", Type: TypeString, Required: true},
			{Name: "subject", Type: TypeString, Required: true},
			{Name: "priority", Type: TypeString},
		},
	}

	ts := cap.ToolSchema("mailer")
	assert.Equal(t, "mailer_send_email", ts.Name)
	assert.Equal(t, "Send an email message", ts.Description)

	// Only required parameters appear in the required array.
	assert.Equal(t, []string{"to", "subject"}, ts.InputSchema["required"])

	props, ok := ts.InputSchema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, props, 3)
}

func TestCapability_ToolSchema_NoRequired(t *testing.T) {
	cap := CapabilitySpec{
		Name:        "status",
		Description: "Report status",
		Parameters:  []ParameterSpec{{Name: "verbose", Type: TypeBoolean}},
	}

	ts := cap.ToolSchema("sys")
	_, present := ts.InputSchema["required"]
	assert.False(t, present, "required array must be omitted when empty")
}

func TestManifest_ToolSchemas(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	schemas := m.ToolSchemas()
	require.Len(t, schemas, 1)
	assert.Equal(t, "mailer_send_email", schemas[0].Name)
}
