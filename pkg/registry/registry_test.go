package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-ai/hearth/pkg/manifest"
)

func testManifest(name string, caps ...manifest.CapabilitySpec) *manifest.Manifest {
	return &manifest.Manifest{
		Plugin:       manifest.Metadata{Name: name, Version: "1.0.0", Description: "d", Author: "a"},
		Capabilities: caps,
	}
}

func TestRegisterAndLookup(t *testing.T) {
	r := New(nil)
	r.Register(testManifest("mailer",
		manifest.CapabilitySpec{Name: "send_email", Description: "Send an email"},
		manifest.CapabilitySpec{Name: "list_drafts", Description: "List drafts"},
	), nil)

	e, err := r.Capability("mailer_send_email")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, Key{Plugin: "mailer", Capability: "send_email"}, e.Key)
	assert.Equal(t, "mailer_send_email", e.FullName)

	e, ok := r.CapabilityByKey(Key{Plugin: "mailer", Capability: "list_drafts"})
	require.True(t, ok)
	assert.Equal(t, "mailer_list_drafts", e.FullName)

	assert.Equal(t, []string{"mailer"}, r.ListPlugins())
}

func TestParseFullName_RoundTrip(t *testing.T) {
	r := New(nil)
	r.Register(testManifest("my_plugin",
		manifest.CapabilitySpec{Name: "do_action", Description: "d"},
	), nil)

	key := Key{Plugin: "my_plugin", Capability: "do_action"}
	parsed, err := r.ParseFullName(key.FullName())
	require.NoError(t, err)
	assert.Equal(t, key, parsed)
}

func TestParseFullName_PrefersFirstSplit(t *testing.T) {
	r := New(nil)
	r.Register(testManifest("a",
		manifest.CapabilitySpec{Name: "b_c", Description: "d"},
	), nil)
	r.Register(testManifest("a_b",
		manifest.CapabilitySpec{Name: "c", Description: "d"},
	), nil)

	parsed, err := r.ParseFullName("a_b_c")
	require.NoError(t, err)
	assert.Equal(t, Key{Plugin: "a", Capability: "b_c"}, parsed)
}

func TestParseFullName_FallbackPrefersShortestCapabilitySuffix(t *testing.T) {
	r := New(nil)
	r.Register(testManifest("alpha_beta",
		manifest.CapabilitySpec{Name: "gamma_delta", Description: "d"},
	), nil)
	r.Register(testManifest("alpha_beta_gamma",
		manifest.CapabilitySpec{Name: "delta", Description: "d"},
	), nil)

	// First split (alpha / beta_gamma_delta) misses; the fallback walks
	// split points from the last underscore backward, so the longest
	// plugin prefix wins.
	parsed, err := r.ParseFullName("alpha_beta_gamma_delta")
	require.NoError(t, err)
	assert.Equal(t, Key{Plugin: "alpha_beta_gamma", Capability: "delta"}, parsed)

	// The shorter registration stays reachable once the longer one is gone
	r.Unregister("alpha_beta_gamma")
	parsed, err = r.ParseFullName("alpha_beta_gamma_delta")
	require.NoError(t, err)
	assert.Equal(t, Key{Plugin: "alpha_beta", Capability: "gamma_delta"}, parsed)
}

func TestParseFullName_NotFound(t *testing.T) {
	r := New(nil)
	_, err := r.ParseFullName("ghost_capability")
	assert.Error(t, err)

	_, err = r.ParseFullName("nounderscore")
	assert.Error(t, err)
}

func TestRegister_SilentlyReplaces(t *testing.T) {
	r := New(nil)
	r.Register(testManifest("tool",
		manifest.CapabilitySpec{Name: "old_cap", Description: "d"},
	), nil)
	r.Register(testManifest("tool",
		manifest.CapabilitySpec{Name: "new_cap", Description: "d"},
	), nil)

	_, err := r.Capability("tool_old_cap")
	assert.Error(t, err)
	e, err := r.Capability("tool_new_cap")
	require.NoError(t, err)
	assert.NotNil(t, e)
}

func TestUnregister(t *testing.T) {
	r := New(nil)
	r.Register(testManifest("tool",
		manifest.CapabilitySpec{Name: "run", Description: "d"},
	), nil)
	r.Unregister("tool")

	assert.Empty(t, r.ListPlugins())
	assert.Empty(t, r.ListCapabilities(""))
}

func TestListCapabilities_FilterAndOrder(t *testing.T) {
	r := New(nil)
	r.Register(testManifest("zeta",
		manifest.CapabilitySpec{Name: "run", Description: "d"},
	), nil)
	r.Register(testManifest("alpha",
		manifest.CapabilitySpec{Name: "run", Description: "d"},
		manifest.CapabilitySpec{Name: "check", Description: "d"},
	), nil)

	all := r.ListCapabilities("")
	require.Len(t, all, 3)
	assert.Equal(t, "alpha_check", all[0].FullName)
	assert.Equal(t, "alpha_run", all[1].FullName)
	assert.Equal(t, "zeta_run", all[2].FullName)

	alpha := r.ListCapabilities("alpha")
	assert.Len(t, alpha, 2)
}

func TestRequiresConfirmation(t *testing.T) {
	r := New(nil)
	r.Register(testManifest("files",
		manifest.CapabilitySpec{Name: "delete_file", Description: "d", ConfirmationRequired: true},
		manifest.CapabilitySpec{Name: "read_file", Description: "d"},
	), nil)

	assert.True(t, r.RequiresConfirmation("files_delete_file"))
	assert.False(t, r.RequiresConfirmation("files_read_file"))
	assert.False(t, r.RequiresConfirmation("files_missing"))
}

func TestToolSchemas_CacheInvalidation(t *testing.T) {
	r := New(nil)
	r.Register(testManifest("tool",
		manifest.CapabilitySpec{Name: "run", Description: "first"},
	), nil)

	schemas := r.ToolSchemas()
	require.Len(t, schemas, 1)
	assert.Equal(t, "first", schemas[0].Description)

	// Re-registration must drop the cached rendering
	r.Register(testManifest("tool",
		manifest.CapabilitySpec{Name: "run", Description: "second"},
	), nil)

	schemas = r.ToolSchemas()
	require.Len(t, schemas, 1)
	assert.Equal(t, "second", schemas[0].Description)
}

func TestPluginSchemas(t *testing.T) {
	r := New(nil)
	r.Register(testManifest("a",
		manifest.CapabilitySpec{Name: "one", Description: "d"},
	), nil)
	r.Register(testManifest("b",
		manifest.CapabilitySpec{Name: "two", Description: "d"},
	), nil)

	schemas := r.PluginSchemas("a")
	require.Len(t, schemas, 1)
	assert.Equal(t, "a_one", schemas[0].Name)
}

func TestSearch_Scoring(t *testing.T) {
	r := New(nil)
	r.Register(testManifest("mailer",
		manifest.CapabilitySpec{Name: "send_email", Description: "Send an email message"},
	), nil)
	r.Register(testManifest("email-archiver",
		manifest.CapabilitySpec{Name: "archive", Description: "Archive old messages"},
	), nil)
	r.Register(testManifest("notes",
		manifest.CapabilitySpec{Name: "create_note", Description: "Create a note, optionally email it"},
	), nil)

	results := r.Search("email", 0)
	require.Len(t, results, 3)

	// Capability-name match (10+5+3) beats plugin-name match (2) and
	// description-only match (3).
	assert.Equal(t, "mailer_send_email", results[0].FullName)

	limited := r.Search("email", 1)
	require.Len(t, limited, 1)
	assert.Equal(t, "mailer_send_email", limited[0].FullName)
}

func TestSearch_EmptyQuery(t *testing.T) {
	r := New(nil)
	r.Register(testManifest("tool",
		manifest.CapabilitySpec{Name: "run", Description: "d"},
	), nil)
	assert.Empty(t, r.Search("", 10))
	assert.Empty(t, r.Search("   ", 10))
}
