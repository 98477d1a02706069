package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-ai/hearth/pkg/manifest"
)

func capsV1() []manifest.CapabilitySpec {
	return []manifest.CapabilitySpec{
		{
			Name: "send_email",
			Parameters: []manifest.ParameterSpec{
				{Name: "to", Type: manifest.TypeString, Required: true},
				{Name: "priority", Type: manifest.TypeString, Choices: []string{"low", "normal", "high"}},
				{Name: "retries", Type: manifest.TypeInteger},
			},
		},
		{Name: "list_drafts"},
	}
}

func TestDetectBreakingChanges(t *testing.T) {
	tr := NewTracker()
	tr.Register("mailer", SnapshotCapabilities("1.0.0", capsV1()))

	v2 := []manifest.CapabilitySpec{
		{
			Name: "send_email",
			Parameters: []manifest.ParameterSpec{
				// "to" removed (was required), priority narrowed, retries now
				// required and a string.
				{Name: "priority", Type: manifest.TypeString, Choices: []string{"low", "high"}},
				{Name: "retries", Type: manifest.TypeString, Required: true},
			},
		},
		// list_drafts removed
	}
	tr.Register("mailer", SnapshotCapabilities("2.0.0", v2))

	changes, err := tr.DetectBreakingChanges("mailer", "1.0.0", "2.0.0")
	require.NoError(t, err)

	joined := ""
	for _, c := range changes {
		joined += c + "\n"
	}
	assert.Contains(t, joined, `capability "list_drafts" removed`)
	assert.Contains(t, joined, `required parameter "to" removed`)
	assert.Contains(t, joined, `parameter "retries" changed type from integer to string`)
	assert.Contains(t, joined, `parameter "retries" became required`)
	assert.Contains(t, joined, `parameter "priority" no longer accepts [normal]`)
}

func TestDetectBreakingChanges_AdditiveIsClean(t *testing.T) {
	tr := NewTracker()
	tr.Register("mailer", SnapshotCapabilities("1.0.0", capsV1()))

	v11 := append(capsV1(), manifest.CapabilitySpec{Name: "schedule_send"})
	v11[0].Parameters = append(v11[0].Parameters,
		manifest.ParameterSpec{Name: "cc", Type: manifest.TypeString})
	tr.Register("mailer", SnapshotCapabilities("1.1.0", v11))

	changes, err := tr.DetectBreakingChanges("mailer", "1.0.0", "1.1.0")
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestDetectBreakingChanges_UnknownVersion(t *testing.T) {
	tr := NewTracker()
	tr.Register("mailer", SnapshotCapabilities("1.0.0", capsV1()))

	_, err := tr.DetectBreakingChanges("mailer", "1.0.0", "9.9.9")
	assert.Error(t, err)

	_, err = tr.DetectBreakingChanges("ghost", "1.0.0", "1.0.0")
	assert.Error(t, err)
}

func TestSnapshotLookup(t *testing.T) {
	tr := NewTracker()
	tr.Register("mailer", SnapshotCapabilities("1.0.0", capsV1()))

	snap, ok := tr.Snapshot("mailer", "1.0.0")
	require.True(t, ok)
	assert.Contains(t, snap.Capabilities, "send_email")

	_, ok = tr.Snapshot("mailer", "2.0.0")
	assert.False(t, ok)
}
