package resolved_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/otel-weaver/resolved"
	"github.com/f5/otel-weaver/telemetryschema"
)

func TestVersionsMarshalJSONAscendingSemverOrder(t *testing.T) {
	v := resolved.Versions{
		"1.10.0": telemetryschema.VersionEntry{},
		"1.2.0":  telemetryschema.VersionEntry{},
		"1.1.0":  telemetryschema.VersionEntry{},
	}
	raw, err := json.Marshal(v)
	require.NoError(t, err)

	s := string(raw)
	require.Contains(t, s, `"1.1.0"`)
	require.Contains(t, s, `"1.2.0"`)
	require.Contains(t, s, `"1.10.0"`)
	assert.Less(t, strings.Index(s, `"1.1.0"`), strings.Index(s, `"1.2.0"`))
	assert.Less(t, strings.Index(s, `"1.2.0"`), strings.Index(s, `"1.10.0"`))
}

func TestVersionEntryChangesWireShape(t *testing.T) {
	entry := telemetryschema.VersionEntry{
		Metrics: &telemetryschema.VersionChangeSet{
			Changes: []telemetryschema.VersionChange{
				{Kind: telemetryschema.ChangeRenameMetrics, ApplyToMetrics: []string{"http.server.duration"}},
			},
		},
	}
	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	metrics, ok := decoded["metrics"].(map[string]any)
	require.True(t, ok, "metrics must be an object wrapping `changes`, got: %s", raw)
	changes, ok := metrics["changes"].([]any)
	require.True(t, ok, "metrics.changes must be an array, got: %s", raw)
	require.Len(t, changes, 1)

	change, ok := changes[0].(map[string]any)
	require.True(t, ok)
	renameMetrics, ok := change["rename_metrics"].(map[string]any)
	require.True(t, ok, "change must be keyed by its kind, got: %s", raw)
	names, ok := renameMetrics["apply_to_metrics"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"http.server.duration"}, names)

	var roundtripped telemetryschema.VersionEntry
	require.NoError(t, json.Unmarshal(raw, &roundtripped))
	require.NotNil(t, roundtripped.Metrics)
	require.Len(t, roundtripped.Metrics.Changes, 1)
	assert.Equal(t, telemetryschema.ChangeRenameMetrics, roundtripped.Metrics.Changes[0].Kind)
}
