package rpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestConfigFromParams(t *testing.T) {
	params := ConfigureParams{
		NodeID:    "n1",
		Callable:  "PrintString",
		OwnerHint: "SystemLibrary",
		Scope:     "external",
		PinDefaults: map[string]json.RawMessage{
			"InString": json.RawMessage(`"Hi"`),
			"Duration": json.RawMessage(`1.5`),
			"Broken":   json.RawMessage(`{not json`),
		},
	}

	cfg, badPins := configFromParams(params)

	assert.Equal(t, "PrintString", cfg.Callable)
	assert.Equal(t, "SystemLibrary", cfg.OwnerHint)
	assert.Equal(t, "external", cfg.Scope)

	// Decodable pins survive a sibling's decode failure.
	require.Len(t, cfg.PinDefaults, 2)
	assert.True(t, cty.StringVal("Hi").RawEquals(cfg.PinDefaults["InString"]))
	assert.True(t, cty.NumberFloatVal(1.5).RawEquals(cfg.PinDefaults["Duration"]))

	require.Len(t, badPins, 1)
	assert.Contains(t, badPins, "Broken")
}

func TestConfigFromParams_NoPins(t *testing.T) {
	cfg, badPins := configFromParams(ConfigureParams{NodeID: "n1", CastTarget: "Actor"})
	assert.Equal(t, "Actor", cfg.CastTarget)
	assert.Nil(t, cfg.PinDefaults)
	assert.Empty(t, badPins)
}

func TestParamsDecoding(t *testing.T) {
	var create CreateParams
	require.NoError(t, json.Unmarshal(
		[]byte(`{"key": "SystemLibrary::PrintString", "position": [10, -20]}`), &create))
	assert.Equal(t, "SystemLibrary::PrintString", create.Key)
	assert.Equal(t, [2]float64{10, -20}, create.Position)

	var discover DiscoverParams
	require.NoError(t, json.Unmarshal(
		[]byte(`{"search": "print", "owning_type": "SystemLibrary", "max_results": 5}`), &discover))
	assert.Equal(t, "print", discover.Search)
	assert.Equal(t, "SystemLibrary", discover.OwningType)
	assert.Equal(t, 5, discover.MaxResults)

	var configure ConfigureParams
	require.NoError(t, json.Unmarshal(
		[]byte(`{"node_id": "abc", "variable": "Health", "not_local": true, "pin_defaults": {"Health": "75"}}`), &configure))
	assert.Equal(t, "abc", configure.NodeID)
	assert.True(t, configure.NotLocal)
	assert.JSONEq(t, `"75"`, string(configure.PinDefaults["Health"]))
}
