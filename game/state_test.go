package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashrig/hashrig/parts"
)

func sampleState(t *testing.T) State {
	t.Helper()
	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return State{
		Balance:         1234.5,
		Parts:           parts.Inventory{parts.CPU: 3, parts.GPU: 2, parts.Motherboard: 1, parts.PSU: 1, parts.RAM: 4},
		TotalMined:      9001.25,
		IsMining:        true,
		MiningStartTime: &started,
		LastUpdated:     started.Add(42 * time.Minute),
		Version:         7,
	}
}

func TestStateJSONRoundTrip(t *testing.T) {
	original := sampleState(t)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded State
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.Balance, decoded.Balance)
	assert.Equal(t, original.Parts, decoded.Parts)
	assert.Equal(t, original.TotalMined, decoded.TotalMined)
	assert.Equal(t, original.IsMining, decoded.IsMining)
	assert.Equal(t, original.Version, decoded.Version)
	require.NotNil(t, decoded.MiningStartTime)
	assert.True(t, original.MiningStartTime.Equal(*decoded.MiningStartTime))
	assert.True(t, original.LastUpdated.Equal(decoded.LastUpdated))
}

func TestCloneDoesNotAlias(t *testing.T) {
	original := sampleState(t)
	copied := original.Clone()

	copied.Parts[parts.CPU] = 9
	*copied.MiningStartTime = copied.MiningStartTime.Add(time.Hour)

	assert.Equal(t, 3, original.Parts[parts.CPU])
	assert.True(t, original.MiningStartTime.Equal(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)))
}

func TestValidateAcceptsGoodState(t *testing.T) {
	catalog := parts.DefaultCatalog()
	assert.NoError(t, Validate(catalog, sampleState(t)))
}

func TestValidateRejections(t *testing.T) {
	catalog := parts.DefaultCatalog()

	cases := []struct {
		name   string
		mutate func(*State)
	}{
		{"negative balance", func(s *State) { s.Balance = -1 }},
		{"negative totalMined", func(s *State) { s.TotalMined = -0.5 }},
		{"negative version", func(s *State) { s.Version = -1 }},
		{"empty inventory", func(s *State) { s.Parts = parts.Inventory{} }},
		{"unknown part", func(s *State) { s.Parts["floppy"] = 1 }},
		{"level zero", func(s *State) { s.Parts[parts.CPU] = 0 }},
		{"level above max", func(s *State) { s.Parts[parts.Motherboard] = 6 }},
		{"mining without start time", func(s *State) { s.MiningStartTime = nil }},
		{"zero lastUpdated", func(s *State) { s.LastUpdated = time.Time{} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := sampleState(t)
			tc.mutate(&state)
			assert.Error(t, Validate(catalog, state))
		})
	}
}
