package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatHashRate(t *testing.T) {
	assert.Equal(t, "51.0 H/s", FormatHashRate(51))
	assert.Equal(t, "1.25 KH/s", FormatHashRate(1250))
	assert.Equal(t, "2.00 MH/s", FormatHashRate(2e6))
	assert.Equal(t, "3.50 GH/s", FormatHashRate(3.5e9))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "2m 5s", FormatDuration(125*time.Second))
	assert.Equal(t, "1h 0m 30s", FormatDuration(time.Hour+30*time.Second))
	assert.Equal(t, "0s", FormatDuration(-time.Second))
}

func TestMiningTime(t *testing.T) {
	started := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	now := started.Add(90 * time.Minute)

	mining := State{IsMining: true, MiningStartTime: &started}
	assert.Equal(t, 90*time.Minute, MiningTime(mining, now))

	idle := State{}
	assert.Zero(t, MiningTime(idle, now))
}
