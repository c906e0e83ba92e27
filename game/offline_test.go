package game

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashrig/hashrig/parts"
)

func TestOfflineEarningsClampsToCap(t *testing.T) {
	catalog := parts.DefaultCatalog()
	last := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	state := State{
		Parts:       parts.NewInventory(catalog),
		LastUpdated: last,
	}

	// 100000 seconds away, well past the 24h cap.
	result := OfflineEarnings(catalog, state, last.Add(100000*time.Second))

	assert.Equal(t, int64(MaxOfflineSeconds), result.TimeOffline)
	expected := math.Floor(catalog.EarningsPerSecond(state.Parts) * float64(MaxOfflineSeconds) * OfflineEfficiency)
	assert.Equal(t, expected, result.Earnings)
}

func TestOfflineEarningsShortAbsence(t *testing.T) {
	catalog := parts.DefaultCatalog()
	last := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	state := State{
		Parts:       parts.NewInventory(catalog),
		LastUpdated: last,
	}

	result := OfflineEarnings(catalog, state, last.Add(90*time.Second+500*time.Millisecond))

	assert.Equal(t, int64(90), result.TimeOffline, "partial seconds are floored")
	expected := math.Floor(catalog.EarningsPerSecond(state.Parts) * 90 * OfflineEfficiency)
	assert.Equal(t, expected, result.Earnings)
}

func TestOfflineEarningsNeverNegative(t *testing.T) {
	catalog := parts.DefaultCatalog()
	last := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	state := State{
		Parts:       parts.NewInventory(catalog),
		LastUpdated: last,
	}

	// Clock skew: "now" before lastUpdated.
	result := OfflineEarnings(catalog, state, last.Add(-time.Hour))

	assert.Zero(t, result.TimeOffline)
	assert.Zero(t, result.Earnings)
}

func TestReconcilerRunsOncePerSession(t *testing.T) {
	store, clk := newTestStore()
	loaded := store.Snapshot()
	loaded.LastUpdated = clk.Current.Add(-1 * time.Hour)

	var reconciler Reconciler

	first, ran := reconciler.Run(store, loaded, clk.Current)
	require.True(t, ran)
	assert.Equal(t, int64(3600), first.TimeOffline)
	assert.Positive(t, first.Earnings)

	balanceAfter := store.Snapshot().Balance
	assert.Equal(t, first.Earnings, balanceAfter)

	// A second invocation in the same session must be a no-op.
	_, ran = reconciler.Run(store, loaded, clk.Current)
	assert.False(t, ran)
	assert.Equal(t, balanceAfter, store.Snapshot().Balance)
}
