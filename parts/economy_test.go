package parts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpgradeCostMatchesFormula(t *testing.T) {
	catalog := DefaultCatalog()

	// floor(100 * 1.5^1) = 150
	assert.Equal(t, 150, catalog.UpgradeCost(CPU, 1))
	// floor(100 * 1.5^2) = 225
	assert.Equal(t, 225, catalog.UpgradeCost(CPU, 2))
	// floor(250 * 1.6^1) = 400
	assert.Equal(t, 400, catalog.UpgradeCost(GPU, 1))
}

func TestCostAndHashRateStrictlyIncrease(t *testing.T) {
	catalog := DefaultCatalog()

	for id, cfg := range catalog.Parts {
		for level := 1; level < cfg.MaxLevel; level++ {
			assert.Greater(t, catalog.UpgradeCost(id, level+1), catalog.UpgradeCost(id, level),
				"upgrade cost for %s must increase at level %d", id, level)
			assert.Greater(t, catalog.HashRate(id, level+1), catalog.HashRate(id, level),
				"hash rate for %s must increase at level %d", id, level)
		}
	}
}

func TestTotalHashRateSumsEntries(t *testing.T) {
	catalog := DefaultCatalog()
	inv := Inventory{CPU: 3, GPU: 2}

	expected := catalog.HashRate(CPU, 3) + catalog.HashRate(GPU, 2)
	assert.InDelta(t, expected, catalog.TotalHashRate(inv), 1e-9)
}

func TestEarningsPerSecondAppliesMultiplier(t *testing.T) {
	catalog := DefaultCatalog()
	inv := NewInventory(catalog)

	base := catalog.TotalHashRate(inv)
	assert.InDelta(t, base, catalog.EarningsPerSecond(inv), 1e-9)

	catalog.EarningsMultiplier = 2.5
	assert.InDelta(t, base*2.5, catalog.EarningsPerSecond(inv), 1e-9)
}

func TestEfficiencyIsHashRatePerCoin(t *testing.T) {
	catalog := DefaultCatalog()

	cost := catalog.UpgradeCost(CPU, 1)
	require.Positive(t, cost)
	assert.InDelta(t, catalog.HashRate(CPU, 1)/float64(cost), catalog.Efficiency(CPU, 1), 1e-9)
}

func TestLookupUnknownPartPanics(t *testing.T) {
	catalog := DefaultCatalog()
	assert.Panics(t, func() {
		catalog.Lookup(ID("floppy"))
	})
}

func TestNewInventoryStartsAtLevelOne(t *testing.T) {
	catalog := DefaultCatalog()
	inv := NewInventory(catalog)

	require.Len(t, inv, len(catalog.Parts))
	for id, level := range inv {
		assert.Equal(t, 1, level, "part %s", id)
	}
}
