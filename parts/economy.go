package parts

import "math"

// UpgradeCost returns the price of moving a part from currentLevel to the
// next level: floor(basePrice * priceMultiplier^currentLevel).
func (c Catalog) UpgradeCost(id ID, currentLevel int) int {
	cfg := c.Lookup(id)
	return int(math.Floor(cfg.BasePrice * math.Pow(cfg.PriceMultiplier, float64(currentLevel))))
}

// HashRate returns the production rate of one part at the given level
// (level >= 1): baseHashRate * hashRateMultiplier^(level-1).
func (c Catalog) HashRate(id ID, level int) float64 {
	cfg := c.Lookup(id)
	return cfg.BaseHashRate * math.Pow(cfg.HashRateMultiplier, float64(level-1))
}

// TotalHashRate sums the hash rate of every part in the inventory.
func (c Catalog) TotalHashRate(inv Inventory) float64 {
	total := 0.0
	for id, level := range inv {
		total += c.HashRate(id, level)
	}
	return total
}

// EarningsPerSecond converts the inventory's total hash rate into currency
// earned per second of mining.
func (c Catalog) EarningsPerSecond(inv Inventory) float64 {
	return c.TotalHashRate(inv) * c.EarningsMultiplier
}

// Efficiency is hash rate gained per coin spent upgrading from the given
// level. Display ranking only; the simulation never consumes it.
func (c Catalog) Efficiency(id ID, level int) float64 {
	cost := c.UpgradeCost(id, level)
	if cost <= 0 {
		return 0
	}
	return c.HashRate(id, level) / float64(cost)
}
