package parts

// ID identifies one upgradeable rig part. The set of valid IDs is closed.
type ID string

const (
	CPU         ID = "cpu"
	GPU         ID = "gpu"
	Motherboard ID = "motherboard"
	PSU         ID = "psu"
	RAM         ID = "ram"
)

// All lists every valid part ID in display order.
var All = []ID{CPU, GPU, Motherboard, PSU, RAM}

// Config holds the static tuning values for one part. Immutable for the
// process lifetime once the catalog is built.
type Config struct {
	MaxLevel           int     `yaml:"max_level"`
	BaseHashRate       float64 `yaml:"base_hash_rate"`
	BasePrice          float64 `yaml:"base_price"`
	PriceMultiplier    float64 `yaml:"price_multiplier"`
	HashRateMultiplier float64 `yaml:"hash_rate_multiplier"`
}

// Inventory maps part IDs to their current level (always >= 1).
type Inventory map[ID]int

// Clone returns an independent copy of the inventory.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for id, level := range inv {
		out[id] = level
	}
	return out
}

// NewInventory returns a fresh rig with every catalog part at level 1.
func NewInventory(c Catalog) Inventory {
	inv := make(Inventory, len(c.Parts))
	for id := range c.Parts {
		inv[id] = 1
	}
	return inv
}

// Catalog is the full static part table plus global earnings tuning.
type Catalog struct {
	Parts              map[ID]Config
	EarningsMultiplier float64
}

// DefaultCatalog returns the built-in part table.
func DefaultCatalog() Catalog {
	return Catalog{
		EarningsMultiplier: 1.0,
		Parts: map[ID]Config{
			CPU:         {MaxLevel: 10, BaseHashRate: 10, BasePrice: 100, PriceMultiplier: 1.5, HashRateMultiplier: 1.4},
			GPU:         {MaxLevel: 10, BaseHashRate: 25, BasePrice: 250, PriceMultiplier: 1.6, HashRateMultiplier: 1.5},
			Motherboard: {MaxLevel: 5, BaseHashRate: 5, BasePrice: 150, PriceMultiplier: 1.8, HashRateMultiplier: 1.3},
			PSU:         {MaxLevel: 5, BaseHashRate: 3, BasePrice: 80, PriceMultiplier: 1.7, HashRateMultiplier: 1.25},
			RAM:         {MaxLevel: 8, BaseHashRate: 8, BasePrice: 120, PriceMultiplier: 1.55, HashRateMultiplier: 1.35},
		},
	}
}

// Lookup returns the config for a part. Asking for an unknown part is a
// programming error, not a runtime condition.
func (c Catalog) Lookup(id ID) Config {
	cfg, ok := c.Parts[id]
	if !ok {
		panic("parts: unknown part id " + string(id))
	}
	return cfg
}

// MaxLevel returns the configured level ceiling for a part.
func (c Catalog) MaxLevel(id ID) int {
	return c.Lookup(id).MaxLevel
}
