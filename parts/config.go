package parts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	EarningsMultiplier float64       `yaml:"earnings_multiplier"`
	Parts              map[ID]Config `yaml:"parts"`
}

// LoadCatalog reads a part table from a YAML file. Missing parts fall back
// to the built-in defaults; the file only needs to name what it overrides.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("parse part catalog %s: %w", path, err)
	}

	catalog := DefaultCatalog()
	if file.EarningsMultiplier > 0 {
		catalog.EarningsMultiplier = file.EarningsMultiplier
	}
	for id, cfg := range file.Parts {
		if _, ok := catalog.Parts[id]; !ok {
			return Catalog{}, fmt.Errorf("part catalog %s: unknown part %q", path, id)
		}
		if err := validateConfig(id, cfg); err != nil {
			return Catalog{}, fmt.Errorf("part catalog %s: %w", path, err)
		}
		catalog.Parts[id] = cfg
	}
	return catalog, nil
}

func validateConfig(id ID, cfg Config) error {
	if cfg.MaxLevel < 1 {
		return fmt.Errorf("part %q: max_level must be >= 1", id)
	}
	if cfg.BaseHashRate <= 0 {
		return fmt.Errorf("part %q: base_hash_rate must be positive", id)
	}
	if cfg.BasePrice <= 0 {
		return fmt.Errorf("part %q: base_price must be positive", id)
	}
	if cfg.PriceMultiplier <= 1 {
		return fmt.Errorf("part %q: price_multiplier must be > 1", id)
	}
	if cfg.HashRateMultiplier <= 1 {
		return fmt.Errorf("part %q: hash_rate_multiplier must be > 1", id)
	}
	return nil
}
