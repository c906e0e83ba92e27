package parts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalogOverridesListedParts(t *testing.T) {
	path := writeCatalogFile(t, `
earnings_multiplier: 2.0
parts:
  cpu:
    max_level: 20
    base_hash_rate: 12
    base_price: 90
    price_multiplier: 1.4
    hash_rate_multiplier: 1.3
`)

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, 2.0, catalog.EarningsMultiplier)
	assert.Equal(t, 20, catalog.Parts[CPU].MaxLevel)
	assert.Equal(t, 12.0, catalog.Parts[CPU].BaseHashRate)
	// Unlisted parts keep their defaults.
	assert.Equal(t, DefaultCatalog().Parts[GPU], catalog.Parts[GPU])
}

func TestLoadCatalogRejectsUnknownPart(t *testing.T) {
	path := writeCatalogFile(t, `
parts:
  floppy:
    max_level: 3
    base_hash_rate: 1
    base_price: 10
    price_multiplier: 1.2
    hash_rate_multiplier: 1.2
`)

	_, err := LoadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown part")
}

func TestLoadCatalogRejectsBadMultipliers(t *testing.T) {
	path := writeCatalogFile(t, `
parts:
  cpu:
    max_level: 5
    base_hash_rate: 10
    base_price: 100
    price_multiplier: 1.0
    hash_rate_multiplier: 1.4
`)

	_, err := LoadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price_multiplier")
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
