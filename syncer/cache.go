package syncer

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashrig/hashrig/game"
	"github.com/hashrig/hashrig/parts"
)

// cacheFileName is the single fixed storage key for the durable local copy.
const cacheFileName = "gamestate.json"

// ErrNoCache means no usable cached state exists: the file is missing,
// unreadable, or failed schema validation.
var ErrNoCache = errors.New("no valid cached game state")

// Cache is the durable local copy of the last known game state, used as the
// offline fallback for loads. Distinct from the operation queue.
type Cache struct {
	mu      sync.Mutex
	path    string
	catalog parts.Catalog
}

func NewCache(dir string, catalog parts.Catalog) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{path: filepath.Join(dir, cacheFileName), catalog: catalog}, nil
}

// Load reads and validates the cached state. Anything that does not parse as
// a valid state is reported as ErrNoCache, never used partially.
func (c *Cache) Load() (game.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return game.State{}, ErrNoCache
	}
	var state game.State
	if err := json.Unmarshal(data, &state); err != nil {
		return game.State{}, ErrNoCache
	}
	if err := game.Validate(c.catalog, state); err != nil {
		return game.State{}, ErrNoCache
	}
	return state, nil
}

// Store overwrites the cached state. Last writer wins.
func (c *Cache) Store(state game.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}
