package game

import (
	"sync"

	"github.com/hashrig/hashrig/clock"
	"github.com/hashrig/hashrig/parts"
)

// Store owns the in-memory game state. Mutation happens only through the
// transition methods below; each is atomic and total. Validation of upgrade
// affordability and level bounds is the caller's contract — the store applies
// what it is told, in call order.
type Store struct {
	mu      sync.Mutex
	clk     clock.Clock
	catalog parts.Catalog
	state   State
}

func NewStore(catalog parts.Catalog, clk clock.Clock) *Store {
	return &Store{
		clk:     clk,
		catalog: catalog,
		state:   NewState(catalog, clk.Now()),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Catalog() parts.Catalog {
	return s.catalog
}

// SetBalance overwrites the balance. The caller guarantees v >= 0.
func (s *Store) SetBalance(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Balance = v
	s.state.LastUpdated = s.clk.Now()
}

// UpgradePart sets a part to its new level. The caller guarantees the level
// is currentLevel+1 and within the catalog maximum.
func (s *Store) UpgradePart(id parts.ID, newLevel int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Parts[id] = newLevel
	s.state.LastUpdated = s.clk.Now()
}

// Replace swaps in an entire snapshot, stamping LastUpdated to now.
func (s *Store) Replace(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next.Clone()
	s.state.LastUpdated = s.clk.Now()
}

// SetVersion records the concurrency token acknowledged by the remote store.
func (s *Store) SetVersion(v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Version = v
}

func (s *Store) StartMining() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsMining {
		return
	}
	now := s.clk.Now()
	s.state.IsMining = true
	s.state.MiningStartTime = &now
}

func (s *Store) StopMining() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsMining {
		return
	}
	s.state.IsMining = false
	s.state.MiningStartTime = nil
	s.state.LastUpdated = s.clk.Now()
}

// AccrueTick credits one second of mining earnings and returns the amount.
// The scheduler guarantees this is only dispatched while mining.
func (s *Store) AccrueTick() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	earned := s.catalog.EarningsPerSecond(s.state.Parts)
	s.state.Balance += earned
	s.state.TotalMined += earned
	s.state.LastUpdated = s.clk.Now()
	return earned
}

// ApplyOfflineEarnings credits retroactive earnings computed by the offline
// reconciler. earnings >= 0 is the caller's contract.
func (s *Store) ApplyOfflineEarnings(earnings float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Balance += earnings
	s.state.TotalMined += earnings
	s.state.LastUpdated = s.clk.Now()
}

// IsMining reports the current mode without copying the whole state.
func (s *Store) IsMining() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsMining
}
