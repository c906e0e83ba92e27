package game

import (
	"fmt"
	"time"

	"github.com/hashrig/hashrig/parts"
)

// State is the authoritative snapshot of a player's progress. It is owned by
// the Store; everything else works from copies.
type State struct {
	Balance         float64         `json:"balance"`
	Parts           parts.Inventory `json:"parts"`
	TotalMined      float64         `json:"totalMined"`
	IsMining        bool            `json:"isMining"`
	MiningStartTime *time.Time      `json:"miningStartTime,omitempty"`
	LastUpdated     time.Time       `json:"lastUpdated"`
	Version         int64           `json:"version"`
}

// NewState returns the starting state for a fresh rig: every part at level 1,
// nothing mined, version 0.
func NewState(catalog parts.Catalog, now time.Time) State {
	return State{
		Parts:       parts.NewInventory(catalog),
		LastUpdated: now,
	}
}

// Clone returns a deep copy. The inventory map and mining-start pointer are
// duplicated so the copy cannot alias the original.
func (s State) Clone() State {
	out := s
	out.Parts = s.Parts.Clone()
	if s.MiningStartTime != nil {
		t := *s.MiningStartTime
		out.MiningStartTime = &t
	}
	return out
}

// Validate checks a state read from the wire or a cache file against the
// schema. A state that fails validation is treated as absent, never used
// partially.
func Validate(catalog parts.Catalog, s State) error {
	if s.Balance < 0 {
		return fmt.Errorf("balance %v is negative", s.Balance)
	}
	if s.TotalMined < 0 {
		return fmt.Errorf("totalMined %v is negative", s.TotalMined)
	}
	if s.Version < 0 {
		return fmt.Errorf("version %d is negative", s.Version)
	}
	if len(s.Parts) == 0 {
		return fmt.Errorf("parts inventory is empty")
	}
	for id, level := range s.Parts {
		cfg, ok := catalog.Parts[id]
		if !ok {
			return fmt.Errorf("unknown part %q", id)
		}
		if level < 1 || level > cfg.MaxLevel {
			return fmt.Errorf("part %q level %d outside [1, %d]", id, level, cfg.MaxLevel)
		}
	}
	if s.IsMining && s.MiningStartTime == nil {
		return fmt.Errorf("mining without a start time")
	}
	if s.LastUpdated.IsZero() {
		return fmt.Errorf("lastUpdated is unset")
	}
	return nil
}
