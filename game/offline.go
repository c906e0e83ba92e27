package game

import (
	"math"
	"time"

	"github.com/hashrig/hashrig/parts"
)

const (
	// MaxOfflineSeconds caps retroactive earnings at 24 hours of absence.
	MaxOfflineSeconds = 86400
	// OfflineEfficiency discounts offline production relative to live mining.
	OfflineEfficiency = 0.5
)

// OfflineResult reports what the reconciler computed for a session.
type OfflineResult struct {
	Earnings    float64
	TimeOffline int64
}

// OfflineEarnings computes retroactive earnings for the whole seconds elapsed
// between the snapshot's lastUpdated and now, clamped to MaxOfflineSeconds and
// discounted by OfflineEfficiency. The earnings value is floored.
func OfflineEarnings(catalog parts.Catalog, s State, now time.Time) OfflineResult {
	seconds := int64(math.Floor(now.Sub(s.LastUpdated).Seconds()))
	if seconds < 0 {
		seconds = 0
	}
	if seconds > MaxOfflineSeconds {
		seconds = MaxOfflineSeconds
	}
	earnings := math.Floor(catalog.EarningsPerSecond(s.Parts) * float64(seconds) * OfflineEfficiency)
	return OfflineResult{Earnings: earnings, TimeOffline: seconds}
}

// Reconciler applies offline earnings exactly once per client session, no
// matter how often it is asked. The guard lives for the session only; it is
// never persisted.
type Reconciler struct {
	done bool
}

// Run computes offline earnings for the state as it was loaded (Replace
// re-stamps lastUpdated, so the loaded snapshot is passed explicitly) and
// applies them to the store. The second return is false when the reconciler
// already ran this session.
func (r *Reconciler) Run(store *Store, loaded State, now time.Time) (OfflineResult, bool) {
	if r.done {
		return OfflineResult{}, false
	}
	r.done = true
	result := OfflineEarnings(store.Catalog(), loaded, now)
	if result.Earnings > 0 {
		store.ApplyOfflineEarnings(result.Earnings)
	}
	return result, true
}
