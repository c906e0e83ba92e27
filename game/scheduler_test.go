package game

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hashrig/hashrig/clock"
	"github.com/hashrig/hashrig/parts"
)

func TestSchedulerSkipsAccrualWhileNotMining(t *testing.T) {
	store := NewStore(parts.DefaultCatalog(), clock.RealClock{})

	var saves int32
	scheduler := NewSchedulerWithIntervals(store, func() {
		atomic.AddInt32(&saves, 1)
	}, 5*time.Millisecond, time.Hour)
	scheduler.Start()

	time.Sleep(100 * time.Millisecond)
	scheduler.Stop()

	state := store.Snapshot()
	assert.Zero(t, state.Balance, "no earnings must accrue while not mining")
	assert.Zero(t, state.TotalMined)
}

func TestSchedulerAccruesWhileMining(t *testing.T) {
	store := NewStore(parts.DefaultCatalog(), clock.RealClock{})
	store.StartMining()

	scheduler := NewSchedulerWithIntervals(store, func() {}, 5*time.Millisecond, time.Hour)
	scheduler.Start()

	time.Sleep(100 * time.Millisecond)
	scheduler.Stop()

	assert.Positive(t, store.Snapshot().TotalMined)
}

func TestSchedulerRunsPersistenceTickAndFinalFlush(t *testing.T) {
	store := NewStore(parts.DefaultCatalog(), clock.RealClock{})

	var saves int32
	scheduler := NewSchedulerWithIntervals(store, func() {
		atomic.AddInt32(&saves, 1)
	}, time.Hour, 20*time.Millisecond)
	scheduler.Start()

	time.Sleep(110 * time.Millisecond)
	periodic := atomic.LoadInt32(&saves)
	assert.GreaterOrEqual(t, periodic, int32(2), "persistence tick must fire repeatedly")

	scheduler.Stop()
	assert.GreaterOrEqual(t, atomic.LoadInt32(&saves), periodic+1, "Stop flushes one final save")
}
