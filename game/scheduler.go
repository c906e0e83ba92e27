package game

import (
	"log"
	"time"
)

const (
	// DefaultMiningInterval is the accrual tick period.
	DefaultMiningInterval = time.Second
	// DefaultSaveInterval is the unconditional persistence tick period.
	DefaultSaveInterval = 30 * time.Second
)

// Scheduler drives the two periodic actions of a live session: the 1-second
// mining tick (dispatched only while mining) and the persistence tick. Both
// stop on Stop, which also fires one final best-effort save.
type Scheduler struct {
	store          *Store
	save           func()
	miningInterval time.Duration
	saveInterval   time.Duration
	stop           chan struct{}
	done           chan struct{}
}

func NewScheduler(store *Store, save func()) *Scheduler {
	return &Scheduler{
		store:          store,
		save:           save,
		miningInterval: DefaultMiningInterval,
		saveInterval:   DefaultSaveInterval,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// NewSchedulerWithIntervals exists for tests that cannot wait wall-clock
// periods.
func NewSchedulerWithIntervals(store *Store, save func(), mining, persist time.Duration) *Scheduler {
	s := NewScheduler(store, save)
	s.miningInterval = mining
	s.saveInterval = persist
	return s
}

func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) run() {
	defer close(s.done)

	miningTicker := time.NewTicker(s.miningInterval)
	defer miningTicker.Stop()
	saveTicker := time.NewTicker(s.saveInterval)
	defer saveTicker.Stop()

	for {
		select {
		case <-miningTicker.C:
			if s.store.IsMining() {
				s.store.AccrueTick()
			}
		case <-saveTicker.C:
			s.save()
		case <-s.stop:
			return
		}
	}
}

// Stop cancels both tickers, waits for the loop to exit, and flushes one
// final save. Not guaranteed to land before process exit; the durable cache
// already holds the optimistic state.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
	s.save()
	log.Println("scheduler stopped")
}
