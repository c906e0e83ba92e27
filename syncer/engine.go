package syncer

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hashrig/hashrig/game"
	"github.com/hashrig/hashrig/parts"
)

// Outcome reports how a mutating operation ended. Offline is not an error:
// a deferred write is a success with a warning, not a failure.
type Outcome int

const (
	OutcomeSaved Outcome = iota
	OutcomeQueued
)

func (o Outcome) String() string {
	if o == OutcomeQueued {
		return "queued"
	}
	return "saved"
}

// Engine is the sync layer for one session. It owns the operation queue and
// the durable cache; there is no process-global state.
type Engine struct {
	client  *Client
	cache   *Cache
	catalog parts.Catalog
	queue   opQueue
	deb     *Debouncer

	mu     sync.Mutex
	online bool

	pendingMu sync.Mutex
	pending   *game.State

	replayMu sync.Mutex

	// OnAck, when set, receives the authoritative version after every
	// accepted write so the caller can stamp its own state.
	OnAck func(version int64)
}

func NewEngine(client *Client, cache *Cache, catalog parts.Catalog) *Engine {
	return NewEngineWithDebounce(client, cache, catalog, DefaultDebounceWindow, DefaultDebounceCeiling)
}

// NewEngineWithDebounce exists for tests that cannot wait real windows.
func NewEngineWithDebounce(client *Client, cache *Cache, catalog parts.Catalog, window, ceiling time.Duration) *Engine {
	e := &Engine{
		client:  client,
		cache:   cache,
		catalog: catalog,
		online:  true,
	}
	e.deb = NewDebouncer(window, ceiling, e.flushPending)
	return e
}

// Online reports the engine's view of connectivity.
func (e *Engine) Online() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.online
}

// QueueLen reports how many operations wait for replay.
func (e *Engine) QueueLen() int {
	return e.queue.len()
}

// QueuedOps returns a copy of the pending operations, FIFO order.
func (e *Engine) QueuedOps() []QueuedOp {
	return e.queue.snapshot()
}

// Load fetches the remote state. On success the durable cache is refreshed.
// On any failure except an authentication failure, the last valid cached
// copy is returned instead; with no valid cache the original error surfaces.
func (e *Engine) Load(ctx context.Context) (game.State, error) {
	state, err := e.client.LoadState(ctx)
	if err == nil {
		if cerr := e.cache.Store(state); cerr != nil {
			log.Println("syncer: cache write failed:", cerr)
		}
		e.markOnline(ctx)
		return state, nil
	}
	if errors.Is(err, ErrUnauthorized) {
		return game.State{}, err
	}
	if IsTransient(err) {
		e.setOffline()
	}

	cached, cerr := e.cache.Load()
	if cerr != nil {
		return game.State{}, err
	}
	log.Println("syncer: load failed, serving cached state:", err)
	return cached, nil
}

// Save schedules a debounced persist of the given snapshot. Bursts inside
// the window coalesce into one network write; a continuous burst is flushed
// at the ceiling. The call returns immediately; queue/conflict outcomes of
// the eventual write are logged and, on acceptance, reported through OnAck.
func (e *Engine) Save(state game.State) {
	e.pendingMu.Lock()
	snapshot := state.Clone()
	e.pending = &snapshot
	e.pendingMu.Unlock()
	e.deb.Trigger()
}

// Flush forces any pending debounced save out now. Used on session end.
func (e *Engine) Flush() {
	e.deb.Flush()
}

// Close stops the debounce timer.
func (e *Engine) Close() {
	e.deb.Stop()
}

func (e *Engine) flushPending() {
	e.pendingMu.Lock()
	state := e.pending
	e.pending = nil
	e.pendingMu.Unlock()
	if state == nil {
		return
	}
	outcome, err := e.SaveNow(context.Background(), *state)
	if err != nil {
		log.Println("syncer: debounced save failed:", err)
		return
	}
	if outcome == OutcomeQueued {
		log.Println("syncer: offline, save queued for replay")
	}
}

// SaveNow persists a snapshot immediately, bypassing the debounce window.
// While offline (or when the write fails at the transport level) the state
// is queued for ordered replay and the call reports OutcomeQueued. Failures
// the server actually returned (version conflict, invalid state) are errors
// and are not queued.
func (e *Engine) SaveNow(ctx context.Context, state game.State) (Outcome, error) {
	// Optimistic durable write: a crash before the network ack still leaves
	// the latest local state on disk.
	if err := e.cache.Store(state); err != nil {
		log.Println("syncer: cache write failed:", err)
	}
	return e.submit(ctx, state, QueuedOp{Kind: OpSave})
}

// UpgradePart applies the level change to the cached state optimistically,
// then follows the same save-or-queue policy as SaveNow.
func (e *Engine) UpgradePart(ctx context.Context, id parts.ID, newLevel int) (Outcome, game.State, error) {
	state, err := e.cache.Load()
	if err != nil {
		return OutcomeSaved, game.State{}, err
	}
	state.Parts[id] = newLevel
	state.LastUpdated = time.Now().UTC()
	if err := e.cache.Store(state); err != nil {
		log.Println("syncer: cache write failed:", err)
	}
	outcome, err := e.submit(ctx, state, QueuedOp{Kind: OpUpgrade, Part: id, Level: newLevel})
	return outcome, state, err
}

// UpdateBalance applies the new balance to the cached state optimistically,
// then follows the same save-or-queue policy as SaveNow.
func (e *Engine) UpdateBalance(ctx context.Context, balance float64) (Outcome, game.State, error) {
	state, err := e.cache.Load()
	if err != nil {
		return OutcomeSaved, game.State{}, err
	}
	state.Balance = balance
	state.LastUpdated = time.Now().UTC()
	if err := e.cache.Store(state); err != nil {
		log.Println("syncer: cache write failed:", err)
	}
	outcome, err := e.submit(ctx, state, QueuedOp{Kind: OpBalance, Balance: balance})
	return outcome, state, err
}

// submit performs one conditional write, or queues op when offline. op is
// completed with the state and enqueue timestamp as needed.
func (e *Engine) submit(ctx context.Context, state game.State, op QueuedOp) (Outcome, error) {
	if !e.Online() {
		e.enqueue(state, op)
		return OutcomeQueued, nil
	}

	version, err := e.client.SaveState(ctx, state, uuid.NewString())
	if err != nil {
		if IsTransient(err) {
			e.setOffline()
			e.enqueue(state, op)
			return OutcomeQueued, nil
		}
		return OutcomeSaved, err
	}

	state.Version = version
	if cerr := e.cache.Store(state); cerr != nil {
		log.Println("syncer: cache write failed:", cerr)
	}
	if e.OnAck != nil {
		e.OnAck(version)
	}
	e.markOnline(ctx)
	return OutcomeSaved, nil
}

func (e *Engine) enqueue(state game.State, op QueuedOp) {
	snapshot := state.Clone()
	op.State = &snapshot
	op.EnqueuedAt = time.Now().UTC()
	e.queue.push(op)
	log.Printf("syncer: queued %s operation (%d pending)", op.Kind, e.queue.len())
}

// SetOnline feeds an external connectivity signal into the engine. The
// offline-to-online transition replays the queue before returning.
func (e *Engine) SetOnline(ctx context.Context, online bool) {
	if online {
		e.markOnline(ctx)
		return
	}
	e.setOffline()
}

// Reconnect probes the server when the engine believes it is offline. On a
// successful probe the queue is replayed before the call returns.
func (e *Engine) Reconnect(ctx context.Context) error {
	if e.Online() {
		return nil
	}
	if err := e.client.Ping(ctx); err != nil {
		return err
	}
	log.Println("syncer: connectivity restored")
	e.markOnline(ctx)
	return nil
}

// ProcessQueue drains the operation queue in FIFO order, replaying each
// deferred mutation against the current authoritative version. The first
// replay failure stops processing with that operation still at the head of
// the queue; nothing is reordered or split.
func (e *Engine) ProcessQueue(ctx context.Context) (int, error) {
	e.replayMu.Lock()
	defer e.replayMu.Unlock()

	if e.queue.len() == 0 {
		return 0, nil
	}

	current, err := e.cache.Load()
	if err != nil {
		return 0, err
	}

	replayed := 0
	for {
		op, ok := e.queue.peek()
		if !ok {
			break
		}

		next := current.Clone()
		switch op.Kind {
		case OpSave:
			next = op.State.Clone()
		case OpUpgrade:
			next.Parts[op.Part] = op.Level
		case OpBalance:
			next.Balance = op.Balance
		}
		// Replays are conditioned on the version the previous replay
		// established, not the stale version captured at enqueue time.
		next.Version = current.Version

		version, err := e.client.SaveState(ctx, next, uuid.NewString())
		if err != nil {
			if IsTransient(err) {
				e.setOffline()
			}
			return replayed, err
		}

		next.Version = version
		current = next
		if cerr := e.cache.Store(current); cerr != nil {
			log.Println("syncer: cache write failed:", cerr)
		}
		if e.OnAck != nil {
			e.OnAck(version)
		}
		e.queue.dropFront()
		replayed++
	}

	if replayed > 0 {
		log.Printf("syncer: replayed %d queued operation(s)", replayed)
	}
	return replayed, nil
}

func (e *Engine) setOffline() {
	e.mu.Lock()
	if e.online {
		log.Println("syncer: connectivity lost, deferring writes")
	}
	e.online = false
	e.mu.Unlock()
}

// markOnline flips the connectivity flag and, on an offline-to-online
// transition, replays the queue.
func (e *Engine) markOnline(ctx context.Context) {
	e.mu.Lock()
	was := e.online
	e.online = true
	e.mu.Unlock()
	if was {
		return
	}
	if _, err := e.ProcessQueue(ctx); err != nil {
		log.Println("syncer: queue replay stopped:", err)
	}
}
