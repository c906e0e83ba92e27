package syncer

import (
	"sync"
	"time"

	"github.com/hashrig/hashrig/game"
	"github.com/hashrig/hashrig/parts"
)

// OpKind names the mutating operation a queued entry replays.
type OpKind string

const (
	OpSave    OpKind = "save"
	OpUpgrade OpKind = "upgrade"
	OpBalance OpKind = "balance"
)

// QueuedOp is one deferred mutation. Entries are appended while offline and
// removed only after successful replay, in enqueue order.
type QueuedOp struct {
	Kind       OpKind
	State      *game.State
	Part       parts.ID
	Level      int
	Balance    float64
	EnqueuedAt time.Time
}

// opQueue is the FIFO buffer of deferred operations. In-memory only: queued
// operations do not survive a process restart.
type opQueue struct {
	mu  sync.Mutex
	ops []QueuedOp
}

func (q *opQueue) push(op QueuedOp) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ops = append(q.ops, op)
}

func (q *opQueue) peek() (QueuedOp, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ops) == 0 {
		return QueuedOp{}, false
	}
	return q.ops[0], true
}

// dropFront removes the head after a successful replay.
func (q *opQueue) dropFront() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ops) > 0 {
		q.ops = q.ops[1:]
	}
}

func (q *opQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// snapshot copies the queue for inspection without exposing internal state.
func (q *opQueue) snapshot() []QueuedOp {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]QueuedOp, len(q.ops))
	copy(out, q.ops)
	return out
}
