package store

import "sync"

// Op is the kind of remote write a change asks for.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// Change is one pending remote write produced by a local mutation.
type Change struct {
	Collection string
	Op         Op
	ID         string
	Doc        any
}

// Outbox queues remote writes. Local state is applied before a change is queued,
// so the remote copy always lags and never blocks a mutation.
type Outbox struct {
	mu      sync.Mutex
	pending []Change
	notify  chan struct{}
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{notify: make(chan struct{}, 1)}
}

// Enqueue appends changes and wakes the drainer.
func (o *Outbox) Enqueue(changes ...Change) {
	if len(changes) == 0 {
		return
	}
	o.mu.Lock()
	o.pending = append(o.pending, changes...)
	o.mu.Unlock()

	select {
	case o.notify <- struct{}{}:
	default:
	}
}

// Drain removes and returns every pending change in order.
func (o *Outbox) Drain() []Change {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.pending
	o.pending = nil
	return out
}

// Len reports the number of pending changes.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Ready is signalled whenever new changes are enqueued.
func (o *Outbox) Ready() <-chan struct{} {
	return o.notify
}
