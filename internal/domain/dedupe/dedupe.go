// Package dedupe suppresses double-scanned scouting records. Paper scouting
// sheets get scanned more than once often enough that ingest treats record
// IDs as at-most-once: the first scan wins, later scans are dropped.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen record IDs for at-most-once ingestion.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an ID so the record can be retried. Used when a
	// record was marked seen but could not be enqueued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// ring implements Deduper with a fixed-capacity circular buffer and FIFO
// eviction: once full, recording a new ID forgets the oldest one. With a
// non-positive capacity the buffer is unbounded and nothing is evicted.
type ring struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	order    []string
	head     int
	capacity int
	size     atomic.Int64
}

const defaultCapacity = 500_000

// NewRing creates an in-memory deduper.
func NewRing(opts ...Option) Deduper {
	r := &ring{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(r)
	}
	r.seen = make(map[string]struct{})
	if r.capacity > 0 {
		r.order = make([]string, r.capacity)
	}
	return r
}

func (r *ring) SeenAndRecord(_ context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[id]; ok {
		return true
	}

	if r.capacity > 0 {
		if evicted := r.order[r.head]; evicted != "" {
			if _, ok := r.seen[evicted]; ok {
				delete(r.seen, evicted)
				r.size.Add(-1)
			}
		}
		r.order[r.head] = id
		r.head = (r.head + 1) % r.capacity
	}

	r.seen[id] = struct{}{}
	r.size.Add(1)
	return false
}

func (r *ring) Unrecord(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[id]; !ok {
		return
	}
	delete(r.seen, id)
	r.size.Add(-1)
	// The ring slot keeps the stale ID until it cycles around; eviction
	// tolerates IDs that are no longer in the map.
}

func (r *ring) Size() int64 {
	return r.size.Load()
}
