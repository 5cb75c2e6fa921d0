// Package dedupe tracks submission ids so a retried submit returns the
// outcome of the first attempt instead of storing and e-mailing twice.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper records ids and the outcome each one produced.
type Deduper[V any] interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Complete attaches the outcome of a recorded id.
	Complete(ctx context.Context, id string, v V)

	// Lookup returns the outcome for id. ok is false while the id is unknown
	// or still in flight.
	Lookup(ctx context.Context, id string) (v V, ok bool)

	// Unrecord removes an id so it can be retried. Used when the first
	// attempt failed before producing an outcome worth replaying.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type entry[V any] struct {
	id   string
	v    V
	done bool
}

// inMemoryDeduper keeps ids in insertion order and evicts the oldest once
// maxSize is reached. maxSize <= 0 means unbounded.
type inMemoryDeduper[V any] struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper[V any](opts ...Option) Deduper[V] {
	c := config{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(&c)
	}
	return &inMemoryDeduper[V]{
		seen:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: c.maxSize,
	}
}

func (d *inMemoryDeduper[V]) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.seen[id] = d.order.PushBack(&entry[V]{id: id})
	return false
}

func (d *inMemoryDeduper[V]) Complete(_ context.Context, id string, v V) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.seen[id]; ok {
		e := el.Value.(*entry[V])
		e.v = v
		e.done = true
	}
}

func (d *inMemoryDeduper[V]) Lookup(_ context.Context, id string) (V, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero V
	el, ok := d.seen[id]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if !e.done {
		return zero, false
	}
	return e.v, true
}

func (d *inMemoryDeduper[V]) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.seen[id]; ok {
		d.order.Remove(el)
		delete(d.seen, id)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper[V]) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(*entry[V]).id)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper[V]) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
