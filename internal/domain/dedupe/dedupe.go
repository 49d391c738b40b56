// Package dedupe tracks which guesses a player already submitted.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper remembers submitted guesses by their normalized key.
type Deduper interface {
	// SeenAndRecord reports whether word was already submitted and records
	// it when it was not. The check and the insert are atomic.
	SeenAndRecord(ctx context.Context, word string) bool

	// Unrecord forgets word so it can be submitted again, e.g. after the
	// request carrying it failed.
	Unrecord(ctx context.Context, word string)

	Size() int64
}

// guessHistory is a set with optional FIFO eviction once maxSize keys are
// held. A maxSize <= 0 means unbounded.
type guessHistory struct {
	mu        sync.Mutex
	seen      map[string]*list.Element
	order     *list.List
	maxSize   int
	normalize func(string) string
}

// NewInMemoryDeduper creates an in-memory Deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &guessHistory{
		maxSize:   10000,
		normalize: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *guessHistory) SeenAndRecord(_ context.Context, word string) bool {
	key := d.normalize(word)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushBack(key)
	return false
}

func (d *guessHistory) Unrecord(_ context.Context, word string) {
	key := d.normalize(word)

	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.seen[key]; ok {
		d.order.Remove(e)
		delete(d.seen, key)
	}
}

// evictOldest drops the first recorded key. Caller holds d.mu.
func (d *guessHistory) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	delete(d.seen, d.order.Remove(front).(string))
}

func (d *guessHistory) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
