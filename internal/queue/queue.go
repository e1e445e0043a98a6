// Package queue provides a small thread-safe FIFO that de-duplicates its
// items, used for the recently-status-changed record ids consumed when the
// user returns from a detail view.
package queue

import "sync"

// Dedup is a generic thread-safe queue that keeps at most one copy of each
// item, preserving first-insertion order.
type Dedup[T comparable] struct {
	mu      sync.Mutex
	items   []T
	present map[T]struct{}
}

// NewDedup creates a new empty queue.
func NewDedup[T comparable]() *Dedup[T] {
	return &Dedup[T]{
		present: make(map[T]struct{}),
	}
}

// Push appends items not already queued; duplicates are dropped.
func (q *Dedup[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range items {
		if _, ok := q.present[item]; ok {
			continue
		}
		q.present[item] = struct{}{}
		q.items = append(q.items, item)
	}
}

// Contains reports whether an item is currently queued.
func (q *Dedup[T]) Contains(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.present[item]
	return ok
}

// Len returns the number of queued items.
func (q *Dedup[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty returns true if the queue has no items.
func (q *Dedup[T]) Empty() bool {
	return q.Len() == 0
}

// Drain returns all items in insertion order and clears the queue.
func (q *Dedup[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := q.items
	q.items = nil
	q.present = make(map[T]struct{})
	return result
}
