// Package live delivers full-snapshot updates to long-lived subscribers.
//
// Delivery is latest-wins: a subscriber that has not yet read a value sees it
// replaced by a newer one, so slow consumers never build up a backlog and
// always observe the most recent snapshot.
package live

import "sync"

// Latest is a single-slot channel where a newer value supersedes an unread one.
type Latest[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
}

// NewLatest returns an empty slot.
func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{ch: make(chan T, 1)}
}

// Offer stores v, dropping any value the consumer has not received yet.
// Offer after Close is a no-op.
func (l *Latest[T]) Offer(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case <-l.ch:
	default:
	}
	l.ch <- v
}

// C is the receive side.
func (l *Latest[T]) C() <-chan T { return l.ch }

// Close ends delivery; a pending value can still be drained.
func (l *Latest[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.ch)
	}
}
