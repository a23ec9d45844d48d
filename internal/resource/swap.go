package resource

import (
	"context"
	"sync"
)

// Swap holds the current Resource for one producer and can replace it with a
// fresh instance. A Resource never retries on its own; the retry affordance
// is constructing a new instance, which Swap makes explicit.
type Swap[T any] struct {
	produce func(context.Context) (T, error)

	mu      sync.Mutex
	current *Resource[T]
}

// NewSwap creates a Swap with an initial, untriggered Resource.
func NewSwap[T any](produce func(context.Context) (T, error)) *Swap[T] {
	return &Swap[T]{
		produce: produce,
		current: New(produce),
	}
}

// Current returns the active Resource. Readers holding the returned pointer
// keep observing that instance even across a Refresh; they pick up the new
// one on their next Current call.
func (s *Swap[T]) Current() *Resource[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Refresh replaces the active Resource with a fresh one and returns it. The
// previous instance's in-flight producer, if any, runs to completion but its
// result is no longer served.
func (s *Swap[T]) Refresh() *Resource[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = New(s.produce)
	return s.current
}
