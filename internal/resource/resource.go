// Package resource provides a single-flight asynchronous cache for a value
// that is fetched once and consumed by many independent readers.
//
// A Resource wraps one producer call. However many readers arrive before the
// producer settles, the producer runs exactly once; after it settles, every
// read returns the same cached value or the same cached error, forever. There
// is no expiry or retry: constructing a new Resource is the only way to force
// a re-fetch.
package resource

import (
	"context"
	"sync"
)

// Resource is a single-flight cache around one producer invocation.
//
// The lifecycle is one-way and terminal: pending until the producer settles,
// then resolved or rejected for the lifetime of the instance.
type Resource[T any] struct {
	produce func(context.Context) (T, error)

	start sync.Once
	done  chan struct{}

	// Written once before done is closed, read-only afterwards.
	value T
	err   error
}

// New creates a Resource around a producer. The producer is not invoked
// until the first call to Get.
func New[T any](produce func(context.Context) (T, error)) *Resource[T] {
	return &Resource[T]{
		produce: produce,
		done:    make(chan struct{}),
	}
}

// Get returns the cached value once the producer has settled, starting the
// producer on the first call. Concurrent callers before settlement share the
// single in-flight invocation and all wait on it.
//
// Cancelling ctx abandons this caller's wait only; the producer keeps running
// to completion and its result is cached for later readers.
func (r *Resource[T]) Get(ctx context.Context) (T, error) {
	r.start.Do(func() {
		go func() {
			// Deliberately not the caller's context: no reader owns the
			// fetch, so no reader may abort it.
			r.value, r.err = r.produce(context.Background())
			close(r.done)
		}()
	})

	select {
	case <-r.done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Poll is a non-blocking read. It reports settled=false while the producer
// has not finished (or not started) and never triggers the producer itself.
func (r *Resource[T]) Poll() (value T, err error, settled bool) {
	select {
	case <-r.done:
		return r.value, r.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// Settled reports whether the producer has finished, successfully or not.
func (r *Resource[T]) Settled() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
