package resource_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/site-view-service/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_SingleFlight(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})

	r := resource.New(func(_ context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	})

	const readers = 20
	var wg sync.WaitGroup
	results := make([]int, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := r.Get(context.Background())
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "producer must run exactly once")
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestResource_IdempotentAfterResolution(t *testing.T) {
	var calls atomic.Int64
	r := resource.New(func(_ context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"a", "b"}, nil
	})

	first, err := r.Get(context.Background())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := r.Get(context.Background())
		require.NoError(t, err)
		// Same backing slice, not a re-fetch or a copy.
		assert.Same(t, &first[0], &again[0])
	}
	assert.Equal(t, int64(1), calls.Load())
}

func TestResource_ErrorCachedNotRetried(t *testing.T) {
	var calls atomic.Int64
	boom := errors.New("upstream down")
	r := resource.New(func(_ context.Context) (int, error) {
		calls.Add(1)
		return 0, boom
	})

	for i := 0; i < 3; i++ {
		_, err := r.Get(context.Background())
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, int64(1), calls.Load(), "failure must not trigger a retry")
}

func TestResource_CallerCancellationDoesNotAbortProducer(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	r := resource.New(func(_ context.Context) (int, error) {
		close(started)
		<-release
		return 7, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := r.Get(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// The producer is still in flight and settles normally.
	close(release)
	v, err := r.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestResource_PollDoesNotTriggerProducer(t *testing.T) {
	var calls atomic.Int64
	r := resource.New(func(_ context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	})

	_, _, settled := r.Poll()
	assert.False(t, settled)
	assert.False(t, r.Settled())
	assert.Equal(t, int64(0), calls.Load())

	_, err := r.Get(context.Background())
	require.NoError(t, err)

	v, err, settled := r.Poll()
	require.NoError(t, err)
	assert.True(t, settled)
	assert.True(t, r.Settled())
	assert.Equal(t, 1, v)
}

func TestResource_GetWaitsForSlowProducer(t *testing.T) {
	r := resource.New(func(_ context.Context) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return "ready", nil
	})

	v, err := r.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ready", v)
}
