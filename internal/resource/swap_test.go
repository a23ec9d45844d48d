package resource_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/couchcryptid/site-view-service/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwap_CurrentIsStableWithoutRefresh(t *testing.T) {
	s := resource.NewSwap(func(_ context.Context) (int, error) { return 1, nil })
	assert.Same(t, s.Current(), s.Current())
}

func TestSwap_RefreshRetriesFailedFetch(t *testing.T) {
	var calls atomic.Int64
	s := resource.NewSwap(func(_ context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("transient upstream failure")
		}
		return 99, nil
	})

	_, err := s.Current().Get(context.Background())
	require.Error(t, err)

	// The failed instance stays failed.
	_, err = s.Current().Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load())

	old := s.Current()
	fresh := s.Refresh()
	assert.NotSame(t, old, fresh)
	assert.Same(t, fresh, s.Current())

	v, err := s.Current().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 99, v)
	assert.Equal(t, int64(2), calls.Load())
}
