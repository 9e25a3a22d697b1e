package goroutine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestManager_Go(t *testing.T) {
	t.Run("CollectsErrors", func(t *testing.T) {
		m := NewManager(4)
		errA := errors.New("a")

		m.Go(context.Background(), func(context.Context) error { return errA })
		m.Go(context.Background(), func(context.Context) error { return nil })

		err := m.Wait()
		assert.ErrorIs(t, err, errA)
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		m := NewManager(1)

		ok := m.Go(context.Background(), func(context.Context) error { panic("boom") })
		require.True(t, ok)

		assert.NoError(t, m.Wait())
	})

	t.Run("RejectsAfterWait", func(t *testing.T) {
		m := NewManager(1)
		require.NoError(t, m.Wait())

		ok := m.Go(context.Background(), func(context.Context) error { return nil })
		assert.False(t, ok)
	})

	t.Run("RejectsOverLimit", func(t *testing.T) {
		m := NewManager(1)
		release := make(chan struct{})

		require.True(t, m.Go(context.Background(), func(context.Context) error {
			<-release
			return nil
		}))
		assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))

		close(release)
		assert.NoError(t, m.Wait())
	})

	t.Run("NilManager", func(t *testing.T) {
		var m *Manager
		assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
		assert.NoError(t, m.Wait())
	})
}

func TestManager_Every(t *testing.T) {
	m := NewManager(2)
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	require.True(t, m.Every(ctx, "tick", 5*time.Millisecond, func(context.Context) error {
		runs.Inc()
		return errors.New("ignored")
	}))

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, m.Wait())

	assert.False(t, m.Every(context.Background(), "off", 0, func(context.Context) error { return nil }))
}
