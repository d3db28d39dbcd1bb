package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	for _, name := range []string{"postgres", "journal", "http_server"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http_server", "journal", "postgres"}, order)
}

func TestManager_ShutdownJoinsErrorsAndContinues(t *testing.T) {
	m := New(time.Second, nil)
	errRedis := errors.New("redis close failed")
	ran := false
	m.Register("postgres", func(context.Context) error {
		ran = true
		return nil
	})
	m.Register("redis", func(context.Context) error { return errRedis })

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errRedis)
	assert.Contains(t, err.Error(), "redis:")
	assert.True(t, ran)
}

func TestManager_ShutdownOnce(t *testing.T) {
	m := New(0, nil)
	calls := 0
	m.Register("monitor", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, 1, calls)

	m.Register("late", func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestManager_HooksReceiveDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
