package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixedSizer struct {
	size int
	err  error
}

func (s fixedSizer) Size() (int, error) { return s.size, s.err }

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestMonitor_RefreshAllHealthy(t *testing.T) {
	m := New(PingFunc(up), PingFunc(up), fixedSizer{size: 12}, time.Minute, nil)
	m.Refresh()

	status := m.GetStatus()
	assert.True(t, status.PostgreSQL)
	assert.True(t, status.Redis)
	assert.True(t, status.RedisEnabled)
	assert.True(t, status.Journal)
	assert.Equal(t, 12, status.JournalSize)
	assert.False(t, status.LastCheck.IsZero())
	assert.True(t, m.IsOnline())
}

func TestMonitor_OptionalComponentsDisabled(t *testing.T) {
	m := New(PingFunc(up), nil, nil, time.Minute, nil)
	m.Refresh()

	status := m.GetStatus()
	assert.True(t, status.Healthy())
	assert.False(t, status.RedisEnabled)
	assert.False(t, status.Redis)
	assert.False(t, status.Journal)
}

func TestMonitor_DegradedWhenPostgresDown(t *testing.T) {
	m := New(PingFunc(down), PingFunc(up), fixedSizer{err: errors.New("closed")}, time.Minute, nil)
	m.Refresh()

	status := m.GetStatus()
	assert.False(t, status.PostgreSQL)
	assert.False(t, status.Journal)
	assert.False(t, m.IsOnline())
}

func TestMonitor_StartPollsUntilStopped(t *testing.T) {
	var pings atomic.Int32
	pg := PingFunc(func(context.Context) error {
		pings.Add(1)
		return nil
	})
	m := New(pg, nil, nil, 10*time.Millisecond, nil)

	m.Start()
	assert.True(t, m.IsOnline())
	assert.Eventually(t, func() bool { return pings.Load() >= 3 }, time.Second, 5*time.Millisecond)

	m.Stop()
	m.Stop()
	settled := pings.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, pings.Load(), settled+1)
}
