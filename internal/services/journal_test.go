package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/internal/infrastructure/journal"
)

func openJournal(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"), "tasks")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestJournalRecorder_RecordAndHistory(t *testing.T) {
	store := openJournal(t)
	recorder := NewJournalRecorder(store)
	ctx := context.Background()

	task := &domain.Task{ID: 9, Title: "Audit me", Status: domain.StatusPending, Priority: domain.PriorityLow}
	require.NoError(t, recorder.Record(ctx, domain.OperationCreate, task))
	task.Status = domain.StatusInProgress
	require.NoError(t, recorder.Record(ctx, domain.OperationUpdate, task))

	history, err := recorder.History(ctx, 9)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.OperationCreate, history[0].Operation)
	assert.Equal(t, domain.StatusInProgress, history[1].Status)
	assert.Equal(t, "Audit me", history[1].Title)
}

func TestJournalRecorder_RejectsNilTaskAndCancelledContext(t *testing.T) {
	recorder := NewJournalRecorder(openJournal(t))
	assert.ErrorIs(t, recorder.Record(context.Background(), domain.OperationCreate, nil), domain.ErrInvalidPayload)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, recorder.Record(ctx, domain.OperationCreate, &domain.Task{ID: 1}), context.Canceled)
}

func TestJournalPruner_RemovesOnlyExpiredEntries(t *testing.T) {
	store := openJournal(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := store.Append(domain.JournalEntry{TaskID: 1, Operation: domain.OperationCreate, RecordedAt: now.Add(-10 * 24 * time.Hour)})
	require.NoError(t, err)
	_, err = store.Append(domain.JournalEntry{TaskID: 1, Operation: domain.OperationUpdate, RecordedAt: now.Add(-time.Hour)})
	require.NoError(t, err)

	pruner, err := NewJournalPruner(store, nil, PrunerConfig{Interval: time.Minute, Retention: 7 * 24 * time.Hour})
	require.NoError(t, err)
	pruner.now = func() time.Time { return now }

	removed, err := pruner.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestJournalPruner_StartStop(t *testing.T) {
	pruner, err := NewJournalPruner(openJournal(t), nil, PrunerConfig{})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, pruner.cfg.Interval)
	assert.Equal(t, 30*24*time.Hour, pruner.cfg.Retention)

	pruner.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	pruner.Stop(ctx)
}
