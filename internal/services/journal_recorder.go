package services

import (
	"context"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/usecase"
)

// JournalStore is the subset of the bbolt journal used by the recorder.
type JournalStore interface {
	Append(entry domain.JournalEntry) (domain.JournalEntry, error)
	ListByTask(taskID int64) ([]domain.JournalEntry, error)
}

// JournalRecorder adapts the journal store to the use case port.
type JournalRecorder struct {
	store JournalStore
}

func NewJournalRecorder(store JournalStore) *JournalRecorder {
	return &JournalRecorder{store: store}
}

func (r *JournalRecorder) Record(ctx context.Context, operation string, task *domain.Task) error {
	if r.store == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.store.Append(domain.NewJournalEntry(operation, task))
	return err
}

func (r *JournalRecorder) History(ctx context.Context, taskID int64) ([]domain.JournalEntry, error) {
	if r.store == nil {
		return []domain.JournalEntry{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.store.ListByTask(taskID)
}

var _ usecase.ChangeJournal = (*JournalRecorder)(nil)
