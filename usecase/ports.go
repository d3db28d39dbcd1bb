package usecase

import (
	"context"

	"github.com/fastygo/taskmanager/domain"
)

// ChangeJournal records successful task mutations so use cases stay storage-agnostic.
type ChangeJournal interface {
	Record(ctx context.Context, operation string, task *domain.Task) error
	History(ctx context.Context, taskID int64) ([]domain.JournalEntry, error)
}
