package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskmanager/domain"
)

// TaskFilter selects tasks by any combination of fields. Nil fields match everything.
type TaskFilter struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	AssignedTo *string
}

type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id int64) error

	FindByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error)
	FindByPriority(ctx context.Context, priority domain.TaskPriority) ([]domain.Task, error)
	FindByAssignedTo(ctx context.Context, assignedTo string) ([]domain.Task, error)
	FindByStatusAndPriority(ctx context.Context, status domain.TaskStatus, priority domain.TaskPriority) ([]domain.Task, error)
	FindByCriteria(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	FindCreatedAfter(ctx context.Context, after time.Time) ([]domain.Task, error)
	FindDueBefore(ctx context.Context, before time.Time) ([]domain.Task, error)
	FindOverdue(ctx context.Context, now time.Time) ([]domain.Task, error)
	FindHighPriorityPending(ctx context.Context) ([]domain.Task, error)
	SearchByTitle(ctx context.Context, keyword string) ([]domain.Task, error)
	SearchByDescription(ctx context.Context, keyword string) ([]domain.Task, error)

	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.TaskStatus) (int64, error)
}

// TaskCache is a best-effort read cache in front of TaskRepository.
// A miss is reported as (nil, nil).
//
// Fills are guarded by generations: read the generation before loading from
// the store and pass it to the setter. Invalidate bumps the generations, so a
// fill that started before an invalidation is dropped.
type TaskCache interface {
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	TaskGeneration(ctx context.Context, id int64) (int64, error)
	SetTask(ctx context.Context, task *domain.Task, generation int64) error
	GetStatistics(ctx context.Context) (*domain.TaskStatistics, error)
	StatisticsGeneration(ctx context.Context) (int64, error)
	SetStatistics(ctx context.Context, stats *domain.TaskStatistics, generation int64) error
	Invalidate(ctx context.Context, id int64) error
}
