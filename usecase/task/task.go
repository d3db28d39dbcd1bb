package task

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/domain"
	appLogger "github.com/fastygo/taskmanager/pkg/logger"
	"github.com/fastygo/taskmanager/repository"
	"github.com/fastygo/taskmanager/usecase"
)

type UseCase struct {
	tasks   repository.TaskRepository
	cache   repository.TaskCache
	journal usecase.ChangeJournal
	logger  *zap.Logger
	now     func() time.Time
}

// New wires the task use case. cache and journal are optional.
func New(tasks repository.TaskRepository, cache repository.TaskCache, journal usecase.ChangeJournal, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:   tasks,
		cache:   cache,
		journal: journal,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateTask persists a new task, defaulting status to PENDING and priority to MEDIUM.
func (uc *UseCase) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	log := appLogger.WithRequestID(ctx, uc.logger)
	log.Info("creating task", zap.String("title", task.Title))

	task.ApplyDefaults()
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	uc.afterMutation(ctx, domain.OperationCreate, created)
	return created, nil
}

func (uc *UseCase) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return uc.tasks.List(ctx)
}

// GetTask reports absence through found rather than an error.
func (uc *UseCase) GetTask(ctx context.Context, id int64) (*domain.Task, bool, error) {
	log := appLogger.WithRequestID(ctx, uc.logger)

	fill := false
	var generation int64
	if uc.cache != nil {
		cached, err := uc.cache.GetTask(ctx, id)
		switch {
		case err != nil:
			log.Debug("task cache read failed", zap.Int64("task_id", id), zap.Error(err))
		case cached != nil:
			return cached, true, nil
		default:
			generation, err = uc.cache.TaskGeneration(ctx, id)
			fill = err == nil
		}
	}

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if fill {
		if err := uc.cache.SetTask(ctx, task, generation); err != nil {
			log.Debug("task cache write failed", zap.Int64("task_id", id), zap.Error(err))
		}
	}
	return task, true, nil
}

// UpdateTask merges the fields present in patch into the stored task.
func (uc *UseCase) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	log := appLogger.WithRequestID(ctx, uc.logger)
	log.Info("updating task", zap.Int64("task_id", id))

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			log.Warn("task not found", zap.Int64("task_id", id))
		}
		return nil, err
	}

	patch.Apply(task)
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	uc.afterMutation(ctx, domain.OperationUpdate, task)
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id int64) error {
	log := appLogger.WithRequestID(ctx, uc.logger)
	log.Info("deleting task", zap.Int64("task_id", id))

	exists, err := uc.tasks.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		log.Warn("task not found", zap.Int64("task_id", id))
		return domain.TaskNotFound(id)
	}

	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}

	uc.afterMutation(ctx, domain.OperationDelete, &domain.Task{ID: id})
	return nil
}

// MarkCompleted forces the task into COMPLETED. Completing a completed task succeeds.
func (uc *UseCase) MarkCompleted(ctx context.Context, id int64) (*domain.Task, error) {
	log := appLogger.WithRequestID(ctx, uc.logger)
	log.Info("marking task as completed", zap.Int64("task_id", id))

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			log.Warn("task not found", zap.Int64("task_id", id))
		}
		return nil, err
	}

	task.Status = domain.StatusCompleted
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	uc.afterMutation(ctx, domain.OperationComplete, task)
	return task, nil
}

// Statistics counts all tasks and each status independently; the counts are
// not taken from a single snapshot.
func (uc *UseCase) Statistics(ctx context.Context) (*domain.TaskStatistics, error) {
	fill := false
	var generation int64
	if uc.cache != nil {
		if cached, err := uc.cache.GetStatistics(ctx); err == nil && cached != nil {
			return cached, nil
		}
		var err error
		generation, err = uc.cache.StatisticsGeneration(ctx)
		fill = err == nil
	}

	total, err := uc.tasks.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats := &domain.TaskStatistics{TotalTasks: total}
	for _, status := range domain.TaskStatuses {
		count, err := uc.tasks.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		stats.Set(status, count)
	}

	if fill {
		if err := uc.cache.SetStatistics(ctx, stats, generation); err != nil {
			appLogger.WithRequestID(ctx, uc.logger).Debug("statistics cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (uc *UseCase) ByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	return uc.tasks.FindByStatus(ctx, status)
}

func (uc *UseCase) ByPriority(ctx context.Context, priority domain.TaskPriority) ([]domain.Task, error) {
	return uc.tasks.FindByPriority(ctx, priority)
}

func (uc *UseCase) ByAssignedTo(ctx context.Context, assignedTo string) ([]domain.Task, error) {
	return uc.tasks.FindByAssignedTo(ctx, assignedTo)
}

func (uc *UseCase) ByStatusAndPriority(ctx context.Context, status domain.TaskStatus, priority domain.TaskPriority) ([]domain.Task, error) {
	return uc.tasks.FindByStatusAndPriority(ctx, status, priority)
}

func (uc *UseCase) FindByCriteria(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.FindByCriteria(ctx, filter)
}

func (uc *UseCase) CreatedAfter(ctx context.Context, after time.Time) ([]domain.Task, error) {
	return uc.tasks.FindCreatedAfter(ctx, after)
}

func (uc *UseCase) DueBefore(ctx context.Context, before time.Time) ([]domain.Task, error) {
	return uc.tasks.FindDueBefore(ctx, before)
}

// Overdue returns open tasks whose due date has passed.
func (uc *UseCase) Overdue(ctx context.Context) ([]domain.Task, error) {
	return uc.tasks.FindOverdue(ctx, uc.now())
}

func (uc *UseCase) HighPriorityPending(ctx context.Context) ([]domain.Task, error) {
	return uc.tasks.FindHighPriorityPending(ctx)
}

func (uc *UseCase) SearchByTitle(ctx context.Context, keyword string) ([]domain.Task, error) {
	return uc.tasks.SearchByTitle(ctx, keyword)
}

func (uc *UseCase) SearchByDescription(ctx context.Context, keyword string) ([]domain.Task, error) {
	return uc.tasks.SearchByDescription(ctx, keyword)
}

// History returns the recorded changes of a task, oldest first.
func (uc *UseCase) History(ctx context.Context, id int64) ([]domain.JournalEntry, error) {
	if uc.journal == nil {
		return []domain.JournalEntry{}, nil
	}
	return uc.journal.History(ctx, id)
}

// afterMutation keeps the cache and journal in step with a committed write.
// Neither may fail the request.
func (uc *UseCase) afterMutation(ctx context.Context, operation string, task *domain.Task) {
	log := appLogger.WithRequestID(ctx, uc.logger)

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, task.ID); err != nil {
			log.Warn("task cache invalidation failed", zap.Int64("task_id", task.ID), zap.Error(err))
		}
	}
	if uc.journal != nil {
		if err := uc.journal.Record(ctx, operation, task); err != nil {
			log.Warn("failed to journal task change", zap.String("operation", operation), zap.Error(err))
		}
	}

	log.Info("task changed", zap.String("operation", operation), zap.Int64("task_id", task.ID))
}
