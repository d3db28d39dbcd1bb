// Package testutil holds in-memory stand-ins for the storage ports.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
)

// ErrStoreDown is returned by every TaskRepository call while Fail is set.
var ErrStoreDown = errors.New("store unavailable")

// TaskRepository is an in-memory repository.TaskRepository. Its clock
// advances one second per write so updatedAt strictly increases.
type TaskRepository struct {
	mu     sync.Mutex
	tasks  map[int64]domain.Task
	nextID int64
	clock  time.Time

	Fail   bool
	Writes int
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		tasks:  make(map[int64]domain.Task),
		nextID: 1,
		clock:  time.Date(2024, 1, 15, 9, 0, 0, 0, time.Local),
	}
}

// Now returns the repository clock without advancing it.
func (r *TaskRepository) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clock
}

func (r *TaskRepository) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *TaskRepository) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return nil, ErrStoreDown
	}
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.TaskNotFound(id)
	}
	return clone(task), nil
}

func (r *TaskRepository) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return false, ErrStoreDown
	}
	_, ok := r.tasks[id]
	return ok, nil
}

func (r *TaskRepository) List(_ context.Context) ([]domain.Task, error) {
	return r.filter(func(domain.Task) bool { return true })
}

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return nil, ErrStoreDown
	}
	now := r.tick()
	stored := *clone(*task)
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.nextID++
	r.tasks[stored.ID] = stored
	r.Writes++
	return clone(stored), nil
}

func (r *TaskRepository) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return ErrStoreDown
	}
	existing, ok := r.tasks[task.ID]
	if !ok {
		return domain.TaskNotFound(task.ID)
	}
	stored := *clone(*task)
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.tick()
	r.tasks[stored.ID] = stored
	r.Writes++

	task.CreatedAt = stored.CreatedAt
	task.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return ErrStoreDown
	}
	if _, ok := r.tasks[id]; !ok {
		return domain.TaskNotFound(id)
	}
	delete(r.tasks, id)
	r.Writes++
	return nil
}

func (r *TaskRepository) FindByStatus(_ context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool { return t.Status == status })
}

func (r *TaskRepository) FindByPriority(_ context.Context, priority domain.TaskPriority) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool { return t.Priority == priority })
}

func (r *TaskRepository) FindByAssignedTo(_ context.Context, assignedTo string) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool { return t.AssignedTo == assignedTo })
}

func (r *TaskRepository) FindByStatusAndPriority(_ context.Context, status domain.TaskStatus, priority domain.TaskPriority) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool { return t.Status == status && t.Priority == priority })
}

func (r *TaskRepository) FindByCriteria(_ context.Context, f repository.TaskFilter) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool {
		return (f.Status == nil || t.Status == *f.Status) &&
			(f.Priority == nil || t.Priority == *f.Priority) &&
			(f.AssignedTo == nil || t.AssignedTo == *f.AssignedTo)
	})
}

func (r *TaskRepository) FindCreatedAfter(_ context.Context, after time.Time) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool { return t.CreatedAt.After(after) })
}

func (r *TaskRepository) FindDueBefore(_ context.Context, before time.Time) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool { return t.DueDate != nil && t.DueDate.Before(before) })
}

func (r *TaskRepository) FindOverdue(_ context.Context, now time.Time) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool { return t.IsOverdue(now) })
}

func (r *TaskRepository) FindHighPriorityPending(_ context.Context) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool {
		return t.Priority == domain.PriorityHigh && t.Status != domain.StatusCompleted
	})
}

func (r *TaskRepository) SearchByTitle(_ context.Context, keyword string) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool { return containsFold(t.Title, keyword) })
}

func (r *TaskRepository) SearchByDescription(_ context.Context, keyword string) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool { return containsFold(t.Description, keyword) })
}

func (r *TaskRepository) Count(_ context.Context) (int64, error) {
	tasks, err := r.List(context.Background())
	return int64(len(tasks)), err
}

func (r *TaskRepository) CountByStatus(ctx context.Context, status domain.TaskStatus) (int64, error) {
	tasks, err := r.FindByStatus(ctx, status)
	return int64(len(tasks)), err
}

func (r *TaskRepository) filter(match func(domain.Task) bool) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return nil, ErrStoreDown
	}
	out := make([]domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if match(t) {
			out = append(out, *clone(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func clone(t domain.Task) *domain.Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return &t
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
