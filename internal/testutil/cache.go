package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
)

// ErrCacheDown is returned by every TaskCache call while Fail is set.
var ErrCacheDown = errors.New("cache unavailable")

// TaskCache is an in-memory repository.TaskCache that records invalidations.
type TaskCache struct {
	mu          sync.Mutex
	tasks       map[int64]domain.Task
	stats       *domain.TaskStatistics
	generations map[int64]int64
	statsGen    int64
	Invalidated []int64
	Fail        bool
}

func NewTaskCache() *TaskCache {
	return &TaskCache{tasks: make(map[int64]domain.Task), generations: make(map[int64]int64)}
}

func (c *TaskCache) GetTask(_ context.Context, id int64) (*domain.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return nil, ErrCacheDown
	}
	task, ok := c.tasks[id]
	if !ok {
		return nil, nil
	}
	return clone(task), nil
}

func (c *TaskCache) TaskGeneration(_ context.Context, id int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return 0, ErrCacheDown
	}
	return c.generations[id], nil
}

// SetTask drops the write when the task was invalidated after generation was read.
func (c *TaskCache) SetTask(_ context.Context, task *domain.Task, generation int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return ErrCacheDown
	}
	if c.generations[task.ID] != generation {
		return nil
	}
	c.tasks[task.ID] = *clone(*task)
	return nil
}

func (c *TaskCache) GetStatistics(_ context.Context) (*domain.TaskStatistics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return nil, ErrCacheDown
	}
	if c.stats == nil {
		return nil, nil
	}
	stats := *c.stats
	return &stats, nil
}

func (c *TaskCache) StatisticsGeneration(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return 0, ErrCacheDown
	}
	return c.statsGen, nil
}

func (c *TaskCache) SetStatistics(_ context.Context, stats *domain.TaskStatistics, generation int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return ErrCacheDown
	}
	if c.statsGen != generation {
		return nil
	}
	copied := *stats
	c.stats = &copied
	return nil
}

func (c *TaskCache) Invalidate(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Invalidated = append(c.Invalidated, id)
	if c.Fail {
		return ErrCacheDown
	}
	c.generations[id]++
	c.statsGen++
	delete(c.tasks, id)
	c.stats = nil
	return nil
}

// Cached reports whether a task is currently held.
func (c *TaskCache) Cached(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.tasks[id]
	return ok
}

// HasStatistics reports whether a statistics snapshot is currently held.
func (c *TaskCache) HasStatistics() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats != nil
}

var _ repository.TaskCache = (*TaskCache)(nil)

// Journal is an in-memory usecase.ChangeJournal.
type Journal struct {
	mu      sync.Mutex
	entries []domain.JournalEntry
	Fail    bool
}

func (j *Journal) Record(_ context.Context, operation string, task *domain.Task) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Fail {
		return errors.New("journal unavailable")
	}
	j.entries = append(j.entries, domain.NewJournalEntry(operation, task))
	return nil
}

func (j *Journal) History(_ context.Context, taskID int64) ([]domain.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := []domain.JournalEntry{}
	for _, e := range j.entries {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Operations lists the recorded operations in order.
func (j *Journal) Operations() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, 0, len(j.entries))
	for _, e := range j.entries {
		out = append(out, e.Operation)
	}
	return out
}
