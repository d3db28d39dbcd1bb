package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
)

const taskColumns = `id, title, COALESCE(description, ''), status, priority, due_date, COALESCE(assigned_to, ''), created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, domain.ErrTaskNotFound) {
		return nil, domain.TaskNotFound(id)
	}
	return task, err
}

func (r *taskRepository) Exists(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (title, description, status, priority, due_date, assigned_to)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.Title,
		nullString(task.Description),
		string(task.Status),
		string(task.Priority),
		nullTime(task.DueDate),
		nullString(task.AssignedTo),
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	// created_at is never written after insert.
	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		status = $4,
		priority = $5,
		due_date = $6,
		assigned_to = $7,
		updated_at = GREATEST(NOW(), created_at)
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		nullString(task.Description),
		string(task.Status),
		string(task.Priority),
		nullTime(task.DueDate),
		nullString(task.AssignedTo),
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TaskNotFound(task.ID)
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.TaskNotFound(id)
	}
	return nil
}

func (r *taskRepository) FindByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE status = $1 ORDER BY id`, string(status))
}

func (r *taskRepository) FindByPriority(ctx context.Context, priority domain.TaskPriority) ([]domain.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE priority = $1 ORDER BY id`, string(priority))
}

func (r *taskRepository) FindByAssignedTo(ctx context.Context, assignedTo string) ([]domain.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assigned_to = $1 ORDER BY id`, assignedTo)
}

func (r *taskRepository) FindByStatusAndPriority(ctx context.Context, status domain.TaskStatus, priority domain.TaskPriority) ([]domain.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE status = $1 AND priority = $2 ORDER BY id`
	return r.query(ctx, query, string(status), string(priority))
}

func (r *taskRepository) FindByCriteria(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1::text IS NULL OR status = $1)
	  AND ($2::text IS NULL OR priority = $2)
	  AND ($3::text IS NULL OR assigned_to = $3)
	ORDER BY id
	`
	var status, priority *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}
	if filter.Priority != nil {
		p := string(*filter.Priority)
		priority = &p
	}
	return r.query(ctx, query, optionalString(status), optionalString(priority), optionalString(filter.AssignedTo))
}

func (r *taskRepository) FindCreatedAfter(ctx context.Context, after time.Time) ([]domain.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE created_at > $1 ORDER BY id`, after)
}

func (r *taskRepository) FindDueBefore(ctx context.Context, before time.Time) ([]domain.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE due_date < $1 ORDER BY id`, before)
}

func (r *taskRepository) FindOverdue(ctx context.Context, now time.Time) ([]domain.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE due_date < $1 AND status <> $2 ORDER BY id`
	return r.query(ctx, query, now, string(domain.StatusCompleted))
}

func (r *taskRepository) FindHighPriorityPending(ctx context.Context) ([]domain.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE priority = $1 AND status <> $2 ORDER BY id`
	return r.query(ctx, query, string(domain.PriorityHigh), string(domain.StatusCompleted))
}

func (r *taskRepository) SearchByTitle(ctx context.Context, keyword string) ([]domain.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE title ILIKE $1 ORDER BY id`, containsPattern(keyword))
}

func (r *taskRepository) SearchByDescription(ctx context.Context, keyword string) ([]domain.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE description ILIKE $1 ORDER BY id`, containsPattern(keyword))
}

func (r *taskRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count)
	return count, err
}

func (r *taskRepository) CountByStatus(ctx context.Context, status domain.TaskStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE status = $1`, string(status)).Scan(&count)
	return count, err
}

func (r *taskRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var (
		status   string
		priority string
		due      *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&due,
		&task.AssignedTo,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	task.DueDate = due

	return &task, nil
}
