package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/internal/config"
	pgInfra "github.com/fastygo/taskmanager/internal/infrastructure/postgres"
	"github.com/fastygo/taskmanager/repository"
)

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, "%report%", containsPattern("report"))
	assert.Equal(t, `%100\%%`, containsPattern("100%"))
	assert.Equal(t, `%snake\_case%`, containsPattern("snake_case"))
	assert.Equal(t, `%C:\\tmp%`, containsPattern(`C:\tmp`))
}

func TestNullHelpers(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "x", nullString("x"))
	assert.Nil(t, nullTime(nil))
	assert.Nil(t, nullTime(&time.Time{}))
	assert.Nil(t, optionalString(nil))
}

// newTestRepository connects to TASKS_TEST_DATABASE_URL, applies migrations
// and empties the table. The test is skipped when the variable is unset.
func newTestRepository(t *testing.T) (repository.TaskRepository, *pgxpool.Pool) {
	t.Helper()
	url := os.Getenv("TASKS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TASKS_TEST_DATABASE_URL not set")
	}

	cfg := &config.Config{
		Database:   config.DatabaseConfig{URL: url, Name: "taskmanager_test"},
		Migrations: config.MigrationsConfig{Enabled: true, Path: "../../assets/migrations"},
	}
	require.NoError(t, pgInfra.RunMigrations(cfg, nil))

	ctx := context.Background()
	pool, err := pgInfra.NewPool(ctx, cfg.Database, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE tasks RESTART IDENTITY`)
	require.NoError(t, err)
	return NewTaskRepository(pool), pool
}

func TestTaskRepository_Lifecycle(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Task{
		Title:    "Write report",
		Status:   domain.StatusPending,
		Priority: domain.PriorityMedium,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.Description)
	assert.Nil(t, got.DueDate)

	time.Sleep(10 * time.Millisecond)
	got.Status = domain.StatusCompleted
	require.NoError(t, repo.Update(ctx, got))
	assert.True(t, got.UpdatedAt.After(created.CreatedAt))

	reloaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, reloaded.Status)
	assert.True(t, created.CreatedAt.Equal(reloaded.CreatedAt))

	exists, err := repo.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), domain.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &domain.Task{ID: created.ID, Title: "x", Status: domain.StatusPending, Priority: domain.PriorityLow}), domain.ErrTaskNotFound)
}

func TestTaskRepository_Queries(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()
	past := now.Add(-48 * time.Hour)

	seed := []domain.Task{
		{Title: "Fix 100% bug", Status: domain.StatusPending, Priority: domain.PriorityHigh, DueDate: &past, AssignedTo: "alice"},
		{Title: "Docs", Description: "snake_case guide", Status: domain.StatusInProgress, Priority: domain.PriorityLow},
		{Title: "Done", Status: domain.StatusCompleted, Priority: domain.PriorityHigh, DueDate: &past},
	}
	for i := range seed {
		_, err := repo.Create(ctx, &seed[i])
		require.NoError(t, err)
	}

	overdue, err := repo.FindOverdue(ctx, now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Fix 100% bug", overdue[0].Title)

	pending, err := repo.FindHighPriorityPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	byTitle, err := repo.SearchByTitle(ctx, "100%")
	require.NoError(t, err)
	assert.Len(t, byTitle, 1)

	byDescription, err := repo.SearchByDescription(ctx, "SNAKE_")
	require.NoError(t, err)
	assert.Len(t, byDescription, 1)

	high := domain.PriorityHigh
	alice := "alice"
	criteria, err := repo.FindByCriteria(ctx, repository.TaskFilter{Priority: &high, AssignedTo: &alice})
	require.NoError(t, err)
	assert.Len(t, criteria, 1)

	all, err := repo.FindByCriteria(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	completed, err := repo.CountByStatus(ctx, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), completed)

	dueBefore, err := repo.FindDueBefore(ctx, now)
	require.NoError(t, err)
	assert.Len(t, dueBefore, 2)

	createdAfter, err := repo.FindCreatedAfter(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, createdAfter, 3)
}
