package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskStatus_AcceptsNameAndDisplay(t *testing.T) {
	cases := map[string]TaskStatus{
		"PENDING":     StatusPending,
		"pending":     StatusPending,
		"In Progress": StatusInProgress,
		"in_progress": StatusInProgress,
		" Completed ": StatusCompleted,
		"CANCELLED":   StatusCancelled,
	}
	for input, want := range cases {
		got, err := ParseTaskStatus(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseTaskStatus("Done")
	require.Error(t, err)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
}

func TestParseTaskPriority(t *testing.T) {
	got, err := ParseTaskPriority("urgent")
	require.NoError(t, err)
	assert.Equal(t, PriorityUrgent, got)

	_, err = ParseTaskPriority("")
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
}

func TestEnums_JSONUsesDisplayNames(t *testing.T) {
	out, err := json.Marshal(struct {
		Status   TaskStatus   `json:"status"`
		Priority TaskPriority `json:"priority"`
	}{StatusInProgress, PriorityHigh})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"In Progress","priority":"High"}`, string(out))

	var decoded struct {
		Status   TaskStatus   `json:"status"`
		Priority TaskPriority `json:"priority"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"IN_PROGRESS","priority":"Low"}`), &decoded))
	assert.Equal(t, StatusInProgress, decoded.Status)
	assert.Equal(t, PriorityLow, decoded.Priority)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"Started"}`), &decoded))
}

func TestTask_ApplyDefaults(t *testing.T) {
	task := &Task{Title: "Write report"}
	task.ApplyDefaults()
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)

	explicit := &Task{Title: "Ship", Status: StatusInProgress, Priority: PriorityUrgent}
	explicit.ApplyDefaults()
	assert.Equal(t, StatusInProgress, explicit.Status)
	assert.Equal(t, PriorityUrgent, explicit.Priority)
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Task{Status: StatusPending, DueDate: &past}).IsOverdue(now))
	assert.True(t, (&Task{Status: StatusCancelled, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusCompleted, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusPending, DueDate: &future}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusPending}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusPending, DueDate: &now}).IsOverdue(now))
}

func TestTaskPatch_ApplyOnlyPresentFields(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	task := &Task{
		ID:          7,
		Title:       "Old",
		Description: "keep me",
		Status:      StatusPending,
		Priority:    PriorityLow,
		DueDate:     &due,
		AssignedTo:  "alice",
	}

	title := "New"
	TaskPatch{Title: &title}.Apply(task)

	assert.Equal(t, "New", task.Title)
	assert.Equal(t, "keep me", task.Description)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.Equal(t, due, *task.DueDate)
	assert.Equal(t, "alice", task.AssignedTo)

	status := StatusCancelled
	empty := ""
	TaskPatch{Status: &status, AssignedTo: &empty}.Apply(task)
	assert.Equal(t, StatusCancelled, task.Status)
	assert.Equal(t, "", task.AssignedTo)
}

func TestTaskStatistics_Set(t *testing.T) {
	var stats TaskStatistics
	stats.Set(StatusPending, 3)
	stats.Set(StatusInProgress, 2)
	stats.Set(StatusCompleted, 1)
	stats.Set(StatusCancelled, 4)
	assert.Equal(t, TaskStatistics{PendingTasks: 3, InProgressTasks: 2, CompletedTasks: 1, CancelledTasks: 4}, stats)
}

func TestErrors_NotFoundClassification(t *testing.T) {
	err := TaskNotFound(42)
	assert.True(t, errors.Is(err, ErrTaskNotFound))
	assert.True(t, IsDomainError(err, ErrCodeNotFound))
	assert.False(t, IsDomainError(err, ErrCodeInvalid))
	assert.Contains(t, err.Error(), "42")

	wrapped := WrapError(ErrCodeInvalid, "validation failed", errors.New("title: notblank"))
	assert.Equal(t, "validation failed: title: notblank", wrapped.Error())
	assert.False(t, IsDomainError(errors.New("boom"), ErrCodeInternal))
}
