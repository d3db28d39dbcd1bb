package transport

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskmanager/domain"
)

func TestParseDateTime(t *testing.T) {
	parsed, err := ParseDateTime("2024-03-01 14:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 14, 30, 0, 0, time.Local), parsed)

	parsed, err = ParseDateTime("2024-03-01T14:30:00Z")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)))

	_, err = ParseDateTime("01/03/2024")
	assert.Error(t, err)
}

func TestDateTime_JSON(t *testing.T) {
	dt := NewDateTime(time.Date(2024, 3, 1, 14, 30, 5, 999, time.Local))
	out, err := json.Marshal(dt)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01 14:30:05"`, string(out))

	var holder struct {
		Due *DateTime `json:"due"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":null}`), &holder))
	assert.Nil(t, holder.Due)

	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-12-31 23:59:59"}`), &holder))
	require.NotNil(t, holder.Due)
	assert.Equal(t, 2024, holder.Due.Year())
	assert.Equal(t, 59, holder.Due.Second())
}

func TestNewTaskResponse_OptionalFieldsAreNull(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	resp := NewTaskResponse(&domain.Task{
		ID:        1,
		Title:     "Write report",
		Status:    domain.StatusPending,
		Priority:  domain.PriorityMedium,
		CreatedAt: created,
		UpdatedAt: created,
	})

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1,
		"title": "Write report",
		"description": null,
		"status": "Pending",
		"priority": "Medium",
		"createdAt": "2024-01-02 03:04:05",
		"updatedAt": "2024-01-02 03:04:05",
		"dueDate": null,
		"assignedTo": null
	}`, string(out))
}

func TestNewTaskListResponse_EmptyIsArray(t *testing.T) {
	out, err := json.Marshal(NewTaskListResponse(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestCreateTaskRequest_ToTask(t *testing.T) {
	var req CreateTaskRequest
	require.NoError(t, DecodeJSON([]byte(`{
		"title": "Deploy",
		"status": "In Progress",
		"dueDate": "2024-06-01 09:00:00",
		"assignedTo": "bob"
	}`), &req))

	task := req.ToTask()
	assert.Equal(t, "Deploy", task.Title)
	assert.Equal(t, domain.StatusInProgress, task.Status)
	assert.Equal(t, domain.TaskPriority(""), task.Priority)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.June, task.DueDate.Month())
	assert.Equal(t, "bob", task.AssignedTo)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	var req CreateTaskRequest
	err := DecodeJSON(nil, &req)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	err = DecodeJSON([]byte(`{"title":`), &req)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	err = DecodeJSON([]byte(`{"title":"x","priority":"Critical"}`), &req)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestValidator_Create(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.ValidateCreate(CreateTaskRequest{Title: "ok"}))

	err := v.ValidateCreate(CreateTaskRequest{
		Title:       "   ",
		Description: strings.Repeat("d", 501),
		AssignedTo:  strings.Repeat("a", 101),
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	fields := map[string]string{}
	for _, violation := range vErr.Violations {
		fields[violation.Field] = violation.Rule
	}
	assert.Equal(t, map[string]string{
		"title":       "notblank",
		"description": "max",
		"assignedTo":  "max",
	}, fields)

	err = v.ValidateCreate(CreateTaskRequest{Title: strings.Repeat("t", 101)})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []FieldViolation{{Field: "title", Rule: "max", Param: "100"}}, vErr.Violations)
}

func TestValidator_UpdateChecksOnlyPresentFields(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.ValidateUpdate(UpdateTaskRequest{}))

	blank := ""
	err := v.ValidateUpdate(UpdateTaskRequest{Title: &blank})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "title", vErr.Violations[0].Field)

	long := strings.Repeat("x", 501)
	err = v.ValidateUpdate(UpdateTaskRequest{Description: &long})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []FieldViolation{{Field: "description", Rule: "max", Param: "500"}}, vErr.Violations)
}

func TestUpdateTaskRequest_NullMeansUnchanged(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, DecodeJSON([]byte(`{"title":"Renamed","description":null}`), &req))
	patch := req.ToPatch()
	require.NotNil(t, patch.Title)
	assert.Equal(t, "Renamed", *patch.Title)
	assert.Nil(t, patch.Description)
	assert.Nil(t, patch.DueDate)
}
