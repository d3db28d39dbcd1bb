package transport

import (
	"encoding/json"

	"github.com/fastygo/taskmanager/domain"
)

// Envelope wraps error payloads. Successful responses are written bare so
// existing clients keep reading tasks at the top level.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// TaskResponse is the wire form of a task. Optional fields render as null.
type TaskResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	CreatedAt   DateTime            `json:"createdAt"`
	UpdatedAt   DateTime            `json:"updatedAt"`
	DueDate     *DateTime           `json:"dueDate"`
	AssignedTo  *string             `json:"assignedTo"`
}

func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: optional(task.Description),
		Status:      task.Status,
		Priority:    task.Priority,
		CreatedAt:   NewDateTime(task.CreatedAt),
		UpdatedAt:   NewDateTime(task.UpdatedAt),
		DueDate:     NewDateTimePtr(task.DueDate),
		AssignedTo:  optional(task.AssignedTo),
	}
}

// NewTaskListResponse never returns nil so empty results encode as [].
func NewTaskListResponse(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskResponse(&tasks[i]))
	}
	return out
}

type JournalEntryResponse struct {
	ID         string               `json:"id"`
	TaskID     int64                `json:"taskId"`
	Operation  string               `json:"operation"`
	Title      *string              `json:"title"`
	Status     *domain.TaskStatus   `json:"status"`
	Priority   *domain.TaskPriority `json:"priority"`
	RecordedAt DateTime             `json:"recordedAt"`
}

func NewJournalResponse(entries []domain.JournalEntry) []JournalEntryResponse {
	out := make([]JournalEntryResponse, 0, len(entries))
	for _, e := range entries {
		item := JournalEntryResponse{
			ID:         e.ID,
			TaskID:     e.TaskID,
			Operation:  e.Operation,
			Title:      optional(e.Title),
			RecordedAt: NewDateTime(e.RecordedAt),
		}
		if e.Status != "" {
			status := e.Status
			item.Status = &status
		}
		if e.Priority != "" {
			priority := e.Priority
			item.Priority = &priority
		}
		out = append(out, item)
	}
	return out
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
