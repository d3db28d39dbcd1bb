package domain

import "time"

// Journal operations recorded after successful mutations.
const (
	OperationCreate   = "create"
	OperationUpdate   = "update"
	OperationComplete = "complete"
	OperationDelete   = "delete"
)

// JournalEntry is one recorded change to a task.
type JournalEntry struct {
	ID         string       `json:"id"`
	TaskID     int64        `json:"taskId"`
	Operation  string       `json:"operation"`
	Title      string       `json:"title,omitempty"`
	Status     TaskStatus   `json:"status,omitempty"`
	Priority   TaskPriority `json:"priority,omitempty"`
	RecordedAt time.Time    `json:"recordedAt"`
}

// NewJournalEntry snapshots task for the given operation.
func NewJournalEntry(operation string, task *Task) JournalEntry {
	entry := JournalEntry{Operation: operation}
	if task != nil {
		entry.TaskID = task.ID
		entry.Title = task.Title
		entry.Status = task.Status
		entry.Priority = task.Priority
	}
	return entry
}
