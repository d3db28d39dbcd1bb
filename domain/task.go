package domain

import "time"

// Task is the single persisted business entity of the service.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
	AssignedTo  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplyDefaults fills status and priority when the caller left them empty.
func (t *Task) ApplyDefaults() {
	if t == nil {
		return
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// IsOverdue reports whether the due date passed before reference and the task is still open.
func (t *Task) IsOverdue(reference time.Time) bool {
	if t == nil || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(reference) && !t.IsCompleted()
}

// TaskPatch carries the fields of a partial update. Nil means "leave unchanged".
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	DueDate     *time.Time
	AssignedTo  *string
}

// Apply overwrites every field of t that is present in the patch.
func (p TaskPatch) Apply(t *Task) {
	if t == nil {
		return
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
}

// TaskStatistics is a point-in-time summary of task counts.
type TaskStatistics struct {
	TotalTasks      int64 `json:"totalTasks"`
	PendingTasks    int64 `json:"pendingTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	CompletedTasks  int64 `json:"completedTasks"`
	CancelledTasks  int64 `json:"cancelledTasks"`
}

// Set stores count under the bucket for status.
func (s *TaskStatistics) Set(status TaskStatus, count int64) {
	switch status {
	case StatusPending:
		s.PendingTasks = count
	case StatusInProgress:
		s.InProgressTasks = count
	case StatusCompleted:
		s.CompletedTasks = count
	case StatusCancelled:
		s.CancelledTasks = count
	}
}
