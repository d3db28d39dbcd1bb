package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TaskStatus is stored by enumeration name and rendered by display name.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusCancelled  TaskStatus = "CANCELLED"
)

// TaskStatuses lists every status in declaration order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

var statusDisplay = map[TaskStatus]string{
	StatusPending:    "Pending",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
	StatusCancelled:  "Cancelled",
}

// ParseTaskStatus accepts either the enumeration name ("IN_PROGRESS") or the
// display name ("In Progress"), case-insensitively.
func ParseTaskStatus(value string) (TaskStatus, error) {
	for _, s := range TaskStatuses {
		if matchesEnum(value, string(s), statusDisplay[s]) {
			return s, nil
		}
	}
	return "", NewError(ErrCodeInvalid, fmt.Sprintf("invalid status %q", value))
}

func (s TaskStatus) Valid() bool {
	_, ok := statusDisplay[s]
	return ok
}

// DisplayName returns the wire representation of the status.
func (s TaskStatus) DisplayName() string {
	if name, ok := statusDisplay[s]; ok {
		return name
	}
	return string(s)
}

func (s TaskStatus) String() string {
	return s.DisplayName()
}

func (s TaskStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.DisplayName())
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTaskStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// TaskPriority is stored by enumeration name and rendered by display name.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

var priorityDisplay = map[TaskPriority]string{
	PriorityLow:    "Low",
	PriorityMedium: "Medium",
	PriorityHigh:   "High",
	PriorityUrgent: "Urgent",
}

func ParseTaskPriority(value string) (TaskPriority, error) {
	for _, p := range TaskPriorities {
		if matchesEnum(value, string(p), priorityDisplay[p]) {
			return p, nil
		}
	}
	return "", NewError(ErrCodeInvalid, fmt.Sprintf("invalid priority %q", value))
}

func (p TaskPriority) Valid() bool {
	_, ok := priorityDisplay[p]
	return ok
}

func (p TaskPriority) DisplayName() string {
	if name, ok := priorityDisplay[p]; ok {
		return name
	}
	return string(p)
}

func (p TaskPriority) String() string {
	return p.DisplayName()
}

func (p TaskPriority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.DisplayName())
}

func (p *TaskPriority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTaskPriority(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func matchesEnum(value, name, display string) bool {
	value = strings.TrimSpace(value)
	return strings.EqualFold(value, name) || strings.EqualFold(value, display)
}
