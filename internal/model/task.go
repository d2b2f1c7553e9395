package model

import (
	"fmt"
	"strings"
)

// Priority of a task as the server spells it.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Status of a task as the server spells it.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Next returns the status the toggle control moves to.
// Pending -> In Progress -> Completed -> Pending. Unknown values restart at Pending.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// Task is the client-side projection of a server task.
type Task struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	ProjectID   string   `json:"projectId,omitempty"`
}

// NewTask is the body sent when creating a task.
type NewTask struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status,omitempty"`
	ProjectID   string   `json:"projectId"`
}

// IncompleteCount is the number of tasks not yet Completed.
func IncompleteCount(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if t.Status != StatusCompleted {
			n++
		}
	}
	return n
}

// WithStatus returns a copy of tasks where the task with id has its status
// replaced. All other fields and the order are kept.
func WithStatus(tasks []Task, id string, status Status) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if t.ID == id {
			t.Status = status
		}
		out[i] = t
	}
	return out
}

// Without returns a copy of tasks with every task matching id removed.
func Without(tasks []Task, id string) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the task with id.
func Find(tasks []Task, id string) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// ParsePriority accepts a priority in any case.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q (want High, Medium or Low)", s)
}

// ParseStatus accepts a status in any case; "in-progress" and "inprogress" also work.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	switch norm {
	case "pending":
		return StatusPending, nil
	case "in progress", "inprogress":
		return StatusInProgress, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown status %q (want Pending, In Progress or Completed)", s)
}
