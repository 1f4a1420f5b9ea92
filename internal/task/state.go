package task

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusInProgress Status = "inProgress"
	StatusCompleted  Status = "completed"
	StatusDeleted    Status = "deleted"

	// StatusTodo is the legacy spelling of StatusActive. It is accepted on
	// input and never written.
	StatusTodo Status = "todo"
)

// ParseStatus accepts the canonical names plus the todo alias, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "todo":
		return StatusActive, nil
	case "inprogress", "in_progress", "in-progress":
		return StatusInProgress, nil
	case "completed", "done":
		return StatusCompleted, nil
	case "deleted":
		return StatusDeleted, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Label is the human readable name used by every view.
func (s Status) Label() string {
	switch s {
	case StatusActive, StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusDeleted:
		return "Deleted"
	default:
		return string(s)
	}
}

// State is the lifecycle position of a task. Only Completed carries data.
type State interface {
	Status() Status
	isState()
}

type Active struct{}

type InProgress struct{}

type Completed struct {
	Details CompletionDetails
}

type Deleted struct {
	At time.Time
}

func (Active) Status() Status     { return StatusActive }
func (InProgress) Status() Status { return StatusInProgress }
func (Completed) Status() Status  { return StatusCompleted }
func (Deleted) Status() Status    { return StatusDeleted }

func (Active) isState()     {}
func (InProgress) isState() {}
func (Completed) isState()  {}
func (Deleted) isState()    {}
