package task

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const ServiceName = "taskdeck.v1.TaskService"

const (
	CreateTaskProcedure       = "/" + ServiceName + "/CreateTask"
	GetTaskProcedure          = "/" + ServiceName + "/GetTask"
	ListTasksProcedure        = "/" + ServiceName + "/ListTasks"
	GetBoardProcedure         = "/" + ServiceName + "/GetBoard"
	UpdateTaskProcedure       = "/" + ServiceName + "/UpdateTask"
	UpdateTaskStatusProcedure = "/" + ServiceName + "/UpdateTaskStatus"
	MoveTaskProcedure         = "/" + ServiceName + "/MoveTask"
	DeleteTaskProcedure       = "/" + ServiceName + "/DeleteTask"
	BatchDeleteTasksProcedure = "/" + ServiceName + "/BatchDeleteTasks"
	DuplicateTaskProcedure    = "/" + ServiceName + "/DuplicateTask"
)

// TaskView is the wire form of a task. Completed mirrors the status and
// CompletionDetails is only set for completed tasks.
type TaskView struct {
	ID                string             `json:"id"`
	UserID            string             `json:"userId"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Category          Category           `json:"category"`
	Priority          Priority           `json:"priority"`
	Status            Status             `json:"status"`
	Completed         bool               `json:"completed"`
	CompletionDetails *CompletionDetails `json:"completionDetails"`
	DueDate           *time.Time         `json:"dueDate"`
	Labels            []string           `json:"labels"`
	Attachments       []Attachment       `json:"attachments"`
	TeamID            string             `json:"teamId,omitempty"`
	AssignedTo        []string           `json:"assignedTo"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

func ToView(t *Task) *TaskView {
	v := &TaskView{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Priority:    t.Priority,
		Status:      t.Status(),
		Completed:   t.Completed(),
		DueDate:     t.DueDate,
		Labels:      nonNil(t.Labels),
		Attachments: nonNil(t.Attachments),
		TeamID:      t.TeamID,
		AssignedTo:  nonNil(t.AssignedTo),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if details, ok := t.CompletionDetails(); ok {
		v.CompletionDetails = &details
	}
	return v
}

func ToViews(tasks []*Task) []*TaskView {
	views := make([]*TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = ToView(t)
	}
	return views
}

// Task rebuilds the domain task from its wire form.
func (v *TaskView) Task() (*Task, error) {
	st, err := ParseStatus(string(v.Status))
	if err != nil {
		return nil, err
	}
	var state State
	switch st {
	case StatusActive:
		state = Active{}
	case StatusInProgress:
		state = InProgress{}
	case StatusCompleted:
		var details CompletionDetails
		if v.CompletionDetails != nil {
			details = *v.CompletionDetails
		}
		state = Completed{Details: details}
	case StatusDeleted:
		state = Deleted{At: v.UpdatedAt}
	default:
		return nil, fmt.Errorf("unknown status %q", v.Status)
	}
	return &Task{
		ID:          v.ID,
		UserID:      v.UserID,
		Title:       v.Title,
		Description: v.Description,
		Category:    v.Category,
		Priority:    v.Priority,
		State:       state,
		DueDate:     v.DueDate,
		Labels:      slices.Clone(v.Labels),
		Attachments: slices.Clone(v.Attachments),
		TeamID:      v.TeamID,
		AssignedTo:  slices.Clone(v.AssignedTo),
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Scope picks which tasks a listing covers.
type Scope string

const (
	// ScopeOwn lists tasks the caller created.
	ScopeOwn Scope = "own"
	// ScopeTeam lists every task of one team.
	ScopeTeam Scope = "team"
	// ScopeAssigned lists tasks assigned to the caller.
	ScopeAssigned Scope = "assigned"
	// ScopeAll combines the three above across all of the caller's teams.
	ScopeAll Scope = "all"
)

type CreateTaskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    Category     `json:"category"`
	Priority    Priority     `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Labels      []string     `json:"labels,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	TeamID      string       `json:"teamId,omitempty"`
	AssignedTo  []string     `json:"assignedTo,omitempty"`
}

type CreateTaskResponse struct {
	Task *TaskView `json:"task"`
}

type GetTaskRequest struct {
	ID string `json:"id"`
}

type GetTaskResponse struct {
	Task *TaskView `json:"task"`
}

type ListTasksRequest struct {
	Scope     Scope   `json:"scope,omitempty"`
	TeamID    string  `json:"teamId,omitempty"`
	Filter    Filter  `json:"filter"`
	SortBy    SortKey `json:"sortBy,omitempty"`
	Ascending bool    `json:"ascending,omitempty"`
	Limit     int     `json:"limit,omitempty"`
	Offset    int     `json:"offset,omitempty"`
}

type ListTasksResponse struct {
	Tasks  []*TaskView `json:"tasks"`
	Counts Counts      `json:"counts"`
	Total  int         `json:"total"`
}

type GetBoardRequest struct {
	Scope  Scope  `json:"scope,omitempty"`
	TeamID string `json:"teamId,omitempty"`
	Filter Filter `json:"filter"`
}

type BoardColumnView struct {
	Column Column      `json:"column"`
	Label  string      `json:"label"`
	Tasks  []*TaskView `json:"tasks"`
}

type GetBoardResponse struct {
	Columns []BoardColumnView `json:"columns"`
}

// UpdateTaskRequest is a partial update; nil fields are left alone.
type UpdateTaskRequest struct {
	ID           string        `json:"id"`
	Title        *string       `json:"title,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Category     *Category     `json:"category,omitempty"`
	Priority     *Priority     `json:"priority,omitempty"`
	DueDate      *time.Time    `json:"dueDate,omitempty"`
	ClearDueDate bool          `json:"clearDueDate,omitempty"`
	Labels       *[]string     `json:"labels,omitempty"`
	Attachments  *[]Attachment `json:"attachments,omitempty"`
	TeamID       *string       `json:"teamId,omitempty"`
	AssignedTo   *[]string     `json:"assignedTo,omitempty"`
}

// ApplyFields copies the set content fields onto t. Team and assignee
// changes need authorization and are left to the caller.
func (m *UpdateTaskRequest) ApplyFields(t *Task) {
	if m.Title != nil {
		t.Title = strings.TrimSpace(*m.Title)
	}
	if m.Description != nil {
		t.Description = *m.Description
	}
	if m.Category != nil {
		t.Category = *m.Category
	}
	if m.Priority != nil {
		t.Priority = *m.Priority
	}
	if m.ClearDueDate {
		t.DueDate = nil
	} else if m.DueDate != nil {
		d := *m.DueDate
		t.DueDate = &d
	}
	if m.Labels != nil {
		t.Labels = NormalizeLabels(*m.Labels)
	}
	if m.Attachments != nil {
		t.Attachments = slices.Clone(*m.Attachments)
	}
}

type UpdateTaskResponse struct {
	Task *TaskView `json:"task"`
}

type CompletionRequest struct {
	Description string       `json:"description"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type UpdateTaskStatusRequest struct {
	ID             string             `json:"id"`
	Status         string             `json:"status"`
	Completion     *CompletionRequest `json:"completion,omitempty"`
	ConfirmDiscard bool               `json:"confirmDiscard,omitempty"`
}

type UpdateTaskStatusResponse struct {
	Task               *TaskView    `json:"task"`
	Changed            bool         `json:"changed"`
	DroppedAttachments []Attachment `json:"droppedAttachments,omitempty"`
}

type MoveTaskRequest struct {
	Move           Move               `json:"move"`
	Completion     *CompletionRequest `json:"completion,omitempty"`
	ConfirmDiscard bool               `json:"confirmDiscard,omitempty"`
}

type MoveTaskResponse = UpdateTaskStatusResponse

type DeleteTaskRequest struct {
	ID string `json:"id"`
}

type DeleteTaskResponse struct{}

type BatchDeleteTasksRequest struct {
	IDs []string `json:"ids"`
}

type BatchFailure struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BatchDeleteTasksResponse struct {
	Deleted []string       `json:"deleted"`
	Failed  []BatchFailure `json:"failed,omitempty"`
}

type DuplicateTaskRequest struct {
	ID string `json:"id"`
}

type DuplicateTaskResponse struct {
	Task *TaskView `json:"task"`
}

func (r *CompletionRequest) input() *CompletionInput {
	if r == nil {
		return nil
	}
	return &CompletionInput{Description: r.Description, Attachments: r.Attachments}
}
