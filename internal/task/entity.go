package task

import (
	"slices"
	"strings"
	"time"
)

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryOthers   Category = "others"
)

var Categories = []Category{CategoryWork, CategoryPersonal, CategoryShopping, CategoryOthers}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank orders priorities high=3, medium=2, low=1. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Attachment is a reference to an uploaded file.
type Attachment struct {
	ID         string    `yaml:"id" json:"id"`
	Name       string    `yaml:"name" json:"name"`
	URL        string    `yaml:"url" json:"url"`
	Type       string    `yaml:"type" json:"type"`
	Size       int64     `yaml:"size" json:"size"`
	UploadedBy string    `yaml:"uploaded_by" json:"uploadedBy"`
	UploadedAt time.Time `yaml:"uploaded_at" json:"uploadedAt"`
}

// CompletionDetails records who finished a task and how. It only exists on
// the Completed state.
type CompletionDetails struct {
	Description string       `yaml:"description" json:"description"`
	Attachments []Attachment `yaml:"attachments" json:"attachments"`
	CompletedAt time.Time    `yaml:"completed_at" json:"completedAt"`
	CompletedBy string       `yaml:"completed_by" json:"completedBy"`
}

type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Category    Category
	Priority    Priority
	State       State
	DueDate     *time.Time
	Labels      []string
	Attachments []Attachment
	TeamID      string
	AssignedTo  []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Task) Status() Status {
	if t.State == nil {
		return StatusActive
	}
	return t.State.Status()
}

// Completed is derived from the state and cannot be set on its own.
func (t *Task) Completed() bool {
	return t.Status() == StatusCompleted
}

func (t *Task) IsDeleted() bool {
	return t.Status() == StatusDeleted
}

// CompletionDetails returns the details of a completed task.
func (t *Task) CompletionDetails() (CompletionDetails, bool) {
	c, ok := t.State.(Completed)
	if !ok {
		return CompletionDetails{}, false
	}
	return c.Details, true
}

func (t *Task) IsAssigned(userID string) bool {
	return slices.Contains(t.AssignedTo, userID)
}

// DetachTeam turns a team task back into a personal one. Assignments only
// exist within a team, so they go too. It reports whether t changed.
func (t *Task) DetachTeam() bool {
	if t.TeamID == "" && len(t.AssignedTo) == 0 {
		return false
	}
	t.TeamID = ""
	t.AssignedTo = nil
	return true
}

// Clone returns a deep copy, so that callers can mutate it freely.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.Labels = slices.Clone(t.Labels)
	c.Attachments = slices.Clone(t.Attachments)
	c.AssignedTo = slices.Clone(t.AssignedTo)
	if done, ok := t.State.(Completed); ok {
		done.Details.Attachments = slices.Clone(done.Details.Attachments)
		c.State = done
	}
	return &c
}

// NormalizeLabels trims, drops empties, de-duplicates and sorts labels.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// NormalizeIDs de-duplicates a set of ids, keeping first-seen order.
func NormalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
