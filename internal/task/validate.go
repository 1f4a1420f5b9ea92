package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/kazz187/taskdeck/pkg/cerr"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 500
)

// StartOfDay truncates now to local midnight.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// Validate checks the editable fields. prev is the stored version (nil on
// create); the due date is only checked when it is being set or changed,
// so an old past date does not block unrelated edits.
func (t *Task) Validate(prev *Task, now time.Time) error {
	e := cerr.NewError(cerr.InvalidArgument, "invalid task", nil)

	title := strings.TrimSpace(t.Title)
	switch {
	case title == "":
		e.AddDetailMessageWithCode("title is required", "title.required")
	case len([]rune(title)) > maxTitleLength:
		e.AddDetailMessageWithCode(fmt.Sprintf("title must be at most %d characters", maxTitleLength), "title.max_len")
	}
	if len([]rune(t.Description)) > maxDescriptionLength {
		e.AddDetailMessageWithCode(fmt.Sprintf("description must be at most %d characters", maxDescriptionLength), "description.max_len")
	}
	if !t.Category.Valid() {
		e.AddDetailMessageWithCode(fmt.Sprintf("unknown category %q", t.Category), "category.in")
	}
	if !t.Priority.Valid() {
		e.AddDetailMessageWithCode(fmt.Sprintf("unknown priority %q", t.Priority), "priority.in")
	}
	if t.DueDate != nil && dueDateChanged(prev, t) && t.DueDate.Before(StartOfDay(now)) {
		e.AddDetailMessageWithCode("due date cannot be in the past", "dueDate.not_past")
	}
	if len(t.Attachments) > maxAttachments {
		e.AddDetailMessageWithCode(fmt.Sprintf("at most %d attachments are allowed", maxAttachments), "attachments.max_items")
	}
	if t.TeamID == "" && len(t.AssignedTo) > 0 {
		e.AddDetailMessageWithCode("only team tasks can be assigned", "assignedTo.team_required")
	}

	if len(e.Details) > 0 {
		return e
	}
	return nil
}

func dueDateChanged(prev, next *Task) bool {
	if prev == nil || prev.DueDate == nil {
		return true
	}
	return !prev.DueDate.Equal(*next.DueDate)
}
