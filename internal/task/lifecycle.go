package task

import (
	"fmt"
	"slices"
	"time"

	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/pkg/cerr"
)

const (
	maxCompletionDescriptionLength = 500
	maxAttachments                 = 5

	// RuleConfirmDiscard marks the error returned when leaving the completed
	// state without confirmation.
	RuleConfirmDiscard = "confirm_discard"
)

// CompletionInput is what the caller supplies when completing a task. The
// completion time and actor come from the clock and the session.
type CompletionInput struct {
	Description string
	Attachments []Attachment
}

type TransitionOptions struct {
	Completion *CompletionInput
	// ConfirmDiscard acknowledges that leaving the completed state drops the
	// completion details.
	ConfirmDiscard bool
}

type TransitionResult struct {
	Changed bool
	From    Status
	To      Status
	// Dropped lists completion attachments removed from the task. The files
	// themselves are left in storage.
	Dropped []Attachment
}

func ErrConfirmationRequired() error {
	return cerr.NewError(cerr.FailedPrecondition,
		"moving a completed task discards its completion details; confirm to continue", nil).
		AddDetailMessageWithCode("confirmation required", RuleConfirmDiscard)
}

// IsConfirmationRequired recognizes ErrConfirmationRequired on either side of
// the wire.
func IsConfirmationRequired(err error) bool {
	if cerr.CodeOf(err) != cerr.FailedPrecondition {
		return false
	}
	return slices.ContainsFunc(cerr.Violations(err), func(v cerr.Violation) bool {
		return v.RuleID == RuleConfirmDiscard
	})
}

// TransitionTo moves the task to status `to`. On error the task is left
// untouched. A transition to the current status is a no-op.
func (t *Task) TransitionTo(to Status, sess *session.Session, opts TransitionOptions, now time.Time) (TransitionResult, error) {
	if to == StatusTodo {
		to = StatusActive
	}
	from := t.Status()
	res := TransitionResult{From: from, To: to}

	switch to {
	case StatusActive, StatusInProgress, StatusCompleted:
	case StatusDeleted:
		return res, cerr.NewError(cerr.InvalidArgument, "use delete to remove a task", nil)
	default:
		return res, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown status %q", to), nil)
	}
	if from == StatusDeleted {
		return res, cerr.NewError(cerr.FailedPrecondition, "task has been deleted", nil)
	}
	if from == to {
		return res, nil
	}

	var next State
	switch to {
	case StatusActive:
		next = Active{}
	case StatusInProgress:
		next = InProgress{}
	case StatusCompleted:
		if sess == nil || sess.UserID == "" {
			return res, session.ErrUnauthenticated()
		}
		var in CompletionInput
		if opts.Completion != nil {
			in = *opts.Completion
		}
		if err := validateCompletion(in); err != nil {
			return res, err
		}
		next = Completed{Details: CompletionDetails{
			Description: in.Description,
			Attachments: slices.Clone(in.Attachments),
			CompletedAt: now,
			CompletedBy: sess.UserID,
		}}
	}

	if done, ok := t.State.(Completed); ok {
		if !opts.ConfirmDiscard {
			return res, ErrConfirmationRequired()
		}
		res.Dropped = done.Details.Attachments
	}

	t.State = next
	t.UpdatedAt = now
	res.Changed = true
	return res, nil
}

// SoftDelete marks the task deleted. There is no way back. Deleting an
// already deleted task reports false.
func (t *Task) SoftDelete(now time.Time) bool {
	if t.IsDeleted() {
		return false
	}
	t.State = Deleted{At: now}
	t.UpdatedAt = now
	return true
}

func validateCompletion(in CompletionInput) error {
	e := cerr.NewError(cerr.InvalidArgument, "invalid completion details", nil)
	if len([]rune(in.Description)) > maxCompletionDescriptionLength {
		e.AddDetailMessageWithCode(
			fmt.Sprintf("completion notes must be at most %d characters", maxCompletionDescriptionLength),
			"completion.description.max_len")
	}
	if len(in.Attachments) > maxAttachments {
		e.AddDetailMessageWithCode(
			fmt.Sprintf("at most %d completion attachments are allowed", maxAttachments),
			"completion.attachments.max_items")
	}
	if len(e.Details) > 0 {
		return e
	}
	return nil
}
