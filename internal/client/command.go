package client

import (
	"context"
	"time"

	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/task"
	"github.com/kazz187/taskdeck/pkg/cerr"
)

// TaskAPI is the part of the task service the queue sends commands to.
// *Client implements it.
type TaskAPI interface {
	MoveTask(ctx context.Context, req *task.MoveTaskRequest) (*task.MoveTaskResponse, error)
	UpdateTask(ctx context.Context, req *task.UpdateTaskRequest) (*task.UpdateTaskResponse, error)
	DeleteTask(ctx context.Context, req *task.DeleteTaskRequest) (*task.DeleteTaskResponse, error)
}

// Command is an edit applied locally before the server confirms it.
type Command interface {
	TaskID() string
	// Apply performs the edit on t. It runs against a copy, so t may be
	// left half-modified when an error is returned.
	Apply(t *task.Task, sess *session.Session, now time.Time) error
	// Send performs the edit on the server. A nil view means the server
	// returned no task and the local result is kept.
	Send(ctx context.Context, api TaskAPI) (*task.TaskView, error)
}

// MoveCommand is a board drag and drop.
type MoveCommand struct {
	Move           task.Move
	Completion     *task.CompletionRequest
	ConfirmDiscard bool

	// Result is the server's answer, set once the command was sent.
	Result *task.MoveTaskResponse
}

func (c *MoveCommand) TaskID() string { return c.Move.TaskID }

func (c *MoveCommand) Apply(t *task.Task, sess *session.Session, now time.Time) error {
	to, ok := c.Move.Transition()
	if !ok {
		return nil
	}
	opts := task.TransitionOptions{ConfirmDiscard: c.ConfirmDiscard}
	if c.Completion != nil {
		opts.Completion = &task.CompletionInput{
			Description: c.Completion.Description,
			Attachments: c.Completion.Attachments,
		}
	}
	_, err := t.TransitionTo(to, sess, opts, now)
	return err
}

func (c *MoveCommand) Send(ctx context.Context, api TaskAPI) (*task.TaskView, error) {
	resp, err := api.MoveTask(ctx, &task.MoveTaskRequest{
		Move:           c.Move,
		Completion:     c.Completion,
		ConfirmDiscard: c.ConfirmDiscard,
	})
	if err != nil {
		return nil, err
	}
	c.Result = resp
	return resp.Task, nil
}

// EditCommand is a partial field update.
type EditCommand struct {
	Update task.UpdateTaskRequest
}

func (c *EditCommand) TaskID() string { return c.Update.ID }

func (c *EditCommand) Apply(t *task.Task, _ *session.Session, now time.Time) error {
	if t.IsDeleted() {
		return cerr.NewError(cerr.FailedPrecondition, "task has been deleted", nil)
	}
	prev := t.Clone()
	c.Update.ApplyFields(t)
	if c.Update.TeamID != nil {
		t.TeamID = *c.Update.TeamID
	}
	if c.Update.AssignedTo != nil {
		t.AssignedTo = task.NormalizeIDs(*c.Update.AssignedTo)
	}
	if err := t.Validate(prev, now); err != nil {
		return err
	}
	t.UpdatedAt = now
	return nil
}

func (c *EditCommand) Send(ctx context.Context, api TaskAPI) (*task.TaskView, error) {
	resp, err := api.UpdateTask(ctx, &c.Update)
	if err != nil {
		return nil, err
	}
	return resp.Task, nil
}

type DeleteCommand struct {
	ID string
}

func (c *DeleteCommand) TaskID() string { return c.ID }

func (c *DeleteCommand) Apply(t *task.Task, _ *session.Session, now time.Time) error {
	if !t.SoftDelete(now) {
		return cerr.NewError(cerr.FailedPrecondition, "task has been deleted", nil)
	}
	return nil
}

func (c *DeleteCommand) Send(ctx context.Context, api TaskAPI) (*task.TaskView, error) {
	_, err := api.DeleteTask(ctx, &task.DeleteTaskRequest{ID: c.ID})
	return nil, err
}
