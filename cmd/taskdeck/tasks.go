package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/kazz187/taskdeck/internal/client"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/task"
)

func listTasks(ctx context.Context, c *client.Client) error {
	resp, err := c.ListTasks(ctx, &task.ListTasksRequest{
		Scope:  task.Scope(*tasksListScope),
		TeamID: *tasksListTeam,
		Filter: task.Filter{
			SearchQuery: *tasksListSearch,
			Category:    *tasksListCategory,
			Priority:    *tasksListPriority,
			Status:      task.StatusFilter(*tasksListStatus),
		},
		SortBy:    task.SortKey(*tasksListSort),
		Ascending: *tasksListAsc,
	})
	if err != nil {
		return err
	}
	tasks, err := fromViews(resp.Tasks)
	if err != nil {
		return err
	}
	if err := printTasks(os.Stdout, tasks, time.Now()); err != nil {
		return err
	}
	fmt.Println(faint.Sprintf("%d tasks, %d completed, %d incomplete", resp.Counts.All, resp.Counts.Completed, resp.Counts.Incomplete))
	return nil
}

func fromViews(views []*task.TaskView) ([]*task.Task, error) {
	tasks := make([]*task.Task, 0, len(views))
	for _, v := range views {
		t, err := v.Task()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func showBoard(ctx context.Context, c *client.Client) error {
	resp, err := c.GetBoard(ctx, &task.GetBoardRequest{
		Scope:  task.Scope(*tasksBoardScope),
		TeamID: *tasksBoardTeam,
	})
	if err != nil {
		return err
	}
	now := time.Now()
	for _, col := range resp.Columns {
		heading.Printf("%s (%d)\n", col.Label, len(col.Tasks))
		for _, v := range col.Tasks {
			t, err := v.Task()
			if err != nil {
				return err
			}
			due := task.FormatDueDate(t.DueDate, now)
			if due != "" {
				due = faint.Sprintf(" due %s", due)
			}
			fmt.Printf("  %s %s %s%s\n", faint.Sprint(t.ID), t.Title, priorityColor(t.Priority).Sprintf("[%s]", t.Priority), due)
		}
		fmt.Println()
	}
	return nil
}

func addTask(ctx context.Context, c *client.Client) error {
	req := &task.CreateTaskRequest{
		Title:       *tasksAddTitle,
		Description: *tasksAddDescription,
		Category:    task.Category(*tasksAddCategory),
		Priority:    task.Priority(*tasksAddPriority),
		Labels:      *tasksAddLabels,
		TeamID:      *tasksAddTeam,
		AssignedTo:  *tasksAddAssign,
	}
	if *tasksAddDue != "" {
		due, err := time.ParseInLocation(time.DateOnly, *tasksAddDue, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --due: %w", err)
		}
		req.DueDate = &due
	}
	t, err := c.CreateTask(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", color.GreenString("created"), t.ID)
	return nil
}

func moveTask(ctx context.Context, c *client.Client) error {
	sess, err := session.Peek(*token)
	if err != nil {
		return err
	}
	return move(ctx, c, sess, os.Stdout, moveArgs{
		id:      *tasksMoveID,
		to:      task.Column(*tasksMoveTo),
		note:    *tasksMoveNote,
		confirm: *tasksMoveConfirm,
	})
}

type moveArgs struct {
	id      string
	to      task.Column
	note    string
	confirm bool
}

// move goes through the same optimistic queue as the board, so a move that
// would be rejected locally never reaches the server.
func move(ctx context.Context, c *client.Client, sess *session.Session, w io.Writer, args moveArgs) error {
	current, err := c.GetTask(ctx, args.id)
	if err != nil {
		return err
	}
	store := client.NewStore(sess)
	if err := store.Reset([]*task.TaskView{current}); err != nil {
		return err
	}
	var sendErr error
	q := client.NewQueue(store, c, client.WithErrorHandler(func(_ client.Command, err error) {
		sendErr = err
	}))

	cmd := &client.MoveCommand{
		Move: task.Move{
			TaskID: current.ID,
			From:   task.ColumnFor(current.Status),
			To:     args.to,
		},
		ConfirmDiscard: args.confirm,
	}
	if args.to == task.ColumnCompleted {
		cmd.Completion = &task.CompletionRequest{Description: args.note}
	}
	if err := q.Submit(cmd); err != nil {
		return moveError(err)
	}
	q.Flush(ctx)
	if sendErr != nil {
		return moveError(sendErr)
	}

	resp := cmd.Result
	if !resp.Changed {
		fmt.Fprintln(w, faint.Sprint("already there"))
		return nil
	}
	moved, _ := store.Get(current.ID)
	fmt.Fprintf(w, "%s %s -> %s\n", color.GreenString("moved"), moved.ID, moved.Status().Label())
	for _, a := range resp.DroppedAttachments {
		fmt.Fprintln(w, faint.Sprintf("  dropped attachment %s (%s)", a.Name, a.URL))
	}
	return nil
}

func moveError(err error) error {
	if task.IsConfirmationRequired(err) {
		return fmt.Errorf("%w (rerun with --confirm)", err)
	}
	return err
}

func removeTasks(ctx context.Context, c *client.Client) error {
	resp, err := c.BatchDeleteTasks(ctx, *tasksRmIDs)
	if err != nil {
		return err
	}
	for _, id := range resp.Deleted {
		fmt.Printf("%s %s\n", color.GreenString("deleted"), id)
	}
	for _, f := range resp.Failed {
		fmt.Printf("%s %s: %s\n", color.RedString("failed"), f.ID, f.Message)
	}
	if len(resp.Failed) > 0 {
		return fmt.Errorf("%d of %d tasks could not be deleted", len(resp.Failed), len(*tasksRmIDs))
	}
	return nil
}

func duplicateTask(ctx context.Context, c *client.Client) error {
	t, err := c.DuplicateTask(ctx, *tasksDupID)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s %q\n", color.GreenString("created"), t.ID, t.Title)
	return nil
}
