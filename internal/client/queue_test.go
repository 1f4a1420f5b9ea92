package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/task"
	"github.com/kazz187/taskdeck/pkg/cerr"
)

// fakeAPI plays the server. Calls wait on gate when it is set, so tests can
// look at the optimistic state before the answer arrives.
type fakeAPI struct {
	mu       sync.Mutex
	gate     chan struct{}
	tasks    map[string]*task.Task
	failMove bool
	calls    []string
}

func (f *fakeAPI) wait(name string) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) MoveTask(_ context.Context, req *task.MoveTaskRequest) (*task.MoveTaskResponse, error) {
	f.wait("move")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMove {
		return nil, cerr.NewError(cerr.PermissionDenied, "not allowed", nil)
	}
	t := f.tasks[req.Move.TaskID]
	to, _ := req.Move.Transition()
	if _, err := t.TransitionTo(to, &session.Session{UserID: "alice"}, task.TransitionOptions{}, time.Now()); err != nil {
		return nil, err
	}
	return &task.MoveTaskResponse{Task: task.ToView(t), Changed: true}, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, req *task.UpdateTaskRequest) (*task.UpdateTaskResponse, error) {
	f.wait("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tasks[req.ID]
	req.ApplyFields(t)
	return &task.UpdateTaskResponse{Task: task.ToView(t)}, nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, req *task.DeleteTaskRequest) (*task.DeleteTaskResponse, error) {
	f.wait("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[req.ID].SoftDelete(time.Now())
	return &task.DeleteTaskResponse{}, nil
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func seedTasks() []*task.Task {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []*task.Task{
		{ID: "a", UserID: "alice", Title: "Write report", Category: task.CategoryWork, Priority: task.PriorityHigh, State: task.Active{}, CreatedAt: created},
		{ID: "b", UserID: "alice", Title: "Buy milk", Category: task.CategoryShopping, Priority: task.PriorityLow, State: task.Completed{Details: task.CompletionDetails{CompletedBy: "alice"}}, CreatedAt: created.Add(time.Hour)},
	}
}

func newQueueFixture(t *testing.T, gated bool) (*Store, *Queue, *fakeAPI, *[]error) {
	t.Helper()
	seed := seedTasks()
	api := &fakeAPI{tasks: map[string]*task.Task{}}
	if gated {
		api.gate = make(chan struct{})
	}
	views := make([]*task.TaskView, len(seed))
	for i, tk := range seed {
		api.tasks[tk.ID] = tk.Clone()
		views[i] = task.ToView(tk)
	}

	store := NewStore(&session.Session{UserID: "alice"})
	require.NoError(t, store.Reset(views))

	var mu sync.Mutex
	var errs []error
	q := NewQueue(store, api, WithErrorHandler(func(_ Command, err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		if api.gate != nil {
			close(api.gate)
		}
		<-done
	})
	return store, q, api, &errs
}

func waitIdle(t *testing.T, store *Store) {
	t.Helper()
	require.Eventually(t, func() bool { return store.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func statusOf(t *testing.T, store *Store, id string) task.Status {
	t.Helper()
	tk, ok := store.Get(id)
	require.True(t, ok)
	return tk.Status()
}

func TestQueue_OptimisticMove(t *testing.T) {
	store, q, api, errs := newQueueFixture(t, true)

	require.NoError(t, q.Submit(&MoveCommand{Move: task.Move{TaskID: "a", From: task.ColumnTodo, To: task.ColumnInProgress}}))
	assert.Equal(t, task.StatusInProgress, statusOf(t, store, "a"))
	assert.Equal(t, 1, store.Pending())
	assert.Equal(t, 0, api.callCount())

	api.gate <- struct{}{}
	waitIdle(t, store)
	assert.Equal(t, task.StatusInProgress, statusOf(t, store, "a"))
	assert.Empty(t, *errs)
}

func TestQueue_RollbackKeepsLaterCommands(t *testing.T) {
	store, q, api, errs := newQueueFixture(t, true)
	api.failMove = true

	title := "Write the report"
	require.NoError(t, q.Submit(&MoveCommand{Move: task.Move{TaskID: "a", From: task.ColumnTodo, To: task.ColumnInProgress}}))
	require.NoError(t, q.Submit(&EditCommand{Update: task.UpdateTaskRequest{ID: "a", Title: &title}}))

	tk, _ := store.Get("a")
	assert.Equal(t, task.StatusInProgress, tk.Status())
	assert.Equal(t, title, tk.Title)

	// the move is rejected; the edit is still pending and stays visible
	api.gate <- struct{}{}
	require.Eventually(t, func() bool { return store.Pending() == 1 }, time.Second, 5*time.Millisecond)
	tk, _ = store.Get("a")
	assert.Equal(t, task.StatusActive, tk.Status())
	assert.Equal(t, title, tk.Title)

	api.gate <- struct{}{}
	waitIdle(t, store)
	tk, _ = store.Get("a")
	assert.Equal(t, task.StatusActive, tk.Status())
	assert.Equal(t, title, tk.Title)

	require.Len(t, *errs, 1)
	assert.Equal(t, cerr.PermissionDenied, cerr.CodeOf((*errs)[0]))
}

func TestQueue_LocalRejection(t *testing.T) {
	store, q, api, _ := newQueueFixture(t, false)

	empty := "  "
	err := q.Submit(&EditCommand{Update: task.UpdateTaskRequest{ID: "a", Title: &empty}})
	assert.Equal(t, cerr.InvalidArgument, cerr.CodeOf(err))

	err = q.Submit(&DeleteCommand{ID: "missing"})
	assert.Equal(t, cerr.NotFound, cerr.CodeOf(err))

	// leaving completed needs confirmation
	err = q.Submit(&MoveCommand{Move: task.Move{TaskID: "b", From: task.ColumnCompleted, To: task.ColumnTodo}})
	assert.True(t, task.IsConfirmationRequired(err))
	assert.Equal(t, task.StatusCompleted, statusOf(t, store, "b"))

	assert.Equal(t, 0, store.Pending())
	assert.Equal(t, 0, api.callCount())
}

func TestQueue_Delete(t *testing.T) {
	store, q, _, _ := newQueueFixture(t, false)

	require.NoError(t, q.Submit(&DeleteCommand{ID: "b"}))
	waitIdle(t, store)

	assert.Equal(t, task.StatusDeleted, statusOf(t, store, "b"))
	board := store.Board()
	assert.Empty(t, board.Column(task.ColumnCompleted))
	require.Len(t, board.Column(task.ColumnTodo), 1)
	assert.Equal(t, "a", board.Column(task.ColumnTodo)[0].ID)

	err := q.Submit(&DeleteCommand{ID: "b"})
	assert.Equal(t, cerr.FailedPrecondition, cerr.CodeOf(err))
}

func TestStore_TasksNewestFirst(t *testing.T) {
	store, _, _, _ := newQueueFixture(t, false)
	tasks := store.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "b", tasks[0].ID)
	assert.Equal(t, "a", tasks[1].ID)
}

func TestQueue_Flush(t *testing.T) {
	api := &fakeAPI{tasks: map[string]*task.Task{}}
	views := []*task.TaskView{}
	for _, tk := range seedTasks() {
		api.tasks[tk.ID] = tk.Clone()
		views = append(views, task.ToView(tk))
	}
	store := NewStore(&session.Session{UserID: "alice"})
	require.NoError(t, store.Reset(views))
	q := NewQueue(store, api)

	cmd := &MoveCommand{Move: task.Move{TaskID: "a", From: task.ColumnTodo, To: task.ColumnInProgress}}
	require.NoError(t, q.Submit(cmd))
	assert.Nil(t, cmd.Result)

	q.Flush(context.Background())
	assert.Equal(t, 0, store.Pending())
	require.NotNil(t, cmd.Result)
	assert.True(t, cmd.Result.Changed)
	assert.Equal(t, task.StatusInProgress, statusOf(t, store, "a"))

	// nothing queued
	q.Flush(context.Background())
	assert.Equal(t, 1, api.callCount())
}
