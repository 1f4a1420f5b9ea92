package task_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/task"
	taskrepo "github.com/kazz187/taskdeck/internal/task/repositoryimpl"
	"github.com/kazz187/taskdeck/internal/team"
	teamrepo "github.com/kazz187/taskdeck/internal/team/repositoryimpl"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/connectjson"
	"github.com/kazz187/taskdeck/pkg/storage"
)

type fixture struct {
	srv   *httptest.Server
	auth  *session.Authority
	teams team.Repository
	tasks task.Repository
	bus   *eventbus.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		auth:  session.NewAuthority("test-secret", "taskdeck"),
		teams: teamrepo.NewYAMLRepository(st),
		tasks: taskrepo.NewYAMLRepository(st),
		bus:   eventbus.New(),
	}
	prefix, h := task.NewHandler(task.NewServer(f.tasks, f.teams, f.bus),
		connect.WithInterceptors(cerr.NewConvertConnectErrorInterceptor()),
		connectjson.WithCodec(),
	)
	mux := http.NewServeMux()
	mux.Handle(prefix, h)
	f.srv = httptest.NewServer(session.Middleware(f.auth)(mux))
	t.Cleanup(f.srv.Close)
	return f
}

func call[Req, Res any](t *testing.T, f *fixture, user, procedure string, msg *Req) (*Res, error) {
	t.Helper()
	client := connect.NewClient[Req, Res](f.srv.Client(), f.srv.URL+procedure, connectjson.WithCodec())
	req := connect.NewRequest(msg)
	if user != "" {
		token, err := f.auth.Sign(&session.Session{UserID: user, Email: user + "@example.com"}, time.Hour)
		require.NoError(t, err)
		req.Header().Set("Authorization", "Bearer "+token)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (f *fixture) seedTeam(t *testing.T) *team.Team {
	t.Helper()
	now := time.Now()
	tm, err := team.New("team1", &session.Session{UserID: "alice", Email: "alice@example.com"}, "Platform", "", now)
	require.NoError(t, err)
	tm.Members = append(tm.Members, team.Member{ID: "bob", Email: "bob@example.com", Role: team.RoleMember, JoinedAt: now})
	require.NoError(t, f.teams.Create(context.Background(), tm))
	return tm
}

func TestTaskService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	events, sub := subscribe(f.bus)
	defer f.bus.Unsubscribe(sub)

	created, err := call[task.CreateTaskRequest, task.CreateTaskResponse](t, f, "alice", task.CreateTaskProcedure,
		&task.CreateTaskRequest{Title: "  Write report ", Labels: []string{"q1", "q1"}})
	require.NoError(t, err)
	tk := created.Task
	assert.Equal(t, "Write report", tk.Title)
	assert.Equal(t, task.CategoryWork, tk.Category)
	assert.Equal(t, task.PriorityMedium, tk.Priority)
	assert.Equal(t, task.StatusActive, tk.Status)
	assert.Equal(t, []string{"q1"}, tk.Labels)
	assert.Equal(t, eventbus.TypeTaskCreated, (<-events).Type)

	done, err := call[task.UpdateTaskStatusRequest, task.UpdateTaskStatusResponse](t, f, "alice", task.UpdateTaskStatusProcedure,
		&task.UpdateTaskStatusRequest{ID: tk.ID, Status: "completed", Completion: &task.CompletionRequest{
			Description: "sent",
			Attachments: []task.Attachment{{Name: "r.pdf", URL: "/files/completion/alice/r.pdf", Size: 10}},
		}})
	require.NoError(t, err)
	assert.True(t, done.Changed)
	assert.True(t, done.Task.Completed)
	require.NotNil(t, done.Task.CompletionDetails)
	assert.Equal(t, "alice", done.Task.CompletionDetails.CompletedBy)

	_, err = call[task.UpdateTaskStatusRequest, task.UpdateTaskStatusResponse](t, f, "alice", task.UpdateTaskStatusProcedure,
		&task.UpdateTaskStatusRequest{ID: tk.ID, Status: "active"})
	require.Error(t, err)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
	assert.True(t, task.IsConfirmationRequired(err))

	reverted, err := call[task.UpdateTaskStatusRequest, task.UpdateTaskStatusResponse](t, f, "alice", task.UpdateTaskStatusProcedure,
		&task.UpdateTaskStatusRequest{ID: tk.ID, Status: "active", ConfirmDiscard: true})
	require.NoError(t, err)
	assert.False(t, reverted.Task.Completed)
	assert.Nil(t, reverted.Task.CompletionDetails)
	assert.Len(t, reverted.DroppedAttachments, 1)

	_, err = call[task.DeleteTaskRequest, task.DeleteTaskResponse](t, f, "alice", task.DeleteTaskProcedure, &task.DeleteTaskRequest{ID: tk.ID})
	require.NoError(t, err)

	list, err := call[task.ListTasksRequest, task.ListTasksResponse](t, f, "alice", task.ListTasksProcedure, &task.ListTasksRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Tasks)
	assert.Equal(t, 0, list.Counts.All)
}

func TestTaskService_RequiresSession(t *testing.T) {
	f := newFixture(t)
	_, err := call[task.ListTasksRequest, task.ListTasksResponse](t, f, "", task.ListTasksProcedure, &task.ListTasksRequest{})
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestTaskService_Validation(t *testing.T) {
	f := newFixture(t)
	past := time.Now().AddDate(0, 0, -3)
	_, err := call[task.CreateTaskRequest, task.CreateTaskResponse](t, f, "alice", task.CreateTaskProcedure,
		&task.CreateTaskRequest{Title: "", Priority: "urgent", DueDate: &past})
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	var rules []string
	for _, v := range cerr.Violations(err) {
		rules = append(rules, v.RuleID)
	}
	assert.ElementsMatch(t, []string{"title.required", "priority.in", "dueDate.not_past"}, rules)
}

func TestTaskService_TeamAssignment(t *testing.T) {
	f := newFixture(t)
	f.seedTeam(t)

	_, err := call[task.CreateTaskRequest, task.CreateTaskResponse](t, f, "alice", task.CreateTaskProcedure,
		&task.CreateTaskRequest{Title: "Deploy", TeamID: "team1", AssignedTo: []string{"mallory"}})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	created, err := call[task.CreateTaskRequest, task.CreateTaskResponse](t, f, "alice", task.CreateTaskProcedure,
		&task.CreateTaskRequest{Title: "Deploy", TeamID: "team1", AssignedTo: []string{"bob"}})
	require.NoError(t, err)
	id := created.Task.ID

	// bob is a plain member: may edit and view, may not delete.
	_, err = call[task.MoveTaskRequest, task.MoveTaskResponse](t, f, "bob", task.MoveTaskProcedure,
		&task.MoveTaskRequest{Move: task.Move{TaskID: id, From: task.ColumnTodo, To: task.ColumnInProgress}})
	require.NoError(t, err)

	board, err := call[task.GetBoardRequest, task.GetBoardResponse](t, f, "bob", task.GetBoardProcedure,
		&task.GetBoardRequest{Scope: task.ScopeTeam, TeamID: "team1"})
	require.NoError(t, err)
	require.Len(t, board.Columns, 3)
	assert.Equal(t, task.ColumnInProgress, board.Columns[1].Column)
	require.Len(t, board.Columns[1].Tasks, 1)
	assert.Equal(t, id, board.Columns[1].Tasks[0].ID)

	batch, err := call[task.BatchDeleteTasksRequest, task.BatchDeleteTasksResponse](t, f, "bob", task.BatchDeleteTasksProcedure,
		&task.BatchDeleteTasksRequest{IDs: []string{id, "missing"}})
	require.NoError(t, err)
	assert.Empty(t, batch.Deleted)
	require.Len(t, batch.Failed, 2)
	assert.Equal(t, "permission_denied", batch.Failed[0].Code)
	assert.Equal(t, "not_found", batch.Failed[1].Code)

	_, err = call[task.GetTaskRequest, task.GetTaskResponse](t, f, "mallory", task.GetTaskProcedure, &task.GetTaskRequest{ID: id})
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	assigned, err := call[task.ListTasksRequest, task.ListTasksResponse](t, f, "bob", task.ListTasksProcedure,
		&task.ListTasksRequest{Scope: task.ScopeAssigned})
	require.NoError(t, err)
	require.Len(t, assigned.Tasks, 1)
	assert.Equal(t, task.StatusInProgress, assigned.Tasks[0].Status)
}

func TestTaskService_Duplicate(t *testing.T) {
	f := newFixture(t)
	due := time.Now().AddDate(0, 0, 2)
	created, err := call[task.CreateTaskRequest, task.CreateTaskResponse](t, f, "alice", task.CreateTaskProcedure,
		&task.CreateTaskRequest{Title: "Plan sprint", DueDate: &due, Priority: task.PriorityHigh})
	require.NoError(t, err)

	dup, err := call[task.DuplicateTaskRequest, task.DuplicateTaskResponse](t, f, "alice", task.DuplicateTaskProcedure,
		&task.DuplicateTaskRequest{ID: created.Task.ID})
	require.NoError(t, err)
	assert.NotEqual(t, created.Task.ID, dup.Task.ID)
	assert.Equal(t, "Copy of Plan sprint", dup.Task.Title)
	assert.Equal(t, task.PriorityHigh, dup.Task.Priority)
	assert.Nil(t, dup.Task.DueDate)
	assert.Equal(t, task.StatusActive, dup.Task.Status)
}

func TestAssignmentPruner_Prune(t *testing.T) {
	f := newFixture(t)
	f.seedTeam(t)
	created, err := call[task.CreateTaskRequest, task.CreateTaskResponse](t, f, "alice", task.CreateTaskProcedure,
		&task.CreateTaskRequest{Title: "Deploy", TeamID: "team1", AssignedTo: []string{"alice", "bob"}})
	require.NoError(t, err)

	n, err := task.NewAssignmentPruner(f.tasks, f.bus).Prune(context.Background(), "team1", "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.tasks.Get(context.Background(), created.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, got.AssignedTo)
}

func TestTaskService_DeletedTeam(t *testing.T) {
	f := newFixture(t)
	f.seedTeam(t)
	created, err := call[task.CreateTaskRequest, task.CreateTaskResponse](t, f, "alice", task.CreateTaskProcedure,
		&task.CreateTaskRequest{Title: "Deploy", TeamID: "team1", AssignedTo: []string{"bob"}})
	require.NoError(t, err)
	id := created.Task.ID
	require.NoError(t, f.teams.Delete(context.Background(), "team1"))

	// Until the pruner runs, the task reads as a personal task of its owner.
	got, err := call[task.GetTaskRequest, task.GetTaskResponse](t, f, "alice", task.GetTaskProcedure, &task.GetTaskRequest{ID: id})
	require.NoError(t, err)
	assert.Empty(t, got.Task.TeamID)
	assert.Empty(t, got.Task.AssignedTo)

	title := "renamed"
	updated, err := call[task.UpdateTaskRequest, task.UpdateTaskResponse](t, f, "alice", task.UpdateTaskProcedure,
		&task.UpdateTaskRequest{ID: id, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Task.Title)
	assert.Empty(t, updated.Task.TeamID)

	_, err = call[task.GetTaskRequest, task.GetTaskResponse](t, f, "bob", task.GetTaskProcedure, &task.GetTaskRequest{ID: id})
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
}

func TestTaskService_AssignmentLocked(t *testing.T) {
	f := newFixture(t)
	tm := f.seedTeam(t)
	tm.Settings.AllowTaskAssignment = false
	require.NoError(t, f.teams.Update(context.Background(), tm))

	created, err := call[task.CreateTaskRequest, task.CreateTaskResponse](t, f, "alice", task.CreateTaskProcedure,
		&task.CreateTaskRequest{Title: "Deploy", TeamID: "team1", AssignedTo: []string{"bob"}})
	require.NoError(t, err)
	id := created.Task.ID

	note := "just a note"
	updated, err := call[task.UpdateTaskRequest, task.UpdateTaskResponse](t, f, "bob", task.UpdateTaskProcedure,
		&task.UpdateTaskRequest{ID: id, Description: &note})
	require.NoError(t, err)
	assert.Equal(t, "just a note", updated.Task.Description)
	assert.Equal(t, []string{"bob"}, updated.Task.AssignedTo)

	_, err = call[task.UpdateTaskRequest, task.UpdateTaskResponse](t, f, "bob", task.UpdateTaskProcedure,
		&task.UpdateTaskRequest{ID: id, AssignedTo: &[]string{"alice", "bob"}})
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
}

func TestTaskService_CompletionAttachmentsFollowTeamSettings(t *testing.T) {
	f := newFixture(t)
	tm := f.seedTeam(t)
	tm.Settings.AllowAttachments = false
	require.NoError(t, f.teams.Update(context.Background(), tm))

	created, err := call[task.CreateTaskRequest, task.CreateTaskResponse](t, f, "alice", task.CreateTaskProcedure,
		&task.CreateTaskRequest{Title: "Deploy", TeamID: "team1"})
	require.NoError(t, err)
	id := created.Task.ID
	proof := []task.Attachment{{Name: "log.pdf", URL: "/files/attachments/bob/log.pdf", Size: 1000}}

	_, err = call[task.UpdateTaskStatusRequest, task.UpdateTaskStatusResponse](t, f, "bob", task.UpdateTaskStatusProcedure,
		&task.UpdateTaskStatusRequest{ID: id, Status: "completed", Completion: &task.CompletionRequest{Attachments: proof}})
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	tm.Settings.AllowAttachments = true
	tm.Settings.MaxAttachmentSize = 100
	require.NoError(t, f.teams.Update(context.Background(), tm))
	_, err = call[task.MoveTaskRequest, task.MoveTaskResponse](t, f, "bob", task.MoveTaskProcedure,
		&task.MoveTaskRequest{Move: task.Move{TaskID: id, From: task.ColumnTodo, To: task.ColumnCompleted},
			Completion: &task.CompletionRequest{Attachments: proof}})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	got, err := f.tasks.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, task.StatusActive, got.Status())

	done, err := call[task.UpdateTaskStatusRequest, task.UpdateTaskStatusResponse](t, f, "bob", task.UpdateTaskStatusProcedure,
		&task.UpdateTaskStatusRequest{ID: id, Status: "completed", Completion: &task.CompletionRequest{Description: "shipped"}})
	require.NoError(t, err)
	assert.True(t, done.Task.Completed)
}

func TestAssignmentPruner_Handle(t *testing.T) {
	f := newFixture(t)
	f.seedTeam(t)
	created, err := call[task.CreateTaskRequest, task.CreateTaskResponse](t, f, "alice", task.CreateTaskProcedure,
		&task.CreateTaskRequest{Title: "Deploy", TeamID: "team1", AssignedTo: []string{"alice", "bob"}})
	require.NoError(t, err)
	id := created.Task.ID
	pruner := task.NewAssignmentPruner(f.tasks, f.bus)
	ctx := context.Background()

	removed := eventbus.NewEvent(eventbus.TypeTeamMemberRemoved, "team1", "alice", nil, map[string]string{"member_id": "bob"})
	removed.Origin = "another-instance"
	n, err := pruner.Handle(ctx, removed)
	require.NoError(t, err)
	assert.Zero(t, n, "relayed events are applied by their origin")

	removed.Origin = f.bus.Origin()
	n, err = pruner.Handle(ctx, removed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	deleted := eventbus.NewEvent(eventbus.TypeTeamDeleted, "team1", "alice", nil, nil)
	deleted.Origin = f.bus.Origin()
	n, err = pruner.Handle(ctx, deleted)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.tasks.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.TeamID)
	assert.Empty(t, got.AssignedTo)
	assert.Equal(t, "alice", got.UserID)
}

func subscribe(bus *eventbus.Bus) (<-chan *eventbus.Event, string) {
	id, ch := bus.Subscribe(16)
	return ch, id
}
