package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskdeck/internal/task"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/storage"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) (*YAMLRepository, storage.Storage) {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(s), s
}

func TestYAMLRepository_RoundTrip(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	due := t0.AddDate(0, 0, 2)

	in := &task.Task{
		ID:       "t1",
		UserID:   "alice",
		Title:    "Write report",
		Category: task.CategoryWork,
		Priority: task.PriorityHigh,
		State: task.Completed{Details: task.CompletionDetails{
			Description: "done",
			CompletedAt: t0,
			CompletedBy: "alice",
		}},
		DueDate:    &due,
		Labels:     []string{"q1"},
		TeamID:     "team1",
		AssignedTo: []string{"bob"},
		CreatedAt:  t0,
		UpdatedAt:  t0,
	}
	require.NoError(t, repo.Create(ctx, in))

	err := repo.Create(ctx, in)
	assert.Equal(t, cerr.AlreadyExists, cerr.CodeOf(err))

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, got.Status())
	assert.True(t, got.Completed())
	details, ok := got.CompletionDetails()
	require.True(t, ok)
	assert.Equal(t, "done", details.Description)
	assert.Equal(t, "alice", details.CompletedBy)
	assert.True(t, t0.Equal(details.CompletedAt))
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.Equal(t, []string{"q1"}, got.Labels)
	assert.Equal(t, []string{"bob"}, got.AssignedTo)

	_, err = repo.Get(ctx, "missing")
	assert.Equal(t, cerr.NotFound, cerr.CodeOf(err))
}

func TestYAMLRepository_LegacyDocuments(t *testing.T) {
	repo, s := newRepo(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "tasks/old.yaml", []byte("id: old\ntitle: legacy\nstatus: todo\n")))
	require.NoError(t, s.Write(ctx, "tasks/flag.yaml", []byte("id: flag\ntitle: flagged\ncompleted: true\n")))

	got, err := repo.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, task.StatusActive, got.Status())

	got, err = repo.Get(ctx, "flag")
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, got.Status())
}

func TestYAMLRepository_ListQuery(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	mk := func(id, owner, teamID string, created time.Duration, state task.State, assignees ...string) {
		require.NoError(t, repo.Create(ctx, &task.Task{
			ID: id, UserID: owner, Title: id, Category: task.CategoryWork, Priority: task.PriorityLow,
			State: state, TeamID: teamID, AssignedTo: assignees, CreatedAt: t0.Add(created),
		}))
	}
	mk("mine", "alice", "", 0, task.Active{})
	mk("team", "bob", "team1", time.Hour, task.InProgress{})
	mk("assigned", "bob", "team2", 2*time.Hour, task.Active{}, "alice")
	mk("other", "bob", "", 3*time.Hour, task.Active{})
	mk("gone", "alice", "", 4*time.Hour, task.Deleted{At: t0})

	ids := func(ts []*task.Task) []string {
		out := make([]string, 0, len(ts))
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}

	got, err := repo.List(ctx, task.Query{OwnerID: "alice", TeamIDs: []string{"team1"}, AssigneeID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{"assigned", "team", "mine"}, ids(got))

	got, err = repo.List(ctx, task.Query{OwnerID: "alice", IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"gone", "mine"}, ids(got))

	got, err = repo.List(ctx, task.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"other", "assigned", "team", "mine"}, ids(got))
}

func TestYAMLRepository_UpdateMissing(t *testing.T) {
	repo, _ := newRepo(t)
	err := repo.Update(context.Background(), &task.Task{ID: "nope", State: task.Active{}})
	assert.Equal(t, cerr.NotFound, cerr.CodeOf(err))
}
