package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/pkg/cerr"
)

var (
	t0    = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	alice = &session.Session{UserID: "alice", Email: "alice@example.com"}
)

func newTask(status State) *Task {
	return &Task{
		ID:        "t1",
		UserID:    "alice",
		Title:     "Write spec",
		Category:  CategoryWork,
		Priority:  PriorityMedium,
		State:     status,
		CreatedAt: t0,
		UpdatedAt: t0,
	}
}

func assertCompletedInvariant(t *testing.T, tk *Task) {
	t.Helper()
	_, hasDetails := tk.CompletionDetails()
	assert.Equal(t, tk.Status() == StatusCompleted, tk.Completed())
	assert.Equal(t, tk.Completed(), hasDetails)
}

func TestTransitionTo_CompleteAndRevert(t *testing.T) {
	tk := newTask(Active{})
	att := Attachment{ID: "a1", Name: "proof.png", URL: "http://files/proof.png"}
	done := t0.Add(time.Hour)

	res, err := tk.TransitionTo(StatusCompleted, alice, TransitionOptions{
		Completion: &CompletionInput{Description: "done", Attachments: []Attachment{att}},
	}, done)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, tk.Completed())
	details, ok := tk.CompletionDetails()
	require.True(t, ok)
	assert.Equal(t, "done", details.Description)
	assert.Len(t, details.Attachments, 1)
	assert.Equal(t, "alice", details.CompletedBy)
	assert.Equal(t, done, details.CompletedAt)
	assert.Equal(t, done, tk.UpdatedAt)
	assertCompletedInvariant(t, tk)

	before := tk.Clone()
	_, err = tk.TransitionTo(StatusInProgress, alice, TransitionOptions{}, done.Add(time.Hour))
	require.Error(t, err)
	assert.True(t, IsConfirmationRequired(err))
	assert.Equal(t, before, tk, "task must not change without confirmation")

	res, err = tk.TransitionTo(StatusInProgress, alice, TransitionOptions{ConfirmDiscard: true}, done.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, []Attachment{att}, res.Dropped)
	assert.False(t, tk.Completed())
	_, ok = tk.CompletionDetails()
	assert.False(t, ok)
	assertCompletedInvariant(t, tk)
}

func TestTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      Status
		sess    *session.Session
		opts    TransitionOptions
		changed bool
		code    cerr.Code
	}{
		{name: "active to in progress", from: Active{}, to: StatusInProgress, sess: alice, changed: true},
		{name: "in progress to active", from: InProgress{}, to: StatusActive, sess: alice, changed: true},
		{name: "todo alias", from: InProgress{}, to: StatusTodo, sess: alice, changed: true},
		{name: "same status is a no-op", from: InProgress{}, to: StatusInProgress, sess: alice},
		{name: "complete without session", from: Active{}, to: StatusCompleted, code: cerr.Unauthenticated},
		{name: "complete without details", from: InProgress{}, to: StatusCompleted, sess: alice, changed: true},
		{name: "completed to active with confirmation", from: Completed{}, to: StatusActive, sess: alice,
			opts: TransitionOptions{ConfirmDiscard: true}, changed: true},
		{name: "completed to active without confirmation", from: Completed{}, to: StatusActive, sess: alice, code: cerr.FailedPrecondition},
		{name: "out of deleted", from: Deleted{}, to: StatusActive, sess: alice, code: cerr.FailedPrecondition},
		{name: "into deleted", from: Active{}, to: StatusDeleted, sess: alice, code: cerr.InvalidArgument},
		{name: "unknown status", from: Active{}, to: Status("archived"), sess: alice, code: cerr.InvalidArgument},
		{name: "completion notes too long", from: Active{}, to: StatusCompleted, sess: alice,
			opts: TransitionOptions{Completion: &CompletionInput{Description: string(make([]rune, 501))}}, code: cerr.InvalidArgument},
		{name: "too many completion attachments", from: Active{}, to: StatusCompleted, sess: alice,
			opts: TransitionOptions{Completion: &CompletionInput{Attachments: make([]Attachment, 6)}}, code: cerr.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := newTask(tt.from)
			before := tk.Clone()
			now := t0.Add(time.Minute)

			res, err := tk.TransitionTo(tt.to, tt.sess, tt.opts, now)
			if tt.code != cerr.OK {
				require.Error(t, err)
				assert.Equal(t, tt.code, cerr.CodeOf(err))
				assert.Equal(t, before, tk)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.changed, res.Changed)
			if tt.changed {
				assert.Equal(t, now, tk.UpdatedAt)
			} else {
				assert.Equal(t, t0, tk.UpdatedAt)
			}
			assertCompletedInvariant(t, tk)
		})
	}
}

func TestSoftDelete(t *testing.T) {
	tk := newTask(Completed{Details: CompletionDetails{Description: "x"}})
	assert.True(t, tk.SoftDelete(t0.Add(time.Hour)))
	assert.True(t, tk.IsDeleted())
	assertCompletedInvariant(t, tk)
	assert.False(t, tk.SoftDelete(t0.Add(2*time.Hour)))
	assert.Equal(t, t0.Add(time.Hour), tk.UpdatedAt)
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"todo":       StatusActive,
		"active":     StatusActive,
		"inProgress": StatusInProgress,
		"completed":  StatusCompleted,
		"deleted":    StatusDeleted,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseStatus("archived")
	assert.Error(t, err)
}
