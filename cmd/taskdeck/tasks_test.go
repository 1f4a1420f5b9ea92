package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskdeck/internal/client"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/task"
)

func TestMove(t *testing.T) {
	hs, auth := newTestServer(t)
	ctx := context.Background()
	alice := &session.Session{UserID: "alice", Email: "alice@example.com"}
	tok, err := auth.Sign(alice, time.Hour)
	require.NoError(t, err)
	c := client.New(hs.URL, client.WithToken(tok))

	created, err := c.CreateTask(ctx, &task.CreateTaskRequest{Title: "Write report", Category: task.CategoryWork, Priority: task.PriorityHigh})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, move(ctx, c, alice, &out, moveArgs{id: created.ID, to: task.ColumnInProgress}))
	assert.Contains(t, out.String(), "moved "+created.ID)

	out.Reset()
	require.NoError(t, move(ctx, c, alice, &out, moveArgs{id: created.ID, to: task.ColumnInProgress}))
	assert.Contains(t, out.String(), "already there")

	require.NoError(t, move(ctx, c, alice, &out, moveArgs{id: created.ID, to: task.ColumnCompleted, note: "sent to finance"}))
	got, err := c.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, got.Status)

	// Reopening is refused locally until confirmed.
	err = move(ctx, c, alice, &out, moveArgs{id: created.ID, to: task.ColumnTodo})
	require.Error(t, err)
	assert.True(t, task.IsConfirmationRequired(err))
	assert.Contains(t, err.Error(), "--confirm")
	got, err = c.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, got.Status)

	require.NoError(t, move(ctx, c, alice, &out, moveArgs{id: created.ID, to: task.ColumnTodo, confirm: true}))
	got, err = c.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusActive, got.Status)
}
