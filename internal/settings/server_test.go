package settings_test

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/settings"
	"github.com/kazz187/taskdeck/internal/settings/repositoryimpl"
	"github.com/kazz187/taskdeck/internal/task"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/storage"
)

func TestSettingsService(t *testing.T) {
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(st)
	s := settings.NewServer(repo, eventbus.New())
	ctx := session.WithSession(context.Background(), &session.Session{UserID: "alice"})

	got, err := s.GetSettings(ctx, connect.NewRequest(&settings.GetSettingsRequest{}))
	require.NoError(t, err)
	us := got.Msg.Settings
	assert.Equal(t, settings.ViewList, us.DefaultView)
	assert.True(t, us.EmailNotifications)
	assert.True(t, us.DesktopNotifications)
	assert.Equal(t, task.CategoryWork, us.DefaultTaskCategory)
	assert.Equal(t, settings.ThemeSystem, us.Theme)

	stored, err := repo.Get(ctx, "alice")
	require.NoError(t, err, "defaults are stored on first read")
	assert.Equal(t, settings.ViewList, stored.DefaultView)

	board := settings.ViewBoard
	off := false
	updated, err := s.UpdateSettings(ctx, connect.NewRequest(&settings.UpdateSettingsRequest{DefaultView: &board, DesktopNotifications: &off}))
	require.NoError(t, err)
	assert.Equal(t, settings.ViewBoard, updated.Msg.Settings.DefaultView)
	assert.False(t, updated.Msg.Settings.DesktopNotifications)
	assert.True(t, updated.Msg.Settings.EmailNotifications, "untouched fields keep their value")

	neon := settings.Theme("neon")
	_, err = s.UpdateSettings(ctx, connect.NewRequest(&settings.UpdateSettingsRequest{Theme: &neon}))
	assert.Equal(t, cerr.InvalidArgument, cerr.CodeOf(err))
	vs := cerr.Violations(err)
	require.Len(t, vs, 1)
	assert.Equal(t, "theme.in", vs[0].RuleID)

	again, err := s.GetSettings(ctx, connect.NewRequest(&settings.GetSettingsRequest{}))
	require.NoError(t, err)
	assert.Equal(t, settings.ThemeSystem, again.Msg.Settings.Theme)
	assert.Equal(t, settings.ViewBoard, again.Msg.Settings.DefaultView)
}
