package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskdeck/internal/notification"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/storage"
)

func TestYAMLRepository(t *testing.T) {
	s, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	repo := NewYAMLRepository(s)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	endpoint := "https://push.example.com/send/abc?x=1"
	require.NoError(t, repo.Save(ctx, &notification.Subscription{
		UserID: "alice", Endpoint: endpoint, P256dhKey: "k1", AuthKey: "a1", CreatedAt: t0,
	}))
	require.NoError(t, repo.Save(ctx, &notification.Subscription{
		UserID: "bob", Endpoint: "https://push.example.com/send/def", P256dhKey: "k", AuthKey: "a", CreatedAt: t0.Add(-time.Hour),
	}))

	// Same endpoint replaces the earlier registration.
	require.NoError(t, repo.Save(ctx, &notification.Subscription{
		UserID: "alice", Endpoint: endpoint, P256dhKey: "k2", AuthKey: "a2", CreatedAt: t0,
	}))
	got, err := repo.Get(ctx, endpoint)
	require.NoError(t, err)
	assert.Equal(t, "k2", got.P256dhKey)
	assert.True(t, t0.Equal(got.CreatedAt))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bob", all[0].UserID)

	require.NoError(t, repo.Delete(ctx, endpoint))
	_, err = repo.Get(ctx, endpoint)
	assert.Equal(t, cerr.NotFound, cerr.CodeOf(err))
	assert.Equal(t, cerr.NotFound, cerr.CodeOf(repo.Delete(ctx, endpoint)))
}
