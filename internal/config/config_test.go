package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv("TASKDECK_JWT_SECRET", "s3cret")
	t.Setenv("TASKDECK_STORAGE_TYPE", "sqlite")
	t.Setenv("TASKDECK_LOG_LEVEL", "warn")
	t.Setenv("TASKDECK_FILE_STORAGE_RETRY_DELAY", "250ms")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", env.JWTSecret)
	assert.Equal(t, "3100", env.HTTPPort)
	assert.Equal(t, slog.LevelWarn, env.SlogLevel())
	assert.Equal(t, "sqlite", env.StorageEnv.StorageConfig().Type)
	assert.EqualValues(t, 5<<20, env.MaxAttachmentSize)

	fc := env.FileStorageEnv.StorageConfig()
	assert.Equal(t, 3, fc.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, fc.RetryDelay)
	assert.False(t, env.VAPIDEnv.Enabled())
}

func TestLoadEnv_RequiresSecret(t *testing.T) {
	t.Setenv("TASKDECK_JWT_SECRET", "placeholder")
	require.NoError(t, os.Unsetenv("TASKDECK_JWT_SECRET"))
	_, err := LoadEnv()
	require.Error(t, err)
}

func TestSlogLevel_Fallback(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&BaseEnv{LogLevel: "loud"}).SlogLevel())
	assert.Equal(t, slog.LevelDebug, (*BaseEnv)(nil).SlogLevel())
}
