package repositoryimpl

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskdeck/internal/settings"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/storage"
)

const settingsPrefix = "settings"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(userID string) string {
	return fmt.Sprintf("%s/%s.yaml", settingsPrefix, userID)
}

func (r *YAMLRepository) Get(ctx context.Context, userID string) (*settings.UserSettings, error) {
	data, err := r.storage.Read(ctx, path(userID))
	if err != nil {
		return nil, cerr.WrapStorageReadError("settings", err)
	}
	var s settings.UserSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal settings: %w", err))
	}
	return &s, nil
}

// Put creates or replaces the user's settings document.
func (r *YAMLRepository) Put(ctx context.Context, s *settings.UserSettings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal settings: %w", err))
	}
	if err := r.storage.Write(ctx, path(s.UserID), data); err != nil {
		return cerr.WrapStorageWriteError("settings", err)
	}
	return nil
}
