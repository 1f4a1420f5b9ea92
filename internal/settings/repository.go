package settings

import "context"

type Repository interface {
	Get(ctx context.Context, userID string) (*UserSettings, error)
	Put(ctx context.Context, s *UserSettings) error
}
