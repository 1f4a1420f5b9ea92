package repositoryimpl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskdeck/internal/notification"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/storage"
)

const subscriptionsPrefix = "push_subscriptions"

// YAMLRepository keeps one document per endpoint. Endpoint URLs are long
// and contain slashes, so the document name is a digest of the URL.
type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(endpoint string) string {
	sum := sha256.Sum256([]byte(endpoint))
	return fmt.Sprintf("%s/%s.yaml", subscriptionsPrefix, hex.EncodeToString(sum[:16]))
}

func (r *YAMLRepository) Save(ctx context.Context, s *notification.Subscription) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal push subscription: %w", err))
	}
	if err := r.storage.Write(ctx, path(s.Endpoint), data); err != nil {
		return cerr.WrapStorageWriteError("push subscription", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, endpoint string) (*notification.Subscription, error) {
	data, err := r.storage.Read(ctx, path(endpoint))
	if err != nil {
		return nil, cerr.WrapStorageReadError("push subscription", err)
	}
	var s notification.Subscription
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal push subscription: %w", err))
	}
	return &s, nil
}

// List returns every subscription, oldest registration first. Unreadable
// documents are skipped.
func (r *YAMLRepository) List(ctx context.Context) ([]*notification.Subscription, error) {
	paths, err := r.storage.List(ctx, subscriptionsPrefix)
	if err != nil {
		return nil, cerr.WrapStorageListError("push subscriptions", err)
	}
	subs := make([]*notification.Subscription, 0, len(paths))
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var s notification.Subscription
		if err := yaml.Unmarshal(data, &s); err != nil {
			continue
		}
		subs = append(subs, &s)
	}
	slices.SortStableFunc(subs, func(a, b *notification.Subscription) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return subs, nil
}

func (r *YAMLRepository) Delete(ctx context.Context, endpoint string) error {
	if err := r.storage.Delete(ctx, path(endpoint)); err != nil {
		return cerr.WrapStorageDeleteError("push subscription", err)
	}
	return nil
}
