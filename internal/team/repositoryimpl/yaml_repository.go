package repositoryimpl

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskdeck/internal/team"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/storage"
)

const teamsPrefix = "teams"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", teamsPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, t *team.Team) error {
	exists, err := r.storage.Exists(ctx, path(t.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("team", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "team already exists", nil)
	}
	return r.write(ctx, t)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*team.Team, error) {
	data, err := r.storage.Read(ctx, path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("team", err)
	}
	var t team.Team
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal team: %w", err))
	}
	return &t, nil
}

func (r *YAMLRepository) List(ctx context.Context) ([]*team.Team, error) {
	paths, err := r.storage.List(ctx, teamsPrefix)
	if err != nil {
		return nil, cerr.WrapStorageListError("teams", err)
	}
	sort.Strings(paths)

	teams := make([]*team.Team, 0, len(paths))
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var t team.Team
		if err := yaml.Unmarshal(data, &t); err != nil {
			continue
		}
		teams = append(teams, &t)
	}
	return teams, nil
}

func (r *YAMLRepository) Update(ctx context.Context, t *team.Team) error {
	exists, err := r.storage.Exists(ctx, path(t.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("team", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "team not found", nil)
	}
	return r.write(ctx, t)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	if err := r.storage.Delete(ctx, path(id)); err != nil {
		return cerr.WrapStorageDeleteError("team", err)
	}
	return nil
}

func (r *YAMLRepository) write(ctx context.Context, t *team.Team) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal team: %w", err))
	}
	if err := r.storage.Write(ctx, path(t.ID), data); err != nil {
		return cerr.WrapStorageWriteError("team", err)
	}
	return nil
}
