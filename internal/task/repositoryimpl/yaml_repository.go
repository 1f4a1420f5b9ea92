package repositoryimpl

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskdeck/internal/task"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/storage"
)

const tasksPrefix = "tasks"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", tasksPrefix, id)
}

// document is the stored form. Status is flattened to a string and the
// derived completed flag is written for older readers.
type document struct {
	ID                string                  `yaml:"id"`
	UserID            string                  `yaml:"user_id"`
	Title             string                  `yaml:"title"`
	Description       string                  `yaml:"description"`
	Category          task.Category           `yaml:"category"`
	Priority          task.Priority           `yaml:"priority"`
	Status            task.Status             `yaml:"status"`
	Completed         bool                    `yaml:"completed"`
	CompletionDetails *task.CompletionDetails `yaml:"completion_details,omitempty"`
	DeletedAt         *time.Time              `yaml:"deleted_at,omitempty"`
	DueDate           *time.Time              `yaml:"due_date,omitempty"`
	Labels            []string                `yaml:"labels"`
	Attachments       []task.Attachment       `yaml:"attachments"`
	TeamID            string                  `yaml:"team_id,omitempty"`
	AssignedTo        []string                `yaml:"assigned_to"`
	CreatedAt         time.Time               `yaml:"created_at"`
	UpdatedAt         time.Time               `yaml:"updated_at"`
}

func toDocument(t *task.Task) *document {
	d := &document{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Priority:    t.Priority,
		Status:      t.Status(),
		Completed:   t.Completed(),
		DueDate:     t.DueDate,
		Labels:      t.Labels,
		Attachments: t.Attachments,
		TeamID:      t.TeamID,
		AssignedTo:  t.AssignedTo,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	switch s := t.State.(type) {
	case task.Completed:
		details := s.Details
		d.CompletionDetails = &details
	case task.Deleted:
		at := s.At
		d.DeletedAt = &at
	}
	return d
}

// toTask rebuilds the state variant. Documents written with the legacy
// "todo" status, or with only the completed flag set, are accepted.
func (d *document) toTask() (*task.Task, error) {
	status := d.Status
	if status == "" {
		status = task.StatusActive
		if d.Completed {
			status = task.StatusCompleted
		}
	}
	st, err := task.ParseStatus(string(status))
	if err != nil {
		return nil, err
	}
	var state task.State
	switch st {
	case task.StatusActive:
		state = task.Active{}
	case task.StatusInProgress:
		state = task.InProgress{}
	case task.StatusCompleted:
		var details task.CompletionDetails
		if d.CompletionDetails != nil {
			details = *d.CompletionDetails
		}
		state = task.Completed{Details: details}
	case task.StatusDeleted:
		var at time.Time
		if d.DeletedAt != nil {
			at = *d.DeletedAt
		}
		state = task.Deleted{At: at}
	}
	return &task.Task{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Priority:    d.Priority,
		State:       state,
		DueDate:     d.DueDate,
		Labels:      d.Labels,
		Attachments: d.Attachments,
		TeamID:      d.TeamID,
		AssignedTo:  d.AssignedTo,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func (r *YAMLRepository) Create(ctx context.Context, t *task.Task) error {
	exists, err := r.storage.Exists(ctx, path(t.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "task already exists", nil)
	}
	return r.write(ctx, t)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	data, err := r.storage.Read(ctx, path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("task", err)
	}
	t, err := decode(data)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal task %s: %w", id, err))
	}
	return t, nil
}

func decode(data []byte) (*task.Task, error) {
	var d document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d.toTask()
}

func (r *YAMLRepository) List(ctx context.Context, q task.Query) ([]*task.Task, error) {
	paths, err := r.storage.List(ctx, tasksPrefix)
	if err != nil {
		return nil, cerr.WrapStorageListError("tasks", err)
	}

	var tasks []*task.Task
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		t, err := decode(data)
		if err != nil {
			continue
		}
		if q.Match(t) {
			tasks = append(tasks, t)
		}
	}
	slices.SortStableFunc(tasks, func(a, b *task.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return tasks, nil
}

func (r *YAMLRepository) Update(ctx context.Context, t *task.Task) error {
	exists, err := r.storage.Exists(ctx, path(t.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return r.write(ctx, t)
}

func (r *YAMLRepository) write(ctx context.Context, t *task.Task) error {
	data, err := yaml.Marshal(toDocument(t))
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task: %w", err))
	}
	if err := r.storage.Write(ctx, path(t.ID), data); err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	return nil
}
