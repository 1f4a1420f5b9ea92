package task

import (
	"context"
	"slices"
)

// Query selects tasks visible through any of the given relations. Empty
// fields are ignored; a zero Query matches every task.
type Query struct {
	OwnerID        string
	TeamIDs        []string
	AssigneeID     string
	IncludeDeleted bool
}

func (q Query) Match(t *Task) bool {
	if t.IsDeleted() && !q.IncludeDeleted {
		return false
	}
	if q.OwnerID == "" && len(q.TeamIDs) == 0 && q.AssigneeID == "" {
		return true
	}
	return (q.OwnerID != "" && t.UserID == q.OwnerID) ||
		(t.TeamID != "" && slices.Contains(q.TeamIDs, t.TeamID)) ||
		(q.AssigneeID != "" && t.IsAssigned(q.AssigneeID))
}

// Repository persists tasks. List returns newest first.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, q Query) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
}
