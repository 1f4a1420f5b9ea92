package task

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/pkg/clog"
)

// AssignmentPruner keeps assignments inside team membership: when someone
// leaves or is removed from a team, they are unassigned from its tasks, and
// when a team is deleted its tasks become personal tasks of their owners.
type AssignmentPruner struct {
	repo     Repository
	eventBus *eventbus.Bus
	now      func() time.Time
}

func NewAssignmentPruner(repo Repository, eventBus *eventbus.Bus) *AssignmentPruner {
	return &AssignmentPruner{repo: repo, eventBus: eventBus, now: time.Now}
}

func (p *AssignmentPruner) Run(ctx context.Context) error {
	subID, ch := p.eventBus.Subscribe(64)
	defer p.eventBus.Unsubscribe(subID)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			n, err := p.Handle(ctx, ev)
			if err != nil {
				slog.ErrorContext(ctx, "failed to prune assignments", "team_id", ev.ResourceID, "event", ev.Type, clog.ErrorAttributeKey, err)
				continue
			}
			if n > 0 {
				slog.InfoContext(ctx, "pruned assignments", "team_id", ev.ResourceID, "event", ev.Type, "tasks", n)
			}
		}
	}
}

// Handle applies one membership event and reports how many tasks changed.
// Events relayed from another instance were already applied there.
func (p *AssignmentPruner) Handle(ctx context.Context, ev *eventbus.Event) (int, error) {
	if ev.Origin != "" && ev.Origin != p.eventBus.Origin() {
		return 0, nil
	}
	switch ev.Type {
	case eventbus.TypeTeamMemberRemoved:
		return p.Prune(ctx, ev.ResourceID, ev.Metadata["member_id"])
	case eventbus.TypeTeamDeleted:
		return p.Detach(ctx, ev.ResourceID)
	}
	return 0, nil
}

// Prune unassigns memberID from every task of teamID and reports how many
// tasks changed.
func (p *AssignmentPruner) Prune(ctx context.Context, teamID, memberID string) (int, error) {
	if teamID == "" || memberID == "" {
		return 0, nil
	}
	tasks, err := p.repo.List(ctx, Query{TeamIDs: []string{teamID}, IncludeDeleted: true})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range tasks {
		if t.TeamID != teamID || !t.IsAssigned(memberID) {
			continue
		}
		t.AssignedTo = slices.DeleteFunc(t.AssignedTo, func(id string) bool { return id == memberID })
		t.UpdatedAt = p.now()
		if err := p.repo.Update(ctx, t); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Detach turns every task of teamID into a personal task of its owner and
// reports how many tasks changed.
func (p *AssignmentPruner) Detach(ctx context.Context, teamID string) (int, error) {
	if teamID == "" {
		return 0, nil
	}
	tasks, err := p.repo.List(ctx, Query{TeamIDs: []string{teamID}, IncludeDeleted: true})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range tasks {
		if t.TeamID != teamID || !t.DetachTeam() {
			continue
		}
		t.UpdatedAt = p.now()
		if err := p.repo.Update(ctx, t); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
