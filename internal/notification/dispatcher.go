package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/internal/settings"
	"github.com/kazz187/taskdeck/internal/task"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/clog"
)

// Dispatcher turns bus events into push notifications.
type Dispatcher struct {
	eventBus     *eventbus.Bus
	settingsRepo settings.Repository
	sender       *Sender
}

func NewDispatcher(eventBus *eventbus.Bus, settingsRepo settings.Repository, sender *Sender) *Dispatcher {
	return &Dispatcher{
		eventBus:     eventBus,
		settingsRepo: settingsRepo,
		sender:       sender,
	}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.InfoContext(ctx, "push notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "push notification dispatcher stopped")
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			d.Handle(ctx, ev)
		}
	}
}

// Handle sends the notification for a single event, if any. Events relayed
// from another instance are notified by the instance that published them.
func (d *Dispatcher) Handle(ctx context.Context, ev *eventbus.Event) int {
	if ev.Origin != "" && ev.Origin != d.eventBus.Origin() {
		return 0
	}
	to, payload := d.route(ev)
	if payload == nil {
		return 0
	}
	to.UserIDs = d.wantsDesktop(ctx, to.UserIDs)
	if len(to.UserIDs) == 0 && len(to.Emails) == 0 {
		return 0
	}
	return d.sender.Send(ctx, to, payload)
}

func (d *Dispatcher) route(ev *eventbus.Event) (Recipients, *Payload) {
	title := ev.Metadata["title"]
	switch ev.Type {
	case eventbus.TypeTaskAssigned:
		var ids []string
		for _, id := range strings.Split(ev.Metadata["assignees"], ",") {
			if id != "" && id != ev.ActorID {
				ids = append(ids, id)
			}
		}
		return Recipients{UserIDs: ids}, &Payload{
			Title: "New task assigned",
			Body:  title,
			URL:   fmt.Sprintf("/tasks/%s", ev.ResourceID),
			Tag:   ev.ID,
		}
	case eventbus.TypeTeamMemberInvited:
		return Recipients{Emails: ev.AudienceEmails}, &Payload{
			Title: "Team invitation",
			Body:  fmt.Sprintf("You have been invited to join %s", ev.Metadata["team_name"]),
			URL:   "/teams",
			Tag:   ev.ID,
		}
	case eventbus.TypeTaskStatusChanged:
		owner := ev.Metadata["owner_id"]
		if ev.Metadata["to"] != string(task.StatusCompleted) || owner == "" || owner == ev.ActorID {
			return Recipients{}, nil
		}
		return Recipients{UserIDs: []string{owner}}, &Payload{
			Title: "Task completed",
			Body:  title,
			URL:   fmt.Sprintf("/tasks/%s", ev.ResourceID),
			Tag:   ev.ID,
		}
	}
	return Recipients{}, nil
}

// wantsDesktop drops users who turned desktop notifications off. Users
// without stored settings get the defaults, which have them on.
func (d *Dispatcher) wantsDesktop(ctx context.Context, userIDs []string) []string {
	var out []string
	for _, id := range userIDs {
		us, err := d.settingsRepo.Get(ctx, id)
		switch {
		case cerr.IsCode(err, cerr.NotFound):
			us = settings.Defaults(id, time.Time{})
		case err != nil:
			slog.WarnContext(ctx, "push notification: failed to load settings", "user_id", id, clog.ErrorAttributeKey, err)
			continue
		}
		if us.DesktopNotifications {
			out = append(out, id)
		}
	}
	return out
}
