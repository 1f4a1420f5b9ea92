package event

import (
	"context"
	"slices"
	"time"

	"connectrpc.com/connect"

	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/internal/session"
)

const ServiceName = "taskdeck.v1.EventService"

const WatchEventsProcedure = "/" + ServiceName + "/WatchEvents"

type WatchEventsRequest struct {
	// Types limits the stream to these event types. Empty means all.
	Types []eventbus.Type `json:"types,omitempty"`
	// TeamID limits the stream to events of one team.
	TeamID string `json:"teamId,omitempty"`
}

const defaultKeepalive = 30 * time.Second

type Server struct {
	eventBus  *eventbus.Bus
	keepalive time.Duration
}

func NewServer(eventBus *eventbus.Bus) *Server {
	return &Server{eventBus: eventBus, keepalive: defaultKeepalive}
}

// WithKeepalive sets how often a stream writes a keepalive event.
func (s *Server) WithKeepalive(d time.Duration) *Server {
	s.keepalive = d
	return s
}

// WatchEvents streams the events the caller is allowed to see until the
// client disconnects or the server shuts down. The first message is always
// a stream.ready event, written once the subscription is live; response
// headers are only flushed with it.
func (s *Server) WatchEvents(ctx context.Context, req *connect.Request[WatchEventsRequest], stream *connect.ServerStream[eventbus.Event]) error {
	sess, err := session.Require(ctx)
	if err != nil {
		return err
	}
	subID, ch := s.eventBus.Subscribe(64)
	defer s.eventBus.Unsubscribe(subID)

	if err := stream.Send(s.control(eventbus.TypeStreamReady, sess)); err != nil {
		return err
	}
	ticker := time.NewTicker(s.keepalive)
	defer ticker.Stop()

	email := sess.NormalizedEmail()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := stream.Send(s.control(eventbus.TypeStreamKeepalive, sess)); err != nil {
				return err
			}
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if !Match(ev, req.Msg, sess.UserID, email) {
				continue
			}
			if err := stream.Send(ev); err != nil {
				return err
			}
		}
	}
}

func (s *Server) control(typ eventbus.Type, sess *session.Session) *eventbus.Event {
	ev := eventbus.NewEvent(typ, "", "", []string{sess.UserID}, nil)
	ev.Origin = s.eventBus.Origin()
	return ev
}

// Match reports whether ev passes the request filter and is visible to the
// given user.
func Match(ev *eventbus.Event, req *WatchEventsRequest, userID, email string) bool {
	if !ev.VisibleTo(userID, email) {
		return false
	}
	if len(req.Types) > 0 && !slices.Contains(req.Types, ev.Type) {
		return false
	}
	if req.TeamID != "" {
		teamID := ev.Metadata["team_id"]
		if teamID == "" && isTeamEvent(ev.Type) {
			teamID = ev.ResourceID
		}
		if teamID != req.TeamID {
			return false
		}
	}
	return true
}

func isTeamEvent(t eventbus.Type) bool {
	switch t {
	case eventbus.TypeTeamCreated, eventbus.TypeTeamUpdated, eventbus.TypeTeamDeleted,
		eventbus.TypeTeamMemberInvited, eventbus.TypeTeamMemberJoined, eventbus.TypeTeamMemberRemoved,
		eventbus.TypeTeamMemberRoleChanged, eventbus.TypeTeamInviteDeclined:
		return true
	}
	return false
}
