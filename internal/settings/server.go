package settings

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/pkg/cerr"
)

type Server struct {
	repo     Repository
	eventBus *eventbus.Bus
	now      func() time.Time
}

func NewServer(repo Repository, eventBus *eventbus.Bus) *Server {
	return &Server{repo: repo, eventBus: eventBus, now: time.Now}
}

// Load returns the user's settings, creating the defaults on first access.
func Load(ctx context.Context, repo Repository, userID string, now time.Time) (*UserSettings, error) {
	s, err := repo.Get(ctx, userID)
	if err == nil {
		return s, nil
	}
	if !cerr.IsCode(err, cerr.NotFound) {
		return nil, err
	}
	s = Defaults(userID, now)
	if err := repo.Put(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) GetSettings(ctx context.Context, _ *connect.Request[GetSettingsRequest]) (*connect.Response[GetSettingsResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	us, err := Load(ctx, s.repo, sess.UserID, s.now())
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetSettingsResponse{Settings: us}), nil
}

func (s *Server) UpdateSettings(ctx context.Context, req *connect.Request[UpdateSettingsRequest]) (*connect.Response[UpdateSettingsResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	us, err := Load(ctx, s.repo, sess.UserID, now)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	if m.DefaultView != nil {
		us.DefaultView = *m.DefaultView
	}
	if m.EmailNotifications != nil {
		us.EmailNotifications = *m.EmailNotifications
	}
	if m.DesktopNotifications != nil {
		us.DesktopNotifications = *m.DesktopNotifications
	}
	if m.DefaultTaskCategory != nil {
		us.DefaultTaskCategory = *m.DefaultTaskCategory
	}
	if m.Theme != nil {
		us.Theme = *m.Theme
	}
	if err := us.Validate(); err != nil {
		return nil, err
	}
	us.UpdatedAt = now
	if err := s.repo.Put(ctx, us); err != nil {
		return nil, err
	}
	s.eventBus.PublishNew(eventbus.TypeSettingsUpdated, sess.UserID, sess.UserID, []string{sess.UserID}, nil)
	return connect.NewResponse(&UpdateSettingsResponse{Settings: us}), nil
}
