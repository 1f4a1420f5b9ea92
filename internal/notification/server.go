package notification

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"github.com/kazz187/taskdeck/internal/config"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/pkg/cerr"
)

type Server struct {
	vapidEnv *config.VAPIDEnv
	repo     Repository
	sender   *Sender
}

func NewServer(vapidEnv *config.VAPIDEnv, repo Repository, sender *Sender) *Server {
	return &Server{
		vapidEnv: vapidEnv,
		repo:     repo,
		sender:   sender,
	}
}

func (s *Server) GetVapidPublicKey(_ context.Context, _ *connect.Request[GetVapidPublicKeyRequest]) (*connect.Response[GetVapidPublicKeyResponse], error) {
	if s.vapidEnv.PublicKey == "" {
		return nil, cerr.NewError(cerr.FailedPrecondition, "VAPID keys not configured", nil)
	}
	return connect.NewResponse(&GetVapidPublicKeyResponse{PublicKey: s.vapidEnv.PublicKey}), nil
}

// RegisterPushSubscription is idempotent per endpoint: registering a known
// endpoint refreshes its keys and owner.
func (s *Server) RegisterPushSubscription(ctx context.Context, req *connect.Request[RegisterPushSubscriptionRequest]) (*connect.Response[RegisterPushSubscriptionResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	e := cerr.NewError(cerr.InvalidArgument, "invalid subscription", nil)
	if m.Endpoint == "" {
		e.AddDetailMessageWithCode("endpoint is required", "endpoint.required")
	}
	if m.P256dhKey == "" {
		e.AddDetailMessageWithCode("p256dh key is required", "p256dhKey.required")
	}
	if m.AuthKey == "" {
		e.AddDetailMessageWithCode("auth key is required", "authKey.required")
	}
	if len(e.Details) > 0 {
		return nil, e
	}

	sub := &Subscription{
		UserID:    sess.UserID,
		Email:     sess.NormalizedEmail(),
		Endpoint:  m.Endpoint,
		P256dhKey: m.P256dhKey,
		AuthKey:   m.AuthKey,
		CreatedAt: time.Now(),
	}
	existing, err := s.repo.Get(ctx, m.Endpoint)
	switch {
	case err == nil:
		sub.CreatedAt = existing.CreatedAt
	case !cerr.IsCode(err, cerr.NotFound):
		return nil, err
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	return connect.NewResponse(&RegisterPushSubscriptionResponse{}), nil
}

func (s *Server) UnregisterPushSubscription(ctx context.Context, req *connect.Request[UnregisterPushSubscriptionRequest]) (*connect.Response[UnregisterPushSubscriptionResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Endpoint == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "endpoint is required", nil)
	}
	sub, err := s.repo.Get(ctx, req.Msg.Endpoint)
	if err != nil {
		return nil, err
	}
	if sub.UserID != sess.UserID {
		return nil, cerr.NewError(cerr.PermissionDenied, "subscription belongs to another user", nil)
	}
	if err := s.repo.Delete(ctx, sub.Endpoint); err != nil {
		return nil, err
	}
	return connect.NewResponse(&UnregisterPushSubscriptionResponse{}), nil
}

func (s *Server) SendTestNotification(ctx context.Context, _ *connect.Request[SendTestNotificationRequest]) (*connect.Response[SendTestNotificationResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if !s.vapidEnv.Enabled() {
		return nil, cerr.NewError(cerr.FailedPrecondition, "VAPID keys not configured", nil)
	}
	sent := s.sender.Send(ctx, Recipients{UserIDs: []string{sess.UserID}}, &Payload{
		Title: "taskdeck",
		Body:  "Push notifications are working!",
	})
	return connect.NewResponse(&SendTestNotificationResponse{Sent: sent}), nil
}
