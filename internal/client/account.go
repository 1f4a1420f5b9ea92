package client

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/kazz187/taskdeck/internal/event"
	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/internal/notification"
	"github.com/kazz187/taskdeck/internal/overview"
	"github.com/kazz187/taskdeck/internal/settings"
)

func (c *Client) GetSettings(ctx context.Context) (*settings.UserSettings, error) {
	resp, err := unary[settings.GetSettingsRequest, settings.GetSettingsResponse](ctx, c, settings.GetSettingsProcedure, &settings.GetSettingsRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Settings, nil
}

func (c *Client) UpdateSettings(ctx context.Context, req *settings.UpdateSettingsRequest) (*settings.UserSettings, error) {
	resp, err := unary[settings.UpdateSettingsRequest, settings.UpdateSettingsResponse](ctx, c, settings.UpdateSettingsProcedure, req)
	if err != nil {
		return nil, err
	}
	return resp.Settings, nil
}

func (c *Client) GetOverview(ctx context.Context) (*overview.Overview, error) {
	resp, err := unary[overview.GetOverviewRequest, overview.GetOverviewResponse](ctx, c, overview.GetOverviewProcedure, &overview.GetOverviewRequest{})
	if err != nil {
		return nil, err
	}
	return &resp.Overview, nil
}

func (c *Client) GetVapidPublicKey(ctx context.Context) (string, error) {
	resp, err := unary[notification.GetVapidPublicKeyRequest, notification.GetVapidPublicKeyResponse](ctx, c,
		notification.GetVapidPublicKeyProcedure, &notification.GetVapidPublicKeyRequest{})
	if err != nil {
		return "", err
	}
	return resp.PublicKey, nil
}

func (c *Client) RegisterPushSubscription(ctx context.Context, req *notification.RegisterPushSubscriptionRequest) error {
	_, err := unary[notification.RegisterPushSubscriptionRequest, notification.RegisterPushSubscriptionResponse](ctx, c,
		notification.RegisterPushSubscriptionProcedure, req)
	return err
}

func (c *Client) UnregisterPushSubscription(ctx context.Context, endpoint string) error {
	_, err := unary[notification.UnregisterPushSubscriptionRequest, notification.UnregisterPushSubscriptionResponse](ctx, c,
		notification.UnregisterPushSubscriptionProcedure, &notification.UnregisterPushSubscriptionRequest{Endpoint: endpoint})
	return err
}

func (c *Client) SendTestNotification(ctx context.Context) (int, error) {
	resp, err := unary[notification.SendTestNotificationRequest, notification.SendTestNotificationResponse](ctx, c,
		notification.SendTestNotificationProcedure, &notification.SendTestNotificationRequest{})
	if err != nil {
		return 0, err
	}
	return resp.Sent, nil
}

// WatchEvents opens the event stream and returns once the server has
// confirmed the subscription, so events published after it returns are
// delivered. The caller must Close the stream.
func (c *Client) WatchEvents(ctx context.Context, req *event.WatchEventsRequest) (*EventStream, error) {
	rpc := connect.NewClient[event.WatchEventsRequest, eventbus.Event](c.httpClient, c.baseURL+event.WatchEventsProcedure, c.opts...)
	stream, err := rpc.CallServerStream(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	for stream.Receive() {
		if stream.Msg().Type == eventbus.TypeStreamReady {
			return &EventStream{stream: stream}, nil
		}
	}
	err = stream.Err()
	_ = stream.Close()
	if err == nil {
		err = errors.New("event stream closed before it was ready")
	}
	return nil, err
}

// EventStream yields domain events. Stream control events are consumed
// here and never surface to the caller.
type EventStream struct {
	stream *connect.ServerStreamForClient[eventbus.Event]
	msg    *eventbus.Event
}

func (s *EventStream) Receive() bool {
	for s.stream.Receive() {
		if ev := s.stream.Msg(); !ev.Type.IsControl() {
			s.msg = ev
			return true
		}
	}
	s.msg = nil
	return false
}

func (s *EventStream) Msg() *eventbus.Event {
	return s.msg
}

func (s *EventStream) Err() error {
	return s.stream.Err()
}

func (s *EventStream) Close() error {
	return s.stream.Close()
}
