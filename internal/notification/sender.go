package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sourcegraph/conc/pool"

	"github.com/kazz187/taskdeck/internal/config"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/clog"
)

type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Recipients selects subscriptions by user id or by email.
type Recipients struct {
	UserIDs []string
	Emails  []string
}

func (r Recipients) match(s *Subscription) bool {
	if slices.Contains(r.UserIDs, s.UserID) {
		return true
	}
	return s.Email != "" && slices.ContainsFunc(r.Emails, func(e string) bool { return strings.EqualFold(e, s.Email) })
}

// PushFunc delivers one message to one endpoint.
type PushFunc func(message []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

type Sender struct {
	vapidEnv *config.VAPIDEnv
	repo     Repository
	push     PushFunc
}

func NewSender(vapidEnv *config.VAPIDEnv, repo Repository) *Sender {
	return &Sender{vapidEnv: vapidEnv, repo: repo, push: webpush.SendNotification}
}

// WithPushFunc replaces the web push transport.
func (s *Sender) WithPushFunc(push PushFunc) *Sender {
	s.push = push
	return s
}

// Send delivers payload to every subscription of the recipients and
// returns how many deliveries succeeded. Endpoints reporting 410 Gone are
// removed.
func (s *Sender) Send(ctx context.Context, to Recipients, payload *Payload) int {
	if !s.vapidEnv.Enabled() {
		slog.DebugContext(ctx, "push notification: VAPID keys not configured, skipping")
		return 0
	}
	subs, err := s.repo.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "push notification: failed to list subscriptions", clog.ErrorAttributeKey, err)
		return 0
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "push notification: failed to marshal payload", clog.ErrorAttributeKey, err)
		return 0
	}

	p := pool.NewWithResults[bool]().WithMaxGoroutines(8)
	for _, sub := range subs {
		if !to.match(sub) {
			continue
		}
		p.Go(func() bool {
			return s.sendTo(ctx, sub, data)
		})
	}
	sent := 0
	for _, ok := range p.Wait() {
		if ok {
			sent++
		}
	}
	return sent
}

func (s *Sender) sendTo(ctx context.Context, sub *Subscription, data []byte) bool {
	resp, err := s.push(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.vapidEnv.PublicKey,
		VAPIDPrivateKey: s.vapidEnv.PrivateKey,
		Subscriber:      s.vapidEnv.Contact,
		TTL:             86400,
	})
	if err != nil {
		slog.ErrorContext(ctx, "push notification: failed to send", "endpoint", sub.Endpoint, clog.ErrorAttributeKey, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		slog.InfoContext(ctx, "push notification: subscription expired, removing", "endpoint", sub.Endpoint)
		if err := s.repo.Delete(ctx, sub.Endpoint); err != nil && !cerr.IsCode(err, cerr.NotFound) {
			slog.ErrorContext(ctx, "push notification: failed to delete expired subscription", "endpoint", sub.Endpoint, clog.ErrorAttributeKey, err)
		}
		return false
	}
	if resp.StatusCode >= 400 {
		slog.WarnContext(ctx, "push notification: unexpected status", "endpoint", sub.Endpoint, "status", resp.StatusCode)
		return false
	}
	return true
}
