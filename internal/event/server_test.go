package event_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskdeck/internal/event"
	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/pkg/connectjson"
)

func TestMatch(t *testing.T) {
	ev := &eventbus.Event{
		Type:       eventbus.TypeTaskUpdated,
		ResourceID: "t1",
		Audience:   []string{"alice", "bob"},
		Metadata:   map[string]string{"team_id": "team1"},
	}
	invite := &eventbus.Event{
		Type:           eventbus.TypeTeamMemberInvited,
		ResourceID:     "team1",
		Audience:       []string{"alice"},
		AudienceEmails: []string{"carol@example.com"},
	}

	tests := []struct {
		name  string
		ev    *eventbus.Event
		req   event.WatchEventsRequest
		user  string
		email string
		want  bool
	}{
		{name: "audience member", ev: ev, user: "bob", want: true},
		{name: "outsider", ev: ev, user: "mallory", want: false},
		{name: "type filter hit", ev: ev, req: event.WatchEventsRequest{Types: []eventbus.Type{eventbus.TypeTaskUpdated}}, user: "alice", want: true},
		{name: "type filter miss", ev: ev, req: event.WatchEventsRequest{Types: []eventbus.Type{eventbus.TypeTaskDeleted}}, user: "alice", want: false},
		{name: "team filter", ev: ev, req: event.WatchEventsRequest{TeamID: "team2"}, user: "alice", want: false},
		{name: "invitee by email", ev: invite, user: "carol", email: "Carol@example.com", want: true},
		{name: "team event filtered by resource id", ev: invite, req: event.WatchEventsRequest{TeamID: "team1"}, user: "alice", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, event.Match(tt.ev, &tt.req, tt.user, tt.email))
		})
	}
}

func TestWatchEvents(t *testing.T) {
	bus := eventbus.New()
	auth := session.NewAuthority("secret", "taskdeck")
	prefix, h := event.NewHandler(event.NewServer(bus).WithKeepalive(50*time.Millisecond), connectjson.WithCodec())
	mux := http.NewServeMux()
	mux.Handle(prefix, h)
	srv := httptest.NewServer(session.Middleware(auth)(mux))
	defer srv.Close()

	token, err := auth.Sign(&session.Session{UserID: "alice"}, time.Hour)
	require.NoError(t, err)

	client := connect.NewClient[event.WatchEventsRequest, eventbus.Event](srv.Client(), srv.URL+event.WatchEventsProcedure, connectjson.WithCodec())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req := connect.NewRequest(&event.WatchEventsRequest{})
	req.Header().Set("Authorization", "Bearer "+token)
	stream, err := client.CallServerStream(ctx, req)
	require.NoError(t, err)
	defer stream.Close()

	require.True(t, stream.Receive(), stream.Err())
	ready := stream.Msg()
	assert.Equal(t, eventbus.TypeStreamReady, ready.Type)
	assert.Equal(t, []string{"alice"}, ready.Audience)
	assert.Equal(t, bus.Origin(), ready.Origin)

	// The subscription is live once ready arrives.
	bus.PublishNew(eventbus.TypeTaskCreated, "hidden", "bob", []string{"bob"}, nil)
	bus.PublishNew(eventbus.TypeTaskCreated, "t1", "bob", []string{"alice", "bob"}, nil)
	var got *eventbus.Event
	for got == nil || got.Type.IsControl() {
		require.True(t, stream.Receive(), stream.Err())
		got = stream.Msg()
	}
	assert.Equal(t, "t1", got.ResourceID)
	assert.Equal(t, eventbus.TypeTaskCreated, got.Type)

	// An idle stream keeps writing.
	require.True(t, stream.Receive(), stream.Err())
	assert.Equal(t, eventbus.TypeStreamKeepalive, stream.Msg().Type)
}
