package eventbus

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRelay_Receive(t *testing.T) {
	b := New()
	r := NewRedisRelay(b, nil, "taskdeck-events")
	_, ch := b.Subscribe(4)

	foreign := NewEvent(TypeTaskUpdated, "t1", "bob", []string{"alice"}, nil)
	foreign.Origin = "another-instance"
	data, err := json.Marshal(foreign)
	require.NoError(t, err)
	require.NoError(t, r.receive(string(data)))

	got := <-ch
	assert.Equal(t, "t1", got.ResourceID)
	assert.Equal(t, "another-instance", got.Origin)
	assert.False(t, r.local(got))

	// Our own events echoed back by Redis are not published twice.
	own := NewEvent(TypeTaskUpdated, "t2", "bob", nil, nil)
	own.Origin = b.Origin()
	data, err = json.Marshal(own)
	require.NoError(t, err)
	require.NoError(t, r.receive(string(data)))
	assert.True(t, r.local(own))

	assert.Error(t, r.receive("{not json"))
	assert.Empty(t, ch)
}

// TestRedisRelay_Run needs a reachable Redis, e.g.
// TASKDECK_TEST_REDIS_URL=redis://localhost:6379/0.
func TestRedisRelay_Run(t *testing.T) {
	url := os.Getenv("TASKDECK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TASKDECK_TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	channel := "taskdeck-relay-test-" + NewEvent(TypeTaskCreated, "", "", nil, nil).ID
	newInstance := func() *Bus {
		client, err := NewRedisClient(url)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })
		b := New()
		go func() { _ = NewRedisRelay(b, client, channel).Run(ctx) }()
		return b
	}
	a, b := newInstance(), newInstance()
	_, fromA := a.Subscribe(16)
	_, fromB := b.Subscribe(16)

	// Subscriptions come up asynchronously; publish until b sees one.
	var got *Event
	require.Eventually(t, func() bool {
		a.PublishNew(TypeTaskCreated, "t1", "alice", []string{"alice"}, nil)
		select {
		case got = <-fromB:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 4*time.Second, 10*time.Millisecond)
	assert.Equal(t, a.Origin(), got.Origin)
	assert.Equal(t, "t1", got.ResourceID)

	// a only ever sees its own publications, never an echo.
	for len(fromA) > 0 {
		assert.Equal(t, a.Origin(), (<-fromA).Origin)
	}
}
