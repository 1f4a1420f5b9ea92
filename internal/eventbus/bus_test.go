package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(1)

	ev := b.PublishNew(TypeTaskCreated, "t1", "u1", []string{"u1"}, nil)
	got := <-ch
	assert.Same(t, ev, got)
	assert.Equal(t, b.Origin(), got.Origin)
	assert.NotEmpty(t, got.ID)

	b.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
}

func TestBus_DropsWhenFull(t *testing.T) {
	b := New()
	_, ch := b.Subscribe(1)
	b.PublishNew(TypeTaskCreated, "t1", "", nil, nil)
	b.PublishNew(TypeTaskCreated, "t2", "", nil, nil)

	require.Len(t, ch, 1)
	assert.Equal(t, "t1", (<-ch).ResourceID)
}

func TestEvent_VisibleTo(t *testing.T) {
	ev := &Event{Audience: []string{"u1"}, AudienceEmails: []string{"Bob@Example.com"}}
	assert.True(t, ev.VisibleTo("u1", ""))
	assert.True(t, ev.VisibleTo("u9", "bob@example.com"))
	assert.False(t, ev.VisibleTo("u9", "eve@example.com"))
	assert.False(t, ev.VisibleTo("", ""))
}

func TestAudience(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Audience([]string{"a", "b"}, []string{"", "b", "c"}))
	assert.Nil(t, Audience())
}
