package eventbus

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Bus struct {
	origin      string
	mu          sync.RWMutex
	subscribers map[string]chan *Event
}

func New() *Bus {
	return &Bus{
		origin:      ulid.Make().String(),
		subscribers: make(map[string]chan *Event),
	}
}

// Origin identifies this process on a shared relay.
func (b *Bus) Origin() string {
	return b.origin
}

func (b *Bus) Subscribe(bufSize int) (string, <-chan *Event) {
	id := ulid.Make().String()
	ch := make(chan *Event, bufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Publish fans the event out without blocking. Subscribers whose buffer is
// full miss it.
func (b *Bus) Publish(event *Event) {
	if event.Origin == "" {
		event.Origin = b.origin
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// NewEvent builds an event with a fresh id. Callers that need to set more
// than the common fields build it here and hand it to Publish.
func NewEvent(eventType Type, resourceID, actorID string, audience []string, metadata map[string]string) *Event {
	return &Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		ResourceID: resourceID,
		ActorID:    actorID,
		Audience:   audience,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
}

func (b *Bus) PublishNew(eventType Type, resourceID, actorID string, audience []string, metadata map[string]string) *Event {
	event := NewEvent(eventType, resourceID, actorID, audience, metadata)
	b.Publish(event)
	return event
}
