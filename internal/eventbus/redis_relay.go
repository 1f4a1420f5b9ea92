package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/kazz187/taskdeck/pkg/clog"
)

// RedisRelay mirrors bus traffic between server instances over a Redis
// pub/sub channel. Local events are pushed out; events from other origins are
// re-published on the local bus.
type RedisRelay struct {
	bus     *Bus
	client  *redis.Client
	channel string
}

func NewRedisRelay(bus *Bus, client *redis.Client, channel string) *RedisRelay {
	return &RedisRelay{bus: bus, client: client, channel: channel}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Run blocks until ctx is done or the subscription fails.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	subID, local := r.bus.Subscribe(256)
	defer r.bus.Unsubscribe(subID)
	remote := pubsub.Channel()

	slog.InfoContext(ctx, "redis event relay started", "channel", r.channel)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-local:
			if !ok {
				return nil
			}
			if !r.local(ev) {
				continue
			}
			if err := r.push(ctx, ev); err != nil {
				slog.WarnContext(ctx, "failed to relay event", "event_id", ev.ID, clog.ErrorAttributeKey, err)
			}
		case msg, ok := <-remote:
			if !ok {
				return fmt.Errorf("redis channel %s closed", r.channel)
			}
			if err := r.receive(msg.Payload); err != nil {
				slog.WarnContext(ctx, "dropping malformed relayed event", clog.ErrorAttributeKey, err)
			}
		}
	}
}

// local reports whether ev was published on this instance. Only those are
// pushed out, so a relayed event never bounces back.
func (r *RedisRelay) local(ev *Event) bool {
	return ev.Origin == r.bus.Origin()
}

// receive re-publishes a relayed event on the local bus, keeping its
// foreign origin. Our own events coming back over the channel are ignored.
func (r *RedisRelay) receive(payload string) error {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return err
	}
	if ev.Origin == "" || r.local(&ev) {
		return nil
	}
	r.bus.Publish(&ev)
	return nil
}

func (r *RedisRelay) push(ctx context.Context, ev *Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}
