package client

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/clog"
)

const defaultQueueSize = 64

// Queue applies commands to a Store right away and sends them to the server
// one at a time, in submission order.
type Queue struct {
	mu      sync.Mutex
	store   *Store
	api     TaskAPI
	cmds    chan Command
	onError func(Command, error)
}

type QueueOption func(*Queue)

// WithErrorHandler is called after a command was rejected by the server and
// the store rolled back.
func WithErrorHandler(fn func(Command, error)) QueueOption {
	return func(q *Queue) { q.onError = fn }
}

func WithQueueSize(n int) QueueOption {
	return func(q *Queue) { q.cmds = make(chan Command, n) }
}

func NewQueue(store *Store, api TaskAPI, opts ...QueueOption) *Queue {
	q := &Queue{store: store, api: api, cmds: make(chan Command, defaultQueueSize)}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Submit applies cmd locally and schedules it. Errors from the local apply
// are returned directly and nothing is sent.
func (q *Queue) Submit(cmd Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.store.apply(cmd); err != nil {
		return err
	}
	select {
	case q.cmds <- cmd:
		return nil
	default:
		q.store.fail(cmd)
		return cerr.NewError(cerr.ResourceExhausted, "too many pending changes", nil)
	}
}

// Run sends queued commands until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-q.cmds:
			q.send(ctx, cmd)
		}
	}
}

// Flush sends the commands queued so far and returns once each one is
// acknowledged or rolled back. It must not run alongside Run.
func (q *Queue) Flush(ctx context.Context) {
	for {
		select {
		case cmd := <-q.cmds:
			q.send(ctx, cmd)
		default:
			return
		}
	}
}

func (q *Queue) send(ctx context.Context, cmd Command) {
	v, err := cmd.Send(ctx, q.api)
	if err != nil {
		slog.WarnContext(ctx, "change rejected, rolling back", "task_id", cmd.TaskID(), clog.ErrorAttributeKey, err)
		q.store.fail(cmd)
		if q.onError != nil {
			q.onError(cmd, err)
		}
		return
	}
	q.store.ack(cmd, v)
}
