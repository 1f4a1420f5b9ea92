package client

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/task"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/clog"
)

// Store is the client's view of tasks: the state last acknowledged by the
// server with every pending command replayed on top of it.
type Store struct {
	mu        sync.RWMutex
	sess      *session.Session
	now       func() time.Time
	confirmed map[string]*task.Task
	pending   []Command
	view      map[string]*task.Task
}

func NewStore(sess *session.Session) *Store {
	return &Store{
		sess:      sess,
		now:       time.Now,
		confirmed: map[string]*task.Task{},
		view:      map[string]*task.Task{},
	}
}

// Reset replaces the acknowledged state with a fresh server listing.
// Pending commands are replayed on top.
func (s *Store) Reset(views []*task.TaskView) error {
	confirmed := make(map[string]*task.Task, len(views))
	for _, v := range views {
		t, err := v.Task()
		if err != nil {
			return fmt.Errorf("task %s: %w", v.ID, err)
		}
		confirmed[t.ID] = t
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = confirmed
	s.rebuild()
	return nil
}

func (s *Store) Get(id string) (*task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.view[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Tasks returns the current view, newest first.
func (s *Store) Tasks() []*task.Task {
	s.mu.RLock()
	tasks := make([]*task.Task, 0, len(s.view))
	for _, t := range s.view {
		tasks = append(tasks, t.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(tasks, func(a, b *task.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return tasks
}

func (s *Store) Board() task.Board {
	return task.ProjectBoard(s.Tasks())
}

func (s *Store) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

// apply runs cmd against the view and records it as pending. A command that
// fails locally is never sent.
func (s *Store) apply(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.view[cmd.TaskID()]
	if !ok {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	next := cur.Clone()
	if err := cmd.Apply(next, s.sess, s.now()); err != nil {
		return err
	}
	s.view[next.ID] = next
	s.pending = append(s.pending, cmd)
	return nil
}

// ack records the server's answer to cmd.
func (s *Store) ack(cmd Command, v *task.TaskView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(cmd)
	if v != nil {
		t, err := v.Task()
		if err == nil {
			s.confirmed[t.ID] = t
			s.rebuild()
			return
		}
		slog.Warn("failed to read acknowledged task", "task_id", v.ID, clog.ErrorAttributeKey, err)
	}
	if cur, ok := s.confirmed[cmd.TaskID()]; ok {
		next := cur.Clone()
		if err := cmd.Apply(next, s.sess, s.now()); err == nil {
			s.confirmed[next.ID] = next
		}
	}
	s.rebuild()
}

// fail drops cmd and rolls the view back to the acknowledged state plus
// the commands still pending.
func (s *Store) fail(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(cmd)
	s.rebuild()
}

func (s *Store) remove(cmd Command) {
	if i := slices.Index(s.pending, cmd); i >= 0 {
		s.pending = slices.Delete(s.pending, i, i+1)
	}
}

func (s *Store) rebuild() {
	view := make(map[string]*task.Task, len(s.confirmed))
	for id, t := range s.confirmed {
		view[id] = t.Clone()
	}
	now := s.now()
	for _, cmd := range s.pending {
		cur, ok := view[cmd.TaskID()]
		if !ok {
			continue
		}
		next := cur.Clone()
		if err := cmd.Apply(next, s.sess, now); err != nil {
			continue
		}
		view[next.ID] = next
	}
	s.view = view
}
