package task

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/team"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/clog"
)

type Server struct {
	repo     Repository
	teamRepo team.Repository
	eventBus *eventbus.Bus
	now      func() time.Time
}

func NewServer(repo Repository, teamRepo team.Repository, eventBus *eventbus.Bus) *Server {
	return &Server{
		repo:     repo,
		teamRepo: teamRepo,
		eventBus: eventBus,
		now:      time.Now,
	}
}

// teamOf loads the owning team. A team that no longer exists yields nil.
func (s *Server) teamOf(ctx context.Context, teamID string) (*team.Team, error) {
	if teamID == "" {
		return nil, nil
	}
	tm, err := s.teamRepo.Get(ctx, teamID)
	if cerr.IsCode(err, cerr.NotFound) {
		return nil, nil
	}
	return tm, err
}

func (s *Server) load(ctx context.Context, sess *session.Session, id string, action Action) (*Task, *team.Team, error) {
	if id == "" {
		return nil, nil, cerr.NewError(cerr.InvalidArgument, "task id is required", nil)
	}
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	tm, err := s.teamOf(ctx, t.TeamID)
	if err != nil {
		return nil, nil, err
	}
	if tm == nil {
		// The team was deleted and the pruner has not caught up yet.
		t.DetachTeam()
	}
	if err := Authorize(t, tm, sess, action); err != nil {
		return nil, nil, err
	}
	clog.AddAttribute(ctx, "task.id", t.ID)
	return t, tm, nil
}

func audience(t *Task, tm *team.Team) []string {
	ids := [][]string{{t.UserID}, t.AssignedTo}
	if tm != nil {
		ids = append(ids, tm.MemberIDs())
	}
	return eventbus.Audience(ids...)
}

func (s *Server) publish(typ eventbus.Type, t *Task, tm *team.Team, sess *session.Session, metadata map[string]string) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadata["owner_id"] = t.UserID
	metadata["title"] = t.Title
	if t.TeamID != "" {
		metadata["team_id"] = t.TeamID
	}
	s.eventBus.PublishNew(typ, t.ID, sess.UserID, audience(t, tm), metadata)
}

func (s *Server) publishAssigned(t *Task, tm *team.Team, sess *session.Session, prev []string) {
	var added []string
	for _, id := range t.AssignedTo {
		if !slices.Contains(prev, id) {
			added = append(added, id)
		}
	}
	if len(added) == 0 {
		return
	}
	s.publish(eventbus.TypeTaskAssigned, t, tm, sess, map[string]string{"assignees": strings.Join(added, ",")})
}

// checkTeamTask verifies the caller can put a task into tm with the given
// assignees and attachments. prevAssigned is the assignment already stored
// for this team, nil for a new task or a team change.
func checkTeamTask(t *Task, prevAssigned []string, tm *team.Team, sess *session.Session) error {
	if t.TeamID != "" {
		if tm == nil {
			return cerr.NewError(cerr.NotFound, "team not found", nil)
		}
		if err := tm.RequireMember(sess); err != nil {
			return err
		}
		if err := checkAttachments(t.Attachments, tm); err != nil {
			return err
		}
	}
	return ValidateAssignment(t.AssignedTo, prevAssigned, tm, sess)
}

// checkAttachments applies the team's attachment settings. Personal tasks
// (nil tm) are only bound by the upload limits.
func checkAttachments(attachments []Attachment, tm *team.Team) error {
	if tm == nil || len(attachments) == 0 {
		return nil
	}
	if !tm.Settings.AllowAttachments {
		return cerr.NewError(cerr.PermissionDenied, "attachments are disabled for this team", nil)
	}
	if limit := tm.Settings.MaxAttachmentSize; limit > 0 {
		e := cerr.NewError(cerr.InvalidArgument, "invalid task", nil)
		for _, a := range attachments {
			if a.Size > limit {
				e.AddDetailMessageWithCode(fmt.Sprintf("%s exceeds the team's attachment size limit", a.Name), "attachments.max_size")
			}
		}
		if len(e.Details) > 0 {
			return e
		}
	}
	return nil
}

func (s *Server) create(ctx context.Context, sess *session.Session, t *Task) (*Task, error) {
	tm, err := s.teamOf(ctx, t.TeamID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	t.ID = ulid.Make().String()
	t.UserID = sess.UserID
	t.Title = strings.TrimSpace(t.Title)
	t.State = Active{}
	t.Labels = NormalizeLabels(t.Labels)
	t.AssignedTo = NormalizeIDs(t.AssignedTo)
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := t.Validate(nil, now); err != nil {
		return nil, err
	}
	if err := checkTeamTask(t, nil, tm, sess); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publish(eventbus.TypeTaskCreated, t, tm, sess, nil)
	s.publishAssigned(t, tm, sess, nil)
	return t, nil
}

func (s *Server) CreateTask(ctx context.Context, req *connect.Request[CreateTaskRequest]) (*connect.Response[CreateTaskResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	if m.Category == "" {
		m.Category = CategoryWork
	}
	if m.Priority == "" {
		m.Priority = PriorityMedium
	}
	t, err := s.create(ctx, sess, &Task{
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		Priority:    m.Priority,
		DueDate:     m.DueDate,
		Labels:      m.Labels,
		Attachments: m.Attachments,
		TeamID:      m.TeamID,
		AssignedTo:  m.AssignedTo,
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&CreateTaskResponse{Task: ToView(t)}), nil
}

func (s *Server) GetTask(ctx context.Context, req *connect.Request[GetTaskRequest]) (*connect.Response[GetTaskResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	t, _, err := s.load(ctx, sess, req.Msg.ID, ActionView)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetTaskResponse{Task: ToView(t)}), nil
}

// scopeQuery turns a listing scope into a repository query.
func (s *Server) scopeQuery(ctx context.Context, sess *session.Session, scope Scope, teamID string) (Query, error) {
	switch scope {
	case "", ScopeOwn:
		return Query{OwnerID: sess.UserID}, nil
	case ScopeAssigned:
		return Query{AssigneeID: sess.UserID}, nil
	case ScopeTeam:
		tm, err := s.teamRepo.Get(ctx, teamID)
		if err != nil {
			return Query{}, err
		}
		if err := tm.RequireMember(sess); err != nil {
			return Query{}, err
		}
		return Query{TeamIDs: []string{tm.ID}}, nil
	case ScopeAll:
		teams, err := team.ListForMember(ctx, s.teamRepo, sess.UserID)
		if err != nil {
			return Query{}, err
		}
		q := Query{OwnerID: sess.UserID, AssigneeID: sess.UserID}
		for _, tm := range teams {
			q.TeamIDs = append(q.TeamIDs, tm.ID)
		}
		return q, nil
	default:
		return Query{}, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown scope %q", scope), nil)
	}
}

func (s *Server) ListTasks(ctx context.Context, req *connect.Request[ListTasksRequest]) (*connect.Response[ListTasksResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	q, err := s.scopeQuery(ctx, sess, m.Scope, m.TeamID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	view := ProjectList(tasks, ListOptions{Filter: m.Filter, SortBy: m.SortBy, Ascending: m.Ascending})

	total := len(view.Tasks)
	page := view.Tasks
	if m.Offset > 0 {
		page = page[min(m.Offset, total):]
	}
	if m.Limit > 0 && len(page) > m.Limit {
		page = page[:m.Limit]
	}
	return connect.NewResponse(&ListTasksResponse{
		Tasks:  ToViews(page),
		Counts: view.Counts,
		Total:  total,
	}), nil
}

func (s *Server) GetBoard(ctx context.Context, req *connect.Request[GetBoardRequest]) (*connect.Response[GetBoardResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	q, err := s.scopeQuery(ctx, sess, req.Msg.Scope, req.Msg.TeamID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	board := ProjectBoard(FilterTasks(tasks, req.Msg.Filter))
	resp := &GetBoardResponse{Columns: make([]BoardColumnView, len(board.Columns))}
	for i, col := range board.Columns {
		resp.Columns[i] = BoardColumnView{Column: col.Column, Label: col.Column.Label(), Tasks: ToViews(col.Tasks)}
	}
	return connect.NewResponse(resp), nil
}

func (s *Server) UpdateTask(ctx context.Context, req *connect.Request[UpdateTaskRequest]) (*connect.Response[UpdateTaskResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	prev, tm, err := s.load(ctx, sess, m.ID, ActionEdit)
	if err != nil {
		return nil, err
	}
	if prev.IsDeleted() {
		return nil, cerr.NewError(cerr.FailedPrecondition, "task has been deleted", nil)
	}

	next := prev.Clone()
	m.ApplyFields(next)
	prevAssigned := prev.AssignedTo
	if m.TeamID != nil && *m.TeamID != prev.TeamID {
		prevAssigned = nil
		if prev.UserID != sess.UserID {
			return nil, cerr.NewError(cerr.PermissionDenied, "only the owner can move a task between teams", nil)
		}
		next.TeamID = *m.TeamID
		if tm, err = s.teamOf(ctx, next.TeamID); err != nil {
			return nil, err
		}
		if m.AssignedTo == nil {
			next.AssignedTo = nil
		}
	}
	if m.AssignedTo != nil {
		next.AssignedTo = NormalizeIDs(*m.AssignedTo)
	}

	now := s.now()
	if err := next.Validate(prev, now); err != nil {
		return nil, err
	}
	if err := checkTeamTask(next, prevAssigned, tm, sess); err != nil {
		return nil, err
	}
	next.UpdatedAt = now
	if err := s.repo.Update(ctx, next); err != nil {
		return nil, err
	}

	s.publish(eventbus.TypeTaskUpdated, next, tm, sess, nil)
	s.publishAssigned(next, tm, sess, prev.AssignedTo)
	return connect.NewResponse(&UpdateTaskResponse{Task: ToView(next)}), nil
}

func (s *Server) transition(ctx context.Context, sess *session.Session, id string, to Status, completion *CompletionRequest, confirm bool) (*UpdateTaskStatusResponse, error) {
	t, tm, err := s.load(ctx, sess, id, ActionEdit)
	if err != nil {
		return nil, err
	}
	if completion != nil {
		if err := checkAttachments(completion.Attachments, tm); err != nil {
			return nil, err
		}
	}
	res, err := t.TransitionTo(to, sess, TransitionOptions{
		Completion:     completion.input(),
		ConfirmDiscard: confirm,
	}, s.now())
	if err != nil {
		return nil, err
	}
	if res.Changed {
		if err := s.repo.Update(ctx, t); err != nil {
			return nil, err
		}
		s.publish(eventbus.TypeTaskStatusChanged, t, tm, sess, map[string]string{
			"from": string(res.From),
			"to":   string(res.To),
		})
	}
	return &UpdateTaskStatusResponse{
		Task:               ToView(t),
		Changed:            res.Changed,
		DroppedAttachments: res.Dropped,
	}, nil
}

func (s *Server) UpdateTaskStatus(ctx context.Context, req *connect.Request[UpdateTaskStatusRequest]) (*connect.Response[UpdateTaskStatusResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	to, err := ParseStatus(req.Msg.Status)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, err.Error(), nil)
	}
	resp, err := s.transition(ctx, sess, req.Msg.ID, to, req.Msg.Completion, req.Msg.ConfirmDiscard)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(resp), nil
}

func (s *Server) MoveTask(ctx context.Context, req *connect.Request[MoveTaskRequest]) (*connect.Response[MoveTaskResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	mv := req.Msg.Move
	to, ok := mv.Transition()
	if !ok {
		t, _, err := s.load(ctx, sess, mv.TaskID, ActionView)
		if err != nil {
			return nil, err
		}
		return connect.NewResponse(&MoveTaskResponse{Task: ToView(t)}), nil
	}
	resp, err := s.transition(ctx, sess, mv.TaskID, to, req.Msg.Completion, req.Msg.ConfirmDiscard)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(resp), nil
}

func (s *Server) softDelete(ctx context.Context, sess *session.Session, id string) error {
	t, tm, err := s.load(ctx, sess, id, ActionDelete)
	if err != nil {
		return err
	}
	if !t.SoftDelete(s.now()) {
		return nil
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return err
	}
	s.publish(eventbus.TypeTaskDeleted, t, tm, sess, nil)
	return nil
}

func (s *Server) DeleteTask(ctx context.Context, req *connect.Request[DeleteTaskRequest]) (*connect.Response[DeleteTaskResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.softDelete(ctx, sess, req.Msg.ID); err != nil {
		return nil, err
	}
	return connect.NewResponse(&DeleteTaskResponse{}), nil
}

// BatchDeleteTasks deletes each task independently; one failure does not
// stop the rest.
func (s *Server) BatchDeleteTasks(ctx context.Context, req *connect.Request[BatchDeleteTasksRequest]) (*connect.Response[BatchDeleteTasksResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	resp := &BatchDeleteTasksResponse{Deleted: []string{}}
	for _, id := range NormalizeIDs(req.Msg.IDs) {
		if err := s.softDelete(ctx, sess, id); err != nil {
			f := BatchFailure{ID: id, Code: cerr.CodeOf(err).String(), Message: err.Error()}
			var ce *cerr.Error
			if errors.As(err, &ce) {
				f.Message = ce.Msg
			}
			resp.Failed = append(resp.Failed, f)
			continue
		}
		resp.Deleted = append(resp.Deleted, id)
	}
	clog.AddAttributes(ctx, map[string]any{"batch.deleted": len(resp.Deleted), "batch.failed": len(resp.Failed)})
	return connect.NewResponse(resp), nil
}

// DuplicateTask copies a task as a new active task owned by the caller,
// without due date or completion.
func (s *Server) DuplicateTask(ctx context.Context, req *connect.Request[DuplicateTaskRequest]) (*connect.Response[DuplicateTaskResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	src, _, err := s.load(ctx, sess, req.Msg.ID, ActionView)
	if err != nil {
		return nil, err
	}
	cp := src.Clone()
	cp.Title = truncateRunes("Copy of "+src.Title, maxTitleLength)
	cp.DueDate = nil
	t, err := s.create(ctx, sess, cp)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&DuplicateTaskResponse{Task: ToView(t)}), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
