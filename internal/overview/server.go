package overview

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/task"
	"github.com/kazz187/taskdeck/internal/team"
)

const ServiceName = "taskdeck.v1.OverviewService"

const GetOverviewProcedure = "/" + ServiceName + "/GetOverview"

type GetOverviewRequest struct{}

type GetOverviewResponse struct {
	Overview Overview `json:"overview"`
}

type Server struct {
	taskRepo task.Repository
	teamRepo team.Repository
	now      func() time.Time
}

func NewServer(taskRepo task.Repository, teamRepo team.Repository) *Server {
	return &Server{taskRepo: taskRepo, teamRepo: teamRepo, now: time.Now}
}

// GetOverview summarizes the caller's own tasks and the teams they belong to.
func (s *Server) GetOverview(ctx context.Context, _ *connect.Request[GetOverviewRequest]) (*connect.Response[GetOverviewResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.List(ctx, task.Query{OwnerID: sess.UserID})
	if err != nil {
		return nil, err
	}
	teams, err := team.ListForMember(ctx, s.teamRepo, sess.UserID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetOverviewResponse{Overview: Compute(tasks, teams, s.now())}), nil
}

func NewHandler(s *Server, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(GetOverviewProcedure, connect.NewUnaryHandler(GetOverviewProcedure, s.GetOverview, opts...))
	return "/" + ServiceName + "/", mux
}
