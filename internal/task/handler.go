package task

import (
	"net/http"

	"connectrpc.com/connect"
)

// NewHandler mounts every TaskService procedure. It returns the path prefix
// to register the handler under.
func NewHandler(s *Server, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(CreateTaskProcedure, connect.NewUnaryHandler(CreateTaskProcedure, s.CreateTask, opts...))
	mux.Handle(GetTaskProcedure, connect.NewUnaryHandler(GetTaskProcedure, s.GetTask, opts...))
	mux.Handle(ListTasksProcedure, connect.NewUnaryHandler(ListTasksProcedure, s.ListTasks, opts...))
	mux.Handle(GetBoardProcedure, connect.NewUnaryHandler(GetBoardProcedure, s.GetBoard, opts...))
	mux.Handle(UpdateTaskProcedure, connect.NewUnaryHandler(UpdateTaskProcedure, s.UpdateTask, opts...))
	mux.Handle(UpdateTaskStatusProcedure, connect.NewUnaryHandler(UpdateTaskStatusProcedure, s.UpdateTaskStatus, opts...))
	mux.Handle(MoveTaskProcedure, connect.NewUnaryHandler(MoveTaskProcedure, s.MoveTask, opts...))
	mux.Handle(DeleteTaskProcedure, connect.NewUnaryHandler(DeleteTaskProcedure, s.DeleteTask, opts...))
	mux.Handle(BatchDeleteTasksProcedure, connect.NewUnaryHandler(BatchDeleteTasksProcedure, s.BatchDeleteTasks, opts...))
	mux.Handle(DuplicateTaskProcedure, connect.NewUnaryHandler(DuplicateTaskProcedure, s.DuplicateTask, opts...))
	return "/" + ServiceName + "/", mux
}
