package event

import (
	"net/http"

	"connectrpc.com/connect"
)

func NewHandler(s *Server, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(WatchEventsProcedure, connect.NewServerStreamHandler(WatchEventsProcedure, s.WatchEvents, opts...))
	return "/" + ServiceName + "/", mux
}
