package settings

import (
	"net/http"

	"connectrpc.com/connect"
)

func NewHandler(s *Server, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(GetSettingsProcedure, connect.NewUnaryHandler(GetSettingsProcedure, s.GetSettings, opts...))
	mux.Handle(UpdateSettingsProcedure, connect.NewUnaryHandler(UpdateSettingsProcedure, s.UpdateSettings, opts...))
	return "/" + ServiceName + "/", mux
}
