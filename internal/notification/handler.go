package notification

import (
	"net/http"

	"connectrpc.com/connect"
)

func NewHandler(s *Server, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(GetVapidPublicKeyProcedure, connect.NewUnaryHandler(GetVapidPublicKeyProcedure, s.GetVapidPublicKey, opts...))
	mux.Handle(RegisterPushSubscriptionProcedure, connect.NewUnaryHandler(RegisterPushSubscriptionProcedure, s.RegisterPushSubscription, opts...))
	mux.Handle(UnregisterPushSubscriptionProcedure, connect.NewUnaryHandler(UnregisterPushSubscriptionProcedure, s.UnregisterPushSubscription, opts...))
	mux.Handle(SendTestNotificationProcedure, connect.NewUnaryHandler(SendTestNotificationProcedure, s.SendTestNotification, opts...))
	return "/" + ServiceName + "/", mux
}
