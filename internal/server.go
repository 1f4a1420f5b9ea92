package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/taskdeck/internal/config"
	"github.com/kazz187/taskdeck/internal/event"
	"github.com/kazz187/taskdeck/internal/file"
	"github.com/kazz187/taskdeck/internal/notification"
	"github.com/kazz187/taskdeck/internal/overview"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/settings"
	"github.com/kazz187/taskdeck/internal/task"
	"github.com/kazz187/taskdeck/internal/team"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/clog"
	"github.com/kazz187/taskdeck/pkg/connectjson"
)

type Server struct {
	server             *http.Server
	env                *config.Env
	authority          *session.Authority
	taskServer         *task.Server
	teamServer         *team.Server
	settingsServer     *settings.Server
	overviewServer     *overview.Server
	eventServer        *event.Server
	notificationServer *notification.Server
	fileServer         *file.Server
}

func NewServer(
	env *config.Env,
	authority *session.Authority,
	taskServer *task.Server,
	teamServer *team.Server,
	settingsServer *settings.Server,
	overviewServer *overview.Server,
	eventServer *event.Server,
	notificationServer *notification.Server,
	fileServer *file.Server,
) *Server {
	return &Server{
		env:                env,
		authority:          authority,
		taskServer:         taskServer,
		teamServer:         teamServer,
		settingsServer:     settingsServer,
		overviewServer:     overviewServer,
		eventServer:        eventServer,
		notificationServer: notificationServer,
		fileServer:         fileServer,
	}
}

// Handler builds the full HTTP handler: connect services, the upload API
// under /api, public file serving under /files and the health endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(
			middleware.RequestID,
			clog.SlogChiMiddleware(),
			cerr.NewConvertConnectErrorChiMiddleware(),
		)
		s.fileServer.APIRoutes(r)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})
	})
	r.With(cerr.NewConvertConnectErrorChiMiddleware()).Get("/files/*", s.fileServer.Serve)

	mux := http.NewServeMux()

	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)
	mux.Handle("/files/", r)
	mux.Handle(grpchealth.NewHandler(grpchealth.NewStaticChecker(
		task.ServiceName,
		team.ServiceName,
		settings.ServiceName,
		overview.ServiceName,
		event.ServiceName,
		notification.ServiceName,
	)))

	handlerOpts := []connect.HandlerOption{
		connect.WithInterceptors(s.interceptors()...),
		connectjson.WithCodec(),
	}

	mux.Handle(task.NewHandler(s.taskServer, handlerOpts...))
	mux.Handle(team.NewHandler(s.teamServer, handlerOpts...))
	mux.Handle(settings.NewHandler(s.settingsServer, handlerOpts...))
	mux.Handle(overview.NewHandler(s.overviewServer, handlerOpts...))
	mux.Handle(event.NewHandler(s.eventServer, handlerOpts...))
	mux.Handle(notification.NewHandler(s.notificationServer, handlerOpts...))

	return cors.New(cors.Options{
		AllowedOrigins:   s.env.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(session.Middleware(s.authority)(mux))
}

// ListenAndServe starts the HTTP server. ctx becomes the base context of
// every request, so cancelling it also ends open event streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     h2c.NewHandler(s.Handler(), &http2.Server{}),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) interceptors() []connect.Interceptor {
	return []connect.Interceptor{
		clog.NewSlogConnectInterceptor(),
		cerr.NewConvertConnectErrorInterceptor(),
	}
}
