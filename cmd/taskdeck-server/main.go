package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc/pool"

	server "github.com/kazz187/taskdeck/internal"
	"github.com/kazz187/taskdeck/internal/config"
	"github.com/kazz187/taskdeck/internal/event"
	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/internal/file"
	"github.com/kazz187/taskdeck/internal/notification"
	notificationrepo "github.com/kazz187/taskdeck/internal/notification/repositoryimpl"
	"github.com/kazz187/taskdeck/internal/overview"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/settings"
	settingsrepo "github.com/kazz187/taskdeck/internal/settings/repositoryimpl"
	"github.com/kazz187/taskdeck/internal/task"
	taskrepo "github.com/kazz187/taskdeck/internal/task/repositoryimpl"
	"github.com/kazz187/taskdeck/internal/team"
	teamrepo "github.com/kazz187/taskdeck/internal/team/repositoryimpl"
	"github.com/kazz187/taskdeck/pkg/clog"
	"github.com/kazz187/taskdeck/pkg/panicerr"
	"github.com/kazz187/taskdeck/pkg/storage"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.IsLocal() {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, env); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, env *config.Env) error {
	// Setup storage
	store, err := storage.Open(ctx, env.StorageEnv.StorageConfig())
	if err != nil {
		return err
	}
	defer closeStorage(store)
	fileStore, err := storage.Open(ctx, env.FileStorageEnv.StorageConfig())
	if err != nil {
		return err
	}
	defer closeStorage(fileStore)

	bus := eventbus.New()

	// Setup repositories
	taskRepo := taskrepo.NewYAMLRepository(store)
	teamRepo := teamrepo.NewYAMLRepository(store)
	settingsRepo := settingsrepo.NewYAMLRepository(store)
	pushSubRepo := notificationrepo.NewYAMLRepository(store)

	// Setup servers
	authority := session.NewAuthority(env.JWTSecret, env.JWTIssuer)
	pushSender := notification.NewSender(&env.VAPIDEnv, pushSubRepo)
	if !env.VAPIDEnv.Enabled() {
		slog.Warn("VAPID keys are not configured; push notifications are disabled")
	}

	srv := server.NewServer(
		env,
		authority,
		task.NewServer(taskRepo, teamRepo, bus),
		team.NewServer(teamRepo, bus),
		settings.NewServer(settingsRepo, bus),
		overview.NewServer(taskRepo, teamRepo),
		event.NewServer(bus),
		notification.NewServer(&env.VAPIDEnv, pushSubRepo, pushSender),
		file.NewServer(fileStore, bus, env.PublicBaseURL, env.MaxAttachmentSize),
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(panicerr.Worker("notification dispatcher", notification.NewDispatcher(bus, settingsRepo, pushSender).Run))
	p.Go(panicerr.Worker("assignment pruner", task.NewAssignmentPruner(taskRepo, bus).Run))

	if env.RedisEnv.URL != "" {
		rdb, err := eventbus.NewRedisClient(env.RedisEnv.URL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		p.Go(panicerr.Worker("redis relay", eventbus.NewRedisRelay(bus, rdb, env.RedisEnv.Channel).Run))
	}

	p.Go(panicerr.Worker("http server", func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			slog.Info("shutting down server")
			// Streams end with the base context; give the rest time to finish.
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown error", "error", err)
			}
		}()
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}))

	return p.Wait()
}

func closeStorage(s storage.Storage) {
	if c, ok := s.(io.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Error("failed to close storage", "error", err)
		}
	}
}
