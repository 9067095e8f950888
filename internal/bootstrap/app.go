package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/tempcast/internal/infra/config"
	"github.com/yanqian/tempcast/internal/infra/scheduler"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the HTTP server and the optional daily scheduler.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	scheduler *scheduler.Scheduler
}

// NewApp is used by Wire to build the runnable app. sched may be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, sched *scheduler.Scheduler) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, scheduler: sched}
}

// Run starts the HTTP server and scheduler and blocks until ctx is done or the server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	if a.scheduler != nil {
		a.scheduler.Start()
		a.logger.Info("forecast scheduler started", "cron", a.cfg.Schedule.Cron, "location", a.cfg.Location.Name)
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.shutdown()
	case err := <-errCh:
		if a.scheduler != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			a.scheduler.Stop(stopCtx)
			cancel()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if a.scheduler != nil {
		a.scheduler.Stop(ctx)
	}
	return a.server.Shutdown(ctx)
}
