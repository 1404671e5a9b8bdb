package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/familylog/internal/infra/config"
)

// Scheduler is the background reminder loop.
type Scheduler interface {
	Run(ctx context.Context) error
}

// App encapsulates the HTTP server and reminder scheduler lifecycle.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	scheduler Scheduler
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, scheduler Scheduler) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, scheduler: scheduler}
}

// Run starts the HTTP server and, when enabled, the reminder scheduler, and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	schedulerDone := make(chan struct{})

	if a.cfg.Reminders.Enabled && a.scheduler != nil {
		go func() {
			defer close(schedulerDone)
			if err := a.scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}()
	} else {
		a.logger.Info("reminder scheduler disabled")
		close(schedulerDone)
	}

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := a.server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	select {
	case <-schedulerDone:
	case <-shutdownCtx.Done():
		a.logger.Warn("reminder scheduler did not stop in time")
	}
	return runErr
}
