package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/familylog/internal/infra/config"
)

type stubScheduler struct {
	started atomic.Bool
	stopped atomic.Bool
}

func (s *stubScheduler) Run(ctx context.Context) error {
	s.started.Store(true)
	<-ctx.Done()
	s.stopped.Store(true)
	return nil
}

func newTestApp(enabled bool, scheduler Scheduler) *App {
	cfg := &config.Config{
		HTTP:      config.HTTPConfig{Address: "127.0.0.1:0"},
		Reminders: config.RemindersConfig{Enabled: enabled, Interval: time.Minute},
	}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	return NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, scheduler)
}

func TestRunStopsSchedulerOnShutdown(t *testing.T) {
	scheduler := &stubScheduler{}
	app := newTestApp(true, scheduler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, scheduler.started.Load, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	require.True(t, scheduler.stopped.Load())
}

func TestRunSkipsDisabledScheduler(t *testing.T) {
	scheduler := &stubScheduler{}
	app := newTestApp(false, scheduler)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, app.Run(ctx))
	require.False(t, scheduler.started.Load())
}

func TestRunReportsListenError(t *testing.T) {
	app := newTestApp(false, nil)
	app.server.Addr = "256.0.0.1:bad"

	err := app.Run(context.Background())
	require.Error(t, err)
}
