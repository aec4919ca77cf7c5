// notifyd is a local stub of the CineHub notification backend: the SSE
// stream endpoint, the paginated history resource and the outbound send
// actions, backed by an in-memory history. It exists so the client
// packages and the admin dashboard can be exercised without the real
// API. Notifications can be produced from a YAML fixtures file, a Redis
// pub/sub channel, or the send endpoints themselves.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/quangdang48/cinehub-notify/pkg/config"
	"github.com/quangdang48/cinehub-notify/pkg/logger"
)

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithAttr(slog.String("service", "notifyd")),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.LogAttrs(ctx, slog.LevelError, "notifyd exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	h := newHub()
	history := newHistoryStore(cfg.HistoryCap)

	if cfg.FixturesFile != "" {
		fixtures, err := loadFixtures(cfg.FixturesFile)
		if err != nil {
			return err
		}
		log.LogAttrs(ctx, slog.LevelInfo, "Replaying fixture notifications",
			slog.Int("count", len(fixtures)),
			slog.Duration("interval", cfg.FixtureInterval),
		)
		go replayFixtures(ctx, log, h, history, fixtures, cfg.FixtureInterval)
	}

	if cfg.RedisURL != "" {
		client, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		log.LogAttrs(ctx, slog.LevelInfo, "Bridging redis channel into the stream",
			slog.String("channel", cfg.RedisChannel),
		)
		go runRedisBridge(ctx, log, client, cfg.RedisChannel, h, history)
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: newServer(log, h, history).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.LogAttrs(ctx, slog.LevelInfo, "notifyd listening", slog.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
