package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quangdang48/cinehub-notify/pkg/logger"
	"github.com/quangdang48/cinehub-notify/pkg/notifications"
)

// fixture is one canned notification from the fixtures file.
type fixture struct {
	Type     string         `yaml:"type"`
	Title    string         `yaml:"title"`
	Message  string         `yaml:"message"`
	Metadata map[string]any `yaml:"metadata"`
}

func loadFixtures(path string) ([]fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures file: %w", err)
	}
	var fixtures []fixture
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("parse fixtures file: %w", err)
	}
	return fixtures, nil
}

// replayFixtures broadcasts the canned notifications in a loop, one per
// interval, until ctx is cancelled. Handy for exercising the dashboard
// badge without a producer.
func replayFixtures(ctx context.Context, log *slog.Logger, h *hub, history *historyStore, fixtures []fixture, interval time.Duration) {
	if len(fixtures) == 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f := fixtures[i%len(fixtures)]
			i++

			n := notifications.Notification{
				Kind:     notifications.Kind(f.Type),
				Title:    f.Title,
				Message:  f.Message,
				Metadata: f.Metadata,
			}
			if n.Kind == "" {
				n.Kind = notifications.KindInfo
			}
			n.Normalize(time.Now())

			history.add(n, "")
			delivered := h.broadcast(n)
			log.LogAttrs(ctx, slog.LevelDebug, "Replayed fixture notification",
				logger.NotificationID(n.ID),
				logger.Kind(string(n.Kind)),
				slog.Int("delivered", delivered),
			)
		}
	}
}
