package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quangdang48/cinehub-notify/pkg/logger"
)

var errRedisNotReady = errors.New("redis did not become ready")

const (
	redisRetryAttempts = 3
	redisRetryInterval = 2 * time.Second
	redisConnTimeout   = 30 * time.Second
)

// connectRedis dials the Redis server with a few ping retries so the
// stub survives a docker-compose race where redis starts last.
func connectRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, redisConnTimeout)
	defer cancel()

	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	for range redisRetryAttempts {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(errRedisNotReady, ctx.Err())
		case <-time.After(redisRetryInterval):
		}
	}
	return nil, errRedisNotReady
}

// runRedisBridge subscribes to a pub/sub channel and fans every JSON
// payload into the stream hub, so notifications can be driven from
// redis-cli during development:
//
//	PUBLISH cinehub:notifications '{"type":"info","title":"hello"}'
func runRedisBridge(ctx context.Context, log *slog.Logger, client *redis.Client, channel string, h *hub, history *historyStore) {
	pubsub := client.Subscribe(ctx, channel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}

			var req sendRequest
			if err := json.Unmarshal([]byte(msg.Payload), &req); err != nil {
				log.LogAttrs(ctx, slog.LevelWarn, "Dropping malformed redis payload",
					logger.Error(err),
				)
				continue
			}
			n, err := req.toNotification()
			if err != nil {
				log.LogAttrs(ctx, slog.LevelWarn, "Dropping redis payload without type",
					logger.Error(err),
				)
				continue
			}

			history.add(n, req.UserID)
			if req.UserID != "" {
				h.sendToUser(req.UserID, n)
			} else {
				h.broadcast(n)
			}
		}
	}
}
