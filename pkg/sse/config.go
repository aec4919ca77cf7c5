package sse

import "time"

// Config holds the stream client settings.
type Config struct {
	// StreamURL is the server-push endpoint, e.g.
	// "https://api.cinehub.example/api/notifications/stream".
	StreamURL string `env:"NOTIFY_STREAM_URL,required"`
	// Token is the bearer token of the authenticated admin session.
	Token string `env:"NOTIFY_TOKEN"`
	// ReconnectDelay is the fixed delay between reconnect attempts when
	// no backoff strategy is injected.
	ReconnectDelay time.Duration `env:"NOTIFY_RECONNECT_DELAY" envDefault:"5s"`
	// MaxAttempts bounds consecutive failed reconnects. Zero retries
	// forever, matching the historical dashboard behavior.
	MaxAttempts int `env:"NOTIFY_MAX_RECONNECT_ATTEMPTS" envDefault:"0"`
	// EventBuffer is the per-subscriber event channel capacity.
	EventBuffer int `env:"NOTIFY_EVENT_BUFFER" envDefault:"64"`
}
