package api

import "time"

// Config holds the notification REST API settings.
type Config struct {
	// BaseURL is the notifications resource root, e.g.
	// "https://api.cinehub.example/api/notifications".
	BaseURL string `env:"NOTIFY_API_URL,required"`
	// Token is the bearer token of the authenticated admin session.
	Token string `env:"NOTIFY_API_TOKEN"`
	// HistoryPage and HistoryLimit are the default page parameters for
	// the initial history snapshot.
	HistoryPage  int `env:"NOTIFY_HISTORY_PAGE" envDefault:"1"`
	HistoryLimit int `env:"NOTIFY_HISTORY_LIMIT" envDefault:"20"`
	// RequestTimeout bounds every request issued by the client.
	RequestTimeout time.Duration `env:"NOTIFY_API_TIMEOUT" envDefault:"10s"`
}
