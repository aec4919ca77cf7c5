package main

import "time"

type appConfig struct {
	Addr            string        `env:"NOTIFYD_ADDR" envDefault:":8090"`
	HistoryCap      int           `env:"NOTIFYD_HISTORY_CAP" envDefault:"500"`
	FixturesFile    string        `env:"NOTIFYD_FIXTURES"`
	FixtureInterval time.Duration `env:"NOTIFYD_FIXTURE_INTERVAL" envDefault:"10s"`
	RedisURL        string        `env:"NOTIFYD_REDIS_URL"`
	RedisChannel    string        `env:"NOTIFYD_REDIS_CHANNEL" envDefault:"cinehub:notifications"`
	LogFormat       string        `env:"NOTIFYD_LOG_FORMAT" envDefault:"text"`
	ShutdownTimeout time.Duration `env:"NOTIFYD_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}
