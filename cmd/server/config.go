package main

import (
	"errors"

	"github.com/dmitrymomot/twilight/pkg/httpserver"
	"github.com/dmitrymomot/twilight/pkg/pg"
	"github.com/dmitrymomot/twilight/pkg/ratelimiter"
	"github.com/dmitrymomot/twilight/pkg/realtime"
	"github.com/dmitrymomot/twilight/pkg/redis"
	"github.com/dmitrymomot/twilight/pkg/session"
)

type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"twilight"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`
	// InstanceID names this replica in /meta/info. Defaults to the hostname.
	InstanceID string `env:"INSTANCE_ID"`

	// FlashAdmins may publish flash messages to any user or to all sockets.
	FlashAdmins []int64 `env:"FLASH_ADMIN_IDS" envSeparator:","`

	// TrustedIPHeaders are consulted for the client address, in order.
	// Empty means the TCP peer address only.
	TrustedIPHeaders []string `env:"TRUSTED_IP_HEADERS" envSeparator:","`
	// TrustedProxies are the CIDRs of the proxies allowed to set those headers.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	Session  session.Config
	Realtime realtime.Config
	Auth     ratelimiter.Config
	Server   httpserver.Config
	DB       pg.Config
	Redis    redis.Config
}

func (c *Config) Validate() error {
	return errors.Join(c.Session.Validate(), c.Realtime.Validate(), c.Auth.Validate())
}
