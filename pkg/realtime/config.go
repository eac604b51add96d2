package realtime

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	PingInterval   time.Duration `env:"WS_PING_INTERVAL" envDefault:"30s"`
	PongTimeout    time.Duration `env:"WS_PONG_TIMEOUT" envDefault:"10s"`
	WriteTimeout   time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"5s"`
	GuestLabel     string        `env:"WS_GUEST_LABEL" envDefault:"guest"`
	AllowedOrigins []string      `env:"WS_ALLOWED_ORIGINS" envSeparator:","`
	ReadLimit      int64         `env:"WS_READ_LIMIT" envDefault:"4096"`
}

func DefaultConfig() Config {
	return Config{
		PingInterval: 30 * time.Second,
		PongTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
		GuestLabel:   "guest",
		ReadLimit:    4096,
	}
}

// Validate is called by config.Load.
func (c *Config) Validate() error {
	if c.PingInterval <= 0 {
		return fmt.Errorf("realtime ping interval must be positive, got %s", c.PingInterval)
	}
	if c.PongTimeout <= 0 {
		return fmt.Errorf("realtime pong timeout must be positive, got %s", c.PongTimeout)
	}
	if c.GuestLabel == "" {
		return errors.New("realtime guest label must not be empty")
	}
	return nil
}

// IdleLimit is the longest a connection may go without a pong before the
// sweep closes it.
func (c Config) IdleLimit() time.Duration {
	return c.PingInterval + c.PongTimeout
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PingInterval <= 0 {
		c.PingInterval = d.PingInterval
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = d.PongTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.GuestLabel == "" {
		c.GuestLabel = d.GuestLabel
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = d.ReadLimit
	}
	return c
}
