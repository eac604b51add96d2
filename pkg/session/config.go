package session

import (
	"fmt"
	"net/http"
	"time"
)

// Backend names accepted by SESSION_STORAGE.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendDB     = "db"
)

type Config struct {
	Storage     string        `env:"SESSION_STORAGE" envDefault:"db"`
	TTL         time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	MemoryCount int           `env:"SESSION_MEMORY_COUNT" envDefault:"10000"`

	CookieName     string `env:"SESSION_COOKIE_NAME" envDefault:"sessionId"`
	CSRFCookieName string `env:"CSRF_COOKIE_NAME" envDefault:"csrf"`
	CSRFHeaderName string `env:"CSRF_HEADER_NAME" envDefault:"X-CSRF-Token"`
	SecureCookies  bool   `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
	CookieDomain   string `env:"SESSION_COOKIE_DOMAIN"`

	StoreTimeout    time.Duration `env:"SESSION_STORE_TIMEOUT" envDefault:"2s"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"10m"`
}

// DefaultConfig mirrors the envDefault tags for callers that build a Config
// by hand.
func DefaultConfig() Config {
	return Config{
		Storage:         BackendDB,
		TTL:             time.Hour,
		MemoryCount:     10000,
		CookieName:      "sessionId",
		CSRFCookieName:  "csrf",
		CSRFHeaderName:  "X-CSRF-Token",
		StoreTimeout:    2 * time.Second,
		CleanupInterval: 10 * time.Minute,
	}
}

// Validate is called by config.Load.
func (c *Config) Validate() error {
	switch c.Storage {
	case BackendMemory, BackendRedis, BackendDB:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.TTL)
	}
	if c.Storage == BackendMemory && c.MemoryCount <= 0 {
		return fmt.Errorf("session memory count must be positive, got %d", c.MemoryCount)
	}
	if c.CookieName == "" || c.CSRFCookieName == "" || c.CSRFHeaderName == "" {
		return fmt.Errorf("session cookie and csrf names must not be empty")
	}
	return nil
}

// MaxAge is the cookie Max-Age in seconds.
func (c Config) MaxAge() int {
	return int(c.TTL / time.Second)
}

func (c Config) csrfHeader() string {
	return http.CanonicalHeaderKey(c.CSRFHeaderName)
}
