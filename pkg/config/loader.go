package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Validator is implemented by config types that need checks beyond what
// struct tags can express.
type Validator interface {
	Validate() error
}

var dotenvOnce sync.Once

// Load parses the environment into a new T.
func Load[T any](opts ...env.Options) (T, error) {
	dotenvOnce.Do(func() {
		// Missing .env is the normal case outside local development.
		_ = godotenv.Load()
	})

	var cfg T
	var parseErr error
	if len(opts) > 0 {
		parseErr = env.ParseWithOptions(&cfg, opts[0])
	} else {
		parseErr = env.Parse(&cfg)
	}
	if parseErr != nil {
		return cfg, errors.Join(ErrParsingConfig, parseErr)
	}

	if v, ok := any(&cfg).(Validator); ok {
		if err := v.Validate(); err != nil {
			return cfg, errors.Join(ErrInvalidConfig, err)
		}
	}

	return cfg, nil
}

// MustLoad is Load for process startup. It panics on error.
func MustLoad[T any](opts ...env.Options) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}
