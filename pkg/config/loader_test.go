package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twilight/pkg/config"
)

type sample struct {
	Name    string        `env:"CFG_TEST_NAME" envDefault:"twilight"`
	Count   int           `env:"CFG_TEST_COUNT" envDefault:"10"`
	Timeout time.Duration `env:"CFG_TEST_TIMEOUT" envDefault:"2s"`
}

type required struct {
	Value string `env:"CFG_TEST_REQUIRED,required"`
}

type validated struct {
	Port int `env:"CFG_TEST_PORT" envDefault:"0"`
}

func (v *validated) Validate() error {
	if v.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.Load[sample]()
		require.NoError(t, err)
		assert.Equal(t, "twilight", cfg.Name)
		assert.Equal(t, 10, cfg.Count)
		assert.Equal(t, 2*time.Second, cfg.Timeout)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CFG_TEST_NAME", "custom")
		t.Setenv("CFG_TEST_TIMEOUT", "500ms")

		cfg, err := config.Load[sample]()
		require.NoError(t, err)
		assert.Equal(t, "custom", cfg.Name)
		assert.Equal(t, 500*time.Millisecond, cfg.Timeout)
	})

	t.Run("prefix option", func(t *testing.T) {
		t.Setenv("APP_CFG_TEST_COUNT", "3")

		cfg, err := config.Load[sample](env.Options{Prefix: "APP_"})
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Count)
	})

	t.Run("missing required", func(t *testing.T) {
		_, err := config.Load[required]()
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := config.Load[validated]()
		assert.ErrorIs(t, err, config.ErrInvalidConfig)

		t.Setenv("CFG_TEST_PORT", "8080")
		cfg, err := config.Load[validated]()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
	})
}

func TestMustLoad(t *testing.T) {
	assert.Panics(t, func() { config.MustLoad[required]() })
	assert.NotPanics(t, func() { config.MustLoad[sample]() })
}
