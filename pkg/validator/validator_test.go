package validator_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twilight/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		err := validator.Apply(
			validator.Required("email", "a@b.io"),
			validator.ValidEmail("email", "a@b.io"),
			validator.MinLen("password", "secret", 6),
			validator.MaxLen("password", "secret", 72),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		err := validator.Apply(
			validator.Required("email", " "),
			validator.ValidEmail("email", " "),
			validator.MinLen("password", "123", 6),
		)
		require.Error(t, err)

		errs, ok := validator.Extract(fmt.Errorf("register: %w", err))
		require.True(t, ok)
		assert.Len(t, errs, 3)
		assert.True(t, errs.Has("email"))
		assert.True(t, errs.Has("password"))
		assert.False(t, errs.Has("name"))
		assert.Contains(t, err.Error(), "password: must be at least 6 characters")
	})
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"user@example.com", "first.last+tag@sub.domain.org"}
	invalid := []string{"", "plain", "@example.com", "user@localhost", "John <john@example.com>"}

	for _, v := range valid {
		assert.NoError(t, validator.Apply(validator.ValidEmail("email", v)), v)
	}
	for _, v := range invalid {
		assert.Error(t, validator.Apply(validator.ValidEmail("email", v)), v)
	}
}

func TestExtract_NotValidation(t *testing.T) {
	t.Parallel()
	_, ok := validator.Extract(fmt.Errorf("other"))
	assert.False(t, ok)
}
