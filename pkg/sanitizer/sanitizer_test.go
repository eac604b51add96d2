package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/twilight/pkg/sanitizer"
)

func TestApplyAndCompose(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", sanitizer.Apply("  ABC ", sanitizer.Trim, sanitizer.ToLower))
	assert.Equal(t, "x", sanitizer.Apply("x"))

	clean := sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.SingleLine, sanitizer.MaxRunes(5))
	assert.Equal(t, "a b c", clean("a\x00\n b\tc  d"))
}

func TestRemoveControlChars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "line\nnext\ttab", sanitizer.RemoveControlChars("li\x07ne\nnext\ttab\x1b"))
	assert.Equal(t, "", sanitizer.RemoveControlChars("\x00\x01"))
}

func TestMaxRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "héll", sanitizer.MaxRunes(4)("héllo"))
	assert.Equal(t, "hi", sanitizer.MaxRunes(4)("hi"))
	assert.Equal(t, "hello", sanitizer.MaxRunes(0)("hello"))
}

func TestEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "john.doe@example.com", sanitizer.NormalizeEmail("  John.Doe@Example.COM "))

	tests := map[string]string{
		"john@example.com": "j***@example.com",
		"a@example.com":    "a*@example.com",
		"ünï@example.com":  "ü**@example.com",
		"no-at-sign":       "***",
		"@example.com":     "***",
		"a@b@c":            "***",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizer.MaskEmail(in), in)
	}
}
