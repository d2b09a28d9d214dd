package generator_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roofio/internal/generator"
)

func TestNewRateLimitError_DefaultRetryAfter(t *testing.T) {
	err := generator.NewRateLimitError("claude", errors.New("429"), 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Equal(t, "claude", err.Provider)
	assert.Contains(t, err.Error(), "claude rate limited")
}

func TestRateLimitError_Unwrap(t *testing.T) {
	base := errors.New("too many requests")
	err := generator.NewRateLimitError("openai", base, 5)
	assert.ErrorIs(t, err, base)

	var rl *generator.RateLimitError
	assert.True(t, errors.As(error(err), &rl))
	assert.Equal(t, 5*time.Second, rl.RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"seconds", "30", 30},
		{"garbage", "soon", 0},
		{"past date", "Mon, 02 Jan 2006 15:04:05 GMT", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generator.ParseRetryAfterHeader(tt.in))
		})
	}
}

func TestParseRetryAfterHeader_FutureDate(t *testing.T) {
	at := time.Now().Add(2 * time.Minute).UTC().Format(time.RFC1123)
	secs := generator.ParseRetryAfterHeader(at)
	assert.Greater(t, secs, 60)
	assert.LessOrEqual(t, secs, 120)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", generator.Truncate("abc", 5))
	assert.Equal(t, "ab...", generator.Truncate("abcdef", 2))
}
