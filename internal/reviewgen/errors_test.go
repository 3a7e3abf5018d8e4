package reviewgen

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spacesedan/reviewseed/internal/clients"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providerErr(status int, msg string) error {
	return &clients.ProviderError{Provider: "test", StatusCode: status, Message: msg}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      ErrorKind
		retryable bool
	}{
		{"service unavailable", providerErr(503, "Service Unavailable"), KindRateLimited, true},
		{"overloaded message", errors.New("model is overloaded, try later"), KindRateLimited, true},
		{"unauthorized", providerErr(401, "Unauthorized"), KindAuth, false},
		{"api key message", errors.New("Incorrect API key provided"), KindAuth, false},
		{"too many requests", providerErr(429, "Too Many Requests"), KindRateLimited, true},
		{"rate limit message", errors.New("you hit the rate limit"), KindRateLimited, true},
		{"server error", providerErr(500, "Internal Server Error"), KindAPI, true},
		{"bad gateway", providerErr(502, "Bad Gateway"), KindAPI, true},
		{"bad request", providerErr(400, "invalid JSON schema"), KindValidation, false},
		{"parse failure", errors.New("unexpected end of JSON input"), KindParsing, false},
		{"unknown", errors.New("connection reset by peer"), KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := Classify(tt.err)
			require.NotNil(t, ce)
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, tt.retryable, ce.Retryable)
			assert.ErrorIs(t, ce, tt.err)
		})
	}
}

func TestClassify_KeepsRetryAfter(t *testing.T) {
	err := fmt.Errorf("request failed: %w", &clients.ProviderError{
		Provider:   "test",
		StatusCode: 429,
		RetryAfter: 3 * time.Second,
		Message:    "Too Many Requests",
	})

	ce := Classify(err)
	assert.Equal(t, KindRateLimited, ce.Kind)
	assert.Equal(t, 3*time.Second, ce.RetryAfter)
}

func TestClassify_PassesThroughClassified(t *testing.T) {
	orig := newError(KindParsing, "bad json", nil)
	assert.Same(t, orig, Classify(orig))
	assert.Nil(t, Classify(nil))
}

func TestErrorKind_Retryable(t *testing.T) {
	assert.True(t, KindAPI.Retryable())
	assert.True(t, KindRateLimited.Retryable())
	assert.False(t, KindParsing.Retryable())
	assert.False(t, KindValidation.Retryable())
	assert.False(t, KindAuth.Retryable())
	assert.False(t, KindUnknown.Retryable())
}
