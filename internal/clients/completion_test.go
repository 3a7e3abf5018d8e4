package clients

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Equal(t, 3*time.Second, parseRetryAfter(" 3 "))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-1"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))

	future := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	d := parseRetryAfter(future)
	assert.Greater(t, d, 80*time.Second)
	assert.LessOrEqual(t, d, 90*time.Second)

	past := time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat)
	assert.Equal(t, time.Duration(0), parseRetryAfter(past))
}

func TestNormalizeFinishReason(t *testing.T) {
	assert.Equal(t, FinishUnspecified, normalizeFinishReason(""))
	assert.Equal(t, FinishStop, normalizeFinishReason("stop"))
	assert.Equal(t, FinishLength, normalizeFinishReason("length"))
	assert.Equal(t, FinishSafety, normalizeFinishReason("content_filter"))
	assert.Equal(t, FinishOther, normalizeFinishReason("tool_calls"))

	assert.True(t, FinishStop.Normal())
	assert.True(t, FinishUnspecified.Normal())
	assert.False(t, FinishLength.Normal())
}

func TestResponseSchema_JSONSchema(t *testing.T) {
	s := ResponseSchema{
		Name: "review",
		Fields: []SchemaField{
			{Name: "title", Type: "string"},
			{Name: "helpfulCount", Type: "number"},
		},
	}

	got := s.jsonSchema()
	assert.Equal(t, "object", got["type"])
	assert.Equal(t, []string{"title", "helpfulCount"}, got["required"])
	assert.Equal(t, false, got["additionalProperties"])
	assert.Len(t, got["properties"], 2)
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Provider: "OpenAIClient", StatusCode: 503, Message: "overloaded"}
	assert.Equal(t, "[OpenAIClient] status 503: overloaded", err.Error())

	err = &ProviderError{Provider: "OpenAIClient", Message: "dial tcp: i/o timeout"}
	assert.Equal(t, "[OpenAIClient] dial tcp: i/o timeout", err.Error())
}
