package clients

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CompletionClient sends exactly one structured generation request to a provider. Implementations must not
// retry on their own and must return transport/API failures unclassified.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// ProviderClient is a CompletionClient that can also report whether the provider is reachable.
type ProviderClient interface {
	CompletionClient
	Ping(ctx context.Context) error
}

type SchemaField struct {
	Name        string
	Type        string // "string", "number" or "boolean"
	Description string
}

// ResponseSchema describes a flat JSON object whose fields are all required.
type ResponseSchema struct {
	Name        string
	Description string
	Fields      []SchemaField
}

func (s ResponseSchema) required() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// jsonSchema renders the schema as a plain JSON-schema object.
func (s ResponseSchema) jsonSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = map[string]any{
			"type":        f.Type,
			"description": f.Description,
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             s.required(),
		"additionalProperties": false,
	}
}

type CompletionRequest struct {
	Prompt      string
	Schema      ResponseSchema
	Temperature float32
	TopP        float32
	MaxTokens   int
}

type FinishReason int

const (
	FinishUnspecified FinishReason = iota
	FinishStop
	FinishLength
	FinishSafety
	FinishOther
)

func (f FinishReason) String() string {
	switch f {
	case FinishStop:
		return "STOP"
	case FinishLength:
		return "MAX_TOKENS"
	case FinishSafety:
		return "SAFETY"
	case FinishOther:
		return "OTHER"
	default:
		return "UNSPECIFIED"
	}
}

// Normal reports whether the provider finished the way a successful generation does.
func (f FinishReason) Normal() bool {
	return f == FinishStop || f == FinishUnspecified
}

type CompletionResponse struct {
	HasCandidate    bool
	FinishReason    FinishReason
	RawFinishReason string
	Text            string
}

// ProviderError is a raw failure from the provider transport. It carries what classification needs and
// nothing more.
type ProviderError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func normalizeFinishReason(raw string) FinishReason {
	switch strings.ToLower(raw) {
	case "":
		return FinishUnspecified
	case "stop":
		return FinishStop
	case "length":
		return FinishLength
	case "content_filter":
		return FinishSafety
	default:
		return FinishOther
	}
}

// parseRetryAfter understands both the delta-seconds and the HTTP-date form of the header.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
