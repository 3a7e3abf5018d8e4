package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const openAIProviderName = "OpenAIClient"

type OpenAIClient struct {
	Client *openai.Client
	model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
	}
	if cfg.Model == "" {
		return nil, errors.New("[OpenAIClient] model is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &retryAfterTransport{base: http.DefaultTransport},
	}

	slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout",
		slog.Duration("timeout", cfg.Timeout),
		slog.String("model", cfg.Model))

	return &OpenAIClient{
		Client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	hint := &retryHint{}
	ctx = context.WithValue(ctx, retryHintKey{}, hint)
	schema := toDefinition(req.Schema)

	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      &schema,
				Strict:      true,
			},
		},
	})
	if err != nil {
		return nil, wrapOpenAIError(err, hint.after)
	}

	if len(resp.Choices) == 0 {
		return &CompletionResponse{}, nil
	}

	choice := resp.Choices[0]
	return &CompletionResponse{
		HasCandidate:    true,
		FinishReason:    normalizeFinishReason(string(choice.FinishReason)),
		RawFinishReason: string(choice.FinishReason),
		Text:            choice.Message.Content,
	}, nil
}

func (c *OpenAIClient) Ping(ctx context.Context) error {
	if _, err := c.Client.ListModels(ctx); err != nil {
		return wrapOpenAIError(err, 0)
	}
	return nil
}

func toDefinition(s ResponseSchema) jsonschema.Definition {
	props := make(map[string]jsonschema.Definition, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = jsonschema.Definition{
			Type:        jsonschema.DataType(f.Type),
			Description: f.Description,
		}
	}
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           props,
		Required:             s.required(),
		AdditionalProperties: false,
	}
}

func wrapOpenAIError(err error, retryAfter time.Duration) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider:   openAIProviderName,
			StatusCode: apiErr.HTTPStatusCode,
			RetryAfter: retryAfter,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{
			Provider:   openAIProviderName,
			StatusCode: reqErr.HTTPStatusCode,
			RetryAfter: retryAfter,
			Message:    fmt.Sprintf("request failed: %s", reqErr.HTTPStatus),
			Err:        err,
		}
	}

	return &ProviderError{
		Provider: openAIProviderName,
		Message:  err.Error(),
		Err:      err,
	}
}

type retryHintKey struct{}

type retryHint struct {
	after time.Duration
}

// retryAfterTransport records the Retry-After header into the hint carried by the request context, since the
// SDK's error types drop response headers.
type retryAfterTransport struct {
	base http.RoundTripper
}

func (t *retryAfterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", USER_AGENT)
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	if hint, ok := req.Context().Value(retryHintKey{}).(*retryHint); ok && resp.StatusCode >= 400 {
		hint.after = parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	return resp, nil
}
