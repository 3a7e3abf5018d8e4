package clients

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openAISDKProviderName = "OpenAISDKClient"

// OpenAISDKClient talks to the provider through the official SDK. SDK retries are disabled so every
// Complete call is a single attempt.
type OpenAISDKClient struct {
	client openaisdk.Client
	model  string
}

func NewOpenAISDKClient(cfg OpenAIConfig) (*OpenAISDKClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("[OpenAISDKClient] Missing OPENAI_API_KEY in environment variables")
	}
	if cfg.Model == "" {
		return nil, errors.New("[OpenAISDKClient] model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHeader("User-Agent", USER_AGENT),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("[OpenAISDKClient] OpenAI SDK client initialized",
		slog.Duration("timeout", cfg.Timeout),
		slog.String("model", cfg.Model))

	return &OpenAISDKClient{
		client: openaisdk.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

func (c *OpenAISDKClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(req.Prompt),
		},
		Temperature:         openaisdk.Float(float64(req.Temperature)),
		TopP:                openaisdk.Float(float64(req.TopP)),
		MaxCompletionTokens: openaisdk.Int(int64(req.MaxTokens)),
		ResponseFormat: openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openaisdk.ResponseFormatJSONSchemaParam{
				JSONSchema: openaisdk.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.Schema.Name,
					Description: openaisdk.String(req.Schema.Description),
					Schema:      req.Schema.jsonSchema(),
					Strict:      openaisdk.Bool(true),
				},
			},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, wrapSDKError(err)
	}
	if len(resp.Choices) == 0 {
		return &CompletionResponse{}, nil
	}

	choice := resp.Choices[0]
	finish := normalizeFinishReason(choice.FinishReason)
	if choice.Message.Refusal != "" {
		finish = FinishSafety
	}

	return &CompletionResponse{
		HasCandidate:    true,
		FinishReason:    finish,
		RawFinishReason: choice.FinishReason,
		Text:            choice.Message.Content,
	}, nil
}

func (c *OpenAISDKClient) Ping(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx); err != nil {
		return wrapSDKError(err)
	}
	return nil
}

func wrapSDKError(err error) error {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		pe := &ProviderError{
			Provider:   openAISDKProviderName,
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
		if apiErr.Response != nil {
			pe.RetryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
		}
		if pe.Message == "" {
			pe.Message = http.StatusText(apiErr.StatusCode)
		}
		return pe
	}

	return &ProviderError{
		Provider: openAISDKProviderName,
		Message:  err.Error(),
		Err:      err,
	}
}
