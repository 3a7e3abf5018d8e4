package clients

import (
	"fmt"

	"github.com/spacesedan/reviewseed/config"
)

// NewProviderClient builds the completion client selected by configuration. It fails when no usable
// credentials are configured; callers are expected to refuse to start in that case.
func NewProviderClient(s config.Settings) (ProviderClient, error) {
	cfg := OpenAIConfig{
		APIKey:  s.APIKey,
		Model:   s.Model,
		BaseURL: s.BaseURL,
		Timeout: s.RequestTimeout,
	}

	switch s.Provider {
	case config.ProviderOpenAI:
		c, err := NewOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderOpenAISDK:
		c, err := NewOpenAISDKClient(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("[ProviderClient] unknown provider %q", s.Provider)
	}
}
