package generation

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Provider names accepted by NewProvider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Options selects and configures a provider.
type Options struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	// Timeout bounds each HTTP request when positive.
	Timeout time.Duration
}

// NewProvider creates the provider named by opts.Provider ("openai" when empty).
func NewProvider(ctx context.Context, opts Options) (Provider, error) {
	var httpClient *http.Client
	if opts.Timeout > 0 {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	switch opts.Provider {
	case ProviderOpenAI, "":
		p, err := NewOpenAIProvider(OpenAIConfig{
			APIKey:     opts.APIKey,
			Model:      opts.Model,
			BaseURL:    opts.BaseURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderGemini:
		p, err := NewGeminiProvider(ctx, GeminiConfig{
			APIKey:     opts.APIKey,
			Model:      opts.Model,
			BaseURL:    opts.BaseURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown generation provider: %s (supported: openai, gemini)", opts.Provider)
	}
}
