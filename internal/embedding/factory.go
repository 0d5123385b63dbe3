package embedding

import (
	"context"
	"fmt"
)

// Provider names accepted by NewEmbedder.
const (
	ProviderONNX   = "onnx"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderHash   = "hash"
)

// Options selects and configures an embedder.
type Options struct {
	Provider    string
	Model       string
	ModelPath   string
	VocabPath   string
	LibraryPath string
	Dimensions  int
	MaxTokens   int
	// CacheSize wraps the embedder in an LRU cache when positive.
	CacheSize int
	APIKey    string
	BaseURL   string
}

// NewEmbedder creates the embedder named by opts.Provider ("onnx" when empty).
func NewEmbedder(ctx context.Context, opts Options) (Embedder, error) {
	var (
		e   Embedder
		err error
	)
	switch opts.Provider {
	case ProviderONNX, "":
		e, err = NewONNXEmbedder(ONNXConfig{
			Model:       opts.Model,
			ModelPath:   opts.ModelPath,
			VocabPath:   opts.VocabPath,
			LibraryPath: opts.LibraryPath,
			Dimensions:  opts.Dimensions,
			MaxTokens:   opts.MaxTokens,
		})
	case ProviderOpenAI:
		e, err = NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     opts.APIKey,
			Model:      opts.Model,
			Dimensions: opts.Dimensions,
			BaseURL:    opts.BaseURL,
		})
	case ProviderGemini:
		e, err = NewGeminiEmbedder(ctx, GeminiConfig{
			APIKey:     opts.APIKey,
			Model:      opts.Model,
			Dimensions: opts.Dimensions,
			BaseURL:    opts.BaseURL,
		})
	case ProviderHash:
		e = NewHashEmbedder(opts.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: onnx, openai, gemini, hash)", opts.Provider)
	}
	if err != nil {
		return nil, err
	}
	if opts.CacheSize > 0 {
		return NewCachedEmbedder(e, opts.CacheSize), nil
	}
	return e, nil
}

// NeedsAPIKey reports whether the provider calls a hosted API.
func NeedsAPIKey(provider string) bool {
	return provider == ProviderOpenAI || provider == ProviderGemini
}
