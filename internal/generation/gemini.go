package generation

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"

	"github.com/hyperjump/kotae/internal/apperr"
)

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiProvider calls GenerateContent on the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates the provider. An empty key is a missing credential.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, apperr.New(apperr.KindMissingCredential, "gemini provider", "api key is empty", nil)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, apperr.New(apperr.KindGenerationProvider, "gemini provider", "create genai client", err)
	}
	return &GeminiProvider{client: c, model: cfg.Model}, nil
}

// Complete sends the prompt with system as the system instruction.
func (p *GeminiProvider) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		MaxOutputTokens:   int32(maxTokens),
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(user), cfg)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", apperr.New(apperr.KindGenerationProvider, "gemini generate", "response has no candidates", nil)
	}
	return resp.Text(), nil
}

// Name returns "gemini".
func (p *GeminiProvider) Name() string { return ProviderGemini }

// Model returns the Gemini model name.
func (p *GeminiProvider) Model() string { return p.model }

func classifyGeminiError(err error) error {
	kind := apperr.KindGenerationProvider
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		if isGeminiQuota(apiErr) {
			kind = apperr.KindGenerationQuota
		}
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		if isGeminiQuota(*apiErrPtr) {
			kind = apperr.KindGenerationQuota
		}
	}
	return apperr.New(kind, "gemini generate", "", err)
}

func isGeminiQuota(e genai.APIError) bool {
	return e.Code == http.StatusTooManyRequests || e.Status == "RESOURCE_EXHAUSTED"
}
