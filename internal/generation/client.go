// Package generation sends prompts to a hosted chat model and returns its answer.
package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/apperr"
)

// DefaultSystemPrompt is the system message sent with every request.
const DefaultSystemPrompt = "You are a helpful assistant."

// Provider performs one chat completion: a system message, a user message and a
// token cap. Errors are *apperr.Error of kind generation_provider or generation_quota.
type Provider interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
	Name() string
	Model() string
}

// Client wraps a Provider with the fixed system prompt.
type Client struct {
	provider     Provider
	systemPrompt string
	logger       *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithSystemPrompt replaces the default system prompt.
func WithSystemPrompt(s string) Option {
	return func(c *Client) {
		if s != "" {
			c.systemPrompt = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for provider.
func NewClient(provider Provider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, errors.New("generation client requires a provider")
	}
	c := &Client{provider: provider, systemPrompt: DefaultSystemPrompt, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate sends prompt as the user turn and returns the reply with surrounding
// whitespace removed. One request per call; there are no retries.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens < 1 {
		return "", apperr.New(apperr.KindInvalidArgument, "generate", "max tokens must be positive", nil)
	}
	start := time.Now()
	text, err := c.provider.Complete(ctx, c.systemPrompt, prompt, maxTokens)
	if err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.New(apperr.KindGenerationProvider, "generate", c.provider.Name(), err)
		}
		c.logger.Warn("generation failed",
			zap.String("provider", c.provider.Name()),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err))
		return "", err
	}
	c.logger.Debug("generation complete",
		zap.String("provider", c.provider.Name()),
		zap.String("model", c.provider.Model()),
		zap.Duration("elapsed", time.Since(start)))
	return strings.TrimSpace(text), nil
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// SystemPrompt returns the system message in use.
func (c *Client) SystemPrompt() string {
	return c.systemPrompt
}
