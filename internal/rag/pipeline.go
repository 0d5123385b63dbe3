// Package rag wires retrieval, prompt building and generation into the two answer flows.
package rag

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/apperr"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/prompt"
)

const (
	// DefaultMaxTokens caps the generated answer.
	DefaultMaxTokens = 100
	// DefaultTopK is how many documents the RAG flow retrieves.
	DefaultTopK = 1
)

// Retriever returns the k documents nearest to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.Hit, error)
}

// Generator turns a prompt into an answer.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Pipeline answers questions with or without retrieved context.
type Pipeline struct {
	retriever Retriever
	generator Generator
	model     string
	maxTokens int
	topK      int
	logger    *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMaxTokens sets the generation token cap.
func WithMaxTokens(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithTopK sets the k used when a caller passes 0.
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// WithModelName records the generation model on each answer.
func WithModelName(name string) Option {
	return func(p *Pipeline) { p.model = name }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline. The retriever may be nil when only the pure flow is used.
func NewPipeline(retriever Retriever, generator Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		retriever: retriever,
		generator: generator,
		maxTokens: DefaultMaxTokens,
		topK:      DefaultTopK,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AnswerPure sends the bare question to the model.
func (p *Pipeline) AnswerPure(ctx context.Context, query string) (*models.Answer, error) {
	start := time.Now()
	if strings.TrimSpace(query) == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "answer pure", "query cannot be empty", nil)
	}
	text := prompt.Build(query, nil)
	return p.generate(ctx, start, models.ModePure, query, text, nil)
}

// AnswerRAG retrieves k documents (the pipeline default when k is 0), adds their
// texts to the prompt in rank order and sends it to the model.
func (p *Pipeline) AnswerRAG(ctx context.Context, query string, k int) (*models.Answer, error) {
	start := time.Now()
	if strings.TrimSpace(query) == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "answer rag", "query cannot be empty", nil)
	}
	if p.retriever == nil {
		return nil, apperr.New(apperr.KindIndexEmpty, "answer rag", "no retriever configured", nil)
	}
	if k == 0 {
		k = p.topK
	}
	hits, err := p.retriever.Retrieve(ctx, query, k)
	if err != nil {
		p.logFailure(models.ModeRAG, query, err)
		return nil, err
	}
	text := prompt.Build(query, prompt.Contexts(hits))
	return p.generate(ctx, start, models.ModeRAG, query, text, hits)
}

// Answer dispatches on mode.
func (p *Pipeline) Answer(ctx context.Context, query string, mode models.AnswerMode, k int) (*models.Answer, error) {
	switch mode {
	case models.ModePure:
		return p.AnswerPure(ctx, query)
	case models.ModeRAG, "":
		return p.AnswerRAG(ctx, query, k)
	default:
		return nil, apperr.New(apperr.KindInvalidArgument, "answer", "unknown mode "+string(mode), nil)
	}
}

// Retrieve exposes the retrieval step alone.
func (p *Pipeline) Retrieve(ctx context.Context, query string, k int) ([]models.Hit, error) {
	if p.retriever == nil {
		return nil, apperr.New(apperr.KindIndexEmpty, "retrieve", "no retriever configured", nil)
	}
	if k == 0 {
		k = p.topK
	}
	return p.retriever.Retrieve(ctx, query, k)
}

// TopK returns the default k.
func (p *Pipeline) TopK() int {
	return p.topK
}

func (p *Pipeline) generate(ctx context.Context, start time.Time, mode models.AnswerMode, query, text string, hits []models.Hit) (*models.Answer, error) {
	reply, err := p.generator.Generate(ctx, text, p.maxTokens)
	if err != nil {
		p.logFailure(mode, query, err)
		return nil, err
	}
	ans := &models.Answer{
		ID:        uuid.New(),
		Query:     query,
		Mode:      mode,
		Prompt:    text,
		Text:      reply,
		Hits:      hits,
		Model:     p.model,
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	p.logger.Info("answered",
		zap.String("id", ans.ID.String()),
		zap.String("mode", string(mode)),
		zap.Int("hits", len(hits)),
		zap.Int64("elapsed_ms", ans.ElapsedMs))
	return ans, nil
}

func (p *Pipeline) logFailure(mode models.AnswerMode, query string, err error) {
	p.logger.Warn("answer failed",
		zap.String("mode", string(mode)),
		zap.String("query", query),
		zap.String("kind", string(apperr.KindOf(err))),
		zap.Error(err))
}
