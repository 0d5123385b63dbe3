package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/rag"
	"github.com/hyperjump/kotae/internal/retriever"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/vector"
)

// Components holds initialized services.
type Components struct {
	Embedder  embedding.Embedder
	Index     vector.Index
	Corpus    *corpus.Corpus
	Retriever *retriever.Retriever
	Generator *generation.Client
	Pipeline  *rag.Pipeline
}

// Close releases the embedder and the index.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
}

// Info summarizes the components for the status endpoint.
func (c *Components) Info() server.Info {
	var info server.Info
	if c.Embedder != nil {
		info.EmbeddingModel = c.Embedder.ModelID()
		info.Dimensions = c.Embedder.Dimensions()
	}
	if c.Index != nil {
		info.IndexType = c.Index.Type()
		info.IndexSize = c.Index.Size()
	}
	if c.Generator != nil {
		info.GenerationProvider = c.Generator.Provider().Name()
		info.GenerationModel = c.Generator.Provider().Model()
	}
	return info
}

// initializeComponents builds everything from cfg in dependency order. Credentials
// are resolved before any provider is called. Generation is skipped when
// withGeneration is false so retrieval-only commands need no generation key.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, withGeneration bool) (*Components, error) {
	var genKey string
	if withGeneration {
		key, err := cfg.GenerationAPIKey()
		if err != nil {
			return nil, err
		}
		genKey = key
	}

	c := &Components{}
	embedder, err := newEmbedder(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Embedder = embedder

	index, err := newIndex(ctx, cfg, embedder.Dimensions(), logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Index = index

	loader, err := corpus.NewLoader(embedder, index,
		corpus.WithLogger(logger),
		corpus.WithBatchSize(cfg.Embedding.BatchSize))
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Corpus, err = loader.LoadSources(ctx, corpus.Sources{
		Texts:        cfg.Corpus.Documents,
		Paths:        cfg.Corpus.Paths,
		Extensions:   cfg.Corpus.Extensions,
		ChunkWords:   cfg.Corpus.ChunkWords,
		ChunkOverlap: cfg.Corpus.ChunkOverlap,
	}, extract.NewExtractor())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	c.Retriever, err = retriever.New(embedder, index, c.Corpus, retriever.WithLogger(logger))
	if err != nil {
		c.Close()
		return nil, err
	}

	pipelineOpts := []rag.Option{
		rag.WithTopK(cfg.Retrieval.TopK),
		rag.WithMaxTokens(cfg.Generation.MaxTokens),
		rag.WithLogger(logger),
	}
	var gen rag.Generator = unavailableGenerator{}
	if withGeneration {
		c.Generator, err = newGenerator(ctx, cfg, genKey, logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		gen = c.Generator
		pipelineOpts = append(pipelineOpts, rag.WithModelName(c.Generator.Provider().Model()))
	}
	c.Pipeline = rag.NewPipeline(c.Retriever, gen, pipelineOpts...)
	return c, nil
}

// initializeGenerationOnly builds just the generation client for the pure flow.
// No embedder, index or corpus is created, so their backends are never contacted.
func initializeGenerationOnly(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	key, err := cfg.GenerationAPIKey()
	if err != nil {
		return nil, err
	}
	gen, err := newGenerator(ctx, cfg, key, logger)
	if err != nil {
		return nil, err
	}
	return &Components{
		Generator: gen,
		Pipeline: rag.NewPipeline(nil, gen,
			rag.WithTopK(cfg.Retrieval.TopK),
			rag.WithMaxTokens(cfg.Generation.MaxTokens),
			rag.WithModelName(gen.Provider().Model()),
			rag.WithLogger(logger)),
	}, nil
}

func newGenerator(ctx context.Context, cfg *config.Config, apiKey string, logger *zap.Logger) (*generation.Client, error) {
	provider, err := generation.NewProvider(ctx, generation.Options{
		Provider: cfg.Generation.Provider,
		Model:    cfg.Generation.Model,
		APIKey:   apiKey,
		BaseURL:  cfg.Generation.BaseURL,
		Timeout:  time.Duration(cfg.Generation.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return generation.NewClient(provider,
		generation.WithSystemPrompt(cfg.Generation.SystemPrompt),
		generation.WithLogger(logger))
}

func newEmbedder(ctx context.Context, cfg *config.Config, logger *zap.Logger) (embedding.Embedder, error) {
	opts := embedding.Options{
		Provider:    cfg.Embedding.Provider,
		Model:       cfg.Embedding.Model,
		ModelPath:   cfg.Embedding.ModelPath,
		VocabPath:   cfg.Embedding.VocabPath,
		LibraryPath: cfg.Embedding.LibraryPath,
		Dimensions:  cfg.Embedding.Dimensions,
		MaxTokens:   cfg.Embedding.MaxTokens,
		CacheSize:   cfg.Embedding.CacheSize,
		BaseURL:     cfg.Embedding.BaseURL,
	}
	if embedding.NeedsAPIKey(opts.Provider) {
		key, err := cfg.EmbeddingAPIKey()
		if err != nil {
			return nil, err
		}
		opts.APIKey = key
	}
	e, err := embedding.NewEmbedder(ctx, opts)
	if err == nil {
		logger.Info("embedder initialized", zap.String("model", e.ModelID()))
		return e, nil
	}
	if opts.Provider != embedding.ProviderONNX || !cfg.Embedding.FallbackOrDefault() {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	logger.Warn("onnx embedder unavailable, falling back to hash embedder",
		zap.String("model_path", opts.ModelPath),
		zap.Error(err))
	opts.Provider = embedding.ProviderHash
	return embedding.NewEmbedder(ctx, opts)
}

func newIndex(ctx context.Context, cfg *config.Config, dims int, logger *zap.Logger) (vector.Index, error) {
	opts := vector.Options{
		Type:        cfg.Vector.IndexType,
		Dimensions:  dims,
		DatabaseURL: cfg.Vector.DatabaseURL,
		Table:       cfg.Vector.Table,
	}
	idx, err := vector.NewIndex(ctx, opts)
	if err != nil {
		// FAISS may not be compiled in; the memory index gives identical results.
		if opts.Type != string(vector.IndexTypeFAISS) {
			return nil, fmt.Errorf("failed to initialize vector index: %w", err)
		}
		logger.Warn("failed to create vector index, falling back to memory",
			zap.String("requested_type", opts.Type),
			zap.Error(err))
		opts.Type = string(vector.IndexTypeMemory)
		if idx, err = vector.NewIndex(ctx, opts); err != nil {
			return nil, fmt.Errorf("failed to initialize vector index: %w", err)
		}
	}
	logger.Info("vector index initialized",
		zap.String("type", idx.Type()),
		zap.Bool("faiss_available", vector.IsFAISSAvailable()))
	return idx, nil
}

// unavailableGenerator stands in when generation was not configured.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, string, int) (string, error) {
	return "", errors.New("generation is not configured for this command")
}
