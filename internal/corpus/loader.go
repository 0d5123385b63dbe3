package corpus

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/apperr"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vector"
)

const defaultBatchSize = 32

// Loader embeds documents and appends their vectors to an index.
type Loader struct {
	embedder  embedding.Embedder
	index     vector.Index
	batchSize int
	logger    *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for load progress.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// WithBatchSize sets how many texts go to the embedder per call.
func WithBatchSize(n int) LoaderOption {
	return func(ld *Loader) {
		if n > 0 {
			ld.batchSize = n
		}
	}
}

// NewLoader creates a loader. The index must accept vectors of the embedder's dimension.
func NewLoader(embedder embedding.Embedder, index vector.Index, opts ...LoaderOption) (*Loader, error) {
	if embedder == nil || index == nil {
		return nil, fmt.Errorf("loader requires an embedder and an index")
	}
	if index.Dimensions() != embedder.Dimensions() {
		return nil, apperr.New(apperr.KindInvalidArgument, "new loader",
			fmt.Sprintf("index dimension %d does not match embedder dimension %d", index.Dimensions(), embedder.Dimensions()), nil)
	}
	ld := &Loader{
		embedder:  embedder,
		index:     index,
		batchSize: defaultBatchSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld, nil
}

// Load treats each text as one inline document. See LoadDocuments.
func (ld *Loader) Load(ctx context.Context, texts []string) (*Corpus, error) {
	docs := make([]models.Document, len(texts))
	for i, t := range texts {
		docs[i] = models.Document{Text: t, Source: models.SourceInline}
	}
	return ld.LoadDocuments(ctx, docs)
}

// LoadDocuments embeds docs in order and appends every vector to the index.
// Positions are reassigned to the load order. The index must be empty; nothing is
// added to it unless every document embeds successfully.
func (ld *Loader) LoadDocuments(ctx context.Context, docs []models.Document) (*Corpus, error) {
	start := time.Now()
	if ld.index.Size() != 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "load corpus",
			fmt.Sprintf("index already holds %d vectors", ld.index.Size()), nil)
	}

	dims := ld.embedder.Dimensions()
	vectors := make([][]float32, 0, len(docs))
	batches := 0
	for lo := 0; lo < len(docs); lo += ld.batchSize {
		hi := lo + ld.batchSize
		if hi > len(docs) {
			hi = len(docs)
		}
		texts := make([]string, hi-lo)
		for i := range texts {
			texts[i] = docs[lo+i].Text
		}
		vecs, err := ld.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, apperr.New(apperr.KindEmbeddingProvider, "load corpus",
				fmt.Sprintf("embed documents %d-%d", lo, hi-1), err)
		}
		if len(vecs) != len(texts) {
			return nil, apperr.New(apperr.KindEmbeddingProvider, "load corpus",
				fmt.Sprintf("provider returned %d vectors for %d documents", len(vecs), len(texts)), nil)
		}
		for i, v := range vecs {
			if len(v) != dims {
				return nil, apperr.New(apperr.KindEmbeddingProvider, "load corpus",
					fmt.Sprintf("document %d: vector has %d dimensions, expected %d", lo+i, len(v), dims), nil)
			}
		}
		vectors = append(vectors, vecs...)
		batches++
		ld.logger.Debug("embedded corpus batch", zap.Int("from", lo), zap.Int("to", hi-1))
	}

	if len(vectors) > 0 {
		if err := ld.index.Add(ctx, vectors); err != nil {
			return nil, fmt.Errorf("failed to index vectors: %w", err)
		}
	}

	loaded := make([]models.Document, len(docs))
	for i, d := range docs {
		d.Position = i
		loaded[i] = d
	}
	c := &Corpus{docs: loaded, modelID: ld.embedder.ModelID(), dimensions: dims}
	ld.logger.Info("corpus loaded",
		zap.Int("documents", c.Len()),
		zap.Int("batches", batches),
		zap.String("model", c.modelID),
		zap.String("index", ld.index.Type()),
		zap.Duration("elapsed", time.Since(start)))
	return c, nil
}
