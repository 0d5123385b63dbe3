// Package retriever finds the corpus documents nearest to a query.
package retriever

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/apperr"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vector"
)

// Retriever embeds queries with the same model that embedded the corpus and
// searches the index. It holds no mutable state and is safe for concurrent use.
type Retriever struct {
	embedder embedding.Embedder
	index    vector.Index
	corpus   *corpus.Corpus
	logger   *zap.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Retriever) { r.logger = l }
}

// New binds an embedder to a loaded corpus. The embedder must report the model id
// the corpus was built with, and the index must hold exactly one vector per document.
func New(embedder embedding.Embedder, index vector.Index, c *corpus.Corpus, opts ...Option) (*Retriever, error) {
	if embedder == nil || index == nil || c == nil {
		return nil, fmt.Errorf("retriever requires an embedder, an index and a corpus")
	}
	if embedder.ModelID() != c.ModelID() {
		return nil, apperr.New(apperr.KindModelMismatch, "new retriever",
			fmt.Sprintf("corpus was embedded with %q, query embedder is %q", c.ModelID(), embedder.ModelID()), nil)
	}
	if index.Size() != c.Len() {
		return nil, apperr.New(apperr.KindInvalidArgument, "new retriever",
			fmt.Sprintf("index holds %d vectors for %d documents", index.Size(), c.Len()), nil)
	}
	r := &Retriever{embedder: embedder, index: index, corpus: c, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Retrieve returns the min(k, corpus size) documents nearest to query, ordered by
// ascending L2 distance with ties going to the earlier document.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]models.Hit, error) {
	if k < 1 {
		return nil, apperr.New(apperr.KindInvalidArgument, "retrieve", fmt.Sprintf("k must be at least 1, got %d", k), nil)
	}
	if r.corpus.Len() == 0 {
		return nil, apperr.New(apperr.KindIndexEmpty, "retrieve", "no documents loaded", nil)
	}

	q, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperr.New(apperr.KindEmbeddingProvider, "retrieve", "embed query", err)
	}
	if len(q) != r.corpus.Dimensions() {
		return nil, apperr.New(apperr.KindEmbeddingProvider, "retrieve",
			fmt.Sprintf("query vector has %d dimensions, expected %d", len(q), r.corpus.Dimensions()), nil)
	}

	neighbors, err := r.index.Search(ctx, q, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	hits := make([]models.Hit, 0, len(neighbors))
	for i, n := range neighbors {
		doc, ok := r.corpus.Document(n.Position)
		if !ok {
			return nil, fmt.Errorf("index returned unknown position %d", n.Position)
		}
		hits = append(hits, models.Hit{Document: doc, Distance: n.Distance, Rank: i + 1})
	}
	r.logger.Debug("retrieved documents",
		zap.String("query", query),
		zap.Int("k", k),
		zap.Int("hits", len(hits)))
	return hits, nil
}

// Corpus returns the corpus this retriever searches.
func (r *Retriever) Corpus() *corpus.Corpus {
	return r.corpus
}

// IndexType names the backing vector index.
func (r *Retriever) IndexType() string {
	return r.index.Type()
}
