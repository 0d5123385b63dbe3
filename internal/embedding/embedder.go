// Package embedding turns text into fixed-length vectors.
package embedding

import (
	"context"
	"fmt"
)

// Embedder produces vector embeddings for text.
// EmbedBatch returns one vector per input, in input order.
// ModelID identifies the model and configuration that produced the vectors;
// vectors from embedders with different IDs are not comparable.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelID() string
	Close() error
}

func errBatchLength(want, got int) error {
	return fmt.Errorf("embedding batch returned %d vectors for %d inputs", got, want)
}
