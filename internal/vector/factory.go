package vector

import (
	"context"
	"fmt"
)

// IndexType represents the type of vector index to use.
type IndexType string

const (
	// IndexTypeMemory uses in-memory brute-force search.
	IndexTypeMemory IndexType = "memory"
	// IndexTypeFAISS uses a FAISS IndexFlatL2. Requires -tags=faiss.
	IndexTypeFAISS IndexType = "faiss"
	// IndexTypePgVector stores vectors in PostgreSQL with the pgvector extension.
	IndexTypePgVector IndexType = "pgvector"
)

// Options configures NewIndex. DatabaseURL and Table are used by pgvector only.
type Options struct {
	Type        string
	Dimensions  int
	DatabaseURL string
	Table       string
}

// NewIndex creates an empty vector index of the requested type ("memory" when empty).
func NewIndex(ctx context.Context, opts Options) (Index, error) {
	var (
		idx Index
		err error
	)
	switch IndexType(opts.Type) {
	case IndexTypeMemory, "":
		idx, err = NewMemoryIndex(opts.Dimensions)
	case IndexTypeFAISS:
		idx, err = NewFAISSIndex(opts.Dimensions)
	case IndexTypePgVector:
		idx, err = NewPgVectorIndex(ctx, opts.DatabaseURL, opts.Table, opts.Dimensions)
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: memory, faiss, pgvector)", opts.Type)
	}
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// IsFAISSAvailable returns true if FAISS support is compiled in.
func IsFAISSAvailable() bool {
	idx, err := NewFAISSIndex(1)
	if err != nil {
		return false
	}
	_ = idx.Close()
	return true
}
