// Package vector provides exact nearest-neighbor indexes over embedding vectors.
package vector

import "context"

// Index stores vectors by insertion position and answers Euclidean k-NN queries.
// Position i is the i-th vector ever added; positions are never reused.
type Index interface {
	Add(ctx context.Context, vectors [][]float32) error
	// Search returns min(k, Size()) neighbors by ascending L2 distance, ties by lower position.
	Search(ctx context.Context, query []float32, k int) ([]Neighbor, error)
	Size() int
	Dimensions() int
	Type() string
	Close() error
}

// Neighbor is a single search hit.
type Neighbor struct {
	Position int
	Distance float64
}
