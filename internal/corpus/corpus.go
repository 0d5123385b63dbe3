// Package corpus loads the fixed document set, embeds it and fills the vector index.
package corpus

import (
	"github.com/hyperjump/kotae/internal/models"
)

// Corpus is the immutable result of a load: documents in index order plus the
// identity of the embedding model that produced their vectors.
type Corpus struct {
	docs       []models.Document
	modelID    string
	dimensions int
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Document returns the document at position.
func (c *Corpus) Document(position int) (models.Document, bool) {
	if position < 0 || position >= len(c.docs) {
		return models.Document{}, false
	}
	return c.docs[position], true
}

// Documents returns a copy of all documents in load order.
func (c *Corpus) Documents() []models.Document {
	out := make([]models.Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// ModelID is the embedder model id recorded at load time.
func (c *Corpus) ModelID() string {
	return c.modelID
}

// Dimensions is the vector width recorded at load time.
func (c *Corpus) Dimensions() int {
	return c.dimensions
}
