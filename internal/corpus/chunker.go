package corpus

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// Chunker splits long texts into overlapping word windows.
type Chunker struct {
	chunkWords   int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
// A size of zero disables chunking.
func NewChunker(chunkWords, chunkOverlap int) *Chunker {
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	return &Chunker{chunkWords: chunkWords, chunkOverlap: chunkOverlap}
}

// Chunk returns one document per window. Texts that fit in one window come back
// unchanged as a single document; later windows get "#n" appended to the source.
func (c *Chunker) Chunk(source, text string) []models.Document {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if c.chunkWords <= 0 || len(words) <= c.chunkWords {
		return []models.Document{{Text: text, Source: source}}
	}
	step := c.chunkWords - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	var docs []models.Document
	for i, n := 0, 0; i < len(words); i, n = i+step, n+1 {
		end := i + c.chunkWords
		if end > len(words) {
			end = len(words)
		}
		src := source
		if n > 0 {
			src = fmt.Sprintf("%s#%d", source, n)
		}
		docs = append(docs, models.Document{Text: strings.Join(words[i:end], " "), Source: src})
		if end >= len(words) {
			break
		}
	}
	return docs
}
