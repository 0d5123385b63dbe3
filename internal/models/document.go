// Package models defines core data structures for documents, queries, and answers.
package models

// SourceInline marks a document that came from the configured text list.
const SourceInline = "inline"

// Document is an immutable piece of text identified by its load position.
// Position is also the document's slot in the vector index.
type Document struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
	Source   string `json:"source"`
}
