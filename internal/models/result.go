package models

import "github.com/google/uuid"

// Hit is a retrieved document with its L2 distance to the query.
type Hit struct {
	Document Document `json:"document"`
	Distance float64  `json:"distance"`
	Rank     int      `json:"rank"`
}

// AnswerMode selects between the pure and retrieval-augmented flows.
type AnswerMode string

const (
	ModePure AnswerMode = "pure"
	ModeRAG  AnswerMode = "rag"
)

// Answer is the result of one question.
type Answer struct {
	ID        uuid.UUID  `json:"id"`
	Query     string     `json:"query"`
	Mode      AnswerMode `json:"mode"`
	Prompt    string     `json:"prompt"`
	Text      string     `json:"answer"`
	Hits      []Hit      `json:"hits,omitempty"`
	Model     string     `json:"model"`
	ElapsedMs int64      `json:"elapsed_ms"`
}

// RetrieveResponse is the response for a retrieval-only request.
type RetrieveResponse struct {
	Query     string `json:"query"`
	Hits      []Hit  `json:"hits"`
	ElapsedMs int64  `json:"elapsed_ms"`
}
