package models

import (
	"fmt"
	"strings"
)

// AnswerRequest asks a question in the given mode.
type AnswerRequest struct {
	Query string     `json:"query" validate:"required"`
	Mode  AnswerMode `json:"mode,omitempty" validate:"omitempty,oneof=pure rag"`
	TopK  int        `json:"top_k,omitempty" validate:"gte=0"`
}

// Normalize trims the query and fills defaults. Returns an error if the query is blank.
func (r *AnswerRequest) Normalize(defaultK int) error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if r.Mode == "" {
		r.Mode = ModeRAG
	}
	if r.TopK <= 0 {
		r.TopK = defaultK
	}
	return nil
}

// RetrieveRequest asks for the k nearest documents to a query.
type RetrieveRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k,omitempty" validate:"gte=0"`
}

// Normalize trims the query and fills the default k.
func (r *RetrieveRequest) Normalize(defaultK int) error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if r.TopK <= 0 {
		r.TopK = defaultK
	}
	return nil
}
