// Package apperr defines the error kinds surfaced by the answering pipeline.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of a pipeline error.
type Kind string

const (
	KindMissingCredential  Kind = "missing_credential"
	KindEmbeddingProvider  Kind = "embedding_provider"
	KindIndexEmpty         Kind = "index_empty"
	KindGenerationProvider Kind = "generation_provider"
	KindGenerationQuota    Kind = "generation_quota"
	KindModelMismatch      Kind = "model_mismatch"
	KindInvalidArgument    Kind = "invalid_argument"
)

// Error carries a Kind, the operation that failed and the underlying cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap implements errors.Unwrap.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an error of the given kind.
func New(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

var (
	ErrMissingCredential  = &Error{Kind: KindMissingCredential, Message: "credential not configured"}
	ErrEmbeddingProvider  = &Error{Kind: KindEmbeddingProvider, Message: "embedding provider failed"}
	ErrIndexEmpty         = &Error{Kind: KindIndexEmpty, Message: "no documents loaded"}
	ErrGenerationProvider = &Error{Kind: KindGenerationProvider, Message: "generation provider failed"}
	ErrGenerationQuota    = &Error{Kind: KindGenerationQuota, Message: "generation quota exhausted"}
	ErrModelMismatch      = &Error{Kind: KindModelMismatch, Message: "embedding model mismatch"}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
)

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
