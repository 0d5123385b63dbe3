package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesKind(t *testing.T) {
	cause := errors.New("connection refused")
	err := New(KindEmbeddingProvider, "embed query", "provider call failed", cause)
	wrapped := fmt.Errorf("retrieve: %w", err)

	if !errors.Is(wrapped, ErrEmbeddingProvider) {
		t.Error("expected wrapped error to match ErrEmbeddingProvider")
	}
	if errors.Is(wrapped, ErrIndexEmpty) {
		t.Error("did not expect match with ErrIndexEmpty")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"kind only", &Error{Kind: KindIndexEmpty}, "index_empty"},
		{"op and message", New(KindInvalidArgument, "retrieve", "k must be at least 1", nil), "retrieve: k must be at least 1"},
		{"with cause", New(KindGenerationQuota, "generate", "quota exhausted", errors.New("429")), "generate: quota exhausted: 429"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(nil) != "" {
		t.Error("KindOf(nil) should be empty")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf(plain error) should be empty")
	}
	err := fmt.Errorf("outer: %w", New(KindGenerationQuota, "", "", nil))
	if KindOf(err) != KindGenerationQuota {
		t.Errorf("KindOf = %q", KindOf(err))
	}
	if !IsKind(err, KindGenerationQuota) {
		t.Error("IsKind should be true")
	}
	if IsKind(nil, KindGenerationQuota) {
		t.Error("IsKind(nil) should be false")
	}
}
