package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hyperjump/kotae/internal/apperr"
)

func TestGeminiProvider_Complete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Paris."}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	got, err := p.Complete(context.Background(), DefaultSystemPrompt, "Question: q\nAnswer:", 100)
	require.NoError(t, err)
	assert.Equal(t, "Paris.", got)
	assert.Equal(t, "gemini", p.Name())
	assert.Equal(t, "gemini-2.5-flash", p.Model())

	genCfg, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok, "request body: %v", body)
	assert.EqualValues(t, 100, genCfg["maxOutputTokens"])
	assert.Contains(t, fmt.Sprint(body["systemInstruction"]), DefaultSystemPrompt)
	assert.Contains(t, fmt.Sprint(body["contents"]), "Question: q")
}

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"http 429", genai.APIError{Code: 429, Message: "slow down"}, apperr.KindGenerationQuota},
		{"resource exhausted", fmt.Errorf("call: %w", genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"}), apperr.KindGenerationQuota},
		{"permission denied", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, apperr.KindGenerationProvider},
		{"transport", errors.New("connection reset"), apperr.KindGenerationProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.KindOf(classifyGeminiError(tt.err)))
		})
	}
}

func TestNewGeminiProvider_MissingKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), GeminiConfig{})
	assert.ErrorIs(t, err, apperr.ErrMissingCredential)
}
