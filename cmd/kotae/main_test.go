package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/apperr"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"Where is the Eiffel Tower?", "--k", "2"},
			expected: []string{"--k", "2", "Where is the Eiffel Tower?"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"--pure", "Who built it"},
			expected: []string{"--pure", "Who built it"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"moon landing"},
			expected: []string{"moon landing"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"water", "boils", "-output", "json"},
			expected: []string{"-output", "json", "water", "boils"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"Eiffel"}, "Eiffel"},
		{"multiple words", []string{"Where", "is", "it?"}, "Where is it?"},
		{"quoted phrase", []string{"Where is it?"}, "Where is it?"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildQuery(tt.args); got != tt.expected {
				t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("retrieval:\n  top_k: 3\nembedding:\n  provider: hash\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if resolved != path || cfg.Retrieval.TopK != 3 {
		t.Errorf("resolved=%q top_k=%d", resolved, cfg.Retrieval.TopK)
	}

	if _, _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for explicit missing config")
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(apperr.New(apperr.KindMissingCredential, "x", "", nil)); got != 3 {
		t.Errorf("missing credential: got %d", got)
	}
	if got := exitCode(apperr.New(apperr.KindGenerationQuota, "x", "", nil)); got != 4 {
		t.Errorf("quota: got %d", got)
	}
	if got := exitCode(os.ErrNotExist); got != 1 {
		t.Errorf("other: got %d", got)
	}
}

func TestRunConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "config.yaml")
	var out bytes.Buffer
	if err := runConfig([]string{"init", path}, &out); err != nil {
		t.Fatalf("runConfig: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Generation.Model != "gpt-3.5-turbo" || cfg.Generation.MaxTokens != 100 {
		t.Errorf("generation defaults: %+v", cfg.Generation)
	}
	if err := runConfig([]string{"init", path}, &out); err == nil {
		t.Error("expected refusal to overwrite")
	}
	if err := runConfig([]string{"init", path, "--force"}, &out); err != nil {
		t.Errorf("--force: %v", err)
	}
	if err := runConfig([]string{"show"}, &out); err == nil {
		t.Error("expected usage error")
	}
}

// writeTestConfig writes a config using the hash embedder followed by the given
// generation section.
func writeTestConfig(t *testing.T, generation string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "credentials:\n  env_file: ./missing.env\nembedding:\n  provider: hash\n" + generation
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newChatServer(t *testing.T, lastPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) == 2 {
			*lastPrompt = req.Messages[1].Content
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-3.5-turbo",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"\nParis, France.\n"}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunAsk_RAG(t *testing.T) {
	var prompt string
	srv := newChatServer(t, &prompt)
	path := writeTestConfig(t, "generation:\n  api_key: sk-test\n  base_url: "+srv.URL+"/v1\n")

	var out bytes.Buffer
	err := runAsk(context.Background(), []string{"Where is the Eiffel Tower?", "--config", path, "--output", "json"}, &out)
	if err != nil {
		t.Fatalf("runAsk: %v", err)
	}
	var ans models.Answer
	if err := json.Unmarshal(out.Bytes(), &ans); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out.String())
	}
	if ans.Text != "Paris, France." || ans.Mode != models.ModeRAG || ans.Model != "gpt-3.5-turbo" {
		t.Errorf("answer: %+v", ans)
	}
	want := "Question: Where is the Eiffel Tower?\nRetrieved Information: " + config.DemoDocuments[0] + "\nAnswer:"
	if prompt != want {
		t.Errorf("prompt sent: %q, want %q", prompt, want)
	}
}

func TestRunAsk_PureDefaultQuery(t *testing.T) {
	var prompt string
	srv := newChatServer(t, &prompt)
	path := writeTestConfig(t, "generation:\n  api_key: sk-test\n  base_url: "+srv.URL+"/v1\n")

	var out bytes.Buffer
	if err := runAsk(context.Background(), []string{"--pure", "--config", path}, &out); err != nil {
		t.Fatalf("runAsk: %v", err)
	}
	if prompt != "Question: "+defaultQuery+"\nAnswer:" {
		t.Errorf("prompt sent: %q", prompt)
	}
	if !strings.HasPrefix(out.String(), "Paris, France.\n") {
		t.Errorf("output: %q", out.String())
	}
}

func TestRunAsk_MissingCredential(t *testing.T) {
	t.Setenv("KOTAE_TEST_MISSING_KEY", "")
	path := writeTestConfig(t, "generation:\n  api_key_env: KOTAE_TEST_MISSING_KEY\n")
	err := runAsk(context.Background(), []string{"--config", path, "q"}, &bytes.Buffer{})
	if !apperr.IsKind(err, apperr.KindMissingCredential) {
		t.Fatalf("expected missing credential, got %v", err)
	}
}

func TestRunRetrieve(t *testing.T) {
	t.Setenv("KOTAE_TEST_MISSING_KEY", "")
	path := writeTestConfig(t, "generation:\n  api_key_env: KOTAE_TEST_MISSING_KEY\n")
	var out bytes.Buffer
	err := runRetrieve(context.Background(), []string{"When did the Moon landing happen?", "--config", path, "--k", "2", "--output", "json"}, &out)
	if err != nil {
		t.Fatalf("runRetrieve: %v", err)
	}
	var resp models.RetrieveResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 2 || resp.Hits[0].Document.Text != config.DemoDocuments[2] {
		t.Errorf("hits: %+v", resp.Hits)
	}
	if err := runRetrieve(context.Background(), []string{"--config", path}, &out); err == nil {
		t.Error("expected error without a query")
	}
}

func TestRunDocuments(t *testing.T) {
	path := writeTestConfig(t, "")
	var out bytes.Buffer
	if err := runDocuments(context.Background(), []string{"--config", path, "--output", "json"}, &out); err != nil {
		t.Fatalf("runDocuments: %v", err)
	}
	var docs []models.Document
	if err := json.Unmarshal(out.Bytes(), &docs); err != nil {
		t.Fatal(err)
	}
	if len(docs) != len(config.DemoDocuments) {
		t.Errorf("got %d documents", len(docs))
	}
}

func TestInitializeComponents_ONNXFallback(t *testing.T) {
	cfg := config.Default()
	cfg.Embedding.ModelPath = filepath.Join(t.TempDir(), "missing.onnx")
	c, err := initializeComponents(context.Background(), cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatalf("initializeComponents: %v", err)
	}
	defer c.Close()
	if !strings.HasPrefix(c.Embedder.ModelID(), "hash-bow/") {
		t.Errorf("expected hash fallback, got %s", c.Embedder.ModelID())
	}
	if c.Corpus.Len() != len(config.DemoDocuments) || c.Index.Size() != c.Corpus.Len() {
		t.Errorf("corpus %d, index %d", c.Corpus.Len(), c.Index.Size())
	}

	disabled := false
	cfg.Embedding.AllowFallback = &disabled
	if _, err := initializeComponents(context.Background(), cfg, zap.NewNop(), false); err == nil {
		t.Error("expected error with fallback disabled")
	}
}

func TestRunAsk_PureSkipsEmbeddingBackend(t *testing.T) {
	var prompt string
	chat := newChatServer(t, &prompt)
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"unavailable"}}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(down.Close)
	t.Setenv("KOTAE_TEST_MISSING_KEY", "")

	generationSection := "generation:\n  api_key: sk-test\n  base_url: " + chat.URL + "/v1\n"
	tests := []struct {
		name      string
		embedding string
	}{
		{"embedding provider failing", "embedding:\n  provider: openai\n  api_key: sk-embed\n  base_url: " + down.URL + "/v1\n"},
		{"embedding key missing", "embedding:\n  provider: openai\n  api_key_env: KOTAE_TEST_MISSING_KEY\n"},
		{"pgvector unreachable", "vector:\n  index_type: pgvector\n  database_url: postgres://kotae@127.0.0.1:1/kotae?connect_timeout=1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt = ""
			path := filepath.Join(t.TempDir(), "config.yaml")
			content := "credentials:\n  env_file: ./missing.env\n" + tt.embedding + generationSection
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatal(err)
			}

			var out bytes.Buffer
			if err := runAsk(context.Background(), []string{"--pure", "--config", path, "Who built it"}, &out); err != nil {
				t.Fatalf("runAsk --pure: %v", err)
			}
			if prompt != "Question: Who built it\nAnswer:" {
				t.Errorf("prompt sent: %q", prompt)
			}
			if !strings.HasPrefix(out.String(), "Paris, France.\n") {
				t.Errorf("output: %q", out.String())
			}

			if err := runAsk(context.Background(), []string{"--config", path, "Who built it"}, &bytes.Buffer{}); err == nil {
				t.Error("expected the retrieval flow to fail without its backend")
			}
		})
	}
}
