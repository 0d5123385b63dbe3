package embedding

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiEmbedder_SendsTextUnchanged(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "text-embedding-004:") {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embeddings":[{"values":[3,4]}]}`))
	}))
	defer srv.Close()

	e, err := NewGeminiEmbedder(context.Background(), GeminiConfig{APIKey: "test-key", Dimensions: 2, BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	out, err := e.Embed(context.Background(), "Water  boils\n at sea level")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if math.Abs(float64(out[0])-0.6) > 1e-6 || math.Abs(float64(out[1])-0.8) > 1e-6 {
		t.Errorf("vector = %v, want normalized [0.6 0.8]", out)
	}
	if !strings.Contains(raw, `Water  boils\n at sea level`) {
		t.Errorf("request body does not carry the text as given: %s", raw)
	}
	if e.ModelID() != "gemini/text-embedding-004/2" {
		t.Errorf("model id = %s", e.ModelID())
	}
}
