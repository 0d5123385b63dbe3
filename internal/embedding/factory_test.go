package embedding

import (
	"context"
	"testing"
)

func TestNewEmbedder_Hash(t *testing.T) {
	e, err := NewEmbedder(context.Background(), Options{Provider: ProviderHash, Dimensions: 32})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if e.Dimensions() != 32 {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}
	if _, ok := e.(*HashEmbedder); !ok {
		t.Errorf("expected *HashEmbedder without cache, got %T", e)
	}
}

func TestNewEmbedder_Cached(t *testing.T) {
	e, err := NewEmbedder(context.Background(), Options{Provider: ProviderHash, Dimensions: 32, CacheSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*CachedEmbedder); !ok {
		t.Errorf("expected *CachedEmbedder, got %T", e)
	}
	if e.ModelID() != "hash-bow/32" {
		t.Errorf("ModelID = %s", e.ModelID())
	}
}

func TestNewEmbedder_Unknown(t *testing.T) {
	if _, err := NewEmbedder(context.Background(), Options{Provider: "word2vec"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewEmbedder_HostedNeedsKey(t *testing.T) {
	for _, p := range []string{ProviderOpenAI, ProviderGemini} {
		if !NeedsAPIKey(p) {
			t.Errorf("%s should need a key", p)
		}
		if _, err := NewEmbedder(context.Background(), Options{Provider: p}); err == nil {
			t.Errorf("%s without key should fail", p)
		}
	}
	if NeedsAPIKey(ProviderHash) || NeedsAPIKey(ProviderONNX) {
		t.Error("local providers should not need a key")
	}
}
