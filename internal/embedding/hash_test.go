package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/hyperjump/kotae/pkg/utils"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()
	a, err := e.Embed(ctx, "The Moon landing happened in 1969.")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "The Moon landing happened in 1969.")
	if len(a) != 64 {
		t.Fatalf("len = %d", len(a))
	}
	if utils.L2Distance(a, b) != 0 {
		t.Error("same text should embed identically")
	}
	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("vector should be unit length, got norm^2=%f", norm)
	}
}

func TestHashEmbedder_SharedWordsAreCloser(t *testing.T) {
	e := NewHashEmbedder(384)
	ctx := context.Background()
	vecs, err := e.EmbedBatch(ctx, []string{
		"Where is the Eiffel Tower?",
		"The Eiffel Tower is located in Paris, France.",
		"Water boils at 100 degrees Celsius at sea level.",
	})
	if err != nil {
		t.Fatal(err)
	}
	near := utils.L2Distance(vecs[0], vecs[1])
	far := utils.L2Distance(vecs[0], vecs[2])
	if near >= far {
		t.Errorf("expected eiffel doc closer: near=%f far=%f", near, far)
	}
}

func TestHashEmbedder_ModelID(t *testing.T) {
	if NewHashEmbedder(384).ModelID() == NewHashEmbedder(128).ModelID() {
		t.Error("model id should differ across dimensions")
	}
	if NewHashEmbedder(0).Dimensions() != 384 {
		t.Error("zero dimensions should default to 384")
	}
}

func TestHashEmbedder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewHashEmbedder(8).Embed(ctx, "x"); err == nil {
		t.Error("expected context error")
	}
}

func TestTerms(t *testing.T) {
	got := Terms("Who and why the Eiffel-Tower was built?")
	want := []string{"who", "and", "why", "the", "eiffel", "tower", "was", "built"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("term %d = %q, want %q", i, got[i], want[i])
		}
	}
}
