package embedding

import (
	"context"
	"math"
	"testing"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(384)
	ctx := context.Background()

	emb1, err := e.Embed(ctx, "hello world")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	emb2, err := e.Embed(ctx, "hello world")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(emb1) != 384 {
		t.Errorf("expected 384 dimensions, got %d", len(emb1))
	}
	for i := range emb1 {
		if emb1[i] != emb2[i] {
			t.Fatalf("embeddings differ at index %d", i)
		}
	}
}

func TestMockEmbedderDifferentTexts(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()

	emb1, _ := e.Embed(ctx, "quantum computing")
	emb2, _ := e.Embed(ctx, "cooking recipes")
	same := true
	for i := range emb1 {
		if emb1[i] != emb2[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}
}

func TestMockEmbedderUnitNorm(t *testing.T) {
	e := NewMockEmbedder(128)
	emb, err := e.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-4 {
		t.Errorf("expected unit norm, got %f", math.Sqrt(sum))
	}
}

func TestMockEmbedderDefaultDimensions(t *testing.T) {
	e := NewMockEmbedder(0)
	if e.Dimensions() != 384 {
		t.Errorf("expected default 384, got %d", e.Dimensions())
	}
}

func TestMockEmbedderBatch(t *testing.T) {
	e := NewMockEmbedder(32)
	ctx := context.Background()
	texts := []string{"one", "two", "three"}
	batch, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(batch))
	}
	single, _ := e.Embed(ctx, "two")
	for i := range single {
		if batch[1][i] != single[i] {
			t.Fatal("batch embedding differs from single embedding")
		}
	}
}
