package services

import (
	"context"
	"errors"
	"testing"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

func TestEmbedTexts_FallsBackToLocalOnAPIError(t *testing.T) {
	s, err := NewGeminiService("test-key", 1)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	defer s.Close()

	s.embedBatch = func(ctx context.Context, texts []string) ([][]float64, error) {
		return nil, errors.New("connection refused")
	}

	texts := []string{
		"glycolysis produces ATP in the cytoplasm",
		"the cell membrane is selectively permeable",
	}
	vectors, err := s.EmbedTexts(context.Background(), texts)
	if err != nil {
		t.Fatalf("embedding outage must not surface as an error, got %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}

	for i, text := range texts {
		want := retrieval.LocalEmbedding(text, retrieval.LocalEmbedDim)
		if len(vectors[i]) != len(want) {
			t.Fatalf("vector %d has dimension %d, want %d", i, len(vectors[i]), len(want))
		}
		for j := range want {
			if vectors[i][j] != want[j] {
				t.Fatalf("vector %d differs from the local embedding at index %d", i, j)
			}
		}
	}
}

func TestEmbedTexts_FallsBackOnShortBatch(t *testing.T) {
	s, err := NewGeminiService("test-key", 1)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	defer s.Close()

	s.embedBatch = func(ctx context.Context, texts []string) ([][]float64, error) {
		return [][]float64{{0.1, 0.2}}, nil
	}

	texts := []string{"first chunk of notes", "second chunk of notes"}
	vectors, err := s.EmbedTexts(context.Background(), texts)
	if err != nil {
		t.Fatalf("short batch must not surface as an error, got %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	for i, vector := range vectors {
		if len(vector) != retrieval.LocalEmbedDim {
			t.Errorf("vector %d should be a local embedding of dimension %d, got %d",
				i, retrieval.LocalEmbedDim, len(vector))
		}
	}
}

func TestEmbedTexts_DemoMode(t *testing.T) {
	s, err := NewGeminiService("", 1)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	vectors, err := s.EmbedTexts(context.Background(), []string{"osmosis moves water across membranes"})
	if err != nil {
		t.Fatalf("demo mode embedding failed: %v", err)
	}
	if len(vectors) != 1 || len(vectors[0]) != retrieval.LocalEmbedDim {
		t.Fatalf("expected one %d-dim local vector, got %d vectors", retrieval.LocalEmbedDim, len(vectors))
	}
}
