package generate

import (
	"context"
	"testing"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

func aiLabChunks() []models.RetrievedChunk {
	return []models.RetrievedChunk{
		retrieved("c1", "Photosynthesis converts light energy into chemical energy stored in glucose. The light reactions happen in the thylakoid membranes.", 0.85),
		retrieved("c2", "The Calvin cycle fixes carbon dioxide into organic molecules using ATP and NADPH.", 0.65),
	}
}

func TestGenerateAiLabPack_FixedShape(t *testing.T) {
	pack := GenerateAiLabPack(context.Background(), nil, aiLabChunks())
	if pack == nil {
		t.Fatal("expected an AI lab pack")
	}

	if len(pack.KeyConcepts) != 6 {
		t.Errorf("expected 6 key concepts, got %d", len(pack.KeyConcepts))
	}
	if len(pack.Flashcards) != 8 {
		t.Errorf("expected 8 flashcards, got %d", len(pack.Flashcards))
	}
	if len(pack.RevisionPlan) != 3 {
		t.Errorf("expected a 3-day revision plan, got %d items", len(pack.RevisionPlan))
	}

	for i, task := range pack.RevisionPlan {
		if task.Day != i+1 {
			t.Errorf("revision item %d: expected day %d, got %d", i, i+1, task.Day)
		}
		if task.Focus == "" || task.Task == "" {
			t.Errorf("revision item %d has empty focus or task", i)
		}
	}

	for i, concept := range pack.KeyConcepts {
		if concept.Title == "" || concept.Summary == "" {
			t.Errorf("concept %d has empty title or summary", i)
		}
		if len(concept.Citations) == 0 || len(concept.Evidence) == 0 {
			t.Errorf("concept %d missing citations or evidence", i)
		}
	}
}

func TestGenerateAiLabPack_NoUsableSentences(t *testing.T) {
	chunks := []models.RetrievedChunk{
		retrieved("c1", "Short line only.", 0.9),
	}
	if pack := GenerateAiLabPack(context.Background(), nil, chunks); pack != nil {
		t.Error("expected nil pack when no sentence is long enough")
	}
}

func TestToTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"photosynthesis", "Photosynthesis"},
		{"calvin cycle", "Calvin Cycle"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := toTitle(tc.input); got != tc.expected {
			t.Errorf("toTitle(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}
