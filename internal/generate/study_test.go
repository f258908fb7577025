package generate

import (
	"context"
	"reflect"
	"testing"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

func studyChunks() []models.RetrievedChunk {
	return []models.RetrievedChunk{
		retrieved("c1", "Glycolysis breaks down glucose into pyruvate molecules. The pathway yields a net gain of two ATP per glucose.", 0.9),
		retrieved("c2", "The Krebs cycle oxidizes acetyl-CoA and releases carbon dioxide. Each turn generates three NADH carriers.", 0.7),
		retrieved("c3", "Oxidative phosphorylation uses the electron transport chain to produce most cellular ATP.", 0.5),
	}
}

func TestGenerateStudyPack_FixedShape(t *testing.T) {
	pack := GenerateStudyPack(context.Background(), nil, studyChunks(), DifficultyMedium, "v1")
	if pack == nil {
		t.Fatal("expected a study pack")
	}

	if pack.Difficulty != "Medium" {
		t.Errorf("expected difficulty Medium, got %q", pack.Difficulty)
	}
	if len(pack.MCQs) != 5 {
		t.Errorf("expected 5 MCQs, got %d", len(pack.MCQs))
	}
	if len(pack.ShortAnswers) != 3 {
		t.Errorf("expected 3 short answers, got %d", len(pack.ShortAnswers))
	}
	if len(pack.Flashcards) != 10 {
		t.Errorf("expected 10 flashcards, got %d", len(pack.Flashcards))
	}

	for i, mcq := range pack.MCQs {
		if len(mcq.Options) != 4 {
			t.Errorf("MCQ %d: expected 4 options, got %d", i, len(mcq.Options))
		}
		if mcq.CorrectOption < 0 || mcq.CorrectOption > 3 {
			t.Errorf("MCQ %d: correctOption %d out of range", i, mcq.CorrectOption)
		}
		if len(mcq.Citations) == 0 || len(mcq.Evidence) == 0 {
			t.Errorf("MCQ %d: missing citations or evidence", i)
		}
	}

	for i, card := range pack.Flashcards {
		if card.Front == "" || card.Back == "" {
			t.Errorf("flashcard %d has empty side", i)
		}
		if len(card.Citations) == 0 {
			t.Errorf("flashcard %d missing citations", i)
		}
	}
}

func TestGenerateStudyPack_ReproduciblePerVariationKey(t *testing.T) {
	first := GenerateStudyPack(context.Background(), nil, studyChunks(), DifficultyHard, "key-a")
	second := GenerateStudyPack(context.Background(), nil, studyChunks(), DifficultyHard, "key-a")

	if first == nil || second == nil {
		t.Fatal("expected study packs")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same difficulty and variation key must produce identical packs")
	}
}

func TestGenerateStudyPack_VariationKeyChangesPack(t *testing.T) {
	first := GenerateStudyPack(context.Background(), nil, studyChunks(), DifficultyMedium, "key-a")
	second := GenerateStudyPack(context.Background(), nil, studyChunks(), DifficultyMedium, "key-b")

	if first == nil || second == nil {
		t.Fatal("expected study packs")
	}
	if reflect.DeepEqual(first, second) {
		t.Error("different variation keys should reshuffle the pack")
	}
}

func TestGenerateStudyPack_DifficultyLabels(t *testing.T) {
	tests := []struct {
		difficulty string
		label      string
	}{
		{DifficultyEasy, "Easy"},
		{DifficultyMedium, "Medium"},
		{DifficultyHard, "Hard"},
	}

	for _, tc := range tests {
		pack := GenerateStudyPack(context.Background(), nil, studyChunks(), tc.difficulty, "v1")
		if pack == nil {
			t.Fatalf("expected a pack for difficulty %q", tc.difficulty)
		}
		if pack.Difficulty != tc.label {
			t.Errorf("difficulty %q: expected label %q, got %q", tc.difficulty, tc.label, pack.Difficulty)
		}
	}
}

func TestGenerateStudyPack_NoUsableSentences(t *testing.T) {
	chunks := []models.RetrievedChunk{
		retrieved("c1", "Too short.", 0.9),
	}
	if pack := GenerateStudyPack(context.Background(), nil, chunks, DifficultyMedium, "v1"); pack != nil {
		t.Error("expected nil pack when no sentence is long enough")
	}
}

func TestHashSeed_StableAndDistinct(t *testing.T) {
	if hashSeed("medium:key") != hashSeed("medium:key") {
		t.Error("hashSeed must be stable")
	}
	if hashSeed("medium:key") == hashSeed("hard:key") {
		t.Error("different inputs should hash differently")
	}
}

func TestNewRNG_DeterministicSequence(t *testing.T) {
	a := newRNG(42)
	b := newRNG(42)
	for i := 0; i < 20; i++ {
		va, vb := a(), b()
		if va != vb {
			t.Fatalf("sequence diverged at step %d", i)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("value %f out of [0, 1)", va)
		}
	}
}

func TestShuffleWithRNG_Permutation(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	shuffled := shuffleWithRNG(items, newRNG(7))

	if len(shuffled) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(shuffled))
	}

	seen := make(map[string]bool)
	for _, item := range shuffled {
		seen[item] = true
	}
	for _, item := range items {
		if !seen[item] {
			t.Errorf("item %q lost in shuffle", item)
		}
	}
}

func TestPickKeyword(t *testing.T) {
	tests := []struct {
		sentence string
		expected string
	}{
		{"Glycolysis breaks down glucose", "glycolysis"},
		{"a an of to", "concept"},
		{"", "concept"},
	}

	for _, tc := range tests {
		if got := pickKeyword(tc.sentence); got != tc.expected {
			t.Errorf("pickKeyword(%q) = %q, expected %q", tc.sentence, got, tc.expected)
		}
	}
}
