package retrieval

import (
	"context"
	"testing"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

func scoredChunk(id, text string, score float64) models.RetrievedChunk {
	return models.RetrievedChunk{
		ChunkRecord: models.ChunkRecord{
			ChunkID:       id,
			FileName:      "bio-notes.pdf",
			PageOrSection: "Page 1",
			Text:          text,
		},
		Score: score,
	}
}

func TestEvaluateGating_Passes(t *testing.T) {
	chunks := []models.RetrievedChunk{
		scoredChunk("c1", "Glycolysis breaks down glucose into pyruvate. It produces a net gain of two ATP.", 0.8),
		scoredChunk("c2", "The glycolysis pathway consumes glucose in the cytoplasm.", 0.6),
	}

	result := EvaluateGating("what does glycolysis do with glucose", chunks, DefaultGateConfig())
	if !result.Passed {
		t.Fatalf("expected gate to pass, got reason %q", result.Reason)
	}
	if result.BestScore != 0.8 {
		t.Errorf("expected bestScore 0.8, got %f", result.BestScore)
	}
	if result.Reason != models.GatingOK {
		t.Errorf("expected reason ok, got %q", result.Reason)
	}
	if len(result.DirectEvidence) == 0 {
		t.Error("expected at least one direct evidence chunk")
	}
}

func TestEvaluateGating_LowScore(t *testing.T) {
	chunks := []models.RetrievedChunk{
		scoredChunk("c1", "Glycolysis breaks down glucose into pyruvate.", 0.05),
		scoredChunk("c2", "Mitochondria produce most cellular ATP.", 0.03),
	}

	result := EvaluateGating("what is the capital of France", chunks, DefaultGateConfig())
	if result.Passed {
		t.Fatal("expected gate to refuse")
	}
	if result.Reason != models.GatingLowScore {
		t.Errorf("expected reason low_score, got %q", result.Reason)
	}
	if result.Confidence != models.ConfidenceLow {
		t.Errorf("expected low confidence, got %q", result.Confidence)
	}
}

func TestEvaluateGating_LowScoreTakesPriority(t *testing.T) {
	// A below-threshold best score must be reported as low_score even
	// when the other failure conditions also hold.
	chunks := []models.RetrievedChunk{
		scoredChunk("c1", "Unrelated trivia about weather patterns.", 0.1),
	}

	result := EvaluateGating("explain the krebs cycle steps", chunks, DefaultGateConfig())
	if result.Passed {
		t.Fatal("expected gate to refuse")
	}
	if result.Reason != models.GatingLowScore {
		t.Errorf("expected reason low_score, got %q", result.Reason)
	}
}

func TestEvaluateGating_NoDirectEvidence(t *testing.T) {
	// Scores clear the threshold but no single sentence carries enough
	// query terms together.
	chunks := []models.RetrievedChunk{
		scoredChunk("c1", "Photosynthesis happens in chloroplasts. Light reactions come first.", 0.5),
		scoredChunk("c2", "The cell membrane is selectively permeable.", 0.4),
	}

	result := EvaluateGating("krebs cycle intermediate molecules", chunks, DefaultGateConfig())
	if result.Passed {
		t.Fatal("expected gate to refuse")
	}
	if result.Reason != models.GatingNoDirectEvidence {
		t.Errorf("expected reason no_direct_evidence, got %q", result.Reason)
	}
}

func TestEvaluateGating_SingleStrongHit(t *testing.T) {
	// Only one supporting chunk, well above threshold, with direct
	// evidence: the chunk-count floor must not block it.
	chunks := []models.RetrievedChunk{
		scoredChunk("c1", "Osmosis is the diffusion of water across a membrane.", 0.75),
		scoredChunk("c2", "Entirely unrelated filler material.", 0.02),
	}

	result := EvaluateGating("what is osmosis diffusion", chunks, DefaultGateConfig())
	if !result.Passed {
		t.Fatalf("expected single strong hit to pass, got reason %q", result.Reason)
	}
}

func TestEvaluateGating_TooFewChunks(t *testing.T) {
	cfg := GateConfig{Threshold: 0.2, MinChunks: 2}
	chunks := []models.RetrievedChunk{
		scoredChunk("c1", "Osmosis is the diffusion of water across a membrane.", 0.25),
		scoredChunk("c2", "Entirely unrelated material.", 0.01),
	}

	result := EvaluateGating("what is osmosis diffusion", chunks, cfg)
	if result.Passed {
		t.Fatal("expected gate to refuse")
	}
	if result.Reason != models.GatingTooFewChunks {
		t.Errorf("expected reason too_few_chunks, got %q", result.Reason)
	}
}

func TestEvaluateGating_Deterministic(t *testing.T) {
	chunks := []models.RetrievedChunk{
		scoredChunk("c1", "ATP synthase generates ATP using the proton gradient.", 0.7),
		scoredChunk("c2", "The proton gradient drives ATP synthase rotation.", 0.65),
		scoredChunk("c3", "Chlorophyll absorbs light energy.", 0.3),
	}

	first := EvaluateGating("how does ATP synthase use the proton gradient", chunks, DefaultGateConfig())
	for i := 0; i < 10; i++ {
		again := EvaluateGating("how does ATP synthase use the proton gradient", chunks, DefaultGateConfig())
		if again.Passed != first.Passed || again.Reason != first.Reason || again.BestScore != first.BestScore {
			t.Fatal("gating result changed across identical evaluations")
		}
		if len(again.SupportingChunks) != len(first.SupportingChunks) || len(again.DirectEvidence) != len(first.DirectEvidence) {
			t.Fatal("gating chunk selection changed across identical evaluations")
		}
	}
}

func TestConfidenceFromScores(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		chunks   int
		expected models.Confidence
	}{
		{"high score and support", 0.75, 3, models.ConfidenceHigh},
		{"high score, thin support", 0.75, 2, models.ConfidenceMedium},
		{"medium score", 0.5, 2, models.ConfidenceMedium},
		{"medium score, single chunk", 0.5, 1, models.ConfidenceLow},
		{"low score", 0.3, 5, models.ConfidenceLow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConfidenceFromScores(tc.score, tc.chunks); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func chunkRecord(id, subjectID, text string) models.ChunkRecord {
	return models.ChunkRecord{
		ChunkID:       id,
		FileName:      "notes.pdf",
		PageOrSection: "Page 1",
		Text:          text,
		Embedding:     LocalEmbedding(text, 64),
		SubjectID:     subjectID,
	}
}

func TestRetrieve_SubjectIsolation(t *testing.T) {
	chunks := []models.ChunkRecord{
		chunkRecord("bio-1", "subject-bio", "Glycolysis breaks down glucose into pyruvate."),
		chunkRecord("hist-1", "subject-history", "Glycolysis also appears in these misplaced notes."),
		chunkRecord("bio-2", "subject-bio", "The Krebs cycle follows glycolysis."),
	}

	results := Retrieve(context.Background(), nil, "glycolysis glucose", "subject-bio", chunks, 8)
	if len(results) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(results))
	}
	for _, r := range results {
		if r.SubjectID != "subject-bio" {
			t.Errorf("chunk %q from foreign subject leaked into results", r.ChunkID)
		}
	}
}

func TestRetrieve_RanksLexicalMatchesFirst(t *testing.T) {
	chunks := []models.ChunkRecord{
		chunkRecord("c1", "s1", "The French revolution began in 1789."),
		chunkRecord("c2", "s1", "Glycolysis converts glucose into pyruvate and yields ATP."),
	}

	results := Retrieve(context.Background(), nil, "glycolysis glucose pyruvate", "s1", chunks, 8)
	if len(results) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(results))
	}
	if results[0].ChunkID != "c2" {
		t.Errorf("expected keyword-matching chunk first, got %q", results[0].ChunkID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("expected descending scores, got %f then %f", results[0].Score, results[1].Score)
	}
}

func TestRetrieve_TopKLimit(t *testing.T) {
	chunks := make([]models.ChunkRecord, 0, 12)
	for i := 0; i < 12; i++ {
		chunks = append(chunks, chunkRecord("c"+string(rune('a'+i)), "s1", "Glycolysis produces ATP from glucose."))
	}

	results := Retrieve(context.Background(), nil, "glycolysis", "s1", chunks, 5)
	if len(results) != 5 {
		t.Errorf("expected 5 chunks, got %d", len(results))
	}
}

func TestRetrieve_EmptySubject(t *testing.T) {
	chunks := []models.ChunkRecord{
		chunkRecord("c1", "other", "Some notes."),
	}
	if results := Retrieve(context.Background(), nil, "anything", "missing", chunks, 8); results != nil {
		t.Errorf("expected nil for a subject with no chunks, got %d results", len(results))
	}
}
