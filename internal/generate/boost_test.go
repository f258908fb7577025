package generate

import (
	"context"
	"strings"
	"testing"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

func TestBuildSearchPayload(t *testing.T) {
	chunks := []models.RetrievedChunk{
		retrieved("c1", "Binary search halves the search space each step.", 0.91234),
		retrieved("c2", "Linear search scans every element.", 0.5),
		retrieved("c3", "Unrelated note.", 0),
	}

	response := BuildSearchPayload("binary search", chunks, 8)
	if response.Query != "binary search" {
		t.Errorf("unexpected query echo: %q", response.Query)
	}
	if response.TotalHits != 2 {
		t.Fatalf("expected 2 hits (zero-score chunk dropped), got %d", response.TotalHits)
	}
	if response.Hits[0].Score != 0.912 {
		t.Errorf("expected score rounded to 3 decimals, got %f", response.Hits[0].Score)
	}
	if response.Hits[0].ChunkID != "c1" {
		t.Errorf("expected best hit first, got %q", response.Hits[0].ChunkID)
	}
}

func TestBuildSearchPayload_LimitClamp(t *testing.T) {
	chunks := make([]models.RetrievedChunk, 0, 25)
	for i := 0; i < 25; i++ {
		chunks = append(chunks, retrieved("c", "Sorting notes entry.", 0.4))
	}

	if got := BuildSearchPayload("sorting", chunks, 0).TotalHits; got != 8 {
		t.Errorf("expected default limit 8, got %d", got)
	}
	if got := BuildSearchPayload("sorting", chunks, 100).TotalHits; got != 20 {
		t.Errorf("expected limit capped at 20, got %d", got)
	}
	if got := BuildSearchPayload("sorting", chunks, 3).TotalHits; got != 3 {
		t.Errorf("expected limit 3 respected, got %d", got)
	}
}

func TestBuildSearchPayload_EmptyResults(t *testing.T) {
	response := BuildSearchPayload("anything", nil, 8)
	if response.TotalHits != 0 {
		t.Errorf("expected 0 hits, got %d", response.TotalHits)
	}
	if response.Hits == nil {
		t.Error("hits must be an empty slice, not nil")
	}
}

func TestBuildExplainPayload_Refusal(t *testing.T) {
	chunks := []models.RetrievedChunk{
		retrieved("c1", "Stacks are last-in first-out structures.", 0.05),
	}

	response := BuildExplainPayload(context.Background(), nil, ExplainParams{
		Concept:         "red-black trees",
		SubjectName:     "DSA",
		RetrievedChunks: chunks,
		Gate:            retrieval.DefaultGateConfig(),
	})

	notFound := "Not found in your notes for DSA"
	if response.OneLiner != notFound || response.Simple != notFound || response.ExamReady != notFound {
		t.Error("refusal must fill all three explanation fields")
	}
	if response.Confidence != models.ConfidenceLow {
		t.Errorf("expected low confidence, got %q", response.Confidence)
	}
	if len(response.Citations) != 0 || len(response.Evidence) != 0 {
		t.Error("refusal must carry no citations or evidence")
	}
}

func TestBuildExplainPayload_ExtractiveDepths(t *testing.T) {
	chunks := []models.RetrievedChunk{
		retrieved("c1", "Binary search halves the search space each step. It requires a sorted input array. The worst case takes logarithmic time. It beats linear search on large sorted data.", 0.8),
		retrieved("c2", "Binary search compares the target with the middle element of the search range.", 0.6),
	}

	response := BuildExplainPayload(context.Background(), nil, ExplainParams{
		Concept:         "binary search",
		SubjectName:     "DSA",
		RetrievedChunks: chunks,
		Gate:            retrieval.DefaultGateConfig(),
	})

	if response.Concept != "binary search" {
		t.Errorf("unexpected concept echo: %q", response.Concept)
	}
	if response.OneLiner == "" || response.Simple == "" || response.ExamReady == "" {
		t.Fatal("expected all three explanation depths")
	}
	if len(response.OneLiner) > 140 {
		t.Errorf("oneLiner exceeds 140 characters: %d", len(response.OneLiner))
	}
	if len(response.Simple) > 280 {
		t.Errorf("simple exceeds 280 characters: %d", len(response.Simple))
	}
	if len(response.ExamReady) > 460 {
		t.Errorf("examReady exceeds 460 characters: %d", len(response.ExamReady))
	}
	if len(response.Citations) == 0 || len(response.Evidence) == 0 {
		t.Error("grounded explanation must carry citations and evidence")
	}
}

func plannerChunks() []models.RetrievedChunk {
	return []models.RetrievedChunk{
		retrieved("c1", "Dynamic programming stores subproblem results to avoid recomputation. Memoization caches top-down recursive calls.", 0.8),
		retrieved("c2", "Tabulation builds the solution bottom-up from base cases.", 0.6),
	}
}

func TestBuildPlannerPayload_BlocksAndDurations(t *testing.T) {
	response := BuildPlannerPayload(context.Background(), nil, 45, "", plannerChunks())
	if response == nil {
		t.Fatal("expected a planner response")
	}

	if response.GoalMinutes != 45 {
		t.Errorf("expected goalMinutes 45, got %d", response.GoalMinutes)
	}
	if len(response.Plan) != 3 {
		t.Fatalf("expected 3 blocks for a 45-minute goal, got %d", len(response.Plan))
	}

	total := 0
	for i, block := range response.Plan {
		if block.DurationMinutes < 5 {
			t.Errorf("block %d duration %d below minimum", i, block.DurationMinutes)
		}
		if !strings.HasPrefix(block.Title, "Block ") {
			t.Errorf("block %d has unexpected title %q", i, block.Title)
		}
		if len(block.Citations) == 0 || len(block.Evidence) == 0 {
			t.Errorf("block %d missing citations or evidence", i)
		}
		total += block.DurationMinutes
	}
	if response.TotalMinutes != total {
		t.Errorf("totalMinutes %d does not match block sum %d", response.TotalMinutes, total)
	}
}

func TestBuildPlannerPayload_BlockCountClamp(t *testing.T) {
	long := BuildPlannerPayload(context.Background(), nil, 240, "", plannerChunks())
	if long == nil {
		t.Fatal("expected a planner response")
	}
	if len(long.Plan) != 8 {
		t.Errorf("expected block count capped at 8, got %d", len(long.Plan))
	}

	short := BuildPlannerPayload(context.Background(), nil, 15, "", plannerChunks())
	if short == nil {
		t.Fatal("expected a planner response")
	}
	if len(short.Plan) != 3 {
		t.Errorf("expected at least 3 blocks, got %d", len(short.Plan))
	}
}

func TestBuildPlannerPayload_FocusTip(t *testing.T) {
	response := BuildPlannerPayload(context.Background(), nil, 45, "dynamic programming recursion", plannerChunks())
	if response == nil {
		t.Fatal("expected a planner response")
	}
	if len(response.Tips) != 3 {
		t.Fatalf("expected 3 tips, got %d", len(response.Tips))
	}
	if !strings.Contains(response.Tips[0], "dynamic") {
		t.Errorf("expected first tip to mention focus terms, got %q", response.Tips[0])
	}
}

func TestBuildPlannerPayload_NoUsableSentences(t *testing.T) {
	chunks := []models.RetrievedChunk{
		retrieved("c1", "Tiny note.", 0.9),
	}
	if response := BuildPlannerPayload(context.Background(), nil, 45, "", chunks); response != nil {
		t.Error("expected nil response when no sentence is long enough")
	}
}
