package generate

import (
	"context"
	"testing"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

func TestEvaluateCoachResponse_RefusesUngatedQuestion(t *testing.T) {
	chunks := []models.RetrievedChunk{
		retrieved("c1", "Glycolysis breaks down glucose.", 0.04),
	}

	result := EvaluateCoachResponse(context.Background(), nil, CoachParams{
		Question:        "what is the capital of France",
		UserAnswer:      "Paris is the capital.",
		SubjectName:     "Biology",
		RetrievedChunks: chunks,
		Gate:            retrieval.DefaultGateConfig(),
	})

	if result.Score != 0 {
		t.Errorf("expected score 0, got %d", result.Score)
	}
	if result.Verdict != VerdictNeedsWork {
		t.Errorf("expected verdict Needs Work, got %q", result.Verdict)
	}
	if result.Feedback != "Not found in your notes for Biology" {
		t.Errorf("unexpected feedback: %q", result.Feedback)
	}
	if result.ImprovedAnswer != "Not found in your notes for Biology" {
		t.Errorf("unexpected improved answer: %q", result.ImprovedAnswer)
	}
	if len(result.MissingPoints) != 0 || len(result.Citations) != 0 || len(result.Evidence) != 0 {
		t.Error("refusal must carry empty missing points, citations, and evidence")
	}
}

func TestEvaluateCoachResponse_ScoresGroundedAnswer(t *testing.T) {
	chunks := []models.RetrievedChunk{
		retrieved("c1", "Glycolysis breaks down glucose into pyruvate. The pathway yields two ATP per glucose molecule.", 0.8),
		retrieved("c2", "Glycolysis of glucose occurs in the cytoplasm without oxygen.", 0.6),
	}

	result := EvaluateCoachResponse(context.Background(), nil, CoachParams{
		Question:        "what does glycolysis do with glucose",
		UserAnswer:      "Glycolysis breaks down glucose into pyruvate and yields two ATP in the cytoplasm.",
		SubjectName:     "Biology",
		RetrievedChunks: chunks,
		Gate:            retrieval.DefaultGateConfig(),
	})

	if result.Score <= 0 || result.Score > 100 {
		t.Errorf("score %d out of range", result.Score)
	}
	if result.ImprovedAnswer == "" {
		t.Error("expected an improved answer")
	}
	if len(result.Citations) == 0 || len(result.Evidence) == 0 {
		t.Error("graded answer must carry citations and evidence")
	}
}

func TestEvaluateCoachResponse_WeakAnswerScoresLower(t *testing.T) {
	chunks := []models.RetrievedChunk{
		retrieved("c1", "Glycolysis breaks down glucose into pyruvate. The pathway yields two ATP per glucose molecule.", 0.8),
		retrieved("c2", "Glycolysis of glucose occurs in the cytoplasm without oxygen.", 0.6),
	}
	params := CoachParams{
		Question:        "what does glycolysis do with glucose",
		SubjectName:     "Biology",
		RetrievedChunks: chunks,
		Gate:            retrieval.DefaultGateConfig(),
	}

	params.UserAnswer = "Glycolysis breaks down glucose into pyruvate and yields two ATP in the cytoplasm without oxygen."
	strong := EvaluateCoachResponse(context.Background(), nil, params)

	params.UserAnswer = "Something about energy maybe."
	weak := EvaluateCoachResponse(context.Background(), nil, params)

	if weak.Score >= strong.Score {
		t.Errorf("weak answer (%d) should score below strong answer (%d)", weak.Score, strong.Score)
	}
	if len(weak.MissingPoints) == 0 {
		t.Error("weak answer should surface missing points")
	}
}

func TestMissingTermsFromEvidence(t *testing.T) {
	chunks := []models.RetrievedChunk{
		retrieved("c1", "Pyruvate feeds the Krebs cycle. Pyruvate forms from glucose.", 0.7),
	}

	missing := missingTermsFromEvidence("I only mention glucose here.", chunks)
	if len(missing) == 0 {
		t.Fatal("expected missing terms")
	}
	if missing[0] != "pyruvate" {
		t.Errorf("expected most-repeated missing term first, got %q", missing[0])
	}
	for _, term := range missing {
		if term == "glucose" {
			t.Error("terms present in the answer must not be reported missing")
		}
	}
}

func TestFeedbackByScore(t *testing.T) {
	if got := feedbackByScore(85, nil); got != "Strong answer grounded in your notes. Add one concrete example to make it even better." {
		t.Errorf("unexpected high-band feedback: %q", got)
	}
	if got := feedbackByScore(60, []string{"pyruvate", "cytoplasm"}); got != "Partially correct. Improve by covering missing points: pyruvate, cytoplasm." {
		t.Errorf("unexpected mid-band feedback: %q", got)
	}
	if got := feedbackByScore(60, nil); got != "Partially correct. Improve by covering missing points: key details." {
		t.Errorf("unexpected mid-band fallback feedback: %q", got)
	}
	if got := feedbackByScore(20, nil); got != "Answer is weak against your notes. Revisit the evidence and include core definitions and examples." {
		t.Errorf("unexpected low-band feedback: %q", got)
	}
}
