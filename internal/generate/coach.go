package generate

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

const (
	VerdictExcellent = "Excellent"
	VerdictGood      = "Good"
	VerdictNeedsWork = "Needs Work"
)

func extractiveImprovedAnswer(chunks []models.RetrievedChunk) string {
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}

	sentences := retrieval.SentenceSplit(strings.Join(texts, " "))
	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	return retrieval.Truncate(strings.Join(sentences, " "), 420)
}

func llmImprovedAnswer(ctx context.Context, completer Completer, question, userAnswer string, chunks []models.RetrievedChunk) string {
	var contextBlock strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			contextBlock.WriteByte('\n')
		}
		fmt.Fprintf(&contextBlock, "%d. %s", i+1, chunk.Text)
	}

	response := complete(ctx, completer,
		"You are a strict tutor. Improve the student's answer using only note evidence. Keep it concise. If context is insufficient, return INSUFFICIENT.",
		fmt.Sprintf("Question: %s\nStudent answer: %s\n\nEvidence:\n%s", question, userAnswer, contextBlock.String()),
		0.2)

	if response == "" || strings.Contains(strings.ToUpper(response), "INSUFFICIENT") {
		return ""
	}
	return retrieval.Truncate(response, 420)
}

// missingTermsFromEvidence finds the evidence terms the answer skipped,
// ranked by how often the evidence repeats them.
func missingTermsFromEvidence(answer string, chunks []models.RetrievedChunk) []string {
	answerTerms := retrieval.TokenSet(answer)

	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}

	evidenceTerms := make([]string, 0, 120)
	for _, token := range retrieval.Tokenize(strings.Join(texts, " ")) {
		if len(token) < 4 {
			continue
		}
		evidenceTerms = append(evidenceTerms, token)
		if len(evidenceTerms) == 120 {
			break
		}
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, term := range evidenceTerms {
		if _, ok := answerTerms[term]; ok {
			continue
		}
		if _, seen := counts[term]; !seen {
			order = append(order, term)
		}
		counts[term]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return len(order[i]) > len(order[j])
	})

	if len(order) > 5 {
		order = order[:5]
	}
	return order
}

func feedbackByScore(score int, missingPoints []string) string {
	if score >= 80 {
		return "Strong answer grounded in your notes. Add one concrete example to make it even better."
	}
	if score >= 55 {
		points := missingPoints
		if len(points) > 3 {
			points = points[:3]
		}
		joined := strings.Join(points, ", ")
		if joined == "" {
			joined = "key details"
		}
		return fmt.Sprintf("Partially correct. Improve by covering missing points: %s.", joined)
	}
	return "Answer is weak against your notes. Revisit the evidence and include core definitions and examples."
}

// CoachParams carries one graded attempt: the question asked, the
// student's answer, and the chunks retrieved for the question.
type CoachParams struct {
	Question        string
	UserAnswer      string
	SubjectName     string
	RetrievedChunks []models.RetrievedChunk
	Gate            retrieval.GateConfig
}

// EvaluateCoachResponse scores a student answer against note evidence.
// The question itself must pass the gate first; an ungated question gets
// the refusal in both feedback and improvedAnswer with a zero score.
func EvaluateCoachResponse(ctx context.Context, completer Completer, params CoachParams) models.CoachResponse {
	gating := retrieval.EvaluateGating(params.Question, params.RetrievedChunks, params.Gate)
	if !gating.Passed {
		notFound := refusalMessage(params.SubjectName)
		return models.CoachResponse{
			Score:          0,
			Verdict:        VerdictNeedsWork,
			Feedback:       notFound,
			MissingPoints:  []string{},
			ImprovedAnswer: notFound,
			Citations:      []models.Citation{},
			Evidence:       []models.EvidenceSnippet{},
		}
	}

	support := gating.DirectEvidence
	if len(support) > 4 {
		support = support[:4]
	}

	texts := make([]string, 0, len(support))
	for _, chunk := range support {
		texts = append(texts, chunk.Text)
	}
	expected := strings.Join(texts, " ")

	similarity := retrieval.Jaccard(params.UserAnswer, expected)
	score := int(math.Round(similarity*70 + gating.BestScore*30))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	verdict := VerdictNeedsWork
	switch {
	case score >= 80:
		verdict = VerdictExcellent
	case score >= 55:
		verdict = VerdictGood
	}

	missingPoints := missingTermsFromEvidence(params.UserAnswer, support)

	improvedAnswer := llmImprovedAnswer(ctx, completer, params.Question, params.UserAnswer, support)
	if improvedAnswer == "" {
		improvedAnswer = extractiveImprovedAnswer(support)
	}

	return models.CoachResponse{
		Score:          score,
		Verdict:        verdict,
		Feedback:       feedbackByScore(score, missingPoints),
		MissingPoints:  missingPoints,
		ImprovedAnswer: improvedAnswer,
		Citations:      chunkCitations(support),
		Evidence:       chunkEvidence(support),
	}
}
