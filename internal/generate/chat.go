package generate

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

var summaryQuestionPattern = regexp.MustCompile(
	`what is (this|it) about|summary|summarize|overview|main topic|what are these notes about|explain this`,
)

var followUpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^give (an|a) example`),
	regexp.MustCompile(`(?i)^can you give (an|a) example`),
	regexp.MustCompile(`(?i)^simplify( it| this)?`),
	regexp.MustCompile(`(?i)^explain( it| this)? in simple terms`),
	regexp.MustCompile(`(?i)^compare( it| this)`),
	regexp.MustCompile(`(?i)^what about`),
	regexp.MustCompile(`(?i)^and what`),
	regexp.MustCompile(`(?i)^why\??$`),
	regexp.MustCompile(`(?i)^how\??$`),
	regexp.MustCompile(`(?i)^elaborate`),
	regexp.MustCompile(`(?i)^continue`),
	regexp.MustCompile(`(?i)^tell me more`),
	regexp.MustCompile(`(?i)^what does that mean`),
	regexp.MustCompile(`(?i)^same for`),
	regexp.MustCompile(`(?i)^now compare`),
	regexp.MustCompile(`(?i)^with the previous`),
}

var standalonePrefixPattern = regexp.MustCompile(`(?i)^standalone question\s*:\s*`)

var anaphoraTokens = map[string]struct{}{
	"it": {}, "that": {}, "this": {}, "previous": {}, "same": {},
}

func notFoundChatResponse(subjectName string) models.ChatResponse {
	return models.ChatResponse{
		Answer:     refusalMessage(subjectName),
		Confidence: models.ConfidenceLow,
		Citations:  []models.Citation{},
		Evidence:   []models.EvidenceSnippet{},
	}
}

// IsSummaryStyleQuestion reports whether the question asks for a broad
// overview of the notes rather than a specific fact. Summary questions
// skip the evidence gate because they are grounded in whatever the top
// chunks are, not in a term match.
func IsSummaryStyleQuestion(question string) bool {
	return summaryQuestionPattern.MatchString(strings.ToLower(question))
}

func isLikelyFollowUpQuestion(question string) bool {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return false
	}

	for _, pattern := range followUpPatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}

	tokens := strings.Fields(strings.ToLower(trimmed))
	if len(tokens) <= 6 {
		for _, token := range tokens {
			if _, ok := anaphoraTokens[token]; ok {
				return true
			}
		}
	}
	return false
}

func compactHistory(history []models.ChatTurn, maxTurns int) []models.ChatTurn {
	compact := make([]models.ChatTurn, 0, len(history))
	for _, turn := range history {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		compact = append(compact, models.ChatTurn{Role: turn.Role, Text: retrieval.Truncate(text, 280)})
	}
	if len(compact) > maxTurns {
		compact = compact[len(compact)-maxTurns:]
	}
	return compact
}

func historyPrompt(history []models.ChatTurn) string {
	if len(history) == 0 {
		return "None"
	}

	var b strings.Builder
	for i, turn := range history {
		role := "Assistant"
		if turn.Role == "user" {
			role = "User"
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s: %s", i+1, role, turn.Text)
	}
	return b.String()
}

func heuristicEffectiveQuestion(question string, history []models.ChatTurn) string {
	compact := compactHistory(history, 6)

	lastUser := ""
	lastAssistant := ""
	for i := len(compact) - 1; i >= 0; i-- {
		if compact[i].Role == "user" && lastUser == "" {
			lastUser = compact[i].Text
		}
		if compact[i].Role == "assistant" && lastAssistant == "" {
			lastAssistant = compact[i].Text
		}
	}

	parts := make([]string, 0, 2)
	if lastUser != "" {
		parts = append(parts, lastUser)
	}
	if lastAssistant != "" {
		parts = append(parts, lastAssistant)
	}
	if len(parts) == 0 {
		return question
	}

	return retrieval.Truncate(question+". Previous context: "+strings.Join(parts, " "), 900)
}

func llmRewriteFollowUp(ctx context.Context, completer Completer, question string, history []models.ChatTurn) string {
	compact := compactHistory(history, 8)
	if len(compact) == 0 {
		return ""
	}

	rewrite := complete(ctx, completer,
		"Rewrite follow-up questions into standalone retrieval queries grounded in recent conversation. Return only the rewritten question.",
		fmt.Sprintf("Recent conversation:\n%s\n\nCurrent question: %s", historyPrompt(compact), question),
		0)
	if rewrite == "" {
		return ""
	}

	cleaned := strings.TrimSpace(standalonePrefixPattern.ReplaceAllString(rewrite, ""))
	if cleaned == "" {
		return ""
	}
	return retrieval.Truncate(cleaned, 900)
}

// ResolveEffectiveQuestion rewrites anaphoric follow-ups ("why?", "give
// an example") into standalone retrieval queries using recent history.
// Non-follow-up questions pass through unchanged.
func ResolveEffectiveQuestion(ctx context.Context, completer Completer, question string, history []models.ChatTurn) string {
	question = strings.TrimSpace(question)
	compact := compactHistory(history, 8)

	if len(compact) == 0 {
		return question
	}
	if !isLikelyFollowUpQuestion(question) {
		return question
	}

	if rewritten := llmRewriteFollowUp(ctx, completer, question, compact); rewritten != "" {
		return rewritten
	}
	return heuristicEffectiveQuestion(question, compact)
}

type sentenceCandidate struct {
	sentence string
	overlap  int
	score    float64
}

func extractiveAnswer(question string, chunks []models.RetrievedChunk) string {
	terms := retrieval.QueryTerms(question)

	var ranked []sentenceCandidate
	for _, chunk := range chunks {
		for _, sentence := range retrieval.SentenceSplit(chunk.Text) {
			lower := strings.ToLower(sentence)
			overlap := 0
			for _, term := range terms {
				if strings.Contains(lower, term) {
					overlap++
				}
			}
			ranked = append(ranked, sentenceCandidate{sentence: sentence, overlap: overlap, score: chunk.Score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].overlap != ranked[j].overlap {
			return ranked[i].overlap > ranked[j].overlap
		}
		return ranked[i].score > ranked[j].score
	})

	selected := make([]string, 0, 3)
	for _, candidate := range ranked {
		if candidate.overlap == 0 {
			continue
		}
		selected = append(selected, candidate.sentence)
		if len(selected) == 3 {
			break
		}
	}

	if len(selected) == 0 {
		if len(chunks) == 0 {
			return ""
		}
		return retrieval.Truncate(chunks[0].Text, 240)
	}
	return strings.Join(selected, " ")
}

func llmAnswer(ctx context.Context, completer Completer, question, effectiveQuestion string, history []models.ChatTurn, chunks []models.RetrievedChunk) string {
	var contextBlock strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			contextBlock.WriteString("\n\n")
		}
		fmt.Fprintf(&contextBlock, "Context %d [%s] (%s %s): %s", i+1, chunk.ChunkID, chunk.FileName, chunk.PageOrSection, chunk.Text)
	}

	response := complete(ctx, completer,
		"You are a clear, teacher-like tutor. Answer only from provided note context. If context is insufficient, reply with INSUFFICIENT. Keep answers concise.",
		fmt.Sprintf("Current user question: %s\nResolved retrieval question: %s\nRecent conversation:\n%s\n\nContexts:\n%s",
			question, effectiveQuestion, historyPrompt(compactHistory(history, 6)), contextBlock.String()),
		0.1)

	if response == "" || strings.Contains(strings.ToUpper(response), "INSUFFICIENT") {
		return ""
	}
	return response
}

// ChatParams carries everything BuildChatResponse needs after retrieval
// has already run against the effective question.
type ChatParams struct {
	Question          string
	EffectiveQuestion string
	History           []models.ChatTurn
	SubjectName       string
	RetrievedChunks   []models.RetrievedChunk
	Gate              retrieval.GateConfig
}

// BuildChatResponse turns retrieved chunks into a grounded answer or a
// refusal. Every non-refusal answer carries citations and evidence from
// the supporting chunks only.
func BuildChatResponse(ctx context.Context, completer Completer, params ChatParams) models.ChatResponse {
	effectiveQuestion := strings.TrimSpace(params.EffectiveQuestion)
	if effectiveQuestion == "" {
		effectiveQuestion = strings.TrimSpace(params.Question)
	}

	if IsSummaryStyleQuestion(params.Question) {
		support := make([]models.RetrievedChunk, 0, 4)
		for _, chunk := range params.RetrievedChunks {
			if strings.TrimSpace(chunk.Text) == "" {
				continue
			}
			support = append(support, chunk)
			if len(support) == 4 {
				break
			}
		}

		if len(support) == 0 {
			return notFoundChatResponse(params.SubjectName)
		}

		answer := llmAnswer(ctx, completer, params.Question, effectiveQuestion, params.History, support)
		if answer == "" {
			answer = extractiveAnswer(effectiveQuestion, support)
		}

		return models.ChatResponse{
			Answer:     answer,
			Confidence: retrieval.ConfidenceFromScores(support[0].Score, len(support)),
			Citations:  chunkCitations(support),
			Evidence:   chunkEvidence(support),
		}
	}

	gating := retrieval.EvaluateGating(effectiveQuestion, params.RetrievedChunks, params.Gate)
	if !gating.Passed {
		return notFoundChatResponse(params.SubjectName)
	}

	support := gating.DirectEvidence
	if len(support) > 4 {
		support = support[:4]
	}

	answer := llmAnswer(ctx, completer, params.Question, effectiveQuestion, params.History, support)
	if answer == "" {
		answer = extractiveAnswer(effectiveQuestion, support)
	}
	if answer == "" {
		return notFoundChatResponse(params.SubjectName)
	}

	return models.ChatResponse{
		Answer:     answer,
		Confidence: gating.Confidence,
		Citations:  chunkCitations(support),
		Evidence:   chunkEvidence(support),
	}
}
