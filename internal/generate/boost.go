package generate

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

// BuildSearchPayload ranks retrieved chunks into search hits. Search is
// not gated: weak matches are simply filtered by score, and an empty hit
// list is a valid response.
func BuildSearchPayload(query string, retrievedChunks []models.RetrievedChunk, limit int) models.SearchResponse {
	if limit <= 0 {
		limit = 8
	}
	if limit > 20 {
		limit = 20
	}

	hits := make([]models.SearchHit, 0, limit)
	for _, chunk := range retrievedChunks {
		if chunk.Score <= 0 {
			continue
		}
		hits = append(hits, models.SearchHit{
			FileName:      chunk.FileName,
			PageOrSection: chunk.PageOrSection,
			ChunkID:       chunk.ChunkID,
			Score:         math.Round(chunk.Score*1000) / 1000,
			TextSnippet:   retrieval.Truncate(chunk.Text, 260),
		})
		if len(hits) == limit {
			break
		}
	}

	return models.SearchResponse{
		Query:     query,
		TotalHits: len(hits),
		Hits:      hits,
	}
}

type explainTexts struct {
	oneLiner  string
	simple    string
	examReady string
}

func extractiveExplain(chunks []models.RetrievedChunk) explainTexts {
	var sentences []string
	for _, chunk := range chunks {
		sentences = append(sentences, retrieval.SentenceSplit(chunk.Text)...)
	}

	first := ""
	if len(sentences) > 0 {
		first = sentences[0]
	} else if len(chunks) > 0 {
		first = chunks[0].Text
	}

	firstTwo := sentences
	if len(firstTwo) > 2 {
		firstTwo = firstTwo[:2]
	}
	firstFour := sentences
	if len(firstFour) > 4 {
		firstFour = firstFour[:4]
	}

	return explainTexts{
		oneLiner:  retrieval.Truncate(first, 140),
		simple:    retrieval.Truncate(strings.Join(firstTwo, " "), 280),
		examReady: retrieval.Truncate(strings.Join(firstFour, " "), 460),
	}
}

type llmExplainPayload struct {
	OneLiner  string `json:"oneLiner"`
	Simple    string `json:"simple"`
	ExamReady string `json:"examReady"`
}

func llmExplain(ctx context.Context, completer Completer, concept string, chunks []models.RetrievedChunk) (explainTexts, bool) {
	var contextBlock strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			contextBlock.WriteByte('\n')
		}
		fmt.Fprintf(&contextBlock, "%d. %s", i+1, chunk.Text)
	}

	raw := complete(ctx, completer,
		"Explain concept strictly from note evidence. Return JSON with keys oneLiner, simple, examReady. Keep concise and accurate.",
		fmt.Sprintf("Concept: %s\n\nEvidence:\n%s", concept, contextBlock.String()),
		0.2)
	if raw == "" {
		return explainTexts{}, false
	}

	var parsed llmExplainPayload
	if !parseJSONBlock(raw, &parsed) {
		return explainTexts{}, false
	}
	if parsed.OneLiner == "" || parsed.Simple == "" || parsed.ExamReady == "" {
		return explainTexts{}, false
	}

	return explainTexts{
		oneLiner:  retrieval.Truncate(parsed.OneLiner, 160),
		simple:    retrieval.Truncate(parsed.Simple, 300),
		examReady: retrieval.Truncate(parsed.ExamReady, 520),
	}, true
}

// ExplainParams carries one concept lookup against a subject's chunks.
type ExplainParams struct {
	Concept         string
	SubjectName     string
	RetrievedChunks []models.RetrievedChunk
	Gate            retrieval.GateConfig
}

// BuildExplainPayload produces a three-depth explanation of a concept,
// or the refusal in all three fields when the gate fails.
func BuildExplainPayload(ctx context.Context, completer Completer, params ExplainParams) models.ExplainResponse {
	gating := retrieval.EvaluateGating(params.Concept, params.RetrievedChunks, params.Gate)
	if !gating.Passed {
		notFound := refusalMessage(params.SubjectName)
		return models.ExplainResponse{
			Concept:    params.Concept,
			OneLiner:   notFound,
			Simple:     notFound,
			ExamReady:  notFound,
			Confidence: models.ConfidenceLow,
			Citations:  []models.Citation{},
			Evidence:   []models.EvidenceSnippet{},
		}
	}

	support := gating.DirectEvidence
	if len(support) > 4 {
		support = support[:4]
	}

	texts, ok := llmExplain(ctx, completer, params.Concept, support)
	if !ok {
		texts = extractiveExplain(support)
	}

	bestScore := 0.0
	if len(support) > 0 {
		bestScore = support[0].Score
	}

	return models.ExplainResponse{
		Concept:    params.Concept,
		OneLiner:   texts.oneLiner,
		Simple:     texts.simple,
		ExamReady:  texts.examReady,
		Confidence: retrieval.ConfidenceFromScores(bestScore, len(support)),
		Citations:  chunkCitations(support),
		Evidence:   chunkEvidence(support),
	}
}

func deterministicPlanner(goalMinutes int, focus string, sources []sourceItem) models.PlannerResponse {
	blocks := int(math.Round(float64(goalMinutes) / 15))
	if blocks < 3 {
		blocks = 3
	}
	if blocks > 8 {
		blocks = 8
	}

	expanded := expandSourceItems(sources, blocks)

	baseDuration := goalMinutes / blocks
	if baseDuration < 8 {
		baseDuration = 8
	}

	plan := make([]models.PlannerItem, 0, len(expanded))
	totalMinutes := 0
	for i, source := range expanded {
		var task string
		switch i % 3 {
		case 0:
			task = fmt.Sprintf("Read and annotate: %s", source.Sentence)
		case 1:
			task = fmt.Sprintf("Explain %s from memory, then verify with notes.", source.Keyword)
		default:
			task = fmt.Sprintf("Solve one quick question on %s and check against evidence.", source.Keyword)
		}

		plan = append(plan, models.PlannerItem{
			Title:           fmt.Sprintf("Block %d: %s", i+1, source.Keyword),
			DurationMinutes: baseDuration,
			Task:            task,
			Citations:       itemCitations(source),
			Evidence:        itemEvidence(source),
		})
		totalMinutes += baseDuration
	}

	focusTerms := retrieval.QueryTerms(focus)
	if len(focusTerms) > 3 {
		focusTerms = focusTerms[:3]
	}

	commonTerms := make([]string, 0, 4)
	for _, item := range expanded {
		commonTerms = append(commonTerms, item.Keyword)
		if len(commonTerms) == 4 {
			break
		}
	}

	firstTip := "Start with high-yield topics before detail-heavy sections."
	if len(focusTerms) > 0 {
		firstTip = fmt.Sprintf("Prioritize your focus terms first: %s.", strings.Join(focusTerms, ", "))
	}

	return models.PlannerResponse{
		GoalMinutes:  goalMinutes,
		TotalMinutes: totalMinutes,
		Plan:         plan,
		Tips: []string{
			firstTip,
			fmt.Sprintf("Use active recall on: %s.", strings.Join(commonTerms, ", ")),
			"End with a 3-minute recap from memory.",
		},
	}
}

type llmPlannerPayload struct {
	Plan []struct {
		Title           string  `json:"title"`
		DurationMinutes float64 `json:"durationMinutes"`
		Task            string  `json:"task"`
		SourceIndex     int     `json:"sourceIndex"`
	} `json:"plan"`
	Tips []string `json:"tips"`
}

func llmPlanner(ctx context.Context, completer Completer, goalMinutes int, focus string, sources []sourceItem) (models.PlannerResponse, bool) {
	var contextBlock strings.Builder
	for i, source := range sources {
		if i > 0 {
			contextBlock.WriteByte('\n')
		}
		fmt.Fprintf(&contextBlock, "%d. %s", i+1, source.Sentence)
	}

	focusLine := focus
	if strings.TrimSpace(focusLine) == "" {
		focusLine = "General revision"
	}

	raw := complete(ctx, completer,
		"Create a concise study plan from note evidence only. Return JSON with plan (title,durationMinutes,task,sourceIndex) and tips.",
		fmt.Sprintf("Goal minutes: %d\nFocus: %s\n\nCreate 3-8 study blocks with realistic durations that sum near the goal.\nEvidence:\n%s",
			goalMinutes, focusLine, contextBlock.String()),
		0.25)
	if raw == "" {
		return models.PlannerResponse{}, false
	}

	var parsed llmPlannerPayload
	if !parseJSONBlock(raw, &parsed) {
		return models.PlannerResponse{}, false
	}
	if len(parsed.Plan) == 0 {
		return models.PlannerResponse{}, false
	}
	for _, item := range parsed.Plan {
		if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.Task) == "" {
			return models.PlannerResponse{}, false
		}
	}

	items := parsed.Plan
	if len(items) > 8 {
		items = items[:8]
	}

	plan := make([]models.PlannerItem, 0, len(items))
	totalMinutes := 0
	for i, item := range items {
		source := clampSourceIndex(sources, item.SourceIndex, i)

		duration := int(math.Round(item.DurationMinutes))
		if duration < 5 {
			duration = 5
		}
		if duration > 90 {
			duration = 90
		}

		plan = append(plan, models.PlannerItem{
			Title:           retrieval.Truncate(item.Title, 90),
			DurationMinutes: duration,
			Task:            retrieval.Truncate(item.Task, 220),
			Citations:       itemCitations(source),
			Evidence:        itemEvidence(source),
		})
		totalMinutes += duration
	}

	tips := make([]string, 0, 4)
	for _, tip := range parsed.Tips {
		if strings.TrimSpace(tip) == "" {
			continue
		}
		tips = append(tips, tip)
		if len(tips) == 4 {
			break
		}
	}
	if len(tips) == 0 {
		tips = []string{"Revise high-yield topics first, then active recall."}
	}

	return models.PlannerResponse{
		GoalMinutes:  goalMinutes,
		TotalMinutes: totalMinutes,
		Plan:         plan,
		Tips:         tips,
	}, true
}

// BuildPlannerPayload splits a study goal into evidence-backed blocks.
// Returns nil when the chunks contain no usable sentences.
func BuildPlannerPayload(ctx context.Context, completer Completer, goalMinutes int, focus string, retrievedChunks []models.RetrievedChunk) *models.PlannerResponse {
	sources := collectSourceItems(retrievedChunks, 24, 230, 12)
	if len(sources) == 0 {
		return nil
	}

	if response, ok := llmPlanner(ctx, completer, goalMinutes, focus, sources); ok {
		return &response
	}

	response := deterministicPlanner(goalMinutes, focus, sources)
	return &response
}
