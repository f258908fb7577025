package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

const (
	aiLabConceptCount   = 6
	aiLabFlashcardCount = 8
	aiLabPlanDays       = 3
)

func deterministicAiLab(sourceItems []sourceItem) models.AiLabPack {
	conceptsBase := expandSourceItems(sourceItems, aiLabConceptCount)
	cardsBase := expandSourceItems(sourceItems, aiLabFlashcardCount)
	planBase := expandSourceItems(sourceItems, aiLabPlanDays)

	keyConcepts := make([]models.AiLabConcept, 0, len(conceptsBase))
	for _, item := range conceptsBase {
		keyConcepts = append(keyConcepts, models.AiLabConcept{
			Title:     toTitle(item.Keyword),
			Summary:   item.Sentence,
			Citations: itemCitations(item),
			Evidence:  itemEvidence(item),
		})
	}

	flashcards := make([]models.AiLabFlashcard, 0, len(cardsBase))
	for _, item := range cardsBase {
		flashcards = append(flashcards, models.AiLabFlashcard{
			Front:     fmt.Sprintf("What do your notes say about %s?", item.Keyword),
			Back:      item.Sentence,
			Citations: itemCitations(item),
			Evidence:  itemEvidence(item),
		})
	}

	revisionPlan := make([]models.AiLabRevisionTask, 0, len(planBase))
	for i, item := range planBase {
		revisionPlan = append(revisionPlan, models.AiLabRevisionTask{
			Day:       i + 1,
			Focus:     toTitle(item.Keyword),
			Task:      fmt.Sprintf("Review the evidence and rewrite it in your own words, then solve one practice question on %s.", item.Keyword),
			Citations: itemCitations(item),
			Evidence:  itemEvidence(item),
		})
	}

	return models.AiLabPack{
		KeyConcepts:  keyConcepts,
		Flashcards:   flashcards,
		RevisionPlan: revisionPlan,
	}
}

type llmAiLabPayload struct {
	KeyConcepts []struct {
		Title       string `json:"title"`
		Summary     string `json:"summary"`
		SourceIndex int    `json:"sourceIndex"`
	} `json:"keyConcepts"`
	Flashcards []struct {
		Front       string `json:"front"`
		Back        string `json:"back"`
		SourceIndex int    `json:"sourceIndex"`
	} `json:"flashcards"`
	RevisionPlan []struct {
		Day         int    `json:"day"`
		Focus       string `json:"focus"`
		Task        string `json:"task"`
		SourceIndex int    `json:"sourceIndex"`
	} `json:"revisionPlan"`
}

func llmAiLab(ctx context.Context, completer Completer, sourceItems []sourceItem) (models.AiLabPack, bool) {
	var contextBlock strings.Builder
	for i, item := range sourceItems {
		if i > 0 {
			contextBlock.WriteByte('\n')
		}
		fmt.Fprintf(&contextBlock, "%d. %s", i+1, item.Sentence)
	}

	raw := complete(ctx, completer,
		"Generate premium learning assets from provided notes only. Return JSON with keyConcepts, flashcards, revisionPlan and sourceIndex for every item.",
		fmt.Sprintf(`Using only these notes, create exactly:
- 6 key concepts (title + summary + sourceIndex)
- 8 flashcards (front + back + sourceIndex)
- 3 revision plan items (day + focus + task + sourceIndex)

Return strict JSON only.

Notes:
%s`, contextBlock.String()),
		0.3)
	if raw == "" {
		return models.AiLabPack{}, false
	}

	var parsed llmAiLabPayload
	if !parseJSONBlock(raw, &parsed) {
		return models.AiLabPack{}, false
	}
	if len(parsed.KeyConcepts) < aiLabConceptCount || len(parsed.Flashcards) < aiLabFlashcardCount || len(parsed.RevisionPlan) < aiLabPlanDays {
		return models.AiLabPack{}, false
	}

	keyConcepts := make([]models.AiLabConcept, 0, aiLabConceptCount)
	for i, item := range parsed.KeyConcepts[:aiLabConceptCount] {
		source := clampSourceIndex(sourceItems, item.SourceIndex, i)

		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = toTitle(source.Keyword)
		}
		summary := strings.TrimSpace(item.Summary)
		if summary == "" {
			summary = source.Sentence
		}

		keyConcepts = append(keyConcepts, models.AiLabConcept{
			Title:     retrieval.Truncate(title, 90),
			Summary:   retrieval.Truncate(summary, 220),
			Citations: itemCitations(source),
			Evidence:  itemEvidence(source),
		})
	}

	flashcards := make([]models.AiLabFlashcard, 0, aiLabFlashcardCount)
	for i, item := range parsed.Flashcards[:aiLabFlashcardCount] {
		source := clampSourceIndex(sourceItems, item.SourceIndex, i)

		front := strings.TrimSpace(item.Front)
		if front == "" {
			front = fmt.Sprintf("Explain %s", source.Keyword)
		}
		back := strings.TrimSpace(item.Back)
		if back == "" {
			back = source.Sentence
		}

		flashcards = append(flashcards, models.AiLabFlashcard{
			Front:     retrieval.Truncate(front, 160),
			Back:      retrieval.Truncate(back, 220),
			Citations: itemCitations(source),
			Evidence:  itemEvidence(source),
		})
	}

	revisionPlan := make([]models.AiLabRevisionTask, 0, aiLabPlanDays)
	for i, item := range parsed.RevisionPlan[:aiLabPlanDays] {
		source := clampSourceIndex(sourceItems, item.SourceIndex, i)

		focus := strings.TrimSpace(item.Focus)
		if focus == "" {
			focus = toTitle(source.Keyword)
		}
		task := strings.TrimSpace(item.Task)
		if task == "" {
			task = fmt.Sprintf("Revise %s with examples from your notes.", source.Keyword)
		}

		revisionPlan = append(revisionPlan, models.AiLabRevisionTask{
			Day:       i + 1,
			Focus:     retrieval.Truncate(focus, 90),
			Task:      retrieval.Truncate(task, 220),
			Citations: itemCitations(source),
			Evidence:  itemEvidence(source),
		})
	}

	return models.AiLabPack{
		KeyConcepts:  keyConcepts,
		Flashcards:   flashcards,
		RevisionPlan: revisionPlan,
	}, true
}

// GenerateAiLabPack builds key concepts, flashcards, and a three-day
// revision plan from the subject's strongest chunks. Returns nil when
// the chunks contain no usable sentences.
func GenerateAiLabPack(ctx context.Context, completer Completer, chunks []models.RetrievedChunk) *models.AiLabPack {
	sourceItems := collectSourceItems(chunks, 30, 240, 18)
	if len(sourceItems) == 0 {
		return nil
	}

	if pack, ok := llmAiLab(ctx, completer, sourceItems); ok {
		return &pack
	}

	pack := deterministicAiLab(sourceItems)
	return &pack
}
