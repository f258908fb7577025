package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	studyMCQCount       = 5
	studyShortCount     = 3
	studyFlashcardCount = 10
)

func difficultyLabel(difficulty string) string {
	switch difficulty {
	case DifficultyEasy:
		return "Easy"
	case DifficultyHard:
		return "Hard"
	default:
		return "Medium"
	}
}

func difficultyPromptPrefix(difficulty string) string {
	switch difficulty {
	case DifficultyEasy:
		return "direct definition"
	case DifficultyHard:
		return "application and comparison"
	default:
		return "conceptual understanding"
	}
}

func mcqTemplates(difficulty, sentence string) []string {
	switch difficulty {
	case DifficultyEasy:
		return []string{
			fmt.Sprintf("Which term from your notes best matches this statement: %q?", sentence),
			fmt.Sprintf("Pick the correct concept for this line from your notes: %q.", sentence),
			fmt.Sprintf("Identify the term that fits this notes excerpt: %q.", sentence),
		}
	case DifficultyHard:
		return []string{
			fmt.Sprintf("In an exam setting, which concept is most strongly supported by this evidence: %q?", sentence),
			fmt.Sprintf("Which advanced concept is implied by this notes evidence: %q?", sentence),
			fmt.Sprintf("Choose the best analytical interpretation of this excerpt: %q.", sentence),
		}
	default:
		return []string{
			fmt.Sprintf("Which term best matches this note statement: %q?", sentence),
			fmt.Sprintf("Which concept is correctly represented by this excerpt: %q?", sentence),
			fmt.Sprintf("Select the most accurate term for this notes statement: %q.", sentence),
		}
	}
}

func shortAnswerTemplates(difficulty, keyword string) []string {
	switch difficulty {
	case DifficultyEasy:
		return []string{
			fmt.Sprintf("Define this concept from your notes in 2-3 lines: %s.", keyword),
			fmt.Sprintf("Give a simple explanation from your notes: %s.", keyword),
			fmt.Sprintf("Write a short definition of %s based on your notes.", keyword),
		}
	case DifficultyHard:
		return []string{
			fmt.Sprintf("Apply this concept with one practical scenario from your notes: %s.", keyword),
			fmt.Sprintf("Compare %s with a related concept using note evidence.", keyword),
			fmt.Sprintf("Answer this analytically: how would you use %s in an exam scenario?", keyword),
		}
	default:
		return []string{
			fmt.Sprintf("Explain this concept from your notes: %s.", keyword),
			fmt.Sprintf("Describe %s with one supporting note detail.", keyword),
			fmt.Sprintf("What does your subject material say about %s?", keyword),
		}
	}
}

func deterministicStudy(sourceItems []sourceItem, difficulty, variationKey string) models.StudyPack {
	rng := newRNG(hashSeed(difficulty + ":" + variationKey))
	expanded := shuffleWithRNG(expandSourceItems(sourceItems, 10), rng)
	label := difficultyLabel(difficulty)

	keywords := make([]string, 0, len(expanded))
	for _, item := range expanded {
		keywords = append(keywords, item.Keyword)
	}

	mcqs := make([]models.StudyMCQ, 0, studyMCQCount)
	for i := 0; i < studyMCQCount; i++ {
		item := expanded[i%len(expanded)]

		distractors := make([]string, 0, 3)
		filtered := make([]string, 0, len(keywords))
		for _, word := range keywords {
			if word != item.Keyword {
				filtered = append(filtered, word)
			}
		}
		for j := i; j < len(filtered) && len(distractors) < 3; j++ {
			distractors = append(distractors, filtered[j])
		}
		for len(distractors) < 3 {
			distractors = append(distractors, fmt.Sprintf("term%d", len(distractors)+1))
		}

		options := shuffleWithRNG(append([]string{item.Keyword}, distractors...), rng)
		correctOption := 0
		for j, option := range options {
			if option == item.Keyword {
				correctOption = j
				break
			}
		}

		mcqs = append(mcqs, models.StudyMCQ{
			Question:      pickTemplate(mcqTemplates(difficulty, item.Sentence), i, rng),
			Options:       options,
			CorrectOption: correctOption,
			Explanation:   fmt.Sprintf("(%s) The source sentence directly references %s.", label, item.Keyword),
			Citations:     itemCitations(item),
			Evidence:      itemEvidence(item),
		})
	}

	shortAnswers := make([]models.StudyShortAnswer, 0, studyShortCount)
	for i := 0; i < studyShortCount; i++ {
		item := expanded[(i+5)%len(expanded)]
		shortAnswers = append(shortAnswers, models.StudyShortAnswer{
			Question:    pickTemplate(shortAnswerTemplates(difficulty, item.Keyword), i, rng),
			ModelAnswer: item.Sentence,
			Citations:   itemCitations(item),
			Evidence:    itemEvidence(item),
		})
	}

	flashcards := make([]models.StudyFlashcard, 0, studyFlashcardCount)
	for i := 0; i < studyFlashcardCount; i++ {
		item := expanded[i%len(expanded)]
		front := pickTemplate([]string{
			fmt.Sprintf("What do your notes say about %s?", item.Keyword),
			fmt.Sprintf("Explain the core idea of %s.", item.Keyword),
			fmt.Sprintf("State a key point for %s from your notes.", item.Keyword),
		}, i, rng)
		flashcards = append(flashcards, models.StudyFlashcard{
			Front:     front,
			Back:      item.Sentence,
			Citations: itemCitations(item),
			Evidence:  itemEvidence(item),
		})
	}

	return models.StudyPack{
		Difficulty:   label,
		MCQs:         mcqs,
		ShortAnswers: shortAnswers,
		Flashcards:   flashcards,
	}
}

type llmStudyPayload struct {
	MCQs []struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectOption int      `json:"correctOption"`
		Explanation   string   `json:"explanation"`
		SourceIndex   int      `json:"sourceIndex"`
	} `json:"mcqs"`
	ShortAnswers []struct {
		Question    string `json:"question"`
		ModelAnswer string `json:"modelAnswer"`
		SourceIndex int    `json:"sourceIndex"`
	} `json:"shortAnswers"`
	Flashcards []struct {
		Front       string `json:"front"`
		Back        string `json:"back"`
		SourceIndex int    `json:"sourceIndex"`
	} `json:"flashcards"`
}

func llmStudy(ctx context.Context, completer Completer, sourceItems []sourceItem, difficulty, variationKey string) (models.StudyPack, bool) {
	rng := newRNG(hashSeed(difficulty + ":llm:" + variationKey))
	shuffled := shuffleWithRNG(sourceItems, rng)

	var contextBlock strings.Builder
	for i, item := range shuffled {
		if i > 0 {
			contextBlock.WriteByte('\n')
		}
		fmt.Fprintf(&contextBlock, "%d. %s", i+1, item.Sentence)
	}

	raw := complete(ctx, completer,
		"Generate study content only from provided facts. Return JSON with keys mcqs, shortAnswers, and flashcards. Every item must include sourceIndex (1-based).",
		fmt.Sprintf(`Variation token: %s
Difficulty: %s (%s).

Create exactly:
- 5 MCQs (4 options each, correctOption index 0-3, brief explanation)
- 3 short-answer questions with modelAnswer
- 10 flashcards with front and back

Use only these notes:
%s`, variationKey, difficultyLabel(difficulty), difficultyPromptPrefix(difficulty), contextBlock.String()),
		0.3)
	if raw == "" {
		return models.StudyPack{}, false
	}

	var parsed llmStudyPayload
	if !parseJSONBlock(raw, &parsed) {
		return models.StudyPack{}, false
	}
	if len(parsed.MCQs) < studyMCQCount || len(parsed.ShortAnswers) < studyShortCount || len(parsed.Flashcards) < studyFlashcardCount {
		return models.StudyPack{}, false
	}

	mcqs := make([]models.StudyMCQ, 0, studyMCQCount)
	for i, item := range parsed.MCQs[:studyMCQCount] {
		if strings.TrimSpace(item.Question) == "" || len(item.Options) < 4 || strings.TrimSpace(item.Explanation) == "" {
			return models.StudyPack{}, false
		}
		for _, option := range item.Options[:4] {
			if strings.TrimSpace(option) == "" {
				return models.StudyPack{}, false
			}
		}

		correct := item.CorrectOption
		if correct < 0 {
			correct = 0
		}
		if correct > 3 {
			correct = 3
		}

		source := clampSourceIndex(sourceItems, item.SourceIndex, i)
		mcqs = append(mcqs, models.StudyMCQ{
			Question:      item.Question,
			Options:       item.Options[:4],
			CorrectOption: correct,
			Explanation:   item.Explanation,
			Citations:     itemCitations(source),
			Evidence:      itemEvidence(source),
		})
	}

	shortAnswers := make([]models.StudyShortAnswer, 0, studyShortCount)
	for i, item := range parsed.ShortAnswers[:studyShortCount] {
		if strings.TrimSpace(item.Question) == "" || strings.TrimSpace(item.ModelAnswer) == "" {
			return models.StudyPack{}, false
		}
		source := clampSourceIndex(sourceItems, item.SourceIndex, i)
		shortAnswers = append(shortAnswers, models.StudyShortAnswer{
			Question:    item.Question,
			ModelAnswer: item.ModelAnswer,
			Citations:   itemCitations(source),
			Evidence:    itemEvidence(source),
		})
	}

	flashcards := make([]models.StudyFlashcard, 0, studyFlashcardCount)
	for i, item := range parsed.Flashcards[:studyFlashcardCount] {
		if strings.TrimSpace(item.Front) == "" || strings.TrimSpace(item.Back) == "" {
			return models.StudyPack{}, false
		}
		source := clampSourceIndex(sourceItems, item.SourceIndex, i)
		flashcards = append(flashcards, models.StudyFlashcard{
			Front:     retrieval.Truncate(item.Front, 200),
			Back:      retrieval.Truncate(item.Back, 260),
			Citations: itemCitations(source),
			Evidence:  itemEvidence(source),
		})
	}

	return models.StudyPack{
		Difficulty:   difficultyLabel(difficulty),
		MCQs:         mcqs,
		ShortAnswers: shortAnswers,
		Flashcards:   flashcards,
	}, true
}

// GenerateStudyPack builds a fixed-shape study pack (5 MCQs, 3 short
// answers, 10 flashcards) from retrieved chunks. The variation key seeds
// the deterministic generator so regeneration produces a fresh but
// reproducible pack. Returns nil when the chunks contain no usable
// sentences.
func GenerateStudyPack(ctx context.Context, completer Completer, chunks []models.RetrievedChunk, difficulty, variationKey string) *models.StudyPack {
	sourceItems := collectSourceItems(chunks, 24, 220, 12)
	if len(sourceItems) == 0 {
		return nil
	}

	if pack, ok := llmStudy(ctx, completer, sourceItems, difficulty, variationKey); ok {
		return &pack
	}

	pack := deterministicStudy(sourceItems, difficulty, variationKey)
	return &pack
}
