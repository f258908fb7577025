package review

import (
	"fmt"
	"sort"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

func pickKeyword(text string) string {
	terms := make([]string, 0)
	for _, token := range retrieval.Tokenize(text) {
		if len(token) >= 4 {
			terms = append(terms, token)
		}
	}
	if len(terms) == 0 {
		return "concept"
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return len(terms[i]) > len(terms[j])
	})
	return terms[0]
}

// pickAnswerSentence selects the longest substantive sentence of the
// chunk as the card's answer.
func pickAnswerSentence(text string) string {
	sentences := retrieval.SentenceSplit(text)
	if len(sentences) == 0 {
		return retrieval.Truncate(text, 220)
	}

	best := ""
	for _, sentence := range sentences {
		if len(sentence) < 24 {
			continue
		}
		if len(sentence) > len(best) {
			best = sentence
		}
	}
	if best != "" {
		return best
	}
	return retrieval.Truncate(sentences[0], 220)
}

func buildPrompt(sentence, keyword string, index int) string {
	if len(sentence) <= 80 {
		return fmt.Sprintf("Complete this memory cue: %s", sentence)
	}

	hints := []string{
		fmt.Sprintf("Explain %q in your own words.", keyword),
		fmt.Sprintf("Recall the core idea related to %q.", keyword),
		fmt.Sprintf("What does this note imply about %q?", keyword),
		fmt.Sprintf("State the key takeaway for %q.", keyword),
	}
	return hints[index%len(hints)]
}

// BuildReviewCardsFromChunks seeds one card per usable chunk, up to
// maxCards. Chunks without complete provenance or with answers under 12
// characters are skipped rather than producing broken cards.
func BuildReviewCardsFromChunks(chunks []models.ChunkRecord, maxCards int) []models.ReviewCardSeed {
	cards := make([]models.ReviewCardSeed, 0, maxCards)

	for _, chunk := range chunks {
		if len(cards) >= maxCards {
			break
		}
		if chunk.ChunkID == "" || chunk.FileName == "" || chunk.PageOrSection == "" {
			continue
		}

		answer := pickAnswerSentence(chunk.Text)
		if len(answer) < 12 {
			continue
		}

		keyword := pickKeyword(answer)
		cards = append(cards, models.ReviewCardSeed{
			ChunkID:         chunk.ChunkID,
			FileName:        chunk.FileName,
			PageOrSection:   chunk.PageOrSection,
			Prompt:          buildPrompt(answer, keyword, len(cards)),
			Answer:          retrieval.Truncate(answer, 280),
			EvidenceSnippet: retrieval.Truncate(answer, 220),
		})
	}

	return cards
}
