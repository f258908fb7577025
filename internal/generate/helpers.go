package generate

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

var jsonBlockPattern = regexp.MustCompile(`(?s)\{.*\}`)

// parseJSONBlock extracts the first JSON object embedded in a completion
// and unmarshals it into target. Completions often wrap JSON in prose or
// code fences, so a plain json.Unmarshal on the raw text is not enough.
func parseJSONBlock(value string, target any) bool {
	block := jsonBlockPattern.FindString(value)
	if block == "" {
		return false
	}
	return json.Unmarshal([]byte(block), target) == nil
}

// hashSeed is FNV-1a over the input, used to derive stable variation
// seeds from difficulty and variation keys.
func hashSeed(input string) uint32 {
	hash := uint32(2166136261)
	for _, r := range input {
		hash ^= uint32(r)
		hash *= 16777619
	}
	return hash
}

// newRNG returns a 32-bit linear congruential generator yielding floats
// in [0, 1). Same-seed sequences are identical across runs, which keeps
// deterministic study packs reproducible per variation key.
func newRNG(seed uint32) func() float64 {
	state := seed
	if state == 0 {
		state = 123456789
	}
	return func() float64 {
		state = 1664525*state + 1013904223
		return float64(state) / 4294967296.0
	}
}

func shuffleWithRNG[T any](items []T, next func() float64) []T {
	output := make([]T, len(items))
	copy(output, items)
	for i := len(output) - 1; i > 0; i-- {
		j := int(next() * float64(i+1))
		output[i], output[j] = output[j], output[i]
	}
	return output
}

func pickTemplate(templates []string, index int, next func() float64) string {
	shuffled := shuffleWithRNG(templates, next)
	return shuffled[index%len(shuffled)]
}

// sourceItem is one sentence of note evidence together with the chunk it
// came from and the keyword that anchors generated questions.
type sourceItem struct {
	Sentence string
	Keyword  string
	Chunk    models.RetrievedChunk
}

// pickKeyword chooses the longest token of at least four characters.
func pickKeyword(sentence string) string {
	terms := make([]string, 0)
	for _, token := range retrieval.Tokenize(sentence) {
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

func toTitle(value string) string {
	words := strings.Fields(value)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// collectSourceItems flattens chunks into sentences of at least
// minSentenceLen characters, truncated to maxSentenceLen, ranked by
// chunk score then sentence length, capped at limit.
func collectSourceItems(chunks []models.RetrievedChunk, minSentenceLen, maxSentenceLen, limit int) []sourceItem {
	var items []sourceItem
	for _, chunk := range chunks {
		for _, sentence := range retrieval.SentenceSplit(chunk.Text) {
			if len(sentence) < minSentenceLen {
				continue
			}
			items = append(items, sourceItem{
				Sentence: retrieval.Truncate(sentence, maxSentenceLen),
				Keyword:  pickKeyword(sentence),
				Chunk:    chunk,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Chunk.Score != items[j].Chunk.Score {
			return items[i].Chunk.Score > items[j].Chunk.Score
		}
		return len(items[i].Sentence) > len(items[j].Sentence)
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// expandSourceItems repeats items cyclically until target length.
func expandSourceItems(items []sourceItem, target int) []sourceItem {
	if len(items) == 0 {
		return nil
	}
	if len(items) >= target {
		return items[:target]
	}

	expanded := make([]sourceItem, 0, target)
	expanded = append(expanded, items...)
	cursor := 0
	for len(expanded) < target {
		expanded = append(expanded, items[cursor%len(items)])
		cursor++
	}
	return expanded
}

// clampSourceIndex resolves an LLM-provided 1-based sourceIndex to a
// valid item, falling back to the item's own position.
func clampSourceIndex(items []sourceItem, sourceIndex, fallbackIndex int) sourceItem {
	index := sourceIndex
	if index == 0 {
		index = fallbackIndex + 1
	}
	index--
	if index < 0 {
		index = 0
	}
	if index > len(items)-1 {
		index = len(items) - 1
	}
	return items[index]
}

func itemCitations(item sourceItem) []models.Citation {
	return []models.Citation{{
		FileName:      item.Chunk.FileName,
		PageOrSection: item.Chunk.PageOrSection,
		ChunkID:       item.Chunk.ChunkID,
	}}
}

func itemEvidence(item sourceItem) []models.EvidenceSnippet {
	return []models.EvidenceSnippet{{
		FileName:      item.Chunk.FileName,
		PageOrSection: item.Chunk.PageOrSection,
		TextSnippet:   item.Sentence,
	}}
}

func chunkCitations(chunks []models.RetrievedChunk) []models.Citation {
	citations := make([]models.Citation, 0, len(chunks))
	for _, chunk := range chunks {
		citations = append(citations, models.Citation{
			FileName:      chunk.FileName,
			PageOrSection: chunk.PageOrSection,
			ChunkID:       chunk.ChunkID,
		})
	}
	return citations
}

func chunkEvidence(chunks []models.RetrievedChunk) []models.EvidenceSnippet {
	evidence := make([]models.EvidenceSnippet, 0, len(chunks))
	for _, chunk := range chunks {
		evidence = append(evidence, models.EvidenceSnippet{
			FileName:      chunk.FileName,
			PageOrSection: chunk.PageOrSection,
			TextSnippet:   retrieval.Truncate(chunk.Text, 200),
		})
	}
	return evidence
}

func refusalMessage(subjectName string) string {
	return "Not found in your notes for " + subjectName
}
