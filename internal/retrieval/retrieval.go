package retrieval

import (
	"context"
	"sort"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

const (
	DefaultTopK = 8

	// supportingFloorRatio softens the hard pass threshold when selecting
	// borderline supporting chunks.
	supportingFloorRatio = 0.85
)

// Embedder turns texts into fixed-length vectors. Implementations may be
// unavailable at runtime; callers always have the local fallback.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// GateConfig carries the tunable gating thresholds.
type GateConfig struct {
	Threshold float64
	MinChunks int
}

func DefaultGateConfig() GateConfig {
	return GateConfig{Threshold: 0.2, MinChunks: 2}
}

// FilterBySubject keeps only chunks belonging to the given subject. A
// chunk from another subject must never leak into scoring.
func FilterBySubject(chunks []models.ChunkRecord, subjectID string) []models.ChunkRecord {
	filtered := make([]models.ChunkRecord, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.SubjectID == subjectID {
			filtered = append(filtered, chunk)
		}
	}
	return filtered
}

func overlapCount(terms []string, text string) int {
	if len(terms) == 0 {
		return 0
	}

	tokenSet := TokenSet(text)
	count := 0
	for _, term := range terms {
		if _, ok := tokenSet[term]; ok {
			count++
		}
	}
	return count
}

// LexicalSimilarity is the fraction of query terms present in the text's
// token set.
func LexicalSimilarity(query, text string) float64 {
	terms := QueryTerms(query)
	if len(terms) == 0 {
		return 0
	}
	return float64(overlapCount(terms, text)) / float64(len(terms))
}

// hasDirectSnippet reports whether at least one sentence of the text
// contains enough query terms to count as direct evidence, as opposed to
// merely sharing topic vocabulary across the whole chunk.
func hasDirectSnippet(query, text string) bool {
	terms := QueryTerms(query)
	if len(terms) == 0 {
		return false
	}

	minMatches := 2
	if len(terms) < minMatches {
		minMatches = len(terms)
	}

	for _, sentence := range SentenceSplit(text) {
		if overlapCount(terms, sentence) >= minMatches {
			return true
		}
	}
	return false
}

// ConfidenceFromScores maps the best score and the number of supporting
// chunks to a confidence label.
func ConfidenceFromScores(bestScore float64, supportingChunks int) models.Confidence {
	if bestScore >= 0.7 && supportingChunks >= 3 {
		return models.ConfidenceHigh
	}
	if bestScore >= 0.48 && supportingChunks >= 2 {
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}

// EvaluateGating decides whether scored chunks carry enough direct
// evidence to answer the query at all. This is the single decision point
// between a grounded answer and a refusal, so every generator routes
// through it before emitting non-refusal content.
func EvaluateGating(query string, scoredChunks []models.RetrievedChunk, cfg GateConfig) models.GatingResult {
	sorted := make([]models.RetrievedChunk, len(scoredChunks))
	copy(sorted, scoredChunks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	bestScore := 0.0
	if len(sorted) > 0 {
		bestScore = sorted[0].Score
	}

	supporting := make([]models.RetrievedChunk, 0, len(sorted))
	for _, chunk := range sorted {
		if chunk.Score >= cfg.Threshold*supportingFloorRatio {
			supporting = append(supporting, chunk)
		}
	}

	direct := make([]models.RetrievedChunk, 0, len(supporting))
	for _, chunk := range supporting {
		if hasDirectSnippet(query, chunk.Text) {
			direct = append(direct, chunk)
		}
	}

	adaptiveMinChunks := cfg.MinChunks
	if len(sorted) < adaptiveMinChunks {
		adaptiveMinChunks = len(sorted)
	}
	if adaptiveMinChunks < 1 {
		adaptiveMinChunks = 1
	}

	notEnoughScore := bestScore < cfg.Threshold
	notEnoughChunks := len(supporting) < adaptiveMinChunks
	lacksDirectSupport := len(direct) == 0

	// For small note sets (e.g. one uploaded chunk), allow a single
	// strong direct hit to override the chunk-count floor.
	strongHitFloor := cfg.Threshold + 0.1
	if strongHitFloor < 0.5 {
		strongHitFloor = 0.5
	}
	if notEnoughChunks && len(direct) >= 1 && bestScore >= strongHitFloor {
		notEnoughChunks = false
	}

	passed := !(notEnoughScore || notEnoughChunks || lacksDirectSupport)

	reason := models.GatingOK
	if !passed {
		switch {
		case notEnoughScore:
			reason = models.GatingLowScore
		case notEnoughChunks:
			reason = models.GatingTooFewChunks
		default:
			reason = models.GatingNoDirectEvidence
		}
	}

	return models.GatingResult{
		Passed:           passed,
		BestScore:        bestScore,
		SupportingChunks: supporting,
		DirectEvidence:   direct,
		Reason:           reason,
		Confidence:       ConfidenceFromScores(bestScore, len(direct)),
	}
}

// Retrieve scores a subject's chunks against the query and returns the
// ranked top K. The score of each chunk is the larger of cosine
// similarity and lexical overlap, so exact keyword matches qualify even
// when embeddings disagree.
func Retrieve(ctx context.Context, embedder Embedder, query, subjectID string, chunks []models.ChunkRecord, topK int) []models.RetrievedChunk {
	filtered := FilterBySubject(chunks, subjectID)
	if len(filtered) == 0 {
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	chunkDim := len(filtered[0].Embedding)
	queryEmbedding := embedQuery(ctx, embedder, query)
	if chunkDim > 0 && len(queryEmbedding) != chunkDim {
		queryEmbedding = LocalEmbedding(query, chunkDim)
	}

	scored := make([]models.RetrievedChunk, 0, len(filtered))
	for _, chunk := range filtered {
		lexical := LexicalSimilarity(query, chunk.Text)

		cosine := 0.0
		if len(queryEmbedding) > 0 && len(chunk.Embedding) == len(queryEmbedding) {
			cosine = CosineSimilarity(queryEmbedding, chunk.Embedding)
		}

		score := cosine
		if lexical > score {
			score = lexical
		}

		scored = append(scored, models.RetrievedChunk{ChunkRecord: chunk, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// RankByRichness scores chunks by vocabulary density instead of query
// relevance, for generators that sample across the whole subject. The
// divisor controls how quickly the score saturates.
func RankByRichness(chunks []models.ChunkRecord, divisor float64, topN int) []models.RetrievedChunk {
	if divisor <= 0 {
		divisor = 100
	}

	scored := make([]models.RetrievedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		unique := len(TokenSet(chunk.Text))
		score := 0.2 + float64(unique)/divisor
		if score > 1 {
			score = 1
		}
		scored = append(scored, models.RetrievedChunk{ChunkRecord: chunk, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topN > 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

func embedQuery(ctx context.Context, embedder Embedder, query string) []float64 {
	if embedder != nil {
		vectors, err := embedder.EmbedTexts(ctx, []string{query})
		if err == nil && len(vectors) == 1 && len(vectors[0]) > 0 {
			return vectors[0]
		}
	}
	return LocalEmbedding(query, LocalEmbedDim)
}
