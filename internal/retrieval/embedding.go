package retrieval

import "math"

// LocalEmbedDim is the dimensionality of the fallback embedding used
// when no embedding service is configured.
const LocalEmbedDim = 256

func hashToken(token string) int {
	hash := int32(0)
	for _, r := range token {
		hash = (hash << 5) - hash + int32(r)
	}
	return absHash(hash)
}

// absHash maps a signed hash to a non-negative bucket key. Negating
// math.MinInt32 wraps back to itself, so the magnitude goes through
// uint32 instead of plain negation.
func absHash(hash int32) int {
	if hash < 0 {
		return int(uint32(-hash))
	}
	return int(hash)
}

// LocalEmbedding builds a deterministic hash-bucket term-frequency
// vector of the given dimension, L2-normalized. It keeps retrieval
// usable in demo mode and whenever the embedding service returns
// vectors of mismatched dimensionality.
func LocalEmbedding(text string, dimension int) []float64 {
	dim := dimension
	if dim < 8 {
		dim = 8
	}

	vector := make([]float64, dim)
	for _, token := range Tokenize(text) {
		idx := hashToken(token) % dim
		vector[idx] += 1

		// Spread token signal to nearby bins for better lexical recall.
		vector[(idx+13)%dim] += 0.4
		vector[(idx+37)%dim] += 0.2
	}

	return normalizeVector(vector)
}

func normalizeVector(vector []float64) []float64 {
	var sum float64
	for _, v := range vector {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}

	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = v / norm
	}
	return out
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either is empty or their lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
