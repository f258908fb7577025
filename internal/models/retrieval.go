package models

import (
	"github.com/google/uuid"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Citation points back at the chunk a generated item was built from.
type Citation struct {
	FileName      string `json:"fileName"`
	PageOrSection string `json:"pageOrSection"`
	ChunkID       string `json:"chunkId"`
}

// EvidenceSnippet is a truncated quote backing a claim.
type EvidenceSnippet struct {
	FileName      string `json:"fileName"`
	PageOrSection string `json:"pageOrSection"`
	TextSnippet   string `json:"textSnippet"`
}

// ChunkRecord is the atomic unit of retrieval: a bounded span of note
// text with provenance and a stored embedding. Immutable once created.
type ChunkRecord struct {
	ChunkID       string    `json:"chunkId"`
	FileName      string    `json:"fileName"`
	PageOrSection string    `json:"pageOrSection"`
	Text          string    `json:"text"`
	Embedding     []float64 `json:"embedding"`
	SubjectID     string    `json:"subjectId"`
	FileID        string    `json:"fileId"`
}

// RetrievedChunk is a ChunkRecord with its per-query relevance score.
type RetrievedChunk struct {
	ChunkRecord
	Score float64 `json:"score"`
}

type GatingReason string

const (
	GatingOK               GatingReason = "ok"
	GatingLowScore         GatingReason = "low_score"
	GatingTooFewChunks     GatingReason = "too_few_chunks"
	GatingNoDirectEvidence GatingReason = "no_direct_evidence"
)

// GatingResult is the pass/fail decision on whether retrieved evidence
// is strong enough to answer without hallucinating.
type GatingResult struct {
	Passed           bool             `json:"passed"`
	BestScore        float64          `json:"bestScore"`
	SupportingChunks []RetrievedChunk `json:"supportingChunks"`
	DirectEvidence   []RetrievedChunk `json:"directEvidence"`
	Reason           GatingReason     `json:"reason"`
	Confidence       Confidence       `json:"confidence"`
}

type ChatTurn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

type ChatRequest struct {
	Question string     `json:"question"`
	History  []ChatTurn `json:"history"`
}

type ChatResponse struct {
	Answer     string            `json:"answer"`
	Confidence Confidence        `json:"confidence"`
	Citations  []Citation        `json:"citations"`
	Evidence   []EvidenceSnippet `json:"evidence"`
}

// ChunkRow is the persisted form of a chunk, keyed by owner and subject.
type ChunkRow struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	SubjectID     uuid.UUID
	FileID        uuid.UUID
	FileName      string
	PageOrSection string
	ChunkID       string
	Text          string
	Embedding     []float64
}

// Record converts a stored row into the retrieval-facing shape.
func (c ChunkRow) Record() ChunkRecord {
	return ChunkRecord{
		ChunkID:       c.ChunkID,
		FileName:      c.FileName,
		PageOrSection: c.PageOrSection,
		Text:          c.Text,
		Embedding:     c.Embedding,
		SubjectID:     c.SubjectID.String(),
		FileID:        c.FileID.String(),
	}
}
