package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/repository"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

// RetrievalService answers "which chunks of this subject's notes are
// relevant to this query, and is that evidence strong enough". All
// lookups are scoped to one user and one subject.
type RetrievalService struct {
	chunkRepo *repository.ChunkRepo
	embedder  retrieval.Embedder
	gateCfg   retrieval.GateConfig
}

func NewRetrievalService(chunkRepo *repository.ChunkRepo, embedder retrieval.Embedder, gateCfg retrieval.GateConfig) *RetrievalService {
	return &RetrievalService{
		chunkRepo: chunkRepo,
		embedder:  embedder,
		gateCfg:   gateCfg,
	}
}

func (s *RetrievalService) Retrieve(ctx context.Context, userID, subjectID uuid.UUID, query string, topK int) ([]models.RetrievedChunk, error) {
	rows, err := s.chunkRepo.ListBySubject(ctx, userID, subjectID)
	if err != nil {
		return nil, err
	}

	records := make([]models.ChunkRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}

	return retrieval.Retrieve(ctx, s.embedder, query, subjectID.String(), records, topK), nil
}

func (s *RetrievalService) Gate(query string, chunks []models.RetrievedChunk) models.GatingResult {
	return retrieval.EvaluateGating(query, chunks, s.gateCfg)
}

// AllChunks loads every chunk of a subject, for generators that score
// chunks themselves instead of going through query retrieval.
func (s *RetrievalService) AllChunks(ctx context.Context, userID, subjectID uuid.UUID) ([]models.ChunkRecord, error) {
	rows, err := s.chunkRepo.ListBySubject(ctx, userID, subjectID)
	if err != nil {
		return nil, err
	}

	records := make([]models.ChunkRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}
	return records, nil
}
