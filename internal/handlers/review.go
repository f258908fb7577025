package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/review"
)

type reviewStore interface {
	PurgeInvalid(ctx context.Context, userID, subjectID uuid.UUID) error
	CardedChunkIDs(ctx context.Context, userID, subjectID uuid.UUID) (map[string]bool, error)
	InsertSeeds(ctx context.Context, userID, subjectID uuid.UUID, seeds []models.ReviewCardSeed) (int, error)
	FindDue(ctx context.Context, userID, subjectID uuid.UUID, now time.Time, limit int) ([]models.ReviewCard, error)
	GetByID(ctx context.Context, userID, cardID uuid.UUID) (*models.ReviewCard, error)
	ApplyRating(ctx context.Context, card *models.ReviewCard) error
	Stats(ctx context.Context, userID, subjectID uuid.UUID, now time.Time) (models.ReviewStats, error)
}

type ReviewHandler struct {
	subjectRepo subjectRepository
	reviewRepo  reviewStore
	chunks      chunkSource
}

func NewReviewHandler(subjectRepo subjectRepository, reviewRepo reviewStore, chunks chunkSource) *ReviewHandler {
	return &ReviewHandler{
		subjectRepo: subjectRepo,
		reviewRepo:  reviewRepo,
		chunks:      chunks,
	}
}

func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	limit := 15
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid limit", r))
			return
		}
		limit = parsed
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 30 {
		limit = 30
	}

	now := time.Now()
	userID := subject.UserID

	if err := h.reviewRepo.PurgeInvalid(r.Context(), userID, subject.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load review queue", r))
		return
	}

	stats, err := h.reviewRepo.Stats(r.Context(), userID, subject.ID, now)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load review stats", r))
		return
	}

	due, err := h.reviewRepo.FindDue(r.Context(), userID, subject.ID, now, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load review queue", r))
		return
	}

	writeJSON(w, http.StatusOK, models.ReviewQueueResponse{
		Stats:    stats,
		DueCards: due,
	})
}

func (h *ReviewHandler) Seed(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	var req struct {
		TargetCards int `json:"targetCards"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	target := req.TargetCards
	if target == 0 {
		target = 40
	}
	if target < 5 || target > 80 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "targetCards must be between 5 and 80", r))
		return
	}

	now := time.Now()
	userID := subject.UserID

	if err := h.reviewRepo.PurgeInvalid(r.Context(), userID, subject.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to seed review cards", r))
		return
	}

	records, err := h.chunks.AllChunks(r.Context(), userID, subject.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load notes", r))
		return
	}

	carded, err := h.reviewRepo.CardedChunkIDs(r.Context(), userID, subject.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to seed review cards", r))
		return
	}

	eligible := make([]models.ChunkRecord, 0, len(records))
	for _, record := range records {
		if !carded[record.ChunkID] {
			eligible = append(eligible, record)
		}
	}

	seeds := review.BuildReviewCardsFromChunks(eligible, target)
	created, err := h.reviewRepo.InsertSeeds(r.Context(), userID, subject.ID, seeds)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to seed review cards", r))
		return
	}

	stats, err := h.reviewRepo.Stats(r.Context(), userID, subject.ID, now)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load review stats", r))
		return
	}

	due, err := h.reviewRepo.FindDue(r.Context(), userID, subject.ID, now, 15)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load review queue", r))
		return
	}

	writeJSON(w, http.StatusCreated, models.ReviewSeedResponse{
		CreatedCards: created,
		Stats:        stats,
		DueCards:     due,
	})
}

func (h *ReviewHandler) Rate(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "cardId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid card ID", r))
		return
	}

	var req models.RateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if !review.ValidRating(req.Rating) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Rating must be again, hard, good or easy", r))
		return
	}

	userID := subject.UserID
	if err := h.reviewRepo.PurgeInvalid(r.Context(), userID, subject.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save rating", r))
		return
	}

	card, err := h.reviewRepo.GetByID(r.Context(), userID, cardID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Review card not found", r))
		return
	}
	if card.SubjectID != subject.ID {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Review card not found", r))
		return
	}

	now := time.Now()
	next := review.ScheduleNextReview(models.ReviewCardState{
		Repetitions:  card.Repetitions,
		IntervalDays: card.IntervalDays,
		EaseFactor:   card.EaseFactor,
		Lapses:       card.Lapses,
		DueAt:        card.DueAt,
	}, req.Rating, now)

	card.Repetitions = next.Repetitions
	card.IntervalDays = next.IntervalDays
	card.EaseFactor = next.EaseFactor
	card.Lapses = next.Lapses
	card.DueAt = next.DueAt
	card.ReviewCount++
	rating := req.Rating
	card.LastRating = &rating
	card.LastReviewedAt = &now

	if err := h.reviewRepo.ApplyRating(r.Context(), card); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save rating", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"card": card})
}
