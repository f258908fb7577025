package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/middleware"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

const maxSubjects = 3

type subjectRepository interface {
	Create(ctx context.Context, s *models.Subject) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Subject, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subject, error)
	UsedSlots(ctx context.Context, userID uuid.UUID) ([]int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SubjectHandler struct {
	subjectRepo subjectRepository
}

func NewSubjectHandler(subjectRepo subjectRepository) *SubjectHandler {
	return &SubjectHandler{subjectRepo: subjectRepo}
}

func (h *SubjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 64 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Subject name must be 2-64 characters", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	used, err := h.subjectRepo.UsedSlots(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load subjects", r))
		return
	}
	if len(used) >= maxSubjects {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Subject limit reached. Delete a subject to add a new one.", r))
		return
	}

	slot := firstFreeSlot(used)
	subject := &models.Subject{
		UserID: userID,
		Name:   name,
		Slot:   slot,
	}
	if err := h.subjectRepo.Create(r.Context(), subject); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create subject", r))
		return
	}

	writeJSON(w, http.StatusCreated, subject)
}

func (h *SubjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	subjects, err := h.subjectRepo.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load subjects", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"subjects": subjects})
}

func (h *SubjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

func (h *SubjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	if err := h.subjectRepo.Delete(r.Context(), subject.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete subject", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Subject deleted"})
}

func firstFreeSlot(used []int) int {
	taken := make(map[int]bool, len(used))
	for _, slot := range used {
		taken[slot] = true
	}
	for slot := 1; slot <= maxSubjects; slot++ {
		if !taken[slot] {
			return slot
		}
	}
	return maxSubjects
}

// resolveSubject loads the subject from the route and verifies the
// caller owns it. On failure it writes the error response itself.
func resolveSubject(w http.ResponseWriter, r *http.Request, repo subjectRepository) (*models.Subject, bool) {
	subjectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid subject ID", r))
		return nil, false
	}

	subject, err := repo.GetByID(r.Context(), subjectID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Subject not found", r))
		return nil, false
	}

	userID := middleware.GetUserID(r.Context())
	if subject.UserID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return nil, false
	}

	return subject, true
}
