package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/generate"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

const defaultPlannerQuery = "most important concepts and key exam topics"

type BoostHandler struct {
	subjectRepo subjectRepository
	retriever   retriever
	completer   generate.Completer
	gateCfg     retrieval.GateConfig
}

func NewBoostHandler(subjectRepo subjectRepository, ret retriever, completer generate.Completer, gateCfg retrieval.GateConfig) *BoostHandler {
	return &BoostHandler{
		subjectRepo: subjectRepo,
		retriever:   ret,
		completer:   completer,
		gateCfg:     gateCfg,
	}
}

func (h *BoostHandler) Search(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	query := strings.TrimSpace(req.Query)
	if len(query) < 2 || len(query) > 1000 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Query must be 2-1000 characters", r))
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 8
	}
	if limit > 20 {
		limit = 20
	}

	chunks, err := h.retriever.Retrieve(r.Context(), subject.UserID, subject.ID, query, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to search notes", r))
		return
	}

	writeJSON(w, http.StatusOK, generate.BuildSearchPayload(query, chunks, limit))
}

func (h *BoostHandler) Explain(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	var req models.ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	concept := strings.TrimSpace(req.Concept)
	if len(concept) < 2 || len(concept) > 600 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Concept must be 2-600 characters", r))
		return
	}

	chunks, err := h.retriever.Retrieve(r.Context(), subject.UserID, subject.ID, concept, retrieval.DefaultTopK)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to search notes", r))
		return
	}

	response := generate.BuildExplainPayload(r.Context(), h.completer, generate.ExplainParams{
		Concept:         concept,
		SubjectName:     subject.Name,
		RetrievedChunks: chunks,
		Gate:            h.gateCfg,
	})

	writeJSON(w, http.StatusOK, response)
}

func (h *BoostHandler) Planner(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	var req models.PlannerRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	goalMinutes := req.GoalMinutes
	if goalMinutes == 0 {
		goalMinutes = 45
	}
	if goalMinutes < 15 || goalMinutes > 240 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "goalMinutes must be between 15 and 240", r))
		return
	}

	focus := strings.TrimSpace(req.Focus)
	if focus != "" && (len(focus) < 2 || len(focus) > 600) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Focus must be 2-600 characters", r))
		return
	}

	query := focus
	if query == "" {
		query = defaultPlannerQuery
	}

	chunks, err := h.retriever.Retrieve(r.Context(), subject.UserID, subject.ID, query, 10)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to search notes", r))
		return
	}

	response := generate.BuildPlannerPayload(r.Context(), h.completer, goalMinutes, focus, chunks)
	if response == nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("UNPROCESSABLE", "No note content available. Upload and parse notes first.", r))
		return
	}

	writeJSON(w, http.StatusOK, response)
}
