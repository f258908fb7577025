package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/generate"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/grading"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

type StudyHandler struct {
	subjectRepo subjectRepository
	chunks      chunkSource
	completer   generate.Completer
}

func NewStudyHandler(subjectRepo subjectRepository, chunks chunkSource, completer generate.Completer) *StudyHandler {
	return &StudyHandler{
		subjectRepo: subjectRepo,
		chunks:      chunks,
		completer:   completer,
	}
}

func (h *StudyHandler) Generate(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	var req struct {
		Difficulty   string `json:"difficulty"`
		VariationKey string `json:"variationKey"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	difficulty := strings.ToLower(strings.TrimSpace(req.Difficulty))
	if difficulty == "" {
		difficulty = "medium"
	}
	if difficulty != "easy" && difficulty != "medium" && difficulty != "hard" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Difficulty must be easy, medium or hard", r))
		return
	}

	variationKey := strings.TrimSpace(req.VariationKey)
	if variationKey == "" {
		variationKey = fmt.Sprintf("%d-%d", time.Now().UnixMilli(), time.Now().UnixNano()%1000)
	}

	records, err := h.chunks.AllChunks(r.Context(), subject.UserID, subject.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load notes", r))
		return
	}

	ranked := retrieval.RankByRichness(records, 100, 16)
	pack := generate.GenerateStudyPack(r.Context(), h.completer, ranked, difficulty, variationKey)
	if pack == nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("UNPROCESSABLE", "No note content available. Upload and parse notes first.", r))
		return
	}

	writeJSON(w, http.StatusOK, pack)
}

func (h *StudyHandler) Grade(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveSubject(w, r, h.subjectRepo); !ok {
		return
	}

	var req models.GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if len(req.StudyPack.MCQs) == 0 && len(req.StudyPack.ShortAnswers) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Study pack has nothing to grade", r))
		return
	}

	result := grading.GradeStudySubmission(req)
	writeJSON(w, http.StatusOK, result)
}
