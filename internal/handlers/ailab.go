package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/generate"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

type AiLabHandler struct {
	subjectRepo subjectRepository
	chunks      chunkSource
	retriever   retriever
	completer   generate.Completer
	gateCfg     retrieval.GateConfig
}

func NewAiLabHandler(subjectRepo subjectRepository, chunks chunkSource, ret retriever, completer generate.Completer, gateCfg retrieval.GateConfig) *AiLabHandler {
	return &AiLabHandler{
		subjectRepo: subjectRepo,
		chunks:      chunks,
		retriever:   ret,
		completer:   completer,
		gateCfg:     gateCfg,
	}
}

func (h *AiLabHandler) Generate(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	records, err := h.chunks.AllChunks(r.Context(), subject.UserID, subject.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load notes", r))
		return
	}

	ranked := retrieval.RankByRichness(records, 110, 18)
	pack := generate.GenerateAiLabPack(r.Context(), h.completer, ranked)
	if pack == nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("UNPROCESSABLE", "No note content available. Upload and parse notes first.", r))
		return
	}

	writeJSON(w, http.StatusOK, pack)
}

func (h *AiLabHandler) Coach(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	var req models.CoachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	question := strings.TrimSpace(req.Question)
	answer := strings.TrimSpace(req.Answer)
	if len(question) < 2 || len(question) > 800 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Question must be 2-800 characters", r))
		return
	}
	if len(answer) < 2 || len(answer) > 3000 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Answer must be 2-3000 characters", r))
		return
	}

	chunks, err := h.retriever.Retrieve(r.Context(), subject.UserID, subject.ID, question, retrieval.DefaultTopK)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to search notes", r))
		return
	}

	response := generate.EvaluateCoachResponse(r.Context(), h.completer, generate.CoachParams{
		Question:        question,
		UserAnswer:      answer,
		SubjectName:     subject.Name,
		RetrievedChunks: chunks,
		Gate:            h.gateCfg,
	})

	writeJSON(w, http.StatusOK, response)
}
