package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/generate"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

type retriever interface {
	Retrieve(ctx context.Context, userID, subjectID uuid.UUID, query string, topK int) ([]models.RetrievedChunk, error)
}

type chunkSource interface {
	AllChunks(ctx context.Context, userID, subjectID uuid.UUID) ([]models.ChunkRecord, error)
}

type ChatHandler struct {
	subjectRepo subjectRepository
	retriever   retriever
	completer   generate.Completer
	gateCfg     retrieval.GateConfig
}

func NewChatHandler(subjectRepo subjectRepository, ret retriever, completer generate.Completer, gateCfg retrieval.GateConfig) *ChatHandler {
	return &ChatHandler{
		subjectRepo: subjectRepo,
		retriever:   ret,
		completer:   completer,
		gateCfg:     gateCfg,
	}
}

func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	question := strings.TrimSpace(req.Question)
	if len(question) < 2 || len(question) > 1200 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Question must be 2-1200 characters", r))
		return
	}
	if len(req.History) > 12 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "History may hold at most 12 turns", r))
		return
	}
	for _, turn := range req.History {
		if turn.Role != "user" && turn.Role != "assistant" {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "History roles must be 'user' or 'assistant'", r))
			return
		}
		if len(turn.Text) < 1 || len(turn.Text) > 2000 {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "History turns must be 1-2000 characters", r))
			return
		}
	}

	userID := subject.UserID
	effective := generate.ResolveEffectiveQuestion(r.Context(), h.completer, question, req.History)

	chunks, err := h.retriever.Retrieve(r.Context(), userID, subject.ID, effective, retrieval.DefaultTopK)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to search notes", r))
		return
	}

	response := generate.BuildChatResponse(r.Context(), h.completer, generate.ChatParams{
		Question:          question,
		EffectiveQuestion: effective,
		History:           req.History,
		SubjectName:       subject.Name,
		RetrievedChunks:   chunks,
		Gate:              h.gateCfg,
	})

	writeJSON(w, http.StatusOK, response)
}
