package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

func boostFixture() (*BoostHandler, *stubRetriever, *models.Subject) {
	subjectID := uuid.New()
	subject := &models.Subject{ID: subjectID, UserID: uuid.New(), Name: "Law", Slot: 1}

	repo := &stubSubjectRepo{
		subjects: map[uuid.UUID]*models.Subject{subjectID: subject},
	}
	ret := &stubRetriever{}
	h := NewBoostHandler(repo, ret, nil, retrieval.GateConfig{Threshold: 0.2, MinChunks: 2})
	return h, ret, subject
}

func TestBoostHandler_Planner_GoalMinutesValidation(t *testing.T) {
	h, _, subject := boostFixture()

	for _, minutes := range []int{14, 241, -5} {
		body, _ := json.Marshal(map[string]int{"goalMinutes": minutes})
		req := authedRequest(http.MethodPost, "/api/v1/subjects/"+subject.ID.String()+"/boost/planner",
			strings.NewReader(string(body)),
			subject.UserID, map[string]string{"id": subject.ID.String()})

		rr := httptest.NewRecorder()
		h.Planner(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("goalMinutes %d: expected status %d, got %d", minutes, http.StatusBadRequest, rr.Code)
		}
	}
}

func TestBoostHandler_Planner_FocusDrivesRetrieval(t *testing.T) {
	h, ret, subject := boostFixture()
	ret.chunks = []models.RetrievedChunk{
		{ChunkRecord: models.ChunkRecord{
			ChunkID: "f1-1", FileName: "contracts.pdf",
			Text: "Consideration is the bargained-for exchange that makes a promise enforceable. Courts do not weigh the adequacy of consideration.",
		}, Score: 0.9},
	}

	req := authedRequest(http.MethodPost, "/api/v1/subjects/"+subject.ID.String()+"/boost/planner",
		strings.NewReader(`{"goalMinutes":60,"focus":"contract formation"}`),
		subject.UserID, map[string]string{"id": subject.ID.String()})

	rr := httptest.NewRecorder()
	h.Planner(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if ret.lastQuery != "contract formation" {
		t.Errorf("expected focus to drive retrieval, got query %q", ret.lastQuery)
	}
}

func TestBoostHandler_Planner_DefaultQueryWithoutFocus(t *testing.T) {
	h, ret, subject := boostFixture()
	ret.chunks = []models.RetrievedChunk{
		{ChunkRecord: models.ChunkRecord{
			ChunkID: "f1-1", FileName: "contracts.pdf",
			Text: "Offer and acceptance form the core of contract formation under the common law mirror image rule.",
		}, Score: 0.8},
	}

	req := authedRequest(http.MethodPost, "/api/v1/subjects/"+subject.ID.String()+"/boost/planner",
		strings.NewReader(`{}`),
		subject.UserID, map[string]string{"id": subject.ID.String()})

	rr := httptest.NewRecorder()
	h.Planner(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if ret.lastQuery != "most important concepts and key exam topics" {
		t.Errorf("unexpected default query %q", ret.lastQuery)
	}
}

func TestBoostHandler_Search_QueryValidation(t *testing.T) {
	h, _, subject := boostFixture()

	for _, query := range []string{"", "a", strings.Repeat("q", 1001)} {
		body, _ := json.Marshal(map[string]string{"query": query})
		req := authedRequest(http.MethodPost, "/api/v1/subjects/"+subject.ID.String()+"/boost/search",
			strings.NewReader(string(body)),
			subject.UserID, map[string]string{"id": subject.ID.String()})

		rr := httptest.NewRecorder()
		h.Search(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected status %d, got %d", query, http.StatusBadRequest, rr.Code)
		}
	}
}
