package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/middleware"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

type stubSubjectRepo struct {
	subjects map[uuid.UUID]*models.Subject
	used     []int
	created  *models.Subject
	deleted  []uuid.UUID
}

func (s *stubSubjectRepo) Create(ctx context.Context, sub *models.Subject) error {
	sub.ID = uuid.New()
	s.created = sub
	return nil
}

func (s *stubSubjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	if sub, ok := s.subjects[id]; ok {
		return sub, nil
	}
	return nil, errors.New("no rows in result set")
}

func (s *stubSubjectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subject, error) {
	return nil, nil
}

func (s *stubSubjectRepo) UsedSlots(ctx context.Context, userID uuid.UUID) ([]int, error) {
	return s.used, nil
}

func (s *stubSubjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func authedRequest(method, target string, body io.Reader, userID uuid.UUID, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
	return req
}

func TestSubjectHandler_Create_AssignsFirstFreeSlot(t *testing.T) {
	repo := &stubSubjectRepo{used: []int{1, 3}}
	h := NewSubjectHandler(repo)

	req := authedRequest(http.MethodPost, "/api/v1/subjects",
		strings.NewReader(`{"name":"Biology"}`), uuid.New(), nil)

	rr := httptest.NewRecorder()
	h.Create(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	if repo.created == nil {
		t.Fatal("expected subject to be created")
	}
	if repo.created.Slot != 2 {
		t.Errorf("expected slot 2, got %d", repo.created.Slot)
	}
	if repo.created.Name != "Biology" {
		t.Errorf("unexpected name %q", repo.created.Name)
	}
}

func TestSubjectHandler_Create_LimitReached(t *testing.T) {
	repo := &stubSubjectRepo{used: []int{1, 2, 3}}
	h := NewSubjectHandler(repo)

	req := authedRequest(http.MethodPost, "/api/v1/subjects",
		strings.NewReader(`{"name":"Chemistry"}`), uuid.New(), nil)

	rr := httptest.NewRecorder()
	h.Create(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rr.Code)
	}
	if repo.created != nil {
		t.Fatal("subject should not be created past the limit")
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Code != "CONFLICT" {
		t.Errorf("unexpected error code %q", resp.Error.Code)
	}
}

func TestSubjectHandler_Create_NameValidation(t *testing.T) {
	repo := &stubSubjectRepo{}
	h := NewSubjectHandler(repo)

	for _, name := range []string{"x", "  ", strings.Repeat("a", 65)} {
		body, _ := json.Marshal(map[string]string{"name": name})
		req := authedRequest(http.MethodPost, "/api/v1/subjects",
			strings.NewReader(string(body)), uuid.New(), nil)

		rr := httptest.NewRecorder()
		h.Create(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("name %q: expected status %d, got %d", name, http.StatusBadRequest, rr.Code)
		}
	}
	if repo.created != nil {
		t.Fatal("invalid names should not create subjects")
	}
}

func TestSubjectHandler_Get_Forbidden(t *testing.T) {
	subjectID := uuid.New()
	ownerID := uuid.New()

	repo := &stubSubjectRepo{
		subjects: map[uuid.UUID]*models.Subject{
			subjectID: {ID: subjectID, UserID: ownerID, Name: "Physics", Slot: 1},
		},
	}
	h := NewSubjectHandler(repo)

	req := authedRequest(http.MethodGet, "/api/v1/subjects/"+subjectID.String(), nil,
		uuid.New(), map[string]string{"id": subjectID.String()})

	rr := httptest.NewRecorder()
	h.Get(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}
}

func TestSubjectHandler_Delete_UnknownSubject(t *testing.T) {
	repo := &stubSubjectRepo{subjects: map[uuid.UUID]*models.Subject{}}
	h := NewSubjectHandler(repo)

	missing := uuid.New()
	req := authedRequest(http.MethodDelete, "/api/v1/subjects/"+missing.String(), nil,
		uuid.New(), map[string]string{"id": missing.String()})

	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("nothing should be deleted")
	}
}
