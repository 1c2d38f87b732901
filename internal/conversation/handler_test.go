package conversation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type stubService struct {
	turnResp    *TurnResponse
	turnErr     error
	confirmResp *ConfirmResponse
	confirmErr  error
	history     []Message
}

func (s *stubService) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	return s.turnResp, s.turnErr
}

func (s *stubService) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	return s.confirmResp, s.confirmErr
}

func (s *stubService) History(ctx context.Context, sessionID string) ([]Message, error) {
	return s.history, nil
}

func newTestRouter(svc Service) http.Handler {
	h := NewHandler(svc, nil)
	r := chi.NewRouter()
	r.Post("/conversations/message", h.Message)
	r.Post("/conversations/confirm", h.Confirm)
	r.Get("/conversations/{sessionID}/history", h.History)
	return r
}

func TestMessageEndpoint(t *testing.T) {
	svc := &stubService{turnResp: &TurnResponse{
		SessionID: "s1",
		Reply:     "Dr. Michael Chen is free on 2025-08-25 at 10:00:00.",
		State:     StateIdle,
	}}
	router := newTestRouter(svc)

	body := strings.NewReader(`{"session_id":"s1","patient":"Alice","text":"anything with Dr. Chen?"}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/message", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp TurnResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != "s1" || resp.State != StateIdle {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestMessageEndpointRejectsEmptyText(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/conversations/message", strings.NewReader(`{"session_id":"s1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMessageEndpointRejectsBadJSON(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/conversations/message", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestConfirmEndpoint(t *testing.T) {
	svc := &stubService{confirmResp: &ConfirmResponse{SessionID: "s1", Booked: true, Message: "Appointment booked."}}
	router := newTestRouter(svc)

	body := strings.NewReader(`{"session_id":"s1","confirmation_id":"offer-1","patient":"Alice"}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/confirm", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp ConfirmResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Booked {
		t.Errorf("expected booked=true: %+v", resp)
	}
}

func TestConfirmEndpointNoPendingOffer(t *testing.T) {
	svc := &stubService{confirmErr: ErrNoPendingOffer}
	router := newTestRouter(svc)

	body := strings.NewReader(`{"session_id":"s1","confirmation_id":"stale"}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/confirm", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	svc := &stubService{history: []Message{
		{Role: ChatRoleUser, Content: "hello"},
		{Role: ChatRoleAssistant, Content: "hi!"},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/conversations/s1/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		SessionID string    `json:"session_id"`
		History   []Message `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != "s1" || len(resp.History) != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
}
