package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"saylo/internal/middleware"
	"saylo/internal/models"
)

type mockInterviewService struct {
	startFn       func(ctx context.Context, req *models.StartInterviewRequest) (*models.StartInterviewResponse, error)
	answerFn      func(ctx context.Context, sessionID, answer string, m *models.NonVerbalMetrics) (*models.ChatResponse, error)
	answerAudioFn func(ctx context.Context, sessionID string, audio []byte, mimeType string, m *models.NonVerbalMetrics) (*models.ChatResponse, error)
	endFn         func(ctx context.Context, sessionID string) (*models.Feedback, error)
	historyFn     func(ctx context.Context, limit int) ([]models.HistoryItem, error)
}

func (m *mockInterviewService) Start(ctx context.Context, req *models.StartInterviewRequest) (*models.StartInterviewResponse, error) {
	if m.startFn == nil {
		panic("unexpected call to Start")
	}
	return m.startFn(ctx, req)
}

func (m *mockInterviewService) Answer(ctx context.Context, sessionID, answer string, metrics *models.NonVerbalMetrics) (*models.ChatResponse, error) {
	if m.answerFn == nil {
		panic("unexpected call to Answer")
	}
	return m.answerFn(ctx, sessionID, answer, metrics)
}

func (m *mockInterviewService) AnswerAudio(ctx context.Context, sessionID string, audio []byte, mimeType string, metrics *models.NonVerbalMetrics) (*models.ChatResponse, error) {
	if m.answerAudioFn == nil {
		panic("unexpected call to AnswerAudio")
	}
	return m.answerAudioFn(ctx, sessionID, audio, mimeType, metrics)
}

func (m *mockInterviewService) End(ctx context.Context, sessionID string) (*models.Feedback, error) {
	if m.endFn == nil {
		panic("unexpected call to End")
	}
	return m.endFn(ctx, sessionID)
}

func (m *mockInterviewService) History(ctx context.Context, limit int) ([]models.HistoryItem, error) {
	if m.historyFn == nil {
		panic("unexpected call to History")
	}
	return m.historyFn(ctx, limit)
}

func performRequest(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// performAuthed runs the request as the given user id.
func performAuthed(handler http.Handler, method, target, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return resp
}
