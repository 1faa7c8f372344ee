package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"saylo/internal/interviewer"
	"saylo/internal/llm"
	"saylo/internal/middleware"
	"saylo/internal/models"
	"saylo/internal/utils"
)

const (
	maxAudioBytes       = 10 << 20
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// InterviewService is the interview engine behind the HTTP contract.
type InterviewService interface {
	Start(ctx context.Context, req *models.StartInterviewRequest) (*models.StartInterviewResponse, error)
	Answer(ctx context.Context, sessionID, answer string, metrics *models.NonVerbalMetrics) (*models.ChatResponse, error)
	AnswerAudio(ctx context.Context, sessionID string, audio []byte, mimeType string, metrics *models.NonVerbalMetrics) (*models.ChatResponse, error)
	End(ctx context.Context, sessionID string) (*models.Feedback, error)
	History(ctx context.Context, limit int) ([]models.HistoryItem, error)
}

type InterviewHandler struct {
	service InterviewService
	logger  *zap.Logger
}

func NewInterviewHandler(service InterviewService, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{service: service, logger: logger}
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)

	resp, err := h.service.Start(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ChatRequest](r)

	resp, err := h.service.Answer(r.Context(), req.SessionID, req.Answer, req.NonVerbalMetrics)
	if err != nil {
		h.writeServiceError(w, err, req.SessionID)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// AudioHandler accepts a multipart form with session_id, an audio file and an
// optional non_verbal_metrics JSON field.
func (h *InterviewHandler) AudioHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes+1<<20)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_form", Message: "Invalid multipart form"})
		return
	}

	sessionID := strings.TrimSpace(r.FormValue("session_id"))
	if sessionID == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "missing_session_id", Message: "session_id is required"})
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "missing_audio", Message: "audio file is required"})
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil || len(audio) == 0 {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "missing_audio", Message: "audio file is empty"})
		return
	}

	var nonVerbal *models.NonVerbalMetrics
	if raw := r.FormValue("non_verbal_metrics"); raw != "" {
		nonVerbal = &models.NonVerbalMetrics{}
		if err := json.Unmarshal([]byte(raw), nonVerbal); err != nil {
			utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_metrics", Message: "non_verbal_metrics is not valid JSON"})
			return
		}
		if err := nonVerbal.Validate(); err != nil {
			var errResp *models.ErrorResponse
			if errors.As(err, &errResp) {
				utils.JSON(w, http.StatusBadRequest, *errResp)
				return
			}
			utils.JSONError(w, http.StatusBadRequest, "invalid_metrics", err.Error())
			return
		}
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "audio/webm"
	}

	resp, err := h.service.AnswerAudio(r.Context(), sessionID, audio, mimeType, nonVerbal)
	if err != nil {
		h.writeServiceError(w, err, sessionID)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) EndHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	feedback, err := h.service.End(r.Context(), sessionID)
	if err != nil {
		h.writeServiceError(w, err, sessionID)
		return
	}
	utils.JSON(w, http.StatusOK, models.EndInterviewResponse{Status: "ended", Feedback: feedback})
}

func (h *InterviewHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_limit", Message: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	items, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, items)
}

func (h *InterviewHandler) writeServiceError(w http.ResponseWriter, err error, sessionID string) {
	switch {
	case errors.Is(err, interviewer.ErrSessionNotFound):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Code: "session_not_found", Message: "Interview session not found"})
	case errors.Is(err, interviewer.ErrSessionCompleted):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{Code: "session_completed", Message: "Interview session already completed"})
	case errors.Is(err, interviewer.ErrEmptyTranscript):
		utils.JSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Code: "empty_transcript", Message: "No speech was detected in the recording"})
	case errors.Is(err, interviewer.ErrTranscriptionUnavailable):
		utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Code: "transcription_unavailable", Message: "Audio answers are not available"})
	case llm.IsRateLimited(err):
		utils.JSON(w, http.StatusTooManyRequests, models.ErrorResponse{Code: llm.ErrCodeRateLimit, Message: "AI provider is rate limiting requests, try again shortly"})
	default:
		h.logger.Error("interview request failed", zap.String("session_id", sessionID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "internal_error", Message: "Interview service failed"})
	}
}
