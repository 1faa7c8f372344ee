package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"saylo/internal/middleware"
	"saylo/internal/models"
	"saylo/internal/repositories"
	"saylo/internal/utils"
)

// RecordHandler serves the backend's interview records.
type RecordHandler struct {
	Repo   InterviewRecordRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewRecordHandler(repo InterviewRecordRepository, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{Repo: repo, logger: logger, now: time.Now}
}

func (h *RecordHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	req := middleware.GetValidatedRequest[*models.CreateInterviewRecordRequest](r)

	record := &models.InterviewRecord{
		UserID:    userID,
		JobTitle:  req.JobTitle,
		Status:    models.RecordStatusInProgress,
		StartTime: h.now(),
	}
	if err := h.Repo.Create(record); err != nil {
		h.logger.Error("failed to create interview record", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to create interview")
		return
	}
	utils.JSON(w, http.StatusCreated, record)
}

func (h *RecordHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	records, err := h.Repo.ListByUser(userID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to list interviews")
		return
	}
	utils.JSON(w, http.StatusOK, records)
}

func (h *RecordHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := uintParam(w, r, "id")
	if !ok {
		return
	}
	record, err := h.Repo.GetForUser(id, userID)
	if err != nil {
		writeRecordError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, record)
}

func (h *RecordHandler) EndHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := uintParam(w, r, "id")
	if !ok {
		return
	}
	record, err := h.Repo.End(id, userID, h.now())
	if err != nil {
		writeRecordError(w, err)
		return
	}
	h.logger.Info("interview record ended", zap.Uint("record_id", record.ID))
	utils.JSON(w, http.StatusOK, record)
}

func writeRecordError(w http.ResponseWriter, err error) {
	if errors.Is(err, repositories.ErrRecordNotFound) {
		utils.JSONError(w, http.StatusNotFound, "not_found", "Interview not found")
		return
	}
	utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to load interview")
}
