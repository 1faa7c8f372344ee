package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"saylo/internal/middleware"
	"saylo/internal/models"
	"saylo/internal/repositories"
	"saylo/internal/utils"
)

type ResumeHandler struct {
	Repo   ResumeRepository
	logger *zap.Logger
}

func NewResumeHandler(repo ResumeRepository, logger *zap.Logger) *ResumeHandler {
	return &ResumeHandler{Repo: repo, logger: logger}
}

func (h *ResumeHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	req := middleware.GetValidatedRequest[*models.CreateResumeRequest](r)

	resume := &models.Resume{UserID: userID, FileName: req.FileName, ParsedData: req.ParsedData}
	if err := h.Repo.Create(resume); err != nil {
		h.logger.Error("failed to create resume", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to save resume")
		return
	}
	utils.JSON(w, http.StatusCreated, resume)
}

func (h *ResumeHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	resumes, err := h.Repo.ListByUser(userID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to list resumes")
		return
	}
	utils.JSON(w, http.StatusOK, resumes)
}

func (h *ResumeHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := uintParam(w, r, "id")
	if !ok {
		return
	}
	resume, err := h.Repo.GetForUser(id, userID)
	if errors.Is(err, repositories.ErrResumeNotFound) {
		utils.JSONError(w, http.StatusNotFound, "not_found", "Resume not found")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to load resume")
		return
	}
	utils.JSON(w, http.StatusOK, resume)
}
