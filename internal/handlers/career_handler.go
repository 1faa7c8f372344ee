package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"saylo/internal/careers"
	"saylo/internal/models"
	"saylo/internal/repositories"
	"saylo/internal/utils"
)

const recommendedPaths = 3

type CareerHandler struct {
	catalogue *careers.Catalogue
	resumes   ResumeRepository
}

func NewCareerHandler(catalogue *careers.Catalogue, resumes ResumeRepository) *CareerHandler {
	return &CareerHandler{catalogue: catalogue, resumes: resumes}
}

func (h *CareerHandler) ListHandler(w http.ResponseWriter, _ *http.Request) {
	utils.JSON(w, http.StatusOK, h.catalogue.All())
}

// RecommendedHandler ranks career paths against the skills on a resume: the
// one named by ?resumeId, or the user's latest upload.
func (h *CareerHandler) RecommendedHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var (
		resume *models.Resume
		err    error
	)
	if raw := r.URL.Query().Get("resumeId"); raw != "" {
		id, perr := strconv.ParseUint(raw, 10, 64)
		if perr != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid_id", "resumeId must be a positive integer")
			return
		}
		resume, err = h.resumes.GetForUser(uint(id), userID)
		if errors.Is(err, repositories.ErrResumeNotFound) {
			utils.JSONError(w, http.StatusNotFound, "not_found", "Resume not found")
			return
		}
	} else {
		resume, err = h.resumes.LatestForUser(userID)
		if errors.Is(err, repositories.ErrResumeNotFound) {
			err = nil
		}
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to load resume")
		return
	}

	var skills []string
	if resume != nil && resume.ParsedData != nil {
		skills = resume.ParsedData.Skills
	}
	utils.JSON(w, http.StatusOK, h.catalogue.Recommend(skills, recommendedPaths))
}
