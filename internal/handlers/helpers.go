package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"saylo/internal/middleware"
	"saylo/internal/utils"
)

// currentUserID reads the authenticated user id, writing a 401 when absent.
func currentUserID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "missing user")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "invalid user id")
		return 0, false
	}
	return uint(id), true
}

func uintParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid_id", name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
