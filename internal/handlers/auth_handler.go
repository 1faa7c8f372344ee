package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"saylo/internal/middleware"
	"saylo/internal/models"
	"saylo/internal/repositories"
	"saylo/internal/utils"
)

// AuthHandler manages authentication endpoints.
type AuthHandler struct {
	Repo      UserRepository
	JWTSecret string
	logger    *zap.Logger
	now       func() time.Time
}

func NewAuthHandler(repo UserRepository, secret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Repo: repo, JWTSecret: secret, logger: logger, now: time.Now}
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RegisterRequest](r)

	existing, err := h.Repo.GetUserByEmail(req.Email)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		h.logger.Error("failed to look up user", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to create user")
		return
	}
	if existing != nil {
		utils.JSONError(w, http.StatusConflict, "email_taken", "User already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to hash password")
		return
	}
	user := &models.User{Name: req.Name, Email: req.Email, PasswordHash: string(hash)}
	if err := h.Repo.CreateUser(user); err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to create user")
		return
	}

	token, err := utils.IssueToken(user.ID, user.Email, h.JWTSecret, h.now())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to sign token")
		return
	}
	h.logger.Info("user registered", zap.Uint("user_id", user.ID))
	utils.JSON(w, http.StatusCreated, models.AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.LoginRequest](r)

	user, err := h.Repo.GetUserByEmail(req.Email)
	if err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.JSONError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
		return
	}

	token, err := utils.IssueToken(user.ID, user.Email, h.JWTSecret, h.now())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to sign token")
		return
	}
	utils.JSON(w, http.StatusOK, models.AuthResponse{User: user, Token: token})
}

// VerifyHandler returns the user behind a valid bearer token.
func (h *AuthHandler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	user, err := h.Repo.GetUserByID(userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "user no longer exists")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to load user")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]*models.User{"user": user})
}
