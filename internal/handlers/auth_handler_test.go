package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"saylo/internal/middleware"
	"saylo/internal/models"
	"saylo/internal/repositories"
	"saylo/internal/testhelpers"
)

type mockUserRepo struct {
	createUserFn     func(*models.User) error
	getUserByEmailFn func(string) (*models.User, error)
	getUserByIDFn    func(uint) (*models.User, error)
}

func (m *mockUserRepo) CreateUser(user *models.User) error {
	if m.createUserFn == nil {
		return nil
	}
	return m.createUserFn(user)
}

func (m *mockUserRepo) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn == nil {
		panic("unexpected call to GetUserByEmail")
	}
	return m.getUserByEmailFn(email)
}

func (m *mockUserRepo) GetUserByID(id uint) (*models.User, error) {
	if m.getUserByIDFn == nil {
		panic("unexpected call to GetUserByID")
	}
	return m.getUserByIDFn(id)
}

func newAuthHandlerWithDB(t *testing.T) *AuthHandler {
	t.Helper()
	repo := &repositories.UserRepository{DB: testhelpers.SetupTestDB(t)}
	return NewAuthHandler(repo, "test-secret", zap.NewNop())
}

func register(h *AuthHandler, body string) (int, models.AuthResponse) {
	wrapped := middleware.ValidateRequest[*models.RegisterRequest]()(http.HandlerFunc(h.RegisterHandler))
	rec := performRequest(wrapped, http.MethodPost, "/register", body)
	var resp models.AuthResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	return rec.Code, resp
}

func TestRegisterAndLogin(t *testing.T) {
	h := newAuthHandlerWithDB(t)

	code, resp := register(h, `{"name":"Ada","email":"Ada@Example.com","password":"secret1"}`)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if resp.Token == "" || resp.User == nil || resp.User.Email != "ada@example.com" {
		t.Fatalf("unexpected register response %+v", resp)
	}

	code, _ = register(h, `{"name":"Ada","email":"ada@example.com","password":"secret1"}`)
	if code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", code)
	}

	login := middleware.ValidateRequest[*models.LoginRequest]()(http.HandlerFunc(h.LoginHandler))
	rec := performRequest(login, http.MethodPost, "/login", `{"email":"ada@example.com","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var loginResp models.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&loginResp); err != nil || loginResp.Token == "" {
		t.Fatalf("expected token, got %+v (%v)", loginResp, err)
	}

	rec = performRequest(login, http.MethodPost, "/login", `{"email":"ada@example.com","password":"wrong!!"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}
	rec = performRequest(login, http.MethodPost, "/login", `{"email":"nobody@example.com","password":"secret1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(&mockUserRepo{}, "s", zap.NewNop())
	wrapped := middleware.ValidateRequest[*models.RegisterRequest]()(http.HandlerFunc(h.RegisterHandler))

	rec := performRequest(wrapped, http.MethodPost, "/register", `{"name":"","email":"bad","password":"123"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != "validation_error" || len(resp.Details) != 3 {
		t.Fatalf("expected three validation details, got %+v", resp)
	}
}

func TestRegisterRepositoryFailure(t *testing.T) {
	repo := &mockUserRepo{
		getUserByEmailFn: func(string) (*models.User, error) { return nil, repositories.ErrUserNotFound },
		createUserFn:     func(*models.User) error { return errors.New("db down") },
	}
	h := NewAuthHandler(repo, "s", zap.NewNop())
	code, _ := register(h, `{"name":"Ada","email":"ada@example.com","password":"secret1"}`)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}

	repo.getUserByEmailFn = func(string) (*models.User, error) { return nil, errors.New("db down") }
	code, _ = register(h, `{"name":"Ada","email":"ada@example.com","password":"secret1"}`)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when lookup fails, got %d", code)
	}
}

func TestVerifyHandler(t *testing.T) {
	repo := &mockUserRepo{
		getUserByIDFn: func(id uint) (*models.User, error) {
			if id == 7 {
				return &models.User{Name: "Ada", Email: "ada@example.com"}, nil
			}
			return nil, repositories.ErrUserNotFound
		},
	}
	h := NewAuthHandler(repo, "s", zap.NewNop())
	handler := http.HandlerFunc(h.VerifyHandler)

	rec := performAuthed(handler, http.MethodGet, "/verify", "", "7")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]models.User
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["user"].Email != "ada@example.com" {
		t.Fatalf("unexpected body %+v (%v)", body, err)
	}

	for _, id := range []string{"8", "abc"} {
		rec = performAuthed(handler, http.MethodGet, "/verify", "", id)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for user %s, got %d", id, rec.Code)
		}
	}

	rec = performRequest(handler, http.MethodGet, "/verify", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", rec.Code)
	}
}
