package main

import (
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"saylo/internal/careers"
	"saylo/internal/config"
	"saylo/internal/database"
	"saylo/internal/handlers"
	"saylo/internal/repositories"
)

func swapOpenDB(t *testing.T, fn func(config.DatabaseConfig, ...interface{}) (*gorm.DB, error)) {
	t.Helper()
	orig := openDB
	openDB = fn
	t.Cleanup(func() { openDB = orig })
}

func TestConnectWithRetrySuccess(t *testing.T) {
	var calls int32
	swapOpenDB(t, func(cfg config.DatabaseConfig, models ...interface{}) (*gorm.DB, error) {
		atomic.AddInt32(&calls, 1)
		return database.Open(cfg, models...)
	})

	db, err := connectWithRetry(config.DatabaseConfig{Driver: "sqlite", Path: "file:retry-ok?mode=memory&cache=shared"}, time.Second, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, db.Migrator().HasTable("users"))
}

func TestConnectWithRetryRecovers(t *testing.T) {
	var calls int32
	swapOpenDB(t, func(cfg config.DatabaseConfig, models ...interface{}) (*gorm.DB, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, errors.New("connection refused")
		}
		return database.Open(cfg, models...)
	})

	_, err := connectWithRetry(config.DatabaseConfig{Driver: "sqlite", Path: "file:retry-recover?mode=memory&cache=shared"}, 5*time.Second, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestConnectWithRetryFailure(t *testing.T) {
	swapOpenDB(t, func(config.DatabaseConfig, ...interface{}) (*gorm.DB, error) {
		return nil, errors.New("connect failed")
	})

	_, err := connectWithRetry(config.DatabaseConfig{Driver: "sqlite"}, 200*time.Millisecond, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect failed")
}

func TestRegisterRoutes(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: "file:routes?mode=memory&cache=shared"})
	require.NoError(t, err)
	catalogue, err := careers.LoadEmbedded()
	require.NoError(t, err)

	logger := zap.NewNop()
	resumes := &repositories.ResumeRepository{DB: db}
	h := backendHandlers{
		auth:    handlers.NewAuthHandler(&repositories.UserRepository{DB: db}, "secret", logger),
		resumes: handlers.NewResumeHandler(resumes, logger),
		records: handlers.NewRecordHandler(&repositories.InterviewRecordRepository{DB: db}, logger),
		careers: handlers.NewCareerHandler(catalogue, resumes),
		health:  handlers.NewHealthHandler("backend", version),
	}

	router := chi.NewRouter()
	registerRoutes(router, h, "secret")

	routes := map[string]bool{}
	err = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	for _, want := range []string{
		"GET /healthz",
		"GET /readyz",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"GET /api/v1/auth/verify",
		"POST /api/v1/resumes/",
		"POST /api/v1/interviews/{id}/end",
		"GET /api/v1/career-paths/",
		"GET /api/v1/career-paths/recommended",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}
