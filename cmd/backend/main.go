package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"saylo/internal/careers"
	"saylo/internal/config"
	"saylo/internal/database"
	"saylo/internal/events"
	"saylo/internal/handlers"
	"saylo/internal/metrics"
	"saylo/internal/models"
	"saylo/internal/repositories"
	"saylo/internal/routers"
)

const version = "1.0.0"

var openDB = database.Open

// connectWithRetry keeps trying until the database accepts connections or
// the deadline passes. Postgres usually comes up after the app under compose.
func connectWithRetry(cfg config.DatabaseConfig, maxWait time.Duration, logger *zap.Logger) (*gorm.DB, error) {
	deadline := time.Now().Add(maxWait)
	backoff := 100 * time.Millisecond
	for {
		db, err := openDB(cfg, &models.User{}, &models.Resume{}, &models.InterviewRecord{})
		if err == nil {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			err = database.Ping(pingCtx, db)
			cancel()
			if err == nil {
				return db, nil
			}
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("database not ready after %s: %w", maxWait, err)
		}
		logger.Warn("database not ready, retrying", zap.Duration("backoff", backoff), zap.Error(err))
		time.Sleep(backoff)
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
}

type backendHandlers struct {
	auth    *handlers.AuthHandler
	resumes *handlers.ResumeHandler
	records *handlers.RecordHandler
	careers *handlers.CareerHandler
	health  *handlers.HealthHandler
}

func registerRoutes(router *chi.Mux, h backendHandlers, secret string) {
	routers.HealthRoutes(router, h.health)
	routers.AuthRoutes(router, h.auth)
	routers.ResumeRoutes(router, h.resumes, secret)
	routers.RecordRoutes(router, h.records, secret)
	routers.CareerRoutes(router, h.careers, secret)
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig("5000")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := connectWithRetry(cfg.Database, 30*time.Second, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	catalogue, err := careers.LoadEmbedded()
	if err != nil {
		logger.Fatal("Failed to load career catalogue", zap.Error(err))
	}

	userRepo := &repositories.UserRepository{DB: db}
	resumeRepo := &repositories.ResumeRepository{DB: db}
	recordRepo := &repositories.InterviewRecordRepository{DB: db}

	readiness := []handlers.DependencyCheck{{Name: "database", Check: func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}}}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		readiness = append(readiness, handlers.DependencyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		go events.NewFeedbackSubscriber(rdb, recordRepo, logger).Run(ctx)
	}

	h := backendHandlers{
		auth:    handlers.NewAuthHandler(userRepo, cfg.JWTSecret, logger),
		resumes: handlers.NewResumeHandler(resumeRepo, logger),
		records: handlers.NewRecordHandler(recordRepo, logger),
		careers: handlers.NewCareerHandler(catalogue, resumeRepo),
		health:  handlers.NewHealthHandler("backend", version, readiness...),
	}

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware("backend"))

	registerRoutes(router, h, cfg.JWTSecret)

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Backend listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Backend shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}
