package main

import (
	"context"
	"errors"
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

	"saylo/internal/config"
	"saylo/internal/database"
	"saylo/internal/events"
	"saylo/internal/handlers"
	"saylo/internal/interviewer"
	"saylo/internal/jobs"
	"saylo/internal/llm"
	_ "saylo/internal/llm/gemini"
	"saylo/internal/metrics"
	"saylo/internal/models"
	"saylo/internal/prompts"
	"saylo/internal/questionbank"
	"saylo/internal/repositories"
	"saylo/internal/routers"
)

const version = "1.0.0"

func registerRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, interviewHandler)
}

// initProvider returns nil when the interviewer should run offline.
func initProvider(cfg *config.Config, logger *zap.Logger) llm.Provider {
	if cfg.Provider == config.ProviderOffline {
		return nil
	}
	provider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Warn("AI provider unavailable, running offline", zap.String("provider", cfg.Provider), zap.Error(err))
		return nil
	}
	return provider
}

func initBank(ctx context.Context, cfg *config.Config, logger *zap.Logger) (questionbank.Bank, func()) {
	embedded, err := questionbank.NewEmbeddedBank()
	if err != nil {
		logger.Fatal("Failed to load question bank", zap.Error(err))
	}
	if cfg.MongoURI == "" {
		return embedded, func() {}
	}

	mongoBank, err := questionbank.NewMongoBank(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Warn("Mongo question bank unavailable, using embedded bank", zap.Error(err))
		return embedded, func() {}
	}
	seed, err := questionbank.LoadEmbedded()
	if err == nil {
		if n, err := mongoBank.Seed(ctx, seed); err != nil {
			logger.Warn("Failed to seed question bank", zap.Error(err))
		} else if n > 0 {
			logger.Info("Seeded question bank", zap.Int("questions", n))
		}
	}
	return mongoBank, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoBank.Close(ctx)
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig("8081")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	logger.Info("Configuration loaded", zap.String("provider", cfg.Provider))

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStartup()

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	deps := interviewer.Deps{Prompts: promptManager, Logger: logger}
	if provider := initProvider(cfg, logger); provider != nil {
		deps.Provider = provider
		if transcriber, ok := provider.(llm.Transcriber); ok {
			deps.Transcriber = transcriber
		}
	}

	bank, closeBank := initBank(startupCtx, cfg, logger)
	defer closeBank()
	deps.Bank = bank

	var readiness []handlers.DependencyCheck
	var publishers events.MultiPublisher

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(startupCtx).Err(); err != nil {
			logger.Warn("Redis unavailable, using in-memory session store", zap.Error(err))
			_ = rdb.Close()
			rdb = nil
		}
	}
	if rdb != nil {
		defer rdb.Close()
		deps.Store = interviewer.NewRedisStore(rdb, cfg.SessionTTL)
		publishers = append(publishers, events.NewRedisPublisher(rdb))
		readiness = append(readiness, handlers.DependencyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		logger.Info("Using Redis session store", zap.String("addr", cfg.RedisAddr))
	} else {
		memoryStore := interviewer.NewMemoryStore(cfg.SessionTTL)
		defer memoryStore.Close()
		deps.Store = memoryStore
	}

	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("AMQP unavailable, broker events disabled", zap.Error(err))
		} else {
			defer amqpPublisher.Close()
			publishers = append(publishers, amqpPublisher)
		}
	}
	if len(publishers) > 0 {
		deps.Publisher = publishers
	}

	var db *gorm.DB
	db, err = database.Open(cfg.Database, &models.InterviewHistory{})
	if err != nil {
		logger.Error("Failed to initialize database, interview history will be disabled", zap.Error(err))
		db = nil
	}
	var historyRepo *repositories.HistoryRepository
	if db != nil {
		historyRepo = &repositories.HistoryRepository{DB: db}
		deps.History = historyRepo
		readiness = append(readiness, handlers.DependencyCheck{Name: "database", Check: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}})
	}

	service := interviewer.NewService(deps, interviewer.Options{
		MaxQuestions: cfg.MaxQuestions,
		LLMTimeout:   cfg.LLMTimeout,
	})

	var exporterJob *jobs.TranscriptExporterJob
	if historyRepo != nil {
		exporterJob = jobs.NewTranscriptExporterJob(historyRepo, &jobs.ExporterConfig{
			Schedule:      cfg.ExportSchedule,
			ExportDir:     cfg.ExportDir,
			ExportEnabled: cfg.ExportEnabled,
		}, logger)
		if err := exporterJob.Start(); err != nil {
			logger.Error("Failed to start transcript exporter job", zap.Error(err))
		}
	}

	// sessions idle for half their TTL are ended so they still reach history
	reaperJob := jobs.NewSessionReaperJob(service, cfg.ReaperSchedule, cfg.SessionTTL/2, logger)
	if err := reaperJob.Start(); err != nil {
		logger.Error("Failed to start session reaper job", zap.Error(err))
	}

	interviewHandler := handlers.NewInterviewHandler(service, logger)
	healthHandler := handlers.NewHealthHandler("interview", version, readiness...)

	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware("interview"))

	registerRoutes(router, interviewHandler, healthHandler)

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Interview service starting",
			zap.String("addr", serverAddr),
			zap.String("provider", service.ProviderName()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	reaperJob.Stop()
	if exporterJob != nil {
		exporterJob.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
