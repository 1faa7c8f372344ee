package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Providers understood by AI_PROVIDER. "offline" runs the interviewer on the
// local question bank and heuristic scoring only.
const (
	ProviderGemini  = "gemini"
	ProviderOffline = "offline"
)

// app config shared by the interview service and the backend
type Config struct {
	Provider       string
	Port           string
	AllowedOrigins []string
	JWTSecret      string

	Database DatabaseConfig

	RedisAddr    string
	AMQPURL      string
	AMQPExchange string
	MongoURI     string
	MongoDB      string

	MaxQuestions int
	SessionTTL   time.Duration
	LLMTimeout   time.Duration

	ExportEnabled  bool
	ExportSchedule string
	ExportDir      string
	ReaperSchedule string
}

type DatabaseConfig struct {
	Driver   string // postgres | sqlite
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
	Path     string // sqlite file
}

func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// loads configuration from environment variables, after an optional .env file
func LoadConfig(defaultPort string) (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Provider:       getEnvOrDefault("AI_PROVIDER", ProviderGemini),
		Port:           getEnvOrDefault("PORT", defaultPort),
		AllowedOrigins: splitList(getEnvOrDefault("FRONTEND_ORIGIN", "http://localhost:5173")),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", "dev"),
		Database: DatabaseConfig{
			Driver:   getEnvOrDefault("DB_DRIVER", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			User:     getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Name:     getEnvOrDefault("POSTGRES_DB", "postgres"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
			SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
			Path:     getEnvOrDefault("SQLITE_PATH", "saylo.db"),
		},
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		AMQPURL:        os.Getenv("AMQP_URL"),
		AMQPExchange:   getEnvOrDefault("AMQP_EXCHANGE", "interview.events"),
		MongoURI:       os.Getenv("MONGO_URI"),
		MongoDB:        getEnvOrDefault("MONGO_DB", "saylo"),
		MaxQuestions:   getEnvInt("INTERVIEW_MAX_QUESTIONS", 5),
		SessionTTL:     getEnvDuration("INTERVIEW_SESSION_TTL", 2*time.Hour),
		LLMTimeout:     getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		ExportEnabled:  getEnvOrDefault("TRANSCRIPT_EXPORT_ENABLED", "false") == "true",
		ExportSchedule: getEnvOrDefault("TRANSCRIPT_EXPORT_SCHEDULE", "0 2 * * *"),
		ExportDir:      getEnvOrDefault("TRANSCRIPT_EXPORT_DIR", "./exports"),
		ReaperSchedule: getEnvOrDefault("SESSION_REAPER_SCHEDULE", "@every 10m"),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != ProviderGemini && config.Provider != ProviderOffline {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini, offline")
	}
	if config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
		return errors.New("unsupported DB_DRIVER: " + config.Database.Driver)
	}
	if config.MaxQuestions < 1 {
		return errors.New("INTERVIEW_MAX_QUESTIONS must be at least 1")
	}
	// Gemini validation is handled by gemini.NewConfig()
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
