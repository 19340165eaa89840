package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StorageConfig selects where uploaded document bytes are kept.
// Backend is either "local" (a directory on disk) or "minio".
type StorageConfig struct {
	Backend   string
	LocalPath string
	MinIO     MinIOConfig
}

// GeminiConfig holds credentials shared by the Gemini-backed collaborators.
type GeminiConfig struct {
	APIKey string
}

// ExtractorConfig selects the text extraction collaborator ("local" or "gemini").
type ExtractorConfig struct {
	Provider    string
	GeminiModel string
}

// GeneratorConfig selects the text generation collaborator ("gemini" or "ollama").
type GeneratorConfig struct {
	Provider    string
	GeminiModel string
	OllamaURL   string
	OllamaModel string
}

// CollaboratorConfig bounds every call made to an external AI collaborator.
// Calls are attempted exactly once.
type CollaboratorConfig struct {
	Timeout             time.Duration
	RateLimitRPS        float64
	RateBurst           int
	BreakerEnabled      bool
	BreakerMinRequests  int
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	// AppHost is the bind interface; empty listens on all interfaces.
	AppHost          string
	Port             string
	LogLevel         string
	Timezone         string
	CORSAllowOrigins string
	MaxUploadMB      int
	Database         DatabaseConfig
	Storage          StorageConfig
	Gemini           GeminiConfig
	Extractor        ExtractorConfig
	Generator        GeneratorConfig
	Collaborators    CollaboratorConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:          getEnv("APP_HOST", ""),
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Timezone:         getEnv("APP_TIMEZONE", "UTC"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		MaxUploadMB:      getEnvInt("MAX_UPLOAD_MB", 20),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Backend:   strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
		},
		Extractor: ExtractorConfig{
			Provider:    strings.ToLower(getEnv("EXTRACTOR_PROVIDER", "local")),
			GeminiModel: getEnv("EXTRACTOR_GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Generator: GeneratorConfig{
			Provider:    strings.ToLower(getEnv("GENERATOR_PROVIDER", "gemini")),
			GeminiModel: getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			OllamaURL:   getEnv("OLLAMA_URL", "http://127.0.0.1:11434"),
			OllamaModel: getEnv("OLLAMA_MODEL", "llama3.1:8b"),
		},
		Collaborators: CollaboratorConfig{
			Timeout:             getEnvDuration("COLLAB_TIMEOUT", 60*time.Second),
			RateLimitRPS:        getEnvFloat("COLLAB_RATE_LIMIT_RPS", 0),
			RateBurst:           getEnvInt("COLLAB_RATE_BURST", 1),
			BreakerEnabled:      getEnvBool("COLLAB_BREAKER_ENABLED", true),
			BreakerMinRequests:  getEnvInt("COLLAB_BREAKER_MIN_REQUESTS", 5),
			BreakerFailureRatio: getEnvFloat("COLLAB_BREAKER_FAILURE_RATIO", 0.6),
			BreakerOpenTimeout:  getEnvDuration("COLLAB_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("90s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
