package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	ObjectStoreLocal = "local"
	ObjectStoreS3    = "s3"
	ObjectStoreGCS   = "gcs"
)

// Config holds application configuration. It is loaded once at startup and
// passed down by value.
type Config struct {
	Env             string
	Port            string
	CORSAllowOrigin []string
	LogLevel        string

	StoreBackend string
	DatabaseURL  string
	MongoURI     string
	MongoDB      string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	GCSBucket       string
	GCSPrefix       string

	Engine EngineConfig

	JWTSecret string

	EngineRateLimitRPS   float64
	EngineRateLimitBurst int
}

// EngineConfig configures the analysis engine client and its retry policy.
type EngineConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Load reads configuration from environment variables with sensible
// defaults. Values in .env files fill in variables that are not already set.
func Load() Config {
	_ = godotenv.Load(existing(".env", "cmd/.env")...)

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	mongoURI := strings.TrimSpace(os.Getenv("MONGO_URI"))

	return Config{
		Env:             env,
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		StoreBackend: resolveStoreBackend(getEnv("STORE_BACKEND", "auto"), dbURL, mongoURI),
		DatabaseURL:  dbURL,
		MongoURI:     mongoURI,
		MongoDB:      getEnv("MONGO_DB", "resume_intel"),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", ObjectStoreLocal)),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		GCSBucket:       getEnv("GCS_BUCKET", ""),
		GCSPrefix:       getEnv("GCS_PREFIX", ""),

		Engine: EngineConfig{
			BaseURL:    getEnv("AI_SERVICE_URL", "http://localhost:8000"),
			APIKey:     getEnv("AI_SERVICE_API_KEY", ""),
			Timeout:    time.Duration(getEnvInt("AI_SERVICE_TIMEOUT_SECONDS", 60)) * time.Second,
			MaxRetries: getEnvInt("AI_SERVICE_MAX_RETRIES", 2),
		},

		JWTSecret: getEnv("JWT_SECRET", ""),

		EngineRateLimitRPS:   getEnvFloat("RATE_LIMIT_ENGINE_RPS", 1),
		EngineRateLimitBurst: getEnvInt("RATE_LIMIT_ENGINE_BURST", 5),
	}
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("STORE_BACKEND=mongo requires MONGO_URI")
		}
	case StoreMemory:
		if c.Env == "production" {
			return fmt.Errorf("in-memory store is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.ObjectStoreType {
	case ObjectStoreS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
	case ObjectStoreGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("OBJECT_STORE=gcs requires GCS_BUCKET")
		}
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("AI_SERVICE_TIMEOUT_SECONDS must be positive")
	}
	if c.Engine.MaxRetries < 0 {
		return fmt.Errorf("AI_SERVICE_MAX_RETRIES must not be negative")
	}
	return nil
}

func existing(paths ...string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

// resolveStoreBackend picks postgres, then mongo, then memory when the
// backend is "auto".
func resolveStoreBackend(raw, dbURL, mongoURI string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg", "postgresql":
		return StorePostgres
	case "mongo", "mongodb":
		return StoreMongo
	case "memory", "mem":
		return StoreMemory
	case "auto", "":
		switch {
		case dbURL != "":
			return StorePostgres
		case mongoURI != "":
			return StoreMongo
		default:
			return StoreMemory
		}
	default:
		return strings.ToLower(strings.TrimSpace(raw))
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return ObjectStoreS3
	case "gcs", "gs":
		return ObjectStoreGCS
	default:
		return ObjectStoreLocal
	}
}
