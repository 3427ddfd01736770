package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	DatabaseURL     string
	Env             string

	OracleProvider  string
	OracleModel     string
	OracleTimeout   time.Duration
	OracleCacheSize int
	// OracleCacheTTL is how long a cached extraction is served. Experience
	// months are recomputed on every hit; other fields stay as first extracted.
	OracleCacheTTL      time.Duration
	GoogleCloudProject  string
	GoogleCloudLocation string
	OpenAIAPIKey        string

	BatchConcurrency      int
	MaxBatchDocuments     int
	MaxUploadBytes        int64
	HistoryRecordFailures bool

	PaymentWebhookSecret string
	SweepInterval        time.Duration
}

// maxBatchConcurrency bounds oracle calls in flight for one batch.
const maxBatchConcurrency = 3

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,
		Env:             env,

		OracleProvider:      normalizeProvider(getEnv("ORACLE_PROVIDER", "gemini")),
		OracleModel:         getEnv("ORACLE_MODEL", ""),
		OracleTimeout:       getDuration("ORACLE_TIMEOUT", 90*time.Second),
		OracleCacheSize:     getInt("ORACLE_CACHE_SIZE", 256),
		OracleCacheTTL:      getDuration("ORACLE_CACHE_TTL", 30*time.Minute),
		GoogleCloudProject:  getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation: getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),

		BatchConcurrency:      clampInt("BATCH_CONCURRENCY", getInt("BATCH_CONCURRENCY", maxBatchConcurrency), 1, maxBatchConcurrency),
		MaxBatchDocuments:     getInt("MAX_BATCH_DOCUMENTS", 10),
		MaxUploadBytes:        int64(getInt("MAX_UPLOAD_BYTES", 10<<20)),
		HistoryRecordFailures: getBool("HISTORY_RECORD_FAILURES", false),

		PaymentWebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		SweepInterval:        getDuration("SWEEP_INTERVAL", time.Hour),
	}
}

// IsDevLike reports whether env allows in-memory fallbacks and dev routes.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func clampInt(key string, val, lo, hi int) int {
	switch {
	case val < lo:
		log.Printf("config: %s=%d below %d, using %d", key, val, lo, lo)
		return lo
	case val > hi:
		log.Printf("config: %s=%d above %d, using %d", key, val, hi, hi)
		return hi
	}
	return val
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config: %s invalid bool %q, using %t", key, raw, def)
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config: %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
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
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "vertex", "vertexai":
		return "gemini"
	case "openai":
		return "openai"
	default:
		return "placeholder"
	}
}
