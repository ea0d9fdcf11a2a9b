package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AdminToken string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CacheBackend string
	CacheMaxSize int
	CacheTTL     time.Duration

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	GeminiAPIKey     string
	GeminiBaseURL    string
	DefaultModel     string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeBaseURL       string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	ChatRateLimit  int
	ChatRateWindow time.Duration

	SeedDemoData bool
}

func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Module wires configuration loading into the fx graph.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewPlanConfigHolder),
)

// Load loads configuration from environment variables and the .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "lexora"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		AdminToken: strings.TrimSpace(getenv("ADMIN_TOKEN", "")),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "lexora"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		CacheBackend: strings.ToLower(getenv("CACHE_BACKEND", "memory")),
		CacheMaxSize: getenvInt("CACHE_MAX_SIZE", 1024),
		CacheTTL:     getenvDuration("CACHE_TTL", time.Hour),

		OpenAIAPIKey:     strings.TrimSpace(getenv("OPENAI_API_KEY", "")),
		OpenAIBaseURL:    getenv("OPENAI_BASE_URL", "https://api.openai.com"),
		AnthropicAPIKey:  strings.TrimSpace(getenv("CLAUDE_API_KEY", "")),
		AnthropicBaseURL: getenv("CLAUDE_BASE_URL", "https://api.anthropic.com"),
		GeminiAPIKey:     strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
		GeminiBaseURL:    getenv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		DefaultModel:     getenv("DEFAULT_MODEL", "gpt-4o-mini"),

		StripeSecretKey:     strings.TrimSpace(getenv("STRIPE_SECRET_KEY", "")),
		StripeWebhookSecret: strings.TrimSpace(getenv("STRIPE_WEBHOOK_SECRET", "")),
		StripeBaseURL:       getenv("STRIPE_BASE_URL", "https://api.stripe.com"),
		CheckoutSuccessURL:  getenv("CHECKOUT_SUCCESS_URL", "https://lexora.app/success"),
		CheckoutCancelURL:   getenv("CHECKOUT_CANCEL_URL", "https://lexora.app/cancel"),

		ChatRateLimit:  getenvInt("CHAT_RATE_LIMIT", 30),
		ChatRateWindow: getenvDuration("CHAT_RATE_WINDOW", time.Minute),

		SeedDemoData: getenvBool("SEED_DEMO_DATA", false),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
