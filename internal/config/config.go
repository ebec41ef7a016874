package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// Language model providers
	LLMProvider             string
	LLMFallbackProvider     string
	LLMTemperature          float64
	LLMMaxTokens            int
	OpenAIAPIKey            string
	OpenAIBaseURL           string
	OpenAIModel             string
	OpenAIEmbeddingModel    string
	BedrockModelID          string
	BedrockEmbeddingModelID string
	GeminiAPIKey            string
	GeminiModelID           string

	// Outbound call gate
	LLMRateLimitRequests int
	LLMRateLimitWindow   time.Duration
	LLMCallTimeout       time.Duration

	// Screening policy
	MaxScreeningTurns   int
	MaxCriteriaSearches int
	CriteriaTopK        int

	// Session persistence
	SessionStore  string
	SessionTTL    time.Duration
	SessionTable  string
	RedisAddr     string
	RedisPassword string

	DatabaseURL         string
	ReportArchiveBucket string
	ReportEventsQueue   string

	PatientJWTSecret   string
	AdminJWTSecret     string
	CORSAllowedOrigins []string
	HTTPRateLimitRPS   float64
	HTTPRateLimitBurst int

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		LLMProvider:             strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "stub"))),
		LLMFallbackProvider:     strings.ToLower(strings.TrimSpace(getEnv("LLM_FALLBACK_PROVIDER", ""))),
		LLMTemperature:          getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:            getEnvAsInt("LLM_MAX_TOKENS", 800),
		OpenAIAPIKey:            getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:           getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:             getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIEmbeddingModel:    getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-ada-002"),
		BedrockModelID:          getEnv("BEDROCK_MODEL_ID", ""),
		BedrockEmbeddingModelID: getEnv("BEDROCK_EMBEDDING_MODEL_ID", ""),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:           getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		LLMRateLimitRequests: getEnvAsInt("LLM_RATE_LIMIT_REQUESTS", 10),
		LLMRateLimitWindow:   getEnvAsDuration("LLM_RATE_LIMIT_WINDOW", 10*time.Second),
		LLMCallTimeout:       getEnvAsDuration("LLM_CALL_TIMEOUT", 30*time.Second),

		MaxScreeningTurns:   getEnvAsInt("MAX_SCREENING_TURNS", 8),
		MaxCriteriaSearches: getEnvAsInt("MAX_CRITERIA_SEARCHES", 3),
		CriteriaTopK:        getEnvAsInt("CRITERIA_TOP_K", 3),

		SessionStore:  strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", "memory"))),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		SessionTable:  getEnv("SESSION_TABLE", "screening_sessions"),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		DatabaseURL:         getEnv("DATABASE_URL", ""),
		ReportArchiveBucket: getEnv("REPORT_ARCHIVE_BUCKET", ""),
		ReportEventsQueue:   getEnv("REPORT_EVENTS_QUEUE_URL", ""),

		PatientJWTSecret:   getEnv("PATIENT_JWT_SECRET", ""),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		HTTPRateLimitRPS:   getEnvAsFloat("HTTP_RATE_LIMIT_RPS", 5),
		HTTPRateLimitBurst: getEnvAsInt("HTTP_RATE_LIMIT_BURST", 20),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
