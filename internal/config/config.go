package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabasePath  string
	DefaultPhase  string
	ContextWindow int

	// LLM providers
	GeminiAPIKey       string
	GeminiModelID      string
	BedrockModelID     string
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LLMMaxTokens       int
	LLMTemperature     float64

	// Vendor data APIs
	AmadeusAPIKey    string
	AmadeusAPISecret string
	AmadeusBaseURL   string
	TavilyAPIKey     string
	TavilyBaseURL    string
	OpenMeteoBaseURL string
	VendorTimeout    time.Duration

	// Redis (pending multi-turn context for the group-chat variant)
	RedisAddr       string
	RedisPassword   string
	RedisTLS        bool
	PendingTTL      time.Duration
	PendingMaxTurns int

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Admin auth for plan status mutation
	AdminJWTSecret string

	// SendGrid email configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// AWS SES email fallback, used when SendGrid is not configured
	SESFromEmail string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabasePath:  getEnv("DATABASE_PATH", "travelmate.db"),
		DefaultPhase:  strings.ToLower(strings.TrimSpace(getEnv("DEFAULT_PHASE", "sequential"))),
		ContextWindow: getEnvAsInt("CONTEXT_WINDOW", 6),

		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:      getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		BedrockModelID:     getEnv("BEDROCK_MODEL_ID", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LLMMaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 4096),
		LLMTemperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.3),

		AmadeusAPIKey:    getEnv("AMADEUS_API_KEY", ""),
		AmadeusAPISecret: getEnv("AMADEUS_API_SECRET", ""),
		AmadeusBaseURL:   getEnv("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		TavilyAPIKey:     getEnv("TAVILY_API_KEY", ""),
		TavilyBaseURL:    getEnv("TAVILY_BASE_URL", "https://api.tavily.com"),
		OpenMeteoBaseURL: getEnv("OPEN_METEO_BASE_URL", "https://api.open-meteo.com"),
		VendorTimeout:    getEnvAsDuration("VENDOR_TIMEOUT", 15*time.Second),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLS:        getEnvAsBool("REDIS_TLS", false),
		PendingTTL:      getEnvAsDuration("PENDING_CONTEXT_TTL", 30*time.Minute),
		PendingMaxTurns: getEnvAsInt("PENDING_CONTEXT_MAX_TURNS", 10),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "TravelMate AI"),

		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
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

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice retrieves a comma-separated environment variable as a slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
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
