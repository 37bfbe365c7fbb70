package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	CORSAllowed    []string
	AdminJWTSecret string
	AdminRateLimit int

	// WhatsApp Cloud API (Messaging Gateway)
	VerifyToken     string
	WhatsAppToken   string
	PhoneNumberID   string
	GraphAPIVersion string
	AppSecret       string
	SendTimeout     time.Duration
	TypingDelay     time.Duration

	// Patient Record Store (Wix CMS)
	WixWebhookURL string
	WixTimeout    time.Duration

	// Clinic unit resolution (substring of display number -> unit name)
	UnitMapJSON string
	DefaultUnit string

	// Optional inbound dedup (Redis)
	RedisAddr     string
	RedisPassword string
	DedupTTL      time.Duration

	// Optional transcript archive (Postgres)
	DatabaseURL string

	// Optional empathetic acknowledgement (OpenAI)
	OpenAIAPIKey   string
	EmpathyTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSAllowed:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		AdminRateLimit: getEnvAsInt("ADMIN_RATE_LIMIT", 5),

		VerifyToken:     getEnv("VERIFY_TOKEN", "conectifisio_2024_seguro"),
		WhatsAppToken:   getEnv("WHATSAPP_TOKEN", ""),
		PhoneNumberID:   getEnv("PHONE_NUMBER_ID", ""),
		GraphAPIVersion: getEnv("GRAPH_API_VERSION", "v19.0"),
		AppSecret:       getEnv("WHATSAPP_APP_SECRET", ""),
		SendTimeout:     getEnvAsDuration("WHATSAPP_SEND_TIMEOUT", 10*time.Second),
		TypingDelay:     getEnvAsDuration("TYPING_DELAY", 400*time.Millisecond),

		WixWebhookURL: getEnv("WIX_WEBHOOK_URL", "https://www.ictusfisioterapia.com.br/_functions/conectifisioWebhook"),
		WixTimeout:    getEnvAsDuration("WIX_TIMEOUT", 5*time.Second),

		UnitMapJSON: getEnv("UNIT_MAP_JSON", `{"23629360":"Ipiranga"}`),
		DefaultUnit: getEnv("DEFAULT_UNIT", "SCS"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		DedupTTL:      getEnvAsDuration("DEDUP_TTL", 10*time.Minute),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		EmpathyTimeout: getEnvAsDuration("EMPATHY_TIMEOUT", 900*time.Millisecond),
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

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
