// File: /config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"trailcraft-api/utils"
)

// Config holds every runtime setting, read from the environment.
type Config struct {
	Port          string
	GinMode       string
	StorageDriver string
	DatabaseURL   string
	CORSOrigins   []string
	RateLimit     int

	// GraphQL submission target
	GraphQLEndpoint string
	GraphQLTimeout  time.Duration

	// Directions provider (OpenRouteService)
	ORSAPIKey                string
	ORSBaseURL               string
	RoutingProfile           string
	RoutingRequestsPerMinute int

	// DefaultAltitude is nil when points should be stored without altitude.
	DefaultAltitude *float64

	SessionIdleTimeout     time.Duration
	SessionCleanupInterval time.Duration

	NATSURL string

	// Email Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	NotifyEmail  string
}

// Load reads .env when present, then the environment, falling back to defaults.
func Load() *Config {
	// Missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "2525"))

	return &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       ginMode(getEnv("GIN_MODE", "debug")),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "memory")),
		DatabaseURL:   getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/trailcraft?charset=utf8mb4&parseTime=True&loc=Local"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		RateLimit:     getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		GraphQLEndpoint: getEnv("GRAPHQL_ENDPOINT", "http://localhost:4000/graphql"),
		GraphQLTimeout:  getEnvDuration("GRAPHQL_TIMEOUT", 30*time.Second),

		ORSAPIKey:                getEnv("ORS_API_KEY", ""),
		ORSBaseURL:               getEnv("ORS_BASE_URL", "https://api.openrouteservice.org/v2"),
		RoutingProfile:           getEnv("ROUTING_PROFILE", "foot-walking"),
		RoutingRequestsPerMinute: getEnvInt("ROUTING_REQUESTS_PER_MINUTE", 40),

		DefaultAltitude: getEnvFloatPtr("DEFAULT_ALTITUDE_METERS"),

		SessionIdleTimeout:     getEnvDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		SessionCleanupInterval: getEnvDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),

		NATSURL: getEnv("NATS_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     smtpPort,
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@trailcraft.local"),
		FromName:     getEnv("FROM_NAME", "Trailcraft"),
		NotifyEmail:  getEnv("NOTIFY_EMAIL", ""),
	}
}

// NotificationsEnabled reports whether submission emails can be sent.
func (c *Config) NotificationsEnabled() bool {
	return c.SMTPHost != "" && utils.IsValidEmail(c.NotifyEmail)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func getEnvFloatPtr(key string) *float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ginMode falls back to debug for values gin does not know.
func ginMode(mode string) string {
	switch mode = strings.ToLower(mode); mode {
	case "debug", "release", "test":
		return mode
	}
	return "debug"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
