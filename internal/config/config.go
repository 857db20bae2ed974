// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
	RequestTimeout time.Duration
}

// VoiceConfig holds settings for the external call-handling service.
type VoiceConfig struct {
	// BaseURL of the call-initiation API. Empty disables outbound calls.
	BaseURL string
	// CallbackURL the external service hits with the inbound webhook.
	CallbackURL string
	// Timeout for outbound call-initiation requests.
	Timeout time.Duration
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Voice          *VoiceConfig
	MongoURI       string
	JWTSecret      string
	AllowedOrigins []string
	SweepInterval  time.Duration
	Debug          bool
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
		RequestTimeout: 5 * time.Second,
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Silent failure if no .env exists, which is fine
	_ = godotenv.Load()

	serverConfig := DefaultConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	if timeoutStr := os.Getenv("REQUEST_TIMEOUT_SECONDS"); timeoutStr != "" {
		if secs, err := strconv.Atoi(timeoutStr); err == nil && secs > 0 {
			serverConfig.RequestTimeout = time.Duration(secs) * time.Second
		}
	}

	voiceConfig := &VoiceConfig{
		BaseURL:     os.Getenv("VOICE_SERVICE_URL"),
		CallbackURL: getEnvOrDefault("VOICE_CALLBACK_URL", "http://localhost:8080/webhook/voice"),
		Timeout:     10 * time.Second,
	}
	if timeoutStr := os.Getenv("VOICE_TIMEOUT_SECONDS"); timeoutStr != "" {
		if secs, err := strconv.Atoi(timeoutStr); err == nil && secs > 0 {
			voiceConfig.Timeout = time.Duration(secs) * time.Second
		}
	}

	config := &Config{
		Server:         serverConfig,
		Voice:          voiceConfig,
		MongoURI:       os.Getenv("MONGODB_URI"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", "commons-hub-dev-secret"),
		AllowedOrigins: []string{"*"},
		SweepInterval:  time.Hour,
		Debug:          false,
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if sweepStr := os.Getenv("SWEEP_INTERVAL_MINUTES"); sweepStr != "" {
		if mins, err := strconv.Atoi(sweepStr); err == nil && mins > 0 {
			config.SweepInterval = time.Duration(mins) * time.Minute
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		config.Debug = true
	}

	return config, nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
