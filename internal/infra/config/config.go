// Package config provides application-wide configuration loaded from env vars.
// All fields have safe defaults so the binary runs locally without any env setup.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for PromptForge.
type Config struct {
	// HTTP
	Host string // HOST: default: "0.0.0.0"
	Port int    // PORT: default: 8080

	// Upstream
	TogetherAPIKey  string        // TOGETHER_API_KEY: required by the raw HTTP transport
	TogetherBaseURL string        // TOGETHER_BASE_URL: SDK base, default: "https://api.together.xyz/v1"
	TogetherChatURL string        // TOGETHER_CHAT_URL: raw HTTP endpoint
	UpstreamTimeout time.Duration // UPSTREAM_TIMEOUT: default: 60s
	ProvidersFile   string        // PROVIDERS_FILE: optional YAML profile overrides

	// CORS
	AllowedOrigins []string // ALLOWED_ORIGINS: comma separated, default: "*"

	// Logging / persistence
	LogLevel    string // LOG_LEVEL: default: "info"
	LogFormat   string // LOG_FORMAT: "json" | "text", default: "json"
	ChatLogPath string // CHAT_LOG_PATH: default: "chatbot_handler.log"
	ChatDBPath  string // CHAT_DB_PATH: SQLite transcript, disabled when empty
}

const (
	envKeyHost            = "HOST"
	envKeyPort            = "PORT"
	envKeyTogetherAPIKey  = "TOGETHER_API_KEY"
	envKeyTogetherBaseURL = "TOGETHER_BASE_URL"
	envKeyTogetherChatURL = "TOGETHER_CHAT_URL"
	envKeyUpstreamTimeout = "UPSTREAM_TIMEOUT"
	envKeyProvidersFile   = "PROVIDERS_FILE"
	envKeyAllowedOrigins  = "ALLOWED_ORIGINS"
	envKeyLogLevel        = "LOG_LEVEL"
	envKeyLogFormat       = "LOG_FORMAT"
	envKeyChatLogPath     = "CHAT_LOG_PATH"
	envKeyChatDBPath      = "CHAT_DB_PATH"

	defaultPort            = 8080
	defaultUpstreamTimeout = 60 * time.Second
)

// Load reads configuration from environment variables, applying defaults for missing values.
func Load() Config {
	allowed, ok := os.LookupEnv(envKeyAllowedOrigins)
	if !ok {
		allowed = "*"
	}

	return Config{
		Host:            envOr(envKeyHost, "0.0.0.0"),
		Port:            envInt(envKeyPort, defaultPort),
		TogetherAPIKey:  strings.TrimSpace(os.Getenv(envKeyTogetherAPIKey)),
		TogetherBaseURL: envOr(envKeyTogetherBaseURL, "https://api.together.xyz/v1"),
		TogetherChatURL: envOr(envKeyTogetherChatURL, "https://api.together.xyz/v1/chat/completions"),
		UpstreamTimeout: envDuration(envKeyUpstreamTimeout, defaultUpstreamTimeout),
		ProvidersFile:   os.Getenv(envKeyProvidersFile),
		AllowedOrigins:  ParseAllowedOrigins(allowed),
		LogLevel:        envOr(envKeyLogLevel, "info"),
		LogFormat:       envOr(envKeyLogFormat, "json"),
		ChatLogPath:     envOr(envKeyChatLogPath, "chatbot_handler.log"),
		ChatDBPath:      os.Getenv(envKeyChatDBPath),
	}
}

// ParseAllowedOrigins splits a comma-separated allow-list and trims each entry.
// "*" allows every origin; a value made only of commas or blanks allows none.
func ParseAllowedOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "*" {
		return []string{"*"}
	}

	out := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		if o := strings.TrimSpace(origin); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt parses key as a positive integer, or returns fallback.
func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// envDuration parses key with time.ParseDuration, or returns fallback.
func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
