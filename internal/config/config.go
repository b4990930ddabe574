package config

import (
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/csrsef/chatbot/pkg/logger"
)

const (
	DefaultPort              = "8080"
	DefaultServerURL         = "http://localhost:8080"
	DefaultSessionCookieName = "chatbot_session"
)

// Config is the process-wide configuration. It is loaded once at startup and
// passed by value to every service that needs it.
type Config struct {
	Port string

	// Upstream chat-completion API
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Access gate. ClientPassword backs the client-only gate and is visible
	// to whoever runs the client.
	AuthPassword   string
	ClientPassword string

	// Sessions
	RedisURL            string
	RedisPassword       string
	SessionSecret       string
	SessionCookieName   string
	SessionCookieSecure bool
	RequireSession      bool

	// Client
	ServerURL string
	LogFile   string
}

// Load reads .env (if present) and the process environment into a Config.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug(logger.CONFIG, "No .env file loaded: %v", err)
	}

	cfg := Config{
		Port:                GetEnvOrDefault("PORT", DefaultPort),
		OpenAIAPIKey:        GetEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       GetEnvOrDefault("OPENAI_BASE_URL", ""),
		AuthPassword:        GetEnvOrDefault("PASSWORD", ""),
		ClientPassword:      GetEnvOrDefault("CLIENT_PASSWORD", ""),
		RedisURL:            GetEnvOrDefault("REDIS_URL", ""),
		RedisPassword:       GetEnvOrDefault("REDIS_PASSWORD", ""),
		SessionSecret:       GetEnvOrDefault("SESSION_SECRET", ""),
		SessionCookieName:   GetEnvOrDefault("SESSION_COOKIE_NAME", DefaultSessionCookieName),
		SessionCookieSecure: getEnvAsBoolOrDefault("SESSION_COOKIE_SECURE", true),
		RequireSession:      getEnvAsBoolOrDefault("REQUIRE_SESSION", false),
		ServerURL:           GetEnvOrDefault("CHATBOT_SERVER_URL", DefaultServerURL),
		LogFile:             GetEnvOrDefault("CHATBOT_LOG_FILE", ""),
	}

	if cfg.OpenAIAPIKey == "" {
		logger.Warn(logger.CONFIG, "OPENAI_API_KEY environment variable not set - relay endpoints will fail")
	}
	if cfg.AuthPassword == "" {
		logger.Warn(logger.CONFIG, "PASSWORD environment variable not set - every password will be rejected")
	}
	if cfg.SessionSecret == "" {
		// Sessions do not survive a restart without a configured secret.
		cfg.SessionSecret = uuid.New().String()
		logger.Warn(logger.CONFIG, "SESSION_SECRET not set - using a random per-process secret")
	}

	return cfg
}

// UpstreamConfigured reports whether an upstream credential is present.
func (c Config) UpstreamConfigured() bool {
	return c.OpenAIAPIKey != ""
}
