package services

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/csrsef/chatbot/internal/config"
	"github.com/csrsef/chatbot/internal/connections"
	"github.com/csrsef/chatbot/internal/infrastructure/openai"
	"github.com/csrsef/chatbot/internal/infrastructure/redis"
	"github.com/csrsef/chatbot/internal/services/auth"
	"github.com/csrsef/chatbot/internal/services/chat"
	"github.com/csrsef/chatbot/internal/services/session"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	config            config.Config
	authGate          *auth.Gate
	chatService       *chat.Implementation
	connectionManager *connections.Manager
	openAIService     *openai.Service
	redisService      *redis.Service
	sessionService    *session.Service
}

// InitializeServices wires every service from cfg. A missing upstream
// credential is not fatal: the relay routes report it per request.
func InitializeServices(cfg config.Config) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	// Initialize Redis service (optional)
	redisService := redis.NewService(cfg)
	log.Info().Bool("available", redisService != nil).Msg("Initializing Redis service")

	// Initialize session service with optional Redis
	sessionService := session.NewService(cfg, redisService)
	log.Info().Msg("Initializing session service")

	// Initialize OpenAI service (optional, relay fails per request without it)
	openAIService := openai.NewService(cfg)
	var completer chat.Completer
	if openAIService != nil {
		completer = openAIService
	} else {
		log.Warn().Msg("OpenAI service unavailable - relay routes will answer 500")
	}

	chatService := chat.NewService(completer)
	log.Info().Msg("Initializing chat service")

	authGate := auth.NewGate(cfg.AuthPassword)
	log.Info().Msg("Initializing auth gate")

	connectionManager := connections.NewManager(connections.DefaultTimeouts)

	log.Info().Msg("All services initialized successfully")

	return &Services{
		config:            cfg,
		authGate:          authGate,
		chatService:       chatService,
		connectionManager: connectionManager,
		openAIService:     openAIService,
		redisService:      redisService,
		sessionService:    sessionService,
	}, nil
}

// Config returns the configuration the services were built from
func (s *Services) Config() config.Config {
	return s.config
}

// GetAuthGate returns the password gate
func (s *Services) GetAuthGate() *auth.Gate {
	return s.authGate
}

// GetChatService returns the relay service
func (s *Services) GetChatService() chat.Service {
	return s.chatService
}

// GetConnectionManager returns the websocket connection manager
func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connectionManager
}

// GetSessionService returns the session service
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

// Close releases external connections.
func (s *Services) Close() {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	if s.redisService != nil {
		if err := s.redisService.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
}
