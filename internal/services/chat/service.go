package chat

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/csrsef/chatbot/internal/services/chat/models"
)

// Service defines the interface for relay operations
type Service interface {
	// Ready returns a ConfigurationError when no upstream is configured
	Ready() error
	// Relay forwards one message upstream under the given profile
	Relay(ctx context.Context, profile models.Profile, req models.RelayRequest) (*models.RelayResponse, error)
}

// Completer is the upstream chat-completion call.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}
