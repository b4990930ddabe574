package chat

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai"

	"github.com/csrsef/chatbot/internal/services/chat/models"
	"github.com/csrsef/chatbot/pkg/logger"
)

type Implementation struct {
	completer Completer
	validate  *validator.Validate
}

// NewService builds the relay. A nil completer leaves the relay unconfigured:
// every call fails with a ConfigurationError.
func NewService(completer Completer) *Implementation {
	return &Implementation{
		completer: completer,
		// use a single instance of Validate, it caches struct info
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Implementation) Ready() error {
	if s.completer == nil {
		return &ConfigurationError{Setting: "OPENAI_API_KEY"}
	}
	return nil
}

func (s *Implementation) Relay(ctx context.Context, profile models.Profile, req models.RelayRequest) (*models.RelayResponse, error) {
	if err := s.Ready(); err != nil {
		logger.Error(logger.CHAT, "Relay called without upstream configuration: %v", err)
		return nil, err
	}

	if err := s.validate.Struct(req); err != nil {
		logger.Warn(logger.CHAT, "Relay request validation failed: %v", err)
		return nil, &ValidationError{Message: MessageRequired}
	}

	logger.Debug(logger.CHAT, "Relaying %s message (%d bytes) to %s", profile.Route, len(req.Message), profile.Model)

	resp, err := s.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: profile.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: profile.Content(req.Message),
			},
		},
		Temperature: profile.Temperature,
	})
	if err != nil {
		classified := classifyUpstreamError(err)
		logger.Error(logger.CHAT, "Upstream %s completion failed: %v", profile.Route, classified)
		return nil, classified
	}

	reply := models.NoResponseReply
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		reply = resp.Choices[0].Message.Content
	} else {
		logger.Warn(logger.CHAT, "Upstream %s completion returned no content", profile.Route)
	}

	logger.Debug(logger.CHAT, "Upstream %s completion used %d tokens", profile.Route, resp.Usage.TotalTokens)

	return &models.RelayResponse{Reply: reply}, nil
}
