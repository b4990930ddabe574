package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csrsef/chatbot/internal/config"
	infraopenai "github.com/csrsef/chatbot/internal/infrastructure/openai"
	"github.com/csrsef/chatbot/internal/services/chat/models"
)

// fakeCompleter records every request and replies with a canned response.
type fakeCompleter struct {
	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
	response openai.ChatCompletionResponse
	err      error
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.response, f.err
}

func replyWith(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func TestRelay(t *testing.T) {
	tests := []struct {
		name        string
		profile     models.Profile
		message     string
		response    openai.ChatCompletionResponse
		wantReply   string
		wantModel   string
		wantContent string
	}{
		{
			name:        "chat relays message verbatim",
			profile:     models.ChatProfile,
			message:     "hello",
			response:    replyWith("hi"),
			wantReply:   "hi",
			wantModel:   "gpt-4o",
			wantContent: "hello",
		},
		{
			name:        "whitespace message is forwarded",
			profile:     models.ChatProfile,
			message:     "  ",
			response:    replyWith("?"),
			wantReply:   "?",
			wantModel:   "gpt-4o",
			wantContent: "  ",
		},
		{
			name:        "prompt appends meta-prompt suffix",
			profile:     models.PromptProfile,
			message:     "I am stressed about exams.",
			response:    replyWith("You are a counselor..."),
			wantReply:   "You are a counselor...",
			wantModel:   "gpt-4o-mini",
			wantContent: "I am stressed about exams." + models.MetaPromptSuffix,
		},
		{
			name:        "no choices falls back",
			profile:     models.ChatProfile,
			message:     "hello",
			response:    openai.ChatCompletionResponse{},
			wantReply:   models.NoResponseReply,
			wantModel:   "gpt-4o",
			wantContent: "hello",
		},
		{
			name:        "empty content falls back",
			profile:     models.ChatProfile,
			message:     "hello",
			response:    replyWith(""),
			wantReply:   models.NoResponseReply,
			wantModel:   "gpt-4o",
			wantContent: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{response: tt.response}
			service := NewService(completer)

			resp, err := service.Relay(context.Background(), tt.profile, models.RelayRequest{Message: tt.message})
			require.NoError(t, err)
			assert.Equal(t, tt.wantReply, resp.Reply)

			require.Len(t, completer.requests, 1)
			sent := completer.requests[0]
			assert.Equal(t, tt.wantModel, sent.Model)
			assert.InDelta(t, 0.7, sent.Temperature, 0.0001)
			require.Len(t, sent.Messages, 1)
			assert.Equal(t, openai.ChatMessageRoleUser, sent.Messages[0].Role)
			assert.Equal(t, tt.wantContent, sent.Messages[0].Content)
		})
	}
}

func TestRelayEmptyMessageNeverCallsUpstream(t *testing.T) {
	completer := &fakeCompleter{response: replyWith("unused")}
	service := NewService(completer)

	for _, profile := range []models.Profile{models.ChatProfile, models.PromptProfile} {
		_, err := service.Relay(context.Background(), profile, models.RelayRequest{})

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, MessageRequired, validationErr.Message)
	}

	assert.Empty(t, completer.requests)
}

func TestRelayWithoutUpstream(t *testing.T) {
	service := NewService(nil)

	var configErr *ConfigurationError
	assert.ErrorAs(t, service.Ready(), &configErr)

	_, err := service.Relay(context.Background(), models.ChatProfile, models.RelayRequest{Message: "hello"})
	assert.ErrorAs(t, err, &configErr)
	assert.Equal(t, "OPENAI_API_KEY", configErr.Setting)
}

func TestRelayClassifiesNonHTTPFailures(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("connection reset")}
	service := NewService(completer)

	_, err := service.Relay(context.Background(), models.ChatProfile, models.RelayRequest{Message: "hello"})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.EqualError(t, transportErr.Unwrap(), "connection reset")
}

// newUpstream starts a fake chat-completion API and returns a relay wired to it.
func newUpstream(t *testing.T, handler http.HandlerFunc) *Implementation {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	openAIService := infraopenai.NewService(config.Config{
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: server.URL + "/v1",
	})
	require.NotNil(t, openAIService)
	return NewService(openAIService)
}

func TestRelayAgainstUpstreamAPI(t *testing.T) {
	t.Run("sends one request with bearer credential", func(t *testing.T) {
		var calls int
		var captured map[string]interface{}

		service := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &captured))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"cmpl-1","choices":[{"index":0,"message":{"role":"assistant","content":"hi"}}]}`))
		})

		resp, err := service.Relay(context.Background(), models.ChatProfile, models.RelayRequest{Message: "hello"})
		require.NoError(t, err)
		assert.Equal(t, "hi", resp.Reply)
		assert.Equal(t, 1, calls)

		assert.Equal(t, "gpt-4o", captured["model"])
		assert.InDelta(t, 0.7, captured["temperature"], 0.0001)
		messages, ok := captured["messages"].([]interface{})
		require.True(t, ok)
		require.Len(t, messages, 1)
		first := messages[0].(map[string]interface{})
		assert.Equal(t, "user", first["role"])
		assert.Equal(t, "hello", first["content"])
	})

	t.Run("structured upstream error keeps status and body", func(t *testing.T) {
		service := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
		})

		_, err := service.Relay(context.Background(), models.ChatProfile, models.RelayRequest{Message: "hello"})

		var upstreamErr *UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, http.StatusTooManyRequests, upstreamErr.StatusCode)
		assert.Contains(t, upstreamErr.Body, "Rate limit reached")
		assert.Contains(t, upstreamErr.Error(), "OpenAI API error: ")
	})

	t.Run("structured upstream error body is forwarded byte for byte", func(t *testing.T) {
		body := `{"error":{"message":"bad","type":"invalid_request_error","param":null,"code":null,"extra":"x"}}`
		service := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(body))
		})

		_, err := service.Relay(context.Background(), models.ChatProfile, models.RelayRequest{Message: "hello"})

		status, message := HTTPStatus(err)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "OpenAI API error: "+body, message)
	})

	t.Run("unstructured upstream error keeps raw body", func(t *testing.T) {
		service := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("upstream down"))
		})

		_, err := service.Relay(context.Background(), models.ChatProfile, models.RelayRequest{Message: "hello"})

		var upstreamErr *UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, http.StatusServiceUnavailable, upstreamErr.StatusCode)
		assert.Equal(t, "upstream down", upstreamErr.Body)
		assert.Equal(t, "OpenAI API error: upstream down", upstreamErr.Error())
	})

	t.Run("unreachable upstream is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		service := NewService(infraopenai.NewService(config.Config{
			OpenAIAPIKey:  "sk-test",
			OpenAIBaseURL: url + "/v1",
		}))

		_, err := service.Relay(context.Background(), models.ChatProfile, models.RelayRequest{Message: "hello"})

		var transportErr *TransportError
		assert.ErrorAs(t, err, &transportErr)
	})
}
