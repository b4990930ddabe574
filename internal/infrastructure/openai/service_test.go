package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csrsef/chatbot/internal/config"
)

func newTestService(t *testing.T, status int, body string) *Service {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	service := NewService(config.Config{OpenAIAPIKey: "sk-test", OpenAIBaseURL: server.URL + "/v1"})
	require.NotNil(t, service)
	return service
}

func TestNewServiceWithoutKey(t *testing.T) {
	assert.Nil(t, NewService(config.Config{}))
}

func TestCreateChatCompletion(t *testing.T) {
	t.Run("success passes through", func(t *testing.T) {
		service := newTestService(t, http.StatusOK, `{"id":"cmpl-1","choices":[{"index":0,"message":{"role":"assistant","content":"hi"}}]}`)

		resp, err := service.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: "gpt-4o"})
		require.NoError(t, err)
		require.Len(t, resp.Choices, 1)
		assert.Equal(t, "hi", resp.Choices[0].Message.Content)
	})

	t.Run("error body kept verbatim", func(t *testing.T) {
		body := `{"error":{"message":"bad","type":"invalid_request_error","param":null,"code":null,"extra":"x"}}`
		service := newTestService(t, http.StatusBadRequest, body)

		_, err := service.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: "gpt-4o"})

		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		status, raw := httpErr.UpstreamBody()
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, body, raw)

		// The client still decodes the same body.
		var apiErr *openai.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "bad", apiErr.Message)
	})

	t.Run("non-json error body kept verbatim", func(t *testing.T) {
		service := newTestService(t, http.StatusBadGateway, "upstream down")

		_, err := service.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: "gpt-4o"})

		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
		assert.Equal(t, "upstream down", httpErr.Body)
	})
}
