package openai

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/sashabaranov/go-openai"

	"github.com/csrsef/chatbot/internal/config"
	"github.com/csrsef/chatbot/pkg/logger"
)

// Service owns the single upstream chat-completion client.
type Service struct {
	mu     sync.RWMutex
	client *openai.Client
}

// NewService returns nil when no upstream credential is configured.
func NewService(cfg config.Config) *Service {
	logger.Info(logger.SERVICE, "Initialising OpenAI service")

	if !cfg.UpstreamConfigured() {
		logger.Warn(logger.SERVICE, "OpenAI service not configured - OPENAI_API_KEY missing")
		return nil
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		logger.Info(logger.SERVICE, "Using custom OpenAI base URL: %s", cfg.OpenAIBaseURL)
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}
	clientConfig.HTTPClient = &errorBodyRecorder{next: clientConfig.HTTPClient}

	return &Service{
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (s *Service) GetClient() *openai.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// CreateChatCompletion issues one non-streaming completion request. A
// non-success answer comes back as an *HTTPError holding the body exactly as
// the upstream sent it.
func (s *Service) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	recorded := &errorBody{}
	resp, err := s.GetClient().CreateChatCompletion(context.WithValue(ctx, errorBodyKey{}, recorded), req)
	if err != nil && recorded.captured {
		return resp, &HTTPError{StatusCode: recorded.status, Body: string(recorded.body), Err: err}
	}
	return resp, err
}

// HTTPError is a non-success upstream answer with its raw body.
type HTTPError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *HTTPError) Error() string {
	return e.Err.Error()
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// UpstreamBody returns the status and body as received.
func (e *HTTPError) UpstreamBody() (int, string) {
	return e.StatusCode, e.Body
}

type errorBodyKey struct{}

type errorBody struct {
	captured bool
	status   int
	body     []byte
}

// errorBodyRecorder copies failed response bodies into the errorBody carried
// by the request context, then hands the client an unread copy.
type errorBodyRecorder struct {
	next openai.HTTPDoer
}

func (d *errorBodyRecorder) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(req)
	if err != nil || (resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusBadRequest) {
		return resp, err
	}

	recorded, ok := req.Context().Value(errorBodyKey{}).(*errorBody)
	if !ok {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	recorded.captured = true
	recorded.status = resp.StatusCode
	recorded.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
